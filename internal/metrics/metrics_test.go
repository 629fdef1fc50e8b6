package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Counts(t *testing.T) {
	c := New()

	c.MessageSent(RoleClient, 17)
	c.MessageReceived(RoleClient, 18)
	c.MessageReceived(RoleServer, 17)
	c.TransferError(RoleServer, "receive")
	c.SetupFailure(RoleClient, "connect")

	assert.Equal(t, 1.0, testutil.ToFloat64(c.messagesTotal.WithLabelValues(RoleClient, "sent")))
	assert.Equal(t, 17.0, testutil.ToFloat64(c.bytesTotal.WithLabelValues(RoleClient, "sent")))
	assert.Equal(t, 18.0, testutil.ToFloat64(c.bytesTotal.WithLabelValues(RoleClient, "received")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.transferErrors.WithLabelValues(RoleServer, "receive")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.setupFailures.WithLabelValues(RoleClient, "connect")))
}

func TestCollector_WriteTextfile(t *testing.T) {
	c := New()
	c.MessageSent(RoleServer, 18)
	c.ObserveExchange(RoleServer, 0.002)

	path := filepath.Join(t.TempDir(), "hellotcp.prom")
	require.NoError(t, c.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `hellotcp_bytes_total{direction="sent",role="server"} 18`)
	assert.Contains(t, string(data), "hellotcp_exchange_duration_seconds_count")
}

func TestCollector_WriteTextfileBadPath(t *testing.T) {
	c := New()
	err := c.WriteTextfile(filepath.Join(t.TempDir(), "missing", "dir", "x.prom"))
	assert.Error(t, err)
}
