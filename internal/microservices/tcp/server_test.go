package tcp

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hellotcp/internal/config"
	"hellotcp/internal/network"
)

type serveResult struct {
	exchange *Exchange
	err      error
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.TCPPort = 0
	return cfg
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startServer listens on an ephemeral port and serves in the background
func startServer(t *testing.T, ctx context.Context, cfg *config.Config) (*TCPServer, *bytes.Buffer, <-chan serveResult) {
	t.Helper()
	out := &bytes.Buffer{}
	server := NewServer(cfg, out)
	server.Logger = quietLogger()
	require.NoError(t, server.Listen())
	require.Equal(t, StateListening, server.State())

	done := make(chan serveResult, 1)
	go func() {
		exchange, err := server.Serve(ctx)
		done <- serveResult{exchange, err}
	}()
	return server, out, done
}

func waitResult(t *testing.T, done <-chan serveResult) serveResult {
	t.Helper()
	select {
	case res := <-done:
		return res
	case <-time.After(5 * time.Second):
		t.Fatal("server did not finish")
		return serveResult{}
	}
}

func dialServer(t *testing.T, server *TCPServer) net.Conn {
	t.Helper()
	conn, err := net.Dial("tcp4", server.Addr().String())
	require.NoError(t, err)
	return conn
}

func TestServer_ServesOneClient(t *testing.T) {
	server, out, done := startServer(t, context.Background(), testConfig())

	conn := dialServer(t, server)
	defer conn.Close()

	_, err := conn.Write([]byte("Hello from client"))
	require.NoError(t, err)

	reply, err := io.ReadAll(conn)
	require.NoError(t, err)
	assert.Equal(t, "im the server !!!\n", string(reply))

	res := waitResult(t, done)
	require.NoError(t, res.err)
	require.NotNil(t, res.exchange)
	assert.Equal(t, "Hello from client", res.exchange.Received)
	assert.Equal(t, "im the server !!!\n", res.exchange.Sent)
	assert.NoError(t, res.exchange.Err())
	assert.NotEmpty(t, res.exchange.ConnectionID)

	lines := out.String()
	assert.Contains(t, lines, "Server listening on port")
	assert.Contains(t, lines, "Client connected!")
	assert.Contains(t, lines, "From client: Hello from client")
	assert.Contains(t, lines, "connection closed.")
	assert.Equal(t, StateTerminated, server.State())
}

func TestServer_DoesNotAcceptTwice(t *testing.T) {
	server, _, done := startServer(t, context.Background(), testConfig())
	addr := server.Addr().String()

	conn := dialServer(t, server)
	conn.Write([]byte("first"))
	io.ReadAll(conn)
	conn.Close()
	waitResult(t, done)

	_, err := net.DialTimeout("tcp4", addr, time.Second)
	assert.Error(t, err, "listener should be gone after the first client")
}

func TestServer_AcceptInterrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	server, out, done := startServer(t, ctx, testConfig())

	require.Eventually(t, func() bool {
		return server.State() == StateAccepting
	}, 2*time.Second, 10*time.Millisecond)
	cancel()

	res := waitResult(t, done)
	assert.Nil(t, res.exchange)
	require.Error(t, res.err)
	assert.True(t, network.IsFatal(res.err))
	assert.ErrorIs(t, res.err, context.Canceled)

	var setupErr *network.SetupError
	require.ErrorAs(t, res.err, &setupErr)
	assert.Equal(t, network.OpAccept, setupErr.Op)

	assert.NotContains(t, out.String(), "Client connected!")
	assert.Equal(t, StateTerminated, server.State())
}

func TestServer_PeerClosedBeforeSending(t *testing.T) {
	server, out, done := startServer(t, context.Background(), testConfig())

	conn := dialServer(t, server)
	require.NoError(t, conn.Close())

	res := waitResult(t, done)
	require.NoError(t, res.err)
	assert.True(t, res.exchange.PeerClosed())
	assert.Empty(t, res.exchange.Received)
	assert.True(t, network.IsTransfer(res.exchange.Err()))
	assert.Contains(t, out.String(), "Connection closed by peer.")
}

func TestServer_TruncatesLongMessage(t *testing.T) {
	cfg := testConfig()
	server, _, done := startServer(t, context.Background(), cfg)

	conn := dialServer(t, server)
	defer conn.Close()
	_, err := conn.Write([]byte(strings.Repeat("x", 3*cfg.BufferSize)))
	require.NoError(t, err)

	res := waitResult(t, done)
	require.NoError(t, res.err)
	assert.Len(t, res.exchange.Received, cfg.BufferSize-1)
	assert.NoError(t, res.exchange.ReceiveErr)
}

func TestServer_PrintsPayloadVerbatim(t *testing.T) {
	server, out, done := startServer(t, context.Background(), testConfig())

	conn := dialServer(t, server)
	defer conn.Close()
	_, err := conn.Write([]byte("line one\n"))
	require.NoError(t, err)

	res := waitResult(t, done)
	require.NoError(t, res.err)
	assert.Equal(t, "line one\n", res.exchange.Received)
	assert.Contains(t, out.String(), "From client: line one\n\n")
}

func TestServer_ServeWithoutListen(t *testing.T) {
	server := NewServer(testConfig(), nil)
	_, err := server.Serve(context.Background())
	assert.ErrorIs(t, err, ErrNotListening)
	assert.Nil(t, server.Addr())
}

func TestServer_ListenPortInUse(t *testing.T) {
	taken, err := network.CreateServerSocket(0, network.DefaultBacklog)
	require.NoError(t, err)
	defer taken.Close()

	cfg := testConfig()
	cfg.TCPPort = taken.Addr().(*net.TCPAddr).Port

	server := NewServer(cfg, nil)
	server.Logger = quietLogger()
	_, err = server.Run(context.Background())
	require.Error(t, err)
	assert.True(t, network.IsFatal(err))
	assert.Equal(t, StateTerminated, server.State())
}
