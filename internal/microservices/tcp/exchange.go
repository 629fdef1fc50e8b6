package tcp

import (
	"errors"
	"time"

	"hellotcp/internal/network"
)

// Exchange is what one round trip produced. Transfer failures land here instead of
// aborting the lifecycle, setup failures are returned as errors by Run.
type Exchange struct {
	ConnectionID string
	LocalAddr    string
	RemoteAddr   string
	Sent         string
	Received     string
	SendErr      error
	ReceiveErr   error
	Duration     time.Duration
}

// Err joins the transfer errors, nil when both directions went through.
func (e *Exchange) Err() error {
	return errors.Join(e.SendErr, e.ReceiveErr)
}

// PeerClosed reports whether the other side hung up before sending anything.
func (e *Exchange) PeerClosed() bool {
	return errors.Is(e.ReceiveErr, network.ErrPeerClosed)
}

func setupOp(err error) string {
	var setupErr *network.SetupError
	if errors.As(err, &setupErr) {
		return setupErr.Op
	}
	return "unknown"
}
