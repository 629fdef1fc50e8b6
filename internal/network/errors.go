package network

import (
	"errors"
	"fmt"
)

var (
	ErrPeerClosed     = errors.New("connection closed by peer")
	ErrInvalidAddress = errors.New("invalid IPv4 address")
)

// setup operations, every failure here is fatal for the process
const (
	OpSocket       = "socket"
	OpBind         = "bind"
	OpListen       = "listen"
	OpParseAddress = "parse_address"
	OpConnect      = "connect"
	OpAccept       = "accept"
)

// transfer operations, failures here are logged and the lifecycle continues
const (
	OpSend    = "send"
	OpReceive = "receive"
)

// SetupError reports a failure while creating, binding, connecting or accepting a socket.
type SetupError struct {
	Op   string
	Addr string
	Err  error
}

func (e *SetupError) Error() string {
	if e.Addr != "" {
		return fmt.Sprintf("%s %s failed: %v", e.Op, e.Addr, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *SetupError) Unwrap() error { return e.Err }

// TransferError reports a failed send or receive on an established connection.
type TransferError struct {
	Op  string
	Err error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

// IsFatal reports whether err is a setup failure.
func IsFatal(err error) bool {
	var setupErr *SetupError
	return errors.As(err, &setupErr)
}

// IsTransfer reports whether err is a recoverable transfer failure.
func IsTransfer(err error) bool {
	var transferErr *TransferError
	return errors.As(err, &transferErr)
}
