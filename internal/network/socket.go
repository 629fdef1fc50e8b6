// Package network holds the socket helpers shared by the server and the client:
// creating the listening socket, connecting to the server, and moving one message
// in each direction.
package network

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
)

const (
	DefaultPort       = 8080
	DefaultBufferSize = 1024
	DefaultBacklog    = 3
)

// CreateServerSocket binds an IPv4 stream socket on all interfaces and starts listening.
// Port 0 picks an ephemeral port.
func CreateServerSocket(port, backlog int) (net.Listener, error) {
	if port < 0 || port > 65535 {
		return nil, &SetupError{Op: OpBind, Addr: portAddr(port), Err: fmt.Errorf("port %d out of range", port)}
	}
	if backlog < 1 {
		backlog = DefaultBacklog
	}
	return listenTCP4(port, backlog)
}

// CreateClientSocket parses ip as an IPv4 address and connects to it on port.
// There are no retries, ctx only cancels a connect that is still in progress.
func CreateClientSocket(ctx context.Context, ip string, port int) (net.Conn, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil || parsed.To4() == nil {
		return nil, &SetupError{Op: OpParseAddress, Addr: ip, Err: ErrInvalidAddress}
	}

	addr := net.JoinHostPort(parsed.To4().String(), strconv.Itoa(port))
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp4", addr)
	if err != nil {
		return nil, &SetupError{Op: OpConnect, Addr: addr, Err: err}
	}
	return conn, nil
}

// SendMessage writes msg to w in a single attempt.
func SendMessage(w io.Writer, msg string) error {
	if _, err := w.Write([]byte(msg)); err != nil {
		return &TransferError{Op: OpSend, Err: err}
	}
	return nil
}

// ReceiveMessage clears buf and performs one read of at most len(buf)-1 bytes, so the
// last byte of buf always stays zero. Anything beyond that is left unread.
func ReceiveMessage(r io.Reader, buf []byte) (string, error) {
	clear(buf)
	if len(buf) < 2 {
		return "", &TransferError{Op: OpReceive, Err: io.ErrShortBuffer}
	}

	n, err := r.Read(buf[:len(buf)-1])
	if n > 0 {
		// data and EOF can arrive together, the data still counts
		return string(buf[:n]), nil
	}
	if err == nil {
		return "", nil
	}
	if errors.Is(err, io.EOF) {
		return "", &TransferError{Op: OpReceive, Err: ErrPeerClosed}
	}
	return "", &TransferError{Op: OpReceive, Err: err}
}

func portAddr(port int) string {
	return net.JoinHostPort("0.0.0.0", strconv.Itoa(port))
}
