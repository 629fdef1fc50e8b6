//go:build !linux

package network

import (
	"context"
	"net"
)

// listenTCP4 falls back to the runtime listener, which uses the system default backlog.
func listenTCP4(port, _ int) (net.Listener, error) {
	addr := portAddr(port)
	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp4", addr)
	if err != nil {
		return nil, &SetupError{Op: OpListen, Addr: addr, Err: err}
	}
	return ln, nil
}
