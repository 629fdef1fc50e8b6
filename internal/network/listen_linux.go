//go:build linux

package network

import (
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// listenTCP4 builds the listening socket by hand so the backlog passed to listen(2)
// is the one the caller asked for, then hands the descriptor to the runtime poller.
func listenTCP4(port, backlog int) (net.Listener, error) {
	addr := portAddr(port)

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, unix.IPPROTO_TCP)
	if err != nil {
		return nil, &SetupError{Op: OpSocket, Addr: addr, Err: os.NewSyscallError("socket", err)}
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return nil, &SetupError{Op: OpSocket, Addr: addr, Err: os.NewSyscallError("setsockopt", err)}
	}

	// zero Addr is INADDR_ANY
	if err := unix.Bind(fd, &unix.SockaddrInet4{Port: port}); err != nil {
		unix.Close(fd)
		return nil, &SetupError{Op: OpBind, Addr: addr, Err: os.NewSyscallError("bind", err)}
	}

	if err := unix.Listen(fd, backlog); err != nil {
		unix.Close(fd)
		return nil, &SetupError{Op: OpListen, Addr: addr, Err: os.NewSyscallError("listen", err)}
	}

	f := os.NewFile(uintptr(fd), fmt.Sprintf("tcp4-listener:%d", port))
	// FileListener dups the descriptor, ours is closed either way
	defer f.Close()

	ln, err := net.FileListener(f)
	if err != nil {
		return nil, &SetupError{Op: OpListen, Addr: addr, Err: err}
	}
	return ln, nil
}
