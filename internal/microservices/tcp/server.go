package tcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"

	"hellotcp/internal/config"
	"hellotcp/internal/metrics"
	"hellotcp/internal/network"
)

var ErrNotListening = errors.New("server is not listening")

// TCPServer accepts exactly one client, answers it once and shuts down.
type TCPServer struct {
	lifecycle

	Port       int
	Backlog    int
	BufferSize int
	Reply      string

	// Logger and Metrics can be swapped out before Listen is called
	Logger  *slog.Logger
	Metrics *metrics.Collector

	out      io.Writer // console status lines
	listener net.Listener
}

// constructor for Server
func NewServer(cfg *config.Config, out io.Writer) *TCPServer {
	if out == nil {
		out = io.Discard
	}
	return &TCPServer{
		Port:       cfg.TCPPort,
		Backlog:    cfg.Backlog,
		BufferSize: cfg.BufferSize,
		Reply:      cfg.ServerReply,
		Logger:     slog.Default(),
		Metrics:    metrics.New(),
		out:        out,
	}
}

// Listen creates the listening socket.
func (s *TCPServer) Listen() error {
	ln, err := network.CreateServerSocket(s.Port, s.Backlog)
	if err != nil {
		s.Metrics.SetupFailure(metrics.RoleServer, setupOp(err))
		s.Logger.Error("server_setup_failed",
			"port", s.Port,
			"error", err.Error(),
		)
		return err
	}
	s.listener = ln
	s.setState(StateListening)

	port := ln.Addr().(*net.TCPAddr).Port
	s.Logger.Info("server_listening",
		"addr", ln.Addr().String(),
		"backlog", s.Backlog,
	)
	fmt.Fprintf(s.out, "Server listening on port %d\n", port)
	return nil
}

// Addr returns the bound address, nil before Listen.
func (s *TCPServer) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve blocks on a single accept, serves that client and closes everything.
// Cancelling ctx while accepting closes the listener and fails the accept.
func (s *TCPServer) Serve(ctx context.Context) (*Exchange, error) {
	if s.listener == nil {
		return nil, ErrNotListening
	}
	defer s.setState(StateTerminated)
	defer s.listener.Close()

	stop := context.AfterFunc(ctx, func() {
		s.listener.Close()
	})
	defer stop()

	s.setState(StateAccepting)
	conn, err := s.listener.Accept()
	if err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		s.Metrics.SetupFailure(metrics.RoleServer, network.OpAccept)
		s.Logger.Error("accept_failed",
			"addr", s.listener.Addr().String(),
			"error", err.Error(),
		)
		return nil, &network.SetupError{Op: network.OpAccept, Addr: s.listener.Addr().String(), Err: err}
	}
	// nothing may interrupt the exchange once a client is in
	stop()

	s.setState(StateServing)
	fmt.Fprintln(s.out, "Client connected!")

	client := NewClientConnection(conn, s.BufferSize, s.out, s.Logger, s.Metrics)
	exchange := client.Serve(s.Reply)

	if err := client.Close(); err != nil {
		s.Logger.Warn("close_failed",
			"connection_id", client.ID,
			"error", err.Error(),
		)
	}
	fmt.Fprintln(s.out, "connection closed.")
	s.Logger.Info("server_finished",
		"connection_id", client.ID,
		"duration", exchange.Duration,
	)
	return exchange, nil
}

// Run listens and then serves one client.
func (s *TCPServer) Run(ctx context.Context) (*Exchange, error) {
	if err := s.Listen(); err != nil {
		s.setState(StateTerminated)
		return nil, err
	}
	return s.Serve(ctx)
}
