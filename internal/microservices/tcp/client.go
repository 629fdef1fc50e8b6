package tcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"hellotcp/internal/config"
	"hellotcp/internal/metrics"
	"hellotcp/internal/network"
)

// TCPClient performs one round trip against the server: connect, send, receive, close.
type TCPClient struct {
	lifecycle

	ServerIP   string
	Port       int
	BufferSize int

	Logger  *slog.Logger
	Metrics *metrics.Collector

	sessionID string
	out       io.Writer
}

// NewTCPClient creates a new TCP client
func NewTCPClient(cfg *config.Config, out io.Writer) *TCPClient {
	if out == nil {
		out = io.Discard
	}
	return &TCPClient{
		ServerIP:   cfg.ServerIP,
		Port:       cfg.TCPPort,
		BufferSize: cfg.BufferSize,
		Logger:     slog.Default(),
		Metrics:    metrics.New(),
		sessionID:  uuid.NewString(),
		out:        out,
	}
}

// SessionID identifies this client in the logs
func (c *TCPClient) SessionID() string {
	return c.sessionID
}

// Run sends message and waits for a single reply.
// Only a failed connect is returned as an error, transfer failures end up on the Exchange.
func (c *TCPClient) Run(ctx context.Context, message string) (*Exchange, error) {
	defer c.setState(StateTerminated)

	c.setState(StateConnecting)
	conn, err := network.CreateClientSocket(ctx, c.ServerIP, c.Port)
	if err != nil {
		c.Metrics.SetupFailure(metrics.RoleClient, setupOp(err))
		c.Logger.Error("client_setup_failed",
			"session_id", c.sessionID,
			"server_ip", c.ServerIP,
			"port", c.Port,
			"error", err.Error(),
		)
		return nil, fmt.Errorf("connection failed: %w", err)
	}
	start := time.Now()
	fmt.Fprintf(c.out, "Connected to server at %s:%d\n", c.ServerIP, c.Port)
	c.Logger.Info("client_connected",
		"session_id", c.sessionID,
		"remote_addr", conn.RemoteAddr().String(),
	)

	exchange := &Exchange{
		ConnectionID: c.sessionID,
		LocalAddr:    conn.LocalAddr().String(),
		RemoteAddr:   conn.RemoteAddr().String(),
	}

	c.setState(StateSending)
	if err := network.SendMessage(conn, message); err != nil {
		exchange.SendErr = err
		c.Metrics.TransferError(metrics.RoleClient, network.OpSend)
		c.Logger.Error("send_failed",
			"session_id", c.sessionID,
			"error", err.Error(),
		)
	} else {
		exchange.Sent = message
		c.Metrics.MessageSent(metrics.RoleClient, len(message))
	}
	fmt.Fprintf(c.out, "Sent to server: %s\n", message)

	c.setState(StateReceiving)
	buffer := make([]byte, c.bufferSize())
	reply, err := network.ReceiveMessage(conn, buffer)
	switch {
	case errors.Is(err, network.ErrPeerClosed):
		exchange.ReceiveErr = err
		c.Metrics.TransferError(metrics.RoleClient, network.OpReceive)
		fmt.Fprintln(c.out, "Connection closed by peer.")
	case err != nil:
		exchange.ReceiveErr = err
		c.Metrics.TransferError(metrics.RoleClient, network.OpReceive)
		c.Logger.Error("receive_failed",
			"session_id", c.sessionID,
			"error", err.Error(),
		)
	default:
		c.Metrics.MessageReceived(metrics.RoleClient, len(reply))
	}
	exchange.Received = reply
	fmt.Fprintf(c.out, "From server: %s\n", strings.TrimRight(reply, "\n"))

	if err := conn.Close(); err != nil {
		c.Logger.Warn("close_failed",
			"session_id", c.sessionID,
			"error", err.Error(),
		)
	}
	fmt.Fprintln(c.out, "Connection closed.")

	exchange.Duration = time.Since(start)
	c.Metrics.ObserveExchange(metrics.RoleClient, exchange.Duration.Seconds())
	c.Logger.Info("client_finished",
		"session_id", c.sessionID,
		"duration", exchange.Duration,
	)
	return exchange, nil
}

func (c *TCPClient) bufferSize() int {
	if c.BufferSize < 2 {
		return network.DefaultBufferSize
	}
	return c.BufferSize
}
