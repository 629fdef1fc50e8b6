package tcp

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"

	"hellotcp/internal/metrics"
	"hellotcp/internal/network"
)

// ClientConnection is the server side of one accepted connection.
type ClientConnection struct {
	ID      string // unique identifier, only used to correlate log lines
	conn    net.Conn
	buffer  []byte // receive buffer, cleared before the read
	out     io.Writer
	logger  *slog.Logger
	metrics *metrics.Collector
}

// constructor for Connection
func NewClientConnection(conn net.Conn, bufferSize int, out io.Writer, logger *slog.Logger, m *metrics.Collector) *ClientConnection {
	if bufferSize < 2 {
		bufferSize = network.DefaultBufferSize
	}
	return &ClientConnection{
		ID:      uuid.NewString(),
		conn:    conn,
		buffer:  make([]byte, bufferSize),
		out:     out,
		logger:  logger,
		metrics: m,
	}
}

// Serve reads one message from the client and answers with reply.
// A failed receive does not stop the reply, same as a failed send does not stop the close.
func (c *ClientConnection) Serve(reply string) *Exchange {
	start := time.Now()
	exchange := &Exchange{
		ConnectionID: c.ID,
		LocalAddr:    c.conn.LocalAddr().String(),
		RemoteAddr:   c.conn.RemoteAddr().String(),
	}

	c.logger.Info("client_connected",
		"connection_id", c.ID,
		"remote_addr", exchange.RemoteAddr,
	)

	msg, err := network.ReceiveMessage(c.conn, c.buffer)
	switch {
	case errors.Is(err, network.ErrPeerClosed):
		exchange.ReceiveErr = err
		c.metrics.TransferError(metrics.RoleServer, network.OpReceive)
		fmt.Fprintln(c.out, "Connection closed by peer.")
		c.logger.Info("client_disconnected",
			"connection_id", c.ID,
		)
	case err != nil:
		exchange.ReceiveErr = err
		c.metrics.TransferError(metrics.RoleServer, network.OpReceive)
		c.logger.Error("receive_failed",
			"connection_id", c.ID,
			"error", err.Error(),
		)
	default:
		c.metrics.MessageReceived(metrics.RoleServer, len(msg))
		c.logger.Debug("message_received",
			"connection_id", c.ID,
			"bytes", len(msg),
		)
	}
	exchange.Received = msg
	fmt.Fprintf(c.out, "From client: %s\n", msg)

	if err := network.SendMessage(c.conn, reply); err != nil {
		exchange.SendErr = err
		c.metrics.TransferError(metrics.RoleServer, network.OpSend)
		c.logger.Error("send_failed",
			"connection_id", c.ID,
			"error", err.Error(),
		)
	} else {
		exchange.Sent = reply
		c.metrics.MessageSent(metrics.RoleServer, len(reply))
		c.logger.Debug("reply_sent",
			"connection_id", c.ID,
			"bytes", len(reply),
		)
	}

	exchange.Duration = time.Since(start)
	c.metrics.ObserveExchange(metrics.RoleServer, exchange.Duration.Seconds())
	return exchange
}

// method to close the connection
func (c *ClientConnection) Close() error {
	return c.conn.Close()
}
