package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"hellotcp/internal/config"
	"hellotcp/internal/microservices/tcp"
)

func main() {
	// Configuration
	// defaults are the fixed port and reply, env/.env can override them
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Config validation failed: %v\n", err)
		os.Exit(1)
	}

	// Setup structured logging, stdout is reserved for the status lines
	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	// a signal while waiting for the client interrupts the accept
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := tcp.NewServer(cfg, os.Stdout)
	exchange, err := server.Run(ctx)
	flushMetrics(cfg, server)
	if err != nil {
		logger.Error("server_error", "error", err.Error())
		stop()
		os.Exit(1)
	}

	if err := exchange.Err(); err != nil {
		// transfer failures are reported but the run still counts as served
		logger.Warn("exchange_incomplete",
			"connection_id", exchange.ConnectionID,
			"error", err.Error(),
		)
	}
}

func flushMetrics(cfg *config.Config, server *tcp.TCPServer) {
	if !cfg.PrometheusEnabled {
		return
	}
	if err := server.Metrics.WriteTextfile(cfg.MetricsFile); err != nil {
		slog.Warn("metrics_write_failed", "path", cfg.MetricsFile, "error", err.Error())
	}
}
