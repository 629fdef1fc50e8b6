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
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Config validation failed: %v\n", err)
		os.Exit(1)
	}

	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := tcp.NewTCPClient(cfg, os.Stdout)
	exchange, err := client.Run(ctx, cfg.ClientMessage)
	if cfg.PrometheusEnabled {
		if werr := client.Metrics.WriteTextfile(cfg.MetricsFile); werr != nil {
			logger.Warn("metrics_write_failed", "path", cfg.MetricsFile, "error", werr.Error())
		}
	}
	if err != nil {
		// no retry, a server that is not up yet is a failed run
		logger.Error("client_error", "error", err.Error())
		stop()
		os.Exit(1)
	}

	if err := exchange.Err(); err != nil {
		logger.Warn("exchange_incomplete",
			"session_id", exchange.ConnectionID,
			"error", err.Error(),
		)
	}
}
