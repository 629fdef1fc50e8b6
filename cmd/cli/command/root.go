package command

// root.go defines the root command for the hellotcpCLI application.
// set up the global flags and configuration here.

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"hellotcp/internal/config"
	"hellotcp/internal/metrics"
	"hellotcp/internal/microservices/tcp"
)

var (
	cfg        *config.Config // resolved once per invocation in PersistentPreRunE
	serverIP   string         // Global flag for the server IPv4 address
	port       int            // Global flag for the TCP port
	bufferSize int            // Global flag for the receive buffer size
	logLevel   string         // Global flag for the slog level
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hellotcpCLI",
	Short: "hellotcpCLI - single-shot TCP client and server",
	Long: `hellotcpCLI runs one side (or both sides) of a single TCP round trip:
- serve: accept one client, print its message, reply once and exit
- send:  connect, send one message, print the reply and exit
- demo:  run both in this process against an ephemeral port

Defaults come from the environment (.env is read when present) and can be
overridden with the flags below.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.LoadConfig()
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		if flags.Changed("host") {
			loaded.ServerIP = serverIP
		}
		if flags.Changed("port") {
			loaded.TCPPort = port
		}
		if flags.Changed("buffer-size") {
			loaded.BufferSize = bufferSize
		}
		if flags.Changed("log-level") {
			loaded.LogLevel = logLevel
		}
		if err := loaded.Validate(); err != nil {
			return err
		}

		slog.SetDefault(loaded.NewLogger(cmd.ErrOrStderr()))
		cfg = loaded
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err) // Print error to standard error
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags = available to all subcommands
	rootCmd.PersistentFlags().StringVar(&serverIP, "host", "127.0.0.1", "server IPv4 address")
	rootCmd.PersistentFlags().IntVar(&port, "port", 8080, "TCP port")
	rootCmd.PersistentFlags().IntVar(&bufferSize, "buffer-size", 1024, "receive buffer size in bytes")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(demoCmd)
}

// printResult prints a one line summary of an exchange
func printResult(w io.Writer, exchange *tcp.Exchange) {
	if err := exchange.Err(); err != nil {
		color.New(color.FgYellow).Fprintf(w, "⚠ exchange incomplete: %v\n", err)
		return
	}
	color.New(color.FgGreen).Fprintf(w, "✓ exchange complete in %s\n", exchange.Duration.Round(time.Microsecond))
}

// writeMetrics flushes the collector when PROMETHEUS_ENABLED is set
func writeMetrics(m *metrics.Collector) {
	if !cfg.PrometheusEnabled {
		return
	}
	if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
		slog.Warn("metrics_write_failed", "path", cfg.MetricsFile, "error", err.Error())
	}
}
