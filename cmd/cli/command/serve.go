package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"hellotcp/internal/microservices/tcp"
)

var (
	serveBacklog int
	serveReply   string
)

// serveCmd runs the server lifecycle once
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Accept one client, print its message and reply once",
	Long: `Bind the port on all interfaces and wait for exactly one client.

This command will:
1. Listen on the configured port
2. Accept a single connection
3. Print the message the client sent
4. Send the reply and close everything

Interrupting the wait (Ctrl+C) exits with status 1.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("backlog") {
			cfg.Backlog = serveBacklog
		}
		if cmd.Flags().Changed("reply") {
			cfg.ServerReply = serveReply
		}

		server := tcp.NewServer(cfg, cmd.OutOrStdout())
		exchange, err := server.Run(cmd.Context())
		writeMetrics(server.Metrics)
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}

		printResult(cmd.OutOrStdout(), exchange)
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&serveBacklog, "backlog", 3, "listen backlog")
	serveCmd.Flags().StringVar(&serveReply, "reply", "im the server !!!\n", "reply sent to the client")
}
