package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"hellotcp/internal/microservices/tcp"
)

var sendMessage string

// sendCmd runs the client lifecycle once
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send one message to the server and print the reply",
	Long: `Connect to the server, send a single message, wait for one reply and close.

There is no retry: if nothing is listening yet the command fails right away.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		message := cfg.ClientMessage
		if cmd.Flags().Changed("message") {
			message = sendMessage
		}

		client := tcp.NewTCPClient(cfg, cmd.OutOrStdout())
		exchange, err := client.Run(cmd.Context(), message)
		writeMetrics(client.Metrics)
		if err != nil {
			return fmt.Errorf("send failed: %w", err)
		}

		printResult(cmd.OutOrStdout(), exchange)
		return nil
	},
}

func init() {
	sendCmd.Flags().StringVarP(&sendMessage, "message", "m", "Hello from client", "message sent to the server")
}
