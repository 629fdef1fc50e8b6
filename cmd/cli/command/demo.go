package command

import (
	"bytes"
	"fmt"
	"net"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"hellotcp/internal/microservices/tcp"
)

var demoMessage string

// demoCmd runs the server and the client against each other in one process
var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the server and the client together on an ephemeral port",
	Long: `Start the server on a kernel-assigned port (unless --port is given), point the
client at it and run one round trip. The console output of each side is printed
once both are done.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		serverCfg := *cfg
		if !cmd.Flags().Changed("port") {
			serverCfg.TCPPort = 0
		}

		var serverOut, clientOut bytes.Buffer
		server := tcp.NewServer(&serverCfg, &serverOut)
		if err := server.Listen(); err != nil {
			return fmt.Errorf("server failed: %w", err)
		}

		clientCfg := serverCfg
		clientCfg.ServerIP = "127.0.0.1"
		clientCfg.TCPPort = server.Addr().(*net.TCPAddr).Port
		client := tcp.NewTCPClient(&clientCfg, &clientOut)
		client.Metrics = server.Metrics

		message := cfg.ClientMessage
		if cmd.Flags().Changed("message") {
			message = demoMessage
		}

		var served, sent *tcp.Exchange
		g, gctx := errgroup.WithContext(cmd.Context())
		g.Go(func() error {
			var err error
			served, err = server.Serve(gctx)
			return err
		})
		g.Go(func() error {
			var err error
			sent, err = client.Run(gctx, message)
			return err
		})
		err := g.Wait()
		writeMetrics(server.Metrics)

		out := cmd.OutOrStdout()
		color.New(color.FgCyan).Fprintln(out, "[server]")
		fmt.Fprint(out, serverOut.String())
		color.New(color.FgCyan).Fprintln(out, "[client]")
		fmt.Fprint(out, clientOut.String())
		if err != nil {
			return fmt.Errorf("demo failed: %w", err)
		}

		printResult(out, served)
		printResult(out, sent)
		return nil
	},
}

func init() {
	demoCmd.Flags().StringVarP(&demoMessage, "message", "m", "Hello from client", "message the client sends")
}
