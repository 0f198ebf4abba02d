package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"firestige.xyz/ingestd/internal/control"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running ingestd daemon",
	Long: `Send a graceful shutdown request to the daemon over its control
socket. The daemon stops the control server, the Engine, and the metrics
server, removes its PID file, then exits.`,
	Run: func(cmd *cobra.Command, args []string) {
		runStopCommand()
	},
}

func init() {
	rootCmd.AddCommand(stopCmd)
}

func runStopCommand() {
	client := control.NewClient(socketPath, 10*time.Second)
	ctx := context.Background()

	resp, err := client.Stop(ctx)
	if err != nil {
		exitWithError("daemon is not running or socket is inaccessible", err)
	}
	if resp.Error != nil {
		exitWithError(fmt.Sprintf("stop failed: %s", resp.Error.Message), nil)
	}

	fmt.Println("ingestd daemon is stopping")
}
