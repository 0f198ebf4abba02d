package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"firestige.xyz/ingestd/internal/control"
)

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Reload the ingestd daemon's configuration",
	Long: `Send a reload request over the control socket. The daemon
re-reads its configuration file and refreshes the route table out of
cycle; it does not add or remove Source/Writer instances or restart.`,
	Run: func(cmd *cobra.Command, args []string) {
		runReloadCommand()
	},
}

func init() {
	rootCmd.AddCommand(reloadCmd)
}

func runReloadCommand() {
	client := control.NewClient(socketPath, 10*time.Second)
	ctx := context.Background()

	fmt.Println("sending reload request to daemon...")
	resp, err := client.Reload(ctx)
	if err != nil {
		exitWithError("failed to send reload command", err)
	}
	if resp.Error != nil {
		exitWithError(fmt.Sprintf("reload failed: %s", resp.Error.Message), nil)
	}

	fmt.Println("configuration reloaded successfully")
}
