package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"firestige.xyz/ingestd/internal/control"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the running daemon's status",
	Long: `Query the ingestd daemon's control socket for its deploy name,
engine state, and the set of sources currently present in the route table.`,
	Run: func(cmd *cobra.Command, args []string) {
		runStatusCommand()
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatusCommand() {
	client := control.NewClient(socketPath, 10*time.Second)
	ctx := context.Background()

	resp, err := client.Status(ctx)
	if err != nil {
		exitWithError("failed to query daemon status", err)
	}
	if resp.Error != nil {
		exitWithError(fmt.Sprintf("status failed: %s", resp.Error.Message), nil)
	}

	out, err := json.MarshalIndent(resp.Result, "", "  ")
	if err != nil {
		exitWithError("failed to format result", err)
	}
	fmt.Println(string(out))
}
