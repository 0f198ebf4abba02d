package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"firestige.xyz/ingestd/internal/daemonproc"
	"firestige.xyz/ingestd/internal/plugin"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the ingestd daemon in the foreground",
	Long: `Start loads the configuration file, brings up the Engine, metrics
server and control-plane socket, and blocks handling signals until told
to stop (SIGTERM/SIGINT) or reload (SIGHUP).

start always runs in the foreground; use a process supervisor (such as
systemd) to background it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := daemonproc.New(configFile, plugin.NewRegistry())
		if err != nil {
			return fmt.Errorf("start: %w", err)
		}
		if err := d.Start(); err != nil {
			return fmt.Errorf("start: %w", err)
		}
		return d.Run()
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func exitWithError(msg string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	} else {
		fmt.Fprintln(os.Stderr, msg)
	}
	os.Exit(1)
}
