// Package cmd implements the ingestd CLI using cobra, grounded on the
// teacher's cmd/root.go/execute.go command set, reduced to one consistent
// rootCmd (the teacher's pack carried two incompatible definitions of
// rootCmd under different module paths — this is the reconciled one).
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configFile string
	socketPath string
	pidFile    string
)

var rootCmd = &cobra.Command{
	Use:   "ingestd",
	Short: "ingestd - a message-ingest pipeline daemon",
	Long: `ingestd routes messages from configured sources, through optional
transforms, to configured writers, with a remotely-fetched route table.`,
}

// Execute runs the CLI; called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "/etc/ingestd/ingestd.yaml", "path to configuration file")
	rootCmd.PersistentFlags().StringVar(&socketPath, "socket", "/tmp/ingestd.sock", "path to the control-plane Unix domain socket")
	rootCmd.PersistentFlags().StringVar(&pidFile, "pid-file", "/tmp/ingestd.pid", "path to the daemon's PID file")
}
