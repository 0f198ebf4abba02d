package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"firestige.xyz/ingestd/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file without starting the daemon",
	Long: `Validate loads and decodes the configuration file given by --config
(JSON or YAML, auto-detected from extension), applying the same defaults
and checks the daemon applies at startup, and reports the result without
bringing up the Engine or any servers.`,
	Run: func(cmd *cobra.Command, args []string) {
		runValidateCommand()
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidateCommand() {
	cfg, err := config.Load(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "INVALID: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("VALID: deploy %q — %d source(s), %d writer(s), target threads %d\n",
		cfg.DeployName, len(cfg.Sources), len(cfg.Writers), cfg.TargetThreads)
}
