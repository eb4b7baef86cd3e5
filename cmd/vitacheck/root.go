package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vitacheck/engine/pkg/cli"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "vitacheck",
	Short: "Drug and supplement interaction checker",
	Long: `vitacheck resolves drug and supplement names against upstream authorities
(RxNorm, label warnings, adverse events, literature, and CMS exposure data),
merges and standardizes the evidence by origin, and reaches a consensus
severity for each pair, single, and triple of items in a request.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	ran, err := rootCmd.ExecuteC()
	if err != nil {
		fmt.Fprintln(os.Stderr, cli.NewCommandError(ran.Name(), err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.CompletionOptions.DisableDefaultCmd = false
}
