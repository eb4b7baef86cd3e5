package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"vitacheck/engine/pkg/cli"
	"vitacheck/engine/pkg/orchestrator"
)

var runFlags struct {
	includeAI    bool
	includeCMS   bool
	debug        bool
	forceRefresh bool
}

var runCmd = &cobra.Command{
	Use:   "run <item,item,...>",
	Short: "Run an interaction check against a comma-separated item list",
	Long: `Run resolves every item against the configured upstream authorities,
merges and standardizes the evidence, and prints the assembled report as
JSON to stdout.

Example:
  vitacheck run ibuprofen,warfarin,vitamin-k`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runFlags.includeAI, "include-ai", false, "include literature AI evidence")
	runCmd.Flags().BoolVar(&runFlags.includeCMS, "include-cms", false, "include CMS exposure evidence")
	runCmd.Flags().BoolVar(&runFlags.debug, "debug", false, "include per-provider debug trace in the response")
	runCmd.Flags().BoolVar(&runFlags.forceRefresh, "force-refresh", false, "bypass the cache and recompute everything")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	d, err := buildOrchestrator(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize pipeline: %w", err)
	}
	defer d.Close()

	items := make([]orchestrator.RequestItem, 0)
	for _, v := range strings.Split(args[0], ",") {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		items = append(items, orchestrator.RequestItem{Value: v})
	}
	if len(items) == 0 {
		return fmt.Errorf("no items given")
	}

	req := orchestrator.Request{
		Items: items,
		Options: orchestrator.Options{
			IncludeAI:    runFlags.includeAI,
			IncludeCMS:   runFlags.includeCMS,
			Debug:        runFlags.debug,
			ForceRefresh: runFlags.forceRefresh,
		},
	}

	resp, err := d.orchestrator.Run(ctx, req)
	if err != nil {
		return fmt.Errorf("run check: %w", err)
	}

	formatter := cli.NewFormatter(cli.FormatJSON)
	return formatter.FormatTo(os.Stdout, resp)
}
