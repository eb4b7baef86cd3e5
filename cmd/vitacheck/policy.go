package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vitacheck/engine/pkg/classpolicy"
	"vitacheck/engine/pkg/cli"
	"vitacheck/engine/pkg/config"
)

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Inspect the class policy consulted by the label-warning standardizer",
}

var policyPrintCmd = &cobra.Command{
	Use:   "print",
	Short: "Print the active class policy document as JSON",
	RunE:  policyPrint,
}

var policyReloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Pull the latest class policy from its git source and print it",
	Long: `Reload only applies to a git-sourced class policy: it pulls the
configured branch and prints the resulting document. It is a no-op check
for builtin and file sources, since those are already current on every
read.`,
	RunE: policyReload,
}

func init() {
	rootCmd.AddCommand(policyCmd)
	policyCmd.AddCommand(policyPrintCmd)
	policyCmd.AddCommand(policyReloadCmd)
}

func policyPrint(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	doc, err := currentPolicyDoc(ctx, cfg.ClassPolicy)
	if err != nil {
		return err
	}
	return printDoc(doc)
}

func policyReload(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if cfg.ClassPolicy.Source != "git" {
		fmt.Fprintf(os.Stderr, "class policy source is %q, nothing to pull\n", cfg.ClassPolicy.Source)
		doc, err := currentPolicyDoc(context.Background(), cfg.ClassPolicy)
		if err != nil {
			return err
		}
		return printDoc(doc)
	}

	ctx := context.Background()
	src, err := classpolicy.NewGitSource(ctx, classpolicy.GitSourceConfig{
		Repository: cfg.ClassPolicy.GitRepository,
		Branch:     cfg.ClassPolicy.GitBranch,
		FilePath:   cfg.ClassPolicy.GitPath,
		LocalPath:  cfg.ClassPolicy.GitLocalPath,
		Token:      cfg.ClassPolicy.GitToken,
		Timeout:    cfg.ClassPolicy.GitTimeout,
	})
	if err != nil {
		return fmt.Errorf("open class policy git source: %w", err)
	}

	updated, err := src.Pull(ctx)
	if err != nil {
		return fmt.Errorf("pull class policy: %w", err)
	}
	if updated {
		fmt.Fprintln(os.Stderr, "class policy updated")
	} else {
		fmt.Fprintln(os.Stderr, "class policy already up to date")
	}

	doc, err := src.Load()
	if err != nil {
		return err
	}
	return printDoc(doc)
}

func currentPolicyDoc(ctx context.Context, cfg config.ClassPolicyConfig) (classpolicy.Doc, error) {
	switch cfg.Source {
	case "", "builtin":
		return classpolicy.DefaultDoc(), nil
	case "file":
		return classpolicy.LoadFile(cfg.FilePath)
	case "git":
		src, err := classpolicy.NewGitSource(ctx, classpolicy.GitSourceConfig{
			Repository: cfg.GitRepository,
			Branch:     cfg.GitBranch,
			FilePath:   cfg.GitPath,
			LocalPath:  cfg.GitLocalPath,
			Token:      cfg.GitToken,
			Timeout:    cfg.GitTimeout,
		})
		if err != nil {
			return classpolicy.Doc{}, fmt.Errorf("open class policy git source: %w", err)
		}
		return src.Load()
	default:
		return classpolicy.Doc{}, fmt.Errorf("unknown class policy source: %q", cfg.Source)
	}
}

func printDoc(doc classpolicy.Doc) error {
	formatter := cli.NewFormatter(cli.FormatJSON)
	return formatter.FormatTo(os.Stdout, doc)
}
