package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for verbcrawl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verbcrawl",
		Short: "Resumable corpus crawler for prefixed verb forms",
		Long: `verbcrawl generates every prefixed form of the configured verbs, queries the
Russian National Corpus for each form in the Ancient, Old and Modern
subcorpora, and collects the source listings of every results page.

Progress is saved after every page, so an interrupted crawl can be resumed
by running the same command again.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON lines")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .verbcrawl in current or home directory)")
	cmd.PersistentFlags().StringP("state", "s", "",
		"Crawl state file (default: crawl.xml in the XDG data directory)")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewFormsCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewStatusCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
