package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/verbcrawl/internal/report"
)

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show crawl progress",
		Long: `Status reads the crawl state and prints how many queries are done, with
counts per subcorpus and, with --verbs, per base verb.

Examples:
  # Show progress
  verbcrawl status

  # Write a Markdown progress report
  verbcrawl status --markdown -o progress.md

  # Machine readable output
  verbcrawl status --json`,
		Args: cobra.NoArgs,
		RunE: runStatusCmd,
	}
	cmd.Flags().Bool("json", false, "Output status as JSON")
	cmd.Flags().Bool("markdown", false, "Output status as Markdown")
	cmd.Flags().Bool("verbs", false, "Include the per-verb breakdown in text output")
	cmd.Flags().StringP("output", "o", "", "Write the status to a file as well")
	return cmd
}

// runStatusCmd executes the status command.
func runStatusCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return err
	}
	verbs, err := flags.GetBool("verbs")
	if err != nil {
		return err
	}
	outputPath, err := flags.GetString("output")
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(cmd, cfg)
	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	status := &report.Status{
		StatePath: cfg.StatePath,
		Generated: time.Now(),
		Stats:     store.Stats(),
	}

	newWriter := func(w io.Writer) report.Writer {
		switch {
		case cfg.JSONReport:
			return report.NewJSONWriter(w, report.WithPrettyPrint())
		case cfg.MarkdownReport:
			return report.NewMarkdownWriter(w)
		default:
			return report.NewSimpleWriter(w, report.WithVerbose(verbs))
		}
	}

	writers := []report.Writer{newWriter(cmd.OutOrStdout())}
	if outputPath != "" {
		f, err := os.Create(outputPath) //nolint:gosec // User-provided output path is intentional
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		writers = append(writers, newWriter(f))
	}

	if _, err := report.NewMultiWriter(writers...).Write(status); err != nil {
		return fmt.Errorf("failed to write status: %w", err)
	}
	return nil
}
