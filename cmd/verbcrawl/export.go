package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the stored results to CSV, XLSX or SQLite",
		Long: `Export rebuilds result files from the crawl state without fetching anything.
Only done queries are exported unless --include-pending is given.

Examples:
  # Export done queries to CSV for a Windows spreadsheet
  verbcrawl export --csv results.csv --encoding windows-1251

  # Export everything fetched so far to a workbook and the database
  verbcrawl export --xlsx results.xlsx --db --include-pending`,
		Args: cobra.NoArgs,
		RunE: runExportCmd,
	}
	addOutputFlags(cmd)
	cmd.Flags().Bool("include-pending", false, "Also export pages of queries that are not done")
	return cmd
}

// runExportCmd executes the export command.
func runExportCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyOutputFlags(cmd, cfg); err != nil {
		return err
	}
	includePending, err := cmd.Flags().GetBool("include-pending")
	if err != nil {
		return err
	}
	if cfg.CSVPath == "" && cfg.XLSXPath == "" && cfg.DBPath == "" {
		return errNoOutput
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(cmd, cfg)
	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	records := store.AllRecords(includePending)
	stats := store.Stats()

	ctx := cmd.Context()
	out, err := openOutputs(ctx, cfg, runKindExport, logger)
	if err != nil {
		return err
	}
	writeErr := out.sink.Write(ctx, records)
	if err := out.finish(ctx, stats.Total.Done, 0, len(records)); err != nil && writeErr == nil {
		writeErr = err
	}
	if writeErr != nil {
		return fmt.Errorf("failed to export results: %w", writeErr)
	}

	logger.Info("export finished", "records", len(records), "state", cfg.StatePath)
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d records from %s\n", len(records), cfg.StatePath)
	return nil
}
