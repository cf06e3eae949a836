package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nao1215/verbcrawl/internal/config"
	"github.com/nao1215/verbcrawl/internal/database"
	"github.com/nao1215/verbcrawl/internal/log"
	"github.com/nao1215/verbcrawl/internal/pipeline"
	"github.com/nao1215/verbcrawl/internal/report"
	"github.com/nao1215/verbcrawl/internal/state"
)

// errNoOutput is returned by export when no output was requested.
var errNoOutput = errors.New("no output specified: use --csv, --xlsx or --db")

// loadConfig builds the configuration from defaults, the configuration
// file and the global flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()

	configPath, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if cfg.Verbose, err = flags.GetBool("verbose"); err != nil {
		return nil, err
	}
	if cfg.JSONLog, err = flags.GetBool("log-json"); err != nil {
		return nil, err
	}
	if flags.Changed("state") {
		if cfg.StatePath, err = flags.GetString("state"); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// applyOutputFlags copies the export flags shared by crawl and export.
func applyOutputFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error
	if cfg.CSVPath, err = flags.GetString("csv"); err != nil {
		return err
	}
	if cfg.XLSXPath, err = flags.GetString("xlsx"); err != nil {
		return err
	}
	if flags.Changed("db") {
		if cfg.DBPath, err = flags.GetString("db"); err != nil {
			return err
		}
	}
	if flags.Changed("encoding") {
		if cfg.CSVEncoding, err = flags.GetString("encoding"); err != nil {
			return err
		}
	}
	return nil
}

// addOutputFlags registers the export flags shared by crawl and export.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().String("csv", "", "Write results to a CSV file")
	cmd.Flags().String("xlsx", "", "Write results to an XLSX workbook")
	cmd.Flags().String("db", "", "Write results to a SQLite database")
	cmd.Flags().Lookup("db").NoOptDefVal = config.DefaultDBPath()
	cmd.Flags().String("encoding", "utf-8", "CSV encoding: utf-8 or windows-1251")
}

// newLogger creates the logger for a command.
func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	return log.NewLogger(cmd.ErrOrStderr(), cfg.Verbose, cfg.JSONLog)
}

// openStore loads the crawl state with the configured dedup policy.
func openStore(cfg *config.Config, logger *slog.Logger) (*state.Store, error) {
	dedup, err := cfg.DedupPolicy()
	if err != nil {
		return nil, err
	}
	store, err := state.LoadOrCreate(cfg.StatePath,
		state.WithDedupPolicy(dedup),
		state.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load crawl state: %w", err)
	}
	return store, nil
}

// buildPlan turns the configuration file into a crawl plan.
func buildPlan(f *config.File) (pipeline.Plan, error) {
	subs, err := f.SubcorpusList()
	if err != nil {
		return pipeline.Plan{}, err
	}
	plan := pipeline.Plan{
		Verbs:    f.MorphVerbs(),
		Prefixes: f.PrefixTable(),
		Endings:  f.EndingTable(),
	}
	for _, sub := range subs {
		gramms, err := f.GrammsFor(sub)
		if err != nil {
			return pipeline.Plan{}, err
		}
		o, err := f.Overrides(sub)
		if err != nil {
			return pipeline.Plan{}, err
		}
		plan.Targets = append(plan.Targets, pipeline.Target{Subcorpus: sub, Gramms: gramms, Overrides: o})
	}
	return plan, nil
}

// Run kinds recorded in the database run log.
const (
	runKindCrawl  = "crawl"
	runKindExport = "export"
)

// outputs are the result sinks of one command run.
type outputs struct {
	sink  *report.MultiSink
	db    *database.ResultDB
	runID string
}

// openOutputs opens every configured sink. kind names the run in the
// database run log. A crawl appends to an existing CSV export so that the
// rows of earlier runs survive a resume; an export rewrites it.
func openOutputs(ctx context.Context, cfg *config.Config, kind string, logger *slog.Logger) (*outputs, error) {
	var sinks []report.Sink
	closeAll := func() {
		_ = report.NewMultiSink(sinks...).Close() //nolint:errcheck // already failing
	}

	if cfg.CSVPath != "" {
		enc, err := cfg.Encoding()
		if err != nil {
			return nil, err
		}
		create := report.CreateCSVSink
		if kind == runKindCrawl {
			create = report.AppendCSVSink
		}
		s, err := create(cfg.CSVPath, report.WithEncoding(enc), report.WithSinkLogger(logger))
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, s)
	}
	if cfg.XLSXPath != "" {
		s, err := report.NewXLSXSink(cfg.XLSXPath, logger)
		if err != nil {
			closeAll()
			return nil, err
		}
		sinks = append(sinks, s)
	}

	out := &outputs{}
	if cfg.DBPath != "" {
		db, err := database.Open(cfg.DBPath, database.DefaultOptions())
		if err != nil {
			closeAll()
			return nil, err
		}
		runID, err := db.StartRun(ctx, kind, cfg.StatePath)
		if err != nil {
			_ = db.Close() //nolint:errcheck // already failing
			closeAll()
			return nil, err
		}
		out.db = db
		out.runID = runID
		// The database is closed by finish, after the run is recorded.
		sinks = append(sinks, report.NewDBSink(db, runID, false))
		logger.Debug("database opened", "path", cfg.DBPath, "run", runID)
	}

	out.sink = report.NewMultiSink(sinks...)
	return out, nil
}

// finish records the run in the database and closes every sink.
func (o *outputs) finish(ctx context.Context, done, failed, records int) error {
	var errs []error
	if o.db != nil {
		errs = append(errs, o.db.FinishRun(ctx, o.runID, done, failed, records))
	}
	errs = append(errs, o.sink.Close())
	if o.db != nil {
		errs = append(errs, o.db.Close())
	}
	return errors.Join(errs...)
}

// resultSink returns the sink to notify, or nil when there is none.
func (o *outputs) resultSink() report.Sink {
	if o.sink.Len() == 0 {
		return nil
	}
	return o.sink
}
