package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/verbcrawl/internal/config"
	"github.com/nao1215/verbcrawl/internal/crawler"
	"github.com/nao1215/verbcrawl/internal/pipeline"
	"github.com/nao1215/verbcrawl/internal/state"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [root...]",
		Short: "Start or resume the crawl",
		Long: `Crawl expands the configured verbs into prefixed forms, adds a query per form,
subcorpus and grammatical category to the crawl state, and fetches every
results page of every pending query.

The state file is saved after each page. Interrupt with Ctrl-C and run the
same command again to resume; completed queries are never fetched twice.

Roots given as arguments restrict the crawl to those verbs. A root missing
from the configuration file is crawled with default settings.

With --csv, rows of newly fetched pages are appended to an existing export
that starts with the result header, so a resumed crawl keeps the rows of
earlier runs. Use "verbcrawl export" to rewrite a complete file.

Examples:
  # Crawl every verb in .verbcrawl
  verbcrawl crawl

  # Crawl one verb and export the results
  verbcrawl crawl драть --csv drat.csv --encoding windows-1251

  # Crawl through a SOCKS5 proxy with two workers
  verbcrawl crawl --proxy socks5://127.0.0.1:9050 --workers 2`,
		RunE: runCrawlCmd,
	}

	addOutputFlags(cmd)
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers, "Number of queries crawled at once")
	cmd.Flags().Duration("timeout", config.DefaultTimeout, "Per-request timeout")
	cmd.Flags().Duration("min-delay", config.DefaultMinDelay, "Minimum interval between requests")
	cmd.Flags().Duration("jitter", config.DefaultJitter, "Maximum random delay added to each request")
	cmd.Flags().String("proxy", "", "Proxy URL (http, https, socks5 or socks5h)")
	cmd.Flags().String("user-agent", crawler.DefaultUserAgent, "User-Agent header")
	cmd.Flags().Int("max-attempts", crawler.DefaultRetryPolicy().MaxAttempts, "Attempts per page before a query fails")
	cmd.Flags().String("dedup", state.DedupByTag.String(), "Form deduplication: tag or surface")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyCrawlFlags(cmd, cfg); err != nil {
		return err
	}
	if err := applyOutputFlags(cmd, cfg); err != nil {
		return err
	}
	selectRoots(cfg.File, args)
	if err := cfg.File.RequireVerbs(); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(cmd, cfg)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// The first signal stops the crawl after the running queries; a second
	// one exits at once. Every fetched page is already saved.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})
	defer func() {
		signal.Stop(sigCh)
		close(done)
	}()
	go func() {
		select {
		case <-sigCh:
		case <-done:
			return
		}
		logger.Info("received shutdown signal, finishing current queries...")
		cancel()
		select {
		case <-sigCh:
		case <-done:
			return
		}
		logger.Warn("received second signal, exiting")
		os.Exit(130)
	}()

	summary, err := runCrawl(ctx, cfg, logger)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			printCrawlSummary(cmd, cfg, summary, true)
			return nil
		}
		return err
	}
	printCrawlSummary(cmd, cfg, summary, false)
	return nil
}

// applyCrawlFlags copies the crawl flags the user set over cfg.
func applyCrawlFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error
	if flags.Changed("workers") {
		if cfg.Workers, err = flags.GetInt("workers"); err != nil {
			return err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return err
		}
	}
	if flags.Changed("min-delay") {
		if cfg.MinDelay, err = flags.GetDuration("min-delay"); err != nil {
			return err
		}
	}
	if flags.Changed("jitter") {
		if cfg.Jitter, err = flags.GetDuration("jitter"); err != nil {
			return err
		}
	}
	if flags.Changed("proxy") {
		if cfg.Proxy, err = flags.GetString("proxy"); err != nil {
			return err
		}
	}
	if flags.Changed("user-agent") {
		if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
			return err
		}
	}
	if flags.Changed("max-attempts") {
		if cfg.Retry.MaxAttempts, err = flags.GetInt("max-attempts"); err != nil {
			return err
		}
	}
	if flags.Changed("dedup") {
		if cfg.Dedup, err = flags.GetString("dedup"); err != nil {
			return err
		}
	}
	return nil
}

// selectRoots restricts f to the given roots. Roots missing from f are
// added with default settings.
func selectRoots(f *config.File, roots []string) {
	if len(roots) == 0 {
		return
	}
	var selected []config.VerbEntry
	for _, root := range roots {
		i := slices.IndexFunc(f.Verbs, func(e config.VerbEntry) bool { return e.Root == root })
		if i >= 0 {
			selected = append(selected, f.Verbs[i])
			continue
		}
		selected = append(selected, config.VerbEntry{Root: root})
	}
	f.Verbs = selected
}

// runCrawl expands the plan into the state and runs every pending query.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) (pipeline.Summary, error) {
	plan, err := buildPlan(cfg.File)
	if err != nil {
		return pipeline.Summary{}, err
	}

	store, err := openStore(cfg, logger)
	if err != nil {
		return pipeline.Summary{}, err
	}

	planned, err := pipeline.Expand(store, plan, logger)
	if err != nil {
		return pipeline.Summary{}, err
	}
	if err := store.Persist(); err != nil {
		return pipeline.Summary{}, fmt.Errorf("failed to persist crawl state: %w", err)
	}
	logger.Info("crawl plan ready",
		"verbs", planned.BaseVerbs,
		"forms", planned.Forms,
		"queries", planned.Queries,
		"pending", planned.Pending,
	)

	client, err := crawler.NewHTTPClient(cfg.Proxy, cfg.Timeout)
	if err != nil {
		return pipeline.Summary{}, err
	}
	fetcher := crawler.NewHTTPFetcher(client,
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithFetcherLogger(logger),
	)
	paginator := crawler.NewPaginator(fetcher,
		crawler.WithRetryPolicy(cfg.Retry),
		crawler.WithThrottle(crawler.NewThrottle(cfg.MinDelay, cfg.Jitter)),
		crawler.WithLogger(logger),
	)

	// Results are exported even when the crawl is interrupted.
	out, err := openOutputs(context.WithoutCancel(ctx), cfg, runKindCrawl, logger)
	if err != nil {
		return pipeline.Summary{}, err
	}
	sink := out.resultSink()

	driver := pipeline.NewDriver(store,
		func() *pipeline.Pipeline {
			return pipeline.NewQueryPipeline(store, paginator, sink, logger)
		},
		pipeline.WithWorkers(cfg.Workers),
		pipeline.WithDriverLogger(logger),
	)

	summary, runErr := driver.Run(ctx)
	if err := out.finish(context.WithoutCancel(ctx), summary.Done, summary.Failed, summary.Records); err != nil {
		return summary, errors.Join(runErr, fmt.Errorf("failed to close outputs: %w", err))
	}
	return summary, runErr
}

// printCrawlSummary prints the outcome of a crawl.
func printCrawlSummary(cmd *cobra.Command, cfg *config.Config, s pipeline.Summary, interrupted bool) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Queries: %d done, %d failed, %d skipped\n", s.Done, s.Failed, s.Skipped)
	fmt.Fprintf(out, "Records: %d fetched, %d exported\n", s.Records, s.Exported)
	fmt.Fprintf(out, "Elapsed: %s\n", s.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(out, "State:   %s\n", cfg.StatePath)
	switch {
	case interrupted:
		fmt.Fprintln(out, "Crawl interrupted. Run the same command again to resume.")
	case s.Failed > 0:
		fmt.Fprintf(out, "%d queries failed and stay pending. Run the same command again to retry them.\n", s.Failed)
	}
}
