package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/verbcrawl/internal/model"
	"github.com/nao1215/verbcrawl/internal/query"
)

// Job is one query to crawl.
type Job struct {
	// Address is the query address without the page parameter.
	Address string

	// StartPage is the first page to fetch; non-zero when resuming.
	StartPage int

	// Template carries the fields shared by every record of the query
	// (subcorpus, base verb, lemma, category, prefix and suffix).
	Template model.ResultRecord
}

// PageFunc receives the records of each fetched page as soon as the page
// is parsed. Returning an error stops the crawl.
type PageFunc func(page int, records []model.ResultRecord) error

// Paginator crawls every results page of a query.
type Paginator struct {
	fetcher  PageFetcher
	retry    RetryPolicy
	throttle *Throttle
	logger   *slog.Logger
}

// PaginatorOption configures a Paginator.
type PaginatorOption func(*Paginator)

// WithRetryPolicy sets the retry policy.
func WithRetryPolicy(policy RetryPolicy) PaginatorOption {
	return func(p *Paginator) {
		p.retry = policy
	}
}

// WithThrottle sets the request throttle.
func WithThrottle(t *Throttle) PaginatorOption {
	return func(p *Paginator) {
		p.throttle = t
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) PaginatorOption {
	return func(p *Paginator) {
		p.logger = logger
	}
}

// NewPaginator returns a Paginator using fetcher.
func NewPaginator(fetcher PageFetcher, opts ...PaginatorOption) *Paginator {
	p := &Paginator{
		fetcher: fetcher,
		retry:   DefaultRetryPolicy(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Crawl fetches job's pages starting at job.StartPage and stops at the
// first exhausted page. Records of every page are passed to onPage before
// the next page is requested, and are also returned in page order.
//
// On a fetch failure that survives the retry policy, Crawl returns the
// records gathered so far together with the error.
func (p *Paginator) Crawl(ctx context.Context, job Job, onPage PageFunc) ([]model.ResultRecord, error) {
	var records []model.ResultRecord

	for page := max(job.StartPage, 0); ; page++ {
		address := query.PageAddress(job.Address, page)

		result, err := p.fetch(ctx, address)
		if err != nil {
			return records, fmt.Errorf("page %d: %w", page, err)
		}
		if result.Exhausted {
			p.logger.Debug("listing exhausted", "url", address, "page", page)
			return records, nil
		}

		pageRecords := ToRecords(job.Template, page, result.Entries)
		p.logger.Debug("page crawled",
			"lemma", job.Template.Lemma,
			"page", page,
			"entries", len(pageRecords),
		)
		if onPage != nil {
			if err := onPage(page, pageRecords); err != nil {
				return records, fmt.Errorf("page %d: %w", page, err)
			}
		}
		records = append(records, pageRecords...)
	}
}

// fetch requests one page under the throttle and retry policy.
func (p *Paginator) fetch(ctx context.Context, address string) (Page, error) {
	var page Page
	err := p.retry.Do(ctx, func(ctx context.Context) error {
		if err := p.throttle.Wait(ctx); err != nil {
			return err
		}
		var err error
		page, err = p.fetcher.Fetch(ctx, address)
		return err
	}, func(attempt int, delay time.Duration, err error) {
		p.logger.Warn("fetch failed, retrying",
			"url", address,
			"attempt", attempt,
			"delay", delay,
			"error", err,
		)
	})
	return page, err
}

// ToRecords converts listing entries into records tagged with page and
// their position on it.
func ToRecords(template model.ResultRecord, page int, entries []Entry) []model.ResultRecord {
	records := make([]model.ResultRecord, 0, len(entries))
	for i, e := range entries {
		r := template
		r.Source = model.ParseSource(e.Name)
		r.Tokens = model.ParseTokenCount(e.Examples, e.Name)
		r.PageIndex = page
		r.EntryIndex = i
		records = append(records, r)
	}
	return records
}
