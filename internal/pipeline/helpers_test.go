package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nao1215/verbcrawl/internal/crawler"
	"github.com/nao1215/verbcrawl/internal/model"
	"github.com/nao1215/verbcrawl/internal/morph"
	"github.com/nao1215/verbcrawl/internal/query"
	"github.com/nao1215/verbcrawl/internal/state"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedClock() time.Time {
	return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
}

// drat is the plan of the verb драть with the prefix по- in the modern
// subcorpus: two forms, two queries.
func drat() Plan {
	return Plan{
		Verbs:    []morph.Verb{{Root: "драть", Suffix: model.None()}},
		Prefixes: model.RuleTable{{ID: "po-", Variants: []string{"по"}}},
		Targets: []Target{
			{Subcorpus: model.Modern, Gramms: []string{"praet"}},
		},
	}
}

// seededStore returns a store holding one pending Modern query for подрать.
// A nil dir keeps the store in a path that is never written.
func seededStore(dir *string) (*state.Store, *state.Query) {
	path := filepath.Join(string(filepath.Separator), "nonexistent", "crawl.xml")
	if dir != nil {
		path = filepath.Join(*dir, "crawl.xml")
	}
	store := state.New(path, state.WithClock(fixedClock), state.WithLogger(discardLogger()))
	base := store.EnsureBaseVerb("драть")
	d, err := store.EnsureDerivedForm(base, model.DerivedForm{
		Root: "драть", Stem: "драть", Prefix: model.Some("po-"), PrefixVariant: "по",
		Suffix: model.None(), Surface: "подрать",
	})
	if err != nil {
		panic(err)
	}
	sq, err := query.Build(model.Modern, query.Overrides{Lexeme: "подрать", Gramm: "praet"})
	if err != nil {
		panic(err)
	}
	q, err := store.EnsureQuery(d, sq)
	if err != nil {
		panic(err)
	}
	return store, q
}

func pendingOf(store *state.Store, q *state.Query) state.Pending {
	for p := range store.Pending() {
		if p.Query == q {
			return p
		}
	}
	panic("query is not pending")
}

// pageOf returns the page index of an address built by query.PageAddress.
func pageOf(address string) int {
	i := strings.LastIndex(address, "&p=")
	if i < 0 {
		return -1
	}
	n, err := strconv.Atoi(strings.TrimSuffix(address[i+len("&p="):], "&"))
	if err != nil {
		return -1
	}
	return n
}

// lemmaOf returns the lemma of a modern-subcorpus address.
func lemmaOf(address string) string {
	_, rest, ok := strings.Cut(address, "lex1=")
	if !ok {
		return ""
	}
	lemma, _, _ := strings.Cut(rest, "&")
	return lemma
}

// stubFetcher serves a fixed number of non-empty pages per lemma, each
// with one entry, and counts requests. fail can inject errors.
type stubFetcher struct {
	mu      sync.Mutex
	pages   int
	calls   []string
	fail    func(lemma string, page int) error
	onFetch func()
}

func (f *stubFetcher) Fetch(_ context.Context, address string) (crawler.Page, error) {
	f.mu.Lock()
	f.calls = append(f.calls, address)
	f.mu.Unlock()
	if f.onFetch != nil {
		f.onFetch()
	}

	lemma, page := lemmaOf(address), pageOf(address)
	if f.fail != nil {
		if err := f.fail(lemma, page); err != nil {
			return crawler.Page{}, err
		}
	}
	if page >= f.pages {
		return crawler.Page{Exhausted: true}, nil
	}
	return crawler.Page{Entries: []crawler.Entry{{
		Name:     fmt.Sprintf("Источник %s %d (1950-2000)", lemma, page),
		Examples: "Все примеры (3)",
	}}}, nil
}

func (f *stubFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *stubFetcher) countPage(page int) map[string]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]int)
	for _, c := range f.calls {
		if pageOf(c) == page {
			out[lemmaOf(c)]++
		}
	}
	return out
}

func newPaginator(fetcher crawler.PageFetcher) *crawler.Paginator {
	return crawler.NewPaginator(fetcher,
		crawler.WithRetryPolicy(crawler.RetryPolicy{MaxAttempts: 1}),
		crawler.WithLogger(discardLogger()),
	)
}

// recordingSink stores everything written to it.
type recordingSink struct {
	mu      sync.Mutex
	records []model.ResultRecord
	err     error
}

func (s *recordingSink) Write(_ context.Context, records []model.ResultRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, records...)
	return nil
}

func (s *recordingSink) Close() error { return nil }

func (s *recordingSink) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

var errInjected = crawler.Permanent(errors.New("injected failure"))
