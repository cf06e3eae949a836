package state

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/nao1215/verbcrawl/internal/model"
	"github.com/nao1215/verbcrawl/internal/query"
)

// DedupPolicy decides when two derived forms share one node.
type DedupPolicy int

const (
	// DedupByTag keys derived forms by spelling plus prefix, suffix and
	// flags, so one spelling produced by two rules gets two nodes.
	DedupByTag DedupPolicy = iota

	// DedupBySurface keys derived forms by spelling alone. The first rule
	// that produced a spelling owns its node and the spelling is queried
	// once.
	DedupBySurface
)

// String returns the policy name used in configuration files.
func (p DedupPolicy) String() string {
	if p == DedupBySurface {
		return "surface"
	}
	return "tag"
}

// ParseDedupPolicy parses "tag" or "surface".
func ParseDedupPolicy(s string) (DedupPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "tag":
		return DedupByTag, nil
	case "surface":
		return DedupBySurface, nil
	default:
		return DedupByTag, fmt.Errorf("%w: %q", ErrUnknownDedupPolicy, s)
	}
}

// Store is the in-memory crawl tree bound to a file.
type Store struct {
	path   string
	dedup  DedupPolicy
	logger *slog.Logger
	now    func() time.Time

	// mu guards doc, the lookup maps and claimed.
	mu      sync.Mutex
	doc     *document
	bases   map[string]*BaseVerb
	derived map[*BaseVerb]map[model.FormKey]*DerivedVerb
	claimed map[*Query]struct{}

	// persistMu serializes writes of the file.
	persistMu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithDedupPolicy sets the derived-form dedup policy.
func WithDedupPolicy(p DedupPolicy) Option {
	return func(s *Store) {
		s.dedup = p
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithClock sets the clock used for creation stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New returns an empty store that persists to path.
func New(path string, opts ...Option) *Store {
	s := &Store{
		path:    path,
		dedup:   DedupByTag,
		logger:  slog.Default(),
		now:     time.Now,
		doc:     &document{},
		bases:   make(map[string]*BaseVerb),
		derived: make(map[*BaseVerb]map[model.FormKey]*DerivedVerb),
		claimed: make(map[*Query]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadOrCreate reads the crawl tree from path. A missing or empty file
// gives an empty tree. A file that cannot be read or parsed also gives an
// empty tree, but it is first renamed to path.unreadable-<timestamp> or
// path.corrupt-<timestamp> so that the next Persist does not overwrite it.
// An error is returned only when the file cannot be moved aside.
func LoadOrCreate(path string, opts ...Option) (*Store, error) {
	s := New(path, opts...)

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		backup, moveErr := s.moveAside("unreadable")
		if moveErr != nil {
			return nil, fmt.Errorf("failed to move unreadable crawl state aside: %w (read error: %w)", moveErr, err)
		}
		s.logger.Warn("cannot read crawl state, starting fresh",
			"path", path,
			"backup", backup,
			"error", err,
		)
		return s, nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return s, nil
	}

	doc := &document{}
	if err := xml.Unmarshal(data, doc); err != nil {
		backup, moveErr := s.moveAside("corrupt")
		if moveErr != nil {
			return nil, fmt.Errorf("failed to move corrupt crawl state aside: %w", moveErr)
		}
		s.logger.Warn("crawl state is corrupt, starting fresh",
			"path", path,
			"backup", backup,
			"error", err,
		)
		return s, nil
	}

	s.doc = doc
	s.index()
	return s, nil
}

// moveAside renames the state file to path.<reason>-<timestamp> and
// returns the new name.
func (s *Store) moveAside(reason string) (string, error) {
	backup := fmt.Sprintf("%s.%s-%s", s.path, reason, s.now().Format("20060102-150405"))
	if err := os.Rename(s.path, backup); err != nil {
		return "", err
	}
	return backup, nil
}

// index links parents and rebuilds the lookup maps after a load.
func (s *Store) index() {
	for _, b := range s.doc.BaseVerbs {
		s.bases[b.Simplex] = b
		forms := make(map[model.FormKey]*DerivedVerb, len(b.Derived))
		for _, d := range b.Derived {
			d.base = b
			key := s.formKey(d.Form())
			if _, dup := forms[key]; !dup {
				forms[key] = d
			}
			for _, q := range d.Queries {
				q.derived = d
				q.numberEntries()
			}
		}
		s.derived[b] = forms
	}
}

func (s *Store) formKey(f model.DerivedForm) model.FormKey {
	if s.dedup == DedupBySurface {
		return model.FormKey{Surface: f.Surface}
	}
	return f.Key()
}

// Path returns the file the store persists to.
func (s *Store) Path() string {
	return s.path
}

// EnsureBaseVerb returns the node of simplex, creating it if needed.
func (s *Store) EnsureBaseVerb(simplex string) *BaseVerb {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.bases[simplex]; ok {
		return b
	}
	b := &BaseVerb{
		Idx:     len(s.doc.BaseVerbs) + 1,
		Simplex: simplex,
		Stamp:   newStamp(s.now()),
	}
	s.doc.BaseVerbs = append(s.doc.BaseVerbs, b)
	s.bases[simplex] = b
	s.derived[b] = make(map[model.FormKey]*DerivedVerb)
	return b
}

// EnsureDerivedForm returns the node of f under base, creating it if
// needed. Identity follows the store's DedupPolicy.
func (s *Store) EnsureDerivedForm(base *BaseVerb, f model.DerivedForm) (*DerivedVerb, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	forms, ok := s.derived[base]
	if !ok {
		return nil, ErrUnknownNode
	}
	key := s.formKey(f)
	if d, ok := forms[key]; ok {
		return d, nil
	}

	d := newDerivedVerb(len(base.Derived)+1, f, newStamp(s.now()))
	d.base = base
	base.Derived = append(base.Derived, d)
	forms[key] = d
	return d, nil
}

// EnsureQuery returns the query of derived for q's subcorpus and
// grammatical category, creating it if needed. An existing query keeps
// its stored address.
func (s *Store) EnsureQuery(derived *DerivedVerb, q query.SubcorpusQuery) (*Query, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if derived == nil || derived.base == nil || s.derived[derived.base] == nil {
		return nil, ErrUnknownNode
	}
	for _, existing := range derived.Queries {
		if existing.Subcorpus == q.Subcorpus() && existing.Gramm == q.Gramm() {
			return existing, nil
		}
	}

	node := &Query{
		Subcorpus: q.Subcorpus(),
		Gramm:     q.Gramm(),
		Address:   q.Address(),
		Stamp:     newStamp(s.now()),
		derived:   derived,
	}
	derived.Queries = append(derived.Queries, node)
	return node, nil
}

// AppendPage adds the records of one results page to a pending query and
// advances its next page. Pages below the next page are already stored
// and are ignored.
func (s *Store) AppendPage(q *Query, page int, records []model.ResultRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if q == nil || q.derived == nil {
		return ErrUnknownNode
	}
	if q.Successful {
		return ErrAlreadyDone
	}
	if page < q.NextPage {
		return nil
	}
	for _, r := range records {
		q.Results = append(q.Results, newResult(r))
	}
	q.numberEntries()
	q.NextPage = page + 1
	return nil
}

// MarkDone appends the records not yet stored (those on pages at or after
// the next page) and marks q done in one step. Marking a done query again
// is a no-op.
func (s *Store) MarkDone(q *Query, records []model.ResultRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if q == nil || q.derived == nil {
		return ErrUnknownNode
	}
	if q.Successful {
		return nil
	}

	next := q.NextPage
	for _, r := range records {
		if r.PageIndex < next {
			continue
		}
		q.Results = append(q.Results, newResult(r))
		q.NextPage = max(q.NextPage, r.PageIndex+1)
	}
	q.numberEntries()
	q.Successful = true
	delete(s.claimed, q)
	return nil
}

// IsDone reports whether q is marked done.
func (s *Store) IsDone(q *Query) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return q != nil && q.Successful
}

// NextPage returns the first page of q not yet stored.
func (s *Store) NextPage(q *Query) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if q == nil {
		return 0
	}
	return q.NextPage
}

// Claim reserves a pending query for the caller. It returns false when q
// is done or already claimed.
func (s *Store) Claim(q *Query) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if q == nil || q.Successful {
		return false
	}
	if _, taken := s.claimed[q]; taken {
		return false
	}
	s.claimed[q] = struct{}{}
	return true
}

// Release gives up a claim, leaving q pending.
func (s *Store) Release(q *Query) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.claimed, q)
}

// Persist writes the whole tree to a temporary file next to the store's
// path, syncs it and renames it over the path. Concurrent calls are
// serialized.
func (s *Store) Persist() error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	data, err := xml.MarshalIndent(s.doc, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to encode crawl state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary state file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// No-op after a successful rename.
		_ = os.Remove(tmpName) //nolint:errcheck
	}()

	if _, err := tmp.WriteString(xml.Header); err != nil {
		_ = tmp.Close() //nolint:errcheck
		return fmt.Errorf("failed to write crawl state: %w", err)
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close() //nolint:errcheck
		return fmt.Errorf("failed to write crawl state: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close() //nolint:errcheck
		return fmt.Errorf("failed to sync crawl state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close crawl state: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace crawl state: %w", err)
	}
	return nil
}
