package config

import (
	"fmt"
	"time"

	"github.com/nao1215/verbcrawl/internal/model"
	"github.com/nao1215/verbcrawl/internal/morph"
	"github.com/nao1215/verbcrawl/internal/query"
)

// VerbEntry is one base verb in the configuration file.
type VerbEntry struct {
	// Root is the simplex verb, e.g. "драть".
	Root string `yaml:"root"`

	// Suffix is an optional suffix marker such as "-yva-".
	Suffix string `yaml:"suffix,omitempty"`

	// Reflexive and Secondary tag every form of the verb.
	Reflexive bool `yaml:"reflexive,omitempty"`
	Secondary bool `yaml:"secondary,omitempty"`

	// Stems switches the verb to stem/ending generation.
	Stems morph.Stems `yaml:"stems,omitempty"`
}

// Verb converts the entry into generator input.
func (e VerbEntry) Verb() morph.Verb {
	suffix := model.None()
	if e.Suffix != "" {
		suffix = model.Some(e.Suffix)
	}
	return morph.Verb{
		Root:      e.Root,
		Suffix:    suffix,
		Reflexive: e.Reflexive,
		Secondary: e.Secondary,
		Stems:     e.Stems,
	}
}

// RetrySettings mirrors crawler.RetryPolicy in the configuration file.
type RetrySettings struct {
	MaxAttempts int           `yaml:"maxAttempts,omitempty"`
	BaseDelay   time.Duration `yaml:"baseDelay,omitempty"`
	MaxDelay    time.Duration `yaml:"maxDelay,omitempty"`
	Multiplier  float64       `yaml:"multiplier,omitempty"`
}

// CrawlSettings holds politeness and transport settings.
type CrawlSettings struct {
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// MinDelay and Jitter are pointers so that an explicit zero disables
	// throttling.
	MinDelay *time.Duration `yaml:"minDelay,omitempty"`
	Jitter   *time.Duration `yaml:"jitter,omitempty"`

	Workers   int           `yaml:"workers,omitempty"`
	Proxy     string        `yaml:"proxy,omitempty"`
	UserAgent string        `yaml:"userAgent,omitempty"`
	Retry     RetrySettings `yaml:"retry,omitempty"`
}

// File represents the structure of the .verbcrawl configuration file.
type File struct {
	// Verbs are the base verbs to expand and crawl.
	Verbs []VerbEntry `yaml:"verbs"`

	// Prefixes replaces the built-in prefix table when non-empty.
	Prefixes model.RuleTable `yaml:"prefixes,omitempty"`

	// Endings replaces the built-in endings used in stem/ending mode.
	Endings *morph.Endings `yaml:"endings,omitempty"`

	// Subcorpora limits the crawl to the named subcorpora. All of them are
	// crawled when omitted.
	Subcorpora []string `yaml:"subcorpora,omitempty"`

	// Gramms replaces the grammatical categories queried per subcorpus,
	// keyed by subcorpus name.
	Gramms map[string][]string `yaml:"gramms,omitempty"`

	// EndYear restricts subcorpora that support it to documents created
	// up to the year.
	EndYear *int `yaml:"endYear,omitempty"`

	// Params adds or replaces query parameters per subcorpus.
	Params map[string][]query.Param `yaml:"params,omitempty"`

	Crawl CrawlSettings `yaml:"crawl,omitempty"`

	// Dedup is "tag" (default) or "surface".
	Dedup string `yaml:"dedup,omitempty"`

	// Encoding is the CSV encoding.
	Encoding string `yaml:"encoding,omitempty"`

	// State and Database override the default file locations.
	State    string `yaml:"state,omitempty"`
	Database string `yaml:"database,omitempty"`
}

// MorphVerbs returns generator input for every configured verb.
func (f *File) MorphVerbs() []morph.Verb {
	out := make([]morph.Verb, len(f.Verbs))
	for i, e := range f.Verbs {
		out[i] = e.Verb()
	}
	return out
}

// PrefixTable returns the configured prefix table, or the built-in one.
func (f *File) PrefixTable() model.RuleTable {
	if len(f.Prefixes) > 0 {
		return f.Prefixes.Clone()
	}
	return morph.DefaultPrefixes()
}

// EndingTable returns the configured endings, or the built-in ones.
func (f *File) EndingTable() morph.Endings {
	if f.Endings != nil {
		return *f.Endings
	}
	return morph.DefaultEndings()
}

// SubcorpusList returns the subcorpora to crawl in canonical order.
func (f *File) SubcorpusList() ([]model.Subcorpus, error) {
	if f.Subcorpora == nil {
		return model.AllSubcorpora(), nil
	}
	if len(f.Subcorpora) == 0 {
		return nil, ErrNoSubcorpora
	}
	want := make(map[model.Subcorpus]bool, len(f.Subcorpora))
	for _, name := range f.Subcorpora {
		sub, err := model.ParseSubcorpus(name)
		if err != nil {
			return nil, err
		}
		want[sub] = true
	}
	out := make([]model.Subcorpus, 0, len(want))
	for _, sub := range model.AllSubcorpora() {
		if want[sub] {
			out = append(out, sub)
		}
	}
	return out, nil
}

// GrammsFor returns the grammatical categories to query in sub. A dialect
// without a category parameter always yields the single empty category.
func (f *File) GrammsFor(sub model.Subcorpus) ([]string, error) {
	d, err := query.DialectFor(sub)
	if err != nil {
		return nil, err
	}
	if d.GrammParam == "" {
		return []string{""}, nil
	}
	for name, gramms := range f.Gramms {
		s, err := model.ParseSubcorpus(name)
		if err != nil {
			return nil, err
		}
		if s == sub && len(gramms) > 0 {
			return append([]string(nil), gramms...), nil
		}
	}
	return d.Gramms, nil
}

// Overrides returns the base query overrides for sub. The caller fills in
// the lexeme and category.
func (f *File) Overrides(sub model.Subcorpus) (query.Overrides, error) {
	d, err := query.DialectFor(sub)
	if err != nil {
		return query.Overrides{}, err
	}
	var o query.Overrides
	if f.EndYear != nil && d.SupportsEndYear() {
		year := *f.EndYear
		o.EndYear = &year
	}
	for name, params := range f.Params {
		s, err := model.ParseSubcorpus(name)
		if err != nil {
			return query.Overrides{}, err
		}
		if s == sub {
			o.Params = append(o.Params, params...)
		}
	}
	return o, nil
}

// Validate checks the file contents. An empty verb list is valid here;
// commands that crawl check it with RequireVerbs.
func (f *File) Validate() error {
	for i, e := range f.Verbs {
		if e.Root == "" {
			return fmt.Errorf("verb %d: %w", i+1, ErrEmptyRoot)
		}
	}
	if len(f.Prefixes) > 0 {
		if err := f.Prefixes.Validate(); err != nil {
			return fmt.Errorf("invalid prefix table: %w", err)
		}
	}
	subs, err := f.SubcorpusList()
	if err != nil {
		return err
	}
	for name := range f.Gramms {
		if _, err := model.ParseSubcorpus(name); err != nil {
			return fmt.Errorf("invalid gramms entry: %w", err)
		}
	}
	// Building one query per subcorpus checks the end year and extra params.
	for _, sub := range subs {
		o, err := f.Overrides(sub)
		if err != nil {
			return err
		}
		if _, err := query.Build(sub, o); err != nil {
			return fmt.Errorf("invalid query settings for %s: %w", sub, err)
		}
	}
	return nil
}

// RequireVerbs returns ErrNoVerbs when the file lists no verbs.
func (f *File) RequireVerbs() error {
	if len(f.Verbs) == 0 {
		return ErrNoVerbs
	}
	return nil
}
