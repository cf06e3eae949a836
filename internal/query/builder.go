package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nao1215/verbcrawl/internal/model"
)

// Overrides are the sparse fields applied on top of a dialect's defaults.
// Zero values leave the default untouched.
type Overrides struct {
	// Lexeme is the searched lemma or word form. It is written to the
	// dialect's word parameter.
	Lexeme string

	// Gramm is the grammatical category. Ignored by dialects without a
	// category parameter.
	Gramm string

	// Request is a free-text request string sent as "req".
	Request string

	// EndYear restricts results to documents created up to the year.
	EndYear *int

	// Params are extra pairs applied last. A key that already exists is
	// replaced in place; a new key is appended.
	Params []Param
}

// SubcorpusQuery is an immutable search over one subcorpus.
type SubcorpusQuery struct {
	subcorpus model.Subcorpus
	base      string
	params    []Param
	word      string
	gramm     string
}

// Build returns the query for sub with o applied to the dialect defaults.
// The end-year block is applied whole or not at all.
func Build(sub model.Subcorpus, o Overrides) (SubcorpusQuery, error) {
	d, err := DialectFor(sub)
	if err != nil {
		return SubcorpusQuery{}, err
	}

	q := SubcorpusQuery{
		subcorpus: sub,
		base:      d.BaseAddress,
		params:    d.Defaults,
	}

	if o.EndYear != nil {
		if !d.SupportsEndYear() {
			return SubcorpusQuery{}, fmt.Errorf("%w: %s", ErrEndYearUnsupported, sub)
		}
		if *o.EndYear < 1000 || *o.EndYear > 9999 {
			return SubcorpusQuery{}, fmt.Errorf("%w: %d", ErrInvalidEndYear, *o.EndYear)
		}
	}
	for _, p := range o.Params {
		if p.Key == "" {
			return SubcorpusQuery{}, ErrEmptyParamKey
		}
	}

	if o.Lexeme != "" {
		q.set(d.WordParam, o.Lexeme)
		q.word = o.Lexeme
	}
	if o.Gramm != "" && d.GrammParam != "" {
		q.set(d.GrammParam, o.Gramm)
		q.gramm = o.Gramm
	}
	if o.Request != "" {
		q.set("req", o.Request)
		if d.WordParam == "req" {
			q.word = o.Request
		}
	}
	if o.EndYear != nil {
		for _, p := range d.EndYear(*o.EndYear) {
			q.set(p.Key, p.Value)
		}
	}
	for _, p := range o.Params {
		q.set(p.Key, p.Value)
	}
	return q, nil
}

// set replaces key in place or appends it. q.params is always a private
// copy, so set never touches the dialect table.
func (q *SubcorpusQuery) set(key, value string) {
	for i := range q.params {
		if q.params[i].Key == key {
			q.params[i].Value = value
			return
		}
	}
	q.params = append(q.params, Param{Key: key, Value: value})
}

// Subcorpus returns the subcorpus the query addresses.
func (q SubcorpusQuery) Subcorpus() model.Subcorpus {
	return q.subcorpus
}

// Base returns the base address.
func (q SubcorpusQuery) Base() string {
	return q.base
}

// Word returns the searched lemma or word form.
func (q SubcorpusQuery) Word() string {
	return q.word
}

// Gramm returns the grammatical category, or "" when none was set.
func (q SubcorpusQuery) Gramm() string {
	return q.gramm
}

// Params returns a copy of the parameters in wire order.
func (q SubcorpusQuery) Params() []Param {
	return append([]Param(nil), q.params...)
}

// Get returns the value of key.
func (q SubcorpusQuery) Get(key string) (string, bool) {
	for _, p := range q.params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Address returns the base address followed by "key=value&" for every
// parameter.
func (q SubcorpusQuery) Address() string {
	var b strings.Builder
	b.WriteString(q.base)
	for _, p := range q.params {
		b.WriteString(p.Key)
		b.WriteByte('=')
		b.WriteString(p.Value)
		b.WriteByte('&')
	}
	return b.String()
}

// PageAddress returns the address of results page p.
func (q SubcorpusQuery) PageAddress(p int) string {
	return PageAddress(q.Address(), p)
}

// PageAddress appends the page parameter to a query address.
func PageAddress(address string, p int) string {
	return address + "p=" + strconv.Itoa(p) + "&"
}
