package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nao1215/verbcrawl/internal/model"
)

// Base addresses of the two search hosts.
const (
	// BetaAddress serves the Ancient and Old subcorpora.
	BetaAddress = "http://search-beta.ruscorpora.ru/search.xml?"

	// MainAddress serves the Modern subcorpus.
	MainAddress = "http://search.ruscorpora.ru/search.xml?"
)

// Param is one key=value pair of a query.
type Param struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

// Dialect describes how one subcorpus is queried.
type Dialect struct {
	// Subcorpus is the partition this dialect addresses.
	Subcorpus model.Subcorpus

	// BaseAddress is the search endpoint including the trailing "?".
	BaseAddress string

	// Defaults are the parameters every query starts from, in wire order.
	Defaults []Param

	// WordParam receives the searched lemma or word form.
	WordParam string

	// WordForms is true when WordParam takes an exact word form. Such a
	// dialect is sent stem/ending forms and never bare lemmas.
	WordForms bool

	// GrammParam receives the grammatical category. Empty when the
	// subcorpus is searched by exact word form only.
	GrammParam string

	// EndYear is the parameter block that restricts results to documents
	// created up to a year. Nil when the subcorpus has no such constraint.
	EndYear func(year int) []Param

	// Gramms are the grammatical categories searched by default.
	Gramms []string
}

// SupportsEndYear reports whether the dialect accepts an end year.
func (d Dialect) SupportsEndYear() bool {
	return d.EndYear != nil
}

// dialects holds the built-in dialect of every subcorpus.
var dialects = map[model.Subcorpus]Dialect{
	model.Ancient: {
		Subcorpus:   model.Ancient,
		BaseAddress: BetaAddress,
		Defaults: []Param{
			{"mode", "old_rus"},
			{"text", "lexgramm"},
			{"doc_docid", "0|13|2|3|1|4|7|8|10|12|5|11|9|6"},
			{"parent1", "0"},
			{"level1", "0"},
			{"lexi1", ""},
			{"gramm1", ""},
			{"parent2", "0"},
			{"level2", "0"},
			{"min2", "1"},
			{"max2", "1"},
		},
		WordParam:  "lexi1",
		GrammParam: "gramm1",
		Gramms:     []string{"iperf", "aor", "perf", "past"},
	},
	model.Old: {
		Subcorpus:   model.Old,
		BaseAddress: BetaAddress,
		Defaults: []Param{
			{"env", "alpha"},
			{"mode", "mid_rus"},
			{"text", "lexform"},
			{"sort", "gr_created"},
			{"lang", "ru"},
			{"mycorp", ""},
			{"mysent", ""},
			{"mysize", ""},
			{"mysentsize", ""},
			{"mydocsize", ""},
			{"dpp", ""},
			{"spp", ""},
			{"spd", ""},
			{"req", ""},
		},
		WordParam: "req",
		WordForms: true,
		EndYear:   midRusEndYear,
		Gramms:    []string{""},
	},
	model.Modern: {
		Subcorpus:   model.Modern,
		BaseAddress: MainAddress,
		Defaults: []Param{
			{"mycorp", ""},
			{"mysent", ""},
			{"mysize", ""},
			{"dpp", ""},
			{"spp", ""},
			{"spd", ""},
			{"text", "lexgramm"},
			{"mode", "main"},
			{"sort", "gr_tagging"},
			{"lang", "en"},
			{"parent1", "0"},
			{"level1", "0"},
			{"lex1", ""},
			{"gramm1", ""},
			{"sem1", ""},
			{"flags1", ""},
			{"sem-mod1", ""},
			{"parent2", "0"},
			{"level2", "0"},
			{"min2", "1"},
			{"max2", "1"},
			{"lex2", ""},
			{"gramm2", ""},
			{"sem2", ""},
			{"flags2", ""},
			{"sem-mod2", ""},
		},
		WordParam:  "lex1",
		GrammParam: "gramm1",
		Gramms:     []string{"praet"},
	},
}

// Size constants of the Middle Russian subcorpus sent with a date
// constraint. The service rejects a custom sub-corpus without them.
const (
	midRusSentences = "367133"
	midRusWords     = "5861521"
	midRusDocuments = "1062"
)

// midRusDateExpr is the pre-encoded sub-corpus expression
// ((created:<="Y")) with YEAR standing for the cutoff year.
const midRusDateExpr = "%28%28created%3A%3C%3D%22YEAR%22%29%29"

func midRusEndYear(year int) []Param {
	return []Param{
		{"mycorp", strings.Replace(midRusDateExpr, "YEAR", strconv.Itoa(year), 1)},
		{"mysent", midRusSentences},
		{"mysize", midRusWords},
		{"mysentsize", midRusSentences},
		{"mydocsize", midRusDocuments},
		{"lang", "ru"},
	}
}

// DialectFor returns a copy of the built-in dialect of sub.
func DialectFor(sub model.Subcorpus) (Dialect, error) {
	d, ok := dialects[sub]
	if !ok {
		return Dialect{}, fmt.Errorf("%w: %d", model.ErrUnknownSubcorpus, int(sub))
	}
	d.Defaults = append([]Param(nil), d.Defaults...)
	d.Gramms = append([]string(nil), d.Gramms...)
	return d, nil
}
