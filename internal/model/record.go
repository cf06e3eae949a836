package model

import "strconv"

// ExportHeader is the column header of every tabular export. Downstream
// analysis tooling depends on the names and their order.
var ExportHeader = []string{
	"Subcorpus",
	"BaseVerb",
	"Lemma",
	"GrammaticalForm",
	"PrefixValue",
	"Prefix",
	"SuffixValue",
	"Suffix",
	"SourceName",
	"SourceDateBegin",
	"SourceDateMiddle",
	"SourceDateEnd",
	"NumberOfTokens",
	"ResultsPageIndex",
}

// Presence flags written to the PrefixValue and SuffixValue columns.
const (
	YesPrefix = "yesPrefix"
	NoPrefix  = "noPrefix"
	YesSuffix = "yesSuffix"
	NoSuffix  = "noSuffix"
)

// ResultRecord is one source-listing entry found for one query.
//
// Reflexive, Secondary and EntryIndex are not export columns. They complete
// the record's identity: the flags tell apart forms spelled alike, and
// EntryIndex is the entry's position on its results page, since one page
// may list several sources with the same name.
type ResultRecord struct {
	Subcorpus  Subcorpus
	BaseVerb   string
	Lemma      string
	Gramm      string
	Prefix     Marker
	Suffix     Marker
	Reflexive  bool
	Secondary  bool
	Source     Source
	Tokens     int
	PageIndex  int
	EntryIndex int
}

// PrefixValue returns YesPrefix or NoPrefix.
func (r ResultRecord) PrefixValue() string {
	if r.Prefix.Valid {
		return YesPrefix
	}
	return NoPrefix
}

// SuffixValue returns YesSuffix or NoSuffix.
func (r ResultRecord) SuffixValue() string {
	if r.Suffix.Valid {
		return YesSuffix
	}
	return NoSuffix
}

// Values returns the record's fields in ExportHeader order. Dates are
// float64 and counts are int so spreadsheet sinks can keep numeric cells.
func (r ResultRecord) Values() []any {
	return []any{
		r.Subcorpus.String(),
		r.BaseVerb,
		r.Lemma,
		r.Gramm,
		r.PrefixValue(),
		r.Prefix.String(),
		r.SuffixValue(),
		r.Suffix.String(),
		r.Source.Name,
		r.Source.DateBegin,
		r.Source.DateMiddle,
		r.Source.DateEnd,
		r.Tokens,
		r.PageIndex,
	}
}

// Strings returns the record's fields in ExportHeader order as text.
func (r ResultRecord) Strings() []string {
	return []string{
		r.Subcorpus.String(),
		r.BaseVerb,
		r.Lemma,
		r.Gramm,
		r.PrefixValue(),
		r.Prefix.String(),
		r.SuffixValue(),
		r.Suffix.String(),
		r.Source.Name,
		FormatYear(r.Source.DateBegin),
		FormatYear(r.Source.DateMiddle),
		FormatYear(r.Source.DateEnd),
		strconv.Itoa(r.Tokens),
		strconv.Itoa(r.PageIndex),
	}
}

// FormatYear formats a year without trailing zeros: 1975, 1975.5.
func FormatYear(y float64) string {
	return strconv.FormatFloat(y, 'f', -1, 64)
}
