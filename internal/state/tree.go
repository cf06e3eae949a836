package state

import (
	"encoding/xml"
	"time"

	"github.com/nao1215/verbcrawl/internal/model"
)

// Layouts of the dateCreated and timeCreated attributes.
const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

// document is the XML root.
type document struct {
	XMLName   xml.Name    `xml:"crawl"`
	BaseVerbs []*BaseVerb `xml:"baseVerb"`
}

// Stamp is the creation time of a node, stored as two attributes.
type Stamp struct {
	Date string `xml:"dateCreated,attr"`
	Time string `xml:"timeCreated,attr"`
}

func newStamp(t time.Time) Stamp {
	return Stamp{Date: t.Format(dateLayout), Time: t.Format(timeLayout)}
}

// Created parses the stamp in the local time zone. The zero time is
// returned for malformed stamps.
func (s Stamp) Created() time.Time {
	t, err := time.ParseInLocation(dateLayout+" "+timeLayout, s.Date+" "+s.Time, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

// BaseVerb is the root node of one simplex verb.
type BaseVerb struct {
	Idx     int    `xml:"idx,attr"`
	Simplex string `xml:"simplex,attr"`
	Stamp
	Derived []*DerivedVerb `xml:"derivedVerb"`
}

// DerivedVerb is one derived form of a base verb.
type DerivedVerb struct {
	Idx       int  `xml:"idx,attr"`
	Prefixed  bool `xml:"prefixed,attr"`
	Suffixed  bool `xml:"suffixed,attr"`
	Reflexive bool `xml:"reflexive,attr"`
	Secondary bool `xml:"secondary,attr"`
	Stamp
	Prefix   *PrefixNode `xml:"prefix"`
	Suffix   *SuffixNode `xml:"suffix"`
	FullVerb string      `xml:"fullVerb"`
	Queries  []*Query    `xml:"query"`

	base *BaseVerb
}

// PrefixNode names the prefix rule of a derived form.
type PrefixNode struct {
	Name    string `xml:"prefixName,attr"`
	Variant string `xml:"variant,attr,omitempty"`
}

// SuffixNode names the suffix rule of a derived form.
type SuffixNode struct {
	Name string `xml:"suffixName,attr"`
}

// Query is the crawl of one derived form in one subcorpus and category.
type Query struct {
	Subcorpus  model.Subcorpus `xml:"subcorpus,attr"`
	Gramm      string          `xml:"grammForm,attr"`
	Successful bool            `xml:"successful,attr"`
	NextPage   int             `xml:"nextPage,attr"`
	Address    string          `xml:"address,attr"`
	Stamp
	Results []Result `xml:"results>result"`

	derived *DerivedVerb
}

// Result is one source-listing entry found by a query.
type Result struct {
	PageIndex  int        `xml:"pageIndex,attr"`
	EntryIndex int        `xml:"entryIndex,attr"`
	Tokens     int        `xml:"tokens,attr"`
	Source     SourceNode `xml:"sourceName"`
}

// SourceNode is the source name with its parsed dates.
type SourceNode struct {
	Begin  float64 `xml:"begDate,attr"`
	Center float64 `xml:"centerDate,attr"`
	End    float64 `xml:"endDate,attr"`
	Name   string  `xml:",chardata"`
}

// Form rebuilds the model form stored in d.
func (d *DerivedVerb) Form() model.DerivedForm {
	f := model.DerivedForm{
		Prefix:    model.None(),
		Suffix:    model.None(),
		Reflexive: d.Reflexive,
		Secondary: d.Secondary,
		Surface:   d.FullVerb,
	}
	if d.base != nil {
		f.Root = d.base.Simplex
	}
	if d.Prefixed && d.Prefix != nil {
		f.Prefix = model.Some(d.Prefix.Name)
		f.PrefixVariant = d.Prefix.Variant
	}
	if d.Suffixed && d.Suffix != nil {
		f.Suffix = model.Some(d.Suffix.Name)
	}
	return f
}

func newDerivedVerb(idx int, f model.DerivedForm, stamp Stamp) *DerivedVerb {
	d := &DerivedVerb{
		Idx:       idx,
		Prefixed:  f.Prefix.Valid,
		Suffixed:  f.Suffix.Valid,
		Reflexive: f.Reflexive,
		Secondary: f.Secondary,
		Stamp:     stamp,
		FullVerb:  f.Surface,
	}
	if id, ok := f.Prefix.Get(); ok {
		d.Prefix = &PrefixNode{Name: id, Variant: f.PrefixVariant}
	}
	if id, ok := f.Suffix.Get(); ok {
		d.Suffix = &SuffixNode{Name: id}
	}
	return d
}

func newResult(r model.ResultRecord) Result {
	return Result{
		PageIndex:  r.PageIndex,
		EntryIndex: r.EntryIndex,
		Tokens:     r.Tokens,
		Source: SourceNode{
			Begin:  r.Source.DateBegin,
			Center: r.Source.DateMiddle,
			End:    r.Source.DateEnd,
			Name:   r.Source.Name,
		},
	}
}

// record rebuilds the exported row of one result of q.
func (q *Query) record(res Result) model.ResultRecord {
	r := model.ResultRecord{
		Subcorpus: q.Subcorpus,
		Gramm:     q.Gramm,
		Prefix:    model.None(),
		Suffix:    model.None(),
		Source: model.Source{
			Name:       res.Source.Name,
			DateBegin:  res.Source.Begin,
			DateMiddle: res.Source.Center,
			DateEnd:    res.Source.End,
		},
		Tokens:     res.Tokens,
		PageIndex:  res.PageIndex,
		EntryIndex: res.EntryIndex,
	}
	if d := q.derived; d != nil {
		f := d.Form()
		r.BaseVerb = f.Root
		r.Lemma = f.Surface
		r.Prefix = f.Prefix
		r.Suffix = f.Suffix
		r.Reflexive = f.Reflexive
		r.Secondary = f.Secondary
	}
	return r
}

// numberEntries sets every result's EntryIndex to its position among the
// results of the same page. Results are stored in listing order, so this
// restores the positions of files written without the attribute.
func (q *Query) numberEntries() {
	next := make(map[int]int)
	for i := range q.Results {
		page := q.Results[i].PageIndex
		q.Results[i].EntryIndex = next[page]
		next[page]++
	}
}
