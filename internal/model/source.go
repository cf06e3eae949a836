package model

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	dateRangeRegex  = regexp.MustCompile(`(\d{4})\s*[-–—]\s*(\d{4})`)
	singleYearRegex = regexp.MustCompile(`\d{4}`)
	parenRegex      = regexp.MustCompile(`\([^)]*\)`)
	countRegex      = regexp.MustCompile(`\d+`)

	// inlineCountRegex finds "4 примера" / "12 examples" inside a source
	// name when the listing has no separate examples field.
	inlineCountRegex = regexp.MustCompile(`(?i)(\d+)\s+(?:пример|вхожд|example|occurrence)`)
)

// Source is one source-listing entry with the date range parsed from its
// name. Dates are years as floats; all three are zero when no year is found.
type Source struct {
	// Name is the source name exactly as listed.
	Name string

	// DateBegin is the first year of the range.
	DateBegin float64

	// DateMiddle is the arithmetic mean of DateBegin and DateEnd.
	DateMiddle float64

	// DateEnd is the last year of the range.
	DateEnd float64
}

// ParseSource extracts dates from a listing name such as
// "Повесть временных лет (1110-1118)". A "YYYY-YYYY" range wins; otherwise
// the first four-digit year is used for all three dates; otherwise all
// dates are zero.
func ParseSource(name string) Source {
	s := Source{Name: strings.TrimSpace(name)}

	if m := dateRangeRegex.FindStringSubmatch(s.Name); m != nil {
		begin, errBegin := strconv.ParseFloat(m[1], 64)
		end, errEnd := strconv.ParseFloat(m[2], 64)
		if errBegin == nil && errEnd == nil {
			s.DateBegin = begin
			s.DateEnd = end
			s.DateMiddle = (begin + end) / 2.0
			return s
		}
	}

	if y := singleYearRegex.FindString(s.Name); y != "" {
		if year, err := strconv.ParseFloat(y, 64); err == nil {
			s.DateBegin = year
			s.DateMiddle = year
			s.DateEnd = year
		}
	}
	return s
}

// Title returns the name with parenthesised parts removed.
func (s Source) Title() string {
	return strings.Join(strings.Fields(parenRegex.ReplaceAllString(s.Name, "")), " ")
}

// ParseTokenCount returns the number of examples for a listing entry.
// examples is the entry's examples field ("Все примеры (4)"); when it is
// empty the count is looked up inside name ("..., 4 примера"). Zero is
// returned when no count is present.
func ParseTokenCount(examples, name string) int {
	if examples != "" {
		if m := countRegex.FindString(examples); m != "" {
			if n, err := strconv.Atoi(m); err == nil {
				return n
			}
		}
		return 0
	}
	if m := inlineCountRegex.FindStringSubmatch(name); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	return 0
}
