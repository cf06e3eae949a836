package crawler

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/verbcrawl/internal/model"
)

// Entry is one raw item of a source listing.
type Entry struct {
	// Name is the source name, e.g. "Повесть временных лет (1110-1118)".
	Name string

	// Examples is the item's examples field, e.g. "Все примеры (4)".
	// Empty when the count is part of Name.
	Examples string
}

// Page is the parsed content of one results page.
type Page struct {
	// Entries are the listing items that carry an example count.
	Entries []Entry

	// Exhausted is true when the page has no listing or an empty one,
	// meaning there are no further pages.
	Exhausted bool
}

// examplesPrefixes start the examples field in the Russian and English
// interfaces of the service.
var examplesPrefixes = []string{"Все", "All"}

// ParseListing extracts the source listing from a results page: the items
// of the first ordered list. An item's first child is its name; the child
// whose text starts with "Все" or "All" carries the example count. Items
// with neither that child nor an inline count are skipped.
func ParseListing(r io.Reader) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Page{}, fmt.Errorf("failed to parse results page: %w", err)
	}

	items := doc.Find("ol").First().Find("li")
	if items.Length() == 0 {
		return Page{Exhausted: true}, nil
	}

	var page Page
	items.Each(func(_ int, li *goquery.Selection) {
		contents := li.Contents()
		if contents.Length() == 0 {
			return
		}
		name := strings.TrimSpace(contents.First().Text())
		if name == "" {
			return
		}

		examples := ""
		contents.EachWithBreak(func(i int, s *goquery.Selection) bool {
			if i == 0 {
				return true
			}
			text := strings.TrimSpace(s.Text())
			for _, prefix := range examplesPrefixes {
				if strings.HasPrefix(text, prefix) {
					examples = text
					return false
				}
			}
			return true
		})

		if examples == "" && model.ParseTokenCount("", name) == 0 {
			return
		}
		page.Entries = append(page.Entries, Entry{Name: name, Examples: examples})
	})
	return page, nil
}
