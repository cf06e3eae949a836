package query

import (
	"errors"
	"strings"
	"testing"

	"github.com/nao1215/verbcrawl/internal/model"
)

func TestBuild(t *testing.T) {
	t.Parallel()

	t.Run("modern lexeme lands in lex1 on the main host", func(t *testing.T) {
		t.Parallel()

		q, err := Build(model.Modern, Overrides{Lexeme: "подрать", Gramm: "praet"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		addr := q.Address()
		if !strings.HasPrefix(addr, MainAddress) {
			t.Errorf("address %q does not start with %q", addr, MainAddress)
		}
		if !strings.Contains(addr, "&lex1=подрать&") {
			t.Errorf("address %q does not contain lex1=подрать", addr)
		}
		if !strings.Contains(addr, "&gramm1=praet&") {
			t.Errorf("address %q does not contain gramm1=praet", addr)
		}
		if q.Word() != "подрать" || q.Gramm() != "praet" {
			t.Errorf("unexpected word/gramm: %q %q", q.Word(), q.Gramm())
		}
	})

	t.Run("ancient uses lexi1 on the beta host", func(t *testing.T) {
		t.Parallel()

		q, err := Build(model.Ancient, Overrides{Lexeme: "брати", Gramm: "aor"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if q.Base() != BetaAddress {
			t.Errorf("expected beta host, got %q", q.Base())
		}
		if v, _ := q.Get("lexi1"); v != "брати" {
			t.Errorf("lexi1 = %q", v)
		}
		if v, _ := q.Get("mode"); v != "old_rus" {
			t.Errorf("mode = %q", v)
		}
	})

	t.Run("old searches by word form and ignores gramm", func(t *testing.T) {
		t.Parallel()

		q, err := Build(model.Old, Overrides{Lexeme: "побраша", Gramm: "aor"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v, _ := q.Get("req"); v != "побраша" {
			t.Errorf("req = %q", v)
		}
		if _, ok := q.Get("gramm1"); ok {
			t.Error("old dialect should not carry gramm1")
		}
		if q.Gramm() != "" {
			t.Errorf("gramm = %q", q.Gramm())
		}
	})

	t.Run("parameters keep insertion order", func(t *testing.T) {
		t.Parallel()

		q, err := Build(model.Ancient, Overrides{Params: []Param{{"extra", "1"}}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		expected := BetaAddress + "mode=old_rus&text=lexgramm&doc_docid=0|13|2|3|1|4|7|8|10|12|5|11|9|6&" +
			"parent1=0&level1=0&lexi1=&gramm1=&parent2=0&level2=0&min2=1&max2=1&extra=1&"
		if q.Address() != expected {
			t.Errorf("got  %q\nwant %q", q.Address(), expected)
		}
	})

	t.Run("page address appends p", func(t *testing.T) {
		t.Parallel()

		q, err := Build(model.Modern, Overrides{Lexeme: "брать"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := q.PageAddress(3); got != q.Address()+"p=3&" {
			t.Errorf("unexpected page address %q", got)
		}
	})

	t.Run("end year block is applied whole", func(t *testing.T) {
		t.Parallel()

		year := 1700
		q, err := Build(model.Old, Overrides{Lexeme: "бра", EndYear: &year})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		mycorp, _ := q.Get("mycorp")
		if !strings.Contains(mycorp, "1700") {
			t.Errorf("mycorp %q does not mention the year", mycorp)
		}
		for _, key := range []string{"mysent", "mysize", "mysentsize", "mydocsize"} {
			if v, _ := q.Get(key); v == "" {
				t.Errorf("%s not set", key)
			}
		}
		if v, _ := q.Get("lang"); v != "ru" {
			t.Errorf("lang = %q", v)
		}
		if len(q.Params()) != len(dialects[model.Old].Defaults) {
			t.Error("end year block should override existing keys, not append")
		}
	})

	t.Run("end year rejected where unsupported", func(t *testing.T) {
		t.Parallel()

		year := 1700
		for _, sub := range []model.Subcorpus{model.Ancient, model.Modern} {
			_, err := Build(sub, Overrides{Lexeme: "брать", EndYear: &year})
			if !errors.Is(err, ErrEndYearUnsupported) {
				t.Errorf("%s: expected ErrEndYearUnsupported, got %v", sub, err)
			}
		}
	})

	t.Run("invalid end year", func(t *testing.T) {
		t.Parallel()

		year := 17
		_, err := Build(model.Old, Overrides{EndYear: &year})
		if !errors.Is(err, ErrInvalidEndYear) {
			t.Errorf("expected ErrInvalidEndYear, got %v", err)
		}
	})

	t.Run("extra params replace in place", func(t *testing.T) {
		t.Parallel()

		q, err := Build(model.Modern, Overrides{Params: []Param{{"lang", "ru"}}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v, _ := q.Get("lang"); v != "ru" {
			t.Errorf("lang = %q", v)
		}
		if len(q.Params()) != len(dialects[model.Modern].Defaults) {
			t.Error("existing key was appended instead of replaced")
		}
	})

	t.Run("empty param key", func(t *testing.T) {
		t.Parallel()

		_, err := Build(model.Modern, Overrides{Params: []Param{{"", "x"}}})
		if !errors.Is(err, ErrEmptyParamKey) {
			t.Errorf("expected ErrEmptyParamKey, got %v", err)
		}
	})

	t.Run("unknown subcorpus", func(t *testing.T) {
		t.Parallel()

		_, err := Build(model.Subcorpus(42), Overrides{})
		if !errors.Is(err, model.ErrUnknownSubcorpus) {
			t.Errorf("expected ErrUnknownSubcorpus, got %v", err)
		}
	})

	t.Run("building does not alter the dialect table", func(t *testing.T) {
		t.Parallel()

		if _, err := Build(model.Modern, Overrides{Lexeme: "читать"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		d, err := DialectFor(model.Modern)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, p := range d.Defaults {
			if p.Key == "lex1" && p.Value != "" {
				t.Errorf("dialect default lex1 changed to %q", p.Value)
			}
		}
	})
}

func TestDialectFor(t *testing.T) {
	t.Parallel()

	for _, sub := range model.AllSubcorpora() {
		d, err := DialectFor(sub)
		if err != nil {
			t.Fatalf("%s: %v", sub, err)
		}
		if d.WordParam == "" {
			t.Errorf("%s: no word parameter", sub)
		}
		if len(d.Gramms) == 0 {
			t.Errorf("%s: no default categories", sub)
		}
		if _, ok := (SubcorpusQuery{params: d.Defaults}).Get(d.WordParam); !ok {
			t.Errorf("%s: word parameter %q missing from defaults", sub, d.WordParam)
		}
	}

	if !dialects[model.Old].SupportsEndYear() || dialects[model.Modern].SupportsEndYear() {
		t.Error("only the Old dialect carries the end-year block")
	}
}
