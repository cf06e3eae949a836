package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/nao1215/verbcrawl/internal/model"
	"github.com/nao1215/verbcrawl/internal/morph"
	"github.com/nao1215/verbcrawl/internal/query"
	"github.com/nao1215/verbcrawl/internal/state"
)

// Target is one subcorpus to query and the categories to query it with.
type Target struct {
	Subcorpus model.Subcorpus

	// Gramms are the grammatical categories. A dialect without a category
	// parameter takes the single empty category.
	Gramms []string

	// Overrides are applied to every query of the target. Lexeme and
	// Gramm are filled in per query.
	Overrides query.Overrides
}

// Accepts reports whether the target searches the kind of form v
// generates. Stem/ending verbs produce inflected word forms, which only
// word-form dialects can match; other verbs produce lemmas. An unknown
// subcorpus is accepted so that building its query reports the error.
func (t Target) Accepts(v morph.Verb) bool {
	d, err := query.DialectFor(t.Subcorpus)
	if err != nil {
		return true
	}
	return d.WordForms == (v.Stems.Len() > 0)
}

// TargetsFor returns the targets that accept v, in plan order.
func (p Plan) TargetsFor(v morph.Verb) []Target {
	targets := make([]Target, 0, len(p.Targets))
	for _, t := range p.Targets {
		if t.Accepts(v) {
			targets = append(targets, t)
		}
	}
	return targets
}

// Plan is the full crawl: every verb expanded with the tables and queried
// in every target.
type Plan struct {
	Verbs    []morph.Verb
	Prefixes model.RuleTable
	Endings  morph.Endings
	Targets  []Target
}

// PlanSummary counts the nodes a plan touches.
type PlanSummary struct {
	BaseVerbs int
	Forms     int
	Queries   int
	Pending   int
}

// Expand creates the state nodes of plan that do not exist yet. Existing
// nodes, including completed queries, are left untouched, so expanding
// the same plan twice is a no-op.
func Expand(store *state.Store, plan Plan, logger *slog.Logger) (PlanSummary, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var sum PlanSummary
	forms := make(map[*state.DerivedVerb]struct{})
	queries := make(map[*state.Query]struct{})

	for _, v := range plan.Verbs {
		base := store.EnsureBaseVerb(v.Root)
		sum.BaseVerbs++

		targets := plan.TargetsFor(v)
		if len(targets) == 0 {
			logger.Warn("no subcorpus searches the forms of this verb",
				"verb", v.Root,
				"wordForms", v.Stems.Len() > 0,
			)
		}

		for _, f := range morph.Generate(v, plan.Prefixes, plan.Endings) {
			derived, err := store.EnsureDerivedForm(base, f)
			if err != nil {
				return sum, fmt.Errorf("failed to add form %q: %w", f.Surface, err)
			}
			forms[derived] = struct{}{}

			for _, t := range targets {
				for _, gramm := range t.Gramms {
					o := t.Overrides
					o.Lexeme = derived.FullVerb
					o.Gramm = gramm
					q, err := query.Build(t.Subcorpus, o)
					if err != nil {
						return sum, fmt.Errorf("failed to build %s query for %q: %w", t.Subcorpus, f.Surface, err)
					}
					node, err := store.EnsureQuery(derived, q)
					if err != nil {
						return sum, fmt.Errorf("failed to add %s query for %q: %w", t.Subcorpus, f.Surface, err)
					}
					if _, seen := queries[node]; seen {
						continue
					}
					queries[node] = struct{}{}
					if !store.IsDone(node) {
						sum.Pending++
					}
				}
			}
		}
		logger.Debug("verb planned", "verb", v.Root, "forms", len(forms))
	}

	sum.Forms = len(forms)
	sum.Queries = len(queries)
	return sum, nil
}
