package morph

import (
	"golang.org/x/text/unicode/norm"

	"github.com/nao1215/verbcrawl/internal/model"
)

// Stems holds the two disjoint stem classes used in stem/ending mode.
type Stems struct {
	// Vowel are stems ending in a vowel, e.g. "писа".
	Vowel []string `yaml:"vowel"`

	// Consonant are stems ending in a consonant, e.g. "нес".
	Consonant []string `yaml:"consonant"`
}

// Len returns the total number of stems.
func (s Stems) Len() int {
	return len(s.Vowel) + len(s.Consonant)
}

// Endings holds the two disjoint ending classes used in stem/ending mode.
type Endings struct {
	// PostVowel endings attach to vowel-final stems.
	PostVowel []string `yaml:"postVowel"`

	// PostConsonant endings attach to consonant-final stems.
	PostConsonant []string `yaml:"postConsonant"`
}

// Verb describes one base verb to expand.
type Verb struct {
	// Root is the simplex verb, e.g. "драть". It is also the base-verb key
	// in the crawl state.
	Root string

	// Suffix is the optional suffix marker carried by every generated form.
	Suffix model.Marker

	// Reflexive and Secondary are copied onto every generated form.
	Reflexive bool
	Secondary bool

	// Stems switches generation to stem/ending mode when non-empty.
	Stems Stems
}

// stemmed is one output of stem/ending mode.
type stemmed struct {
	surface string
	ending  string
}

// StemEndings returns stem+ending for every vowel stem paired with every
// post-vowel ending, followed by every consonant stem paired with every
// post-consonant ending. The prefix table is not consulted.
func StemEndings(stems Stems, endings Endings) []string {
	pairs := stemEndings(stems, endings)
	out := make([]string, len(pairs))
	for i, p := range pairs {
		out[i] = p.surface
	}
	return out
}

func stemEndings(stems Stems, endings Endings) []stemmed {
	out := make([]stemmed, 0, len(stems.Vowel)*len(endings.PostVowel)+len(stems.Consonant)*len(endings.PostConsonant))
	for _, stem := range stems.Vowel {
		for _, ending := range endings.PostVowel {
			out = append(out, stemmed{surface: normalize(stem + ending), ending: ending})
		}
	}
	for _, stem := range stems.Consonant {
		for _, ending := range endings.PostConsonant {
			out = append(out, stemmed{surface: normalize(stem + ending), ending: ending})
		}
	}
	return out
}

// Prefixed returns one form per (rule, variant) of table attached to root,
// plus the bare root produced by the null rule. The null rule is added to a
// private copy when table lacks it.
func Prefixed(root string, table model.RuleTable) []model.DerivedForm {
	return Generate(Verb{Root: root}, table, Endings{})
}

// Generate returns the full form set of v: every base (the root, or every
// stem+ending when v has stems) crossed with every prefix rule variant of
// table, including the null rule. Forms with the same identity are
// reported once, in first-seen order.
func Generate(v Verb, table model.RuleTable, endings Endings) []model.DerivedForm {
	rules := table.WithNull()

	bases := []stemmed{{surface: normalize(v.Root)}}
	if v.Stems.Len() > 0 {
		bases = stemEndings(v.Stems, endings)
	}

	seen := make(map[model.FormKey]bool, len(bases)*rules.VariantCount())
	forms := make([]model.DerivedForm, 0, len(bases)*rules.VariantCount())
	for _, base := range bases {
		for _, rule := range rules {
			prefix := model.Some(rule.ID)
			if rule.IsNull() {
				prefix = model.None()
			}
			for _, variant := range rule.Variants {
				f := model.DerivedForm{
					Root:          v.Root,
					Stem:          base.surface,
					Ending:        base.ending,
					Prefix:        prefix,
					PrefixVariant: variant,
					Suffix:        v.Suffix,
					Reflexive:     v.Reflexive,
					Secondary:     v.Secondary,
					Surface:       normalize(variant + base.surface),
				}
				if seen[f.Key()] {
					continue
				}
				seen[f.Key()] = true
				forms = append(forms, f)
			}
		}
	}
	return forms
}

// normalize puts s into NFC so that precomposed and decomposed spellings
// (й vs и+◌̆) compare equal.
func normalize(s string) string {
	return norm.NFC.String(s)
}
