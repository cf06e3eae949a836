package model

import (
	"errors"
	"fmt"
)

// NullRuleID is the identifier of the rule that adds no prefix.
// Its only variant is the empty string.
const NullRuleID = "—"

// AffixRule is a named morphological rule with one or more concrete surface
// variants, e.g. "ot-" with variants от, ото, отъ.
type AffixRule struct {
	// ID identifies the rule in exports and in the state file.
	ID string `yaml:"id"`

	// Variants are the spellings the rule can take, in preference order.
	Variants []string `yaml:"variants"`
}

// IsNull reports whether r is the designated no-prefix rule.
func (r AffixRule) IsNull() bool {
	return r.ID == NullRuleID
}

// Clone returns a deep copy of r.
func (r AffixRule) Clone() AffixRule {
	return AffixRule{ID: r.ID, Variants: append([]string(nil), r.Variants...)}
}

// NullRule returns a fresh no-prefix rule.
func NullRule() AffixRule {
	return AffixRule{ID: NullRuleID, Variants: []string{""}}
}

// RuleTable is an ordered set of affix rules. Order is preserved so that
// generation output is deterministic.
type RuleTable []AffixRule

// Clone returns a deep copy of t. Mutating the copy never affects t.
func (t RuleTable) Clone() RuleTable {
	if t == nil {
		return nil
	}
	out := make(RuleTable, len(t))
	for i, r := range t {
		out[i] = r.Clone()
	}
	return out
}

// Lookup returns the rule with the given ID.
func (t RuleTable) Lookup(id string) (AffixRule, bool) {
	for _, r := range t {
		if r.ID == id {
			return r, true
		}
	}
	return AffixRule{}, false
}

// WithNull returns a new table holding a copy of every rule in t followed
// by the null rule, unless t already contains one. t itself is left untouched.
func (t RuleTable) WithNull() RuleTable {
	out := t.Clone()
	if _, ok := out.Lookup(NullRuleID); !ok {
		out = append(out, NullRule())
	}
	return out
}

// VariantCount returns the total number of variants across all rules.
func (t RuleTable) VariantCount() int {
	n := 0
	for _, r := range t {
		n += len(r.Variants)
	}
	return n
}

// Validate checks that IDs are unique and non-empty, that every rule has at
// least one variant, and that only the null rule has an empty variant.
func (t RuleTable) Validate() error {
	seen := make(map[string]bool, len(t))
	var errs []error
	for _, r := range t {
		if r.ID == "" {
			errs = append(errs, ErrEmptyRuleID)
			continue
		}
		if seen[r.ID] {
			errs = append(errs, fmt.Errorf("%w: %q", ErrDuplicateRule, r.ID))
		}
		seen[r.ID] = true
		if len(r.Variants) == 0 {
			errs = append(errs, fmt.Errorf("%w: %q", ErrNoVariants, r.ID))
		}
		for _, v := range r.Variants {
			if r.IsNull() && v != "" {
				errs = append(errs, fmt.Errorf("%w: null rule variant %q", ErrInvalidVariant, v))
			}
			if !r.IsNull() && v == "" {
				errs = append(errs, fmt.Errorf("%w: empty variant in rule %q", ErrInvalidVariant, r.ID))
			}
		}
	}
	return errors.Join(errs...)
}

// Marker is an optional affix marker. The zero value is absent.
type Marker struct {
	// ID is the marker text, e.g. "po-" or "-yva-". Meaningful only when Valid.
	ID string

	// Valid is true when the marker is present.
	Valid bool
}

// Some returns a present marker. An empty id yields an absent marker.
func Some(id string) Marker {
	if id == "" {
		return Marker{}
	}
	return Marker{ID: id, Valid: true}
}

// None returns an absent marker.
func None() Marker {
	return Marker{}
}

// Get returns the marker ID and whether it is present.
func (m Marker) Get() (string, bool) {
	return m.ID, m.Valid
}

// String returns the ID, or the empty string when absent.
func (m Marker) String() string {
	if !m.Valid {
		return ""
	}
	return m.ID
}
