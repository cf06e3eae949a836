package model

import (
	"errors"
	"testing"
)

// TestRuleTableWithNull tests that adding the null rule never touches the source table.
func TestRuleTableWithNull(t *testing.T) {
	t.Parallel()

	t.Run("appends null rule to a copy", func(t *testing.T) {
		t.Parallel()

		base := RuleTable{{ID: "po-", Variants: []string{"по"}}}
		augmented := base.WithNull()

		if len(base) != 1 {
			t.Fatalf("source table was modified: %v", base)
		}
		if len(augmented) != 2 {
			t.Fatalf("expected 2 rules, got %d", len(augmented))
		}
		if !augmented[1].IsNull() {
			t.Errorf("expected last rule to be the null rule, got %q", augmented[1].ID)
		}
	})

	t.Run("does not duplicate an existing null rule", func(t *testing.T) {
		t.Parallel()

		base := RuleTable{NullRule(), {ID: "u-", Variants: []string{"у"}}}
		if got := len(base.WithNull()); got != 2 {
			t.Errorf("expected 2 rules, got %d", got)
		}
	})

	t.Run("copies variant slices", func(t *testing.T) {
		t.Parallel()

		base := RuleTable{{ID: "ot-", Variants: []string{"от", "ото"}}}
		augmented := base.WithNull()
		augmented[0].Variants[0] = "XX"

		if base[0].Variants[0] != "от" {
			t.Errorf("variant slice is shared: %v", base[0].Variants)
		}
	})
}

// TestRuleTableValidate tests rule table validation.
func TestRuleTableValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		table   RuleTable
		wantErr error
	}{
		{"valid", RuleTable{{ID: "po-", Variants: []string{"по"}}, NullRule()}, nil},
		{"empty id", RuleTable{{ID: "", Variants: []string{"по"}}}, ErrEmptyRuleID},
		{"duplicate", RuleTable{{ID: "po-", Variants: []string{"по"}}, {ID: "po-", Variants: []string{"по"}}}, ErrDuplicateRule},
		{"no variants", RuleTable{{ID: "po-"}}, ErrNoVariants},
		{"empty variant", RuleTable{{ID: "po-", Variants: []string{""}}}, ErrInvalidVariant},
		{"non-empty null variant", RuleTable{{ID: NullRuleID, Variants: []string{"x"}}}, ErrInvalidVariant},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := tc.table.Validate()
			if tc.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

// TestMarker tests the optional marker helpers.
func TestMarker(t *testing.T) {
	t.Parallel()

	if m := Some("-yva-"); !m.Valid || m.String() != "-yva-" {
		t.Errorf("Some: got %+v", m)
	}
	if m := Some(""); m.Valid {
		t.Errorf("Some(\"\") should be absent, got %+v", m)
	}
	if id, ok := None().Get(); ok || id != "" {
		t.Errorf("None().Get() = %q, %v", id, ok)
	}
}
