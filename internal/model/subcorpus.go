package model

import (
	"fmt"
	"strings"
)

// Subcorpus identifies one independently addressable partition of the
// remote corpus search service. Each subcorpus has its own query dialect.
type Subcorpus int

const (
	// Ancient is the Old East Slavic subcorpus (before the 15th century).
	Ancient Subcorpus = iota

	// Old is the Middle Russian subcorpus. It is queried by word form
	// rather than by lemma.
	Old

	// Modern is the main corpus of modern Russian.
	Modern
)

// AllSubcorpora lists every subcorpus in canonical order.
func AllSubcorpora() []Subcorpus {
	return []Subcorpus{Ancient, Old, Modern}
}

// String returns the display name written to exports and the state file.
func (s Subcorpus) String() string {
	switch s {
	case Ancient:
		return "Ancient"
	case Old:
		return "Old"
	case Modern:
		return "Modern"
	default:
		return "Unknown"
	}
}

// ParseSubcorpus converts a case-insensitive name into a Subcorpus.
func ParseSubcorpus(name string) (Subcorpus, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ancient":
		return Ancient, nil
	case "old":
		return Old, nil
	case "modern":
		return Modern, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownSubcorpus, name)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Subcorpus) MarshalText() ([]byte, error) {
	if s < Ancient || s > Modern {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSubcorpus, int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Subcorpus) UnmarshalText(text []byte) error {
	parsed, err := ParseSubcorpus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
