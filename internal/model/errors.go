package model

import "errors"

// ErrUnknownSubcorpus is returned when a subcorpus name or value is not one
// of Ancient, Old or Modern.
var ErrUnknownSubcorpus = errors.New("unknown subcorpus")

// Rule table validation errors.
var (
	// ErrEmptyRuleID is returned when a rule has no identifier.
	ErrEmptyRuleID = errors.New("affix rule has empty id")

	// ErrDuplicateRule is returned when two rules share an identifier.
	ErrDuplicateRule = errors.New("duplicate affix rule")

	// ErrNoVariants is returned when a rule has no surface variants.
	ErrNoVariants = errors.New("affix rule has no variants")

	// ErrInvalidVariant is returned when a non-null rule has an empty variant
	// or the null rule has a non-empty one.
	ErrInvalidVariant = errors.New("invalid affix variant")
)
