package query

import "errors"

var (
	// ErrEndYearUnsupported is returned when an end year is requested for a
	// subcorpus whose dialect has no date constraint.
	ErrEndYearUnsupported = errors.New("subcorpus does not support an end year")

	// ErrInvalidEndYear is returned for end years that are not four-digit
	// positive years.
	ErrInvalidEndYear = errors.New("invalid end year")

	// ErrEmptyParamKey is returned when an override parameter has no key.
	ErrEmptyParamKey = errors.New("query parameter has empty key")
)
