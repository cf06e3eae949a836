package config

import "errors"

// Configuration validation errors returned by Config.Validate and
// File.Validate. Callers match them with errors.Is.
var (
	// ErrNoVerbs is returned when neither the configuration file nor the
	// command line names a verb to crawl.
	ErrNoVerbs = errors.New("no verbs specified: add verbs to the configuration file or pass them as arguments")

	// ErrEmptyRoot is returned for a verb entry without a root.
	ErrEmptyRoot = errors.New("verb root must not be empty")

	// ErrNoSubcorpora is returned when the subcorpus list is explicitly empty.
	ErrNoSubcorpora = errors.New("at least one subcorpus is required")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidDelay is returned when the minimum delay or jitter is negative.
	ErrInvalidDelay = errors.New("invalid delay: must be non-negative")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid worker count: must be positive")

	// ErrInvalidRetry is returned for a retry policy that never retries sensibly.
	ErrInvalidRetry = errors.New("invalid retry policy: attempts must be positive and delays non-negative")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)
