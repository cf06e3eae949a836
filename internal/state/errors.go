package state

import "errors"

var (
	// ErrUnknownNode is returned when a node does not belong to the store.
	ErrUnknownNode = errors.New("node does not belong to this crawl state")

	// ErrAlreadyDone is returned when results are appended to a query that
	// is already marked done.
	ErrAlreadyDone = errors.New("query is already done")

	// ErrUnknownDedupPolicy is returned by ParseDedupPolicy.
	ErrUnknownDedupPolicy = errors.New("unknown dedup policy")
)
