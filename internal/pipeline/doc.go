// Package pipeline drives the crawl.
//
// Expand turns the configured verbs into crawl-state nodes: every derived
// form of every verb gets one query per subcorpus and grammatical
// category. The Driver then walks the pending queries and runs each one
// through a Pipeline of steps:
//
//	crawl     fetch the remaining pages, appending and persisting each one
//	complete  mark the query done and persist the state file
//	notify    hand the query's records to the result sink
//
// A query that fails stays pending, and a later run resumes it from the
// first page that was not stored. Queries run one at a time unless the
// Driver is given more workers, in which case an errgroup bounds the
// concurrency.
package pipeline
