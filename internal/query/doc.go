// Package query builds search addresses for the corpus search service.
//
// Each subcorpus speaks its own parameter dialect. The dialects are plain
// data (see Dialect): a base address, an ordered list of default
// parameters, and the names of the parameters that receive the searched
// word and its grammatical category. Build starts from those defaults and
// applies sparse Overrides, so call sites never repeat parameter lists.
//
// Addresses are produced by concatenating "key=value&" for every parameter
// in insertion order. Values are written literally; the fetcher is the
// only place that escapes bytes for the wire.
package query
