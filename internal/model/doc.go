// Package model defines the data structures shared by the verbcrawl packages.
//
// This package contains the following main types:
//   - AffixRule and RuleTable: named morphological rules with surface variants
//   - Marker: an optional affix marker (present or absent)
//   - DerivedForm: one candidate surface form of a verb and the rules that built it
//   - Subcorpus: the closed set of corpus partitions (Ancient, Old, Modern)
//   - Source: a parsed source-listing entry with its date range
//   - ResultRecord: one exported row of crawl results
//
// The types live in their own package because morph, query, crawler, state
// and report all exchange them.
package model
