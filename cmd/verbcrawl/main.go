// Package main provides the entry point for the verbcrawl CLI.
//
// verbcrawl searches the Russian National Corpus for every prefixed form
// of a list of verbs in the Old East Slavic, Middle Russian and modern
// subcorpora, and records every source listing it finds. Crawl progress is
// kept in an XML state file so an interrupted crawl resumes where it
// stopped.
//
// Usage:
//
//	verbcrawl init
//	verbcrawl crawl --csv results.csv
//	verbcrawl status
//
// See --help for all available options.
package main

// main is the entry point for verbcrawl.
func main() {
	Execute()
}
