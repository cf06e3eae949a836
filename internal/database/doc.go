// Package database stores crawl results in SQLite.
//
// The ResultDB keeps two tables:
//   - results: one row per exported record, with the export columns plus
//     the ID of the run that last wrote it
//   - runs: one row per crawl or export run, keyed by a random UUID
//
// Rows are written with UPSERT on the record's natural key, so writing the
// same results twice, as happens when an interrupted crawl is resumed or
// an export is repeated, leaves one row per record.
//
// The driver is modernc.org/sqlite, a CGO-free SQLite, so the database is
// a single file next to the crawl state.
package database
