// Package repositories implements SQLite persistence for the run history.
//
// Every pipeline command records one row in runs, with the row counts of each result set
// and one run_artifacts row per file it wrote.
//
// Key Implementations:
//   - [RunRepository] : run history with newest-first listing and artifact tracking
//
// Sequence numbers provide stable, human-readable ordering (run #42) independent of UUIDs and timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
