// Package models defines the track types passed between the reconciliation stages.
//
// The package contains three groups of types:
//
// 1. Source rows: what the metadata source and the tabular store produce
//   - [Source] : which library a row came from (streaming, owned, candidate)
//   - [TrackRecord] : raw title/artist/album as read from tags or a CSV export
//
// 2. Canonical tables: deduplicated, normalized per-source tables
//   - [CanonicalRecord] : normalized title/artist/album plus the composite key
//   - [CanonicalTable] : one table per source, in source order
//
// 3. Results: what the reconciler and the fuzzy matcher hand to the report emitter
//   - [MatchResult] : one compared pair from the fuzzy pass
//   - [ReconciliationOutputs] : the named result sets of a run
//
// 4. History: what the run repository stores
//   - [Run] : one command invocation with its counts and status
//   - [RunArtifact] : a file written by that run
//
// Each table belongs to the stage that built it; later stages only read it.
package models
