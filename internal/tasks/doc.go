// Package tasks orchestrates a library reconciliation run with real-time progress reporting.
//
// # Core Operations
//
// [ReconcileEngine] exposes four operations:
//
//  1. [ReconcileEngine.Scan] : Tracklist generation
//     - Walks the owned library root, skipping the ignore list
//     - Walks the candidate crate folder
//     - Writes one tracklist CSV per folder, recreated on every run
//
//  2. [ReconcileEngine.Reconcile] : Set reconciliation from existing tracklists
//     - Reads the streaming export and both tracklists
//     - Builds canonical tables and writes them under cleaned/
//     - Computes owned matches, crate matches and both remainders
//     - Runs the fuzzy mismatch pass between streaming and owned
//     - Writes every result set under results/
//
//  3. [ReconcileEngine.Mismatches] : Fuzzy mismatch report only
//
//  4. [ReconcileEngine.Run] : Scan followed by Reconcile
//
// # Progress Reporting
//
// All operations accept an optional channel of [ProgressUpdate]. Updates are sent with
// select and default, so a slow or absent reader never blocks a run. Each update carries a
// [Kind] so the CLI can colour it.
//
// Per-file tag errors and unreadable directories are reported as updates and counted in
// [ScanSummary]; they never fail a scan. Artifact write failures and malformed rows do.
package tasks
