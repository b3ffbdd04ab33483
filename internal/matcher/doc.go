// Package matcher implements the approximate pass of the reconciliation.
//
// [FindCandidatePairs] compares every composite key of one table against every composite key
// of another with a token-sort similarity ratio on a 0-100 scale.
//
// # Polarity
//
// Pairs are reported when their similarity is BELOW the threshold, not above it. The
// report exists to surface dissimilar streaming/owned pairs for manual review, so a
// [models.MatchResult] returned from [FindCandidatePairs] always has IsMatch == false.
// This reads backwards next to the function name and is kept on purpose.
//
// # Scaling
//
// The comparison is an exhaustive cross product, O(|A|·|B|). That is fine for personal
// libraries (hundreds to low thousands of rows per side); beyond that the run gets slow and
// a warning is logged. The comparison is never pruned because manual review relies on every
// pair having been looked at. Left rows are compared on an errgroup limited to Options.Workers
// goroutines and merged in row order, so output is identical for any worker count.
package matcher
