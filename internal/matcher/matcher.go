package matcher

import (
	"github.com/charmbracelet/log"
	"github.com/desertthunder/cratecheck/internal/models"
	"github.com/desertthunder/cratecheck/internal/shared"
	"golang.org/x/sync/errgroup"
)

// DefaultWarnPairs is the cross-product size above which a scaling warning is logged.
const DefaultWarnPairs = 1_000_000

// Options configures [FindCandidatePairs].
type Options struct {
	Threshold int         // pairs scoring below this are reported (default 85)
	Workers   int         // goroutines sharing the left table (default 1)
	WarnPairs int         // warn when |A|*|B| exceeds this (default 1,000,000)
	Logger    *log.Logger // optional
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{Threshold: shared.DefaultThreshold, Workers: 1, WarnPairs: DefaultWarnPairs}
}

// FindCandidatePairs compares every composite key of a with every composite key of b and
// returns the pairs whose [TokenSortRatio] is below opts.Threshold, ordered by
// (LeftIndex, RightIndex). See the package documentation for why dissimilar pairs are
// the ones reported.
func FindCandidatePairs(a, b *models.CanonicalTable, opts Options) []models.MatchResult {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.WarnPairs <= 0 {
		opts.WarnPairs = DefaultWarnPairs
	}

	left, right := a.Keys(), b.Keys()
	if len(left) == 0 || len(right) == 0 {
		return []models.MatchResult{}
	}

	if pairs := len(left) * len(right); pairs > opts.WarnPairs && opts.Logger != nil {
		opts.Logger.Warn("fuzzy comparison is quadratic and will be slow at this size",
			"left", len(left), "right", len(right), "pairs", pairs)
	}

	rows := make([][]models.MatchResult, len(left))

	var g errgroup.Group
	g.SetLimit(opts.Workers)
	for i := range left {
		g.Go(func() error {
			rows[i] = compareRow(i, left[i], right, opts.Threshold)
			return nil
		})
	}
	_ = g.Wait()

	results := make([]models.MatchResult, 0)
	for _, row := range rows {
		results = append(results, row...)
	}

	return results
}

// ComparePair scores a single pair of composite keys.
func ComparePair(leftIndex, rightIndex int, leftKey, rightKey string, threshold int) models.MatchResult {
	score := TokenSortRatio(leftKey, rightKey)
	return models.MatchResult{
		LeftIndex:  leftIndex,
		RightIndex: rightIndex,
		LeftKey:    leftKey,
		RightKey:   rightKey,
		Score:      score,
		IsMatch:    score >= threshold,
	}
}

// compareRow returns the reported pairs of one left key, in right order.
func compareRow(i int, leftKey string, right []string, threshold int) []models.MatchResult {
	var out []models.MatchResult
	for j, rightKey := range right {
		if res := ComparePair(i, j, leftKey, rightKey, threshold); !res.IsMatch {
			out = append(out, res)
		}
	}
	return out
}
