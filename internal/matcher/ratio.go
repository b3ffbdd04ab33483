package matcher

import (
	"math"
	"sort"
	"strings"

	"github.com/adrg/strutil/metrics"
)

// indel is a Levenshtein metric where a substitution costs a deletion plus an insertion.
var indel = &metrics.Levenshtein{
	CaseSensitive: true,
	InsertCost:    1,
	DeleteCost:    1,
	ReplaceCost:   2,
}

// TokenSortRatio scores the similarity of a and b from 0 to 100, ignoring word order.
//
// Both strings are lowercased, stripped of non-ASCII characters and punctuation, split
// into words and re-joined in sorted order before their edit-distance ratio is taken.
// Identical processed strings score 100; if exactly one is empty the score is 0.
func TokenSortRatio(a, b string) int {
	return Ratio(sortedTokens(a), sortedTokens(b))
}

// Ratio is the edit-distance similarity of two strings on a 0-100 scale:
// 100 * (len(a)+len(b)-indel(a,b)) / (len(a)+len(b)), rounded half to even.
func Ratio(a, b string) int {
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}

	total := len([]rune(a)) + len([]rune(b))
	distance := indel.Distance(a, b)
	return int(math.RoundToEven(100 * float64(total-distance) / float64(total)))
}

// IsSimilar reports whether a and b reach threshold on [TokenSortRatio].
func IsSimilar(a, b string, threshold int) bool {
	return TokenSortRatio(a, b) >= threshold
}

func sortedTokens(s string) string {
	tokens := strings.Fields(process(s))
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// process lowercases s, drops non-ASCII runes and turns any other non-alphanumeric rune into a space.
func process(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case r > 127:
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return strings.TrimSpace(b.String())
}
