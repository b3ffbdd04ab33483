// Package reconcile implements the exact composite-key set operations between canonical tables.
//
// Keys are compared with plain string equality; all tolerance for spelling differences lives
// in the matcher package. Every operation keeps the order and multiplicity of its left input.
package reconcile

import (
	"strings"

	"github.com/desertthunder/cratecheck/internal/models"
)

// Intersect returns the keys of a that also occur in b (inner join).
//
// A key repeated in a is emitted once per occurrence, in a's order.
func Intersect(a, b []string) []string {
	index := keySet(b)
	out := make([]string, 0, min(len(a), len(b)))
	for _, key := range a {
		if _, ok := index[key]; ok {
			out = append(out, key)
		}
	}
	return out
}

// ChainIntersect returns Intersect(Intersect(a, b), c).
func ChainIntersect(a, b, c []string) []string {
	return Intersect(Intersect(a, b), c)
}

// LeftOnly returns the keys of a with no equal key in b (anti-join).
//
// LeftOnly(a, b) and Intersect(a, b) together hold exactly the keys of a.
func LeftOnly(a, b []string) []string {
	index := keySet(b)
	out := make([]string, 0, len(a))
	for _, key := range a {
		if _, ok := index[key]; !ok {
			out = append(out, key)
		}
	}
	return out
}

// IntersectTables is [Intersect] over the composite keys of two tables.
func IntersectTables(a, b *models.CanonicalTable) []string {
	return Intersect(a.Keys(), b.Keys())
}

// ChainIntersectTables is [ChainIntersect] over the composite keys of three tables.
func ChainIntersectTables(a, b, c *models.CanonicalTable) []string {
	return ChainIntersect(a.Keys(), b.Keys(), c.Keys())
}

// LeftOnlyTables is [LeftOnly] over the composite keys of two tables.
func LeftOnlyTables(a, b *models.CanonicalTable) []string {
	return LeftOnly(a.Keys(), b.Keys())
}

// SameAlbum compares two album values case-insensitively after trimming.
// An absent album compares as "".
func SameAlbum(x, y *string) bool {
	return foldAlbum(x) == foldAlbum(y)
}

// SameArtist compares two artist names case-insensitively after trimming.
func SameArtist(x, y string) bool {
	return strings.EqualFold(strings.TrimSpace(x), strings.TrimSpace(y))
}

func foldAlbum(album *string) string {
	if album == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(*album))
}

func keySet(keys []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		set[key] = struct{}{}
	}
	return set
}
