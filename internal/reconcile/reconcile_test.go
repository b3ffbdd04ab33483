package reconcile

import (
	"sort"
	"testing"

	"github.com/desertthunder/cratecheck/internal/library"
	"github.com/desertthunder/cratecheck/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func TestIntersect(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want []string
	}{
		{"common keys in left order", []string{"c", "a", "b"}, []string{"a", "c"}, []string{"c", "a"}},
		{"left duplicates kept", []string{"a", "a", "b"}, []string{"a"}, []string{"a", "a"}},
		{"right duplicates do not multiply", []string{"a"}, []string{"a", "a", "a"}, []string{"a"}},
		{"disjoint", []string{"a"}, []string{"b"}, []string{}},
		{"empty left", nil, []string{"a"}, []string{}},
		{"empty right", []string{"a"}, nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Intersect(tt.a, tt.b))
		})
	}
}

func TestLeftOnly(t *testing.T) {
	assert.Equal(t, []string{"b", "b"}, LeftOnly([]string{"a", "b", "c", "b"}, []string{"a", "c"}))
	assert.Equal(t, []string{"a"}, LeftOnly([]string{"a"}, nil))
	assert.Empty(t, LeftOnly(nil, []string{"a"}))
}

func TestLeftOnlyAndIntersectRebuildLeft(t *testing.T) {
	a := []string{"klangdjx", "sundayx", "klangdjx", "voidartist", "", "zz"}
	b := []string{"klangdjx", "", "other"}

	joined := append(Intersect(a, b), LeftOnly(a, b)...)

	want := append([]string(nil), a...)
	sort.Strings(want)
	sort.Strings(joined)
	assert.Equal(t, want, joined)

	for _, key := range Intersect(a, b) {
		assert.Contains(t, b, key)
	}
	for _, key := range LeftOnly(a, b) {
		assert.NotContains(t, b, key)
	}
}

func TestChainIntersect(t *testing.T) {
	a := []string{"x", "y", "z"}
	b := []string{"y", "z", "w"}
	c := []string{"z", "y"}

	assert.Equal(t, []string{"y", "z"}, ChainIntersect(a, b, c))
	assert.Equal(t, Intersect(Intersect(a, b), c), ChainIntersect(a, b, c))

	orders := [][]string{
		ChainIntersect(b, a, c),
		ChainIntersect(c, b, a),
		ChainIntersect(a, c, b),
	}
	for _, got := range orders {
		assert.ElementsMatch(t, []string{"y", "z"}, got)
	}
}

func TestTables_EndToEnd(t *testing.T) {
	streaming, err := library.BuildCanonicalTable([]models.TrackRecord{
		models.NewTrackRecord(models.Streaming, "Klang", "DJ X", "Album1"),
	})
	require.NoError(t, err)
	owned, err := library.BuildCanonicalTable([]models.TrackRecord{
		models.NewTrackRecord(models.Owned, "Klang (Original Mix)", "dj x", "Album2"),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"klangdjx"}, streaming.Keys())
	assert.Equal(t, []string{"klangdjx"}, owned.Keys())
	assert.Equal(t, []string{"klangdjx"}, IntersectTables(streaming, owned))
	assert.Empty(t, LeftOnlyTables(streaming, owned))
	assert.False(t, SameAlbum(streaming.Raw[0].Album, owned.Raw[0].Album))

	crate, err := library.BuildCanonicalTable(nil)
	require.NoError(t, err)
	assert.Empty(t, ChainIntersectTables(streaming, owned, crate))
}

func TestSameAlbum(t *testing.T) {
	tests := []struct {
		name string
		x, y *string
		want bool
	}{
		{"case and spacing", ptr(" Album One "), ptr("album one"), true},
		{"both absent", nil, nil, true},
		{"absent equals empty", nil, ptr("  "), true},
		{"different", ptr("One"), ptr("Two"), false},
		{"absent vs value", nil, ptr("One"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SameAlbum(tt.x, tt.y))
			assert.Equal(t, tt.want, SameAlbum(tt.y, tt.x))
		})
	}
}

func TestSameArtist(t *testing.T) {
	assert.True(t, SameArtist("DJ X ", " dj x"))
	assert.False(t, SameArtist("DJ X", "DJ Y"))
}
