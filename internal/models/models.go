// package models defines the data model for library reconciliation
package models

import "fmt"

// Source identifies the library a track row came from.
type Source int

const (
	Streaming Source = iota
	Owned
	Candidate
)

func (s Source) String() string {
	switch s {
	case Streaming:
		return "streaming"
	case Owned:
		return "owned"
	case Candidate:
		return "candidate"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}

// TrackRecord is one row produced by the metadata source or read from a tracklist.
//
// Album is nil when the row carries no album value at all.
type TrackRecord struct {
	Title  string
	Artist string
	Album  *string
	Source Source
}

// NewTrackRecord builds a record with a present album value.
func NewTrackRecord(source Source, title, artist, album string) TrackRecord {
	return TrackRecord{Title: title, Artist: artist, Album: &album, Source: source}
}

// AlbumOrEmpty returns the album, or "" when absent.
func (t TrackRecord) AlbumOrEmpty() string {
	if t.Album == nil {
		return ""
	}
	return *t.Album
}

// DedupKey identifies a row for exact, pre-normalization deduplication.
//
// An absent album and an empty album are distinct rows.
type DedupKey struct {
	Title    string
	Artist   string
	Album    string
	HasAlbum bool
}

// Key returns the exact-match identity of the row.
func (t TrackRecord) Key() DedupKey {
	return DedupKey{Title: t.Title, Artist: t.Artist, Album: t.AlbumOrEmpty(), HasAlbum: t.Album != nil}
}

// CanonicalRecord is a TrackRecord after normalization.
//
// NormalizedTitle and NormalizedArtist only contain [a-z0-9].
// CompositeKey is NormalizedTitle immediately followed by NormalizedArtist.
type CanonicalRecord struct {
	NormalizedTitle  string
	NormalizedArtist string
	NormalizedAlbum  string
	CompositeKey     string
}

// CanonicalTable is the deduplicated, normalized table of one source.
//
// Raw[i] is the source row Records[i] was derived from.
type CanonicalTable struct {
	Source     Source
	Records    []CanonicalRecord
	Raw        []TrackRecord
	Duplicates int // rows dropped as exact duplicates
}

// Len returns the number of rows in the table.
func (t *CanonicalTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// Keys returns the composite keys in table order.
func (t *CanonicalTable) Keys() []string {
	if t == nil {
		return nil
	}
	keys := make([]string, len(t.Records))
	for i, rec := range t.Records {
		keys[i] = rec.CompositeKey
	}
	return keys
}

// MatchResult is one pair compared by the fuzzy matcher.
type MatchResult struct {
	LeftIndex  int
	RightIndex int
	LeftKey    string
	RightKey   string
	Score      int  // token-sort similarity, 0-100
	IsMatch    bool // Score reached the threshold
}

// ReconciliationOutputs holds the named result sets of one run.
type ReconciliationOutputs struct {
	MatchedOwned         []string      // streaming ∩ owned
	MatchedOwnedAndCrate []string      // streaming ∩ owned ∩ candidate
	RemainderUnmatched   []string      // streaming without an owned copy
	OwnedNotStreamed     []string      // owned without a streaming entry
	Mismatches           []MatchResult // dissimilar streaming/owned pairs for manual review
}
