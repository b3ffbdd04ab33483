// Package library builds canonical per-source track tables.
//
// [BuildCanonicalTable] drops exact duplicate rows, normalizes title and artist with
// [shared.Normalize] and derives the composite key used by the reconciler.
package library

import (
	"fmt"
	"strings"

	"github.com/desertthunder/cratecheck/internal/models"
	"github.com/desertthunder/cratecheck/internal/shared"
)

// BuildCanonicalTable deduplicates records and normalizes them into a [models.CanonicalTable].
//
// Rows identical on title, artist and album are collapsed to the first occurrence and the
// remaining rows keep their source order. Rows differing only in album are both kept.
// The table's Source is taken from the first record.
//
// A title or artist that cannot be normalized fails the whole table with
// [shared.ErrInvalidInput]; an absent album is read as "".
func BuildCanonicalTable(records []models.TrackRecord) (*models.CanonicalTable, error) {
	table := &models.CanonicalTable{
		Records: make([]models.CanonicalRecord, 0, len(records)),
		Raw:     make([]models.TrackRecord, 0, len(records)),
	}
	if len(records) > 0 {
		table.Source = records[0].Source
	}

	seen := make(map[models.DedupKey]struct{}, len(records))
	for i, rec := range records {
		key := rec.Key()
		if _, dup := seen[key]; dup {
			table.Duplicates++
			continue
		}
		seen[key] = struct{}{}

		canon, err := Canonicalize(rec)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", rec.Source, i, err)
		}
		table.Records = append(table.Records, canon)
		table.Raw = append(table.Raw, rec)
	}

	return table, nil
}

// Canonicalize normalizes a single record.
func Canonicalize(rec models.TrackRecord) (models.CanonicalRecord, error) {
	title, err := shared.Normalize(rec.Title)
	if err != nil {
		return models.CanonicalRecord{}, fmt.Errorf("title: %w", err)
	}
	artist, err := shared.Normalize(rec.Artist)
	if err != nil {
		return models.CanonicalRecord{}, fmt.Errorf("artist: %w", err)
	}

	return models.CanonicalRecord{
		NormalizedTitle:  title,
		NormalizedArtist: artist,
		NormalizedAlbum:  strings.ToLower(strings.TrimSpace(rec.AlbumOrEmpty())),
		CompositeKey:     CompositeKey(title, artist),
	}, nil
}

// CompositeKey joins a normalized title and artist with no separator.
func CompositeKey(normalizedTitle, normalizedArtist string) string {
	return normalizedTitle + normalizedArtist
}
