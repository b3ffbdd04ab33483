// package formatter reads and writes the CSV tracklists and reconciliation reports
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/desertthunder/cratecheck/internal/models"
	"github.com/desertthunder/cratecheck/internal/shared"
)

// Column headers of the files this package writes.
var (
	TracklistHeader        = []string{"Track name", "Artist name", "Album"}
	IndexedTracklistHeader = []string{"Track number", "Track name", "Artist name", "Album"}
	CleanedHeader          = []string{"Track name", "Artist name", "Album", "Track and Artist"}
	KeysHeader             = []string{"Track and Artist"}
	MatchesHeader          = []string{"Left index", "Right index", "Track 1", "Track 2", "Score"}
)

// Result set names written under results/.
const (
	MatchedOwnedName         = "matched_tracks_spot_vs_owned"
	MatchedOwnedAndCrateName = "matched_tracks_spot_and_owned_vs_crate"
	RemainderName            = "remainder_spotify"
	OwnedNotStreamedName     = "owned_not_in_spotify"
	MismatchesName           = "fuzzy_mismatches"
)

// TableToCSV converts a canonical table to CSV with columns: Track name, Artist name, Album, Track and Artist
//
// Title and artist are the normalized values; the album is written as read from the source.
func TableToCSV(table *models.CanonicalTable) ([]byte, error) {
	rows := make([][]string, 0, table.Len())
	for i, rec := range table.Records {
		album := rec.NormalizedAlbum
		if i < len(table.Raw) {
			album = table.Raw[i].AlbumOrEmpty()
		}
		rows = append(rows, []string{rec.NormalizedTitle, rec.NormalizedArtist, album, rec.CompositeKey})
	}
	return encodeCSV(CleanedHeader, rows)
}

// KeysToCSV converts a result set to a single-column CSV, one composite key per row.
func KeysToCSV(keys []string) ([]byte, error) {
	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, []string{key})
	}
	return encodeCSV(KeysHeader, rows)
}

// MatchesToCSV converts fuzzy matcher results to CSV with columns: Left index, Right index, Track 1, Track 2, Score
func MatchesToCSV(results []models.MatchResult) ([]byte, error) {
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		rows = append(rows, []string{
			strconv.Itoa(res.LeftIndex),
			strconv.Itoa(res.RightIndex),
			res.LeftKey,
			res.RightKey,
			strconv.Itoa(res.Score),
		})
	}
	return encodeCSV(MatchesHeader, rows)
}

func encodeCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("failed to write CSV records: %w", err)
	}

	return buf.Bytes(), nil
}

// Emitter persists cleaned tables and result sets below Dir.
//
// Every artifact is rewritten from scratch; nothing is appended or versioned.
type Emitter struct {
	Dir string
}

// NewEmitter creates an Emitter rooted at dir ("" is the working directory).
func NewEmitter(dir string) *Emitter {
	return &Emitter{Dir: dir}
}

// CleanedPath is where the cleaned table of source is written.
func (e *Emitter) CleanedPath(source models.Source) string {
	name := source.String()
	switch source {
	case models.Streaming:
		name = "spotify_library"
	case models.Owned:
		name = "mytracklist"
	case models.Candidate:
		name = "temptracklist"
	}
	return filepath.Join(e.Dir, "cleaned", name+"_cleaned.csv")
}

// ResultPath is where the result set called name is written.
func (e *Emitter) ResultPath(name string) string {
	return filepath.Join(e.Dir, "results", name+".csv")
}

// WriteTable writes the cleaned table of its source and returns the file path.
func (e *Emitter) WriteTable(table *models.CanonicalTable) (string, error) {
	data, err := TableToCSV(table)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrArtifactWrite, err)
	}
	path := e.CleanedPath(table.Source)
	return path, writeArtifact(path, data)
}

// WriteKeys writes a named result set and returns the file path.
func (e *Emitter) WriteKeys(name string, keys []string) (string, error) {
	data, err := KeysToCSV(keys)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrArtifactWrite, err)
	}
	path := e.ResultPath(name)
	return path, writeArtifact(path, data)
}

// WriteMatches writes fuzzy matcher results and returns the file path.
func (e *Emitter) WriteMatches(name string, results []models.MatchResult) (string, error) {
	data, err := MatchesToCSV(results)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrArtifactWrite, err)
	}
	path := e.ResultPath(name)
	return path, writeArtifact(path, data)
}

// Artifact is one file written by [Emitter.WriteOutputs].
type Artifact struct {
	Name string
	Path string
	Rows int
}

// WriteOutputs writes every result set of a run, in a fixed order.
// Mismatches are skipped when nil (the fuzzy pass did not run).
func (e *Emitter) WriteOutputs(out *models.ReconciliationOutputs) ([]Artifact, error) {
	sets := []struct {
		name string
		keys []string
	}{
		{MatchedOwnedName, out.MatchedOwned},
		{MatchedOwnedAndCrateName, out.MatchedOwnedAndCrate},
		{RemainderName, out.RemainderUnmatched},
		{OwnedNotStreamedName, out.OwnedNotStreamed},
	}

	artifacts := make([]Artifact, 0, len(sets)+1)
	for _, set := range sets {
		path, err := e.WriteKeys(set.name, set.keys)
		if err != nil {
			return artifacts, err
		}
		artifacts = append(artifacts, Artifact{Name: set.name, Path: path, Rows: len(set.keys)})
	}

	if out.Mismatches != nil {
		path, err := e.WriteMatches(MismatchesName, out.Mismatches)
		if err != nil {
			return artifacts, err
		}
		artifacts = append(artifacts, Artifact{Name: MismatchesName, Path: path, Rows: len(out.Mismatches)})
	}

	return artifacts, nil
}

// writeArtifact replaces the file at path, creating parent directories as needed.
func writeArtifact(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("%w: failed to create directory %s: %v", shared.ErrArtifactWrite, dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("%w: failed to write %s: %v", shared.ErrArtifactWrite, path, err)
	}
	return nil
}
