package formatter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/cratecheck/internal/models"
	"github.com/desertthunder/cratecheck/internal/shared"
)

// TracklistWriter writes one CSV row per scanned track.
//
// Rows are flushed as they are written so a failed scan leaves every track read so far on disk.
type TracklistWriter struct {
	w       *csv.Writer
	closer  io.Closer
	indexed bool
	count   int
}

// NewTracklistWriter writes the header to w and returns a writer for the rows.
// With indexed set, every row is prefixed with a 1-based track number.
func NewTracklistWriter(w io.Writer, indexed bool) (*TracklistWriter, error) {
	tw := &TracklistWriter{w: csv.NewWriter(w), indexed: indexed}

	header := TracklistHeader
	if indexed {
		header = IndexedTracklistHeader
	}
	if err := tw.writeRow(header); err != nil {
		return nil, fmt.Errorf("%w: failed to write tracklist header: %v", shared.ErrArtifactWrite, err)
	}
	return tw, nil
}

// CreateTracklist creates or truncates the tracklist file at path.
func CreateTracklist(path string, indexed bool) (*TracklistWriter, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("%w: failed to create directory %s: %v", shared.ErrArtifactWrite, dir, err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create %s: %v", shared.ErrArtifactWrite, path, err)
	}

	tw, err := NewTracklistWriter(file, indexed)
	if err != nil {
		file.Close()
		return nil, err
	}
	tw.closer = file
	return tw, nil
}

// Write appends a track row. An absent album is written as an empty cell.
func (tw *TracklistWriter) Write(track models.TrackRecord) error {
	row := []string{track.Title, track.Artist, track.AlbumOrEmpty()}
	if tw.indexed {
		row = append([]string{strconv.Itoa(tw.count + 1)}, row...)
	}
	if err := tw.writeRow(row); err != nil {
		return fmt.Errorf("%w: failed to write track %q: %v", shared.ErrArtifactWrite, track.Title, err)
	}
	tw.count++
	return nil
}

// Count returns the number of track rows written.
func (tw *TracklistWriter) Count() int {
	return tw.count
}

// Close closes the underlying file, if the writer owns one.
func (tw *TracklistWriter) Close() error {
	if tw.closer == nil {
		return nil
	}
	if err := tw.closer.Close(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrArtifactWrite, err)
	}
	return nil
}

func (tw *TracklistWriter) writeRow(row []string) error {
	if err := tw.w.Write(row); err != nil {
		return err
	}
	tw.w.Flush()
	return tw.w.Error()
}

var (
	titleAliases  = []string{"track name", "title", "name", "track title", "track"}
	artistAliases = []string{"artist name", "artist", "artist name(s)", "artists"}
	albumAliases  = []string{"album", "album name", "album title"}
)

// columns holds the resolved position of each field; album is -1 when the file has none.
type columns struct {
	title, artist, album int
}

// resolveColumns maps header names to fields. A header without both a title and an
// artist column falls back to the first three columns in order.
func resolveColumns(header []string) columns {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, seen := index[name]; !seen {
			index[name] = i
		}
	}

	find := func(aliases []string) int {
		for _, alias := range aliases {
			if i, ok := index[alias]; ok {
				return i
			}
		}
		return -1
	}

	cols := columns{title: find(titleAliases), artist: find(artistAliases), album: find(albumAliases)}
	if cols.title < 0 || cols.artist < 0 {
		cols = columns{title: 0, artist: 1, album: 2}
	}
	return cols
}

// ParseTracklist reads track rows from CSV data with a header row.
//
// A row without a title or artist cell is [shared.ErrInvalidInput]. A missing or empty
// album cell leaves the album absent.
func ParseTracklist(r io.Reader, source models.Source) ([]models.TrackRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read header: %v", shared.ErrArtifactRead, err)
	}
	cols := resolveColumns(header)

	var tracks []models.TrackRecord
	for row := 1; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", shared.ErrArtifactRead, row, err)
		}
		if len(record) <= cols.title || len(record) <= cols.artist {
			return nil, fmt.Errorf("%w: row %d has %d columns, missing title or artist", shared.ErrInvalidInput, row, len(record))
		}

		track := models.TrackRecord{Title: record[cols.title], Artist: record[cols.artist], Source: source}
		if cols.album >= 0 && cols.album < len(record) && record[cols.album] != "" {
			album := record[cols.album]
			track.Album = &album
		}
		tracks = append(tracks, track)
	}
	return tracks, nil
}

// ReadTracklist reads the tracklist or streaming export at path.
func ReadTracklist(path string, source models.Source) ([]models.TrackRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrArtifactRead, err)
	}
	defer file.Close()

	tracks, err := ParseTracklist(file, source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tracks, nil
}
