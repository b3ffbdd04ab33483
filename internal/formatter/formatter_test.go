package formatter

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/cratecheck/internal/models"
	"github.com/desertthunder/cratecheck/internal/shared"
	th "github.com/desertthunder/cratecheck/internal/testing"
)

func cleanedTable() *models.CanonicalTable {
	return &models.CanonicalTable{
		Source: models.Streaming,
		Records: []models.CanonicalRecord{
			{NormalizedTitle: "klang", NormalizedArtist: "djx", NormalizedAlbum: "ep one", CompositeKey: "klangdjx"},
			{NormalizedTitle: "sunday", NormalizedArtist: "voidartist", CompositeKey: "sundayvoidartist"},
		},
		Raw: []models.TrackRecord{
			models.NewTrackRecord(models.Streaming, "Klang (Original Mix)", "DJ X", "EP One"),
			{Title: "Sunday", Artist: "Void Artist", Source: models.Streaming},
		},
	}
}

func TestExporters(t *testing.T) {
	t.Run("TableToCSV", func(t *testing.T) {
		data, err := TableToCSV(cleanedTable())
		if err != nil {
			t.Fatalf("TableToCSV failed: %v", err)
		}

		want := "Track name,Artist name,Album,Track and Artist\n" +
			"klang,djx,EP One,klangdjx\n" +
			"sunday,voidartist,,sundayvoidartist\n"
		if string(data) != want {
			t.Errorf("TableToCSV() =\n%s\nwant\n%s", data, want)
		}
	})

	t.Run("KeysToCSV", func(t *testing.T) {
		data, err := KeysToCSV([]string{"b", "a", "b"})
		if err != nil {
			t.Fatalf("KeysToCSV failed: %v", err)
		}
		if string(data) != "Track and Artist\nb\na\nb\n" {
			t.Errorf("rows should keep computation order and duplicates, got %q", data)
		}
	})

	t.Run("KeysToCSV empty", func(t *testing.T) {
		data, err := KeysToCSV(nil)
		if err != nil {
			t.Fatalf("KeysToCSV failed: %v", err)
		}
		if string(data) != "Track and Artist\n" {
			t.Errorf("expected header only, got %q", data)
		}
	})

	t.Run("MatchesToCSV", func(t *testing.T) {
		data, err := MatchesToCSV([]models.MatchResult{
			{LeftIndex: 0, RightIndex: 3, LeftKey: "klangdjx", RightKey: "voidartist", Score: 11},
		})
		if err != nil {
			t.Fatalf("MatchesToCSV failed: %v", err)
		}
		want := "Left index,Right index,Track 1,Track 2,Score\n0,3,klangdjx,voidartist,11\n"
		if string(data) != want {
			t.Errorf("MatchesToCSV() = %q, want %q", data, want)
		}
	})
}

func TestEmitter(t *testing.T) {
	t.Run("paths", func(t *testing.T) {
		e := NewEmitter("/out")
		paths := map[models.Source]string{
			models.Streaming: "/out/cleaned/spotify_library_cleaned.csv",
			models.Owned:     "/out/cleaned/mytracklist_cleaned.csv",
			models.Candidate: "/out/cleaned/temptracklist_cleaned.csv",
		}
		for source, want := range paths {
			if got := e.CleanedPath(source); got != want {
				t.Errorf("CleanedPath(%v) = %s, want %s", source, got, want)
			}
		}
		if got := e.ResultPath(RemainderName); got != "/out/results/remainder_spotify.csv" {
			t.Errorf("unexpected result path %s", got)
		}
	})

	t.Run("WriteTable", func(t *testing.T) {
		e := NewEmitter(t.TempDir())
		path, err := e.WriteTable(cleanedTable())
		if err != nil {
			t.Fatalf("WriteTable failed: %v", err)
		}

		th.AssertFileExists(t, path)
		content := th.MustReadFile(t, path)
		if !strings.HasPrefix(content, "Track name,Artist name,Album,Track and Artist\n") {
			t.Errorf("cleaned table missing header: %q", content)
		}
	})

	t.Run("WriteKeys truncates", func(t *testing.T) {
		e := NewEmitter(t.TempDir())
		if _, err := e.WriteKeys(RemainderName, []string{"a", "b", "c"}); err != nil {
			t.Fatalf("WriteKeys failed: %v", err)
		}
		path, err := e.WriteKeys(RemainderName, []string{"z"})
		if err != nil {
			t.Fatalf("WriteKeys failed: %v", err)
		}

		if content := th.MustReadFile(t, path); content != "Track and Artist\nz\n" {
			t.Errorf("second write should replace the first, got %q", content)
		}
	})

	t.Run("WriteOutputs", func(t *testing.T) {
		dir := t.TempDir()
		e := NewEmitter(dir)
		out := &models.ReconciliationOutputs{
			MatchedOwned:         []string{"klangdjx"},
			MatchedOwnedAndCrate: []string{},
			RemainderUnmatched:   []string{"sundayvoidartist"},
			OwnedNotStreamed:     []string{},
			Mismatches:           []models.MatchResult{{LeftIndex: 0, RightIndex: 0, LeftKey: "a", RightKey: "b"}},
		}

		artifacts, err := e.WriteOutputs(out)
		if err != nil {
			t.Fatalf("WriteOutputs failed: %v", err)
		}

		names := []string{MatchedOwnedName, MatchedOwnedAndCrateName, RemainderName, OwnedNotStreamedName, MismatchesName}
		if len(artifacts) != len(names) {
			t.Fatalf("expected %d artifacts, got %d", len(names), len(artifacts))
		}
		for i, name := range names {
			if artifacts[i].Name != name {
				t.Errorf("artifact %d = %s, want %s", i, artifacts[i].Name, name)
			}
			th.AssertFileExists(t, artifacts[i].Path)
		}
		if artifacts[0].Rows != 1 || artifacts[1].Rows != 0 {
			t.Errorf("unexpected row counts %+v", artifacts[:2])
		}
		th.AssertDirExists(t, filepath.Join(dir, "results"))
	})

	t.Run("WriteOutputs without fuzzy pass", func(t *testing.T) {
		e := NewEmitter(t.TempDir())
		artifacts, err := e.WriteOutputs(&models.ReconciliationOutputs{})
		if err != nil {
			t.Fatalf("WriteOutputs failed: %v", err)
		}
		if len(artifacts) != 4 {
			t.Errorf("mismatches should be skipped, got %d artifacts", len(artifacts))
		}
		if _, err := os.Stat(e.ResultPath(MismatchesName)); !os.IsNotExist(err) {
			t.Error("fuzzy_mismatches.csv should not be written")
		}
	})

	t.Run("unwritable directory", func(t *testing.T) {
		blocker := filepath.Join(t.TempDir(), "file")
		th.MustWriteFile(t, blocker, "not a directory")

		e := NewEmitter(blocker)
		if _, err := e.WriteKeys(RemainderName, []string{"a"}); !errors.Is(err, shared.ErrArtifactWrite) {
			t.Errorf("expected ErrArtifactWrite, got %v", err)
		}
		if _, err := e.WriteOutputs(&models.ReconciliationOutputs{}); !errors.Is(err, shared.ErrArtifactWrite) {
			t.Errorf("expected ErrArtifactWrite, got %v", err)
		}
	})
}

func TestTracklistWriter(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		var buf bytes.Buffer
		tw, err := NewTracklistWriter(&buf, false)
		if err != nil {
			t.Fatalf("NewTracklistWriter failed: %v", err)
		}

		if err := tw.Write(models.NewTrackRecord(models.Owned, "Klang", "DJ X", "EP, One")); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		if err := tw.Write(models.TrackRecord{Title: "Sunday", Artist: "Void Artist"}); err != nil {
			t.Fatalf("Write failed: %v", err)
		}

		want := "Track name,Artist name,Album\nKlang,DJ X,\"EP, One\"\nSunday,Void Artist,\n"
		if buf.String() != want {
			t.Errorf("got %q, want %q", buf.String(), want)
		}
		if tw.Count() != 2 {
			t.Errorf("expected count 2, got %d", tw.Count())
		}
		if err := tw.Close(); err != nil {
			t.Errorf("Close without a file should succeed: %v", err)
		}
	})

	t.Run("indexed", func(t *testing.T) {
		var buf bytes.Buffer
		tw, err := NewTracklistWriter(&buf, true)
		if err != nil {
			t.Fatalf("NewTracklistWriter failed: %v", err)
		}
		for _, title := range []string{"A", "B"} {
			if err := tw.Write(models.NewTrackRecord(models.Owned, title, "X", "")); err != nil {
				t.Fatalf("Write failed: %v", err)
			}
		}

		want := "Track number,Track name,Artist name,Album\n1,A,X,\n2,B,X,\n"
		if buf.String() != want {
			t.Errorf("got %q, want %q", buf.String(), want)
		}
	})

	t.Run("header write fails", func(t *testing.T) {
		if _, err := NewTracklistWriter(&th.FWriter{}, false); !errors.Is(err, shared.ErrArtifactWrite) {
			t.Errorf("expected ErrArtifactWrite, got %v", err)
		}
	})

	t.Run("row write fails", func(t *testing.T) {
		var buf bytes.Buffer
		lw := th.NewLimitedWriter(1, 0, &buf)
		tw, err := NewTracklistWriter(&lw, false)
		if err != nil {
			t.Fatalf("header should be written: %v", err)
		}
		if err := tw.Write(models.NewTrackRecord(models.Owned, "A", "B", "C")); !errors.Is(err, shared.ErrArtifactWrite) {
			t.Errorf("expected ErrArtifactWrite, got %v", err)
		}
		if tw.Count() != 0 {
			t.Errorf("failed rows should not be counted, got %d", tw.Count())
		}
	})

	t.Run("CreateTracklist truncates", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "mytracklist.csv")
		th.MustWriteFile(t, path, "stale,rows,from,last,run\n")

		tw, err := CreateTracklist(path, false)
		if err != nil {
			t.Fatalf("CreateTracklist failed: %v", err)
		}
		if err := tw.Write(models.NewTrackRecord(models.Owned, "Klang", "DJ X", "EP")); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		if err := tw.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}

		if content := th.MustReadFile(t, path); content != "Track name,Artist name,Album\nKlang,DJ X,EP\n" {
			t.Errorf("unexpected tracklist %q", content)
		}
	})
}

func TestParseTracklist(t *testing.T) {
	t.Run("named columns", func(t *testing.T) {
		data := "Album,Artist Name,Track Name\nEP,DJ X,Klang\n,Void Artist,Sunday\n"
		tracks, err := ParseTracklist(strings.NewReader(data), models.Streaming)
		if err != nil {
			t.Fatalf("ParseTracklist failed: %v", err)
		}
		if len(tracks) != 2 {
			t.Fatalf("expected 2 tracks, got %d", len(tracks))
		}
		if tracks[0].Title != "Klang" || tracks[0].Artist != "DJ X" || tracks[0].AlbumOrEmpty() != "EP" {
			t.Errorf("unexpected first track %+v", tracks[0])
		}
		if tracks[1].Album != nil {
			t.Errorf("empty album cell should be absent, got %q", *tracks[1].Album)
		}
		if tracks[0].Source != models.Streaming {
			t.Errorf("expected streaming source, got %v", tracks[0].Source)
		}
	})

	t.Run("indexed tracklist", func(t *testing.T) {
		data := "Track number,Track name,Artist name,Album\n1,Klang,DJ X,EP\n"
		tracks, err := ParseTracklist(strings.NewReader(data), models.Owned)
		if err != nil {
			t.Fatalf("ParseTracklist failed: %v", err)
		}
		if len(tracks) != 1 || tracks[0].Title != "Klang" {
			t.Errorf("track number column should be skipped, got %+v", tracks)
		}
	})

	t.Run("byte order mark", func(t *testing.T) {
		data := "\ufeffTitle,Artist\nKlang,DJ X\n"
		tracks, err := ParseTracklist(strings.NewReader(data), models.Streaming)
		if err != nil {
			t.Fatalf("ParseTracklist failed: %v", err)
		}
		if len(tracks) != 1 || tracks[0].Title != "Klang" || tracks[0].Album != nil {
			t.Errorf("unexpected tracks %+v", tracks)
		}
	})

	t.Run("positional fallback", func(t *testing.T) {
		data := "Song,Performer,Record,Added\nKlang,DJ X,EP,2021\n"
		tracks, err := ParseTracklist(strings.NewReader(data), models.Streaming)
		if err != nil {
			t.Fatalf("ParseTracklist failed: %v", err)
		}
		if len(tracks) != 1 || tracks[0].Artist != "DJ X" || tracks[0].AlbumOrEmpty() != "EP" {
			t.Errorf("unexpected tracks %+v", tracks)
		}
	})

	t.Run("short row without album", func(t *testing.T) {
		data := "Track name,Artist name,Album\nKlang,DJ X\n"
		tracks, err := ParseTracklist(strings.NewReader(data), models.Owned)
		if err != nil {
			t.Fatalf("ParseTracklist failed: %v", err)
		}
		if tracks[0].Album != nil {
			t.Error("missing album cell should be absent")
		}
	})

	t.Run("missing artist cell", func(t *testing.T) {
		data := "Track name,Artist name,Album\nKlang\n"
		if _, err := ParseTracklist(strings.NewReader(data), models.Owned); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		tracks, err := ParseTracklist(strings.NewReader(""), models.Owned)
		if err != nil || len(tracks) != 0 {
			t.Errorf("expected no tracks and no error, got %v, %v", tracks, err)
		}
	})

	t.Run("unreadable input", func(t *testing.T) {
		if _, err := ParseTracklist(&th.FReader{}, models.Owned); !errors.Is(err, shared.ErrArtifactRead) {
			t.Errorf("expected ErrArtifactRead, got %v", err)
		}
	})
}

func TestReadTracklist(t *testing.T) {
	t.Run("round trip through the writer", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "temptracklist.csv")
		tw, err := CreateTracklist(path, true)
		if err != nil {
			t.Fatalf("CreateTracklist failed: %v", err)
		}
		if err := tw.Write(models.NewTrackRecord(models.Candidate, "Klang (Original Mix)", "DJ X", "EP")); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		if err := tw.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}

		tracks, err := ReadTracklist(path, models.Candidate)
		if err != nil {
			t.Fatalf("ReadTracklist failed: %v", err)
		}
		if len(tracks) != 1 || tracks[0].Title != "Klang (Original Mix)" || tracks[0].Source != models.Candidate {
			t.Errorf("unexpected tracks %+v", tracks)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadTracklist(filepath.Join(t.TempDir(), "nope.csv"), models.Owned)
		if !errors.Is(err, shared.ErrArtifactRead) {
			t.Errorf("expected ErrArtifactRead, got %v", err)
		}
	})
}
