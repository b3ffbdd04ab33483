// Package scanner walks a music folder and reads title/artist/album tags from each file.
//
// Results are produced lazily through [Scanner.Scan]. Problems with a single file or
// directory never stop the walk: they are reported as a [FileResult] carrying
// [shared.ErrTagExtraction] or [shared.ErrFilesystemAccess] and the walk moves on.
package scanner

import (
	"context"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/cratecheck/internal/models"
	"github.com/desertthunder/cratecheck/internal/shared"
	"github.com/dhowden/tag"
	"golang.org/x/time/rate"
)

// appleDoublePrefix marks the metadata twins macOS writes next to exported files.
// They carry no tags.
const appleDoublePrefix = "._"

// FileResult is the outcome of visiting one file or one unreadable directory.
type FileResult struct {
	Path  string             // file (or directory, for access errors) visited
	Dir   string             // directory containing Path
	Track models.TrackRecord // valid when Err is nil
	Err   error
}

// OK reports whether the result carries a track.
func (r FileResult) OK() bool { return r.Err == nil }

// TagReader reads the tags of the file at path.
type TagReader func(path string) (title, artist, album string, err error)

// Options configures a [Scanner].
type Options struct {
	Source     models.Source
	Ignore     []string // directories skipped with their subtree (string prefix match)
	Extensions []string // allowed extensions, case-insensitive; empty allows every file
	RateLimit  float64  // files per second, 0 for no limit
	Reader     TagReader
}

// Scanner walks a folder and emits one [FileResult] per visited file.
type Scanner struct {
	source     models.Source
	ignore     []string
	extensions map[string]struct{}
	limiter    *rate.Limiter
	read       TagReader
}

// New creates a Scanner. A nil Reader uses [ReadTags].
func New(opts Options) *Scanner {
	s := &Scanner{source: opts.Source, read: opts.Reader}
	if s.read == nil {
		s.read = ReadTags
	}

	for _, dir := range opts.Ignore {
		if dir = strings.TrimSpace(dir); dir != "" {
			s.ignore = append(s.ignore, filepath.Clean(dir))
		}
	}

	if len(opts.Extensions) > 0 {
		s.extensions = make(map[string]struct{}, len(opts.Extensions))
		for _, ext := range opts.Extensions {
			ext = strings.ToLower(strings.TrimSpace(ext))
			if ext != "" && !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			s.extensions[ext] = struct{}{}
		}
	}

	if opts.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}
	return s
}

// Ignored reports whether path equals or starts with an ignore-list entry.
func (s *Scanner) Ignored(path string) bool {
	path = filepath.Clean(path)
	for _, prefix := range s.ignore {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Scan walks root and yields results lazily.
//
// Each directory's files are visited before its subdirectories, all in name order.
// The walk stops early when the consumer stops ranging or ctx is cancelled; in the
// latter case a final result carrying ctx.Err() is yielded.
func (s *Scanner) Scan(ctx context.Context, root string) iter.Seq[FileResult] {
	return func(yield func(FileResult) bool) {
		s.walk(ctx, filepath.Clean(root), yield)
	}
}

// walk returns false once the consumer or ctx asked to stop.
func (s *Scanner) walk(ctx context.Context, dir string, yield func(FileResult) bool) bool {
	if s.Ignored(dir) {
		return true
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return yield(FileResult{
			Path: dir,
			Dir:  filepath.Dir(dir),
			Err:  fmt.Errorf("%w: %s: %v", shared.ErrFilesystemAccess, dir, err),
		})
	}

	var subdirs []string
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			subdirs = append(subdirs, path)
			continue
		}
		if !s.wanted(entry.Name()) {
			continue
		}

		if err := ctx.Err(); err != nil {
			yield(FileResult{Path: path, Dir: dir, Err: err})
			return false
		}
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				yield(FileResult{Path: path, Dir: dir, Err: err})
				return false
			}
		}

		if !yield(s.visit(path, dir)) {
			return false
		}
	}

	for _, sub := range subdirs {
		if !s.walk(ctx, sub, yield) {
			return false
		}
	}
	return true
}

func (s *Scanner) wanted(name string) bool {
	if strings.HasPrefix(name, appleDoublePrefix) {
		return false
	}
	if s.extensions == nil {
		return true
	}
	_, ok := s.extensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

func (s *Scanner) visit(path, dir string) FileResult {
	title, artist, album, err := s.read(path)
	if err != nil {
		return FileResult{Path: path, Dir: dir, Err: fmt.Errorf("%w: %s: %v", shared.ErrTagExtraction, path, err)}
	}
	return FileResult{
		Path:  path,
		Dir:   dir,
		Track: models.NewTrackRecord(s.source, title, artist, album),
	}
}

// ReadTags reads title, artist and album with [tag.ReadFrom].
func ReadTags(path string) (title, artist, album string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", "", err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return "", "", "", err
	}
	return m.Title(), m.Artist(), m.Album(), nil
}
