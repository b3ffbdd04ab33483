// package tasks implements the scan and reconciliation pipeline.
//
// The core abstraction is ReconcileEngine, which generates tracklists, reconciles them
// against the streaming export and writes the reports.
// Operations emit progress updates via channels for non-blocking status reporting to the CLI layer.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cratecheck/internal/formatter"
	"github.com/desertthunder/cratecheck/internal/library"
	"github.com/desertthunder/cratecheck/internal/matcher"
	"github.com/desertthunder/cratecheck/internal/models"
	"github.com/desertthunder/cratecheck/internal/reconcile"
	"github.com/desertthunder/cratecheck/internal/scanner"
	"github.com/desertthunder/cratecheck/internal/shared"
)

// ScanSummary counts the outcome of scanning one folder into a tracklist.
type ScanSummary struct {
	Source    models.Source
	Root      string // folder scanned
	Tracklist string // tracklist written
	Processed int    // tracks written
	Failed    int    // files whose tags could not be read
	Skipped   int    // directories that could not be read
}

// ScanResult contains both tracklist scans of a run.
type ScanResult struct {
	Owned *ScanSummary
	Crate *ScanSummary
}

// ReconcileResult contains the tables and outputs of a reconciliation.
type ReconcileResult struct {
	Streaming *models.CanonicalTable
	Owned     *models.CanonicalTable
	Crate     *models.CanonicalTable // nil for a mismatch-only run
	Outputs   *models.ReconciliationOutputs
	Artifacts []formatter.Artifact // files written, cleaned tables first
}

// RunResult contains all data from a full run.
type RunResult struct {
	Scan      *ScanResult
	Reconcile *ReconcileResult
}

// Engine defines the pipeline operations.
type Engine interface {
	// Scan regenerates the owned and crate tracklists from the file tags.
	Scan(ctx context.Context, progress chan<- ProgressUpdate) (*ScanResult, error)

	// Reconcile compares the streaming export with the existing tracklists and writes every report.
	Reconcile(ctx context.Context, progress chan<- ProgressUpdate) (*ReconcileResult, error)

	// Mismatches writes the fuzzy mismatch report between the streaming export and the owned tracklist.
	Mismatches(ctx context.Context, progress chan<- ProgressUpdate) (*ReconcileResult, error)

	// Run performs Scan followed by Reconcile.
	Run(ctx context.Context, progress chan<- ProgressUpdate) (*RunResult, error)
}

// ReconcileEngine implements Engine on top of a [shared.Config].
type ReconcileEngine struct {
	config  *shared.Config
	emitter *formatter.Emitter
	reader  scanner.TagReader
	logger  *log.Logger
	quiet   bool
}

// NewReconcileEngine creates a new ReconcileEngine. A nil logger discards output.
func NewReconcileEngine(config *shared.Config, logger *log.Logger) *ReconcileEngine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &ReconcileEngine{
		config:  config,
		emitter: formatter.NewEmitter(config.Output.Dir),
		logger:  logger,
	}
}

// WithTagReader replaces the tag reader used by Scan.
func (e *ReconcileEngine) WithTagReader(reader scanner.TagReader) *ReconcileEngine {
	e.reader = reader
	return e
}

// WithQuiet lowers per-file tag errors from warnings to debug logs.
func (e *ReconcileEngine) WithQuiet(quiet bool) *ReconcileEngine {
	e.quiet = quiet
	return e
}

// StreamingPath returns the streaming export read by Reconcile.
func (e *ReconcileEngine) StreamingPath() string {
	return e.config.Library.StreamingCSV
}

// OwnedTracklistPath returns the tracklist generated from the library root.
func (e *ReconcileEngine) OwnedTracklistPath() string {
	return e.config.OutputPath(e.config.Output.OwnedTracklist)
}

// CrateTracklistPath returns the tracklist generated from the crate folder.
func (e *ReconcileEngine) CrateTracklistPath() string {
	return e.config.OutputPath(e.config.Output.CrateTracklist)
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *ReconcileEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Scan regenerates the owned tracklist from the library root (minus the ignore list)
// and the crate tracklist from the crate folder.
func (e *ReconcileEngine) Scan(ctx context.Context, progress chan<- ProgressUpdate) (*ScanResult, error) {
	owned, err := e.scanFolder(ctx, progress, models.Owned, e.config.Library.Root, e.config.Library.Ignore, e.OwnedTracklistPath())
	if err != nil {
		return &ScanResult{Owned: owned}, err
	}

	crate, err := e.scanFolder(ctx, progress, models.Candidate, e.config.CratePath(), nil, e.CrateTracklistPath())
	return &ScanResult{Owned: owned, Crate: crate}, err
}

func (e *ReconcileEngine) scanFolder(
	ctx context.Context,
	progress chan<- ProgressUpdate,
	source models.Source,
	root string,
	ignore []string,
	output string,
) (*ScanSummary, error) {
	summary := &ScanSummary{Source: source, Root: root, Tracklist: output}
	logger := shared.WithLogger(e.logger, "source", source.String())

	tw, err := formatter.CreateTracklist(output, e.config.Output.IndexRows)
	if err != nil {
		return summary, err
	}

	s := scanner.New(scanner.Options{
		Source:     source,
		Ignore:     ignore,
		Extensions: e.config.Library.Extensions,
		RateLimit:  e.config.Scan.RateLimit,
		Reader:     e.reader,
	})

	scanErr := func() error {
		current := ""
		for res := range s.Scan(ctx, root) {
			if errors.Is(res.Err, shared.ErrFilesystemAccess) {
				summary.Skipped++
				logger.Warn("skipping unreadable folder", "path", res.Path, "err", res.Err)
				e.sendProgress(progress, scanDirSkippedUpdate(source, res.Path, res.Err))
				continue
			}
			if !res.OK() && !errors.Is(res.Err, shared.ErrTagExtraction) {
				return res.Err
			}

			if res.Dir != current {
				if current != "" {
					e.sendProgress(progress, scanDirDoneUpdate(source, current, tw.Count()))
				}
				current = res.Dir
				e.sendProgress(progress, scanDirUpdate(source, current))
			}

			if !res.OK() {
				summary.Failed++
				if e.quiet {
					logger.Debug("tag extraction failed", "path", res.Path, "err", res.Err)
				} else {
					logger.Warn("tag extraction failed", "path", res.Path, "err", res.Err)
				}
				e.sendProgress(progress, scanFileErrorUpdate(source, res.Path, res.Err))
				continue
			}
			if err := tw.Write(res.Track); err != nil {
				return err
			}
			summary.Processed++
		}
		if current != "" {
			e.sendProgress(progress, scanDirDoneUpdate(source, current, tw.Count()))
		}
		return nil
	}()

	if err := tw.Close(); err != nil && scanErr == nil {
		scanErr = err
	}
	if scanErr != nil {
		return summary, scanErr
	}

	logger.Info("tracklist complete", "path", output, "tracks", summary.Processed, "failed", summary.Failed, "skipped", summary.Skipped)
	e.sendProgress(progress, scanCompleteUpdate(summary))
	return summary, nil
}

type sourceFile struct {
	source models.Source
	path   string
}

// loadTables reads each source and builds its canonical table, in order.
func (e *ReconcileEngine) loadTables(ctx context.Context, progress chan<- ProgressUpdate, sources ...sourceFile) ([]*models.CanonicalTable, error) {
	total := len(sources)
	tables := make([]*models.CanonicalTable, 0, total)

	for i, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		e.sendProgress(progress, readSourceUpdate(i+1, total, src.source, src.path))
		records, err := formatter.ReadTracklist(src.path, src.source)
		if err != nil {
			return nil, err
		}

		table, err := library.BuildCanonicalTable(records)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", src.path, err)
		}
		// An empty file leaves the source unset.
		table.Source = src.source

		e.logger.Debug("built canonical table", "source", src.source.String(), "rows", len(records), "unique", table.Len(), "duplicates", table.Duplicates)
		e.sendProgress(progress, buildTableUpdate(i+1, total, table))
		tables = append(tables, table)
	}
	return tables, nil
}

func (e *ReconcileEngine) writeCleaned(progress chan<- ProgressUpdate, tables ...*models.CanonicalTable) ([]formatter.Artifact, error) {
	artifacts := make([]formatter.Artifact, 0, len(tables))
	for i, table := range tables {
		path, err := e.emitter.WriteTable(table)
		if err != nil {
			return artifacts, err
		}
		artifact := formatter.Artifact{
			Name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
			Path: path,
			Rows: table.Len(),
		}
		artifacts = append(artifacts, artifact)
		e.sendProgress(progress, writeArtifactUpdate(WriteCleaned, i+1, len(tables), artifact))
	}
	return artifacts, nil
}

func (e *ReconcileEngine) findMismatches(progress chan<- ProgressUpdate, left, right *models.CanonicalTable) []models.MatchResult {
	opts := matcher.Options{
		Threshold: e.config.Matcher.Threshold,
		Workers:   e.config.Matcher.Workers,
		WarnPairs: e.config.Matcher.WarnPairs,
		Logger:    e.logger,
	}

	e.sendProgress(progress, fuzzyStartUpdate(left.Len(), right.Len()))
	mismatches := matcher.FindCandidatePairs(left, right, opts)
	for _, m := range mismatches {
		e.logger.Debug("mismatch", "track1", m.LeftKey, "track2", m.RightKey, "score", m.Score)
	}
	e.sendProgress(progress, fuzzyDoneUpdate(mismatches, opts.Threshold))
	return mismatches
}

// Reconcile reads the streaming export and both tracklists, writes their cleaned tables
// and every result set.
func (e *ReconcileEngine) Reconcile(ctx context.Context, progress chan<- ProgressUpdate) (*ReconcileResult, error) {
	tables, err := e.loadTables(ctx, progress,
		sourceFile{models.Streaming, e.StreamingPath()},
		sourceFile{models.Owned, e.OwnedTracklistPath()},
		sourceFile{models.Candidate, e.CrateTracklistPath()},
	)
	if err != nil {
		return nil, err
	}
	streaming, owned, crate := tables[0], tables[1], tables[2]
	result := &ReconcileResult{Streaming: streaming, Owned: owned, Crate: crate}

	cleaned, err := e.writeCleaned(progress, streaming, owned, crate)
	result.Artifacts = cleaned
	if err != nil {
		return result, err
	}

	outputs := &models.ReconciliationOutputs{
		MatchedOwned:         reconcile.IntersectTables(streaming, owned),
		MatchedOwnedAndCrate: reconcile.ChainIntersectTables(streaming, owned, crate),
		RemainderUnmatched:   reconcile.LeftOnlyTables(streaming, owned),
		OwnedNotStreamed:     reconcile.LeftOnlyTables(owned, streaming),
	}
	result.Outputs = outputs
	e.sendProgress(progress, compareUpdate(outputs))

	if err := ctx.Err(); err != nil {
		return result, err
	}
	outputs.Mismatches = e.findMismatches(progress, streaming, owned)

	return result, e.writeResults(progress, result)
}

// Mismatches runs the fuzzy pass between the streaming export and the owned tracklist only.
func (e *ReconcileEngine) Mismatches(ctx context.Context, progress chan<- ProgressUpdate) (*ReconcileResult, error) {
	tables, err := e.loadTables(ctx, progress,
		sourceFile{models.Streaming, e.StreamingPath()},
		sourceFile{models.Owned, e.OwnedTracklistPath()},
	)
	if err != nil {
		return nil, err
	}

	streaming, owned := tables[0], tables[1]
	result := &ReconcileResult{
		Streaming: streaming,
		Owned:     owned,
		Outputs:   &models.ReconciliationOutputs{Mismatches: e.findMismatches(progress, streaming, owned)},
	}

	path, err := e.emitter.WriteMatches(formatter.MismatchesName, result.Outputs.Mismatches)
	if err != nil {
		return result, err
	}
	artifact := formatter.Artifact{Name: formatter.MismatchesName, Path: path, Rows: len(result.Outputs.Mismatches)}
	result.Artifacts = append(result.Artifacts, artifact)
	e.sendProgress(progress, writeArtifactUpdate(WriteResults, 1, 1, artifact))
	return result, nil
}

func (e *ReconcileEngine) writeResults(progress chan<- ProgressUpdate, result *ReconcileResult) error {
	artifacts, err := e.emitter.WriteOutputs(result.Outputs)
	result.Artifacts = append(result.Artifacts, artifacts...)
	for i, artifact := range artifacts {
		e.sendProgress(progress, writeArtifactUpdate(WriteResults, i+1, len(artifacts), artifact))
	}
	return err
}

// Run regenerates both tracklists, then reconciles them.
func (e *ReconcileEngine) Run(ctx context.Context, progress chan<- ProgressUpdate) (*RunResult, error) {
	result := &RunResult{}

	scan, err := e.Scan(ctx, progress)
	result.Scan = scan
	if err != nil {
		return result, fmt.Errorf("scan failed: %w", err)
	}

	rec, err := e.Reconcile(ctx, progress)
	result.Reconcile = rec
	if err != nil {
		return result, fmt.Errorf("reconcile failed: %w", err)
	}
	return result, nil
}

// Counts summarizes the scan for the run history.
func (r *ScanResult) Counts() models.RunCounts {
	var c models.RunCounts
	if r == nil {
		return c
	}
	if r.Owned != nil {
		c.OwnedRows = r.Owned.Processed
	}
	if r.Crate != nil {
		c.CrateRows = r.Crate.Processed
	}
	return c
}

// RunArtifacts lists the tracklists written by the scan.
func (r *ScanResult) RunArtifacts() []models.RunArtifact {
	var artifacts []models.RunArtifact
	if r == nil {
		return artifacts
	}
	for _, s := range []*ScanSummary{r.Owned, r.Crate} {
		if s == nil {
			continue
		}
		name := strings.TrimSuffix(filepath.Base(s.Tracklist), filepath.Ext(s.Tracklist))
		artifacts = append(artifacts, models.RunArtifact{Name: name, Path: s.Tracklist, Rows: s.Processed})
	}
	return artifacts
}

// Counts summarizes the reconciliation for the run history.
func (r *ReconcileResult) Counts() models.RunCounts {
	var c models.RunCounts
	if r == nil {
		return c
	}
	c.StreamingRows = r.Streaming.Len()
	c.OwnedRows = r.Owned.Len()
	c.CrateRows = r.Crate.Len()
	if o := r.Outputs; o != nil {
		c.MatchedOwned = len(o.MatchedOwned)
		c.MatchedOwnedAndCrate = len(o.MatchedOwnedAndCrate)
		c.Remainder = len(o.RemainderUnmatched)
		c.OwnedNotStreamed = len(o.OwnedNotStreamed)
		c.Mismatches = len(o.Mismatches)
	}
	return c
}

// RunArtifacts lists the files written by the reconciliation.
func (r *ReconcileResult) RunArtifacts() []models.RunArtifact {
	var artifacts []models.RunArtifact
	if r == nil {
		return artifacts
	}
	for _, a := range r.Artifacts {
		artifacts = append(artifacts, models.RunArtifact{Name: a.Name, Path: a.Path, Rows: a.Rows})
	}
	return artifacts
}
