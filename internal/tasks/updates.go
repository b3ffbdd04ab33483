package tasks

import (
	"fmt"

	"github.com/desertthunder/cratecheck/internal/formatter"
	"github.com/desertthunder/cratecheck/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Kind    Kind   // Severity, used for colouring
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	ScanOwned Phase = iota
	ScanCrate
	ReadSources
	BuildTables
	WriteCleaned
	Compare
	FuzzyMatch
	WriteResults
)

func (p Phase) String() string {
	switch p {
	case ScanOwned:
		return "scan_owned"
	case ScanCrate:
		return "scan_crate"
	case ReadSources:
		return "read_sources"
	case BuildTables:
		return "build_tables"
	case WriteCleaned:
		return "write_cleaned"
	case Compare:
		return "compare"
	case FuzzyMatch:
		return "fuzzy_match"
	case WriteResults:
		return "write_results"
	default:
		return ""
	}
}

// Kind classifies an update.
type Kind int

const (
	KindInfo Kind = iota
	KindDone
	KindWarn
	KindError
)

func scanPhase(source models.Source) Phase {
	if source == models.Candidate {
		return ScanCrate
	}
	return ScanOwned
}

func scanDirUpdate(source models.Source, dir string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   scanPhase(source),
		Kind:    KindInfo,
		Message: fmt.Sprintf("Generating tracklist for tracks in %s...", dir),
	}
}

func scanDirDoneUpdate(source models.Source, dir string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   scanPhase(source),
		Kind:    KindDone,
		Step:    count,
		Message: fmt.Sprintf("Tracklist for %s folder generated! %d items added.", dir, count),
	}
}

func scanFileErrorUpdate(source models.Source, path string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   scanPhase(source),
		Kind:    KindError,
		Message: fmt.Sprintf("Error processing %s: %v", path, err),
		Data:    err,
	}
}

func scanDirSkippedUpdate(source models.Source, dir string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   scanPhase(source),
		Kind:    KindWarn,
		Message: fmt.Sprintf("Skipping %s: %v", dir, err),
		Data:    err,
	}
}

func scanCompleteUpdate(summary *ScanSummary) ProgressUpdate {
	return ProgressUpdate{
		Phase:   scanPhase(summary.Source),
		Kind:    KindDone,
		Step:    summary.Processed,
		Total:   summary.Processed + summary.Failed,
		Message: fmt.Sprintf("Tracklist complete: %s (%d tracks, %d failed, %d folders skipped)", summary.Tracklist, summary.Processed, summary.Failed, summary.Skipped),
		Data:    summary,
	}
}

func readSourceUpdate(step, total int, source models.Source, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReadSources,
		Kind:    KindInfo,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Reading %s tracks from %s...", step, total, source, path),
	}
}

func buildTableUpdate(step, total int, table *models.CanonicalTable) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BuildTables,
		Kind:    KindInfo,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s: %d unique tracks (%d duplicates dropped)", step, total, table.Source, table.Len(), table.Duplicates),
		Data:    table,
	}
}

func writeArtifactUpdate(phase Phase, step, total int, artifact formatter.Artifact) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Kind:    KindDone,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d rows)", step, total, artifact.Path, artifact.Rows),
		Data:    artifact,
	}
}

func compareUpdate(outputs *models.ReconciliationOutputs) ProgressUpdate {
	return ProgressUpdate{
		Phase: Compare,
		Kind:  KindInfo,
		Message: fmt.Sprintf("Streaming vs owned: %d matched, %d remaining; %d also in crate; %d owned not streamed",
			len(outputs.MatchedOwned), len(outputs.RemainderUnmatched), len(outputs.MatchedOwnedAndCrate), len(outputs.OwnedNotStreamed)),
		Data: outputs,
	}
}

func fuzzyStartUpdate(left, right int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FuzzyMatch,
		Kind:    KindInfo,
		Total:   left * right,
		Message: fmt.Sprintf("Comparing %d x %d composite keys...", left, right),
	}
}

func fuzzyDoneUpdate(mismatches []models.MatchResult, threshold int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FuzzyMatch,
		Kind:    KindDone,
		Step:    len(mismatches),
		Message: fmt.Sprintf("%d pairs scored below %d", len(mismatches), threshold),
		Data:    mismatches,
	}
}
