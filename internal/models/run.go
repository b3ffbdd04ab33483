package models

import (
	"errors"
	"time"
)

// RunStatus is the lifecycle state of a recorded run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// RunCounts are the row counts recorded for a run.
type RunCounts struct {
	StreamingRows        int `json:"streaming_rows"`
	OwnedRows            int `json:"owned_rows"`
	CrateRows            int `json:"crate_rows"`
	MatchedOwned         int `json:"matched_owned"`
	MatchedOwnedAndCrate int `json:"matched_owned_and_crate"`
	Remainder            int `json:"remainder"`
	OwnedNotStreamed     int `json:"owned_not_streamed"`
	Mismatches           int `json:"mismatches"`
}

// RunArtifact is one file written during a run.
type RunArtifact struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Rows int    `json:"rows"`
}

// Run is one recorded invocation of a pipeline command.
type Run struct {
	ID           string        `json:"id"`
	Sequence     int           `json:"sequence"`
	Command      string        `json:"command"`
	Threshold    int           `json:"threshold"`
	Counts       RunCounts     `json:"counts"`
	Status       RunStatus     `json:"status"`
	ErrorMessage string        `json:"error_message,omitempty"`
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   *time.Time    `json:"finished_at,omitempty"`
	Artifacts    []RunArtifact `json:"artifacts,omitempty"`
}

// NewRun creates a running Run started now.
func NewRun(command string, threshold int) *Run {
	return &Run{
		Command:   command,
		Threshold: threshold,
		Status:    RunRunning,
		StartedAt: time.Now().UTC(),
	}
}

// Finish marks the run done. A non-nil err marks it failed.
func (r *Run) Finish(err error) {
	now := time.Now().UTC()
	r.FinishedAt = &now
	r.Status = RunSucceeded
	if err != nil {
		r.Status = RunFailed
		r.ErrorMessage = err.Error()
	}
}

// Duration returns how long the run took, or 0 while it is running.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Validate checks the fields required to store a run.
func (r *Run) Validate() error {
	if r.Command == "" {
		return errors.New("run command is required")
	}
	switch r.Status {
	case RunRunning, RunSucceeded, RunFailed:
	default:
		return errors.New("invalid run status: " + string(r.Status))
	}
	if r.StartedAt.IsZero() {
		return errors.New("run start time is required")
	}
	return nil
}
