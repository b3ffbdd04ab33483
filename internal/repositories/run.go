package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/cratecheck/internal/models"
	"github.com/desertthunder/cratecheck/internal/shared"
)

const runColumns = `
	id, sequence, command, threshold, streaming_rows, owned_rows, crate_rows,
	matched_owned, matched_owned_and_crate, remainder, owned_not_streamed, mismatches,
	status, error_message, started_at, finished_at
`

// RunRepository stores [models.Run] rows and their artifacts.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new run with a generated ID and sequence
func (r *RunRepository) Create(run *models.Run) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	query := `INSERT INTO runs (` + runColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	c := run.Counts
	_, err = r.db.Exec(query,
		id, sequence, run.Command, run.Threshold,
		c.StreamingRows, c.OwnedRows, c.CrateRows,
		c.MatchedOwned, c.MatchedOwnedAndCrate, c.Remainder, c.OwnedNotStreamed, c.Mismatches,
		string(run.Status), nullString(run.ErrorMessage), run.StartedAt, run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	run.ID = id
	run.Sequence = sequence
	return nil
}

// Update stores the counts, status and finish time of an existing run
func (r *RunRepository) Update(run *models.Run) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		UPDATE runs
		SET streaming_rows = ?, owned_rows = ?, crate_rows = ?,
			matched_owned = ?, matched_owned_and_crate = ?, remainder = ?,
			owned_not_streamed = ?, mismatches = ?,
			status = ?, error_message = ?, finished_at = ?
		WHERE id = ?
	`

	c := run.Counts
	result, err := r.db.Exec(query,
		c.StreamingRows, c.OwnedRows, c.CrateRows,
		c.MatchedOwned, c.MatchedOwnedAndCrate, c.Remainder,
		c.OwnedNotStreamed, c.Mismatches,
		string(run.Status), nullString(run.ErrorMessage), run.FinishedAt,
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrRunNotFound, run.ID)
	}

	return nil
}

// AddArtifacts records the files written by a run, replacing entries with the same name
func (r *RunRepository) AddArtifacts(runID string, artifacts []models.RunArtifact) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO run_artifacts (run_id, name, path, rows) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare artifact insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range artifacts {
		if _, err := stmt.Exec(runID, a.Name, a.Path, a.Rows); err != nil {
			return fmt.Errorf("failed to insert artifact %s: %w", a.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit artifacts: %w", err)
	}
	return nil
}

// Get retrieves a run by ID together with its artifacts
func (r *RunRepository) Get(id string) (*models.Run, error) {
	row := r.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id)

	run, err := r.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	if run.Artifacts, err = r.artifacts(id); err != nil {
		return nil, err
	}
	return run, nil
}

// List retrieves the most recent runs, newest first. A limit of 0 or less returns every run.
func (r *RunRepository) List(limit int) ([]*models.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY sequence DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

// Delete removes a run and, through the foreign key, its artifacts
func (r *RunRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrRunNotFound, id)
	}

	return nil
}

func (r *RunRepository) artifacts(runID string) ([]models.RunArtifact, error) {
	rows, err := r.db.Query(`SELECT name, path, rows FROM run_artifacts WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []models.RunArtifact
	for rows.Next() {
		var a models.RunArtifact
		if err := rows.Scan(&a.Name, &a.Path, &a.Rows); err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}
		artifacts = append(artifacts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return artifacts, nil
}

// scan reads one row selected with runColumns into a [models.Run]
func (r *RunRepository) scan(row rowScanner) (*models.Run, error) {
	var (
		run          models.Run
		status       string
		errorMessage sql.NullString
		finishedAt   sql.NullTime
	)

	c := &run.Counts
	err := row.Scan(
		&run.ID, &run.Sequence, &run.Command, &run.Threshold,
		&c.StreamingRows, &c.OwnedRows, &c.CrateRows,
		&c.MatchedOwned, &c.MatchedOwnedAndCrate, &c.Remainder, &c.OwnedNotStreamed, &c.Mismatches,
		&status, &errorMessage, &run.StartedAt, &finishedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run.Status = models.RunStatus(status)
	if errorMessage.Valid {
		run.ErrorMessage = errorMessage.String
	}
	if finishedAt.Valid {
		run.FinishedAt = &finishedAt.Time
	}

	return &run, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
