package main

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cratecheck/internal/models"
	"github.com/desertthunder/cratecheck/internal/repositories"
	"github.com/desertthunder/cratecheck/internal/shared"
	"github.com/urfave/cli/v3"
)

// recorder stores one run in the history database. A nil recorder does nothing.
type recorder struct {
	db     *sql.DB
	repo   *repositories.RunRepository
	run    *models.Run
	logger *log.Logger
}

// startRecord opens the history database and inserts a running row.
// History is auxiliary: failures are logged and the run continues unrecorded.
func (r *Runner) startRecord(cmd *cli.Command, config *shared.Config, name string) *recorder {
	if cmd.Bool("no-history") || config.Database.Path == "" {
		return nil
	}

	db, err := shared.OpenHistory(config.Database)
	if err != nil {
		r.logger.Warn("run history unavailable", "path", config.Database.Path, "err", err)
		return nil
	}

	repo := repositories.NewRunRepository(db)
	run := models.NewRun(name, config.Matcher.Threshold)
	if err := repo.Create(run); err != nil {
		r.logger.Warn("failed to record run", "err", err)
		db.Close()
		return nil
	}

	r.logger.Debug("recording run", "id", run.ID, "sequence", run.Sequence)
	return &recorder{db: db, repo: repo, run: run, logger: r.logger}
}

func (rec *recorder) finish(counts models.RunCounts, artifacts []models.RunArtifact, runErr error) {
	if rec == nil {
		return
	}
	defer rec.db.Close()

	rec.run.Counts = counts
	rec.run.Finish(runErr)
	if err := rec.repo.Update(rec.run); err != nil {
		rec.logger.Warn("failed to update run history", "id", rec.run.ID, "err", err)
		return
	}
	if err := rec.repo.AddArtifacts(rec.run.ID, artifacts); err != nil {
		rec.logger.Warn("failed to record run artifacts", "id", rec.run.ID, "err", err)
	}
}

// History lists recorded runs, or shows a single run when an ID is given.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	db, err := shared.OpenHistory(config.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewRunRepository(db)

	if id := cmd.StringArg("id"); id != "" {
		run, err := repo.Get(id)
		if err != nil {
			return err
		}
		if cmd.Bool("json") {
			return r.writeJSON(run, true)
		}
		r.renderRun(run)
		return nil
	}

	runs, err := repo.List(cmd.Int("limit"))
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(runs, true)
	}
	if len(runs) == 0 {
		r.writePlain("No runs recorded yet.\n")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			strconv.Itoa(run.Sequence),
			run.ID,
			run.Command,
			string(run.Status),
			run.StartedAt.Local().Format(time.DateTime),
			formatDuration(run),
			strconv.Itoa(run.Counts.MatchedOwned),
			strconv.Itoa(run.Counts.Remainder),
			strconv.Itoa(run.Counts.Mismatches),
		})
	}

	r.writePlain("%s\n", renderTable(
		[]string{"#", "ID", "Command", "Status", "Started", "Duration", "Owned", "Remainder", "Mismatches"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
	))
	return nil
}

func (r *Runner) renderRun(run *models.Run) {
	r.writePlainHeader(fmt.Sprintf("Run #%d (%s)", run.Sequence, run.Command))
	r.writePlain("ID:         %s\n", run.ID)
	r.writePlain("Status:     %s\n", run.Status)
	r.writePlain("Started:    %s\n", run.StartedAt.Local().Format(time.DateTime))
	r.writePlain("Duration:   %s\n", formatDuration(run))
	r.writePlain("Threshold:  %d\n", run.Threshold)
	if run.ErrorMessage != "" {
		r.writePlain("Error:      %s\n", r.palette.Error(run.ErrorMessage))
	}

	c := run.Counts
	r.writePlain("%s\n", renderTable(
		[]string{"Count", "Rows"},
		[][]string{
			{"streaming tracks", strconv.Itoa(c.StreamingRows)},
			{"owned tracks", strconv.Itoa(c.OwnedRows)},
			{"crate tracks", strconv.Itoa(c.CrateRows)},
			{"matched owned", strconv.Itoa(c.MatchedOwned)},
			{"matched owned and crate", strconv.Itoa(c.MatchedOwnedAndCrate)},
			{"remainder", strconv.Itoa(c.Remainder)},
			{"owned not streamed", strconv.Itoa(c.OwnedNotStreamed)},
			{"mismatches", strconv.Itoa(c.Mismatches)},
		},
		[]columnAlignment{alignLeft, alignRight},
	))

	if len(run.Artifacts) == 0 {
		return
	}
	rows := make([][]string, 0, len(run.Artifacts))
	for _, a := range run.Artifacts {
		rows = append(rows, []string{a.Name, strconv.Itoa(a.Rows), a.Path})
	}
	r.writePlain("%s\n", renderTable([]string{"File", "Rows", "Path"}, rows, []columnAlignment{alignLeft, alignRight, alignLeft}))
}

func formatDuration(run *models.Run) string {
	if run.FinishedAt == nil {
		return "-"
	}
	return run.Duration().Round(time.Millisecond).String()
}
