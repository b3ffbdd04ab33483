package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/desertthunder/cratecheck/internal/models"
	"github.com/desertthunder/cratecheck/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Run scans the library and crate, then reconciles them with the streaming export.
func (r *Runner) Run(ctx context.Context, cmd *cli.Command) error {
	config, err := r.prepare(cmd)
	if err != nil {
		return err
	}

	unlock, err := r.lockOutput(config)
	if err != nil {
		return err
	}
	defer unlock()

	r.logger.Info("starting run", "root", config.Library.Root, "crate", config.CratePath(), "threshold", config.Matcher.Threshold)
	rec := r.startRecord(cmd, config, "run")

	progressCh, wait := r.progress(cmd)
	result, err := r.engine(cmd, config).Run(ctx, progressCh)
	wait()

	counts := result.Scan.Counts()
	artifacts := result.Scan.RunArtifacts()
	if result.Reconcile != nil {
		counts = result.Reconcile.Counts()
		artifacts = append(artifacts, result.Reconcile.RunArtifacts()...)
	}
	rec.finish(counts, artifacts, err)

	if err != nil {
		return err
	}

	r.renderScan(result.Scan)
	r.renderReconcile(result.Reconcile)
	return nil
}

// Scan regenerates the owned and crate tracklists.
func (r *Runner) Scan(ctx context.Context, cmd *cli.Command) error {
	config, err := r.prepare(cmd)
	if err != nil {
		return err
	}

	unlock, err := r.lockOutput(config)
	if err != nil {
		return err
	}
	defer unlock()

	r.logger.Info("starting scan", "root", config.Library.Root, "crate", config.CratePath())
	rec := r.startRecord(cmd, config, "scan")

	progressCh, wait := r.progress(cmd)
	result, err := r.engine(cmd, config).Scan(ctx, progressCh)
	wait()

	rec.finish(result.Counts(), result.RunArtifacts(), err)
	if err != nil {
		return err
	}

	r.renderScan(result)
	return nil
}

// Reconcile compares existing tracklists with the streaming export.
func (r *Runner) Reconcile(ctx context.Context, cmd *cli.Command) error {
	config, err := r.prepare(cmd)
	if err != nil {
		return err
	}

	unlock, err := r.lockOutput(config)
	if err != nil {
		return err
	}
	defer unlock()

	r.logger.Info("starting reconcile", "streaming", config.Library.StreamingCSV, "threshold", config.Matcher.Threshold)
	rec := r.startRecord(cmd, config, "reconcile")

	progressCh, wait := r.progress(cmd)
	result, err := r.engine(cmd, config).Reconcile(ctx, progressCh)
	wait()

	rec.finish(result.Counts(), result.RunArtifacts(), err)
	if err != nil {
		return err
	}

	r.renderReconcile(result)
	return nil
}

// Mismatches writes the fuzzy mismatch report only.
func (r *Runner) Mismatches(ctx context.Context, cmd *cli.Command) error {
	config, err := r.prepare(cmd)
	if err != nil {
		return err
	}

	unlock, err := r.lockOutput(config)
	if err != nil {
		return err
	}
	defer unlock()

	r.logger.Info("starting mismatch report", "threshold", config.Matcher.Threshold)
	rec := r.startRecord(cmd, config, "mismatches")

	progressCh, wait := r.progress(cmd)
	result, err := r.engine(cmd, config).Mismatches(ctx, progressCh)
	wait()

	rec.finish(result.Counts(), result.RunArtifacts(), err)
	if err != nil {
		return err
	}

	r.renderReconcile(result)
	return nil
}

func (r *Runner) renderScan(result *tasks.ScanResult) {
	if result == nil {
		return
	}

	rows := [][]string{}
	for _, s := range []*tasks.ScanSummary{result.Owned, result.Crate} {
		if s == nil {
			continue
		}
		rows = append(rows, []string{
			s.Source.String(),
			s.Root,
			strconv.Itoa(s.Processed),
			strconv.Itoa(s.Failed),
			strconv.Itoa(s.Skipped),
			s.Tracklist,
		})
	}

	r.writePlainln("%s", r.palette.Title("Tracklists"))
	r.writePlain("%s\n", renderTable(
		[]string{"Source", "Folder", "Tracks", "Failed", "Skipped", "Tracklist"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
	))
}

func (r *Runner) renderReconcile(result *tasks.ReconcileResult) {
	if result == nil {
		return
	}

	r.writePlainln("%s", r.palette.Title("Reconciliation"))
	for _, table := range []*models.CanonicalTable{result.Streaming, result.Owned, result.Crate} {
		if table == nil {
			continue
		}
		r.writePlain("%-10s %d unique tracks (%d duplicates dropped)\n", table.Source.String(), table.Len(), table.Duplicates)
	}

	rows := make([][]string, 0, len(result.Artifacts))
	for _, a := range result.Artifacts {
		rows = append(rows, []string{a.Name, strconv.Itoa(a.Rows), a.Path})
	}
	r.writePlain("%s\n", renderTable([]string{"Result", "Rows", "File"}, rows, []columnAlignment{alignLeft, alignRight, alignLeft}))

	if o := result.Outputs; o != nil && result.Crate != nil {
		r.writePlain("%s\n", r.palette.OK(fmt.Sprintf("%d of %d streaming tracks owned, %d also in the crate.",
			len(o.MatchedOwned), result.Streaming.Len(), len(o.MatchedOwnedAndCrate))))
		if len(o.RemainderUnmatched) > 0 {
			r.writePlain("%s\n", r.palette.Warn(fmt.Sprintf("%d streaming tracks are not owned.", len(o.RemainderUnmatched))))
		}
	}
}
