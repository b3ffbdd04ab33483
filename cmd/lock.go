package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertthunder/cratecheck/internal/shared"
	"github.com/gofrs/flock"
)

// lockFileName guards an output directory against concurrent runs.
const lockFileName = ".cratecheck.lock"

// lockOutput takes the output directory lock for the duration of a pipeline command.
// The returned func releases it.
func (r *Runner) lockOutput(config *shared.Config) (func(), error) {
	dir := config.Output.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrArtifactWrite, err)
	}

	lockPath := filepath.Join(dir, lockFileName)
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrRunLocked, lockPath)
	}

	r.logger.Debug("acquired output lock", "path", lockPath)
	return func() {
		if err := lock.Unlock(); err != nil {
			r.logger.Warn("failed to release output lock", "path", lockPath, "err", err)
		}
	}, nil
}
