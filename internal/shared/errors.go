package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Metadata source errors. Both are recovered locally: the file or subtree is skipped.
	ErrTagExtraction    = fmt.Errorf("tag extraction failed")
	ErrFilesystemAccess = fmt.Errorf("filesystem access failed")

	// Tabular store errors. Fatal, later stages read what was written.
	ErrArtifactWrite = fmt.Errorf("artifact write failed")
	ErrArtifactRead  = fmt.Errorf("artifact read failed")

	// Input validation errors
	ErrInvalidInput = fmt.Errorf("invalid input")

	// Another run holds the output directory.
	ErrRunLocked = fmt.Errorf("output directory is locked by another run")

	// History errors
	ErrRunNotFound = fmt.Errorf("run not found")
)
