package converter

import "errors"

// Library users can check against these using errors.Is. Per-file errors end up in
// Report.Errors; only ErrConfigValidation, ErrRootNotFound and ErrInterrupted abort a run.
var (
	// ErrConfigValidation indicates that the provided Options failed validation.
	ErrConfigValidation = errors.New("invalid configuration options provided")

	// ErrRootNotFound indicates the root path given to a run does not exist.
	ErrRootNotFound = errors.New("root path does not exist")

	// ErrInterrupted indicates the run was stopped by the user before visiting every file.
	ErrInterrupted = errors.New("run interrupted")

	// ErrReadFailed indicates a failure to read a source file from the filesystem.
	ErrReadFailed = errors.New("failed to read file")

	// ErrStatFailed indicates a failure to get file statistics.
	ErrStatFailed = errors.New("failed to get file stats")

	// ErrBackupFailed indicates the original could not be moved to its backup name.
	// The original is untouched when this is returned.
	ErrBackupFailed = errors.New("failed to create backup")

	// ErrWriteFailed indicates a failure to write, or to verify, the converted content.
	ErrWriteFailed = errors.New("failed to write converted file")

	// ErrRemoveFailed indicates a backup file could not be deleted during cleanup.
	ErrRemoveFailed = errors.New("failed to remove backup file")
)
