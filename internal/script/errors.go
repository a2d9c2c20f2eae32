package script

import "errors"

var (
	// ErrScriptNotFound is returned when no script with the given name
	// exists in the scripts directory.
	ErrScriptNotFound = errors.New("script not found")

	// ErrInvalidName is returned for names that would leave the scripts
	// directory.
	ErrInvalidName = errors.New("invalid script name")

	// ErrRunnerClosed is returned when running a script after Close.
	ErrRunnerClosed = errors.New("script runner is closed")

	// ErrQueueFull is returned when too many runs are pending.
	ErrQueueFull = errors.New("script queue full")

	// ErrTimeout is returned when a script exceeds its execution time.
	ErrTimeout = errors.New("script execution timeout")
)
