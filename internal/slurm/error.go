package slurm

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrSbatchNotFound indicates the sbatch binary was not found
	ErrSbatchNotFound = errors.New("sbatch binary not found in PATH")

	// ErrNotAccepted indicates the scheduler response did not start with the accepted marker
	ErrNotAccepted = errors.New("submission not accepted by scheduler")

	// ErrJobIDParseFailed indicates parsing the job ID from scheduler output failed
	ErrJobIDParseFailed = errors.New("failed to parse job ID from scheduler output")

	// ErrScriptNotFound indicates the script file was not found
	ErrScriptNotFound = errors.New("script file not found")

	// ErrVersionUnavailable indicates the scheduler version could not be determined
	ErrVersionUnavailable = errors.New("scheduler version unavailable")
)

// SubmissionError represents an error during job submission
type SubmissionError struct {
	JobName string // Fully qualified job name
	Output  string // Captured scheduler output
	Err     error  // Underlying error
}

func (e *SubmissionError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("submission failed for job %s: %v\nOutput: %s",
			e.JobName, e.Err, e.Output)
	}
	return fmt.Sprintf("submission failed for job %s: %v", e.JobName, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// ScriptWriteError represents an error persisting a rendered script
type ScriptWriteError struct {
	JobName string // Fully qualified job name
	Path    string // Script path ("" when the temp file could not be created)
	Err     error  // Underlying error
}

func (e *ScriptWriteError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to write script for job %s at %s: %v",
			e.JobName, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to write script for job %s: %v", e.JobName, e.Err)
}

func (e *ScriptWriteError) Unwrap() error {
	return e.Err
}

// Helper functions for creating errors

// NewSubmissionError creates a new SubmissionError
func NewSubmissionError(jobName string, output string, err error) *SubmissionError {
	return &SubmissionError{
		JobName: jobName,
		Output:  output,
		Err:     err,
	}
}

// NewScriptWriteError creates a new ScriptWriteError
func NewScriptWriteError(jobName string, path string, err error) *ScriptWriteError {
	return &ScriptWriteError{
		JobName: jobName,
		Path:    path,
		Err:     err,
	}
}

// IsSubmissionError checks if an error is a SubmissionError
func IsSubmissionError(err error) bool {
	var se *SubmissionError
	return errors.As(err, &se)
}

// IsScriptWriteError checks if an error is a ScriptWriteError
func IsScriptWriteError(err error) bool {
	var swe *ScriptWriteError
	return errors.As(err, &swe)
}

// IsNotAccepted reports whether err stems from a scheduler response that did
// not begin with the accepted marker.
func IsNotAccepted(err error) bool {
	return errors.Is(err, ErrNotAccepted)
}
