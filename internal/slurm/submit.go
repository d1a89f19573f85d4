package slurm

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// JobID is the scheduler's handle for an accepted job. Always positive;
// non-positive dependency entries are ignored.
type JobID int64

// acceptedPrefix is how the scheduler acknowledges an accepted submission.
const acceptedPrefix = "Submitted batch"

// CommandRunner executes a scheduler binary and returns its standard output.
// The binary's standard error passes through to the caller's.
type CommandRunner interface {
	Run(bin string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(bin string, args ...string) ([]byte, error) {
	cmd := exec.Command(bin, args...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = os.Stderr
	err := cmd.Run()
	return stdout.Bytes(), err
}

// Submitter hands scripts to a validated sbatch binary and parses the
// scheduler's responses.
type Submitter struct {
	sbatchBin string
	runner    CommandRunner
	echo      io.Writer
}

// NewSubmitter creates a Submitter using sbatch from PATH.
func NewSubmitter() (*Submitter, error) {
	return newSubmitterWithBinary("")
}

// NewSubmitterWithBinary creates a Submitter using an explicit sbatch path.
func NewSubmitterWithBinary(sbatchBin string) (*Submitter, error) {
	return newSubmitterWithBinary(sbatchBin)
}

func newSubmitterWithBinary(sbatchBin string) (*Submitter, error) {
	binPath := sbatchBin
	if binPath == "" {
		var err error
		binPath, err = exec.LookPath("sbatch")
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSbatchNotFound, err)
		}
	} else {
		if absPath, err := filepath.Abs(binPath); err == nil {
			binPath = absPath
		}
		info, err := os.Stat(binPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSbatchNotFound, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%w: %s is a directory", ErrSbatchNotFound, binPath)
		}
	}

	return &Submitter{
		sbatchBin: binPath,
		runner:    execRunner{},
		echo:      os.Stderr,
	}, nil
}

// SbatchBin returns the resolved sbatch binary path.
func (s *Submitter) SbatchBin() string {
	return s.sbatchBin
}

// SetEcho redirects the scheduler-response echo (os.Stderr by default).
func (s *Submitter) SetEcho(w io.Writer) {
	s.echo = w
}

// Submit renders the script for command, writes it once, and hands it to
// sbatch. With Tries > 1 every extra attempt is submitted immediately,
// chained with --dependency=afternotok:<previous attempt's ID> so it only
// runs if the attempt before it failed. The first attempt carries the
// afterok dependency list instead. Returns the first attempt's job ID; a
// response without the acceptance prefix aborts the remaining attempts.
func (s *Submitter) Submit(job *JobSpec, command string, opts *RunOptions) (JobID, error) {
	o := opts.normalized()
	deps := filterJobIDs(o.DependsOn)

	script := job.Render(command, &o)
	scriptPath, err := job.WriteScript(script)
	if err != nil {
		return 0, err
	}

	var firstID, prevID JobID
	for attempt := 1; attempt <= o.Tries; attempt++ {
		var args []string
		if attempt > 1 {
			args = append(args, fmt.Sprintf("--dependency=afternotok:%d", prevID))
		} else {
			for _, id := range deps {
				args = append(args, fmt.Sprintf("--dependency=afterok:%d", id))
			}
		}
		args = append(args, scriptPath)

		output, err := s.runner.Run(s.sbatchBin, args...)
		response := strings.TrimSpace(string(output))
		if err != nil {
			return 0, NewSubmissionError(script.Name, response, err)
		}
		fmt.Fprintln(s.echo, response)
		if !strings.HasPrefix(response, acceptedPrefix) {
			return 0, NewSubmissionError(script.Name, response, ErrNotAccepted)
		}
		id, err := parseJobID(response)
		if err != nil {
			return 0, NewSubmissionError(script.Name, response, err)
		}
		if attempt == 1 {
			firstID = id
		}
		prevID = id
	}
	return firstID, nil
}

// parseJobID extracts the job ID from an acceptance response, taking the
// last whitespace-separated token.
func parseJobID(response string) (JobID, error) {
	fields := strings.Fields(response)
	if len(fields) == 0 {
		return 0, ErrJobIDParseFailed
	}
	id, err := strconv.ParseInt(fields[len(fields)-1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrJobIDParseFailed, fields[len(fields)-1])
	}
	return JobID(id), nil
}

// filterJobIDs drops non-positive entries, so nil, empty, and
// placeholder-only dependency lists all mean "no dependencies".
func filterJobIDs(ids []JobID) []JobID {
	var out []JobID
	for _, id := range ids {
		if id > 0 {
			out = append(out, id)
		}
	}
	return out
}
