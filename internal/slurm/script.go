package slurm

import (
	"crypto/sha1"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/JingyaoDOU/slurmpy/internal/utils"
)

// bashStrictSetup is the fail-fast shell preamble emitted when strict mode is
// on.
const bashStrictSetup = "set -eo pipefail -o nounset"

// disabledSetupBlankLines is the number of blank lines standing in for the
// setup slot when strict mode is off, keeping the payload at a fixed offset.
const disabledSetupBlankLines = 3

// payloadSeparator marks the boundary between export assignments and the
// payload command.
const payloadSeparator = "###"

// today returns the date appended to effective names. Stubbed in tests.
var today = func() string {
	return time.Now().Format("2006-01-02")
}

// RunOptions configures a single render or submission of a JobSpec.
// The zero value derives the suffix from the command, runs once, and
// depends on nothing.
type RunOptions struct {
	Suffix    *string  // per-run suffix; nil derives a SHA1 of the command
	Env       []EnvVar // extra export assignments ahead of the command
	Tries     int      // submission attempts, failure-chained; <1 means 1
	DependsOn []JobID  // jobs the first attempt waits on (afterok)
}

func (o *RunOptions) normalized() RunOptions {
	var out RunOptions
	if o != nil {
		out = *o
	}
	if out.Tries < 1 {
		out.Tries = 1
	}
	return out
}

// RenderedScript is one fully assembled submission script.
type RenderedScript struct {
	Name    string // effective job name, suffix included
	Content string // complete script text, no trailing newline
}

// Render assembles the submission script for command. The effective name is
// the base name plus the per-run suffix; identical commands render identical
// names, so resubmissions overwrite rather than accumulate.
func (j *JobSpec) Render(command string, opts *RunOptions) RenderedScript {
	o := opts.normalized()
	name := j.effectiveName(command, o.Suffix)

	lines := make([]string, 0, 16+len(j.directives)+len(o.Env))
	lines = append(lines,
		"#!/bin/bash",
		"",
		fmt.Sprintf("#SBATCH -e %s/%s.%%J.err", j.logDir, name),
		fmt.Sprintf("#SBATCH -o %s/%s.%%J.out", j.logDir, name),
		fmt.Sprintf("#SBATCH -J %s", name),
		"",
	)
	for _, d := range j.directives {
		lines = append(lines, d.render())
	}
	if j.bashStrict {
		lines = append(lines, "", bashStrictSetup, "")
	} else {
		for i := 0; i < disabledSetupBlankLines; i++ {
			lines = append(lines, "")
		}
	}

	exports := j.exportVars(o.Env)
	if len(exports) == 0 {
		lines = append(lines, "")
	}
	for _, v := range exports {
		lines = append(lines, fmt.Sprintf("export %s=%s", v.Key, v.Value))
	}
	lines = append(lines, payloadSeparator, command)

	return RenderedScript{Name: name, Content: strings.Join(lines, "\n")}
}

// render formats one #SBATCH line. Long keys use the "--key=value" form,
// single-character keys the "-k value" form.
func (d Directive) render() string {
	if len(d.Key) > 1 {
		return fmt.Sprintf("#SBATCH --%s=%s", d.Key, d.Value)
	}
	return fmt.Sprintf("#SBATCH -%s %s", d.Key, d.Value)
}

// exportVars merges the run-parameter exports with the per-run extras, run
// parameters first.
func (j *JobSpec) exportVars(extra []EnvVar) []EnvVar {
	var vars []EnvVar
	if j.run != nil {
		vars = append(vars, j.run.exports()...)
	}
	return append(vars, extra...)
}

// effectiveName joins the base name and the per-run suffix with a hyphen.
// A nil suffix derives the SHA1 hex digest of the command; with dated names
// the current date is appended to the suffix. Stray separator characters are
// trimmed from both parts before joining.
func (j *JobSpec) effectiveName(command string, suffix *string) string {
	s := ""
	if suffix != nil {
		s = *suffix
	} else {
		s = fmt.Sprintf("%x", sha1.Sum([]byte(command)))
	}
	if j.dateInName {
		s += "-" + today()
	}
	return strings.Trim(j.name, " -") + "-" + strings.Trim(s, " -")
}

// WriteScript persists a rendered script and returns its path. With a scripts
// directory configured, the script lands there as {name}.sh and both the
// scripts and log directories are created as needed; without one, the script
// goes to a unique temp file that is removed by CleanupTempScripts.
func (j *JobSpec) WriteScript(r RenderedScript) (string, error) {
	if j.scriptsDir == "" {
		// CreateTemp rejects separators in the pattern
		safeName := strings.ReplaceAll(r.Name, "/", "--")
		f, err := os.CreateTemp("", safeName+"-*.sh")
		if err != nil {
			return "", NewScriptWriteError(r.Name, "", err)
		}
		path := f.Name()
		registerTempScript(path)
		if _, err := f.WriteString(r.Content); err != nil {
			f.Close()
			return "", NewScriptWriteError(r.Name, path, err)
		}
		if err := f.Close(); err != nil {
			return "", NewScriptWriteError(r.Name, path, err)
		}
		return path, nil
	}

	for _, dir := range []string{j.scriptsDir, j.logDir} {
		if err := utils.EnsureDir(dir); err != nil {
			return "", NewScriptWriteError(r.Name, dir, err)
		}
	}
	path := filepath.Join(j.scriptsDir, r.Name+".sh")
	if err := os.WriteFile(path, []byte(r.Content), utils.PermFile); err != nil {
		return "", NewScriptWriteError(r.Name, path, err)
	}
	return path, nil
}

var (
	tempMu      sync.Mutex
	tempScripts []string
)

func registerTempScript(path string) {
	tempMu.Lock()
	tempScripts = append(tempScripts, path)
	tempMu.Unlock()
}

// CleanupTempScripts removes every temp-mode script written so far. Safe to
// call more than once.
func CleanupTempScripts() {
	tempMu.Lock()
	paths := tempScripts
	tempScripts = nil
	tempMu.Unlock()
	for _, p := range paths {
		os.Remove(p)
	}
}
