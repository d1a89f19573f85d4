package slurm

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
)

// DefaultWallTime is the wall-clock directive injected when the caller
// supplies no "time" directive of their own.
const DefaultWallTime = "84:00:00"

// Directive is a single scheduler configuration key/value pair.
// Single-character keys render as "-k value", longer keys as "--key=value".
type Directive struct {
	Key   string
	Value string
}

// Directives is an ordered directive list with unique keys.
type Directives []Directive

// Set replaces the value of an existing key in place, or appends a new
// directive, preserving insertion order.
func (d Directives) Set(key, value string) Directives {
	for i := range d {
		if d[i].Key == key {
			d[i].Value = value
			return d
		}
	}
	return append(d, Directive{Key: key, Value: value})
}

// Get returns the value for key and whether it is present.
func (d Directives) Get(key string) (string, bool) {
	for i := range d {
		if d[i].Key == key {
			return d[i].Value, true
		}
	}
	return "", false
}

// Has reports whether key is present.
func (d Directives) Has(key string) bool {
	_, ok := d.Get(key)
	return ok
}

// EnvVar is one exported KEY=VALUE assignment in the payload block.
type EnvVar struct {
	Key   string
	Value string
}

// RunParams carries the numeric simulation run parameters. When attached to a
// JobSpec they are exported as shell variables ahead of the payload command so
// the command can consume them ($OUTDIR, $OUTNUM, ...).
type RunParams struct {
	SwiftExe   string  // simulation executable path
	ParaImpact string  // impact parameter label
	Hmax       float64 // maximum smoothing length
	DtMax      float64 // maximum timestep
	CFL        float64 // CFL number
	TimeEnd    int64   // simulated end time, in seconds
	DeltaTime  int64   // snapshot interval, in seconds
	Threads    int     // thread count
}

// DefaultRunParams returns the standard run parameters (10h end time, 100s
// snapshot interval, 32 threads).
func DefaultRunParams() RunParams {
	return RunParams{
		Hmax:      0.1,
		DtMax:     5,
		CFL:       0.1,
		TimeEnd:   36000,
		DeltaTime: 100,
		Threads:   32,
	}
}

// OutDir derives the output directory name from the end time and snapshot
// interval, e.g. "output_10h_100dt".
func (p RunParams) OutDir() string {
	return fmt.Sprintf("output_%dh_%ddt", p.TimeEnd/3600, p.DeltaTime)
}

// OutNum derives the zero-padded snapshot count, e.g. "0360".
func (p RunParams) OutNum() string {
	if p.DeltaTime <= 0 {
		return "0000"
	}
	return fmt.Sprintf("%04d", p.TimeEnd/p.DeltaTime)
}

// exports returns the environment assignments contributed to the payload
// block, in declaration order. Empty string fields are omitted.
func (p RunParams) exports() []EnvVar {
	var vars []EnvVar
	if p.SwiftExe != "" {
		vars = append(vars, EnvVar{Key: "SWIFT_EXE", Value: p.SwiftExe})
	}
	vars = append(vars,
		EnvVar{Key: "HMAX", Value: fmt.Sprintf("%v", p.Hmax)},
		EnvVar{Key: "DTMAX", Value: fmt.Sprintf("%v", p.DtMax)},
		EnvVar{Key: "CFL", Value: fmt.Sprintf("%v", p.CFL)},
	)
	if p.ParaImpact != "" {
		vars = append(vars, EnvVar{Key: "PARA_IMPACT", Value: p.ParaImpact})
	}
	vars = append(vars,
		EnvVar{Key: "TIME_END", Value: fmt.Sprintf("%d", p.TimeEnd)},
		EnvVar{Key: "DELTA_TIME", Value: fmt.Sprintf("%d", p.DeltaTime)},
		EnvVar{Key: "THREADS", Value: fmt.Sprintf("%d", p.Threads)},
		EnvVar{Key: "OUTDIR", Value: p.OutDir()},
		EnvVar{Key: "OUTNUM", Value: p.OutNum()},
	)
	return vars
}

// Options configures a JobSpec. The zero value is NOT the default: start from
// DefaultOptions() when overriding individual fields.
type Options struct {
	ScriptsDir string     // where scripts are persisted; "" = temp-file mode
	LogDir     string     // where the scheduler writes {name}.%J.{out,err}
	DateInName bool       // append the current date to the per-run suffix
	BashStrict bool       // emit the fail-fast shell preamble
	Run        *RunParams // optional simulation run parameters
}

// DefaultOptions returns the standard JobSpec options: scripts persisted under
// "slurm-scripts", logs under "logs", dated names, strict shell mode.
func DefaultOptions() Options {
	return Options{
		ScriptsDir: "slurm-scripts",
		LogDir:     "logs",
		DateInName: true,
		BashStrict: true,
	}
}

// JobSpec is an immutable job specification. One instance may be reused for
// any number of Render/Submit calls, concurrently; per-run state (the
// effective name, the rendered text) is derived, never stored back.
type JobSpec struct {
	name       string
	directives Directives
	scriptsDir string
	logDir     string
	dateInName bool
	bashStrict bool
	run        *RunParams
}

// NewJobSpec builds a JobSpec from a base name and directive list. Whitespace
// in the name becomes underscores. Duplicate directive keys collapse to the
// last value at the first key's position. A "time" directive defaulting to
// DefaultWallTime is appended when absent. A nil opts means DefaultOptions().
func NewJobSpec(name string, directives Directives, opts *Options) *JobSpec {
	o := DefaultOptions()
	if opts != nil {
		o = *opts
	}

	deduped := make(Directives, 0, len(directives)+1)
	for _, d := range directives {
		deduped = deduped.Set(d.Key, d.Value)
	}
	if !deduped.Has("time") {
		deduped = deduped.Set("time", DefaultWallTime)
	}

	scriptsDir := o.ScriptsDir
	if scriptsDir != "" {
		if abs, err := filepath.Abs(scriptsDir); err == nil {
			scriptsDir = abs
		}
	}

	var run *RunParams
	if o.Run != nil {
		r := *o.Run
		run = &r
	}

	return &JobSpec{
		name:       sanitizeName(name),
		directives: deduped,
		scriptsDir: scriptsDir,
		logDir:     o.LogDir,
		dateInName: o.DateInName,
		bashStrict: o.BashStrict,
		run:        run,
	}
}

// Name returns the sanitized base name (without any per-run suffix).
func (j *JobSpec) Name() string {
	return j.name
}

// Directives returns a copy of the directive list, default time included.
func (j *JobSpec) Directives() Directives {
	out := make(Directives, len(j.directives))
	copy(out, j.directives)
	return out
}

// ScriptsDir returns the absolute scripts directory, or "" in temp-file mode.
func (j *JobSpec) ScriptsDir() string {
	return j.scriptsDir
}

// LogDir returns the scheduler log directory.
func (j *JobSpec) LogDir() string {
	return j.logDir
}

// sanitizeName replaces every whitespace rune with an underscore.
func sanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '_'
		}
		return r
	}, name)
}
