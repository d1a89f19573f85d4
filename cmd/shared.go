package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/JingyaoDOU/slurmpy/internal/config"
	"github.com/JingyaoDOU/slurmpy/internal/slurm"
	"github.com/JingyaoDOU/slurmpy/internal/utils"
	"github.com/spf13/cobra"
)

// JobFlags holds the flags shared by the submit and script commands.
type JobFlags struct {
	Name        string
	Directives  []string
	Time        string
	Partition   string
	Account     string
	Mem         string
	CpusPerTask int
	Nodes       int
	Gres        string
	Exports     []string
	Suffix      string
	NoDate      bool
	NoStrict    bool
	ScriptsDir  string
	LogDir      string
	Tmp         bool

	SwiftExe   string
	ParaImpact string
	Hmax       float64
	DtMax      float64
	CFL        float64
	TimeEnd    int64
	DeltaTime  int64
	Threads    int
}

// simFlagNames are the flags that attach simulation run parameters when set.
var simFlagNames = []string{
	"swift-exe", "para-impact", "hmax", "dtmax", "cfl",
	"time-end", "delta-time", "threads",
}

// RegisterJobFlags registers the shared job flags on a cobra command.
func RegisterJobFlags(cmd *cobra.Command, flags *JobFlags) {
	defaults := slurm.DefaultRunParams()

	cmd.Flags().StringVarP(&flags.Name, "name", "J", "", "job name (whitespace becomes underscores)")
	cmd.Flags().StringArrayVarP(&flags.Directives, "directive", "d", nil, "scheduler directive 'key=value' (can be used multiple times)")
	cmd.Flags().StringVar(&flags.Time, "time", "", "wall-clock limit (HH:MM:SS or Go duration like 36h)")
	cmd.Flags().StringVarP(&flags.Partition, "partition", "p", "", "partition to submit to")
	cmd.Flags().StringVarP(&flags.Account, "account", "A", "", "account to charge")
	cmd.Flags().StringVar(&flags.Mem, "mem", "", "memory per node (e.g. 64G)")
	cmd.Flags().IntVarP(&flags.CpusPerTask, "cpus-per-task", "c", 0, "CPUs per task")
	cmd.Flags().IntVarP(&flags.Nodes, "nodes", "N", 0, "node count")
	cmd.Flags().StringVar(&flags.Gres, "gres", "", "generic resources (e.g. gpu:a100:2)")
	cmd.Flags().StringArrayVar(&flags.Exports, "export", nil, "export 'KEY=VALUE' ahead of the command (can be used multiple times)")
	cmd.Flags().StringVar(&flags.Suffix, "suffix", "", "per-run name suffix (default: hash of the command)")
	cmd.Flags().BoolVar(&flags.NoDate, "no-date", false, "leave the current date out of the job name")
	cmd.Flags().BoolVar(&flags.NoStrict, "no-strict", false, "skip the fail-fast shell preamble")
	cmd.Flags().StringVar(&flags.ScriptsDir, "scripts-dir", "", "directory to keep generated scripts in")
	cmd.Flags().StringVar(&flags.LogDir, "log-dir", "", "directory the scheduler writes logs to")
	cmd.Flags().BoolVar(&flags.Tmp, "tmp", false, "write the script to a temp file instead of the scripts directory")

	cmd.Flags().StringVar(&flags.SwiftExe, "swift-exe", "", "simulation executable exported as SWIFT_EXE")
	cmd.Flags().StringVar(&flags.ParaImpact, "para-impact", "", "impact parameter label exported as PARA_IMPACT")
	cmd.Flags().Float64Var(&flags.Hmax, "hmax", defaults.Hmax, "maximum smoothing length exported as HMAX")
	cmd.Flags().Float64Var(&flags.DtMax, "dtmax", defaults.DtMax, "maximum timestep exported as DTMAX")
	cmd.Flags().Float64Var(&flags.CFL, "cfl", defaults.CFL, "CFL number exported as CFL")
	cmd.Flags().Int64Var(&flags.TimeEnd, "time-end", defaults.TimeEnd, "simulated end time in seconds exported as TIME_END")
	cmd.Flags().Int64Var(&flags.DeltaTime, "delta-time", defaults.DeltaTime, "snapshot interval in seconds exported as DELTA_TIME")
	cmd.Flags().IntVar(&flags.Threads, "threads", defaults.Threads, "thread count exported as THREADS")

	cmd.MarkFlagRequired("name")

	// Stop flag parsing after the first positional argument so the payload
	// command keeps its own flags
	cmd.Flags().SetInterspersed(false)
}

// buildJobSpec assembles a JobSpec from the shared flags layered over the
// global config.
func buildJobSpec(cmd *cobra.Command, flags *JobFlags) (*slurm.JobSpec, error) {
	directives, err := parseDirectives(flags.Directives)
	if err != nil {
		return nil, err
	}

	if flags.Partition != "" {
		directives = directives.Set("partition", flags.Partition)
	}
	if flags.Account != "" {
		directives = directives.Set("account", flags.Account)
	}
	if flags.Mem != "" {
		directives = directives.Set("mem", flags.Mem)
	}
	if cmd.Flags().Changed("cpus-per-task") {
		directives = directives.Set("cpus-per-task", strconv.Itoa(flags.CpusPerTask))
	}
	if cmd.Flags().Changed("nodes") {
		directives = directives.Set("nodes", strconv.Itoa(flags.Nodes))
	}
	if flags.Gres != "" {
		directives = directives.Set("gres", flags.Gres)
	}
	if flags.Time != "" {
		directives = directives.Set("time", normalizeTime(flags.Time))
	} else if config.Global.DefaultTime != "" && !directives.Has("time") {
		directives = directives.Set("time", config.Global.DefaultTime)
	}

	opts := slurm.DefaultOptions()
	opts.ScriptsDir = config.Global.ScriptsDir
	opts.LogDir = config.Global.LogsDir
	opts.DateInName = config.Global.DateInName
	opts.BashStrict = config.Global.BashStrict
	if cmd.Flags().Changed("scripts-dir") {
		opts.ScriptsDir = flags.ScriptsDir
	}
	if cmd.Flags().Changed("log-dir") {
		opts.LogDir = flags.LogDir
	}
	if flags.Tmp {
		opts.ScriptsDir = ""
	}
	if flags.NoDate {
		opts.DateInName = false
	}
	if flags.NoStrict {
		opts.BashStrict = false
	}
	opts.Run = runParamsFromFlags(cmd, flags)

	return slurm.NewJobSpec(flags.Name, directives, &opts), nil
}

// buildRunOptions assembles the per-run options from the shared flags.
func buildRunOptions(cmd *cobra.Command, flags *JobFlags) (*slurm.RunOptions, error) {
	env, err := parseExports(flags.Exports)
	if err != nil {
		return nil, err
	}
	opts := &slurm.RunOptions{Env: env}
	if cmd.Flags().Changed("suffix") {
		suffix := flags.Suffix
		opts.Suffix = &suffix
	}
	return opts, nil
}

// runParamsFromFlags returns the simulation run parameters, or nil when no
// simulation flag was set.
func runParamsFromFlags(cmd *cobra.Command, flags *JobFlags) *slurm.RunParams {
	changed := false
	for _, name := range simFlagNames {
		if cmd.Flags().Changed(name) {
			changed = true
			break
		}
	}
	if !changed {
		return nil
	}
	return &slurm.RunParams{
		SwiftExe:   flags.SwiftExe,
		ParaImpact: flags.ParaImpact,
		Hmax:       flags.Hmax,
		DtMax:      flags.DtMax,
		CFL:        flags.CFL,
		TimeEnd:    flags.TimeEnd,
		DeltaTime:  flags.DeltaTime,
		Threads:    flags.Threads,
	}
}

// parseDirectives converts 'key=value' flag values into a directive list.
func parseDirectives(raw []string) (slurm.Directives, error) {
	var directives slurm.Directives
	for _, entry := range raw {
		key, value, err := utils.ParseKeyValue(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid directive %q: %w", entry, err)
		}
		directives = directives.Set(key, value)
	}
	return directives, nil
}

// parseExports converts 'KEY=VALUE' flag values into export assignments.
func parseExports(raw []string) ([]slurm.EnvVar, error) {
	var env []slurm.EnvVar
	for _, entry := range raw {
		key, value, err := utils.ParseKeyValue(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid export %q: %w", entry, err)
		}
		env = append(env, slurm.EnvVar{Key: key, Value: value})
	}
	return env, nil
}

// normalizeTime rewrites Go-style durations into the scheduler's HH:MM:SS
// form and passes colon forms through verbatim.
func normalizeTime(value string) string {
	if strings.Contains(value, ":") {
		return value
	}
	if d, err := utils.ParseDuration(value); err == nil {
		return utils.FormatHMSTime(d)
	}
	return value
}

// resolveSubmitter picks the submitter for a command: an explicit binary flag
// wins, then the one initialized at startup, then a fresh PATH lookup.
func resolveSubmitter(sbatchBin string) (*slurm.Submitter, error) {
	if sbatchBin != "" {
		return slurm.NewSubmitterWithBinary(sbatchBin)
	}
	if submitter := slurm.ActiveSubmitter(); submitter != nil {
		return submitter, nil
	}
	return slurm.NewSubmitter()
}

// joinCommand glues positional arguments back into the payload command line.
func joinCommand(args []string) string {
	return strings.Join(args, " ")
}
