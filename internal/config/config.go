package config

const VERSION = "0.2.0"

// Config holds global application settings
type Config struct {
	Debug bool
	Quiet bool

	// Script generation
	ScriptsDir  string // where generated scripts are written ("" = temp files)
	LogsDir     string // where the scheduler writes stdout/stderr logs
	DateInName  bool   // append YYYY-MM-DD to the per-run name suffix
	BashStrict  bool   // emit "set -eo pipefail -o nounset" in generated scripts
	DefaultTime string // optional time directive applied when the caller gives none ("" = builder default)

	// Submission
	SbatchBin string // path to sbatch (auto-detected when empty)
	Tries     int    // default number of chained submission attempts
}

// Global holds the singleton configuration instance
var Global Config

// LoadDefaults resets Global to built-in defaults. Viper values and
// command-line flags are layered on top afterwards.
func LoadDefaults() {
	Global = Config{
		Debug:       false,
		Quiet:       false,
		ScriptsDir:  "slurm-scripts",
		LogsDir:     "logs",
		DateInName:  true,
		BashStrict:  true,
		DefaultTime: "",
		SbatchBin:   "",
		Tries:       1,
	}
}
