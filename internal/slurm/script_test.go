package slurm

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func strPtr(s string) *string {
	return &s
}

func TestRenderScriptLayout(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		run  RunOptions
		want string
	}{
		{
			name: "strict mode with no exports",
			opts: Options{LogDir: "logs", BashStrict: true},
			run:  RunOptions{Suffix: strPtr("x1")},
			want: `#!/bin/bash

#SBATCH -e logs/job-name-x1.%J.err
#SBATCH -o logs/job-name-x1.%J.out
#SBATCH -J job-name-x1

#SBATCH --account=ucgd-kp
#SBATCH --partition=ucgd-kp
#SBATCH --time=84:00:00

set -eo pipefail -o nounset


###
echo hi`,
		},
		{
			name: "strict mode off leaves the setup slot blank",
			opts: Options{LogDir: "logs", BashStrict: false},
			run:  RunOptions{Suffix: strPtr("x1")},
			want: `#!/bin/bash

#SBATCH -e logs/job-name-x1.%J.err
#SBATCH -o logs/job-name-x1.%J.out
#SBATCH -J job-name-x1

#SBATCH --account=ucgd-kp
#SBATCH --partition=ucgd-kp
#SBATCH --time=84:00:00




###
echo hi`,
		},
		{
			name: "exports sit between setup and separator",
			opts: Options{LogDir: "logs", BashStrict: true},
			run: RunOptions{
				Suffix: strPtr("x1"),
				Env:    []EnvVar{{Key: "MIN", Value: "0"}, {Key: "MAX", Value: "10"}},
			},
			want: `#!/bin/bash

#SBATCH -e logs/job-name-x1.%J.err
#SBATCH -o logs/job-name-x1.%J.out
#SBATCH -J job-name-x1

#SBATCH --account=ucgd-kp
#SBATCH --partition=ucgd-kp
#SBATCH --time=84:00:00

set -eo pipefail -o nounset

export MIN=0
export MAX=10
###
echo hi`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := NewJobSpec("job-name", Directives{
				{Key: "account", Value: "ucgd-kp"},
				{Key: "partition", Value: "ucgd-kp"},
			}, &tt.opts)

			got := job.Render("echo hi", &tt.run)
			if got.Content != tt.want {
				t.Errorf("Render content mismatch\ngot:\n%s\nwant:\n%s", got.Content, tt.want)
			}
			if strings.HasSuffix(got.Content, "\n") {
				t.Error("Render content should not end with a newline")
			}
		})
	}
}

func TestRenderDirectiveForms(t *testing.T) {
	job := NewJobSpec("forms", Directives{
		{Key: "partition", Value: "debug"},
		{Key: "p", Value: "debug"},
		{Key: "c", Value: "4"},
	}, &Options{LogDir: "logs"})

	content := job.Render("true", &RunOptions{Suffix: strPtr("s")}).Content

	for _, line := range []string{
		"#SBATCH --partition=debug",
		"#SBATCH -p debug",
		"#SBATCH -c 4",
	} {
		if !strings.Contains(content, line) {
			t.Errorf("Script missing expected line: %q\nScript content:\n%s", line, content)
		}
	}
}

func TestRenderDefaultTime(t *testing.T) {
	t.Run("injected last when absent", func(t *testing.T) {
		job := NewJobSpec("deft", Directives{
			{Key: "account", Value: "acc"},
			{Key: "partition", Value: "part"},
		}, &Options{LogDir: "logs"})

		content := job.Render("true", &RunOptions{Suffix: strPtr("s")}).Content
		if !strings.Contains(content, "#SBATCH --time=84:00:00") {
			t.Errorf("Script missing default time directive\nScript content:\n%s", content)
		}
		idxTime := strings.Index(content, "#SBATCH --time=")
		idxPart := strings.Index(content, "#SBATCH --partition=")
		if idxTime < idxPart {
			t.Errorf("Default time directive should come after caller directives\nScript content:\n%s", content)
		}
	})

	t.Run("caller value kept verbatim without duplicate", func(t *testing.T) {
		job := NewJobSpec("deft", Directives{
			{Key: "time", Value: "2:00:00"},
		}, &Options{LogDir: "logs"})

		content := job.Render("true", &RunOptions{Suffix: strPtr("s")}).Content
		if !strings.Contains(content, "#SBATCH --time=2:00:00") {
			t.Errorf("Script missing caller time directive\nScript content:\n%s", content)
		}
		if got := strings.Count(content, "#SBATCH --time="); got != 1 {
			t.Errorf("time directive count = %d; want 1\nScript content:\n%s", got, content)
		}
		if strings.Contains(content, "84:00:00") {
			t.Errorf("Script should not contain the default time\nScript content:\n%s", content)
		}
	})
}

func TestRenderStrictSetupOnce(t *testing.T) {
	job := NewJobSpec("strict", nil, &Options{LogDir: "logs", BashStrict: true})
	content := job.Render("true", &RunOptions{Suffix: strPtr("s")}).Content
	if got := strings.Count(content, bashStrictSetup); got != 1 {
		t.Errorf("strict setup line count = %d; want 1\nScript content:\n%s", got, content)
	}

	relaxed := NewJobSpec("strict", nil, &Options{LogDir: "logs"})
	content = relaxed.Render("true", &RunOptions{Suffix: strPtr("s")}).Content
	if strings.Contains(content, "set -e") {
		t.Errorf("Script should not contain a setup line\nScript content:\n%s", content)
	}
}

func TestRenderRunParamExports(t *testing.T) {
	run := DefaultRunParams()
	run.SwiftExe = "/opt/swift/swift"
	job := NewJobSpec("impact", nil, &Options{
		LogDir:     "logs",
		BashStrict: true,
		Run:        &run,
	})

	content := job.Render("$SWIFT_EXE --threads=$THREADS", &RunOptions{Suffix: strPtr("s")}).Content

	wantBlock := `export SWIFT_EXE=/opt/swift/swift
export HMAX=0.1
export DTMAX=5
export CFL=0.1
export TIME_END=36000
export DELTA_TIME=100
export THREADS=32
export OUTDIR=output_10h_100dt
export OUTNUM=0360
###`
	if !strings.Contains(content, wantBlock) {
		t.Errorf("Script missing run-parameter export block\ngot:\n%s\nwant block:\n%s", content, wantBlock)
	}
}

func TestEffectiveNameFromCommandHash(t *testing.T) {
	job := NewJobSpec("hashed", nil, &Options{LogDir: "logs", DateInName: false})

	first := job.Render("echo hi", nil)
	second := job.Render("echo hi", nil)
	if first.Name != second.Name {
		t.Errorf("same command rendered different names: %q vs %q", first.Name, second.Name)
	}
	if want := "hashed-ec8fd4edd266ade6406b7552dd7308c86f43a204"; first.Name != want {
		t.Errorf("Name = %q; want %q", first.Name, want)
	}

	other := job.Render("echo bye", nil)
	if other.Name == first.Name {
		t.Errorf("different commands rendered the same name: %q", other.Name)
	}
}

func TestEffectiveNameDate(t *testing.T) {
	orig := today
	today = func() string { return "2025-12-31" }
	defer func() { today = orig }()

	job := NewJobSpec("dated", nil, &Options{LogDir: "logs", DateInName: true})
	got := job.Render("true", &RunOptions{Suffix: strPtr("run1")}).Name
	if want := "dated-run1-2025-12-31"; got != want {
		t.Errorf("Name = %q; want %q", got, want)
	}
}

func TestEffectiveNameTrimsSeparators(t *testing.T) {
	job := NewJobSpec("-myjob-", nil, &Options{LogDir: "logs", DateInName: false})
	got := job.Render("true", &RunOptions{Suffix: strPtr(" ok- ")}).Name
	if want := "myjob-ok"; got != want {
		t.Errorf("Name = %q; want %q", got, want)
	}
}

func TestWriteScriptPersistent(t *testing.T) {
	tmpDir := t.TempDir()
	scriptsDir := filepath.Join(tmpDir, "slurm-scripts")
	logDir := filepath.Join(tmpDir, "logs")

	job := NewJobSpec("persist", nil, &Options{
		ScriptsDir: scriptsDir,
		LogDir:     logDir,
		DateInName: false,
		BashStrict: true,
	})

	rendered := job.Render("echo hi", &RunOptions{Suffix: strPtr("s")})
	path, err := job.WriteScript(rendered)
	if err != nil {
		t.Fatalf("Failed to write script: %v", err)
	}

	if want := filepath.Join(scriptsDir, rendered.Name+".sh"); path != want {
		t.Errorf("script path = %q; want %q", path, want)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read written script: %v", err)
	}
	if string(content) != rendered.Content {
		t.Errorf("written script differs from rendered content")
	}
	if !dirExists(t, logDir) {
		t.Errorf("log directory %q was not created", logDir)
	}
}

func TestWriteScriptTemp(t *testing.T) {
	job := NewJobSpec("ephemeral", nil, &Options{LogDir: "logs", DateInName: false})

	rendered := job.Render("echo hi", &RunOptions{Suffix: strPtr("s")})
	path, err := job.WriteScript(rendered)
	if err != nil {
		t.Fatalf("Failed to write temp script: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read temp script: %v", err)
	}
	if string(content) != rendered.Content {
		t.Errorf("temp script differs from rendered content")
	}

	CleanupTempScripts()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("temp script %q still exists after cleanup", path)
	}
}

func dirExists(t *testing.T, path string) bool {
	t.Helper()
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
