package slurm

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestParseDirective(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   Directive
		wantOk bool
	}{
		{name: "long form", raw: "--partition=debug", want: Directive{Key: "partition", Value: "debug"}, wantOk: true},
		{name: "long form with space", raw: "--partition debug", want: Directive{Key: "partition", Value: "debug"}, wantOk: true},
		{name: "long flag without value", raw: "--requeue", want: Directive{Key: "requeue", Value: ""}, wantOk: true},
		{name: "short form", raw: "-p debug", want: Directive{Key: "p", Value: "debug"}, wantOk: true},
		{name: "short form name", raw: "-J my-job", want: Directive{Key: "J", Value: "my-job"}, wantOk: true},
		{name: "value keeps equals", raw: "--gres=gpu:a100:2", want: Directive{Key: "gres", Value: "gpu:a100:2"}, wantOk: true},
		{name: "empty", raw: "", wantOk: false},
		{name: "not a flag", raw: "partition=debug", wantOk: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseDirective(tt.raw)
			if ok != tt.wantOk {
				t.Fatalf("parseDirective(%q) ok = %v; want %v", tt.raw, ok, tt.wantOk)
			}
			if ok && got != tt.want {
				t.Errorf("parseDirective(%q) = %v; want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseScriptRoundTrip(t *testing.T) {
	job := NewJobSpec("roundtrip", Directives{
		{Key: "partition", Value: "short"},
		{Key: "c", Value: "8"},
	}, &Options{LogDir: "logs", DateInName: false, BashStrict: true})

	rendered := job.Render("echo hi\necho done", &RunOptions{
		Suffix: strPtr("rt"),
		Env:    []EnvVar{{Key: "SAMPLE", Value: "A12"}},
	})

	parsed := ParseScript(rendered.Content)

	if parsed.JobName != "roundtrip-rt" {
		t.Errorf("JobName = %q; want %q", parsed.JobName, "roundtrip-rt")
	}
	if v, ok := parsed.Directives.Get("partition"); !ok || v != "short" {
		t.Errorf("partition directive = %q, %v; want %q", v, ok, "short")
	}
	if v, ok := parsed.Directives.Get("c"); !ok || v != "8" {
		t.Errorf("c directive = %q, %v; want %q", v, ok, "8")
	}
	if v, ok := parsed.Directives.Get("time"); !ok || v != DefaultWallTime {
		t.Errorf("time directive = %q, %v; want the injected default", v, ok)
	}
	if v, ok := parsed.Directives.Get("e"); !ok || v != "logs/roundtrip-rt.%J.err" {
		t.Errorf("e directive = %q, %v; want the log path", v, ok)
	}

	if len(parsed.Exports) != 1 || parsed.Exports[0] != (EnvVar{Key: "SAMPLE", Value: "A12"}) {
		t.Errorf("Exports = %v; want the SAMPLE assignment", parsed.Exports)
	}
	if parsed.Command != "echo hi\necho done" {
		t.Errorf("Command = %q; want the multi-line payload", parsed.Command)
	}
	if !parsed.HasShebang {
		t.Error("HasShebang = false; want true for a rendered script")
	}
	if !parsed.StrictSetup {
		t.Error("StrictSetup = false; want true for a strict-mode script")
	}
}

func TestParseScriptBareScript(t *testing.T) {
	parsed := ParseScript("#SBATCH --partition=debug\n###\nhostname")

	if parsed.HasShebang {
		t.Error("HasShebang = true; want false without an interpreter line")
	}
	if parsed.StrictSetup {
		t.Error("StrictSetup = true; want false without a set -e line")
	}
	if parsed.Command != "hostname" {
		t.Errorf("Command = %q; want %q", parsed.Command, "hostname")
	}
}

func TestParseScriptFileMissing(t *testing.T) {
	_, err := ParseScriptFile(filepath.Join(t.TempDir(), "missing.sh"))
	if !errors.Is(err, ErrScriptNotFound) {
		t.Errorf("error = %v; want ErrScriptNotFound", err)
	}
}

func TestParseScriptFile(t *testing.T) {
	tmpDir := t.TempDir()
	job := NewJobSpec("fromdisk", nil, &Options{
		ScriptsDir: filepath.Join(tmpDir, "scripts"),
		LogDir:     filepath.Join(tmpDir, "logs"),
		DateInName: false,
		BashStrict: true,
	})

	rendered := job.Render("hostname", &RunOptions{Suffix: strPtr("d1")})
	path, err := job.WriteScript(rendered)
	if err != nil {
		t.Fatalf("Failed to write script: %v", err)
	}

	parsed, err := ParseScriptFile(path)
	if err != nil {
		t.Fatalf("Failed to parse script file: %v", err)
	}
	if parsed.JobName != "fromdisk-d1" {
		t.Errorf("JobName = %q; want %q", parsed.JobName, "fromdisk-d1")
	}
	if parsed.Command != "hostname" {
		t.Errorf("Command = %q; want %q", parsed.Command, "hostname")
	}
}
