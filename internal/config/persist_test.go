package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnvVarForKey(t *testing.T) {
	cases := map[string]string{
		"scripts_dir":  "SLURMPY_SCRIPTS_DIR",
		"logs_dir":     "SLURMPY_LOGS_DIR",
		"sbatch_bin":   "SLURMPY_SBATCH_BIN",
		"date_in_name": "SLURMPY_DATE_IN_NAME",
		"tries":        "SLURMPY_TRIES",
	}

	for key, want := range cases {
		if got := EnvVarForKey(key); got != want {
			t.Errorf("EnvVarForKey(%q) = %q; want %q", key, got, want)
		}
	}
}

func TestIsKnownKey(t *testing.T) {
	for _, k := range ConfigKeys() {
		if !IsKnownKey(k) {
			t.Errorf("expected key %q to be known", k)
		}
	}
	if IsKnownKey("not-a-key") {
		t.Errorf("unexpectedly accepted unknown key")
	}
}

func TestValidateBinary(t *testing.T) {
	tmpDir := t.TempDir()

	executable := filepath.Join(tmpDir, "sbatch")
	if err := os.WriteFile(executable, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatalf("failed to create fake binary: %v", err)
	}
	plain := filepath.Join(tmpDir, "notes.txt")
	if err := os.WriteFile(plain, []byte("hello"), 0644); err != nil {
		t.Fatalf("failed to create plain file: %v", err)
	}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"empty path", "", false},
		{"absolute executable", executable, true},
		{"absolute non-executable", plain, false},
		{"absolute missing", filepath.Join(tmpDir, "missing"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateBinary(tt.path); got != tt.want {
				t.Errorf("ValidateBinary(%q) = %v; want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestDetectSbatchBin(t *testing.T) {
	tmpDir := t.TempDir()
	fake := filepath.Join(tmpDir, "sbatch")
	if err := os.WriteFile(fake, []byte("#!/bin/sh\necho Submitted batch job 1\n"), 0755); err != nil {
		t.Fatalf("failed to create fake sbatch: %v", err)
	}

	t.Setenv("PATH", tmpDir)
	if got := DetectSbatchBin(); got != fake {
		t.Errorf("DetectSbatchBin() = %q; want %q", got, fake)
	}

	t.Setenv("PATH", filepath.Join(tmpDir, "empty"))
	if got := DetectSbatchBin(); got != "" {
		t.Errorf("DetectSbatchBin() with empty PATH = %q; want empty", got)
	}
}
