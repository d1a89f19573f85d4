package slurm

import (
	"os"
	"strings"

	"golang.org/x/mod/semver"
)

// MinSlurmVersion is the oldest cluster release the generated scripts are
// known to work against.
const MinSlurmVersion = "19.05"

// ClusterVersion asks the sbatch binary for the cluster release, parsing
// output like "slurm 23.02.6".
func (s *Submitter) ClusterVersion() (string, error) {
	output, err := s.runner.Run(s.sbatchBin, "--version")
	if err != nil {
		return "", ErrVersionUnavailable
	}
	versionStr := strings.TrimSpace(string(output))
	parts := strings.Fields(versionStr)
	if len(parts) >= 2 {
		return parts[1], nil
	}
	if versionStr == "" {
		return "", ErrVersionUnavailable
	}
	return versionStr, nil
}

// VersionAtLeast reports whether a cluster release meets a minimum, comparing
// "23.02.6"-style version strings numerically.
func VersionAtLeast(version, min string) bool {
	return semver.Compare(normalizeVersion(version), normalizeVersion(min)) >= 0
}

// normalizeVersion rewrites a cluster release string into a comparable
// semver form: zero-padded components lose their leading zeros and trailing
// components past the patch level are dropped, so "23.02.6-1" becomes
// "v23.2.6".
func normalizeVersion(version string) string {
	version, _, _ = strings.Cut(strings.TrimSpace(version), "-")
	parts := strings.Split(version, ".")
	if len(parts) > 3 {
		parts = parts[:3]
	}
	for i, p := range parts {
		trimmed := strings.TrimLeft(p, "0")
		if trimmed == "" {
			trimmed = "0"
		}
		parts[i] = trimmed
	}
	return "v" + strings.Join(parts, ".")
}

// InsideJob reports whether the current process is already running inside a
// scheduler allocation.
func InsideJob() bool {
	_, inJob := os.LookupEnv("SLURM_JOB_ID")
	return inJob
}
