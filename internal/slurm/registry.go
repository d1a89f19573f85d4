package slurm

import "sync"

var (
	activeSubmitter *Submitter
	submitterMu     sync.RWMutex
)

// SetActiveSubmitter configures the submitter instance that the application
// should use. Passing nil clears any previously configured submitter.
func SetActiveSubmitter(s *Submitter) {
	submitterMu.Lock()
	defer submitterMu.Unlock()
	activeSubmitter = s
}

// ActiveSubmitter returns the currently configured submitter instance (may be
// nil when no usable sbatch binary was found).
func ActiveSubmitter() *Submitter {
	submitterMu.RLock()
	defer submitterMu.RUnlock()
	return activeSubmitter
}

// ClearActiveSubmitter resets the active submitter reference.
func ClearActiveSubmitter() {
	SetActiveSubmitter(nil)
}
