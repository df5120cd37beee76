// Package exitcode aggregates the process exit status reported by concurrent units.
//
// The first non-zero code reported wins. Later reports, including other
// non-zero codes, are ignored, so the value a Register settles on is the
// failure that happened first.
package exitcode

import "sync"

// Failure is the code reported for any unit failure.
const Failure = 1

// Register holds the aggregated exit code. The zero value reports success.
type Register struct {
	mu   sync.Mutex
	code int
}

// Report records code when it is non-zero and no failure has been recorded yet.
// It returns whether the register changed.
func (r *Register) Report(code int) bool {
	if code == 0 {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.code != 0 {
		return false
	}
	r.code = code
	return true
}

// Code returns the aggregated exit code.
func (r *Register) Code() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.code
}
