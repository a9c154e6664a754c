// Package build holds the per-module build outcome model shared by the
// executor and the output sinks.
package build

import "time"

// State is the terminal (or in-flight) state of one module build.
type State string

const (
	StatePending     State = "PENDING"
	StateRunning     State = "RUNNING"
	StateSucceeded   State = "SUCCEEDED"
	StateFailed      State = "FAILED"
	StateTimedOut    State = "TIMED_OUT"
	StateLaunchError State = "LAUNCH_ERROR"
	StateSkipped     State = "SKIPPED"
)

// Sentinel exit codes for outcomes with no real subprocess exit status.
// Real exit codes are never negative, so these cannot collide.
const (
	ExitLaunchError = -1
	ExitTimedOut    = -2
	ExitSkipped     = -3
)

// Result is the immutable outcome of one module's build.
type Result struct {
	Module string `json:"module"`
	State  State  `json:"state"`

	// ExitCode is the subprocess exit status, or one of the sentinel codes
	// above when no subprocess produced a status.
	ExitCode int `json:"exit_code"`

	// DurationSeconds is wall-clock time from subprocess launch to exit.
	DurationSeconds float64 `json:"duration_seconds"`

	// DurationApportioned is set when one subprocess covered a whole level
	// and its duration was divided evenly across the level's modules. The
	// value is then an approximation, not a per-module measurement.
	DurationApportioned bool `json:"duration_apportioned,omitempty"`

	ErrorDetail string `json:"error_detail,omitempty"`

	// Output is the full captured subprocess output attributed to this
	// module, kept for post-mortems. Not serialized into event streams.
	Output string `json:"-"`
}

// Success reports whether the module delivered its build output.
func (r Result) Success() bool {
	return r.State == StateSucceeded
}

// Skipped creates the synthetic result for a module never attempted because
// an earlier level failed.
func Skipped(module, upstream string) Result {
	return Result{
		Module:      module,
		State:       StateSkipped,
		ExitCode:    ExitSkipped,
		ErrorDetail: "skipped: upstream failure in " + upstream,
	}
}

// Summary aggregates all Results of one invocation.
type Summary struct {
	Results          []Result `json:"results"`
	Succeeded        int      `json:"succeeded"`
	Failed           int      `json:"failed"`
	Skipped          int      `json:"skipped"`
	WallClockSeconds float64  `json:"wall_clock_seconds"`
}

// Summarize freezes the per-module results into a Summary.
func Summarize(results []Result, wallClock time.Duration) Summary {
	s := Summary{
		Results:          results,
		WallClockSeconds: wallClock.Seconds(),
	}
	for _, r := range results {
		switch {
		case r.Success():
			s.Succeeded++
		case r.State == StateSkipped:
			s.Skipped++
		default:
			s.Failed++
		}
	}
	return s
}

// ExitCode is the process exit contract: zero iff every result succeeded.
// Skipped results count as failures here; they represent undelivered output.
func (s Summary) ExitCode() int {
	if s.Failed > 0 || s.Skipped > 0 {
		return 1
	}
	return 0
}
