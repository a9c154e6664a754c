package build

import (
	"testing"
	"time"
)

func TestSummarize(t *testing.T) {
	results := []Result{
		{Module: "a", State: StateSucceeded, ExitCode: 0},
		{Module: "b", State: StateFailed, ExitCode: 1},
		{Module: "c", State: StateTimedOut, ExitCode: ExitTimedOut},
		{Module: "d", State: StateLaunchError, ExitCode: ExitLaunchError},
		Skipped("e", "b"),
	}
	s := Summarize(results, 3*time.Second)
	if s.Succeeded != 1 || s.Failed != 3 || s.Skipped != 1 {
		t.Errorf("counts = %d/%d/%d, want 1/3/1", s.Succeeded, s.Failed, s.Skipped)
	}
	if s.WallClockSeconds != 3 {
		t.Errorf("WallClockSeconds = %v", s.WallClockSeconds)
	}
	if s.ExitCode() != 1 {
		t.Errorf("ExitCode = %d, want 1", s.ExitCode())
	}
}

func TestExitCode_SkippedCountsAsFailure(t *testing.T) {
	s := Summarize([]Result{
		{Module: "a", State: StateSucceeded},
		Skipped("b", "a"),
	}, time.Second)
	if s.ExitCode() != 1 {
		t.Errorf("ExitCode = %d, want 1 (skipped is undelivered output)", s.ExitCode())
	}
}

func TestExitCode_AllSucceeded(t *testing.T) {
	s := Summarize([]Result{
		{Module: "a", State: StateSucceeded},
		{Module: "b", State: StateSucceeded},
	}, time.Second)
	if s.ExitCode() != 0 {
		t.Errorf("ExitCode = %d, want 0", s.ExitCode())
	}
}

func TestSentinelsNeverCollideWithRealExitCodes(t *testing.T) {
	for _, code := range []int{ExitLaunchError, ExitTimedOut, ExitSkipped} {
		if code >= 0 {
			t.Errorf("sentinel %d is a possible real exit code", code)
		}
	}
	if ExitLaunchError == ExitTimedOut || ExitTimedOut == ExitSkipped || ExitLaunchError == ExitSkipped {
		t.Error("sentinels must be distinct")
	}
}
