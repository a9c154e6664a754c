package executor

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/ecruz165/maven-pnpm-monorepo/internal/build"
)

// Outcome is the terminal observation of one subprocess.
type Outcome struct {
	// ExitCode is the real exit status, or a build.Exit* sentinel when the
	// process never produced one.
	ExitCode  int
	TimedOut  bool
	LaunchErr error
	Output    string
}

// Runner launches one build-tool subprocess and blocks until it exits or the
// timeout expires. onLine receives each output line as it streams, in order;
// it is called from a single goroutine per invocation.
type Runner interface {
	Run(ctx context.Context, inv Invocation, timeout time.Duration, onLine func(line string)) Outcome
}

// processRunner is the real Runner backed by os/exec. The subprocess gets
// stdout and stderr merged into one line stream: build tools interleave the
// two freely and per-stream separation buys nothing for attribution.
type processRunner struct{}

func (processRunner) Run(ctx context.Context, inv Invocation, timeout time.Duration, onLine func(line string)) Outcome {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, inv.Command, inv.Args...)
	cmd.Dir = inv.Dir

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pw.Close()
		return Outcome{ExitCode: build.ExitLaunchError, LaunchErr: err}
	}

	var captured strings.Builder
	scanDone := make(chan struct{})
	go func() {
		defer close(scanDone)
		scanner := bufio.NewScanner(pr)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			captured.WriteString(line)
			captured.WriteByte('\n')
			if onLine != nil {
				onLine(line)
			}
		}
		// If scanning stopped early (a line over the buffer cap), the
		// subprocess is still writing into the pipe. Keep draining so its
		// output copier cannot block and wedge cmd.Wait.
		_, _ = io.Copy(io.Discard, pr)
	}()

	waitErr := cmd.Wait()
	pw.Close()
	<-scanDone

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return Outcome{ExitCode: build.ExitTimedOut, TimedOut: true, Output: captured.String()}
	}

	exitCode := 0
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			exitCode = exitErr.ExitCode()
			if exitCode < 0 {
				// Signal-killed processes have no exit status; ExitCode
				// reports -1, which would collide with the sentinel codes.
				// Report 128, the shell convention for signal death.
				exitCode = 128
			}
		} else {
			return Outcome{ExitCode: build.ExitLaunchError, LaunchErr: waitErr, Output: captured.String()}
		}
	}
	return Outcome{ExitCode: exitCode, Output: captured.String()}
}
