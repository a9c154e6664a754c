package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/ecruz165/maven-pnpm-monorepo/internal/build"
)

var (
	okColor   = color.New(color.FgGreen)
	failColor = color.New(color.FgRed)
	skipColor = color.New(color.FgYellow)
	dimColor  = color.New(color.Faint)
)

// ConsoleSink renders events as human-readable lines. Output from modules
// running concurrently interleaves line by line; each line carries its module
// name so the interleaving stays attributable.
type ConsoleSink struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewConsoleSink(w io.Writer) *ConsoleSink {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleSink{writer: w}
}

func (s *ConsoleSink) Write(e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	switch e.Type {
	case "run.started":
		_, err = fmt.Fprintf(s.writer, "Building %d module(s) in %d level(s)\n", len(e.Modules), e.Level)
	case "level.started":
		_, err = fmt.Fprintf(s.writer, "── level %d: %s\n", e.Level, strings.Join(e.Modules, ", "))
	case "module.output":
		_, err = fmt.Fprintf(s.writer, "  %s %s\n", dimColor.Sprintf("[%s]", e.Module), e.Line)
	case "module.result":
		if e.Result != nil {
			err = s.writeResult(*e.Result)
		}
	case "warning":
		_, err = fmt.Fprintf(s.writer, "%s %s\n", skipColor.Sprint("warning:"), e.Warning)
	}
	if err != nil {
		return err
	}
	return flushIfPossible(s.writer)
}

func (s *ConsoleSink) writeResult(r build.Result) error {
	var tag string
	switch r.State {
	case build.StateSucceeded:
		tag = okColor.Sprint("  OK  ")
	case build.StateSkipped:
		tag = skipColor.Sprint(" SKIP ")
	default:
		tag = failColor.Sprint(" FAIL ")
	}
	detail := ""
	if r.ErrorDetail != "" {
		detail = " - " + r.ErrorDetail
	}
	approx := ""
	if r.DurationApportioned {
		approx = "~"
	}
	_, err := fmt.Fprintf(s.writer, "[%s] %s (%s%.1fs)%s\n", tag, r.Module, approx, r.DurationSeconds, detail)
	return err
}

func (s *ConsoleSink) Close() error {
	return nil
}

// RenderSummary writes the final per-module table and totals. It always
// prints, even on partial failure; the process exit code stays the sole
// authoritative pass/fail signal for automation.
func RenderSummary(w io.Writer, s build.Summary) {
	if w == nil {
		w = os.Stdout
	}

	nameWidth := len("MODULE")
	for _, r := range s.Results {
		if len(r.Module) > nameWidth {
			nameWidth = len(r.Module)
		}
	}

	fmt.Fprintf(w, "\n%-*s  %-12s  %6s  %9s\n", nameWidth, "MODULE", "STATE", "EXIT", "DURATION")
	for _, r := range s.Results {
		state := string(r.State)
		switch r.State {
		case build.StateSucceeded:
			state = okColor.Sprint(state)
		case build.StateSkipped:
			state = skipColor.Sprint(state)
		default:
			state = failColor.Sprint(state)
		}
		// Pad against the colored string's visible width, not its byte length.
		pad := strings.Repeat(" ", 12-len(r.State))
		approx := " "
		if r.DurationApportioned {
			approx = "~"
		}
		fmt.Fprintf(w, "%-*s  %s%s  %6d  %s%7.1fs\n", nameWidth, r.Module, state, pad, r.ExitCode, approx, r.DurationSeconds)
	}
	fmt.Fprintf(w, "\n%d succeeded, %d failed, %d skipped in %.1fs\n",
		s.Succeeded, s.Failed, s.Skipped, s.WallClockSeconds)
}
