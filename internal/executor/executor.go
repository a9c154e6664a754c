// Package executor runs the external build tools over the scheduled levels.
//
// Within a level, module builds are admitted by a weighted semaphore up to
// the concurrency bound; across levels, strict ordering holds: no module of
// level i+1 starts before every module of level i reached a terminal state.
package executor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/ecruz165/maven-pnpm-monorepo/internal/build"
	"github.com/ecruz165/maven-pnpm-monorepo/internal/config"
	"github.com/ecruz165/maven-pnpm-monorepo/internal/graph"
	"github.com/ecruz165/maven-pnpm-monorepo/internal/output"
	"github.com/ecruz165/maven-pnpm-monorepo/internal/registry"
)

// Options configure one ExecuteLevels run.
type Options struct {
	// Goal is the validated build action: compile, package, test, install
	// or publish.
	Goal string

	SkipTests bool
	Offline   bool

	// BatchLevels invokes the tool once per level (per ecosystem) instead of
	// once per module. Durations are then apportioned evenly across the
	// level's modules and flagged as approximations.
	BatchLevels bool

	// Concurrency bounds simultaneously running module subprocesses within
	// one level. Values below 1 are treated as 1.
	Concurrency int

	// ModuleTimeout bounds the wall clock of each subprocess.
	ModuleTimeout time.Duration

	// Verbose streams every subprocess line instead of the filtered markers.
	Verbose bool
}

// Executor coordinates subprocess builds level by level.
type Executor struct {
	reg *registry.Registry
	ws  *config.Workspace
	out *output.Manager

	// runner is a test seam; production uses processRunner.
	runner Runner
}

func New(reg *registry.Registry, ws *config.Workspace, out *output.Manager) *Executor {
	return &Executor{reg: reg, ws: ws, out: out, runner: processRunner{}}
}

// ExecuteLevels builds every module in the given levels and returns the
// frozen run summary. Per-module failures never escape as errors; they are
// recorded as results. The first failed level stops admission of later
// levels: their modules get synthetic SKIPPED results.
func (e *Executor) ExecuteLevels(ctx context.Context, levels []graph.Level, opts Options) build.Summary {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	start := time.Now()

	var all []string
	total := 0
	for _, level := range levels {
		all = append(all, level...)
		total += len(level)
	}
	_ = e.out.Write(output.Event{Type: "run.started", Level: len(levels), Modules: all})

	// A single standalone module may carry -am so the build tool materializes
	// its workspace prerequisites itself. Never combined with batches.
	alsoMake := total == 1

	var results []build.Result
	var failedUpstream string

	if e.needsRootInstall(levels) {
		if res, ok := e.installRootDescriptor(ctx, opts); !ok {
			_ = e.out.Write(output.Event{Type: "warning", Warning: "root descriptor install failed; skipping all levels"})
			results = append(results, res)
			failedUpstream = res.Module
		}
	}

	for i, level := range levels {
		levelNo := i + 1

		if failedUpstream != "" {
			for _, name := range level {
				r := build.Skipped(name, failedUpstream)
				_ = e.out.Write(output.Event{Type: "module.result", Module: name, Level: levelNo, Result: &r})
				results = append(results, r)
			}
			continue
		}

		_ = e.out.Write(output.Event{Type: "level.started", Level: levelNo, Modules: level})

		var levelResults []build.Result
		if opts.BatchLevels && len(level) > 1 {
			levelResults = e.runLevelBatch(ctx, level, levelNo, opts)
		} else {
			levelResults = e.runLevelBounded(ctx, level, levelNo, opts, alsoMake)
		}

		for _, r := range levelResults {
			if !r.Success() && failedUpstream == "" {
				failedUpstream = r.Module
			}
		}
		results = append(results, levelResults...)
		_ = e.out.Write(output.Event{Type: "level.finished", Level: levelNo})
	}

	summary := build.Summarize(results, time.Since(start))
	_ = e.out.Write(output.Event{Type: "run.finished", ExitCode: summary.ExitCode()})
	return summary
}

// runLevelBounded launches one subprocess per module with semaphore
// admission: modules beyond the bound queue and are admitted as running ones
// finish. A failure does not cancel in-flight siblings; the level always
// drains naturally.
func (e *Executor) runLevelBounded(ctx context.Context, level graph.Level, levelNo int, opts Options, alsoMake bool) []build.Result {
	sem := semaphore.NewWeighted(int64(opts.Concurrency))
	results := make([]build.Result, len(level))
	var wg sync.WaitGroup

	for i, name := range level {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				results[i] = build.Result{
					Module:      name,
					State:       build.StateLaunchError,
					ExitCode:    build.ExitLaunchError,
					ErrorDetail: fmt.Sprintf("not started: %v", err),
				}
				return
			}
			defer sem.Release(1)
			results[i] = e.runModule(ctx, name, levelNo, opts, alsoMake)
		}(i, name)
	}

	wg.Wait()
	return results
}

func (e *Executor) runModule(ctx context.Context, name string, levelNo int, opts Options, alsoMake bool) build.Result {
	m, ok := e.reg.Lookup(name)
	if !ok {
		return build.Result{
			Module:      name,
			State:       build.StateLaunchError,
			ExitCode:    build.ExitLaunchError,
			ErrorDetail: "module not found in registry",
		}
	}

	var inv Invocation
	switch m.Tool {
	case registry.ToolPnpm:
		inv = pnpmInvocation(e.ws, e.reg.RootDir, []registry.Module{m}, opts)
	default:
		inv = mavenInvocation(e.ws, e.reg.RootDir, []registry.Module{m}, opts, alsoMake)
	}

	_ = e.out.Write(output.Event{Type: "module.started", Module: name, Level: levelNo})

	started := time.Now()
	outcome := e.runner.Run(ctx, inv, opts.ModuleTimeout, func(line string) {
		if opts.Verbose || interestingLine(line) {
			_ = e.out.Write(output.Event{Type: "module.output", Module: name, Level: levelNo, Line: line})
		}
	})
	duration := time.Since(started)

	r := resultFromOutcome(name, outcome, opts.ModuleTimeout)
	r.DurationSeconds = duration.Seconds()
	_ = e.out.Write(output.Event{Type: "module.result", Module: name, Level: levelNo, Result: &r})
	return r
}

// runLevelBatch covers a whole level with one subprocess per ecosystem. The
// measured duration is divided evenly across the covered modules; the
// per-module figures are approximations and flagged as such.
func (e *Executor) runLevelBatch(ctx context.Context, level graph.Level, levelNo int, opts Options) []build.Result {
	var mavenMods, pnpmMods []registry.Module
	for _, name := range level {
		m, ok := e.reg.Lookup(name)
		if !ok {
			m = registry.Module{Name: name}
		}
		if m.Tool == registry.ToolPnpm {
			pnpmMods = append(pnpmMods, m)
		} else {
			mavenMods = append(mavenMods, m)
		}
	}

	var results []build.Result
	if len(mavenMods) > 0 {
		inv := mavenInvocation(e.ws, e.reg.RootDir, mavenMods, opts, false)
		results = append(results, e.runBatch(ctx, inv, mavenMods, levelNo, opts)...)
	}
	if len(pnpmMods) > 0 {
		inv := pnpmInvocation(e.ws, e.reg.RootDir, pnpmMods, opts)
		results = append(results, e.runBatch(ctx, inv, pnpmMods, levelNo, opts)...)
	}
	return results
}

func (e *Executor) runBatch(ctx context.Context, inv Invocation, members []registry.Module, levelNo int, opts Options) []build.Result {
	for _, m := range members {
		_ = e.out.Write(output.Event{Type: "module.started", Module: m.Name, Level: levelNo})
	}

	started := time.Now()
	outcome := e.runner.Run(ctx, inv, opts.ModuleTimeout, func(line string) {
		if opts.Verbose || interestingLine(line) {
			_ = e.out.Write(output.Event{Type: "module.output", Module: inv.Label, Level: levelNo, Line: line})
		}
	})
	perModule := time.Since(started).Seconds() / float64(len(members))

	results := make([]build.Result, len(members))
	for i, m := range members {
		r := resultFromOutcome(m.Name, outcome, opts.ModuleTimeout)
		r.DurationSeconds = perModule
		r.DurationApportioned = len(members) > 1
		results[i] = r
		_ = e.out.Write(output.Event{Type: "module.result", Module: m.Name, Level: levelNo, Result: &results[i]})
	}
	return results
}

// resultFromOutcome maps a subprocess outcome onto the result state machine.
// The exit code is authoritative; captured output only enriches the detail.
func resultFromOutcome(name string, o Outcome, timeout time.Duration) build.Result {
	r := build.Result{Module: name, ExitCode: o.ExitCode, Output: o.Output}
	switch {
	case o.LaunchErr != nil:
		r.State = build.StateLaunchError
		r.ExitCode = build.ExitLaunchError
		r.ErrorDetail = fmt.Sprintf("failed to launch: %v", o.LaunchErr)
	case o.TimedOut:
		r.State = build.StateTimedOut
		r.ExitCode = build.ExitTimedOut
		r.ErrorDetail = fmt.Sprintf("timed out after %s", timeout)
	case o.ExitCode == 0:
		r.State = build.StateSucceeded
	default:
		r.State = build.StateFailed
		if line := lastErrorLine(o.Output); line != "" {
			r.ErrorDetail = line
		} else {
			r.ErrorDetail = fmt.Sprintf("exit code %d", o.ExitCode)
		}
	}
	return r
}

// needsRootInstall reports whether the run must install the shared root
// descriptor before level 0: only when the repo has an aggregator POM and at
// least one scheduled module builds with Maven.
func (e *Executor) needsRootInstall(levels []graph.Level) bool {
	if e.reg.RootPom == nil {
		return false
	}
	for _, level := range levels {
		for _, name := range level {
			if m, ok := e.reg.Lookup(name); ok && m.Tool == registry.ToolMaven {
				return true
			}
		}
	}
	return false
}

// installRootDescriptor runs the shared prerequisite step once, before any
// level, so concurrently-starting module builds never race to materialize
// the parent POM in the local repository.
func (e *Executor) installRootDescriptor(ctx context.Context, opts Options) (build.Result, bool) {
	inv := rootInstallInvocation(e.ws, e.reg.RootDir, opts.Offline)
	_ = e.out.Write(output.Event{Type: "module.started", Module: inv.Label})

	started := time.Now()
	outcome := e.runner.Run(ctx, inv, opts.ModuleTimeout, func(line string) {
		if opts.Verbose || interestingLine(line) {
			_ = e.out.Write(output.Event{Type: "module.output", Module: inv.Label, Line: line})
		}
	})

	r := resultFromOutcome(inv.Label, outcome, opts.ModuleTimeout)
	r.DurationSeconds = time.Since(started).Seconds()
	if r.Success() {
		return r, true
	}
	_ = e.out.Write(output.Event{Type: "module.result", Module: inv.Label, Result: &r})
	return r, false
}
