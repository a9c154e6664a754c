package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ecruz165/maven-pnpm-monorepo/internal/changes"
	"github.com/ecruz165/maven-pnpm-monorepo/internal/config"
	"github.com/ecruz165/maven-pnpm-monorepo/internal/executor"
	"github.com/ecruz165/maven-pnpm-monorepo/internal/flags"
	"github.com/ecruz165/maven-pnpm-monorepo/internal/graph"
	"github.com/ecruz165/maven-pnpm-monorepo/internal/output"
	"github.com/ecruz165/maven-pnpm-monorepo/internal/registry"
)

var cfg = config.New()

var includeDependents bool

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build modules in dependency order",
	Long: `Build modules in dependency order.

monoctl computes levels from the internal dependency graph: level 0 holds the
modules with no internal dependencies, level N the modules whose dependencies
all live in earlier levels. Levels run in order; within a level, modules build
concurrently up to --concurrency.

Selection:
	--modules picks an explicit set (dependencies must already be available).
	--changed-since picks the modules touched since a git base reference.
	With neither flag, every discovered module is built.

Output:
	Console output is on by default. Structured outputs can be written via:
	- --out / --out-format: write an aggregate JSON array or NDJSON stream to a file
	- --emit: write an additional structured stream to stdout (json or ndjson)
	- --no-console: suppress the console sink (use with --emit/--out for machine output)

	NDJSON mode emits one JSON object per line. Objects are lifecycle Events with a
	"type" field (run.started, level.started, module.started, module.output,
	module.result, level.finished, warning, run.finished).

Exit codes:
	0 = every selected module built successfully
	1 = at least one module failed, timed out, or was skipped, or the build
	    could not run at all (configuration error)

Examples:
	# Full repo build, four modules at a time
	monoctl build

	# Only what changed since main, plus everything depending on it
	monoctl build --changed-since origin/main --include-dependents

	# AI Agent: stream machine-readable events to stdout
	monoctl build --no-console --emit ndjson
`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := cfg.Validate(); err != nil {
			fatalf("%v", err)
		}

		ctx := context.Background()
		reg, ws, warnings, err := openRepo(cfg.Runtime.RootDir)
		if err != nil {
			fatalf("%v", err)
		}

		requested, err := selectModules(ctx, reg, ws)
		if err != nil {
			fatalf("%v", err)
		}
		if len(requested) == 0 {
			fmt.Println("nothing to build")
			return
		}

		g := graph.Build(reg)
		levels, cycle, err := graph.ComputeLevels(requested, g)
		if err != nil {
			var unknown *graph.UnknownModulesError
			if errors.As(err, &unknown) {
				fatalf("%v (known modules: %s)", err, strings.Join(reg.Names(), ", "))
			}
			fatalf("%v", err)
		}

		if cfg.Build.DryRun {
			printPlan(levels, cycle, warnings)
			return
		}

		out := output.NewManager()
		if !cfg.Output.NoConsole {
			_ = out.AddSink(output.NewConsoleSink(os.Stdout))
		}
		for _, format := range cfg.Output.Emit {
			sink, err := output.NewEmitSink(os.Stdout, strings.ToLower(strings.TrimSpace(format)))
			if err != nil {
				fatalf("%v", err)
			}
			_ = out.AddSink(sink)
		}
		if cfg.Output.Out != "" {
			sink, err := output.NewFileSink(cfg.Output.Out, cfg.Output.OutFormat)
			if err != nil {
				fatalf("%v", err)
			}
			_ = out.AddSink(sink)
		}

		for _, w := range warnings {
			_ = out.Write(output.Event{Type: "warning", Warning: w.String()})
		}
		if cycle != nil {
			_ = out.Write(output.Event{Type: "warning", Warning: cycle.String()})
		}

		exec := executor.New(reg, ws, out)
		summary := exec.ExecuteLevels(ctx, levels, executor.Options{
			Goal:          cfg.Build.Goal,
			SkipTests:     cfg.Build.SkipTests,
			Offline:       cfg.Build.Offline,
			BatchLevels:   cfg.Build.BatchLevels,
			Concurrency:   cfg.Runtime.Concurrency,
			ModuleTimeout: cfg.Runtime.ModuleTimeout,
			Verbose:       cfg.Runtime.Verbose,
		})

		if err := out.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		if !cfg.Output.NoConsole {
			output.RenderSummary(os.Stdout, summary)
		}
		os.Exit(summary.ExitCode())
	},
}

// openRepo loads workspace configuration and discovers the module registry.
func openRepo(rootDir string) (*registry.Registry, *config.Workspace, []registry.Warning, error) {
	ws, err := config.LoadWorkspace(rootDir)
	if err != nil {
		return nil, nil, nil, err
	}
	reg, warnings, err := registry.Discover(rootDir, ws.InternalGroups)
	if err != nil {
		return nil, nil, nil, err
	}
	return reg, ws, warnings, nil
}

// selectModules resolves the requested build set: explicit --modules, the
// --changed-since diff, or the whole registry.
func selectModules(ctx context.Context, reg *registry.Registry, ws *config.Workspace) ([]string, error) {
	if len(cfg.Selection.Modules) > 0 {
		if cfg.Selection.ChangedSince != "" {
			return nil, fmt.Errorf("--%s and --%s are mutually exclusive", flags.FlagModules, flags.FlagChangedSince)
		}
		return cfg.Selection.Modules, nil
	}
	if cfg.Selection.ChangedSince != "" {
		det := changes.NewDetector(reg, ws)
		res, err := det.ChangedModules(ctx, cfg.Selection.ChangedSince, "")
		if err != nil {
			return nil, err
		}
		selected := res.Modules
		if includeDependents && !res.All {
			selected = changes.WidenToDependents(selected, graph.Build(reg).Dependents())
		}
		return selected, nil
	}
	return reg.Names(), nil
}

func printPlan(levels []graph.Level, cycle *graph.CycleWarning, warnings []registry.Warning) {
	for _, w := range warnings {
		fmt.Printf("warning: %s\n", w)
	}
	if cycle != nil {
		fmt.Printf("warning: %s\n", cycle)
	}
	for i, level := range levels {
		fmt.Printf("level %d: %s\n", i+1, strings.Join(level, ", "))
	}
}

// fatalf aborts with exit code 1: configuration errors share the failure
// code, so automation only ever distinguishes "all delivered" from "not".
func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func init() {
	rootCmd.AddCommand(buildCmd)

	// Selection
	buildCmd.Flags().StringSliceVar(&cfg.Selection.Modules, flags.FlagModules, nil, "Module names to build (repeatable; comma-separated accepted). Empty = all modules")
	buildCmd.Flags().StringVar(&cfg.Selection.ChangedSince, flags.FlagChangedSince, "", "Build only the modules changed since this git reference")
	buildCmd.Flags().BoolVar(&includeDependents, flags.FlagIncludeDependents, false, "With --changed-since, also build everything that depends on the changed modules")

	// Build
	buildCmd.Flags().StringVar(&cfg.Build.Goal, flags.FlagGoal, "package", "Build action: compile|package|test|install|publish (default: package)")
	buildCmd.Flags().BoolVar(&cfg.Build.SkipTests, flags.FlagSkipTests, false, "Skip tests (passes the tool-specific flag)")
	buildCmd.Flags().BoolVar(&cfg.Build.Offline, flags.FlagOffline, false, "Ask the build tools not to touch remote repositories")
	buildCmd.Flags().BoolVar(&cfg.Build.BatchLevels, flags.FlagBatchLevels, false, "Invoke the build tool once per level instead of once per module (per-module durations become approximations)")
	buildCmd.Flags().BoolVar(&cfg.Build.DryRun, flags.FlagDryRun, false, "Print the computed levels without building")

	// Output
	buildCmd.Flags().BoolVar(&cfg.Output.NoConsole, flags.FlagNoConsole, false, "Suppress console output (use with --emit/--out)")
	buildCmd.Flags().StringSliceVar(&cfg.Output.Emit, flags.FlagEmit, nil, "Emit additional structured stream to stdout: json|ndjson (repeatable; comma-separated accepted)")
	buildCmd.Flags().StringVar(&cfg.Output.Out, flags.FlagOut, "", "Write structured output to this path")
	buildCmd.Flags().StringVar(&cfg.Output.OutFormat, flags.FlagOutFormat, "", "Structured output format for --out: json|ndjson (default: inferred from file extension)")

	// Runtime
	buildCmd.Flags().StringVar(&cfg.Runtime.RootDir, flags.FlagRoot, ".", "Repository root to operate on")
	buildCmd.Flags().IntVar(&cfg.Runtime.Concurrency, flags.FlagConcurrency, cfg.Runtime.Concurrency, "Concurrent module builds within a level (default: 4)")
	buildCmd.Flags().DurationVar(&cfg.Runtime.ModuleTimeout, flags.FlagTimeout, cfg.Runtime.ModuleTimeout, "Per-module subprocess timeout (default: 20m)")
}
