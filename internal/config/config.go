package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

type Config struct {
	// MAINTAINER NOTE: If you add/change/remove config fields that affect
	// build behavior, keep the CLI flags in internal/cli/build.go in sync.
	Selection Selection
	Build     Build
	Output    Output
	Runtime   Runtime
}

type Selection struct {
	// Modules is an explicit list of module names to build (see --modules).
	// Values may be provided as repeated flags and/or comma-separated lists.
	// Empty means all discovered modules.
	Modules []string

	// ChangedSince is a git base reference; when set, the build set is the
	// modules changed between the base and HEAD (see --changed-since).
	ChangedSince string
}

type Build struct {
	// Goal is the build action (see --goal).
	// Allowed values: compile, package, test, install, publish.
	Goal string

	// SkipTests passes the tool-specific test-skip flag (see --skip-tests).
	SkipTests bool

	// Offline asks the build tool not to touch remote repositories (see --offline).
	Offline bool

	// BatchLevels invokes the build tool once per level with a multi-module
	// selection instead of once per module (see --batch-levels). Per-module
	// durations are then apportioned evenly across the level and are an
	// approximation, not a measurement.
	BatchLevels bool

	// DryRun prints the computed levels without building (see --dry-run).
	DryRun bool
}

type Output struct {
	// NoConsole suppresses the console sink (see --no-console).
	NoConsole bool

	// Emit writes an additional structured event stream to stdout (see --emit).
	// Allowed values: json, ndjson.
	Emit []string

	// Out writes structured output to this path (see --out).
	Out string

	// OutFormat selects the format for --out (see --out-format).
	// Allowed values: json, ndjson. If empty, inferred from the file extension.
	OutFormat string
}

type Runtime struct {
	// RootDir is the repository root to operate on (see --root).
	RootDir string

	// Concurrency bounds how many module builds run at once within a level
	// (see --concurrency). Must be >= 1.
	Concurrency int

	// ModuleTimeout bounds the wall clock of a single subprocess (per module,
	// or per level in batch mode; see --timeout). Must be > 0.
	ModuleTimeout time.Duration

	// Verbose streams the full subprocess output instead of the filtered
	// interesting lines.
	Verbose bool
}

func New() *Config {
	return &Config{
		Build: Build{
			Goal: "package",
		},
		Runtime: Runtime{
			RootDir:       ".",
			Concurrency:   4,
			ModuleTimeout: 20 * time.Minute,
		},
	}
}

var validGoals = map[string]bool{
	"compile": true,
	"package": true,
	"test":    true,
	"install": true,
	"publish": true,
}

func (c *Config) Validate() error {
	c.Selection.Modules = splitCommaList(c.Selection.Modules)

	c.Build.Goal = normalizeEnumValue(c.Build.Goal)
	if c.Build.Goal == "" {
		c.Build.Goal = "package"
	}
	if !validGoals[c.Build.Goal] {
		return fmt.Errorf("unsupported --goal: %s (must be one of: compile, package, test, install, publish)", c.Build.Goal)
	}

	for _, emit := range c.Output.Emit {
		v := normalizeEnumValue(emit)
		if v != "json" && v != "ndjson" {
			return fmt.Errorf("unsupported --emit value: %s (must be one of: json, ndjson)", emit)
		}
	}

	if c.Runtime.RootDir == "" {
		c.Runtime.RootDir = "."
	}
	if c.Runtime.Concurrency <= 0 {
		return errors.New("--concurrency must be >= 1")
	}
	if c.Runtime.ModuleTimeout <= 0 {
		return errors.New("--timeout must be > 0")
	}

	if c.Output.Out != "" {
		c.Output.OutFormat = normalizeEnumValue(c.Output.OutFormat)
		if c.Output.OutFormat == "" {
			ext := strings.ToLower(filepath.Ext(c.Output.Out))
			switch ext {
			case ".json":
				c.Output.OutFormat = "json"
			case ".ndjson":
				c.Output.OutFormat = "ndjson"
			default:
				return fmt.Errorf("cannot infer output format from file extension %q; use --out-format", ext)
			}
		} else if c.Output.OutFormat != "json" && c.Output.OutFormat != "ndjson" {
			return fmt.Errorf("unsupported output format: %s", c.Output.OutFormat)
		}
	}

	return nil
}

func normalizeEnumValue(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func splitCommaList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
