package flags

// Package flags defines canonical CLI flag names shared across commands.
// Keeping these as constants helps avoid drift between Cobra flag wiring and
// other code paths that reference flags in messages.
// IMPORTANT: These are flag *names* without leading dashes.
// Example usage:
//
//	cmd.Flags().StringSliceVar(&cfg.Selection.Modules, flags.FlagModules, nil, "...")
//	arg := "--" + flags.FlagModules
const (
	// Selection
	FlagModules           = "modules"
	FlagChangedSince      = "changed-since"
	FlagIncludeDependents = "include-dependents"

	// Build
	FlagGoal        = "goal"
	FlagSkipTests   = "skip-tests"
	FlagOffline     = "offline"
	FlagBatchLevels = "batch-levels"
	FlagDryRun      = "dry-run"

	// Output
	FlagNoConsole = "no-console"
	FlagEmit      = "emit"
	FlagOut       = "out"
	FlagOutFormat = "out-format"

	// Runtime
	FlagRoot        = "root"
	FlagConcurrency = "concurrency"
	FlagTimeout     = "timeout"

	// Change detection
	FlagBase = "base"
	FlagHead = "head"

	// Versioning and notification
	FlagSetVersion = "set-version"
	FlagToken      = "token"
)
