package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "monoctl",
	Short: "Orchestrate Maven and pnpm builds across a monorepo",
	Long: `monoctl discovers the modules of a hybrid Maven/pnpm monorepo, computes
their internal dependency order, and runs the external build tools level by
level with bounded parallelism.

monoctl never compiles anything itself: mvn and pnpm stay the authorities on
their own ecosystems.

Examples:
	# Show available commands and global flags
	monoctl --help

	# Build everything in dependency order
	monoctl build

	# Build one module and whatever changed since main
	monoctl build --modules my-service
	monoctl build --changed-since origin/main

	# Inspect the repo without building
	monoctl status

Output:
	By default, commands write human-readable output to stdout.
	Some commands support structured output via emitter flags (see each command's --help).`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Optional; a missing .env is the common case.
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&cfg.Runtime.Verbose, "verbose", false, "Enable verbose output (streams full subprocess output and GitHub API calls)")
}

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
