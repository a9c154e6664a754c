package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ecruz165/maven-pnpm-monorepo/internal/flags"
	"github.com/ecruz165/maven-pnpm-monorepo/internal/version"
)

var syncVersion string

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Set the version in module descriptors",
	Long: `Set the version in module descriptors.

Rewrites the version fields of the selected modules' pom.xml or package.json
files, plus the root aggregator POM when Maven modules are selected. With no
--modules flag, every discovered module is updated.

Examples:
	monoctl sync --set-version 2.1.0
	monoctl sync --set-version 2.1.0 --modules my-service,@acme/web
`,
	Run: func(cmd *cobra.Command, args []string) {
		if syncVersion == "" {
			fatalf("--%s is required", flags.FlagSetVersion)
		}

		reg, _, warnings, err := openRepo(cfg.Runtime.RootDir)
		if err != nil {
			fatalf("%v", err)
		}
		for _, w := range warnings {
			fmt.Printf("warning: %s\n", w)
		}

		selected := cfg.Selection.Modules
		if len(selected) == 0 {
			selected = reg.Names()
		}

		updated, err := version.Propagate(reg, selected, syncVersion)
		if err != nil {
			fatalf("%v", err)
		}
		if len(updated) == 0 {
			fmt.Println("all descriptors already current")
			return
		}
		for _, path := range updated {
			fmt.Printf("updated %s\n", path)
		}
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().StringVar(&syncVersion, flags.FlagSetVersion, "", "Version to write into the selected descriptors")
	syncCmd.Flags().StringSliceVar(&cfg.Selection.Modules, flags.FlagModules, nil, "Module names to update (repeatable; comma-separated accepted). Empty = all modules")
	syncCmd.Flags().StringVar(&cfg.Runtime.RootDir, flags.FlagRoot, ".", "Repository root to operate on")
}
