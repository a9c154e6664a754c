package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ecruz165/maven-pnpm-monorepo/internal/changes"
	"github.com/ecruz165/maven-pnpm-monorepo/internal/flags"
	"github.com/ecruz165/maven-pnpm-monorepo/internal/graph"
)

var (
	detectBase string
	detectHead string
	detectJSON bool
)

var detectCmd = &cobra.Command{
	Use:   "detect-changes",
	Short: "List the modules changed between two git references",
	Long: `List the modules changed between two git references.

Maps the files in 'git diff --name-only BASE...HEAD' onto their owning
modules. A change to a build-infrastructure path (root descriptors, lockfiles,
monoctl.yaml) marks every module as affected.

The result is also cached in the repo root for follow-up invocations.

Examples:
	monoctl detect-changes --base origin/main
	monoctl detect-changes --base v1.4.0 --head v1.5.0 --include-dependents
`,
	Run: func(cmd *cobra.Command, args []string) {
		if detectBase == "" {
			fatalf("--%s is required", flags.FlagBase)
		}

		reg, ws, _, err := openRepo(cfg.Runtime.RootDir)
		if err != nil {
			fatalf("%v", err)
		}

		det := changes.NewDetector(reg, ws)
		res, err := det.ChangedModules(context.Background(), detectBase, detectHead)
		if err != nil {
			fatalf("%v", err)
		}
		if includeDependents && !res.All {
			res.Modules = changes.WidenToDependents(res.Modules, graph.Build(reg).Dependents())
		}

		if err := changes.StoreCached(reg.RootDir, res); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not cache result: %v\n", err)
		}

		if detectJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			_ = enc.Encode(res)
			return
		}
		if res.All {
			fmt.Printf("all modules affected (%s)\n", res.Reason)
		}
		for _, name := range res.Modules {
			fmt.Println(name)
		}
	},
}

func init() {
	rootCmd.AddCommand(detectCmd)
	detectCmd.Flags().StringVar(&detectBase, flags.FlagBase, "", "Git base reference to diff against")
	detectCmd.Flags().StringVar(&detectHead, flags.FlagHead, "", "Git head reference (default: HEAD)")
	detectCmd.Flags().BoolVar(&includeDependents, flags.FlagIncludeDependents, false, "Also list everything that depends on the changed modules")
	detectCmd.Flags().BoolVar(&detectJSON, "json", false, "Print the result as JSON")
	detectCmd.Flags().StringVar(&cfg.Runtime.RootDir, flags.FlagRoot, ".", "Repository root to operate on")
}
