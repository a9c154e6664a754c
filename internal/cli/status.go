package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ecruz165/maven-pnpm-monorepo/internal/flags"
	"github.com/ecruz165/maven-pnpm-monorepo/internal/graph"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show discovered modules and the computed build order",
	Long: `Show discovered modules and the computed build order.

Reads the root descriptors, lists every module with its tool and version, and
prints the levels a full build would run. Never invokes the build tools.`,
	Run: func(cmd *cobra.Command, args []string) {
		reg, _, warnings, err := openRepo(cfg.Runtime.RootDir)
		if err != nil {
			fatalf("%v", err)
		}

		for _, w := range warnings {
			fmt.Fprintf(os.Stderr, "warning: %s\n", w)
		}

		nameWidth := len("MODULE")
		for _, m := range reg.Modules {
			if len(m.Name) > nameWidth {
				nameWidth = len(m.Name)
			}
		}
		fmt.Printf("%-*s  %-6s  %-12s  %s\n", nameWidth, "MODULE", "TOOL", "VERSION", "PATH")
		for _, m := range reg.Modules {
			fmt.Printf("%-*s  %-6s  %-12s  %s\n", nameWidth, m.Name, m.Tool, m.Version, m.Path)
		}

		levels, cycle, err := graph.ComputeLevels(reg.Names(), graph.Build(reg))
		if err != nil {
			fatalf("%v", err)
		}
		if cycle != nil {
			fmt.Fprintf(os.Stderr, "warning: %s\n", cycle)
		}
		fmt.Println()
		for i, level := range levels {
			fmt.Printf("level %d: %s\n", i+1, strings.Join(level, ", "))
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringVar(&cfg.Runtime.RootDir, flags.FlagRoot, ".", "Repository root to operate on")
}
