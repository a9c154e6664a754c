package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ecruz165/maven-pnpm-monorepo/internal/config"
	"github.com/ecruz165/maven-pnpm-monorepo/internal/flags"
	"github.com/ecruz165/maven-pnpm-monorepo/internal/registry"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter monoctl.yaml",
	Long: `Write a starter monoctl.yaml to the repository root.

The generated file carries monoctl's defaults, seeded with the internal
namespaces found in the repo; edit it to add tool arguments, infra paths, or
downstream repositories.`,
	Run: func(cmd *cobra.Command, args []string) {
		path := filepath.Join(cfg.Runtime.RootDir, config.WorkspaceFile)
		if _, err := os.Stat(path); err == nil {
			fatalf("%s already exists", path)
		}

		ws := config.DefaultWorkspace()
		if reg, _, err := registry.Discover(cfg.Runtime.RootDir, nil); err == nil {
			ws.InternalGroups = reg.Groups()
		}

		data, err := yaml.Marshal(ws)
		if err != nil {
			fatalf("%v", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			fatalf("%v", err)
		}
		fmt.Printf("wrote %s\n", path)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&cfg.Runtime.RootDir, flags.FlagRoot, ".", "Repository root to operate on")
}
