package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ecruz165/maven-pnpm-monorepo/internal/flags"
	gh "github.com/ecruz165/maven-pnpm-monorepo/internal/github"
)

var (
	notifyVersion string
	notifyToken   string
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Open version-bump pull requests against downstream repositories",
	Long: `Open version-bump pull requests against downstream repositories.

For each downstream configured in monoctl.yaml, bumps the pinned versions of
this monorepo's modules in the downstream manifest on a fresh branch and opens
a pull request.

Authentication:
	monoctl uses a GitHub access token. It prefers --token, then GITHUB_TOKEN,
	then GitHub CLI authentication if the gh CLI is installed and logged in.

Examples:
	monoctl notify --set-version 2.1.0
	monoctl notify --set-version 2.1.0 --modules my-service
`,
	Run: func(cmd *cobra.Command, args []string) {
		if notifyVersion == "" {
			fatalf("--%s is required", flags.FlagSetVersion)
		}

		reg, ws, _, err := openRepo(cfg.Runtime.RootDir)
		if err != nil {
			fatalf("%v", err)
		}
		if len(ws.Downstreams) == 0 {
			fmt.Println("no downstreams configured; nothing to notify")
			return
		}

		selected := cfg.Selection.Modules
		if len(selected) == 0 {
			selected = reg.Names()
		}
		updates := make([]gh.Update, 0, len(selected))
		for _, name := range selected {
			if _, ok := reg.Lookup(name); !ok {
				fatalf("unknown module: %s", name)
			}
			updates = append(updates, gh.Update{Name: name, NewVersion: notifyVersion})
		}

		ctx := context.Background()
		token, _, err := gh.ResolveAuthToken(ctx, notifyToken)
		if err != nil {
			fatalf("failed to resolve GitHub auth token: %v", err)
		}
		if strings.TrimSpace(token) == "" {
			fatalf("GitHub auth token is required (set GITHUB_TOKEN or run 'gh auth login')")
		}
		var verbose io.Writer
		if cfg.Runtime.Verbose {
			verbose = os.Stderr
		}
		client, err := gh.NewClient(ctx, token, verbose)
		if err != nil {
			fatalf("failed to create GitHub client: %v", err)
		}

		notifier := gh.NewNotifier(client)
		failed := false
		for _, d := range ws.Downstreams {
			note, err := notifier.Notify(ctx, d, updates)
			if err != nil {
				failed = true
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				continue
			}
			if note.Skipped {
				fmt.Printf("%s: already current, skipped\n", note.Repo)
				continue
			}
			fmt.Printf("%s: %s\n", note.Repo, note.PRURL)
		}
		if failed {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.Flags().StringVar(&notifyVersion, flags.FlagSetVersion, "", "Published version the downstreams should move to")
	notifyCmd.Flags().StringSliceVar(&cfg.Selection.Modules, flags.FlagModules, nil, "Module names that were published (repeatable; comma-separated accepted). Empty = all modules")
	notifyCmd.Flags().StringVar(&notifyToken, flags.FlagToken, "", "GitHub access token (default: GITHUB_TOKEN, then gh CLI auth)")
	notifyCmd.Flags().StringVar(&cfg.Runtime.RootDir, flags.FlagRoot, ".", "Repository root to operate on")
}
