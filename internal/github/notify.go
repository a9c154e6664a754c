package github

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/go-github/v81/github"

	"github.com/ecruz165/maven-pnpm-monorepo/internal/config"
)

// Update is one published module whose consumers should move to NewVersion.
type Update struct {
	// Name is the dependency identifier as downstream manifests pin it: the
	// Maven artifactId or the full npm package name.
	Name       string
	NewVersion string
}

// Notification is the outcome of notifying one downstream repository.
type Notification struct {
	Repo   string
	PRURL  string
	Branch string

	// Skipped is set when the downstream manifest already carries the new
	// versions and no pull request was needed.
	Skipped bool
}

// Notifier opens version-bump pull requests against downstream repositories
// after a publish.
type Notifier struct {
	gh *github.Client
}

func NewNotifier(gh *github.Client) *Notifier {
	return &Notifier{gh: gh}
}

// Notify bumps the pinned versions in the downstream's manifest on a fresh
// branch and opens a pull request against the base branch.
func (n *Notifier) Notify(ctx context.Context, d config.Downstream, updates []Update) (Notification, error) {
	if len(updates) == 0 {
		return Notification{}, fmt.Errorf("notify %s/%s: no updates", d.Owner, d.Repo)
	}
	note := Notification{Repo: d.Owner + "/" + d.Repo}

	base := d.BaseBranch
	if base == "" {
		repo, _, err := n.gh.Repositories.Get(ctx, d.Owner, d.Repo)
		if err != nil {
			return note, fmt.Errorf("notify %s: %w", note.Repo, err)
		}
		base = repo.GetDefaultBranch()
	}

	file := d.File
	if file == "" {
		file = "pom.xml"
	}

	content, _, _, err := n.gh.Repositories.GetContents(ctx, d.Owner, d.Repo, file,
		&github.RepositoryContentGetOptions{Ref: base})
	if err != nil {
		return note, fmt.Errorf("notify %s: read %s: %w", note.Repo, file, err)
	}
	manifest, err := content.GetContent()
	if err != nil {
		return note, fmt.Errorf("notify %s: decode %s: %w", note.Repo, file, err)
	}

	bumped, changed := bumpManifest(manifest, file, updates)
	if !changed {
		note.Skipped = true
		return note, nil
	}

	baseRef, _, err := n.gh.Git.GetRef(ctx, d.Owner, d.Repo, "heads/"+base)
	if err != nil {
		return note, fmt.Errorf("notify %s: resolve %s: %w", note.Repo, base, err)
	}

	note.Branch = branchName(updates)
	_, resp, err := n.gh.Git.CreateRef(ctx, d.Owner, d.Repo, github.CreateRef{
		Ref: "refs/heads/" + note.Branch,
		SHA: baseRef.Object.GetSHA(),
	})
	if err != nil {
		// A retried notify for the same version finds its branch from the
		// earlier attempt; reuse it instead of failing.
		if resp == nil || resp.StatusCode != http.StatusUnprocessableEntity {
			return note, fmt.Errorf("notify %s: create branch: %w", note.Repo, err)
		}
	}

	_, _, err = n.gh.Repositories.UpdateFile(ctx, d.Owner, d.Repo, file,
		&github.RepositoryContentFileOptions{
			Message: github.Ptr(prTitle(updates)),
			Content: []byte(bumped),
			SHA:     content.SHA,
			Branch:  github.Ptr(note.Branch),
		})
	if err != nil {
		return note, fmt.Errorf("notify %s: update %s: %w", note.Repo, file, err)
	}

	pr, _, err := n.gh.PullRequests.Create(ctx, d.Owner, d.Repo, &github.NewPullRequest{
		Title: github.Ptr(prTitle(updates)),
		Head:  github.Ptr(note.Branch),
		Base:  github.Ptr(base),
		Body:  github.Ptr(prBody(updates)),
	})
	if err != nil {
		return note, fmt.Errorf("notify %s: create pull request: %w", note.Repo, err)
	}
	note.PRURL = pr.GetHTMLURL()
	return note, nil
}

func branchName(updates []Update) string {
	return "monoctl/bump-" + updates[0].NewVersion
}

func prTitle(updates []Update) string {
	if len(updates) == 1 {
		return fmt.Sprintf("chore: bump %s to %s", updates[0].Name, updates[0].NewVersion)
	}
	return fmt.Sprintf("chore: bump %d internal dependencies to %s", len(updates), updates[0].NewVersion)
}

func prBody(updates []Update) string {
	var b strings.Builder
	b.WriteString("Automated dependency bump after a monorepo publish.\n\n")
	for _, u := range updates {
		fmt.Fprintf(&b, "- `%s` -> `%s`\n", u.Name, u.NewVersion)
	}
	return b.String()
}

// bumpManifest rewrites the version pins for the updated modules. POM pins
// are matched as an <artifactId> immediately followed by its <version>;
// package.json pins as a dependency entry keyed by the package name.
func bumpManifest(manifest, file string, updates []Update) (string, bool) {
	out := manifest
	for _, u := range updates {
		var re *regexp.Regexp
		var replacement string
		if strings.HasSuffix(file, "package.json") {
			re = regexp.MustCompile(`("` + regexp.QuoteMeta(u.Name) + `"\s*:\s*")[^"]*(")`)
			replacement = "${1}" + u.NewVersion + "${2}"
		} else {
			re = regexp.MustCompile(`(<artifactId>\s*` + regexp.QuoteMeta(u.Name) + `\s*</artifactId>\s*<version>)[^<]*(</version>)`)
			replacement = "${1}" + u.NewVersion + "${2}"
		}
		out = re.ReplaceAllString(out, replacement)
	}
	return out, out != manifest
}
