// Package changes maps version-control diffs onto the modules they touch.
package changes

import (
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"github.com/ecruz165/maven-pnpm-monorepo/internal/config"
	"github.com/ecruz165/maven-pnpm-monorepo/internal/registry"
)

// GitRunner executes a git command in dir and returns its stdout. A seam so
// tests never need a real repository.
type GitRunner func(ctx context.Context, dir string, args ...string) (string, error)

func execGit(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", dir}, args...)...)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && len(exitErr.Stderr) > 0 {
			return "", fmt.Errorf("git %s: %s", strings.Join(args, " "), strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return string(out), nil
}

// Result is one change-detection comparison.
type Result struct {
	BaseRef string `json:"base_ref"`
	HeadRef string `json:"head_ref"`

	// All is set when a build-infrastructure file changed: every module is
	// considered affected and Modules lists the full registry.
	All    bool   `json:"all"`
	Reason string `json:"reason,omitempty"`

	// Modules is the ordered set of changed module names.
	Modules []string `json:"modules"`
}

// Detector resolves changed files between two refs to owning modules.
type Detector struct {
	reg *registry.Registry
	ws  *config.Workspace
	git GitRunner
}

func NewDetector(reg *registry.Registry, ws *config.Workspace) *Detector {
	return &Detector{reg: reg, ws: ws, git: execGit}
}

// ChangedModules diffs baseRef against headRef (HEAD when empty) and returns
// the affected modules. A change to any configured infra path flips the
// result to "all modules".
func (d *Detector) ChangedModules(ctx context.Context, baseRef, headRef string) (Result, error) {
	if baseRef == "" {
		return Result{}, fmt.Errorf("base reference required")
	}
	if headRef == "" {
		headRef = "HEAD"
	}

	out, err := d.git(ctx, d.reg.RootDir, "diff", "--name-only", baseRef+"..."+headRef)
	if err != nil {
		return Result{}, err
	}

	res := Result{BaseRef: baseRef, HeadRef: headRef}
	changed := make(map[string]bool)
	for _, path := range strings.Split(out, "\n") {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		if infra := d.matchInfra(path); infra != "" {
			res.All = true
			res.Reason = fmt.Sprintf("build infrastructure changed: %s", path)
			res.Modules = d.reg.Names()
			return res, nil
		}
		if name, ok := d.owningModule(path); ok {
			changed[name] = true
		}
	}

	// Keep registry discovery order for stable output.
	for _, name := range d.reg.Names() {
		if changed[name] {
			res.Modules = append(res.Modules, name)
		}
	}
	return res, nil
}

// matchInfra returns the matching infra path when the changed file is (or is
// under) one of the configured infrastructure paths.
func (d *Detector) matchInfra(path string) string {
	for _, infra := range d.ws.InfraPaths {
		infra = strings.TrimSuffix(strings.TrimSpace(infra), "/")
		if infra == "" {
			continue
		}
		if path == infra || strings.HasPrefix(path, infra+"/") {
			return infra
		}
	}
	return ""
}

// owningModule finds the module whose directory most specifically contains
// the changed path (longest matching prefix).
func (d *Detector) owningModule(path string) (string, bool) {
	best := ""
	bestLen := -1
	for _, m := range d.reg.Modules {
		dir := m.Path
		if dir == "" || dir == "." {
			continue
		}
		if (path == dir || strings.HasPrefix(path, dir+"/")) && len(dir) > bestLen {
			best = m.Name
			bestLen = len(dir)
		}
	}
	return best, best != ""
}

// WidenToDependents adds every module that (transitively) depends on a
// changed module, using the reverse adjacency from the dependency graph.
func WidenToDependents(changed []string, dependents map[string][]string) []string {
	seen := make(map[string]bool, len(changed))
	queue := append([]string(nil), changed...)
	for _, name := range changed {
		seen[name] = true
	}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		for _, dep := range dependents[name] {
			if !seen[dep] {
				seen[dep] = true
				queue = append(queue, dep)
			}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
