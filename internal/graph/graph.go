// Package graph derives the internal dependency graph between discovered
// modules and decomposes it into build levels.
package graph

import (
	"sort"

	"github.com/ecruz165/maven-pnpm-monorepo/internal/descriptor"
	"github.com/ecruz165/maven-pnpm-monorepo/internal/registry"
)

// Graph maps a module name to the set of module names it depends on.
// Every discovered module is present as a key, even with no dependencies,
// so the scheduler can place isolated modules in level 0.
type Graph map[string]map[string]bool

// Build filters each module's declared dependencies down to internal edges:
// the dependency's namespace must be an internal publishing namespace and its
// identifier must resolve to another known module. External and unresolvable
// dependencies are dropped; they are the build tool's problem, not ours.
func Build(reg *registry.Registry) Graph {
	g := make(Graph, len(reg.Modules))
	for _, m := range reg.Modules {
		deps := make(map[string]bool)
		for _, coord := range m.DeclaredDependencies {
			name, ok := resolve(reg, coord)
			if !ok || name == m.Name {
				continue
			}
			deps[name] = true
		}
		// workspace: ranges are internal by construction; no namespace check.
		for _, name := range m.WorkspaceDependencies {
			if dep, ok := reg.Lookup(name); ok && dep.Name != m.Name {
				deps[dep.Name] = true
			}
		}
		g[m.Name] = deps
	}
	return g
}

// resolve maps a dependency coordinate to a registry module name. Maven
// modules are keyed by artifactId, pnpm packages by their full scoped name.
func resolve(reg *registry.Registry, coord descriptor.Coordinate) (string, bool) {
	if !reg.InternalGroup(coord.Group) {
		return "", false
	}
	for _, candidate := range []string{coord.ID, coord.String()} {
		if m, ok := reg.Lookup(candidate); ok && m.Group == coord.Group {
			return m.Name, true
		}
	}
	return "", false
}

// Dependents returns the reverse adjacency of g: module name to the set of
// modules that depend on it. Used by change detection to widen a changed set
// to its downstream impact.
func (g Graph) Dependents() map[string][]string {
	rev := make(map[string][]string, len(g))
	for name, deps := range g {
		for dep := range deps {
			rev[dep] = append(rev[dep], name)
		}
	}
	for _, names := range rev {
		sort.Strings(names)
	}
	return rev
}
