// Package registry discovers the buildable modules of the monorepo from their
// build descriptors: Maven modules declared by the root aggregator POM and
// pnpm packages declared by pnpm-workspace.yaml.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ecruz165/maven-pnpm-monorepo/internal/descriptor"
)

// Tool names the external build tool responsible for a module.
type Tool string

const (
	ToolMaven Tool = "maven"
	ToolPnpm  Tool = "pnpm"
)

// Module is one buildable unit. Immutable after discovery.
type Module struct {
	// Name uniquely identifies the module: the Maven artifactId or the full
	// npm package name (including scope).
	Name string

	// Path is the module directory relative to the repository root.
	Path string

	// Group is the namespace the module publishes under: the Maven groupId
	// or the npm scope (empty for unscoped packages).
	Group string

	Version string
	Tool    Tool

	// DeclaredDependencies holds every dependency coordinate the descriptor
	// declares, internal and external alike. The graph builder filters these
	// down to internal edges.
	DeclaredDependencies []descriptor.Coordinate

	// WorkspaceDependencies lists npm dependencies declared with the
	// workspace: protocol. The protocol pins the dependency to this
	// workspace, so these are internal even when the package is unscoped.
	WorkspaceDependencies []string
}

// Warning is a non-fatal discovery problem tied to one module path.
type Warning struct {
	Path    string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Path, w.Message)
}

// Error is a fatal discovery failure: the root descriptor is missing or a
// declared module path has no descriptor at all.
type Error struct {
	Path   string
	Reason string
}

func (e *Error) Error() string {
	if e.Path == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

// Registry is the discovered module set for one run.
type Registry struct {
	RootDir string

	// Modules in discovery order: Maven modules in root-POM order first,
	// then pnpm packages in sorted path order.
	Modules []Module

	// RootPom is the parsed root aggregator POM, when the repo has one.
	RootPom *descriptor.Pom

	byName map[string]int
	groups map[string]bool
}

const (
	rootPomFile       = "pom.xml"
	pnpmWorkspaceFile = "pnpm-workspace.yaml"
)

// Discover scans rootDir for buildable modules. It returns the registry, any
// per-module warnings (unparseable descriptors, duplicate names), and a fatal
// error only when discovery cannot proceed at all.
//
// extraGroups lists namespaces to treat as internal in addition to the groups
// the discovered modules publish under (from workspace configuration).
func Discover(rootDir string, extraGroups []string) (*Registry, []Warning, error) {
	reg := &Registry{
		RootDir: rootDir,
		byName:  make(map[string]int),
		groups:  make(map[string]bool),
	}
	var warnings []Warning

	rootPomPath := filepath.Join(rootDir, rootPomFile)
	wsPath := filepath.Join(rootDir, pnpmWorkspaceFile)
	hasPom := fileExists(rootPomPath)
	hasWorkspace := fileExists(wsPath)
	if !hasPom && !hasWorkspace {
		return nil, nil, &Error{Path: rootDir, Reason: "no root descriptor found (pom.xml or pnpm-workspace.yaml)"}
	}

	if hasPom {
		ws, err := reg.discoverMaven(rootPomPath)
		if err != nil {
			return nil, nil, err
		}
		warnings = append(warnings, ws...)
	}
	if hasWorkspace {
		ws, err := reg.discoverPnpm(wsPath)
		if err != nil {
			return nil, nil, err
		}
		warnings = append(warnings, ws...)
	}

	for _, g := range extraGroups {
		if g = strings.TrimSpace(g); g != "" {
			reg.groups[g] = true
		}
	}
	return reg, warnings, nil
}

func (r *Registry) discoverMaven(rootPomPath string) ([]Warning, error) {
	rootPom, err := descriptor.LoadPom(rootPomPath)
	if err != nil {
		return nil, &Error{Path: rootPomPath, Reason: err.Error()}
	}
	r.RootPom = rootPom

	var warnings []Warning
	for _, rel := range rootPom.Modules {
		modDir := filepath.Join(r.RootDir, filepath.FromSlash(rel))
		pomPath := filepath.Join(modDir, rootPomFile)
		if !fileExists(pomPath) {
			return nil, &Error{Path: pomPath, Reason: fmt.Sprintf("module %q declared in root pom has no descriptor", rel)}
		}
		pom, err := descriptor.LoadPom(pomPath)
		if err != nil {
			warnings = append(warnings, Warning{Path: rel, Message: fmt.Sprintf("skipping module: %v", err)})
			continue
		}
		m := Module{
			Name:                 pom.ArtifactID,
			Path:                 filepath.ToSlash(rel),
			Group:                pom.GroupID,
			Version:              pom.Version,
			Tool:                 ToolMaven,
			DeclaredDependencies: pom.Dependencies,
		}
		if w, ok := r.add(m); !ok {
			warnings = append(warnings, w)
		}
	}
	return warnings, nil
}

func (r *Registry) discoverPnpm(wsPath string) ([]Warning, error) {
	ws, err := descriptor.LoadPnpmWorkspace(wsPath)
	if err != nil {
		return nil, &Error{Path: wsPath, Reason: err.Error()}
	}
	dirs, err := ws.ExpandPackageDirs(r.RootDir)
	if err != nil {
		return nil, &Error{Path: wsPath, Reason: err.Error()}
	}

	var warnings []Warning
	for _, rel := range dirs {
		pkgPath := filepath.Join(r.RootDir, filepath.FromSlash(rel), "package.json")
		pkg, err := descriptor.LoadPackageJSON(pkgPath)
		if err != nil {
			warnings = append(warnings, Warning{Path: rel, Message: fmt.Sprintf("skipping package: %v", err)})
			continue
		}
		coord, err := pkg.Coordinate()
		if err != nil {
			warnings = append(warnings, Warning{Path: rel, Message: fmt.Sprintf("skipping package: %v", err)})
			continue
		}
		deps := make([]descriptor.Coordinate, 0, len(pkg.Dependencies))
		var wsDeps []string
		for _, name := range pkg.DependencyNames() {
			if strings.HasPrefix(pkg.Dependencies[name], "workspace:") {
				wsDeps = append(wsDeps, name)
				continue
			}
			c, err := descriptor.SplitPackageName(name)
			if err != nil {
				continue
			}
			deps = append(deps, c)
		}
		m := Module{
			Name:                  pkg.Name,
			Path:                  rel,
			Group:                 coord.Group,
			Version:               pkg.Version,
			Tool:                  ToolPnpm,
			DeclaredDependencies:  deps,
			WorkspaceDependencies: wsDeps,
		}
		if w, ok := r.add(m); !ok {
			warnings = append(warnings, w)
		}
	}
	return warnings, nil
}

func (r *Registry) add(m Module) (Warning, bool) {
	if i, dup := r.byName[m.Name]; dup {
		return Warning{
			Path:    m.Path,
			Message: fmt.Sprintf("duplicate module name %q (already discovered at %s); keeping the first", m.Name, r.Modules[i].Path),
		}, false
	}
	r.Modules = append(r.Modules, m)
	r.byName[m.Name] = len(r.Modules) - 1
	if m.Group != "" {
		r.groups[m.Group] = true
	}
	return Warning{}, true
}

// Lookup returns the module with the given name.
func (r *Registry) Lookup(name string) (Module, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Module{}, false
	}
	return r.Modules[i], true
}

// Names returns all module names in discovery order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.Modules))
	for i, m := range r.Modules {
		names[i] = m.Name
	}
	return names
}

// Groups returns every internal namespace in sorted order.
func (r *Registry) Groups() []string {
	out := make([]string, 0, len(r.groups))
	for g := range r.groups {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

// InternalGroup reports whether the given namespace publishes internally.
func (r *Registry) InternalGroup(group string) bool {
	return r.groups[group]
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
