package descriptor

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// PackageJSON is the subset of an npm package manifest the orchestrator reads.
type PackageJSON struct {
	Name    string
	Version string
	Private bool

	// Dependencies merges dependencies and devDependencies, as both produce
	// a build-order edge when they point at a workspace sibling. Values are
	// the declared version ranges (including "workspace:" protocol ranges).
	Dependencies map[string]string
}

type packageJSONRaw struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Private         bool              `json:"private"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// ParsePackageJSON decodes a package.json manifest from a byte slice.
func ParsePackageJSON(data []byte) (*PackageJSON, error) {
	var raw packageJSONRaw
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse package.json: %w", err)
	}
	if strings.TrimSpace(raw.Name) == "" {
		return nil, fmt.Errorf("parse package.json: missing \"name\"")
	}

	pkg := &PackageJSON{
		Name:         strings.TrimSpace(raw.Name),
		Version:      strings.TrimSpace(raw.Version),
		Private:      raw.Private,
		Dependencies: make(map[string]string, len(raw.Dependencies)+len(raw.DevDependencies)),
	}
	for name, rng := range raw.Dependencies {
		pkg.Dependencies[name] = rng
	}
	for name, rng := range raw.DevDependencies {
		if _, ok := pkg.Dependencies[name]; !ok {
			pkg.Dependencies[name] = rng
		}
	}
	return pkg, nil
}

// LoadPackageJSON reads and parses the manifest at path.
func LoadPackageJSON(path string) (*PackageJSON, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	pkg, err := ParsePackageJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pkg, nil
}

// DependencyNames returns the declared dependency names in sorted order.
func (p *PackageJSON) DependencyNames() []string {
	names := make([]string, 0, len(p.Dependencies))
	for name := range p.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Coordinate returns the package's Coordinate form of its name.
func (p *PackageJSON) Coordinate() (Coordinate, error) {
	return SplitPackageName(p.Name)
}
