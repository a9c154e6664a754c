package descriptor

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// PnpmWorkspace is the parsed pnpm-workspace.yaml.
type PnpmWorkspace struct {
	// Packages holds the workspace package globs, e.g. "packages/*".
	// Negated globs (leading "!") are exclusions.
	Packages []string `yaml:"packages"`
}

// ParsePnpmWorkspace decodes pnpm-workspace.yaml content.
func ParsePnpmWorkspace(data []byte) (*PnpmWorkspace, error) {
	var ws PnpmWorkspace
	if err := yaml.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("parse pnpm-workspace.yaml: %w", err)
	}
	return &ws, nil
}

// LoadPnpmWorkspace reads and parses the workspace file at path.
func LoadPnpmWorkspace(path string) (*PnpmWorkspace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ws, err := ParsePnpmWorkspace(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ws, nil
}

// ExpandPackageDirs resolves the workspace globs against rootDir and returns
// the relative paths of directories that contain a package.json, sorted.
// Negated globs remove previously matched directories.
func (w *PnpmWorkspace) ExpandPackageDirs(rootDir string) ([]string, error) {
	matched := make(map[string]bool)
	for _, pattern := range w.Packages {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		negate := strings.HasPrefix(pattern, "!")
		if negate {
			pattern = strings.TrimPrefix(pattern, "!")
		}
		hits, err := filepath.Glob(filepath.Join(rootDir, filepath.FromSlash(pattern)))
		if err != nil {
			return nil, fmt.Errorf("workspace glob %q: %w", pattern, err)
		}
		for _, hit := range hits {
			info, err := os.Stat(hit)
			if err != nil || !info.IsDir() {
				continue
			}
			rel, err := filepath.Rel(rootDir, hit)
			if err != nil {
				continue
			}
			rel = filepath.ToSlash(rel)
			if negate {
				delete(matched, rel)
				continue
			}
			if _, err := os.Stat(filepath.Join(hit, "package.json")); err == nil {
				matched[rel] = true
			}
		}
	}

	dirs := make([]string, 0, len(matched))
	for dir := range matched {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs, nil
}
