// Package version performs selective version updates across module
// descriptors. It is plain text substitution on the descriptor files: the
// external build tools remain the source of truth for descriptor semantics.
package version

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ecruz165/maven-pnpm-monorepo/internal/registry"
)

var packageJSONVersionRe = regexp.MustCompile(`("version"\s*:\s*")[^"]*(")`)

// updatePomVersions replaces every <version>old</version> occurrence. In a
// monorepo the module's own version, its parent reference, and internal
// dependency pins all carry the same value, so a full sweep keeps them
// consistent in one pass.
func updatePomVersions(data []byte, oldVersion, newVersion string) ([]byte, bool) {
	if oldVersion == "" || oldVersion == newVersion {
		return data, false
	}
	old := "<version>" + oldVersion + "</version>"
	replacement := "<version>" + newVersion + "</version>"
	if !strings.Contains(string(data), old) {
		return data, false
	}
	return []byte(strings.ReplaceAll(string(data), old, replacement)), true
}

// updatePackageJSONVersion rewrites the top-level "version" field.
func updatePackageJSONVersion(data []byte, newVersion string) ([]byte, bool) {
	loc := packageJSONVersionRe.FindSubmatchIndex(data)
	if loc == nil {
		return data, false
	}
	out := packageJSONVersionRe.ReplaceAll(data, []byte("${1}"+newVersion+"${2}"))
	return out, string(out) != string(data)
}

// Propagate sets newVersion in the descriptors of the selected modules and,
// when the repo has a root aggregator POM, in the root descriptor as well.
// It returns the repo-relative paths of the files actually rewritten.
func Propagate(reg *registry.Registry, modules []string, newVersion string) ([]string, error) {
	if strings.TrimSpace(newVersion) == "" {
		return nil, fmt.Errorf("version required")
	}

	var updated []string
	touch := func(rel string, rewrite func([]byte) ([]byte, bool)) error {
		path := filepath.Join(reg.RootDir, filepath.FromSlash(rel))
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		out, changed := rewrite(data)
		if !changed {
			return nil
		}
		if err := os.WriteFile(path, out, 0o644); err != nil {
			return err
		}
		updated = append(updated, rel)
		return nil
	}

	selectsMaven := false
	for _, name := range modules {
		m, ok := reg.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown module: %s", name)
		}
		switch m.Tool {
		case registry.ToolPnpm:
			err := touch(m.Path+"/package.json", func(data []byte) ([]byte, bool) {
				return updatePackageJSONVersion(data, newVersion)
			})
			if err != nil {
				return nil, fmt.Errorf("update %s: %w", m.Name, err)
			}
		default:
			selectsMaven = true
			oldVersion := m.Version
			err := touch(m.Path+"/pom.xml", func(data []byte) ([]byte, bool) {
				return updatePomVersions(data, oldVersion, newVersion)
			})
			if err != nil {
				return nil, fmt.Errorf("update %s: %w", m.Name, err)
			}
		}
	}

	// The parent POM anchors the Maven modules' inherited version; keep it in
	// step whenever any Maven module moved.
	if selectsMaven && reg.RootPom != nil {
		oldVersion := reg.RootPom.Version
		err := touch("pom.xml", func(data []byte) ([]byte, bool) {
			return updatePomVersions(data, oldVersion, newVersion)
		})
		if err != nil {
			return nil, fmt.Errorf("update root pom: %w", err)
		}
	}

	return updated, nil
}

// Inconsistencies reports modules whose descriptor version differs from want.
func Inconsistencies(reg *registry.Registry, want string) []string {
	var out []string
	for _, m := range reg.Modules {
		if m.Version != "" && m.Version != want {
			out = append(out, fmt.Sprintf("%s: %s", m.Name, m.Version))
		}
	}
	return out
}
