// Package descriptor parses the build descriptors the orchestrator reads:
// Maven pom.xml files, npm package.json files, and pnpm-workspace.yaml.
//
// Parsing is deliberately shallow. Only the fields needed for module
// identity, internal dependency edges, and version bookkeeping are decoded;
// everything else in a descriptor belongs to the external build tool.
package descriptor

import (
	"fmt"
	"strings"
)

// Coordinate identifies a published artifact by namespace and identifier.
// For Maven modules Group is the groupId and ID the artifactId. For npm
// packages Group is the scope including the leading "@" (empty for unscoped
// packages) and ID the unscoped name.
type Coordinate struct {
	Group string
	ID    string
}

func (c Coordinate) String() string {
	if c.Group == "" {
		return c.ID
	}
	if strings.HasPrefix(c.Group, "@") {
		return c.Group + "/" + c.ID
	}
	return c.Group + ":" + c.ID
}

// SplitPackageName splits an npm package name into its Coordinate form.
// "@acme/widgets" becomes {Group: "@acme", ID: "widgets"}; an unscoped name
// becomes {Group: "", ID: name}.
func SplitPackageName(name string) (Coordinate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Coordinate{}, fmt.Errorf("empty package name")
	}
	if !strings.HasPrefix(name, "@") {
		if strings.Contains(name, "/") {
			return Coordinate{}, fmt.Errorf("invalid package name %q", name)
		}
		return Coordinate{ID: name}, nil
	}
	scope, rest, ok := strings.Cut(name, "/")
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return Coordinate{}, fmt.Errorf("invalid scoped package name %q", name)
	}
	return Coordinate{Group: scope, ID: rest}, nil
}
