package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// WorkspaceFile is the repo-level configuration file name.
const WorkspaceFile = "monoctl.yaml"

// Workspace is the repo-level configuration read from monoctl.yaml. All
// fields are optional; a repo without the file gets defaults.
type Workspace struct {
	// InternalGroups lists extra namespaces to treat as internal when
	// resolving dependency edges, in addition to the namespaces the
	// discovered modules publish under.
	InternalGroups []string `yaml:"internalGroups"`

	// Maven and Pnpm override the external build tool invocations.
	Maven ToolConfig `yaml:"maven"`
	Pnpm  ToolConfig `yaml:"pnpm"`

	// InfraPaths are repo-relative paths (or path prefixes) whose change
	// means "all modules are affected": the root descriptors, lockfiles,
	// shared CI config.
	InfraPaths []string `yaml:"infraPaths"`

	// Downstreams are repositories to notify after a publish.
	Downstreams []Downstream `yaml:"downstreams"`
}

// ToolConfig configures one external build tool invocation.
type ToolConfig struct {
	// Command is the executable name or path (default: "mvn" / "pnpm").
	Command string `yaml:"command"`

	// ExtraArgs are appended to every invocation (e.g. a -s settings.xml).
	ExtraArgs []string `yaml:"extraArgs"`
}

// Downstream identifies one repository that consumes this monorepo's
// published artifacts and should receive a version-bump pull request.
type Downstream struct {
	Owner string `yaml:"owner"`
	Repo  string `yaml:"repo"`

	// BaseBranch is the branch to target (default: the repo's default branch).
	BaseBranch string `yaml:"baseBranch"`

	// File is the manifest inside the downstream repo that pins the
	// dependency version (e.g. "pom.xml").
	File string `yaml:"file"`
}

// DefaultWorkspace returns the configuration used when monoctl.yaml is absent.
func DefaultWorkspace() *Workspace {
	return &Workspace{
		Maven: ToolConfig{Command: "mvn"},
		Pnpm:  ToolConfig{Command: "pnpm"},
		InfraPaths: []string{
			"pom.xml",
			"pnpm-workspace.yaml",
			"pnpm-lock.yaml",
			WorkspaceFile,
		},
	}
}

// LoadWorkspace reads monoctl.yaml from rootDir. A missing file is not an
// error; defaults are returned. A present-but-invalid file is an error.
func LoadWorkspace(rootDir string) (*Workspace, error) {
	ws := DefaultWorkspace()

	data, err := os.ReadFile(filepath.Join(rootDir, WorkspaceFile))
	if os.IsNotExist(err) {
		return ws, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, ws); err != nil {
		return nil, fmt.Errorf("parse %s: %w", WorkspaceFile, err)
	}

	if ws.Maven.Command == "" {
		ws.Maven.Command = "mvn"
	}
	if ws.Pnpm.Command == "" {
		ws.Pnpm.Command = "pnpm"
	}
	for i, d := range ws.Downstreams {
		if d.Owner == "" || d.Repo == "" {
			return nil, fmt.Errorf("%s: downstreams[%d] needs both owner and repo", WorkspaceFile, i)
		}
	}
	return ws, nil
}
