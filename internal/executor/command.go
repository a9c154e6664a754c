package executor

import (
	"path/filepath"
	"strings"

	"github.com/ecruz165/maven-pnpm-monorepo/internal/config"
	"github.com/ecruz165/maven-pnpm-monorepo/internal/registry"
)

// Invocation is one fully-assembled build tool command line.
type Invocation struct {
	// Label names the invocation for event attribution: a module name, or a
	// synthetic label for batch and root-install invocations.
	Label   string
	Dir     string
	Command string
	Args    []string
}

func (inv Invocation) String() string {
	return inv.Command + " " + strings.Join(inv.Args, " ")
}

// mavenGoal maps the CLI goal enum onto Maven lifecycle phases.
func mavenGoal(goal string) string {
	if goal == "publish" {
		return "deploy"
	}
	return goal
}

// pnpmScript maps the CLI goal enum onto package scripts. compile, package
// and install all resolve to the build script: pnpm has no separate notion
// of those phases.
func pnpmScript(goal string) string {
	switch goal {
	case "test":
		return "test"
	default:
		return "build"
	}
}

// rootInstallInvocation installs the root aggregator POM non-recursively.
// It runs once, synchronously, before level 0 so concurrently-starting
// module builds never race to materialize the shared parent artifact.
func rootInstallInvocation(ws *config.Workspace, rootDir string, offline bool) Invocation {
	args := []string{"-B", "-N"}
	if offline {
		args = append(args, "-o")
	}
	args = append(args, ws.Maven.ExtraArgs...)
	args = append(args, "install")
	return Invocation{
		Label:   "root-install",
		Dir:     rootDir,
		Command: ws.Maven.Command,
		Args:    args,
	}
}

// mavenInvocation assembles one mvn command covering the given modules.
// alsoMake (-am) is legal ONLY for a single standalone module: combining it
// with a multi-module -pl selection makes Maven build shared dependencies
// once per selected module, racing concurrent siblings on the local
// repository.
func mavenInvocation(ws *config.Workspace, rootDir string, modules []registry.Module, opts Options, alsoMake bool) Invocation {
	selectors := make([]string, len(modules))
	for i, m := range modules {
		selectors[i] = ":" + m.Name
	}

	args := []string{"-B", "-pl", strings.Join(selectors, ",")}
	if alsoMake && len(modules) == 1 {
		args = append(args, "-am")
	}
	if opts.SkipTests {
		args = append(args, "-DskipTests")
	}
	if opts.Offline {
		args = append(args, "-o")
	}
	args = append(args, ws.Maven.ExtraArgs...)
	args = append(args, mavenGoal(opts.Goal))

	label := modules[0].Name
	if len(modules) > 1 {
		label = "maven-batch"
	}
	return Invocation{
		Label:   label,
		Dir:     rootDir,
		Command: ws.Maven.Command,
		Args:    args,
	}
}

// pnpmInvocation assembles one pnpm command covering the given packages.
// A single package runs inside its own directory; a batch runs recursively
// from the workspace root with one --filter per member.
func pnpmInvocation(ws *config.Workspace, rootDir string, modules []registry.Module, opts Options) Invocation {
	var args []string
	dir := rootDir
	label := modules[0].Name

	if len(modules) == 1 {
		dir = filepath.Join(rootDir, filepath.FromSlash(modules[0].Path))
	} else {
		label = "pnpm-batch"
		args = append(args, "-r")
		for _, m := range modules {
			args = append(args, "--filter", m.Name)
		}
	}

	if opts.Offline {
		args = append(args, "--offline")
	}
	args = append(args, ws.Pnpm.ExtraArgs...)

	if opts.Goal == "publish" {
		args = append(args, "publish", "--no-git-checks")
	} else {
		args = append(args, "run", pnpmScript(opts.Goal))
	}

	return Invocation{
		Label:   label,
		Dir:     dir,
		Command: ws.Pnpm.Command,
		Args:    args,
	}
}
