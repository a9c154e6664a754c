package graph

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ecruz165/maven-pnpm-monorepo/internal/registry"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// discoverRepo builds a registry from a synthetic Maven+pnpm repo where
// demo-module-b depends on demo-module-a (internal), demo-module-a on
// spring-boot (external), and @acme/web-app on @acme/ui-kit (internal).
func discoverRepo(t *testing.T) *registry.Registry {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "pom.xml"), `<project>
  <groupId>com.example</groupId><artifactId>demo-parent</artifactId>
  <version>1.0.0</version><packaging>pom</packaging>
  <modules><module>demo-module-a</module><module>demo-module-b</module></modules>
</project>`)
	writeFile(t, filepath.Join(root, "demo-module-a", "pom.xml"), `<project>
  <parent><groupId>com.example</groupId><artifactId>demo-parent</artifactId><version>1.0.0</version></parent>
  <artifactId>demo-module-a</artifactId>
  <dependencies>
    <dependency><groupId>org.springframework.boot</groupId><artifactId>spring-boot-starter-web</artifactId></dependency>
  </dependencies>
</project>`)
	writeFile(t, filepath.Join(root, "demo-module-b", "pom.xml"), `<project>
  <parent><groupId>com.example</groupId><artifactId>demo-parent</artifactId><version>1.0.0</version></parent>
  <artifactId>demo-module-b</artifactId>
  <dependencies>
    <dependency><groupId>com.example</groupId><artifactId>demo-module-a</artifactId></dependency>
  </dependencies>
</project>`)
	writeFile(t, filepath.Join(root, "pnpm-workspace.yaml"), "packages:\n  - \"packages/*\"\n")
	writeFile(t, filepath.Join(root, "packages", "ui-kit", "package.json"),
		`{"name":"@acme/ui-kit","version":"0.1.0"}`)
	writeFile(t, filepath.Join(root, "packages", "web-app", "package.json"),
		`{"name":"@acme/web-app","version":"0.1.0","dependencies":{"@acme/ui-kit":"workspace:*","react":"^18.0.0"}}`)

	reg, warnings, err := registry.Discover(root, nil)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("warnings: %v", warnings)
	}
	return reg
}

func TestBuild_FiltersToInternalEdges(t *testing.T) {
	reg := discoverRepo(t)
	g := Build(reg)

	if len(g) != 4 {
		t.Fatalf("graph has %d nodes, want 4 (every module is a node)", len(g))
	}
	if len(g["demo-module-a"]) != 0 {
		t.Errorf("demo-module-a deps = %v, want none (external dep dropped)", g["demo-module-a"])
	}
	if !g["demo-module-b"]["demo-module-a"] || len(g["demo-module-b"]) != 1 {
		t.Errorf("demo-module-b deps = %v, want {demo-module-a}", g["demo-module-b"])
	}
	if !g["@acme/web-app"]["@acme/ui-kit"] || len(g["@acme/web-app"]) != 1 {
		t.Errorf("@acme/web-app deps = %v, want {@acme/ui-kit}", g["@acme/web-app"])
	}
}

func TestBuild_UnscopedWorkspaceRangeIsInternal(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "pnpm-workspace.yaml"), "packages:\n  - \"packages/*\"\n")
	writeFile(t, filepath.Join(root, "packages", "utils", "package.json"),
		`{"name":"demo-utils","version":"0.1.0"}`)
	writeFile(t, filepath.Join(root, "packages", "site", "package.json"),
		`{"name":"demo-site","version":"0.1.0","dependencies":{"demo-utils":"workspace:*","lodash":"^4.0.0"}}`)

	reg, warnings, err := registry.Discover(root, nil)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("warnings: %v", warnings)
	}

	// Unscoped packages have no namespace, so the group filter can never
	// admit them; the workspace: range alone must carry the edge.
	g := Build(reg)
	if !g["demo-site"]["demo-utils"] || len(g["demo-site"]) != 1 {
		t.Errorf("demo-site deps = %v, want {demo-utils}", g["demo-site"])
	}
}

func TestBuild_Idempotent(t *testing.T) {
	reg := discoverRepo(t)
	if a, b := Build(reg), Build(reg); !reflect.DeepEqual(a, b) {
		t.Errorf("two builds differ:\n%v\n%v", a, b)
	}
}

func TestDependents(t *testing.T) {
	g := Graph{
		"a": {},
		"b": {"a": true},
		"c": {"a": true, "b": true},
	}
	rev := g.Dependents()
	if !reflect.DeepEqual(rev["a"], []string{"b", "c"}) {
		t.Errorf("dependents of a = %v, want [b c]", rev["a"])
	}
	if !reflect.DeepEqual(rev["b"], []string{"c"}) {
		t.Errorf("dependents of b = %v, want [c]", rev["b"])
	}
}

func mkGraph(edges map[string][]string) Graph {
	g := make(Graph)
	for name, deps := range edges {
		set := make(map[string]bool)
		for _, d := range deps {
			set[d] = true
		}
		g[name] = set
	}
	return g
}

func levelsEqual(got []Level, want [][]string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if !reflect.DeepEqual([]string(got[i]), want[i]) {
			return false
		}
	}
	return true
}

func TestComputeLevels_LinearChain(t *testing.T) {
	g := mkGraph(map[string][]string{"a": nil, "b": {"a"}, "c": {"b"}})
	levels, cycle, err := ComputeLevels([]string{"a", "b", "c"}, g)
	if err != nil || cycle != nil {
		t.Fatalf("err=%v cycle=%v", err, cycle)
	}
	if !levelsEqual(levels, [][]string{{"a"}, {"b"}, {"c"}}) {
		t.Errorf("levels = %v, want [[a] [b] [c]]", levels)
	}
}

func TestComputeLevels_Diamond(t *testing.T) {
	g := mkGraph(map[string][]string{"a": nil, "b": {"a"}, "c": {"a"}, "d": {"b", "c"}})
	levels, cycle, err := ComputeLevels([]string{"a", "b", "c", "d"}, g)
	if err != nil || cycle != nil {
		t.Fatalf("err=%v cycle=%v", err, cycle)
	}
	if !levelsEqual(levels, [][]string{{"a"}, {"b", "c"}, {"d"}}) {
		t.Errorf("levels = %v, want [[a] [b c] [d]]", levels)
	}
}

func TestComputeLevels_IsolatedModulesLandInLevelZero(t *testing.T) {
	g := mkGraph(map[string][]string{"a": nil, "b": nil, "c": {"a"}})
	levels, cycle, err := ComputeLevels([]string{"a", "b", "c"}, g)
	if err != nil || cycle != nil {
		t.Fatalf("err=%v cycle=%v", err, cycle)
	}
	if !levelsEqual(levels, [][]string{{"a", "b"}, {"c"}}) {
		t.Errorf("levels = %v, want [[a b] [c]]", levels)
	}
}

func TestComputeLevels_DepsOutsideRequestedSetAreSatisfied(t *testing.T) {
	g := mkGraph(map[string][]string{"a": nil, "b": {"a"}, "c": {"b"}})
	levels, cycle, err := ComputeLevels([]string{"b", "c"}, g)
	if err != nil || cycle != nil {
		t.Fatalf("err=%v cycle=%v", err, cycle)
	}
	if !levelsEqual(levels, [][]string{{"b"}, {"c"}}) {
		t.Errorf("levels = %v, want [[b] [c]]", levels)
	}
}

func TestComputeLevels_CycleDumpedIntoFinalLevel(t *testing.T) {
	g := mkGraph(map[string][]string{"a": {"b"}, "b": {"a"}, "c": nil})
	levels, cycle, err := ComputeLevels([]string{"a", "b", "c"}, g)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if cycle == nil {
		t.Fatal("expected a cycle warning")
	}
	if !reflect.DeepEqual(cycle.Members, []string{"a", "b"}) {
		t.Errorf("cycle members = %v, want [a b]", cycle.Members)
	}
	if !levelsEqual(levels, [][]string{{"c"}, {"a", "b"}}) {
		t.Errorf("levels = %v, want [[c] [a b]]", levels)
	}
}

func TestComputeLevels_CoversRequestedSetExactly(t *testing.T) {
	g := mkGraph(map[string][]string{
		"a": nil, "b": {"a"}, "c": {"a"}, "d": {"b", "c"}, "e": {"d"}, "f": nil,
	})
	requested := []string{"a", "b", "c", "d", "e", "f"}
	levels, _, err := ComputeLevels(requested, g)
	if err != nil {
		t.Fatal(err)
	}

	seen := make(map[string]int)
	for _, level := range levels {
		for _, name := range level {
			seen[name]++
		}
	}
	if len(seen) != len(requested) {
		t.Errorf("leveled %d modules, want %d", len(seen), len(requested))
	}
	for _, name := range requested {
		if seen[name] != 1 {
			t.Errorf("module %s appears %d times, want exactly once", name, seen[name])
		}
	}
}

func TestComputeLevels_DependencyOrderingInvariant(t *testing.T) {
	g := mkGraph(map[string][]string{
		"a": nil, "b": {"a"}, "c": {"a"}, "d": {"b", "c"}, "e": {"a", "d"},
	})
	levels, _, err := ComputeLevels([]string{"a", "b", "c", "d", "e"}, g)
	if err != nil {
		t.Fatal(err)
	}
	levelOf := make(map[string]int)
	for i, level := range levels {
		for _, name := range level {
			levelOf[name] = i
		}
	}
	for name, deps := range g {
		for dep := range deps {
			if levelOf[dep] >= levelOf[name] {
				t.Errorf("level(%s)=%d not before level(%s)=%d", dep, levelOf[dep], name, levelOf[name])
			}
		}
	}
}

func TestComputeLevels_UnknownModule(t *testing.T) {
	g := mkGraph(map[string][]string{"a": nil})
	_, _, err := ComputeLevels([]string{"a", "nope"}, g)
	var unknown *UnknownModulesError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownModulesError, got %v", err)
	}
	if !reflect.DeepEqual(unknown.Names, []string{"nope"}) {
		t.Errorf("unknown names = %v", unknown.Names)
	}
}
