package changes

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ecruz165/maven-pnpm-monorepo/internal/config"
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

func makeRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "pom.xml"), `<project>
  <groupId>com.example</groupId><artifactId>demo-parent</artifactId>
  <version>1.0.0</version><packaging>pom</packaging>
  <modules><module>demo-module-a</module><module>services/demo-module-b</module></modules></project>`)
	for _, rel := range []string{"demo-module-a", "services/demo-module-b"} {
		name := filepath.Base(rel)
		writeFile(t, filepath.Join(root, rel, "pom.xml"), fmt.Sprintf(`<project>
  <parent><groupId>com.example</groupId><artifactId>demo-parent</artifactId><version>1.0.0</version></parent>
  <artifactId>%s</artifactId></project>`, name))
	}
	reg, _, err := registry.Discover(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	return reg
}

func fakeGit(diff string) GitRunner {
	return func(ctx context.Context, dir string, args ...string) (string, error) {
		if len(args) == 0 || args[0] != "diff" {
			return "", fmt.Errorf("unexpected git args: %v", args)
		}
		return diff, nil
	}
}

func newDetector(t *testing.T, diff string) *Detector {
	t.Helper()
	d := NewDetector(makeRegistry(t), config.DefaultWorkspace())
	d.git = fakeGit(diff)
	return d
}

func TestChangedModules_MapsPathsToModules(t *testing.T) {
	d := newDetector(t, strings.Join([]string{
		"demo-module-a/src/main/java/App.java",
		"services/demo-module-b/pom.xml",
		"docs/README.md",
	}, "\n"))

	res, err := d.ChangedModules(context.Background(), "origin/main", "")
	if err != nil {
		t.Fatal(err)
	}
	if res.All {
		t.Error("All set without infra change")
	}
	want := []string{"demo-module-a", "demo-module-b"}
	if !reflect.DeepEqual(res.Modules, want) {
		t.Errorf("Modules = %v, want %v", res.Modules, want)
	}
	if res.HeadRef != "HEAD" {
		t.Errorf("HeadRef = %q, want HEAD default", res.HeadRef)
	}
}

func TestChangedModules_InfraChangeMeansAll(t *testing.T) {
	d := newDetector(t, "pnpm-lock.yaml\n")

	res, err := d.ChangedModules(context.Background(), "origin/main", "HEAD")
	if err != nil {
		t.Fatal(err)
	}
	if !res.All {
		t.Fatal("expected All for lockfile change")
	}
	if len(res.Modules) != 2 {
		t.Errorf("Modules = %v, want full registry", res.Modules)
	}
	if !strings.Contains(res.Reason, "pnpm-lock.yaml") {
		t.Errorf("Reason = %q", res.Reason)
	}
}

func TestChangedModules_RootPomIsInfraButModulePomIsNot(t *testing.T) {
	d := newDetector(t, "demo-module-a/pom.xml\n")
	res, err := d.ChangedModules(context.Background(), "v1.0.0", "")
	if err != nil {
		t.Fatal(err)
	}
	if res.All {
		t.Error("a module-level pom change must not flip to All")
	}
	if !reflect.DeepEqual(res.Modules, []string{"demo-module-a"}) {
		t.Errorf("Modules = %v", res.Modules)
	}
}

func TestChangedModules_RequiresBaseRef(t *testing.T) {
	d := newDetector(t, "")
	if _, err := d.ChangedModules(context.Background(), "", ""); err == nil {
		t.Error("expected error for empty base ref")
	}
}

func TestWidenToDependents(t *testing.T) {
	dependents := map[string][]string{
		"a": {"b"},
		"b": {"c"},
	}
	got := WidenToDependents([]string{"a"}, dependents)
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("widened = %v, want [a b c]", got)
	}
}

func TestCacheRoundTrip(t *testing.T) {
	root := t.TempDir()
	res := Result{BaseRef: "origin/main", HeadRef: "HEAD", Modules: []string{"demo-module-a"}}
	if err := StoreCached(root, res); err != nil {
		t.Fatal(err)
	}
	got, ok := LoadCached(root)
	if !ok {
		t.Fatal("cache not found after store")
	}
	if !reflect.DeepEqual(got, res) {
		t.Errorf("got %+v, want %+v", got, res)
	}

	if _, ok := LoadCached(t.TempDir()); ok {
		t.Error("cache reported present in empty dir")
	}
}
