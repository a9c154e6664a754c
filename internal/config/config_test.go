package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestValidate_Defaults(t *testing.T) {
	cfg := New()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Build.Goal != "package" {
		t.Errorf("Goal = %q, want package", cfg.Build.Goal)
	}
	if cfg.Runtime.Concurrency != 4 {
		t.Errorf("Concurrency = %d, want 4", cfg.Runtime.Concurrency)
	}
}

func TestValidate_SplitsCommaLists(t *testing.T) {
	cfg := New()
	cfg.Selection.Modules = []string{"demo-module-a, demo-module-b", "@acme/ui-kit"}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	want := []string{"demo-module-a", "demo-module-b", "@acme/ui-kit"}
	if !reflect.DeepEqual(cfg.Selection.Modules, want) {
		t.Errorf("Modules = %v, want %v", cfg.Selection.Modules, want)
	}
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad goal", func(c *Config) { c.Build.Goal = "deploy-to-mars" }, "--goal"},
		{"bad emit", func(c *Config) { c.Output.Emit = []string{"xml"} }, "--emit"},
		{"zero concurrency", func(c *Config) { c.Runtime.Concurrency = 0 }, "--concurrency"},
		{"zero timeout", func(c *Config) { c.Runtime.ModuleTimeout = 0 }, "--timeout"},
		{"out without inferable format", func(c *Config) { c.Output.Out = "results.txt" }, "--out-format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error mentioning %s", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_InfersOutFormat(t *testing.T) {
	cfg := New()
	cfg.Output.Out = "results.ndjson"
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.Output.OutFormat != "ndjson" {
		t.Errorf("OutFormat = %q, want ndjson", cfg.Output.OutFormat)
	}
}

func TestValidate_GoalCaseInsensitive(t *testing.T) {
	cfg := New()
	cfg.Build.Goal = " Install "
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.Build.Goal != "install" {
		t.Errorf("Goal = %q, want install", cfg.Build.Goal)
	}
}

func TestLoadWorkspace_MissingFileGivesDefaults(t *testing.T) {
	ws, err := LoadWorkspace(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if ws.Maven.Command != "mvn" || ws.Pnpm.Command != "pnpm" {
		t.Errorf("tool defaults = %q/%q", ws.Maven.Command, ws.Pnpm.Command)
	}
	if len(ws.InfraPaths) == 0 {
		t.Error("default InfraPaths empty")
	}
}

func TestLoadWorkspace_ParsesFile(t *testing.T) {
	root := t.TempDir()
	content := `
internalGroups:
  - com.example.legacy
maven:
  command: ./mvnw
  extraArgs: ["-s", ".mvn/settings.xml"]
infraPaths:
  - pom.xml
downstreams:
  - owner: acme
    repo: consumer-service
    baseBranch: main
    file: pom.xml
`
	if err := os.WriteFile(filepath.Join(root, WorkspaceFile), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	ws, err := LoadWorkspace(root)
	if err != nil {
		t.Fatal(err)
	}
	if ws.Maven.Command != "./mvnw" {
		t.Errorf("Maven.Command = %q", ws.Maven.Command)
	}
	if ws.Pnpm.Command != "pnpm" {
		t.Errorf("Pnpm.Command = %q, want default pnpm", ws.Pnpm.Command)
	}
	if len(ws.Downstreams) != 1 || ws.Downstreams[0].Repo != "consumer-service" {
		t.Errorf("Downstreams = %+v", ws.Downstreams)
	}
	if !reflect.DeepEqual(ws.InternalGroups, []string{"com.example.legacy"}) {
		t.Errorf("InternalGroups = %v", ws.InternalGroups)
	}
}

func TestLoadWorkspace_InvalidDownstream(t *testing.T) {
	root := t.TempDir()
	content := "downstreams:\n  - owner: acme\n"
	if err := os.WriteFile(filepath.Join(root, WorkspaceFile), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadWorkspace(root); err == nil {
		t.Error("expected error for downstream missing repo")
	}
}

func TestValidate_TimeoutDefault(t *testing.T) {
	cfg := New()
	if cfg.Runtime.ModuleTimeout != 20*time.Minute {
		t.Errorf("ModuleTimeout default = %v, want 20m", cfg.Runtime.ModuleTimeout)
	}
}
