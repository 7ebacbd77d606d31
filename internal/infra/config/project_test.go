// Where: fnctl/internal/infra/config/project_test.go
// What: Tests for project config and root resolution.
// Why: Ensure config round-trips and aliases resolve predictably.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/poruru/edge-serverless-box/fnctl/internal/meta"
)

func TestProjectConfigRoundTrip(t *testing.T) {
	t.Setenv("ENV_PREFIX", "")
	path := filepath.Join(t.TempDir(), meta.HomeDir, meta.ConfigFileName)
	cfg := DefaultProjectConfig()
	cfg.Default = "staging"
	cfg.Projects = map[string]string{
		"staging": "demo-staging",
		"prod":    "demo-prod-123",
	}
	cfg.Functions.Runtime = "nodejs20"
	cfg.Discovery = DiscoveryConfig{
		Mode:    DiscoveryModeDocker,
		Image:   "node:20-alpine",
		Command: []string{"node", "discover.js"},
		Timeout: "45s",
	}
	cfg.ConfigStore = ConfigStoreConfig{
		Kind:      StoreKindS3,
		Bucket:    "runtime-config",
		Prefix:    "projects/",
		Region:    "ap-northeast-1",
		CacheSize: 8,
	}

	if err := SaveProjectConfig(path, cfg); err != nil {
		t.Fatalf("save project config: %v", err)
	}
	loaded, err := LoadProjectConfig(path)
	if err != nil {
		t.Fatalf("load project config: %v", err)
	}
	if !reflect.DeepEqual(cfg, loaded) {
		t.Fatalf("config mismatch: expected %#v, got %#v", cfg, loaded)
	}
}

func TestLoadProjectConfigMissingFileUsesDefaults(t *testing.T) {
	loaded, err := LoadProjectConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load project config: %v", err)
	}
	if loaded.Version != 1 || loaded.Functions.Source != meta.DefaultSource {
		t.Fatalf("unexpected defaults: %#v", loaded)
	}
	if loaded.Discovery.Mode != DiscoveryModeProcess || loaded.ConfigStore.Kind != StoreKindFile {
		t.Fatalf("unexpected defaults: %#v", loaded)
	}
}

func TestLoadProjectConfigAppliesEnvOverrides(t *testing.T) {
	t.Setenv("ENV_PREFIX", "")
	t.Setenv("FNCTL_DISCOVERY_MODE", DiscoveryModeDocker)
	t.Setenv("FNCTL_CONFIG_STORE", StoreKindDynamoDB)
	t.Setenv("FNCTL_RUNTIME", "python312")

	loaded, err := LoadProjectConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load project config: %v", err)
	}
	if loaded.Discovery.Mode != DiscoveryModeDocker {
		t.Fatalf("discovery mode = %q", loaded.Discovery.Mode)
	}
	if loaded.ConfigStore.Kind != StoreKindDynamoDB {
		t.Fatalf("config store = %q", loaded.ConfigStore.Kind)
	}
	if loaded.Functions.Runtime != "python312" {
		t.Fatalf("runtime = %q", loaded.Functions.Runtime)
	}
}

func TestLoadProjectConfigRejectsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("projects: [oops"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadProjectConfig(path); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestProjectConfigPathUsesProjectRoot(t *testing.T) {
	projectRoot := t.TempDir()
	got, err := ProjectConfigPath(projectRoot)
	if err != nil {
		t.Fatalf("project config path: %v", err)
	}
	want := filepath.Join(projectRoot, meta.HomeDir, meta.ConfigFileName)
	if got != want {
		t.Fatalf("unexpected config path: %s", got)
	}
	if _, err := ProjectConfigPath("  "); err == nil {
		t.Fatal("expected error for empty root")
	}
}

func TestResolve(t *testing.T) {
	cfg := DefaultProjectConfig()
	cfg.Default = "prod"
	cfg.Projects = map[string]string{"prod": "demo-prod-123", "dev": "demo-dev"}

	cases := []struct {
		name string
		in   string
		want Target
	}{
		{name: "default alias", in: "", want: Target{Alias: "prod", ProjectID: "demo-prod-123"}},
		{name: "alias", in: "dev", want: Target{Alias: "dev", ProjectID: "demo-dev"}},
		{name: "project id maps back to alias", in: "demo-dev", want: Target{Alias: "dev", ProjectID: "demo-dev"}},
		{name: "raw project id", in: "other-project", want: Target{ProjectID: "other-project"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := cfg.Resolve(tc.in)
			if err != nil {
				t.Fatalf("Resolve(%q) error = %v", tc.in, err)
			}
			if got != tc.want {
				t.Fatalf("Resolve(%q) = %#v, want %#v", tc.in, got, tc.want)
			}
		})
	}

	if _, err := cfg.Resolve("bad/name"); !errors.Is(err, ErrAliasNotFound) {
		t.Fatalf("expected ErrAliasNotFound, got %v", err)
	}
	if _, err := DefaultProjectConfig().Resolve(""); err == nil {
		t.Fatal("expected error without default alias")
	}
}

func TestTargetsSortedByAlias(t *testing.T) {
	cfg := DefaultProjectConfig()
	cfg.Projects = map[string]string{"b": "proj-b", "a": "proj-a"}
	got := cfg.Targets()
	want := []Target{{Alias: "a", ProjectID: "proj-a"}, {Alias: "b", ProjectID: "proj-b"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Targets() = %#v, want %#v", got, want)
	}
	if got[0].Name() != "a" || (Target{ProjectID: "x"}).Name() != "x" {
		t.Fatal("Name() mismatch")
	}
}

func TestDiscoveryTimeout(t *testing.T) {
	cases := map[string]time.Duration{
		"":    defaultDiscoveryTimeout,
		"10":  10 * time.Second,
		"0":   0,
		"2m":  2 * time.Minute,
		" 5 ": 5 * time.Second,
	}
	for raw, want := range cases {
		cfg := DefaultProjectConfig()
		cfg.Discovery.Timeout = raw
		got, err := cfg.DiscoveryTimeout()
		if err != nil {
			t.Fatalf("DiscoveryTimeout(%q) error = %v", raw, err)
		}
		if got != want {
			t.Fatalf("DiscoveryTimeout(%q) = %v, want %v", raw, got, want)
		}
	}
	cfg := DefaultProjectConfig()
	cfg.Discovery.Timeout = "soon"
	if _, err := cfg.DiscoveryTimeout(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSourceDir(t *testing.T) {
	cfg := DefaultProjectConfig()
	if got := cfg.SourceDir("/work/app"); got != filepath.Join("/work/app", meta.DefaultSource) {
		t.Fatalf("SourceDir() = %q", got)
	}
	cfg.Functions.Source = "/abs/src"
	if got := cfg.SourceDir("/work/app"); got != "/abs/src" {
		t.Fatalf("SourceDir() = %q", got)
	}
}

func TestResolveProjectRootSearchesUpward(t *testing.T) {
	t.Setenv("ENV_PREFIX", "")
	t.Setenv("FNCTL_PROJECT_ROOT", "")
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "firebase.json"), []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "functions", "src")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := ResolveProjectRoot(nested)
	if err != nil {
		t.Fatalf("resolve project root: %v", err)
	}
	if got != root {
		t.Fatalf("expected %q, got %q", root, got)
	}
}

func TestResolveProjectRootUsesEnvFirst(t *testing.T) {
	t.Setenv("ENV_PREFIX", "")
	envRoot := t.TempDir()
	if err := os.MkdirAll(filepath.Join(envRoot, meta.HomeDir), 0o755); err != nil {
		t.Fatal(err)
	}
	startRoot := t.TempDir()
	if err := os.WriteFile(filepath.Join(startRoot, "firebase.json"), []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FNCTL_PROJECT_ROOT", envRoot)

	got, err := ResolveProjectRoot(startRoot)
	if err != nil {
		t.Fatalf("resolve project root: %v", err)
	}
	if got != envRoot {
		t.Fatalf("expected env root %q, got %q", envRoot, got)
	}
}
