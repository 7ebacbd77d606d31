// Where: fnctl/internal/infra/config/project.go
// What: Project config load/save and alias resolution.
// Why: Manage <project_root>/.fnctl/config.yaml consistently.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/poruru/edge-serverless-box/fnctl/internal/envutil"
	"github.com/poruru/edge-serverless-box/fnctl/internal/infra/fileops"
	"github.com/poruru/edge-serverless-box/fnctl/internal/meta"
	"gopkg.in/yaml.v3"
)

// Discovery modes.
const (
	DiscoveryModeProcess = "process"
	DiscoveryModeDocker  = "docker"
)

// Config store kinds.
const (
	StoreKindFile     = "file"
	StoreKindS3       = "s3"
	StoreKindDynamoDB = "dynamodb"
)

const defaultDiscoveryTimeout = 30 * time.Second

// ErrAliasNotFound is returned when neither an alias nor a known project id matches.
var ErrAliasNotFound = errors.New("project alias not found")

// ProjectConfig represents <project_root>/.fnctl/config.yaml.
type ProjectConfig struct {
	Version     int               `yaml:"version"`
	Default     string            `yaml:"default,omitempty"`
	Projects    map[string]string `yaml:"projects,omitempty"`
	Functions   FunctionsConfig   `yaml:"functions"`
	Discovery   DiscoveryConfig   `yaml:"discovery"`
	ConfigStore ConfigStoreConfig `yaml:"config_store"`
}

// FunctionsConfig locates the functions source and its runtime.
type FunctionsConfig struct {
	Source  string `yaml:"source,omitempty"`
	Runtime string `yaml:"runtime,omitempty"`
}

// DiscoveryConfig selects and parameterizes the discovery adapter.
type DiscoveryConfig struct {
	Mode    string   `yaml:"mode,omitempty"`
	Command []string `yaml:"command,omitempty"`
	Image   string   `yaml:"image,omitempty"`
	Timeout string   `yaml:"timeout,omitempty"`
}

// ConfigStoreConfig selects where runtime config snapshots are materialized from.
type ConfigStoreConfig struct {
	Kind      string `yaml:"kind,omitempty"`
	Dir       string `yaml:"dir,omitempty"`
	Bucket    string `yaml:"bucket,omitempty"`
	Prefix    string `yaml:"prefix,omitempty"`
	Table     string `yaml:"table,omitempty"`
	Endpoint  string `yaml:"endpoint,omitempty"`
	Region    string `yaml:"region,omitempty"`
	CacheSize int    `yaml:"cache_size,omitempty"`
}

// Target is one resolved project: the alias it was addressed by, if any.
type Target struct {
	Alias     string
	ProjectID string
}

// Name returns the alias when present, else the project id.
func (t Target) Name() string {
	if t.Alias != "" {
		return t.Alias
	}
	return t.ProjectID
}

// DefaultProjectConfig returns an initialized ProjectConfig with version set.
func DefaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version:  1,
		Projects: map[string]string{},
		Functions: FunctionsConfig{
			Source: meta.DefaultSource,
		},
		Discovery: DiscoveryConfig{
			Mode: DiscoveryModeProcess,
		},
		ConfigStore: ConfigStoreConfig{
			Kind: StoreKindFile,
			Dir:  filepath.Join(meta.HomeDir, "runtimeconfig"),
		},
	}
}

// ProjectConfigPath returns the path to the project config file.
func ProjectConfigPath(projectRoot string) (string, error) {
	root := strings.TrimSpace(projectRoot)
	if root == "" {
		return "", fmt.Errorf("project root is required")
	}
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return filepath.Join(root, meta.HomeDir, meta.ConfigFileName), nil
}

// LoadProjectConfig reads the project config, falling back to defaults for a
// missing file, and applies FNCTL_* environment overrides.
func LoadProjectConfig(path string) (ProjectConfig, error) {
	cfg := DefaultProjectConfig()
	payload, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(payload, &cfg); err != nil {
			return ProjectConfig{}, fmt.Errorf("decode project config: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return ProjectConfig{}, fmt.Errorf("read project config: %w", err)
	}
	if cfg.Projects == nil {
		cfg.Projects = map[string]string{}
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// SaveProjectConfig writes a ProjectConfig to the specified path.
func SaveProjectConfig(path string, cfg ProjectConfig) error {
	payload, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("encode project config: %w", err)
	}

	if err := fileops.WriteFile(path, string(payload), 0o600); err != nil {
		return fmt.Errorf("write project config: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *ProjectConfig) {
	if v := envutil.GetHostEnv("DISCOVERY_MODE"); v != "" {
		cfg.Discovery.Mode = v
	}
	if v := envutil.GetHostEnv("DISCOVERY_IMAGE"); v != "" {
		cfg.Discovery.Image = v
	}
	if v := envutil.GetHostEnv("DISCOVERY_TIMEOUT"); v != "" {
		cfg.Discovery.Timeout = v
	}
	if v := envutil.GetHostEnv("RUNTIME"); v != "" {
		cfg.Functions.Runtime = v
	}
	if v := envutil.GetHostEnv("CONFIG_STORE"); v != "" {
		cfg.ConfigStore.Kind = v
	}
	if v := envutil.GetHostEnv("CONFIG_STORE_ENDPOINT"); v != "" {
		cfg.ConfigStore.Endpoint = v
	}
}

// DiscoveryTimeout parses the configured timeout. Plain integers are seconds;
// "0" disables the timeout.
func (c ProjectConfig) DiscoveryTimeout() (time.Duration, error) {
	raw := strings.TrimSpace(c.Discovery.Timeout)
	if raw == "" {
		return defaultDiscoveryTimeout, nil
	}
	if seconds, err := strconv.Atoi(raw); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid discovery timeout %q: %w", raw, err)
	}
	return d, nil
}

// Resolve maps an alias or project id to a Target. An empty name selects the
// default alias.
func (c ProjectConfig) Resolve(name string) (Target, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = c.Default
	}
	if name == "" {
		return Target{}, fmt.Errorf("no project selected and no default alias configured")
	}
	if projectID, ok := c.Projects[name]; ok {
		return Target{Alias: name, ProjectID: projectID}, nil
	}
	for alias, projectID := range c.Projects {
		if projectID == name {
			return Target{Alias: alias, ProjectID: projectID}, nil
		}
	}
	if strings.Contains(name, ".") || strings.Contains(name, "/") {
		return Target{}, fmt.Errorf("%w: %s", ErrAliasNotFound, name)
	}
	// Unknown names are taken as raw project ids.
	return Target{ProjectID: name}, nil
}

// Targets returns every configured alias, sorted by alias.
func (c ProjectConfig) Targets() []Target {
	aliases := make([]string, 0, len(c.Projects))
	for alias := range c.Projects {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	out := make([]Target, 0, len(aliases))
	for _, alias := range aliases {
		out = append(out, Target{Alias: alias, ProjectID: c.Projects[alias]})
	}
	return out
}

// SourceDir resolves the functions source directory against the project root.
func (c ProjectConfig) SourceDir(projectRoot string) string {
	source := c.Functions.Source
	if source == "" {
		source = meta.DefaultSource
	}
	if filepath.IsAbs(source) {
		return source
	}
	return filepath.Join(projectRoot, source)
}
