// Where: fnctl/internal/infra/configstore/source.go
// What: Remote runtime-config materialization sources.
// Why: Resolve a project's current runtime config snapshot from wherever it is stored.
package configstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
	"sigs.k8s.io/yaml"
)

// Source materializes the nested runtime config of a project.
type Source interface {
	Materialize(ctx context.Context, projectID string) (map[string]any, error)
}

// FileSource reads <Dir>/<projectID>.yaml, .yml, or .json. A project without
// a snapshot file has an empty config.
type FileSource struct {
	Dir string
}

var snapshotExtensions = []string{".yaml", ".yml", ".json"}

func (s FileSource) Materialize(_ context.Context, projectID string) (map[string]any, error) {
	if projectID == "" {
		return nil, fmt.Errorf("project id is required")
	}
	for _, ext := range snapshotExtensions {
		path := filepath.Join(s.Dir, projectID+ext)
		payload, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("read config snapshot: %w", err)
		}
		return decodeSnapshot(payload)
	}
	return map[string]any{}, nil
}

// decodeSnapshot accepts YAML or JSON and normalizes it to JSON-compatible maps.
func decodeSnapshot(payload []byte) (map[string]any, error) {
	out := map[string]any{}
	if err := yaml.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("decode config snapshot: %w", err)
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

// CachedSource memoizes materialized configs per project id.
type CachedSource struct {
	Source Source
	cache  *lru.Cache[string, map[string]any]
}

// NewCachedSource wraps src with an LRU cache holding up to size projects.
func NewCachedSource(src Source, size int) (*CachedSource, error) {
	if size <= 0 {
		size = 16
	}
	cache, err := lru.New[string, map[string]any](size)
	if err != nil {
		return nil, fmt.Errorf("create config cache: %w", err)
	}
	return &CachedSource{Source: src, cache: cache}, nil
}

func (c *CachedSource) Materialize(ctx context.Context, projectID string) (map[string]any, error) {
	if cached, ok := c.cache.Get(projectID); ok {
		return cached, nil
	}
	out, err := c.Source.Materialize(ctx, projectID)
	if err != nil {
		return nil, err
	}
	c.cache.Add(projectID, out)
	return out, nil
}
