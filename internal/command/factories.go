// Where: fnctl/internal/command/factories.go
// What: Production factories for discovery adapters and config sources.
// Why: Map project config onto concrete infra implementations in one place.
package command

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/poruru/edge-serverless-box/fnctl/internal/infra/config"
	"github.com/poruru/edge-serverless-box/fnctl/internal/infra/configstore"
	"github.com/poruru/edge-serverless-box/fnctl/internal/infra/discovery"
)

var newDockerClient = discovery.NewDockerClient

// NewDiscoveryAdapter builds the adapter for cfg.Mode.
func NewDiscoveryAdapter(cfg config.DiscoveryConfig, stderr io.Writer) (discovery.Adapter, io.Closer, error) {
	switch cfg.Mode {
	case "", config.DiscoveryModeProcess:
		return discovery.NewProcessAdapter(cfg.Command, stderr), nil, nil
	case config.DiscoveryModeDocker:
		client, err := newDockerClient()
		if err != nil {
			return nil, nil, fmt.Errorf("create docker client: %w", err)
		}
		adapter := &discovery.DockerAdapter{
			Client:  client,
			Image:   cfg.Image,
			Command: cfg.Command,
			Stderr:  stderr,
		}
		return adapter, asCloser(client), nil
	default:
		return nil, nil, fmt.Errorf("unsupported discovery mode %q", cfg.Mode)
	}
}

// NewConfigSource builds a cached source for cfg.Kind. Relative file store
// directories resolve against projectRoot.
func NewConfigSource(ctx context.Context, cfg config.ConfigStoreConfig, projectRoot string) (configstore.Source, error) {
	var src configstore.Source
	opts := configstore.AWSOptions{Region: cfg.Region, Endpoint: cfg.Endpoint}
	switch cfg.Kind {
	case "", config.StoreKindFile:
		dir := cfg.Dir
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(projectRoot, dir)
		}
		src = configstore.FileSource{Dir: dir}
	case config.StoreKindS3:
		s3src, err := configstore.NewS3Source(ctx, opts, cfg.Bucket, cfg.Prefix)
		if err != nil {
			return nil, err
		}
		src = s3src
	case config.StoreKindDynamoDB:
		ddb, err := configstore.NewDynamoDBSource(ctx, opts, cfg.Table)
		if err != nil {
			return nil, err
		}
		src = ddb
	default:
		return nil, fmt.Errorf("unsupported config store %q", cfg.Kind)
	}
	cached, err := configstore.NewCachedSource(src, cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	return cached, nil
}

// asCloser attempts to cast the Docker client to an io.Closer.
// Returns nil if the client does not implement the Closer interface.
func asCloser(client discovery.DockerClient) io.Closer {
	if closer, ok := client.(io.Closer); ok {
		return closer
	}
	return nil
}
