// Where: fnctl/internal/infra/discovery/docker.go
// What: Container-based discovery adapter.
// Why: Analyze untrusted function sources inside a disposable sandbox.
package discovery

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/google/uuid"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/poruru/edge-serverless-box/fnctl/internal/domain/annotation"
)

const (
	containerSourceDir = "/workspace"
	containerLabel     = "com.fnctl.discovery"
)

// DockerClient defines the subset of Docker SDK methods used by the adapter.
type DockerClient interface {
	ImageInspect(ctx context.Context, imageID string, opts ...client.ImageInspectOption) (image.InspectResponse, error)
	ImagePull(ctx context.Context, ref string, options image.PullOptions) (io.ReadCloser, error)
	ContainerCreate(
		ctx context.Context,
		config *container.Config,
		hostConfig *container.HostConfig,
		networkingConfig *network.NetworkingConfig,
		platform *ocispec.Platform,
		containerName string,
	) (container.CreateResponse, error)
	ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error
	ContainerWait(ctx context.Context, containerID string, condition container.WaitCondition) (<-chan container.WaitResponse, <-chan error)
	ContainerLogs(ctx context.Context, containerID string, options container.LogsOptions) (io.ReadCloser, error)
	ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error
}

// NewDockerClient constructs a Docker SDK client using environment defaults.
func NewDockerClient() (DockerClient, error) {
	return client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
}

// DockerAdapter runs Image with the source directory mounted read-only at
// /workspace and reads the terminal message from the container's stdout.
type DockerAdapter struct {
	Client  DockerClient
	Image   string
	Command []string
	Stderr  io.Writer
}

func (a *DockerAdapter) Discover(ctx context.Context, req Request) ([]annotation.RawTriggerAnnotation, error) {
	if a.Client == nil {
		return nil, fmt.Errorf("docker client is required")
	}
	if a.Image == "" {
		return nil, fmt.Errorf("discovery image is required")
	}
	sourceDir, err := filepath.Abs(req.SourceDir)
	if err != nil {
		return nil, fmt.Errorf("resolve source dir: %w", err)
	}
	env, err := runnerEnv(req)
	if err != nil {
		return nil, err
	}
	if err := a.ensureImage(ctx); err != nil {
		return nil, err
	}

	name := "fnctl-discovery-" + uuid.NewString()
	created, err := a.Client.ContainerCreate(ctx,
		&container.Config{
			Image:      a.Image,
			Cmd:        a.Command,
			Env:        env,
			WorkingDir: containerSourceDir,
			Labels: map[string]string{
				containerLabel: req.ProjectID,
			},
		},
		&container.HostConfig{
			NetworkMode: "none",
			Mounts: []mount.Mount{{
				Type:     mount.TypeBind,
				Source:   sourceDir,
				Target:   containerSourceDir,
				ReadOnly: true,
			}},
		},
		nil, nil, name,
	)
	if err != nil {
		return nil, fmt.Errorf("create discovery container: %w", err)
	}
	defer func() {
		// Removal must survive a cancelled discovery context.
		_ = a.Client.ContainerRemove(context.WithoutCancel(ctx), created.ID, container.RemoveOptions{Force: true})
	}()

	waitCh, errCh := a.Client.ContainerWait(ctx, created.ID, container.WaitConditionNextExit)
	if err := a.Client.ContainerStart(ctx, created.ID, container.StartOptions{}); err != nil {
		return nil, fmt.Errorf("start discovery container: %w", err)
	}

	var exitCode int64
	select {
	case resp := <-waitCh:
		if resp.Error != nil {
			return nil, &DiscoveryError{Message: resp.Error.Message}
		}
		exitCode = resp.StatusCode
	case err := <-errCh:
		if ctxErr := ContextError(ctx); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("wait for discovery container: %w", err)
	case <-ctx.Done():
		return nil, ContextError(ctx)
	}

	stdout, err := a.readLogs(ctx, created.ID)
	if err != nil {
		return nil, err
	}
	if payload, ok := lastMessage(stdout); ok {
		msg, err := DecodeMessage(payload)
		if err != nil {
			return nil, &DiscoveryError{Message: err.Error(), Err: err}
		}
		return msg.Result()
	}
	return nil, abnormalExit(int(exitCode), fmt.Errorf("container exited with status %d without a message", exitCode))
}

func (a *DockerAdapter) ensureImage(ctx context.Context) error {
	_, err := a.Client.ImageInspect(ctx, a.Image)
	if err == nil {
		return nil
	}
	if !errdefs.IsNotFound(err) {
		return fmt.Errorf("inspect discovery image %q: %w", a.Image, err)
	}
	reader, err := a.Client.ImagePull(ctx, a.Image, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("pull discovery image %q: %w", a.Image, err)
	}
	defer reader.Close()
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return fmt.Errorf("pull discovery image %q: %w", a.Image, err)
	}
	return nil
}

func (a *DockerAdapter) readLogs(ctx context.Context, containerID string) ([]byte, error) {
	logs, err := a.Client.ContainerLogs(ctx, containerID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
	})
	if err != nil {
		return nil, fmt.Errorf("read discovery container logs: %w", err)
	}
	defer logs.Close()

	stderr := a.Stderr
	if stderr == nil {
		stderr = io.Discard
	}
	var stdout bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, stderr, logs); err != nil {
		return nil, fmt.Errorf("read discovery container logs: %w", err)
	}
	return stdout.Bytes(), nil
}
