package discovery

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

type fakeDockerClient struct {
	imageMissing bool
	pulled       []string
	created      *container.Config
	hostConfig   *container.HostConfig
	removed      []string
	exitCode     int64
	stdout       string
	stderr       string
}

func (f *fakeDockerClient) ImageInspect(context.Context, string, ...client.ImageInspectOption) (image.InspectResponse, error) {
	if f.imageMissing {
		return image.InspectResponse{}, errdefs.ErrNotFound
	}
	return image.InspectResponse{}, nil
}

func (f *fakeDockerClient) ImagePull(_ context.Context, ref string, _ image.PullOptions) (io.ReadCloser, error) {
	f.pulled = append(f.pulled, ref)
	return io.NopCloser(bytes.NewReader(nil)), nil
}

func (f *fakeDockerClient) ContainerCreate(
	_ context.Context,
	config *container.Config,
	hostConfig *container.HostConfig,
	_ *network.NetworkingConfig,
	_ *ocispec.Platform,
	_ string,
) (container.CreateResponse, error) {
	f.created = config
	f.hostConfig = hostConfig
	return container.CreateResponse{ID: "c1"}, nil
}

func (f *fakeDockerClient) ContainerStart(context.Context, string, container.StartOptions) error {
	return nil
}

func (f *fakeDockerClient) ContainerWait(context.Context, string, container.WaitCondition) (<-chan container.WaitResponse, <-chan error) {
	waitCh := make(chan container.WaitResponse, 1)
	waitCh <- container.WaitResponse{StatusCode: f.exitCode}
	return waitCh, make(chan error)
}

func (f *fakeDockerClient) ContainerLogs(context.Context, string, container.LogsOptions) (io.ReadCloser, error) {
	var buf bytes.Buffer
	if f.stdout != "" {
		_, _ = stdcopy.NewStdWriter(&buf, stdcopy.Stdout).Write([]byte(f.stdout))
	}
	if f.stderr != "" {
		_, _ = stdcopy.NewStdWriter(&buf, stdcopy.Stderr).Write([]byte(f.stderr))
	}
	return io.NopCloser(&buf), nil
}

func (f *fakeDockerClient) ContainerRemove(_ context.Context, id string, _ container.RemoveOptions) error {
	f.removed = append(f.removed, id)
	return nil
}

func TestDockerAdapterReturnsTriggers(t *testing.T) {
	fake := &fakeDockerClient{
		imageMissing: true,
		stdout:       "starting\n" + `{"triggers":[{"name":"a","entryPoint":"a","httpsTrigger":{}}]}` + "\n",
		stderr:       "warning from sdk\n",
	}
	var stderr bytes.Buffer
	adapter := &DockerAdapter{Client: fake, Image: "fnctl/discovery:node18", Command: []string{"parse"}, Stderr: &stderr}

	got, err := adapter.Discover(context.Background(), Request{ProjectID: "demo", SourceDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(got) != 1 || got[0].Name != "a" {
		t.Fatalf("Discover() = %#v", got)
	}
	if len(fake.pulled) != 1 || fake.pulled[0] != "fnctl/discovery:node18" {
		t.Fatalf("pulled = %#v", fake.pulled)
	}
	if len(fake.removed) != 1 || fake.removed[0] != "c1" {
		t.Fatalf("removed = %#v", fake.removed)
	}
	if stderr.String() != "warning from sdk\n" {
		t.Fatalf("stderr = %q", stderr.String())
	}
	if fake.hostConfig.NetworkMode != "none" || !fake.hostConfig.Mounts[0].ReadOnly {
		t.Fatalf("hostConfig = %#v", fake.hostConfig)
	}
	if fake.created.Labels[containerLabel] != "demo" {
		t.Fatalf("labels = %#v", fake.created.Labels)
	}
}

func TestDockerAdapterReportsAbnormalExit(t *testing.T) {
	fake := &fakeDockerClient{exitCode: 137}
	adapter := &DockerAdapter{Client: fake, Image: "img"}

	_, err := adapter.Discover(context.Background(), Request{ProjectID: "demo", SourceDir: t.TempDir()})
	var discoveryErr *DiscoveryError
	if !errors.As(err, &discoveryErr) || !discoveryErr.Abnormal || discoveryErr.ExitCode != 137 {
		t.Fatalf("Discover() error = %#v", err)
	}
	if len(fake.pulled) != 0 {
		t.Fatalf("unexpected pull: %#v", fake.pulled)
	}
	if len(fake.removed) != 1 {
		t.Fatalf("container not removed")
	}
}

func TestDockerAdapterReportsExplicitError(t *testing.T) {
	fake := &fakeDockerClient{exitCode: 1, stdout: `{"error":"syntax error in index.js"}`}
	adapter := &DockerAdapter{Client: fake, Image: "img"}

	_, err := adapter.Discover(context.Background(), Request{ProjectID: "demo", SourceDir: t.TempDir()})
	var discoveryErr *DiscoveryError
	if !errors.As(err, &discoveryErr) || discoveryErr.Abnormal {
		t.Fatalf("Discover() error = %#v", err)
	}
	if err.Error() != "syntax error in index.js" {
		t.Fatalf("error = %q", err.Error())
	}
}

func TestDockerAdapterRequiresImage(t *testing.T) {
	adapter := &DockerAdapter{Client: &fakeDockerClient{}}
	if _, err := adapter.Discover(context.Background(), Request{}); err == nil {
		t.Fatal("expected error, got nil")
	}
}
