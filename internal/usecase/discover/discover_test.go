package discover

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/poruru/edge-serverless-box/fnctl/internal/domain/annotation"
	"github.com/poruru/edge-serverless-box/fnctl/internal/domain/backend"
	"github.com/poruru/edge-serverless-box/fnctl/internal/infra/discovery"
)


func staticAdapter(annotations ...annotation.RawTriggerAnnotation) discovery.Adapter {
	return discovery.AdapterFunc(func(context.Context, discovery.Request) ([]annotation.RawTriggerAnnotation, error) {
		return annotations, nil
	})
}

func TestDiscoverBuildsBackend(t *testing.T) {
	var gotReq discovery.Request
	adapter := discovery.AdapterFunc(func(_ context.Context, req discovery.Request) ([]annotation.RawTriggerAnnotation, error) {
		gotReq = req
		return []annotation.RawTriggerAnnotation{
			{Name: "api", EntryPoint: "api", HTTPSTrigger: &annotation.HTTPSTrigger{}},
			{
				Name:       "nightly",
				EntryPoint: "nightly",
				EventTrigger: &annotation.EventTrigger{
					EventType: "google.pubsub.topic.publish",
					Resource:  "projects/demo/topics",
				},
				Schedule: &annotation.ScheduleDescriptor{Schedule: "every 24 hours"},
				Regions:  []string{"europe-west1"},
			},
		}, nil
	})

	envs := map[string]string{"API_URL": "https://example.com"}
	got, err := Discover(context.Background(), adapter, Request{
		ProjectID:    "demo",
		SourceDir:    "/work/functions",
		Runtime:      "nodejs20",
		ConfigValues: map[string]any{"svc": map[string]any{"key": "abc"}},
		Envs:         envs,
	})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if gotReq.ProjectID != "demo" || gotReq.SourceDir != "/work/functions" {
		t.Fatalf("adapter request = %#v", gotReq)
	}
	if len(got.Functions) != 2 || len(got.Schedules) != 1 || len(got.Topics) != 1 {
		t.Fatalf("unexpected backend: %#v", got)
	}
	if got.Functions[0].Runtime != "nodejs20" || got.Functions[0].Region != backend.DefaultRegion {
		t.Fatalf("unexpected function: %#v", got.Functions[0])
	}
	if !reflect.DeepEqual(got.EnvironmentVariables, envs) {
		t.Fatalf("env = %#v", got.EnvironmentVariables)
	}
	envs["API_URL"] = "mutated"
	if got.EnvironmentVariables["API_URL"] != "https://example.com" {
		t.Fatal("backend env must not alias the request map")
	}
}

func TestDiscoverEmptyAnnotations(t *testing.T) {
	got, err := Discover(context.Background(), staticAdapter(), Request{ProjectID: "demo"})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(got.Functions) != 0 || len(got.Schedules) != 0 || got.EnvironmentVariables == nil {
		t.Fatalf("expected empty backend, got %#v", got)
	}
}

func TestDiscoverPropagatesAdapterErrorUnchanged(t *testing.T) {
	want := &discovery.DiscoveryError{Message: "SyntaxError: Unexpected token"}
	adapter := discovery.AdapterFunc(func(context.Context, discovery.Request) ([]annotation.RawTriggerAnnotation, error) {
		return nil, want
	})
	_, err := Discover(context.Background(), adapter, Request{ProjectID: "demo"})
	if err != want {
		t.Fatalf("Discover() error = %v, want the adapter error", err)
	}
}

func TestDiscoverStructuralErrorAbortsWithoutBackend(t *testing.T) {
	adapter := staticAdapter(
		annotation.RawTriggerAnnotation{Name: "ok", HTTPSTrigger: &annotation.HTTPSTrigger{}},
		annotation.RawTriggerAnnotation{Name: "broken"},
	)
	got, err := Discover(context.Background(), adapter, Request{ProjectID: "demo"})
	var structural *backend.StructuralError
	if !errors.As(err, &structural) {
		t.Fatalf("expected StructuralError, got %v", err)
	}
	if structural.Name != "broken" || got != nil {
		t.Fatalf("unexpected result %#v, %#v", structural, got)
	}
}

func TestDiscoverForwardsWarnings(t *testing.T) {
	adapter := staticAdapter(annotation.RawTriggerAnnotation{
		Name:          "api",
		HTTPSTrigger:  &annotation.HTTPSTrigger{},
		FailurePolicy: &annotation.FailurePolicy{Retry: map[string]any{}},
	})
	var warnings []string
	_, err := Discover(context.Background(), adapter, Request{
		ProjectID: "demo",
		Warnf:     func(msg string) { warnings = append(warnings, msg) },
	})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "api") {
		t.Fatalf("warnings = %#v", warnings)
	}
}

func TestDiscoverTimeout(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	adapter := discovery.AdapterFunc(func(context.Context, discovery.Request) ([]annotation.RawTriggerAnnotation, error) {
		<-release
		return nil, nil
	})

	_, err := Discover(context.Background(), adapter, Request{ProjectID: "demo", Timeout: 20 * time.Millisecond})
	var discErr *discovery.DiscoveryError
	if !errors.As(err, &discErr) {
		t.Fatalf("expected DiscoveryError, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestDiscoverCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	adapter := discovery.AdapterFunc(func(ctx context.Context, _ discovery.Request) ([]annotation.RawTriggerAnnotation, error) {
		<-ctx.Done()
		return nil, discovery.ContextError(ctx)
	})
	_, err := Discover(ctx, adapter, Request{ProjectID: "demo"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

