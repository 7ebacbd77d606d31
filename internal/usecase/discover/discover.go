// Where: fnctl/internal/usecase/discover/discover.go
// What: Discovery workflow from functions source to backend spec.
// Why: Keep adapter invocation and backend folding out of CLI handlers.
package discover

import (
	"context"
	"time"

	"github.com/poruru/edge-serverless-box/fnctl/internal/domain/annotation"
	"github.com/poruru/edge-serverless-box/fnctl/internal/domain/backend"
	"github.com/poruru/edge-serverless-box/fnctl/internal/infra/discovery"
)

// Request captures the inputs of one discovery run.
type Request struct {
	ProjectID    string
	SourceDir    string
	Runtime      string
	ConfigValues map[string]any
	Envs         map[string]string
	// Timeout bounds the adapter call; zero waits indefinitely.
	Timeout time.Duration
	// Warnf receives non-fatal findings; nil discards them.
	Warnf func(string)
}

type adapterResult struct {
	annotations []annotation.RawTriggerAnnotation
	err         error
}

// Discover invokes the adapter and folds every returned annotation into a new
// backend seeded with req.Envs. Adapter failures are returned unchanged. A
// structural failure aborts the fold; no partial backend is returned.
func Discover(ctx context.Context, adapter discovery.Adapter, req Request) (*backend.Backend, error) {
	annotations, err := invoke(ctx, adapter, req)
	if err != nil {
		return nil, err
	}

	out := backend.Empty()
	for key, value := range req.Envs {
		out.EnvironmentVariables[key] = value
	}

	builder := backend.Builder{Warnf: req.Warnf}
	for _, annot := range annotations {
		if err := builder.AddResources(req.ProjectID, req.Runtime, annot, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// invoke races the adapter against the request timeout. The adapter sees the
// same deadline, but a result is not awaited past it.
func invoke(
	ctx context.Context,
	adapter discovery.Adapter,
	req Request,
) ([]annotation.RawTriggerAnnotation, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	done := make(chan adapterResult, 1)
	go func() {
		annotations, err := adapter.Discover(ctx, discovery.Request{
			ProjectID:    req.ProjectID,
			SourceDir:    req.SourceDir,
			ConfigValues: req.ConfigValues,
			Envs:         req.Envs,
		})
		done <- adapterResult{annotations: annotations, err: err}
	}()

	select {
	case res := <-done:
		return res.annotations, res.err
	case <-ctx.Done():
		return nil, discovery.ContextError(ctx)
	}
}
