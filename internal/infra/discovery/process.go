// Where: fnctl/internal/infra/discovery/process.go
// What: Subprocess-based discovery adapter.
// Why: Run the functions SDK's trigger parser next to the user's source code.
package discovery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"

	"github.com/poruru/edge-serverless-box/fnctl/internal/domain/annotation"
)

var commandContext = exec.CommandContext

// ProcessAdapter runs Command in the source directory and reads the terminal
// message from its stdout. Stderr is forwarded to Stderr when set.
type ProcessAdapter struct {
	Command []string
	Stderr  io.Writer
}

// NewProcessAdapter creates an adapter for the given runner command.
func NewProcessAdapter(command []string, stderr io.Writer) *ProcessAdapter {
	return &ProcessAdapter{Command: command, Stderr: stderr}
}

func (a *ProcessAdapter) Discover(ctx context.Context, req Request) ([]annotation.RawTriggerAnnotation, error) {
	if len(a.Command) == 0 {
		return nil, fmt.Errorf("discovery command is required")
	}
	env, err := runnerEnv(req)
	if err != nil {
		return nil, err
	}

	cmd := commandContext(ctx, a.Command[0], a.Command[1:]...)
	cmd.Dir = req.SourceDir
	cmd.Env = append(os.Environ(), env...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if a.Stderr != nil {
		cmd.Stderr = a.Stderr
	}

	runErr := cmd.Run()

	// A message wins over the exit status: runners may exit nonzero after reporting.
	if payload, ok := lastMessage(stdout.Bytes()); ok {
		msg, err := DecodeMessage(payload)
		if err != nil {
			return nil, &DiscoveryError{Message: err.Error(), Err: err}
		}
		return msg.Result()
	}
	if ctxErr := ContextError(ctx); ctxErr != nil {
		return nil, ctxErr
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return nil, abnormalExit(exitErr.ExitCode(), runErr)
		}
		return nil, &DiscoveryError{Message: fmt.Sprintf("start discovery runner: %v", runErr), Err: runErr}
	}
	return nil, abnormalExit(0, fmt.Errorf("runner exited without a message"))
}

// runnerEnv renders the KEY=VALUE entries the runner needs, sorted for stable output.
func runnerEnv(req Request) ([]string, error) {
	runtimeConfig, err := runtimeConfigJSON(req.ConfigValues)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(req.Envs))
	for key := range req.Envs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(keys)+2)
	for _, key := range keys {
		env = append(env, key+"="+req.Envs[key])
	}
	env = append(env,
		EnvProjectID+"="+req.ProjectID,
		EnvRuntimeConfig+"="+runtimeConfig,
	)
	return env, nil
}
