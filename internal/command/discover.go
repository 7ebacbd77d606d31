// Where: fnctl/internal/command/discover.go
// What: discover command adapter.
// Why: Wire project config, env files, config store, and adapter into the discover usecase.
package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/poruru/edge-serverless-box/fnctl/internal/infra/envfile"
	"github.com/poruru/edge-serverless-box/fnctl/internal/infra/ui"
	"github.com/poruru/edge-serverless-box/fnctl/internal/presenters"
	"github.com/poruru/edge-serverless-box/fnctl/internal/usecase/discover"
)

func runDiscover(ctx context.Context, cli CLI, deps Dependencies, console *ui.Console) int {
	cmd := cli.Discover
	project, err := loadProjectContext(deps)
	if err != nil {
		return exitWithError(deps.Out, err)
	}
	cfg := project.Config

	target, err := resolveTarget(cfg, cli.Project, deps.Prompter)
	if err != nil {
		return exitWithError(deps.Out, err)
	}

	sourceDir := strings.TrimSpace(cmd.Source)
	if sourceDir == "" {
		sourceDir = cfg.SourceDir(project.Root)
	}
	runtime := strings.TrimSpace(cmd.Runtime)
	if runtime == "" {
		runtime = cfg.Functions.Runtime
	}
	timeout := cmd.Timeout
	if timeout == 0 {
		timeout, err = cfg.DiscoveryTimeout()
		if err != nil {
			return exitWithError(deps.Out, err)
		}
	}

	envs, loaded, err := envfile.Load(sourceDir, target.ProjectID, target.Alias)
	if err != nil {
		return exitWithError(deps.Out, err)
	}

	source, err := deps.NewSource(ctx, cfg.ConfigStore, project.Root)
	if err != nil {
		return exitWithError(deps.Out, err)
	}
	configValues, err := source.Materialize(ctx, target.ProjectID)
	if err != nil {
		return exitWithError(deps.Out, fmt.Errorf("materialize runtime config: %w", err))
	}

	adapter, closer, err := deps.NewAdapter(cfg.Discovery, deps.ErrOut)
	if err != nil {
		return exitWithError(deps.Out, err)
	}
	if closer != nil {
		defer closer.Close()
	}

	yamlOutput := cmd.Output == "yaml"
	// YAML output goes to stdout as a document; notes go to stderr.
	notes := console
	if yamlOutput {
		notes = ui.NewWithEmoji(deps.ErrOut, console.EmojiEnabled)
	}
	if len(loaded) > 0 {
		notes.Info(fmt.Sprintf("Loaded %s", strings.Join(loaded, ", ")))
	}

	result, err := discover.Discover(ctx, adapter, discover.Request{
		ProjectID:    target.ProjectID,
		SourceDir:    sourceDir,
		Runtime:      runtime,
		ConfigValues: configValues,
		Envs:         envs,
		Timeout:      timeout,
		Warnf:        notes.Warn,
	})
	if err != nil {
		return exitWithError(deps.Out, err)
	}

	if yamlOutput {
		payload, err := presenters.MarshalYAML(result)
		if err != nil {
			return exitWithError(deps.Out, err)
		}
		_, _ = deps.Out.Write(payload)
		return 0
	}

	summary, err := presenters.RenderSummary(result)
	if err != nil {
		return exitWithError(deps.Out, err)
	}
	console.Info(summary)
	presenters.PrintBackendCounts(console, result)
	return 0
}
