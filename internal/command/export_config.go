// Where: fnctl/internal/command/export_config.go
// What: export-config command adapter.
// Why: Resolve targets and hand them to the export workflow.
package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/poruru/edge-serverless-box/fnctl/internal/infra/config"
	"github.com/poruru/edge-serverless-box/fnctl/internal/infra/ui"
	"github.com/poruru/edge-serverless-box/fnctl/internal/usecase/exportconfig"
)

func runExportConfig(ctx context.Context, cli CLI, deps Dependencies, console *ui.Console) int {
	cmd := cli.ExportConfig
	project, err := loadProjectContext(deps)
	if err != nil {
		return exitWithError(deps.Out, err)
	}
	cfg := project.Config

	var targets []config.Target
	if cmd.All {
		targets = cfg.Targets()
		if len(targets) == 0 {
			return exitWithError(deps.Out, fmt.Errorf("no project aliases configured"))
		}
	} else {
		target, err := resolveTarget(cfg, cli.Project, deps.Prompter)
		if err != nil {
			return exitWithError(deps.Out, err)
		}
		targets = []config.Target{target}
	}

	sourceDir := strings.TrimSpace(cmd.Source)
	if sourceDir == "" {
		sourceDir = cfg.SourceDir(project.Root)
	}

	source, err := deps.NewSource(ctx, cfg.ConfigStore, project.Root)
	if err != nil {
		return exitWithError(deps.Out, err)
	}

	workflow := exportconfig.NewWorkflow(source, deps.Prompter, console)
	result, err := workflow.Run(ctx, exportconfig.Request{
		Targets:   targets,
		SourceDir: sourceDir,
		Prefix:    cmd.Prefix,
		Force:     cmd.Force,
	})
	if err != nil {
		return exitWithError(deps.Out, err)
	}

	rows := make([]ui.KeyValue, 0, len(result.Files))
	for _, file := range result.Files {
		status := fmt.Sprintf("%d keys", file.Entries)
		if file.Skipped {
			status = "skipped"
		}
		rows = append(rows, ui.KeyValue{Key: file.Target.Name(), Value: fmt.Sprintf("%s (%s)", file.Path, status)})
	}
	console.Block("📝", "Exported runtime config:", rows)
	if result.Prefix != "" {
		console.Info(fmt.Sprintf("Invalid keys were prefixed with %s", result.Prefix))
	}
	return 0
}
