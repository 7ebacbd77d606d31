// Where: fnctl/internal/command/project.go
// What: Project root, config, and target resolution for commands.
// Why: Share one resolution flow between discover and export-config.
package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/poruru/edge-serverless-box/fnctl/internal/infra/config"
	"github.com/poruru/edge-serverless-box/fnctl/internal/infra/interaction"
)

var errProjectRequired = errors.New("project is required: pass --project or set a default alias")

type projectContext struct {
	Root   string
	Config config.ProjectConfig
}

func loadProjectContext(deps Dependencies) (projectContext, error) {
	cwd, err := deps.Getwd()
	if err != nil {
		return projectContext{}, fmt.Errorf("get working directory: %w", err)
	}
	root, err := deps.ProjectResolver(cwd)
	if err != nil {
		return projectContext{}, err
	}
	path, err := config.ProjectConfigPath(root)
	if err != nil {
		return projectContext{}, err
	}
	cfg, err := config.LoadProjectConfig(path)
	if err != nil {
		return projectContext{}, err
	}
	return projectContext{Root: root, Config: cfg}, nil
}

// resolveTarget resolves the --project flag, the default alias, or, when
// neither is set and a prompter is available, an interactive choice.
func resolveTarget(cfg config.ProjectConfig, flag string, prompter interaction.Prompter) (config.Target, error) {
	name := strings.TrimSpace(flag)
	if name == "" && strings.TrimSpace(cfg.Default) == "" {
		targets := cfg.Targets()
		if prompter == nil || len(targets) == 0 {
			return config.Target{}, errProjectRequired
		}
		options := make([]interaction.SelectOption, 0, len(targets))
		for _, target := range targets {
			options = append(options, interaction.SelectOption{
				Label: fmt.Sprintf("%s (%s)", target.Alias, target.ProjectID),
				Value: target.Alias,
			})
		}
		selected, err := prompter.SelectValue("Project", options)
		if err != nil {
			return config.Target{}, fmt.Errorf("prompt project: %w", err)
		}
		name = selected
	}
	return cfg.Resolve(name)
}
