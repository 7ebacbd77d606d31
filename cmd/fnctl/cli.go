// Where: fnctl/cmd/fnctl/cli.go
// What: CLI dependency wiring helpers.
// Why: Centralize construction for testability.
package main

import (
	"os"

	"github.com/poruru/edge-serverless-box/fnctl/internal/command"
	"github.com/poruru/edge-serverless-box/fnctl/internal/infra/config"
	"github.com/poruru/edge-serverless-box/fnctl/internal/infra/interaction"
)

var isInteractive = interaction.Interactive

// buildDependencies constructs all runtime dependencies required by the CLI.
// Prompts are only enabled when attached to a terminal.
func buildDependencies() command.Dependencies {
	deps := command.Dependencies{
		Out:             os.Stdout,
		ErrOut:          os.Stderr,
		Getwd:           os.Getwd,
		ProjectResolver: config.ResolveProjectRoot,
		NewAdapter:      command.NewDiscoveryAdapter,
		NewSource:       command.NewConfigSource,
	}
	if isInteractive() {
		deps.Prompter = interaction.HuhPrompter{}
	}
	return deps
}
