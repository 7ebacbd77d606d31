// Where: fnctl/cmd/fnctl/cli_test.go
// What: Tests for CLI dependency wiring.
// Why: Ensure prompts are only wired for terminals.
package main

import (
	"testing"

	"github.com/poruru/edge-serverless-box/fnctl/internal/infra/interaction"
)

func TestBuildDependenciesInteractive(t *testing.T) {
	orig := isInteractive
	t.Cleanup(func() { isInteractive = orig })
	isInteractive = func() bool { return true }

	deps := buildDependencies()
	if _, ok := deps.Prompter.(interaction.HuhPrompter); !ok {
		t.Fatalf("expected huh prompter, got %T", deps.Prompter)
	}
	if deps.Out == nil || deps.ErrOut == nil || deps.NewAdapter == nil || deps.NewSource == nil {
		t.Fatalf("expected production dependencies: %#v", deps)
	}
}

func TestBuildDependenciesNonInteractive(t *testing.T) {
	orig := isInteractive
	t.Cleanup(func() { isInteractive = orig })
	isInteractive = func() bool { return false }

	if deps := buildDependencies(); deps.Prompter != nil {
		t.Fatalf("expected no prompter, got %T", deps.Prompter)
	}
}
