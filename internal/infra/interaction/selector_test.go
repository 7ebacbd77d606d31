package interaction

import (
	"errors"
	"testing"

	"github.com/charmbracelet/huh"
)

func TestHuhPrompterInputUsesRunner(t *testing.T) {
	orig := runInputPrompt
	t.Cleanup(func() { runInputPrompt = orig })

	var gotTitle string
	var gotSuggestions []string
	runInputPrompt = func(title string, suggestions []string, input *string) error {
		gotTitle = title
		gotSuggestions = append([]string(nil), suggestions...)
		*input = "CONFIG_"
		return nil
	}

	got, err := (HuhPrompter{}).Input("Prefix", []string{"CONFIG_", "APP_"})
	if err != nil {
		t.Fatalf("Input() error = %v", err)
	}
	if got != "CONFIG_" {
		t.Fatalf("Input() = %q, want %q", got, "CONFIG_")
	}
	if gotTitle != "Prefix" {
		t.Fatalf("title = %q", gotTitle)
	}
	if len(gotSuggestions) != 2 || gotSuggestions[0] != "CONFIG_" || gotSuggestions[1] != "APP_" {
		t.Fatalf("suggestions = %#v", gotSuggestions)
	}
}

func TestHuhPrompterInputWrapsError(t *testing.T) {
	orig := runInputPrompt
	t.Cleanup(func() { runInputPrompt = orig })
	runInputPrompt = func(string, []string, *string) error {
		return errors.New("tty unavailable")
	}

	_, err := (HuhPrompter{}).Input("Prefix", nil)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err.Error() != "prompt input: tty unavailable" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHuhPrompterSelectValueUsesRunner(t *testing.T) {
	orig := runSelectPrompt
	t.Cleanup(func() { runSelectPrompt = orig })

	var gotTitle string
	var gotOptions int
	runSelectPrompt = func(title string, options []huh.Option[string], selected *string) error {
		gotTitle = title
		gotOptions = len(options)
		*selected = "demo-prod-123"
		return nil
	}

	got, err := (HuhPrompter{}).SelectValue("Project", []SelectOption{
		{Label: "dev (demo-dev)", Value: "demo-dev"},
		{Label: "prod (demo-prod-123)", Value: "demo-prod-123"},
	})
	if err != nil {
		t.Fatalf("SelectValue() error = %v", err)
	}
	if got != "demo-prod-123" {
		t.Fatalf("SelectValue() = %q, want %q", got, "demo-prod-123")
	}
	if gotTitle != "Project" {
		t.Fatalf("title = %q", gotTitle)
	}
	if gotOptions != 2 {
		t.Fatalf("options len = %d, want 2", gotOptions)
	}
}

func TestHuhPrompterConfirm(t *testing.T) {
	orig := runConfirmPrompt
	t.Cleanup(func() { runConfirmPrompt = orig })

	runConfirmPrompt = func(title string, confirmed *bool) error {
		*confirmed = title == "Overwrite .env.prod?"
		return nil
	}
	got, err := (HuhPrompter{}).Confirm("Overwrite .env.prod?")
	if err != nil || !got {
		t.Fatalf("Confirm() = %v, %v", got, err)
	}

	runConfirmPrompt = func(string, *bool) error {
		return errors.New("interrupted")
	}
	if _, err := (HuhPrompter{}).Confirm("x"); err == nil || err.Error() != "prompt confirm: interrupted" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHuhPrompterSelectValueEmptyOptionsReturnsEmpty(t *testing.T) {
	orig := runSelectPrompt
	t.Cleanup(func() { runSelectPrompt = orig })
	called := false
	runSelectPrompt = func(string, []huh.Option[string], *string) error {
		called = true
		return nil
	}

	got, err := (HuhPrompter{}).SelectValue("Project", nil)
	if err != nil {
		t.Fatalf("SelectValue() error = %v", err)
	}
	if got != "" {
		t.Fatalf("SelectValue() = %q, want empty", got)
	}
	if called {
		t.Fatal("runner must not be called for empty options")
	}
}

func TestHuhPrompterSelectValueWrapsError(t *testing.T) {
	orig := runSelectPrompt
	t.Cleanup(func() { runSelectPrompt = orig })
	runSelectPrompt = func(string, []huh.Option[string], *string) error {
		return errors.New("select value failed")
	}

	_, err := (HuhPrompter{}).SelectValue("Project", []SelectOption{{Label: "prod", Value: "demo-prod-123"}})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err.Error() != "prompt select value: select value failed" {
		t.Fatalf("unexpected error: %v", err)
	}
}
