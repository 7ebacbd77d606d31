// Where: fnctl/internal/command/app.go
// What: CLI entrypoint logic.
// Why: Provide a testable command dispatcher.
package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/poruru/edge-serverless-box/fnctl/internal/infra/config"
	"github.com/poruru/edge-serverless-box/fnctl/internal/infra/configstore"
	"github.com/poruru/edge-serverless-box/fnctl/internal/infra/discovery"
	"github.com/poruru/edge-serverless-box/fnctl/internal/infra/interaction"
	"github.com/poruru/edge-serverless-box/fnctl/internal/infra/ui"
	"github.com/poruru/edge-serverless-box/fnctl/internal/version"
)

// Dependencies holds all injected dependencies required for CLI command execution.
// Nil fields fall back to the production implementations.
type Dependencies struct {
	Out             io.Writer
	ErrOut          io.Writer
	Prompter        interaction.Prompter
	Getwd           func() (string, error)
	ProjectResolver func(string) (string, error)
	NewAdapter      AdapterFactory
	NewSource       SourceFactory
}

type (
	// AdapterFactory builds the discovery adapter selected by config.
	// The returned closer may be nil.
	AdapterFactory func(cfg config.DiscoveryConfig, stderr io.Writer) (discovery.Adapter, io.Closer, error)

	// SourceFactory builds the runtime config source selected by config.
	SourceFactory func(ctx context.Context, cfg config.ConfigStoreConfig, projectRoot string) (configstore.Source, error)
)

// CLI defines the command-line interface structure parsed by Kong.
// It contains global flags and all subcommand definitions.
type CLI struct {
	EnvFile      string          `name:"env-file" help:"Path to .env file"`
	Project      string          `short:"P" name:"project" help:"Project alias or id"`
	NoEmoji      bool            `name:"no-emoji" help:"Disable emoji output"`
	Discover     DiscoverCmd     `cmd:"" help:"Discover function triggers and print the backend"`
	ExportConfig ExportConfigCmd `cmd:"" name:"export-config" help:"Export runtime config as .env files"`
	Version      VersionCmd      `cmd:"" help:"Show version information"`
}

type (
	// DiscoverCmd defines the discover command flags.
	DiscoverCmd struct {
		Source  string        `short:"s" help:"Functions source directory (default: from project config)"`
		Runtime string        `short:"r" help:"Runtime recorded on every function"`
		Output  string        `short:"o" default:"summary" enum:"summary,yaml" help:"Output format (summary/yaml)"`
		Timeout time.Duration `help:"Discovery timeout (default: from project config)"`
	}

	// ExportConfigCmd defines the export-config command flags.
	ExportConfigCmd struct {
		Source string `short:"s" help:"Directory to write .env files into (default: functions source)"`
		Prefix string `help:"Prefix for keys that are not valid environment variable names"`
		All    bool   `help:"Export every configured project alias"`
		Force  bool   `short:"f" help:"Overwrite existing .env files"`
	}

	VersionCmd struct{}
)

// Run is the main entry point for CLI command execution.
// It parses the command-line arguments, identifies the requested command,
// and dispatches to the appropriate handler. Returns 0 on success, 1 on error.
func Run(args []string, deps Dependencies) int {
	if deps.Out == nil {
		deps.Out = os.Stdout
	}
	if deps.ErrOut == nil {
		deps.ErrOut = os.Stderr
	}
	if deps.Getwd == nil {
		deps.Getwd = os.Getwd
	}
	if deps.ProjectResolver == nil {
		deps.ProjectResolver = config.ResolveProjectRoot
	}
	if deps.NewAdapter == nil {
		deps.NewAdapter = NewDiscoveryAdapter
	}
	if deps.NewSource == nil {
		deps.NewSource = NewConfigSource
	}
	out := deps.Out

	// Handle no arguments: show usage
	if len(args) == 0 {
		return runNoArgs(out)
	}

	cli := CLI{}
	parser, err := kong.New(&cli,
		kong.Name(cliName()),
		kong.Writers(out, deps.ErrOut),
	)
	if err != nil {
		return exitWithError(out, err)
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return handleParseError(err, out)
	}

	console := ui.NewWithEmoji(out, !cli.NoEmoji)
	if cli.EnvFile != "" {
		if err := godotenv.Load(cli.EnvFile); err != nil {
			console.Warn(fmt.Sprintf("failed to load env file %s: %v", cli.EnvFile, err))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if exitCode, handled := dispatchCommand(ctx, kctx.Command(), cli, deps, console); handled {
		return exitCode
	}

	console.Warn("unknown command")
	return 1
}

type commandHandler func(context.Context, CLI, Dependencies, *ui.Console) int

func dispatchCommand(ctx context.Context, command string, cli CLI, deps Dependencies, console *ui.Console) (int, bool) {
	handlers := map[string]commandHandler{
		"discover":      runDiscover,
		"export-config": runExportConfig,
		"version":       runVersion,
	}

	if handler, ok := handlers[command]; ok {
		return handler(ctx, cli, deps, console), true
	}
	return 1, false
}

// runVersion prints the version information of the CLI.
func runVersion(_ context.Context, _ CLI, _ Dependencies, console *ui.Console) int {
	console.Info(version.GetVersion())
	return 0
}

// runNoArgs handles the case when the CLI is invoked without arguments.
func runNoArgs(out io.Writer) int {
	console := ui.New(out)
	cmd := cliName()
	console.Info("Usage:")
	console.Info(fmt.Sprintf("  %s [--project <alias>] discover [--output summary|yaml]", cmd))
	console.Info(fmt.Sprintf("  %s [--project <alias>] export-config [--all] [--prefix <PREFIX>] [--force]", cmd))
	console.Info("")
	console.Info(fmt.Sprintf("Try: %s --help", cmd))
	return 0
}

// handleParseError provides user-friendly error messages for parse failures.
func handleParseError(err error, out io.Writer) int {
	msg := err.Error()
	if strings.Contains(msg, "expected string value") || strings.Contains(msg, "expected value") {
		console := ui.New(out)
		cmd := cliName()
		switch {
		case strings.Contains(msg, "--project"):
			console.Warn("`-P/--project` expects a value. Provide an alias or a project id.")
			console.Info(fmt.Sprintf("Example: %s --project prod discover", cmd))
			return 1
		case strings.Contains(msg, "--env-file"):
			console.Warn("`--env-file` expects a value. Provide a file path.")
			console.Info(fmt.Sprintf("Example: %s --env-file .env.local discover", cmd))
			return 1
		}
	}
	return exitWithError(out, err)
}
