// Where: fnctl/internal/usecase/exportconfig/exportconfig.go
// What: Export runtime config snapshots as per-project dotenv files.
// Why: Migrate nested runtime config into env files the functions load at deploy.
package exportconfig

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/poruru/edge-serverless-box/fnctl/internal/domain/envexport"
	"github.com/poruru/edge-serverless-box/fnctl/internal/infra/config"
	"github.com/poruru/edge-serverless-box/fnctl/internal/infra/configstore"
	"github.com/poruru/edge-serverless-box/fnctl/internal/infra/envfile"
	"github.com/poruru/edge-serverless-box/fnctl/internal/infra/fileops"
	"github.com/poruru/edge-serverless-box/fnctl/internal/infra/interaction"
	"github.com/poruru/edge-serverless-box/fnctl/internal/infra/ui"
)

// DefaultPrefix is suggested when keys need a prefix to become valid.
const DefaultPrefix = "CONFIG_"

const defaultConcurrency = 4

var (
	errSourceNotConfigured = errors.New("config source is not configured")
	errNoTargets           = errors.New("no projects to export")
	errEmptyPrefix         = errors.New("prefix is required to rename invalid keys")
)

// InvalidKeysError lists config keys that could not become env keys.
type InvalidKeysError struct {
	Keys []string
}

func (e *InvalidKeysError) Error() string {
	return fmt.Sprintf("invalid environment variable keys: %s", strings.Join(e.Keys, ", "))
}

// Request captures the inputs of one export.
type Request struct {
	Targets   []config.Target
	SourceDir string
	Prefix    string
	Force     bool
}

// FileResult describes the env file produced for one target.
type FileResult struct {
	Target  config.Target
	Path    string
	Entries int
	Skipped bool
}

// Result is the outcome of an export, ordered like Request.Targets.
type Result struct {
	Prefix string
	Files  []FileResult
}

// Workflow exports runtime config for a batch of projects.
type Workflow struct {
	Source      configstore.Source
	Prompter    interaction.Prompter
	UI          ui.UserInterface
	Concurrency int
	Now         func() time.Time

	promptMu sync.Mutex
	pathMu   sync.Map
}

// NewWorkflow builds a Workflow. A nil prompter makes the workflow
// non-interactive.
func NewWorkflow(source configstore.Source, prompter interaction.Prompter, out ui.UserInterface) *Workflow {
	return &Workflow{
		Source:      source,
		Prompter:    prompter,
		UI:          out,
		Concurrency: defaultConcurrency,
		Now:         time.Now,
	}
}

type translated struct {
	target  config.Target
	configs map[string]any
	result  envexport.ConfigToEnvResult
}

// Run materializes, translates, and writes the env file of every target.
func (w *Workflow) Run(ctx context.Context, req Request) (Result, error) {
	if w.Source == nil {
		return Result{}, errSourceNotConfigured
	}
	if len(req.Targets) == 0 {
		return Result{}, errNoTargets
	}

	batch, err := w.materialize(ctx, req.Targets)
	if err != nil {
		return Result{}, err
	}

	prefix := req.Prefix
	for {
		if err := translate(batch, prefix); err != nil {
			return Result{}, err
		}
		invalid := invalidKeys(batch)
		if len(invalid) == 0 {
			break
		}
		w.reportInvalid(batch)
		if w.Prompter == nil {
			return Result{}, &InvalidKeysError{Keys: invalid}
		}
		next, err := w.askPrefix(prefix)
		if err != nil {
			return Result{}, err
		}
		prefix = next
	}

	header := fmt.Sprintf(
		"# Exported from runtime config on %s",
		w.now().UTC().Format(time.RFC3339),
	)
	files := make([]FileResult, len(batch))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency())
	for i := range batch {
		item := batch[i]
		g.Go(func() error {
			res, err := w.write(gctx, req, item, header)
			if err != nil {
				return err
			}
			files[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	return Result{Prefix: prefix, Files: files}, nil
}

func (w *Workflow) materialize(ctx context.Context, targets []config.Target) ([]*translated, error) {
	batch := make([]*translated, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency())
	for i, target := range targets {
		g.Go(func() error {
			configs, err := w.Source.Materialize(gctx, target.ProjectID)
			if err != nil {
				return fmt.Errorf("materialize config for %s: %w", target.Name(), err)
			}
			batch[i] = &translated{target: target, configs: configs}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return batch, nil
}

func translate(batch []*translated, prefix string) error {
	for _, item := range batch {
		result, err := envexport.ConfigToEnv(item.configs, prefix)
		if err != nil {
			return fmt.Errorf("convert config for %s: %w", item.target.Name(), err)
		}
		item.result = result
	}
	return nil
}

func invalidKeys(batch []*translated) []string {
	seen := map[string]struct{}{}
	for _, item := range batch {
		for _, e := range item.result.Errors {
			seen[e.OrigKey] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (w *Workflow) reportInvalid(batch []*translated) {
	if w.UI == nil {
		return
	}
	for _, item := range batch {
		if len(item.result.Errors) == 0 {
			continue
		}
		rows := make([]ui.KeyValue, 0, len(item.result.Errors))
		for _, e := range item.result.Errors {
			rows = append(rows, ui.KeyValue{Key: e.OrigKey, Value: fmt.Sprintf("%s (%s)", e.NewKey, e.Err)})
		}
		w.UI.Block("⚠️", fmt.Sprintf("Invalid keys for %s", item.target.Name()), rows)
	}
}

func (w *Workflow) askPrefix(current string) (string, error) {
	w.promptMu.Lock()
	defer w.promptMu.Unlock()
	suggestions := []string{DefaultPrefix}
	if current != "" && current != DefaultPrefix {
		suggestions = append([]string{current}, suggestions...)
	}
	input, err := w.Prompter.Input("Enter a prefix to rename invalid environment variable keys", suggestions)
	if err != nil {
		return "", err
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return "", errEmptyPrefix
	}
	return input, nil
}

func (w *Workflow) write(ctx context.Context, req Request, item *translated, header string) (FileResult, error) {
	path := filepath.Join(req.SourceDir, envfile.FileName(item.target.Name()))
	res := FileResult{Target: item.target, Path: path, Entries: len(item.result.Success)}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	unlock := w.lockPath(path)
	defer unlock()

	if fileops.FileExists(path) && !req.Force {
		overwrite, err := w.confirmOverwrite(path)
		if err != nil {
			return res, err
		}
		if !overwrite {
			if w.UI != nil {
				w.UI.Warn(fmt.Sprintf("Skipped %s: file already exists (use --force to overwrite)", path))
			}
			res.Skipped = true
			return res, nil
		}
	}

	content := envexport.ToDotenvFormat(item.result.Success, header) + "\n"
	if err := fileops.WriteFile(path, content, 0o644); err != nil {
		return res, fmt.Errorf("write env file: %w", err)
	}
	if w.UI != nil {
		w.UI.Success(fmt.Sprintf("Wrote %s (%d keys)", path, res.Entries))
	}
	return res, nil
}

func (w *Workflow) confirmOverwrite(path string) (bool, error) {
	if w.Prompter == nil {
		return false, nil
	}
	w.promptMu.Lock()
	defer w.promptMu.Unlock()
	return w.Prompter.Confirm(fmt.Sprintf("Overwrite %s?", path))
}

func (w *Workflow) lockPath(path string) func() {
	value, _ := w.pathMu.LoadOrStore(path, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (w *Workflow) concurrency() int {
	if w.Concurrency <= 0 {
		return defaultConcurrency
	}
	return w.Concurrency
}

func (w *Workflow) now() time.Time {
	if w.Now == nil {
		return time.Now()
	}
	return w.Now()
}
