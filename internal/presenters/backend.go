// Where: fnctl/internal/presenters/backend.go
// What: Render discovered backends for humans and for machines.
// Why: Keep formatting out of the discover command and the domain types.
package presenters

import (
	"bytes"
	"embed"
	"fmt"
	"sort"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"gopkg.in/yaml.v3"

	"github.com/poruru/edge-serverless-box/fnctl/internal/domain/backend"
	"github.com/poruru/edge-serverless-box/fnctl/internal/infra/ui"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	summaryOnce sync.Once
	summaryTmpl *template.Template
	summaryErr  error
)

type summaryData struct {
	Project   string
	Functions []backend.FunctionSpec
	Regions   []regionSummary
	Schedules []scheduleSummary
	APIs      []string
	EnvKeys   []string
}

type regionSummary struct {
	Name      string
	Functions []functionSummary
}

type scheduleSummary struct {
	ID       string
	Schedule string
	TimeZone string
}

type functionSummary struct {
	ID     string
	Kind   string
	Detail string
}

// RenderSummary renders a region-grouped text summary of b.
func RenderSummary(b *backend.Backend) (string, error) {
	summaryOnce.Do(func() {
		summaryTmpl, summaryErr = template.New("summary.tmpl").
			Funcs(sprig.TxtFuncMap()).
			ParseFS(templateFS, "templates/summary.tmpl")
	})
	if summaryErr != nil {
		return "", summaryErr
	}
	if b == nil {
		b = backend.Empty()
	}

	var buf bytes.Buffer
	if err := summaryTmpl.Execute(&buf, buildSummary(b)); err != nil {
		return "", fmt.Errorf("render summary: %w", err)
	}
	return buf.String(), nil
}

func buildSummary(b *backend.Backend) summaryData {
	data := summaryData{
		Functions: b.Functions,
		APIs:      sortedValues(b.RequiredAPIs),
		EnvKeys:   sortedKeys(b.EnvironmentVariables),
	}
	index := map[string]int{}
	for _, fn := range b.Functions {
		if data.Project == "" {
			data.Project = fn.Project
		}
		pos, ok := index[fn.Region]
		if !ok {
			pos = len(data.Regions)
			index[fn.Region] = pos
			data.Regions = append(data.Regions, regionSummary{Name: fn.Region})
		}
		data.Regions[pos].Functions = append(data.Regions[pos].Functions, functionSummary{
			ID:     fn.ID,
			Kind:   backend.TriggerKind(fn.Trigger),
			Detail: triggerDetail(fn.Trigger),
		})
	}
	for _, sched := range b.Schedules {
		summary := scheduleSummary{ID: sched.ID, Schedule: sched.Schedule}
		if sched.TimeZone != nil {
			summary.TimeZone = *sched.TimeZone
		}
		data.Schedules = append(data.Schedules, summary)
	}
	sort.SliceStable(data.Regions, func(i, j int) bool {
		return data.Regions[i].Name < data.Regions[j].Name
	})
	return data
}

func triggerDetail(trigger backend.Trigger) string {
	switch t := trigger.(type) {
	case backend.HTTPSTrigger:
		if t.AllowInsecure {
			return "allowInsecure"
		}
		return "secure"
	case backend.EventTrigger:
		detail := t.EventType
		if resource := t.EventFilters[backend.EventFilterResource]; resource != "" {
			detail += " on " + resource
		}
		if t.Retry {
			detail += " (retry)"
		}
		return detail
	}
	return ""
}

// functionView exposes the trigger, which FunctionSpec does not serialize.
type functionView struct {
	backend.FunctionSpec `yaml:",inline"`

	HTTPSTrigger *backend.HTTPSTrigger `yaml:"httpsTrigger,omitempty"`
	EventTrigger *backend.EventTrigger `yaml:"eventTrigger,omitempty"`
}

type backendView struct {
	Functions            []functionView         `yaml:"cloudFunctions"`
	Schedules            []backend.ScheduleSpec `yaml:"schedules"`
	Topics               []backend.PubSubSpec   `yaml:"topics"`
	RequiredAPIs         map[string]string      `yaml:"requiredAPIs"`
	EnvironmentVariables map[string]string      `yaml:"environmentVariables"`
}

// MarshalYAML renders the whole backend, triggers included, as YAML.
func MarshalYAML(b *backend.Backend) ([]byte, error) {
	if b == nil {
		b = backend.Empty()
	}
	view := backendView{
		Functions:            make([]functionView, 0, len(b.Functions)),
		Schedules:            nonNil(b.Schedules),
		Topics:               nonNil(b.Topics),
		RequiredAPIs:         b.RequiredAPIs,
		EnvironmentVariables: b.EnvironmentVariables,
	}
	for _, fn := range b.Functions {
		fv := functionView{FunctionSpec: fn}
		switch t := fn.Trigger.(type) {
		case backend.HTTPSTrigger:
			fv.HTTPSTrigger = &t
		case backend.EventTrigger:
			fv.EventTrigger = &t
		}
		view.Functions = append(view.Functions, fv)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(view); err != nil {
		return nil, fmt.Errorf("encode backend: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode backend: %w", err)
	}
	return buf.Bytes(), nil
}

// PrintBackendCounts displays resource counts of a discovered backend.
func PrintBackendCounts(out ui.UserInterface, b *backend.Backend) {
	if out == nil || b == nil {
		return
	}
	out.Block("📦", "Discovered backend:", []ui.KeyValue{
		{Key: "Functions", Value: len(b.Functions)},
		{Key: "Schedules", Value: len(b.Schedules)},
		{Key: "Topics", Value: len(b.Topics)},
		{Key: "Required APIs", Value: len(b.RequiredAPIs)},
		{Key: "Environment variables", Value: len(b.EnvironmentVariables)},
	})
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func sortedValues(m map[string]string) []string {
	values := make([]string, 0, len(m))
	for _, value := range m {
		values = append(values, value)
	}
	sort.Strings(values)
	return values
}
