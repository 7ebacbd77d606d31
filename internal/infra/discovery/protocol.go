// Where: fnctl/internal/infra/discovery/protocol.go
// What: Discovery request/response contract and message decoding.
// Why: Validate untrusted runner output once, at the boundary, before it reaches the builder.
package discovery

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/poruru/edge-serverless-box/fnctl/internal/domain/annotation"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Environment variables handed to the discovery runner.
const (
	EnvProjectID     = "GCLOUD_PROJECT"
	EnvRuntimeConfig = "CLOUD_RUNTIME_CONFIG"
)

// Request carries the inputs of one discovery run.
type Request struct {
	ProjectID    string
	SourceDir    string
	ConfigValues map[string]any
	Envs         map[string]string
}

// Adapter extracts raw trigger annotations from a functions source directory.
type Adapter interface {
	Discover(ctx context.Context, req Request) ([]annotation.RawTriggerAnnotation, error)
}

// AdapterFunc adapts a function to the Adapter interface.
type AdapterFunc func(ctx context.Context, req Request) ([]annotation.RawTriggerAnnotation, error)

func (f AdapterFunc) Discover(ctx context.Context, req Request) ([]annotation.RawTriggerAnnotation, error) {
	return f(ctx, req)
}

// Message is the single terminal message a runner prints.
type Message struct {
	Triggers []annotation.RawTriggerAnnotation `json:"triggers,omitempty"`
	Error    *string                           `json:"error,omitempty"`
}

//go:embed schema/discovery.schema.json
var schemaJSON []byte

const schemaURL = "discovery.schema.json"

var (
	schemaOnce     sync.Once
	schemaErr      error
	compiledSchema *jsonschema.Schema
)

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("load discovery schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

// DecodeMessage validates a raw runner message against the discovery schema
// and decodes it.
func DecodeMessage(payload []byte) (Message, error) {
	sch, err := loadSchema()
	if err != nil {
		return Message{}, err
	}

	var document any
	if err := json.Unmarshal(payload, &document); err != nil {
		return Message{}, fmt.Errorf("decode discovery message: %w", err)
	}
	if err := sch.Validate(document); err != nil {
		return Message{}, fmt.Errorf("invalid discovery message: %w", err)
	}

	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, fmt.Errorf("decode discovery message: %w", err)
	}
	return msg, nil
}

// Result converts a decoded message into the adapter return values.
func (m Message) Result() ([]annotation.RawTriggerAnnotation, error) {
	if m.Error != nil {
		return nil, &DiscoveryError{Message: *m.Error}
	}
	if m.Triggers == nil {
		return []annotation.RawTriggerAnnotation{}, nil
	}
	return m.Triggers, nil
}

// lastMessage scans runner output from the end for the terminal JSON message.
// Runners may log freely before it, so only the last non-empty line counts.
func lastMessage(output []byte) ([]byte, bool) {
	lines := bytes.Split(bytes.TrimSpace(output), []byte("\n"))
	for i := len(lines) - 1; i >= 0; i-- {
		line := bytes.TrimSpace(lines[i])
		if len(line) == 0 {
			continue
		}
		if line[0] != '{' {
			return nil, false
		}
		return line, true
	}
	return nil, false
}

func runtimeConfigJSON(values map[string]any) (string, error) {
	if values == nil {
		values = map[string]any{}
	}
	payload, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("encode runtime config: %w", err)
	}
	return string(payload), nil
}

// ContextError reports a cancelled or expired ctx as a DiscoveryError; nil otherwise.
func ContextError(ctx context.Context) error {
	err := ctx.Err()
	if err == nil {
		return nil
	}
	msg := "discovery was cancelled"
	if errors.Is(err, context.DeadlineExceeded) {
		msg = "discovery timed out"
	}
	return &DiscoveryError{Message: msg, Err: err}
}
