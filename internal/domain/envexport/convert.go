// Where: fnctl/internal/domain/envexport/convert.go
// What: Translate runtime config keys into environment variable keys.
// Why: Let legacy nested runtime config be exported as flat env files.
package envexport

import (
	"errors"
	"fmt"
	"strings"

	"github.com/poruru/edge-serverless-box/fnctl/internal/domain/envkey"
	"github.com/poruru/edge-serverless-box/fnctl/internal/domain/value"
)

var validateKey = envkey.Validate

// ConfigToEnvEntry is one converted config leaf.
type ConfigToEnvEntry struct {
	OrigKey string
	NewKey  string
	Value   string
}

// ConfigToEnvError is a config leaf whose key could not be converted.
type ConfigToEnvError struct {
	OrigKey string
	NewKey  string
	Err     string
	Value   string
}

// ConfigToEnvResult separates converted leaves from rejected ones.
type ConfigToEnvResult struct {
	Success []ConfigToEnvEntry
	Errors  []ConfigToEnvError
}

// UnexpectedError wraps a failure that is not a key validation problem.
type UnexpectedError struct {
	Key string
	Err error
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("unexpected error while converting config key %s: %v", e.Key, e.Err)
}

func (e *UnexpectedError) Unwrap() error {
	return e.Err
}

// ConvertKey maps a dotted config key to an env key, retrying once with prefix
// when the plain form is rejected. A second rejection is returned as-is and
// carries the prefixed key.
func ConvertKey(configKey, prefix string) (string, error) {
	envKey := strings.ToUpper(configKey)
	envKey = strings.ReplaceAll(envKey, ".", "_")
	envKey = strings.ReplaceAll(envKey, "-", "_")

	err := validateKey(envKey)
	if err == nil {
		return envKey, nil
	}
	var validation *envkey.KeyValidationError
	if !errors.As(err, &validation) {
		return "", err
	}

	envKey = prefix + envKey
	if err := validateKey(envKey); err != nil {
		return "", err
	}
	return envKey, nil
}

// ConfigToEnv flattens configs and converts every leaf key. Rejected keys are
// collected; any other failure aborts the whole conversion.
func ConfigToEnv(configs map[string]any, prefix string) (ConfigToEnvResult, error) {
	result := ConfigToEnvResult{
		Success: []ConfigToEnvEntry{},
		Errors:  []ConfigToEnvError{},
	}
	for _, leaf := range value.Flatten(configs) {
		envKey, err := ConvertKey(leaf.Key, prefix)
		if err == nil {
			result.Success = append(result.Success, ConfigToEnvEntry{
				OrigKey: leaf.Key,
				NewKey:  envKey,
				Value:   leaf.Value,
			})
			continue
		}
		var validation *envkey.KeyValidationError
		if !errors.As(err, &validation) {
			return ConfigToEnvResult{}, &UnexpectedError{Key: leaf.Key, Err: err}
		}
		result.Errors = append(result.Errors, ConfigToEnvError{
			OrigKey: leaf.Key,
			NewKey:  validation.Key,
			Err:     validation.Message,
			Value:   leaf.Value,
		})
	}
	return result, nil
}
