// Where: fnctl/internal/domain/envkey/envkey.go
// What: Validation rules for function environment variable keys.
// Why: Reject keys the functions runtime reserves or cannot represent.
package envkey

import (
	"fmt"
	"regexp"
	"strings"
)

// KeyValidationError reports a key that cannot be used as an environment variable.
type KeyValidationError struct {
	Key     string
	Message string
}

func (e *KeyValidationError) Error() string {
	return e.Message
}

var keyPattern = regexp.MustCompile(`^[A-Z_][A-Z0-9_]*$`)

// ReservedKeys are set by the runtime and cannot be overridden.
var ReservedKeys = []string{
	"FIREBASE_CONFIG",
	"CLOUD_RUNTIME_CONFIG",
	"EVENTARC_CLOUD_EVENT_SOURCE",
	"ENTRY_POINT",
	"GCP_PROJECT",
	"GCLOUD_PROJECT",
	"GOOGLE_CLOUD_PROJECT",
	"FUNCTION_TRIGGER_TYPE",
	"FUNCTION_NAME",
	"FUNCTION_MEMORY_MB",
	"FUNCTION_TIMEOUT_SEC",
	"FUNCTION_IDENTITY",
	"FUNCTION_REGION",
	"FUNCTION_TARGET",
	"FUNCTION_SIGNATURE_TYPE",
	"K_SERVICE",
	"K_REVISION",
	"PORT",
	"K_CONFIGURATION",
}

// ReservedPrefixes are namespaces owned by the platform.
var ReservedPrefixes = []string{"X_GOOGLE_", "FIREBASE_", "EXT_"}

// Validate returns a *KeyValidationError when key is not usable.
func Validate(key string) error {
	for _, reserved := range ReservedKeys {
		if key == reserved {
			return &KeyValidationError{
				Key:     key,
				Message: fmt.Sprintf("Key %s is reserved for internal use.", key),
			}
		}
	}
	if !keyPattern.MatchString(key) {
		return &KeyValidationError{
			Key: key,
			Message: fmt.Sprintf(
				"Key %s must start with an uppercase ASCII letter or underscore"+
					", and then consist of uppercase ASCII letters, digits, and underscores.",
				key,
			),
		}
	}
	for _, prefix := range ReservedPrefixes {
		if strings.HasPrefix(key, prefix) {
			return &KeyValidationError{
				Key: key,
				Message: fmt.Sprintf(
					"Key %s starts with a reserved prefix (%s)",
					key,
					strings.Join(ReservedPrefixes, " "),
				),
			}
		}
	}
	return nil
}
