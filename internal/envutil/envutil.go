// Where: fnctl/internal/envutil/envutil.go
// What: Host-level FNCTL_* variable lookup.
// Why: Let CI and wrappers override project config without editing .fnctl/config.yaml.
package envutil

import (
	"os"
	"strings"

	"github.com/poruru/edge-serverless-box/fnctl/internal/meta"
)

// hostPrefix is ENV_PREFIX when set, so a rebranded build reads its own
// variables, else meta.EnvPrefix.
func hostPrefix() string {
	if prefix := strings.TrimSpace(os.Getenv("ENV_PREFIX")); prefix != "" {
		return strings.TrimSuffix(strings.ToUpper(prefix), "_")
	}
	return meta.EnvPrefix
}

// HostEnvKey returns the variable name for suffix, e.g. FNCTL_DISCOVERY_MODE.
func HostEnvKey(suffix string) string {
	return hostPrefix() + "_" + suffix
}

// GetHostEnv returns the trimmed value of HostEnvKey(suffix). Whitespace-only
// values count as unset.
func GetHostEnv(suffix string) string {
	return strings.TrimSpace(os.Getenv(HostEnvKey(suffix)))
}
