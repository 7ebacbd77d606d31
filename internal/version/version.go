// Where: fnctl/internal/version/version.go
// What: Version information retrieval.
// Why: Provide release or build-time VCS version information to the CLI.
package version

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// Version is set at release time via -ldflags "-X .../internal/version.Version=v1.2.3".
var Version = ""

var readBuildInfo = debug.ReadBuildInfo

// GetVersion returns the release version when set. Otherwise it returns the
// short VCS revision from build info, suffixed with "(dirty)" for modified
// trees, or "dev" when no revision is recorded.
func GetVersion() string {
	if v := strings.TrimSpace(Version); v != "" {
		return v
	}

	info, ok := readBuildInfo()
	if !ok {
		return "dev"
	}

	var revision string
	var modified bool

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
			if len(revision) > 7 {
				revision = revision[:7]
			}
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}

	if revision == "" {
		return "dev"
	}
	if modified {
		return fmt.Sprintf("%s (dirty)", revision)
	}
	return revision
}
