// Where: fnctl/internal/infra/config/repo.go
// What: Project root discovery logic.
// Why: Centralize logic to find the functions project root from env or file system.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/poruru/edge-serverless-box/fnctl/internal/envutil"
	"github.com/poruru/edge-serverless-box/fnctl/internal/meta"
)

// HostSuffixProject names the env override for the project root (FNCTL_PROJECT_ROOT).
const HostSuffixProject = "PROJECT_ROOT"

var errProjectRootNotFound = errors.New("project root not found")

// projectMarkers identify a project root directory.
var projectMarkers = []string{
	meta.HomeDir,
	"firebase.json",
}

// ResolveProjectRoot determines the project root path.
// Priority order.
// 1. Brand-prefixed PROJECT_ROOT environment variable (searched upward).
// 2. Upward search for a project marker from startDir.
func ResolveProjectRoot(startDir string) (string, error) {
	if root := strings.TrimSpace(envutil.GetHostEnv(HostSuffixProject)); root != "" {
		if found, ok := findProjectRoot(root); ok {
			return found, nil
		}
		return "", fmt.Errorf("%w at %s", errProjectRootNotFound, root)
	}

	if startDir != "" {
		if root, ok := findProjectRoot(startDir); ok {
			return root, nil
		}
	}

	return "", fmt.Errorf(
		"%w: run inside a project or set %s",
		errProjectRootNotFound,
		envutil.HostEnvKey(HostSuffixProject),
	)
}

// findProjectRoot searches upward from the given path to find
// a directory containing one of projectMarkers.
func findProjectRoot(path string) (string, bool) {
	dir, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}

	for {
		for _, marker := range projectMarkers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false
}
