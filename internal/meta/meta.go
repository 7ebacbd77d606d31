// Where: fnctl/internal/meta/meta.go
// What: CLI-local metadata constants.
// Why: Keep naming of files, env vars, and labels in one place.
package meta

const (
	// Project Identity
	AppName   = "fnctl"
	EnvPrefix = "FNCTL"

	// Directory Layout
	HomeDir        = ".fnctl"
	ConfigFileName = "config.yaml"
	DefaultSource  = "functions"
)
