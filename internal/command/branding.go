// Where: fnctl/internal/command/branding.go
// What: CLI naming.
// Why: Keep user-facing command names consistent when wrapped by other tools.
package command

import (
	"os"
	"strings"

	"github.com/poruru/edge-serverless-box/fnctl/internal/meta"
)

func cliName() string {
	name := strings.TrimSpace(os.Getenv("CLI_CMD"))
	if name == "" {
		name = meta.AppName
	}
	return name
}
