// Where: fnctl/internal/command/error_helpers.go
// What: Shared CLI error output.
// Why: Keep command failures rendered the same way everywhere.
package command

import (
	"fmt"
	"io"

	"github.com/poruru/edge-serverless-box/fnctl/internal/infra/ui"
)

// exitWithError prints an error message to the output writer and returns
// exit code 1 for CLI error handling.
func exitWithError(out io.Writer, err error) int {
	ui.New(out).Info(fmt.Sprintf("✗ %v", err))
	return 1
}
