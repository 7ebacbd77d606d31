// Where: fnctl/cmd/fnctl/main.go
// What: CLI entrypoint.
// Why: Execute fnctl commands with configured dependencies.
package main

import (
	"os"

	"github.com/poruru/edge-serverless-box/fnctl/internal/command"
)

func main() {
	os.Exit(command.Run(os.Args[1:], buildDependencies()))
}
