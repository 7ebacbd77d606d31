// Where: fnctl/internal/infra/envfile/envfile.go
// What: Load user-defined function environment files from a source directory.
// Why: Seed each discovered backend with the env vars its functions will receive.
package envfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/poruru/edge-serverless-box/fnctl/internal/domain/envkey"
	"github.com/poruru/edge-serverless-box/fnctl/internal/infra/fileops"
)

// FileName returns the env file name targeting an alias or project id.
// An empty target names the shared .env file.
func FileName(target string) string {
	if target == "" {
		return ".env"
	}
	return ".env." + target
}

// Load reads .env, then .env.<projectID> or .env.<alias>, from sourceDir.
// Later files override earlier ones. Missing files are skipped; having both
// a project-id file and an alias file is ambiguous and rejected.
func Load(sourceDir, projectID, alias string) (map[string]string, []string, error) {
	files := []string{FileName("")}
	projectFile := FileName(projectID)
	aliasFile := ""
	if alias != "" && alias != projectID {
		aliasFile = FileName(alias)
	}
	projectExists := fileops.FileExists(filepath.Join(sourceDir, projectFile))
	aliasExists := aliasFile != "" && fileops.FileExists(filepath.Join(sourceDir, aliasFile))
	if projectExists && aliasExists {
		return nil, nil, fmt.Errorf(
			"can't have both dotenv files %s and %s; merge them into one",
			projectFile,
			aliasFile,
		)
	}
	if projectExists {
		files = append(files, projectFile)
	}
	if aliasExists {
		files = append(files, aliasFile)
	}

	envs := map[string]string{}
	var loaded []string
	for _, name := range files {
		path := filepath.Join(sourceDir, name)
		values, err := godotenv.Read(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, nil, fmt.Errorf("read %s: %w", name, err)
		}
		if err := validateKeys(name, values); err != nil {
			return nil, nil, err
		}
		for key, val := range values {
			envs[key] = val
		}
		loaded = append(loaded, name)
	}
	return envs, loaded, nil
}

func validateKeys(file string, values map[string]string) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var problems []string
	for _, key := range keys {
		if err := envkey.Validate(key); err != nil {
			problems = append(problems, err.Error())
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("invalid keys in %s:\n  %s", file, strings.Join(problems, "\n  "))
}

