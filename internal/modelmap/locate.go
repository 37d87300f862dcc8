package modelmap

import (
	"os"
	"path/filepath"
)

// ModelsFileName is the expected name of the external mapping file.
const ModelsFileName = "models.yml"

// SearchPaths returns the candidate locations for models.yml in priority
// order: three directory levels above the installed binary, the fixed
// container deployment path, then the current working directory.
func SearchPaths() []string {
	paths := make([]string, 0, 3)

	if exe, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(exe), "..", "..", "..", ModelsFileName))
	}

	paths = append(paths, filepath.Join("/app", ModelsFileName))
	paths = append(paths, ModelsFileName)

	return paths
}

// Locate returns the first candidate path that exists as a regular file.
// A stat failure of any kind counts as "does not exist"; Locate never errors.
func Locate(paths []string) (string, bool) {
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, true
		}
	}

	return "", false
}
