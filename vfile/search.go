package vfile

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ardnew/mung"
)

// PathEnv names the environment variable holding the search path.
const PathEnv = "TANGLE_PATH"

// searchPath returns dirs followed by the entries of the path list env,
// keeping only existing directories, each once.
func searchPath(env string, dirs ...string) []string {
	list := mung.Make(
		mung.WithSubjectItems(env),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(dirs...),
	).String()

	var out []string

	seen := make(map[string]bool)

	for _, dir := range strings.Split(list, string(os.PathListSeparator)) {
		if dir == "" {
			continue
		}

		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}

		if seen[dir] {
			continue
		}

		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}

		seen[dir] = true
		out = append(out, dir)
	}

	return out
}
