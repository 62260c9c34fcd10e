package pkg

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// Prefix returns the base name of the running executable without its
// extension. A debugger build ("__debug_bin123") is reported as [Name] and
// leading dots are removed.
//
//nolint:gochecknoglobals
var Prefix = sync.OnceValue(func() string {
	exe := os.Args[0]
	if p, err := os.Executable(); err == nil {
		exe = p
	}

	return prefixOf(exe)
})

var debugBin = regexp.MustCompile(`^__debug_bin\d*$`)

func prefixOf(exe string) string {
	base := strings.TrimLeft(filepath.Base(exe), ".")
	base = strings.TrimSuffix(base, filepath.Ext(base))

	if base == "" || debugBin.MatchString(base) {
		return Name
	}

	return base
}

// ConfigDir returns the per-user configuration directory of the command,
// $XDG_CONFIG_HOME/tangle on Linux.
//
//nolint:gochecknoglobals
var ConfigDir = sync.OnceValue(func() string {
	return userDir(os.UserConfigDir, ".config")
})

// CacheDir returns the per-user cache directory of the command.
//
//nolint:gochecknoglobals
var CacheDir = sync.OnceValue(func() string {
	return userDir(os.UserCacheDir, ".cache")
})

// userDir joins [Prefix] to the directory reported by base, falling back
// to hidden under the home directory and then to the working directory.
func userDir(base func() (string, error), hidden string) string {
	dir, err := base()
	if err != nil {
		if home, herr := os.UserHomeDir(); herr == nil {
			dir = filepath.Join(home, hidden)
		} else if wd, werr := os.Getwd(); werr == nil {
			dir = wd
		} else {
			dir = "."
		}
	}

	return filepath.Join(dir, Prefix())
}
