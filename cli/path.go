package cli

import (
	"os"
	"path/filepath"

	"github.com/ardnew/tangle/pkg"
)

const (
	// baseConfig is the base name of the configuration files.
	baseConfig = "config"
	// extrasDir holds the executables shell locators may run.
	extrasDir = "extras"
)

// defaultDirMode is the permission mode of created directories.
var defaultDirMode os.FileMode = 0o700

// configPath returns the path formed by joining the configuration directory
// with elem.
func configPath(elem ...string) string {
	return filepath.Join(append([]string{pkg.ConfigDir()}, elem...)...)
}

// mkdirAllRequired creates the configuration and cache directories.
func mkdirAllRequired() error {
	for _, dir := range []string{pkg.ConfigDir(), pkg.CacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}
