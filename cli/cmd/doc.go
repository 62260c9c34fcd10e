// Package cmd implements the subcommands of tangle: tangle, expand, list,
// dump, browse and init.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path
	// to the configuration file.
	ConfigIdentifier = "config"

	// ExtrasIdentifier is the kong variable identifier containing the
	// default directory of executables shell locators may run.
	ExtrasIdentifier = "extras"

	// FormatsIdentifier is the kong variable identifier containing the
	// comma-separated names of the input formats.
	FormatsIdentifier = "formats"
)
