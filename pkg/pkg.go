// Package pkg holds the identity of the tangle module and the helpers its
// packages share: user directories and chained errors.
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version returns the semantic version embedded at build time.
func Version() string { return strings.TrimSpace(version) }

const (
	// Name is the command name. It also names the configuration and cache
	// directories.
	Name = "tangle"
	// Description is the one-line summary shown in help output.
	Description = "Literate programming tangler"
)

// AuthorInfo is one author of the module.
type AuthorInfo struct {
	Name  string
	Email string
}

// Author lists the module authors.
//
//nolint:gochecknoglobals
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
