//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

// Version is the semantic version of the pdxlint module embedded at build
// time. It is printed by the CLI when users pass --version.
//
//go:embed VERSION
var version string

// Version returns the embedded semantic version with surrounding whitespace
// removed.
func Version() string { return strings.TrimSpace(version) }

const (
	// Name is the canonical command and module identifier used across the
	// project. For example, it appears in help text, default config paths and
	// the environment variable prefix.
	Name = "pdxlint"
	// Description is a short, human-readable summary of the project used in
	// help output and documentation.
	Description = "Semantic analyzer for grand-strategy mod scripts"
	// SettingsFile is the base name of the per-project settings file.
	SettingsFile = ".pdxlint.json"
	// EnvPrefix prefixes every environment variable read as a setting.
	EnvPrefix = "PDXLINT_"
)

// AuthorInfo represents an individual author's name and email address.
type AuthorInfo struct {
	// Name is the author's preferred name or handle.
	Name string
	// Email is the author's contact email address.
	Email string
}

// Author lists the primary author(s) of the project for display in metadata.
//
//nolint:gochecknoglobals
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
