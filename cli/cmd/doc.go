// Package cmd implements the pdxlint subcommands: check, watch, schema and
// init.
//
// Commands receive everything beyond their own flags through the context:
// the parsed kong context ([WithContext]), the project settings
// ([WithSettings]) and the standard streams ([WithStreams]).
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path of
	// the user configuration file.
	ConfigIdentifier = "config"
)
