package cli

import (
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/pdxlint/config"
)

// settingsResolver is a [kong.Resolver] supplying flag values from project
// settings. Command-line flags override them.
//
// Flag names with hyphens are also looked up with underscores, so
// "debounce" and "debounce_ms" style keys both match.
type settingsResolver map[string]any

func newSettingsResolver(s *config.Settings) settingsResolver {
	r := settingsResolver{
		"fallback": s.Fallback,
		"debounce": strconv.Itoa(s.DebounceMS),
	}

	if s.Index != "" {
		r["index"] = s.Path(s.Index)
	}

	return r
}

// Validate implements [kong.Resolver].
func (settingsResolver) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (r settingsResolver) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if value, ok := r[flag.Name]; ok {
		return value, nil
	}

	if value, ok := r[strings.ReplaceAll(flag.Name, "-", "_")]; ok {
		return value, nil
	}

	return nil, nil //nolint:nilnil
}
