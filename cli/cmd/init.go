package cmd

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/pdxlint/config"
	"github.com/ardnew/pdxlint/log"
	"github.com/ardnew/pdxlint/pkg"
	"github.com/ardnew/pdxlint/profile"
)

// Init writes a default project settings file, or with --global the user
// configuration holding the current flag values.
type Init struct {
	Dir    string `arg:"" default:"." help:"Project root"                                    optional:"" type:"existingdir"`
	Force  bool   `help:"Overwrite an existing file"                                         short:"f"`
	Global bool   `help:"Write the user configuration file instead of project settings"      short:"g"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	path := filepath.Join(i.Dir, pkg.SettingsFile)

	var data []byte

	if i.Global {
		ktx := kongContextFrom(ctx)
		if ktx == nil {
			return ErrWriteConfig.Wrap(os.ErrInvalid)
		}

		path = ktx.Model.Vars()[ConfigIdentifier]
		data, err = json.MarshalIndent(i.flagValues(ktx), "", "  ")
		data = append(data, '\n')
	} else {
		data, err = config.DefaultJSON()
	}

	if err != nil {
		return ErrWriteConfig.With(slog.String("file", path)).Wrap(err)
	}

	// Check if file exists and force not set
	_, err = os.Stat(path)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", path)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return ErrWriteConfig.With(slog.String("file", path)).Wrap(err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec
		return ErrWriteConfig.With(slog.String("file", path)).Wrap(err)
	}

	log.DebugContext(ctx, "initialized configuration file", slog.String("path", path))

	return nil
}

// flagValues collects the set, non-empty global flag values keyed by flag
// name, as read back by the JSON configuration loader.
func (i *Init) flagValues(ktx *kong.Context) map[string]any {
	values := map[string]any{}

	prefixIgnore := []string{"help", "version", profile.Tag}

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(prefixIgnore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		switch v := ktx.FlagValue(flag).(type) {
		case nil:
		case string:
			if v != "" {
				values[flag.Name] = v
			}
		case []string:
			if len(v) > 0 {
				values[flag.Name] = v
			}
		default:
			values[flag.Name] = v
		}
	}

	return values
}
