// Package config loads per-project settings.
//
// Settings are layered: built-in defaults, then the project's
// .pdxlint.json, then PDXLINT_* environment variables. For example
// PDXLINT_FALLBACK=underscore overrides "fallback" from the file, and
// PDXLINT_DISABLED=unknown-field,unexpected-bare replaces the disabled list.
// Map-valued settings (severity, kinds) can only be set in the file.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/ardnew/pdxlint/analyzer"
	"github.com/ardnew/pdxlint/diag"
	"github.com/ardnew/pdxlint/index"
	"github.com/ardnew/pdxlint/pkg"
	"github.com/ardnew/pdxlint/schema"
)

var (
	ErrLoad    = pkg.NewError("load settings")
	ErrInvalid = pkg.NewError("invalid settings")
	ErrSchema  = pkg.NewError("load schema overlay")
	ErrIndex   = pkg.NewError("load symbol index")
)

// Settings are the options of one project.
type Settings struct {
	// Index is a symbol index file (YAML or JSON).
	Index string `koanf:"index"`
	// Schema lists YAML overlays merged over the bundled knowledge base.
	Schema   []string `koanf:"schema"`
	Fallback string   `koanf:"fallback"    validate:"oneof=strict underscore"`
	Disabled []string `koanf:"disabled"    validate:"dive,rule"`
	// Severity maps rule identifiers to a severity name.
	Severity   map[string]string `koanf:"severity"    validate:"dive,keys,rule,endkeys,severity"`
	DebounceMS int               `koanf:"debounce_ms" validate:"min=0,max=60000"`
	// Kinds maps slash-separated path prefixes, relative to the project
	// root, to entity kinds. The longest matching prefix wins.
	Kinds map[string]string `koanf:"kinds" validate:"dive,keys,required,endkeys,kind"`

	// Dir is the project root that relative paths are resolved against.
	Dir string `koanf:"-"`
}

// Defaults returns the built-in settings as flat koanf keys.
func Defaults() map[string]any {
	return map[string]any{
		"index":       "",
		"schema":      []string{},
		"fallback":    analyzer.FallbackStrict.String(),
		"disabled":    []string{},
		"severity":    map[string]any{},
		"debounce_ms": 150,
		"kinds":       map[string]any{},
	}
}

// Load reads the settings of the project rooted at dir. A missing settings
// file is not an error.
func Load(dir string) (*Settings, error) {
	k := koanf.New(".")

	for key, value := range Defaults() {
		_ = k.Set(key, value)
	}

	path := filepath.Join(dir, pkg.SettingsFile)
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), kjson.Parser()); err != nil {
			return nil, ErrLoad.Wrap(err).With(slog.String("file", path))
		}
	}

	if err := k.Load(env.ProviderWithValue(pkg.EnvPrefix, ".", envValue), nil); err != nil {
		return nil, ErrLoad.Wrap(err).With(slog.String("source", "environment"))
	}

	var s Settings
	if err := k.Unmarshal("", &s); err != nil {
		return nil, ErrLoad.Wrap(err).With(slog.String("file", path))
	}

	if err := validate().Struct(&s); err != nil {
		return nil, ErrInvalid.Wrap(describe(err)).With(slog.String("file", path))
	}

	s.Dir = dir

	return &s, nil
}

// envValue maps PDXLINT_DEBOUNCE_MS to debounce_ms. List settings are
// comma-separated.
func envValue(key, value string) (string, any) {
	key = strings.ToLower(strings.TrimPrefix(key, pkg.EnvPrefix))

	switch key {
	case "disabled", "schema":
		var list []string

		for item := range strings.SplitSeq(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				list = append(list, item)
			}
		}

		return key, list
	}

	return key, value
}

func indent(b []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, b, "", "  "); err != nil {
		return nil, err
	}

	buf.WriteByte('\n')

	return buf.Bytes(), nil
}

// DefaultJSON renders the default settings as an indented settings file.
func DefaultJSON() ([]byte, error) {
	k := koanf.New(".")

	for key, value := range Defaults() {
		_ = k.Set(key, value)
	}

	b, err := k.Marshal(kjson.Parser())
	if err != nil {
		return nil, err
	}

	return indent(b)
}

// Path resolves p against the project root.
func (s *Settings) Path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}

	return filepath.Join(s.Dir, p)
}

// Debounce returns the debounce delay for watched documents.
func (s *Settings) Debounce() time.Duration {
	return time.Duration(s.DebounceMS) * time.Millisecond
}

// KindFor returns the kind configured for rel, a slash-separated path
// relative to the project root.
func (s *Settings) KindFor(rel string) (schema.Kind, bool) {
	rel = strings.TrimPrefix(filepath.ToSlash(rel), "./")

	var (
		best  string
		kind  schema.Kind
		found bool
	)

	for prefix, k := range s.Kinds {
		p := strings.Trim(prefix, "/")
		if rel != p && !strings.HasPrefix(rel, p+"/") {
			continue
		}

		if !found || len(p) > len(best) {
			best, kind, found = p, schema.ParseKind(k), true
		}
	}

	return kind, found
}

// Base loads the knowledge base: the bundled documents overlaid with the
// configured schema files.
func (s *Settings) Base() (*schema.Base, error) {
	if len(s.Schema) == 0 {
		return schema.Default(), nil
	}

	var files []*os.File

	defer func() {
		for _, f := range files {
			_ = f.Close()
		}
	}()

	for _, p := range s.Schema {
		f, err := os.Open(s.Path(p))
		if err != nil {
			return nil, ErrSchema.Wrap(err).With(slog.String("file", p))
		}

		files = append(files, f)
	}

	readers := make([]io.Reader, len(files))
	for i, f := range files {
		readers[i] = f
	}

	b, err := schema.LoadBundled(readers...)
	if err != nil {
		return nil, ErrSchema.Wrap(err)
	}

	return b, nil
}

// LoadIndex reads the configured symbol index. It returns nil without
// error when none is configured.
func (s *Settings) LoadIndex() (*index.Map, error) {
	if s.Index == "" {
		return nil, nil
	}

	m, err := index.ReadFile(s.Path(s.Index))
	if err != nil {
		return nil, ErrIndex.Wrap(err).With(slog.String("file", s.Index))
	}

	return m, nil
}

// Options translates the rule settings into analyzer options.
func (s *Settings) Options() []analyzer.Option {
	fb, _ := analyzer.ParseFallback(s.Fallback)

	opts := []analyzer.Option{analyzer.WithFallback(fb)}

	if len(s.Disabled) > 0 {
		rules := make([]diag.Rule, len(s.Disabled))
		for i, r := range s.Disabled {
			rules[i] = diag.Rule(r)
		}

		opts = append(opts, analyzer.WithDisabledRules(rules...))
	}

	for rule, name := range s.Severity {
		if sev, ok := diag.ParseSeverity(name); ok {
			opts = append(opts, analyzer.WithRuleSeverity(diag.Rule(rule), sev))
		}
	}

	return opts
}

var validate = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	_ = v.RegisterValidation("rule", func(fl validator.FieldLevel) bool {
		return diag.Rule(fl.Field().String()).Valid()
	})

	_ = v.RegisterValidation("severity", func(fl validator.FieldLevel) bool {
		_, ok := diag.ParseSeverity(fl.Field().String())

		return ok
	})

	// Kinds are checked against the knowledge base later, once overlays are
	// loaded. Here they only need to look like one.
	_ = v.RegisterValidation("kind", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}

		for _, r := range s {
			if r != '_' && (r < 'a' || r > 'z') && (r < '0' || r > '9') {
				return false
			}
		}

		return true
	})

	return v
})

func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: %q is not a valid %s", fe.Field(), fmt.Sprint(fe.Value()), fe.Tag()))
	}

	return errors.New(strings.Join(msgs, "; "))
}
