package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ardnew/pdxlint/analyzer"
	"github.com/ardnew/pdxlint/diag"
	"github.com/ardnew/pdxlint/pkg"
	"github.com/ardnew/pdxlint/schema"
)

func writeSettings(t *testing.T, dir, content string) {
	t.Helper()

	require.NoError(t, os.WriteFile(filepath.Join(dir, pkg.SettingsFile), []byte(content), 0o600))
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()

	s, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, "strict", s.Fallback)
	require.Empty(t, s.Index)
	require.Empty(t, s.Disabled)
	require.Equal(t, 150*time.Millisecond, s.Debounce())
	require.Equal(t, dir, s.Dir)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	writeSettings(t, dir, `{
		"index": "symbols.yaml",
		"fallback": "underscore",
		"disabled": ["unexpected-bare"],
		"severity": {"unknown-field": "error"},
		"debounce_ms": 300,
		"kinds": {"common/scripted_effects/": "scripted_effect"}
	}`)

	s, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, "underscore", s.Fallback)
	require.Equal(t, []string{"unexpected-bare"}, s.Disabled)
	require.Equal(t, map[string]string{"unknown-field": "error"}, s.Severity)
	require.Equal(t, 300*time.Millisecond, s.Debounce())
	require.Equal(t, filepath.Join(dir, "symbols.yaml"), s.Path(s.Index))
}

func TestLoad_Env(t *testing.T) {
	dir := t.TempDir()
	writeSettings(t, dir, `{"fallback": "underscore", "debounce_ms": 300}`)

	t.Setenv("PDXLINT_FALLBACK", "strict")
	t.Setenv("PDXLINT_DEBOUNCE_MS", "50")
	t.Setenv("PDXLINT_DISABLED", "unknown-field, unexpected-bare")

	s, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, "strict", s.Fallback)
	require.Equal(t, 50*time.Millisecond, s.Debounce())
	require.Equal(t, []string{"unknown-field", "unexpected-bare"}, s.Disabled)
}

func TestLoad_Invalid(t *testing.T) {
	for name, content := range map[string]string{
		"fallback":  `{"fallback": "lenient"}`,
		"rule":      `{"disabled": ["no-such-rule"]}`,
		"severity":  `{"severity": {"unknown-field": "fatal"}}`,
		"rule key":  `{"severity": {"no-such-rule": "error"}}`,
		"debounce":  `{"debounce_ms": -1}`,
		"kind name": `{"kinds": {"events": "Not A Kind"}}`,
	} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeSettings(t, dir, content)

			_, err := Load(dir)
			require.ErrorIs(t, err, ErrInvalid)
		})
	}

	dir := t.TempDir()
	writeSettings(t, dir, `{"fallback": `)

	_, err := Load(dir)
	require.ErrorIs(t, err, ErrLoad)
}

func TestSettings_KindFor(t *testing.T) {
	s := &Settings{Kinds: map[string]string{
		"common":                 "generic",
		"common/scripted_guis":   "scripted_trigger",
		"common/scripted_guis/x": "scripted_effect",
	}}

	for rel, want := range map[string]schema.Kind{
		"common/foo.txt":                   schema.KindGeneric,
		"common/scripted_guis/a.txt":       schema.KindScriptedTrigger,
		"./common/scripted_guis/x/b.txt":   schema.KindScriptedEffect,
		"common/scripted_guis_extra/a.txt": schema.KindGeneric,
	} {
		got, ok := s.KindFor(rel)
		require.True(t, ok, rel)
		require.Equal(t, want, got, rel)
	}

	_, ok := s.KindFor("events/a.txt")
	require.False(t, ok)
}

func TestSettings_Options(t *testing.T) {
	s := &Settings{
		Fallback: "underscore",
		Disabled: []string{string(diag.RuleDuplicateEntity)},
		Severity: map[string]string{string(diag.RuleUnknownIdentifier): "hint"},
	}

	a := analyzer.New(s.Options()...)

	require.Empty(t, a.Validate("bar = {}\nbar = {}", schema.KindGeneric))
	require.Empty(t, a.Validate("immediate = { some_scripted_effect = yes }", schema.KindGeneric))

	got := a.Validate("immediate = { nounderscore = yes }", schema.KindGeneric)
	require.Len(t, got, 1)
	require.Equal(t, diag.SeverityHint, got[0].Severity)
}

func TestSettings_BaseAndIndex(t *testing.T) {
	dir := t.TempDir()

	s := &Settings{Dir: dir}

	b, err := s.Base()
	require.NoError(t, err)
	require.Same(t, schema.Default(), b)

	m, err := s.LoadIndex()
	require.NoError(t, err)
	require.Nil(t, m)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "extra.yaml"), []byte(
		"effects:\n  - { name: my_mod_effect }\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "symbols.yaml"), []byte(
		"trait: [brave]\n"), 0o600))

	s.Schema = []string{"extra.yaml"}
	s.Index = "symbols.yaml"

	b, err = s.Base()
	require.NoError(t, err)

	_, ok := b.Effect("my_mod_effect")
	require.True(t, ok)

	m, err = s.LoadIndex()
	require.NoError(t, err)
	require.True(t, m.Has("trait", "brave"))

	s.Schema = []string{"missing.yaml"}
	_, err = s.Base()
	require.ErrorIs(t, err, ErrSchema)

	s.Index = "missing.yaml"
	_, err = s.LoadIndex()
	require.ErrorIs(t, err, ErrIndex)
}

func TestDefaultJSON(t *testing.T) {
	b, err := DefaultJSON()
	require.NoError(t, err)
	require.Contains(t, string(b), `"fallback": "strict"`)
	require.Contains(t, string(b), `"debounce_ms": 150`)

	dir := t.TempDir()
	writeSettings(t, dir, string(b))

	_, err = Load(dir)
	require.NoError(t, err)
}
