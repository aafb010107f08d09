package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/ardnew/pdxlint/config"
	"github.com/ardnew/pdxlint/schema"
)

// writeTree creates files under root from a map of slash paths to content.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()

	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}

		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestCollect(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"common/traits/a.txt": "",
		"events/b.TXT":        "",
		".git/c.txt":          "",
		"readme.md":           "",
	})

	a := filepath.Join(root, "common", "traits", "a.txt")
	link := filepath.Join(root, "link.txt")

	if err := os.Symlink(a, link); err != nil {
		t.Fatal(err)
	}

	got, err := collect([]string{"-", root, a, link, "-"})
	if err != nil {
		t.Fatal(err)
	}

	want := []string{a, filepath.Join(root, "events", "b.TXT"), stdinSource}
	if !slices.Equal(got, want) {
		t.Errorf("collect = %q, want %q", got, want)
	}

	_, err = collect([]string{filepath.Join(root, "missing.txt")})
	if !errors.Is(err, ErrReadSource) {
		t.Errorf("collect(missing) error = %v, want %v", err, ErrReadSource)
	}
}

func TestReadSource(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "bom.txt")

	if err := os.WriteFile(path, append([]byte{0xEF, 0xBB, 0xBF}, "a = b"...), 0o644); err != nil {
		t.Fatal(err)
	}

	src, err := readSource(path, nil)
	if err != nil {
		t.Fatal(err)
	}

	if src.Text != "a = b" || src.Path != path {
		t.Errorf("readSource = %+v", src)
	}

	src, err = readSource(stdinSource, strings.NewReader("c = d"))
	if err != nil {
		t.Fatal(err)
	}

	if src.Text != "c = d" || src.Path != stdinSource {
		t.Errorf("readSource(stdin) = %+v", src)
	}

	if _, err := readSource(filepath.Join(root, "missing.txt"), nil); !errors.Is(err, ErrReadSource) {
		t.Errorf("readSource(missing) error = %v", err)
	}
}

func TestDetectKind(t *testing.T) {
	root := t.TempDir()
	s := &config.Settings{
		Dir:   root,
		Kinds: map[string]string{"common/scripted_guis": "scripted_trigger"},
	}

	for rel, want := range map[string]schema.Kind{
		"common/traits/00_traits.txt":        schema.KindTrait,
		"common/decisions/x/deep.txt":        schema.KindDecision,
		"events/my_events.txt":               schema.KindEvent,
		"common/scripted_effects/a.txt":      schema.KindScriptedEffect,
		"common/scripted_triggers/a.txt":     schema.KindScriptedTrigger,
		"common/on_action/a.txt":             schema.KindOnAction,
		"common/scripted_guis/a.txt":         schema.KindScriptedTrigger,
		"common/landed_titles/a.txt":         schema.KindGeneric,
		"traits/a.txt":                       schema.KindGeneric,
		"gfx/events/a.txt":                   schema.KindEvent,
		"common/traits_backup/00_traits.txt": schema.KindGeneric,
	} {
		if got := detectKind(s, filepath.Join(root, filepath.FromSlash(rel))); got != want {
			t.Errorf("detectKind(%q) = %q, want %q", rel, got, want)
		}
	}

	if got := detectKind(s, stdinSource); got != schema.KindGeneric {
		t.Errorf("detectKind(stdin) = %q", got)
	}
}

func TestScanWorkspace(t *testing.T) {
	srcs := []*source{
		{Path: "a", Text: "brave = { category = childhood }\ncraven = {\n}\n"},
		{Path: "b", Text: "my.1 = { }\n"},
		{Path: "c", Text: "generic_thing = { }\n"},
	}

	m := scanWorkspace(srcs, []schema.Kind{schema.KindTrait, schema.KindEvent, schema.KindGeneric})

	for _, tc := range []struct {
		kind, name string
		want       bool
	}{
		{"trait", "brave", true},
		{"trait", "craven", true},
		{"event", "my.1", true},
		{"trait", "my.1", false},
		{"", "generic_thing", false},
	} {
		if got := m.Has(tc.kind, tc.name); got != tc.want {
			t.Errorf("Has(%q, %q) = %v, want %v", tc.kind, tc.name, got, tc.want)
		}
	}
}

func TestStreamsDefault(t *testing.T) {
	st := streamsFrom(context.Background())
	if st.in != os.Stdin || st.out != os.Stdout {
		t.Error("streamsFrom should default to the process streams")
	}

	var buf bytes.Buffer

	st = streamsFrom(WithStreams(context.Background(), nil, &buf))
	if st.out != &buf || st.in != os.Stdin {
		t.Error("WithStreams should replace only the given streams")
	}
}

func TestSettingsFromCopies(t *testing.T) {
	orig := &config.Settings{Fallback: "underscore", Dir: "x"}
	ctx := WithSettings(context.Background(), orig)

	s := settingsFrom(ctx)
	s.Fallback = "strict"

	if orig.Fallback != "underscore" {
		t.Error("settingsFrom should return a copy")
	}

	if d := settingsFrom(context.Background()); d.Fallback != "strict" || d.Dir != "." {
		t.Errorf("default settings = %+v", d)
	}
}
