package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"

	"github.com/ardnew/pdxlint/config"
	"github.com/ardnew/pdxlint/pkg"
)

func TestInitProject(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	if err := (&Init{Dir: dir}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	s, err := config.Load(dir)
	if err != nil {
		t.Fatalf("written settings do not load: %v", err)
	}

	if s.Fallback != "strict" {
		t.Errorf("fallback = %q, want strict", s.Fallback)
	}

	err = (&Init{Dir: dir}).Run(ctx)
	if !errors.Is(err, ErrFileExists) {
		t.Errorf("second init error = %v, want %v", err, ErrFileExists)
	}

	if err := (&Init{Dir: dir, Force: true}).Run(ctx); err != nil {
		t.Errorf("forced init: %v", err)
	}
}

func TestInitGlobal(t *testing.T) {
	var cli struct {
		Fallback string `default:"underscore"`
		Jobs     int    `default:"4"`
		Init     Init   `cmd:""`
	}

	path := filepath.Join(t.TempDir(), "nested", "config.json")

	parser, err := kong.New(&cli, kong.Vars{ConfigIdentifier: path}, kong.Exit(func(int) {}))
	if err != nil {
		t.Fatal(err)
	}

	ktx, err := parser.Parse([]string{"init", "--global", t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}

	if err := cli.Init.Run(WithContext(context.Background(), ktx)); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}

	if got["fallback"] != "underscore" || got["jobs"] != float64(4) {
		t.Errorf("global config = %v", got)
	}

	if _, ok := got["help"]; ok {
		t.Errorf("global config includes help: %v", got)
	}

	if _, err := os.Stat(filepath.Join(filepath.Dir(path), pkg.SettingsFile)); err == nil {
		t.Error("global init wrote project settings")
	}
}

func TestInitGlobalWithoutContext(t *testing.T) {
	err := (&Init{Dir: t.TempDir(), Global: true}).Run(context.Background())
	if !errors.Is(err, ErrWriteConfig) {
		t.Errorf("error = %v, want %v", err, ErrWriteConfig)
	}
}
