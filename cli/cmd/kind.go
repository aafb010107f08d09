package cmd

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/ardnew/pdxlint/config"
	"github.com/ardnew/pdxlint/schema"
)

// kindDirs maps the directory layout of a mod to entity kinds.
var kindDirs = []struct {
	dir  []string
	kind schema.Kind
}{
	{[]string{"common", "traits"}, schema.KindTrait},
	{[]string{"common", "decisions"}, schema.KindDecision},
	{[]string{"common", "scripted_effects"}, schema.KindScriptedEffect},
	{[]string{"common", "scripted_triggers"}, schema.KindScriptedTrigger},
	{[]string{"common", "on_action"}, schema.KindOnAction},
	{[]string{"events"}, schema.KindEvent},
}

// detectKind picks the entity kind of the file at path: a settings
// override for its location relative to the project root, else the mod
// directory it sits in, else the generic kind.
func detectKind(s *config.Settings, path string) schema.Kind {
	if path == stdinSource {
		return schema.KindGeneric
	}

	if rel, ok := relative(s.Dir, path); ok {
		if k, ok := s.KindFor(rel); ok {
			return k
		}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	dirs := strings.Split(filepath.ToSlash(filepath.Dir(abs)), "/")

	for _, kd := range kindDirs {
		if containsRun(dirs, kd.dir) {
			return kd.kind
		}
	}

	return schema.KindGeneric
}

// containsRun reports whether run occurs as consecutive elements of s.
func containsRun(s, run []string) bool {
	for i := 0; i+len(run) <= len(s); i++ {
		if slices.Equal(s[i:i+len(run)], run) {
			return true
		}
	}

	return false
}

// relative returns path relative to root in slash form, if path lies under
// root.
func relative(root, path string) (string, bool) {
	if root == "" {
		return "", false
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", false
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}

	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}

	return filepath.ToSlash(rel), true
}
