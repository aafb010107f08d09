package cli

import (
	"os"
	"path/filepath"

	"github.com/ardnew/pdxlint/pkg"
)

// baseConfig is the base name of the user configuration file.
const baseConfig = "config.json"

// modDescriptor marks the root directory of a mod.
const modDescriptor = "descriptor.mod"

// defaultDirMode is the default permission mode for created directories.
var defaultDirMode os.FileMode = 0o700

func cacheDir() string { return pkg.CacheDir() }

// configPath returns the path formed by joining the user configuration
// directory with the given path elements.
func configPath(elem ...string) string {
	return filepath.Join(append([]string{pkg.ConfigDir()}, elem...)...)
}

// mkdirAllRequired creates all required runtime directories.
func mkdirAllRequired() error {
	for _, dir := range []string{pkg.ConfigDir(), pkg.CacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}

// projectRoot returns the nearest directory, starting at the working
// directory and moving up, that holds a settings file or a mod descriptor.
// Without one the working directory is the root.
func projectRoot() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}

	return findRoot(wd)
}

func findRoot(start string) string {
	for dir := start; ; {
		for _, marker := range []string{pkg.SettingsFile, modDescriptor} {
			if fileExists(filepath.Join(dir, marker)) {
				return dir
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return start
		}

		dir = parent
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)

	return err == nil && !info.IsDir()
}
