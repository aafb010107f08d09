package cmd

import (
	"bytes"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/klauspost/readahead"
)

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// sourceExt is the extension of script files picked up when walking a
// directory.
const sourceExt = ".txt"

// source is one document to check.
type source struct {
	// Path is the name shown in output; "-" for stdin.
	Path string
	Text string
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: uint64(stat.Ino)}, true
}

// collect expands paths into the list of files to check, in argument order.
// Directories are walked for script files. Files reached more than once,
// through symlinks or overlapping arguments, are listed once. Any number
// of "-" arguments become a single stdin source, placed last.
func collect(paths []string) ([]string, error) {
	var (
		out   []string
		stdin bool
		seen  = map[fileKey]struct{}{}
	)

	add := func(path string, info os.FileInfo) {
		if key, ok := makeFileKey(info); ok {
			if _, dup := seen[key]; dup {
				return
			}

			seen[key] = struct{}{}
		}

		out = append(out, path)
	}

	for _, p := range paths {
		if p == stdinSource {
			stdin = true

			continue
		}

		info, err := os.Stat(p)
		if err != nil {
			return nil, ErrReadSource.Wrap(err).With(slog.String("path", p))
		}

		if !info.IsDir() {
			add(p, info)

			continue
		}

		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() {
				if path != p && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}

				return nil
			}

			if !isScript(path) {
				return nil
			}

			info, err := os.Stat(path)
			if err != nil {
				return err
			}

			add(path, info)

			return nil
		})
		if err != nil {
			return nil, ErrReadSource.Wrap(err).With(slog.String("path", p))
		}
	}

	if stdin {
		out = append(out, stdinSource)
	}

	return out, nil
}

// utf8BOM prefixes most files written by the game's own tools.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readSource reads the document at path, or from stdin for "-".
func readSource(path string, stdin io.Reader) (*source, error) {
	var r io.Reader = stdin

	if path != stdinSource {
		f, err := os.Open(path)
		if err != nil {
			return nil, ErrReadSource.Wrap(err).With(slog.String("path", path))
		}
		defer f.Close()

		ra := readahead.NewReader(f)
		defer ra.Close()

		r = ra
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ErrReadSource.Wrap(err).With(slog.String("path", path))
	}

	return &source{Path: path, Text: string(bytes.TrimPrefix(data, utf8BOM))}, nil
}
