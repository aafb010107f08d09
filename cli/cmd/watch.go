package cmd

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ardnew/pdxlint/config"
	"github.com/ardnew/pdxlint/log"
	"github.com/ardnew/pdxlint/session"
)

// Watch re-checks script files as they change.
type Watch struct {
	Dirs []string `arg:"" default:"." help:"Directories to watch" name:"dir" optional:"" type:"existingdir"`

	Fallback string `help:"Handling of unresolved identifiers"                  default:"strict" enum:"strict,underscore"`
	Debounce int    `help:"Milliseconds a file must be idle before it is checked" default:"150"`
	Color    string `help:"Colorize output"                                      default:"auto"   enum:"auto,always,never"`
}

// Run executes the watch command. It returns when ctx is done.
func (w *Watch) Run(ctx context.Context) error {
	s := settingsFrom(ctx)
	s.Fallback = w.Fallback

	base, err := s.Base()
	if err != nil {
		return err
	}

	idx, err := s.LoadIndex()
	if err != nil {
		return err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return ErrWatch.Wrap(err)
	}
	defer fw.Close()

	out := streamsFrom(ctx).out
	r := newRenderer(out, "text", useColor(w.Color, out))

	var mu sync.Mutex

	sched := session.New(newAnalyzer(s, base, idx), func(res session.Result) {
		mu.Lock()
		defer mu.Unlock()

		err := r.render(out, []report{{File: res.URI, Kind: res.Kind.String(), Diagnostics: res.Diagnostics}})
		if err != nil {
			log.WarnContext(ctx, "render failed", slog.Any("error", err))
		}
	},
		session.WithDelay(time.Duration(w.Debounce)*time.Millisecond),
		session.WithLogger(log.Default()),
	)
	defer sched.Stop()

	ws := &watchState{settings: s, sched: sched, fs: fw}

	for _, dir := range w.Dirs {
		if err := ws.addTree(dir); err != nil {
			return err
		}
	}

	log.InfoContext(ctx, "watching", slog.Any("dirs", w.Dirs))

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}

			ws.handle(ctx, ev)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}

			log.WarnContext(ctx, "watch error", slog.Any("error", err))
		}
	}
}

type watchState struct {
	settings *config.Settings
	sched    *session.Scheduler
	fs       *fsnotify.Watcher
}

// addTree watches dir and its subdirectories and schedules every script
// file found in them.
func (ws *watchState) addTree(dir string) error {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}

			return ws.fs.Add(path)
		}

		if isScript(path) {
			ws.update(path)
		}

		return nil
	})
	if err != nil {
		return ErrWatch.Wrap(err).With(slog.String("dir", dir))
	}

	return nil
}

func (ws *watchState) handle(ctx context.Context, ev fsnotify.Event) {
	log.DebugContext(ctx, "file event", slog.String("path", ev.Name), slog.String("op", ev.Op.String()))

	if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
		ws.sched.Forget(ev.Name)

		return
	}

	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := ws.addTree(ev.Name); err != nil {
				log.WarnContext(ctx, "watch directory", slog.Any("error", err))
			}

			return
		}
	}

	if (ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) && isScript(ev.Name) {
		ws.update(ev.Name)
	}
}

func (ws *watchState) update(path string) {
	src, err := readSource(path, nil)
	if err != nil {
		log.Warn("skip unreadable file", slog.Any("error", err))

		return
	}

	ws.sched.Update(path, src.Text, detectKind(ws.settings, path))
}

func isScript(path string) bool {
	return strings.EqualFold(filepath.Ext(path), sourceExt)
}
