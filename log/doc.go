// Package log wraps [log/slog] with the handful of knobs pdxlint exposes on
// its command line: level, output format, timestamp layout, caller info and
// a colorized terminal rendering.
//
// A [Logger] is an immutable value. Derive new loggers with [Logger.Wrap]
// (reconfigure) or [Logger.With] (add attributes); neither affects the
// receiver, so a Logger may be shared freely between goroutines.
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatText))
//	logger.Info("checked file", slog.String("path", path))
//
// The package also keeps a default logger used by the package-level
// functions ([Info], [Warn], ...). [Config] replaces it.
//
// Levels are those of slog plus [LevelTrace], which sits below debug and is
// used for per-token diagnostics of the scanner.
package log
