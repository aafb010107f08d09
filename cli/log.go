package cli

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/pdxlint/log"
)

// logFormat configures the logger format as a side effect of parsing via
// encoding.TextUnmarshaler, so that parse errors are already formatted.
type logFormat string

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *logFormat) UnmarshalText(text []byte) error {
	*f = logFormat(text)
	log.Config(log.WithFormat(log.ParseFormat(string(*f))))

	return nil
}

// logLevel configures the logger level as a side effect of parsing via
// encoding.TextUnmarshaler.
type logLevel string

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *logLevel) UnmarshalText(text []byte) error {
	*l = logLevel(text)
	log.Config(log.WithLevel(log.ParseLevel(string(*l))))

	return nil
}

type logConfig struct {
	Level      logLevel  `default:"warn"    enum:"${logLevelEnum}"  help:"Set log level."`
	Format     logFormat `default:"text"    enum:"${logFormatEnum}" help:"Set log format."`
	TimeLayout string    `default:"kitchen"                         help:"Set timestamp format ('none' to omit)." name:"time"`
	Caller     bool      `default:"false"                           help:"Include caller information."            negatable:""`
	Pretty     bool      `default:"true"                            help:"Enable colorized pretty printing."      negatable:""`
}

func (*logConfig) vars() kong.Vars {
	return kong.Vars{
		"logLevelEnum":  strings.Join(slices.Collect(log.Levels()), ","),
		"logFormatEnum": strings.Join(slices.Collect(log.Formats()), ","),
	}
}

func (*logConfig) group() kong.Group {
	var group kong.Group

	group.Key = "log"
	group.Title = "Logging options"

	return group
}

// start applies the parsed logger flags and returns a function that logs
// the end of the run.
func (f *logConfig) start(ctx context.Context) (stop func()) {
	log.Config(
		log.WithLevel(log.ParseLevel(string(f.Level))),
		log.WithFormat(log.ParseFormat(string(f.Format))),
		log.WithTimeLayout(f.TimeLayout),
		log.WithCaller(f.Caller),
		log.WithPretty(f.Pretty),
	)

	log.DebugContext(ctx, "logger initialized",
		slog.String("level", string(f.Level)),
		slog.String("format", string(f.Format)),
		slog.String("time", f.TimeLayout),
		slog.Bool("caller", f.Caller),
		slog.Bool("pretty", f.Pretty),
	)

	return func() { log.DebugContext(ctx, "run finished") }
}

// logFlag describes how an early-scanned logger flag is applied.
type logFlag struct {
	name    string
	boolean bool
	apply   func(f *logConfig, value string)
}

var logFlags = []logFlag{
	{name: "level", apply: func(f *logConfig, v string) { _ = f.Level.UnmarshalText([]byte(v)) }},
	{name: "format", apply: func(f *logConfig, v string) { _ = f.Format.UnmarshalText([]byte(v)) }},
	{name: "time", apply: func(f *logConfig, v string) {
		f.TimeLayout = v
		log.Config(log.WithTimeLayout(v))
	}},
	{name: "caller", boolean: true, apply: func(f *logConfig, v string) {
		f.Caller = v == "true"
		log.Config(log.WithCaller(f.Caller))
	}},
	{name: "pretty", boolean: true, apply: func(f *logConfig, v string) {
		f.Pretty = v == "true"
		log.Config(log.WithPretty(f.Pretty))
	}},
}

// scan performs an early pass over command-line arguments to apply logger
// flags before kong begins parsing, so that messages logged while loading
// settings honor them regardless of flag position.
func (f *logConfig) scan(args []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return
		}

		negated := strings.HasPrefix(arg, "--no-log-")

		name, ok := strings.CutPrefix(arg, "--log-")
		if negated {
			name, ok = strings.CutPrefix(arg, "--no-log-")
		}

		if !ok {
			continue
		}

		name, value, assigned := strings.Cut(name, "=")

		idx := slices.IndexFunc(logFlags, func(lf logFlag) bool { return lf.name == name })
		if idx < 0 {
			continue
		}

		lf := logFlags[idx]

		switch {
		case lf.boolean:
			b := true

			if assigned {
				v, err := strconv.ParseBool(value)
				if err != nil {
					continue
				}

				b = v
			}

			lf.apply(f, strconv.FormatBool(b != negated))

		case negated:
			continue

		default:
			if !assigned {
				if i+1 >= len(args) || strings.HasPrefix(args[i+1], "-") {
					continue
				}

				i++
				value = args[i]
			}

			lf.apply(f, value)
		}
	}
}
