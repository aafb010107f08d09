// Package cli contains the command line interface for pdxlint.
//
// # Usage
//
// Without a subcommand pdxlint checks the given files or directories:
//
//	pdxlint mod/
//	pdxlint check --kind trait - < traits.txt
//	pdxlint check -w -o json --where 'severity == "error"' mod/
//	pdxlint watch mod/
//	pdxlint schema lookup set_relation_friend
//	pdxlint init
//
// # Settings
//
// The project root is the nearest directory, from the working directory
// upward, holding a .pdxlint.json or a descriptor.mod. Its settings supply
// defaults for the index, fallback and debounce flags. Flags stored by
// "init --global" in the user configuration file are applied as well.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time: Set timestamp format (kitchen, rfc3339, ms, none, ...)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize text output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o pdxlint .
//
// It adds these flags:
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/pdxlint/pprof)
package cli
