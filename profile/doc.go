// Package profile wraps [github.com/pkg/profile] so that pdxlint can write
// runtime profiles of a lint run to disk.
//
// Profiling is compiled in only with the "pprof" build tag:
//
//	go build -tags pprof .
//	pdxlint check --pprof-mode cpu --pprof-dir ./prof mod/
//	go tool pprof -http=: ./prof/cpu.pprof
//
// Without the tag [Modes] is empty and [Profiler.Start] does nothing, so
// callers never need their own build constraints.
package profile

// Tag is the build tag that enables profiling.
const Tag = `pprof`

// Profiler selects what to profile and where to write it.
type Profiler struct {
	Mode  string
	Path  string
	Quiet bool
}

// Stopper ends a profiling session and flushes its output.
type Stopper interface{ Stop() }

// Start begins profiling. An empty or unsupported Mode, or a build without
// the pprof tag, yields a Stopper that does nothing. Stop is always safe to
// call.
func (p Profiler) Start() Stopper {
	if p.Mode == "" {
		return ignore{}
	}

	return start(p)
}

type ignore struct{}

func (ignore) Stop() {}
