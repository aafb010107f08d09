package cmd

import (
	"log/slog"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ardnew/pdxlint/diag"
)

// filterEnv is what a --where expression sees of each diagnostic. Line and
// column are one-based, as printed.
type filterEnv struct {
	File     string `expr:"file"`
	Kind     string `expr:"kind"`
	Severity string `expr:"severity"`
	Rule     string `expr:"rule"`
	Line     int    `expr:"line"`
	Column   int    `expr:"column"`
	Message  string `expr:"message"`
}

// filter keeps the diagnostics matching a boolean expression, e.g.
//
//	severity == "error" || rule startsWith "unknown-"
type filter struct {
	src  string
	prog *vm.Program
}

// newFilter compiles src. An empty src keeps everything.
func newFilter(src string) (*filter, error) {
	if src == "" {
		return &filter{}, nil
	}

	prog, err := expr.Compile(src, expr.Env(filterEnv{}), expr.AsBool())
	if err != nil {
		return nil, ErrFilter.Wrap(err).With(slog.String("expr", src))
	}

	return &filter{src: src, prog: prog}, nil
}

// apply returns the diagnostics of rep that match.
func (f *filter) apply(rep report) (diag.List, error) {
	if f.prog == nil {
		return rep.Diagnostics, nil
	}

	out := diag.List{}

	for _, d := range rep.Diagnostics {
		v, err := expr.Run(f.prog, filterEnv{
			File:     rep.File,
			Kind:     rep.Kind,
			Severity: d.Severity.String(),
			Rule:     string(d.Rule),
			Line:     d.Range.Line + 1,
			Column:   d.Range.StartColumn + 1,
			Message:  d.Message,
		})
		if err != nil {
			return nil, ErrFilter.Wrap(err).With(slog.String("expr", f.src))
		}

		if keep, _ := v.(bool); keep {
			out = append(out, d)
		}
	}

	return out, nil
}
