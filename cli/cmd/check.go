package cmd

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/ardnew/pdxlint/analyzer"
	"github.com/ardnew/pdxlint/config"
	"github.com/ardnew/pdxlint/diag"
	"github.com/ardnew/pdxlint/index"
	"github.com/ardnew/pdxlint/log"
	"github.com/ardnew/pdxlint/schema"
)

// Check validates script files and prints their diagnostics.
type Check struct {
	Paths []string `arg:"" default:"." help:"Files or directories to check, or '-' for stdin" name:"path" optional:""`

	Kind           string `help:"Entity kind of every file (default: detected from path)"  short:"k"`
	Index          string `help:"Symbol index file (YAML or JSON)"                                    type:"path"`
	WorkspaceIndex bool   `help:"Index the entities of the checked files"                  short:"w"`
	Fallback       string `help:"Handling of unresolved identifiers"                                  default:"strict" enum:"strict,underscore"`
	Format         string `help:"Output format"                                            short:"o"  default:"text"   enum:"text,json,yaml"`
	Where          string `help:"Only report diagnostics matching this expression"`
	Jobs           int    `help:"Files checked in parallel (0 for one per CPU)"            short:"j"  default:"0"`
	Color          string `help:"Colorize text output"                                                default:"auto"   enum:"auto,always,never"`
}

// Run executes the check command.
func (c *Check) Run(ctx context.Context) error {
	s := settingsFrom(ctx)
	s.Fallback = c.Fallback

	if c.Index != "" {
		s.Index = c.Index
	}

	st := streamsFrom(ctx)

	flt, err := newFilter(c.Where)
	if err != nil {
		return err
	}

	base, err := s.Base()
	if err != nil {
		return err
	}

	if c.Kind != "" {
		if _, ok := base.Entity(schema.ParseKind(c.Kind)); !ok {
			return ErrUnknownKind.With(slog.String("kind", c.Kind))
		}
	}

	paths, err := collect(c.Paths)
	if err != nil {
		return err
	}

	srcs, kinds, err := c.read(ctx, s, paths)
	if err != nil {
		return err
	}

	idx, err := c.index(s, srcs, kinds)
	if err != nil {
		return err
	}

	reports, err := c.analyze(ctx, newAnalyzer(s, base, idx), srcs, kinds, flt)
	if err != nil {
		return err
	}

	r := newRenderer(st.out, c.Format, useColor(c.Color, st.out))
	if err := r.render(st.out, reports); err != nil {
		return err
	}

	errs := 0
	for _, rep := range reports {
		errs += rep.Diagnostics.Count()[diag.SeverityError]
	}

	log.DebugContext(ctx, "check complete",
		slog.Int("files", len(reports)),
		slog.Int("errors", errs),
	)

	if errs > 0 {
		return ErrDiagnostics.With(slog.Int("count", errs))
	}

	return nil
}

// newAnalyzer configures an analyzer from settings. idx may be nil.
func newAnalyzer(s *config.Settings, base *schema.Base, idx *index.Map) *analyzer.Analyzer {
	opts := append(s.Options(),
		analyzer.WithBase(base),
		analyzer.WithLogger(log.Default()),
	)

	if idx != nil {
		opts = append(opts, analyzer.WithIndex(idx))
	}

	return analyzer.New(opts...)
}

func (c *Check) jobs() int {
	if c.Jobs > 0 {
		return c.Jobs
	}

	return runtime.GOMAXPROCS(0)
}

// read loads every source in parallel, keeping input order.
func (c *Check) read(ctx context.Context, s *config.Settings, paths []string) ([]*source, []schema.Kind, error) {
	srcs := make([]*source, len(paths))
	kinds := make([]schema.Kind, len(paths))
	stdin := streamsFrom(ctx).in

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(c.jobs())

	for i, p := range paths {
		g.Go(func() error {
			src, err := readSource(p, stdin)
			if err != nil {
				return err
			}

			srcs[i] = src

			if c.Kind != "" {
				kinds[i] = schema.ParseKind(c.Kind)
			} else {
				kinds[i] = detectKind(s, p)
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return srcs, kinds, nil
}

// index combines the configured index file with the workspace scan. It
// returns nil if neither is in use.
func (c *Check) index(s *config.Settings, srcs []*source, kinds []schema.Kind) (*index.Map, error) {
	m, err := s.LoadIndex()
	if err != nil {
		return nil, err
	}

	if !c.WorkspaceIndex {
		return m, nil
	}

	ws := scanWorkspace(srcs, kinds)
	if m == nil {
		return ws, nil
	}

	m.Merge(ws)

	return m, nil
}

func (c *Check) analyze(
	ctx context.Context,
	a *analyzer.Analyzer,
	srcs []*source,
	kinds []schema.Kind,
	flt *filter,
) ([]report, error) {
	reports := make([]report, len(srcs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.jobs())

	for i, src := range srcs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			rep := report{
				File:        src.Path,
				Kind:        kinds[i].String(),
				Diagnostics: a.Validate(src.Text, kinds[i]),
			}

			list, err := flt.apply(rep)
			if err != nil {
				return err
			}

			rep.Diagnostics = list
			reports[i] = rep

			log.DebugContext(ctx, "checked",
				slog.String("file", src.Path),
				slog.String("kind", rep.Kind),
				slog.Int("diagnostics", len(list)),
			)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return reports, nil
}
