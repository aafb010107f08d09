package analyzer

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ardnew/pdxlint/diag"
	"github.com/ardnew/pdxlint/index"
	"github.com/ardnew/pdxlint/lang"
	"github.com/ardnew/pdxlint/log"
	"github.com/ardnew/pdxlint/schema"
)

// Fallback decides what happens to an identifier that resolves in neither
// registry and cannot be confirmed as a scripted effect or trigger.
type Fallback int

const (
	// FallbackStrict reports every unresolved identifier.
	FallbackStrict Fallback = iota
	// FallbackUnderscore assumes that an unresolved identifier containing an
	// underscore is a scripted effect or trigger defined elsewhere, but only
	// when no symbol index is available to check it.
	FallbackUnderscore
)

func (f Fallback) String() string {
	switch f {
	case FallbackStrict:
		return "strict"
	case FallbackUnderscore:
		return "underscore"
	default:
		return fmt.Sprintf("Fallback(%d)", int(f))
	}
}

// ParseFallback parses "strict" or "underscore".
func ParseFallback(s string) (Fallback, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strict", "":
		return FallbackStrict, true
	case "underscore":
		return FallbackUnderscore, true
	default:
		return FallbackStrict, false
	}
}

// Analyzer validates documents. Configure it with options; the zero value
// is not usable, call [New].
type Analyzer struct {
	base     *schema.Base
	index    index.Index
	fallback Fallback
	policy   diag.Policy
	logger   log.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithBase replaces the bundled knowledge base.
func WithBase(b *schema.Base) Option {
	return func(a *Analyzer) {
		if b != nil {
			a.base = b
		}
	}
}

// WithIndex enables reference checks against idx. A nil idx disables them.
func WithIndex(idx index.Index) Option {
	return func(a *Analyzer) { a.index = idx }
}

// WithFallback sets the policy for unresolved identifiers.
func WithFallback(f Fallback) Option {
	return func(a *Analyzer) { a.fallback = f }
}

// WithLogger sets the logger used for trace output.
func WithLogger(l log.Logger) Option {
	return func(a *Analyzer) { a.logger = l }
}

// WithDisabledRules suppresses the given rules.
func WithDisabledRules(rules ...diag.Rule) Option {
	return func(a *Analyzer) { a.policy = diag.NewPolicy(a.policy, diag.Disable(rules...)) }
}

// WithRuleSeverity reports rule at sev.
func WithRuleSeverity(rule diag.Rule, sev diag.Severity) Option {
	return func(a *Analyzer) { a.policy = diag.NewPolicy(a.policy, diag.Override(rule, sev)) }
}

// New returns an Analyzer using the bundled knowledge base, no symbol
// index and [FallbackStrict], modified by opts.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{base: schema.Default(), policy: diag.NewPolicy(diag.Policy{})}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Base returns the knowledge base in use.
func (a *Analyzer) Base() *schema.Base { return a.base }

// Validate checks text as a document of the given kind. It never fails;
// any input yields a best-effort list of diagnostics sorted by position.
func (a *Analyzer) Validate(text string, kind schema.Kind) diag.List {
	start := time.Now()

	ent, ok := a.base.Entity(kind)
	if !ok {
		ent, _ = a.base.Entity(schema.KindGeneric)
	}

	res := lang.Scan(text)

	r := &run{
		Analyzer: a,
		entity:   ent,
		emit:     diag.NewEmitter(a.policy),
	}

	r.structure(res)
	r.entities(res.Entities())
	r.track(res.Events)

	list := r.emit.List()

	a.logger.Trace("validated",
		slog.String("kind", kind.String()),
		slog.Int("lines", res.Lines),
		slog.Int("events", len(res.Events)),
		slog.Int("diagnostics", len(list)),
		slog.Duration("elapsed", time.Since(start)),
	)

	return list
}

// run is the state of one Validate call.
type run struct {
	*Analyzer

	entity *schema.Entity
	emit   *diag.Emitter
	stack  []*frame
}

func rangeOf(s lang.Span) diag.Range {
	return diag.Range{Line: s.Line, StartColumn: s.Column, EndColumn: s.End}
}

// structure reports the scanner's structural problems.
func (r *run) structure(res *lang.Result) {
	for _, p := range res.Problems {
		at := rangeOf(p.At)

		switch p.Kind {
		case lang.ProblemUnmatchedClose:
			r.emit.Emit(diag.RuleUnmatchedBrace, at, "unmatched closing brace")

		case lang.ProblemUnclosed:
			if p.Name == "" {
				r.emit.Emit(diag.RuleUnmatchedBrace, at, "unmatched opening brace")
			} else {
				r.emit.Emit(diag.RuleUnmatchedBrace, at, "block %q opened on line %d is never closed", p.Name, p.At.Line+1)
			}

		case lang.ProblemIncomplete:
			if p.Name == "" {
				r.emit.Emit(diag.RuleIncompleteAssignment, at, "incomplete assignment: operator has no value")
			} else {
				r.emit.Emit(diag.RuleIncompleteAssignment, at, "incomplete assignment: %q has no value", p.Name)
			}

		case lang.ProblemMissingName:
			r.emit.Emit(diag.RuleMissingFieldName, at, "missing field name before operator")
		}
	}
}
