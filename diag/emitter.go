package diag

import (
	"fmt"
	"maps"
)

// Policy decides which rules are reported and at what severity. The zero
// value reports every rule at its default severity.
type Policy struct {
	disabled map[Rule]bool
	severity map[Rule]Severity
}

// PolicyOption configures a Policy.
type PolicyOption func(*Policy)

// Disable turns rules off.
func Disable(rules ...Rule) PolicyOption {
	return func(p *Policy) {
		for _, r := range rules {
			p.disabled[r] = true
		}
	}
}

// Override reports rule at sev instead of its default.
func Override(rule Rule, sev Severity) PolicyOption {
	return func(p *Policy) { p.severity[rule] = sev }
}

// NewPolicy returns a policy configured by opts applied over base.
func NewPolicy(base Policy, opts ...PolicyOption) Policy {
	p := Policy{
		disabled: maps.Clone(base.disabled),
		severity: maps.Clone(base.severity),
	}

	if p.disabled == nil {
		p.disabled = map[Rule]bool{}
	}

	if p.severity == nil {
		p.severity = map[Rule]Severity{}
	}

	for _, opt := range opts {
		opt(&p)
	}

	return p
}

// Enabled reports whether rule is reported.
func (p Policy) Enabled(rule Rule) bool { return !p.disabled[rule] }

// Severity returns the severity rule is reported at.
func (p Policy) Severity(rule Rule) Severity {
	if s, ok := p.severity[rule]; ok {
		return s
	}

	return rule.DefaultSeverity()
}

// Emitter collects the diagnostics of one analysis run.
type Emitter struct {
	policy Policy
	list   List
}

// NewEmitter returns an empty emitter applying p.
func NewEmitter(p Policy) *Emitter { return &Emitter{policy: p} }

// Emit records a diagnostic for rule unless the policy disables it.
func (e *Emitter) Emit(rule Rule, at Range, format string, args ...any) {
	if !e.policy.Enabled(rule) {
		return
	}

	e.list = append(e.list, Diagnostic{
		Range:    at,
		Message:  fmt.Sprintf(format, args...),
		Severity: e.policy.Severity(rule),
		Rule:     rule,
	})
}

// Len returns the number of diagnostics recorded so far.
func (e *Emitter) Len() int { return len(e.list) }

// List returns the recorded diagnostics, sorted.
func (e *Emitter) List() List {
	out := make(List, len(e.list))
	copy(out, e.list)
	out.Sort()

	return out
}
