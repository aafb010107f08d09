// Package diag defines the diagnostics produced by the analyzer and the
// emitter that collects them.
package diag

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Severity orders diagnostics by importance. Lower values are more severe;
// the numbering matches the Language Server Protocol.
type Severity int

const (
	SeverityError Severity = iota + 1
	SeverityWarning
	SeverityInfo
	SeverityHint
)

var severityNames = [...]string{
	SeverityError:   "error",
	SeverityWarning: "warning",
	SeverityInfo:    "info",
	SeverityHint:    "hint",
}

func (s Severity) String() string {
	if s >= SeverityError && s <= SeverityHint {
		return severityNames[s]
	}

	return fmt.Sprintf("Severity(%d)", int(s))
}

// ParseSeverity parses a severity name, case-insensitively. "warn" is
// accepted for warning.
func ParseSeverity(s string) (Severity, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warn" {
		return SeverityWarning, true
	}

	for sev := SeverityError; sev <= SeverityHint; sev++ {
		if severityNames[sev] == s {
			return sev, true
		}
	}

	return 0, false
}

func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Severity) UnmarshalText(b []byte) error {
	sev, ok := ParseSeverity(string(b))
	if !ok {
		return fmt.Errorf("unknown severity %q", b)
	}

	*s = sev

	return nil
}

// Range is a span on one line. Columns are zero-based rune offsets and
// EndColumn is exclusive.
type Range struct {
	Line        int `json:"line"        yaml:"line"`
	StartColumn int `json:"startColumn" yaml:"startColumn"`
	EndColumn   int `json:"endColumn"   yaml:"endColumn"`
}

// Diagnostic is one finding.
type Diagnostic struct {
	Range    Range    `json:"range"    yaml:"range"`
	Message  string   `json:"message"  yaml:"message"`
	Severity Severity `json:"severity" yaml:"severity"`
	Rule     Rule     `json:"rule"     yaml:"rule"`
}

// String formats d as line:column: severity: message [rule], with a
// one-based line and column.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d: %s: %s [%s]",
		d.Range.Line+1, d.Range.StartColumn+1, d.Severity, d.Message, d.Rule)
}

// List is an ordered set of diagnostics.
type List []Diagnostic

// Sort orders l by line and then start column, keeping emission order for
// ties.
func (l List) Sort() {
	slices.SortStableFunc(l, func(a, b Diagnostic) int {
		return cmp.Or(
			cmp.Compare(a.Range.Line, b.Range.Line),
			cmp.Compare(a.Range.StartColumn, b.Range.StartColumn),
		)
	})
}

// HasErrors reports whether any diagnostic has error severity.
func (l List) HasErrors() bool {
	return slices.ContainsFunc(l, func(d Diagnostic) bool { return d.Severity == SeverityError })
}

// Count returns the number of diagnostics per severity.
func (l List) Count() map[Severity]int {
	n := map[Severity]int{}
	for _, d := range l {
		n[d.Severity]++
	}

	return n
}

// ByRule returns the diagnostics produced by rule.
func (l List) ByRule(rule Rule) List {
	var out List

	for _, d := range l {
		if d.Rule == rule {
			out = append(out, d)
		}
	}

	return out
}
