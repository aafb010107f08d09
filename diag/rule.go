package diag

import "slices"

// Rule identifies the check that produced a diagnostic. Identifiers are
// stable and used in settings to disable or re-rank checks.
type Rule string

const (
	RuleDuplicateEntity      Rule = "duplicate-entity"
	RuleUnmatchedBrace       Rule = "unmatched-brace"
	RuleIncompleteAssignment Rule = "incomplete-assignment"
	RuleMissingFieldName     Rule = "missing-field-name"
	RuleMissingField         Rule = "missing-field"
	RuleUnknownField         Rule = "unknown-field"
	RuleTypeMismatch         Rule = "type-mismatch"
	RuleInvalidEnum          Rule = "invalid-enum"
	RuleUnknownIdentifier    Rule = "unknown-identifier"
	RuleWrongContext         Rule = "wrong-context"
	RuleUnexpectedBare       Rule = "unexpected-bare"
	RuleUnknownReference     Rule = "unknown-reference"
)

var defaults = map[Rule]Severity{
	RuleDuplicateEntity:      SeverityError,
	RuleUnmatchedBrace:       SeverityError,
	RuleIncompleteAssignment: SeverityError,
	RuleMissingFieldName:     SeverityError,
	RuleMissingField:         SeverityWarning,
	RuleUnknownField:         SeverityWarning,
	RuleTypeMismatch:         SeverityWarning,
	RuleInvalidEnum:          SeverityWarning,
	RuleUnknownIdentifier:    SeverityWarning,
	RuleWrongContext:         SeverityWarning,
	RuleUnexpectedBare:       SeverityWarning,
	RuleUnknownReference:     SeverityWarning,
}

// Rules returns every rule in sorted order.
func Rules() []Rule {
	rules := make([]Rule, 0, len(defaults))
	for r := range defaults {
		rules = append(rules, r)
	}

	slices.Sort(rules)

	return rules
}

// Valid reports whether r is a known rule.
func (r Rule) Valid() bool {
	_, ok := defaults[r]

	return ok
}

// DefaultSeverity returns the severity r is reported with unless
// overridden.
func (r Rule) DefaultSeverity() Severity {
	if s, ok := defaults[r]; ok {
		return s
	}

	return SeverityWarning
}
