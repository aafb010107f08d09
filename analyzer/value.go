package analyzer

import (
	"strconv"
	"strings"

	"github.com/ardnew/pdxlint/diag"
	"github.com/ardnew/pdxlint/lang"
	"github.com/ardnew/pdxlint/schema"
)

// unquote strips the quotes of a string literal.
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}

	return s
}

// symbolic reports whether v is computed rather than literal: a script
// value (@x), inline math (@[ ... ]), a saved scope (scope:x) or a
// scripted parameter ($X$).
func symbolic(v string) bool {
	return strings.HasPrefix(v, "@") || strings.HasPrefix(v, "scope:") || strings.Contains(v, "$")
}

// checkValue applies the value grammar of fs to f.
func (r *run) checkValue(fs *schema.Field, f *lang.Field) {
	if f.Block {
		if fs.Type.Scalar() {
			r.emit.Emit(diag.RuleTypeMismatch, rangeOf(f.At),
				"field %q expects %s, got a block", f.Name, article(fs.Type))
		}

		return
	}

	at := rangeOf(f.ValueAt)

	if fs.Type.Compound() {
		r.emit.Emit(diag.RuleTypeMismatch, at,
			"field %q expects %s block, got %q", f.Name, article(fs.Type), f.Value)

		return
	}

	v := unquote(f.Value)

	switch fs.Type {
	case schema.TypeBoolean:
		if v != "yes" && v != "no" && !symbolic(v) {
			r.emit.Emit(diag.RuleTypeMismatch, at, "field %q expects yes or no, got %q", f.Name, v)
		}

	case schema.TypeInteger, schema.TypeFloat:
		if symbolic(v) {
			return
		}

		n, ok := parseNumber(v, fs.Type == schema.TypeInteger)
		if !ok {
			r.emit.Emit(diag.RuleTypeMismatch, at, "field %q expects %s, got %q", f.Name, article(fs.Type), v)

			return
		}

		if (fs.Min != nil && n < *fs.Min) || (fs.Max != nil && n > *fs.Max) {
			r.emit.Emit(diag.RuleTypeMismatch, at, "field %q value %s is outside %s", f.Name, v, bounds(fs))
		}

	case schema.TypeEnum:
		if symbolic(v) || fs.Allows(v) {
			return
		}

		msg := "invalid value %q for field %q; expected one of " + strings.Join(fs.Values, ", ")
		if s := suggest(v, fs.Values); s != "" {
			r.emit.Emit(diag.RuleInvalidEnum, at, msg+" (did you mean %q?)", v, f.Name, s)

			return
		}

		r.emit.Emit(diag.RuleInvalidEnum, at, msg, v, f.Name)
	}
}

// parseNumber parses an optionally signed decimal. If integer is set,
// fractional values are rejected.
func parseNumber(v string, integer bool) (float64, bool) {
	if integer {
		n, err := strconv.ParseInt(strings.TrimPrefix(v, "+"), 10, 64)

		return float64(n), err == nil
	}

	if !lang.IsNumber(v) {
		return 0, false
	}

	n, err := strconv.ParseFloat(v, 64)

	return n, err == nil
}

func bounds(fs *schema.Field) string {
	format := func(p *float64) string { return strconv.FormatFloat(*p, 'f', -1, 64) }

	switch {
	case fs.Min != nil && fs.Max != nil:
		return "[" + format(fs.Min) + ", " + format(fs.Max) + "]"
	case fs.Min != nil:
		return "[" + format(fs.Min) + ", ∞)"
	default:
		return "(-∞, " + format(fs.Max) + "]"
	}
}

func article(t schema.FieldType) string {
	switch t {
	case schema.TypeInteger, schema.TypeEnum, schema.TypeEffect:
		return "an " + string(t)
	default:
		return "a " + string(t)
	}
}
