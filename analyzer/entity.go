package analyzer

import (
	"github.com/ardnew/pdxlint/diag"
	"github.com/ardnew/pdxlint/lang"
	"github.com/ardnew/pdxlint/schema"
)

// entities reports duplicate entity names and checks each entity against
// the field schema of the document's kind.
func (r *run) entities(ents []*lang.Entity) {
	first := map[string]*lang.Entity{}

	for _, e := range ents {
		if prev, dup := first[e.Name]; dup {
			r.emit.Emit(diag.RuleDuplicateEntity, rangeOf(e.At),
				"duplicate entity %q; first defined on line %d", e.Name, prev.At.Line+1)
		} else {
			first[e.Name] = e
		}

		if !r.entity.Freeform {
			r.checkEntity(e)
		}
	}
}

func (r *run) checkEntity(e *lang.Entity) {
	for _, f := range e.Order {
		if f.Name == "" {
			continue
		}

		fs, ok := r.entity.Field(f.Name)
		if !ok {
			r.unknownField(f)

			continue
		}

		r.checkValue(fs, f)
	}

	for _, req := range r.entity.Required() {
		if !hasField(e, req) {
			r.emit.Emit(diag.RuleMissingField, rangeOf(e.At),
				"%s %q is missing required field %q", r.entity.Kind, e.Name, req.Name)
		}
	}
}

func hasField(e *lang.Entity, fs *schema.Field) bool {
	if !fs.Wildcard() {
		_, ok := e.Field(fs.Name)

		return ok
	}

	for name := range e.Fields {
		if fs.Match(name) {
			return true
		}
	}

	return false
}

func (r *run) unknownField(f *lang.Field) {
	names := make([]string, 0, len(r.entity.Fields))
	for _, fs := range r.entity.Fields {
		if !fs.Wildcard() {
			names = append(names, fs.Name)
		}
	}

	msg := "unknown field %q for " + r.entity.Kind.String()
	if s := suggest(f.Name, names); s != "" {
		r.emit.Emit(diag.RuleUnknownField, rangeOf(f.At), msg+"; did you mean %q?", f.Name, s)

		return
	}

	r.emit.Emit(diag.RuleUnknownField, rangeOf(f.At), msg, f.Name)
}
