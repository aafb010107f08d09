package analyzer

import (
	"slices"
	"strings"

	"github.com/ardnew/pdxlint/diag"
	"github.com/ardnew/pdxlint/lang"
	"github.com/ardnew/pdxlint/schema"
)

// frame is one open block on the context stack.
type frame struct {
	name string
	ctx  schema.Context
	// isList marks a schema field of type list; ref names the index kind
	// its members refer to.
	isList bool
	ref    string
	def    *schema.Definition
	block  *schema.Block
	// entry lists names accepted because the frame is a case or weight
	// label of its parent.
	entry []string
}

func (r *run) top() *frame {
	if len(r.stack) == 0 {
		return nil
	}

	return r.stack[len(r.stack)-1]
}

// track walks the event stream, classifying every block and checking the
// children of trigger and effect blocks against the registries.
func (r *run) track(events []lang.Event) {
	for _, ev := range events {
		r.stack = r.stack[:min(len(r.stack), ev.Depth)]
		parent := r.top()

		switch ev.Kind {
		case lang.EventOpen:
			if parent != nil && isChecked(parent.ctx) {
				r.child(parent, ev)
			}

			r.stack = append(r.stack, r.classify(parent, ev))

		case lang.EventField:
			if parent != nil && isChecked(parent.ctx) {
				r.child(parent, ev)
			}

			if parent != nil && parent.def != nil {
				r.param(parent.def, ev)
			}

		case lang.EventBare:
			if parent != nil {
				r.bare(parent, ev)
			}
		}
	}
}

func isChecked(c schema.Context) bool {
	return c == schema.ContextTrigger || c == schema.ContextEffect
}

// classify decides the context of the block opened by ev.
func (r *run) classify(parent *frame, ev lang.Event) *frame {
	if ev.Name == "" {
		return &frame{}
	}

	if ev.Depth == 0 {
		switch {
		case !r.entity.Freeform:
			return &frame{name: ev.Name, ctx: r.entity.Body}
		case r.entity.Body != schema.ContextUnknown:
			return &frame{name: ev.Name, ctx: r.entity.Body}
		}
	}

	if ev.Depth == 1 && !r.entity.Freeform {
		if fs, ok := r.entity.Field(ev.Name); ok {
			f := &frame{name: ev.Name}

			switch fs.Type {
			case schema.TypeTrigger:
				f.ctx = schema.ContextTrigger
			case schema.TypeEffect:
				f.ctx = schema.ContextEffect
			case schema.TypeList:
				f.isList, f.ref = true, fs.Ref
			case schema.TypeBlock, schema.TypeModifier:
				f.ctx = schema.ContextDynamic
			default:
				return r.byName(parent, ev.Name)
			}

			if blk, ok := r.base.Block(ev.Name); ok {
				f.block = blk
			}

			return f
		}
	}

	return r.byName(parent, ev.Name)
}

// byName classifies a block from its name and its parent alone.
func (r *run) byName(parent *frame, name string) *frame {
	f := &frame{name: name}

	var inherited schema.Context
	if parent != nil {
		inherited = parent.ctx
	}

	blk, _ := r.base.Block(name)
	f.block = blk

	role := r.base.Role(name)
	if c, ok := role.Context(); ok {
		f.ctx = c

		return f
	}

	if role == schema.RoleControl || role == schema.RoleScope {
		f.ctx = inherited

		return f
	}

	if parent == nil {
		return f
	}

	if pb := parent.block; pb != nil && ((pb.Weighted && lang.IsNumber(name)) || pb.Cases) {
		f.ctx, f.entry = inherited, pb.Entry

		return f
	}

	if d, ok := r.base.Iterator(inherited, name); ok {
		f.ctx, f.def = inherited, d

		return f
	}

	if d, ok := r.base.Resolve(inherited, name); ok {
		f.ctx, f.def = schema.ContextDynamic, d

		return f
	}

	return f
}

// accepts reports whether name is a parameter of the frame rather than a
// trigger or effect in its own right.
func (r *run) accepts(f *frame, name string) bool {
	switch {
	case f.def != nil && f.def.HasParam(name):
		return true
	case f.block != nil && slices.Contains(f.block.Params, name):
		return true
	case slices.Contains(f.entry, name):
		return true
	default:
		return r.base.IsParam(f.name, name)
	}
}

// child checks a field or block opener directly inside a trigger or
// effect block.
func (r *run) child(f *frame, ev lang.Event) {
	name := ev.Name
	if name == "" || strings.Contains(name, "$") || strings.HasPrefix(name, "@") {
		return
	}

	if r.accepts(f, name) || r.base.Role(name) != schema.RoleNone {
		return
	}

	if ev.Kind == lang.EventOpen {
		if b := f.block; b != nil && ((b.Weighted && lang.IsNumber(name)) || b.Cases) {
			return
		}

		if _, ok := r.base.Iterator(f.ctx, name); ok {
			return
		}
	}

	if d, ok := r.base.Resolve(f.ctx, name); ok {
		r.reference(d, ev)

		return
	}

	at := rangeOf(ev.At)

	if _, ok := r.base.Resolve(f.ctx.Opposite(), name); ok {
		r.emit.Emit(diag.RuleWrongContext, at,
			"%s %q used in %s context", f.ctx.Opposite(), name, f.ctx)

		return
	}

	if r.scripted(f.ctx, name) {
		return
	}

	msg := "unknown " + f.ctx.String() + " %q"
	if s := suggest(name, r.base.Names(f.ctx)); s != "" {
		r.emit.Emit(diag.RuleUnknownIdentifier, at, msg+"; did you mean %q?", name, s)

		return
	}

	r.emit.Emit(diag.RuleUnknownIdentifier, at, msg, name)
}

// scripted reports whether name is assumed to be a scripted effect or
// trigger defined in another file.
func (r *run) scripted(ctx schema.Context, name string) bool {
	if r.index != nil {
		kind := schema.KindScriptedTrigger
		if ctx == schema.ContextEffect {
			kind = schema.KindScriptedEffect
		}

		return r.index.Has(string(kind), name)
	}

	return r.fallback == FallbackUnderscore && strings.Contains(name, "_")
}

// reference checks the right-hand side of name = value against the symbol
// index when d declares what its value refers to.
func (r *run) reference(d *schema.Definition, ev lang.Event) {
	if d.Value == "" || r.index == nil || ev.Kind != lang.EventField {
		return
	}

	v := unquote(ev.Value)
	if !r.literal(v) {
		return
	}

	if !r.index.Has(d.Value, v) {
		r.emit.Emit(diag.RuleUnknownReference, rangeOf(ev.ValueAt),
			"%s refers to unknown %s %q", d.Name, d.Value, v)
	}
}

// param checks the value of a parameter of d, as in
// trigger_event = { id = foo.1 }, when d declares what it refers to.
func (r *run) param(d *schema.Definition, ev lang.Event) {
	kind, ok := d.ParamRef(ev.Name)
	if !ok || r.index == nil {
		return
	}

	v := unquote(ev.Value)
	if !r.literal(v) {
		return
	}

	if !r.index.Has(kind, v) {
		r.emit.Emit(diag.RuleUnknownReference, rangeOf(ev.ValueAt),
			"%s %s refers to unknown %s %q", d.Name, ev.Name, kind, v)
	}
}

// literal reports whether v names a symbol directly, as opposed to a
// scope, a boolean, a number or a computed value.
func (r *run) literal(v string) bool {
	switch {
	case v == "", v == "yes", v == "no":
		return false
	case strings.HasPrefix(v, "@"), strings.Contains(v, "$"):
		return false
	case lang.IsNumber(v), r.base.IsScopeChanger(v):
		return false
	default:
		return true
	}
}

// bare checks a bare word. Inside trigger and effect blocks only numbers
// and strings may stand alone; inside list fields each word must name a
// known symbol.
func (r *run) bare(f *frame, ev lang.Event) {
	switch {
	case isChecked(f.ctx):
		if ev.Quoted || lang.IsNumber(ev.Name) {
			return
		}

		r.emit.Emit(diag.RuleUnexpectedBare, rangeOf(ev.At),
			"unexpected bare value %q in %s block", ev.Name, f.ctx)

	case f.isList:
		if f.ref == "" || r.index == nil {
			return
		}

		v := unquote(ev.Name)
		if !r.literal(v) {
			return
		}

		if !r.index.Has(f.ref, v) {
			r.emit.Emit(diag.RuleUnknownReference, rangeOf(ev.At),
				"%s lists unknown %s %q", f.name, f.ref, v)
		}
	}
}
