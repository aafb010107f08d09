package schema

import (
	"path"
	"slices"
	"strings"
)

// Kind selects an entity schema. It is normally derived from the path of
// the file being checked.
type Kind string

const (
	KindGeneric         Kind = ""
	KindTrait           Kind = "trait"
	KindDecision        Kind = "decision"
	KindEvent           Kind = "event"
	KindOnAction        Kind = "on_action"
	KindScriptedEffect  Kind = "scripted_effect"
	KindScriptedTrigger Kind = "scripted_trigger"
)

func (k Kind) String() string {
	if k == KindGeneric {
		return "generic"
	}

	return string(k)
}

// ParseKind returns the kind named s. "generic" and the empty string both
// name [KindGeneric].
func ParseKind(s string) Kind {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "generic" {
		return KindGeneric
	}

	return Kind(s)
}

// Context is the classification of a block's interior.
type Context int

const (
	ContextUnknown Context = iota
	ContextTrigger
	ContextEffect
	ContextDynamic
)

func (c Context) String() string {
	switch c {
	case ContextTrigger:
		return "trigger"
	case ContextEffect:
		return "effect"
	case ContextDynamic:
		return "dynamic"
	default:
		return "unknown"
	}
}

// Opposite returns effect for trigger and trigger for effect. Other
// contexts have no opposite and are returned unchanged.
func (c Context) Opposite() Context {
	switch c {
	case ContextTrigger:
		return ContextEffect
	case ContextEffect:
		return ContextTrigger
	default:
		return c
	}
}

// ParseContext parses a context name. Unrecognized names are unknown.
func ParseContext(s string) Context {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trigger":
		return ContextTrigger
	case "effect":
		return ContextEffect
	case "dynamic":
		return ContextDynamic
	default:
		return ContextUnknown
	}
}

// Role is what a named block does to the context of its interior.
type Role string

const (
	RoleNone    Role = ""
	RoleTrigger Role = "trigger"
	RoleEffect  Role = "effect"
	RoleDynamic Role = "dynamic"
	RoleControl Role = "control"
	RoleScope   Role = "scope"
)

// Context returns the interior context a role imposes, and false for roles
// that inherit the enclosing context instead.
func (r Role) Context() (Context, bool) {
	switch r {
	case RoleTrigger:
		return ContextTrigger, true
	case RoleEffect:
		return ContextEffect, true
	case RoleDynamic:
		return ContextDynamic, true
	default:
		return ContextUnknown, false
	}
}

// FieldType is the declared value grammar of a schema field.
type FieldType string

const (
	TypeBoolean  FieldType = "boolean"
	TypeInteger  FieldType = "integer"
	TypeFloat    FieldType = "float"
	TypeString   FieldType = "string"
	TypeEnum     FieldType = "enum"
	TypeBlock    FieldType = "block"
	TypeTrigger  FieldType = "trigger"
	TypeEffect   FieldType = "effect"
	TypeModifier FieldType = "modifier"
	TypeList     FieldType = "list"
)

// Scalar reports whether values of t are written inline (name = value).
func (t FieldType) Scalar() bool {
	switch t {
	case TypeBoolean, TypeInteger, TypeFloat, TypeEnum:
		return true
	default:
		return false
	}
}

// Compound reports whether values of t are written as a block.
func (t FieldType) Compound() bool {
	switch t {
	case TypeBlock, TypeTrigger, TypeEffect, TypeModifier, TypeList:
		return true
	default:
		return false
	}
}

// Field is the schema of one field of an entity kind.
type Field struct {
	Name     string
	Type     FieldType
	Required bool
	Values   []string
	Min      *float64
	Max      *float64
	// Ref is the symbol index kind that list members refer to.
	Ref string
}

// Wildcard reports whether Name is a glob.
func (f *Field) Wildcard() bool { return strings.Contains(f.Name, "*") }

// Match reports whether name is covered by f.
func (f *Field) Match(name string) bool {
	if !f.Wildcard() {
		return f.Name == name
	}

	ok, err := path.Match(f.Name, name)

	return err == nil && ok
}

// Allows reports whether v is one of the declared enum values.
func (f *Field) Allows(v string) bool { return slices.Contains(f.Values, v) }

// Entity is the schema of an entity kind.
type Entity struct {
	Kind Kind
	// Body is the context of the entity's own block.
	Body Context
	// Freeform kinds have no field list.
	Freeform bool
	Fields   []*Field

	exact     map[string]*Field
	wildcards []*Field
}

func newEntity(kind Kind, body Context, freeform bool, fields []*Field) *Entity {
	e := &Entity{
		Kind:     kind,
		Body:     body,
		Freeform: freeform,
		Fields:   fields,
		exact:    make(map[string]*Field, len(fields)),
	}

	for _, f := range fields {
		if f.Wildcard() {
			e.wildcards = append(e.wildcards, f)
		} else {
			e.exact[f.Name] = f
		}
	}

	return e
}

// Field returns the schema of the named field. Exact names take precedence
// over globs.
func (e *Entity) Field(name string) (*Field, bool) {
	if f, ok := e.exact[name]; ok {
		return f, true
	}

	for _, f := range e.wildcards {
		if f.Match(name) {
			return f, true
		}
	}

	return nil, false
}

// Required returns the required fields in declaration order.
func (e *Entity) Required() []*Field {
	var req []*Field

	for _, f := range e.Fields {
		if f.Required {
			req = append(req, f)
		}
	}

	return req
}

// Definition describes an effect or trigger.
type Definition struct {
	Name string
	// Scopes lists the scope types the definition may be used in.
	Scopes []string
	// Params are the names accepted inside name = { ... }.
	Params []string
	// Output is the scope type entered by the definition, if any.
	Output string
	// Value is the symbol index kind that a scalar right-hand side refers to.
	Value string
	// Refs maps parameter names to the symbol index kind of their value.
	Refs     map[string]string
	Iterator bool
}

// Templated reports whether Name contains $PARAM$ placeholders.
func (d *Definition) Templated() bool { return placeholder.MatchString(d.Name) }

// HasParam reports whether name is a declared parameter of d.
func (d *Definition) HasParam(name string) bool { return slices.Contains(d.Params, name) }

// ParamRef returns the symbol index kind that the value of parameter name
// refers to, if any.
func (d *Definition) ParamRef(name string) (string, bool) {
	kind, ok := d.Refs[name]

	return kind, ok && kind != ""
}

// Block is a named block with a fixed role.
type Block struct {
	Name   string
	Role   Role
	Params []string
	// Entry lists the names accepted inside a case or weight label.
	Entry []string
	// Cases marks blocks whose child blocks are case labels (switch).
	Cases bool
	// Weighted marks blocks whose child blocks are numeric weights.
	Weighted bool
	// Output is the scope type a scope changer enters.
	Output string
}
