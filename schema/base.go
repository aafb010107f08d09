package schema

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"
)

//go:embed data/*.yaml
var bundled embed.FS

// Base is an immutable knowledge base.
type Base struct {
	version  int
	effects  registry
	triggers registry
	blocks   map[string]*Block
	prefixes map[string]bool
	entities map[Kind]*Entity
}

// Default returns the knowledge base built from the bundled data. It panics
// if the bundled data is invalid.
var Default = sync.OnceValue(func() *Base {
	b, err := LoadBundled()
	if err != nil {
		panic(err)
	}

	return b
})

// Load builds a Base from the given YAML documents, in order. Later
// documents override definitions, blocks and entity kinds of the same name
// declared by earlier ones.
func Load(readers ...io.Reader) (*Base, error) {
	docs := make([]*document, 0, len(readers))

	for i, r := range readers {
		name := "document " + strconv.Itoa(i)
		if n, ok := r.(interface{ Name() string }); ok {
			name = n.Name()
		}

		doc, err := decode(name, r)
		if err != nil {
			return nil, err
		}

		docs = append(docs, doc)
	}

	return build(docs), nil
}

// LoadBundled builds a Base from the bundled data followed by overlays.
func LoadBundled(overlays ...io.Reader) (*Base, error) {
	names, err := fs.Glob(bundled, "data/*.yaml")
	if err != nil {
		return nil, ErrDecode.Wrap(err)
	}

	slices.Sort(names)

	readers := make([]io.Reader, 0, len(names)+len(overlays))

	for _, name := range names {
		f, err := bundled.Open(name)
		if err != nil {
			return nil, ErrDecode.Wrap(err)
		}
		defer f.Close()

		readers = append(readers, namedReader{f, name})
	}

	return Load(append(readers, overlays...)...)
}

type namedReader struct {
	io.Reader
	name string
}

func (r namedReader) Name() string { return r.name }

func build(docs []*document) *Base {
	b := &Base{
		effects:  newRegistry(),
		triggers: newRegistry(),
		blocks:   map[string]*Block{},
		prefixes: map[string]bool{},
		entities: map[Kind]*Entity{},
	}

	iterParams := map[string][]string{}
	entityDocs := map[Kind]entityDoc{}

	var common []fieldDoc

	for _, doc := range docs {
		b.version = max(b.version, doc.Version)

		for _, d := range doc.Effects {
			b.effects.add(d.definition())
		}

		for _, d := range doc.Triggers {
			b.triggers.add(d.definition())
		}

		maps.Copy(iterParams, doc.IteratorParams)

		for _, it := range doc.Iterators {
			b.addIterator(it, iterParams)
		}

		for name, bd := range doc.Blocks {
			b.blocks[name] = &Block{
				Name:     name,
				Role:     Role(bd.Role),
				Params:   bd.Params,
				Entry:    bd.Entry,
				Cases:    bd.Cases,
				Weighted: bd.Weighted,
			}
		}

		for _, s := range doc.Scopes {
			b.blocks[s.Name] = &Block{Name: s.Name, Role: RoleScope, Output: s.Output}
		}

		for _, p := range doc.ScopePrefixes {
			b.prefixes[p] = true
		}

		common = overlayFields(common, doc.Common)

		for name, ed := range doc.Entities {
			entityDocs[Kind(name)] = ed
		}
	}

	for kind, ed := range entityDocs {
		var fields []*Field

		if !ed.Freeform {
			fields = toFields(addMissingFields(slices.Clone(ed.Fields), common))
		}

		b.entities[kind] = newEntity(kind, ParseContext(ed.Body), ed.Freeform, fields)
	}

	if _, ok := b.entities[KindGeneric]; !ok {
		b.entities[KindGeneric] = newEntity(KindGeneric, ContextUnknown, true, nil)
	}

	return b
}

func (d definitionDoc) definition() *Definition {
	return &Definition{
		Name:   d.Name,
		Scopes: d.Scopes,
		Params: d.Params,
		Output: d.Output,
		Value:  d.Value,
		Refs:   d.Refs,
	}
}

// addIterator expands an iterator base into its prefixed definitions: any_
// into the trigger registry and the others into the effect registry.
func (b *Base) addIterator(it iteratorDoc, params map[string][]string) {
	prefixes := it.Prefixes
	if len(prefixes) == 0 {
		prefixes = iteratorPrefixes
	}

	for _, p := range prefixes {
		def := &Definition{
			Name:     p + "_" + it.Name,
			Scopes:   it.Scopes,
			Params:   append(slices.Clone(params[p]), it.Params...),
			Output:   it.Output,
			Iterator: true,
		}

		if p == "any" {
			b.triggers.add(def)
		} else {
			b.effects.add(def)
		}
	}
}

// overlayFields replaces same-named fields of dst with those of src and
// appends the rest.
func overlayFields(dst, src []fieldDoc) []fieldDoc {
	for _, f := range src {
		if i := indexField(dst, f.Name); i >= 0 {
			dst[i] = f
		} else {
			dst = append(dst, f)
		}
	}

	return dst
}

// addMissingFields appends the fields of src not already named in dst.
func addMissingFields(dst, src []fieldDoc) []fieldDoc {
	for _, f := range src {
		if indexField(dst, f.Name) < 0 {
			dst = append(dst, f)
		}
	}

	return dst
}

func indexField(fields []fieldDoc, name string) int {
	return slices.IndexFunc(fields, func(f fieldDoc) bool { return f.Name == name })
}

func toFields(docs []fieldDoc) []*Field {
	fields := make([]*Field, len(docs))
	for i, f := range docs {
		fields[i] = &Field{
			Name:     f.Name,
			Type:     FieldType(f.Type),
			Required: f.Required,
			Values:   f.Values,
			Min:      f.Min,
			Max:      f.Max,
			Ref:      f.Ref,
		}
	}

	return fields
}

// Version returns the highest version declared by the loaded documents.
func (b *Base) Version() int { return b.version }

// Effect resolves name in the effect registry.
func (b *Base) Effect(name string) (*Definition, bool) { return b.effects.lookup(name) }

// Trigger resolves name in the trigger registry.
func (b *Base) Trigger(name string) (*Definition, bool) { return b.triggers.lookup(name) }

// Resolve looks name up in the registry matching ctx. Only trigger and
// effect contexts have a registry.
func (b *Base) Resolve(ctx Context, name string) (*Definition, bool) {
	switch ctx {
	case ContextTrigger:
		return b.Trigger(name)
	case ContextEffect:
		return b.Effect(name)
	default:
		return nil, false
	}
}

// Block returns the named block, including scope changers.
func (b *Base) Block(name string) (*Block, bool) {
	blk, ok := b.blocks[name]

	return blk, ok
}

// Role classifies a block name. Besides the declared blocks, any link with
// a scope prefix (scope:actor, title:k_france) and any dotted chain of
// scope changers (root.liege, scope:x.faith) is a scope changer.
func (b *Base) Role(name string) Role {
	if blk, ok := b.blocks[name]; ok {
		return blk.Role
	}

	if b.IsScopeChanger(name) {
		return RoleScope
	}

	return RoleNone
}

// IsScopeChanger reports whether entering name changes the current scope
// without changing the trigger/effect classification.
func (b *Base) IsScopeChanger(name string) bool {
	if name == "" {
		return false
	}

	for seg := range strings.SplitSeq(name, ".") {
		if prefix, id, ok := strings.Cut(seg, ":"); ok {
			if !b.prefixes[prefix] || !isIdentifier(id) {
				return false
			}

			continue
		}

		blk, ok := b.blocks[seg]
		if !ok || blk.Role != RoleScope {
			return false
		}
	}

	return true
}

var iteratorPrefixPattern = func() []string {
	p := make([]string, len(iteratorPrefixes))
	for i, s := range iteratorPrefixes {
		p[i] = s + "_"
	}

	return p
}()

// Iterator returns the iterator definition named by name in the registry
// matching ctx.
func (b *Base) Iterator(ctx Context, name string) (*Definition, bool) {
	if !slices.ContainsFunc(iteratorPrefixPattern, func(p string) bool {
		return strings.HasPrefix(name, p)
	}) {
		return nil, false
	}

	d, ok := b.Resolve(ctx, name)
	if !ok || !d.Iterator {
		return nil, false
	}

	return d, true
}

// IsParam reports whether name is a declared parameter of the block or
// definition named opening.
func (b *Base) IsParam(opening, name string) bool {
	if blk, ok := b.blocks[opening]; ok && slices.Contains(blk.Params, name) {
		return true
	}

	if d, ok := b.Effect(opening); ok && d.HasParam(name) {
		return true
	}

	if d, ok := b.Trigger(opening); ok && d.HasParam(name) {
		return true
	}

	return false
}

// ScopeOf returns the scope type entered by the block, scope changer or
// definition named name. The result is empty when the target scope is not
// statically known (root, prev, scope:<id>).
func (b *Base) ScopeOf(name string) (string, bool) {
	if blk, ok := b.blocks[name]; ok && blk.Role == RoleScope {
		return blk.Output, true
	}

	if b.IsScopeChanger(name) {
		i := strings.LastIndexByte(name, '.')
		if i < 0 {
			return "", true
		}

		return b.ScopeOf(name[i+1:])
	}

	if d, ok := b.Effect(name); ok && d.Output != "" {
		return d.Output, true
	}

	if d, ok := b.Trigger(name); ok && d.Output != "" {
		return d.Output, true
	}

	return "", false
}

// Entity returns the schema of kind.
func (b *Base) Entity(kind Kind) (*Entity, bool) {
	e, ok := b.entities[kind]

	return e, ok
}

// Kinds returns all entity kinds in sorted order.
func (b *Base) Kinds() []Kind {
	return slices.Sorted(maps.Keys(b.entities))
}

// Names returns the sorted registry names of ctx, including templates. For
// ContextUnknown both registries are returned.
func (b *Base) Names(ctx Context) []string {
	var names []string

	switch ctx {
	case ContextTrigger:
		names = b.triggers.names()
	case ContextEffect:
		names = b.effects.names()
	default:
		names = append(b.triggers.names(), b.effects.names()...)
	}

	slices.Sort(names)

	return slices.Compact(names)
}

func (b *Base) String() string {
	return fmt.Sprintf("schema v%d (%d effects, %d triggers, %d blocks, %d kinds)",
		b.version, len(b.effects.names()), len(b.triggers.names()), len(b.blocks), len(b.entities))
}
