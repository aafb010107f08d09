package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/ardnew/pdxlint/schema"
)

// Schema inspects the knowledge base.
type Schema struct {
	Kinds  SchemaKinds  `cmd:"" help:"List entity kinds"`
	Fields SchemaFields `cmd:"" help:"List the fields of an entity kind"`
	Lookup SchemaLookup `cmd:"" help:"Resolve an identifier"`
	Search SchemaSearch `cmd:"" help:"Fuzzy-search trigger and effect names"`
}

// SchemaKinds lists the entity kinds.
type SchemaKinds struct{}

// Run executes the schema kinds command.
func (*SchemaKinds) Run(ctx context.Context) error {
	base, err := settingsFrom(ctx).Base()
	if err != nil {
		return err
	}

	out := streamsFrom(ctx).out

	for _, k := range base.Kinds() {
		e, _ := base.Entity(k)

		fields := strconv.Itoa(len(e.Fields)) + " fields"
		if e.Freeform {
			fields = "freeform"
		}

		fmt.Fprintf(out, "%-18s body=%-8s %s\n", k, e.Body, fields)
	}

	return nil
}

// SchemaFields lists the fields of one kind.
type SchemaFields struct {
	Kind string `arg:"" help:"Entity kind"`
}

// Run executes the schema fields command.
func (f *SchemaFields) Run(ctx context.Context) error {
	base, err := settingsFrom(ctx).Base()
	if err != nil {
		return err
	}

	e, ok := base.Entity(schema.ParseKind(f.Kind))
	if !ok {
		return ErrUnknownKind.With(slog.String("kind", f.Kind))
	}

	out := streamsFrom(ctx).out

	for _, fs := range e.Fields {
		fmt.Fprintf(out, "%-28s %s\n", fs.Name, describeField(fs))
	}

	return nil
}

func describeField(fs *schema.Field) string {
	parts := []string{string(fs.Type)}

	if fs.Required {
		parts = append(parts, "required")
	}

	if len(fs.Values) > 0 {
		parts = append(parts, "["+strings.Join(fs.Values, " ")+"]")
	}

	if fs.Min != nil {
		parts = append(parts, "min="+strconv.FormatFloat(*fs.Min, 'f', -1, 64))
	}

	if fs.Max != nil {
		parts = append(parts, "max="+strconv.FormatFloat(*fs.Max, 'f', -1, 64))
	}

	if fs.Ref != "" {
		parts = append(parts, "ref="+fs.Ref)
	}

	return strings.Join(parts, " ")
}

// SchemaLookup resolves one identifier against the registries and blocks.
type SchemaLookup struct {
	Name    string `arg:"" help:"Identifier to resolve"`
	Context string `help:"Registry to search (default: both)" enum:",trigger,effect" default:""`
}

// Run executes the schema lookup command.
func (l *SchemaLookup) Run(ctx context.Context) error {
	base, err := settingsFrom(ctx).Base()
	if err != nil {
		return err
	}

	out := streamsFrom(ctx).out
	found := false

	for _, c := range contexts(l.Context) {
		d, ok := base.Resolve(c, l.Name)
		if !ok {
			continue
		}

		found = true
		how := "exact"

		if d.Name != l.Name {
			how = "pattern " + d.Name
		}

		fmt.Fprintf(out, "%s %s (%s)\n", c, l.Name, how)
		describeDefinition(out, d)
	}

	if role := base.Role(l.Name); role != schema.RoleNone {
		found = true

		fmt.Fprintf(out, "block %s (role %s)\n", l.Name, role)

		if scope, ok := base.ScopeOf(l.Name); ok && scope != "" {
			fmt.Fprintf(out, "  output: %s\n", scope)
		}
	}

	if !found {
		return ErrNotFound.With(slog.String("name", l.Name))
	}

	return nil
}

func describeDefinition(out io.Writer, d *schema.Definition) {
	if len(d.Scopes) > 0 {
		fmt.Fprintf(out, "  scopes: %s\n", strings.Join(d.Scopes, ", "))
	}

	if len(d.Params) > 0 {
		fmt.Fprintf(out, "  params: %s\n", strings.Join(d.Params, ", "))
	}

	if d.Output != "" {
		fmt.Fprintf(out, "  output: %s\n", d.Output)
	}

	if d.Value != "" {
		fmt.Fprintf(out, "  value:  %s\n", d.Value)
	}

	for _, p := range slices.Sorted(maps.Keys(d.Refs)) {
		fmt.Fprintf(out, "  ref:    %s -> %s\n", p, d.Refs[p])
	}

	if d.Iterator {
		fmt.Fprintln(out, "  iterator")
	}
}

func contexts(name string) []schema.Context {
	switch c := schema.ParseContext(name); c {
	case schema.ContextTrigger, schema.ContextEffect:
		return []schema.Context{c}
	default:
		return []schema.Context{schema.ContextTrigger, schema.ContextEffect}
	}
}

// SchemaSearch ranks registry names by fuzzy match.
type SchemaSearch struct {
	Query   string `arg:"" help:"Search text"`
	Context string `help:"Registry to search (default: both)" enum:",trigger,effect" default:""`
	Limit   int    `help:"Maximum results"                    short:"n"              default:"10"`
}

// Run executes the schema search command.
func (s *SchemaSearch) Run(ctx context.Context) error {
	base, err := settingsFrom(ctx).Base()
	if err != nil {
		return err
	}

	var (
		names  []string
		labels []schema.Context
	)

	for _, c := range contexts(s.Context) {
		for _, n := range base.Names(c) {
			names = append(names, n)
			labels = append(labels, c)
		}
	}

	matches := fuzzy.Find(s.Query, names)
	if len(matches) == 0 {
		return ErrNotFound.With(slog.String("query", s.Query))
	}

	if s.Limit > 0 && len(matches) > s.Limit {
		matches = matches[:s.Limit]
	}

	out := streamsFrom(ctx).out

	for _, m := range matches {
		fmt.Fprintf(out, "%-8s %s\n", labels[m.Index], m.Str)
	}

	return nil
}
