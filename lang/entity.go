package lang

// Field is a depth-1 assignment of an entity.
type Field struct {
	Name  string
	Op    string
	Value string
	// Block is set when the value is a block; Value then holds the tag of a
	// tagged block, or nothing.
	Block   bool
	Quoted  bool
	At      Span
	ValueAt Span
}

// Entity is a named top-level block and its direct fields.
type Entity struct {
	Name string
	At   Span
	// EndLine is the line of the closing brace, or the last line of the
	// document if the entity is never closed.
	EndLine int
	// Fields maps each name to its first occurrence.
	Fields map[string]*Field
	// Order holds every field in declaration order, repeats included.
	Order []*Field
}

// Field returns the first occurrence of the named field.
func (e *Entity) Field(name string) (*Field, bool) {
	f, ok := e.Fields[name]

	return f, ok
}

// Entities groups the events of r into top-level entities. Anonymous
// top-level blocks and top-level fields do not form entities.
func (r *Result) Entities() []*Entity {
	var (
		out []*Entity
		cur *Entity
	)

	for _, ev := range r.Events {
		switch {
		case ev.Kind == EventOpen && ev.Depth == 0:
			if ev.Name == "" {
				cur = nil

				continue
			}

			cur = &Entity{Name: ev.Name, At: ev.At, EndLine: -1, Fields: map[string]*Field{}}
			out = append(out, cur)

		case ev.Kind == EventClose && ev.Depth == 0:
			if cur != nil {
				cur.EndLine = ev.At.Line
			}

			cur = nil

		case cur != nil && ev.Depth == 1 && ev.Name != "":
			if ev.Kind != EventField && ev.Kind != EventOpen {
				continue
			}

			f := &Field{
				Name:    ev.Name,
				Op:      ev.Op,
				Value:   ev.Value,
				Block:   ev.Kind == EventOpen,
				Quoted:  ev.Quoted,
				At:      ev.At,
				ValueAt: ev.ValueAt,
			}

			cur.Order = append(cur.Order, f)
			if _, dup := cur.Fields[f.Name]; !dup {
				cur.Fields[f.Name] = f
			}
		}
	}

	for _, e := range out {
		if e.EndLine < 0 {
			e.EndLine = max(r.Lines-1, e.At.Line)
		}
	}

	return out
}
