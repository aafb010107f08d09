package schema

import (
	"regexp"
	"strings"
)

var placeholder = regexp.MustCompile(`\$[A-Z][A-Z0-9_]*\$`)

// Pattern is a compiled template name sharing one definition.
type Pattern struct {
	re  *regexp.Regexp
	Def *Definition
}

// compilePattern turns set_relation_$RELATION$ into ^set_relation_\w+$.
func compilePattern(def *Definition) Pattern {
	parts := placeholder.Split(def.Name, -1)
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}

	expr := "^" + strings.Join(parts, `\w+`) + "$"

	return Pattern{re: regexp.MustCompile(expr), Def: def}
}

// Match reports whether name is a member of the template family.
func (p Pattern) Match(name string) bool { return p.re.MatchString(name) }

func (p Pattern) String() string { return p.re.String() }

// registry is one of the two name tables (effects or triggers).
type registry struct {
	exact    map[string]*Definition
	patterns []Pattern
}

func newRegistry() registry {
	return registry{exact: map[string]*Definition{}}
}

// add registers def, replacing any earlier definition of the same name.
func (r *registry) add(def *Definition) {
	if !def.Templated() {
		r.exact[def.Name] = def

		return
	}

	for i, p := range r.patterns {
		if p.Def.Name == def.Name {
			r.patterns[i] = compilePattern(def)

			return
		}
	}

	r.patterns = append(r.patterns, compilePattern(def))
}

// lookup resolves name exactly, then against each pattern in order.
func (r *registry) lookup(name string) (*Definition, bool) {
	if d, ok := r.exact[name]; ok {
		return d, true
	}

	for _, p := range r.patterns {
		if p.Match(name) {
			return p.Def, true
		}
	}

	return nil, false
}

func (r *registry) names() []string {
	names := make([]string, 0, len(r.exact)+len(r.patterns))
	for n := range r.exact {
		names = append(names, n)
	}

	for _, p := range r.patterns {
		names = append(names, p.Def.Name)
	}

	return names
}
