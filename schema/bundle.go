package schema

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/pdxlint/pkg"
)

var (
	// ErrDecode is returned when a bundle document is not valid YAML or
	// contains keys the bundle format does not define.
	ErrDecode = pkg.NewError("decode schema bundle")
	// ErrInvalid is returned when a bundle document fails validation.
	ErrInvalid = pkg.NewError("invalid schema bundle")
)

// document is one YAML file of a bundle. Every section is optional so that
// the bundle can be split across files and overlaid.
type document struct {
	Version        int                  `yaml:"version"         validate:"gte=0"`
	Effects        []definitionDoc      `yaml:"effects"         validate:"dive"`
	Triggers       []definitionDoc      `yaml:"triggers"        validate:"dive"`
	Iterators      []iteratorDoc        `yaml:"iterators"       validate:"dive"`
	IteratorParams map[string][]string  `yaml:"iterator_params" validate:"dive,keys,prefix,endkeys"`
	Blocks         map[string]blockDoc  `yaml:"blocks"          validate:"dive,keys,identifier,endkeys"`
	Scopes         []scopeDoc           `yaml:"scopes"          validate:"dive"`
	ScopePrefixes  []string             `yaml:"scope_prefixes"  validate:"dive,identifier"`
	Common         []fieldDoc           `yaml:"common"          validate:"dive"`
	Entities       map[string]entityDoc `yaml:"entities"        validate:"dive,keys,identifier,endkeys"`
}

type definitionDoc struct {
	Name   string   `yaml:"name"   validate:"required,template"`
	Scopes []string `yaml:"scopes" validate:"dive,identifier"`
	Params []string `yaml:"params" validate:"dive,identifier"`
	Output string   `yaml:"output" validate:"omitempty,identifier"`
	Value  string   `yaml:"value"  validate:"omitempty,identifier"`
	// Refs maps parameters to the index kind their value refers to.
	Refs map[string]string `yaml:"refs" validate:"dive,keys,identifier,endkeys,identifier"`
}

type iteratorDoc struct {
	Name     string   `yaml:"name"     validate:"required,identifier"`
	Scopes   []string `yaml:"scopes"   validate:"dive,identifier"`
	Params   []string `yaml:"params"   validate:"dive,identifier"`
	Output   string   `yaml:"output"   validate:"omitempty,identifier"`
	Prefixes []string `yaml:"prefixes" validate:"dive,prefix"`
}

type blockDoc struct {
	Role     string   `yaml:"role"     validate:"required,oneof=trigger effect dynamic control"`
	Params   []string `yaml:"params"   validate:"dive,identifier"`
	Entry    []string `yaml:"entry"    validate:"dive,identifier"`
	Cases    bool     `yaml:"cases"`
	Weighted bool     `yaml:"weighted" validate:"excluded_with=Cases"`
}

type scopeDoc struct {
	Name   string `yaml:"name"   validate:"required,identifier"`
	Output string `yaml:"output" validate:"omitempty,identifier"`
}

type entityDoc struct {
	Body     string     `yaml:"body"     validate:"omitempty,oneof=trigger effect dynamic unknown"`
	Freeform bool       `yaml:"freeform"`
	Fields   []fieldDoc `yaml:"fields"   validate:"excluded_with=Freeform,dive"`
}

type fieldDoc struct {
	Name     string   `yaml:"name"     validate:"required"`
	Type     string   `yaml:"type"     validate:"required,oneof=boolean integer float string enum block trigger effect modifier list"`
	Required bool     `yaml:"required"`
	Values   []string `yaml:"values"   validate:"required_if=Type enum"`
	Min      *float64 `yaml:"min"`
	Max      *float64 `yaml:"max"`
	Ref      string   `yaml:"ref"      validate:"omitempty,identifier"`
}

var iteratorPrefixes = []string{"any", "every", "random", "ordered"}

var validate = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Names are the dialect's word characters.
	_ = v.RegisterValidation("identifier", func(fl validator.FieldLevel) bool {
		return isIdentifier(fl.Field().String())
	})

	// Registry names may also carry $UPPER$ placeholders.
	_ = v.RegisterValidation("template", func(fl validator.FieldLevel) bool {
		return isIdentifier(placeholder.ReplaceAllString(fl.Field().String(), "x"))
	})

	_ = v.RegisterValidation("prefix", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		for _, p := range iteratorPrefixes {
			if s == p {
				return true
			}
		}

		return false
	})

	v.RegisterStructValidation(func(sl validator.StructLevel) {
		f, _ := sl.Current().Interface().(fieldDoc)
		if f.Min != nil && f.Max != nil && *f.Min > *f.Max {
			sl.ReportError(f.Max, "Max", "max", "gtefield", "Min")
		}

		if len(f.Values) > 0 && f.Type != string(TypeEnum) {
			sl.ReportError(f.Values, "Values", "values", "excluded_unless", "Type enum")
		}
	}, fieldDoc{})

	v.RegisterStructValidation(func(sl validator.StructLevel) {
		d, _ := sl.Current().Interface().(definitionDoc)
		for p := range d.Refs {
			if !slices.Contains(d.Params, p) {
				sl.ReportError(d.Refs, "Refs", "refs", "param", p)
			}
		}
	}, definitionDoc{})

	return v
})

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if r != '_' && (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}

	return true
}

// decode reads and validates one bundle document. name identifies the
// source in errors.
func decode(name string, r io.Reader) (*document, error) {
	var doc document

	dec := yaml.NewDecoder(r, yaml.DisallowUnknownField())
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, ErrDecode.Wrap(err).With(slog.String("source", name))
	}

	if err := validate().Struct(&doc); err != nil {
		return nil, ErrInvalid.Wrap(describe(err)).With(slog.String("source", name))
	}

	return &doc, nil
}

// describe flattens validator errors into one readable error.
func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag())
		if fe.Param() != "" {
			msg += fmt.Sprintf(" (%s)", fe.Param())
		}

		msgs = append(msgs, msg)
	}

	return errors.New(strings.Join(msgs, "; "))
}
