package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-yaml"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/ardnew/pdxlint/diag"
)

// report is the outcome of checking one document.
type report struct {
	File        string    `json:"file"        yaml:"file"`
	Kind        string    `json:"kind"        yaml:"kind"`
	Diagnostics diag.List `json:"diagnostics" yaml:"diagnostics"`
}

// renderer writes reports as text, JSON or YAML.
type renderer struct {
	format string

	file  lipgloss.Style
	pos   lipgloss.Style
	rule  lipgloss.Style
	total lipgloss.Style
	sev   map[diag.Severity]lipgloss.Style
}

// useColor decides whether text output to w is colorized. "auto" colors
// terminals unless NO_COLOR is set.
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}

	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}

	f, ok := w.(*os.File)

	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

func newRenderer(w io.Writer, format string, color bool) *renderer {
	lr := lipgloss.NewRenderer(w)
	if color {
		lr.SetColorProfile(termenv.ANSI256)
	} else {
		lr.SetColorProfile(termenv.Ascii)
	}

	return &renderer{
		format: format,
		file:   lr.NewStyle().Bold(true),
		pos:    lr.NewStyle().Faint(true),
		rule:   lr.NewStyle().Foreground(lipgloss.Color("8")),
		total:  lr.NewStyle().Bold(true),
		sev: map[diag.Severity]lipgloss.Style{
			diag.SeverityError:   lr.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
			diag.SeverityWarning: lr.NewStyle().Foreground(lipgloss.Color("3")),
			diag.SeverityInfo:    lr.NewStyle().Foreground(lipgloss.Color("4")),
			diag.SeverityHint:    lr.NewStyle().Foreground(lipgloss.Color("6")),
		},
	}
}

func (r *renderer) render(w io.Writer, reports []report) error {
	switch r.format {
	case "json":
		data, err := json.MarshalIndent(reports, "", "  ")
		if err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

		_, err = fmt.Fprintf(w, "%s\n", data)

		return err

	case "yaml":
		data, err := yaml.MarshalWithOptions(reports, yaml.Indent(2), yaml.IndentSequence(true))
		if err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

		_, err = w.Write(data)

		return err

	default:
		return r.text(w, reports)
	}
}

// text writes one line per diagnostic followed by a summary:
//
//	events/a.txt:3:5: warning: unknown effect "add_gld" [unknown-identifier]
//	1 warning in 1 file
func (r *renderer) text(w io.Writer, reports []report) error {
	var (
		b      strings.Builder
		counts = map[diag.Severity]int{}
		files  int
	)

	for _, rep := range reports {
		if len(rep.Diagnostics) > 0 {
			files++
		}

		for _, d := range rep.Diagnostics {
			counts[d.Severity]++

			fmt.Fprintf(&b, "%s%s %s %s %s\n",
				r.file.Render(rep.File),
				r.pos.Render(fmt.Sprintf(":%d:%d:", d.Range.Line+1, d.Range.StartColumn+1)),
				r.severity(d.Severity).Render(d.Severity.String()+":"),
				d.Message,
				r.rule.Render("["+string(d.Rule)+"]"),
			)
		}
	}

	b.WriteString(r.total.Render(summary(counts, files, len(reports))))
	b.WriteByte('\n')

	_, err := io.WriteString(w, b.String())

	return err
}

func (r *renderer) severity(s diag.Severity) lipgloss.Style {
	if st, ok := r.sev[s]; ok {
		return st
	}

	return r.rule
}

func summary(counts map[diag.Severity]int, files, checked int) string {
	if len(counts) == 0 {
		return fmt.Sprintf("no problems in %s", plural(checked, "file"))
	}

	var parts []string

	for _, s := range []diag.Severity{diag.SeverityError, diag.SeverityWarning, diag.SeverityInfo, diag.SeverityHint} {
		if n := counts[s]; n > 0 {
			parts = append(parts, plural(n, s.String()))
		}
	}

	return fmt.Sprintf("%s in %s", strings.Join(parts, ", "), plural(files, "file"))
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}

	return fmt.Sprintf("%d %ss", n, noun)
}
