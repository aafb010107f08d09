package lang

import (
	"strconv"
	"strings"
)

// EventKind classifies a scan event.
type EventKind int

const (
	// EventOpen is a block opener: name <op> {, name <op> tag {, or {.
	EventOpen EventKind = iota
	// EventClose is the } matching an earlier EventOpen.
	EventClose
	// EventField is a simple assignment: name <op> value.
	EventField
	// EventBare is a value with no name: a word or string standing alone.
	EventBare
)

func (k EventKind) String() string {
	switch k {
	case EventOpen:
		return "open"
	case EventClose:
		return "close"
	case EventField:
		return "field"
	case EventBare:
		return "bare"
	default:
		return "event"
	}
}

// Span is a single-line range of runes. End is exclusive.
type Span struct {
	Line   int
	Column int
	End    int
}

func spanOf(t Token) Span {
	end := t.EndColumn
	if t.EndLine != t.Line {
		end = t.Column + 1
	}

	return Span{Line: t.Line, Column: t.Column, End: end}
}

// Event is one structural element of a document.
type Event struct {
	Kind EventKind
	// Depth is the number of blocks enclosing the event. For EventOpen and
	// EventClose it is the depth of the block's parent.
	Depth int
	// Name is the field or block name, or the bare word. Empty for an
	// anonymous block and for EventClose.
	Name string
	Op   string
	// Value is the raw value text of a field, the tag of a tagged block, or
	// the text of a bare word. Strings keep their quotes.
	Value string
	// Quoted is set when Value is a string literal.
	Quoted bool
	// At locates Name, or the brace for anonymous blocks and EventClose.
	At Span
	// ValueAt locates Value when it is set.
	ValueAt Span
}

// IsNumber reports whether a bare word or value is a decimal number.
func IsNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)

	return err == nil && !strings.ContainsAny(s, "xXpPeEiInN_")
}

// ProblemKind classifies a structural problem.
type ProblemKind int

const (
	// ProblemUnmatchedClose is a } with no open block.
	ProblemUnmatchedClose ProblemKind = iota
	// ProblemUnclosed is a block still open at end of input.
	ProblemUnclosed
	// ProblemIncomplete is an operator with no value or block after it.
	ProblemIncomplete
	// ProblemMissingName is an operator with no name before it.
	ProblemMissingName
)

func (k ProblemKind) String() string {
	switch k {
	case ProblemUnmatchedClose:
		return "unmatched close"
	case ProblemUnclosed:
		return "unclosed block"
	case ProblemIncomplete:
		return "incomplete assignment"
	case ProblemMissingName:
		return "missing name"
	default:
		return "problem"
	}
}

// Problem is a structural defect found while scanning.
type Problem struct {
	Kind ProblemKind
	At   Span
	// Name is the block or field involved, if any.
	Name string
}

// Result is the outcome of [Scan].
type Result struct {
	Events   []Event
	Problems []Problem
	// Lines is the number of lines in the document.
	Lines int
}

// state is the statement-level state of the scanner. String literals that
// span lines are resolved by the lexer, which carries its own in-string
// state across line ends.
type state int

const (
	// atLineStart expects the start of a new statement.
	atLineStart state = iota
	// afterIdentifier holds a word that may be the name of an assignment.
	afterIdentifier
	// afterOperator holds a name and operator awaiting a value or block.
	afterOperator
)

type scanner struct {
	toks  []Token
	pos   int
	state state
	name  Token
	op    Token
	open  []Event // stack of EventOpen
	res   Result
}

// Scan reads text into events and structural problems.
func Scan(text string) *Result {
	s := &scanner{toks: Tokenize(text)}
	s.res.Lines = strings.Count(text, "\n") + 1

	for s.pos < len(s.toks) {
		t := s.toks[s.pos]
		s.pos++
		s.step(t)
	}

	s.finish()

	return &s.res
}

func (s *scanner) peek() (Token, bool) {
	if s.pos < len(s.toks) {
		return s.toks[s.pos], true
	}

	return Token{}, false
}

func (s *scanner) step(t Token) {
	switch s.state {
	case atLineStart:
		s.start(t)

	case afterIdentifier:
		if t.Kind == TokenOperator {
			s.op = t
			s.state = afterOperator

			return
		}

		s.bare(s.name)
		s.state = atLineStart
		s.start(t)

	case afterOperator:
		s.value(t)
	}
}

// start handles t as the first token of a statement.
func (s *scanner) start(t Token) {
	switch t.Kind {
	case TokenWord:
		s.name = t
		s.state = afterIdentifier

	case TokenString:
		s.bare(t)

	case TokenOperator:
		s.problem(ProblemMissingName, spanOf(t), "")
		s.name = Token{}
		s.op = t
		s.state = afterOperator

	case TokenOpen:
		s.push(Event{Kind: EventOpen, At: spanOf(t)})

	case TokenClose:
		s.pop(t)
	}
}

// value handles t following name <op>.
func (s *scanner) value(t Token) {
	s.state = atLineStart

	switch t.Kind {
	case TokenOpen:
		s.push(s.named(EventOpen))

	case TokenWord, TokenString:
		next, ok := s.peek()

		// name =
		// other = value
		if ok && t.Line > s.op.Line && next.Kind == TokenOperator && next.Line == t.Line {
			s.incomplete()
			s.start(t)

			return
		}

		ev := s.named(EventField)
		ev.Value = t.Text
		ev.Quoted = t.Kind == TokenString
		ev.ValueAt = spanOf(t)

		// name = tag { ... }
		if ok && t.Kind == TokenWord && next.Kind == TokenOpen && next.Line == t.Line {
			s.pos++
			ev.Kind = EventOpen
			s.push(ev)

			return
		}

		s.emit(ev)

	default:
		s.incomplete()
		s.start(t)
	}
}

// named builds an event from the pending name and operator.
func (s *scanner) named(kind EventKind) Event {
	ev := Event{Kind: kind, Name: s.name.Text, Op: s.op.Text, At: spanOf(s.name)}
	if s.name.Text == "" {
		ev.At = spanOf(s.op)
	}

	return ev
}

func (s *scanner) incomplete() {
	at := spanOf(s.op)
	if s.name.Text != "" {
		at = Span{Line: s.name.Line, Column: s.name.Column, End: s.op.EndColumn}
		if s.op.Line != s.name.Line {
			at = spanOf(s.name)
		}
	}

	s.problem(ProblemIncomplete, at, s.name.Text)
}

func (s *scanner) bare(t Token) {
	s.emit(Event{
		Kind:    EventBare,
		Name:    t.Text,
		Value:   t.Text,
		Quoted:  t.Kind == TokenString,
		At:      spanOf(t),
		ValueAt: spanOf(t),
	})
}

func (s *scanner) push(ev Event) {
	ev.Depth = len(s.open)
	s.emit(ev)
	s.open = append(s.open, ev)
}

func (s *scanner) pop(t Token) {
	if len(s.open) == 0 {
		s.problem(ProblemUnmatchedClose, spanOf(t), "")

		return
	}

	s.open = s.open[:len(s.open)-1]
	s.res.Events = append(s.res.Events, Event{Kind: EventClose, Depth: len(s.open), At: spanOf(t)})
}

func (s *scanner) emit(ev Event) {
	ev.Depth = len(s.open)
	s.res.Events = append(s.res.Events, ev)
}

func (s *scanner) problem(kind ProblemKind, at Span, name string) {
	s.res.Problems = append(s.res.Problems, Problem{Kind: kind, At: at, Name: name})
}

func (s *scanner) finish() {
	switch s.state {
	case afterIdentifier:
		s.bare(s.name)
	case afterOperator:
		s.incomplete()
	}

	s.state = atLineStart

	for i := len(s.open) - 1; i >= 0; i-- {
		ev := s.open[i]
		s.problem(ProblemUnclosed, ev.At, ev.Name)
	}

	s.open = nil
}
