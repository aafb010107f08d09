package lang

import (
	"strings"
	"unicode"
)

// TokenKind classifies a lexical token.
type TokenKind int

const (
	TokenWord TokenKind = iota
	TokenString
	TokenOperator
	TokenOpen
	TokenClose
)

func (k TokenKind) String() string {
	switch k {
	case TokenWord:
		return "word"
	case TokenString:
		return "string"
	case TokenOperator:
		return "operator"
	case TokenOpen:
		return "{"
	case TokenClose:
		return "}"
	default:
		return "token"
	}
}

// Token is a lexical token. Text of a string token includes its quotes.
type Token struct {
	Kind    TokenKind
	Text    string
	Line    int
	Column  int
	EndLine int
	// EndColumn is exclusive.
	EndColumn int
}

// Operators lists every assignment and comparison operator.
var Operators = []string{"=", "?=", "<", ">", "<=", ">=", "==", "!="}

func isWordRune(r rune) bool {
	switch r {
	case '{', '}', '=', '<', '>', '"', '#':
		return false
	}

	return !unicode.IsSpace(r)
}

// lexer splits text into tokens. Comments and whitespace are dropped. A
// string may span lines; a # inside one is literal.
type lexer struct {
	lines  []string
	tokens []Token
}

// Tokenize returns the tokens of text.
func Tokenize(text string) []Token {
	lx := &lexer{lines: strings.Split(text, "\n")}
	lx.run()

	return lx.tokens
}

func (lx *lexer) run() {
	var (
		str *Token // string continued from a previous line
		sb  strings.Builder
	)

	for ln, line := range lx.lines {
		rs := []rune(strings.TrimSuffix(line, "\r"))
		col := 0

		if str != nil {
			sb.WriteByte('\n')

			col = lx.readString(rs, 0, str, &sb, ln)
			if str.EndLine < 0 {
				continue
			}

			str = nil
		}

	scan:
		for col < len(rs) {
			r := rs[col]

			switch {
			case unicode.IsSpace(r):
				col++

			case r == '#':
				break scan

			case r == '{' || r == '}':
				kind := TokenOpen
				if r == '}' {
					kind = TokenClose
				}

				lx.emit(Token{Kind: kind, Text: string(r), Line: ln, Column: col, EndLine: ln, EndColumn: col + 1})
				col++

			case r == '"':
				tok := Token{Kind: TokenString, Line: ln, Column: col, EndLine: -1}

				sb.Reset()
				sb.WriteRune(r)

				col = lx.readString(rs, col+1, &tok, &sb, ln)
				if tok.EndLine < 0 {
					str = &tok

					break scan
				}

			default:
				if op := operatorAt(rs, col); op != "" {
					n := len(op)
					lx.emit(Token{Kind: TokenOperator, Text: op, Line: ln, Column: col, EndLine: ln, EndColumn: col + n})
					col += n

					continue
				}

				col = lx.readWord(rs, col, ln)
			}
		}
	}

	if str != nil {
		// Unterminated string: close it at end of input.
		last := len(lx.lines) - 1
		str.Text = sb.String()
		str.EndLine = last
		str.EndColumn = len([]rune(lx.lines[last]))
		lx.emit(*str)
	}
}

// readString consumes string runes from rs[col:] into sb. It completes tok
// and returns the column after the closing quote, or len(rs) with
// tok.EndLine left negative if the string continues on the next line.
func (lx *lexer) readString(rs []rune, col int, tok *Token, sb *strings.Builder, ln int) int {
	for col < len(rs) {
		r := rs[col]
		sb.WriteRune(r)
		col++

		switch r {
		case '\\':
			if col < len(rs) {
				sb.WriteRune(rs[col])
				col++
			}

		case '"':
			tok.Text = sb.String()
			tok.EndLine = ln
			tok.EndColumn = col
			lx.emit(*tok)

			return col
		}
	}

	return col
}

// readWord consumes a word starting at col. An @[ ... ] inline expression
// is a single word even if it contains spaces or operators.
func (lx *lexer) readWord(rs []rune, col, ln int) int {
	start := col

	if col+1 < len(rs) && rs[col] == '@' && rs[col+1] == '[' {
		end := col + 2
		for end < len(rs) && rs[end] != ']' {
			end++
		}

		col = min(end+1, len(rs))
	} else {
		for col < len(rs) && isWordRune(rs[col]) {
			if (rs[col] == '!' || rs[col] == '?') && col+1 < len(rs) && rs[col+1] == '=' {
				break
			}

			col++
		}
	}

	if col == start {
		// A lone rune that starts neither a word nor an operator.
		col++
	}

	lx.emit(Token{Kind: TokenWord, Text: string(rs[start:col]), Line: ln, Column: start, EndLine: ln, EndColumn: col})

	return col
}

func operatorAt(rs []rune, col int) string {
	next := rune(0)
	if col+1 < len(rs) {
		next = rs[col+1]
	}

	switch r := rs[col]; r {
	case '=':
		if next == '=' {
			return "=="
		}

		return "="
	case '<', '>':
		if next == '=' {
			return string(r) + "="
		}

		return string(r)
	case '!', '?':
		if next == '=' {
			return string(r) + "="
		}
	}

	return ""
}

func (lx *lexer) emit(t Token) { lx.tokens = append(lx.tokens, t) }
