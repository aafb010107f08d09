package lang

import (
	"testing"

	"github.com/lithammer/dedent"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	type tok struct {
		kind TokenKind
		text string
		line int
		col  int
	}

	for _, tc := range []struct {
		name  string
		input string
		want  []tok
	}{{
		"empty",
		"",
		nil,
	}, {
		"assignment",
		"a = b",
		[]tok{{TokenWord, "a", 0, 0}, {TokenOperator, "=", 0, 2}, {TokenWord, "b", 0, 4}},
	}, {
		"operators",
		"a?=1 b>=2 c!=3 d<4 e==5",
		[]tok{
			{TokenWord, "a", 0, 0}, {TokenOperator, "?=", 0, 1}, {TokenWord, "1", 0, 3},
			{TokenWord, "b", 0, 5}, {TokenOperator, ">=", 0, 6}, {TokenWord, "2", 0, 8},
			{TokenWord, "c", 0, 10}, {TokenOperator, "!=", 0, 11}, {TokenWord, "3", 0, 13},
			{TokenWord, "d", 0, 15}, {TokenOperator, "<", 0, 16}, {TokenWord, "4", 0, 17},
			{TokenWord, "e", 0, 19}, {TokenOperator, "==", 0, 20}, {TokenWord, "5", 0, 22},
		},
	}, {
		"comment",
		"a = { # b = }\n}",
		[]tok{{TokenWord, "a", 0, 0}, {TokenOperator, "=", 0, 2}, {TokenOpen, "{", 0, 4}, {TokenClose, "}", 1, 0}},
	}, {
		"hash in string",
		`desc = "#1 { pick" # real comment`,
		[]tok{{TokenWord, "desc", 0, 0}, {TokenOperator, "=", 0, 5}, {TokenString, `"#1 { pick"`, 0, 7}},
	}, {
		"escaped quote",
		`a = "say \"hi\""`,
		[]tok{{TokenWord, "a", 0, 0}, {TokenOperator, "=", 0, 2}, {TokenString, `"say \"hi\""`, 0, 4}},
	}, {
		"multiline string",
		"a = \"x\n# y\" b",
		[]tok{{TokenWord, "a", 0, 0}, {TokenOperator, "=", 0, 2}, {TokenString, "\"x\n# y\"", 0, 4}, {TokenWord, "b", 1, 5}},
	}, {
		"scope and math",
		"scope:actor.liege = @[ x + 1 ]",
		[]tok{{TokenWord, "scope:actor.liege", 0, 0}, {TokenOperator, "=", 0, 18}, {TokenWord, "@[ x + 1 ]", 0, 20}},
	}, {
		"runes",
		"näme = ö",
		[]tok{{TokenWord, "näme", 0, 0}, {TokenOperator, "=", 0, 5}, {TokenWord, "ö", 0, 7}},
	}} {
		t.Run(tc.name, func(t *testing.T) {
			var got []tok
			for _, tk := range Tokenize(tc.input) {
				got = append(got, tok{tk.Kind, tk.Text, tk.Line, tk.Column})
			}

			require.Equal(t, tc.want, got)
		})
	}
}

func TestScan_Events(t *testing.T) {
	type ev struct {
		kind  EventKind
		depth int
		name  string
		value string
	}

	for _, tc := range []struct {
		name  string
		input string
		want  []ev
	}{{
		"nested openers on one line",
		`limit = { scope:actor = { is_ai = yes } }`,
		[]ev{
			{EventOpen, 0, "limit", ""},
			{EventOpen, 1, "scope:actor", ""},
			{EventField, 2, "is_ai", "yes"},
			{EventClose, 1, "", ""},
			{EventClose, 0, "", ""},
		},
	}, {
		"brace on next line",
		dedent.Dedent(`
			immediate =
			{
				add_gold = 5
			}
		`),
		[]ev{
			{EventOpen, 0, "immediate", ""},
			{EventField, 1, "add_gold", "5"},
			{EventClose, 0, "", ""},
		},
	}, {
		"operator on next line",
		"a\n= b",
		[]ev{{EventField, 0, "a", "b"}},
	}, {
		"bare words in list",
		`opposites = { brave "quoted" 12 }`,
		[]ev{
			{EventOpen, 0, "opposites", ""},
			{EventBare, 1, "brave", "brave"},
			{EventBare, 1, `"quoted"`, `"quoted"`},
			{EventBare, 1, "12", "12"},
			{EventClose, 0, "", ""},
		},
	}, {
		"tagged block",
		`color = hsv { 0.5 0.5 }`,
		[]ev{
			{EventOpen, 0, "color", "hsv"},
			{EventBare, 1, "0.5", "0.5"},
			{EventBare, 1, "0.5", "0.5"},
			{EventClose, 0, "", ""},
		},
	}, {
		"anonymous block",
		`{ a = b }`,
		[]ev{{EventOpen, 0, "", ""}, {EventField, 1, "a", "b"}, {EventClose, 0, "", ""}},
	}, {
		"comparison",
		`trigger = { age >= 16 }`,
		[]ev{{EventOpen, 0, "trigger", ""}, {EventField, 1, "age", "16"}, {EventClose, 0, "", ""}},
	}} {
		t.Run(tc.name, func(t *testing.T) {
			res := Scan(tc.input)
			require.Empty(t, res.Problems)

			var got []ev
			for _, e := range res.Events {
				got = append(got, ev{e.Kind, e.Depth, e.Name, e.Value})
			}

			require.Equal(t, tc.want, got)
		})
	}
}

func TestScan_Problems(t *testing.T) {
	type prob struct {
		kind ProblemKind
		line int
		col  int
	}

	for _, tc := range []struct {
		name  string
		input string
		want  []prob
	}{{
		"empty",
		"",
		nil,
	}, {
		"lone open",
		"{",
		[]prob{{ProblemUnclosed, 0, 0}},
	}, {
		"lone close",
		"}",
		[]prob{{ProblemUnmatchedClose, 0, 0}},
	}, {
		"two unclosed",
		"a = {\n  b = {",
		[]prob{{ProblemUnclosed, 1, 2}, {ProblemUnclosed, 0, 0}},
	}, {
		"extra close keeps scanning",
		"a = { }\n}\nb = {",
		[]prob{{ProblemUnmatchedClose, 1, 0}, {ProblemUnclosed, 2, 0}},
	}, {
		"trailing operator at eof",
		"a =",
		[]prob{{ProblemIncomplete, 0, 0}},
	}, {
		"operator before close",
		"x = { a = }",
		[]prob{{ProblemIncomplete, 0, 6}},
	}, {
		"operator followed by new assignment",
		"a =\nb = c",
		[]prob{{ProblemIncomplete, 0, 0}},
	}, {
		"missing name",
		"x = {\n  = 5\n}",
		[]prob{{ProblemMissingName, 1, 2}},
	}, {
		"operator after a completed assignment",
		"a = b\n= c",
		[]prob{{ProblemMissingName, 1, 0}},
	}, {
		"value on next line is fine",
		"a =\n  b",
		nil,
	}} {
		t.Run(tc.name, func(t *testing.T) {
			var got []prob
			for _, p := range Scan(tc.input).Problems {
				got = append(got, prob{p.Kind, p.At.Line, p.At.Column})
			}

			require.Equal(t, tc.want, got)
		})
	}
}

func TestScan_BalancedStack(t *testing.T) {
	input := dedent.Dedent(`
		a = { b = { c = { d = yes } } e = { } }
		f = {
			g = { h = { } }
		}
	`)

	res := Scan(input)
	require.Empty(t, res.Problems)

	opens, closes := 0, 0

	for _, e := range res.Events {
		switch e.Kind {
		case EventOpen:
			opens++
		case EventClose:
			closes++
		}
	}

	require.Equal(t, 7, opens)
	require.Equal(t, opens, closes)
}

func TestResult_Entities(t *testing.T) {
	input := dedent.Dedent(`
		my.0001 = {
			type = character_event
			option = {
				name = a
			}
			option = { name = b }
			desc = "x"
		}
		loose = 3
		second = {
			category = childhood
	`)

	res := Scan(input)
	ents := res.Entities()
	require.Len(t, ents, 2)

	first := ents[0]
	require.Equal(t, "my.0001", first.Name)
	require.Equal(t, 1, first.At.Line)
	require.Equal(t, 8, first.EndLine)
	require.Len(t, first.Order, 4)
	require.Len(t, first.Fields, 3)

	typ, ok := first.Field("type")
	require.True(t, ok)
	require.Equal(t, "character_event", typ.Value)
	require.False(t, typ.Block)

	opt, ok := first.Field("option")
	require.True(t, ok)
	require.True(t, opt.Block)
	require.Equal(t, 3, opt.At.Line)

	desc, _ := first.Field("desc")
	require.True(t, desc.Quoted)

	second := ents[1]
	require.Equal(t, "second", second.Name)
	require.Equal(t, res.Lines-1, second.EndLine)
	require.Contains(t, second.Fields, "category")
}

func TestIsNumber(t *testing.T) {
	for s, want := range map[string]bool{
		"1": true, "-2": true, "0.5": true, "+3.25": true,
		"": false, "yes": false, "1e5": false, "NaN": false, "inf": false, "0x10": false,
	} {
		require.Equal(t, want, IsNumber(s), s)
	}
}
