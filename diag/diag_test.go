package diag

import (
	"encoding/json"
	"testing"
)

func TestSeverity_Parse(t *testing.T) {
	tests := []struct {
		in   string
		want Severity
		ok   bool
	}{
		{"error", SeverityError, true},
		{"WARNING", SeverityWarning, true},
		{"warn", SeverityWarning, true},
		{" info ", SeverityInfo, true},
		{"hint", SeverityHint, true},
		{"fatal", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseSeverity(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseSeverity(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}

	if SeverityError >= SeverityWarning {
		t.Error("errors must sort before warnings")
	}

	if Severity(9).String() != "Severity(9)" {
		t.Error("out-of-range severity name")
	}
}

func TestDiagnostic_JSON(t *testing.T) {
	d := Diagnostic{
		Range:    Range{Line: 2, StartColumn: 1, EndColumn: 9},
		Message:  "unknown field \"foo\"",
		Severity: SeverityWarning,
		Rule:     RuleUnknownField,
	}

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}

	want := `{"range":{"line":2,"startColumn":1,"endColumn":9},"message":"unknown field \"foo\"","severity":"warning","rule":"unknown-field"}`
	if string(data) != want {
		t.Errorf("json = %s\nwant   %s", data, want)
	}

	var back Diagnostic
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}

	if back != d {
		t.Errorf("decoded %+v, want %+v", back, d)
	}

	if got := d.String(); got != `3:2: warning: unknown field "foo" [unknown-field]` {
		t.Errorf("String() = %q", got)
	}
}

func TestList_SortIsStable(t *testing.T) {
	l := List{
		{Range: Range{Line: 3}, Message: "c"},
		{Range: Range{Line: 1, StartColumn: 4}, Message: "b"},
		{Range: Range{Line: 1, StartColumn: 4}, Message: "b2"},
		{Range: Range{Line: 1, StartColumn: 0}, Message: "a"},
	}

	l.Sort()

	var got string
	for _, d := range l {
		got += d.Message + " "
	}

	if got != "a b b2 c " {
		t.Errorf("order = %q", got)
	}
}

func TestRules(t *testing.T) {
	rules := Rules()
	if len(rules) != 12 {
		t.Errorf("len(Rules()) = %d, want 12", len(rules))
	}

	for _, r := range rules {
		if !r.Valid() {
			t.Errorf("%q not valid", r)
		}
	}

	if Rule("nope").Valid() {
		t.Error("unknown rule reported valid")
	}

	if RuleUnmatchedBrace.DefaultSeverity() != SeverityError ||
		RuleWrongContext.DefaultSeverity() != SeverityWarning {
		t.Error("default severities wrong")
	}
}

func TestEmitter_Policy(t *testing.T) {
	base := NewPolicy(Policy{}, Disable(RuleUnknownField))
	p := NewPolicy(base, Override(RuleWrongContext, SeverityError))

	e := NewEmitter(p)
	e.Emit(RuleUnknownField, Range{Line: 0}, "dropped")
	e.Emit(RuleWrongContext, Range{Line: 2}, "%s used in %s", "add_gold", "trigger")
	e.Emit(RuleMissingField, Range{Line: 1}, "%d%% literal", 100)

	l := e.List()
	if len(l) != 2 {
		t.Fatalf("got %d diagnostics, want 2: %v", len(l), l)
	}

	if l[0].Rule != RuleMissingField || l[0].Message != "100% literal" {
		t.Errorf("first = %+v", l[0])
	}

	if l[1].Severity != SeverityError || l[1].Message != "add_gold used in trigger" {
		t.Errorf("second = %+v", l[1])
	}

	if !l.HasErrors() || l.Count()[SeverityWarning] != 1 || len(l.ByRule(RuleWrongContext)) != 1 {
		t.Error("list helpers disagree")
	}

	if base.Severity(RuleWrongContext) != SeverityWarning {
		t.Error("override leaked into base policy")
	}
}

func TestEmitter_Empty(t *testing.T) {
	l := NewEmitter(Policy{}).List()
	if l == nil || len(l) != 0 {
		t.Errorf("List() = %#v, want empty non-nil", l)
	}
}
