package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"trace", LevelTrace},
		{"TRACE", LevelTrace},
		{"debug", LevelDebug},
		{"Info", LevelInfo},
		{" warn ", LevelWarn},
		{"error", LevelError},
		{"info+2", Level(slog.LevelInfo + 2)},
		{"bogus", DefaultLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelTrace, "trace"},
		{LevelDebug, "debug"},
		{LevelError, "error"},
		{Level(slog.LevelInfo + 2), "info+2"},
		{LevelTrace - 1, "trace-1"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", int(tt.level), got, tt.want)
		}
	}
}

func TestLevelsAndFormats(t *testing.T) {
	levels := slices.Collect(Levels())
	if want := []string{"trace", "debug", "info", "warn", "error"}; !slices.Equal(levels, want) {
		t.Errorf("Levels() = %v, want %v", levels, want)
	}

	formats := slices.Collect(Formats())
	if want := []string{"text", "json"}; !slices.Equal(formats, want) {
		t.Errorf("Formats() = %v, want %v", formats, want)
	}

	if ParseFormat("JSON") != FormatJSON || ParseFormat("?") != DefaultFormat {
		t.Error("ParseFormat mismatch")
	}
}

func TestMake_JSON_WritesFields(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithFormat(FormatJSON), WithLevel(LevelTrace))
	l.Trace("scanned", slog.Int("tokens", 12))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}

	if entry["level"] != "TRACE" {
		t.Errorf("level = %v, want TRACE", entry["level"])
	}

	if entry["msg"] != "scanned" {
		t.Errorf("msg = %v", entry["msg"])
	}

	if entry["tokens"] != float64(12) {
		t.Errorf("tokens = %v", entry["tokens"])
	}
}

func TestMake_LevelFilters(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithLevel(LevelWarn), WithPretty(false))
	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")
	l.Error("shown too")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("filtered message leaked: %s", out)
	}

	if strings.Count(out, "shown") != 2 {
		t.Errorf("expected two records, got: %s", out)
	}
}

func TestWithTimeLayout(t *testing.T) {
	tests := []struct {
		layout string
		at     time.Time
		want   string
	}{
		{"rfc3339", time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC), "2024-05-06T07:08:09Z"},
		{"Kitchen", time.Date(2024, 5, 6, 15, 4, 0, 0, time.UTC), "3:04PM"},
		{"2006", time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC), "2024"},
		{"none", time.Now(), ""},
		{"", time.Now(), ""},
	}

	for _, tt := range tests {
		t.Run(tt.layout, func(t *testing.T) {
			c := apply(config{}, WithTimeLayout(tt.layout))
			if got := c.formatTime(tt.at); got != tt.want {
				t.Errorf("formatTime = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWithTimeLayout_None_OmitsTime(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithFormat(FormatJSON), WithTimeLayout("none")).Warn("x")

	if strings.Contains(buf.String(), `"time"`) {
		t.Errorf("expected no time field: %s", buf.String())
	}
}

func TestWithCaller_AddsSource(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithFormat(FormatJSON), WithCaller(true)).Warn("x")

	if !strings.Contains(buf.String(), "log_test.go") {
		t.Errorf("expected caller file in output: %s", buf.String())
	}
}

func TestPretty_RendersAttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithTimeLayout("none")).
		With(slog.String("file", "a b.txt"))
	l.Warn("checked",
		slog.Int("count", 2),
		slog.Group("rule", slog.String("id", "unknown-field")),
		slog.Any("error", errors.New("boom")))

	out := buf.String()
	for _, want := range []string{
		"WARN", "checked", `file="a b.txt"`, "count=2", "rule.id=unknown-field", `error="boom"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}
}

func TestLogger_Wrap_DoesNotMutateReceiver(t *testing.T) {
	var a, b bytes.Buffer

	base := Make(&a, WithLevel(LevelError))
	wrapped := base.Wrap(WithOutput(&b), WithLevel(LevelDebug))

	base.Info("base")
	wrapped.Info("wrapped")

	if a.Len() != 0 {
		t.Errorf("base logger wrote below its level: %s", a.String())
	}

	if !strings.Contains(b.String(), "wrapped") {
		t.Errorf("wrapped logger did not write: %s", b.String())
	}

	if base.Level() != LevelError || wrapped.Level() != LevelDebug {
		t.Errorf("levels = %v/%v", base.Level(), wrapped.Level())
	}
}

func TestLogger_ZeroValue(t *testing.T) {
	var l Logger

	l.Trace("x")
	l.Error("x")

	if l.With(slog.String("k", "v")).Logger != nil {
		t.Error("With on zero logger produced a handler")
	}

	if l.Wrap(WithLevel(LevelDebug)).Logger != nil {
		t.Error("Wrap on zero logger produced a handler")
	}
}

func TestLogger_Concurrent(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithTimeLayout("none"))

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)

		go func() {
			defer wg.Done()
			l.With(slog.Int("i", i)).Warn("line")
		}()
	}

	wg.Wait()

	if n := strings.Count(buf.String(), "\n"); n != 50 {
		t.Errorf("expected 50 lines, got %d", n)
	}
}

func TestConfig_ReplacesDefault(t *testing.T) {
	prev := Default()
	t.Cleanup(func() { defaultLog.Store(&prev) })

	var buf bytes.Buffer

	Config(WithOutput(&buf), WithLevel(LevelDebug), WithFormat(FormatJSON))

	Debug("package debug")
	InfoContext(DefaultContextProvider(), "package info")
	With(slog.String("k", "v")).Warn("package warn")

	out := buf.String()
	for _, want := range []string{"package debug", "package info", `"k":"v"`} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %s", want, out)
		}
	}

	Config(WithLevel(LevelWarn))
	buf.Reset()
	Warn("still json")

	if !strings.Contains(buf.String(), `"msg":"still json"`) {
		t.Errorf("Config did not keep earlier options: %s", buf.String())
	}
}

func BenchmarkLogger_Info(b *testing.B) {
	var buf bytes.Buffer

	l := Make(&buf, WithLevel(LevelInfo))

	for b.Loop() {
		buf.Reset()
		l.Info("bench", slog.String("k", "v"))
	}
}
