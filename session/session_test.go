package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ardnew/pdxlint/analyzer"
	"github.com/ardnew/pdxlint/diag"
	"github.com/ardnew/pdxlint/schema"
)

type recorder struct {
	mu      sync.Mutex
	results []Result
}

func (r *recorder) publish(res Result) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.results = append(r.results, res)
}

func (r *recorder) snapshot() []Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Result(nil), r.results...)
}

func (r *recorder) count() int { return len(r.snapshot()) }

// validatorFunc adapts a function to Validator.
type validatorFunc func(string, schema.Kind) diag.List

func (f validatorFunc) Validate(text string, kind schema.Kind) diag.List { return f(text, kind) }

const settle = 2 * time.Second

func TestScheduler_Debounce(t *testing.T) {
	var rec recorder

	s := New(analyzer.New(), rec.publish, WithDelay(20*time.Millisecond))
	defer s.Stop()

	var last uint64
	for _, text := range []string{"imm", "immediate = {", "immediate = { add_gold = 5 }", "trigger = { add_gold = 5 }"} {
		last = s.Update("a.txt", text, schema.KindGeneric)
	}

	require.Eventually(t, func() bool { return rec.count() == 1 }, settle, 5*time.Millisecond)
	require.Never(t, func() bool { return rec.count() > 1 }, 100*time.Millisecond, 10*time.Millisecond)

	got := rec.snapshot()[0]
	require.Equal(t, last, got.Seq)
	require.Equal(t, last, s.Latest("a.txt"))
	require.Len(t, got.Diagnostics, 1)
	require.Equal(t, diag.RuleWrongContext, got.Diagnostics[0].Rule)
}

func TestScheduler_Unchanged(t *testing.T) {
	var rec recorder

	s := New(analyzer.New(), rec.publish, WithDelay(time.Millisecond))
	defer s.Stop()

	s.Update("a.txt", "bar = {}", schema.KindGeneric)
	require.Eventually(t, func() bool { return rec.count() == 1 }, settle, 5*time.Millisecond)

	s.Update("a.txt", "bar = {}", schema.KindGeneric)
	require.Never(t, func() bool { return rec.count() > 1 }, 100*time.Millisecond, 10*time.Millisecond)

	// Same text under another kind is analyzed again.
	s.Update("a.txt", "bar = {}", schema.KindTrait)
	require.Eventually(t, func() bool { return rec.count() == 2 }, settle, 5*time.Millisecond)

	s.Update("a.txt", "bar = {}\nbar = {}", schema.KindTrait)
	require.Eventually(t, func() bool { return rec.count() == 3 }, settle, 5*time.Millisecond)

	got := rec.snapshot()
	require.Equal(t, got[0].Hash, got[1].Hash)
	require.NotEqual(t, got[1].Hash, got[2].Hash)
}

func TestScheduler_DiscardStale(t *testing.T) {
	var (
		rec     recorder
		entered = make(chan string, 2)
		release = make(chan struct{})
	)

	v := validatorFunc(func(text string, _ schema.Kind) diag.List {
		entered <- text
		if text == "first" {
			<-release
		}

		return diag.List{{Message: text}}
	})

	s := New(v, rec.publish, WithDelay(time.Millisecond))
	defer s.Stop()

	s.Update("a.txt", "first", schema.KindGeneric)
	require.Equal(t, "first", <-entered)

	second := s.Update("a.txt", "second", schema.KindGeneric)
	require.Equal(t, "second", <-entered)
	require.Eventually(t, func() bool { return rec.count() == 1 }, settle, 5*time.Millisecond)

	close(release)
	require.Never(t, func() bool { return rec.count() > 1 }, 100*time.Millisecond, 10*time.Millisecond)

	got := rec.snapshot()[0]
	require.Equal(t, second, got.Seq)
	require.Equal(t, "second", got.Diagnostics[0].Message)
}

func TestScheduler_Documents(t *testing.T) {
	var rec recorder

	s := New(analyzer.New(), rec.publish, WithDelay(10*time.Millisecond))
	defer s.Stop()

	s.Update("a.txt", "}", schema.KindGeneric)
	s.Update("b.txt", "{", schema.KindGeneric)
	s.Update("c.txt", "bar = {}", schema.KindGeneric)
	s.Forget("c.txt")

	require.Eventually(t, func() bool { return rec.count() == 2 }, settle, 5*time.Millisecond)
	require.Never(t, func() bool { return rec.count() > 2 }, 100*time.Millisecond, 10*time.Millisecond)

	uris := map[string]bool{}
	for _, res := range rec.snapshot() {
		uris[res.URI] = true
		require.Len(t, res.Diagnostics, 1)
	}

	require.Equal(t, map[string]bool{"a.txt": true, "b.txt": true}, uris)
	require.Zero(t, s.Latest("c.txt"))
}
