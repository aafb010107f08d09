package profile

import (
	"slices"
	"testing"
)

func TestProfiler_Start_EmptyModeIsNoop(t *testing.T) {
	s := Profiler{Path: t.TempDir()}.Start()
	if _, ok := s.(ignore); !ok {
		t.Fatalf("expected no-op stopper, got %T", s)
	}

	s.Stop()
	s.Stop()
}

func TestProfiler_Start_UnknownModeIsNoop(t *testing.T) {
	s := Profiler{Mode: "nonsense", Path: t.TempDir()}.Start()
	if _, ok := s.(ignore); !ok {
		t.Fatalf("expected no-op stopper, got %T", s)
	}
}

func TestModes_Sorted(t *testing.T) {
	m := Modes()
	if !slices.IsSorted(m) {
		t.Errorf("Modes() not sorted: %v", m)
	}
}
