package components

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestSparklineAddTracksWindowMax(t *testing.T) {
	s := NewSparkline(3, 1, "rate", "req/s", lipgloss.NewStyle())
	s.Add(10)
	s.Add(50)
	s.Add(20)
	if s.Max != 50 {
		t.Errorf("Max = %d, want 50", s.Max)
	}

	s.Add(5)
	if len(s.Data) != 3 {
		t.Fatalf("len(Data) = %d, want 3 (window should have dropped the oldest sample)", len(s.Data))
	}
	if s.Max != 50 {
		t.Errorf("Max = %d, want 50 (still in window)", s.Max)
	}
	if s.Latest() != 5 {
		t.Errorf("Latest() = %d, want 5", s.Latest())
	}
}

func TestSparklineViewNonEmpty(t *testing.T) {
	s := NewSparkline(4, 1, "rate", "req/s", lipgloss.NewStyle())
	s.Add(1)
	s.Add(2)
	if v := s.View(); v == "" {
		t.Error("View() = \"\", want non-empty render")
	}
}

func TestSparklineZeroWidthRendersEmpty(t *testing.T) {
	s := NewSparkline(0, 1, "rate", "req/s", lipgloss.NewStyle())
	if v := s.View(); v != "" {
		t.Errorf("View() = %q, want empty for zero width", v)
	}
}
