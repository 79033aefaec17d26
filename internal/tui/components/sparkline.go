package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// levels are the block glyphs a sample bucket renders as, low to high.
var levels = []string{" ", " ", "▂", "▃", "▄", "▅", "▆", "▇", "█"}

// Sparkline renders a scrolling window of live samples (throughput, error
// rate, or any other per-second metric) as one line of block glyphs plus a
// numeric readout of the most recent value.
type Sparkline struct {
	Data   []uint64
	Width  int
	Height int
	Max    uint64
	Style  lipgloss.Style
	Label  string
	// Unit annotates the trailing readout, e.g. "req/s" or "err/s".
	Unit string
}

// NewSparkline builds an empty Sparkline that keeps its Width most recent
// samples.
func NewSparkline(width, height int, label, unit string, style lipgloss.Style) Sparkline {
	return Sparkline{
		Width:  width,
		Height: height,
		Label:  label,
		Unit:   unit,
		Style:  style,
		Data:   make([]uint64, 0, width),
	}
}

// Add appends val to the window, dropping the oldest sample once the window
// is full, and recomputes Max over the visible window only (not the whole
// run's history) so the glyph scale tracks the current trend.
func (s *Sparkline) Add(val uint64) {
	s.Data = append(s.Data, val)
	if len(s.Data) > s.Width {
		s.Data = s.Data[len(s.Data)-s.Width:]
	}

	max := uint64(0)
	for _, v := range s.Data {
		if v > max {
			max = v
		}
	}
	s.Max = max
}

// Latest returns the most recently added sample, or 0 for an empty window.
func (s Sparkline) Latest() uint64 {
	if len(s.Data) == 0 {
		return 0
	}
	return s.Data[len(s.Data)-1]
}

func (s Sparkline) View() string {
	if s.Width <= 0 {
		return ""
	}

	var out strings.Builder
	out.WriteString(s.Style.Render(s.Label))
	if s.Unit != "" {
		out.WriteString(s.Style.Render(fmt.Sprintf(" (%s)", s.Unit)))
	}
	out.WriteString("\n")

	var graph strings.Builder
	for _, v := range s.Data {
		if s.Max == 0 {
			graph.WriteString(levels[0])
			continue
		}

		pct := float64(v) / float64(s.Max)
		idx := int(pct * float64(len(levels)-1))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(levels) {
			idx = len(levels) - 1
		}

		graph.WriteString(levels[idx])
	}

	pad := s.Width - len(s.Data)
	if pad > 0 {
		graph.WriteString(strings.Repeat(" ", pad))
	}

	graph.WriteString(fmt.Sprintf("  %d", s.Latest()))

	return out.String() + s.Style.Render(graph.String())
}
