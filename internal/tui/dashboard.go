// Package tui is a live dashboard for `flood run --tui`, built on
// internal/tui/styles, internal/tui/components.Sparkline, and
// github.com/charmbracelet/bubbles/progress, driven by runctl's live
// stats snapshots.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"flood/internal/stats"
	"flood/internal/tui/components"
	"flood/internal/tui/styles"
)

// Update is one live snapshot pushed from runctl, tagged with which run
// (rate) it belongs to and how far into that run's configured duration the
// sample was taken.
type Update struct {
	RunIndex int
	Rate     float64
	Elapsed  time.Duration
	Total    time.Duration
	Snapshot stats.LiveSnapshot
}

type updateMsg Update
type doneMsg struct{}

// Model is the bubbletea model driving the dashboard.
type Model struct {
	updates    <-chan Update
	done       <-chan struct{}
	current    Update
	started    bool
	quitting   bool
	throughput components.Sparkline
	progress   progress.Model
}

// NewModel constructs a dashboard fed by updates, which the caller should
// close (or signal via done) once every sequenced run has finished.
func NewModel(updates <-chan Update, done <-chan struct{}) Model {
	return Model{
		updates:    updates,
		done:       done,
		throughput: components.NewSparkline(50, 1, "throughput", "req/s", styles.Value),
		progress:   progress.New(progress.WithDefaultGradient()),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForUpdate(m.updates), waitForDone(m.done))
}

func waitForUpdate(ch <-chan Update) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-ch
		if !ok {
			return doneMsg{}
		}
		return updateMsg(u)
	}
}

func waitForDone(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return doneMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.progress.Width = msg.Width - 4
		return m, nil
	case updateMsg:
		u := Update(msg)
		m.current = u
		m.started = true
		m.throughput.Add(uint64(u.Snapshot.ThroughputRps))
		var cmd tea.Cmd
		if u.Total > 0 {
			cmd = m.progress.SetPercent(clampPct(u.Elapsed.Seconds() / u.Total.Seconds()))
		}
		return m, tea.Batch(waitForUpdate(m.updates), cmd)
	case progress.FrameMsg:
		newModel, cmd := m.progress.Update(msg)
		m.progress = newModel.(progress.Model)
		return m, cmd
	case doneMsg:
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func clampPct(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.started {
		return styles.Subtle.Render("waiting for the first sample...\n")
	}

	s := m.current.Snapshot
	header := styles.Title.Render(fmt.Sprintf("run %d  target rate %.0f/s", m.current.RunIndex, m.current.Rate))

	body := fmt.Sprintf(
		"%s\n%s\n%s %s   %s %s   %s %s\n%s %s   %s %s\n\n%s",
		header,
		m.progress.View(),
		styles.Subtle.Render("total"), styles.Value.Render(fmt.Sprintf("%d", s.Total)),
		styles.Subtle.Render("ok"), styles.Success.Render(fmt.Sprintf("%d", s.Ok)),
		styles.Subtle.Render("err"), styles.Error.Render(fmt.Sprintf("%d", s.Err)),
		styles.Subtle.Render("p50"), styles.Value.Render(s.P50.Round(time.Microsecond).String()),
		styles.Subtle.Render("p99"), styles.Value.Render(s.P99.Round(time.Microsecond).String()),
		m.throughput.View(),
	)

	return styles.Panel.Render(body) + "\n" + styles.KeyDesc.Render("press q to quit")
}
