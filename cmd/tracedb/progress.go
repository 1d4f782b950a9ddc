package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"tracedb/internal/wireadapter"
)

// ingestProgressModel renders frame-by-frame ingest progress as a
// spinner plus a bar: frames stream in over a channel, the model tallies
// per-zone event counts and estimates completion from the total.
type ingestProgressModel struct {
	title    string
	events   <-chan wireadapter.Frame
	spinner  spinner.Model
	prog     progress.Model
	zones    map[string]int
	total    int64
	expected int64
	width    int
	done     bool
}

type frameMsg wireadapter.Frame
type ingestDoneMsg struct{}

// newIngestProgressModel returns a Bubble Tea model that renders ingest
// progress. expected is a rough total frame count used to scale the bar;
// 0 means "unknown", in which case the bar shows indeterminate motion
// via the spinner alone.
func newIngestProgressModel(title string, expected int64, events <-chan wireadapter.Frame) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 60

	return &ingestProgressModel{
		title:    title,
		events:   events,
		spinner:  sp,
		prog:     prog,
		zones:    make(map[string]int),
		expected: expected,
		width:    80,
	}
}

func (m *ingestProgressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listen())
}

func (m *ingestProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		cmd := m.apply(wireadapter.Frame(msg))
		return m, tea.Batch(cmd, m.listen())
	case ingestDoneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		next, cmd := m.prog.Update(msg)
		m.prog = next.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *ingestProgressModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := m.title
	if m.done {
		header = fmt.Sprintf("done: %s", header)
	} else {
		header = fmt.Sprintf("%s %s", m.spinner.View(), header)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	status := fmt.Sprintf("%d events across %d zones", m.total, len(m.zones))
	b.WriteString(truncate(status, m.width))
	b.WriteString("\n")

	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

func (m *ingestProgressModel) listen() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return ingestDoneMsg{}
		}
		return frameMsg(ev)
	}
}

func (m *ingestProgressModel) apply(f wireadapter.Frame) tea.Cmd {
	if f.Kind == wireadapter.KindEvent {
		m.zones[f.ZoneName]++
		m.total++
	}
	if m.expected <= 0 {
		return nil
	}
	pct := float64(m.total) / float64(m.expected)
	if pct > 1 {
		pct = 1
	}
	return m.prog.SetPercent(pct)
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
