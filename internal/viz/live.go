// Package viz renders a live terminal view of a running integration:
// clock, step size, inner-orbit elements, a Braille orbit-plane trace
// and an eccentricity sparkline.
package viz

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

const historyCapacity = 240

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

// FrameMsg carries one sampled state of the running simulation. X and Y
// are the inner body's position relative to its primary, for the orbit
// trace.
type FrameMsg struct {
	T, Dt     float64
	A, E, Inc float64
	SpinMag   float64
	X, Y      float64
}

type doneMsg struct{}

// Model displays frames received over a channel; the integration runs
// in its own goroutine and closes the channel when finished.
type Model struct {
	scenario string
	frames   <-chan FrameMsg
	last     FrameMsg
	eHist    []float64
	trace    *OrbitTrace
	done     bool
}

func NewModel(scenario string, frames <-chan FrameMsg) Model {
	return Model{
		scenario: scenario,
		frames:   frames,
		eHist:    make([]float64, 0, historyCapacity),
		trace:    NewOrbitTrace(4 * historyCapacity),
	}
}

func waitForFrame(frames <-chan FrameMsg) tea.Cmd {
	return func() tea.Msg {
		f, ok := <-frames
		if !ok {
			return doneMsg{}
		}
		return f
	}
}

func (m Model) Init() tea.Cmd {
	return waitForFrame(m.frames)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case FrameMsg:
		m.last = msg
		m.eHist = append(m.eHist, msg.E)
		if len(m.eHist) > historyCapacity {
			m.eHist = m.eHist[1:]
		}
		if msg.X != 0 || msg.Y != 0 {
			m.trace.Add(msg.X, msg.Y)
		}
		return m, waitForFrame(m.frames)
	case doneMsg:
		m.done = true
	}
	return m, nil
}

func (m Model) View() string {
	s := headerStyle.Render(fmt.Sprintf("orbitsim  %s", m.scenario)) + "\n"

	line := func(label string, format string, v float64) string {
		return labelStyle.Render(label) + valueStyle.Render(fmt.Sprintf(format, v)) + "\n"
	}
	s += line("t", "%.2f", m.last.T)
	s += line("dt", "%.3e", m.last.Dt)
	s += line("a", "%.6f", m.last.A)
	s += line("e", "%.6f", m.last.E)
	s += line("inc", "%.6f", m.last.Inc)
	s += line("|spin|", "%.4f", m.last.SpinMag)

	if m.trace.Len() > 1 {
		s += graphStyle.Render(m.trace.Render(40, 12)) + "\n"
	}

	if len(m.eHist) > 1 {
		s += graphStyle.Render(asciigraph.Plot(m.eHist,
			asciigraph.Height(10),
			asciigraph.Caption("inner eccentricity"),
		)) + "\n"
	}

	if m.done {
		s += helpStyle.Render("integration finished - q to quit")
	} else {
		s += helpStyle.Render("q to quit")
	}
	return s
}
