// Package viz renders a running trajectory in the terminal. The live view
// consumes committed steps from the driver over a channel; the driver runs
// in its own goroutine and is canceled when the viewer quits.
package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"entroflow/internal/hydro"
)

const historyCapacity = 600

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
)

// StepMsg carries one committed step into the view.
type StepMsg struct {
	T, Dt   float64
	X       hydro.State
	T9, Rho float64
}

// DoneMsg reports the end of the run.
type DoneMsg struct {
	Err error
}

// ChannelObserver bridges driver commits to the view. It implements
// driver.CommitObserver; steps are dropped rather than blocking the run
// when the view falls behind.
type ChannelObserver struct {
	ch chan StepMsg
}

func NewChannelObserver(buffer int) *ChannelObserver {
	return &ChannelObserver{ch: make(chan StepMsg, buffer)}
}

func (o *ChannelObserver) OnCommit(t, dt float64, x hydro.State, t9, rho float64) {
	select {
	case o.ch <- StepMsg{T: t, Dt: dt, X: x.Clone(), T9: t9, Rho: rho}:
	default:
	}
}

func (o *ChannelObserver) Steps() <-chan StepMsg { return o.ch }

// Model is the live-view state.
type Model struct {
	steps  <-chan StepMsg
	done   <-chan error
	cancel func()

	latest   StepMsg
	t9Hist   []float64
	commits  int
	finished bool
	err      error
}

func NewModel(steps <-chan StepMsg, done <-chan error, cancel func()) Model {
	return Model{
		steps:  steps,
		done:   done,
		cancel: cancel,
		t9Hist: make([]float64, 0, historyCapacity),
	}
}

func (m Model) Init() tea.Cmd {
	return m.waitForStep()
}

func (m Model) waitForStep() tea.Cmd {
	return func() tea.Msg {
		select {
		case s := <-m.steps:
			return s
		case err := <-m.done:
			return DoneMsg{Err: err}
		}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
	case StepMsg:
		m.latest = msg
		m.commits++
		m.t9Hist = append(m.t9Hist, msg.T9)
		if len(m.t9Hist) > historyCapacity {
			m.t9Hist = m.t9Hist[1:]
		}
		return m, m.waitForStep()
	case DoneMsg:
		m.finished = true
		m.err = msg.Err
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("ENTROFLOW TRAJECTORY") + "\n")

	if len(m.t9Hist) > 1 {
		chart := asciigraph.Plot(m.t9Hist, asciigraph.Height(6), asciigraph.Width(50), asciigraph.Caption("T9"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.5e s", m.latest.T)) + "\n")
	s.WriteString(labelStyle.Render("Step") + valueStyle.Render(fmt.Sprintf("%.5e s", m.latest.Dt)) + "\n")
	s.WriteString(labelStyle.Render("T9") + valueStyle.Render(fmt.Sprintf("%.5e", m.latest.T9)) + "\n")
	s.WriteString(labelStyle.Render("Rho") + valueStyle.Render(fmt.Sprintf("%.5e g/cc", m.latest.Rho)) + "\n")
	if len(m.latest.X) == hydro.Dim {
		s.WriteString(labelStyle.Render("Scale") + valueStyle.Render(fmt.Sprintf("%.5e", m.latest.X[hydro.IScale])) + "\n")
		s.WriteString(labelStyle.Render("Entropy") + valueStyle.Render(fmt.Sprintf("%.5e kB", m.latest.X[hydro.IEntropy])) + "\n")
	}
	s.WriteString(labelStyle.Render("Commits") + valueStyle.Render(fmt.Sprintf("%d", m.commits)) + "\n")

	if m.finished {
		if m.err != nil {
			s.WriteString("\n" + doneStyle.Render(fmt.Sprintf("FAILED: %v", m.err)) + "\n")
		} else {
			s.WriteString("\n" + doneStyle.Render("DONE") + "\n")
		}
	}
	s.WriteString(helpStyle.Render("q quit") + "\n")
	return s.String()
}
