package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/ringmd/internal/sim"
)

const historyCapacity = 600

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
	frameStyle  = lipgloss.NewStyle().Padding(1, 2)
)

// FrameMsg carries one completed frame into the monitor.
type FrameMsg sim.Frame

// DoneMsg tells the monitor the run has ended.
type DoneMsg struct{ Err error }

// Monitor is a bubbletea front end for a running simulation. It
// implements sim.Sink by forwarding frames into the program's event
// loop, so the step workers never touch the terminal.
type Monitor struct {
	p *tea.Program
}

func NewMonitor(title string, totalSteps int) *Monitor {
	m := model{title: title, totalSteps: totalSteps}
	return &Monitor{p: tea.NewProgram(m, tea.WithAltScreen())}
}

func (m *Monitor) Frame(f sim.Frame) error {
	m.p.Send(FrameMsg(f))
	return nil
}

// Done signals the end of the run; the monitor stays up until the
// user quits so the final numbers remain readable.
func (m *Monitor) Done(err error) { m.p.Send(DoneMsg{Err: err}) }

// Run blocks until the user quits the monitor.
func (m *Monitor) Run() error {
	_, err := m.p.Run()
	return err
}

type model struct {
	title      string
	totalSteps int
	last       sim.Frame
	haveFrame  bool
	energyHist []float64
	obsHist    map[string][]float64
	done       bool
	err        error
	graph      int // index into the plotted series: 0 energy, then observables
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			if m.haveFrame {
				m.graph = (m.graph + 1) % (1 + len(m.last.Names))
			}
		}
	case FrameMsg:
		m.last = sim.Frame(msg)
		m.haveFrame = true
		total := m.last.Energies.Kinetic + m.last.Energies.Potential + m.last.Energies.Spring
		m.energyHist = append(m.energyHist, total)
		if len(m.energyHist) > historyCapacity {
			m.energyHist = m.energyHist[1:]
		}
		if m.obsHist == nil {
			m.obsHist = make(map[string][]float64, len(m.last.Names))
		}
		for i, name := range m.last.Names {
			hist := append(m.obsHist[name], m.last.Values[i])
			if len(hist) > historyCapacity {
				hist = hist[1:]
			}
			m.obsHist[name] = hist
		}
	case DoneMsg:
		m.done = true
		m.err = msg.Err
	}
	return m, nil
}

func (m model) View() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.title)) + "\n")

	if !m.haveFrame {
		s.WriteString("waiting for first frame...\n")
		return frameStyle.Render(s.String())
	}

	status := "RUNNING"
	if m.done {
		status = "DONE"
		if m.err != nil {
			status = warnStyle.Render("FAILED: " + m.err.Error())
		}
	}
	s.WriteString(status + "\n")

	if m.totalSteps > 0 {
		ratio := float64(m.last.Snap.Step) / float64(m.totalSteps)
		filled := int(ratio * 40)
		s.WriteString("[" + strings.Repeat("=", filled) + strings.Repeat("-", 40-filled) +
			fmt.Sprintf("] %d/%d\n", m.last.Snap.Step, m.totalSteps))
	}

	if len(m.energyHist) > 1 {
		caption := "total energy"
		series := m.energyHist
		if m.graph > 0 {
			caption = m.last.Names[m.graph-1]
			series = m.obsHist[caption]
		}
		if len(series) > 1 {
			chart := asciigraph.Plot(series,
				asciigraph.Height(8),
				asciigraph.Width(60),
				asciigraph.Caption(caption),
			)
			s.WriteString(graphStyle.Render(chart) + "\n\n")
		}
	}

	e := m.last.Energies
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.3f", m.last.Snap.Time)) + "\n")
	s.WriteString(labelStyle.Render("Kinetic") + valueStyle.Render(fmt.Sprintf("%.4f", e.Kinetic)) + "\n")
	s.WriteString(labelStyle.Render("Potential") + valueStyle.Render(fmt.Sprintf("%.4f", e.Potential)) + "\n")
	s.WriteString(labelStyle.Render("Spring") + valueStyle.Render(fmt.Sprintf("%.4f", e.Spring)) + "\n")
	for i, name := range m.last.Names {
		s.WriteString(labelStyle.Render(name) + valueStyle.Render(fmt.Sprintf("%.4f", m.last.Values[i])) + "\n")
	}
	if m.last.Snap.Poisoned {
		s.WriteString(warnStyle.Render("POISONED") + "\n")
	}

	s.WriteString(helpStyle.Render("Tab:Graph Q:Quit"))
	return frameStyle.Render(s.String())
}
