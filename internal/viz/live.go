// Package viz renders a live terminal view of a running control loop:
// streaming charts of the tracked output and the control signal, with
// pause, reset and on-the-fly parameter tuning.
package viz

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"motorlab/internal/control"
	"motorlab/internal/sim"
)

const (
	chartWidth      = 70
	chartHeight     = 8
	historyCapacity = 600
	stepsPerTick    = 4
)

var (
	headerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	chartStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 2)
	labelStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	activeParamStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	faultStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	helpStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model drives one plant/controller pair interactively. Unlike a batch run
// it has no horizon; it steps until quit.
type Model struct {
	dyn        sim.System
	integrator sim.Integrator
	controller sim.Controller
	reference  sim.Reference
	state      sim.State
	initial    sim.State
	t, dt      float64

	title      string
	running    bool
	faulted    bool
	outHistory []float64
	refHistory []float64
	uHistory   []float64

	params        map[string]float64
	initialParams map[string]float64
	paramKeys     []string
	selected      int
}

func NewModel(title string, dyn sim.System, integ sim.Integrator, ctrl sim.Controller, ref sim.Reference, x0 []float64, dt float64) Model {
	params := make(map[string]float64)
	if c, ok := ctrl.(sim.Configurable); ok {
		for k, v := range c.GetParams() {
			params[k] = v
		}
	}
	keys := make([]string, 0, len(params))
	initialParams := make(map[string]float64)
	for k, v := range params {
		keys = append(keys, k)
		initialParams[k] = v
	}
	sort.Strings(keys)

	return Model{
		dyn:           dyn,
		integrator:    integ,
		controller:    ctrl,
		reference:     ref,
		state:         sim.State(x0).Clone(),
		initial:       sim.State(x0).Clone(),
		dt:            dt,
		title:         title,
		running:       true,
		outHistory:    make([]float64, 0, historyCapacity),
		refHistory:    make([]float64, 0, historyCapacity),
		uHistory:      make([]float64, 0, historyCapacity),
		params:        params,
		initialParams: initialParams,
		paramKeys:     keys,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "tab":
			m.cycleParam()
		case "up", "k":
			m.adjustParam(1.05)
		case "down", "j":
			m.adjustParam(0.95)
		}
	case TickMsg:
		if m.running && !m.faulted {
			for i := 0; i < stepsPerTick; i++ {
				m.step()
			}
		}
		return m, tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func (m *Model) step() {
	ref := m.reference(m.t)
	out := m.dyn.Output(m.state)
	u := m.controller.Compute(ref, out, m.dt)

	m.state = m.integrator.Step(m.dyn, m.state, u, m.t, m.dt)
	m.t += m.dt
	if !m.state.IsValid() {
		m.faulted = true
		m.running = false
		return
	}

	m.refHistory = push(m.refHistory, ref)
	m.outHistory = push(m.outHistory, m.dyn.Output(m.state))
	m.uHistory = push(m.uHistory, u)
}

func push(hist []float64, v float64) []float64 {
	hist = append(hist, v)
	if len(hist) > historyCapacity {
		hist = hist[1:]
	}
	return hist
}

func (m *Model) cycleParam() {
	if len(m.paramKeys) == 0 {
		return
	}
	m.selected = (m.selected + 1) % len(m.paramKeys)
}

func (m *Model) adjustParam(factor float64) {
	if len(m.paramKeys) == 0 {
		return
	}
	key := m.paramKeys[m.selected]
	val := m.params[key] * factor
	if c, ok := m.controller.(sim.Configurable); ok {
		if err := c.SetParam(key, val); err != nil {
			return
		}
	}
	m.params[key] = val
}

func (m *Model) reset() {
	m.t = 0
	m.faulted = false
	m.running = true
	m.state = m.initial.Clone()
	m.controller.Reset()
	m.outHistory = m.outHistory[:0]
	m.refHistory = m.refHistory[:0]
	m.uHistory = m.uHistory[:0]
	for k, v := range m.initialParams {
		m.params[k] = v
		if c, ok := m.controller.(sim.Configurable); ok {
			c.SetParam(k, v)
		}
	}
}

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.title)) + "\n")

	status := "RUNNING"
	if m.faulted {
		status = faultStyle.Render("DIVERGED - press r to reset")
	} else if !m.running {
		status = "PAUSED"
	}
	s.WriteString(status + "\n")

	if len(m.outHistory) > 1 {
		chart := asciigraph.PlotMany(
			[][]float64{m.refHistory, m.outHistory},
			asciigraph.Height(chartHeight),
			asciigraph.Width(chartWidth),
			asciigraph.Caption("reference / speed [rad/s]"),
		)
		s.WriteString(chartStyle.Render(chart) + "\n")
	}
	if len(m.uHistory) > 1 {
		chart := asciigraph.Plot(m.uHistory,
			asciigraph.Height(chartHeight/2),
			asciigraph.Width(chartWidth),
			asciigraph.Caption("control [V]"),
		)
		s.WriteString(chartStyle.Render(chart) + "\n")
	}

	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.2fs", m.t)) + "\n")
	if len(m.outHistory) > 0 {
		ref := m.refHistory[len(m.refHistory)-1]
		out := m.outHistory[len(m.outHistory)-1]
		s.WriteString(labelStyle.Render("Error") + valueStyle.Render(fmt.Sprintf("%+.4f", ref-out)) + "\n")
	}
	s.WriteString(labelStyle.Render("State |x|") + valueStyle.Render(fmt.Sprintf("%.4f", m.state.Norm())) + "\n")
	if h, ok := m.dyn.(sim.Hamiltonian); ok {
		s.WriteString(labelStyle.Render("Energy") + valueStyle.Render(fmt.Sprintf("%.4f J", h.Energy(m.state))) + "\n")
	}
	if fp, ok := m.controller.(*control.FuzzyPID); ok {
		g := fp.Effective()
		s.WriteString(labelStyle.Render("Effective") +
			valueStyle.Render(fmt.Sprintf("Kp=%.1f Ki=%.1f Kd=%.2f", g.Kp, g.Ki, g.Kd)) + "\n")
	}

	if len(m.paramKeys) > 0 {
		s.WriteString("\nGAINS\n")
		for i, k := range m.paramKeys {
			line := fmt.Sprintf("%-4s %.3f", k, m.params[k])
			if i == m.selected {
				s.WriteString(activeParamStyle.Render("> "+line) + "\n")
			} else {
				s.WriteString("  " + labelStyle.Render(line) + "\n")
			}
		}
	}

	s.WriteString(helpStyle.Render("SP:Pause  R:Reset  Tab:Select  ↑↓:Tune  Q:Quit"))
	return s.String()
}
