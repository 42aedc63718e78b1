package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/sway/internal/experiment"
	"github.com/san-kum/sway/internal/model"
	"github.com/san-kum/sway/internal/sim"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

const (
	historyLen = 60
	maxSpeed   = 16
)

// Builder assembles a fresh experiment for the named preset.
type Builder func(preset string) (*experiment.Experiment, error)

type state int

const (
	stateMenu state = iota
	stateSim
)

type appModel struct {
	state    state
	cursor   int
	rig      string
	presets  []string
	selected string
	build    Builder

	exp       *experiment.Experiment
	cfg       sim.Config
	frame     int
	paused    bool
	speed     int
	current   sim.Sample
	history   [][]float64
	err       error
	lastFrame time.Time
	fps       float64

	width  int
	height int
}

func NewInteractiveApp(rig string, presets []string, build Builder) *appModel {
	return &appModel{
		state:   stateMenu,
		rig:     rig,
		presets: presets,
		build:   build,
		speed:   1,
		width:   80,
		height:  24,
	}
}

func (m appModel) Init() tea.Cmd { return nil }

type tickMsg time.Time

func tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m appModel) interval() time.Duration {
	if m.cfg.FrameRate <= 0 {
		return 16 * time.Millisecond
	}
	return time.Duration(float64(time.Second) / m.cfg.FrameRate)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if m.state != stateSim || m.exp == nil {
			return m, nil
		}
		if !m.paused {
			for i := 0; i < m.speed && !m.paused; i++ {
				m.advance()
			}
		}
		now := time.Time(msg)
		if !m.lastFrame.IsZero() {
			if elapsed := now.Sub(m.lastFrame).Seconds(); elapsed > 0 {
				m.fps = 0.9*m.fps + 0.1/elapsed
			}
		}
		m.lastFrame = now
		return m, tick(m.interval())
	}
	return m, nil
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateSim:
		return m.simKey(msg)
	}
	return m, nil
}

func (m appModel) menuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.presets) == 0 {
			return m, nil
		}
		m.selected = m.presets[m.cursor]
		if err := m.start(); err != nil {
			m.err = err
			return m, nil
		}
		m.state = stateSim
		return m, tea.Batch(tea.ClearScreen, tick(m.interval()))
	}
	return m, nil
}

func (m appModel) simKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
		m.reset()
		return m, tea.ClearScreen
	case " ", "p":
		m.paused = !m.paused
	case "r":
		if err := m.start(); err != nil {
			m.err = err
			m.state = stateMenu
		}
		return m, tea.ClearScreen
	case "+", "=":
		if m.speed < maxSpeed {
			m.speed *= 2
		}
	case "-", "_":
		if m.speed > 1 {
			m.speed /= 2
		}
	case "0":
		m.speed = 1
	}
	return m, nil
}

func (m *appModel) start() error {
	exp, err := m.build(m.selected)
	if err != nil {
		return err
	}
	cfg := exp.SimConfig()
	if err := exp.Simulator().Start(cfg); err != nil {
		return err
	}

	m.exp = exp
	m.cfg = cfg
	m.frame = 0
	m.paused = false
	m.speed = 1
	m.err = nil
	m.fps = 0
	m.lastFrame = time.Time{}
	m.current = exp.Simulator().Read()
	m.history = make([][]float64, len(cfg.Track))
	m.push(m.current)
	return nil
}

func (m *appModel) reset() {
	m.exp = nil
	m.cfg = sim.Config{}
	m.current = nil
	m.history = nil
	m.frame = 0
}

func (m *appModel) push(x sim.Sample) {
	for i := range m.history {
		if i >= len(x) {
			break
		}
		m.history[i] = append(m.history[i], x[i])
		if len(m.history[i]) > historyLen {
			m.history[i] = m.history[i][1:]
		}
	}
}

func (m *appModel) advance() {
	if m.frame >= m.cfg.Frames() {
		m.paused = true
		return
	}
	m.frame++
	dt := m.cfg.Dt()
	f := sim.Frame{Index: m.frame, Time: float64(m.frame) * dt, Dt: dt}
	x, err := m.exp.Simulator().Step(f)
	if err != nil {
		m.err = err
		m.paused = true
		return
	}
	m.current = x
	m.push(x)
}

func (m appModel) simTime() float64 {
	return float64(m.frame) * m.cfg.Dt()
}

func (m appModel) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateSim:
		return m.viewSim()
	}
	return ""
}

func (m appModel) viewMenu() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("              " + cyan.Render("s w a y") + "\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("      " + dim.Render(m.rig) + "\n\n")

	for i, name := range m.presets {
		if i == m.cursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(name) + "\n")
		} else {
			b.WriteString("        " + dim.Render(name) + "\n")
		}
	}

	if m.err != nil {
		b.WriteString("\n      " + red.Render(m.err.Error()) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("      ↑↓ select   enter start   q quit") + "\n")

	return b.String()
}

func (m appModel) viewSim() string {
	cw := m.width - 6
	ch := m.height - 10 - 2*len(m.cfg.Track)
	if cw < 40 {
		cw = 40
	}
	if ch < 8 {
		ch = 8
	}

	c := newCanvas(cw, ch)
	if m.exp != nil {
		c.drawRig(m.exp.Engine().Rig())
	}

	var b strings.Builder

	statusIcon := green.Render("●")
	statusText := green.Render("running")
	if m.paused {
		statusIcon = yellow.Render("○")
		statusText = yellow.Render("paused")
	}
	b.WriteString(fmt.Sprintf("\n   %s %s  %s  %s\n",
		statusIcon, cyan.Render(m.selected), dim.Render(m.rig), statusText))

	progress := 0.0
	if m.cfg.Duration > 0 {
		progress = math.Min(m.simTime()/m.cfg.Duration, 1)
	}
	barWidth := 36
	filled := int(progress * float64(barWidth))
	timeStr := fmt.Sprintf("%.1fs/%.0fs", m.simTime(), m.cfg.Duration)
	bar := cyan.Render(strings.Repeat("━", filled)) + dimmer.Render(strings.Repeat("─", barWidth-filled))
	b.WriteString(fmt.Sprintf("   %s %s  %s  %s\n\n", bar, dim.Render(timeStr),
		dim.Render(fmt.Sprintf("%.0ffps", m.fps)), dim.Render(fmt.Sprintf("x%d", m.speed))))

	for _, row := range c.rows() {
		b.WriteString("   " + row + "\n")
	}
	b.WriteString("\n")

	for i, id := range m.cfg.Track {
		if i >= len(m.current) {
			break
		}
		v := m.current[i]
		b.WriteString(fmt.Sprintf("   %s %s  %s\n",
			dim.Render(fmt.Sprintf("%-18s", id)),
			white.Render(fmt.Sprintf("%8.3f", v)),
			m.rangeBar(id, v, 20)))
		if i < len(m.history) && len(m.history[i]) > 1 {
			b.WriteString("   " + strings.Repeat(" ", 28) + cyan.Render(sparkline(m.history[i], 24)) + "\n")
		}
	}

	if m.err != nil {
		b.WriteString("\n   " + red.Render(m.err.Error()) + "\n")
	}

	b.WriteString("\n" + dim.Render("   space pause  ±speed  r restart  q back") + "\n")

	return b.String()
}

// rangeBar shows where v sits inside the parameter's declared range.
// Parameters created on demand have no meaningful range and get no bar.
func (m appModel) rangeBar(id string, v float64, w int) string {
	if m.exp == nil {
		return ""
	}
	idx, ok := m.exp.Model().Lookup(id)
	if !ok {
		return ""
	}
	p := m.exp.Model().Parameters()
	lo, hi := p.Minimum[idx], p.Maximum[idx]
	if hi >= model.Unbounded || lo <= -model.Unbounded {
		return ""
	}
	left, right := gauge(v, lo, hi, w)
	return dimmer.Render(strings.Repeat("─", left)) + magenta.Render("┃") + dimmer.Render(strings.Repeat("─", right))
}

func RunInteractive(rig string, presets []string, build Builder) error {
	p := tea.NewProgram(NewInteractiveApp(rig, presets, build), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
