package viz

import (
	"fmt"
	"image"
	"image/gif"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/dpsim/internal/analysis"
	"github.com/san-kum/dpsim/internal/dynamo"
	"github.com/san-kum/dpsim/internal/physics"
)

const (
	width           = 60
	height          = 24
	historyCapacity = 600
	trailCapacity   = 240
	frameRate       = 60
	maxStepsPerTick = 5000
	minDt, maxDt    = 1e-5, 0.1
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(46)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

type point struct{ x, y float64 }

// LiveOptions configures the terminal animation.
type LiveOptions struct {
	Name    string
	Theme   string
	GIFPath string
}

// Model animates a double pendulum in real time: each tick advances the
// simulation clock by one frame interval.
type Model struct {
	pend          *physics.DoublePendulum
	initialParams physics.Params
	paramKeys     []string
	selected      int
	integrator    dynamo.Integrator
	state         dynamo.State
	initialState  dynamo.State
	t, dt         float64
	initialDt     float64
	steps         int
	e0            float64
	canvas        *Canvas
	trail         []point
	energyHistory []float64
	running       bool
	theme         Theme
	name          string
	gifPath       string
	recording     bool
	frames        []*image.Paletted
	showHelp      bool
	message       string
	err           error
}

// NewModel initializes the simulation and visualization state.
func NewModel(params physics.Params, integ dynamo.Integrator, x0 dynamo.State, dt float64, opts LiveOptions) Model {
	pend := &physics.DoublePendulum{Params: params}
	keys := make([]string, 0, 5)
	for k := range pend.GetParams() {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if opts.GIFPath == "" {
		opts.GIFPath = "dpsim.gif"
	}
	if opts.Name == "" {
		opts.Name = "double pendulum"
	}

	m := Model{
		pend:          pend,
		initialParams: params,
		paramKeys:     keys,
		integrator:    integ,
		state:         x0.Clone(),
		initialState:  x0.Clone(),
		dt:            dt,
		initialDt:     dt,
		e0:            params.Energy(x0),
		canvas:        NewCanvas(width, height),
		trail:         make([]point, 0, trailCapacity),
		energyHistory: make([]float64, 0, historyCapacity),
		running:       true,
		theme:         GetTheme(opts.Theme),
		name:          opts.Name,
		gifPath:       opts.GIFPath,
	}
	m.draw()
	return m
}

func (m Model) Init() tea.Cmd { return tick() }

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if m.err == nil {
				m.running = !m.running
			}
		case "r":
			m.reset()
		case "+", "=":
			m.dt = math.Min(m.dt*2, maxDt)
		case "-", "_":
			m.dt = math.Max(m.dt/2, minDt)
		case "tab":
			m.selected = (m.selected + 1) % len(m.paramKeys)
		case "up", "k":
			m.adjustParam(1.05)
		case "down", "j":
			m.adjustParam(0.95)
		case "t":
			m.theme = NextTheme(m.theme)
		case "g":
			m.toggleRecording()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.advance(1.0 / frameRate)
		}
		m.draw()
		if m.recording {
			m.frames = append(m.frames, m.canvas.Image(8, 16, RGBA(m.theme.Primary), RGBA("#000000")))
		}
		return m, tick()
	}
	return m, nil
}

// advance integrates span seconds of simulated time. A failing step
// pauses the animation and keeps the last good state.
func (m *Model) advance(span float64) {
	f := m.pend.Func()
	n := min(max(int(math.Ceil(span/m.dt)), 1), maxStepsPerTick)
	for i := 0; i < n; i++ {
		next, err := m.integrator.Step(f, m.state, m.t, m.dt)
		if err == nil && !next.IsValid() {
			err = dynamo.ErrInvalidState
		}
		if err != nil {
			m.err = &dynamo.SimulationError{Step: m.steps + 1, Time: m.t + m.dt, State: m.state.Clone(), Wrapped: err}
			m.running = false
			break
		}
		m.state = next
		m.t += m.dt
		m.steps++
	}

	_, _, x2, y2 := m.pend.Positions(m.state)
	m.trail = append(m.trail, point{x2, y2})
	if len(m.trail) > trailCapacity {
		m.trail = m.trail[1:]
	}
	m.energyHistory = append(m.energyHistory, m.pend.Energy(m.state))
	if len(m.energyHistory) > historyCapacity {
		m.energyHistory = m.energyHistory[1:]
	}
}

func (m *Model) adjustParam(factor float64) {
	key := m.paramKeys[m.selected]
	if err := m.pend.SetParam(key, m.pend.GetParams()[key]*factor); err != nil {
		m.message = err.Error()
		return
	}
	// Changing a parameter changes the Hamiltonian; drift is measured
	// from the new value.
	m.e0 = m.pend.Energy(m.state)
	m.energyHistory = m.energyHistory[:0]
}

// reset restores the initial state, parameters and step size.
func (m *Model) reset() {
	m.pend.Params = m.initialParams
	m.state = m.initialState.Clone()
	m.t, m.steps, m.dt = 0, 0, m.initialDt
	m.e0 = m.pend.Energy(m.state)
	m.trail = m.trail[:0]
	m.energyHistory = m.energyHistory[:0]
	m.err = nil
	m.message = ""
	m.running = true
}

func (m *Model) toggleRecording() {
	if !m.recording {
		m.recording = true
		m.frames = make([]*image.Paletted, 0, frameRate*10)
		m.message = "recording..."
		return
	}
	m.recording = false
	if err := SaveGIF(m.gifPath, m.frames, 100/frameRate); err != nil {
		m.message = err.Error()
	} else {
		m.message = fmt.Sprintf("saved %d frames to %s", len(m.frames), m.gifPath)
	}
	m.frames = nil
}

// draw renders the rods, bobs and the fading trail of the second bob.
func (m *Model) draw() {
	m.canvas.Clear()
	v := SquareViewport(m.pend.Reach() * 1.05)

	// Older half of the trail is thinned out.
	half := len(m.trail) / 2
	for i, p := range m.trail {
		if i < half {
			if i%3 == 0 {
				m.canvas.Plot(v, p.x, p.y)
			}
			continue
		}
		if i > half {
			q := m.trail[i-1]
			m.canvas.Line(v, q.x, q.y, p.x, p.y)
		}
	}

	x1, y1, x2, y2 := m.pend.Positions(m.state)
	m.canvas.Plot(v, 0, 0)
	m.canvas.Line(v, 0, 0, x1, y1)
	m.canvas.Line(v, x1, y1, x2, y2)
	m.canvas.Dot(v, x1, y1)
	m.canvas.Dot(v, x2, y2)
}

// View renders the TUI interface.
func (m Model) View() string {
	th := m.theme
	header := lipgloss.NewStyle().Foreground(th.Primary).Bold(true).MarginBottom(1)
	value := lipgloss.NewStyle().Foreground(th.Text)
	active := lipgloss.NewStyle().Foreground(th.Secondary).Bold(true)

	status := lipgloss.NewStyle().Foreground(th.Success).Render("RUNNING")
	switch {
	case m.err != nil:
		status = lipgloss.NewStyle().Foreground(th.Error).Render("STOPPED")
	case !m.running:
		status = lipgloss.NewStyle().Foreground(th.Warning).Render("PAUSED")
	}
	if m.recording {
		status += lipgloss.NewStyle().Foreground(th.Error).Render("  ● REC")
	}

	var s strings.Builder
	s.WriteString(header.Render(strings.ToUpper(m.name)) + "\n")
	s.WriteString(status + "\n\n")

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(gaps(m.energyHistory), asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(lipgloss.NewStyle().Foreground(th.Accent).Render(chart) + "\n\n")
	}

	energy := m.pend.Energy(m.state)
	row := func(label, v string) {
		s.WriteString(labelStyle.Render(label) + value.Render(v) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", m.t))
	row("Integrator", fmt.Sprintf("%s  dt=%g", m.integrator.Name(), m.dt))
	row("θ1, θ2", fmt.Sprintf("%+.3f, %+.3f", m.state[dynamo.Theta1], m.state[dynamo.Theta2]))
	row("ω1, ω2", fmt.Sprintf("%+.3f, %+.3f", m.state[dynamo.Omega1], m.state[dynamo.Omega2]))
	row("Energy", fmt.Sprintf("%.6f", energy))
	row("Drift", fmt.Sprintf("%.2e", analysis.RelativeDrift(m.e0, energy)))

	s.WriteString("\nPARAMETERS\n")
	params := m.pend.GetParams()
	initial := (&physics.DoublePendulum{Params: m.initialParams}).GetParams()
	for i, k := range m.paramKeys {
		val, init := params[k], initial[k]
		ratio := 0.5
		if init != 0 {
			ratio = math.Min(math.Max(val/(2*init), 0), 1)
		}
		filled := int(ratio * 10)
		bar := "[" + strings.Repeat("=", filled) + strings.Repeat("-", 10-filled) + "]"
		line := fmt.Sprintf("%-4s %s %.3f", k, bar, val)
		if i == m.selected {
			s.WriteString(active.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + labelStyle.Render(line) + "\n")
		}
	}

	if m.err != nil {
		s.WriteString("\n" + ErrorText.Render(m.err.Error()) + "\n")
	}
	if m.message != "" {
		s.WriteString("\n" + Subtle.Render(m.message) + "\n")
	}
	s.WriteString(helpStyle.Render("─────────────────────\nSP:Pause R:Reset Q:Quit\n+/-:dt  T:Theme G:Record ?:Help"))

	canvasView := canvasStyle.Foreground(th.Primary).Render(m.canvas.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return helpOverlay + "\n\n" + mainView
	}
	return mainView
}

const helpOverlay = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  R        - Reset simulation         ║
║  Q        - Quit                     ║
║  + / -    - Double / halve dt        ║
║  Tab      - Cycle parameters         ║
║  Up/K     - Increase parameter (+5%) ║
║  Down/J   - Decrease parameter (-5%) ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

// SaveGIF encodes frames as an endlessly looping animation; delay is in
// hundredths of a second.
func SaveGIF(path string, frames []*image.Paletted, delay int) error {
	if len(frames) == 0 {
		return fmt.Errorf("no frames recorded")
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, max(delay, 1))
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := gif.EncodeAll(f, &anim); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// RunLive runs the animation until the user quits.
func RunLive(params physics.Params, integ dynamo.Integrator, x0 dynamo.State, dt float64, opts LiveOptions) error {
	_, err := tea.NewProgram(NewModel(params, integ, x0, dt, opts), tea.WithAltScreen()).Run()
	return err
}
