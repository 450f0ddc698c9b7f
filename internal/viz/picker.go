package viz

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/dpsim/internal/config"
	"github.com/san-kum/dpsim/internal/integrators"
)

const (
	stateMenu = iota
	stateConfig
	stateSim
)

var (
	pickHeader  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	pickSub     = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	pickCursor  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	pickActive  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	pickValue   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff")).Bold(true)
	pickIdle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	pickIdleVal = lipgloss.NewStyle().Foreground(lipgloss.Color("#444455"))
	pickKey     = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

var fieldNames = []string{"theta1", "theta2", "omega1", "omega2", "dt", "integrator"}

// picker lets the user choose a preset, tweak its initial condition and
// start the live view.
type picker struct {
	state, cursor int
	presets       []string
	selected      string
	cfg           *config.Config
	fieldCursor   int
	editing       bool
	editBuf       string
	err           string
	theme         string
	live          Model
}

// NewPicker builds the preset menu.
func NewPicker(theme string) tea.Model {
	return picker{
		state:   stateMenu,
		presets: config.ListPresets(),
		theme:   theme,
	}
}

func (m picker) Init() tea.Cmd { return nil }

func (m picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		if m.state == stateSim {
			next, cmd := m.live.Update(msg)
			m.live = next.(Model)
			return m, cmd
		}
	}
	return m, nil
}

func (m picker) handleKey(msg tea.KeyMsg) (picker, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateSim:
		next, cmd := m.live.Update(msg)
		m.live = next.(Model)
		return m, cmd
	}
	return m, nil
}

func (m picker) menuKey(msg tea.KeyMsg) (picker, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
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
		m.selected = m.presets[m.cursor]
		m.cfg = config.GetPreset(m.selected)
		m.state, m.fieldCursor, m.err = stateConfig, 0, ""
	}
	return m, nil
}

func (m picker) configKey(msg tea.KeyMsg) (picker, tea.Cmd) {
	if m.editing {
		switch msg.String() {
		case "enter":
			if v, err := strconv.ParseFloat(m.editBuf, 64); err == nil {
				*m.field(fieldNames[m.fieldCursor]) = v
				m.err = ""
			} else {
				m.err = fmt.Sprintf("not a number: %q", m.editBuf)
			}
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if s := msg.String(); len(s) == 1 && strings.ContainsAny(s, "0123456789.-e") {
				m.editBuf += s
			}
		}
		return m, nil
	}

	name := fieldNames[m.fieldCursor]
	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.fieldCursor > 0 {
			m.fieldCursor--
		}
	case "down", "j":
		if m.fieldCursor < len(fieldNames)-1 {
			m.fieldCursor++
		}
	case "enter", " ":
		if name == "integrator" {
			m.cycleIntegrator(1)
		} else {
			m.editing, m.editBuf = true, strconv.FormatFloat(*m.field(name), 'g', -1, 64)
		}
	case "left", "h":
		m.nudge(name, -1)
	case "right", "l":
		m.nudge(name, 1)
	case "s":
		return m.start()
	}
	return m, nil
}

func (m *picker) nudge(name string, dir int) {
	switch name {
	case "integrator":
		m.cycleIntegrator(dir)
	case "dt":
		if dir > 0 {
			m.cfg.Dt *= 2
		} else {
			m.cfg.Dt /= 2
		}
	default:
		*m.field(name) += 0.1 * float64(dir)
	}
}

func (m *picker) cycleIntegrator(dir int) {
	names := integrators.Names()
	i := 0
	for j, n := range names {
		if n == m.cfg.Integrator {
			i = j
		}
	}
	m.cfg.Integrator = names[(i+dir+len(names))%len(names)]
}

// field returns the editable float behind a menu entry.
func (m *picker) field(name string) *float64 {
	switch name {
	case "theta1":
		return &m.cfg.InitState.Theta1
	case "theta2":
		return &m.cfg.InitState.Theta2
	case "omega1":
		return &m.cfg.InitState.Omega1
	case "omega2":
		return &m.cfg.InitState.Omega2
	}
	return &m.cfg.Dt
}

func (m picker) start() (picker, tea.Cmd) {
	if err := m.cfg.Validate(); err != nil {
		m.err = err.Error()
		return m, nil
	}
	integ, err := integrators.Lookup(m.cfg.Integrator)
	if err != nil {
		m.err = err.Error()
		return m, nil
	}
	m.live = NewModel(m.cfg.Params, integ, m.cfg.GetInitState(), m.cfg.Dt, LiveOptions{Name: m.selected, Theme: m.theme})
	m.state = stateSim
	return m, m.live.Init()
}

func (m picker) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.live.View()
	}
	return ""
}

func (m picker) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + pickHeader.Render("DPSIM") + "\n    " + pickSub.Render("double pendulum simulator") + "\n    " + pickSub.Render("─────────────────────────") + "\n\n")
	for i, name := range m.presets {
		desc := config.Presets[name].Description
		if len(desc) > 40 {
			desc = desc[:37] + "..."
		}
		if i == m.cursor {
			fmt.Fprintf(&b, "    %s %s  %s\n", pickCursor.Render("▸"), pickActive.Render(fmt.Sprintf("%-12s", name)), pickValue.Render(desc))
		} else {
			fmt.Fprintf(&b, "    %s  %s\n", pickIdle.Render(fmt.Sprintf("  %-12s", name)), pickIdleVal.Render(desc))
		}
	}
	b.WriteString("\n    " + pickKey.Render("j/k") + pickIdle.Render(" navigate  ") + pickKey.Render("enter") + pickIdle.Render(" select  ") + pickKey.Render("q") + pickIdle.Render(" quit") + "\n")
	return b.String()
}

func (m picker) viewConfig() string {
	var b strings.Builder
	b.WriteString("\n\n    " + pickHeader.Render(strings.ToUpper(m.selected)) + "\n    " + pickSub.Render(config.Presets[m.selected].Description) + "\n    " + pickSub.Render("─────────────────────────") + "\n\n")
	for i, name := range fieldNames {
		var val string
		if name == "integrator" {
			val = fmt.Sprintf("%8s", m.cfg.Integrator)
		} else {
			val = fmt.Sprintf("%8.4g", *m.field(name))
		}
		if m.editing && i == m.fieldCursor {
			val = fmt.Sprintf("%8s", m.editBuf+"_")
		}
		if i == m.fieldCursor {
			fmt.Fprintf(&b, "    %s %s %s\n", pickCursor.Render("▸"), pickActive.Render(fmt.Sprintf("%-10s", name)), pickValue.Render(val))
		} else {
			fmt.Fprintf(&b, "    %s %s\n", pickIdle.Render(fmt.Sprintf("  %-10s", name)), pickIdleVal.Render(val))
		}
	}
	if m.err != "" {
		b.WriteString("\n    " + ErrorText.Render(m.err) + "\n")
	}
	b.WriteString("\n    " + pickKey.Render("j/k") + pickIdle.Render(" select  ") + pickKey.Render("h/l") + pickIdle.Render(" adjust  ") + pickKey.Render("s") + pickIdle.Render(" start  ") + pickKey.Render("esc") + pickIdle.Render(" back") + "\n")
	return b.String()
}

// RunPicker runs the preset menu and live view until the user quits.
func RunPicker(theme string) error {
	_, err := tea.NewProgram(NewPicker(theme), tea.WithAltScreen()).Run()
	return err
}
