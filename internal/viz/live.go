package viz

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/nmpc-lab/armsim/internal/dynamo"
	"github.com/nmpc-lab/armsim/internal/models"
)

const (
	canvasWidth     = 60
	canvasHeight    = 24
	historyCapacity = 600
	trailCapacity   = 120
)

type TickMsg time.Time

type point struct{ x, y float64 }

// Model is the live terminal view: it steps the closed loop at the
// frame rate and renders the manipulator with a tip trail, the target
// pose and a scrolling joint angle chart.
type Model struct {
	dyn        dynamo.System
	arm        *models.TwoLink
	integrator dynamo.Integrator
	controller dynamo.Controller

	state        dynamo.State
	initialState dynamo.State
	target       dynamo.State
	u            dynamo.Control
	t, dt        float64

	canvas       *Canvas
	trail        []point
	angleHistory []float64

	running   bool
	showHelp  bool
	modelName string

	params        map[string]float64
	initialParams map[string]float64
	paramKeys     []string
	selected      int
}

func NewModel(dyn dynamo.System, integ dynamo.Integrator, ctrl dynamo.Controller, initState, target dynamo.State, dt float64, modelName string) Model {
	params := make(map[string]float64)
	if tunable, ok := dyn.(dynamo.Configurable); ok {
		for k, v := range tunable.GetParams() {
			params[k] = v
		}
	}
	keys := make([]string, 0, len(params))
	initialParams := make(map[string]float64, len(params))
	for k, v := range params {
		keys = append(keys, k)
		initialParams[k] = v
	}
	sort.Strings(keys)

	arm, _ := dyn.(*models.TwoLink)

	return Model{
		dyn:           dyn,
		arm:           arm,
		integrator:    integ,
		controller:    ctrl,
		state:         initState.Clone(),
		initialState:  initState.Clone(),
		target:        target.Clone(),
		u:             make(dynamo.Control, dyn.ControlDim()),
		dt:            dt,
		canvas:        NewCanvas(canvasWidth, canvasHeight),
		trail:         make([]point, 0, trailCapacity),
		angleHistory:  make([]float64, 0, historyCapacity),
		running:       true,
		modelName:     modelName,
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
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func (m *Model) step() {
	m.u = m.controller.Compute(m.state, m.t)
	m.state = m.integrator.Step(m.dyn, m.state, m.u, m.t, m.dt)
	m.t += m.dt

	m.angleHistory = append(m.angleHistory, m.state[0])
	if len(m.angleHistory) > historyCapacity {
		m.angleHistory = m.angleHistory[1:]
	}

	var tip point
	if m.arm != nil {
		tip.x, tip.y = m.arm.TipPosition(m.state)
	} else {
		tip = point{math.Sin(m.state[0]), -math.Cos(m.state[0])}
	}
	m.trail = append(m.trail, tip)
	if len(m.trail) > trailCapacity {
		m.trail = m.trail[1:]
	}
}

func (m *Model) reset() {
	m.t = 0
	m.state = m.initialState.Clone()
	m.u = make(dynamo.Control, m.dyn.ControlDim())
	m.trail = m.trail[:0]
	m.angleHistory = m.angleHistory[:0]
	if resettable, ok := m.controller.(interface{ Reset() }); ok {
		resettable.Reset()
	}
	tunable, ok := m.dyn.(dynamo.Configurable)
	for k, v := range m.initialParams {
		m.params[k] = v
		if ok {
			tunable.SetParam(k, v)
		}
	}
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
	next := m.params[key] * factor
	if tunable, ok := m.dyn.(dynamo.Configurable); ok {
		if err := tunable.SetParam(key, next); err != nil {
			return
		}
	}
	m.params[key] = next
}

// toPixel maps workspace coordinates to canvas pixels, with y up and
// the origin at the canvas center.
func (m *Model) toPixel(x, y, scale float64) (int, int) {
	pw, ph := m.canvas.PixelSize()
	px := pw/2 + int(x*scale)
	py := ph/2 - int(y*scale)
	return px, py
}

func (m *Model) draw() {
	m.canvas.Clear()
	if m.arm != nil {
		m.drawArm()
		return
	}
	m.drawPendulum()
}

func (m *Model) drawArm() {
	reach := m.arm.L1 + m.arm.L2
	_, ph := m.canvas.PixelSize()
	scale := float64(ph) / (2.2 * reach)

	ex, ey := m.arm.ElbowPosition(m.state)
	tx, ty := m.arm.TipPosition(m.state)

	bx, by := m.toPixel(0, 0, scale)
	epx, epy := m.toPixel(ex, ey, scale)
	tpx, tpy := m.toPixel(tx, ty, scale)

	for _, p := range m.trail {
		m.canvas.Set(m.toPixel(p.x, p.y, scale))
	}

	if len(m.target) >= 2 {
		gx, gy := m.arm.TipPosition(dynamo.State{m.target[0], m.target[1], 0, 0, 0, 0})
		gpx, gpy := m.toPixel(gx, gy, scale)
		m.canvas.Circle(gpx, gpy, 3)
	}

	m.canvas.Circle(bx, by, 2)
	m.canvas.Line(bx, by, epx, epy)
	m.canvas.Line(epx, epy, tpx, tpy)
	m.canvas.Circle(epx, epy, 1)
	m.canvas.Circle(tpx, tpy, 2)
}

func (m *Model) drawPendulum() {
	if len(m.state) < 1 {
		return
	}
	theta := m.state[0]
	_, ph := m.canvas.PixelSize()
	scale := float64(ph) / 2.5

	bx, by := m.toPixel(0, 0, scale)
	px, py := m.toPixel(math.Sin(theta), -math.Cos(theta), scale)

	for _, p := range m.trail {
		m.canvas.Set(m.toPixel(p.x, p.y, scale))
	}

	m.canvas.Circle(bx, by, 1)
	m.canvas.Line(bx, by, px, py)
	m.canvas.Circle(px, py, 2)
}

func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.modelName)) + "\n")
	if m.running {
		s.WriteString(statusRunning.Render("RUNNING") + "\n\n")
	} else {
		s.WriteString(statusPaused.Render("PAUSED") + "\n\n")
	}

	if len(m.angleHistory) > 1 {
		chart := asciigraph.Plot(m.angleHistory,
			asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("q1 [rad]"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.2fs", m.t)) + "\n")
	if h, ok := m.dyn.(dynamo.Hamiltonian); ok {
		s.WriteString(labelStyle.Render("Energy") + valueStyle.Render(fmt.Sprintf("%.2f J", h.Energy(m.state))) + "\n")
	}
	if len(m.state) >= 6 {
		s.WriteString(labelStyle.Render("Joints") + valueStyle.Render(fmt.Sprintf("%.2f / %.2f rad", m.state[0], m.state[1])) + "\n")
		s.WriteString(labelStyle.Render("Torques") + valueStyle.Render(fmt.Sprintf("%.2f / %.2f Nm", m.state[4], m.state[5])) + "\n")
	}
	if len(m.u) > 0 {
		parts := make([]string, len(m.u))
		for i, v := range m.u {
			parts[i] = fmt.Sprintf("%.2f", v)
		}
		s.WriteString(labelStyle.Render("Input") + valueStyle.Render(strings.Join(parts, " / ")) + "\n")
	}

	s.WriteString("\nPARAMETERS\n")
	if len(m.paramKeys) == 0 {
		s.WriteString(labelStyle.Render("  (none)") + "\n")
	}
	for i, k := range m.paramKeys {
		line := fmt.Sprintf("%-10s %s %.2f", k, ParamBar(m.params[k], m.initialParams[k], 10), m.params[k])
		if i == m.selected {
			s.WriteString(activeParamStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + labelStyle.Render(line) + "\n")
		}
	}

	s.WriteString(helpStyle.Render("\n─────────────────────\nSP:Pause R:Reset Q:Quit\nTab:Param ↑↓:Tune ?:Help"))

	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)

	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  R        - Reset simulation         ║
║  Q        - Quit                     ║
║  Tab      - Cycle parameters         ║
║  Up/K     - Increase parameter (+5%) ║
║  Down/J   - Decrease parameter (-5%) ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}
