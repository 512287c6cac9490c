package viz

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nmpc-lab/armsim/internal/control"
	"github.com/nmpc-lab/armsim/internal/dynamo"
	"github.com/nmpc-lab/armsim/internal/integrators"
	"github.com/nmpc-lab/armsim/internal/models"
)

func TestCanvasSetAndString(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Set(0, 0)
	c.Set(-1, 5) // ignored
	c.Set(100, 100)

	out := c.String()
	rows := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if []rune(rows[0])[0] == 0x2800 {
		t.Error("expected top-left cell to be lit")
	}
	if []rune(rows[1])[0] != 0x2800 {
		t.Error("expected second row to stay empty")
	}
}

func TestCanvasLine(t *testing.T) {
	c := NewCanvas(10, 10)
	c.Line(0, 0, 19, 39)

	lit := 0
	for _, r := range c.String() {
		if r > 0x2800 && r <= 0x28FF {
			lit++
		}
	}
	if lit == 0 {
		t.Error("expected lit cells along the line")
	}

	c.Clear()
	for _, r := range c.String() {
		if r > 0x2800 && r <= 0x28FF {
			t.Fatal("expected empty canvas after clear")
		}
	}
}

func TestCanvasCircle(t *testing.T) {
	c := NewCanvas(10, 10)
	c.Circle(10, 20, 5)
	lit := 0
	for _, r := range c.String() {
		if r > 0x2800 && r <= 0x28FF {
			lit++
		}
	}
	if lit == 0 {
		t.Error("expected lit cells on the circle")
	}
}

func TestParamBar(t *testing.T) {
	bar := ParamBar(1.0, 1.0, 10)
	if !strings.HasPrefix(bar, "[") || !strings.HasSuffix(bar, "]") {
		t.Errorf("unexpected bar: %s", bar)
	}
	if strings.Count(bar, "=") != 5 {
		t.Errorf("expected half-filled bar at initial value, got %s", bar)
	}

	if got := ParamBar(10, 1, 10); strings.Count(got, "=") != 10 {
		t.Errorf("expected full bar, got %s", got)
	}
}

func liveModel() Model {
	arm := models.NewTwoLink()
	init := dynamo.State{-1.2, 0.5, 0, 0, 0, 0}
	target := dynamo.State{0.5, -0.3, 0, 0, 0, 0}
	return NewModel(arm, integrators.NewRK4(), control.NewNone(2), init, target, 0.01, "twolink")
}

func TestModelTickAdvancesTime(t *testing.T) {
	m := liveModel()

	next, _ := m.Update(TickMsg{})
	m2 := next.(Model)
	if m2.t <= 0 {
		t.Error("expected time to advance on tick")
	}
	if len(m2.angleHistory) != 1 {
		t.Errorf("expected one history sample, got %d", len(m2.angleHistory))
	}
	if len(m2.trail) != 1 {
		t.Errorf("expected one trail point, got %d", len(m2.trail))
	}
}

func TestModelPauseAndReset(t *testing.T) {
	m := liveModel()

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeySpace})
	m2 := next.(Model)
	if m2.running {
		t.Error("expected paused after space")
	}

	next, _ = m2.Update(TickMsg{})
	m3 := next.(Model)
	if m3.t != 0 {
		t.Error("paused model should not advance")
	}

	next, _ = m3.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	m4 := next.(Model)
	if m4.t != 0 || len(m4.trail) != 0 {
		t.Error("reset should clear time and trail")
	}
}

func TestModelQuit(t *testing.T) {
	m := liveModel()
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
}

func TestModelView(t *testing.T) {
	m := liveModel()
	next, _ := m.Update(TickMsg{})
	next, _ = next.(Model).Update(TickMsg{})

	view := next.(Model).View()
	if !strings.Contains(view, "TWOLINK") {
		t.Error("expected model name in view")
	}
	if !strings.Contains(view, "Time") {
		t.Error("expected time row in view")
	}
}
