package analysis

import (
	"strings"

	"github.com/nmpc-lab/armsim/internal/dynamo"
)

// PhasePoint is one sample of a 2D phase space trajectory.
type PhasePoint struct {
	X, Y float64
}

// PhasePortrait pairs two state entries across a recorded trajectory.
type PhasePortrait struct {
	XIndex, YIndex int
	Points         []PhasePoint
}

// PortraitFromStates builds a phase portrait from an already recorded
// run, pairing states[i][xIdx] against states[i][yIdx]. For a joint
// this is the familiar angle versus velocity picture.
func PortraitFromStates(states []dynamo.State, xIdx, yIdx int) *PhasePortrait {
	if len(states) == 0 || xIdx >= len(states[0]) || yIdx >= len(states[0]) {
		return nil
	}

	portrait := &PhasePortrait{
		XIndex: xIdx,
		YIndex: yIdx,
		Points: make([]PhasePoint, 0, len(states)),
	}
	for _, x := range states {
		portrait.Points = append(portrait.Points, PhasePoint{X: x[xIdx], Y: x[yIdx]})
	}
	return portrait
}

// GeneratePhasePortrait simulates the open-loop system and records the
// trajectory of two state entries.
func GeneratePhasePortrait(
	dyn dynamo.System,
	integ dynamo.Integrator,
	x0 dynamo.State,
	xIdx, yIdx int,
	dt, duration float64,
) *PhasePortrait {
	if xIdx >= len(x0) || yIdx >= len(x0) {
		return nil
	}

	portrait := &PhasePortrait{
		XIndex: xIdx,
		YIndex: yIdx,
		Points: make([]PhasePoint, 0, int(duration/dt)),
	}

	x := x0.Clone()
	u := make(dynamo.Control, dyn.ControlDim())

	for t := 0.0; t < duration; t += dt {
		x = integ.Step(dyn, x, u, t, dt)
		portrait.Points = append(portrait.Points, PhasePoint{X: x[xIdx], Y: x[yIdx]})
	}

	return portrait
}

// PhasePortraitToASCII renders the portrait on a character canvas with
// axes drawn where they cross the visible range.
func PhasePortraitToASCII(portrait *PhasePortrait, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y
	for _, p := range portrait.Points {
		minX = min(minX, p.X)
		maxX = max(maxX, p.X)
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	for _, p := range portrait.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
