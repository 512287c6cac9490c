// Package plotting renders recorded trajectories to PNG files with
// gonum/plot.
package plotting

import (
	"fmt"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/nmpc-lab/armsim/internal/dynamo"
)

func newPlot(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())
	return p
}

func line(xs, ys []float64) (*plotter.Line, error) {
	if len(xs) != len(ys) || len(xs) == 0 {
		return nil, fmt.Errorf("plot data invalid: %d x, %d y", len(xs), len(ys))
	}
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	l, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	l.LineStyle.Width = vg.Points(1.5)
	return l, nil
}

func column(states []dynamo.State, idx int) []float64 {
	out := make([]float64, len(states))
	for i, x := range states {
		if idx < len(x) {
			out[i] = x[idx]
		}
	}
	return out
}

// SaveTimeSeries plots selected state columns against time and writes
// one PNG. Labels pair with indices.
func SaveTimeSeries(path, title string, result *dynamo.Result, indices []int, labels []string) error {
	if len(result.States) == 0 {
		return fmt.Errorf("no states to plot")
	}

	p := newPlot(title, "time [s]", "value")
	for i, idx := range indices {
		l, err := line(result.Times, column(result.States, idx))
		if err != nil {
			return err
		}
		l.Color = plotutil.Color(i)
		p.Add(l)
		label := fmt.Sprintf("x%d", idx)
		if i < len(labels) {
			label = labels[i]
		}
		p.Legend.Add(label, l)
	}
	p.Legend.Top = true

	return p.Save(8*vg.Inch, 6*vg.Inch, path)
}

// SaveControls plots every control channel against time.
func SaveControls(path, title string, result *dynamo.Result) error {
	if len(result.Controls) == 0 {
		return fmt.Errorf("no controls to plot")
	}

	times := result.Times
	if len(times) > len(result.Controls) {
		times = times[:len(result.Controls)]
	}

	p := newPlot(title, "time [s]", "input")
	for j := 0; j < len(result.Controls[0]); j++ {
		ys := make([]float64, len(result.Controls))
		for i, u := range result.Controls {
			if j < len(u) {
				ys[i] = u[j]
			}
		}
		l, err := line(times, ys)
		if err != nil {
			return err
		}
		l.Color = plotutil.Color(j)
		p.Add(l)
		p.Legend.Add(fmt.Sprintf("u%d", j+1), l)
	}
	p.Legend.Top = true

	return p.Save(8*vg.Inch, 6*vg.Inch, path)
}

// SavePhase plots one state column against another, the joint angle
// versus velocity picture for a manipulator run.
func SavePhase(path, title string, result *dynamo.Result, xIdx, yIdx int, xlabel, ylabel string) error {
	if len(result.States) == 0 {
		return fmt.Errorf("no states to plot")
	}

	p := newPlot(title, xlabel, ylabel)
	l, err := line(column(result.States, xIdx), column(result.States, yIdx))
	if err != nil {
		return err
	}
	p.Add(l)

	return p.Save(6*vg.Inch, 6*vg.Inch, path)
}

// SaveRunPlots writes the standard set of PNGs for a manipulator run
// into dir: joint angles, joint velocities, held torques, inputs and
// the first joint's phase plane.
func SaveRunPlots(dir string, result *dynamo.Result) error {
	if len(result.States) == 0 {
		return fmt.Errorf("no states to plot")
	}
	n := len(result.States[0])

	if n >= 2 {
		if err := SaveTimeSeries(filepath.Join(dir, "angles.png"), "Joint Angles",
			result, []int{0, 1}, []string{"q1", "q2"}); err != nil {
			return err
		}
	}
	if n >= 4 {
		if err := SaveTimeSeries(filepath.Join(dir, "velocities.png"), "Joint Velocities",
			result, []int{2, 3}, []string{"dq1", "dq2"}); err != nil {
			return err
		}
		if err := SavePhase(filepath.Join(dir, "phase_q1.png"), "Joint 1 Phase Plane",
			result, 0, 2, "q1 [rad]", "dq1 [rad/s]"); err != nil {
			return err
		}
	}
	if n >= 6 {
		if err := SaveTimeSeries(filepath.Join(dir, "torques.png"), "Held Torques",
			result, []int{4, 5}, []string{"tau1", "tau2"}); err != nil {
			return err
		}
	}
	if len(result.Controls) > 0 {
		if err := SaveControls(filepath.Join(dir, "inputs.png"), "Torque Rates", result); err != nil {
			return err
		}
	}
	return nil
}
