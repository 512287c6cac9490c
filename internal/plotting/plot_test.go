package plotting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nmpc-lab/armsim/internal/dynamo"
)

func sampleResult(steps int) *dynamo.Result {
	r := &dynamo.Result{}
	for i := 0; i < steps; i++ {
		t := float64(i) * 0.01
		r.Times = append(r.Times, t)
		r.States = append(r.States, dynamo.State{t, -t, 2 * t, -2 * t, 0.1, -0.1})
		r.Controls = append(r.Controls, dynamo.Control{1.0, -1.0})
	}
	return r
}

func TestSaveTimeSeries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "angles.png")
	err := SaveTimeSeries(path, "Joint Angles", sampleResult(50), []int{0, 1}, []string{"q1", "q2"})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Size() == 0 {
		t.Error("expected non-empty png")
	}
}

func TestSaveTimeSeries_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.png")
	if err := SaveTimeSeries(path, "x", &dynamo.Result{}, []int{0}, nil); err == nil {
		t.Error("expected error for empty result")
	}
}

func TestSavePhase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phase.png")
	if err := SavePhase(path, "Phase", sampleResult(50), 0, 2, "q1", "dq1"); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("stat failed: %v", err)
	}
}

func TestSaveRunPlots(t *testing.T) {
	dir := t.TempDir()
	if err := SaveRunPlots(dir, sampleResult(50)); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{"angles.png", "velocities.png", "phase_q1.png", "torques.png", "inputs.png"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}
