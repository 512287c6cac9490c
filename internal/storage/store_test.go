package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/nmpc-lab/armsim/internal/config"
	"github.com/nmpc-lab/armsim/internal/dynamo"
)

func sampleResult() *dynamo.Result {
	return &dynamo.Result{
		States: []dynamo.State{
			{-1.2, 0.5, 0, 0, 0, 0},
			{-1.19, 0.49, 0.1, -0.1, 0.2, 0.1},
		},
		Controls: []dynamo.Control{
			{2.0, -1.0},
			{1.5, -0.5},
		},
		Times: []float64{0.0, 0.01},
		Metrics: map[string]float64{
			"tracking_error": 0.8,
		},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Seed = 42
	cfg.Controller = "nmpc"

	runID, err := st.Save(cfg, sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Model != "twolink" {
		t.Errorf("expected model twolink, got %s", meta.Model)
	}
	if meta.Seed != 42 {
		t.Errorf("expected seed 42, got %d", meta.Seed)
	}
	if meta.Controller != "nmpc" {
		t.Errorf("expected controller nmpc, got %s", meta.Controller)
	}
	if meta.Metrics["tracking_error"] != 0.8 {
		t.Errorf("expected tracking_error 0.8, got %f", meta.Metrics["tracking_error"])
	}

	states, times, err := st.LoadTrajectory(runID)
	if err != nil {
		t.Fatalf("load trajectory failed: %v", err)
	}
	if len(states) != 2 || len(times) != 2 {
		t.Fatalf("expected 2 rows, got %d states, %d times", len(states), len(times))
	}
	if len(states[0]) != 6 {
		t.Errorf("control columns should be dropped, got %d columns", len(states[0]))
	}
	if states[1][0] != -1.19 {
		t.Errorf("expected q1 -1.19, got %f", states[1][0])
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	if _, err := st.Save(config.DefaultConfig(), sampleResult()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run, got %d", len(runs))
	}
}

func TestStoreFileStructure(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(config.DefaultConfig(), sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(dir, runID)
	if _, err := os.Stat(filepath.Join(runDir, "metadata.json")); os.IsNotExist(err) {
		t.Error("metadata.json not created")
	}
	if _, err := os.Stat(filepath.Join(runDir, "trajectory.csv")); os.IsNotExist(err) {
		t.Error("trajectory.csv not created")
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.DefaultConfig()
	if err := WriteJSON(&buf, cfg, sampleResult()); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if data.Model != "twolink" {
		t.Errorf("expected model twolink, got %s", data.Model)
	}
	if data.Steps != 2 || len(data.States) != 2 || len(data.Controls) != 2 {
		t.Errorf("unexpected shape: steps=%d states=%d controls=%d", data.Steps, len(data.States), len(data.Controls))
	}
}
