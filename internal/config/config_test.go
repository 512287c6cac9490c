package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Model != "twolink" {
		t.Errorf("expected model twolink, got %s", cfg.Model)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Duration <= 0 {
		t.Error("duration should be positive")
	}
	if cfg.MPC.Horizon <= 0 {
		t.Error("mpc horizon should be positive")
	}
	if cfg.MPC.UMin >= cfg.MPC.UMax {
		t.Error("mpc bounds should be ordered")
	}
}

func TestLoadSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := DefaultConfig()
	cfg.Controller = "nmpc"
	cfg.MPC.Horizon = 30
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Controller != "nmpc" {
		t.Errorf("expected controller nmpc, got %s", loaded.Controller)
	}
	if loaded.MPC.Horizon != 30 {
		t.Errorf("expected horizon 30, got %d", loaded.MPC.Horizon)
	}
}

func TestLoad_PartialOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "partial.yaml")
	if err := os.WriteFile(path, []byte("dt: 0.002\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Dt != 0.002 {
		t.Errorf("expected dt 0.002, got %f", cfg.Dt)
	}
	if cfg.Model != "twolink" {
		t.Errorf("unset fields should keep defaults, got model %s", cfg.Model)
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("twolink", "reach")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Controller != "nmpc" {
		t.Errorf("expected controller nmpc, got %s", cfg.Controller)
	}
	if cfg.InitState.Q1 != -1.2 {
		t.Errorf("expected q1 -1.2, got %f", cfg.InitState.Q1)
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("twolink", "nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if cfg := GetPreset("nonexistent", "reach"); cfg != nil {
		t.Error("expected nil for nonexistent model")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("twolink")
	if len(presets) == 0 {
		t.Error("expected presets for twolink")
	}

	if presets := ListPresets("nonexistent"); presets != nil {
		t.Error("expected nil for nonexistent model")
	}
}

func TestGetInitState(t *testing.T) {
	tests := []struct {
		model    string
		expected int
	}{
		{"twolink", 6},
		{"pendulum", 2},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.Model = tt.model
		state := cfg.GetInitState()
		if len(state) != tt.expected {
			t.Errorf("model %s: expected %d states, got %d", tt.model, tt.expected, len(state))
		}
	}
}

func TestGetInitState_Custom(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitState.Custom = []float64{1, 2, 3}
	state := cfg.GetInitState()
	if len(state) != 3 || state[0] != 1 {
		t.Errorf("expected custom state [1 2 3], got %v", state)
	}
}

func TestGetTargetState(t *testing.T) {
	cfg := DefaultConfig()
	target := cfg.GetTargetState()
	if len(target) != 6 {
		t.Fatalf("expected 6 entries, got %d", len(target))
	}
	if target[0] != cfg.Target.Q1 || target[1] != cfg.Target.Q2 {
		t.Errorf("target positions not propagated: %v", target)
	}
	for i := 2; i < 6; i++ {
		if target[i] != 0 {
			t.Errorf("target[%d] should be zero, got %f", i, target[i])
		}
	}
}
