package optim

import (
	"context"
	"testing"

	"github.com/nmpc-lab/armsim/internal/config"
)

func baseConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Model = "pendulum"
	cfg.Controller = "pid"
	cfg.InitState.Theta = 0.5
	cfg.Target.Q1 = 0
	cfg.ControllerParams = config.ControllerConfig{}
	cfg.Duration = 2.0
	return cfg
}

func TestGridSearch_FindsBetterGain(t *testing.T) {
	gs := NewGridSearch(
		[]string{"kp", "kd"},
		[][]float64{{0, 20}, {0, 2}},
	)

	params, best, err := gs.Search(context.Background(), baseConfig(), "tracking_error")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if params == nil {
		t.Fatal("expected best parameters")
	}
	if params["kp"] != 20 {
		t.Errorf("expected kp 20 to win, got %f", params["kp"])
	}
	if best <= 0 {
		t.Errorf("expected positive tracking error, got %f", best)
	}
}

func TestGridSearch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gs := NewGridSearch([]string{"kp"}, [][]float64{{1, 2}})
	if _, _, err := gs.Search(ctx, baseConfig(), "tracking_error"); err == nil {
		t.Error("expected context error")
	}
}

func TestApply(t *testing.T) {
	cfg := config.DefaultConfig()
	Apply(cfg, "kp", 99)
	Apply(cfg, "horizon", 12)
	Apply(cfg, "input_weight", 0.5)
	Apply(cfg, "unknown", 1)

	if cfg.ControllerParams.Kp != 99 {
		t.Errorf("kp not applied: %f", cfg.ControllerParams.Kp)
	}
	if cfg.MPC.Horizon != 12 {
		t.Errorf("horizon not applied: %d", cfg.MPC.Horizon)
	}
	if cfg.MPC.InputWeight != 0.5 {
		t.Errorf("input_weight not applied: %f", cfg.MPC.InputWeight)
	}
}
