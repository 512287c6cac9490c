package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt       = 0.01
	DefaultDuration = 10.0
	DefaultKp       = 40.0
	DefaultKi       = 0.5
	DefaultKd       = 8.0
	DefaultHorizon  = 20
	DefaultMPCStep  = 0.05
)

type Config struct {
	Model            string           `yaml:"model"`
	Integrator       string           `yaml:"integrator"`
	Controller       string           `yaml:"controller"`
	Dt               float64          `yaml:"dt"`
	Duration         float64          `yaml:"duration"`
	Seed             int64            `yaml:"seed"`
	InitState        InitStateConfig  `yaml:"init_state"`
	Target           TargetConfig     `yaml:"target"`
	ControllerParams ControllerConfig `yaml:"controller_params"`
	MPC              MPCConfig        `yaml:"mpc"`
}

type InitStateConfig struct {
	Q1     float64   `yaml:"q1"`
	Q2     float64   `yaml:"q2"`
	DQ1    float64   `yaml:"dq1"`
	DQ2    float64   `yaml:"dq2"`
	Tau1   float64   `yaml:"tau1"`
	Tau2   float64   `yaml:"tau2"`
	Theta  float64   `yaml:"theta"`
	Omega  float64   `yaml:"omega"`
	Custom []float64 `yaml:"custom,omitempty"`
}

type TargetConfig struct {
	Q1 float64 `yaml:"q1"`
	Q2 float64 `yaml:"q2"`
}

type ControllerConfig struct {
	Kp float64 `yaml:"kp"`
	Ki float64 `yaml:"ki"`
	Kd float64 `yaml:"kd"`
}

type MPCConfig struct {
	Horizon     int     `yaml:"horizon"`
	StepSize    float64 `yaml:"step_size"`
	SubSteps    int     `yaml:"sub_steps"`
	StateWeight float64 `yaml:"state_weight"`
	InputWeight float64 `yaml:"input_weight"`
	FinalWeight float64 `yaml:"final_weight"`
	UMin        float64 `yaml:"u_min"`
	UMax        float64 `yaml:"u_max"`
	BoundWeight float64 `yaml:"bound_weight"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:      "twolink",
		Integrator: "rk4",
		Controller: "none",
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		InitState: InitStateConfig{
			Q1: -1.2,
			Q2: 0.5,
		},
		Target: TargetConfig{
			Q1: 0.5,
			Q2: -0.3,
		},
		ControllerParams: ControllerConfig{
			Kp: DefaultKp,
			Ki: DefaultKi,
			Kd: DefaultKd,
		},
		MPC: MPCConfig{
			Horizon:     DefaultHorizon,
			StepSize:    DefaultMPCStep,
			SubSteps:    1,
			StateWeight: 10.0,
			InputWeight: 0.01,
			FinalWeight: 50.0,
			UMin:        -40.0,
			UMax:        40.0,
			BoundWeight: 1e3,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// GetInitState builds the initial state vector for the configured model.
// The twolink layout is [q1 q2 dq1 dq2 tau1 tau2].
func (c *Config) GetInitState() []float64 {
	if len(c.InitState.Custom) > 0 {
		out := make([]float64, len(c.InitState.Custom))
		copy(out, c.InitState.Custom)
		return out
	}
	switch c.Model {
	case "pendulum":
		return []float64{c.InitState.Theta, c.InitState.Omega}
	default:
		return []float64{
			c.InitState.Q1, c.InitState.Q2,
			c.InitState.DQ1, c.InitState.DQ2,
			c.InitState.Tau1, c.InitState.Tau2,
		}
	}
}

// GetTargetState builds the full tracking target for the configured
// model, with zero velocities and zero held torque.
func (c *Config) GetTargetState() []float64 {
	switch c.Model {
	case "pendulum":
		return []float64{c.Target.Q1, 0}
	default:
		return []float64{c.Target.Q1, c.Target.Q2, 0, 0, 0, 0}
	}
}

func (c *Config) GetControllerParams(controlDim int) map[string]float64 {
	return map[string]float64{
		"dim": float64(controlDim),
		"kp":  c.ControllerParams.Kp,
		"ki":  c.ControllerParams.Ki,
		"kd":  c.ControllerParams.Kd,
	}
}
