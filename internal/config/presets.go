package config

var Presets = map[string]map[string]*Config{
	"twolink": {
		"reach": {
			Model: "twolink", Integrator: "rk4", Controller: "nmpc", Dt: 0.01, Duration: 8.0,
			InitState: InitStateConfig{Q1: -1.2, Q2: 0.5},
			Target:    TargetConfig{Q1: 0.5, Q2: -0.3},
			MPC: MPCConfig{
				Horizon: 20, StepSize: 0.05, SubSteps: 1,
				StateWeight: 10.0, InputWeight: 0.01, FinalWeight: 50.0,
				UMin: -40.0, UMax: 40.0, BoundWeight: 1e3,
			},
		},
		"hold": {
			Model: "twolink", Integrator: "rk4", Controller: "pid", Dt: 0.01, Duration: 10.0,
			InitState:        InitStateConfig{Q1: 0.3, Q2: -0.2},
			Target:           TargetConfig{Q1: 0.3, Q2: -0.2},
			ControllerParams: ControllerConfig{Kp: 40.0, Ki: 0.5, Kd: 8.0},
		},
		"swing": {
			Model: "twolink", Integrator: "rk4", Dt: 0.005, Duration: 15.0,
			InitState: InitStateConfig{Q1: 1.2, Q2: 0.8},
		},
		"drop": {
			Model: "twolink", Integrator: "rk45", Dt: 0.01, Duration: 10.0,
			InitState: InitStateConfig{Q1: 0.0, Q2: 0.0},
		},
	},
	"pendulum": {
		"small": {
			Model: "pendulum", Integrator: "rk4", Dt: 0.01, Duration: 20.0,
			InitState: InitStateConfig{Theta: 0.2, Omega: 0.0},
		},
		"large": {
			Model: "pendulum", Integrator: "rk4", Dt: 0.01, Duration: 20.0,
			InitState: InitStateConfig{Theta: 2.5, Omega: 0.0},
		},
		"upright": {
			Model: "pendulum", Integrator: "rk4", Controller: "lqr", Dt: 0.01, Duration: 10.0,
			InitState: InitStateConfig{Theta: 0.3, Omega: 0.0},
		},
	},
}

func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	return names
}
