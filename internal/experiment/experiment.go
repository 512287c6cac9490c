package experiment

import (
	"context"
	"fmt"

	"github.com/nmpc-lab/armsim/internal/config"
	"github.com/nmpc-lab/armsim/internal/dynamo"
)

// Experiment assembles a simulator from a configuration and runs it.
type Experiment struct {
	cfg      *config.Config
	registry *Registry

	dyn       dynamo.System
	simulator *dynamo.Simulator
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{
		cfg:      cfg,
		registry: NewRegistry(),
	}
}

// Setup resolves the configured model, integrator and controller and
// attaches the default metric set.
func (e *Experiment) Setup() error {
	dyn, err := e.registry.GetModel(e.cfg.Model)
	if err != nil {
		return err
	}

	integ, err := e.registry.GetIntegrator(e.cfg.Integrator)
	if err != nil {
		return err
	}

	ctrlName := e.cfg.Controller
	if ctrlName == "" {
		ctrlName = "none"
	}
	ctrl, err := e.registry.GetController(ctrlName, dyn, e.cfg)
	if err != nil {
		return err
	}

	e.dyn = dyn
	e.simulator = dynamo.New(dyn, integ, ctrl)
	for _, m := range e.registry.DefaultMetrics(dyn, e.cfg) {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not set up")
	}

	x0 := dynamo.State(e.cfg.GetInitState()).Clone()

	simCfg := dynamo.DefaultConfig()
	simCfg.Dt = e.cfg.Dt
	simCfg.Duration = e.cfg.Duration
	simCfg.Seed = e.cfg.Seed
	simCfg.Adaptive = e.cfg.Integrator == "rk45"

	return e.simulator.Run(ctx, x0, simCfg)
}

// RunEnsemble runs the configured closed loop under a range of seeds,
// one goroutine per member. Every member gets a freshly built
// integrator, controller and metric set so no solver or metric state
// crosses goroutines. Component names were validated by Setup, so the
// factories cannot fail here.
func (e *Experiment) RunEnsemble(ctx context.Context, runs int) ([]*dynamo.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not set up")
	}
	if runs < 1 {
		return nil, fmt.Errorf("ensemble needs at least one member, got %d", runs)
	}

	ctrlName := e.cfg.Controller
	if ctrlName == "" {
		ctrlName = "none"
	}

	ens := dynamo.NewEnsemble(e.dyn,
		func() dynamo.Integrator {
			integ, _ := e.registry.GetIntegrator(e.cfg.Integrator)
			return integ
		},
		func() dynamo.Controller {
			ctrl, _ := e.registry.GetController(ctrlName, e.dyn, e.cfg)
			return ctrl
		},
		runs, e.cfg.Seed,
	).WithMetrics(func() []dynamo.Metric {
		return e.registry.DefaultMetrics(e.dyn, e.cfg)
	})

	x0 := dynamo.State(e.cfg.GetInitState()).Clone()

	simCfg := dynamo.DefaultConfig()
	simCfg.Dt = e.cfg.Dt
	simCfg.Duration = e.cfg.Duration
	simCfg.Adaptive = e.cfg.Integrator == "rk45"

	return ens.Run(ctx, x0, simCfg)
}

// Simulator exposes the underlying simulator for attaching observers.
func (e *Experiment) Simulator() *dynamo.Simulator {
	return e.simulator
}

// System returns the resolved model after Setup.
func (e *Experiment) System() dynamo.System {
	return e.dyn
}
