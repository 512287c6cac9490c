package experiment

import (
	"fmt"
	"math"

	"github.com/nmpc-lab/armsim/internal/config"
	"github.com/nmpc-lab/armsim/internal/control"
	"github.com/nmpc-lab/armsim/internal/dynamo"
	"github.com/nmpc-lab/armsim/internal/integrators"
	"github.com/nmpc-lab/armsim/internal/metrics"
	"github.com/nmpc-lab/armsim/internal/models"
	"github.com/nmpc-lab/armsim/internal/nmpc"
)

type Registry struct {
	models      map[string]func() dynamo.System
	integrators map[string]func() dynamo.Integrator
	controllers map[string]func(dyn dynamo.System, cfg *config.Config) (dynamo.Controller, error)
}

func NewRegistry() *Registry {
	r := &Registry{
		models:      make(map[string]func() dynamo.System),
		integrators: make(map[string]func() dynamo.Integrator),
		controllers: make(map[string]func(dyn dynamo.System, cfg *config.Config) (dynamo.Controller, error)),
	}

	r.models["twolink"] = func() dynamo.System { return models.NewTwoLink() }
	r.models["pendulum"] = func() dynamo.System { return models.NewPendulum() }

	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() dynamo.Integrator { return integrators.NewRK4() }
	r.integrators["rk45"] = func() dynamo.Integrator { return integrators.NewRK45() }

	r.controllers["none"] = func(dyn dynamo.System, cfg *config.Config) (dynamo.Controller, error) {
		dim := dyn.ControlDim()
		if dim == 0 {
			dim = 1
		}
		return control.NewNone(dim), nil
	}
	r.controllers["pid"] = func(dyn dynamo.System, cfg *config.Config) (dynamo.Controller, error) {
		ref := control.NewConstantReference(cfg.GetTargetState())
		p := cfg.ControllerParams
		nJoints := dyn.ControlDim()
		return control.NewJointPID(nJoints, p.Kp, p.Ki, p.Kd, ref), nil
	}
	r.controllers["lqr"] = func(dyn dynamo.System, cfg *config.Config) (dynamo.Controller, error) {
		switch cfg.Model {
		case "pendulum":
			return control.NewPendulumLQR(), nil
		default:
			return control.NewTwoLinkLQR(cfg.Target.Q1, cfg.Target.Q2, 0, 0), nil
		}
	}
	r.controllers["nmpc"] = func(dyn dynamo.System, cfg *config.Config) (dynamo.Controller, error) {
		return buildNMPC(dyn, cfg)
	}

	return r
}

func buildNMPC(dyn dynamo.System, cfg *config.Config) (dynamo.Controller, error) {
	m := cfg.MPC
	if m.Horizon <= 0 || m.StepSize <= 0 {
		return nil, fmt.Errorf("nmpc requires positive horizon and step size")
	}

	ref := control.NewConstantReference(cfg.GetTargetState())
	prob := nmpc.NewProblem(dyn, integrators.NewRK4(), ref, m.Horizon, m.StepSize)
	if m.SubSteps > 0 {
		prob.SubSteps = m.SubSteps
	}

	n, nu := dyn.StateDim(), dyn.ControlDim()
	q := weightVector(n, m.StateWeight)
	// Velocity and held-torque entries get a lighter weight so the
	// cost is dominated by joint angle error.
	for i := nu; i < n; i++ {
		q[i] *= 0.1
	}
	r := weightVector(nu, m.InputWeight)
	p := weightVector(n, m.FinalWeight)
	if err := prob.SetWeights(q, r, p); err != nil {
		return nil, err
	}

	if m.UMin != 0 || m.UMax != 0 {
		prob.UMin = fillVector(nu, m.UMin)
		prob.UMax = fillVector(nu, m.UMax)
	}
	if m.BoundWeight > 0 {
		prob.BoundWeight = m.BoundWeight
	}

	return nmpc.NewController(prob, nmpc.NewGonumSolver()), nil
}

func weightVector(n int, w float64) []float64 {
	if w <= 0 {
		w = 1
	}
	return fillVector(n, w)
}

func fillVector(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func (r *Registry) GetModel(name string) (dynamo.System, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return fn(), nil
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) GetController(name string, dyn dynamo.System, cfg *config.Config) (dynamo.Controller, error) {
	fn, ok := r.controllers[name]
	if !ok {
		return nil, fmt.Errorf("unknown controller: %s", name)
	}
	return fn(dyn, cfg)
}

func (r *Registry) ListModels() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	return names
}

func (r *Registry) DefaultMetrics(dyn dynamo.System, cfg *config.Config) []dynamo.Metric {
	ref := control.NewConstantReference(cfg.GetTargetState())
	nJoints := dyn.ControlDim()
	idx := make([]int, nJoints)
	for i := range idx {
		idx[i] = i
	}

	// Envelope per state block: joint angles, then velocities, then
	// actuator torques for models that carry them in the state.
	limits := make([]float64, dyn.StateDim())
	for i := range limits {
		switch {
		case i < nJoints:
			limits[i] = 4 * math.Pi
		case i < 2*nJoints:
			limits[i] = 30.0
		default:
			limits[i] = 200.0
		}
	}

	return []dynamo.Metric{
		metrics.NewTrackingError(ref, idx...),
		metrics.NewStabilityLimits(limits...),
		metrics.NewControlEffort(),
		metrics.NewEnergyDrift(dyn),
	}
}
