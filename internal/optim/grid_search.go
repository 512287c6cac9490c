package optim

import (
	"context"
	"math"

	"github.com/nmpc-lab/armsim/internal/config"
	"github.com/nmpc-lab/armsim/internal/experiment"
)

// GridSearch evaluates every combination of the given parameter values
// and keeps the one minimizing a run metric. Typical use is tuning
// controller gains or horizon settings against tracking error.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Apply writes a tuning parameter into the configuration. Unknown
// names are ignored so sweeps can mix controller families.
func Apply(cfg *config.Config, name string, value float64) {
	switch name {
	case "kp":
		cfg.ControllerParams.Kp = value
	case "ki":
		cfg.ControllerParams.Ki = value
	case "kd":
		cfg.ControllerParams.Kd = value
	case "horizon":
		cfg.MPC.Horizon = int(value)
	case "step_size":
		cfg.MPC.StepSize = value
	case "state_weight":
		cfg.MPC.StateWeight = value
	case "input_weight":
		cfg.MPC.InputWeight = value
	case "final_weight":
		cfg.MPC.FinalWeight = value
	case "bound_weight":
		cfg.MPC.BoundWeight = value
	}
}

// Search runs one experiment per grid point and returns the parameter
// assignment with the lowest value of metricName. The base
// configuration is copied for every evaluation.
func (g *GridSearch) Search(
	ctx context.Context,
	base *config.Config,
	metricName string,
) (map[string]float64, float64, error) {
	best := math.Inf(1)
	var bestParams map[string]float64

	g.searchRecursive(ctx, 0, make(map[string]float64), base, metricName, &best, &bestParams)

	if err := ctx.Err(); err != nil {
		return bestParams, best, err
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	base *config.Config,
	metricName string,
	best *float64,
	bestParams *map[string]float64,
) {
	if ctx.Err() != nil {
		return
	}

	if depth == len(g.paramNames) {
		cfg := *base
		for name, val := range current {
			Apply(&cfg, name, val)
		}

		exp := experiment.New(&cfg)
		if err := exp.Setup(); err != nil {
			return
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return
		}

		val, ok := result.Metrics[metricName]
		if !ok {
			return
		}
		if val < *best {
			*best = val
			*bestParams = make(map[string]float64, len(current))
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[paramName] = val

		g.searchRecursive(ctx, depth+1, next, base, metricName, best, bestParams)
	}
}
