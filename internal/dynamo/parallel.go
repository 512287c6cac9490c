package dynamo

import (
	"context"
	"sync"
)

// Ensemble runs the same closed loop from the same initial state under a
// range of seeds, one goroutine per run. Each run gets a fresh Simulator
// so per-run controller and metric state never crosses goroutines.
type Ensemble struct {
	dyn        System
	newIntegr  func() Integrator
	newCtrl    func() Controller
	newMetrics func() []Metric
	numRuns    int
	seedStart  int64
}

func NewEnsemble(dyn System, newIntegr func() Integrator, newCtrl func() Controller, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{
		dyn:       dyn,
		newIntegr: newIntegr,
		newCtrl:   newCtrl,
		numRuns:   numRuns,
		seedStart: seedStart,
	}
}

// WithMetrics sets a factory producing fresh metrics for each run.
func (e *Ensemble) WithMetrics(f func() []Metric) *Ensemble {
	e.newMetrics = f
	return e
}

func (e *Ensemble) Run(ctx context.Context, x0 State, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfgCopy := cfg
			cfgCopy.Seed = e.seedStart + int64(idx)

			s := New(e.dyn, e.newIntegr(), e.newCtrl())
			if e.newMetrics != nil {
				for _, m := range e.newMetrics() {
					s.AddMetric(m)
				}
			}

			results[idx], errs[idx] = s.Run(ctx, x0, cfgCopy)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
