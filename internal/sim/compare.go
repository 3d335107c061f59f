package sim

import (
	"context"
	"sync"
)

// Candidate names one controller setup inside a Comparison. Factories are
// invoked once per run so no state leaks between candidates.
type Candidate struct {
	Name       string
	Controller func() Controller
}

// Comparison runs several candidate controllers against independent,
// freshly-built plants over the same reference and horizon. Runs share no
// mutable state, so they execute concurrently; results are positionally
// ordered and identical to sequential execution.
type Comparison struct {
	Plant      func() System
	Integrator func() Integrator
	Reference  Reference
	Candidates []Candidate
}

func (c *Comparison) Run(ctx context.Context, x0 State, cfg Config) ([]*Record, error) {
	records := make([]*Record, len(c.Candidates))
	errs := make([]error, len(c.Candidates))

	var wg sync.WaitGroup
	for i, cand := range c.Candidates {
		wg.Add(1)
		go func(idx int, cand Candidate) {
			defer wg.Done()
			loop := NewLoop(c.Plant(), c.Integrator(), cand.Controller(), c.Reference)
			records[idx], errs[idx] = loop.Run(ctx, x0.Clone(), cfg)
		}(i, cand)
	}
	wg.Wait()

	// A divergence fault is reported through the record; only configuration
	// and context errors abort the comparison.
	for _, err := range errs {
		if err != nil {
			if _, ok := err.(*Fault); ok {
				continue
			}
			return records, err
		}
	}

	return records, nil
}
