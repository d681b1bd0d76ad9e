// Package workload computes weighted load views over the assignment store.
//
// The store owns the raw per-worker counters; this package joins them with
// worker directory records to produce capacity-aware views (remaining
// headroom, team rollups, overload checks) without holding any state of its
// own.
package workload

import (
	"context"
	"fmt"
	"sort"

	"github.com/legalops/caseload/types"
)

// LoadReader is the slice of the assignment store the calculator needs.
type LoadReader interface {
	LoadOf(workerID string) types.WeightedLoad
	LoadSnapshot() map[string]types.WeightedLoad
}

// Calculator joins store load counters with directory capacity records.
type Calculator struct {
	loads     LoadReader
	directory types.WorkerDirectory
}

// New creates a Calculator over the given load reader and worker directory.
func New(loads LoadReader, directory types.WorkerDirectory) *Calculator {
	return &Calculator{loads: loads, directory: directory}
}

// WorkloadOf returns the worker's weighted load with capacity headroom.
//
// CapacityRemaining is MaxLoad minus the weighted load; it goes negative when
// overflow assignments pushed the worker past its ceiling. Returns
// ErrWorkerNotFound when the directory has no record for the worker.
func (c *Calculator) WorkloadOf(ctx context.Context, workerID string) (types.WeightedLoad, error) {
	w, err := c.directory.Worker(ctx, workerID)
	if err != nil {
		return types.WeightedLoad{}, fmt.Errorf("workload of %s: %w", workerID, err)
	}
	return c.withCapacity(w, c.loads.LoadOf(workerID)), nil
}

// TeamWorkload returns one entry per directory worker, built from a single
// point-in-time load snapshot so concurrent mutations cannot skew relative
// ordering within the result. Workers with no assignments appear with zero
// load. Sorted by ascending weighted load, ties broken by worker ID.
func (c *Calculator) TeamWorkload(ctx context.Context) ([]types.WeightedLoad, error) {
	workers, err := c.directory.ListWorkers(ctx)
	if err != nil {
		return nil, fmt.Errorf("team workload: %w", err)
	}

	snap := c.loads.LoadSnapshot()
	out := make([]types.WeightedLoad, 0, len(workers))
	for _, w := range workers {
		out = append(out, c.withCapacity(w, snap[w.ID]))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].WeightedLoad != out[j].WeightedLoad {
			return out[i].WeightedLoad < out[j].WeightedLoad
		}
		return out[i].WorkerID < out[j].WorkerID
	})
	return out, nil
}

// IsOverloaded reports whether the worker's weighted load has reached its
// MaxLoad ceiling. A MaxLoad of zero means no ceiling.
func (c *Calculator) IsOverloaded(w types.Worker) bool {
	return w.AtCapacity(c.loads.LoadOf(w.ID).WeightedLoad)
}

func (c *Calculator) withCapacity(w types.Worker, wl types.WeightedLoad) types.WeightedLoad {
	wl.WorkerID = w.ID
	if w.MaxLoad > 0 {
		wl.CapacityRemaining = w.MaxLoad - wl.WeightedLoad
	}
	return wl
}
