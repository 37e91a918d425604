// Package util provides Steps which observe Records without transforming them
package util

import (
	"fmt"
	"sort"
	"sync"

	"github.com/go-sif/splitmerge"
	"github.com/go-sif/splitmerge/operations/transform"
)

// Accumulated holds the Accumulators filled by an Accumulate Step, one per Partition
type Accumulated struct {
	facc splitmerge.AccumulatorFactory
	lock sync.Mutex
	accs map[int]splitmerge.RecordAccumulator
}

// Accumulate feeds every Record to an Accumulator belonging to its Partition, passing
// the Record through unchanged. The Accumulators are combined by Accumulated.Result
// once the run has completed.
func Accumulate(facc splitmerge.AccumulatorFactory) (*transform.Step, *Accumulated) {
	accumulated := &Accumulated{
		facc: facc,
		accs: make(map[int]splitmerge.RecordAccumulator),
	}
	return &transform.Step{
		Do: func(in splitmerge.Partition, schema splitmerge.Schema) (*transform.StepResult, error) {
			acc := accumulated.register(in.ID())
			return &transform.StepResult{
				Task: func(rec splitmerge.Record) ([]splitmerge.Record, error) {
					if err := acc.Accumulate(rec); err != nil {
						return nil, err
					}
					return []splitmerge.Record{rec}, nil
				},
				Schema: schema,
			}, nil
		},
	}, accumulated
}

// register creates a fresh Accumulator for a Partition, replacing any from an earlier run
func (a *Accumulated) register(partitionID int) splitmerge.RecordAccumulator {
	acc := a.facc()
	a.lock.Lock()
	defer a.lock.Unlock()
	a.accs[partitionID] = acc
	return acc
}

// Result merges the Accumulators of every Partition, in ascending partition id order
func (a *Accumulated) Result() (splitmerge.RecordAccumulator, error) {
	a.lock.Lock()
	defer a.lock.Unlock()
	ids := make([]int, 0, len(a.accs))
	for id := range a.accs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	result := a.facc()
	for _, id := range ids {
		if err := result.Merge(a.accs[id]); err != nil {
			return nil, fmt.Errorf("Unable to merge accumulator of partition %d: %w", id, err)
		}
	}
	return result, nil
}
