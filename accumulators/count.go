package accumulators

import (
	"fmt"

	"github.com/go-sif/splitmerge"
)

// Counter returns a new Count Accumulator
func Counter() splitmerge.RecordAccumulator {
	return new(Count)
}

// Count counts records
type Count struct {
	count int64
}

// GetCount returns the record count from this Accumulator
func (a *Count) GetCount() int64 {
	return a.count
}

// Accumulate adds a Record to this Accumulator
func (a *Count) Accumulate(rec splitmerge.Record) error {
	a.count++
	return nil
}

// Merge merges another Accumulator into this one
func (a *Count) Merge(o splitmerge.Accumulator) error {
	ca, ok := o.(*Count)
	if !ok {
		return fmt.Errorf("Incoming accumulator is not a Count Accumulator")
	}
	a.count += ca.count
	return nil
}
