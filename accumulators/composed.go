package accumulators

import (
	"fmt"

	"github.com/go-sif/splitmerge"
)

// Compose returns a factory for Composed Accumulators
func Compose(faccs ...splitmerge.AccumulatorFactory) splitmerge.AccumulatorFactory {
	return func() splitmerge.RecordAccumulator {
		accs := make([]splitmerge.RecordAccumulator, len(faccs))
		for i, f := range faccs {
			accs[i] = f()
		}
		return &Composed{accs: accs}
	}
}

// Composed composes other Accumulators
type Composed struct {
	accs []splitmerge.RecordAccumulator
}

// GetResults returns the contained Accumulators, so that their results may be accessed
func (c *Composed) GetResults() []splitmerge.RecordAccumulator {
	return c.accs
}

// Accumulate adds a Record to all contained Accumulators
func (c *Composed) Accumulate(rec splitmerge.Record) error {
	for _, a := range c.accs {
		if err := a.Accumulate(rec); err != nil {
			return err
		}
	}
	return nil
}

// Merge merges another Composed Accumulator into this one, merging all contained Accumulators
func (c *Composed) Merge(o splitmerge.Accumulator) error {
	compa, ok := o.(*Composed)
	if !ok {
		return fmt.Errorf("Incoming accumulator is not a Composed Accumulator")
	}
	if len(compa.accs) != len(c.accs) {
		return fmt.Errorf("Incoming Composed Accumulator holds %d accumulators, expected %d", len(compa.accs), len(c.accs))
	}
	for i, a := range c.accs {
		if err := a.Merge(compa.accs[i]); err != nil {
			return err
		}
	}
	return nil
}
