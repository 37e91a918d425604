package splitmerge

// An Accumulator siphons results from individual Partitions into a custom data
// structure. Each worker fills its own Accumulator; they are merged into a single
// result after every Partition has completed, so no Accumulator is ever shared
// between workers.
type Accumulator interface {
	Merge(o Accumulator) error // Merge merges another Accumulator into this one
}

// A RecordAccumulator is an Accumulator which is fed Records one at a time
type RecordAccumulator interface {
	Accumulator
	Accumulate(rec Record) error // Accumulate adds a Record to this Accumulator
}

// AccumulatorFactory produces a fresh, empty RecordAccumulator for each Partition
type AccumulatorFactory func() RecordAccumulator
