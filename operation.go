package splitmerge

import "context"

// UserTransform is a caller-supplied transformation applied to exactly one Partition.
// It reads from in and writes its results to out, creating out with whatever Schema
// it produces. Every invocation for the same pipeline run must produce the same Schema.
// Invocations for distinct Partitions may run concurrently and must not share mutable state.
type UserTransform func(ctx context.Context, in Partition, out OutputDataset) error

// MapOperation - A generic function for manipulating Records in-place
type MapOperation func(rec Record) error

// FilterOperation - A generic function for determining whether or not a Record should be retained
type FilterOperation func(rec Record) (bool, error)

// RecordFactory produces a new, empty Record with the current Schema
type RecordFactory func() Record

// FlatMapOperation - A generic function for turning a Record into zero or more Records
type FlatMapOperation func(rec Record, newRecord RecordFactory) ([]Record, error)

// ConcurrencyMode describes how partitions are scheduled
type ConcurrencyMode string

const (
	// Sequential runs partitions one at a time, in partition id order, on the calling goroutine
	Sequential ConcurrencyMode = "sequential"
	// Pooled runs partitions on a bounded pool of workers
	Pooled ConcurrencyMode = "pooled"
)
