package splitmerge

import "context"

// A Dataset is an ordered, finite sequence of Records sharing one Schema.
// Datasets are supplied by a data source layer (files, memory, a workspace)
// and are only ever read through a full, ordered scan.
type Dataset interface {
	Name() string                                              // Name returns the name or handle of this Dataset
	Schema() Schema                                            // Schema returns the Schema shared by every Record in this Dataset
	Count() (int, error)                                       // Count returns the total number of Records in this Dataset
	Scan(ctx context.Context, fn func(rec Record) error) error // Scan visits every Record in order. Records passed to fn must not be retained; Clone them instead.
}

// An OutputDataset is an addressable, creatable sink for Records.
type OutputDataset interface {
	Name() string                               // Name returns the name or handle of this OutputDataset
	Create(schema Schema) (RecordWriter, error) // Create begins writing Records with the given Schema. It may only be called once.
}

// A RecordWriter appends Records to a dataset which is being created.
// Nothing written becomes visible until Commit succeeds, and Abort discards
// everything, so a half-written dataset is never exposed.
type RecordWriter interface {
	Write(rec Record) error // Write appends a Record, which must conform to the Schema the writer was created with
	Commit() error          // Commit finalizes the dataset
	Abort() error           // Abort discards the dataset
}
