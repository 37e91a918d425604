package memory

import (
	"fmt"
	"sync"

	"github.com/go-sif/splitmerge"
	"github.com/go-sif/splitmerge/internal/partition"
)

// Output is an OutputDataset which keeps its Records in memory
type Output struct {
	name      string
	lock      sync.Mutex
	schema    splitmerge.Schema
	records   []splitmerge.Record
	created   bool
	committed bool
}

// CreateOutput is a factory for in-memory OutputDatasets
func CreateOutput(name string) *Output {
	return &Output{name: name}
}

// Name returns the name of this Output
func (o *Output) Name() string {
	return o.name
}

// Create begins writing Records with the given Schema. It may only be called once.
func (o *Output) Create(schema splitmerge.Schema) (splitmerge.RecordWriter, error) {
	o.lock.Lock()
	defer o.lock.Unlock()
	if o.created {
		return nil, fmt.Errorf("Output %s has already been created", o.name)
	}
	o.created = true
	return partition.CreateBufferWriter(schema, nil, func(records []splitmerge.Record) error {
		o.lock.Lock()
		defer o.lock.Unlock()
		o.schema = schema
		o.records = records
		o.committed = true
		return nil
	}, nil), nil
}

// IsCreated returns true iff Create has been called
func (o *Output) IsCreated() bool {
	o.lock.Lock()
	defer o.lock.Unlock()
	return o.created
}

// IsCommitted returns true iff the Records written to this Output have been committed
func (o *Output) IsCommitted() bool {
	o.lock.Lock()
	defer o.lock.Unlock()
	return o.committed
}

// Schema returns the Schema of the committed Records, or nil
func (o *Output) Schema() splitmerge.Schema {
	o.lock.Lock()
	defer o.lock.Unlock()
	return o.schema
}

// Records returns the committed Records, or nil if nothing has been committed
func (o *Output) Records() []splitmerge.Record {
	o.lock.Lock()
	defer o.lock.Unlock()
	return o.records
}

// Dataset presents the committed Records as a Dataset
func (o *Output) Dataset() (splitmerge.Dataset, error) {
	o.lock.Lock()
	defer o.lock.Unlock()
	if !o.committed {
		return nil, fmt.Errorf("Output %s has not been committed", o.name)
	}
	return partition.CreateBuffer(0, o.name, o.schema, o.records), nil
}
