package partition

import (
	"context"
	"fmt"

	"github.com/go-sif/splitmerge"
)

// bufferImpl is an in-memory Dataset. Once built it is never modified, so it
// may be scanned by any number of goroutines.
type bufferImpl struct {
	id      int
	name    string
	schema  splitmerge.Schema
	records []splitmerge.Record
}

// CreateBuffer creates an in-memory Partition holding records, which must conform to schema.
// The records are not copied.
func CreateBuffer(id int, name string, schema splitmerge.Schema, records []splitmerge.Record) splitmerge.Partition {
	return &bufferImpl{id: id, name: name, schema: schema, records: records}
}

// ID returns the partition id of this buffer, or 0 if it is not a partition
func (b *bufferImpl) ID() int {
	return b.id
}

// Name returns the name of this buffer
func (b *bufferImpl) Name() string {
	return b.name
}

// Schema returns the Schema of this buffer
func (b *bufferImpl) Schema() splitmerge.Schema {
	return b.schema
}

// Count returns the number of Records in this buffer
func (b *bufferImpl) Count() (int, error) {
	return len(b.records), nil
}

// NumRecords returns the number of Records in this buffer
func (b *bufferImpl) NumRecords() int {
	return len(b.records)
}

// Scan visits every Record in order
func (b *bufferImpl) Scan(ctx context.Context, fn func(rec splitmerge.Record) error) error {
	for i, rec := range b.records {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}

// BufferWriter is a RecordWriter which accumulates Records in memory and hands
// them to a callback on Commit
type BufferWriter struct {
	schema   splitmerge.Schema
	records  []splitmerge.Record
	onWrite  func(rec splitmerge.Record) error
	onCommit func(records []splitmerge.Record) error
	onAbort  func()
	done     bool
}

// CreateBufferWriter creates a BufferWriter. onWrite may be nil, and is called before each Record is stored.
// onAbort may be nil.
func CreateBufferWriter(schema splitmerge.Schema, onWrite func(rec splitmerge.Record) error, onCommit func(records []splitmerge.Record) error, onAbort func()) *BufferWriter {
	return &BufferWriter{
		schema:   schema,
		records:  make([]splitmerge.Record, 0),
		onWrite:  onWrite,
		onCommit: onCommit,
		onAbort:  onAbort,
	}
}

// Write copies a Record into the buffer
func (w *BufferWriter) Write(rec splitmerge.Record) error {
	if w.done {
		return fmt.Errorf("Cannot write to a committed or aborted dataset")
	}
	conformed, err := Conform(w.schema, rec)
	if err != nil {
		return err
	}
	if w.onWrite != nil {
		if err := w.onWrite(conformed); err != nil {
			return err
		}
	}
	w.records = append(w.records, conformed)
	return nil
}

// Commit hands the buffered Records to the commit callback
func (w *BufferWriter) Commit() error {
	if w.done {
		return fmt.Errorf("Dataset has already been committed or aborted")
	}
	w.done = true
	return w.onCommit(w.records)
}

// Abort discards the buffered Records
func (w *BufferWriter) Abort() error {
	if w.done {
		return nil
	}
	w.done = true
	w.records = nil
	if w.onAbort != nil {
		w.onAbort()
	}
	return nil
}
