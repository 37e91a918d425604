// Package testing provides Dataset fixtures and helpers for testing pipelines
package testing

import (
	"context"
	"fmt"

	"github.com/go-sif/splitmerge"
	"github.com/go-sif/splitmerge/datasource/memory"
	"github.com/go-sif/splitmerge/internal/partition"
	"github.com/go-sif/splitmerge/schema"
)

// CreateSequenceSchema returns the Schema of sequence datasets: OBJECTID (int64), value (int64) and label (string)
func CreateSequenceSchema() splitmerge.Schema {
	schema := schema.CreateSchema()
	schema.CreateColumn("OBJECTID", &splitmerge.Int64ColumnType{})
	schema.CreateColumn("value", &splitmerge.Int64ColumnType{})
	schema.CreateColumn("label", &splitmerge.VarStringColumnType{})
	return schema
}

// CreateSequenceDataset creates an in-memory Dataset of n Records, where Record i has OBJECTID i, value i and label "record i"
func CreateSequenceDataset(name string, n int) (splitmerge.Dataset, error) {
	rows := make([][]interface{}, n)
	for i := 0; i < n; i++ {
		rows[i] = []interface{}{int64(i), int64(i), fmt.Sprintf("record %d", i)}
	}
	return memory.CreateDatasetFromValues(name, CreateSequenceSchema(), rows)
}

// CreateKeyedDataset creates an in-memory Dataset with a string key column and a string value column.
// A nil key produces a nil key value.
func CreateKeyedDataset(name string, keyColumn string, valueColumn string, keys []interface{}, valueFn func(i int) string) (splitmerge.Dataset, error) {
	schema := schema.CreateSchema()
	schema.CreateColumn(keyColumn, &splitmerge.VarStringColumnType{})
	schema.CreateColumn(valueColumn, &splitmerge.VarStringColumnType{})
	rows := make([][]interface{}, len(keys))
	for i, key := range keys {
		rows[i] = []interface{}{key, valueFn(i)}
	}
	return memory.CreateDatasetFromValues(name, schema, rows)
}

// CollectInt64 scans a Dataset, returning the values of an int64 column in order
func CollectInt64(ctx context.Context, ds splitmerge.Dataset, colName string) ([]int64, error) {
	res := make([]int64, 0)
	err := ds.Scan(ctx, func(rec splitmerge.Record) error {
		v, err := rec.GetInt64(colName)
		if err != nil {
			return err
		}
		res = append(res, v)
		return nil
	})
	return res, err
}

// CollectValues scans a Dataset, returning the values of every Record in order
func CollectValues(ctx context.Context, ds splitmerge.Dataset) ([][]interface{}, error) {
	res := make([][]interface{}, 0)
	err := ds.Scan(ctx, func(rec splitmerge.Record) error {
		res = append(res, rec.Values())
		return nil
	})
	return res, err
}

// generatedDataset is a Dataset whose Records are produced on demand by a function of their ordinal
type generatedDataset struct {
	name   string
	schema splitmerge.Schema
	n      int
	gen    func(i int) []interface{}
}

// CreateGeneratedDataset creates a Dataset of n Records which are produced by gen as they are
// scanned, rather than held in memory
func CreateGeneratedDataset(name string, schema splitmerge.Schema, n int, gen func(i int) []interface{}) splitmerge.Dataset {
	return &generatedDataset{name: name, schema: schema, n: n, gen: gen}
}

func (d *generatedDataset) Name() string {
	return d.name
}

func (d *generatedDataset) Schema() splitmerge.Schema {
	return d.schema
}

func (d *generatedDataset) Count() (int, error) {
	return d.n, nil
}

func (d *generatedDataset) Scan(ctx context.Context, fn func(rec splitmerge.Record) error) error {
	for i := 0; i < d.n; i++ {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		rec, err := partition.CreateRecordFromValues(d.schema, d.gen(i))
		if err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}

// CheckingOutput is an OutputDataset which hands every Record to a check function instead of storing it
type CheckingOutput struct {
	name      string
	check     func(i int, rec splitmerge.Record) error
	written   int
	created   bool
	committed bool
}

// CreateCheckingOutput creates a CheckingOutput. check receives each Record with its ordinal.
func CreateCheckingOutput(name string, check func(i int, rec splitmerge.Record) error) *CheckingOutput {
	return &CheckingOutput{name: name, check: check}
}

// Name returns the name of this CheckingOutput
func (o *CheckingOutput) Name() string {
	return o.name
}

// Create begins checking Records
func (o *CheckingOutput) Create(schema splitmerge.Schema) (splitmerge.RecordWriter, error) {
	if o.created {
		return nil, fmt.Errorf("Output %s has already been created", o.name)
	}
	o.created = true
	return &checkingWriter{o}, nil
}

// NumWritten returns the number of Records written, committed or not
func (o *CheckingOutput) NumWritten() int {
	return o.written
}

// IsCommitted returns true iff the output was committed
func (o *CheckingOutput) IsCommitted() bool {
	return o.committed
}

type checkingWriter struct {
	o *CheckingOutput
}

func (w *checkingWriter) Write(rec splitmerge.Record) error {
	if err := w.o.check(w.o.written, rec); err != nil {
		return err
	}
	w.o.written++
	return nil
}

func (w *checkingWriter) Commit() error {
	w.o.committed = true
	return nil
}

func (w *checkingWriter) Abort() error {
	return nil
}
