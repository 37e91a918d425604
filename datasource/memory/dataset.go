// Package memory provides Datasets and OutputDatasets held entirely in memory
package memory

import (
	"fmt"

	"github.com/go-sif/splitmerge"
	"github.com/go-sif/splitmerge/internal/partition"
)

// CreateDataset is a factory for in-memory Datasets. Records are copied and must conform to schema.
func CreateDataset(name string, schema splitmerge.Schema, records []splitmerge.Record) (splitmerge.Dataset, error) {
	copied := make([]splitmerge.Record, len(records))
	for i, rec := range records {
		conformed, err := partition.Conform(schema, rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		copied[i] = conformed
	}
	return partition.CreateBuffer(0, name, schema, copied), nil
}

// CreateDatasetFromValues is a factory for in-memory Datasets, building one Record from each row of values (in column order)
func CreateDatasetFromValues(name string, schema splitmerge.Schema, rows [][]interface{}) (splitmerge.Dataset, error) {
	records := make([]splitmerge.Record, len(rows))
	for i, values := range rows {
		rec, err := partition.CreateRecordFromValues(schema, values)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		records[i] = rec
	}
	return partition.CreateBuffer(0, name, schema, records), nil
}
