package transform

import (
	"github.com/go-sif/splitmerge"
	"github.com/go-sif/splitmerge/internal/partition"
)

// WithColumn appends a new (nil) column with a specific type and name,
// to be filled in by a later Step
func WithColumn(colName string, colType splitmerge.ColumnType) *Step {
	return &Step{
		Do: func(in splitmerge.Partition, schema splitmerge.Schema) (*StepResult, error) {
			newSchema, err := schema.Clone().CreateColumn(colName, colType)
			if err != nil {
				return nil, err
			}
			return &StepResult{
				Task: func(rec splitmerge.Record) ([]splitmerge.Record, error) {
					next, err := partition.CreateRecordFromValues(newSchema, append(rec.Values(), nil))
					if err != nil {
						return nil, err
					}
					return []splitmerge.Record{next}, nil
				},
				Schema: newSchema,
			}, nil
		},
	}
}
