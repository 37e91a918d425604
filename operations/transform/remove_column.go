package transform

import (
	"github.com/go-sif/splitmerge"
	errors "github.com/go-sif/splitmerge/errors"
	"github.com/go-sif/splitmerge/internal/partition"
)

// RemoveColumn removes existing columns
func RemoveColumn(colNames ...string) *Step {
	return &Step{
		Do: func(in splitmerge.Partition, schema splitmerge.Schema) (*StepResult, error) {
			newSchema := schema.Clone()
			for _, colName := range colNames {
				if _, ok := newSchema.RemoveColumn(colName); !ok {
					return nil, errors.MissingColumnError{Name: colName}
				}
			}
			kept := make([]int, 0, newSchema.NumColumns())
			for _, name := range newSchema.ColumnNames() {
				col, err := schema.GetColumn(name)
				if err != nil {
					return nil, err
				}
				kept = append(kept, col.Index())
			}
			return &StepResult{
				Task: func(rec splitmerge.Record) ([]splitmerge.Record, error) {
					values := rec.Values()
					projected := make([]interface{}, len(kept))
					for i, idx := range kept {
						projected[i] = values[idx]
					}
					next, err := partition.CreateRecordFromValues(newSchema, projected)
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
