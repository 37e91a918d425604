package transform

import (
	"github.com/go-sif/splitmerge"
	"github.com/go-sif/splitmerge/internal/partition"
)

// RenameColumn renames an existing column, keeping its position
func RenameColumn(oldName string, newName string) *Step {
	return &Step{
		Do: func(in splitmerge.Partition, schema splitmerge.Schema) (*StepResult, error) {
			newSchema, err := schema.Clone().RenameColumn(oldName, newName)
			if err != nil {
				return nil, err
			}
			return &StepResult{
				Task: func(rec splitmerge.Record) ([]splitmerge.Record, error) {
					next, err := partition.CreateRecordFromValues(newSchema, rec.Values())
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
