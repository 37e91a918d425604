package transform

import (
	"github.com/go-sif/splitmerge"
	"github.com/go-sif/splitmerge/internal/partition"
	iutil "github.com/go-sif/splitmerge/internal/util"
)

// FlatMap transforms a Record, potentially producing new Records. Pipelines using it must not require count preservation.
func FlatMap(fn splitmerge.FlatMapOperation) *Step {
	safeFn := iutil.SafeFlatMapOperation(fn)
	return &Step{
		Do: func(in splitmerge.Partition, schema splitmerge.Schema) (*StepResult, error) {
			newRecord := func() splitmerge.Record {
				return partition.CreateRecord(schema)
			}
			return &StepResult{
				Task: func(rec splitmerge.Record) ([]splitmerge.Record, error) {
					return safeFn(rec, newRecord)
				},
				Schema: schema,
			}, nil
		},
	}
}
