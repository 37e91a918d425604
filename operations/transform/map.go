package transform

import (
	"github.com/go-sif/splitmerge"
	iutil "github.com/go-sif/splitmerge/internal/util"
)

// Map transforms a Record in-place
func Map(fn splitmerge.MapOperation) *Step {
	safeFn := iutil.SafeMapOperation(fn)
	return &Step{
		Do: func(in splitmerge.Partition, schema splitmerge.Schema) (*StepResult, error) {
			return &StepResult{
				Task: func(rec splitmerge.Record) ([]splitmerge.Record, error) {
					if err := safeFn(rec); err != nil {
						return nil, err
					}
					return []splitmerge.Record{rec}, nil
				},
				Schema: schema,
			}, nil
		},
	}
}
