package transform

import (
	"github.com/go-sif/splitmerge"
	iutil "github.com/go-sif/splitmerge/internal/util"
)

// Filter drops Records for which fn returns false. Pipelines using it must not require count preservation.
func Filter(fn splitmerge.FilterOperation) *Step {
	safeFn := iutil.SafeFilterOperation(fn)
	return &Step{
		Do: func(in splitmerge.Partition, schema splitmerge.Schema) (*StepResult, error) {
			return &StepResult{
				Task: func(rec splitmerge.Record) ([]splitmerge.Record, error) {
					keep, err := safeFn(rec)
					if err != nil || !keep {
						return nil, err
					}
					return []splitmerge.Record{rec}, nil
				},
				Schema: schema,
			}, nil
		},
	}
}
