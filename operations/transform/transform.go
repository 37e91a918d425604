// Package transform builds UserTransforms out of record-at-a-time Steps
package transform

import (
	"context"

	"github.com/go-sif/splitmerge"
)

// A RecordTask turns one Record into zero or more Records with the Step's output Schema
type RecordTask func(rec splitmerge.Record) ([]splitmerge.Record, error)

// A StepResult is the product of preparing a Step for a single Partition
type StepResult struct {
	Task   RecordTask
	Schema splitmerge.Schema // Schema of the Records produced by Task
}

// A Step is one stage of a UserTransform. Do is called once per Partition with the
// Schema produced by the previous Step, so a Step may keep per-Partition state in
// its RecordTask.
type Step struct {
	Do func(in splitmerge.Partition, schema splitmerge.Schema) (*StepResult, error)
}

// Transform chains Steps into a UserTransform. Each input Record is cloned before the
// first Step sees it, so Steps may modify Records in-place.
func Transform(steps ...*Step) splitmerge.UserTransform {
	return func(ctx context.Context, in splitmerge.Partition, out splitmerge.OutputDataset) error {
		schema := in.Schema()
		tasks := make([]RecordTask, len(steps))
		for i, step := range steps {
			res, err := step.Do(in, schema)
			if err != nil {
				return err
			}
			tasks[i] = res.Task
			schema = res.Schema
		}
		w, err := out.Create(schema)
		if err != nil {
			return err
		}
		err = in.Scan(ctx, func(rec splitmerge.Record) error {
			recs := []splitmerge.Record{rec.Clone()}
			for _, task := range tasks {
				next := make([]splitmerge.Record, 0, len(recs))
				for _, r := range recs {
					produced, err := task(r)
					if err != nil {
						return err
					}
					next = append(next, produced...)
				}
				if len(next) == 0 {
					return nil
				}
				recs = next
			}
			for _, r := range recs {
				if err := w.Write(r); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			w.Abort()
			return err
		}
		return w.Commit()
	}
}

// Identity copies every Record of a Partition unchanged
func Identity() splitmerge.UserTransform {
	return Transform()
}
