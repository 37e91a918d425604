// Package pipeline splits a Dataset into partitions, transforms or joins each one
// independently, and merges the results into a single output
package pipeline

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/go-sif/splitmerge"
	"github.com/go-sif/splitmerge/config"
	"github.com/go-sif/splitmerge/errors"
	"github.com/go-sif/splitmerge/internal/stats"
	"github.com/go-sif/splitmerge/merge"
	"github.com/go-sif/splitmerge/partition"
	"github.com/go-sif/splitmerge/runner"
)

// Result describes a completed pipeline run
type Result struct {
	WorkspaceID   string                       // WorkspaceID identifies the scratch workspace used by the run
	Bounds        []splitmerge.Bounds          // Bounds of every partition, in id order
	InputRecords  int                          // InputRecords counts the Records of the input
	OutputRecords int                          // OutputRecords counts the Records written to the output
	Elapsed       time.Duration                // Elapsed is the total running time
	Stats         splitmerge.RuntimeStatistics // Stats holds per-phase and per-partition statistics
}

// Pipeline applies a UserTransform to every partition of a Dataset
type Pipeline struct {
	fn       splitmerge.UserTransform
	conf     *config.Conf
	observer runner.Observer
	logger   log.FieldLogger
}

// Create validates conf and returns a Pipeline which will apply fn. A nil conf uses config.DefaultConf().
func Create(fn splitmerge.UserTransform, conf *config.Conf) (*Pipeline, error) {
	if fn == nil {
		return nil, errors.ConfigurationError{Param: "transform", Reason: "a transform is required"}
	}
	if conf == nil {
		conf = config.DefaultConf()
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{fn: fn, conf: conf, logger: conf.GetLogger()}, nil
}

// SetObserver registers an Observer which is notified as each partition is transformed
func (p *Pipeline) SetObserver(o runner.Observer) {
	p.observer = o
}

// Run splits input, transforms every partition and merges the transformed partitions into output.
// output is only written if every partition succeeds, and never partially. The returned Result is
// non-nil even when Run fails, so that statistics for the failed run may be inspected.
func (p *Pipeline) Run(ctx context.Context, input splitmerge.Dataset, output splitmerge.OutputDataset) (*Result, error) {
	rs := stats.CreateRunStatistics()
	rs.Start()
	res := &Result{Stats: rs}
	defer func() {
		rs.Finish()
		res.Elapsed = rs.GetRuntime()
		p.logger.Infof("Total time: %s", res.Elapsed)
	}()

	ws, err := CreateWorkspace(p.conf, p.logger)
	if err != nil {
		return res, err
	}
	res.WorkspaceID = ws.ID()
	defer destroyWorkspace(ws, p.conf, p.logger)
	logger := p.logger.WithField("workspace", ws.ID())

	rs.StartPhase(stats.SplitPhase)
	parts, err := split(ctx, ws, input, p.conf, res)
	rs.EndPhase(stats.SplitPhase)
	if err != nil {
		return res, err
	}
	logger.Infof("Split %d records into %d partitions", res.InputRecords, len(parts))

	rs.StartPhase(stats.TransformPhase)
	r, err := runner.CreateRunner(ws, &runner.Conf{
		Mode:       p.conf.ConcurrencyMode,
		MaxWorkers: p.conf.MaxWorkers,
		Observer:   runner.Observers(rs, p.observer),
		Logger:     logger,
	})
	if err != nil {
		return res, err
	}
	transformed, err := r.Run(ctx, parts, p.fn)
	rs.EndPhase(stats.TransformPhase)
	if err != nil {
		logger.WithError(err).Error("Transform failed, nothing was merged")
		return res, err
	}

	rs.StartPhase(stats.MergePhase)
	merger := merge.CreateMerger(&merge.Conf{
		ExpectedPartitions: len(parts),
		CheckRecordCount:   p.conf.PreservesCount,
		ExpectedRecords:    res.InputRecords,
		Logger:             logger,
	})
	res.OutputRecords, err = merger.Merge(ctx, transformed, output)
	rs.EndPhase(stats.MergePhase)
	return res, err
}

// split counts, assigns and materializes the partitions of input
func split(ctx context.Context, ws splitmerge.Workspace, input splitmerge.Dataset, conf *config.Conf, res *Result) ([]splitmerge.Partition, error) {
	if input == nil {
		return nil, errors.ConfigurationError{Param: "input", Reason: "an input dataset is required"}
	}
	total, err := input.Count()
	if err != nil {
		return nil, errors.WorkspaceError{Op: "count", Dataset: input.Name(), Err: err}
	}
	res.InputRecords = total
	bounds, err := partition.Assign(total, conf.PartitionCount)
	if err != nil {
		return nil, err
	}
	res.Bounds = bounds
	store := partition.CreateStore(ws, &partition.StoreConf{
		ExcludeColumns: conf.ExcludeColumns,
		Logger:         conf.GetLogger(),
	})
	return store.Materialize(ctx, input, bounds)
}
