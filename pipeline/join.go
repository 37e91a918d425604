package pipeline

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/go-sif/splitmerge"
	"github.com/go-sif/splitmerge/accumulators"
	"github.com/go-sif/splitmerge/config"
	"github.com/go-sif/splitmerge/errors"
	"github.com/go-sif/splitmerge/internal/stats"
	"github.com/go-sif/splitmerge/join"
	"github.com/go-sif/splitmerge/partition"
	"github.com/go-sif/splitmerge/runner"
)

// JoinResult describes a completed join run
type JoinResult struct {
	Result
	Summary *accumulators.JoinSummary // Summary accounts for the matches made by every completed partition
}

// JoinPipeline joins every partition of a Dataset against a shared target Dataset
type JoinPipeline struct {
	target    splitmerge.Dataset
	leftKey   string
	rightKey  string
	conf      *config.Conf
	unmatched splitmerge.OutputDataset
	observer  runner.Observer
	logger    log.FieldLogger
}

// CreateJoin validates conf and returns a JoinPipeline which matches leftKey in its input to rightKey in target.
// A nil conf uses config.DefaultConf().
func CreateJoin(target splitmerge.Dataset, leftKey string, rightKey string, conf *config.Conf) (*JoinPipeline, error) {
	if target == nil {
		return nil, errors.ConfigurationError{Param: "target", Reason: "a join target is required"}
	}
	if leftKey == "" || rightKey == "" {
		return nil, errors.ConfigurationError{Param: "joinKey", Reason: "both join keys are required"}
	}
	if !target.Schema().HasColumn(rightKey) {
		return nil, errors.MissingColumnError{Name: rightKey}
	}
	if conf == nil {
		conf = config.DefaultConf()
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &JoinPipeline{
		target:   target,
		leftKey:  leftKey,
		rightKey: rightKey,
		conf:     conf,
		logger:   conf.GetLogger(),
	}, nil
}

// SetUnmatchedOutput requests that the keys of unmatched left Records be written to out,
// as a single column named after the right key
func (p *JoinPipeline) SetUnmatchedOutput(out splitmerge.OutputDataset) {
	p.unmatched = out
}

// SetObserver registers an Observer which is notified as each partition is joined
func (p *JoinPipeline) SetObserver(o runner.Observer) {
	p.observer = o
}

// Run splits input into partitions and joins each one against the target, merging the joined
// partitions into output. The returned JoinResult is non-nil even when Run fails.
func (p *JoinPipeline) Run(ctx context.Context, input splitmerge.Dataset, output splitmerge.OutputDataset) (*JoinResult, error) {
	return p.run(ctx, output, func(ws splitmerge.Workspace, res *Result) ([]splitmerge.Partition, error) {
		return split(ctx, ws, input, p.conf, res)
	})
}

// RunTables joins a fixed working set of Datasets (e.g. every table in a workspace), each treated as
// one partition numbered in the order given, merging the results into output
func (p *JoinPipeline) RunTables(ctx context.Context, tables []splitmerge.Dataset, output splitmerge.OutputDataset) (*JoinResult, error) {
	return p.run(ctx, output, func(ws splitmerge.Workspace, res *Result) ([]splitmerge.Partition, error) {
		parts, err := partition.FromDatasets(tables...)
		if err != nil {
			return nil, err
		}
		res.Bounds = make([]splitmerge.Bounds, len(parts))
		for i, part := range parts {
			res.Bounds[i] = splitmerge.Bounds{ID: part.ID(), Start: res.InputRecords, Count: part.NumRecords()}
			res.InputRecords += part.NumRecords()
		}
		return parts, nil
	})
}

func (p *JoinPipeline) run(ctx context.Context, output splitmerge.OutputDataset, splitFn func(ws splitmerge.Workspace, res *Result) ([]splitmerge.Partition, error)) (*JoinResult, error) {
	rs := stats.CreateRunStatistics()
	rs.Start()
	res := &JoinResult{Result: Result{Stats: rs}}
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
	parts, err := splitFn(ws, &res.Result)
	rs.EndPhase(stats.SplitPhase)
	if err != nil {
		return res, err
	}

	rs.StartPhase(stats.JoinPhase)
	d, err := join.CreateDispatcher(ws, &join.Conf{
		Mode:         p.conf.ConcurrencyMode,
		MaxWorkers:   p.conf.MaxWorkers,
		MergePartial: p.conf.MergePartial,
		Observer:     runner.Observers(rs, p.observer),
		Logger:       logger,
	})
	if err != nil {
		return res, err
	}
	dispatched, err := d.DispatchJoin(ctx, parts, p.target, p.leftKey, p.rightKey, output)
	rs.EndPhase(stats.JoinPhase)
	if dispatched == nil {
		return res, err
	}
	res.Summary = dispatched.Summary
	if dispatched.Merged {
		res.OutputRecords = dispatched.OutputRecords
		if p.unmatched != nil {
			if uerr := join.WriteUnmatched(res.Summary.UnmatchedKeys, p.rightKey, p.unmatched); uerr != nil {
				logger.WithError(uerr).Errorf("Unable to write unmatched keys to %s", p.unmatched.Name())
				if err == nil {
					err = uerr
				}
			} else {
				logger.Infof("Wrote %d unmatched keys to %s", len(res.Summary.UnmatchedKeys), p.unmatched.Name())
			}
		}
	}
	return res, err
}
