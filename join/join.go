// Package join performs a one-to-one, left-outer join of every Partition against a shared target Dataset
package join

import (
	"context"
	"sort"
	"time"

	multierror "github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"

	"github.com/go-sif/splitmerge"
	"github.com/go-sif/splitmerge/accumulators"
	errors "github.com/go-sif/splitmerge/errors"
	"github.com/go-sif/splitmerge/internal/partition"
	"github.com/go-sif/splitmerge/logging"
	"github.com/go-sif/splitmerge/merge"
	"github.com/go-sif/splitmerge/runner"
)

// DefaultOutputPrefix is the dataset name prefix of joined partitions
const DefaultOutputPrefix = "joined_split_"

// Conf configures a Dispatcher
type Conf struct {
	Mode         splitmerge.ConcurrencyMode // Mode defaults to Sequential
	MaxWorkers   int                        // MaxWorkers bounds the pool in Pooled mode
	OutputPrefix string                     // OutputPrefix of joined partition names. Defaults to DefaultOutputPrefix.
	MergePartial bool                       // MergePartial merges the partitions which succeeded, even if others failed
	Observer     runner.Observer            // Observer is optional
	Logger       log.FieldLogger            // Logger defaults to the standard logger
}

// Result describes a dispatched join
type Result struct {
	Summary       *accumulators.JoinSummary // Summary accounts for every Partition whose joined output was kept
	Merged        bool                      // Merged is true iff the joined Partitions were committed to the output
	OutputRecords int                       // OutputRecords counts the Records committed to the output
}

// Dispatcher joins Partitions against a target Dataset, merging the results into one output
type Dispatcher struct {
	ws     splitmerge.Workspace
	conf   *Conf
	runner *runner.Runner
	logger log.FieldLogger
}

// CreateDispatcher is a factory for Dispatchers
func CreateDispatcher(ws splitmerge.Workspace, conf *Conf) (*Dispatcher, error) {
	if conf == nil {
		conf = &Conf{}
	}
	if conf.OutputPrefix == "" {
		conf.OutputPrefix = DefaultOutputPrefix
	}
	logger := logging.OrDefault(conf.Logger)
	r, err := runner.CreateRunner(ws, &runner.Conf{
		Mode:         conf.Mode,
		MaxWorkers:   conf.MaxWorkers,
		OutputPrefix: conf.OutputPrefix,
		Observer:     conf.Observer,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}
	return &Dispatcher{ws: ws, conf: conf, runner: r, logger: logger}, nil
}

// DispatchJoin joins every Partition against target, matching leftKey to rightKey, and merges the
// joined Partitions into output in ascending id order. Every left Record appears in the output exactly
// once; unmatched Records have nil target columns. The Result's JoinSummary accounts for every
// Partition which completed. If any Partition fails, the aggregate error is returned and nothing is
// written to output, unless MergePartial is set, in which case the completed Partitions are merged
// and the error is returned alongside the partial Result. The Result is nil only if the join could
// not start.
func (d *Dispatcher) DispatchJoin(ctx context.Context, partitions []splitmerge.Partition, target splitmerge.Dataset, leftKey string, rightKey string, output splitmerge.OutputDataset) (*Result, error) {
	start := time.Now()
	if len(partitions) == 0 {
		return nil, errors.ConfigurationError{Param: "partitions", Reason: "there are no partitions to join"}
	}
	if target == nil {
		return nil, errors.ConfigurationError{Param: "target", Reason: "a join target is required"}
	}
	leftSchema := partitions[0].Schema()
	leftCol, err := leftSchema.GetColumn(leftKey)
	if err != nil {
		return nil, errors.MissingColumnError{Name: leftKey}
	}
	index, err := BuildIndex(ctx, target, rightKey)
	if err != nil {
		return nil, err
	}
	d.logger.Debugf("Indexed %d keys from %d target records", index.NumKeys(), index.NumRecords())
	joinedSchema, err := JoinSchema(leftSchema, target.Schema(), rightKey)
	if err != nil {
		return nil, err
	}

	slots := make(map[int]int, len(partitions))
	for i, p := range partitions {
		if p != nil {
			slots[p.ID()] = i
		}
	}
	summaries := make([]*accumulators.JoinSummary, len(partitions))
	fn := func(ctx context.Context, in splitmerge.Partition, out splitmerge.OutputDataset) error {
		if err := leftSchema.Equals(in.Schema()); err != nil {
			return errors.SchemaMismatchError{PartitionID: in.ID(), Err: err}
		}
		summary, err := joinPartition(ctx, in, out, index, leftCol.Index(), joinedSchema)
		if err != nil {
			return err
		}
		summaries[slots[in.ID()]] = summary
		return nil
	}
	joined, runErr := d.runner.Run(ctx, partitions, fn)
	// a partition may finish joining but still fail in the runner, losing its output
	for i := range summaries {
		if i >= len(joined) || joined[i] == nil {
			summaries[i] = nil
		}
	}
	res := &Result{Summary: combine(summaries)}
	summary := res.Summary
	if runErr != nil && !d.conf.MergePartial {
		d.logger.WithError(runErr).Error("Join failed, nothing was merged")
		return res, runErr
	}

	merger := merge.CreateMerger(&merge.Conf{
		ExpectedPartitions: len(partitions),
		CheckRecordCount:   true,
		ExpectedRecords:    summary.TotalInput,
		AllowPartial:       runErr != nil,
		Logger:             d.logger,
	})
	written, err := merger.Merge(ctx, joined, output)
	if err != nil {
		d.logger.WithError(err).Errorf("Unable to merge joined partitions into %s", output.Name())
		if runErr != nil {
			return res, multierror.Append(runErr, err)
		}
		return res, err
	}
	res.Merged = true
	res.OutputRecords = written
	d.logger.Infof("Joined %d of %d records (%.2f%%) in %s", summary.TotalMatched, summary.TotalInput, summary.MatchPercentage(), time.Since(start))
	return res, runErr
}

// joinPartition writes one joined Record for every Record in a Partition
func joinPartition(ctx context.Context, in splitmerge.Partition, out splitmerge.OutputDataset, index *Index, keyIdx int, joinedSchema splitmerge.Schema) (*accumulators.JoinSummary, error) {
	summary := accumulators.CreateJoinSummary(in.ID())
	w, err := out.Create(joinedSchema)
	if err != nil {
		return nil, err
	}
	empty := make([]interface{}, index.NumColumns())
	err = in.Scan(ctx, func(rec splitmerge.Record) error {
		values := rec.Values()
		right := empty
		key := values[keyIdx]
		if key == nil {
			summary.Unmatched("", true)
		} else {
			canonical := CanonicalKey(key)
			if row, ok := index.Lookup(canonical); ok {
				right = row
				summary.Matched()
			} else {
				summary.Unmatched(canonical, false)
			}
		}
		joined, err := partition.CreateRecordFromValues(joinedSchema, append(values, right...))
		if err != nil {
			return err
		}
		return w.Write(joined)
	})
	if err != nil {
		w.Abort()
		return nil, err
	}
	if err := w.Commit(); err != nil {
		return nil, err
	}
	return summary, nil
}

// combine merges the summaries of completed Partitions in ascending partition id order
func combine(summaries []*accumulators.JoinSummary) *accumulators.JoinSummary {
	completed := make([]*accumulators.JoinSummary, 0, len(summaries))
	for _, s := range summaries {
		if s != nil {
			completed = append(completed, s)
		}
	}
	sort.Slice(completed, func(i, j int) bool {
		return completed[i].PartitionIDs[0] < completed[j].PartitionIDs[0]
	})
	result := &accumulators.JoinSummary{
		PartitionIDs:  make([]int, 0, len(completed)),
		UnmatchedKeys: make([]string, 0),
	}
	for _, s := range completed {
		// both sides are JoinSummaries, so Merge cannot fail
		result.Merge(s)
	}
	return result
}
