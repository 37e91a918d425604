// Package runner applies a UserTransform to every Partition of a Dataset, sequentially or on a bounded pool of workers
package runner

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	multierror "github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/go-sif/splitmerge"
	"github.com/go-sif/splitmerge/errors"
	"github.com/go-sif/splitmerge/internal/util"
	"github.com/go-sif/splitmerge/logging"
	"github.com/go-sif/splitmerge/partition"
)

// DefaultOutputPrefix is the dataset name prefix of transformed partitions
const DefaultOutputPrefix = "processed_split_"

// An Observer is notified as each Partition is processed. In Pooled mode it is called from many goroutines at once.
type Observer interface {
	PartitionStarted(id int)
	PartitionFinished(id int, numRecords int, err error) // numRecords counts the Records produced
}

// observers notifies several Observers in turn
type observers []Observer

// Observers combines several Observers into one. nil Observers are skipped.
func Observers(obs ...Observer) Observer {
	res := make(observers, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			res = append(res, o)
		}
	}
	return res
}

func (o observers) PartitionStarted(id int) {
	for _, obs := range o {
		obs.PartitionStarted(id)
	}
}

func (o observers) PartitionFinished(id int, numRecords int, err error) {
	for _, obs := range o {
		obs.PartitionFinished(id, numRecords, err)
	}
}

// Conf configures a Runner
type Conf struct {
	Mode         splitmerge.ConcurrencyMode // Mode defaults to Sequential
	MaxWorkers   int                        // MaxWorkers bounds the pool in Pooled mode
	OutputPrefix string                     // OutputPrefix of transformed partition names. Defaults to DefaultOutputPrefix.
	Observer     Observer                   // Observer is optional
	Logger       log.FieldLogger            // Logger defaults to the standard logger
}

// Runner applies a UserTransform to Partitions, writing each result into the Workspace
type Runner struct {
	ws     splitmerge.Workspace
	conf   *Conf
	logger log.FieldLogger
}

// CreateRunner is a factory for Runners
func CreateRunner(ws splitmerge.Workspace, conf *Conf) (*Runner, error) {
	if ws == nil {
		return nil, errors.ConfigurationError{Param: "workspace", Reason: "a workspace is required"}
	}
	if conf == nil {
		conf = &Conf{}
	}
	if conf.Mode == "" {
		conf.Mode = splitmerge.Sequential
	}
	switch conf.Mode {
	case splitmerge.Sequential:
	case splitmerge.Pooled:
		if conf.MaxWorkers <= 0 {
			return nil, errors.ConfigurationError{Param: "maxWorkers", Reason: fmt.Sprintf("must be a positive integer, was %d", conf.MaxWorkers)}
		}
	default:
		return nil, errors.ConfigurationError{Param: "concurrencyMode", Reason: fmt.Sprintf("unknown mode %q", conf.Mode)}
	}
	if conf.OutputPrefix == "" {
		conf.OutputPrefix = DefaultOutputPrefix
	}
	return &Runner{
		ws:     ws,
		conf:   conf,
		logger: logging.OrDefault(conf.Logger).WithField("workspace", ws.ID()),
	}, nil
}

// Run applies fn to every Partition. It returns the transformed Partitions, indexed like partitions
// (nil where nothing was produced), and a *multierror.Error of PartitionTaskErrors, one per failed
// Partition in ascending id order. Once a Partition fails, or ctx is cancelled, no further Partitions
// are started, but running ones are allowed to finish.
func (r *Runner) Run(ctx context.Context, partitions []splitmerge.Partition, fn splitmerge.UserTransform) ([]splitmerge.Partition, error) {
	if fn == nil {
		return nil, errors.ConfigurationError{Param: "transform", Reason: "a transform is required"}
	}
	seen := make(map[int]bool, len(partitions))
	for i, p := range partitions {
		if p == nil {
			return nil, errors.ConfigurationError{Param: "partitions", Reason: fmt.Sprintf("partition %d is nil", i)}
		}
		if seen[p.ID()] {
			return nil, errors.ConfigurationError{Param: "partitions", Reason: fmt.Sprintf("partition id %d appears more than once", p.ID())}
		}
		seen[p.ID()] = true
	}
	safeFn := util.SafeTransform(fn)
	results := make([]splitmerge.Partition, len(partitions))
	errs := make([]error, len(partitions))
	var cancelled error
	if r.conf.Mode == splitmerge.Pooled {
		cancelled = r.runPooled(ctx, partitions, safeFn, results, errs)
	} else {
		cancelled = r.runSequential(ctx, partitions, safeFn, results, errs)
	}
	return results, r.aggregate(errs, cancelled)
}

func (r *Runner) runSequential(ctx context.Context, partitions []splitmerge.Partition, fn splitmerge.UserTransform, results []splitmerge.Partition, errs []error) error {
	for i, p := range partitions {
		if err := ctx.Err(); err != nil {
			return err
		}
		results[i], errs[i] = r.runPartition(ctx, p, fn)
		if errs[i] != nil {
			return nil
		}
	}
	return nil
}

func (r *Runner) runPooled(ctx context.Context, partitions []splitmerge.Partition, fn splitmerge.UserTransform, results []splitmerge.Partition, errs []error) error {
	numWorkers := r.conf.MaxWorkers
	if len(partitions) < numWorkers {
		numWorkers = len(partitions)
	}
	if numWorkers == 0 {
		return nil
	}
	r.logger.Debugf("Running %d partitions on %d workers", len(partitions), numWorkers)
	sem := semaphore.NewWeighted(int64(numWorkers))
	var wg sync.WaitGroup
	var failed int32
	var cancelled error
	for i, p := range partitions {
		if atomic.LoadInt32(&failed) > 0 {
			break
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			cancelled = err
			break
		}
		// a sibling may have failed while we waited for a worker
		if atomic.LoadInt32(&failed) > 0 {
			sem.Release(1)
			break
		}
		if err := ctx.Err(); err != nil {
			sem.Release(1)
			cancelled = err
			break
		}
		wg.Add(1)
		go func(i int, p splitmerge.Partition) {
			defer wg.Done()
			defer sem.Release(1)
			results[i], errs[i] = r.runPartition(ctx, p, fn)
			if errs[i] != nil {
				atomic.StoreInt32(&failed, 1)
			}
		}(i, p)
	}
	wg.Wait()
	return cancelled
}

// runPartition transforms a single Partition into the Workspace
func (r *Runner) runPartition(ctx context.Context, p splitmerge.Partition, fn splitmerge.UserTransform) (splitmerge.Partition, error) {
	logger := r.logger.WithField("partition", p.ID())
	if r.conf.Observer != nil {
		r.conf.Observer.PartitionStarted(p.ID())
	}
	result, err := r.transform(ctx, p, fn, logger)
	numRecords := 0
	if result != nil {
		numRecords = result.NumRecords()
	}
	if r.conf.Observer != nil {
		r.conf.Observer.PartitionFinished(p.ID(), numRecords, err)
	}
	if err != nil {
		logger.WithError(err).Warn("Partition failed")
		return nil, errors.PartitionTaskError{PartitionID: p.ID(), Err: err}
	}
	logger.Debugf("Transformed %d records into %d", p.NumRecords(), numRecords)
	return result, nil
}

func (r *Runner) transform(ctx context.Context, p splitmerge.Partition, fn splitmerge.UserTransform, logger log.FieldLogger) (splitmerge.Partition, error) {
	out := &workspaceOutput{
		ws:     r.ws,
		name:   util.PartitionDatasetName(r.conf.OutputPrefix, p.ID()),
		logger: logger,
	}
	if err := fn(ctx, p, out); err != nil {
		out.abort()
		return nil, err
	}
	if err := out.finalize(p.Schema()); err != nil {
		out.abort()
		return nil, err
	}
	ds, err := r.ws.OpenDataset(out.name)
	if err != nil {
		out.abort()
		return nil, err
	}
	return partition.Wrap(ds, p.ID())
}

func (r *Runner) aggregate(errs []error, cancelled error) error {
	failures := make([]errors.PartitionTaskError, 0)
	for _, err := range errs {
		if taskErr, ok := err.(errors.PartitionTaskError); ok {
			failures = append(failures, taskErr)
		}
	}
	sort.Slice(failures, func(i, j int) bool {
		return failures[i].PartitionID < failures[j].PartitionID
	})
	var merr *multierror.Error
	for _, f := range failures {
		merr = multierror.Append(merr, f)
	}
	if cancelled != nil {
		merr = multierror.Append(merr, cancelled)
	}
	if merr != nil {
		merr.ErrorFormat = FormatErrors
	}
	return merr.ErrorOrNil()
}

// FormatErrors formats the failures of a run for logging
func FormatErrors(errs []error) string {
	return fmt.Sprintf("%d partition task(s) failed:\n%s", len(errs), util.FormatMultiError(errs))
}
