package util

import (
	"context"
	"fmt"

	"github.com/go-sif/splitmerge"
)

// SafeTransform wraps a UserTransform such that panics are recovered and nice error messages are constructed
func SafeTransform(fn splitmerge.UserTransform) (safeFn splitmerge.UserTransform) {
	return func(ctx context.Context, in splitmerge.Partition, out splitmerge.OutputDataset) (err error) {
		defer func() {
			if r := recover(); r != nil {
				if anErr, ok := r.(error); ok {
					err = fmt.Errorf("Transform Panic: %w\nPartition: %s\n%s", anErr, in.Name(), GetTrace())
				} else {
					err = fmt.Errorf("Transform Panic: %v\nPartition: %s\n%s", r, in.Name(), GetTrace())
				}
			}
		}()
		err = fn(ctx, in, out)
		return
	}
}

// SafeMapOperation wraps a MapOperation such that panics are recovered and nice error messages are constructed
func SafeMapOperation(mapOp splitmerge.MapOperation) (safeMapOp splitmerge.MapOperation) {
	return func(rec splitmerge.Record) (err error) {
		defer func() {
			if r := recover(); r != nil {
				if anErr, ok := r.(error); ok {
					err = fmt.Errorf("Map Panic: %w\nRecord: %s\n%s", anErr, rec.ToString(), GetTrace())
				} else {
					err = fmt.Errorf("Map Panic: %v\nRecord: %s\n%s", r, rec.ToString(), GetTrace())
				}
			} else if err != nil {
				err = fmt.Errorf("Map Error: %w\nRecord: %s", err, rec.ToString())
			}
		}()
		err = mapOp(rec)
		return
	}
}

// SafeFilterOperation wraps a FilterOperation such that panics are recovered and nice error messages are constructed
func SafeFilterOperation(filterOp splitmerge.FilterOperation) (safeFilterOp splitmerge.FilterOperation) {
	return func(rec splitmerge.Record) (keep bool, err error) {
		defer func() {
			if r := recover(); r != nil {
				if anErr, ok := r.(error); ok {
					err = fmt.Errorf("Filter Panic: %w\nRecord: %s\n%s", anErr, rec.ToString(), GetTrace())
				} else {
					err = fmt.Errorf("Filter Panic: %v\nRecord: %s\n%s", r, rec.ToString(), GetTrace())
				}
			} else if err != nil {
				err = fmt.Errorf("Filter Error: %w\nRecord: %s", err, rec.ToString())
			}
		}()
		keep, err = filterOp(rec)
		return
	}
}

// SafeFlatMapOperation wraps a FlatMapOperation such that panics are recovered and nice error messages are constructed
func SafeFlatMapOperation(flatMapOp splitmerge.FlatMapOperation) (safeFlatMapOp splitmerge.FlatMapOperation) {
	return func(rec splitmerge.Record, newRecord splitmerge.RecordFactory) (recs []splitmerge.Record, err error) {
		defer func() {
			if r := recover(); r != nil {
				if anErr, ok := r.(error); ok {
					err = fmt.Errorf("FlatMap Panic: %w\nRecord: %s\n%s", anErr, rec.ToString(), GetTrace())
				} else {
					err = fmt.Errorf("FlatMap Panic: %v\nRecord: %s\n%s", r, rec.ToString(), GetTrace())
				}
			} else if err != nil {
				err = fmt.Errorf("FlatMap Error: %w\nRecord: %s", err, rec.ToString())
			}
		}()
		recs, err = flatMapOp(rec, newRecord)
		return
	}
}
