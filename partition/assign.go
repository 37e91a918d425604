// Package partition splits a Dataset into contiguous, positional Partitions
package partition

import (
	"fmt"
	"sort"

	"github.com/go-sif/splitmerge"
	"github.com/go-sif/splitmerge/errors"
)

// Assign computes the Bounds of n positional partitions over total records. Partitions 1..n-1
// each hold total/n records, and partition n holds the remainder. When total < n, every
// partition but the last is empty.
func Assign(total int, n int) ([]splitmerge.Bounds, error) {
	if n <= 0 {
		return nil, errors.ConfigurationError{Param: "partitionCount", Reason: fmt.Sprintf("must be a positive integer, was %d", n)}
	}
	if total < 0 {
		return nil, errors.ConfigurationError{Param: "total", Reason: fmt.Sprintf("record count must not be negative, was %d", total)}
	}
	per := total / n
	bounds := make([]splitmerge.Bounds, n)
	for i := 0; i < n-1; i++ {
		bounds[i] = splitmerge.Bounds{ID: i + 1, Start: i * per, Count: per}
	}
	bounds[n-1] = splitmerge.Bounds{ID: n, Start: (n - 1) * per, Count: total - (n-1)*per}
	return bounds, nil
}

// Locate returns the id of the partition containing the record at ordinal. Empty partitions never contain a record.
func Locate(bounds []splitmerge.Bounds, ordinal int) (int, error) {
	if len(bounds) == 0 || ordinal < 0 || ordinal >= bounds[len(bounds)-1].End() {
		return 0, fmt.Errorf("Record %d is outside of the partitioned range", ordinal)
	}
	// first partition whose end lies beyond ordinal
	idx := sort.Search(len(bounds), func(i int) bool {
		return bounds[i].End() > ordinal
	})
	return bounds[idx].ID, nil
}
