package accumulators

import (
	"fmt"

	"github.com/go-sif/splitmerge"
)

// JoinSummary accounts for the matches made by a join. Each Partition fills its
// own JoinSummary, and they are merged in ascending partition id order.
type JoinSummary struct {
	PartitionIDs  []int    // PartitionIDs lists the partitions accounted for
	TotalInput    int      // TotalInput counts left Records
	TotalMatched  int      // TotalMatched counts left Records which found a match
	UnmatchedKeys []string // UnmatchedKeys lists the keys of unmatched left Records, by partition id then Record order. nil keys are omitted.
	NilKeys       int      // NilKeys counts left Records with a nil key, which never match
}

// CreateJoinSummary returns an empty JoinSummary for a single Partition
func CreateJoinSummary(partitionID int) *JoinSummary {
	return &JoinSummary{
		PartitionIDs:  []int{partitionID},
		UnmatchedKeys: make([]string, 0),
	}
}

// Matched records a left Record which found a match
func (s *JoinSummary) Matched() {
	s.TotalInput++
	s.TotalMatched++
}

// Unmatched records a left Record which found no match
func (s *JoinSummary) Unmatched(key string, isNil bool) {
	s.TotalInput++
	if isNil {
		s.NilKeys++
		return
	}
	s.UnmatchedKeys = append(s.UnmatchedKeys, key)
}

// TotalUnmatched returns the number of left Records which found no match
func (s *JoinSummary) TotalUnmatched() int {
	return s.TotalInput - s.TotalMatched
}

// MatchPercentage returns the percentage of left Records which found a match, or 0 if there were none
func (s *JoinSummary) MatchPercentage() float64 {
	if s.TotalInput == 0 {
		return 0
	}
	return float64(s.TotalMatched) / float64(s.TotalInput) * 100
}

// Merge merges another JoinSummary into this one
func (s *JoinSummary) Merge(o splitmerge.Accumulator) error {
	js, ok := o.(*JoinSummary)
	if !ok {
		return fmt.Errorf("Incoming accumulator is not a JoinSummary Accumulator")
	}
	s.PartitionIDs = append(s.PartitionIDs, js.PartitionIDs...)
	s.TotalInput += js.TotalInput
	s.TotalMatched += js.TotalMatched
	s.NilKeys += js.NilKeys
	s.UnmatchedKeys = append(s.UnmatchedKeys, js.UnmatchedKeys...)
	return nil
}
