package splitmerge

// Bounds describes a contiguous range of record ordinals belonging to one Partition.
// Partition IDs start at 1.
type Bounds struct {
	ID    int // ID is the partition id, in [1..N]
	Start int // Start is the ordinal of the first record in the partition
	Count int // Count is the number of records in the partition
}

// End returns the ordinal one past the last record in the partition
func (b Bounds) End() int {
	return b.Start + b.Count
}

// A Partition is a Dataset holding a contiguous sub-sequence of another Dataset's
// Records, tagged with a partition id. The outputs of a UserTransform are
// Partitions as well, carrying the id of the Partition they were produced from.
// Partitions are self-contained: they do not reference the Dataset they came from.
type Partition interface {
	Dataset
	ID() int         // ID returns the partition id, in [1..N]
	NumRecords() int // NumRecords returns the number of Records in this Partition
}
