package splitmerge

import "time"

// RuntimeStatistics facilitates the retrieval of statistics about a pipeline run
type RuntimeStatistics interface {
	// GetStartTime returns the start time of the pipeline run
	GetStartTime() time.Time
	// GetRuntime returns the running time of the pipeline run
	GetRuntime() time.Duration
	// GetNumRecordsProcessed returns the number of Records which have been transformed so far
	GetNumRecordsProcessed() int64
	// GetNumPartitionsProcessed returns the number of Partitions which have been transformed so far
	GetNumPartitionsProcessed() int64
	// GetNumPartitionsFailed returns the number of Partitions whose transformation failed
	GetNumPartitionsFailed() int64
	// GetCurrentPartitionProcessingTime returns a rolling average of partition processing time
	GetCurrentPartitionProcessingTime() time.Duration
	// GetPhaseRuntimes returns the recorded runtime of each completed phase (split, transform, merge), by name
	GetPhaseRuntimes() map[string]time.Duration
}
