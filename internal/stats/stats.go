package stats

import (
	"sync"
	"time"
)

const statisticRollingWindows = 5

// Phase names recorded by a pipeline run
const (
	SplitPhase     = "split"
	TransformPhase = "transform"
	MergePhase     = "merge"
	JoinPhase      = "join"
)

// RunStatistics contains statistics about a running pipeline. It is safe for concurrent use,
// and doubles as a runner Observer.
type RunStatistics struct {
	lock                        sync.Mutex
	started                     bool
	finished                    bool
	startTime                   time.Time
	totalRuntime                time.Duration
	recordsProcessed            int64
	partitionsProcessed         int64
	partitionsFailed            int64
	recentPartitionRuntimes     []time.Duration // for rolling average of recent partition processing times
	recentPartitionRuntimesHead int
	phaseRuntimes               map[string]time.Duration

	// temp vars
	currentPhaseStartTimes     map[string]time.Time
	currentPartitionStartTimes map[int]time.Time
}

// CreateRunStatistics is a factory for RunStatistics
func CreateRunStatistics() *RunStatistics {
	return &RunStatistics{
		recentPartitionRuntimes:    make([]time.Duration, statisticRollingWindows),
		phaseRuntimes:              make(map[string]time.Duration),
		currentPhaseStartTimes:     make(map[string]time.Time),
		currentPartitionStartTimes: make(map[int]time.Time),
	}
}

// Start triggers statistics tracking, if it hasn't been started already
func (rs *RunStatistics) Start() {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	if !rs.started {
		rs.started = true
		rs.startTime = time.Now()
	}
}

// Finish completes statistics tracking
func (rs *RunStatistics) Finish() {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	rs.finished = true
	rs.totalRuntime = time.Since(rs.startTime)
}

// StartPhase tracks the beginning of a phase
func (rs *RunStatistics) StartPhase(name string) {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	rs.currentPhaseStartTimes[name] = time.Now()
}

// EndPhase tracks the end of a phase
func (rs *RunStatistics) EndPhase(name string) {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	if start, ok := rs.currentPhaseStartTimes[name]; ok {
		rs.phaseRuntimes[name] = time.Since(start)
		delete(rs.currentPhaseStartTimes, name)
	}
}

// PartitionStarted tracks the beginning of the processing of a partition
func (rs *RunStatistics) PartitionStarted(id int) {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	rs.currentPartitionStartTimes[id] = time.Now()
}

// PartitionFinished tracks the end of the processing of a partition
func (rs *RunStatistics) PartitionFinished(id int, numRecords int, err error) {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	start, ok := rs.currentPartitionStartTimes[id]
	if !ok {
		return
	}
	delete(rs.currentPartitionStartTimes, id)
	if err != nil {
		rs.partitionsFailed++
		return
	}
	rs.recentPartitionRuntimes[rs.recentPartitionRuntimesHead] = time.Since(start)
	rs.recentPartitionRuntimesHead = (rs.recentPartitionRuntimesHead + 1) % len(rs.recentPartitionRuntimes)
	rs.recordsProcessed += int64(numRecords)
	rs.partitionsProcessed++
}

// GetStartTime returns the start time of the pipeline run
func (rs *RunStatistics) GetStartTime() time.Time {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	return rs.startTime
}

// GetRuntime returns the running time of the pipeline run
func (rs *RunStatistics) GetRuntime() time.Duration {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	if rs.finished {
		return rs.totalRuntime
	}
	return time.Since(rs.startTime)
}

// GetNumRecordsProcessed returns the number of Records which have been transformed so far
func (rs *RunStatistics) GetNumRecordsProcessed() int64 {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	return rs.recordsProcessed
}

// GetNumPartitionsProcessed returns the number of Partitions which have been transformed so far
func (rs *RunStatistics) GetNumPartitionsProcessed() int64 {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	return rs.partitionsProcessed
}

// GetNumPartitionsFailed returns the number of Partitions whose transformation failed
func (rs *RunStatistics) GetNumPartitionsFailed() int64 {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	return rs.partitionsFailed
}

// GetCurrentPartitionProcessingTime returns a rolling average of partition processing time
func (rs *RunStatistics) GetCurrentPartitionProcessingTime() time.Duration {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	var total time.Duration
	for _, d := range rs.recentPartitionRuntimes {
		total += d
	}
	return total / statisticRollingWindows
}

// GetPhaseRuntimes returns the recorded runtime of each completed phase, by name
func (rs *RunStatistics) GetPhaseRuntimes() map[string]time.Duration {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	res := make(map[string]time.Duration, len(rs.phaseRuntimes))
	for k, v := range rs.phaseRuntimes {
		res[k] = v
	}
	return res
}
