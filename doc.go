// Package splitmerge contains the core components of a partitioned transform/merge pipeline.
// A dataset is split positionally into N partitions, a caller-supplied transformation runs on
// each partition independently (sequentially or on a bounded pool of workers), and the
// partition outputs are merged back into a single dataset in partition order.
// This root package defines the types which are employed during the regular use of the
// pipeline, as well as in its extension, and is an overview of its key concepts.
package splitmerge
