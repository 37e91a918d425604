package errors

import (
	"fmt"
)

// ConfigurationError occurs when a pipeline is configured with an invalid or missing parameter.
// It is reported before any partitioning work begins and is never retried.
type ConfigurationError struct {
	Param  string
	Reason string
}

// Error returns a textual representation of this ConfigurationError
func (e ConfigurationError) Error() string {
	return fmt.Sprintf("Invalid configuration for %s: %s", e.Param, e.Reason)
}

// WorkspaceError occurs when the scratch workspace cannot be created, written or read.
// Any partitions created before the failure have already been removed when it is returned.
type WorkspaceError struct {
	Op      string
	Dataset string
	Err     error
}

// Error returns a textual representation of this WorkspaceError
func (e WorkspaceError) Error() string {
	if e.Dataset == "" {
		return fmt.Sprintf("Workspace %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("Workspace %s failed for dataset %s: %v", e.Op, e.Dataset, e.Err)
}

// Unwrap returns the cause of this WorkspaceError
func (e WorkspaceError) Unwrap() error {
	return e.Err
}

// PartitionTaskError occurs when the transform or join for a single Partition fails
type PartitionTaskError struct {
	PartitionID int
	Err         error
}

// Error returns a textual representation of this PartitionTaskError
func (e PartitionTaskError) Error() string {
	return fmt.Sprintf("Partition %d failed: %v", e.PartitionID, e.Err)
}

// Unwrap returns the cause of this PartitionTaskError
func (e PartitionTaskError) Unwrap() error {
	return e.Err
}

// SchemaMismatchError occurs when a transformed Partition's Schema differs from its siblings'.
// It is always detected before any Record is written to the merge output.
type SchemaMismatchError struct {
	PartitionID int
	Err         error
}

// Error returns a textual representation of this SchemaMismatchError
func (e SchemaMismatchError) Error() string {
	return fmt.Sprintf("Schema of partition %d does not match: %v", e.PartitionID, e.Err)
}

// Unwrap returns the cause of this SchemaMismatchError
func (e SchemaMismatchError) Unwrap() error {
	return e.Err
}

// RecordCountMismatchError occurs when a merge would produce a different number of Records than expected
type RecordCountMismatchError struct {
	Expected int
	Actual   int
}

// Error returns a textual representation of this RecordCountMismatchError
func (e RecordCountMismatchError) Error() string {
	return fmt.Sprintf("Expected %d records, found %d", e.Expected, e.Actual)
}

// DuplicateDatasetError occurs when a Workspace is asked to create a dataset whose name is already in use
type DuplicateDatasetError struct{ Name string }

// Error returns a textual representation of this DuplicateDatasetError
func (e DuplicateDatasetError) Error() string {
	return fmt.Sprintf("Dataset %s already exists", e.Name)
}

// MissingDatasetError occurs when a Workspace is asked for a dataset which does not exist
type MissingDatasetError struct{ Name string }

// Error returns a textual representation of this MissingDatasetError
func (e MissingDatasetError) Error() string {
	return fmt.Sprintf("Dataset %s does not exist", e.Name)
}

// CapacityExceededError occurs when a Workspace runs out of capacity
type CapacityExceededError struct {
	Limit string
}

// Error returns a textual representation of this CapacityExceededError
func (e CapacityExceededError) Error() string {
	return fmt.Sprintf("Workspace capacity of %s exceeded", e.Limit)
}

// NilValueError occurs when a value in a Record is nil
type NilValueError struct{ Name string }

// Error returns a textual representation of this NilValueError
func (e NilValueError) Error() string {
	return fmt.Sprintf("Value for column %s is nil", e.Name)
}

// MissingColumnError occurs when a Record or Schema does not contain a column
type MissingColumnError struct{ Name string }

// Error returns a textual representation of this MissingColumnError
func (e MissingColumnError) Error() string {
	return fmt.Sprintf("Schema does not contain column with name %s", e.Name)
}

// IncompatibleRecordError occurs when a Record's width does not match an expected Schema
type IncompatibleRecordError struct {
	Expected int
	Actual   int
}

// Error returns a textual representation of this IncompatibleRecordError
func (e IncompatibleRecordError) Error() string {
	return fmt.Sprintf("Record with %d values is not compatible with Schema of %d columns", e.Actual, e.Expected)
}

// MissingPartitionError occurs when a Partition which should be merged is absent
type MissingPartitionError struct{ PartitionID int }

// Error returns a textual representation of this MissingPartitionError
func (e MissingPartitionError) Error() string {
	return fmt.Sprintf("Partition %d is missing", e.PartitionID)
}

// DuplicatePartitionError occurs when two Partitions which should be merged share an id
type DuplicatePartitionError struct{ PartitionID int }

// Error returns a textual representation of this DuplicatePartitionError
func (e DuplicatePartitionError) Error() string {
	return fmt.Sprintf("Partition %d appears more than once", e.PartitionID)
}

// PartitionCountMismatchError occurs when a merge is given a different number of Partitions than expected
type PartitionCountMismatchError struct {
	Expected int
	Actual   int
}

// Error returns a textual representation of this PartitionCountMismatchError
func (e PartitionCountMismatchError) Error() string {
	return fmt.Sprintf("Expected %d partitions, found %d", e.Expected, e.Actual)
}
