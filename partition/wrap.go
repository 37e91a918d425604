package partition

import (
	"fmt"

	"github.com/go-sif/splitmerge"
	"github.com/go-sif/splitmerge/errors"
)

// datasetPartition presents a Dataset as a Partition
type datasetPartition struct {
	splitmerge.Dataset
	id         int
	numRecords int
}

// Wrap presents a Dataset as the Partition with the given id
func Wrap(ds splitmerge.Dataset, id int) (splitmerge.Partition, error) {
	if p, ok := ds.(splitmerge.Partition); ok && p.ID() == id {
		return p, nil
	}
	count, err := ds.Count()
	if err != nil {
		return nil, err
	}
	return &datasetPartition{Dataset: ds, id: id, numRecords: count}, nil
}

// ID returns the partition id
func (p *datasetPartition) ID() int {
	return p.id
}

// NumRecords returns the number of Records in this Partition
func (p *datasetPartition) NumRecords() int {
	return p.numRecords
}

// FromDatasets presents a fixed working set of Datasets (e.g. every table in a workspace) as
// Partitions, numbered from 1 in the order given
func FromDatasets(datasets ...splitmerge.Dataset) ([]splitmerge.Partition, error) {
	if len(datasets) == 0 {
		return nil, errors.ConfigurationError{Param: "datasets", Reason: "at least one dataset is required"}
	}
	parts := make([]splitmerge.Partition, len(datasets))
	for i, ds := range datasets {
		if ds == nil {
			return nil, errors.ConfigurationError{Param: "datasets", Reason: fmt.Sprintf("dataset %d is nil", i+1)}
		}
		p, err := Wrap(ds, i+1)
		if err != nil {
			return nil, err
		}
		parts[i] = p
	}
	return parts, nil
}
