// Package merge concatenates transformed Partitions into a single output
package merge

import (
	"context"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/go-sif/splitmerge"
	"github.com/go-sif/splitmerge/errors"
	"github.com/go-sif/splitmerge/logging"
)

// Conf configures a Merger
type Conf struct {
	ExpectedPartitions int             // ExpectedPartitions is checked when greater than 0
	CheckRecordCount   bool            // CheckRecordCount requires the merged Partitions to hold exactly ExpectedRecords Records
	ExpectedRecords    int             // ExpectedRecords is checked when CheckRecordCount is true
	AllowPartial       bool            // AllowPartial merges whichever Partitions are present, skipping nil ones and the ExpectedPartitions check
	Logger             log.FieldLogger // Logger defaults to the standard logger
}

// Merger concatenates transformed Partitions, in ascending id order, into an OutputDataset
type Merger struct {
	conf   *Conf
	logger log.FieldLogger
}

// CreateMerger is a factory for Mergers
func CreateMerger(conf *Conf) *Merger {
	if conf == nil {
		conf = &Conf{}
	}
	return &Merger{conf: conf, logger: logging.OrDefault(conf.Logger)}
}

// Merge writes every Record of every Partition into output, returning the number of Records written.
// Every precondition is checked before output is created, and output is only committed once every
// Record has been written, so a failed merge never produces a partial output.
func (m *Merger) Merge(ctx context.Context, transformed []splitmerge.Partition, output splitmerge.OutputDataset) (int, error) {
	parts, err := m.validate(transformed)
	if err != nil {
		return 0, err
	}
	expected := 0
	for _, p := range parts {
		expected += p.NumRecords()
	}
	if m.conf.CheckRecordCount && expected != m.conf.ExpectedRecords {
		return 0, errors.RecordCountMismatchError{Expected: m.conf.ExpectedRecords, Actual: expected}
	}

	w, err := output.Create(parts[0].Schema())
	if err != nil {
		return 0, err
	}
	written := 0
	for _, p := range parts {
		err := p.Scan(ctx, func(rec splitmerge.Record) error {
			if err := w.Write(rec); err != nil {
				return err
			}
			written++
			return nil
		})
		if err != nil {
			w.Abort()
			m.logger.WithError(err).WithField("partition", p.ID()).Error("Merge aborted")
			return 0, err
		}
	}
	if written != expected {
		w.Abort()
		return 0, errors.RecordCountMismatchError{Expected: expected, Actual: written}
	}
	if err := w.Commit(); err != nil {
		return 0, err
	}
	m.logger.Infof("Merged %d records from %d partitions into %s", written, len(parts), output.Name())
	return written, nil
}

// validate checks that the Partitions are complete, unique and schema-identical, returning them sorted by id
func (m *Merger) validate(transformed []splitmerge.Partition) ([]splitmerge.Partition, error) {
	parts := make([]splitmerge.Partition, 0, len(transformed))
	for i, p := range transformed {
		if p != nil {
			parts = append(parts, p)
		} else if !m.conf.AllowPartial {
			return nil, errors.MissingPartitionError{PartitionID: i + 1}
		}
	}
	if !m.conf.AllowPartial && m.conf.ExpectedPartitions > 0 && len(parts) != m.conf.ExpectedPartitions {
		return nil, errors.PartitionCountMismatchError{Expected: m.conf.ExpectedPartitions, Actual: len(parts)}
	}
	if len(parts) == 0 {
		return nil, errors.ConfigurationError{Param: "partitions", Reason: "there are no partitions to merge"}
	}
	sort.SliceStable(parts, func(i, j int) bool {
		return parts[i].ID() < parts[j].ID()
	})
	schema := parts[0].Schema()
	for i, p := range parts {
		if i > 0 && p.ID() == parts[i-1].ID() {
			return nil, errors.DuplicatePartitionError{PartitionID: p.ID()}
		}
		if err := schema.Equals(p.Schema()); err != nil {
			return nil, errors.SchemaMismatchError{PartitionID: p.ID(), Err: err}
		}
	}
	return parts, nil
}
