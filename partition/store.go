package partition

import (
	"context"
	stderrors "errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/go-sif/splitmerge"
	"github.com/go-sif/splitmerge/errors"
	ipartition "github.com/go-sif/splitmerge/internal/partition"
	"github.com/go-sif/splitmerge/internal/util"
	"github.com/go-sif/splitmerge/logging"
)

// DefaultPrefix is the dataset name prefix of materialized partitions
const DefaultPrefix = "split_"

// StoreConf configures a Store
type StoreConf struct {
	Prefix         string          // Prefix of partition dataset names. Defaults to DefaultPrefix.
	ExcludeColumns []string        // ExcludeColumns are dropped from partition Schemas (e.g. OBJECTID). Unknown names are ignored.
	Logger         log.FieldLogger // Logger defaults to the standard logger
}

// Store materializes partitions into a Workspace
type Store struct {
	ws     splitmerge.Workspace
	conf   *StoreConf
	logger log.FieldLogger
}

// CreateStore is a factory for Stores
func CreateStore(ws splitmerge.Workspace, conf *StoreConf) *Store {
	if conf == nil {
		conf = &StoreConf{}
	}
	if conf.Prefix == "" {
		conf.Prefix = DefaultPrefix
	}
	return &Store{
		ws:     ws,
		conf:   conf,
		logger: logging.OrDefault(conf.Logger).WithField("workspace", ws.ID()),
	}
}

// PartitionSchema returns the Schema of the partitions materialized from a Dataset with the given Schema
func (s *Store) PartitionSchema(inputSchema splitmerge.Schema) splitmerge.Schema {
	partSchema := inputSchema.Clone()
	for _, name := range s.conf.ExcludeColumns {
		partSchema.RemoveColumn(name)
	}
	return partSchema
}

// Materialize copies every Record of input into the partition it belongs to, in a single forward scan,
// returning the Partitions in id order. bounds must cover exactly the Records of input. If anything fails,
// every partition created so far is removed and a WorkspaceError is returned.
func (s *Store) Materialize(ctx context.Context, input splitmerge.Dataset, bounds []splitmerge.Bounds) ([]splitmerge.Partition, error) {
	if len(bounds) == 0 {
		return nil, errors.ConfigurationError{Param: "bounds", Reason: "at least one partition is required"}
	}
	m := &materialization{
		store:      s,
		bounds:     bounds,
		partSchema: s.PartitionSchema(input.Schema()),
		created:    make([]string, 0, len(bounds)),
	}
	m.projection = projection(input.Schema(), m.partSchema)

	err := m.run(ctx, input)
	if err != nil {
		m.rollback()
		var wsErr errors.WorkspaceError
		if stderrors.As(err, &wsErr) {
			return nil, wsErr
		}
		return nil, errors.WorkspaceError{Op: "materialize", Dataset: m.currentName(), Err: err}
	}

	parts := make([]splitmerge.Partition, len(bounds))
	for i, b := range bounds {
		name := util.PartitionDatasetName(s.conf.Prefix, b.ID)
		ds, err := s.ws.OpenDataset(name)
		if err == nil {
			parts[i], err = Wrap(ds, b.ID)
		}
		if err != nil {
			m.rollback()
			return nil, errors.WorkspaceError{Op: "open", Dataset: name, Err: err}
		}
		if parts[i].NumRecords() != b.Count {
			m.rollback()
			return nil, errors.WorkspaceError{Op: "materialize", Dataset: name, Err: fmt.Errorf("partition holds %d records, expected %d", parts[i].NumRecords(), b.Count)}
		}
	}
	s.logger.Debugf("Materialized %d partitions", len(parts))
	return parts, nil
}

// materialization tracks the progress of a single Materialize call
type materialization struct {
	store      *Store
	bounds     []splitmerge.Bounds
	partSchema splitmerge.Schema
	projection []int
	created    []string
	current    int // index into bounds of the partition being written
	writer     splitmerge.RecordWriter
}

func (m *materialization) currentName() string {
	if m.current >= len(m.bounds) {
		return ""
	}
	return util.PartitionDatasetName(m.store.conf.Prefix, m.bounds[m.current].ID)
}

// open begins writing the partition at m.current
func (m *materialization) open() error {
	name := m.currentName()
	w, err := m.store.ws.CreateDataset(name, m.partSchema)
	if err != nil {
		return err
	}
	m.writer = w
	return nil
}

// advance commits the current partition and opens the next one
func (m *materialization) advance() error {
	if err := m.writer.Commit(); err != nil {
		m.writer = nil
		return err
	}
	m.writer = nil
	m.created = append(m.created, m.currentName())
	m.store.logger.WithField("partition", m.bounds[m.current].ID).Tracef("Committed %d records", m.bounds[m.current].Count)
	m.current++
	if m.current < len(m.bounds) {
		return m.open()
	}
	return nil
}

func (m *materialization) run(ctx context.Context, input splitmerge.Dataset) error {
	total, err := input.Count()
	if err != nil {
		return err
	}
	expected := m.bounds[len(m.bounds)-1].End()
	if total != expected {
		return fmt.Errorf("Dataset %s holds %d records, but partitions cover %d", input.Name(), total, expected)
	}
	if err := m.open(); err != nil {
		return err
	}
	ordinal := 0
	err = input.Scan(ctx, func(rec splitmerge.Record) error {
		id, err := Locate(m.bounds, ordinal)
		if err != nil {
			return err
		}
		for m.bounds[m.current].ID != id {
			if err := m.advance(); err != nil {
				return err
			}
		}
		values := rec.Values()
		projected := make([]interface{}, len(m.projection))
		for i, idx := range m.projection {
			projected[i] = values[idx]
		}
		partRec, err := ipartition.CreateRecordFromValues(m.partSchema, projected)
		if err != nil {
			return fmt.Errorf("record %d: %w", ordinal, err)
		}
		if err := m.writer.Write(partRec); err != nil {
			return err
		}
		ordinal++
		return nil
	})
	if err != nil {
		return err
	}
	if ordinal != expected {
		return fmt.Errorf("Dataset %s yielded %d records, but reported %d", input.Name(), ordinal, expected)
	}
	// commit the partition being written and any empty partitions after it
	for m.current < len(m.bounds) {
		if err := m.advance(); err != nil {
			return err
		}
	}
	return nil
}

// rollback aborts the partition being written and removes every committed partition
func (m *materialization) rollback() {
	if m.writer != nil {
		if err := m.writer.Abort(); err != nil {
			m.store.logger.WithError(err).Warnf("Unable to abort partition %s", m.currentName())
		}
		m.writer = nil
	}
	for _, name := range m.created {
		if err := m.store.ws.RemoveDataset(name); err != nil {
			m.store.logger.WithError(err).Warnf("Unable to remove partition %s", name)
		}
	}
	m.created = nil
}

// projection maps each column of to onto its index within from
func projection(from splitmerge.Schema, to splitmerge.Schema) []int {
	res := make([]int, 0, to.NumColumns())
	to.ForEachColumn(func(name string, col splitmerge.Column) error {
		fromCol, _ := from.GetColumn(name)
		res = append(res, fromCol.Index())
		return nil
	})
	return res
}
