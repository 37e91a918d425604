// Package memory provides a Workspace which keeps every dataset in memory
package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/docker/docker/pkg/locker"
	"github.com/gofrs/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/go-sif/splitmerge"
	"github.com/go-sif/splitmerge/errors"
	"github.com/go-sif/splitmerge/internal/partition"
	"github.com/go-sif/splitmerge/logging"
)

// Conf configures a memory Workspace
type Conf struct {
	MaxRecords int             // MaxRecords limits the total number of Records held, across all datasets. 0 means unlimited.
	Logger     log.FieldLogger // Logger defaults to the standard logger
}

// Workspace is a Workspace which keeps every dataset in memory
type Workspace struct {
	id         string
	lock       sync.Mutex
	nameLocks  *locker.Locker
	datasets   map[string]splitmerge.Dataset
	pending    map[string]bool
	numRecords int // committed and pending
	maxRecords int
	destroyed  bool
	logger     log.FieldLogger
}

// CreateWorkspace is a factory for memory Workspaces
func CreateWorkspace(conf *Conf) (*Workspace, error) {
	if conf == nil {
		conf = &Conf{}
	}
	if conf.MaxRecords < 0 {
		return nil, errors.ConfigurationError{Param: "maxScratchRecords", Reason: fmt.Sprintf("must not be negative, was %d", conf.MaxRecords)}
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, errors.WorkspaceError{Op: "create", Err: err}
	}
	ws := &Workspace{
		id:         id.String(),
		nameLocks:  locker.New(),
		datasets:   make(map[string]splitmerge.Dataset),
		pending:    make(map[string]bool),
		maxRecords: conf.MaxRecords,
	}
	ws.logger = logging.OrDefault(conf.Logger).WithField("workspace", ws.id)
	ws.logger.Debug("Created memory workspace")
	return ws, nil
}

// ID returns a unique identifier for this Workspace
func (ws *Workspace) ID() string {
	return ws.id
}

// reserve claims capacity for one more Record
func (ws *Workspace) reserve() error {
	ws.lock.Lock()
	defer ws.lock.Unlock()
	if ws.maxRecords > 0 && ws.numRecords >= ws.maxRecords {
		return errors.CapacityExceededError{Limit: fmt.Sprintf("%d records", ws.maxRecords)}
	}
	ws.numRecords++
	return nil
}

func (ws *Workspace) release(n int) {
	ws.lock.Lock()
	defer ws.lock.Unlock()
	if !ws.destroyed {
		ws.numRecords -= n
	}
}

// CreateDataset begins writing a new dataset. Fails if the name is already in use.
func (ws *Workspace) CreateDataset(name string, schema splitmerge.Schema) (splitmerge.RecordWriter, error) {
	ws.nameLocks.Lock(name)
	defer ws.nameLocks.Unlock(name)
	ws.lock.Lock()
	if ws.destroyed {
		ws.lock.Unlock()
		return nil, errors.WorkspaceError{Op: "create", Dataset: name, Err: fmt.Errorf("workspace %s has been destroyed", ws.id)}
	}
	_, exists := ws.datasets[name]
	if exists || ws.pending[name] {
		ws.lock.Unlock()
		return nil, errors.DuplicateDatasetError{Name: name}
	}
	ws.pending[name] = true
	ws.lock.Unlock()

	written := 0
	onWrite := func(rec splitmerge.Record) error {
		if err := ws.reserve(); err != nil {
			return err
		}
		written++
		return nil
	}
	onCommit := func(records []splitmerge.Record) error {
		ws.nameLocks.Lock(name)
		defer ws.nameLocks.Unlock(name)
		ws.lock.Lock()
		defer ws.lock.Unlock()
		delete(ws.pending, name)
		if ws.destroyed {
			return errors.WorkspaceError{Op: "commit", Dataset: name, Err: fmt.Errorf("workspace %s has been destroyed", ws.id)}
		}
		ws.datasets[name] = partition.CreateBuffer(0, name, schema, records)
		return nil
	}
	onAbort := func() {
		ws.release(written)
		ws.lock.Lock()
		defer ws.lock.Unlock()
		delete(ws.pending, name)
	}
	return partition.CreateBufferWriter(schema, onWrite, onCommit, onAbort), nil
}

// OpenDataset opens a committed dataset for reading
func (ws *Workspace) OpenDataset(name string) (splitmerge.Dataset, error) {
	ws.lock.Lock()
	defer ws.lock.Unlock()
	ds, ok := ws.datasets[name]
	if !ok {
		return nil, errors.MissingDatasetError{Name: name}
	}
	return ds, nil
}

// RemoveDataset deletes a dataset
func (ws *Workspace) RemoveDataset(name string) error {
	ws.nameLocks.Lock(name)
	defer ws.nameLocks.Unlock(name)
	ws.lock.Lock()
	defer ws.lock.Unlock()
	ds, ok := ws.datasets[name]
	if !ok {
		return errors.MissingDatasetError{Name: name}
	}
	n, _ := ds.Count()
	ws.numRecords -= n
	delete(ws.datasets, name)
	return nil
}

// Datasets lists the committed datasets in this Workspace, sorted by name
func (ws *Workspace) Datasets() []string {
	ws.lock.Lock()
	defer ws.lock.Unlock()
	names := make([]string, 0, len(ws.datasets))
	for name := range ws.datasets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NumRecords returns the number of Records currently held by this Workspace, including uncommitted ones
func (ws *Workspace) NumRecords() int {
	ws.lock.Lock()
	defer ws.lock.Unlock()
	return ws.numRecords
}

// Destroy removes every dataset in this Workspace. The Workspace cannot be used afterwards.
func (ws *Workspace) Destroy() error {
	ws.lock.Lock()
	defer ws.lock.Unlock()
	ws.destroyed = true
	ws.datasets = make(map[string]splitmerge.Dataset)
	ws.numRecords = 0
	ws.logger.Debug("Destroyed memory workspace")
	return nil
}
