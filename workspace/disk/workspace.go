// Package disk provides a Workspace which stores datasets as compressed files in a scratch directory
package disk

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/docker/docker/pkg/locker"
	humanize "github.com/dustin/go-humanize"
	"github.com/gofrs/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/go-sif/splitmerge"
	"github.com/go-sif/splitmerge/errors"
	"github.com/go-sif/splitmerge/internal/partition"
	"github.com/go-sif/splitmerge/logging"
)

// Conf configures a disk Workspace
type Conf struct {
	Dir         string          // Dir is the parent of the scratch directory. Defaults to os.TempDir().
	Compression string          // Compression is "lz4" (default), "zstd" or "none"
	MaxBytes    uint64          // MaxBytes limits the total size of all dataset files. 0 means unlimited.
	Logger      log.FieldLogger // Logger defaults to the standard logger
}

// Workspace is a Workspace backed by a scratch directory. Dataset files are named by
// uuid, and the catalog of committed datasets is kept in memory.
type Workspace struct {
	id         string
	dir        string
	compressor partition.Compressor
	lock       sync.Mutex
	nameLocks  *locker.Locker
	datasets   map[string]*dataset
	pending    map[string]bool
	numBytes   uint64 // committed and pending
	maxBytes   uint64
	destroyed  bool
	logger     log.FieldLogger
}

// CreateWorkspace creates a new scratch directory named splitmerge-<id> within conf.Dir
func CreateWorkspace(conf *Conf) (*Workspace, error) {
	if conf == nil {
		conf = &Conf{}
	}
	compressor, err := partition.CreateCompressor(conf.Compression)
	if err != nil {
		return nil, errors.ConfigurationError{Param: "compression", Reason: err.Error()}
	}
	parent := conf.Dir
	if parent == "" {
		parent = os.TempDir()
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, errors.WorkspaceError{Op: "create", Err: err}
	}
	dir := filepath.Join(parent, fmt.Sprintf("splitmerge-%s", id.String()))
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.WorkspaceError{Op: "create", Err: err}
	}
	ws := &Workspace{
		id:         id.String(),
		dir:        dir,
		compressor: compressor,
		nameLocks:  locker.New(),
		datasets:   make(map[string]*dataset),
		pending:    make(map[string]bool),
		maxBytes:   conf.MaxBytes,
	}
	ws.logger = logging.OrDefault(conf.Logger).WithField("workspace", ws.id)
	if ws.maxBytes > 0 {
		ws.logger.Debugf("Created disk workspace %s, limited to %s", dir, humanize.Bytes(ws.maxBytes))
	} else {
		ws.logger.Debugf("Created disk workspace %s", dir)
	}
	return ws, nil
}

// ID returns a unique identifier for this Workspace
func (ws *Workspace) ID() string {
	return ws.id
}

// Dir returns the scratch directory of this Workspace
func (ws *Workspace) Dir() string {
	return ws.dir
}

// reserve claims n more bytes of scratch space
func (ws *Workspace) reserve(n uint64) error {
	ws.lock.Lock()
	defer ws.lock.Unlock()
	if ws.maxBytes > 0 && ws.numBytes+n > ws.maxBytes {
		return errors.CapacityExceededError{Limit: humanize.Bytes(ws.maxBytes)}
	}
	ws.numBytes += n
	return nil
}

func (ws *Workspace) release(n uint64) {
	ws.lock.Lock()
	defer ws.lock.Unlock()
	if !ws.destroyed {
		ws.numBytes -= n
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

	w, err := createDatasetWriter(ws, name, schema)
	if err != nil {
		ws.lock.Lock()
		delete(ws.pending, name)
		ws.lock.Unlock()
		return nil, errors.WorkspaceError{Op: "create", Dataset: name, Err: err}
	}
	return w, nil
}

// commit adds a fully-written dataset to the catalog
func (ws *Workspace) commit(ds *dataset) error {
	ws.nameLocks.Lock(ds.name)
	defer ws.nameLocks.Unlock(ds.name)
	ws.lock.Lock()
	defer ws.lock.Unlock()
	delete(ws.pending, ds.name)
	if ws.destroyed {
		os.Remove(ds.path)
		return errors.WorkspaceError{Op: "commit", Dataset: ds.name, Err: fmt.Errorf("workspace %s has been destroyed", ws.id)}
	}
	ws.datasets[ds.name] = ds
	ws.logger.Debugf("Committed %s: %d records in %s", ds.name, ds.numRecords, humanize.Bytes(ds.size))
	return nil
}

// abort forgets a pending dataset
func (ws *Workspace) abort(name string, written uint64) {
	ws.release(written)
	ws.lock.Lock()
	defer ws.lock.Unlock()
	delete(ws.pending, name)
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

// RemoveDataset deletes a dataset and its file
func (ws *Workspace) RemoveDataset(name string) error {
	ws.nameLocks.Lock(name)
	defer ws.nameLocks.Unlock(name)
	ws.lock.Lock()
	defer ws.lock.Unlock()
	ds, ok := ws.datasets[name]
	if !ok {
		return errors.MissingDatasetError{Name: name}
	}
	delete(ws.datasets, name)
	ws.numBytes -= ds.size
	if err := os.Remove(ds.path); err != nil && !os.IsNotExist(err) {
		return errors.WorkspaceError{Op: "remove", Dataset: name, Err: err}
	}
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

// NumBytes returns the scratch space currently used by this Workspace, including uncommitted datasets
func (ws *Workspace) NumBytes() uint64 {
	ws.lock.Lock()
	defer ws.lock.Unlock()
	return ws.numBytes
}

// Destroy removes the scratch directory and everything in it. The Workspace cannot be used afterwards.
func (ws *Workspace) Destroy() error {
	ws.lock.Lock()
	defer ws.lock.Unlock()
	if ws.destroyed {
		return nil
	}
	ws.destroyed = true
	ws.datasets = make(map[string]*dataset)
	used := ws.numBytes
	ws.numBytes = 0
	if err := os.RemoveAll(ws.dir); err != nil {
		return errors.WorkspaceError{Op: "destroy", Err: err}
	}
	ws.logger.Debugf("Destroyed disk workspace %s (%s)", ws.dir, humanize.Bytes(used))
	return nil
}

// tempFile creates a new, uniquely named dataset file
func (ws *Workspace) tempFile() (*os.File, error) {
	return ioutil.TempFile(ws.dir, "*.rec")
}
