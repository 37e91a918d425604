package runner

import (
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/go-sif/splitmerge"
)

// workspaceOutput is the OutputDataset handed to a UserTransform. It creates a
// single dataset in the Workspace, and remembers the writer so that the Runner
// can finalize or discard it.
type workspaceOutput struct {
	ws     splitmerge.Workspace
	name   string
	logger log.FieldLogger
	lock   sync.Mutex
	writer *trackedWriter
}

func (o *workspaceOutput) Name() string {
	return o.name
}

func (o *workspaceOutput) Create(schema splitmerge.Schema) (splitmerge.RecordWriter, error) {
	o.lock.Lock()
	defer o.lock.Unlock()
	if o.writer != nil {
		return nil, fmt.Errorf("Output %s has already been created", o.name)
	}
	w, err := o.ws.CreateDataset(o.name, schema)
	if err != nil {
		return nil, err
	}
	o.writer = &trackedWriter{RecordWriter: w}
	return o.writer, nil
}

// finalize commits the output, creating an empty dataset with schema if nothing was created
func (o *workspaceOutput) finalize(schema splitmerge.Schema) error {
	o.lock.Lock()
	created := o.writer != nil
	o.lock.Unlock()
	if !created {
		if _, err := o.Create(schema); err != nil {
			return err
		}
	}
	switch {
	case o.writer.aborted:
		return fmt.Errorf("Output %s was aborted", o.name)
	case o.writer.committed:
		return nil
	default:
		return o.writer.Commit()
	}
}

func (o *workspaceOutput) abort() {
	o.lock.Lock()
	defer o.lock.Unlock()
	if o.writer == nil {
		return
	}
	if o.writer.committed {
		if err := o.ws.RemoveDataset(o.name); err != nil {
			o.logger.WithError(err).Warnf("Unable to remove output %s", o.name)
		}
		return
	}
	if o.writer.aborted {
		return
	}
	if err := o.writer.Abort(); err != nil {
		o.logger.WithError(err).Warnf("Unable to abort output %s", o.name)
	}
}

// trackedWriter records whether a RecordWriter has been committed or aborted
type trackedWriter struct {
	splitmerge.RecordWriter
	committed bool
	aborted   bool
}

func (w *trackedWriter) Commit() error {
	if err := w.RecordWriter.Commit(); err != nil {
		return err
	}
	w.committed = true
	return nil
}

func (w *trackedWriter) Abort() error {
	w.aborted = true
	return w.RecordWriter.Abort()
}
