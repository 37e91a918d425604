package disk

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/cespare/xxhash/v2"

	"github.com/go-sif/splitmerge"
	"github.com/go-sif/splitmerge/errors"
	"github.com/go-sif/splitmerge/internal/partition"
)

// dataset is a committed dataset file. The file holds a compressed stream of
// encoded Records, and checksum is the xxhash of the file's contents.
type dataset struct {
	name       string
	path       string
	schema     splitmerge.Schema
	compressor partition.Compressor
	numRecords int
	size       uint64
	checksum   uint64
}

func (d *dataset) Name() string {
	return d.name
}

func (d *dataset) Schema() splitmerge.Schema {
	return d.schema
}

func (d *dataset) Count() (int, error) {
	return d.numRecords, nil
}

// Scan decodes every Record in order, verifying the checksum of the file once it has been read
func (d *dataset) Scan(ctx context.Context, fn func(rec splitmerge.Record) error) error {
	f, err := os.Open(d.path)
	if err != nil {
		return errors.WorkspaceError{Op: "read", Dataset: d.name, Err: err}
	}
	defer f.Close()
	digest := xxhash.New()
	tee := io.TeeReader(f, digest)
	cr, err := d.compressor.NewReader(tee)
	if err != nil {
		return errors.WorkspaceError{Op: "read", Dataset: d.name, Err: err}
	}
	defer cr.Close()
	dec := partition.NewRecordDecoder(cr, d.schema)
	for i := 0; ; i++ {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		rec, err := dec.Decode()
		if err == io.EOF {
			if i != d.numRecords {
				return errors.WorkspaceError{Op: "read", Dataset: d.name, Err: fmt.Errorf("found %d records, expected %d", i, d.numRecords)}
			}
			break
		} else if err != nil {
			return errors.WorkspaceError{Op: "read", Dataset: d.name, Err: err}
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	if _, err := io.Copy(ioutil.Discard, tee); err != nil {
		return errors.WorkspaceError{Op: "read", Dataset: d.name, Err: err}
	}
	if sum := digest.Sum64(); sum != d.checksum {
		return errors.WorkspaceError{Op: "read", Dataset: d.name, Err: fmt.Errorf("checksum mismatch: %x != %x", sum, d.checksum)}
	}
	return nil
}

// quotaWriter claims Workspace capacity for every byte written to a dataset file
type quotaWriter struct {
	ws      *Workspace
	w       io.Writer
	written uint64
}

func (q *quotaWriter) Write(p []byte) (int, error) {
	if err := q.ws.reserve(uint64(len(p))); err != nil {
		return 0, err
	}
	n, err := q.w.Write(p)
	q.written += uint64(n)
	if n < len(p) {
		q.ws.release(uint64(len(p) - n))
	}
	return n, err
}

// datasetWriter encodes Records into a new dataset file
type datasetWriter struct {
	ws         *Workspace
	name       string
	schema     splitmerge.Schema
	file       *os.File
	quota      *quotaWriter
	digest     *xxhash.Digest
	cw         io.WriteCloser
	enc        *partition.RecordEncoder
	numRecords int
	done       bool
}

func createDatasetWriter(ws *Workspace, name string, schema splitmerge.Schema) (*datasetWriter, error) {
	f, err := ws.tempFile()
	if err != nil {
		return nil, err
	}
	digest := xxhash.New()
	quota := &quotaWriter{ws: ws, w: io.MultiWriter(f, digest)}
	cw, err := ws.compressor.NewWriter(quota)
	if err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, err
	}
	return &datasetWriter{
		ws:     ws,
		name:   name,
		schema: schema,
		file:   f,
		quota:  quota,
		digest: digest,
		cw:     cw,
		enc:    partition.NewRecordEncoder(cw, schema),
	}, nil
}

// Write encodes a Record, which must conform to the dataset's Schema
func (w *datasetWriter) Write(rec splitmerge.Record) error {
	if w.done {
		return fmt.Errorf("Cannot write to a committed or aborted dataset")
	}
	conformed, err := partition.Conform(w.schema, rec)
	if err != nil {
		return err
	}
	if err := w.enc.Encode(conformed); err != nil {
		return err
	}
	w.numRecords++
	return nil
}

// Commit flushes the dataset file and adds it to the Workspace catalog
func (w *datasetWriter) Commit() error {
	if w.done {
		return fmt.Errorf("Dataset has already been committed or aborted")
	}
	w.done = true
	err := w.enc.Flush()
	if err == nil {
		err = w.cw.Close()
	}
	if closeErr := w.file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		w.discard()
		return errors.WorkspaceError{Op: "commit", Dataset: w.name, Err: err}
	}
	return w.ws.commit(&dataset{
		name:       w.name,
		path:       w.file.Name(),
		schema:     w.schema,
		compressor: w.ws.compressor,
		numRecords: w.numRecords,
		size:       w.quota.written,
		checksum:   w.digest.Sum64(),
	})
}

// Abort removes the dataset file
func (w *datasetWriter) Abort() error {
	if w.done {
		return nil
	}
	w.done = true
	w.cw.Close()
	w.file.Close()
	w.discard()
	return nil
}

func (w *datasetWriter) discard() {
	os.Remove(w.file.Name())
	w.ws.abort(w.name, w.quota.written)
}
