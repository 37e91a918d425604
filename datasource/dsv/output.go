package dsv

import (
	"encoding/csv"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/go-sif/splitmerge"
)

// Output is an OutputDataset which writes a single DSV file. Records are written to a
// temporary file next to the destination, which is renamed into place on Commit.
type Output struct {
	path    string
	conf    *ParserConf
	header  bool
	created bool
}

// CreateOutput is a factory for DSV Outputs. If header is true, the column names are written as the first line.
func CreateOutput(path string, conf *ParserConf, header bool) *Output {
	return &Output{path: path, conf: conf.withDefaults(), header: header}
}

// Name returns the destination path of this Output
func (o *Output) Name() string {
	return o.path
}

// Create begins writing Records with the given Schema. It may only be called once.
func (o *Output) Create(schema splitmerge.Schema) (splitmerge.RecordWriter, error) {
	if o.created {
		return nil, fmt.Errorf("Output %s has already been created", o.path)
	}
	o.created = true
	f, err := ioutil.TempFile(filepath.Dir(o.path), filepath.Base(o.path)+".*.tmp")
	if err != nil {
		return nil, err
	}
	w := csv.NewWriter(f)
	w.Comma = o.conf.Delimiter
	if o.header {
		if err := w.Write(schema.ColumnNames()); err != nil {
			f.Close()
			os.Remove(f.Name())
			return nil, err
		}
	}
	return &writer{
		output:   o,
		file:     f,
		w:        w,
		colTypes: schema.ColumnTypes(),
		buf:      make([]string, schema.NumColumns()),
	}, nil
}

type writer struct {
	output   *Output
	file     *os.File
	w        *csv.Writer
	colTypes []splitmerge.ColumnType
	buf      []string
	done     bool
}

func (w *writer) Write(rec splitmerge.Record) error {
	if w.done {
		return fmt.Errorf("Cannot write to a committed or aborted dataset")
	}
	if len(rec.Values()) != len(w.colTypes) {
		return fmt.Errorf("Record has %d values, expected %d", len(rec.Values()), len(w.colTypes))
	}
	if err := formatRecord(w.output.conf, w.colTypes, rec, w.buf); err != nil {
		return err
	}
	return w.w.Write(w.buf)
}

func (w *writer) Commit() error {
	if w.done {
		return fmt.Errorf("Dataset has already been committed or aborted")
	}
	w.done = true
	w.w.Flush()
	err := w.w.Error()
	if closeErr := w.file.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(w.file.Name(), w.output.path)
	}
	if err != nil {
		os.Remove(w.file.Name())
		return err
	}
	return nil
}

func (w *writer) Abort() error {
	if w.done {
		return nil
	}
	w.done = true
	w.file.Close()
	return os.Remove(w.file.Name())
}
