// Package dsv reads and writes delimiter-separated-value files
package dsv

import (
	"context"
	"encoding/csv"
	"io"
	"os"

	"github.com/go-sif/splitmerge"
	"github.com/go-sif/splitmerge/datasource"
	"github.com/go-sif/splitmerge/internal/partition"
)

// Dataset is a Dataset backed by one or more DSV files, read in name order
type Dataset struct {
	glob   string
	files  []string
	schema splitmerge.Schema
	conf   *ParserConf
	count  datasource.CountCache
}

// CreateDataset is a factory for DSV Datasets. Columns are read in Schema order.
func CreateDataset(glob string, schema splitmerge.Schema, conf *ParserConf) (*Dataset, error) {
	files, err := datasource.MatchFiles(glob)
	if err != nil {
		return nil, err
	}
	return &Dataset{glob: glob, files: files, schema: schema, conf: conf.withDefaults()}, nil
}

// Name returns the glob this Dataset was created from
func (d *Dataset) Name() string {
	return d.glob
}

// Schema returns the Schema of this Dataset
func (d *Dataset) Schema() splitmerge.Schema {
	return d.schema
}

// Count reads every file once to count its Records
func (d *Dataset) Count() (int, error) {
	return d.count.Get(func() (int, error) {
		n := 0
		err := datasource.ForEachFile(context.Background(), d.files, func(path string, f *os.File) error {
			reader, err := d.newReader(f)
			if err != nil {
				return err
			}
			for {
				_, err := reader.Read()
				if err == io.EOF {
					return nil
				} else if err != nil {
					return err
				}
				n++
			}
		})
		return n, err
	})
}

// Scan parses every Record in order
func (d *Dataset) Scan(ctx context.Context, fn func(rec splitmerge.Record) error) error {
	names := d.schema.ColumnNames()
	colTypes := d.schema.ColumnTypes()
	return datasource.ForEachFile(ctx, d.files, func(path string, f *os.File) error {
		reader, err := d.newReader(f)
		if err != nil {
			return err
		}
		for i := 0; ; i++ {
			if i%1024 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			recStrings, err := reader.Read()
			if err == io.EOF {
				return nil
			} else if err != nil {
				return err
			}
			rec := partition.CreateRecord(d.schema)
			if err := scanRecord(d.conf, names, colTypes, recStrings, rec); err != nil {
				return err
			}
			if err := fn(rec); err != nil {
				return err
			}
		}
	})
}

// newReader creates a csv Reader, skipping header lines
func (d *Dataset) newReader(r io.Reader) (*csv.Reader, error) {
	reader := csv.NewReader(r)
	reader.Comma = d.conf.Delimiter
	reader.Comment = d.conf.Comment
	reader.FieldsPerRecord = d.schema.NumColumns()
	reader.ReuseRecord = true
	// ignore header lines, if configured to do so
	for i := 0; i < d.conf.HeaderLines; i++ {
		if _, err := reader.Read(); err != nil {
			return nil, err
		}
	}
	return reader, nil
}
