// Package jsonl reads JSON Lines files. Rows are parsed with https://github.com/tidwall/gjson,
// and Schema column names may be gjson paths.
package jsonl

import (
	"bufio"
	"context"
	"os"
	"strings"

	"github.com/go-sif/splitmerge"
	"github.com/go-sif/splitmerge/datasource"
	"github.com/go-sif/splitmerge/internal/partition"
	"github.com/tidwall/gjson"
)

// Dataset is a Dataset backed by one or more JSON Lines files, read in name order
type Dataset struct {
	glob   string
	files  []string
	schema splitmerge.Schema
	conf   *ParserConf
	count  datasource.CountCache
}

// CreateDataset is a factory for JSON Lines Datasets. Values within the JSON which
// do not correspond to a Schema column are ignored.
func CreateDataset(glob string, schema splitmerge.Schema, conf *ParserConf) (*Dataset, error) {
	files, err := datasource.MatchFiles(glob)
	if err != nil {
		return nil, err
	}
	if conf == nil {
		conf = &ParserConf{}
	}
	if conf.MaxBufferSize == 0 {
		conf.MaxBufferSize = bufio.MaxScanTokenSize
	}
	return &Dataset{glob: glob, files: files, schema: schema, conf: conf}, nil
}

// Name returns the glob this Dataset was created from
func (d *Dataset) Name() string {
	return d.glob
}

// Schema returns the Schema of this Dataset
func (d *Dataset) Schema() splitmerge.Schema {
	return d.schema
}

// Count reads every file once to count its rows
func (d *Dataset) Count() (int, error) {
	return d.count.Get(func() (int, error) {
		n := 0
		err := d.forEachLine(context.Background(), func(line string) error {
			n++
			return nil
		})
		return n, err
	})
}

// Scan parses every row in order
func (d *Dataset) Scan(ctx context.Context, fn func(rec splitmerge.Record) error) error {
	names := d.schema.ColumnNames()
	colTypes := d.schema.ColumnTypes()
	i := 0
	return d.forEachLine(ctx, func(line string) error {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		i++
		rec := partition.CreateRecord(d.schema)
		if err := ParseJSONRow(names, colTypes, gjson.Parse(line), rec); err != nil {
			return err
		}
		return fn(rec)
	})
}

// forEachLine visits each non-blank, non-comment line following the header lines of every file
func (d *Dataset) forEachLine(ctx context.Context, fn func(line string) error) error {
	return datasource.ForEachFile(ctx, d.files, func(path string, f *os.File) error {
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), d.conf.MaxBufferSize)
		// ignore header lines, if configured to do so
		for i := 0; i < d.conf.HeaderLines; i++ {
			if !scanner.Scan() {
				return scanner.Err()
			}
		}
		for scanner.Scan() {
			line := scanner.Text()
			trimmed := strings.TrimSpace(line)
			if len(trimmed) == 0 {
				continue
			}
			if d.conf.Comment != 0 && strings.HasPrefix(trimmed, string(d.conf.Comment)) {
				continue
			}
			if err := fn(line); err != nil {
				return err
			}
		}
		return scanner.Err()
	})
}
