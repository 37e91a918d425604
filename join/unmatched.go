package join

import (
	"github.com/go-sif/splitmerge"
	"github.com/go-sif/splitmerge/internal/partition"
	"github.com/go-sif/splitmerge/schema"
)

// WriteUnmatched exports unmatched keys, in order, as a single string column named keyColumn
func WriteUnmatched(keys []string, keyColumn string, output splitmerge.OutputDataset) error {
	schema := schema.CreateSchema()
	if _, err := schema.CreateColumn(keyColumn, &splitmerge.VarStringColumnType{}); err != nil {
		return err
	}
	w, err := output.Create(schema)
	if err != nil {
		return err
	}
	for _, key := range keys {
		rec, err := partition.CreateRecordFromValues(schema, []interface{}{key})
		if err != nil {
			w.Abort()
			return err
		}
		if err := w.Write(rec); err != nil {
			w.Abort()
			return err
		}
	}
	return w.Commit()
}
