package join

import (
	"context"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/go-sif/splitmerge"
	errors "github.com/go-sif/splitmerge/errors"
)

// CanonicalKey returns the form in which join keys are compared, so that keys
// stored in columns of different types (e.g. int64 and string) may still match
func CanonicalKey(v interface{}) string {
	switch k := v.(type) {
	case string:
		return k
	case []byte:
		return hex.EncodeToString(k)
	case time.Time:
		return k.UTC().Format(time.RFC3339Nano)
	case float32:
		return strconv.FormatFloat(float64(k), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(k, 'g', -1, 64)
	default:
		return fmt.Sprint(k)
	}
}

// Index is a read-only lookup table over a join target, keyed by the canonical
// form of its key column. It may be shared by any number of goroutines once built.
type Index struct {
	keyColumn string
	columns   []int // columns holds the indices of the non-key target columns, in order
	rows      map[string][]interface{}
	size      int
}

// BuildIndex scans target once, keeping the first Record seen for each key.
// Records with a nil key are not indexed.
func BuildIndex(ctx context.Context, target splitmerge.Dataset, keyColumn string) (*Index, error) {
	schema := target.Schema()
	keyCol, err := schema.GetColumn(keyColumn)
	if err != nil {
		return nil, errors.MissingColumnError{Name: keyColumn}
	}
	idx := &Index{
		keyColumn: keyColumn,
		columns:   make([]int, 0, schema.NumColumns()-1),
		rows:      make(map[string][]interface{}),
	}
	schema.ForEachColumn(func(name string, col splitmerge.Column) error {
		if name != keyColumn {
			idx.columns = append(idx.columns, col.Index())
		}
		return nil
	})
	err = target.Scan(ctx, func(rec splitmerge.Record) error {
		idx.size++
		values := rec.Values()
		key := values[keyCol.Index()]
		if key == nil {
			return nil
		}
		canonical := CanonicalKey(key)
		if _, ok := idx.rows[canonical]; ok {
			return nil
		}
		row := make([]interface{}, len(idx.columns))
		for i, c := range idx.columns {
			row[i] = values[c]
		}
		idx.rows[canonical] = row
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("Unable to index join target %s: %w", target.Name(), err)
	}
	return idx, nil
}

// Lookup returns the non-key values of the target Record with the given canonical key
func (idx *Index) Lookup(key string) ([]interface{}, bool) {
	row, ok := idx.rows[key]
	return row, ok
}

// NumKeys returns the number of distinct keys in the Index
func (idx *Index) NumKeys() int {
	return len(idx.rows)
}

// NumRecords returns the number of target Records scanned while building the Index
func (idx *Index) NumRecords() int {
	return idx.size
}

// NumColumns returns the number of non-key target columns
func (idx *Index) NumColumns() int {
	return len(idx.columns)
}
