package partition

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-sif/splitmerge"
	errors "github.com/go-sif/splitmerge/errors"
)

const (
	colValueIsNilFlag = 1 << iota
)

// recordImpl is a representation of a single record of tabular data,
// along with a reference to the Schema for that record. Values are stored
// in column order, and meta holds per-column flags (currently only nil-ness).
type recordImpl struct {
	meta   []byte
	values []interface{}
	schema splitmerge.Schema
}

// CreateRecord builds a new record with every value set to nil
func CreateRecord(schema splitmerge.Schema) splitmerge.Record {
	r := &recordImpl{
		meta:   make([]byte, schema.NumColumns()),
		values: make([]interface{}, schema.NumColumns()),
		schema: schema,
	}
	for i := range r.meta {
		r.meta[i] = colValueIsNilFlag
	}
	return r
}

// CreateRecordFromValues builds a new record from values in column order. nil values are stored as nil.
func CreateRecordFromValues(schema splitmerge.Schema, values []interface{}) (splitmerge.Record, error) {
	if len(values) != schema.NumColumns() {
		return nil, errors.IncompatibleRecordError{Expected: schema.NumColumns(), Actual: len(values)}
	}
	r := CreateRecord(schema).(*recordImpl)
	types := schema.ColumnTypes()
	for i, v := range values {
		if v == nil {
			continue
		}
		if err := types[i].Validate(v); err != nil {
			return nil, fmt.Errorf("column %s: %w", schema.ColumnNames()[i], err)
		}
		if blob, ok := v.([]byte); ok {
			cp := make([]byte, len(blob))
			copy(cp, blob)
			v = cp
		}
		r.values[i] = v
		r.meta[i] = r.meta[i] &^ colValueIsNilFlag
	}
	return r, nil
}

// Schema returns the schema for a record
func (r *recordImpl) Schema() splitmerge.Schema {
	return r.schema
}

// ToString returns a string representation of this record
func (r *recordImpl) ToString() string {
	var res strings.Builder
	fmt.Fprint(&res, "{")
	r.schema.ForEachColumn(func(name string, col splitmerge.Column) error {
		val := "nil"
		if r.meta[col.Index()]&colValueIsNilFlag == 0 {
			val = col.Type().ToString(r.values[col.Index()])
		}
		fmt.Fprintf(&res, "\"%s\": %s,", name, val)
		return nil
	})
	fmt.Fprint(&res, "}")
	return res.String()
}

// Values returns the record's values in column order
func (r *recordImpl) Values() []interface{} {
	values := make([]interface{}, len(r.values))
	for i, v := range r.values {
		if r.meta[i]&colValueIsNilFlag == 0 {
			values[i] = v
		}
	}
	return values
}

// Clone returns a deep copy of this Record
func (r *recordImpl) Clone() splitmerge.Record {
	meta := make([]byte, len(r.meta))
	copy(meta, r.meta)
	values := make([]interface{}, len(r.values))
	for i, v := range r.values {
		if blob, ok := v.([]byte); ok {
			cp := make([]byte, len(blob))
			copy(cp, blob)
			values[i] = cp
		} else {
			values[i] = v
		}
	}
	return &recordImpl{meta: meta, values: values, schema: r.schema}
}

// IsNil returns true iff the given column value is nil in this record. If an error occurs, this function will return false.
func (r *recordImpl) IsNil(colName string) bool {
	col, err := r.schema.GetColumn(colName)
	if err != nil {
		return false
	}
	return r.meta[col.Index()]&colValueIsNilFlag > 0
}

// SetNil sets the given column value to nil within this record
func (r *recordImpl) SetNil(colName string) error {
	col, err := r.schema.GetColumn(colName)
	if err != nil {
		return err
	}
	r.meta[col.Index()] = r.meta[col.Index()] | colValueIsNilFlag
	r.values[col.Index()] = nil
	return nil
}

// Get returns the value of any column as an interface{}, if it exists
func (r *recordImpl) Get(colName string) (interface{}, error) {
	col, err := r.schema.GetColumn(colName)
	if err != nil {
		return nil, err
	}
	if r.meta[col.Index()]&colValueIsNilFlag > 0 {
		return nil, errors.NilValueError{Name: colName}
	}
	return r.values[col.Index()], nil
}

// Set stores any value in a column, if it is compatible with the column's type
func (r *recordImpl) Set(colName string, value interface{}) error {
	if value == nil {
		return r.SetNil(colName)
	}
	col, err := r.schema.GetColumn(colName)
	if err != nil {
		return err
	}
	if err := col.Type().Validate(value); err != nil {
		return fmt.Errorf("column %s: %w", colName, err)
	}
	r.values[col.Index()] = value
	r.meta[col.Index()] = r.meta[col.Index()] &^ colValueIsNilFlag
	return nil
}

// GetBool retrieves a single bool from the column with the given name
func (r *recordImpl) GetBool(colName string) (bool, error) {
	v, err := r.Get(colName)
	if err != nil {
		return false, err
	}
	bval, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("column %s is not a bool column", colName)
	}
	return bval, nil
}

// GetInt32 retrieves a single int32 from the column with the given name
func (r *recordImpl) GetInt32(colName string) (int32, error) {
	v, err := r.Get(colName)
	if err != nil {
		return 0, err
	}
	ival, ok := v.(int32)
	if !ok {
		return 0, fmt.Errorf("column %s is not an int32 column", colName)
	}
	return ival, nil
}

// GetInt64 retrieves a single int64 from the column with the given name
func (r *recordImpl) GetInt64(colName string) (int64, error) {
	v, err := r.Get(colName)
	if err != nil {
		return 0, err
	}
	ival, ok := v.(int64)
	if !ok {
		return 0, fmt.Errorf("column %s is not an int64 column", colName)
	}
	return ival, nil
}

// GetFloat32 retrieves a single float32 from the column with the given name
func (r *recordImpl) GetFloat32(colName string) (float32, error) {
	v, err := r.Get(colName)
	if err != nil {
		return 0, err
	}
	fval, ok := v.(float32)
	if !ok {
		return 0, fmt.Errorf("column %s is not a float32 column", colName)
	}
	return fval, nil
}

// GetFloat64 retrieves a single float64 from the column with the given name
func (r *recordImpl) GetFloat64(colName string) (float64, error) {
	v, err := r.Get(colName)
	if err != nil {
		return 0, err
	}
	fval, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("column %s is not a float64 column", colName)
	}
	return fval, nil
}

// GetTime retrieves a single Time from the column with the given name
func (r *recordImpl) GetTime(colName string) (time.Time, error) {
	v, err := r.Get(colName)
	if err != nil {
		return time.Time{}, err
	}
	tval, ok := v.(time.Time)
	if !ok {
		return time.Time{}, fmt.Errorf("column %s is not a time column", colName)
	}
	return tval, nil
}

// GetString retrieves a string from a fixed-length or variable-length string column
func (r *recordImpl) GetString(colName string) (string, error) {
	v, err := r.Get(colName)
	if err != nil {
		return "", err
	}
	sval, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("column %s is not a string column", colName)
	}
	return sval, nil
}

// GetGeometry retrieves an opaque geometry blob from the column with the given name
func (r *recordImpl) GetGeometry(colName string) ([]byte, error) {
	v, err := r.Get(colName)
	if err != nil {
		return nil, err
	}
	blob, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("column %s is not a geometry column", colName)
	}
	return blob, nil
}

// SetBool modifies a single bool in the column with the given name
func (r *recordImpl) SetBool(colName string, value bool) error {
	return r.Set(colName, value)
}

// SetInt32 modifies a single int32 in the column with the given name
func (r *recordImpl) SetInt32(colName string, value int32) error {
	return r.Set(colName, value)
}

// SetInt64 modifies a single int64 in the column with the given name
func (r *recordImpl) SetInt64(colName string, value int64) error {
	return r.Set(colName, value)
}

// SetFloat32 modifies a single float32 in the column with the given name
func (r *recordImpl) SetFloat32(colName string, value float32) error {
	return r.Set(colName, value)
}

// SetFloat64 modifies a single float64 in the column with the given name
func (r *recordImpl) SetFloat64(colName string, value float64) error {
	return r.Set(colName, value)
}

// SetTime modifies a single Time in the column with the given name
func (r *recordImpl) SetTime(colName string, value time.Time) error {
	return r.Set(colName, value)
}

// SetString modifies a string in a fixed-length or variable-length string column
func (r *recordImpl) SetString(colName string, value string) error {
	return r.Set(colName, value)
}

// SetGeometry modifies an opaque geometry blob in the column with the given name
func (r *recordImpl) SetGeometry(colName string, value []byte) error {
	if value == nil {
		return r.SetNil(colName)
	}
	return r.Set(colName, value)
}

// Conform copies a Record from another source into a fresh record with the given Schema.
// The source must have the same number of values as the schema has columns, and every
// value must be compatible with the corresponding column.
func Conform(schema splitmerge.Schema, rec splitmerge.Record) (splitmerge.Record, error) {
	if impl, ok := rec.(*recordImpl); ok && impl.schema == schema {
		return impl.Clone(), nil
	}
	return CreateRecordFromValues(schema, rec.Values())
}
