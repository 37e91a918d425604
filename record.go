package splitmerge

import "time"

// Record is a representation of a single record of tabular data,
// along with a reference to the Schema for that record. Values are
// checked against the Schema whenever they are set, so type drift is
// detected where it happens rather than at merge time.
type Record interface {
	Schema() Schema                                     // Schema returns the schema for a record
	ToString() string                                   // ToString returns a string representation of this record
	Values() []interface{}                              // Values returns the record's values in column order (nil for nil values)
	Clone() Record                                      // Clone returns a deep copy of this Record
	IsNil(colName string) bool                          // IsNil returns true iff the given column value is nil in this record. If an error occurs, this function will return false.
	SetNil(colName string) error                        // SetNil sets the given column value to nil within this record
	Get(colName string) (col interface{}, err error)    // Get returns the value of any column as an interface{}, if it exists
	Set(colName string, value interface{}) (err error)  // Set stores any value in a column, if it is compatible with the column's type
	GetBool(colName string) (col bool, err error)       // GetBool retrieves a single bool from the column with the given name
	GetInt32(colName string) (col int32, err error)     // GetInt32 retrieves a single int32 from the column with the given name
	GetInt64(colName string) (col int64, err error)     // GetInt64 retrieves a single int64 from the column with the given name
	GetFloat32(colName string) (col float32, err error) // GetFloat32 retrieves a single float32 from the column with the given name
	GetFloat64(colName string) (col float64, err error) // GetFloat64 retrieves a single float64 from the column with the given name
	GetTime(colName string) (col time.Time, err error)  // GetTime retrieves a single Time from the column with the given name
	GetString(colName string) (col string, err error)   // GetString retrieves a string from a fixed-length or variable-length string column
	GetGeometry(colName string) (col []byte, err error) // GetGeometry retrieves an opaque geometry blob from the column with the given name
	SetBool(colName string, value bool) error           // SetBool modifies a single bool in the column with the given name
	SetInt32(colName string, value int32) error         // SetInt32 modifies a single int32 in the column with the given name
	SetInt64(colName string, value int64) error         // SetInt64 modifies a single int64 in the column with the given name
	SetFloat32(colName string, value float32) error     // SetFloat32 modifies a single float32 in the column with the given name
	SetFloat64(colName string, value float64) error     // SetFloat64 modifies a single float64 in the column with the given name
	SetTime(colName string, value time.Time) error      // SetTime modifies a single Time in the column with the given name
	SetString(colName string, value string) error       // SetString modifies a string in a fixed-length or variable-length string column
	SetGeometry(colName string, value []byte) error     // SetGeometry modifies an opaque geometry blob in the column with the given name
}
