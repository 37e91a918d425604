package splitmerge

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"time"
)

// IsVariableLength returns true iff colType is a VarColumnType
func IsVariableLength(colType ColumnType) (isVariableLength bool) {
	_, isVariableLength = colType.(VarColumnType)
	return
}

// ColumnTypesEqual returns true iff a and b describe the same kind of column
func ColumnTypesEqual(a ColumnType, b ColumnType) bool {
	if a == nil || b == nil {
		return a == b
	}
	if fmt.Sprintf("%T", a) != fmt.Sprintf("%T", b) {
		return false
	}
	if a.Size() != b.Size() {
		return false
	}
	if at, ok := a.(*TimeColumnType); ok {
		return at.Format == b.(*TimeColumnType).Format
	}
	return true
}

// ColumnType is an interface which is implemented to define supported column types.
// Values are stored in Records as the Go type documented on each ColumnType.
type ColumnType interface {
	Size() int                               // returns size in bytes of a column type, or 0 for variable-length types
	ToString(v interface{}) string           // produces a string representation of a value of this type
	Validate(v interface{}) error            // checks that v is a legal value for this type
	Serialize(v interface{}) ([]byte, error) // Defines how this type is serialized
	Deserialize([]byte) (interface{}, error) // Defines how this type is deserialized
}

// VarColumnType marks a ColumnType whose values do not have a fixed width.
type VarColumnType interface {
	ColumnType
	IsVariableLength() bool
}

func typeError(colType ColumnType, v interface{}) error {
	return fmt.Errorf("value %#v (%T) is incompatible with column type %T", v, v, colType)
}

// BoolColumnType is a column type which stores a bool value
type BoolColumnType struct{}

// Size in bytes of a BoolColumn
func (b *BoolColumnType) Size() int {
	return 1
}

// ToString produces a string representation of a BoolColumnType value
func (b *BoolColumnType) ToString(v interface{}) string {
	return fmt.Sprintf("%t", v.(bool))
}

// Validate checks that v is a bool
func (b *BoolColumnType) Validate(v interface{}) error {
	if _, ok := v.(bool); !ok {
		return typeError(b, v)
	}
	return nil
}

// Serialize serializes a BoolColumnType value to binary data
func (b *BoolColumnType) Serialize(v interface{}) ([]byte, error) {
	if v.(bool) {
		return []byte{1}, nil
	}
	return []byte{0}, nil
}

// Deserialize deserializes a BoolColumnType value from binary data
func (b *BoolColumnType) Deserialize(ser []byte) (interface{}, error) {
	if len(ser) != 1 {
		return nil, fmt.Errorf("bool value must be 1 byte, was %d", len(ser))
	}
	return ser[0] == 1, nil
}

// Int32ColumnType is a column type which stores an int32 value
type Int32ColumnType struct{}

// Size in bytes of an Int32Column
func (b *Int32ColumnType) Size() int {
	return 4
}

// ToString produces a string representation of an Int32ColumnType value
func (b *Int32ColumnType) ToString(v interface{}) string {
	return fmt.Sprintf("%d", v.(int32))
}

// Validate checks that v is an int32
func (b *Int32ColumnType) Validate(v interface{}) error {
	if _, ok := v.(int32); !ok {
		return typeError(b, v)
	}
	return nil
}

// Serialize serializes an Int32ColumnType value to binary data
func (b *Int32ColumnType) Serialize(v interface{}) ([]byte, error) {
	buff := make([]byte, 4)
	binary.LittleEndian.PutUint32(buff, uint32(v.(int32)))
	return buff, nil
}

// Deserialize deserializes an Int32ColumnType value from binary data
func (b *Int32ColumnType) Deserialize(ser []byte) (interface{}, error) {
	if len(ser) != 4 {
		return nil, fmt.Errorf("int32 value must be 4 bytes, was %d", len(ser))
	}
	return int32(binary.LittleEndian.Uint32(ser)), nil
}

// Int64ColumnType is a column type which stores an int64 value
type Int64ColumnType struct{}

// Size in bytes of an Int64Column
func (b *Int64ColumnType) Size() int {
	return 8
}

// ToString produces a string representation of an Int64ColumnType value
func (b *Int64ColumnType) ToString(v interface{}) string {
	return fmt.Sprintf("%d", v.(int64))
}

// Validate checks that v is an int64
func (b *Int64ColumnType) Validate(v interface{}) error {
	if _, ok := v.(int64); !ok {
		return typeError(b, v)
	}
	return nil
}

// Serialize serializes an Int64ColumnType value to binary data
func (b *Int64ColumnType) Serialize(v interface{}) ([]byte, error) {
	buff := make([]byte, 8)
	binary.LittleEndian.PutUint64(buff, uint64(v.(int64)))
	return buff, nil
}

// Deserialize deserializes an Int64ColumnType value from binary data
func (b *Int64ColumnType) Deserialize(ser []byte) (interface{}, error) {
	if len(ser) != 8 {
		return nil, fmt.Errorf("int64 value must be 8 bytes, was %d", len(ser))
	}
	return int64(binary.LittleEndian.Uint64(ser)), nil
}

// Float32ColumnType is a column type which stores a float32 value
type Float32ColumnType struct{}

// Size in bytes of a Float32Column
func (b *Float32ColumnType) Size() int {
	return 4
}

// ToString produces a string representation of a Float32ColumnType value
func (b *Float32ColumnType) ToString(v interface{}) string {
	return fmt.Sprintf("%f", v.(float32))
}

// Validate checks that v is a float32
func (b *Float32ColumnType) Validate(v interface{}) error {
	if _, ok := v.(float32); !ok {
		return typeError(b, v)
	}
	return nil
}

// Serialize serializes a Float32ColumnType value to binary data
func (b *Float32ColumnType) Serialize(v interface{}) ([]byte, error) {
	buff := make([]byte, 4)
	binary.LittleEndian.PutUint32(buff, math.Float32bits(v.(float32)))
	return buff, nil
}

// Deserialize deserializes a Float32ColumnType value from binary data
func (b *Float32ColumnType) Deserialize(ser []byte) (interface{}, error) {
	if len(ser) != 4 {
		return nil, fmt.Errorf("float32 value must be 4 bytes, was %d", len(ser))
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(ser)), nil
}

// Float64ColumnType is a column type which stores a float64 value
type Float64ColumnType struct{}

// Size in bytes of a Float64Column
func (b *Float64ColumnType) Size() int {
	return 8
}

// ToString produces a string representation of a Float64ColumnType value
func (b *Float64ColumnType) ToString(v interface{}) string {
	return fmt.Sprintf("%f", v.(float64))
}

// Validate checks that v is a float64
func (b *Float64ColumnType) Validate(v interface{}) error {
	if _, ok := v.(float64); !ok {
		return typeError(b, v)
	}
	return nil
}

// Serialize serializes a Float64ColumnType value to binary data
func (b *Float64ColumnType) Serialize(v interface{}) ([]byte, error) {
	buff := make([]byte, 8)
	binary.LittleEndian.PutUint64(buff, math.Float64bits(v.(float64)))
	return buff, nil
}

// Deserialize deserializes a Float64ColumnType value from binary data
func (b *Float64ColumnType) Deserialize(ser []byte) (interface{}, error) {
	if len(ser) != 8 {
		return nil, fmt.Errorf("float64 value must be 8 bytes, was %d", len(ser))
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(ser)), nil
}

// StringColumnType is a column type which stores strings with a maximum length in bytes.
type StringColumnType struct {
	Length int
}

// Size in bytes of a StringColumn
func (b *StringColumnType) Size() int {
	return b.Length
}

// ToString produces a string representation of a StringColumnType value
func (b *StringColumnType) ToString(v interface{}) string {
	return fmt.Sprintf("\"%s\"", v.(string))
}

// Validate checks that v is a string no longer than Length
func (b *StringColumnType) Validate(v interface{}) error {
	s, ok := v.(string)
	if !ok {
		return typeError(b, v)
	}
	if len(s) > b.Length {
		return fmt.Errorf("string of length %d exceeds column length %d", len(s), b.Length)
	}
	return nil
}

// Serialize serializes a StringColumnType value to binary data
func (b *StringColumnType) Serialize(v interface{}) ([]byte, error) {
	return []byte(v.(string)), nil
}

// Deserialize deserializes a StringColumnType value from binary data
func (b *StringColumnType) Deserialize(ser []byte) (interface{}, error) {
	return string(ser), nil
}

// VarStringColumnType is a column type which stores a variable-length string value
type VarStringColumnType struct{}

// Size in bytes of a VarStringColumn
func (b *VarStringColumnType) Size() int {
	return 0
}

// IsVariableLength marks VarStringColumnType as a VarColumnType
func (b *VarStringColumnType) IsVariableLength() bool {
	return true
}

// ToString produces a string representation of a VarStringColumnType value
func (b *VarStringColumnType) ToString(v interface{}) string {
	return fmt.Sprintf("\"%s\"", v.(string))
}

// Validate checks that v is a string
func (b *VarStringColumnType) Validate(v interface{}) error {
	if _, ok := v.(string); !ok {
		return typeError(b, v)
	}
	return nil
}

// Serialize serializes a VarStringColumnType value to binary data
func (b *VarStringColumnType) Serialize(v interface{}) ([]byte, error) {
	return []byte(v.(string)), nil
}

// Deserialize deserializes a VarStringColumnType value from binary data
func (b *VarStringColumnType) Deserialize(ser []byte) (interface{}, error) {
	return string(ser), nil
}

// TimeColumnType is a column type which stores a time.Time value. Format is used when
// parsing and printing values. Times are serialized with nanosecond precision in UTC.
type TimeColumnType struct {
	Format string
}

// Size in bytes of a TimeColumn
func (b *TimeColumnType) Size() int {
	return 15
}

// ToString produces a string representation of a TimeColumnType value
func (b *TimeColumnType) ToString(v interface{}) string {
	if b.Format != "" {
		return fmt.Sprintf("\"%s\"", v.(time.Time).Format(b.Format))
	}
	return fmt.Sprintf("\"%s\"", v.(time.Time).String())
}

// Validate checks that v is a time.Time
func (b *TimeColumnType) Validate(v interface{}) error {
	if _, ok := v.(time.Time); !ok {
		return typeError(b, v)
	}
	return nil
}

// Serialize serializes a TimeColumnType value to binary data
func (b *TimeColumnType) Serialize(v interface{}) ([]byte, error) {
	return v.(time.Time).MarshalBinary()
}

// Deserialize deserializes a TimeColumnType value from binary data
func (b *TimeColumnType) Deserialize(ser []byte) (interface{}, error) {
	var t time.Time
	if err := t.UnmarshalBinary(ser); err != nil {
		return nil, err
	}
	return t, nil
}

// GeometryColumnType is a column type which stores an opaque geometry blob. The pipeline
// never interprets geometry; it is copied byte for byte.
type GeometryColumnType struct{}

// Size in bytes of a GeometryColumn
func (b *GeometryColumnType) Size() int {
	return 0
}

// IsVariableLength marks GeometryColumnType as a VarColumnType
func (b *GeometryColumnType) IsVariableLength() bool {
	return true
}

// ToString produces a string representation of a GeometryColumnType value
func (b *GeometryColumnType) ToString(v interface{}) string {
	bytes := v.([]byte)
	var res strings.Builder
	fmt.Fprint(&res, "[")
	for i, v := range bytes {
		// don't print more than 6 entries
		if i > 5 {
			fmt.Fprintf(&res, "... %d more", len(bytes)-6)
			break
		}
		fmt.Fprintf(&res, "%x", v)
	}
	fmt.Fprint(&res, "]")
	return res.String()
}

// Validate checks that v is a []byte
func (b *GeometryColumnType) Validate(v interface{}) error {
	if _, ok := v.([]byte); !ok {
		return typeError(b, v)
	}
	return nil
}

// Serialize serializes a GeometryColumnType value to binary data
func (b *GeometryColumnType) Serialize(v interface{}) ([]byte, error) {
	return v.([]byte), nil
}

// Deserialize deserializes a GeometryColumnType value from binary data
func (b *GeometryColumnType) Deserialize(ser []byte) (interface{}, error) {
	blob := make([]byte, len(ser))
	copy(blob, ser)
	return blob, nil
}
