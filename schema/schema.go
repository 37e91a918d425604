package schema

import (
	"fmt"

	"github.com/go-sif/splitmerge"
	"github.com/go-sif/splitmerge/errors"
)

// column describes the position and type of a field in a Record.
type column struct {
	idx     int
	colType splitmerge.ColumnType
}

// Clone returns a copy of this Column
func (c *column) Clone() splitmerge.Column {
	return &column{c.idx, c.colType}
}

// Index returns the index of this Column within a Schema
func (c *column) Index() int {
	return c.idx
}

// SetIndex modifies the index of this Column within a Schema
func (c *column) SetIndex(newIndex int) {
	c.idx = newIndex
}

// Type returns the ColumnType of this Column
func (c *column) Type() splitmerge.ColumnType {
	return c.colType
}

// schema is an ordered mapping from column names to Columns.
type schema struct {
	schema map[string]splitmerge.Column
	names  []string // in index order
}

// CreateSchema is a factory for Schemas
func CreateSchema() splitmerge.Schema {
	return &schema{
		schema: make(map[string]splitmerge.Column),
		names:  make([]string, 0),
	}
}

// Equals returns nil iff this and another Schema have the same column names, in the same order, with the same types
func (s *schema) Equals(otherSchema splitmerge.Schema) error {
	if otherSchema == nil {
		return fmt.Errorf("Schema is nil")
	}
	if s.NumColumns() != otherSchema.NumColumns() {
		return fmt.Errorf("Schemas have unequal numbers of columns (%d and %d)", s.NumColumns(), otherSchema.NumColumns())
	}
	otherNames := otherSchema.ColumnNames()
	otherTypes := otherSchema.ColumnTypes()
	for i, name := range s.names {
		if name != otherNames[i] {
			return fmt.Errorf("Column %d is named %s in one Schema and %s in the other", i, name, otherNames[i])
		}
		if !splitmerge.ColumnTypesEqual(s.schema[name].Type(), otherTypes[i]) {
			return fmt.Errorf("Column %s types do not match (%T and %T)", name, s.schema[name].Type(), otherTypes[i])
		}
	}
	return nil
}

// Clone returns a copy of this Schema
func (s *schema) Clone() splitmerge.Schema {
	newSchema := make(map[string]splitmerge.Column, len(s.schema))
	for k, v := range s.schema {
		newSchema[k] = v.Clone()
	}
	names := make([]string, len(s.names))
	copy(names, s.names)
	return &schema{schema: newSchema, names: names}
}

// NumColumns returns the number of columns in this Schema
func (s *schema) NumColumns() int {
	return len(s.names)
}

// GetColumn returns the Column with a particular name
func (s *schema) GetColumn(colName string) (col splitmerge.Column, err error) {
	col, ok := s.schema[colName]
	if !ok {
		err = errors.MissingColumnError{Name: colName}
	}
	return
}

// HasColumn returns true iff this schema contains a column with the given name
func (s *schema) HasColumn(colName string) bool {
	_, ok := s.schema[colName]
	return ok
}

// CreateColumn defines a new column at the end of the Schema
func (s *schema) CreateColumn(colName string, columnType splitmerge.ColumnType) (newSchema splitmerge.Schema, err error) {
	if columnType == nil {
		return nil, fmt.Errorf("Column %s must have a type", colName)
	}
	if _, containsColumn := s.schema[colName]; containsColumn {
		return nil, fmt.Errorf("Schema already contains column with name %s", colName)
	}
	s.schema[colName] = &column{len(s.names), columnType}
	s.names = append(s.names, colName)
	return s, nil
}

// RenameColumn renames a column within the Schema, keeping its position
func (s *schema) RenameColumn(oldName string, newName string) (newSchema splitmerge.Schema, err error) {
	col, err := s.GetColumn(oldName)
	if err != nil {
		return nil, err
	}
	if s.HasColumn(newName) {
		return nil, fmt.Errorf("Schema already contains column with name %s", newName)
	}
	s.schema[newName] = col
	delete(s.schema, oldName)
	s.names[col.Index()] = newName
	return s, nil
}

// RemoveColumn removes a column from the Schema, shifting later columns down
func (s *schema) RemoveColumn(colName string) (splitmerge.Schema, bool) {
	col, ok := s.schema[colName]
	if !ok {
		return s, false
	}
	delete(s.schema, colName)
	s.names = append(s.names[:col.Index()], s.names[col.Index()+1:]...)
	for i := col.Index(); i < len(s.names); i++ {
		s.schema[s.names[i]].SetIndex(i)
	}
	return s, true
}

// ColumnNames returns the names in the schema, in index order
func (s *schema) ColumnNames() []string {
	names := make([]string, len(s.names))
	copy(names, s.names)
	return names
}

// ColumnTypes returns the types in the schema, in index order
func (s *schema) ColumnTypes() []splitmerge.ColumnType {
	types := make([]splitmerge.ColumnType, len(s.names))
	for i, name := range s.names {
		types[i] = s.schema[name].Type()
	}
	return types
}

// ForEachColumn iterates over the columns in this Schema, in index order
func (s *schema) ForEachColumn(fn func(name string, col splitmerge.Column) error) error {
	for _, name := range s.names {
		if err := fn(name, s.schema[name]); err != nil {
			return err
		}
	}
	return nil
}
