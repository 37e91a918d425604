package splitmerge

// Schema is an ordered mapping from field names to typed Columns.
// It allows one to obtain columns by name, define new columns,
// remove columns, etc. Field order is significant.
type Schema interface {
	Equals(otherSchema Schema) error // Equals returns nil iff both Schemas have the same column names, order and types
	Clone() Schema
	NumColumns() int
	GetColumn(colName string) (col Column, err error)
	HasColumn(colName string) bool
	CreateColumn(colName string, columnType ColumnType) (newSchema Schema, err error)
	RenameColumn(oldName string, newName string) (newSchema Schema, err error)
	RemoveColumn(colName string) (newSchema Schema, wasRemoved bool)
	ColumnNames() []string
	ColumnTypes() []ColumnType
	ForEachColumn(fn func(name string, col Column) error) error // ForEachColumn iterates over columns in index order
}
