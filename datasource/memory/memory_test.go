package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-sif/splitmerge"
	"github.com/go-sif/splitmerge/schema"
)

func TestMemoryRoundTrip(t *testing.T) {
	schema := schema.CreateSchema()
	schema.CreateColumn("name", &splitmerge.VarStringColumnType{})
	schema.CreateColumn("count", &splitmerge.Int32ColumnType{})
	ds, err := CreateDatasetFromValues("in", schema, [][]interface{}{
		{"a", int32(1)},
		{"b", nil},
	})
	require.Nil(t, err)
	require.Equal(t, "in", ds.Name())

	out := CreateOutput("out")
	w, err := out.Create(schema)
	require.Nil(t, err)
	_, err = out.Create(schema)
	require.NotNil(t, err)
	err = ds.Scan(context.Background(), func(rec splitmerge.Record) error {
		return w.Write(rec)
	})
	require.Nil(t, err)
	require.Nil(t, out.Records())
	_, err = out.Dataset()
	require.NotNil(t, err)
	require.Nil(t, w.Commit())
	require.True(t, out.IsCommitted())
	require.Len(t, out.Records(), 2)
	require.True(t, out.Records()[1].IsNil("count"))

	copied, err := out.Dataset()
	require.Nil(t, err)
	count, err := copied.Count()
	require.Nil(t, err)
	require.Equal(t, 2, count)

	_, err = CreateDatasetFromValues("bad", schema, [][]interface{}{{"a"}})
	require.NotNil(t, err)
}

func TestAbortedOutputHasNoRecords(t *testing.T) {
	schema := schema.CreateSchema()
	schema.CreateColumn("n", &splitmerge.Int64ColumnType{})
	ds, err := CreateDatasetFromValues("in", schema, [][]interface{}{{int64(1)}})
	require.Nil(t, err)
	out := CreateOutput("out")
	w, err := out.Create(schema)
	require.Nil(t, err)
	ds.Scan(context.Background(), func(rec splitmerge.Record) error {
		return w.Write(rec)
	})
	require.Nil(t, w.Abort())
	require.False(t, out.IsCommitted())
	require.Nil(t, out.Records())
}
