package partition

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/go-sif/splitmerge"
	errors "github.com/go-sif/splitmerge/errors"
	"github.com/go-sif/splitmerge/schema"
	"github.com/stretchr/testify/require"
)

func createRecordTestSchema() splitmerge.Schema {
	schema := schema.CreateSchema()
	schema.CreateColumn("OBJECTID", &splitmerge.Int64ColumnType{})
	schema.CreateColumn("name", &splitmerge.StringColumnType{Length: 8})
	schema.CreateColumn("value", &splitmerge.Float64ColumnType{})
	schema.CreateColumn("created", &splitmerge.TimeColumnType{Format: "2006-01-02"})
	schema.CreateColumn("shape", &splitmerge.GeometryColumnType{})
	return schema
}

func TestGetSetInt32(t *testing.T) {
	schema := schema.CreateSchema()
	_, err := schema.CreateColumn("col1", &splitmerge.Int32ColumnType{})
	require.Nil(t, err)
	rec := CreateRecord(schema)
	for i := int32(-128); i < int32(128); i++ {
		require.Nil(t, rec.SetInt32("col1", i))
		v, err := rec.GetInt32("col1")
		require.Nil(t, err)
		require.Equal(t, i, v)
	}
}

func TestNewRecordIsNil(t *testing.T) {
	rec := CreateRecord(createRecordTestSchema())
	require.True(t, rec.IsNil("OBJECTID"))
	_, err := rec.GetInt64("OBJECTID")
	var nilErr errors.NilValueError
	require.True(t, stderrors.As(err, &nilErr))
	require.Equal(t, "OBJECTID", nilErr.Name)
	require.Nil(t, rec.SetInt64("OBJECTID", 12))
	require.False(t, rec.IsNil("OBJECTID"))
	require.Nil(t, rec.SetNil("OBJECTID"))
	require.True(t, rec.IsNil("OBJECTID"))
}

func TestSetRejectsTypeDrift(t *testing.T) {
	rec := CreateRecord(createRecordTestSchema())
	require.NotNil(t, rec.Set("OBJECTID", int32(1)))
	require.NotNil(t, rec.Set("value", "1.5"))
	require.NotNil(t, rec.SetString("name", "much too long"))
	require.Nil(t, rec.SetString("name", "short"))
	require.NotNil(t, rec.Set("missing", int64(1)))
}

func TestTime(t *testing.T) {
	rec := CreateRecord(createRecordTestSchema())
	v := time.Date(2020, 3, 14, 0, 0, 0, 0, time.UTC)
	require.Nil(t, rec.SetTime("created", v))
	res, err := rec.GetTime("created")
	require.Nil(t, err)
	require.True(t, v.Equal(res))
	require.Contains(t, rec.ToString(), "2020-03-14")
}

func TestCreateRecordFromValues(t *testing.T) {
	schema := createRecordTestSchema()
	shape := []byte{1, 2, 3}
	rec, err := CreateRecordFromValues(schema, []interface{}{int64(1), "a", 2.5, nil, shape})
	require.Nil(t, err)
	require.True(t, rec.IsNil("created"))
	// blobs are copied
	shape[0] = 9
	blob, err := rec.GetGeometry("shape")
	require.Nil(t, err)
	require.Equal(t, []byte{1, 2, 3}, blob)

	_, err = CreateRecordFromValues(schema, []interface{}{int64(1)})
	var incompatible errors.IncompatibleRecordError
	require.True(t, stderrors.As(err, &incompatible))
	require.Equal(t, 5, incompatible.Expected)
	require.Equal(t, 1, incompatible.Actual)

	_, err = CreateRecordFromValues(schema, []interface{}{"1", "a", 2.5, nil, shape})
	require.NotNil(t, err)
}

func TestCloneIsIndependent(t *testing.T) {
	schema := createRecordTestSchema()
	rec, err := CreateRecordFromValues(schema, []interface{}{int64(1), "a", 2.5, nil, []byte{7}})
	require.Nil(t, err)
	clone := rec.Clone()
	require.Nil(t, clone.SetInt64("OBJECTID", 2))
	blob, _ := clone.GetGeometry("shape")
	blob[0] = 8
	id, _ := rec.GetInt64("OBJECTID")
	require.Equal(t, int64(1), id)
	orig, _ := rec.GetGeometry("shape")
	require.Equal(t, []byte{7}, orig)
}

func TestConform(t *testing.T) {
	s1 := createRecordTestSchema()
	s2 := createRecordTestSchema()
	rec, err := CreateRecordFromValues(s1, []interface{}{int64(1), "a", 2.5, nil, nil})
	require.Nil(t, err)
	conformed, err := Conform(s2, rec)
	require.Nil(t, err)
	require.Equal(t, s2, conformed.Schema())
	require.Equal(t, rec.Values(), conformed.Values())

	narrow := schema.CreateSchema()
	narrow.CreateColumn("OBJECTID", &splitmerge.Int64ColumnType{})
	_, err = Conform(narrow, rec)
	require.NotNil(t, err)
}
