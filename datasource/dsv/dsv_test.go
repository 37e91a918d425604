package dsv

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/go-sif/splitmerge"
	"github.com/go-sif/splitmerge/schema"
)

func createTestSchema() splitmerge.Schema {
	s := schema.CreateSchema()
	s.CreateColumn("id", &splitmerge.Int64ColumnType{})
	s.CreateColumn("name", &splitmerge.VarStringColumnType{})
	s.CreateColumn("score", &splitmerge.Float32ColumnType{})
	s.CreateColumn("active", &splitmerge.BoolColumnType{})
	s.CreateColumn("seen", &splitmerge.TimeColumnType{Format: "2006-01-02"})
	return s
}

func TestScanDSV(t *testing.T) {
	dir := t.TempDir()
	require.Nil(t, ioutil.WriteFile(filepath.Join(dir, "b.csv"), []byte("id|name|score|active|seen\n3|c|0.5|false|2021-03-01\n"), 0644))
	require.Nil(t, ioutil.WriteFile(filepath.Join(dir, "a.csv"), []byte("id|name|score|active|seen\n1|a|1.5|true|2021-01-01\n#skip\n2|null||true|null\n"), 0644))

	ds, err := CreateDataset(filepath.Join(dir, "*.csv"), createTestSchema(), &ParserConf{
		HeaderLines: 1,
		Delimiter:   '|',
		Comment:     '#',
		NilValue:    "null",
	})
	require.Nil(t, err)
	count, err := ds.Count()
	require.Nil(t, err)
	require.Equal(t, 3, count)

	var records []splitmerge.Record
	err = ds.Scan(context.Background(), func(rec splitmerge.Record) error {
		records = append(records, rec.Clone())
		return nil
	})
	require.Nil(t, err)
	require.Len(t, records, 3)
	require.Equal(t, []interface{}{int64(1), "a", float32(1.5), true, time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)}, records[0].Values())
	require.True(t, records[1].IsNil("name"))
	require.True(t, records[1].IsNil("score"))
	require.True(t, records[1].IsNil("seen"))
	id, err := records[2].GetInt64("id")
	require.Nil(t, err)
	require.Equal(t, int64(3), id)
}

func TestScanDSVParseError(t *testing.T) {
	dir := t.TempDir()
	require.Nil(t, ioutil.WriteFile(filepath.Join(dir, "a.csv"), []byte("x,a,1,true,2021-01-01\n"), 0644))
	ds, err := CreateDataset(filepath.Join(dir, "a.csv"), createTestSchema(), nil)
	require.Nil(t, err)
	err = ds.Scan(context.Background(), func(rec splitmerge.Record) error { return nil })
	require.NotNil(t, err)
}

func TestOutputRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.csv")
	require.Nil(t, ioutil.WriteFile(in, []byte("1,a,1.5,true,2021-01-01\n2,,,false,\n"), 0644))
	ds, err := CreateDataset(in, createTestSchema(), nil)
	require.Nil(t, err)

	path := filepath.Join(dir, "out.csv")
	out := CreateOutput(path, nil, true)
	w, err := out.Create(ds.Schema())
	require.Nil(t, err)
	_, err = out.Create(ds.Schema())
	require.NotNil(t, err)
	require.Nil(t, ds.Scan(context.Background(), w.Write))
	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
	require.Nil(t, w.Commit())

	contents, err := ioutil.ReadFile(path)
	require.Nil(t, err)
	require.Equal(t, "id,name,score,active,seen\n1,a,1.5,true,2021-01-01\n2,,,false,\n", string(contents))
}

func TestOutputAbort(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")
	out := CreateOutput(path, nil, false)
	w, err := out.Create(createTestSchema())
	require.Nil(t, err)
	require.Nil(t, w.Abort())
	entries, err := ioutil.ReadDir(dir)
	require.Nil(t, err)
	require.Empty(t, entries)
}
