package partition

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/go-sif/splitmerge"
	"github.com/stretchr/testify/require"
)

func createCodecTestRecords(t *testing.T, schema splitmerge.Schema, n int) []splitmerge.Record {
	records := make([]splitmerge.Record, n)
	for i := 0; i < n; i++ {
		var shape interface{}
		if i%3 == 0 {
			shape = []byte{byte(i), 1, 2, 3}
		}
		rec, err := CreateRecordFromValues(schema, []interface{}{
			int64(i),
			"rec",
			float64(i) / 2,
			time.Date(2021, 1, 1+i%28, 0, 0, 0, 0, time.UTC),
			shape,
		})
		require.Nil(t, err)
		records[i] = rec
	}
	return records
}

func TestRecordCodecRoundTrip(t *testing.T) {
	schema := createRecordTestSchema()
	records := createCodecTestRecords(t, schema, 100)
	for _, name := range []string{"lz4", "zstd", "none"} {
		t.Run(name, func(t *testing.T) {
			compressor, err := CreateCompressor(name)
			require.Nil(t, err)
			require.Equal(t, name, compressor.Name())

			var buf bytes.Buffer
			cw, err := compressor.NewWriter(&buf)
			require.Nil(t, err)
			enc := NewRecordEncoder(cw, schema)
			for _, rec := range records {
				require.Nil(t, enc.Encode(rec))
			}
			require.Nil(t, enc.Flush())
			require.Nil(t, cw.Close())

			cr, err := compressor.NewReader(&buf)
			require.Nil(t, err)
			defer cr.Close()
			dec := NewRecordDecoder(cr, schema)
			for i := 0; ; i++ {
				rec, err := dec.Decode()
				if err == io.EOF {
					require.Equal(t, len(records), i)
					break
				}
				require.Nil(t, err)
				require.Equal(t, records[i].Values()[0:3], rec.Values()[0:3])
				require.Equal(t, records[i].IsNil("shape"), rec.IsNil("shape"))
				expectedTime, _ := records[i].GetTime("created")
				actualTime, err := rec.GetTime("created")
				require.Nil(t, err)
				require.True(t, expectedTime.Equal(actualTime))
			}
		})
	}
}

func TestDecodeTruncated(t *testing.T) {
	schema := createRecordTestSchema()
	records := createCodecTestRecords(t, schema, 2)
	var buf bytes.Buffer
	enc := NewRecordEncoder(&buf, schema)
	for _, rec := range records {
		require.Nil(t, enc.Encode(rec))
	}
	require.Nil(t, enc.Flush())
	data := buf.Bytes()[:buf.Len()-2]
	dec := NewRecordDecoder(bytes.NewReader(data), schema)
	_, err := dec.Decode()
	require.Nil(t, err)
	_, err = dec.Decode()
	require.Equal(t, io.ErrUnexpectedEOF, err)
}

func TestUnknownCompressor(t *testing.T) {
	_, err := CreateCompressor("gzip")
	require.NotNil(t, err)
}

func TestBufferWriter(t *testing.T) {
	schema := createRecordTestSchema()
	records := createCodecTestRecords(t, schema, 10)
	var committed splitmerge.Partition
	w := CreateBufferWriter(schema, nil, func(recs []splitmerge.Record) error {
		committed = CreateBuffer(3, "buf", schema, recs)
		return nil
	}, nil)
	for _, rec := range records {
		require.Nil(t, w.Write(rec))
	}
	require.Nil(t, committed)
	require.Nil(t, w.Commit())
	require.NotNil(t, w.Write(records[0]))
	require.Equal(t, 3, committed.ID())
	require.Equal(t, 10, committed.NumRecords())

	i := int64(0)
	err := committed.Scan(context.Background(), func(rec splitmerge.Record) error {
		id, err := rec.GetInt64("OBJECTID")
		require.Nil(t, err)
		require.Equal(t, i, id)
		i++
		return nil
	})
	require.Nil(t, err)

	aborted := false
	w = CreateBufferWriter(schema, nil, func(recs []splitmerge.Record) error {
		t.Fatal("aborted writer must not commit")
		return nil
	}, func() { aborted = true })
	require.Nil(t, w.Write(records[0]))
	require.Nil(t, w.Abort())
	require.True(t, aborted)
}
