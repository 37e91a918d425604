package partition

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-sif/splitmerge"
)

// A record is encoded as, for each column in index order: a meta byte, and
// (when the value is not nil) a uvarint length followed by the serialized value.

// RecordEncoder writes Records to a stream
type RecordEncoder struct {
	w      *bufio.Writer
	types  []splitmerge.ColumnType
	lenBuf []byte
}

// NewRecordEncoder creates a RecordEncoder for Records with the given Schema
func NewRecordEncoder(w io.Writer, schema splitmerge.Schema) *RecordEncoder {
	return &RecordEncoder{
		w:      bufio.NewWriter(w),
		types:  schema.ColumnTypes(),
		lenBuf: make([]byte, binary.MaxVarintLen64),
	}
}

// Encode writes a single Record
func (e *RecordEncoder) Encode(rec splitmerge.Record) error {
	values := rec.Values()
	if len(values) != len(e.types) {
		return fmt.Errorf("Record has %d values, expected %d", len(values), len(e.types))
	}
	for i, v := range values {
		if v == nil {
			if err := e.w.WriteByte(colValueIsNilFlag); err != nil {
				return err
			}
			continue
		}
		if err := e.w.WriteByte(0); err != nil {
			return err
		}
		data, err := e.types[i].Serialize(v)
		if err != nil {
			return err
		}
		n := binary.PutUvarint(e.lenBuf, uint64(len(data)))
		if _, err := e.w.Write(e.lenBuf[:n]); err != nil {
			return err
		}
		if _, err := e.w.Write(data); err != nil {
			return err
		}
	}
	return nil
}

// Flush writes any buffered data to the underlying writer
func (e *RecordEncoder) Flush() error {
	return e.w.Flush()
}

// RecordDecoder reads Records from a stream
type RecordDecoder struct {
	r      *bufio.Reader
	schema splitmerge.Schema
	types  []splitmerge.ColumnType
}

// NewRecordDecoder creates a RecordDecoder for Records with the given Schema
func NewRecordDecoder(r io.Reader, schema splitmerge.Schema) *RecordDecoder {
	return &RecordDecoder{
		r:      bufio.NewReader(r),
		schema: schema,
		types:  schema.ColumnTypes(),
	}
}

// Decode reads a single Record, returning io.EOF when the stream is exhausted
func (d *RecordDecoder) Decode() (splitmerge.Record, error) {
	rec := CreateRecord(d.schema).(*recordImpl)
	for i := range d.types {
		meta, err := d.r.ReadByte()
		if err == io.EOF && i == 0 {
			return nil, io.EOF
		} else if err != nil {
			return nil, unexpected(err)
		}
		if meta&colValueIsNilFlag > 0 {
			continue
		}
		size, err := binary.ReadUvarint(d.r)
		if err != nil {
			return nil, unexpected(err)
		}
		data := make([]byte, size)
		if _, err := io.ReadFull(d.r, data); err != nil {
			return nil, unexpected(err)
		}
		v, err := d.types[i].Deserialize(data)
		if err != nil {
			return nil, err
		}
		rec.values[i] = v
		rec.meta[i] = meta
	}
	return rec, nil
}

func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
