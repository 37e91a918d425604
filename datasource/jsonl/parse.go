package jsonl

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/go-sif/splitmerge"
	"github.com/tidwall/gjson"
)

// ParserConf configures how JSON Lines files are read
type ParserConf struct {
	HeaderLines   int  // The number of lines to ignore from the beginning of each file. Defaults to 0.
	Comment       rune // Lines beginning with the comment character are ignored. Defaults to no comment character.
	MaxBufferSize int  // The maximum size of a single line, in bytes. Defaults to bufio.MaxScanTokenSize.
}

// ParseJSONRow fills rec from a parsed line of JSON. Each column name is used as a gjson path.
// Missing and null values are nil.
func ParseJSONRow(colNames []string, colTypes []splitmerge.ColumnType, parsed gjson.Result, rec splitmerge.Record) error {
	for i, name := range colNames {
		val := parsed.Get(name)
		if !val.Exists() || val.Type == gjson.Null {
			if err := rec.SetNil(name); err != nil {
				return err
			}
			continue
		}
		var err error
		switch colType := colTypes[i].(type) {
		case *splitmerge.BoolColumnType:
			if val.Type != gjson.True && val.Type != gjson.False {
				return fmt.Errorf("Column %s is not a boolean. Was: %s", name, val.Raw)
			}
			err = rec.SetBool(name, val.Bool())
		case *splitmerge.Int32ColumnType:
			if val.Type != gjson.Number {
				return fmt.Errorf("Column %s is not a number. Was: %s", name, val.Raw)
			}
			err = rec.SetInt32(name, int32(val.Int()))
		case *splitmerge.Int64ColumnType:
			if val.Type != gjson.Number {
				return fmt.Errorf("Column %s is not a number. Was: %s", name, val.Raw)
			}
			err = rec.SetInt64(name, val.Int())
		case *splitmerge.Float32ColumnType:
			if val.Type != gjson.Number {
				return fmt.Errorf("Column %s is not a number. Was: %s", name, val.Raw)
			}
			err = rec.SetFloat32(name, float32(val.Float()))
		case *splitmerge.Float64ColumnType:
			if val.Type != gjson.Number {
				return fmt.Errorf("Column %s is not a number. Was: %s", name, val.Raw)
			}
			err = rec.SetFloat64(name, val.Float())
		case *splitmerge.StringColumnType, *splitmerge.VarStringColumnType:
			// objects and arrays are kept as raw JSON
			if val.Type == gjson.String {
				err = rec.SetString(name, val.String())
			} else {
				err = rec.SetString(name, val.Raw)
			}
		case *splitmerge.TimeColumnType:
			tval, perr := time.Parse(colType.Format, val.String())
			if perr != nil {
				return fmt.Errorf("Column %s could not be parsed as datetime with format %s. Was: %s", name, colType.Format, val.Raw)
			}
			err = rec.SetTime(name, tval)
		case *splitmerge.GeometryColumnType:
			blob, perr := base64.StdEncoding.DecodeString(val.String())
			if perr != nil {
				return fmt.Errorf("Column %s is not a base64-encoded geometry: %w", name, perr)
			}
			err = rec.SetGeometry(name, blob)
		default:
			return fmt.Errorf("JSONL parsing does not support column type %T", colTypes[i])
		}
		if err != nil {
			return err
		}
	}
	return nil
}
