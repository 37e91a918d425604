package dsv

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/go-sif/splitmerge"
)

// ParserConf configures how DSV files are read and written
type ParserConf struct {
	HeaderLines int    // The number of lines to ignore from the beginning of each file. Defaults to 0.
	Delimiter   rune   // The delimiter separating columns in the file. Defaults to ,
	Comment     rune   // Lines beginning with the comment character are ignored. Cannot be equal to the Delimiter. Defaults to no comment character.
	NilValue    string // A special string which represents nil values in the dataset. Defaults to "" (the empty string).
}

func (conf *ParserConf) withDefaults() *ParserConf {
	if conf == nil {
		conf = &ParserConf{}
	}
	if conf.Delimiter == 0 {
		conf.Delimiter = ','
	}
	return conf
}

// Parses a slice of strings into a Record, according to its Schema
func scanRecord(conf *ParserConf, names []string, colTypes []splitmerge.ColumnType, recStrings []string, rec splitmerge.Record) error {
	for i := 0; i < len(recStrings); i++ {
		colVal := recStrings[i]
		// check for a nil value
		if len(colVal) == 0 || colVal == conf.NilValue {
			rec.SetNil(names[i])
			continue
		}
		// otherwise, parse type
		var err error
		switch colType := colTypes[i].(type) {
		case *splitmerge.BoolColumnType:
			bval, perr := strconv.ParseBool(colVal)
			if perr != nil {
				return perr
			}
			err = rec.SetBool(names[i], bval)
		case *splitmerge.Int32ColumnType:
			ival, perr := strconv.ParseInt(colVal, 10, 32)
			if perr != nil {
				return perr
			}
			err = rec.SetInt32(names[i], int32(ival))
		case *splitmerge.Int64ColumnType:
			ival, perr := strconv.ParseInt(colVal, 10, 64)
			if perr != nil {
				return perr
			}
			err = rec.SetInt64(names[i], ival)
		case *splitmerge.Float32ColumnType:
			fval, perr := strconv.ParseFloat(colVal, 32)
			if perr != nil {
				return perr
			}
			err = rec.SetFloat32(names[i], float32(fval))
		case *splitmerge.Float64ColumnType:
			fval, perr := strconv.ParseFloat(colVal, 64)
			if perr != nil {
				return perr
			}
			err = rec.SetFloat64(names[i], fval)
		case *splitmerge.StringColumnType, *splitmerge.VarStringColumnType:
			err = rec.SetString(names[i], colVal)
		case *splitmerge.TimeColumnType:
			tval, perr := time.Parse(colType.Format, colVal)
			if perr != nil {
				return fmt.Errorf("Column %s could not be parsed as datetime with format %s. Was: %#v", names[i], colType.Format, colVal)
			}
			err = rec.SetTime(names[i], tval)
		case *splitmerge.GeometryColumnType:
			blob, perr := hex.DecodeString(colVal)
			if perr != nil {
				return fmt.Errorf("Column %s is not a hex-encoded geometry: %w", names[i], perr)
			}
			err = rec.SetGeometry(names[i], blob)
		default:
			return fmt.Errorf("DSV parsing does not support column type %T", colTypes[i])
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Formats every value of a Record as a string, according to its Schema
func formatRecord(conf *ParserConf, colTypes []splitmerge.ColumnType, rec splitmerge.Record, out []string) error {
	for i, v := range rec.Values() {
		if v == nil {
			out[i] = conf.NilValue
			continue
		}
		switch colType := colTypes[i].(type) {
		case *splitmerge.BoolColumnType:
			out[i] = strconv.FormatBool(v.(bool))
		case *splitmerge.Int32ColumnType:
			out[i] = strconv.FormatInt(int64(v.(int32)), 10)
		case *splitmerge.Int64ColumnType:
			out[i] = strconv.FormatInt(v.(int64), 10)
		case *splitmerge.Float32ColumnType:
			out[i] = strconv.FormatFloat(float64(v.(float32)), 'g', -1, 32)
		case *splitmerge.Float64ColumnType:
			out[i] = strconv.FormatFloat(v.(float64), 'g', -1, 64)
		case *splitmerge.StringColumnType, *splitmerge.VarStringColumnType:
			out[i] = v.(string)
		case *splitmerge.TimeColumnType:
			out[i] = v.(time.Time).Format(colType.Format)
		case *splitmerge.GeometryColumnType:
			out[i] = hex.EncodeToString(v.([]byte))
		default:
			return fmt.Errorf("DSV writing does not support column type %T", colTypes[i])
		}
	}
	return nil
}
