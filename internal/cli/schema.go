package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-sif/splitmerge"
	"github.com/go-sif/splitmerge/schema"
)

// ParseSchema builds a Schema from a comma-separated list of name:type pairs, such as
// "id:int64,name:string(16),created:time(2006-01-02)". Supported types are bool, int32, int64,
// float32, float64, string(length), varstring, time(layout) and geometry.
func ParseSchema(def string) (splitmerge.Schema, error) {
	s := schema.CreateSchema()
	if strings.TrimSpace(def) == "" {
		return nil, fmt.Errorf("schema must contain at least one column")
	}
	for _, field := range splitFields(def) {
		parts := strings.SplitN(field, ":", 2)
		if len(parts) != 2 || parts[0] == "" {
			return nil, fmt.Errorf("column %q must be formatted as name:type", field)
		}
		colType, err := parseColumnType(parts[1])
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", parts[0], err)
		}
		if _, err := s.CreateColumn(strings.TrimSpace(parts[0]), colType); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// splitFields splits on commas which are not inside parentheses
func splitFields(def string) []string {
	var fields []string
	depth, start := 0, 0
	for i, c := range def {
		switch c {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				fields = append(fields, strings.TrimSpace(def[start:i]))
				start = i + 1
			}
		}
	}
	return append(fields, strings.TrimSpace(def[start:]))
}

func parseColumnType(def string) (splitmerge.ColumnType, error) {
	def = strings.TrimSpace(def)
	name, arg := def, ""
	if open := strings.Index(def, "("); open >= 0 {
		if !strings.HasSuffix(def, ")") {
			return nil, fmt.Errorf("unterminated type argument in %q", def)
		}
		name, arg = def[:open], def[open+1:len(def)-1]
	}
	switch strings.ToLower(name) {
	case "bool":
		return &splitmerge.BoolColumnType{}, nil
	case "int32":
		return &splitmerge.Int32ColumnType{}, nil
	case "int64":
		return &splitmerge.Int64ColumnType{}, nil
	case "float32":
		return &splitmerge.Float32ColumnType{}, nil
	case "float64":
		return &splitmerge.Float64ColumnType{}, nil
	case "string":
		length, err := strconv.Atoi(arg)
		if err != nil || length <= 0 {
			return nil, fmt.Errorf("string columns require a positive length, e.g. string(16)")
		}
		return &splitmerge.StringColumnType{Length: length}, nil
	case "varstring":
		return &splitmerge.VarStringColumnType{}, nil
	case "time":
		if arg == "" {
			return nil, fmt.Errorf("time columns require a layout, e.g. time(2006-01-02)")
		}
		return &splitmerge.TimeColumnType{Format: arg}, nil
	case "geometry":
		return &splitmerge.GeometryColumnType{}, nil
	default:
		return nil, fmt.Errorf("unknown column type %q", name)
	}
}
