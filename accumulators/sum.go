package accumulators

import (
	"fmt"

	"github.com/go-sif/splitmerge"
)

// Adder returns a factory for Sum Accumulators over a numeric column
func Adder(colName string) splitmerge.AccumulatorFactory {
	return func() splitmerge.RecordAccumulator {
		return &Sum{colName: colName}
	}
}

// Sum sums the values of a numeric column. nil values are skipped.
type Sum struct {
	colName string
	sum     float64
}

// GetSum returns the sum from this Accumulator
func (a *Sum) GetSum() float64 {
	return a.sum
}

// Accumulate adds a Record to this Accumulator
func (a *Sum) Accumulate(rec splitmerge.Record) error {
	col, err := rec.Schema().GetColumn(a.colName)
	if err != nil {
		return err
	}
	if rec.IsNil(a.colName) {
		return nil
	}
	switch col.Type().(type) {
	case *splitmerge.Int32ColumnType:
		v, err := rec.GetInt32(a.colName)
		if err != nil {
			return err
		}
		a.sum += float64(v)
	case *splitmerge.Int64ColumnType:
		v, err := rec.GetInt64(a.colName)
		if err != nil {
			return err
		}
		a.sum += float64(v)
	case *splitmerge.Float32ColumnType:
		v, err := rec.GetFloat32(a.colName)
		if err != nil {
			return err
		}
		a.sum += float64(v)
	case *splitmerge.Float64ColumnType:
		v, err := rec.GetFloat64(a.colName)
		if err != nil {
			return err
		}
		a.sum += v
	default:
		return fmt.Errorf("Cannot sum column %s of type %T", a.colName, col.Type())
	}
	return nil
}

// Merge merges another Accumulator into this one
func (a *Sum) Merge(o splitmerge.Accumulator) error {
	ca, ok := o.(*Sum)
	if !ok {
		return fmt.Errorf("Incoming accumulator is not a Sum Accumulator")
	}
	a.sum += ca.sum
	return nil
}
