package util

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-sif/splitmerge"
	"github.com/go-sif/splitmerge/accumulators"
	"github.com/go-sif/splitmerge/datasource/memory"
	"github.com/go-sif/splitmerge/internal/partition"
	"github.com/go-sif/splitmerge/operations/transform"
	"github.com/go-sif/splitmerge/schema"
)

func TestAccumulatePerPartition(t *testing.T) {
	schema := schema.CreateSchema()
	schema.CreateColumn("n", &splitmerge.Int64ColumnType{})
	step, accumulated := Accumulate(accumulators.Compose(accumulators.Counter, accumulators.Adder("n")))
	fn := transform.Transform(step)
	for id := 1; id <= 3; id++ {
		records := make([]splitmerge.Record, 0)
		for i := 0; i < id; i++ {
			rec, err := partition.CreateRecordFromValues(schema, []interface{}{int64(id)})
			require.Nil(t, err)
			records = append(records, rec)
		}
		in := partition.CreateBuffer(id, fmt.Sprintf("split_%d", id), schema, records)
		out := memory.CreateOutput(fmt.Sprintf("out_%d", id))
		require.Nil(t, fn(context.Background(), in, out))
		require.Len(t, out.Records(), id)
	}
	res, err := accumulated.Result()
	require.Nil(t, err)
	parts := res.(*accumulators.Composed).GetResults()
	require.Equal(t, int64(6), parts[0].(*accumulators.Count).GetCount())
	require.Equal(t, float64(1+4+9), parts[1].(*accumulators.Sum).GetSum())
}
