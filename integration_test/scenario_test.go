package integration_test

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/go-sif/splitmerge"
	"github.com/go-sif/splitmerge/datasource/memory"
	"github.com/go-sif/splitmerge/errors"
	"github.com/go-sif/splitmerge/operations/transform"
	"github.com/go-sif/splitmerge/pipeline"
	"github.com/go-sif/splitmerge/schema"
	smtest "github.com/go-sif/splitmerge/testing"
	"github.com/go-sif/splitmerge/testing/local"
)

func TestSevenRecordsTwoPartitions(t *testing.T) {
	defer goleak.VerifyNone(t)
	input, err := smtest.CreateSequenceDataset("seven", 7)
	require.Nil(t, err)
	out, res, err := local.RunTransform(context.Background(), input, transform.Identity(), local.CreateConf(2, 0))
	require.Nil(t, err)
	require.Equal(t, []splitmerge.Bounds{{ID: 1, Start: 0, Count: 3}, {ID: 2, Start: 3, Count: 4}}, res.Bounds)
	require.Equal(t, 7, res.InputRecords)
	require.Equal(t, 7, res.OutputRecords)
	ds, err := out.Dataset()
	require.Nil(t, err)
	ids, err := smtest.CollectInt64(context.Background(), ds, "OBJECTID")
	require.Nil(t, err)
	require.Equal(t, []int64{0, 1, 2, 3, 4, 5, 6}, ids)
	require.Equal(t, int64(2), res.Stats.GetNumPartitionsProcessed())
}

func TestMillionRecordsAddOne(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping large dataset in short mode")
	}
	schema := schema.CreateSchema()
	schema.CreateColumn("value", &splitmerge.Int64ColumnType{})
	const n = 1000000
	input := smtest.CreateGeneratedDataset("million", schema, n, func(i int) []interface{} {
		return []interface{}{int64(i)}
	})
	addOne := transform.Transform(transform.Map(func(rec splitmerge.Record) error {
		v, err := rec.GetInt64("value")
		if err != nil {
			return err
		}
		return rec.SetInt64("value", v+1)
	}))
	out := smtest.CreateCheckingOutput("million_out", func(i int, rec splitmerge.Record) error {
		v, err := rec.GetInt64("value")
		if err != nil {
			return err
		}
		if v != int64(i+1) {
			return fmt.Errorf("record %d has value %d, expected %d", i, v, i+1)
		}
		return nil
	})
	p, err := pipeline.Create(addOne, local.CreateConf(2, 2))
	require.Nil(t, err)
	res, err := p.Run(context.Background(), input, out)
	require.Nil(t, err)
	require.True(t, out.IsCommitted())
	require.Equal(t, n, out.NumWritten())
	require.Equal(t, n, res.OutputRecords)
	require.Equal(t, 500000, res.Bounds[0].Count)
	require.Equal(t, 500000, res.Bounds[1].Count)
}

func TestSchemaDriftWritesNothing(t *testing.T) {
	defer goleak.VerifyNone(t)
	input, err := smtest.CreateSequenceDataset("drift", 40)
	require.Nil(t, err)
	// partition 2 gains an extra column
	drift := func(ctx context.Context, in splitmerge.Partition, out splitmerge.OutputDataset) error {
		if in.ID() == 2 {
			return transform.Transform(transform.WithColumn("extra", &splitmerge.BoolColumnType{}))(ctx, in, out)
		}
		return transform.Identity()(ctx, in, out)
	}
	out, _, err := local.RunTransform(context.Background(), input, drift, local.CreateConf(4, 2))
	var mismatch errors.SchemaMismatchError
	require.True(t, stderrors.As(err, &mismatch))
	require.Equal(t, 2, mismatch.PartitionID)
	require.False(t, out.IsCreated())
	require.Nil(t, out.Records())
}

func TestSequentialFailFast(t *testing.T) {
	defer goleak.VerifyNone(t)
	input, err := smtest.CreateSequenceDataset("failfast", 40)
	require.Nil(t, err)
	invoked := make([]int, 0)
	fn := func(ctx context.Context, in splitmerge.Partition, out splitmerge.OutputDataset) error {
		invoked = append(invoked, in.ID())
		if in.ID() == 2 {
			return fmt.Errorf("partition 2 is broken")
		}
		return transform.Identity()(ctx, in, out)
	}
	out, res, err := local.RunTransform(context.Background(), input, fn, local.CreateConf(4, 0))
	var taskErr errors.PartitionTaskError
	require.True(t, stderrors.As(err, &taskErr))
	require.Equal(t, 2, taskErr.PartitionID)
	require.Equal(t, []int{1, 2}, invoked)
	require.False(t, out.IsCreated())
	require.Equal(t, int64(1), res.Stats.GetNumPartitionsFailed())
}

func TestJoinHundredRecords(t *testing.T) {
	defer goleak.VerifyNone(t)
	keys := make([]interface{}, 100)
	for i := range keys {
		keys[i] = fmt.Sprintf("F%03d", i)
	}
	input, err := smtest.CreateKeyedDataset("structures", "SAP_FLOC_ID", "name", keys, func(i int) string {
		return fmt.Sprintf("structure %d", i)
	})
	require.Nil(t, err)
	// the target holds every third key, and 27 keys which match nothing
	targetKeys := make([]interface{}, 0)
	for i := 0; i < 180; i += 3 {
		targetKeys = append(targetKeys, fmt.Sprintf("F%03d", i))
	}
	for i := 0; i < 27; i++ {
		targetKeys = append(targetKeys, fmt.Sprintf("X%03d", i))
	}
	target, err := smtest.CreateKeyedDataset("assets", "Floc", "asset", targetKeys, func(i int) string {
		return fmt.Sprintf("asset %d", i)
	})
	require.Nil(t, err)

	out, unmatched, res, err := local.RunJoin(context.Background(), input, target, "SAP_FLOC_ID", "Floc", local.CreateConf(4, 4))
	require.Nil(t, err)
	require.Equal(t, 100, res.Summary.TotalInput)
	require.Equal(t, 34, res.Summary.TotalMatched)
	require.InDelta(t, 34.0, res.Summary.MatchPercentage(), 0.0001)
	require.Len(t, out.Records(), 100)
	require.Equal(t, []string{"SAP_FLOC_ID", "name", "asset"}, out.Schema().ColumnNames())
	require.Len(t, unmatched.Records(), 66)
	first, err := unmatched.Records()[0].GetString("Floc")
	require.Nil(t, err)
	require.Equal(t, "F001", first)
}

func TestJoinSixtyOfHundred(t *testing.T) {
	defer goleak.VerifyNone(t)
	keys := make([]interface{}, 100)
	for i := range keys {
		keys[i] = fmt.Sprintf("K%d", i)
	}
	input, err := smtest.CreateKeyedDataset("left", "key", "name", keys, func(i int) string { return "left" })
	require.Nil(t, err)
	target, err := smtest.CreateKeyedDataset("right", "key", "name", keys[:60], func(i int) string { return "right" })
	require.Nil(t, err)
	out, unmatched, res, err := local.RunJoin(context.Background(), input, target, "key", "key", local.CreateConf(3, 0))
	require.Nil(t, err)
	require.Equal(t, 60, res.Summary.TotalMatched)
	require.InDelta(t, 60.0, res.Summary.MatchPercentage(), 0.0001)
	require.Equal(t, []string{"key", "name", "name_1"}, out.Schema().ColumnNames())
	require.Len(t, unmatched.Records(), 40)
	for i, rec := range out.Records() {
		right, err := rec.GetString("name_1")
		if i < 60 {
			require.Nil(t, err)
			require.Equal(t, "right", right)
		} else {
			require.True(t, rec.IsNil("name_1"))
		}
	}
}

func TestJoinTables(t *testing.T) {
	tables := make([]splitmerge.Dataset, 3)
	for i := range tables {
		keys := []interface{}{fmt.Sprintf("K%d", i), fmt.Sprintf("K%d", i+10)}
		table, err := smtest.CreateKeyedDataset(fmt.Sprintf("table_%d", i), "key", "name", keys, func(j int) string { return "left" })
		require.Nil(t, err)
		tables[i] = table
	}
	target, err := smtest.CreateKeyedDataset("right", "Floc", "asset", []interface{}{"K0", "K1", "K2"}, func(i int) string { return "asset" })
	require.Nil(t, err)
	p, err := pipeline.CreateJoin(target, "key", "Floc", local.CreateConf(1, 2))
	require.Nil(t, err)
	out := memory.CreateOutput("joined")
	res, err := p.RunTables(context.Background(), tables, out)
	require.Nil(t, err)
	require.Equal(t, 6, res.InputRecords)
	require.Equal(t, 3, res.Summary.TotalMatched)
	require.Equal(t, []string{"K10", "K11", "K12"}, res.Summary.UnmatchedKeys)
	require.Len(t, out.Records(), 6)
}
