package join

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/go-sif/splitmerge"
	memds "github.com/go-sif/splitmerge/datasource/memory"
	errors "github.com/go-sif/splitmerge/errors"
	"github.com/go-sif/splitmerge/partition"
	"github.com/go-sif/splitmerge/schema"
	memws "github.com/go-sif/splitmerge/workspace/memory"
)

func createLeft(t *testing.T, keys []interface{}) splitmerge.Dataset {
	schema := schema.CreateSchema()
	schema.CreateColumn("FLOC", &splitmerge.VarStringColumnType{})
	schema.CreateColumn("name", &splitmerge.VarStringColumnType{})
	rows := make([][]interface{}, len(keys))
	for i, key := range keys {
		rows[i] = []interface{}{key, fmt.Sprintf("left %d", i)}
	}
	ds, err := memds.CreateDatasetFromValues("left", schema, rows)
	require.Nil(t, err)
	return ds
}

func createTarget(t *testing.T, n int) splitmerge.Dataset {
	schema := schema.CreateSchema()
	schema.CreateColumn("Floc", &splitmerge.VarStringColumnType{})
	schema.CreateColumn("name", &splitmerge.VarStringColumnType{})
	schema.CreateColumn("rank", &splitmerge.Int64ColumnType{})
	rows := make([][]interface{}, 0, n+1)
	for i := 0; i < n; i++ {
		rows = append(rows, []interface{}{fmt.Sprintf("K%d", i), fmt.Sprintf("right %d", i), int64(i)})
	}
	// a duplicate key never replaces the first match
	rows = append(rows, []interface{}{"K0", "duplicate", int64(-1)})
	ds, err := memds.CreateDatasetFromValues("target", schema, rows)
	require.Nil(t, err)
	return ds
}

func split(t *testing.T, ws splitmerge.Workspace, input splitmerge.Dataset, n int) []splitmerge.Partition {
	total, err := input.Count()
	require.Nil(t, err)
	bounds, err := partition.Assign(total, n)
	require.Nil(t, err)
	parts, err := partition.CreateStore(ws, nil).Materialize(context.Background(), input, bounds)
	require.Nil(t, err)
	return parts
}

func sequentialKeys(n int) []interface{} {
	keys := make([]interface{}, n)
	for i := range keys {
		keys[i] = fmt.Sprintf("K%d", i)
	}
	return keys
}

func TestJoinSchema(t *testing.T) {
	left := createLeft(t, nil).Schema()
	joined, err := JoinSchema(left, createTarget(t, 0).Schema(), "Floc")
	require.Nil(t, err)
	require.Equal(t, []string{"FLOC", "name", "name_1", "rank"}, joined.ColumnNames())
	// the left Schema is untouched
	require.Equal(t, []string{"FLOC", "name"}, left.ColumnNames())
}

func TestCanonicalKey(t *testing.T) {
	require.Equal(t, "12", CanonicalKey(int64(12)))
	require.Equal(t, "12", CanonicalKey(int32(12)))
	require.Equal(t, "12", CanonicalKey("12"))
	require.Equal(t, "1.5", CanonicalKey(1.5))
	require.Equal(t, "0a0b", CanonicalKey([]byte{10, 11}))
}

func TestDispatchJoin(t *testing.T) {
	for _, mode := range []splitmerge.ConcurrencyMode{splitmerge.Sequential, splitmerge.Pooled} {
		t.Run(string(mode), func(t *testing.T) {
			defer goleak.VerifyNone(t)
			ws, err := memws.CreateWorkspace(nil)
			require.Nil(t, err)
			defer ws.Destroy()
			// 100 left records, of which K0..K59 exist in the target
			parts := split(t, ws, createLeft(t, sequentialKeys(100)), 4)
			d, err := CreateDispatcher(ws, &Conf{Mode: mode, MaxWorkers: 3})
			require.Nil(t, err)
			out := memds.CreateOutput("joined")
			res, err := d.DispatchJoin(context.Background(), parts, createTarget(t, 60), "FLOC", "Floc", out)
			require.NotNil(t, res)
			summary := res.Summary
			require.Nil(t, err)
			require.Equal(t, 100, summary.TotalInput)
			require.Equal(t, 60, summary.TotalMatched)
			require.InDelta(t, 60.0, summary.MatchPercentage(), 0.0001)
			require.Equal(t, []int{1, 2, 3, 4}, summary.PartitionIDs)
			require.Len(t, summary.UnmatchedKeys, 40)
			require.Equal(t, "K60", summary.UnmatchedKeys[0])
			require.Equal(t, "K99", summary.UnmatchedKeys[39])

			records := out.Records()
			require.Len(t, records, 100)
			for i, rec := range records {
				key, err := rec.GetString("FLOC")
				require.Nil(t, err)
				require.Equal(t, fmt.Sprintf("K%d", i), key)
				if i < 60 {
					rank, err := rec.GetInt64("rank")
					require.Nil(t, err)
					require.Equal(t, int64(i), rank)
					right, err := rec.GetString("name_1")
					require.Nil(t, err)
					require.Equal(t, fmt.Sprintf("right %d", i), right)
				} else {
					require.True(t, rec.IsNil("rank"))
					require.True(t, rec.IsNil("name_1"))
				}
			}
		})
	}
}

func TestNilKeysNeverMatch(t *testing.T) {
	ws, err := memws.CreateWorkspace(nil)
	require.Nil(t, err)
	parts := split(t, ws, createLeft(t, []interface{}{"K1", nil, "K2"}), 2)
	d, err := CreateDispatcher(ws, nil)
	require.Nil(t, err)
	out := memds.CreateOutput("joined")
	res, err := d.DispatchJoin(context.Background(), parts, createTarget(t, 5), "FLOC", "Floc", out)
	require.NotNil(t, res)
	summary := res.Summary
	require.Nil(t, err)
	require.Equal(t, 3, summary.TotalInput)
	require.Equal(t, 2, summary.TotalMatched)
	require.Equal(t, 1, summary.NilKeys)
	require.Empty(t, summary.UnmatchedKeys)
	require.Len(t, out.Records(), 3)
}

func TestJoinMissingKeyColumn(t *testing.T) {
	ws, err := memws.CreateWorkspace(nil)
	require.Nil(t, err)
	parts := split(t, ws, createLeft(t, sequentialKeys(4)), 2)
	d, err := CreateDispatcher(ws, nil)
	require.Nil(t, err)
	var missing errors.MissingColumnError
	_, err = d.DispatchJoin(context.Background(), parts, createTarget(t, 2), "nope", "Floc", memds.CreateOutput("joined"))
	require.True(t, stderrors.As(err, &missing))
	_, err = d.DispatchJoin(context.Background(), parts, createTarget(t, 2), "FLOC", "nope", memds.CreateOutput("joined"))
	require.True(t, stderrors.As(err, &missing))
	require.Equal(t, "nope", missing.Name)
}

// failingPartition fails during its scan
type failingPartition struct {
	splitmerge.Partition
}

func (p *failingPartition) Scan(ctx context.Context, fn func(rec splitmerge.Record) error) error {
	return fmt.Errorf("unreadable partition %d", p.ID())
}

func TestJoinFailureWritesNothing(t *testing.T) {
	ws, err := memws.CreateWorkspace(nil)
	require.Nil(t, err)
	parts := split(t, ws, createLeft(t, sequentialKeys(30)), 3)
	parts[1] = &failingPartition{parts[1]}
	d, err := CreateDispatcher(ws, nil)
	require.Nil(t, err)
	out := memds.CreateOutput("joined")
	res, err := d.DispatchJoin(context.Background(), parts, createTarget(t, 60), "FLOC", "Floc", out)
	require.NotNil(t, res)
	summary := res.Summary
	var merr *multierror.Error
	require.True(t, stderrors.As(err, &merr))
	require.False(t, out.IsCreated())
	require.False(t, res.Merged)
	// sequential runs stop after the failure
	require.Equal(t, []int{1}, summary.PartitionIDs)
}

func TestJoinMergePartial(t *testing.T) {
	ws, err := memws.CreateWorkspace(nil)
	require.Nil(t, err)
	parts := split(t, ws, createLeft(t, sequentialKeys(30)), 3)
	parts[2] = &failingPartition{parts[2]}
	d, err := CreateDispatcher(ws, &Conf{MergePartial: true})
	require.Nil(t, err)
	out := memds.CreateOutput("joined")
	res, err := d.DispatchJoin(context.Background(), parts, createTarget(t, 60), "FLOC", "Floc", out)
	require.NotNil(t, res)
	summary := res.Summary
	var taskErr errors.PartitionTaskError
	require.True(t, stderrors.As(err, &taskErr))
	require.Equal(t, 3, taskErr.PartitionID)
	require.True(t, out.IsCommitted())
	require.Len(t, out.Records(), 20)
	require.Equal(t, 20, summary.TotalInput)
	require.Equal(t, 20, summary.TotalMatched)
	require.True(t, res.Merged)
	require.Equal(t, 20, res.OutputRecords)
}

func TestJoinMergePartialFailedMerge(t *testing.T) {
	ws, err := memws.CreateWorkspace(nil)
	require.Nil(t, err)
	parts := split(t, ws, createLeft(t, sequentialKeys(30)), 3)
	parts[2] = &failingPartition{parts[2]}
	d, err := CreateDispatcher(ws, &Conf{MergePartial: true})
	require.Nil(t, err)
	// an output which has already been created cannot be merged into
	out := memds.CreateOutput("joined")
	_, err = out.Create(schema.CreateSchema())
	require.Nil(t, err)
	res, err := d.DispatchJoin(context.Background(), parts, createTarget(t, 60), "FLOC", "Floc", out)
	require.NotNil(t, err)
	require.NotNil(t, res)
	require.False(t, res.Merged)
	require.Equal(t, 0, res.OutputRecords)
	require.Equal(t, 20, res.Summary.TotalInput)
}

// unreadableWorkspace fails to open one dataset
type unreadableWorkspace struct {
	splitmerge.Workspace
	unreadable string
}

func (ws *unreadableWorkspace) OpenDataset(name string) (splitmerge.Dataset, error) {
	if name == ws.unreadable {
		return nil, fmt.Errorf("dataset %s is unreadable", name)
	}
	return ws.Workspace.OpenDataset(name)
}

func TestJoinSummarySkipsLostPartitions(t *testing.T) {
	mem, err := memws.CreateWorkspace(nil)
	require.Nil(t, err)
	parts := split(t, mem, createLeft(t, sequentialKeys(30)), 3)
	ws := &unreadableWorkspace{Workspace: mem, unreadable: DefaultOutputPrefix + "3"}
	d, err := CreateDispatcher(ws, &Conf{MergePartial: true})
	require.Nil(t, err)
	out := memds.CreateOutput("joined")
	res, err := d.DispatchJoin(context.Background(), parts, createTarget(t, 60), "FLOC", "Floc", out)
	var taskErr errors.PartitionTaskError
	require.True(t, stderrors.As(err, &taskErr))
	require.Equal(t, 3, taskErr.PartitionID)
	require.Equal(t, []int{1, 2}, res.Summary.PartitionIDs)
	require.Equal(t, 20, res.Summary.TotalInput)
	require.True(t, res.Merged)
	require.True(t, out.IsCommitted())
	require.Len(t, out.Records(), 20)
}

func TestWriteUnmatched(t *testing.T) {
	out := memds.CreateOutput("unmatched")
	require.Nil(t, WriteUnmatched([]string{"K60", "K61"}, "Floc", out))
	require.Equal(t, []string{"Floc"}, out.Schema().ColumnNames())
	require.Len(t, out.Records(), 2)
	key, err := out.Records()[1].GetString("Floc")
	require.Nil(t, err)
	require.Equal(t, "K61", key)
}
