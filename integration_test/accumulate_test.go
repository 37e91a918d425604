package integration_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-sif/splitmerge/accumulators"
	"github.com/go-sif/splitmerge/operations/transform"
	"github.com/go-sif/splitmerge/operations/util"
	smtest "github.com/go-sif/splitmerge/testing"
	"github.com/go-sif/splitmerge/testing/local"
)

func TestAccumulate(t *testing.T) {
	input, err := smtest.CreateSequenceDataset("accumulate", 100)
	require.Nil(t, err)
	step, accumulated := util.Accumulate(accumulators.Compose(accumulators.Counter, accumulators.Adder("value")))
	_, _, err = local.RunTransform(context.Background(), input, transform.Transform(step), local.CreateConf(8, 4))
	require.Nil(t, err)
	res, err := accumulated.Result()
	require.Nil(t, err)
	parts := res.(*accumulators.Composed).GetResults()
	require.Equal(t, int64(100), parts[0].(*accumulators.Count).GetCount())
	require.Equal(t, float64(4950), parts[1].(*accumulators.Sum).GetSum())
}
