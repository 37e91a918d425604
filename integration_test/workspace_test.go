package integration_test

import (
	"context"
	"io/ioutil"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/go-sif/splitmerge/config"
	"github.com/go-sif/splitmerge/operations/transform"
	smtest "github.com/go-sif/splitmerge/testing"
	"github.com/go-sif/splitmerge/testing/local"
)

func TestDiskWorkspaceRun(t *testing.T) {
	defer goleak.VerifyNone(t)
	for _, compression := range []string{"lz4", "zstd", "none"} {
		t.Run(compression, func(t *testing.T) {
			input, err := smtest.CreateSequenceDataset("disk", 500)
			require.Nil(t, err)
			conf := local.CreateConf(5, 2)
			conf.Workspace = config.DiskWorkspace
			conf.ScratchDir = t.TempDir()
			conf.Compression = compression
			out, res, err := local.RunTransform(context.Background(), input, transform.Identity(), conf)
			require.Nil(t, err)
			require.Len(t, out.Records(), 500)
			require.Equal(t, 500, res.OutputRecords)
			// the scratch directory is removed after the run
			files, err := ioutil.ReadDir(conf.ScratchDir)
			require.Nil(t, err)
			require.Empty(t, files)
		})
	}
}

func TestKeepScratch(t *testing.T) {
	input, err := smtest.CreateSequenceDataset("keep", 10)
	require.Nil(t, err)
	conf := local.CreateConf(2, 0)
	conf.Workspace = config.DiskWorkspace
	conf.ScratchDir = t.TempDir()
	conf.KeepScratch = true
	_, res, err := local.RunTransform(context.Background(), input, transform.Identity(), conf)
	require.Nil(t, err)
	files, err := ioutil.ReadDir(conf.ScratchDir)
	require.Nil(t, err)
	require.Len(t, files, 1)
	require.Equal(t, "splitmerge-"+res.WorkspaceID, files[0].Name())
}

func TestScratchCapacityExceeded(t *testing.T) {
	input, err := smtest.CreateSequenceDataset("capacity", 100)
	require.Nil(t, err)
	conf := local.CreateConf(2, 0)
	conf.MaxScratchRecords = 10
	out, _, err := local.RunTransform(context.Background(), input, transform.Identity(), conf)
	require.NotNil(t, err)
	require.False(t, out.IsCreated())
}

func TestCancelledRun(t *testing.T) {
	defer goleak.VerifyNone(t)
	input, err := smtest.CreateSequenceDataset("cancelled", 100)
	require.Nil(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out, _, err := local.RunTransform(ctx, input, transform.Identity(), local.CreateConf(4, 2))
	require.NotNil(t, err)
	require.False(t, out.IsCreated())
}

func TestInvalidConfiguration(t *testing.T) {
	input, err := smtest.CreateSequenceDataset("invalid", 10)
	require.Nil(t, err)
	conf := local.CreateConf(0, 0)
	out, res, err := local.RunTransform(context.Background(), input, transform.Identity(), conf)
	require.NotNil(t, err)
	require.Nil(t, out)
	require.Nil(t, res)
}
