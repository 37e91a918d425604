package config

import (
	stderrors "errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/go-sif/splitmerge"
	"github.com/go-sif/splitmerge/errors"
)

func requireConfigurationError(t *testing.T, err error, param string) {
	var confErr errors.ConfigurationError
	require.True(t, stderrors.As(err, &confErr), "expected ConfigurationError, got %v", err)
	require.Equal(t, param, confErr.Param)
}

func TestDefaults(t *testing.T) {
	conf, err := Load(nil, "")
	require.Nil(t, err)
	require.Equal(t, 10, conf.PartitionCount)
	require.Equal(t, splitmerge.Sequential, conf.ConcurrencyMode)
	require.Equal(t, DiskWorkspace, conf.Workspace)
	require.Equal(t, "lz4", conf.Compression)
	require.True(t, conf.PreservesCount)
	require.False(t, conf.MergePartial)
	require.Empty(t, conf.ExcludeColumns)
	require.Nil(t, DefaultConf().Validate())
}

func TestLoadPrecedence(t *testing.T) {
	dir, err := ioutil.TempDir("", "splitmerge-config")
	require.Nil(t, err)
	defer os.RemoveAll(dir)
	file := filepath.Join(dir, "splitmerge.yaml")
	err = ioutil.WriteFile(file, []byte("partitionCount: 4\nworkspace: memory\nexcludeColumns:\n  - OBJECTID\n"), 0644)
	require.Nil(t, err)

	conf, err := Load(nil, file)
	require.Nil(t, err)
	require.Equal(t, 4, conf.PartitionCount)
	require.Equal(t, MemoryWorkspace, conf.Workspace)
	require.Equal(t, []string{"OBJECTID"}, conf.ExcludeColumns)

	os.Setenv("SPLITMERGE_PARTITIONCOUNT", "6")
	defer os.Unsetenv("SPLITMERGE_PARTITIONCOUNT")
	conf, err = Load(nil, file)
	require.Nil(t, err)
	require.Equal(t, 6, conf.PartitionCount)

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(flags)
	require.Nil(t, flags.Parse([]string{"--partitions", "8", "--concurrency", "pooled", "--max-workers", "3"}))
	conf, err = Load(flags, file)
	require.Nil(t, err)
	require.Equal(t, 8, conf.PartitionCount)
	require.Equal(t, splitmerge.Pooled, conf.ConcurrencyMode)
	require.Equal(t, 3, conf.MaxWorkers)
}

func TestValidate(t *testing.T) {
	conf := DefaultConf()
	conf.PartitionCount = 0
	requireConfigurationError(t, conf.Validate(), "partitionCount")

	conf = DefaultConf()
	conf.PartitionCount = -3
	requireConfigurationError(t, conf.Validate(), "partitionCount")

	conf = DefaultConf()
	conf.ConcurrencyMode = "parallel"
	requireConfigurationError(t, conf.Validate(), "concurrencyMode")

	conf = DefaultConf()
	conf.ConcurrencyMode = splitmerge.Pooled
	conf.MaxWorkers = 0
	requireConfigurationError(t, conf.Validate(), "maxWorkers")

	conf = DefaultConf()
	conf.Workspace = "s3"
	requireConfigurationError(t, conf.Validate(), "workspace")

	conf = DefaultConf()
	conf.Compression = "gzip"
	requireConfigurationError(t, conf.Validate(), "compression")

	conf = DefaultConf()
	conf.MaxScratchBytes = "lots"
	requireConfigurationError(t, conf.Validate(), "maxScratchBytes")

	conf = DefaultConf()
	conf.LogLevel = "loud"
	requireConfigurationError(t, conf.Validate(), "logLevel")
}

func TestScratchBytes(t *testing.T) {
	conf := DefaultConf()
	n, err := conf.ScratchBytes()
	require.Nil(t, err)
	require.Equal(t, uint64(0), n)
	conf.MaxScratchBytes = "2 MB"
	n, err = conf.ScratchBytes()
	require.Nil(t, err)
	require.Equal(t, uint64(2000000), n)
}

func TestMissingConfigFile(t *testing.T) {
	_, err := Load(nil, "/nonexistent/splitmerge.yaml")
	requireConfigurationError(t, err, "config")
}
