// Package config loads and validates pipeline configuration. Values are read, in increasing
// order of precedence, from defaults, a config file, SPLITMERGE_* environment variables and flags.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/go-sif/splitmerge"
	"github.com/go-sif/splitmerge/errors"
	"github.com/go-sif/splitmerge/logging"
)

// Workspace kinds
const (
	MemoryWorkspace = "memory"
	DiskWorkspace   = "disk"
)

// EnvPrefix is the prefix of environment variables read by Load
const EnvPrefix = "SPLITMERGE"

// Conf configures a pipeline run
type Conf struct {
	PartitionCount    int                        // PartitionCount is the number of partitions to split the input into
	ConcurrencyMode   splitmerge.ConcurrencyMode // ConcurrencyMode is Sequential or Pooled
	MaxWorkers        int                        // MaxWorkers bounds the worker pool in Pooled mode
	Workspace         string                     // Workspace is "memory" or "disk"
	ScratchDir        string                     // ScratchDir is the parent directory of disk workspaces
	Compression       string                     // Compression is "lz4", "zstd" or "none"
	MaxScratchBytes   string                     // MaxScratchBytes is a human-readable size ("512MB") limiting disk workspaces. "0" means unlimited.
	MaxScratchRecords int                        // MaxScratchRecords limits memory workspaces. 0 means unlimited.
	KeepScratch       bool                       // KeepScratch retains the workspace after a run, for debugging
	PreservesCount    bool                       // PreservesCount requires the output to hold exactly as many Records as the input
	MergePartial      bool                       // MergePartial merges the partitions which succeeded when a join fails
	ExcludeColumns    []string                   // ExcludeColumns are bookkeeping columns dropped from partitions
	LogLevel          string                     // LogLevel is trace, debug, info, warn, error or fatal
	Logger            log.FieldLogger            `mapstructure:"-"` // Logger overrides the standard logger
}

// DefaultConf returns a Conf holding every default value
func DefaultConf() *Conf {
	return &Conf{
		PartitionCount:  10,
		ConcurrencyMode: splitmerge.Sequential,
		MaxWorkers:      runtime.NumCPU(),
		Workspace:       DiskWorkspace,
		ScratchDir:      os.TempDir(),
		Compression:     "lz4",
		MaxScratchBytes: "0",
		PreservesCount:  true,
		LogLevel:        "info",
	}
}

type flagBinding struct {
	key   string
	flag  string
	usage string
}

var flagBindings = []flagBinding{
	{"partitionCount", "partitions", "number of partitions to split the input into"},
	{"concurrencyMode", "concurrency", "partition scheduling: sequential or pooled"},
	{"maxWorkers", "max-workers", "maximum number of concurrent workers in pooled mode"},
	{"workspace", "workspace", "scratch workspace: memory or disk"},
	{"scratchDir", "scratch-dir", "parent directory for disk workspaces"},
	{"compression", "compression", "disk workspace compression: lz4, zstd or none"},
	{"maxScratchBytes", "max-scratch", "disk workspace size limit, e.g. 512MB (0 = unlimited)"},
	{"maxScratchRecords", "max-scratch-records", "memory workspace record limit (0 = unlimited)"},
	{"keepScratch", "keep-scratch", "keep the scratch workspace after the run"},
	{"preservesCount", "preserves-count", "require the output record count to equal the input's"},
	{"mergePartial", "merge-partial", "merge successful partitions when a join fails"},
	{"excludeColumns", "exclude-columns", "bookkeeping columns to drop from partitions"},
	{"logLevel", "log-level", "log level: trace, debug, info, warn, error or fatal"},
}

// BindFlags registers a flag for every configuration key on flags
func BindFlags(flags *pflag.FlagSet) {
	defaults := DefaultConf()
	for _, b := range flagBindings {
		switch b.key {
		case "partitionCount":
			flags.Int(b.flag, defaults.PartitionCount, b.usage)
		case "concurrencyMode":
			flags.String(b.flag, string(defaults.ConcurrencyMode), b.usage)
		case "maxWorkers":
			flags.Int(b.flag, defaults.MaxWorkers, b.usage)
		case "workspace":
			flags.String(b.flag, defaults.Workspace, b.usage)
		case "scratchDir":
			flags.String(b.flag, defaults.ScratchDir, b.usage)
		case "compression":
			flags.String(b.flag, defaults.Compression, b.usage)
		case "maxScratchBytes":
			flags.String(b.flag, defaults.MaxScratchBytes, b.usage)
		case "maxScratchRecords":
			flags.Int(b.flag, defaults.MaxScratchRecords, b.usage)
		case "keepScratch":
			flags.Bool(b.flag, defaults.KeepScratch, b.usage)
		case "preservesCount":
			flags.Bool(b.flag, defaults.PreservesCount, b.usage)
		case "mergePartial":
			flags.Bool(b.flag, defaults.MergePartial, b.usage)
		case "excludeColumns":
			flags.StringSlice(b.flag, defaults.ExcludeColumns, b.usage)
		case "logLevel":
			flags.String(b.flag, defaults.LogLevel, b.usage)
		}
	}
}

func setDefaults(v *viper.Viper) {
	defaults := DefaultConf()
	v.SetDefault("partitionCount", defaults.PartitionCount)
	v.SetDefault("concurrencyMode", string(defaults.ConcurrencyMode))
	v.SetDefault("maxWorkers", defaults.MaxWorkers)
	v.SetDefault("workspace", defaults.Workspace)
	v.SetDefault("scratchDir", defaults.ScratchDir)
	v.SetDefault("compression", defaults.Compression)
	v.SetDefault("maxScratchBytes", defaults.MaxScratchBytes)
	v.SetDefault("maxScratchRecords", defaults.MaxScratchRecords)
	v.SetDefault("keepScratch", defaults.KeepScratch)
	v.SetDefault("preservesCount", defaults.PreservesCount)
	v.SetDefault("mergePartial", defaults.MergePartial)
	v.SetDefault("excludeColumns", []string{})
	v.SetDefault("logLevel", defaults.LogLevel)
}

// NewViper creates a viper instance holding every default, reading SPLITMERGE_* environment
// variables and, if flags is not nil, any flags registered by BindFlags
func NewViper(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if flags != nil {
		for _, b := range flagBindings {
			if f := flags.Lookup(b.flag); f != nil {
				if err := v.BindPFlag(b.key, f); err != nil {
					return nil, err
				}
			}
		}
	}
	return v, nil
}

// Load reads a Conf from configFile (if not empty), the environment and flags (if not nil), and validates it
func Load(flags *pflag.FlagSet, configFile string) (*Conf, error) {
	v, err := NewViper(flags)
	if err != nil {
		return nil, err
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.ConfigurationError{Param: "config", Reason: err.Error()}
		}
	}
	return FromViper(v)
}

// FromViper decodes and validates a Conf from a viper instance
func FromViper(v *viper.Viper) (*Conf, error) {
	conf := DefaultConf()
	if err := v.Unmarshal(conf); err != nil {
		return nil, errors.ConfigurationError{Param: "config", Reason: err.Error()}
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// Validate checks every parameter, returning a ConfigurationError for the first invalid one
func (c *Conf) Validate() error {
	if c.PartitionCount <= 0 {
		return errors.ConfigurationError{Param: "partitionCount", Reason: fmt.Sprintf("must be a positive integer, was %d", c.PartitionCount)}
	}
	switch c.ConcurrencyMode {
	case splitmerge.Sequential, splitmerge.Pooled:
	default:
		return errors.ConfigurationError{Param: "concurrencyMode", Reason: fmt.Sprintf("must be %s or %s, was %q", splitmerge.Sequential, splitmerge.Pooled, c.ConcurrencyMode)}
	}
	if c.ConcurrencyMode == splitmerge.Pooled && c.MaxWorkers <= 0 {
		return errors.ConfigurationError{Param: "maxWorkers", Reason: fmt.Sprintf("must be a positive integer, was %d", c.MaxWorkers)}
	}
	switch c.Workspace {
	case MemoryWorkspace, DiskWorkspace:
	default:
		return errors.ConfigurationError{Param: "workspace", Reason: fmt.Sprintf("must be %s or %s, was %q", MemoryWorkspace, DiskWorkspace, c.Workspace)}
	}
	switch c.Compression {
	case "lz4", "zstd", "none":
	default:
		return errors.ConfigurationError{Param: "compression", Reason: fmt.Sprintf("must be lz4, zstd or none, was %q", c.Compression)}
	}
	if _, err := c.ScratchBytes(); err != nil {
		return err
	}
	if c.MaxScratchRecords < 0 {
		return errors.ConfigurationError{Param: "maxScratchRecords", Reason: fmt.Sprintf("must not be negative, was %d", c.MaxScratchRecords)}
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ScratchBytes parses MaxScratchBytes. 0 means unlimited.
func (c *Conf) ScratchBytes() (uint64, error) {
	if strings.TrimSpace(c.MaxScratchBytes) == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(c.MaxScratchBytes)
	if err != nil {
		return 0, errors.ConfigurationError{Param: "maxScratchBytes", Reason: err.Error()}
	}
	return n, nil
}

// GetLogger returns the configured Logger, or the standard logger
func (c *Conf) GetLogger() log.FieldLogger {
	return logging.OrDefault(c.Logger)
}
