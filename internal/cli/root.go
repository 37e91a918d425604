// Package cli implements the splitmerge command line
package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/go-sif/splitmerge"
	"github.com/go-sif/splitmerge/config"
	"github.com/go-sif/splitmerge/datasource/dsv"
	"github.com/go-sif/splitmerge/datasource/jsonl"
	"github.com/go-sif/splitmerge/logging"
)

// NewRootCmd creates the root splitmerge command, with the transform and join subcommands
func NewRootCmd() *cobra.Command {
	var configFile string
	cmd := &cobra.Command{
		Use:           "splitmerge",
		Short:         "Split a dataset into partitions, process each one and merge the results",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "configuration file (yaml, json or toml)")
	cmd.PersistentFlags().Bool("progress", false, "draw a progress bar as partitions finish")
	config.BindFlags(cmd.PersistentFlags())
	cmd.AddCommand(newTransformCmd(&configFile), newJoinCmd(&configFile))
	return cmd
}

// loadConf reads configuration for a subcommand and configures the standard logger
func loadConf(cmd *cobra.Command, configFile string) (*config.Conf, error) {
	conf, err := config.Load(cmd.Flags(), configFile)
	if err != nil {
		return nil, err
	}
	if err := logging.Configure(conf.LogLevel, cmd.ErrOrStderr()); err != nil {
		return nil, err
	}
	conf.Logger = log.StandardLogger()
	return conf, nil
}

// inputFlags describe a file-backed input Dataset
type inputFlags struct {
	path        string
	format      string
	schema      string
	delimiter   string
	headerLines int
	nilValue    string
}

func (f *inputFlags) register(cmd *cobra.Command, prefix string, usage string) {
	cmd.Flags().StringVar(&f.path, prefix, "", usage+" (a file or glob)")
	cmd.Flags().StringVar(&f.format, prefix+"-format", "", "format of "+prefix+": csv or jsonl (defaults to the file extension)")
	cmd.Flags().StringVar(&f.schema, prefix+"-schema", "", "schema of "+prefix+", e.g. id:int64,name:varstring")
	cmd.Flags().StringVar(&f.delimiter, prefix+"-delimiter", ",", "column delimiter of csv "+prefix)
	cmd.Flags().IntVar(&f.headerLines, prefix+"-header-lines", 0, "number of header lines to skip in each "+prefix+" file")
	cmd.Flags().StringVar(&f.nilValue, prefix+"-nil-value", "", "string representing nil values in csv "+prefix)
	cmd.MarkFlagRequired(prefix)
	cmd.MarkFlagRequired(prefix + "-schema")
}

func (f *inputFlags) dataset() (splitmerge.Dataset, error) {
	s, err := ParseSchema(f.schema)
	if err != nil {
		return nil, err
	}
	switch f.resolveFormat() {
	case "csv":
		delim, err := parseDelimiter(f.delimiter)
		if err != nil {
			return nil, err
		}
		return dsv.CreateDataset(f.path, s, &dsv.ParserConf{
			HeaderLines: f.headerLines,
			Delimiter:   delim,
			NilValue:    f.nilValue,
		})
	case "jsonl":
		return jsonl.CreateDataset(f.path, s, &jsonl.ParserConf{HeaderLines: f.headerLines})
	default:
		return nil, fmt.Errorf("unknown input format %q", f.format)
	}
}

func (f *inputFlags) resolveFormat() string {
	if f.format != "" {
		return strings.ToLower(f.format)
	}
	switch strings.ToLower(filepath.Ext(f.path)) {
	case ".jsonl", ".ndjson":
		return "jsonl"
	default:
		return "csv"
	}
}

// outputFlags describe a csv OutputDataset
type outputFlags struct {
	path      string
	delimiter string
	header    bool
}

func (f *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.path, "output", "", "output csv file")
	cmd.Flags().StringVar(&f.delimiter, "output-delimiter", ",", "column delimiter of the output")
	cmd.Flags().BoolVar(&f.header, "output-header", true, "write column names as the first line of the output")
	cmd.MarkFlagRequired("output")
}

func (f *outputFlags) create(path string) (*dsv.Output, error) {
	delim, err := parseDelimiter(f.delimiter)
	if err != nil {
		return nil, err
	}
	return dsv.CreateOutput(path, &dsv.ParserConf{Delimiter: delim}, f.header), nil
}

func parseDelimiter(delim string) (rune, error) {
	if delim == `\t` {
		return '\t', nil
	}
	if utf8.RuneCountInString(delim) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, was %q", delim)
	}
	r, _ := utf8.DecodeRuneInString(delim)
	return r, nil
}
