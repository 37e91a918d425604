package cli

import (
	"github.com/spf13/cobra"

	"github.com/go-sif/splitmerge"
	"github.com/go-sif/splitmerge/datasource"
	"github.com/go-sif/splitmerge/pipeline"
)

func newJoinCmd(configFile *string) *cobra.Command {
	var input, target inputFlags
	var output outputFlags
	var leftKey, rightKey, unmatched string
	var tables bool
	cmd := &cobra.Command{
		Use:   "join",
		Short: "Left join every partition of the input against a shared target",
		Example: `  splitmerge join --input parcels.csv --input-schema id:int64,owner:varstring \
    --target owners.csv --target-schema owner:varstring,city:varstring \
    --left-key owner --right-key owner --output joined.csv --unmatched missing.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := loadConf(cmd, *configFile)
			if err != nil {
				return err
			}
			right, err := target.dataset()
			if err != nil {
				return err
			}
			p, err := pipeline.CreateJoin(right, leftKey, rightKey, conf)
			if err != nil {
				return err
			}
			out, err := output.create(output.path)
			if err != nil {
				return err
			}
			if unmatched != "" {
				unmatchedOut, err := output.create(unmatched)
				if err != nil {
					return err
				}
				p.SetUnmatchedOutput(unmatchedOut)
			}

			var res *pipeline.JoinResult
			var runErr error
			if tables {
				// each input file is joined as its own partition
				files, err := datasource.MatchFiles(input.path)
				if err != nil {
					return err
				}
				datasets := make([]splitmerge.Dataset, len(files))
				for i, file := range files {
					table := input
					table.path = file
					if datasets[i], err = table.dataset(); err != nil {
						return err
					}
				}
				bar := startProgress(cmd, p, len(datasets))
				res, runErr = p.RunTables(cmd.Context(), datasets, out)
				bar.finish()
			} else {
				left, err := input.dataset()
				if err != nil {
					return err
				}
				bar := startProgress(cmd, p, conf.PartitionCount)
				res, runErr = p.Run(cmd.Context(), left, out)
				bar.finish()
			}
			if res != nil && res.Summary != nil {
				cmd.Printf("Matched %d of %d records (%.1f%%), %d unmatched\n",
					res.Summary.TotalMatched, res.Summary.TotalInput, res.Summary.MatchPercentage(), res.Summary.TotalUnmatched())
			}
			return runErr
		},
	}
	input.register(cmd, "input", "dataset to join")
	target.register(cmd, "target", "dataset to join against")
	output.register(cmd)
	cmd.Flags().StringVar(&leftKey, "left-key", "", "join key column of the input")
	cmd.Flags().StringVar(&rightKey, "right-key", "", "join key column of the target")
	cmd.Flags().StringVar(&unmatched, "unmatched", "", "csv file receiving the keys of unmatched input records")
	cmd.Flags().BoolVar(&tables, "tables", false, "join each file matched by --input as its own partition")
	cmd.MarkFlagRequired("left-key")
	cmd.MarkFlagRequired("right-key")
	return cmd
}

// startProgress registers a progress bar with p if requested. The returned bar is never nil.
func startProgress(cmd *cobra.Command, p *pipeline.JoinPipeline, numPartitions int) *progressObserver {
	if progress, _ := cmd.Flags().GetBool("progress"); !progress {
		return &progressObserver{}
	}
	bar := newProgressObserver(cmd.ErrOrStderr(), numPartitions, "join ")
	p.SetObserver(bar)
	return bar
}
