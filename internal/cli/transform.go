package cli

import (
	"github.com/spf13/cobra"

	"github.com/go-sif/splitmerge/operations/transform"
	"github.com/go-sif/splitmerge/pipeline"
)

func newTransformCmd(configFile *string) *cobra.Command {
	var input inputFlags
	var output outputFlags
	var removeColumns []string
	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Split the input into partitions and merge them back into a single csv output",
		Example: `  splitmerge transform --input 'data/*.csv' --input-schema id:int64,name:varstring \
    --input-header-lines 1 --output out.csv --partitions 8 --concurrency pooled`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := loadConf(cmd, *configFile)
			if err != nil {
				return err
			}
			in, err := input.dataset()
			if err != nil {
				return err
			}
			out, err := output.create(output.path)
			if err != nil {
				return err
			}
			steps := make([]*transform.Step, 0, 1)
			if len(removeColumns) > 0 {
				steps = append(steps, transform.RemoveColumn(removeColumns...))
			}
			p, err := pipeline.Create(transform.Transform(steps...), conf)
			if err != nil {
				return err
			}
			if progress, _ := cmd.Flags().GetBool("progress"); progress {
				bar := newProgressObserver(cmd.ErrOrStderr(), conf.PartitionCount, "transform ")
				defer bar.finish()
				p.SetObserver(bar)
			}
			res, err := p.Run(cmd.Context(), in, out)
			if err != nil {
				return err
			}
			cmd.Printf("Wrote %d of %d records to %s in %s\n", res.OutputRecords, res.InputRecords, out.Name(), res.Elapsed)
			return nil
		},
	}
	input.register(cmd, "input", "dataset to transform")
	output.register(cmd)
	cmd.Flags().StringSliceVar(&removeColumns, "remove-columns", nil, "columns to drop from the output")
	return cmd
}
