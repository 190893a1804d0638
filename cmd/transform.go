package cmd

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabloom-cli/internal/config"
	"github.com/KaramelBytes/tabloom-cli/internal/pipeline"
	"github.com/KaramelBytes/tabloom-cli/internal/utils"
)

var transformCmd = &cobra.Command{
	Use:   "transform <input> <output> [config]",
	Short: "Turn a tabular file into a numeric feature matrix (CSV)",
	Long: `Transform imputes missing values, normalises and vectorises text, encodes
categoricals, expands dates and scales numbers, then writes the result as CSV.

The optional config is a JSON or YAML file, or inline JSON:
  tabloom transform raw.csv features.csv
  tabloom transform raw.csv features.csv prep.yaml
  tabloom transform raw.csv features.csv '{"fillna":{"method":"median"}}'`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, output := args[0], args[1]
		var arg string
		if len(args) == 3 {
			arg = args[2]
		}
		pre, err := config.LoadPreprocessingFor(arg, settings().Language)
		if err != nil {
			return reportFailure(cmd, input, &pipeline.Failure{Kind: pipeline.KindConfig, Stage: pipeline.Pending, Message: err.Error(), Err: err})
		}
		if debug {
			logger.Debug().Msg("preprocessing config:\n" + spew.Sdump(pre))
		}
		p, err := newPipeline(cmd, &pre)
		if err != nil {
			return err
		}
		st, err := p.Transform(input, output)
		if err != nil {
			return reportFailure(cmd, input, err)
		}
		b, err := utils.PrettyJSON(st)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(transformCmd)
	addLoaderFlags(transformCmd)
}
