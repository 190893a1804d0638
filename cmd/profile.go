package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabloom-cli/internal/analysis"
	"github.com/KaramelBytes/tabloom-cli/internal/config"
	"github.com/KaramelBytes/tabloom-cli/internal/loader"
	"github.com/KaramelBytes/tabloom-cli/internal/pipeline"
	"github.com/KaramelBytes/tabloom-cli/internal/utils"
)

var (
	profFormat      string
	profOutput      string
	profSampleRows  int
	profSheetName   string
	profSheetIndex  int
	profDelimiter   string
	profImportances string
	profMetrics     bool
)

var profileCmd = &cobra.Command{
	Use:   "profile <file>",
	Short: "Profile a tabular file (CSV/TSV, XLSX, JSON, Parquet)",
	Long: `Profile loads a file, infers column types, computes statistics and quality,
and suggests a content type and target column.

Examples:
  tabloom profile data.csv
  tabloom profile sales.xlsx --sheet-name Q1 --format markdown
  tabloom profile export.txt --delimiter ';' --metrics -o profile.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPipeline(cmd, nil)
		if err != nil {
			return err
		}
		res, err := p.Profile(args[0])
		if err != nil {
			return reportFailure(cmd, args[0], err)
		}
		out, err := renderProfile(res, profFormat, profMetrics)
		if err != nil {
			return err
		}
		if profOutput != "" {
			if err := utils.SafeWriteFile(profOutput, out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", profOutput)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	addLoaderFlags(profileCmd)
	profileCmd.Flags().StringVar(&profFormat, "format", "json", "output format: json|markdown")
	profileCmd.Flags().StringVarP(&profOutput, "output", "o", "", "write the profile to a file instead of stdout")
	profileCmd.Flags().IntVar(&profSampleRows, "sample-rows", 0, "number of sample rows to include (default from config)")
	profileCmd.Flags().StringVar(&profImportances, "importances", "", "comma-separated feature importance scores for the metrics summary")
	profileCmd.Flags().BoolVar(&profMetrics, "metrics", false, "include recommender metrics and run id in JSON output")
}

// addLoaderFlags registers the flags that steer file loading.
func addLoaderFlags(c *cobra.Command) {
	c.Flags().StringVar(&profSheetName, "sheet-name", "", "Excel worksheet name")
	c.Flags().IntVar(&profSheetIndex, "sheet-index", 0, "Excel worksheet index (1-based)")
	c.Flags().StringVar(&profDelimiter, "delimiter", "", "force a delimiter: ',', ';', 'tab', '|'")
}

// newPipeline builds a Pipeline from the global config and command flags.
func newPipeline(cmd *cobra.Command, pre *config.Preprocessing) (*pipeline.Pipeline, error) {
	c := settings()
	popt := analysis.Options{SampleRows: c.SampleRows, TopWords: true}
	if f := cmd.Flags().Lookup("sample-rows"); f != nil && f.Changed {
		popt.SampleRows = profSampleRows
	}
	if popt.SampleRows == 0 {
		popt.SampleRows = -1
	}
	lopt := loader.Options{SheetName: profSheetName, SheetIndex: profSheetIndex}
	if profDelimiter != "" {
		d, err := utils.ParseDelimiter(profDelimiter)
		if err != nil {
			return nil, err
		}
		lopt.Delimiter = d
	}
	opt := pipeline.Options{Loader: lopt, Profile: popt, Logger: &logger}
	if profImportances != "" {
		imps, err := utils.ParseFloats(profImportances)
		if err != nil {
			return nil, err
		}
		opt.Importances = imps
	}
	if pre != nil {
		opt.Preprocessing = pre
	}
	return pipeline.New(opt), nil
}

func renderProfile(res *pipeline.ProfileResult, format string, withMetrics bool) ([]byte, error) {
	switch strings.ToLower(format) {
	case "markdown", "md":
		md := res.Profile.Markdown()
		if withMetrics {
			m := res.Metrics
			md += fmt.Sprintf("\n[METRICS]\nTask: %s\nComplexity: %.2f\nLarge dataset: %t\nHigh dimensional: %t\n",
				m.TaskType, float64(m.ComplexityScore), m.IsLargeDataset, m.IsHighDimensional)
		}
		return []byte(md), nil
	case "json", "":
		if withMetrics {
			return utils.PrettyJSON(res)
		}
		return utils.PrettyJSON(res.Profile)
	default:
		return nil, fmt.Errorf("unknown format %q (use json or markdown)", format)
	}
}

// reportFailure prints a pipeline failure as JSON on stdout and returns it
// so the process exits non-zero.
func reportFailure(cmd *cobra.Command, path string, err error) error {
	f, ok := pipeline.AsFailure(err)
	if !ok {
		return err
	}
	if b, jerr := utils.PrettyJSON(f); jerr == nil {
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
	}
	return fmt.Errorf("%s: %s (%s, run %s)", filepath.Base(path), f.Message, f.Kind, f.RunID)
}
