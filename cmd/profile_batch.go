package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabloom-cli/internal/utils"
)

var (
	batchOutDir string
	batchFormat string
	batchQuiet  bool
)

var profileBatchCmd = &cobra.Command{
	Use:   "profile-batch <files or globs...>",
	Short: "Profile many files and write one report per file",
	Long: `Profile-batch expands globs, profiles every match and writes
<name>.profile.json (or .profile.md) into the output directory.

Example:
  tabloom profile-batch "data/*.csv" exports/*.xlsx --out-dir profiles`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := utils.ExpandGlobs(args)
		if len(files) == 0 {
			return fmt.Errorf("no files matched")
		}
		outDir := batchOutDir
		if outDir == "" {
			outDir = settings().OutputDir
		}
		if outDir == "" {
			outDir = "."
		}
		if err := utils.EnsureDir(outDir); err != nil {
			return err
		}
		suffix := ".profile.json"
		if strings.HasPrefix(strings.ToLower(batchFormat), "m") {
			suffix = ".profile.md"
		}

		p, err := newPipeline(cmd, nil)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		var failed int
		for i, f := range files {
			if !batchQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, len(files), f)
			}
			res, err := p.Profile(f)
			if err != nil {
				failed++
				fmt.Fprintf(out, "  ✗ %v\n", err)
				continue
			}
			b, err := renderProfile(res, batchFormat, profMetrics)
			if err != nil {
				return err
			}
			stem := strings.TrimSuffix(filepath.Base(f), filepath.Ext(f))
			dst := utils.UniquePath(outDir, stem, suffix)
			if err := utils.SafeWriteFile(dst, b); err != nil {
				return err
			}
			if !batchQuiet {
				fmt.Fprintf(out, "  ✓ %s\n", dst)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed", failed, len(files))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profileBatchCmd)
	profileBatchCmd.Flags().StringVar(&batchOutDir, "out-dir", "", "directory for reports (default output_dir or .)")
	profileBatchCmd.Flags().StringVar(&batchFormat, "format", "json", "report format: json|markdown")
	profileBatchCmd.Flags().BoolVar(&batchQuiet, "quiet", false, "suppress progress output")
}
