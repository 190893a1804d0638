package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabloom-cli/internal/utils"
	"github.com/KaramelBytes/tabloom-cli/internal/watcher"
)

var (
	watchOutDir string
	watchSettle time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Profile files as they land in a directory",
	Long: `Watch monitors a directory and profiles every new or rewritten data file
once writes settle, writing <name>.profile.json into the output directory.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]
		c := settings()
		outDir := watchOutDir
		if outDir == "" {
			outDir = c.OutputDir
		}
		if outDir == "" {
			outDir = dir
		}
		if err := utils.EnsureDir(outDir); err != nil {
			return err
		}
		p, err := newPipeline(cmd, nil)
		if err != nil {
			return err
		}
		w, err := watcher.New(c.WatchExtensions, watchSettle, &logger)
		if err != nil {
			return err
		}
		defer w.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		events, err := w.Watch(ctx, dir)
		if err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		logger.Info().Str("dir", dir).Str("out_dir", outDir).Msg("watching")
		out := cmd.OutOrStdout()
		for ev := range events {
			if ev.Op != watcher.Ready || strings.HasSuffix(ev.Path, ".profile.json") {
				logger.Debug().Str("path", ev.Path).Str("op", ev.Op.String()).Msg("ignored")
				continue
			}
			res, err := p.Profile(ev.Path)
			if err != nil {
				fmt.Fprintf(out, "✗ %s: %v\n", filepath.Base(ev.Path), err)
				continue
			}
			b, err := utils.PrettyJSON(res.Profile)
			if err != nil {
				return err
			}
			stem := strings.TrimSuffix(filepath.Base(ev.Path), filepath.Ext(ev.Path))
			dst := filepath.Join(outDir, stem+".profile.json")
			if err := utils.SafeWriteFile(dst, b); err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ %s -> %s\n", filepath.Base(ev.Path), dst)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchOutDir, "out-dir", "", "directory for reports (default output_dir or the watched dir)")
	watchCmd.Flags().DurationVar(&watchSettle, "settle", 500*time.Millisecond, "quiet period before a written file is profiled")
}
