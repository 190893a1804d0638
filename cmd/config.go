package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/tabloom-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set tabloom configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No config loaded")
			return nil
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "sample_rows: %d\n", cfg.SampleRows)
		fmt.Fprintf(out, "language: %s\n", cfg.Language)
		if cfg.OutputDir != "" {
			fmt.Fprintf(out, "output_dir: %s\n", cfg.OutputDir)
		}
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "serve_addr: %s\n", cfg.ServeAddr)
		fmt.Fprintf(out, "allowed_origins: %s\n", strings.Join(cfg.AllowedOrigins, ","))
		fmt.Fprintf(out, "upload_dir: %s\n", cfg.UploadDir)
		fmt.Fprintf(out, "max_upload_mb: %d\n", cfg.MaxUploadMB)
		fmt.Fprintf(out, "watch_extensions: %s\n", strings.Join(cfg.WatchExtensions, ","))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "sample_rows":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for sample_rows: %v", val)
			}
			cfg.SampleRows = i
		case "language":
			cfg.Language = val
		case "output_dir":
			cfg.OutputDir = val
		case "log_level":
			switch strings.ToLower(val) {
			case "debug", "info", "warn", "error":
				cfg.LogLevel = strings.ToLower(val)
			default:
				return fmt.Errorf("invalid log_level: %s (use debug, info, warn or error)", val)
			}
		case "serve_addr":
			cfg.ServeAddr = val
		case "allowed_origins":
			cfg.AllowedOrigins = splitList(val)
		case "upload_dir":
			cfg.UploadDir = val
		case "max_upload_mb":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for max_upload_mb: %v", val)
			}
			cfg.MaxUploadMB = i
		case "watch_extensions":
			var exts []string
			for _, e := range splitList(val) {
				if !strings.HasPrefix(e, ".") {
					e = "." + e
				}
				exts = append(exts, strings.ToLower(e))
			}
			cfg.WatchExtensions = exts
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
