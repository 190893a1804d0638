package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/tabloom-cli/internal/config"
)

var (
	// Global flags
	cfgFile  string
	debug    bool
	logLevel string

	// Loaded configuration
	cfg *cfgpkg.Global
	// logger writes diagnostics to stderr; stdout carries results.
	logger = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "tabloom",
	Short: "tabloom: profile tabular datasets and build model-ready features",
	Long: `tabloom ingests schema-less tabular files (CSV/TSV, Excel, JSON, Parquet), profiles
their columns, quality and likely target, and transforms them into a numeric feature matrix.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.tabloom/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Defaults()
	}
	cfg = c

	f := rootCmd.PersistentFlags()
	if f.Changed("log-level") && logLevel != "" {
		cfg.LogLevel = logLevel
	}
	logger = newLogger(cfg.LogLevel, debug)
}

// settings returns the loaded config, or defaults when loading was skipped.
func settings() *cfgpkg.Global {
	if cfg == nil {
		loadConfig()
	}
	return cfg
}

func newLogger(level string, debug bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if debug {
		lvl = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}
