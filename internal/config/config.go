package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	SampleRows int    `mapstructure:"sample_rows" yaml:"sample_rows"`
	Language   string `mapstructure:"language" yaml:"language"`
	OutputDir  string `mapstructure:"output_dir" yaml:"output_dir"`
	LogLevel   string `mapstructure:"log_level" yaml:"log_level"`

	// HTTP boundary (tabloom serve)
	ServeAddr      string   `mapstructure:"serve_addr" yaml:"serve_addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	UploadDir      string   `mapstructure:"upload_dir" yaml:"upload_dir"`
	MaxUploadMB    int      `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`

	// Directory watcher (tabloom watch)
	WatchExtensions []string `mapstructure:"watch_extensions" yaml:"watch_extensions"`
}

// Defaults returns the built-in configuration.
func Defaults() *Global {
	return &Global{
		SampleRows:      5,
		Language:        "english",
		LogLevel:        "info",
		ServeAddr:       ":8080",
		AllowedOrigins:  []string{"http://localhost:3000"},
		UploadDir:       os.TempDir(),
		MaxUploadMB:     100,
		WatchExtensions: []string{".csv", ".tsv", ".txt", ".json", ".xlsx", ".parquet"},
	}
}

// Dir returns ~/.tabloom.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".tabloom"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.tabloom/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("TABLOOM")
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("sample_rows", d.SampleRows)
	v.SetDefault("language", d.Language)
	v.SetDefault("output_dir", "")
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("serve_addr", d.ServeAddr)
	v.SetDefault("allowed_origins", d.AllowedOrigins)
	v.SetDefault("upload_dir", "")
	v.SetDefault("max_upload_mb", d.MaxUploadMB)
	v.SetDefault("watch_extensions", d.WatchExtensions)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.UploadDir == "" {
		c.UploadDir = os.TempDir()
	}
	return &c, nil
}
