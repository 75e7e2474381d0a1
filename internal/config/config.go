package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ExportConfig holds export pipeline configuration
type ExportConfig struct {
	OutputDir         string        `mapstructure:"output_dir"`
	StageDelay        time.Duration `mapstructure:"stage_delay"` // UI-yield pause between stages
	TestMode          bool          `mapstructure:"test_mode"`   // Skips stage delays
	CacheTTL          time.Duration `mapstructure:"cache_ttl"`
	LargeImagePixels  int           `mapstructure:"large_image_pixels"` // Above this, scaling runs on the worker pool
	MaxPixels         int           `mapstructure:"max_pixels"`
	ReleaseDelay      time.Duration `mapstructure:"release_delay"` // How long a download handle outlives the save action
	WorkerConcurrency int           `mapstructure:"worker_concurrency"`
}

// DefaultsConfig holds default export options used when a request omits them
type DefaultsConfig struct {
	Format        string  `mapstructure:"format"`
	Quality       float64 `mapstructure:"quality"`
	MaxDimension  int     `mapstructure:"max_dimension"`
	WatermarkText string  `mapstructure:"watermark_text"`
}

// PlacementConfig holds auto-placement configuration
type PlacementConfig struct {
	CellSize int `mapstructure:"cell_size"`
}

// Config holds configuration for the caption-art binary
type Config struct {
	Debug     bool            `mapstructure:"debug"`
	Export    ExportConfig    `mapstructure:"export"`
	Defaults  DefaultsConfig  `mapstructure:"defaults"`
	Placement PlacementConfig `mapstructure:"placement"`
}

// Load loads configuration from an optional config file, .env files and
// CAPTION_ART_* environment variables
func Load(configFile string, envPath string) (*Config, error) {
	v := configureViper(configFile, envPath)

	v.SetDefault("debug", false)
	v.SetDefault("export.output_dir", ".")
	v.SetDefault("export.stage_delay", "50ms")
	v.SetDefault("export.test_mode", false)
	v.SetDefault("export.cache_ttl", "5s")
	v.SetDefault("export.large_image_pixels", 1920*1080)
	v.SetDefault("export.max_pixels", 100_000_000)
	v.SetDefault("export.release_delay", "100ms")
	v.SetDefault("export.worker_concurrency", 1)
	v.SetDefault("defaults.format", "png")
	v.SetDefault("defaults.quality", 0.92)
	v.SetDefault("defaults.max_dimension", 0)
	v.SetDefault("defaults.watermark_text", "Caption Art")
	v.SetDefault("placement.cell_size", 50)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that the loaded values are usable
func (c *Config) Validate() error {
	switch strings.ToLower(c.Defaults.Format) {
	case "png", "jpeg", "jpg":
	default:
		return fmt.Errorf("defaults.format must be png or jpeg, got %q", c.Defaults.Format)
	}
	if c.Defaults.MaxDimension < 0 {
		return errors.New("defaults.max_dimension must not be negative")
	}
	if c.Placement.CellSize <= 0 {
		return errors.New("placement.cell_size must be positive")
	}
	if c.Export.WorkerConcurrency <= 0 {
		return errors.New("export.worker_concurrency must be positive")
	}
	if c.Export.LargeImagePixels <= 0 {
		return errors.New("export.large_image_pixels must be positive")
	}
	return nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(configFile string, envPath string) *viper.Viper {
	v := viper.New()

	loadEnv(envPath)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("config/")
	}

	v.SetEnvPrefix("CAPTION_ART")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"export.output_dir",
		"export.stage_delay",
		"export.test_mode",
		"export.cache_ttl",
		"export.large_image_pixels",
		"export.max_pixels",
		"export.release_delay",
		"export.worker_concurrency",
		"defaults.format",
		"defaults.quality",
		"defaults.max_dimension",
		"defaults.watermark_text",
		"placement.cell_size",
	}
	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

func loadEnv(envPath string) {
	if envPath == "" {
		envPath = "config/"
	}
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Overload(filepath.Join(envPath, envFile)) // later files override earlier ones
	}
}
