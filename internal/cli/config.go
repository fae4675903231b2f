package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/dmidlo/gslide2media/pkg/options"
)

// Config is the TOML configuration file layout. Every field has a
// working default; a missing config file is not an error.
type Config struct {
	API    APIConfig    `toml:"api"`
	Output OutputConfig `toml:"output"`
	Cache  CacheConfig  `toml:"cache"`
	Worker WorkerConfig `toml:"workers"`
}

// APIConfig configures the remote documents API.
type APIConfig struct {
	BaseURL           string  `toml:"base_url"`
	Token             string  `toml:"token"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// OutputConfig holds export defaults; command-line flags override them
// per run.
type OutputConfig struct {
	Root          string   `toml:"root"`
	Formats       []string `toml:"formats"`
	Width         int      `toml:"width"`
	Height        int      `toml:"height"`
	FPS           float64  `toml:"fps"`
	SlideDuration float64  `toml:"slide_duration_secs"`
	JPEGQuality   int      `toml:"jpeg_quality"`
	LetterboxFill string   `toml:"letterbox_fill"`
}

// CacheConfig selects and configures the result index backend.
type CacheConfig struct {
	// Backend is "file" (default), "redis", or "off".
	Backend string `toml:"backend"`
	Dir     string `toml:"dir"`

	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`

	// RedisTTL is a Go duration string ("24h"); empty means entries
	// never expire.
	RedisTTL string `toml:"redis_ttl"`
}

// redisTTL parses the configured TTL, treating empty or malformed
// values as "no expiry".
func (c CacheConfig) redisTTL() time.Duration {
	if c.RedisTTL == "" {
		return 0
	}
	d, err := time.ParseDuration(c.RedisTTL)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// WorkerConfig caps the pipeline's concurrency.
type WorkerConfig struct {
	Fetch  int `toml:"fetch"`
	Render int `toml:"render"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "https://slides.googleapis.com/v1",
		},
		Output: OutputConfig{
			Root:    "presentations",
			Formats: []string{"svg"},
		},
		Cache: CacheConfig{
			Backend: "file",
		},
	}
}

// LoadConfig reads the TOML config at path, or the default location
// when path is empty. A missing file yields the defaults; a malformed
// file is an error.
func LoadConfig(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		path = defaultConfigPath()
	}

	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// defaultConfigPath returns the XDG config location
// (~/.config/gslide2media/config.toml).
func defaultConfigPath() string {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", appName+".toml")
	}
	return filepath.Join(home, ".config", appName, "config.toml")
}

// exportOptions merges config defaults into an options struct; flag
// values already set by the caller win over config.
func (cfg *Config) exportOptions() (*options.Options, error) {
	formats, err := options.ParseFormats(strings.Join(cfg.Output.Formats, ","))
	if err != nil {
		return nil, err
	}
	return &options.Options{
		Formats:       formats,
		Width:         cfg.Output.Width,
		Height:        cfg.Output.Height,
		FPS:           cfg.Output.FPS,
		SlideDuration: cfg.Output.SlideDuration,
		JPEGQuality:   cfg.Output.JPEGQuality,
		LetterboxFill: cfg.Output.LetterboxFill,
		OutputRoot:    cfg.Output.Root,
		FetchWorkers:  cfg.Worker.Fetch,
		RenderWorkers: cfg.Worker.Render,
	}, nil
}
