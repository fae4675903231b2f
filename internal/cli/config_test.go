package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmidlo/gslide2media/pkg/options"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil {
		t.Fatal("explicit missing config path must error")
	}

	// A missing default-location file falls back to defaults.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err = LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Cache.Backend != "file" {
		t.Errorf("default backend = %q", cfg.Cache.Backend)
	}
	if cfg.Output.Root != "presentations" {
		t.Errorf("default output root = %q", cfg.Output.Root)
	}
	if len(cfg.Output.Formats) != 1 || cfg.Output.Formats[0] != "svg" {
		t.Errorf("default formats = %v", cfg.Output.Formats)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	data := `
[api]
base_url = "https://api.example.com/v1"
token = "secret"
requests_per_second = 5.0

[output]
root = "/tmp/exports"
formats = ["png", "mp4"]
width = 1280
height = 720

[cache]
backend = "redis"
redis_addr = "localhost:6379"
redis_ttl = "24h"

[workers]
fetch = 4
render = 2
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.API.BaseURL != "https://api.example.com/v1" || cfg.API.Token != "secret" {
		t.Errorf("api = %+v", cfg.API)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.redisTTL() != 24*time.Hour {
		t.Errorf("cache = %+v", cfg.Cache)
	}

	o, err := cfg.exportOptions()
	if err != nil {
		t.Fatalf("exportOptions: %v", err)
	}
	if len(o.Formats) != 2 || o.Formats[0] != options.FormatPNG || o.Formats[1] != options.FormatMP4 {
		t.Errorf("formats = %v", o.Formats)
	}
	if o.Width != 1280 || o.Height != 720 || o.OutputRoot != "/tmp/exports" {
		t.Errorf("options = %+v", o)
	}
	if o.FetchWorkers != 4 || o.RenderWorkers != 2 {
		t.Errorf("workers = %d/%d", o.FetchWorkers, o.RenderWorkers)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[api\nbroken"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("malformed config must error")
	}
}

func TestRedisTTLParsing(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", 0},
		{"1h30m", 90 * time.Minute},
		{"garbage", 0},
		{"-5m", 0},
	}
	for _, tt := range tests {
		c := CacheConfig{RedisTTL: tt.in}
		if got := c.redisTTL(); got != tt.want {
			t.Errorf("redisTTL(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
