// Package cli implements the gslide2media command-line interface.
//
// This package provides commands for exporting remote presentations to
// still images, vector files, metadata, and video, individually or
// recursively through folder hierarchies, plus management of the export
// result cache. The CLI is built using cobra and supports verbose
// logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - presentation: Export one or more presentations by ID
//   - folder: Export every presentation under one or more folders
//   - batch: Export a hand-picked slide set as one presentation
//   - cache: Manage the export result cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers
// are passed through context.Context for structured progress tracking.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dmidlo/gslide2media/pkg/buildinfo"
	"github.com/dmidlo/gslide2media/pkg/cache"
	"github.com/dmidlo/gslide2media/pkg/export"
	"github.com/dmidlo/gslide2media/pkg/slides"
	"github.com/dmidlo/gslide2media/pkg/source/drive"
)

// appName is the application name used for directories and display.
const appName = "gslide2media"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	config     *Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands
// registered.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          appName,
		Short:        "gslide2media exports remote presentations to images and video",
		Long:         `gslide2media fetches remote presentation documents, individually or recursively through folder hierarchies, and exports every slide to SVG, PNG, JPEG, JSON metadata, or an MP4 slideshow. Results are cached so repeated exports only recompute what changed.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				c.SetLogLevel(log.DebugLevel)
			}
			cfg, err := LoadConfig(c.configPath)
			if err != nil {
				return err
			}
			c.config = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: "+defaultConfigPath()+")")

	root.AddCommand(c.presentationCommand())
	root.AddCommand(c.folderCommand())
	root.AddCommand(c.batchCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newSource builds the remote client from config.
func (c *CLI) newSource() (slides.RemoteSource, error) {
	return drive.NewClient(drive.Config{
		BaseURL:           c.config.API.BaseURL,
		Token:             c.config.API.Token,
		RequestsPerSecond: c.config.API.RequestsPerSecond,
		Burst:             c.config.API.Burst,
	})
}

// newIndex builds the result index from config. An unusable file
// backend degrades to no caching instead of failing the export.
func (c *CLI) newIndex(ctx context.Context, noCache bool) cache.Index {
	if noCache {
		return cache.NewNullIndex()
	}
	switch c.config.Cache.Backend {
	case "redis":
		idx, err := cache.NewRedisIndex(ctx, cache.RedisConfig{
			Addr:     c.config.Cache.RedisAddr,
			Password: c.config.Cache.RedisPassword,
			DB:       c.config.Cache.RedisDB,
			TTL:      c.config.Cache.redisTTL(),
		})
		if err != nil {
			c.Logger.Warn("redis index unavailable, caching disabled", "err", err)
			return cache.NewNullIndex()
		}
		return idx
	case "off":
		return cache.NewNullIndex()
	default:
		dir := c.config.Cache.Dir
		if dir == "" {
			var err error
			if dir, err = cacheDir(); err != nil {
				c.Logger.Warn("no cache directory, caching disabled", "err", err)
				return cache.NewNullIndex()
			}
		}
		idx, err := cache.NewFileIndex(dir)
		if err != nil {
			c.Logger.Warn("file index unavailable, caching disabled", "err", err)
			return cache.NewNullIndex()
		}
		return idx
	}
}

// newExporter wires source, index, and exporter for one command run.
func (c *CLI) newExporter(ctx context.Context, noCache bool) (*export.Exporter, slides.RemoteSource, cache.Index, error) {
	source, err := c.newSource()
	if err != nil {
		return nil, nil, nil, err
	}
	index := c.newIndex(ctx, noCache)
	exp := export.New(source, index, export.WithLogger(c.Logger))
	return exp, source, index, nil
}

// cacheDir returns the cache directory using the XDG standard
// (~/.cache/gslide2media/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
