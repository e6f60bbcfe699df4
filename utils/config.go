package utils

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/voxelsplace/pixpack/archive"
	"github.com/voxelsplace/pixpack/pixpack"
	"github.com/voxelsplace/pixpack/raster"
)

// Config holds the settings shared by the pixpack commands. It can be read
// from a TOML file; command line flags override individual fields.
type Config struct {
	OutputDir   string `toml:"output_dir"`
	OutputName  string `toml:"output_name"`
	ImageFormat string `toml:"image_format"`
	Archive     string `toml:"archive"`
	Workers     int    `toml:"workers"`
	Duplicates  string `toml:"duplicates"`
	LogLevel    string `toml:"log_level"`
}

func DefaultConfig() Config {
	return Config{
		OutputDir:   "stego_images",
		OutputName:  "embedded_%d",
		ImageFormat: "png",
		Archive:     "zip",
		Duplicates:  "reject",
		LogLevel:    "info",
	}
}

// LoadConfig returns the defaults overlaid with the TOML file at path.
// An empty path returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks every enumerated field.
func (c Config) Validate() error {
	if _, err := c.Options(); err != nil {
		return err
	}
	if _, err := c.Format(); err != nil {
		return err
	}
	if _, err := c.ArchiveFormat(); err != nil {
		return err
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if strings.Count(c.OutputName, "%d") != 1 || strings.Count(c.OutputName, "%") != 1 {
		return fmt.Errorf("output_name %q must contain exactly one %%d", c.OutputName)
	}
	return nil
}

func (c Config) Options() (pixpack.Options, error) {
	dup, err := pixpack.ParseDuplicatePolicy(c.Duplicates)
	if err != nil {
		return pixpack.Options{}, err
	}
	return pixpack.Options{Order: pixpack.ByName, Workers: c.Workers, Duplicates: dup}, nil
}

func (c Config) Format() (raster.Format, error) { return raster.ParseFormat(c.ImageFormat) }

func (c Config) ArchiveFormat() (archive.Format, error) { return archive.ParseFormat(c.Archive) }

// OutputFile returns the base name of the stego image for chunk index.
func (c Config) OutputFile(index int, f raster.Format) string {
	return fmt.Sprintf(c.OutputName, index) + f.Ext()
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return l, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}

// Logger builds a text logger writing to w at the configured level.
func (c Config) Logger(w io.Writer) (*slog.Logger, error) {
	l, err := parseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l})), nil
}

func discardLogger(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
