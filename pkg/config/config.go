// Package config loads the optional canvashost.yaml engine configuration.
package config

import (
	"errors"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"canvashost/pkg/logging"
)

// Config represents the optional configuration file.
type Config struct {
	Canvas CanvasConfig `yaml:"canvas"`
	PNG    PNGConfig    `yaml:"png"`
	Log    LogConfig    `yaml:"log"`
}

// CanvasConfig controls surface allocation.
type CanvasConfig struct {
	DefaultWidth  int   `yaml:"default_width,omitempty"`
	DefaultHeight int   `yaml:"default_height,omitempty"`
	MaxDimension  int   `yaml:"max_dimension,omitempty"`
	MaxArea       int64 `yaml:"max_area,omitempty"`
}

// PNGConfig controls the encoder.
type PNGConfig struct {
	Compression string `yaml:"compression,omitempty"`
}

// LogConfig controls the command-line logger.
type LogConfig struct {
	Level string `yaml:"level,omitempty"`
}

const (
	DefaultWidth  = 300
	DefaultHeight = 150
	// MaxDimension matches the largest canvas side browsers accept.
	MaxDimension = 32767
	// MaxArea caps a single surface at 1 GiB of RGBA.
	MaxArea = 16384 * 16384
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Canvas: CanvasConfig{
			DefaultWidth:  DefaultWidth,
			DefaultHeight: DefaultHeight,
			MaxDimension:  MaxDimension,
			MaxArea:       MaxArea,
		},
		PNG: PNGConfig{Compression: "default"},
		Log: LogConfig{Level: "info"},
	}
}

// Path returns the XDG location of the configuration file, creating parent
// directories as needed.
func Path() (string, error) {
	path, err := xdg.ConfigFile(filepath.Join("canvashost", "config.yaml"))
	if err != nil {
		return "", fmt.Errorf("failed to resolve config path: %w", err)
	}
	return path, nil
}

// LoadOptional reads the file at path if present and fills unset fields
// with defaults. An empty path means the XDG location.
func LoadOptional(path string) (*Config, error) {
	if path == "" {
		p, err := Path()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	cfg.merge(&file)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) merge(o *Config) {
	if o.Canvas.DefaultWidth != 0 {
		c.Canvas.DefaultWidth = o.Canvas.DefaultWidth
	}
	if o.Canvas.DefaultHeight != 0 {
		c.Canvas.DefaultHeight = o.Canvas.DefaultHeight
	}
	if o.Canvas.MaxDimension != 0 {
		c.Canvas.MaxDimension = o.Canvas.MaxDimension
	}
	if o.Canvas.MaxArea != 0 {
		c.Canvas.MaxArea = o.Canvas.MaxArea
	}
	if s := strings.TrimSpace(o.PNG.Compression); s != "" {
		c.PNG.Compression = s
	}
	if s := strings.TrimSpace(o.Log.Level); s != "" {
		c.Log.Level = s
	}
}

// Validate rejects configurations the engine cannot honour.
func (c *Config) Validate() error {
	cc := c.Canvas
	if cc.MaxDimension < 1 {
		return fmt.Errorf("canvas.max_dimension must be positive, got %d", cc.MaxDimension)
	}
	if cc.MaxArea < 1 {
		return fmt.Errorf("canvas.max_area must be positive, got %d", cc.MaxArea)
	}
	if cc.DefaultWidth < 1 || cc.DefaultWidth > cc.MaxDimension {
		return fmt.Errorf("canvas.default_width %d out of range [1, %d]", cc.DefaultWidth, cc.MaxDimension)
	}
	if cc.DefaultHeight < 1 || cc.DefaultHeight > cc.MaxDimension {
		return fmt.Errorf("canvas.default_height %d out of range [1, %d]", cc.DefaultHeight, cc.MaxDimension)
	}
	if int64(cc.DefaultWidth)*int64(cc.DefaultHeight) > cc.MaxArea {
		return fmt.Errorf("default canvas %dx%d exceeds canvas.max_area %d", cc.DefaultWidth, cc.DefaultHeight, cc.MaxArea)
	}
	if _, err := c.CompressionLevel(); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// CompressionLevel maps png.compression to the encoder setting.
func (c *Config) CompressionLevel() (png.CompressionLevel, error) {
	switch strings.ToLower(c.PNG.Compression) {
	case "", "default":
		return png.DefaultCompression, nil
	case "none":
		return png.NoCompression, nil
	case "speed":
		return png.BestSpeed, nil
	case "best":
		return png.BestCompression, nil
	default:
		return 0, fmt.Errorf("png.compression: unknown level %q", c.PNG.Compression)
	}
}
