package config

import (
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadOptionalMissingFile(t *testing.T) {
	cfg, err := LoadOptional(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Canvas.DefaultWidth != 300 || cfg.Canvas.DefaultHeight != 150 {
		t.Errorf("default size = %dx%d, want 300x150", cfg.Canvas.DefaultWidth, cfg.Canvas.DefaultHeight)
	}
	if cfg.Canvas.MaxDimension != MaxDimension || cfg.Canvas.MaxArea != MaxArea {
		t.Errorf("unexpected limits %+v", cfg.Canvas)
	}
}

func TestLoadOptionalMergesFile(t *testing.T) {
	path := writeConfig(t, `
canvas:
  default_width: 64
  default_height: 32
png:
  compression: best
log:
  level: debug
`)
	cfg, err := LoadOptional(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Canvas.DefaultWidth != 64 || cfg.Canvas.DefaultHeight != 32 {
		t.Errorf("size = %dx%d, want 64x32", cfg.Canvas.DefaultWidth, cfg.Canvas.DefaultHeight)
	}
	if cfg.Canvas.MaxDimension != MaxDimension {
		t.Errorf("max_dimension should keep its default, got %d", cfg.Canvas.MaxDimension)
	}
	lvl, err := cfg.CompressionLevel()
	if err != nil || lvl != png.BestCompression {
		t.Errorf("CompressionLevel = %v, %v", lvl, err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
}

func TestLoadOptionalRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"default too wide", "canvas:\n  default_width: 100\n  max_dimension: 50\n", "default_width"},
		{"area", "canvas:\n  max_area: 10\n", "max_area"},
		{"compression", "png:\n  compression: zopfli\n", "png.compression"},
		{"log level", "log:\n  level: chatty\n", "log.level"},
		{"syntax", "canvas: [", "failed to parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadOptional(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}
