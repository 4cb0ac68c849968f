package ops

import (
	"errors"
	"testing"

	"canvashost/pkg/canvaserr"
	"canvashost/pkg/config"
)

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Canvas.DefaultWidth = 64
	cfg.Canvas.DefaultHeight = 32
	cfg.Canvas.MaxDimension = 100
	cfg.Canvas.MaxArea = 100 * 100
	cfg.PNG.Compression = "best"

	d, err := FromConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	id, err := d.CreateDefault()
	if err != nil {
		t.Fatal(err)
	}
	w, h, err := d.Size(id)
	if err != nil {
		t.Fatal(err)
	}
	if w != 64 || h != 32 {
		t.Errorf("default size = %dx%d, want 64x32", w, h)
	}
	if _, err := d.Create(101, 1); !errors.Is(err, canvaserr.ErrAllocation) {
		t.Errorf("expected allocation error above max dimension, got %v", err)
	}
	if _, err := d.EncodePNG(id); err != nil {
		t.Errorf("EncodePNG: %v", err)
	}
}

func TestFromConfigInvalid(t *testing.T) {
	cfg := config.Default()
	cfg.PNG.Compression = "extreme"
	if _, err := FromConfig(cfg); err == nil {
		t.Fatal("expected error for unknown compression level")
	}
}
