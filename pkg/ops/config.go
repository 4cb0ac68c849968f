package ops

import (
	"canvashost/pkg/codec"
	"canvashost/pkg/config"
	"canvashost/pkg/surface"
)

// FromConfig builds a dispatcher and a fresh registry from cfg.
func FromConfig(cfg *config.Config) (*Dispatcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	level, err := cfg.CompressionLevel()
	if err != nil {
		return nil, err
	}
	reg := surface.NewRegistry(surface.Limits{
		MaxDimension: cfg.Canvas.MaxDimension,
		MaxArea:      cfg.Canvas.MaxArea,
	})
	return New(reg,
		WithDefaultSize(cfg.Canvas.DefaultWidth, cfg.Canvas.DefaultHeight),
		WithCodec(codec.New(codec.Options{Compression: level, MaxArea: cfg.Canvas.MaxArea})),
	), nil
}
