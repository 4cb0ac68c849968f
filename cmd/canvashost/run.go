package main

import (
	"fmt"
	"os"
	"path/filepath"

	"canvashost/pkg/images"
	"canvashost/pkg/js"
	"canvashost/pkg/logging"
	"canvashost/pkg/preview"
	"canvashost/pkg/visualtest"
)

type runCmd struct {
	Scripts   []string `arg:"" type:"existingfile" help:"Scripts to execute in order, sharing one engine."`
	Out       string   `short:"o" type:"path" default:"." help:"Directory for canvas PNGs."`
	Expect    string   `type:"existingfile" help:"Reference PNG the last canvas must match."`
	Tolerance int      `default:"0" help:"Per-channel tolerance when comparing with --expect."`
	Preview   bool     `short:"p" help:"Also write checkerboard previews."`
	Scale     int      `default:"1" help:"Preview magnification."`
}

func (r *runCmd) Run(g Globals) error {
	d, err := g.setup()
	if err != nil {
		return err
	}

	e := js.New(d)
	for _, script := range r.Scripts {
		if err := e.RunFile(script); err != nil {
			return err
		}
	}

	hs := e.Canvases()
	if len(hs) == 0 {
		logging.Logger().Warn("scripts created no canvas")
		return nil
	}
	if err := os.MkdirAll(r.Out, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	base := scriptBase(r.Scripts[len(r.Scripts)-1])
	for i, h := range hs {
		data, err := d.EncodePNG(h)
		if err != nil {
			return err
		}
		path := filepath.Join(r.Out, fmt.Sprintf("%s-%d.png", base, i))
		if err := os.WriteFile(path, data, 0644); err != nil {
			return err
		}
		fmt.Println(path)

		if r.Preview {
			opts := preview.DefaultOptions()
			opts.Scale = r.Scale
			pp := filepath.Join(r.Out, fmt.Sprintf("%s-%d.preview.png", base, i))
			if err := preview.SavePNG(d, h, pp, opts); err != nil {
				return err
			}
			fmt.Println(pp)
		}
	}

	if r.Expect == "" {
		return nil
	}
	actual, err := preview.Snapshot(d, hs[len(hs)-1])
	if err != nil {
		return err
	}
	expected, err := images.LoadImage(r.Expect)
	if err != nil {
		return err
	}
	opts := visualtest.DefaultOptions()
	opts.Tolerance = r.Tolerance
	res, err := visualtest.CompareImages(actual, expected, opts)
	if err != nil {
		return err
	}
	if !res.Match {
		return fmt.Errorf("canvas differs from %s: %d/%d pixels (max difference %d)",
			r.Expect, res.DifferentPixels, res.TotalPixels, res.MaxDifference)
	}
	return nil
}

func scriptBase(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}
