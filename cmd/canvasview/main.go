// Command canvasview runs canvas scripts and shows the canvases they create
// in a window.
package main

import (
	"fmt"
	"image"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"canvashost/pkg/config"
	"canvashost/pkg/js"
	"canvashost/pkg/ops"
	"canvashost/pkg/preview"
	"canvashost/pkg/surface"
)

const (
	viewWidth  = 1024
	viewHeight = 700
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <script.js>...\n", os.Args[0])
		os.Exit(1)
	}
	scripts := os.Args[1:]

	a := app.New()
	w := a.NewWindow("canvasview")
	w.Resize(fyne.NewSize(viewWidth, viewHeight+80))

	img := canvas.NewImageFromImage(image.NewNRGBA(image.Rect(0, 0, 1, 1)))
	img.FillMode = canvas.ImageFillOriginal
	img.ScaleMode = canvas.ImageScalePixels

	status := widget.NewLabel("")

	var (
		d  *ops.Dispatcher
		hs []surface.Handle
	)

	show := func(i int) {
		if d == nil || i < 0 || i >= len(hs) {
			return
		}
		w0, h0, err := d.Size(hs[i])
		if err != nil {
			status.SetText("Error: " + err.Error())
			return
		}
		opts := preview.DefaultOptions()
		opts.Scale = preview.FitScale(w0, h0, viewWidth, viewHeight)
		rendered, err := preview.Surface(d, hs[i], opts)
		if err != nil {
			status.SetText("Error: " + err.Error())
			return
		}
		img.Image = rendered
		img.Refresh()
		status.SetText(fmt.Sprintf("canvas %d: %dx%d at %dx", i, w0, h0, opts.Scale))
	}

	picker := widget.NewSelect(nil, nil)
	picker.OnChanged = func(string) { show(picker.SelectedIndex()) }

	load := func() {
		var err error
		d, hs, err = runScripts(scripts)
		if err != nil {
			status.SetText("Script error: " + err.Error())
			return
		}
		options := make([]string, len(hs))
		for i, h := range hs {
			options[i] = fmt.Sprintf("canvas %d (handle %d)", i, h)
		}
		picker.Options = options
		if len(hs) == 0 {
			picker.ClearSelected()
			status.SetText("Scripts created no canvas")
			return
		}
		picker.SetSelectedIndex(len(hs) - 1)
		// OnChanged does not fire when a reload keeps the same selection.
		show(len(hs) - 1)
	}

	reload := widget.NewButton("Reload", load)
	topBar := container.NewBorder(nil, nil, nil, reload, picker)
	w.SetContent(container.NewBorder(topBar, status, nil, nil, container.NewScroll(img)))
	w.SetTitle(fmt.Sprintf("canvasview: %s", scripts[len(scripts)-1]))

	load()
	w.ShowAndRun()
}

// runScripts executes scripts in a fresh engine and returns the handles of
// the canvases they created.
func runScripts(scripts []string) (*ops.Dispatcher, []surface.Handle, error) {
	cfg, err := config.LoadOptional("")
	if err != nil {
		return nil, nil, err
	}
	d, err := ops.FromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	e := js.New(d)
	for _, s := range scripts {
		if err := e.RunFile(s); err != nil {
			return nil, nil, err
		}
	}
	return d, e.Canvases(), nil
}
