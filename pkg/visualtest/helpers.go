package visualtest

import (
	"fmt"
	"os"
	"path/filepath"

	"canvashost/pkg/config"
	"canvashost/pkg/js"
	"canvashost/pkg/ops"
	"canvashost/pkg/surface"
)

// RenderScriptToFile runs src and writes the last canvas it created to
// outputPath as PNG.
func RenderScriptToFile(name, src, outputPath string) error {
	d, h, err := lastCanvas(name, src)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	data, err := d.EncodePNG(h)
	if err != nil {
		return err
	}
	return os.WriteFile(outputPath, data, 0644)
}

// RenderScriptFile renders the script at scriptPath to outputPath.
func RenderScriptFile(scriptPath, outputPath string) error {
	src, err := os.ReadFile(scriptPath)
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}
	return RenderScriptToFile(scriptPath, string(src), outputPath)
}

// UpdateReferenceImage regenerates referencePath from scriptPath. Use it
// only after an intentional change in output.
func UpdateReferenceImage(scriptPath, referencePath string) error {
	fmt.Printf("Updating reference image: %s\n", referencePath)
	return RenderScriptFile(scriptPath, referencePath)
}

// lastCanvas runs src in a fresh engine and returns the handle of the last
// canvas it created.
func lastCanvas(name, src string) (*ops.Dispatcher, surface.Handle, error) {
	d, err := ops.FromConfig(config.Default())
	if err != nil {
		return nil, 0, err
	}
	e := js.New(d, js.WithConsole(os.Stderr, os.Stderr))
	if err := e.Run(name, src); err != nil {
		return nil, 0, err
	}
	hs := e.Canvases()
	if len(hs) == 0 {
		return nil, 0, fmt.Errorf("%s: script created no canvas", name)
	}
	return d, hs[len(hs)-1], nil
}
