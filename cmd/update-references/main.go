package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"canvashost/pkg/visualtest"
)

// Regenerates the reference PNGs used by the visual regression tests from
// the scripts next to them.
func main() {
	dir := "testdata/canvas"
	if len(os.Args) > 2 || (len(os.Args) == 2 && strings.HasPrefix(os.Args[1], "-")) {
		fmt.Println("Reference Image Generator for canvashost")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/update-references [dir]")
		fmt.Println()
		fmt.Println("Renders every <dir>/*.js to <dir>/reference/<name>.png (default dir: testdata/canvas).")
		fmt.Println()
		fmt.Println("Or use the test-based approach:")
		fmt.Println("  UPDATE_REFS=1 go test ./pkg/visualtest -run TestReferenceScripts")
		os.Exit(1)
	}
	if len(os.Args) == 2 {
		dir = os.Args[1]
	}

	n, err := generateReferences(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generated %d reference images\n", n)
}

func generateReferences(dir string) (int, error) {
	scripts, err := filepath.Glob(filepath.Join(dir, "*.js"))
	if err != nil {
		return 0, err
	}
	if len(scripts) == 0 {
		return 0, fmt.Errorf("no scripts in %s", dir)
	}

	for _, script := range scripts {
		name := strings.TrimSuffix(filepath.Base(script), ".js")
		ref := filepath.Join(dir, "reference", name+".png")
		if err := visualtest.UpdateReferenceImage(script, ref); err != nil {
			return 0, fmt.Errorf("failed to generate %s: %w", ref, err)
		}
	}
	return len(scripts), nil
}
