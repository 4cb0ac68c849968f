package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"

	"canvashost/pkg/logging"
	"canvashost/pkg/ops"
	"canvashost/pkg/surface"
)

const testdataDir = "../../testdata/canvas"

func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	var c cli
	parser, err := kong.New(&c, kong.Name("canvashost"))
	if err != nil {
		t.Fatal(err)
	}
	// An explicit, missing config file keeps the user's XDG config out of the test.
	args = append([]string{"--config", filepath.Join(t.TempDir(), "none.yaml")}, args...)
	ctx, err := parser.Parse(args)
	if err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}
	return ctx.Run(c.Globals)
}

func TestRunWritesCanvases(t *testing.T) {
	out := t.TempDir()
	script := filepath.Join(testdataDir, "red_square.js")
	reference := filepath.Join(testdataDir, "reference", "red_square.png")

	if err := runCLI(t, "run", "--out", out, "--expect", reference, "--preview", "--scale", "2", script); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"red_square-0.png", "red_square-0.preview.png"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
}

func TestRunExpectMismatch(t *testing.T) {
	script := filepath.Join(testdataDir, "replace_not_blend.js")
	reference := filepath.Join(testdataDir, "reference", "clear_hole.png")

	err := runCLI(t, "run", "--out", t.TempDir(), "--expect", reference, script)
	if err == nil {
		t.Fatal("expected mismatch error")
	}
}

func TestRunScriptError(t *testing.T) {
	script := filepath.Join(t.TempDir(), "bad.js")
	if err := os.WriteFile(script, []byte(`document.createElement("canvas").getContext("webgl");`), 0644); err != nil {
		t.Fatal(err)
	}
	err := runCLI(t, "run", "--out", t.TempDir(), script)
	if err == nil || !strings.Contains(err.Error(), "bad.js") {
		t.Fatalf("expected script error naming bad.js, got %v", err)
	}
}

func TestScriptBase(t *testing.T) {
	if got := scriptBase("/tmp/x/demo.min.js"); got != "demo.min" {
		t.Errorf("scriptBase = %q", got)
	}
}

func TestServeReportsLiveSurfaces(t *testing.T) {
	var logs bytes.Buffer
	logging.SetLogger(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelInfo})))
	t.Cleanup(func() { logging.SetLogger(nil) })

	d := ops.New(surface.NewRegistry(surface.Limits{MaxDimension: 64, MaxArea: 64 * 64}))
	in := strings.NewReader(`{"id":1,"op":"canvas.create","args":[4,4]}
{"id":2,"op":"canvas.create"}
{"id":3,"op":"canvas.destroy","args":[0]}
`)
	var out bytes.Buffer
	if err := serve(context.Background(), d, in, &out); err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(out.String(), "\n"); n != 3 {
		t.Fatalf("expected 3 responses, got %d: %s", n, out.String())
	}
	if got := logs.String(); !strings.Contains(got, "live surfaces") || !strings.Contains(got, "count=1") {
		t.Errorf("expected live surface report, got %q", got)
	}
}
