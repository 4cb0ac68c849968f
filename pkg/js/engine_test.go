package js

import (
	"bytes"
	"strings"
	"testing"

	"canvashost/pkg/ops"
	"canvashost/pkg/surface"
)

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	reg := surface.NewRegistry(surface.Limits{MaxDimension: 4096, MaxArea: 1 << 22})
	var out bytes.Buffer
	opts = append([]Option{WithConsole(&out, &out)}, opts...)
	return New(ops.New(reg), opts...)
}

func run(t *testing.T, e *Engine, src string) {
	t.Helper()
	if err := e.Execute(src); err != nil {
		t.Fatal(err)
	}
}

func TestCreateElementCanvas(t *testing.T) {
	e := newEngine(t)
	run(t, e, `
		var c = document.createElement("canvas");
		if (c.tagName !== "CANVAS") throw new Error("wrong tagName: " + c.tagName);
		if (c.width !== 300) throw new Error("wrong default width: " + c.width);
		if (c.height !== 150) throw new Error("wrong default height: " + c.height);
	`)
	if got := len(e.Canvases()); got != 1 {
		t.Fatalf("expected 1 canvas, got %d", got)
	}
}

func TestCreateElementUppercase(t *testing.T) {
	e := newEngine(t)
	run(t, e, `
		var c = document.createElement("CANVAS");
		if (c.width !== 300) throw new Error("not a canvas");
	`)
}

func TestCreateElementUnsupportedTag(t *testing.T) {
	e := newEngine(t)
	run(t, e, `
		var threw = false;
		try {
			document.createElement("div");
		} catch (err) {
			threw = true;
			if (err.name !== "NotSupportedError") throw new Error("wrong name: " + err.name);
			if (err.kind !== "unsupported_operation") throw new Error("wrong kind: " + err.kind);
		}
		if (!threw) throw new Error("expected createElement('div') to throw");
	`)
}

func TestFillRectThenGetImageData(t *testing.T) {
	e := newEngine(t)
	run(t, e, `
		var c = document.createElement("canvas");
		var ctx = c.getContext("2d");
		ctx.fillStyle = "#ff0000";
		ctx.fillRect(0, 0, 10, 10);
		var img = ctx.getImageData(0, 0, 1, 1);
		if (img.width !== 1 || img.height !== 1) throw new Error("wrong size");
		var d = img.data;
		if (!(d instanceof Uint8ClampedArray)) throw new Error("data is not a Uint8ClampedArray");
		if (d.length !== 4) throw new Error("wrong length: " + d.length);
		if (d[0] !== 255 || d[1] !== 0 || d[2] !== 0 || d[3] !== 255)
			throw new Error("wrong pixel: " + Array.prototype.join.call(d, ","));
		if (img.colorSpace !== "srgb") throw new Error("wrong colorSpace: " + img.colorSpace);
	`)
}

func TestGetImageDataOutsideFill(t *testing.T) {
	e := newEngine(t)
	run(t, e, `
		var ctx = document.createElement("canvas").getContext("2d");
		ctx.fillStyle = "blue";
		ctx.fillRect(0, 0, 10, 10);
		var d = ctx.getImageData(10, 10, 1, 1).data;
		if (d[0] !== 0 || d[1] !== 0 || d[2] !== 0 || d[3] !== 0)
			throw new Error("expected transparent black");
	`)
}

func TestClearRect(t *testing.T) {
	e := newEngine(t)
	run(t, e, `
		var ctx = document.createElement("canvas").getContext("2d");
		ctx.fillRect(0, 0, 20, 20);
		ctx.clearRect(5, 5, 5, 5);
		var d = ctx.getImageData(6, 6, 1, 1).data;
		if (d[3] !== 0) throw new Error("expected cleared pixel, alpha " + d[3]);
		d = ctx.getImageData(0, 0, 1, 1).data;
		if (d[3] !== 255) throw new Error("expected filled pixel, alpha " + d[3]);
	`)
}

func TestFillStyleRoundTrip(t *testing.T) {
	e := newEngine(t)
	run(t, e, `
		var ctx = document.createElement("canvas").getContext("2d");
		if (ctx.fillStyle !== "#000000") throw new Error("wrong default: " + ctx.fillStyle);
		ctx.fillStyle = "RED";
		if (ctx.fillStyle !== "#ff0000") throw new Error("wrong named: " + ctx.fillStyle);
		ctx.fillStyle = "rgba(0, 0, 255, 0.5)";
		if (ctx.fillStyle !== "rgba(0, 0, 255, 0.5)") throw new Error("wrong rgba: " + ctx.fillStyle);
	`)
}

func TestGetContextCached(t *testing.T) {
	e := newEngine(t)
	run(t, e, `
		var c = document.createElement("canvas");
		var a = c.getContext("2d");
		var b = c.getContext("2d");
		if (a !== b) throw new Error("getContext returned different objects");
		if (a.canvas !== c) throw new Error("ctx.canvas is not the element");
	`)
}

func TestGetContextWebGLThrows(t *testing.T) {
	e := newEngine(t)
	run(t, e, `
		var c = document.createElement("canvas");
		var threw = false;
		try {
			c.getContext("webgl");
		} catch (err) {
			threw = true;
			if (err.kind !== "unsupported_operation") throw new Error("wrong kind: " + err.kind);
		}
		if (!threw) throw new Error("expected getContext('webgl') to throw");
	`)
}

func TestFillRectArity(t *testing.T) {
	e := newEngine(t)
	run(t, e, `
		var ctx = document.createElement("canvas").getContext("2d");
		var threw = false;
		try {
			ctx.fillRect(0, 0, 10);
		} catch (err) {
			threw = err instanceof TypeError;
		}
		if (!threw) throw new Error("expected TypeError");
	`)
}

func TestGetImageDataZeroWidth(t *testing.T) {
	e := newEngine(t)
	run(t, e, `
		var ctx = document.createElement("canvas").getContext("2d");
		var threw = false;
		try {
			ctx.getImageData(0, 0, 0, 1);
		} catch (err) {
			threw = true;
			if (!(err instanceof TypeError)) throw new Error("expected TypeError, got " + err.name);
			if (err.kind !== "invalid_argument") throw new Error("wrong kind: " + err.kind);
		}
		if (!threw) throw new Error("expected getImageData to throw");
	`)
}

func TestResizeClearsCanvas(t *testing.T) {
	e := newEngine(t)
	run(t, e, `
		var c = document.createElement("canvas");
		var ctx = c.getContext("2d");
		ctx.fillStyle = "red";
		ctx.fillRect(0, 0, 5, 5);
		c.width = 20;
		if (c.width !== 20) throw new Error("wrong width: " + c.width);
		if (c.height !== 150) throw new Error("height changed: " + c.height);
		if (ctx.fillStyle !== "#000000") throw new Error("fill style not reset: " + ctx.fillStyle);
		var d = ctx.getImageData(0, 0, 1, 1).data;
		if (d[3] !== 0) throw new Error("canvas not cleared");
	`)

	hs := e.Canvases()
	if len(hs) != 1 {
		t.Fatalf("expected 1 canvas, got %d", len(hs))
	}
	if hs[0] == 0 {
		t.Fatal("expected resize to allocate a new handle")
	}
	if n := e.Dispatcher().Registry().Len(); n != 1 {
		t.Fatalf("expected old surface to be destroyed, %d live", n)
	}
	w, h, err := e.Dispatcher().Size(hs[0])
	if err != nil {
		t.Fatal(err)
	}
	if w != 20 || h != 150 {
		t.Fatalf("expected 20x150, got %dx%d", w, h)
	}
}

func TestToDataURL(t *testing.T) {
	e := newEngine(t)
	run(t, e, `
		var c = document.createElement("canvas");
		c.width = 2;
		c.height = 2;
		var url = c.toDataURL("image/jpeg", 0.5);
		if (url.indexOf("data:image/png;base64,") !== 0) throw new Error("wrong prefix: " + url.slice(0, 30));
	`)
}

func TestExpandoProperties(t *testing.T) {
	e := newEngine(t)
	run(t, e, `
		var c = document.createElement("canvas");
		c.id = "main";
		if (c.id !== "main") throw new Error("expando lost");
		c.style.width = "100px";
		if (c.style.width !== "100px") throw new Error("style lost");
	`)
}

func TestWindowAliases(t *testing.T) {
	e := newEngine(t)
	run(t, e, `
		if (window.document !== document) throw new Error("window.document mismatch");
		if (self !== window) throw new Error("self is not window");
	`)
}

func TestConsoleOutput(t *testing.T) {
	var stdout, stderr bytes.Buffer
	e := newEngine(t, WithConsole(&stdout, &stderr))
	run(t, e, `
		console.log("hello", 42);
		console.warn("careful");
		console.error("broken");
	`)
	if got := stdout.String(); got != "hello 42\n" {
		t.Errorf("stdout = %q", got)
	}
	if got := stderr.String(); !strings.Contains(got, "WARN: careful") || !strings.Contains(got, "ERROR: broken") {
		t.Errorf("stderr = %q", got)
	}
}

func TestExecuteStopsAtFirstError(t *testing.T) {
	e := newEngine(t)
	err := e.Execute(
		`var a = 1;`,
		`throw new Error("boom");`,
		`document.createElement("canvas");`,
	)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "script 1") {
		t.Errorf("error does not name the script: %v", err)
	}
	if len(e.Canvases()) != 0 {
		t.Error("script after the failure was executed")
	}
}

func TestCanvasesInCreationOrder(t *testing.T) {
	e := newEngine(t)
	run(t, e, `
		document.createElement("canvas");
		document.createElement("canvas");
		document.createElement("canvas");
	`)
	hs := e.Canvases()
	if len(hs) != 3 {
		t.Fatalf("expected 3 canvases, got %d", len(hs))
	}
	for i := 1; i < len(hs); i++ {
		if hs[i] <= hs[i-1] {
			t.Fatalf("handles out of order: %v", hs)
		}
	}
}

func TestContextToDataURL(t *testing.T) {
	e := newEngine(t)
	run(t, e, `
		var c = document.createElement("canvas");
		c.width = 3;
		c.height = 3;
		var ctx = c.getContext("2d");
		if (typeof ctx.toDataURL !== "function") throw new Error("ctx.toDataURL is " + typeof ctx.toDataURL);
		ctx.fillRect(0, 0, 1, 1);
		var url = ctx.toDataURL("image/webp", 0.1);
		if (url.indexOf("data:image/png;base64,") !== 0) throw new Error("wrong prefix: " + url.slice(0, 30));
		if (url !== c.toDataURL()) throw new Error("context and element disagree");
	`)
}

func TestResizeToZeroRejected(t *testing.T) {
	e := newEngine(t)
	run(t, e, `
		var c = document.createElement("canvas");
		var ctx = c.getContext("2d");
		ctx.fillRect(0, 0, 1, 1);
		[0, NaN].forEach(function (v) {
			var threw = false;
			try {
				c.width = v;
			} catch (err) {
				threw = err instanceof RangeError && err.kind === "allocation";
			}
			if (!threw) throw new Error("expected RangeError for width " + v);
		});
		if (c.width !== 300) throw new Error("width changed: " + c.width);
		if (ctx.getImageData(0, 0, 1, 1).data[3] !== 255) throw new Error("old surface lost");
	`)
	if n := e.Dispatcher().Registry().Len(); n != 1 {
		t.Fatalf("expected 1 live surface, got %d", n)
	}
}
