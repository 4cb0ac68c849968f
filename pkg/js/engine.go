// Package js hosts scripts that expect a browser canvas. It exposes
// document.createElement('canvas'), HTMLCanvasElement and
// CanvasRenderingContext2D on a goja runtime, forwarding every drawing call
// to an ops.Dispatcher by surface handle. The runtime never touches pixel
// memory directly.
package js

import (
	"fmt"
	"io"
	"os"

	"github.com/dop251/goja"

	"canvashost/pkg/ops"
	"canvashost/pkg/surface"
)

// Engine executes JavaScript against an emulated canvas DOM. An Engine is
// not safe for concurrent use; goja runtimes are single-goroutine.
type Engine struct {
	vm       *goja.Runtime
	ops      *ops.Dispatcher
	canvases []*canvasElement
	stdout   io.Writer
	stderr   io.Writer
}

// Option configures an Engine.
type Option func(*Engine)

// WithConsole redirects console.log to stdout and console.warn/error to
// stderr. The defaults are os.Stdout and os.Stderr.
func WithConsole(stdout, stderr io.Writer) Option {
	return func(e *Engine) {
		e.stdout, e.stderr = stdout, stderr
	}
}

// New creates a new JS engine with a fresh goja runtime bound to d.
func New(d *ops.Dispatcher, opts ...Option) *Engine {
	e := &Engine{
		vm:     goja.New(),
		ops:    d,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(e)
	}

	c := &consoleAPI{stdout: e.stdout, stderr: e.stderr}
	c.register(e.vm)

	registerWindow(e.vm)
	registerDocument(e)

	return e
}

// Run executes one script. name is used in stack traces.
func (e *Engine) Run(name, src string) error {
	if _, err := e.vm.RunScript(name, src); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Execute runs scripts in order and stops at the first error.
func (e *Engine) Execute(scripts ...string) error {
	for i, script := range scripts {
		if _, err := e.vm.RunString(script); err != nil {
			return fmt.Errorf("script %d: %w", i, err)
		}
	}
	return nil
}

// RunFile reads and executes the script at path.
func (e *Engine) RunFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading script: %w", err)
	}
	return e.Run(path, string(src))
}

// Canvases returns the handles of the canvases created by scripts, in
// creation order.
func (e *Engine) Canvases() []surface.Handle {
	hs := make([]surface.Handle, len(e.canvases))
	for i, c := range e.canvases {
		hs[i] = c.id
	}
	return hs
}

// Dispatcher returns the dispatcher the engine draws through.
func (e *Engine) Dispatcher() *ops.Dispatcher { return e.ops }

// registerWindow makes window and self aliases of the global object.
func registerWindow(vm *goja.Runtime) {
	global := vm.GlobalObject()
	global.Set("window", global)
	global.Set("self", global)
}
