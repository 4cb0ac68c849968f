package js

import (
	"fmt"
	"io"
	"strings"

	"github.com/dop251/goja"

	"canvashost/pkg/logging"
)

// consoleAPI implements console.log, console.info, console.warn, and console.error.
type consoleAPI struct {
	stdout io.Writer
	stderr io.Writer
}

func (c *consoleAPI) register(vm *goja.Runtime) {
	console := vm.NewObject()
	console.Set("log", c.log)
	console.Set("info", c.log)
	console.Set("warn", c.warn)
	console.Set("error", c.errorFn)
	vm.Set("console", console)
}

func (c *consoleAPI) log(call goja.FunctionCall) goja.Value {
	msg := formatArgs(call.Arguments)
	logging.Logger().Info("console.log", "msg", msg)
	fmt.Fprintln(c.stdout, msg)
	return goja.Undefined()
}

func (c *consoleAPI) warn(call goja.FunctionCall) goja.Value {
	msg := formatArgs(call.Arguments)
	logging.Logger().Warn("console.warn", "msg", msg)
	fmt.Fprintln(c.stderr, "WARN:", msg)
	return goja.Undefined()
}

func (c *consoleAPI) errorFn(call goja.FunctionCall) goja.Value {
	msg := formatArgs(call.Arguments)
	logging.Logger().Error("console.error", "msg", msg)
	fmt.Fprintln(c.stderr, "ERROR:", msg)
	return goja.Undefined()
}

func formatArgs(args []goja.Value) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = arg.String()
	}
	return strings.Join(parts, " ")
}
