package js

import (
	"github.com/dop251/goja"

	"canvashost/pkg/canvaserr"
)

// call runs a boundary operation and rethrows failures as JS exceptions.
func (e *Engine) call(op string, args ...any) any {
	res, err := e.ops.Call(op, args...)
	if err != nil {
		panic(e.jsError(err))
	}
	return res
}

// throw raises err as a JS exception.
func (e *Engine) throw(err error) {
	panic(e.jsError(err))
}

// jsError converts an engine error into a JS error object. The object's
// kind property carries the engine error kind.
func (e *Engine) jsError(err error) *goja.Object {
	kind := canvaserr.KindOf(err)

	ctor, name := "Error", ""
	switch kind {
	case canvaserr.KindInvalidArgument:
		ctor = "TypeError"
	case canvaserr.KindAllocation:
		ctor = "RangeError"
	case canvaserr.KindUnknownHandle:
		name = "InvalidStateError"
	case canvaserr.KindUnsupported:
		name = "NotSupportedError"
	case canvaserr.KindEncode:
		name = "EncodingError"
	}

	obj, newErr := e.vm.New(e.vm.Get(ctor), e.vm.ToValue(err.Error()))
	if newErr != nil {
		return e.vm.NewGoError(err)
	}
	if name != "" {
		obj.Set("name", name)
	}
	obj.Set("kind", kind.String())
	return obj
}
