package js

import (
	"fmt"
	"strings"

	"github.com/dop251/goja"

	"canvashost/pkg/canvaserr"
	"canvashost/pkg/codec"
	"canvashost/pkg/ops"
	"canvashost/pkg/surface"
)

// registerDocument sets up the global `document` object. Only canvas
// elements can be created; there is no element tree.
func registerDocument(e *Engine) {
	vm := e.vm
	docObj := vm.NewObject()
	docObj.Set("createElement", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			panic(vm.NewTypeError("Failed to execute 'createElement' on 'Document': 1 argument required"))
		}
		tag := strings.ToLower(call.Arguments[0].String())
		if tag != "canvas" {
			e.throw(canvaserr.New(canvaserr.KindUnsupported, "createElement(%q): only canvas elements are emulated", tag))
		}
		id := e.call(ops.OpCreate).(surface.Handle)
		el := &canvasElement{e: e, id: id}
		e.canvases = append(e.canvases, el)
		return el.object()
	})
	vm.Set("document", docObj)
}

// canvasElement implements goja.DynamicObject for HTMLCanvasElement. It
// holds only the surface handle; width and height are read through the
// dispatcher on every access.
type canvasElement struct {
	e     *Engine
	id    surface.Handle
	obj   *goja.Object
	ctx   *goja.Object
	style *goja.Object
	extra map[string]goja.Value
}

var canvasElementKeys = []string{
	"tagName", "nodeName", "nodeType", "width", "height", "style",
	"getContext", "toDataURL",
}

func (c *canvasElement) object() *goja.Object {
	if c.obj == nil {
		c.obj = c.e.vm.NewDynamicObject(c)
	}
	return c.obj
}

func (c *canvasElement) size() [2]int {
	return c.e.call(ops.OpSize, c.id).([2]int)
}

func (c *canvasElement) Get(key string) goja.Value {
	vm := c.e.vm
	switch key {
	case "tagName", "nodeName":
		return vm.ToValue("CANVAS")
	case "nodeType":
		return vm.ToValue(1) // Node.ELEMENT_NODE
	case "width":
		return vm.ToValue(c.size()[0])
	case "height":
		return vm.ToValue(c.size()[1])
	case "style":
		if c.style == nil {
			c.style = vm.NewObject()
		}
		return c.style
	case "getContext":
		return vm.ToValue(c.getContext)
	case "toDataURL":
		// type and quality are ignored: the output is always PNG.
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			return vm.ToValue(c.e.call(ops.OpToDataURL, c.id))
		})
	}
	if v, ok := c.extra[key]; ok {
		return v
	}
	return nil
}

func (c *canvasElement) Set(key string, val goja.Value) bool {
	switch key {
	case "width", "height":
		c.resize(key, val)
		return true
	case "tagName", "nodeName", "nodeType", "style", "getContext", "toDataURL":
		return false
	}
	if c.extra == nil {
		c.extra = make(map[string]goja.Value)
	}
	c.extra[key] = val
	return true
}

func (c *canvasElement) Has(key string) bool {
	for _, k := range canvasElementKeys {
		if k == key {
			return true
		}
	}
	_, ok := c.extra[key]
	return ok
}

func (c *canvasElement) Delete(key string) bool {
	if _, ok := c.extra[key]; ok {
		delete(c.extra, key)
		return true
	}
	return !c.Has(key)
}

func (c *canvasElement) Keys() []string {
	keys := append([]string(nil), canvasElementKeys...)
	for k := range c.extra {
		keys = append(keys, k)
	}
	return keys
}

// resize replaces the backing surface. As in browsers, assigning width or
// height clears the canvas and resets the fill style, even when the value
// is unchanged. Negative values select the default dimension.
func (c *canvasElement) resize(key string, val goja.Value) {
	cur := c.size()
	n := int(val.ToInteger())
	if key == "width" {
		if n < 0 {
			n = 300
		}
		cur[0] = n
	} else {
		if n < 0 {
			n = 150
		}
		cur[1] = n
	}

	id := c.e.call(ops.OpCreate, cur[0], cur[1]).(surface.Handle)
	c.e.call(ops.OpDestroy, c.id)
	c.id = id
}

func (c *canvasElement) getContext(call goja.FunctionCall) goja.Value {
	kind := call.Argument(0).String()
	c.e.call(ops.OpGetContext, c.id, kind)
	if c.ctx == nil {
		c.ctx = c.e.vm.NewDynamicObject(&context2D{el: c})
	}
	return c.ctx
}

// context2D implements goja.DynamicObject for CanvasRenderingContext2D.
type context2D struct {
	el *canvasElement
}

var context2DKeys = []string{"canvas", "fillStyle", "fillRect", "clearRect", "getImageData", "toDataURL"}

func (x *context2D) Get(key string) goja.Value {
	e := x.el.e
	vm := e.vm
	switch key {
	case "canvas":
		return x.el.object()
	case "fillStyle":
		return vm.ToValue(e.call(ops.OpGetFillStyle, x.el.id))
	case "fillRect":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			r := x.rectArgs("fillRect", call)
			e.call(ops.OpFillRect, x.el.id, r[0], r[1], r[2], r[3])
			return goja.Undefined()
		})
	case "clearRect":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			r := x.rectArgs("clearRect", call)
			e.call(ops.OpClearRect, x.el.id, r[0], r[1], r[2], r[3])
			return goja.Undefined()
		})
	case "getImageData":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			r := x.rectArgs("getImageData", call)
			data := e.call(ops.OpGetImageData, x.el.id, r[0], r[1], r[2], r[3]).(codec.ImageData)
			return x.imageData(data)
		})
	case "toDataURL":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			return vm.ToValue(e.call(ops.OpToDataURL, x.el.id))
		})
	}
	return nil
}

func (x *context2D) Set(key string, val goja.Value) bool {
	if key != "fillStyle" {
		return false
	}
	x.el.e.call(ops.OpSetFillStyle, x.el.id, val.String())
	return true
}

func (x *context2D) Has(key string) bool {
	for _, k := range context2DKeys {
		if k == key {
			return true
		}
	}
	return false
}

func (x *context2D) Delete(key string) bool {
	return !x.Has(key)
}

func (x *context2D) Keys() []string {
	return append([]string(nil), context2DKeys...)
}

// rectArgs converts the four numeric arguments of a rectangle method with
// JS ToNumber semantics. Fewer than four arguments is a TypeError, as in
// browsers.
func (x *context2D) rectArgs(method string, call goja.FunctionCall) [4]float64 {
	if len(call.Arguments) < 4 {
		msg := fmt.Sprintf("Failed to execute '%s' on 'CanvasRenderingContext2D': 4 arguments required, but only %d present.",
			method, len(call.Arguments))
		panic(x.el.e.vm.NewTypeError(msg))
	}
	var r [4]float64
	for i := range r {
		r[i] = call.Arguments[i].ToFloat()
	}
	return r
}

// imageData wraps a read-back buffer in an ImageData-shaped object whose
// data is a Uint8ClampedArray over the returned bytes.
func (x *context2D) imageData(d codec.ImageData) goja.Value {
	vm := x.el.e.vm
	buf := vm.NewArrayBuffer(d.Data)
	arr, err := vm.New(vm.Get("Uint8ClampedArray"), vm.ToValue(buf))
	if err != nil {
		panic(err)
	}
	obj := vm.NewObject()
	obj.Set("data", arr)
	obj.Set("width", d.Width)
	obj.Set("height", d.Height)
	obj.Set("colorSpace", d.ColorSpace)
	return obj
}
