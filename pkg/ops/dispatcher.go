// Package ops is the operation boundary of the canvas engine. Callers name
// an operation and pass loosely typed arguments; the Dispatcher validates
// them, resolves the target surface, runs the raster or codec function and
// returns either a result or a *canvaserr.Error. Nothing a caller passes
// can crash the process.
package ops

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"canvashost/pkg/canvaserr"
	"canvashost/pkg/codec"
	"canvashost/pkg/logging"
	"canvashost/pkg/surface"
)

// Operation names accepted by Call.
const (
	OpCreate       = "canvas.create"
	OpDestroy      = "canvas.destroy"
	OpSize         = "canvas.size"
	OpFillRect     = "canvas.fillRect"
	OpClearRect    = "canvas.clearRect"
	OpSetFillStyle = "canvas.setFillStyle"
	OpGetFillStyle = "canvas.getFillStyle"
	OpGetImageData = "canvas.getImageData"
	OpToDataURL    = "canvas.toDataURL"
	OpEncodePNG    = "canvas.encodePNG"
	OpGetContext   = "canvas.getContext"
)

// Context2D is the only rendering context type the engine provides.
const Context2D = "2d"

type handler func(d *Dispatcher, a args) (any, error)

var handlers = map[string]handler{
	OpCreate:       (*Dispatcher).callCreate,
	OpDestroy:      (*Dispatcher).callDestroy,
	OpSize:         (*Dispatcher).callSize,
	OpFillRect:     (*Dispatcher).callFillRect,
	OpClearRect:    (*Dispatcher).callClearRect,
	OpSetFillStyle: (*Dispatcher).callSetFillStyle,
	OpGetFillStyle: (*Dispatcher).callGetFillStyle,
	OpGetImageData: (*Dispatcher).callGetImageData,
	OpToDataURL:    (*Dispatcher).callToDataURL,
	OpEncodePNG:    (*Dispatcher).callEncodePNG,
	OpGetContext:   (*Dispatcher).callGetContext,
}

// Operations returns the supported operation names, sorted.
func Operations() []string {
	names := make([]string, 0, len(handlers))
	for name := range handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatcher routes boundary calls. It holds no per-call state; all state
// lives in the registry's surfaces.
type Dispatcher struct {
	reg           *surface.Registry
	codec         *codec.Codec
	defaultWidth  int
	defaultHeight int
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithDefaultSize sets the size used by canvas.create when none is given.
func WithDefaultSize(width, height int) Option {
	return func(d *Dispatcher) {
		d.defaultWidth, d.defaultHeight = width, height
	}
}

// WithCodec replaces the default codec.
func WithCodec(c *codec.Codec) Option {
	return func(d *Dispatcher) {
		d.codec = c
	}
}

// New creates a dispatcher over reg. Without options, new canvases are
// 300×150 and PNGs use default compression.
func New(reg *surface.Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		reg:           reg,
		defaultWidth:  300,
		defaultHeight: 150,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.codec == nil {
		d.codec = codec.New(codec.Options{MaxArea: reg.Limits().MaxArea})
	}
	return d
}

// Registry returns the registry the dispatcher routes to.
func (d *Dispatcher) Registry() *surface.Registry { return d.reg }

// Call runs one boundary operation. The result type depends on op:
// surface.Handle, [2]int, string, []byte, codec.ImageData or nil.
func (d *Dispatcher) Call(op string, argv ...any) (result any, err error) {
	log := logging.Logger()
	defer func() {
		if r := recover(); r != nil {
			log.Error("operation panicked", "op", op, "panic", r)
			result, err = nil, &canvaserr.Error{Op: op, Kind: canvaserr.KindUnknown,
				Err: fmt.Errorf("internal error: %v", r)}
		}
	}()

	h, ok := handlers[op]
	if !ok {
		log.Warn("unsupported operation", "op", op)
		return nil, unsupported(op)
	}

	log.Debug("operation", "op", op, "args", len(argv))
	result, err = h(d, args(argv))
	if err != nil {
		err = canvaserr.WithOp(op, err)
		log.Warn("operation failed", "op", op, "kind", canvaserr.KindOf(err), "err", err)
		return nil, err
	}
	return result, nil
}

func unsupported(op string) error {
	msg := fmt.Sprintf("unsupported operation %q", op)
	if s := suggest(op); s != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", s)
	}
	return &canvaserr.Error{Op: op, Kind: canvaserr.KindUnsupported, Err: fmt.Errorf("%s", msg)}
}

// suggest returns the closest known operation name, or "".
func suggest(op string) string {
	if op == "" {
		return ""
	}
	ranks := fuzzy.RankFindNormalizedFold(op, Operations())
	if len(ranks) == 0 {
		// Allow the bare method name ("fillrect" for "canvas.fillRect").
		if !strings.Contains(op, ".") {
			ranks = fuzzy.RankFindNormalizedFold("canvas."+op, Operations())
		}
		if len(ranks) == 0 {
			return ""
		}
	}
	sort.Sort(ranks)
	return ranks[0].Target
}

func (d *Dispatcher) callCreate(a args) (any, error) {
	if err := a.arity(0, 2); err != nil {
		return nil, err
	}
	if !a.present(0) && !a.present(1) {
		return d.CreateDefault()
	}
	width, height := d.defaultWidth, d.defaultHeight
	var err error
	if a.present(0) {
		if width, err = a.dimension(0, "width"); err != nil {
			return nil, err
		}
	}
	if a.present(1) {
		if height, err = a.dimension(1, "height"); err != nil {
			return nil, err
		}
	}
	return d.Create(width, height)
}

func (d *Dispatcher) callDestroy(a args) (any, error) {
	if err := a.arity(1, 1); err != nil {
		return nil, err
	}
	id, err := a.handle(0)
	if err != nil {
		return nil, err
	}
	return nil, d.Destroy(id)
}

func (d *Dispatcher) callSize(a args) (any, error) {
	if err := a.arity(1, 1); err != nil {
		return nil, err
	}
	id, err := a.handle(0)
	if err != nil {
		return nil, err
	}
	w, h, err := d.Size(id)
	if err != nil {
		return nil, err
	}
	return [2]int{w, h}, nil
}

// rectArgs parses handle, x, y, w, h.
func (a args) rectArgs() (surface.Handle, [4]float64, error) {
	var r [4]float64
	id, err := a.handle(0)
	if err != nil {
		return 0, r, err
	}
	for i, name := range [...]string{"x", "y", "width", "height"} {
		if r[i], err = a.float(i+1, name); err != nil {
			return 0, r, err
		}
	}
	return id, r, nil
}

func (d *Dispatcher) callFillRect(a args) (any, error) {
	if err := a.arity(5, 6); err != nil {
		return nil, err
	}
	id, r, err := a.rectArgs()
	if err != nil {
		return nil, err
	}
	if a.present(5) {
		style, err := a.str(5, "color")
		if err != nil {
			return nil, err
		}
		return nil, d.FillRectColor(id, r[0], r[1], r[2], r[3], style)
	}
	return nil, d.FillRect(id, r[0], r[1], r[2], r[3])
}

func (d *Dispatcher) callClearRect(a args) (any, error) {
	if err := a.arity(5, 5); err != nil {
		return nil, err
	}
	id, r, err := a.rectArgs()
	if err != nil {
		return nil, err
	}
	return nil, d.ClearRect(id, r[0], r[1], r[2], r[3])
}

func (d *Dispatcher) callSetFillStyle(a args) (any, error) {
	if err := a.arity(2, 2); err != nil {
		return nil, err
	}
	id, err := a.handle(0)
	if err != nil {
		return nil, err
	}
	style, err := a.str(1, "fillStyle")
	if err != nil {
		return nil, err
	}
	return nil, d.SetFillStyle(id, style)
}

func (d *Dispatcher) callGetFillStyle(a args) (any, error) {
	if err := a.arity(1, 1); err != nil {
		return nil, err
	}
	id, err := a.handle(0)
	if err != nil {
		return nil, err
	}
	return d.FillStyle(id)
}

func (d *Dispatcher) callGetImageData(a args) (any, error) {
	if err := a.arity(5, 5); err != nil {
		return nil, err
	}
	id, err := a.handle(0)
	if err != nil {
		return nil, err
	}
	var r [4]int
	for i, name := range [...]string{"x", "y", "width", "height"} {
		if r[i], err = a.int32(i+1, name); err != nil {
			return nil, err
		}
	}
	return d.GetImageData(id, r[0], r[1], r[2], r[3])
}

func (d *Dispatcher) callToDataURL(a args) (any, error) {
	// type and quality are accepted and ignored: the output is always PNG.
	if err := a.arity(1, 3); err != nil {
		return nil, err
	}
	id, err := a.handle(0)
	if err != nil {
		return nil, err
	}
	return d.ToDataURL(id)
}

func (d *Dispatcher) callEncodePNG(a args) (any, error) {
	if err := a.arity(1, 1); err != nil {
		return nil, err
	}
	id, err := a.handle(0)
	if err != nil {
		return nil, err
	}
	return d.EncodePNG(id)
}

func (d *Dispatcher) callGetContext(a args) (any, error) {
	if err := a.arity(2, 3); err != nil {
		return nil, err
	}
	id, err := a.handle(0)
	if err != nil {
		return nil, err
	}
	kind, err := a.str(1, "contextType")
	if err != nil {
		return nil, err
	}
	return nil, d.GetContext(id, kind)
}
