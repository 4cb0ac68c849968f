package ops

import (
	"encoding/json"
	"math"

	"canvashost/pkg/canvaserr"
	"canvashost/pkg/surface"
)

// args is the raw argument list of one boundary call.
type args []any

func invalid(format string, a ...any) error {
	return canvaserr.New(canvaserr.KindInvalidArgument, format, a...)
}

func (a args) arity(min, max int) error {
	if len(a) < min || len(a) > max {
		if min == max {
			return invalid("expected %d arguments, got %d", min, len(a))
		}
		return invalid("expected %d to %d arguments, got %d", min, max, len(a))
	}
	return nil
}

// present reports whether argument i was supplied and is not null.
func (a args) present(i int) bool {
	return i < len(a) && a[i] != nil
}

// number converts any Go numeric type (and json.Number) to float64.
// Strings, booleans and everything else are rejected.
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case surface.Handle:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func (a args) float(i int, name string) (float64, error) {
	f, ok := number(a[i])
	if !ok {
		return 0, invalid("%s must be a number, got %T", name, a[i])
	}
	return f, nil
}

// int32 applies the integer coercion used for read-back coordinates:
// NaN becomes 0, fractions truncate toward zero, and values saturate at
// the int32 range.
func (a args) int32(i int, name string) (int, error) {
	f, err := a.float(i, name)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) {
		return 0, nil
	}
	return int(math.Trunc(math.Max(math.MinInt32, math.Min(math.MaxInt32, f)))), nil
}

// dimension coerces a surface width or height. Fractions truncate;
// non-finite values are rejected.
func (a args) dimension(i int, name string) (int, error) {
	f, err := a.float(i, name)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, invalid("%s must be finite", name)
	}
	return int(math.Trunc(math.Max(math.MinInt32, math.Min(math.MaxInt32, f)))), nil
}

func (a args) handle(i int) (surface.Handle, error) {
	f, ok := number(a[i])
	if !ok {
		return 0, invalid("handle must be an integer, got %T", a[i])
	}
	if f != math.Trunc(f) || f < 0 || f > math.MaxUint32 {
		return 0, invalid("handle must be a non-negative 32-bit integer, got %v", f)
	}
	return surface.Handle(f), nil
}

func (a args) str(i int, name string) (string, error) {
	s, ok := a[i].(string)
	if !ok {
		return "", invalid("%s must be a string, got %T", name, a[i])
	}
	return s, nil
}
