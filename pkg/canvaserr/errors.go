// Package canvaserr defines the error taxonomy shared by every layer of the
// canvas engine. Errors carry the failing operation, a Kind, and the handle
// they were raised against so callers on the far side of the operation
// boundary can react without string matching.
package canvaserr

import (
	"errors"
	"fmt"
)

// Kind identifies the category of an engine error.
type Kind int

const (
	// KindUnknown marks errors from outside the engine and recovered panics.
	KindUnknown Kind = iota
	// KindUnknownHandle indicates a handle that was never issued or has been destroyed.
	KindUnknownHandle
	// KindAllocation indicates a surface or buffer that is too large or impossible to allocate.
	KindAllocation
	// KindEncode indicates an internal PNG encoder failure.
	KindEncode
	// KindInvalidArgument indicates a structurally malformed call.
	KindInvalidArgument
	// KindUnsupported indicates an operation or context type the engine does not provide.
	KindUnsupported
)

func (k Kind) String() string {
	switch k {
	case KindUnknownHandle:
		return "unknown_handle"
	case KindAllocation:
		return "allocation"
	case KindEncode:
		return "encode"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindUnsupported:
		return "unsupported_operation"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is. Any *Error of the matching Kind is considered equal.
var (
	ErrUnknownHandle   = &Error{Kind: KindUnknownHandle}
	ErrAllocation      = &Error{Kind: KindAllocation}
	ErrEncode          = &Error{Kind: KindEncode}
	ErrInvalidArgument = &Error{Kind: KindInvalidArgument}
	ErrUnsupported     = &Error{Kind: KindUnsupported}
)

// Error is a structured engine error.
type Error struct {
	// Op is the boundary operation that failed (e.g. "canvas.fillRect").
	Op string
	// Kind categorizes the error.
	Kind Kind
	// Handle is the surface handle involved, if any.
	Handle uint32
	// HasHandle reports whether Handle is meaningful.
	HasHandle bool
	// Err is the underlying error.
	Err error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Err != nil {
		msg = e.Err.Error()
	}
	switch {
	case e.Op != "" && e.HasHandle:
		return fmt.Sprintf("%s [%s] handle=%d: %s", e.Op, e.Kind, e.Handle, msg)
	case e.Op != "":
		return fmt.Sprintf("%s [%s]: %s", e.Op, e.Kind, msg)
	default:
		return fmt.Sprintf("[%s]: %s", e.Kind, msg)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New creates an error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// WithOp returns a copy of err tagged with op. Errors that are not *Error
// are wrapped as KindUnknown.
func WithOp(op string, err error) error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		cp := *ce
		if cp.Op == "" {
			cp.Op = op
		}
		return &cp
	}
	return &Error{Op: op, Kind: KindUnknown, Err: err}
}

// WithHandle returns a copy of err tagged with the surface handle.
func WithHandle(h uint32, err error) error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		cp := *ce
		cp.Handle, cp.HasHandle = h, true
		return &cp
	}
	return &Error{Kind: KindUnknown, Handle: h, HasHandle: true, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnknown
}
