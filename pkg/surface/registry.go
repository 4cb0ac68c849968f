package surface

import (
	"math"
	"sort"
	"sync"

	"canvashost/pkg/canvaserr"
	"canvashost/pkg/logging"
)

// Handle identifies a Surface across the operation boundary.
type Handle uint32

// Limits bounds the surfaces a Registry will allocate.
type Limits struct {
	// MaxDimension is the largest accepted width or height.
	MaxDimension int
	// MaxArea is the largest accepted width*height.
	MaxArea int64
}

// Registry maps handles to surfaces. Handles are issued monotonically from
// zero and never reused, even after Destroy.
type Registry struct {
	mu        sync.RWMutex
	surfaces  map[Handle]*Surface
	next      Handle
	exhausted bool
	limits    Limits
}

// NewRegistry creates an empty registry enforcing limits.
func NewRegistry(limits Limits) *Registry {
	return &Registry{
		surfaces: make(map[Handle]*Surface),
		limits:   limits,
	}
}

// Limits returns the allocation bounds of the registry.
func (r *Registry) Limits() Limits { return r.limits }

// Create allocates a zero-initialized (transparent black) surface.
func (r *Registry) Create(width, height int) (Handle, error) {
	if err := r.checkSize(width, height); err != nil {
		return 0, err
	}

	s := newSurface(width, height)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.exhausted {
		return 0, canvaserr.New(canvaserr.KindAllocation, "handle space exhausted")
	}
	h := r.next
	r.surfaces[h] = s
	if r.next == math.MaxUint32 {
		r.exhausted = true
	} else {
		r.next++
	}

	logging.Logger().Debug("surface created", "handle", h, "width", width, "height", height)
	return h, nil
}

func (r *Registry) checkSize(width, height int) error {
	if width < 1 || height < 1 {
		return canvaserr.New(canvaserr.KindAllocation, "invalid surface size %dx%d", width, height)
	}
	if width > r.limits.MaxDimension || height > r.limits.MaxDimension {
		return canvaserr.New(canvaserr.KindAllocation, "surface size %dx%d exceeds max dimension %d",
			width, height, r.limits.MaxDimension)
	}
	if int64(width)*int64(height) > r.limits.MaxArea {
		return canvaserr.New(canvaserr.KindAllocation, "surface area %dx%d exceeds max area %d",
			width, height, r.limits.MaxArea)
	}
	return nil
}

// Resolve returns the surface for h without locking it.
func (r *Registry) Resolve(h Handle) (*Surface, error) {
	r.mu.RLock()
	s, ok := r.surfaces[h]
	r.mu.RUnlock()
	if !ok {
		return nil, canvaserr.WithHandle(uint32(h),
			canvaserr.New(canvaserr.KindUnknownHandle, "no surface with handle %d", h))
	}
	return s, nil
}

// Borrow runs fn with exclusive access to the surface for h.
func (r *Registry) Borrow(h Handle, fn func(*Surface) error) error {
	s, err := r.Resolve(h)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.img == nil {
		// Destroyed between Resolve and Lock.
		return canvaserr.WithHandle(uint32(h),
			canvaserr.New(canvaserr.KindUnknownHandle, "surface %d was destroyed", h))
	}
	return fn(s)
}

// Destroy releases the surface for h. The handle is not reissued.
func (r *Registry) Destroy(h Handle) error {
	r.mu.Lock()
	s, ok := r.surfaces[h]
	if ok {
		delete(r.surfaces, h)
	}
	r.mu.Unlock()
	if !ok {
		return canvaserr.WithHandle(uint32(h),
			canvaserr.New(canvaserr.KindUnknownHandle, "no surface with handle %d", h))
	}

	// Wait out any in-flight borrow before dropping the buffer.
	s.mu.Lock()
	s.img = nil
	s.mu.Unlock()

	logging.Logger().Debug("surface destroyed", "handle", h)
	return nil
}

// Handles returns the live handles in ascending order.
func (r *Registry) Handles() []Handle {
	r.mu.RLock()
	hs := make([]Handle, 0, len(r.surfaces))
	for h := range r.surfaces {
		hs = append(hs, h)
	}
	r.mu.RUnlock()
	sort.Slice(hs, func(i, j int) bool { return hs[i] < hs[j] })
	return hs
}

// Len returns the number of live surfaces.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.surfaces)
}
