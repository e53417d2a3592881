package index

import "sync/atomic"

// Handle is the process-wide pointer to the currently served index. Requests
// read through the handle concurrently; a rebuild loads a fresh artifact and
// swaps the pointer, never mutating the index being served.
type Handle struct {
	ptr atomic.Pointer[Index]
}

// NewHandle wraps an already loaded index.
func NewHandle(ix *Index) *Handle {
	h := &Handle{}
	h.ptr.Store(ix)
	return h
}

// Open loads the artifact at path and returns a handle serving it.
func Open(path, wantModel string) (*Handle, error) {
	ix, err := Load(path, wantModel)
	if err != nil {
		return nil, err
	}
	return NewHandle(ix), nil
}

// Current returns the index being served.
func (h *Handle) Current() *Index {
	return h.ptr.Load()
}

// Reload loads the artifact at path and atomically replaces the served
// index. On error the previous index stays in place.
func (h *Handle) Reload(path, wantModel string) error {
	ix, err := Load(path, wantModel)
	if err != nil {
		return err
	}
	h.ptr.Store(ix)
	return nil
}
