package enginetest

import (
	"sync"
	"sync/atomic"
)

// RefCounted is the embeddable reference-counted base for fake handles.
// A new handle starts with one reference, owned by the caller.
type RefCounted struct {
	refs         atomic.Int32
	freed        atomic.Bool
	overReleased atomic.Bool
	init         sync.Once
}

func (r *RefCounted) initRefs() {
	r.init.Do(func() { r.refs.Store(1) })
}

// Retain increments the reference count.
func (r *RefCounted) Retain() {
	r.initRefs()
	r.refs.Add(1)
}

// Release decrements the reference count and marks the handle freed when it
// reaches zero.
func (r *RefCounted) Release() {
	r.initRefs()
	n := r.refs.Add(-1)
	if n == 0 {
		r.freed.Store(true)
	}
	if n < 0 {
		r.overReleased.Store(true)
	}
}

// OverReleased reports whether Release was called on a freed handle, the
// double-free condition bindings must never produce.
func (r *RefCounted) OverReleased() bool {
	return r.overReleased.Load()
}

// Refs returns the current reference count.
func (r *RefCounted) Refs() int32 {
	r.initRefs()
	return r.refs.Load()
}

// Freed reports whether the reference count reached zero.
func (r *RefCounted) Freed() bool {
	return r.freed.Load()
}

// Token is a fake listener token. Remove is idempotent.
type Token struct {
	remove  func()
	once    sync.Once
	removed atomic.Bool
}

// NewToken returns a token invoking remove exactly once.
func NewToken(remove func()) *Token {
	return &Token{remove: remove}
}

// Remove unregisters the listener.
func (t *Token) Remove() {
	t.once.Do(func() {
		t.removed.Store(true)
		if t.remove != nil {
			t.remove()
		}
	})
}

// Removed reports whether Remove has been called.
func (t *Token) Removed() bool {
	return t.removed.Load()
}
