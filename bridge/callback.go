package bridge

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"

	cblbridge "github.com/wippyai/cbl-bridge"
	"github.com/wippyai/cbl-bridge/errors"
)

// ResultHandler decodes the host's response to a decision call into a
// domain result. An error aborts only that call.
type ResultHandler func(result cblbridge.Value) error

// Option configures a Callback.
type Option func(*Callback)

// WithCallTimeout bounds the wait of every decision call on the callback.
// Zero (the default) waits indefinitely; the host loop answers pending
// decisions on teardown, so an unbounded wait cannot outlive the host.
func WithCallTimeout(d time.Duration) Option {
	return func(c *Callback) { c.timeout = d }
}

// Callback bridges invocations from native threads to host-side processing.
type Callback struct {
	id      uint32
	port    cblbridge.Port
	debug   bool
	timeout time.Duration

	mu     sync.Mutex
	closed bool
	fin    *finalizer
}

// New creates a callback posting to port. The id must match a handler
// registration on the host side. debug enables hand-off tracing.
func New(id uint32, port cblbridge.Port, debug bool, opts ...Option) *Callback {
	c := &Callback{id: id, port: port, debug: debug}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID returns the callback's registration id.
func (c *Callback) ID() uint32 { return c.id }

// Closed reports whether Close has been called.
func (c *Callback) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Close marks the callback closed and runs its finalizer. It is idempotent
// and safe to call concurrently with in-flight Execute and Call invocations.
// Calls already past the hand-off point are not retracted.
func (c *Callback) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	f := c.fin
	c.mu.Unlock()

	if c.debug {
		Logger().Debug("callback closed", zap.Uint32("id", c.id))
	}
	if f != nil {
		f.run()
	}
}

// SetFinalizer attaches a one-shot cleanup invoked exactly once, at Close or
// when owner becomes unreachable, whichever happens first. owner must be a
// pointer or nil; nil restricts the cleanup to the Close path. The cleanup
// must not reference owner, or it will never run via collection.
func (c *Callback) SetFinalizer(owner any, fn func()) {
	f := &finalizer{fn: fn}

	c.mu.Lock()
	closed := c.closed
	if !closed {
		c.fin = f
	}
	c.mu.Unlock()

	if closed {
		f.run()
		return
	}
	if owner != nil {
		runtime.SetFinalizer(owner, func(any) { f.run() })
	}
}

// Execute sends args for asynchronous host-side processing. It never blocks
// and is a no-op on a closed callback.
func (c *Callback) Execute(args ...cblbridge.Value) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return
	}

	if c.debug {
		Logger().Debug("callback execute", zap.Uint32("id", c.id), zap.Int("args", len(args)))
	}
	c.port.Post(cblbridge.Message{CallbackID: c.id, Args: args})
}

// Call sends args and blocks the calling thread until the host posts a
// response, then runs handler to decode it. On a closed callback it fails
// fast without blocking. No lock is held across the wait.
func (c *Callback) Call(args []cblbridge.Value, handler ResultHandler) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errors.Closed(errors.PhaseCallback, fmt.Sprintf("callback %d", c.id))
	}
	c.mu.Unlock()

	// Single-use wait handle, private to this call.
	reply := make(chan cblbridge.Value, 1)

	if c.debug {
		Logger().Debug("callback call", zap.Uint32("id", c.id), zap.Int("args", len(args)))
	}
	if !c.port.Post(cblbridge.Message{CallbackID: c.id, Args: args, Reply: reply}) {
		return errors.Unreachable(errors.PhaseCallback, fmt.Sprintf("port of callback %d", c.id))
	}

	var result cblbridge.Value
	if c.timeout > 0 {
		timer := time.NewTimer(c.timeout)
		defer timer.Stop()
		select {
		case result = <-reply:
		case <-timer.C:
			return errors.Timeout(errors.PhaseCallback, fmt.Sprintf("decision call on callback %d", c.id))
		}
	} else {
		result = <-reply
	}

	if handler == nil {
		return nil
	}
	return handler(result)
}

// finalizer is a one-shot cleanup shared between the Close path and the
// collection path.
type finalizer struct {
	once sync.Once
	fn   func()
}

func (f *finalizer) run() {
	f.once.Do(func() {
		if f.fn != nil {
			f.fn()
		}
	})
}
