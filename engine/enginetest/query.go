package enginetest

import (
	"sync"

	"github.com/wippyai/cbl-bridge/engine"
)

// Query is an in-memory live query handle. Result changes are driven
// explicitly via SimulateChange.
type Query struct {
	RefCounted
	mu        sync.Mutex
	listeners map[*Token]engine.QueryChangeFn
}

// NewQuery creates a query with one owning reference.
func NewQuery() *Query {
	q := &Query{listeners: make(map[*Token]engine.QueryChangeFn)}
	q.initRefs()
	return q
}

func (q *Query) AddChangeListener(fn engine.QueryChangeFn) engine.ListenerToken {
	q.mu.Lock()
	defer q.mu.Unlock()
	var t *Token
	t = NewToken(func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		delete(q.listeners, t)
	})
	q.listeners[t] = fn
	return t
}

// SimulateChange notifies listeners on the calling goroutine.
func (q *Query) SimulateChange() {
	q.mu.Lock()
	fns := make([]engine.QueryChangeFn, 0, len(q.listeners))
	for _, fn := range q.listeners {
		fns = append(fns, fn)
	}
	q.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// ListenerCount reports live listeners.
func (q *Query) ListenerCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.listeners)
}
