package host

import (
	"sync"

	"go.uber.org/zap"

	cblbridge "github.com/wippyai/cbl-bridge"
)

// Handler processes one callback delivery on the loop goroutine. For
// decision messages the returned Value is posted back to the blocked caller;
// for notifications it is ignored.
type Handler func(args []cblbridge.Value) cblbridge.Value

// Loop is a single-threaded message consumer implementing cblbridge.Port.
type Loop struct {
	mu       sync.Mutex
	cond     *sync.Cond
	queue    []cblbridge.Message
	handlers map[uint32]Handler
	closed   bool
	done     chan struct{}
}

// NewLoop creates a loop and starts its consumer goroutine.
func NewLoop() *Loop {
	l := &Loop{
		handlers: make(map[uint32]Handler),
		done:     make(chan struct{}),
	}
	l.cond = sync.NewCond(&l.mu)
	go l.run()
	return l
}

// Register installs the handler for a callback id, replacing any previous
// registration.
func (l *Loop) Register(id uint32, h Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handlers[id] = h
}

// Unregister removes the handler for a callback id. Queued messages for the
// id are answered with the exception sentinel when dispatched.
func (l *Loop) Unregister(id uint32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.handlers, id)
}

// Post hands a message to the loop. It never blocks the posting thread.
// Posting to a closed loop returns false after answering any decision with
// the exception sentinel.
func (l *Loop) Post(m cblbridge.Message) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		if m.Reply != nil {
			m.Reply <- cblbridge.ExceptionSentinel()
		}
		return false
	}
	l.queue = append(l.queue, m)
	l.cond.Signal()
	l.mu.Unlock()
	return true
}

// Close stops the consumer. Messages still queued are answered with the
// exception sentinel instead of being dispatched. Close blocks until the
// consumer goroutine has exited and is idempotent.
func (l *Loop) Close() {
	l.mu.Lock()
	l.closed = true
	l.cond.Broadcast()
	l.mu.Unlock()
	<-l.done
}

func (l *Loop) run() {
	for {
		l.mu.Lock()
		for len(l.queue) == 0 && !l.closed {
			l.cond.Wait()
		}
		if l.closed {
			rest := l.queue
			l.queue = nil
			l.mu.Unlock()
			for _, m := range rest {
				if m.Reply != nil {
					m.Reply <- cblbridge.ExceptionSentinel()
				}
			}
			close(l.done)
			return
		}
		m := l.queue[0]
		l.queue = l.queue[1:]
		l.mu.Unlock()

		l.dispatch(m)
	}
}

func (l *Loop) dispatch(m cblbridge.Message) {
	l.mu.Lock()
	h := l.handlers[m.CallbackID]
	l.mu.Unlock()

	if h == nil {
		Logger().Warn("message for unregistered callback", zap.Uint32("id", m.CallbackID))
		if m.Reply != nil {
			m.Reply <- cblbridge.ExceptionSentinel()
		}
		return
	}

	result, ok := l.invoke(h, m)
	if m.Reply == nil {
		return
	}
	if !ok {
		result = cblbridge.ExceptionSentinel()
	}
	m.Reply <- result
}

// invoke contains panics from host-side logic: a decision call whose handler
// panics is answered with the sentinel, and the fault stays scoped to that
// single message.
func (l *Loop) invoke(h Handler, m cblbridge.Message) (result cblbridge.Value, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			Logger().Error("handler panic",
				zap.Uint32("id", m.CallbackID),
				zap.Any("panic", r))
			ok = false
		}
	}()
	return h(m.Args), true
}
