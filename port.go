package cblbridge

// Message is a single callback delivery crossing the thread boundary.
//
// Reply is nil for fire-and-forget notifications. For decision calls it is a
// single-use channel, private to the call: the host side sends exactly one
// Value on it and the channel is never reused.
type Message struct {
	CallbackID uint32
	Args       []Value
	Reply      chan<- Value
}

// IsDecision reports whether the message expects a reply.
func (m Message) IsDecision() bool { return m.Reply != nil }

// Port hands messages from native worker threads to host-side processing.
//
// Post must be safe for concurrent use and must not block the posting
// thread beyond the hand-off itself. It returns false when the receiving
// side is gone; decision messages posted to a dead port are answered with
// the exception sentinel by the implementation, so callers never hang.
type Port interface {
	Post(Message) bool
}

// ExceptionSentinel is the Value posted in place of an expected result when
// host-side logic failed while producing a decision. Receivers translate it
// into an engine-level failure scoped to the single call.
func ExceptionSentinel() Value { return Bool(false) }
