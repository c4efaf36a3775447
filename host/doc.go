// Package host runs the single-threaded host side of the callback bridge.
//
// Loop implements cblbridge.Port with an unbounded inbox: posting from a
// native thread never blocks beyond the hand-off itself. One consumer
// goroutine processes messages in arrival order and dispatches them to
// handlers registered per callback id, so host-side processing for any one
// bridge is effectively single-threaded.
//
// Decision messages are always answered: a missing handler or a panicking
// handler produces the exception sentinel, and Close drains the inbox the
// same way, so a native thread blocked on a decision can never hang on a
// torn-down host.
package host
