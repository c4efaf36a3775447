// Package blob streams native blob content to the host in fixed-size
// chunks under host flow control.
//
// A Stream pulls from the native read stream on a dedicated goroutine and
// hands each chunk to a Sink. The host paces consumption through a small
// state machine:
//
//	Idle ──Start──▶ Active ──Pause──▶ Paused
//	                  ▲                  │
//	                  └────Resume────────┘
//
// Cancel is valid in every state and leads to Closed, as do end of stream
// and a native read error. Pausing never interrupts a read already in
// flight; its chunk is still delivered before the pull goroutine parks.
// The native stream handle is closed exactly once, on whichever path
// reaches Closed first.
package blob
