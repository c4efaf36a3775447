// Package cblbridge provides the cross-thread boundary types for bridging a
// multi-threaded native document engine to a single-threaded host environment.
//
// The native engine invokes callbacks (change listeners, replication filters,
// conflict resolvers, log emission) on arbitrary worker threads. The host side
// processes messages one at a time on its own loop. This package defines the
// types that cross that boundary:
//
//	Value    Tagged union carried in messages (null, bool, int32, int64,
//	         double, bytes, opaque reference, array)
//	Message  A single callback delivery, optionally carrying a reply channel
//	Port     Thread-safe hand-off primitive from native threads to the host
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	cblbridge/           Root package with Value, Message and Port
//	├── bridge/          Async callback bridge (fire-and-forget and decision calls)
//	├── host/            Single-threaded host-side message loop
//	├── engine/          Consumed native engine boundary (interfaces, error type)
//	├── resource/        Native ref-counted resource lifetime binding
//	├── logging/         Process-wide log callback and log file slots
//	├── database/        Conflict-handler save and change-listener glue
//	├── replicator/      Per-replicator callback multiplexing
//	├── blob/            Chunked blob-streaming state machine
//	└── errors/          Structured error types for debugging
//
// # Decision Calls
//
// A decision call blocks the calling native thread until the host produces a
// typed result:
//
//	cb := bridge.New(1, loop, false)
//	err := cb.Call([]cblbridge.Value{cblbridge.Ref(doc)}, func(v cblbridge.Value) error {
//	    decision, ok := v.AsBool()
//	    ...
//	})
//
// The host side registers a handler for the callback id and answers each
// message on its reply channel. Fire-and-forget notifications use Execute and
// never block.
//
// # Thread Safety
//
// Value is immutable after construction. Message and Port are safe to use
// from any goroutine. Host-side processing for one bridge is ordered by the
// loop; calls from distinct native threads have no mutual ordering.
package cblbridge
