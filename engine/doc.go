// Package engine declares the boundary with the native document engine.
//
// The engine (document CRUD, queries, indexing, replication, logging) is
// consumed as an already-correct native API, not reimplemented. Every type
// here mirrors a native handle or struct: reference-counted objects expose
// Retain/Release, listener registrations return a ListenerToken, and all
// fallible operations return a *Error carrying the native (domain, code,
// message) triple verbatim.
//
// # Callback Context
//
// The native replicator API offers a single user-data slot shared by the
// pull filter, push filter and conflict resolver. ReplicatorConfig mirrors
// this: the filter and resolver fields receive the one CallbackContext
// value, and per-replicator demultiplexing is layered on top (see the
// replicator package).
//
// # Threading
//
// Engine implementations invoke listeners, filters and resolvers on
// arbitrary worker threads, potentially concurrently. Callbacks must not
// panic across this boundary; failures are signalled through return values.
//
// The production implementation binds the native library through cgo. The
// enginetest subpackage provides an in-memory implementation for tests and
// demos.
package engine
