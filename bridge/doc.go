// Package bridge implements the async callback bridge between native worker
// threads and single-threaded host processing.
//
// A Callback is a registered channel from the native side of the boundary to
// one host-side handler. Native code invokes it in one of two modes:
//
//	Execute(args...)        Fire-and-forget notification. Never blocks.
//	Call(args, handler)     Decision call. Blocks the calling thread until
//	                        the host posts a result, then decodes it.
//
// Each decision call owns a private single-use reply channel, signalled
// exactly once by host-side completion and never pooled or reused, so
// concurrent calls on the same callback cannot observe each other's results.
//
// # Lifecycle
//
// Close marks the callback closed. It is idempotent and safe to run
// concurrently with in-flight calls: subsequent Execute calls become no-ops
// and subsequent Call invocations fail fast, while calls already past the
// hand-off point are not retracted and complete normally.
//
// SetFinalizer attaches a one-shot cleanup (typically a listener token
// release) that runs exactly once, at Close or when the owning host object
// is collected, whichever comes first.
package bridge
