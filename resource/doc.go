// Package resource ties native reference-counted resource lifetimes to
// host-managed objects.
//
// The native engine hands out handles carrying an implicit reference owned
// by the caller. Bind registers a cleanup with the host garbage collector
// that releases exactly one reference when the owning host object becomes
// unreachable:
//
//	doc, _ := db.GetDocument("doc-1")
//	wrapper := &DocumentWrapper{doc: doc}
//	resource.Bind(wrapper, doc, false, "doc-1")
//
// With retain true an extra reference is taken before binding, keeping the
// resource alive even after the original external owner releases its
// reference; the cleanup still performs exactly one release per binding.
//
// # Debug Labels
//
// SetDebug(true) enables a process-wide label registry guarded by its own
// lock. Bindings made while enabled record their label; the cleanup extracts
// and logs it before releasing. Disabling clears the whole registry, so
// labels for bindings finalized after disabling are not printed.
package resource
