// Package replicator multiplexes per-replicator callbacks over the native
// API's single user-data slot.
//
// A replicator can carry up to three independent decision callbacks: pull
// filter, push filter, and conflict resolver. The native configuration has
// one context slot shared by all of them, so the bridges are aggregated in
// a small context record and looked up by replicator identity in a global
// registry guarded by its own mutex. The native object's lifetime is
// externally managed, so the registry holds the association rather than the
// native object itself.
//
// At finalization the context is removed from the registry first and
// destroyed after, so a racing native callback can never find a
// half-destroyed context; the replicator's own native reference is released
// last.
package replicator
