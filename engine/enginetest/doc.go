// Package enginetest provides an in-memory engine implementation.
//
// It exists for tests and demos: reference counts and stream reads are
// observable, and replicator callbacks can be driven explicitly via the
// Simulate methods from arbitrary goroutines, standing in for the native
// library's worker threads. It implements only as much engine behavior as
// the bridge layer exercises.
package enginetest
