// Package errors provides structured error types for the bridge.
//
// Errors carry a Phase (where in processing the failure occurred) and a Kind
// (what category of failure), plus optional path, value and cause. Two errors
// match under errors.Is when Phase and Kind are equal, so callers can branch
// on categories without string comparison:
//
//	err := cb.Call(args, decode)
//	if errors.Is(err, &bridgeerrors.Error{Phase: PhaseCallback, Kind: KindClosed}) {
//	    // bridge was closed before hand-off
//	}
//
// Engine-native errors (domain, code, message triples produced by the
// consumed document engine) are deliberately not represented here; they pass
// through verbatim as engine.Error.
package errors
