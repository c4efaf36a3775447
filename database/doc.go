// Package database glues native database callbacks to the bridge.
//
// Two callback shapes live here: the save conflict handler, a decision call
// blocking the native save frame until the host picks an outcome, and the
// change listeners (document, database, query), fire-and-forget
// notifications whose listener tokens are released through the bridge
// finalizer. Release happens exactly once, whether the bridge is closed
// early or its owner is collected.
package database
