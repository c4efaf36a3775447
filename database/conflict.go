package database

import (
	cblbridge "github.com/wippyai/cbl-bridge"
	"github.com/wippyai/cbl-bridge/bridge"
	"github.com/wippyai/cbl-bridge/engine"
	"github.com/wippyai/cbl-bridge/errors"
)

// SaveWithConflictHandler saves doc, consulting the host through cb when a
// concurrent revision is found. The native frame holds a lock on the
// document being saved, so the host works on a mutable copy; on a positive
// decision the copy's properties are transferred back before the save
// retries.
func SaveWithConflictHandler(db engine.Database, doc engine.Document, cb *bridge.Callback) *engine.Error {
	return db.SaveDocumentWithConflictHandler(doc, func(documentBeingSaved, conflicting engine.Document) bool {
		copy := documentBeingSaved.MutableCopy()

		decision := false
		err := cb.Call([]cblbridge.Value{
			cblbridge.Ref(copy),
			cblbridge.Ref(conflicting),
		}, func(result cblbridge.Value) error {
			b, ok := result.AsBool()
			if !ok {
				return errors.Protocol(errors.PhaseCallback, nil, "conflict handler expected a boolean decision", result)
			}
			decision = b
			return nil
		})
		if err != nil {
			// A failed round trip cancels the save for this document; the
			// fault never unwinds into the native frame.
			copy.Release()
			return false
		}

		documentBeingSaved.SetProperties(copy.Properties())
		copy.Release()
		return decision
	})
}
