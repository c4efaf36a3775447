package database

import (
	cblbridge "github.com/wippyai/cbl-bridge"
	"github.com/wippyai/cbl-bridge/bridge"
	"github.com/wippyai/cbl-bridge/engine"
)

// ListenDocumentChanges watches one document, forwarding each change to cb
// as an empty notification. The listener token is bound to cb's finalizer
// so unregistration happens exactly once.
func ListenDocumentChanges(db engine.Database, docID string, cb *bridge.Callback) {
	token := db.AddDocumentChangeListener(docID, func(string) {
		cb.Execute()
	})
	cb.SetFinalizer(nil, token.Remove)
}

// ListenChanges watches the whole database, forwarding the changed document
// ids to cb.
func ListenChanges(db engine.Database, cb *bridge.Callback) {
	token := db.AddChangeListener(func(docIDs []string) {
		args := make([]cblbridge.Value, len(docIDs))
		for i, id := range docIDs {
			args[i] = cblbridge.String(id)
		}
		cb.Execute(args...)
	})
	cb.SetFinalizer(nil, token.Remove)
}

// ListenQueryChanges watches a live query, forwarding each result change to
// cb as an empty notification.
func ListenQueryChanges(q engine.Query, cb *bridge.Callback) {
	token := q.AddChangeListener(func() {
		cb.Execute()
	})
	cb.SetFinalizer(nil, token.Remove)
}
