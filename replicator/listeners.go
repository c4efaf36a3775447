package replicator

import (
	cblbridge "github.com/wippyai/cbl-bridge"
	"github.com/wippyai/cbl-bridge/bridge"
	"github.com/wippyai/cbl-bridge/engine"
)

// ListenStatus forwards status transitions to cb. Each event carries
// [activity, progressComplete, documentCount], with [domain, code, message]
// appended when the status reports an error. The listener token is bound to
// cb's finalizer.
func ListenStatus(rep engine.Replicator, cb *bridge.Callback) {
	token := rep.AddChangeListener(func(status engine.ReplicatorStatus) {
		cb.Execute(statusArgs(status)...)
	})
	cb.SetFinalizer(nil, token.Remove)
}

// ListenDocumentReplications forwards per-document replication events to cb
// as [isPush, documents], where each document is an array of [id, flags]
// plus [domain, code, message] when that single document failed.
func ListenDocumentReplications(rep engine.Replicator, cb *bridge.Callback) {
	token := rep.AddDocumentReplicationListener(func(isPush bool, docs []engine.ReplicatedDocument) {
		entries := make([]cblbridge.Value, len(docs))
		for i, d := range docs {
			entry := []cblbridge.Value{
				cblbridge.String(d.ID),
				cblbridge.Int32(int32(d.Flags)),
			}
			if d.Error != nil {
				entry = append(entry, errorArgs(d.Error)...)
			}
			entries[i] = cblbridge.Array(entry...)
		}
		cb.Execute(cblbridge.Bool(isPush), cblbridge.Array(entries...))
	})
	cb.SetFinalizer(nil, token.Remove)
}

func statusArgs(status engine.ReplicatorStatus) []cblbridge.Value {
	args := []cblbridge.Value{
		cblbridge.Int32(int32(status.Activity)),
		cblbridge.Double(status.Progress.Complete),
		cblbridge.Int64(int64(status.Progress.DocumentCount)),
	}
	if status.Error != nil {
		args = append(args, errorArgs(status.Error)...)
	}
	return args
}

func errorArgs(err *engine.Error) []cblbridge.Value {
	return []cblbridge.Value{
		cblbridge.Int32(int32(err.Domain)),
		cblbridge.Int32(err.Code),
		cblbridge.String(err.Message),
	}
}
