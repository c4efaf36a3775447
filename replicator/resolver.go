package replicator

import (
	"go.uber.org/zap"

	cblbridge "github.com/wippyai/cbl-bridge"
	"github.com/wippyai/cbl-bridge/engine"
	"github.com/wippyai/cbl-bridge/errors"
)

// resolveConflict is the wrapper installed in the native configuration. The
// host answers one of three shapes: a null for deletion, a document
// reference for the winning revision, or a false boolean signalling that
// host-side resolution failed. A failure is scoped to this document; it is
// reported as a native error and never unwinds the native frame.
func resolveConflict(ctx any, docID string, local, remote engine.Document) (engine.Document, *engine.Error) {
	c, ok := ctx.(*callbackContext)
	if !ok || c.resolver == nil {
		return remote, nil
	}

	var winner engine.Document
	hostFailed := false
	err := c.resolver.Call([]cblbridge.Value{
		cblbridge.String(docID),
		refOrNull(local),
		refOrNull(remote),
	}, func(result cblbridge.Value) error {
		switch result.Kind() {
		case cblbridge.KindNull:
			// Deletion: no winning revision.
			return nil
		case cblbridge.KindRef:
			ref, _ := result.AsRef()
			doc, ok := ref.(engine.Document)
			if !ok {
				return errors.Protocol(errors.PhaseReplication, []string{docID}, "conflict resolver reference is not a document", result)
			}
			winner = doc
			return nil
		case cblbridge.KindBool:
			if b, _ := result.AsBool(); !b {
				hostFailed = true
				return nil
			}
			return errors.Protocol(errors.PhaseReplication, []string{docID}, "conflict resolver answered true; expected null, a document, or false", result)
		default:
			return errors.Protocol(errors.PhaseReplication, []string{docID}, "unexpected conflict resolver result", result)
		}
	})
	if err != nil {
		Logger().Warn("conflict resolver call failed",
			zap.String("doc", docID),
			zap.Error(err))
		return nil, engine.ResolverFailed(docID)
	}
	if hostFailed {
		return nil, engine.ResolverFailed(docID)
	}
	return winner, nil
}

func refOrNull(doc engine.Document) cblbridge.Value {
	if doc == nil {
		return cblbridge.Null()
	}
	return cblbridge.Ref(doc)
}
