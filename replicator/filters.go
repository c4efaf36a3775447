package replicator

import (
	"go.uber.org/zap"

	cblbridge "github.com/wippyai/cbl-bridge"
	"github.com/wippyai/cbl-bridge/bridge"
	"github.com/wippyai/cbl-bridge/engine"
	"github.com/wippyai/cbl-bridge/errors"
)

// pullFilter and pushFilter are the wrappers installed in the native
// configuration. They run on native worker threads and block until the host
// answers.

func pullFilter(ctx any, doc engine.Document, flags engine.DocumentFlags) bool {
	c, ok := ctx.(*callbackContext)
	if !ok || c.pull == nil {
		return true
	}
	return runFilter(c.pull, doc, flags)
}

func pushFilter(ctx any, doc engine.Document, flags engine.DocumentFlags) bool {
	c, ok := ctx.(*callbackContext)
	if !ok || c.push == nil {
		return true
	}
	return runFilter(c.push, doc, flags)
}

func runFilter(cb *bridge.Callback, doc engine.Document, flags engine.DocumentFlags) bool {
	decision := false
	err := cb.Call([]cblbridge.Value{
		cblbridge.Ref(doc),
		cblbridge.Int32(int32(flags)),
	}, func(result cblbridge.Value) error {
		b, ok := result.AsBool()
		if !ok {
			return errors.Protocol(errors.PhaseReplication, nil, "replication filter expected a boolean decision", result)
		}
		decision = b
		return nil
	})
	if err != nil {
		// A failed round trip excludes the document from this pass.
		Logger().Warn("replication filter call failed",
			zap.Uint32("callback", cb.ID()),
			zap.String("doc", doc.ID()),
			zap.Error(err))
		return false
	}
	return decision
}
