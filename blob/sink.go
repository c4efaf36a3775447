package blob

import (
	cblbridge "github.com/wippyai/cbl-bridge"
	"github.com/wippyai/cbl-bridge/bridge"
	"github.com/wippyai/cbl-bridge/engine"
)

// CallbackSink adapts a bridge callback into a Sink. Chunks arrive at the
// host as a single byte value, end of stream as a null, and a native
// failure as [domain, code, message].
type CallbackSink struct {
	cb *bridge.Callback
}

// NewCallbackSink wraps cb. The callback is not closed by the sink; its
// owner decides when the channel dies.
func NewCallbackSink(cb *bridge.Callback) *CallbackSink {
	return &CallbackSink{cb: cb}
}

func (s *CallbackSink) Chunk(data []byte) {
	s.cb.Execute(cblbridge.Bytes(data))
}

func (s *CallbackSink) Done() {
	s.cb.Execute(cblbridge.Null())
}

func (s *CallbackSink) Error(err *engine.Error) {
	s.cb.Execute(
		cblbridge.Int32(int32(err.Domain)),
		cblbridge.Int32(err.Code),
		cblbridge.String(err.Message),
	)
}
