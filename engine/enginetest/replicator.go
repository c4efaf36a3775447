package enginetest

import (
	"sync"

	"github.com/wippyai/cbl-bridge/engine"
)

// Replicator is an in-memory replicator handle. Replication traffic is
// driven explicitly through the Simulate methods; callers invoke them from
// their own goroutines to model native worker threads.
type Replicator struct {
	RefCounted
	cfg engine.ReplicatorConfig

	mu        sync.Mutex
	status    engine.ReplicatorStatus
	changeLs  map[*Token]engine.ReplicatorChangeFn
	docReplLs map[*Token]engine.DocumentReplicationFn
}

func newReplicator(cfg *engine.ReplicatorConfig) *Replicator {
	r := &Replicator{
		cfg:       *cfg,
		status:    engine.ReplicatorStatus{Activity: engine.ActivityStopped},
		changeLs:  make(map[*Token]engine.ReplicatorChangeFn),
		docReplLs: make(map[*Token]engine.DocumentReplicationFn),
	}
	r.initRefs()
	return r
}

func (r *Replicator) Start() {
	r.SetStatus(engine.ReplicatorStatus{Activity: engine.ActivityBusy})
}

func (r *Replicator) Stop() {
	r.SetStatus(engine.ReplicatorStatus{Activity: engine.ActivityStopped})
}

func (r *Replicator) Status() engine.ReplicatorStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *Replicator) AddChangeListener(fn engine.ReplicatorChangeFn) engine.ListenerToken {
	r.mu.Lock()
	defer r.mu.Unlock()
	var t *Token
	t = NewToken(func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.changeLs, t)
	})
	r.changeLs[t] = fn
	return t
}

func (r *Replicator) AddDocumentReplicationListener(fn engine.DocumentReplicationFn) engine.ListenerToken {
	r.mu.Lock()
	defer r.mu.Unlock()
	var t *Token
	t = NewToken(func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.docReplLs, t)
	})
	r.docReplLs[t] = fn
	return t
}

// SetStatus updates the status and notifies change listeners on the calling
// goroutine.
func (r *Replicator) SetStatus(status engine.ReplicatorStatus) {
	r.mu.Lock()
	r.status = status
	fns := make([]engine.ReplicatorChangeFn, 0, len(r.changeLs))
	for _, fn := range r.changeLs {
		fns = append(fns, fn)
	}
	r.mu.Unlock()
	for _, fn := range fns {
		fn(status)
	}
}

// SimulatePull runs the configured pull filter on the calling goroutine.
// Documents pass when no filter is configured.
func (r *Replicator) SimulatePull(doc engine.Document, flags engine.DocumentFlags) bool {
	if r.cfg.PullFilter == nil {
		return true
	}
	return r.cfg.PullFilter(r.cfg.CallbackContext, doc, flags)
}

// SimulatePush runs the configured push filter on the calling goroutine.
func (r *Replicator) SimulatePush(doc engine.Document, flags engine.DocumentFlags) bool {
	if r.cfg.PushFilter == nil {
		return true
	}
	return r.cfg.PushFilter(r.cfg.CallbackContext, doc, flags)
}

// SimulateConflict runs the configured conflict resolver on the calling
// goroutine. Without a resolver the remote revision wins.
func (r *Replicator) SimulateConflict(docID string, local, remote engine.Document) (engine.Document, *engine.Error) {
	if r.cfg.ConflictResolver == nil {
		return remote, nil
	}
	return r.cfg.ConflictResolver(r.cfg.CallbackContext, docID, local, remote)
}

// SimulateDocumentReplication notifies document replication listeners on the
// calling goroutine.
func (r *Replicator) SimulateDocumentReplication(isPush bool, docs []engine.ReplicatedDocument) {
	r.mu.Lock()
	fns := make([]engine.DocumentReplicationFn, 0, len(r.docReplLs))
	for _, fn := range r.docReplLs {
		fns = append(fns, fn)
	}
	r.mu.Unlock()
	for _, fn := range fns {
		fn(isPush, docs)
	}
}

// Config returns the configuration the replicator was created with.
func (r *Replicator) Config() engine.ReplicatorConfig {
	return r.cfg
}

// ChangeListenerCount reports live status listeners.
func (r *Replicator) ChangeListenerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.changeLs)
}
