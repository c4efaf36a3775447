package replicator

import (
	"sync"

	"github.com/wippyai/cbl-bridge/bridge"
	"github.com/wippyai/cbl-bridge/engine"
	"github.com/wippyai/cbl-bridge/resource"
)

// Config describes a replicator whose filter and resolver slots are backed
// by bridge callbacks. Nil callback fields leave the corresponding native
// slot empty.
type Config struct {
	Database   engine.Database
	Endpoint   string
	Type       engine.ReplicatorType
	Continuous bool

	PullFilter       *bridge.Callback
	PushFilter       *bridge.Callback
	ConflictResolver *bridge.Callback
}

// callbackContext aggregates the up-to-three callbacks of one replicator
// behind the configuration's single context slot.
type callbackContext struct {
	pull     *bridge.Callback
	push     *bridge.Callback
	resolver *bridge.Callback
}

var (
	registryMu sync.Mutex
	registry   = make(map[engine.Replicator]*callbackContext)
)

// New creates a native replicator from cfg. The callbacks are packed into a
// context record carried in the configuration's context slot and tracked in
// the registry until the replicator is finalized.
func New(eng engine.Engine, cfg *Config) (engine.Replicator, *engine.Error) {
	ctx := &callbackContext{
		pull:     cfg.PullFilter,
		push:     cfg.PushFilter,
		resolver: cfg.ConflictResolver,
	}

	ecfg := &engine.ReplicatorConfig{
		Database:        cfg.Database,
		Endpoint:        cfg.Endpoint,
		Type:            cfg.Type,
		Continuous:      cfg.Continuous,
		CallbackContext: ctx,
	}
	if ctx.pull != nil {
		ecfg.PullFilter = pullFilter
	}
	if ctx.push != nil {
		ecfg.PushFilter = pushFilter
	}
	if ctx.resolver != nil {
		ecfg.ConflictResolver = resolveConflict
	}

	rep, err := eng.NewReplicator(ecfg)
	if err != nil {
		return nil, err
	}

	registryMu.Lock()
	registry[rep] = ctx
	registryMu.Unlock()
	return rep, nil
}

// Bind ties rep's lifetime to owner. Finalization removes the callback
// context from the registry before releasing the native reference, so a
// late native callback can never observe a destroyed context.
func Bind[T any](owner *T, rep engine.Replicator, debugLabel string) {
	resource.BindWithFinalizer(owner, rep, false, debugLabel, finalize)
}

func finalize(rc engine.RefCounted) {
	if rep, ok := rc.(engine.Replicator); ok {
		registryMu.Lock()
		delete(registry, rep)
		registryMu.Unlock()
	}
	resource.Finalize(rc)
}

func registrySize() int {
	registryMu.Lock()
	defer registryMu.Unlock()
	return len(registry)
}
