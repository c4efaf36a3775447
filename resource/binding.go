package resource

import (
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/cbl-bridge/engine"
)

var (
	debugMu      sync.Mutex
	debugEnabled bool
	debugLabels  = make(map[engine.RefCounted]string)
)

// SetDebug toggles the process-wide debug label registry. Disabling clears
// all recorded labels; bindings made in debug mode but finalized afterwards
// are not printed.
func SetDebug(enabled bool) {
	debugMu.Lock()
	defer debugMu.Unlock()
	debugEnabled = enabled
	if !enabled {
		debugLabels = make(map[engine.RefCounted]string)
	}
}

// Bind ties rc's lifetime to owner. When owner becomes unreachable, exactly
// one native reference is released. With retain true an extra reference is
// taken before binding. debugLabel is recorded only while debug mode is on.
func Bind[T any](owner *T, rc engine.RefCounted, retain bool, debugLabel string) {
	BindWithFinalizer(owner, rc, retain, debugLabel, Finalize)
}

// BindWithFinalizer is Bind with a custom finalizer entry point, for
// resources needing extra teardown before release (see the replicator
// package). finalize must not reference owner.
func BindWithFinalizer[T any](owner *T, rc engine.RefCounted, retain bool, debugLabel string, finalize func(engine.RefCounted)) {
	if debugLabel != "" {
		debugMu.Lock()
		if debugEnabled {
			debugLabels[rc] = debugLabel
		}
		debugMu.Unlock()
	}

	if retain {
		rc.Retain()
	}

	runtime.AddCleanup(owner, finalize, rc)
}

// Finalize releases one native reference, logging the resource's debug label
// if one was recorded. It is the default binding finalizer.
func Finalize(rc engine.RefCounted) {
	var label string
	var found bool
	debugMu.Lock()
	if debugEnabled {
		if l, ok := debugLabels[rc]; ok {
			label, found = l, true
			delete(debugLabels, rc)
		}
	}
	debugMu.Unlock()

	if found {
		Logger().Info("resource finalized",
			zap.String("label", label),
			zap.String("type", fmt.Sprintf("%T", rc)))
	}

	rc.Release()
}

func debugLabelCount() int {
	debugMu.Lock()
	defer debugMu.Unlock()
	return len(debugLabels)
}
