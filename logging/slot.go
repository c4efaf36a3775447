package logging

import (
	"sync"

	"github.com/google/uuid"

	cblbridge "github.com/wippyai/cbl-bridge"
	"github.com/wippyai/cbl-bridge/bridge"
	"github.com/wippyai/cbl-bridge/engine"
)

// Both slots live under one reader/writer lock: emission forwarding takes
// the read side, install/uninstall the write side.
var (
	mu             sync.RWMutex
	callback       *bridge.Callback
	fileCapability uuid.UUID
)

// NewCapability mints a capability token for the file slot.
func NewCapability() uuid.UUID {
	return uuid.New()
}

// SetCallback installs cb as the process-wide log callback. It succeeds only
// when the slot is empty or already owned by cb; otherwise it reports false
// and the installed owner is untouched. A nil cb always succeeds, clearing
// the slot and uninstalling the native hook.
func SetCallback(eng engine.Engine, cb *bridge.Callback) bool {
	if cb == nil {
		mu.Lock()
		callback = nil
		eng.SetLogCallback(nil)
		mu.Unlock()
		return true
	}

	mu.Lock()
	if callback != nil && callback != cb {
		mu.Unlock()
		return false
	}
	callback = cb
	eng.SetLogCallback(func(domain engine.LogDomain, level engine.LogLevel, message string) {
		forward(domain, level, message)
	})
	mu.Unlock()

	// Outside the write lock: a finalizer on an already-closed callback runs
	// synchronously, and it takes the lock itself.
	cb.SetFinalizer(nil, func() { releaseCallback(eng, cb) })
	return true
}

// forward relays one native log message to the owning callback. The read
// lock lets many emissions proceed concurrently while excluding writers.
func forward(domain engine.LogDomain, level engine.LogLevel, message string) {
	mu.RLock()
	defer mu.RUnlock()
	if callback == nil {
		return
	}
	callback.Execute(
		cblbridge.Int32(int32(domain)),
		cblbridge.Int32(int32(level)),
		cblbridge.String(message),
	)
}

// releaseCallback uninstalls the hook when the owning callback is closed or
// collected.
func releaseCallback(eng engine.Engine, cb *bridge.Callback) {
	mu.Lock()
	defer mu.Unlock()
	if callback != cb {
		return
	}
	callback = nil
	eng.SetLogCallback(nil)
}

// FileConfigStatus is the outcome of a SetFileConfig call.
type FileConfigStatus int

const (
	// FileConfigApplied means the configuration was accepted.
	FileConfigApplied FileConfigStatus = iota
	// FileConfigFailed means the engine rejected the configuration; the
	// accompanying engine error carries the native failure.
	FileConfigFailed
	// FileConfigConflict means the slot is owned by a different capability.
	// It is distinguished from FileConfigFailed so callers can tell a lost
	// race from invalid input.
	FileConfigConflict
)

// SetFileConfig applies file logging configuration under the capability
// token. The owner may reconfigure repeatedly; another capability gets
// FileConfigConflict while the slot is owned. A nil cfg releases the
// capability and resets the engine to the neutral default. A non-nil cfg
// requires a non-nil capability.
func SetFileConfig(eng engine.Engine, cfg *engine.LogFileConfig, capability uuid.UUID) (FileConfigStatus, *engine.Error) {
	if cfg != nil && capability == uuid.Nil {
		panic("logging: file configuration requires a capability token")
	}

	mu.Lock()
	defer mu.Unlock()

	if fileCapability != uuid.Nil && fileCapability != capability {
		return FileConfigConflict, nil
	}

	if cfg == nil {
		fileCapability = uuid.Nil
	} else {
		fileCapability = capability
	}

	if err := eng.SetLogFileConfig(cfg); err != nil {
		return FileConfigFailed, err
	}
	return FileConfigApplied, nil
}

// Emit routes a host-originated message through the native logging system;
// an installed callback slot observes it like any native message.
func Emit(eng engine.Engine, domain engine.LogDomain, level engine.LogLevel, message string) {
	eng.Log(domain, level, message)
}
