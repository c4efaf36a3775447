package enginetest

import (
	"sync"

	"github.com/wippyai/cbl-bridge/engine"
)

// Engine is the in-memory engine entry point.
type Engine struct {
	mu         sync.Mutex
	databases  map[string]*Database
	logCb      engine.LogCallbackFn
	fileConfig *engine.LogFileConfig
	fileErr    *engine.Error
}

// New creates an empty in-memory engine.
func New() *Engine {
	return &Engine{databases: make(map[string]*Database)}
}

// OpenDatabase opens or creates the named database.
func (e *Engine) OpenDatabase(name string) (engine.Database, *engine.Error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	db := e.databases[name]
	if db == nil {
		db = NewDatabase(name)
		e.databases[name] = db
	} else {
		db.Retain()
	}
	return db, nil
}

// NewReplicator creates a replicator for cfg.
func (e *Engine) NewReplicator(cfg *engine.ReplicatorConfig) (engine.Replicator, *engine.Error) {
	if cfg == nil || cfg.Database == nil {
		return nil, &engine.Error{Domain: engine.DomainEngine, Code: engine.CodeUnexpectedError, Message: "replicator requires a database"}
	}
	return newReplicator(cfg), nil
}

// SetLogCallback installs or clears the process-wide log hook.
func (e *Engine) SetLogCallback(fn engine.LogCallbackFn) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.logCb = fn
}

// LogCallbackInstalled reports whether a log hook is installed.
func (e *Engine) LogCallbackInstalled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.logCb != nil
}

// SetLogFileConfig records the file logging configuration.
func (e *Engine) SetLogFileConfig(cfg *engine.LogFileConfig) *engine.Error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.fileErr != nil {
		return e.fileErr
	}
	e.fileConfig = cfg
	return nil
}

// FailSetLogFileConfig makes subsequent SetLogFileConfig calls fail with err.
func (e *Engine) FailSetLogFileConfig(err *engine.Error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fileErr = err
}

// LogFileConfig returns the last applied file configuration.
func (e *Engine) LogFileConfig() *engine.LogFileConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fileConfig
}

// Log routes a message through the installed log hook on the calling
// goroutine, as the native logging system does.
func (e *Engine) Log(domain engine.LogDomain, level engine.LogLevel, message string) {
	e.mu.Lock()
	fn := e.logCb
	e.mu.Unlock()
	if fn != nil {
		fn(domain, level, message)
	}
}
