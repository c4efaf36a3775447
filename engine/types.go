package engine

// RefCounted is implemented by every native handle whose lifetime is
// reference-counted. Retain and Release may be called from any thread.
type RefCounted interface {
	Retain()
	Release()
}

// ListenerToken represents a live event-source registration. Remove
// unregisters the listener; it is safe to call at most once.
type ListenerToken interface {
	Remove()
}

// Properties is the document property payload handed across the boundary.
type Properties map[string]any

// Document is a native document handle.
type Document interface {
	RefCounted
	ID() string
	RevisionID() string
	// MutableCopy returns an independent mutable copy. The native save frame
	// holds a lock on the original, so callbacks operate on the copy.
	MutableCopy() Document
	Properties() Properties
	SetProperties(Properties)
}

// DocumentFlags describe a document within a replication event.
type DocumentFlags uint32

const (
	DocumentDeleted       DocumentFlags = 1 << 0
	DocumentAccessRemoved DocumentFlags = 1 << 1
)

// ConflictHandler decides whether a save proceeds after a concurrent
// revision. It runs on the native thread performing the save.
type ConflictHandler func(documentBeingSaved Document, conflictingDocument Document) bool

// DocumentChangeFn is invoked when a watched document changes.
type DocumentChangeFn func(docID string)

// DatabaseChangeFn is invoked with the ids of changed documents.
type DatabaseChangeFn func(docIDs []string)

// QueryChangeFn is invoked when a live query's results change.
type QueryChangeFn func()

// Database is a native database handle.
type Database interface {
	RefCounted
	Name() string
	GetDocument(docID string) (Document, *Error)
	SaveDocumentWithConflictHandler(doc Document, handler ConflictHandler) *Error
	AddDocumentChangeListener(docID string, fn DocumentChangeFn) ListenerToken
	AddChangeListener(fn DatabaseChangeFn) ListenerToken
}

// Query is a native query handle.
type Query interface {
	RefCounted
	AddChangeListener(fn QueryChangeFn) ListenerToken
}

// BlobReadStream is a native blob content stream. Read is synchronous and
// fills up to len(buf) bytes; n == 0 with a nil error signals end of stream.
type BlobReadStream interface {
	Read(buf []byte) (n int, err *Error)
	Close()
}

// Blob is a native blob handle.
type Blob interface {
	RefCounted
	ContentType() string
	Length() uint64
	OpenContentStream() (BlobReadStream, *Error)
}

// ReplicatorActivity is the replicator's coarse activity level.
type ReplicatorActivity int32

const (
	ActivityStopped ReplicatorActivity = iota
	ActivityOffline
	ActivityConnecting
	ActivityIdle
	ActivityBusy
)

// ReplicatorProgress reports replication completion.
type ReplicatorProgress struct {
	Complete      float64
	DocumentCount uint64
}

// ReplicatorStatus is a point-in-time replicator state. Error is nil when
// the replicator is healthy.
type ReplicatorStatus struct {
	Activity ReplicatorActivity
	Progress ReplicatorProgress
	Error    *Error
}

// ReplicatedDocument describes one document within a replication event.
// Error is nil unless that single document failed.
type ReplicatedDocument struct {
	ID    string
	Flags DocumentFlags
	Error *Error
}

// ReplicatorChangeFn receives status transitions.
type ReplicatorChangeFn func(status ReplicatorStatus)

// DocumentReplicationFn receives per-document replication events.
type DocumentReplicationFn func(isPush bool, documents []ReplicatedDocument)

// Replicator is a native replicator handle.
type Replicator interface {
	RefCounted
	Start()
	Stop()
	Status() ReplicatorStatus
	AddChangeListener(fn ReplicatorChangeFn) ListenerToken
	AddDocumentReplicationListener(fn DocumentReplicationFn) ListenerToken
}

// ReplicationFilter decides whether a document participates in replication.
// ctx is the single CallbackContext slot of the replicator configuration.
type ReplicationFilter func(ctx any, doc Document, flags DocumentFlags) bool

// ConflictResolver chooses the winning revision for one document. Returning
// (nil, nil) deletes the document; returning an error fails resolution for
// that document only. ctx is the CallbackContext slot.
type ConflictResolver func(ctx any, docID string, local, remote Document) (Document, *Error)

// ReplicatorType selects the replication direction.
type ReplicatorType int32

const (
	ReplicatorTypePushAndPull ReplicatorType = iota
	ReplicatorTypePush
	ReplicatorTypePull
)

// ReplicatorConfig mirrors the native replicator configuration. The filter
// and resolver fields all receive the single CallbackContext value.
type ReplicatorConfig struct {
	Database         Database
	Endpoint         string
	Type             ReplicatorType
	Continuous       bool
	PullFilter       ReplicationFilter
	PushFilter       ReplicationFilter
	ConflictResolver ConflictResolver
	CallbackContext  any
}

// LogDomain identifies the native logging subsystem.
type LogDomain int32

const (
	LogDomainDatabase LogDomain = iota
	LogDomainQuery
	LogDomainReplicator
	LogDomainNetwork
)

// LogLevel is the native log severity.
type LogLevel int32

const (
	LogDebug LogLevel = iota
	LogVerbose
	LogInfo
	LogWarning
	LogError
	LogNone
)

// LogCallbackFn receives native log messages, on arbitrary threads.
type LogCallbackFn func(domain LogDomain, level LogLevel, message string)

// LogFileConfig configures native file logging. The zero value is the
// neutral default (file logging disabled).
type LogFileConfig struct {
	Level          LogLevel
	Directory      string
	MaxRotateCount int
	MaxSize        uint64
	UsePlaintext   bool
}

// Engine is the consumed native engine entry point.
type Engine interface {
	OpenDatabase(name string) (Database, *Error)
	NewReplicator(cfg *ReplicatorConfig) (Replicator, *Error)

	// SetLogCallback installs or (with nil) uninstalls the process-wide
	// native log hook.
	SetLogCallback(fn LogCallbackFn)
	// SetLogFileConfig applies file logging configuration; nil resets to
	// the neutral default.
	SetLogFileConfig(cfg *LogFileConfig) *Error
	// Log emits a message through the native logging system.
	Log(domain LogDomain, level LogLevel, message string)
}
