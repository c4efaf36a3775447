package enginetest

import (
	"sync"

	"github.com/wippyai/cbl-bridge/engine"
)

// Database is an in-memory database handle.
type Database struct {
	RefCounted
	name string

	mu           sync.Mutex
	gen          int
	docs         map[string]*Document
	docListeners map[string]map[*Token]engine.DocumentChangeFn
	dbListeners  map[*Token]engine.DatabaseChangeFn
}

// NewDatabase creates an empty database with one owning reference.
func NewDatabase(name string) *Database {
	db := &Database{
		name:         name,
		docs:         make(map[string]*Document),
		docListeners: make(map[string]map[*Token]engine.DocumentChangeFn),
		dbListeners:  make(map[*Token]engine.DatabaseChangeFn),
	}
	db.initRefs()
	return db
}

func (db *Database) Name() string {
	return db.name
}

func (db *Database) GetDocument(docID string) (engine.Document, *engine.Error) {
	db.mu.Lock()
	doc := db.docs[docID]
	db.mu.Unlock()
	if doc == nil {
		return nil, nil
	}
	return doc, nil
}

// SaveDocumentWithConflictHandler stores doc. When a stored revision exists
// with a different revision id, handler runs on the calling goroutine and
// decides whether the save proceeds.
func (db *Database) SaveDocumentWithConflictHandler(doc engine.Document, handler engine.ConflictHandler) *engine.Error {
	d, ok := doc.(*Document)
	if !ok {
		return &engine.Error{Domain: engine.DomainEngine, Code: engine.CodeUnexpectedError, Message: "foreign document handle"}
	}

	db.mu.Lock()
	existing := db.docs[d.id]
	conflicting := existing != nil && existing.RevisionID() != d.RevisionID()
	db.mu.Unlock()

	if conflicting {
		// The handler runs without the database lock held, as the native
		// engine does. The document being saved stays locked natively, which
		// is why callers hand out a mutable copy.
		if handler == nil || !handler(d, existing) {
			return &engine.Error{Domain: engine.DomainEngine, Code: engine.CodeConflict, Message: "document revision conflict"}
		}
	}

	db.mu.Lock()
	db.gen++
	d.bumpRevision(db.gen + 1)
	db.docs[d.id] = d
	docFns := make([]engine.DocumentChangeFn, 0, len(db.docListeners[d.id]))
	for _, fn := range db.docListeners[d.id] {
		docFns = append(docFns, fn)
	}
	dbFns := make([]engine.DatabaseChangeFn, 0, len(db.dbListeners))
	for _, fn := range db.dbListeners {
		dbFns = append(dbFns, fn)
	}
	db.mu.Unlock()

	for _, fn := range docFns {
		fn(d.id)
	}
	for _, fn := range dbFns {
		fn([]string{d.id})
	}
	return nil
}

func (db *Database) AddDocumentChangeListener(docID string, fn engine.DocumentChangeFn) engine.ListenerToken {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.docListeners[docID] == nil {
		db.docListeners[docID] = make(map[*Token]engine.DocumentChangeFn)
	}
	var t *Token
	t = NewToken(func() {
		db.mu.Lock()
		defer db.mu.Unlock()
		delete(db.docListeners[docID], t)
	})
	db.docListeners[docID][t] = fn
	return t
}

func (db *Database) AddChangeListener(fn engine.DatabaseChangeFn) engine.ListenerToken {
	db.mu.Lock()
	defer db.mu.Unlock()
	var t *Token
	t = NewToken(func() {
		db.mu.Lock()
		defer db.mu.Unlock()
		delete(db.dbListeners, t)
	})
	db.dbListeners[t] = fn
	return t
}

// DocumentListenerCount reports live listeners for docID.
func (db *Database) DocumentListenerCount(docID string) int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.docListeners[docID])
}

// ListenerCount reports live database-level listeners.
func (db *Database) ListenerCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.dbListeners)
}
