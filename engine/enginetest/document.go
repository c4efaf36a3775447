package enginetest

import (
	"fmt"
	"sync"

	"github.com/wippyai/cbl-bridge/engine"
)

// Document is an in-memory document handle.
type Document struct {
	RefCounted
	mu    sync.Mutex
	id    string
	rev   string
	props engine.Properties
}

// NewDocument creates a document with one owning reference.
func NewDocument(id string, props engine.Properties) *Document {
	d := &Document{id: id, rev: "1-initial", props: cloneProps(props)}
	d.initRefs()
	return d
}

func (d *Document) ID() string {
	return d.id
}

func (d *Document) RevisionID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rev
}

// MutableCopy returns an independent copy with its own reference count.
func (d *Document) MutableCopy() engine.Document {
	d.mu.Lock()
	defer d.mu.Unlock()
	c := &Document{id: d.id, rev: d.rev, props: cloneProps(d.props)}
	c.initRefs()
	return c
}

func (d *Document) Properties() engine.Properties {
	d.mu.Lock()
	defer d.mu.Unlock()
	return cloneProps(d.props)
}

func (d *Document) SetProperties(p engine.Properties) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.props = cloneProps(p)
}

func (d *Document) bumpRevision(gen int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rev = fmt.Sprintf("%d-save", gen)
}

func cloneProps(p engine.Properties) engine.Properties {
	if p == nil {
		return engine.Properties{}
	}
	c := make(engine.Properties, len(p))
	for k, v := range p {
		c[k] = v
	}
	return c
}
