package enginetest

import (
	"sync"

	"github.com/wippyai/cbl-bridge/engine"
)

// Blob is an in-memory blob handle over a byte slice.
type Blob struct {
	RefCounted
	contentType string
	data        []byte

	mu     sync.Mutex
	stream *BlobStream
}

// NewBlob creates a blob with one owning reference.
func NewBlob(contentType string, data []byte) *Blob {
	b := &Blob{contentType: contentType, data: data}
	b.initRefs()
	return b
}

func (b *Blob) ContentType() string {
	return b.contentType
}

func (b *Blob) Length() uint64 {
	return uint64(len(b.data))
}

// OpenContentStream opens a read stream over the blob content.
func (b *Blob) OpenContentStream() (engine.BlobReadStream, *engine.Error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stream = &BlobStream{data: b.data, failAt: -1}
	return b.stream, nil
}

// Stream returns the most recently opened stream, for inspection.
func (b *Blob) Stream() *BlobStream {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stream
}

// BlobStream is an observable in-memory blob read stream.
type BlobStream struct {
	mu     sync.Mutex
	data   []byte
	pos    int
	reads  int
	closed bool

	failAt int // read index that fails, -1 for never
	err    *engine.Error
}

// FailAt makes the n-th Read (zero-based) return err.
func (s *BlobStream) FailAt(n int, err *engine.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAt = n
	s.err = err
}

// Read fills buf with up to len(buf) bytes. n == 0 with nil error is EOF.
func (s *BlobStream) Read(buf []byte) (int, *engine.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, &engine.Error{Domain: engine.DomainEngine, Code: engine.CodeNotOpen, Message: "blob stream closed"}
	}
	idx := s.reads
	s.reads++
	if s.failAt >= 0 && idx >= s.failAt {
		return 0, s.err
	}
	if s.pos >= len(s.data) {
		return 0, nil
	}
	n := copy(buf, s.data[s.pos:])
	s.pos += n
	return n, nil
}

// Close releases the stream handle.
func (s *BlobStream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Reads reports how many Read calls were issued.
func (s *BlobStream) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

// Closed reports whether the stream handle was released.
func (s *BlobStream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
