package blob

import (
	"fmt"
	"sync"

	"github.com/wippyai/cbl-bridge/engine"
	"github.com/wippyai/cbl-bridge/errors"
)

// chunkSize is the read granularity; the last chunk may be shorter.
const chunkSize = 8192

// State is the stream's lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateActive
	StatePaused
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StatePaused:
		return "paused"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Sink receives stream output. Exactly one of Done or Error terminates a
// stream that was not cancelled; no Chunk follows either. Calls are made
// from the pull goroutine, one at a time.
type Sink interface {
	Chunk(data []byte)
	Done()
	Error(err *engine.Error)
}

// Stream pulls blob content chunk by chunk and forwards it to a Sink.
type Stream struct {
	sink Sink

	mu    sync.Mutex
	state State
	// running is true while a pull goroutine is live, including the window
	// where it delivers a chunk with the mutex released. At most one pull
	// goroutine exists at any time.
	running      bool
	native       engine.BlobReadStream
	nativeClosed bool
}

// Open opens b's content stream and wraps it in an idle Stream. Nothing is
// read until Start.
func Open(b engine.Blob, sink Sink) (*Stream, *engine.Error) {
	native, err := b.OpenContentStream()
	if err != nil {
		return nil, err
	}
	return &Stream{sink: sink, native: native, state: StateIdle}, nil
}

// State returns the current lifecycle state.
func (s *Stream) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start begins pulling chunks. Valid only in the idle state.
func (s *Stream) Start() *errors.Error {
	s.mu.Lock()
	if s.state != StateIdle {
		state := s.state
		s.mu.Unlock()
		return errors.InvalidState(errors.PhaseStream, fmt.Sprintf("cannot start a %s stream", state))
	}
	s.state = StateActive
	s.running = true
	s.mu.Unlock()

	go s.run()
	return nil
}

// Pause parks the stream after the current chunk, if one is in flight. It is
// a no-op when already paused.
func (s *Stream) Pause() *errors.Error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateActive:
		s.state = StatePaused
		return nil
	case StatePaused:
		return nil
	default:
		return errors.InvalidState(errors.PhaseStream, fmt.Sprintf("cannot pause a %s stream", s.state))
	}
}

// Resume continues pulling after a pause. It is a no-op when already active.
func (s *Stream) Resume() *errors.Error {
	s.mu.Lock()
	switch s.state {
	case StateActive:
		s.mu.Unlock()
		return nil
	case StatePaused:
		s.state = StateActive
		if s.running {
			// The pull goroutine is still delivering its last chunk; it
			// observes the state flip and keeps pulling. Spawning here
			// would race a second reader against it.
			s.mu.Unlock()
			return nil
		}
		s.running = true
		s.mu.Unlock()
		go s.run()
		return nil
	default:
		state := s.state
		s.mu.Unlock()
		return errors.InvalidState(errors.PhaseStream, fmt.Sprintf("cannot resume a %s stream", state))
	}
}

// Cancel terminates the stream. Any read already in flight completes, but
// its chunk is discarded; the sink receives nothing further. Cancel is
// idempotent and valid in every state.
func (s *Stream) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return
	}
	s.state = StateClosed
	// A live pull goroutine owns the native handle, even when paused with a
	// delivery still in flight; it observes the state change and closes.
	if !s.running {
		s.closeNativeLocked()
	}
}

func (s *Stream) closeNativeLocked() {
	if !s.nativeClosed {
		s.nativeClosed = true
		s.native.Close()
	}
}

func (s *Stream) run() {
	buf := make([]byte, chunkSize)
	for {
		n, rerr := s.native.Read(buf)

		s.mu.Lock()
		if s.state == StateClosed {
			// Cancelled mid-read: discard the chunk.
			s.closeNativeLocked()
			s.running = false
			s.mu.Unlock()
			return
		}
		if rerr != nil {
			s.state = StateClosed
			s.closeNativeLocked()
			s.running = false
			s.mu.Unlock()
			s.sink.Error(rerr)
			return
		}
		if n == 0 {
			s.state = StateClosed
			s.closeNativeLocked()
			s.running = false
			s.mu.Unlock()
			s.sink.Done()
			return
		}
		s.mu.Unlock()

		chunk := make([]byte, n)
		copy(chunk, buf[:n])
		s.sink.Chunk(chunk)

		// State and running change together under the mutex, so a Resume
		// either finds this goroutine still live (and only flips the state
		// back) or finds it parked (and spawns the next one); never both.
		s.mu.Lock()
		switch s.state {
		case StatePaused:
			s.running = false
			s.mu.Unlock()
			return
		case StateClosed:
			s.closeNativeLocked()
			s.running = false
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()
	}
}
