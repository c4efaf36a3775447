package host

import (
	"sync"
	"testing"
	"time"

	cblbridge "github.com/wippyai/cbl-bridge"
)

func TestLoop_Notification(t *testing.T) {
	l := NewLoop()
	defer l.Close()

	got := make(chan []cblbridge.Value, 1)
	l.Register(1, func(args []cblbridge.Value) cblbridge.Value {
		got <- args
		return cblbridge.Null()
	})

	if !l.Post(cblbridge.Message{CallbackID: 1, Args: []cblbridge.Value{cblbridge.Int32(5)}}) {
		t.Fatal("Post failed")
	}

	select {
	case args := <-got:
		if v, _ := args[0].AsInt32(); v != 5 {
			t.Fatalf("wrong args: %v", args)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("notification not dispatched")
	}
}

func TestLoop_Decision(t *testing.T) {
	l := NewLoop()
	defer l.Close()

	l.Register(2, func(args []cblbridge.Value) cblbridge.Value {
		return cblbridge.Bool(true)
	})

	reply := make(chan cblbridge.Value, 1)
	l.Post(cblbridge.Message{CallbackID: 2, Reply: reply})

	select {
	case v := <-reply:
		if b, ok := v.AsBool(); !ok || !b {
			t.Fatalf("wrong decision: %v", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("decision not answered")
	}
}

func TestLoop_ArrivalOrder(t *testing.T) {
	l := NewLoop()
	defer l.Close()

	var mu sync.Mutex
	var seen []int32
	done := make(chan struct{})
	l.Register(1, func(args []cblbridge.Value) cblbridge.Value {
		v, _ := args[0].AsInt32()
		mu.Lock()
		seen = append(seen, v)
		n := len(seen)
		mu.Unlock()
		if n == 20 {
			close(done)
		}
		return cblbridge.Null()
	})

	for i := int32(0); i < 20; i++ {
		l.Post(cblbridge.Message{CallbackID: 1, Args: []cblbridge.Value{cblbridge.Int32(i)}})
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("messages not processed")
	}
	for i, v := range seen {
		if v != int32(i) {
			t.Fatalf("message %d dispatched out of order: %d", i, v)
		}
	}
}

func TestLoop_PanickingHandlerAnswersSentinel(t *testing.T) {
	l := NewLoop()
	defer l.Close()

	l.Register(3, func(args []cblbridge.Value) cblbridge.Value {
		panic("host logic failed")
	})

	reply := make(chan cblbridge.Value, 1)
	l.Post(cblbridge.Message{CallbackID: 3, Reply: reply})

	select {
	case v := <-reply:
		if b, ok := v.AsBool(); !ok || b {
			t.Fatalf("expected exception sentinel, got %v", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("panicking handler left the caller blocked")
	}

	// The loop survives the panic.
	l.Register(4, func(args []cblbridge.Value) cblbridge.Value { return cblbridge.Int32(1) })
	reply2 := make(chan cblbridge.Value, 1)
	l.Post(cblbridge.Message{CallbackID: 4, Reply: reply2})
	select {
	case <-reply2:
	case <-time.After(2 * time.Second):
		t.Fatal("loop dead after handler panic")
	}
}

func TestLoop_MissingHandlerAnswersSentinel(t *testing.T) {
	l := NewLoop()
	defer l.Close()

	reply := make(chan cblbridge.Value, 1)
	l.Post(cblbridge.Message{CallbackID: 99, Reply: reply})

	select {
	case v := <-reply:
		if b, ok := v.AsBool(); !ok || b {
			t.Fatalf("expected exception sentinel, got %v", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("missing handler left the caller blocked")
	}
}

func TestLoop_CloseAnswersPendingAndFuture(t *testing.T) {
	l := NewLoop()

	// Stall the consumer so a message is still queued at Close.
	block := make(chan struct{})
	l.Register(1, func(args []cblbridge.Value) cblbridge.Value {
		<-block
		return cblbridge.Null()
	})
	l.Post(cblbridge.Message{CallbackID: 1})

	pending := make(chan cblbridge.Value, 1)
	l.Post(cblbridge.Message{CallbackID: 1, Reply: pending})

	go func() {
		time.Sleep(20 * time.Millisecond)
		close(block)
	}()
	l.Close()

	select {
	case v := <-pending:
		if b, ok := v.AsBool(); !ok || b {
			t.Fatalf("expected sentinel for queued decision, got %v", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("queued decision not answered at Close")
	}

	// Posting after Close fails fast and still answers decisions.
	late := make(chan cblbridge.Value, 1)
	if l.Post(cblbridge.Message{CallbackID: 1, Reply: late}) {
		t.Fatal("Post after Close should return false")
	}
	select {
	case v := <-late:
		if b, ok := v.AsBool(); !ok || b {
			t.Fatalf("expected sentinel for late decision, got %v", v)
		}
	default:
		t.Fatal("late decision not answered")
	}
}
