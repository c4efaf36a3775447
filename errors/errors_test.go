package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Message(t *testing.T) {
	err := New(PhaseCallback, KindProtocol).
		Path("callback", "7").
		Detail("unexpected result kind %s", "double").
		Build()

	msg := err.Error()
	if !strings.Contains(msg, "[callback]") {
		t.Fatalf("missing phase in %q", msg)
	}
	if !strings.Contains(msg, "protocol") {
		t.Fatalf("missing kind in %q", msg)
	}
	if !strings.Contains(msg, "callback.7") {
		t.Fatalf("missing path in %q", msg)
	}
	if !strings.Contains(msg, "unexpected result kind double") {
		t.Fatalf("missing detail in %q", msg)
	}
}

func TestError_Is(t *testing.T) {
	err := Closed(PhaseCallback, "callback 3")

	if !stderrors.Is(err, &Error{Phase: PhaseCallback, Kind: KindClosed}) {
		t.Fatal("expected match on phase+kind")
	}
	if stderrors.Is(err, &Error{Phase: PhaseStream, Kind: KindClosed}) {
		t.Fatal("different phase must not match")
	}
	if stderrors.Is(err, &Error{Phase: PhaseCallback, Kind: KindTimeout}) {
		t.Fatal("different kind must not match")
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := Wrap(PhaseDispatch, KindInvalidState, cause, "handler failed")

	if !stderrors.Is(err, cause) {
		t.Fatal("expected unwrap to reach cause")
	}
	if !strings.Contains(err.Error(), "caused by: boom") {
		t.Fatalf("cause missing from %q", err.Error())
	}
}

func TestConstructors(t *testing.T) {
	cases := []struct {
		err  *Error
		kind Kind
	}{
		{Closed(PhaseCallback, "x"), KindClosed},
		{Timeout(PhaseCallback, "x"), KindTimeout},
		{Protocol(PhaseReplication, nil, "bad", nil), KindProtocol},
		{Conflict(PhaseLog, "owned"), KindConflict},
		{InvalidState(PhaseStream, "not paused"), KindInvalidState},
		{NotFound(PhaseDispatch, "handler", "9"), KindNotFound},
		{InvalidInput(PhaseLog, "nil engine"), KindInvalidInput},
		{Unreachable(PhaseCallback, "port"), KindUnreachable},
	}
	for _, c := range cases {
		if c.err.Kind != c.kind {
			t.Fatalf("expected kind %s, got %s", c.kind, c.err.Kind)
		}
		if c.err.Error() == "" {
			t.Fatal("empty error message")
		}
	}
}
