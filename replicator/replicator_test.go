package replicator

import (
	"testing"
	"time"

	cblbridge "github.com/wippyai/cbl-bridge"
	"github.com/wippyai/cbl-bridge/bridge"
	"github.com/wippyai/cbl-bridge/engine"
	"github.com/wippyai/cbl-bridge/engine/enginetest"
	"github.com/wippyai/cbl-bridge/host"
)

func newTestDB(t *testing.T, eng *enginetest.Engine) engine.Database {
	t.Helper()
	db, err := eng.OpenDatabase("app")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	return db
}

func TestPullFilter_HostDecides(t *testing.T) {
	eng := enginetest.New()
	db := newTestDB(t, eng)
	loop := host.NewLoop()
	defer loop.Close()

	// The host keeps documents whose "keep" property is true.
	loop.Register(1, func(args []cblbridge.Value) cblbridge.Value {
		ref, _ := args[0].AsRef()
		doc := ref.(engine.Document)
		keep, _ := doc.Properties()["keep"].(bool)
		return cblbridge.Bool(keep)
	})
	cb := bridge.New(1, loop, false)

	rep, err := New(eng, &Config{Database: db, Endpoint: "ws://peer", PullFilter: cb})
	if err != nil {
		t.Fatalf("new replicator: %v", err)
	}
	sim := rep.(*enginetest.Replicator)

	if !sim.SimulatePull(enginetest.NewDocument("a", engine.Properties{"keep": true}), 0) {
		t.Fatal("document with keep=true must pass the pull filter")
	}
	if sim.SimulatePull(enginetest.NewDocument("b", engine.Properties{"keep": false}), 0) {
		t.Fatal("document with keep=false must be excluded")
	}
	// No push filter configured: everything passes.
	if !sim.SimulatePush(enginetest.NewDocument("c", nil), 0) {
		t.Fatal("push without a filter must pass")
	}
}

func TestPushFilter_SeesFlags(t *testing.T) {
	eng := enginetest.New()
	db := newTestDB(t, eng)
	loop := host.NewLoop()
	defer loop.Close()

	// Deleted documents are excluded from push.
	loop.Register(1, func(args []cblbridge.Value) cblbridge.Value {
		flags, _ := args[1].AsInt32()
		return cblbridge.Bool(engine.DocumentFlags(flags)&engine.DocumentDeleted == 0)
	})
	cb := bridge.New(1, loop, false)

	rep, err := New(eng, &Config{Database: db, PushFilter: cb})
	if err != nil {
		t.Fatalf("new replicator: %v", err)
	}
	sim := rep.(*enginetest.Replicator)

	if !sim.SimulatePush(enginetest.NewDocument("a", nil), 0) {
		t.Fatal("live document must pass")
	}
	if sim.SimulatePush(enginetest.NewDocument("b", nil), engine.DocumentDeleted) {
		t.Fatal("deleted document must be excluded")
	}
}

func TestFilter_ClosedBridgeExcludes(t *testing.T) {
	eng := enginetest.New()
	db := newTestDB(t, eng)
	loop := host.NewLoop()
	defer loop.Close()
	cb := bridge.New(1, loop, false)
	cb.Close()

	rep, err := New(eng, &Config{Database: db, PullFilter: cb})
	if err != nil {
		t.Fatalf("new replicator: %v", err)
	}
	sim := rep.(*enginetest.Replicator)

	done := make(chan bool, 1)
	go func() { done <- sim.SimulatePull(enginetest.NewDocument("a", nil), 0) }()
	select {
	case pass := <-done:
		if pass {
			t.Fatal("a dead bridge must exclude the document")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("filter with closed bridge blocked")
	}
}

func TestConflictResolver_TriState(t *testing.T) {
	eng := enginetest.New()
	db := newTestDB(t, eng)
	loop := host.NewLoop()
	defer loop.Close()

	// Answer shape is driven per document id.
	loop.Register(1, func(args []cblbridge.Value) cblbridge.Value {
		id, _ := args[0].AsString()
		switch id {
		case "take-remote":
			return args[2]
		case "delete-me":
			return cblbridge.Null()
		default:
			return cblbridge.Bool(false)
		}
	})
	cb := bridge.New(1, loop, false)

	rep, err := New(eng, &Config{Database: db, ConflictResolver: cb})
	if err != nil {
		t.Fatalf("new replicator: %v", err)
	}
	sim := rep.(*enginetest.Replicator)

	local := enginetest.NewDocument("take-remote", engine.Properties{"v": 1})
	remote := enginetest.NewDocument("take-remote", engine.Properties{"v": 2})

	winner, rerr := sim.SimulateConflict("take-remote", local, remote)
	if rerr != nil {
		t.Fatalf("resolution failed: %v", rerr)
	}
	if winner != engine.Document(remote) {
		t.Fatal("host chose the remote revision; the wrapper must return it")
	}

	winner, rerr = sim.SimulateConflict("delete-me", local, remote)
	if rerr != nil || winner != nil {
		t.Fatalf("null answer must yield no winner and no error, got %v, %v", winner, rerr)
	}

	// The failure sentinel becomes a native error scoped to this document.
	_, rerr = sim.SimulateConflict("broken", local, remote)
	if rerr == nil || rerr.Code != engine.CodeUnexpectedError {
		t.Fatalf("expected unexpected-error code, got %v", rerr)
	}

	// The bridge stays usable after a per-document failure.
	winner, rerr = sim.SimulateConflict("take-remote", local, remote)
	if rerr != nil || winner == nil {
		t.Fatalf("resolution after a failed document must work, got %v, %v", winner, rerr)
	}
}

func TestConflictResolver_ProtocolViolationFailsDocument(t *testing.T) {
	eng := enginetest.New()
	db := newTestDB(t, eng)
	loop := host.NewLoop()
	defer loop.Close()
	loop.Register(1, func(args []cblbridge.Value) cblbridge.Value {
		return cblbridge.Int32(42)
	})
	cb := bridge.New(1, loop, false)

	rep, err := New(eng, &Config{Database: db, ConflictResolver: cb})
	if err != nil {
		t.Fatalf("new replicator: %v", err)
	}
	sim := rep.(*enginetest.Replicator)

	_, rerr := sim.SimulateConflict("doc-1", nil, nil)
	if rerr == nil || rerr.Code != engine.CodeUnexpectedError {
		t.Fatalf("malformed answer must fail the document, got %v", rerr)
	}
}

func TestRegistry_FinalizeRemovesContext(t *testing.T) {
	eng := enginetest.New()
	db := newTestDB(t, eng)
	loop := host.NewLoop()
	defer loop.Close()
	cb := bridge.New(1, loop, false)

	before := registrySize()
	rep, err := New(eng, &Config{Database: db, PullFilter: cb})
	if err != nil {
		t.Fatalf("new replicator: %v", err)
	}
	if registrySize() != before+1 {
		t.Fatal("creation must register the callback context")
	}

	finalize(rep)
	if registrySize() != before {
		t.Fatal("finalization must remove the callback context")
	}
	if !rep.(*enginetest.Replicator).Freed() {
		t.Fatal("finalization must release the native reference")
	}
}

func TestListenStatus_Marshaling(t *testing.T) {
	eng := enginetest.New()
	db := newTestDB(t, eng)
	loop := host.NewLoop()
	defer loop.Close()

	events := make(chan []cblbridge.Value, 4)
	loop.Register(1, func(args []cblbridge.Value) cblbridge.Value {
		events <- args
		return cblbridge.Null()
	})
	cb := bridge.New(1, loop, false)

	rep, err := New(eng, &Config{Database: db})
	if err != nil {
		t.Fatalf("new replicator: %v", err)
	}
	sim := rep.(*enginetest.Replicator)
	ListenStatus(rep, cb)

	sim.SetStatus(engine.ReplicatorStatus{
		Activity: engine.ActivityBusy,
		Progress: engine.ReplicatorProgress{Complete: 0.5, DocumentCount: 7},
	})
	sim.SetStatus(engine.ReplicatorStatus{
		Activity: engine.ActivityOffline,
		Error:    &engine.Error{Domain: engine.DomainNetwork, Code: 111, Message: "connection refused"},
	})

	select {
	case args := <-events:
		if len(args) != 3 {
			t.Fatalf("healthy status must carry 3 args, got %d", len(args))
		}
		if a, _ := args[0].AsInt32(); engine.ReplicatorActivity(a) != engine.ActivityBusy {
			t.Fatalf("wrong activity %d", a)
		}
		if c, _ := args[1].AsDouble(); c != 0.5 {
			t.Fatalf("wrong progress %g", c)
		}
		if n, _ := args[2].AsInt64(); n != 7 {
			t.Fatalf("wrong document count %d", n)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("status transition not forwarded")
	}

	select {
	case args := <-events:
		if len(args) != 6 {
			t.Fatalf("failing status must carry 6 args, got %d", len(args))
		}
		if d, _ := args[3].AsInt32(); engine.ErrorDomain(d) != engine.DomainNetwork {
			t.Fatalf("wrong error domain %d", d)
		}
		if msg, _ := args[5].AsString(); msg != "connection refused" {
			t.Fatalf("wrong error message %q", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("failing status not forwarded")
	}

	cb.Close()
	if sim.ChangeListenerCount() != 0 {
		t.Fatal("listener token not released on bridge close")
	}
}

func TestListenDocumentReplications_Marshaling(t *testing.T) {
	eng := enginetest.New()
	db := newTestDB(t, eng)
	loop := host.NewLoop()
	defer loop.Close()

	events := make(chan []cblbridge.Value, 1)
	loop.Register(1, func(args []cblbridge.Value) cblbridge.Value {
		events <- args
		return cblbridge.Null()
	})
	cb := bridge.New(1, loop, false)

	rep, err := New(eng, &Config{Database: db})
	if err != nil {
		t.Fatalf("new replicator: %v", err)
	}
	sim := rep.(*enginetest.Replicator)
	ListenDocumentReplications(rep, cb)

	sim.SimulateDocumentReplication(true, []engine.ReplicatedDocument{
		{ID: "ok-doc", Flags: engine.DocumentDeleted},
		{ID: "bad-doc", Error: &engine.Error{Domain: engine.DomainWebSocket, Code: 404, Message: "not found"}},
	})

	select {
	case args := <-events:
		if isPush, _ := args[0].AsBool(); !isPush {
			t.Fatal("push direction lost")
		}
		docs, _ := args[1].AsArray()
		if len(docs) != 2 {
			t.Fatalf("expected 2 document entries, got %d", len(docs))
		}

		first, _ := docs[0].AsArray()
		if id, _ := first[0].AsString(); id != "ok-doc" {
			t.Fatalf("wrong id %q", id)
		}
		if f, _ := first[1].AsInt32(); engine.DocumentFlags(f) != engine.DocumentDeleted {
			t.Fatalf("wrong flags %d", f)
		}
		if len(first) != 2 {
			t.Fatalf("healthy document must carry 2 fields, got %d", len(first))
		}

		second, _ := docs[1].AsArray()
		if len(second) != 5 {
			t.Fatalf("failed document must carry 5 fields, got %d", len(second))
		}
		if code, _ := second[3].AsInt32(); code != 404 {
			t.Fatalf("wrong error code %d", code)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("document replication event not forwarded")
	}
}
