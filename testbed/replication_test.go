package testbed

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	cblbridge "github.com/wippyai/cbl-bridge"
	"github.com/wippyai/cbl-bridge/bridge"
	"github.com/wippyai/cbl-bridge/engine"
	"github.com/wippyai/cbl-bridge/engine/enginetest"
	"github.com/wippyai/cbl-bridge/host"
	"github.com/wippyai/cbl-bridge/replicator"
)

// A replicator with all three callback slots populated, plus both event
// listeners, driven by concurrent goroutines standing in for native worker
// threads.
func TestReplication_FullScenario(t *testing.T) {
	eng := enginetest.New()
	db, oerr := eng.OpenDatabase("app")
	if oerr != nil {
		t.Fatalf("open database: %v", oerr)
	}

	loop := host.NewLoop()
	defer loop.Close()

	const (
		pullID     = 1
		pushID     = 2
		resolverID = 3
		statusID   = 4
		docsID     = 5
	)

	// Pull keeps everything, push drops documents flagged deleted.
	loop.Register(pullID, func(args []cblbridge.Value) cblbridge.Value {
		return cblbridge.Bool(true)
	})
	loop.Register(pushID, func(args []cblbridge.Value) cblbridge.Value {
		flags, _ := args[1].AsInt32()
		return cblbridge.Bool(engine.DocumentFlags(flags)&engine.DocumentDeleted == 0)
	})
	// The resolver always takes the remote revision.
	loop.Register(resolverID, func(args []cblbridge.Value) cblbridge.Value {
		return args[2]
	})

	var statusEvents, docEvents atomic.Int64
	loop.Register(statusID, func(args []cblbridge.Value) cblbridge.Value {
		statusEvents.Add(1)
		return cblbridge.Null()
	})
	loop.Register(docsID, func(args []cblbridge.Value) cblbridge.Value {
		docEvents.Add(1)
		return cblbridge.Null()
	})

	pull := bridge.New(pullID, loop, false)
	push := bridge.New(pushID, loop, false)
	resolve := bridge.New(resolverID, loop, false)
	status := bridge.New(statusID, loop, false)
	docs := bridge.New(docsID, loop, false)

	rep, rerr := replicator.New(eng, &replicator.Config{
		Database:         db,
		Endpoint:         "ws://peer.example/app",
		Continuous:       true,
		PullFilter:       pull,
		PushFilter:       push,
		ConflictResolver: resolve,
	})
	if rerr != nil {
		t.Fatalf("new replicator: %v", rerr)
	}
	sim := rep.(*enginetest.Replicator)
	replicator.ListenStatus(rep, status)
	replicator.ListenDocumentReplications(rep, docs)

	sim.Start()

	var wg sync.WaitGroup
	var pulled, pushed atomic.Int64
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for n := 0; n < 10; n++ {
				doc := enginetest.NewDocument("doc", engine.Properties{"w": w, "n": n})
				if sim.SimulatePull(doc, 0) {
					pulled.Add(1)
				}
				flags := engine.DocumentFlags(0)
				if n%2 == 1 {
					flags = engine.DocumentDeleted
				}
				if sim.SimulatePush(doc, flags) {
					pushed.Add(1)
				}

				local := enginetest.NewDocument("doc", engine.Properties{"rev": "local"})
				remote := enginetest.NewDocument("doc", engine.Properties{"rev": "remote"})
				winner, cerr := sim.SimulateConflict("doc", local, remote)
				if cerr != nil {
					t.Errorf("worker %d: conflict resolution failed: %v", w, cerr)
					return
				}
				if winner != engine.Document(remote) {
					t.Errorf("worker %d: resolver must pick the remote revision", w)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	if got := pulled.Load(); got != 40 {
		t.Fatalf("pull filter admitted %d of 40 documents", got)
	}
	if got := pushed.Load(); got != 20 {
		t.Fatalf("push filter admitted %d documents, want 20", got)
	}

	sim.SimulateDocumentReplication(true, []engine.ReplicatedDocument{{ID: "doc"}})
	sim.Stop()

	// Start, stop, and the explicit event all flow through the loop.
	deadline := time.After(2 * time.Second)
	for statusEvents.Load() < 2 || docEvents.Load() < 1 {
		select {
		case <-deadline:
			t.Fatalf("events not forwarded: %d status, %d document", statusEvents.Load(), docEvents.Load())
		case <-time.After(10 * time.Millisecond):
		}
	}

	// Tearing down the listener bridges detaches the native listeners.
	status.Close()
	docs.Close()
	if sim.ChangeListenerCount() != 0 {
		t.Fatal("status listener still attached after bridge close")
	}
}
