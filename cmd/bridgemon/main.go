package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	cblbridge "github.com/wippyai/cbl-bridge"
	"github.com/wippyai/cbl-bridge/blob"
	"github.com/wippyai/cbl-bridge/bridge"
	"github.com/wippyai/cbl-bridge/engine"
	"github.com/wippyai/cbl-bridge/engine/enginetest"
	"github.com/wippyai/cbl-bridge/host"
	"github.com/wippyai/cbl-bridge/logging"
	"github.com/wippyai/cbl-bridge/replicator"
	"github.com/wippyai/cbl-bridge/resource"
)

// Callback registrations shared by both modes.
const (
	logCallbackID uint32 = iota + 1
	statusCallbackID
	docsCallbackID
	chunkCallbackID
	pullCallbackID
	pushCallbackID
	resolverCallbackID
	flushCallbackID
)

func main() {
	var (
		docs        = flag.Int("docs", 16, "Documents per replication burst")
		blobSize    = flag.Int("blob", 20000, "Blob size in bytes to stream")
		debug       = flag.Bool("debug", false, "Verbose bridge logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *debug {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		bridge.SetLogger(logger)
		host.SetLogger(logger)
		resource.SetLogger(logger)
		replicator.SetLogger(logger)
		resource.SetDebug(true)
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Interactive mode requires a terminal")
			os.Exit(1)
		}
		if err := runInteractive(*blobSize); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*docs, *blobSize, *debug); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(docs, blobSize int, debug bool) error {
	eng := enginetest.New()
	db, oerr := eng.OpenDatabase("bridgemon")
	if oerr != nil {
		return oerr
	}

	loop := host.NewLoop()
	defer loop.Close()

	// Log slot: native log traffic lands on stdout.
	loop.Register(logCallbackID, func(args []cblbridge.Value) cblbridge.Value {
		domain, _ := args[0].AsInt32()
		level, _ := args[1].AsInt32()
		msg, _ := args[2].AsString()
		fmt.Printf("[log] %s/%s %s\n", domainName(engine.LogDomain(domain)), levelName(engine.LogLevel(level)), msg)
		return cblbridge.Null()
	})
	logCb := bridge.New(logCallbackID, loop, debug)
	if !logging.SetCallback(eng, logCb) {
		return fmt.Errorf("log slot already owned")
	}
	defer logging.SetCallback(eng, nil)

	// Replicator with all three decision slots populated.
	loop.Register(pullCallbackID, func(args []cblbridge.Value) cblbridge.Value {
		return cblbridge.Bool(true)
	})
	loop.Register(pushCallbackID, func(args []cblbridge.Value) cblbridge.Value {
		flags, _ := args[1].AsInt32()
		return cblbridge.Bool(engine.DocumentFlags(flags)&engine.DocumentDeleted == 0)
	})
	loop.Register(resolverCallbackID, func(args []cblbridge.Value) cblbridge.Value {
		return args[2] // remote wins
	})
	loop.Register(statusCallbackID, func(args []cblbridge.Value) cblbridge.Value {
		activity, _ := args[0].AsInt32()
		complete, _ := args[1].AsDouble()
		fmt.Printf("[replicator] %s %.0f%%\n", activityName(engine.ReplicatorActivity(activity)), complete*100)
		return cblbridge.Null()
	})
	loop.Register(docsCallbackID, func(args []cblbridge.Value) cblbridge.Value {
		isPush, _ := args[0].AsBool()
		entries, _ := args[1].AsArray()
		fmt.Printf("[replicator] replicated %d documents (push=%t)\n", len(entries), isPush)
		return cblbridge.Null()
	})

	rep, rerr := replicator.New(eng, &replicator.Config{
		Database:         db,
		Endpoint:         "ws://peer.example/bridgemon",
		Continuous:       true,
		PullFilter:       bridge.New(pullCallbackID, loop, debug),
		PushFilter:       bridge.New(pushCallbackID, loop, debug),
		ConflictResolver: bridge.New(resolverCallbackID, loop, debug),
	})
	if rerr != nil {
		return rerr
	}
	sim := rep.(*enginetest.Replicator)
	replicator.ListenStatus(rep, bridge.New(statusCallbackID, loop, debug))
	replicator.ListenDocumentReplications(rep, bridge.New(docsCallbackID, loop, debug))

	logging.Emit(eng, engine.LogDomainReplicator, engine.LogInfo, "starting replication burst")
	sim.Start()

	var pulled, pushed int
	replicated := make([]engine.ReplicatedDocument, 0, docs)
	for n := 0; n < docs; n++ {
		doc := enginetest.NewDocument(fmt.Sprintf("doc-%d", n), engine.Properties{"n": n})
		if sim.SimulatePull(doc, 0) {
			pulled++
		}
		flags := engine.DocumentFlags(0)
		if n%4 == 3 {
			flags = engine.DocumentDeleted
		}
		if sim.SimulatePush(doc, flags) {
			pushed++
			replicated = append(replicated, engine.ReplicatedDocument{ID: doc.ID(), Flags: flags})
		}
	}
	local := enginetest.NewDocument("doc-0", engine.Properties{"rev": "local"})
	remote := enginetest.NewDocument("doc-0", engine.Properties{"rev": "remote"})
	if _, cerr := sim.SimulateConflict("doc-0", local, remote); cerr != nil {
		return cerr
	}
	sim.SimulateDocumentReplication(true, replicated)
	sim.Stop()

	// Blob stream straight through to stdout chunk sizes.
	blobDone := make(chan struct{}, 1)
	loop.Register(chunkCallbackID, func(args []cblbridge.Value) cblbridge.Value {
		if args[0].IsNull() {
			fmt.Println("[blob] done")
			blobDone <- struct{}{}
		} else {
			chunk, _ := args[0].AsBytes()
			fmt.Printf("[blob] chunk of %d bytes\n", len(chunk))
		}
		return cblbridge.Null()
	})
	b := enginetest.NewBlob("application/octet-stream", make([]byte, blobSize))
	stream, serr := blob.Open(b, blob.NewCallbackSink(bridge.New(chunkCallbackID, loop, debug)))
	if serr != nil {
		return serr
	}
	if err := stream.Start(); err != nil {
		return err
	}

	<-blobDone
	logging.Emit(eng, engine.LogDomainDatabase, engine.LogInfo, "burst complete")

	// The loop answers in arrival order; one decision call posted last
	// flushes everything queued before it.
	loop.Register(flushCallbackID, func(args []cblbridge.Value) cblbridge.Value {
		return cblbridge.Bool(true)
	})
	flush := bridge.New(flushCallbackID, loop, debug)
	if err := flush.Call(nil, nil); err != nil {
		return err
	}

	fmt.Printf("\nPulled %d, pushed %d of %d documents\n", pulled, pushed, docs)
	return nil
}

func domainName(d engine.LogDomain) string {
	switch d {
	case engine.LogDomainDatabase:
		return "database"
	case engine.LogDomainQuery:
		return "query"
	case engine.LogDomainReplicator:
		return "replicator"
	case engine.LogDomainNetwork:
		return "network"
	default:
		return fmt.Sprintf("domain(%d)", d)
	}
}

func levelName(l engine.LogLevel) string {
	switch l {
	case engine.LogDebug:
		return "debug"
	case engine.LogVerbose:
		return "verbose"
	case engine.LogInfo:
		return "info"
	case engine.LogWarning:
		return "warning"
	case engine.LogError:
		return "error"
	default:
		return fmt.Sprintf("level(%d)", l)
	}
}

func activityName(a engine.ReplicatorActivity) string {
	switch a {
	case engine.ActivityStopped:
		return "stopped"
	case engine.ActivityOffline:
		return "offline"
	case engine.ActivityConnecting:
		return "connecting"
	case engine.ActivityIdle:
		return "idle"
	case engine.ActivityBusy:
		return "busy"
	default:
		return fmt.Sprintf("activity(%d)", a)
	}
}
