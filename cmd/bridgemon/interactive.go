package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	cblbridge "github.com/wippyai/cbl-bridge"
	"github.com/wippyai/cbl-bridge/blob"
	"github.com/wippyai/cbl-bridge/bridge"
	"github.com/wippyai/cbl-bridge/engine"
	"github.com/wippyai/cbl-bridge/engine/enginetest"
	cblerrors "github.com/wippyai/cbl-bridge/errors"
	"github.com/wippyai/cbl-bridge/host"
	"github.com/wippyai/cbl-bridge/logging"
	"github.com/wippyai/cbl-bridge/replicator"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	logStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	replStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	blobStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD580"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const eventBacklog = 14

type interactiveModel struct {
	eng  *enginetest.Engine
	loop *host.Loop
	sim  *enginetest.Replicator

	blobSize int
	stream   *blob.Stream
	blobData *enginetest.Blob

	events  chan string
	lines   []string
	bursts  int
	input   textinput.Model
	typing  bool
	lastErr error
}

type eventMsg string

func newInteractiveModel(blobSize int) (*interactiveModel, error) {
	m := &interactiveModel{
		blobSize: blobSize,
		events:   make(chan string, 64),
	}

	m.eng = enginetest.New()
	db, oerr := m.eng.OpenDatabase("bridgemon")
	if oerr != nil {
		return nil, oerr
	}
	m.loop = host.NewLoop()

	m.loop.Register(logCallbackID, func(args []cblbridge.Value) cblbridge.Value {
		domain, _ := args[0].AsInt32()
		level, _ := args[1].AsInt32()
		msg, _ := args[2].AsString()
		m.emit(logStyle.Render(fmt.Sprintf("log  %s/%s %s",
			domainName(engine.LogDomain(domain)), levelName(engine.LogLevel(level)), msg)))
		return cblbridge.Null()
	})
	if !logging.SetCallback(m.eng, bridge.New(logCallbackID, m.loop, false)) {
		m.loop.Close()
		return nil, fmt.Errorf("log slot already owned")
	}

	m.loop.Register(pullCallbackID, func(args []cblbridge.Value) cblbridge.Value {
		return cblbridge.Bool(true)
	})
	m.loop.Register(pushCallbackID, func(args []cblbridge.Value) cblbridge.Value {
		flags, _ := args[1].AsInt32()
		return cblbridge.Bool(engine.DocumentFlags(flags)&engine.DocumentDeleted == 0)
	})
	m.loop.Register(resolverCallbackID, func(args []cblbridge.Value) cblbridge.Value {
		return args[2]
	})
	m.loop.Register(statusCallbackID, func(args []cblbridge.Value) cblbridge.Value {
		activity, _ := args[0].AsInt32()
		m.emit(replStyle.Render("repl " + activityName(engine.ReplicatorActivity(activity))))
		return cblbridge.Null()
	})
	m.loop.Register(docsCallbackID, func(args []cblbridge.Value) cblbridge.Value {
		isPush, _ := args[0].AsBool()
		entries, _ := args[1].AsArray()
		m.emit(replStyle.Render(fmt.Sprintf("repl %d documents replicated (push=%t)", len(entries), isPush)))
		return cblbridge.Null()
	})
	m.loop.Register(chunkCallbackID, func(args []cblbridge.Value) cblbridge.Value {
		if args[0].IsNull() {
			m.emit(blobStyle.Render("blob done"))
		} else {
			chunk, _ := args[0].AsBytes()
			m.emit(blobStyle.Render(fmt.Sprintf("blob chunk of %d bytes", len(chunk))))
		}
		return cblbridge.Null()
	})

	rep, rerr := replicator.New(m.eng, &replicator.Config{
		Database:         db,
		Endpoint:         "ws://peer.example/bridgemon",
		Continuous:       true,
		PullFilter:       bridge.New(pullCallbackID, m.loop, false),
		PushFilter:       bridge.New(pushCallbackID, m.loop, false),
		ConflictResolver: bridge.New(resolverCallbackID, m.loop, false),
	})
	if rerr != nil {
		m.loop.Close()
		return nil, rerr
	}
	m.sim = rep.(*enginetest.Replicator)
	replicator.ListenStatus(rep, bridge.New(statusCallbackID, m.loop, false))
	replicator.ListenDocumentReplications(rep, bridge.New(docsCallbackID, m.loop, false))

	ti := textinput.New()
	ti.Placeholder = "log message"
	ti.Prompt = "> "
	ti.Width = 48
	m.input = ti

	return m, nil
}

// emit queues an event line for the view, dropping when the feed is full so
// the loop goroutine never blocks on the UI.
func (m *interactiveModel) emit(line string) {
	select {
	case m.events <- line:
	default:
	}
}

func (m *interactiveModel) waitForEvent() tea.Msg {
	return eventMsg(<-m.events)
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.waitForEvent
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		m.lines = append(m.lines, string(msg))
		if len(m.lines) > eventBacklog {
			m.lines = m.lines[len(m.lines)-eventBacklog:]
		}
		return m, m.waitForEvent

	case tea.KeyMsg:
		if m.typing {
			switch msg.String() {
			case "enter":
				text := strings.TrimSpace(m.input.Value())
				if text != "" {
					logging.Emit(m.eng, engine.LogDomainDatabase, engine.LogInfo, text)
				}
				m.input.SetValue("")
				m.input.Blur()
				m.typing = false
				return m, nil
			case "esc":
				m.input.SetValue("")
				m.input.Blur()
				m.typing = false
				return m, nil
			default:
				var cmd tea.Cmd
				m.input, cmd = m.input.Update(msg)
				return m, cmd
			}
		}

		switch msg.String() {
		case "ctrl+c", "q":
			m.cancelStream()
			m.loop.Close()
			return m, tea.Quit

		case "d":
			m.runBurst()

		case "b":
			m.lastErr = m.startStream()

		case "p":
			if m.stream != nil {
				m.lastErr = errOrNil(m.stream.Pause())
			}

		case "r":
			if m.stream != nil {
				m.lastErr = errOrNil(m.stream.Resume())
			}

		case "c":
			m.cancelStream()

		case "l":
			m.typing = true
			m.input.Focus()
			return m, textinput.Blink
		}
	}

	return m, nil
}

func (m *interactiveModel) runBurst() {
	m.bursts++
	m.sim.Start()
	replicated := make([]engine.ReplicatedDocument, 0, 8)
	for n := 0; n < 8; n++ {
		doc := enginetest.NewDocument(fmt.Sprintf("doc-%d-%d", m.bursts, n), engine.Properties{"n": n})
		flags := engine.DocumentFlags(0)
		if n%4 == 3 {
			flags = engine.DocumentDeleted
		}
		if m.sim.SimulatePush(doc, flags) {
			replicated = append(replicated, engine.ReplicatedDocument{ID: doc.ID(), Flags: flags})
		}
	}
	m.sim.SimulateDocumentReplication(true, replicated)
	m.sim.Stop()
}

func (m *interactiveModel) startStream() error {
	if m.stream != nil && m.stream.State() != blob.StateClosed {
		return fmt.Errorf("a stream is already running; cancel it first")
	}
	m.blobData = enginetest.NewBlob("application/octet-stream", make([]byte, m.blobSize))
	s, err := blob.Open(m.blobData, blob.NewCallbackSink(bridge.New(chunkCallbackID, m.loop, false)))
	if err != nil {
		return err
	}
	m.stream = s
	return errOrNil(s.Start())
}

func (m *interactiveModel) cancelStream() {
	if m.stream != nil {
		m.stream.Cancel()
	}
}

// errOrNil keeps a typed nil from turning into a non-nil error interface.
func errOrNil(err *cblerrors.Error) error {
	if err == nil {
		return nil
	}
	return err
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Bridge Monitor"))
	b.WriteString("\n\n")

	if len(m.lines) == 0 {
		b.WriteString(helpStyle.Render("waiting for events..."))
		b.WriteString("\n")
	}
	for _, line := range m.lines {
		b.WriteString(line)
		b.WriteString("\n")
	}

	streamState := "none"
	if m.stream != nil {
		streamState = m.stream.State().String()
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("bursts: %d  stream: %s\n", m.bursts, streamState))

	if m.lastErr != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.lastErr)))
		b.WriteString("\n")
	}

	if m.typing {
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter emit • esc cancel"))
	} else {
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("d burst • b blob • p pause • r resume • c cancel • l log • q quit"))
	}

	return b.String()
}

func runInteractive(blobSize int) error {
	m, err := newInteractiveModel(blobSize)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
