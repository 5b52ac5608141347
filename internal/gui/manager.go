// Package gui is the Fyne dashboard for the NeuroEdge kernel: component
// health, mesh nodes, a guarded command console and the live event feed.
package gui

import (
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/josephwere/NeuroEdge/internal/kernel/mesh"
	"github.com/josephwere/NeuroEdge/internal/logger"
)

// maxFeedLines bounds the transcript and event feed widgets.
const maxFeedLines = 200

type Manager struct {
	window fyne.Window
	log    logger.Logger

	healthLabel *widget.Label
	nodesLabel  *widget.Label
	transcript  *widget.Label
	eventFeed   *widget.Label
	input       *widget.Entry
	sendButton  *widget.Button

	transcriptLines []string
	eventLines      []string

	commandHandler func(string)
}

func NewManager(window fyne.Window, log logger.Logger) *Manager {
	m := &Manager{
		window:      window,
		log:         log,
		healthLabel: widget.NewLabel("kernel: starting"),
		nodesLabel:  widget.NewLabel("nodes: none"),
		transcript:  widget.NewLabel(""),
		eventFeed:   widget.NewLabel(""),
		input:       widget.NewEntry(),
	}
	m.transcript.Wrapping = fyne.TextWrapWord
	m.eventFeed.Wrapping = fyne.TextWrapWord
	m.input.SetPlaceHolder("command for the kernel…")

	m.sendButton = widget.NewButton("Send", m.submit)
	m.input.OnSubmitted = func(string) { m.submit() }

	log.Info("GUIManager", "initialized", nil)
	return m
}

func (m *Manager) submit() {
	text := strings.TrimSpace(m.input.Text)
	if text == "" {
		return
	}
	m.input.SetText("")
	m.AppendTranscript("> " + text)
	if m.commandHandler != nil {
		go m.commandHandler(text)
	}
}

// SetCommandHandler installs the console handler. It runs off the UI
// thread; results come back through AppendTranscript.
func (m *Manager) SetCommandHandler(handler func(string)) {
	m.commandHandler = handler
}

// GetMainContainer lays out the dashboard.
func (m *Manager) GetMainContainer() *fyne.Container {
	statusCard := widget.NewCard("Kernel", "", container.NewVBox(m.healthLabel, m.nodesLabel))
	consoleCard := widget.NewCard("Console", "", container.NewBorder(
		nil,
		container.NewBorder(nil, nil, nil, m.sendButton, m.input),
		nil, nil,
		container.NewVScroll(m.transcript),
	))
	eventsCard := widget.NewCard("Events", "", container.NewVScroll(m.eventFeed))

	return container.NewBorder(
		statusCard,
		nil, nil,
		eventsCard,
		consoleCard,
	)
}

func (m *Manager) GetWindow() fyne.Window {
	return m.window
}

// SetHealthSummary updates the health line. Thread-safe via fyne.Do.
func (m *Manager) SetHealthSummary(healthy, total int) {
	fyne.Do(func() {
		m.healthLabel.SetText(fmt.Sprintf("kernel: %d/%d components healthy", healthy, total))
	})
}

// SetNodes updates the node line.
func (m *Manager) SetNodes(nodes []mesh.Node) {
	names := make([]string, 0, len(nodes))
	for _, n := range nodes {
		state := "inactive"
		if n.IsActive {
			state = "active"
		}
		names = append(names, fmt.Sprintf("%s (%s)", n.ID, state))
	}
	text := "nodes: none"
	if len(names) > 0 {
		text = "nodes: " + strings.Join(names, ", ")
	}
	fyne.Do(func() {
		m.nodesLabel.SetText(text)
	})
}

// AppendTranscript adds a line to the console transcript.
func (m *Manager) AppendTranscript(line string) {
	fyne.Do(func() {
		m.transcriptLines = appendBounded(m.transcriptLines, line)
		m.transcript.SetText(strings.Join(m.transcriptLines, "\n"))
	})
}

// AppendEvent adds a line to the event feed.
func (m *Manager) AppendEvent(line string) {
	fyne.Do(func() {
		m.eventLines = appendBounded(m.eventLines, line)
		m.eventFeed.SetText(strings.Join(m.eventLines, "\n"))
	})
}

func appendBounded(lines []string, line string) []string {
	lines = append(lines, line)
	if len(lines) > maxFeedLines {
		lines = lines[len(lines)-maxFeedLines:]
	}
	return lines
}
