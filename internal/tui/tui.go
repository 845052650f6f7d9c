package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jpalka/gh-pr-watch/internal/event"
)

// Refresher triggers a poll cycle ahead of the engine's ticker.
type Refresher interface {
	Refresh()
}

type eventMsg struct {
	ev event.Event
}

type tickMsg time.Time

type streamClosedMsg struct{}

// Model renders the watch state. It subscribes to the engine's event
// stream and owns every piece of display state itself.
type Model struct {
	display         *Display
	events          <-chan event.Event
	refresher       Refresher
	refreshInterval time.Duration
	width           int
}

func NewModel(events <-chan event.Event, refresher Refresher, refreshInterval time.Duration) Model {
	return Model{
		display:         NewDisplay(),
		events:          events,
		refresher:       refresher,
		refreshInterval: refreshInterval,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.events), tickCmd(m.refreshInterval))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "c":
			m.display.MarkSeen()
		case "r":
			if m.refresher != nil {
				m.refresher.Refresh()
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case eventMsg:
		m.display.Apply(time.Now(), msg.ev)
		return m, waitForEvent(m.events)

	case tickMsg:
		// Periodic re-render so relative state stays fresh between events.
		return m, tickCmd(m.refreshInterval)

	case streamClosedMsg:
		// Engine shut down; nothing more will arrive.
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) View() string {
	return render(m.display, m.width)
}

func waitForEvent(events <-chan event.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return streamClosedMsg{}
		}
		return eventMsg{ev: ev}
	}
}

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
