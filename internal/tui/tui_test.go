package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpalka/gh-pr-watch/internal/event"
	"github.com/jpalka/gh-pr-watch/internal/snapshot"
)

type fakeRefresher struct {
	calls int
}

func (f *fakeRefresher) Refresh() { f.calls++ }

func keyMsg(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestModel_RefreshKeyTriggersRefresher(t *testing.T) {
	refresher := &fakeRefresher{}
	m := NewModel(make(chan event.Event), refresher, 2*time.Second)

	_, _ = m.Update(keyMsg('r'))

	assert.Equal(t, 1, refresher.calls)
}

func TestModel_RefreshKeyWithoutRefresher(t *testing.T) {
	m := NewModel(make(chan event.Event), nil, 2*time.Second)

	assert.NotPanics(t, func() {
		_, _ = m.Update(keyMsg('r'))
	})
}

func TestModel_TickReschedules(t *testing.T) {
	m := NewModel(make(chan event.Event), nil, 2*time.Second)

	_, cmd := m.Update(tickMsg(time.Now()))

	require.NotNil(t, cmd, "each tick schedules the next one")
}

func TestModel_InitSubscribesAndTicks(t *testing.T) {
	m := NewModel(make(chan event.Event), nil, 2*time.Second)

	require.NotNil(t, m.Init())
}

func TestRender_ShowsReasonTags(t *testing.T) {
	d := NewDisplay()

	mine := displayPR(1)
	mine.Reason = snapshot.ReasonAuthor
	requested := displayPR(2)
	requested.Reason = snapshot.ReasonReviewer

	d.Apply(now, event.PRAdded{Repo: "acme/widgets", PR: mine, Silent: true})
	d.Apply(now, event.PRAdded{Repo: "acme/widgets", PR: requested, Silent: true})

	out := render(d, 120)
	assert.True(t, strings.Contains(out, "[mine]"))
	assert.True(t, strings.Contains(out, "[review requested]"))
}

func TestRender_NoReasonTagInAllMode(t *testing.T) {
	d := NewDisplay()
	d.Apply(now, event.PRAdded{Repo: "acme/widgets", PR: displayPR(1), Silent: true})

	out := render(d, 120)
	assert.False(t, strings.Contains(out, "[mine]"))
	assert.False(t, strings.Contains(out, "[review requested]"))
}
