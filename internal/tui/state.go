package tui

import (
	"fmt"
	"sort"
	"time"

	"github.com/jpalka/gh-pr-watch/internal/event"
	"github.com/jpalka/gh-pr-watch/internal/snapshot"
)

const feedLimit = 30

// Attention markers for the activity column, cleared by "mark seen".
const (
	markNew      = "new"
	markComments = "comments"
)

type repoView struct {
	name         string
	degraded     bool
	degradedKind string
	polled       bool
	prs          map[int]snapshot.PullRequest
}

type feedEntry struct {
	at      time.Time
	subject string
	detail  string
}

// Display is the presenter's whole mutable state, built exclusively from
// the engine's event stream. The engine knows nothing about it.
type Display struct {
	order     []string // repos in first-seen order
	repos     map[string]*repoView
	feed      []feedEntry // newest first
	attention map[string]string
	unseen    int
}

func NewDisplay() *Display {
	return &Display{
		repos:     make(map[string]*repoView),
		attention: make(map[string]string),
	}
}

// Apply folds one event into the display state. Silent (baseline) events
// populate the PR list without feeding the activity feed or the unseen
// counter.
func (d *Display) Apply(now time.Time, ev event.Event) {
	r := d.repo(ev.Repository())

	switch ev := ev.(type) {
	case event.RepoPolled:
		r.polled = true
		return
	case event.PRAdded:
		r.polled = true
		r.prs[ev.PR.Number] = ev.PR
		if ev.Silent {
			return
		}
		d.attention[prKey(ev.Repo, ev.PR.Number)] = markNew
	case event.PRChanged:
		r.prs[ev.PR.Number] = ev.PR
		for _, f := range ev.Fields {
			if f == snapshot.FieldComments {
				d.attention[prKey(ev.Repo, ev.PR.Number)] = markComments
			}
		}
	case event.PRRemoved:
		delete(r.prs, ev.Number)
		delete(d.attention, prKey(ev.Repo, ev.Number))
	case event.SourceDegraded:
		r.degraded = true
		r.degradedKind = ev.Kind
	case event.SourceRecovered:
		r.degraded = false
		r.degradedKind = ""
	}

	subject, detail := event.Describe(ev)
	d.feed = append([]feedEntry{{at: now, subject: subject, detail: detail}}, d.feed...)
	if len(d.feed) > feedLimit {
		d.feed = d.feed[:feedLimit]
	}
	d.unseen++
}

// MarkSeen clears the unseen counter and per-PR attention markers.
func (d *Display) MarkSeen() {
	d.unseen = 0
	d.attention = make(map[string]string)
}

func (d *Display) repo(name string) *repoView {
	r, ok := d.repos[name]
	if !ok {
		r = &repoView{name: name, prs: make(map[int]snapshot.PullRequest)}
		d.repos[name] = r
		d.order = append(d.order, name)
	}
	return r
}

func (d *Display) prCount() int {
	n := 0
	for _, r := range d.repos {
		n += len(r.prs)
	}
	return n
}

// sortedPRs orders a repo's list most recently active first, numbers
// breaking ties, matching the engine's diff ordering.
func (r *repoView) sortedPRs() []snapshot.PullRequest {
	prs := make([]snapshot.PullRequest, 0, len(r.prs))
	for _, pr := range r.prs {
		prs = append(prs, pr)
	}
	sort.Slice(prs, func(i, j int) bool {
		if !prs[i].UpdatedAt.Equal(prs[j].UpdatedAt) {
			return prs[i].UpdatedAt.After(prs[j].UpdatedAt)
		}
		return prs[i].Number < prs[j].Number
	})
	return prs
}

func prKey(repo string, number int) string {
	return fmt.Sprintf("%s#%d", repo, number)
}
