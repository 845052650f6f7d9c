package event

import (
	"fmt"
	"strings"

	"github.com/jpalka/gh-pr-watch/internal/snapshot"
)

// Event is one item on the engine's one-way stream to the presenter.
// The engine never renders anything itself; it only emits these.
type Event interface {
	// Repository returns the owner/name the event refers to.
	Repository() string
}

// PRAdded reports a pull request not present in the previous snapshot.
// Silent additions come from a baseline poll and should populate the
// presenter's state without alerting.
type PRAdded struct {
	Repo   string
	PR     snapshot.PullRequest
	Silent bool
}

// PRRemoved reports a pull request that is no longer open.
type PRRemoved struct {
	Repo   string
	Number int
}

// PRChanged reports field-level changes to a surviving pull request.
type PRChanged struct {
	Repo   string
	PR     snapshot.PullRequest
	Fields []snapshot.Field
}

// RepoPolled reports one completed successful poll, with the number of
// open pull requests observed. It lets the presenter register a repository
// even when the cycle produced no differences, such as a first poll that
// finds zero open PRs.
type RepoPolled struct {
	Repo string
	Open int
}

// SourceDegraded is emitted once when a repository's fetches start failing.
// The prior snapshot is retained; this is not a removal of its PRs.
type SourceDegraded struct {
	Repo string
	Kind string
	Err  error
}

// SourceRecovered is emitted once when a degraded repository's fetch
// succeeds again.
type SourceRecovered struct {
	Repo string
}

func (e PRAdded) Repository() string         { return e.Repo }
func (e PRRemoved) Repository() string       { return e.Repo }
func (e PRChanged) Repository() string       { return e.Repo }
func (e RepoPolled) Repository() string      { return e.Repo }
func (e SourceDegraded) Repository() string  { return e.Repo }
func (e SourceRecovered) Repository() string { return e.Repo }

// Describe phrases an event for humans; the TUI feed and headless log
// output share it. Returns a short subject and a detail line.
func Describe(e Event) (subject, detail string) {
	switch e := e.(type) {
	case PRAdded:
		return fmt.Sprintf("%s#%d new PR", shortRepo(e.Repo), e.PR.Number),
			fmt.Sprintf("%s (by @%s)", e.PR.Title, e.PR.Author)
	case PRRemoved:
		return fmt.Sprintf("%s#%d closed", shortRepo(e.Repo), e.Number), ""
	case RepoPolled:
		return fmt.Sprintf("%s polled", e.Repo), fmt.Sprintf("%d open", e.Open)
	case PRChanged:
		return fmt.Sprintf("%s#%d %s", shortRepo(e.Repo), e.PR.Number, changePhrase(e)),
			e.PR.Title
	case SourceDegraded:
		return fmt.Sprintf("%s unavailable", e.Repo),
			fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case SourceRecovered:
		return fmt.Sprintf("%s recovered", e.Repo), ""
	}
	return "", ""
}

// changePhrase picks the most newsworthy changed field to headline.
// Precedence mirrors what a reviewer cares about: review verdicts, then
// check results, then comments, then generic activity.
func changePhrase(e PRChanged) string {
	fields := make(map[snapshot.Field]bool, len(e.Fields))
	for _, f := range e.Fields {
		fields[f] = true
	}

	if fields[snapshot.FieldReview] {
		switch e.PR.ReviewDecision {
		case snapshot.ReviewApproved:
			return "approved"
		case snapshot.ReviewChangesRequested:
			return "changes requested"
		default:
			return "review pending again"
		}
	}
	if fields[snapshot.FieldChecks] {
		return "checks now " + string(e.PR.ChecksStatus)
	}
	if fields[snapshot.FieldState] {
		if e.PR.State == snapshot.StateDraft {
			return "converted to draft"
		}
		return "marked ready for review"
	}
	if fields[snapshot.FieldComments] {
		return "new comments"
	}
	return "updated"
}

func shortRepo(repo string) string {
	if i := strings.LastIndexByte(repo, '/'); i >= 0 {
		return repo[i+1:]
	}
	return repo
}
