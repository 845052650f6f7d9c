package snapshot

import "time"

// State classifies an open pull request.
type State string

const (
	StateDraft State = "draft"
	StateReady State = "ready"
)

// ReviewDecision is the aggregate review outcome for a pull request.
type ReviewDecision string

const (
	ReviewApproved         ReviewDecision = "approved"
	ReviewChangesRequested ReviewDecision = "changes_requested"
	ReviewPending          ReviewDecision = "pending"
)

// ChecksStatus summarizes the CI check rollup for a pull request.
type ChecksStatus string

const (
	ChecksPassing ChecksStatus = "passing"
	ChecksFailing ChecksStatus = "failing"
	ChecksPending ChecksStatus = "pending"
)

// Reason records why a pull request was returned in involved mode.
type Reason string

const (
	ReasonAuthor   Reason = "author"
	ReasonReviewer Reason = "reviewer"
)

// Field names a mutable pull request attribute compared across polls.
type Field string

const (
	FieldState     Field = "state"
	FieldReview    Field = "review-decision"
	FieldChecks    Field = "check-status"
	FieldUpdatedAt Field = "updated-at"
	FieldComments  Field = "comments"
)

// PullRequest is one open pull request as observed at a single poll.
// Identity is (repo, number); the classified fields are the ones the
// diff engine compares between consecutive snapshots.
type PullRequest struct {
	Number         int
	Title          string
	Author         string
	URL            string
	State          State
	ReviewDecision ReviewDecision
	ChecksStatus   ChecksStatus
	CommentCount   int
	UpdatedAt      time.Time
	Reason         Reason
}

// RepoSnapshot is the complete set of open pull requests observed for one
// repository at one poll cycle. Snapshots are superseded, never mutated.
type RepoSnapshot struct {
	Repo       string
	CapturedAt time.Time
	PRs        map[int]PullRequest
}

// New returns a snapshot of the given pull requests keyed by number.
func New(repo string, capturedAt time.Time, prs []PullRequest) RepoSnapshot {
	m := make(map[int]PullRequest, len(prs))
	for _, pr := range prs {
		m[pr.Number] = pr
	}
	return RepoSnapshot{Repo: repo, CapturedAt: capturedAt, PRs: m}
}
