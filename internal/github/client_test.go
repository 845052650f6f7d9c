package github

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpalka/gh-pr-watch/internal/snapshot"
)

func TestToPullRequest(t *testing.T) {
	raw := `{
		"number": 42,
		"title": "Add retry budget",
		"url": "https://github.com/acme/widgets/pull/42",
		"updatedAt": "2025-06-01T12:00:00Z",
		"isDraft": false,
		"author": {"login": "octocat"},
		"reviewDecision": "CHANGES_REQUESTED",
		"statusCheckRollup": [
			{"__typename": "CheckRun", "status": "COMPLETED", "conclusion": "SUCCESS"}
		],
		"comments": [{}, {}, {}]
	}`

	var p prJSON
	require.NoError(t, json.Unmarshal([]byte(raw), &p))

	pr := toPullRequest(p, snapshot.ReasonAuthor)

	assert.Equal(t, 42, pr.Number)
	assert.Equal(t, "Add retry budget", pr.Title)
	assert.Equal(t, "octocat", pr.Author)
	assert.Equal(t, snapshot.StateReady, pr.State)
	assert.Equal(t, snapshot.ReviewChangesRequested, pr.ReviewDecision)
	assert.Equal(t, snapshot.ChecksPassing, pr.ChecksStatus)
	assert.Equal(t, 3, pr.CommentCount)
	assert.Equal(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), pr.UpdatedAt)
	assert.Equal(t, snapshot.ReasonAuthor, pr.Reason)
}

func TestPRState(t *testing.T) {
	assert.Equal(t, snapshot.StateDraft, prState(true))
	assert.Equal(t, snapshot.StateReady, prState(false))
}

func TestReviewDecision(t *testing.T) {
	assert.Equal(t, snapshot.ReviewApproved, reviewDecision("APPROVED"))
	assert.Equal(t, snapshot.ReviewChangesRequested, reviewDecision("CHANGES_REQUESTED"))
	assert.Equal(t, snapshot.ReviewPending, reviewDecision("REVIEW_REQUIRED"))
	assert.Equal(t, snapshot.ReviewPending, reviewDecision(""))
}

func TestChecksStatus(t *testing.T) {
	tests := []struct {
		name  string
		nodes []checkNode
		want  snapshot.ChecksStatus
	}{
		{
			name: "no checks",
			want: snapshot.ChecksPassing,
		},
		{
			name: "all check runs green",
			nodes: []checkNode{
				{TypeName: "CheckRun", Status: "COMPLETED", Conclusion: "SUCCESS"},
				{TypeName: "CheckRun", Status: "COMPLETED", Conclusion: "SKIPPED"},
			},
			want: snapshot.ChecksPassing,
		},
		{
			name: "one run still executing",
			nodes: []checkNode{
				{TypeName: "CheckRun", Status: "COMPLETED", Conclusion: "SUCCESS"},
				{TypeName: "CheckRun", Status: "IN_PROGRESS"},
			},
			want: snapshot.ChecksPending,
		},
		{
			name: "failure beats pending",
			nodes: []checkNode{
				{TypeName: "CheckRun", Status: "IN_PROGRESS"},
				{TypeName: "CheckRun", Status: "COMPLETED", Conclusion: "FAILURE"},
			},
			want: snapshot.ChecksFailing,
		},
		{
			name: "neutral conclusion passes",
			nodes: []checkNode{
				{TypeName: "CheckRun", Status: "COMPLETED", Conclusion: "NEUTRAL"},
			},
			want: snapshot.ChecksPassing,
		},
		{
			name: "status context success",
			nodes: []checkNode{
				{TypeName: "StatusContext", State: "SUCCESS"},
			},
			want: snapshot.ChecksPassing,
		},
		{
			name: "status context pending",
			nodes: []checkNode{
				{TypeName: "StatusContext", State: "PENDING"},
			},
			want: snapshot.ChecksPending,
		},
		{
			name: "status context failure",
			nodes: []checkNode{
				{TypeName: "StatusContext", State: "FAILURE"},
			},
			want: snapshot.ChecksFailing,
		},
		{
			name: "mixed shapes",
			nodes: []checkNode{
				{TypeName: "CheckRun", Status: "COMPLETED", Conclusion: "SUCCESS"},
				{TypeName: "StatusContext", State: "ERROR"},
			},
			want: snapshot.ChecksFailing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, checksStatus(tt.nodes))
		})
	}
}
