package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jpalka/gh-pr-watch/internal/snapshot"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			PaddingLeft(1).
			PaddingRight(1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			MarginTop(1)

	repoStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("cyan"))

	degradedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	prStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	feedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	feedTimeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	reasonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// reasonTag labels why a PR is listed in involved mode. In all mode the
// reason is empty and no tag is shown.
func reasonTag(pr snapshot.PullRequest) string {
	switch pr.Reason {
	case snapshot.ReasonAuthor:
		return "[mine]"
	case snapshot.ReasonReviewer:
		return "[review requested]"
	}
	return ""
}

// statusIcon mirrors the classification precedence: drafts first, then
// the check rollup.
func statusIcon(pr snapshot.PullRequest) string {
	if pr.State == snapshot.StateDraft {
		return "⚫"
	}
	switch pr.ChecksStatus {
	case snapshot.ChecksFailing:
		return "🔴"
	case snapshot.ChecksPassing:
		return "🟢"
	default:
		return "🟡"
	}
}

// activityMarker is the second column: attention markers beat the
// standing review verdict.
func activityMarker(pr snapshot.PullRequest, mark string) string {
	switch mark {
	case markNew:
		return "🆕"
	case markComments:
		return "💬"
	}
	switch pr.ReviewDecision {
	case snapshot.ReviewApproved:
		return "✅"
	case snapshot.ReviewChangesRequested:
		return "❌"
	}
	return "  "
}
