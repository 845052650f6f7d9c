package github

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/jpalka/gh-pr-watch/internal/config"
	"github.com/jpalka/gh-pr-watch/internal/snapshot"
)

const prFields = "number,title,url,updatedAt,isDraft,author,reviewDecision,statusCheckRollup,comments"

// Client fetches open pull requests through the authenticated gh CLI.
// It is a pure data source: it never holds scheduler state.
type Client struct {
	logger *slog.Logger

	mu    sync.Mutex
	login string // cached current user, for involved mode
}

func NewClient(logger *slog.Logger) *Client {
	return &Client{logger: logger}
}

type prJSON struct {
	Number            int               `json:"number"`
	Title             string            `json:"title"`
	URL               string            `json:"url"`
	UpdatedAt         time.Time         `json:"updatedAt"`
	IsDraft           bool              `json:"isDraft"`
	Author            authorJSON        `json:"author"`
	ReviewDecision    string            `json:"reviewDecision"`
	StatusCheckRollup []checkNode       `json:"statusCheckRollup"`
	Comments          []json.RawMessage `json:"comments"`
}

type authorJSON struct {
	Login string `json:"login"`
}

// checkNode covers both rollup shapes gh returns: CheckRun nodes carry
// status/conclusion, StatusContext nodes carry state.
type checkNode struct {
	TypeName   string `json:"__typename"`
	Status     string `json:"status"`
	Conclusion string `json:"conclusion"`
	State      string `json:"state"`
}

// Fetch returns the current open pull requests for repo as a snapshot.
// Mode "involved" restricts to PRs authored by the current user plus PRs
// where their review is requested, as two queries merged by number.
func (c *Client) Fetch(ctx context.Context, repo, mode string) (*snapshot.RepoSnapshot, error) {
	if !config.ValidRepo(repo) {
		return nil, fmt.Errorf("invalid repository %q, want owner/name", repo)
	}

	var (
		prs []snapshot.PullRequest
		err error
	)
	if mode == config.ModeInvolved {
		prs, err = c.listInvolved(ctx, repo)
	} else {
		prs, err = c.listAll(ctx, repo)
	}
	if err != nil {
		return nil, err
	}

	snap := snapshot.New(repo, time.Now(), prs)
	return &snap, nil
}

func (c *Client) listAll(ctx context.Context, repo string) ([]snapshot.PullRequest, error) {
	raw, err := c.listPRs(ctx, repo)
	if err != nil {
		return nil, err
	}
	prs := make([]snapshot.PullRequest, 0, len(raw))
	for _, p := range raw {
		prs = append(prs, toPullRequest(p, ""))
	}
	return prs, nil
}

func (c *Client) listInvolved(ctx context.Context, repo string) ([]snapshot.PullRequest, error) {
	login, err := c.currentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve current user: %w", err)
	}

	authored, err := c.listPRs(ctx, repo, "--author", login)
	if err != nil {
		return nil, err
	}
	requested, err := c.listPRs(ctx, repo, "--search", "review-requested:"+login)
	if err != nil {
		return nil, err
	}

	seen := make(map[int]bool, len(authored))
	prs := make([]snapshot.PullRequest, 0, len(authored)+len(requested))
	for _, p := range authored {
		seen[p.Number] = true
		prs = append(prs, toPullRequest(p, snapshot.ReasonAuthor))
	}
	for _, p := range requested {
		if seen[p.Number] {
			continue
		}
		prs = append(prs, toPullRequest(p, snapshot.ReasonReviewer))
	}
	return prs, nil
}

func (c *Client) listPRs(ctx context.Context, repo string, extra ...string) ([]prJSON, error) {
	args := []string{
		"pr", "list",
		"-R", repo,
		"--state", "open",
		"--json", prFields,
		"--limit", "100",
	}
	args = append(args, extra...)

	out, err := c.gh(ctx, args...)
	if err != nil {
		return nil, err
	}

	var prs []prJSON
	if err := json.Unmarshal(out, &prs); err != nil {
		return nil, fmt.Errorf("parse PR list for %s: %w", repo, err)
	}
	return prs, nil
}

// currentUser returns the authenticated gh login, resolved once.
func (c *Client) currentUser(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.login != "" {
		return c.login, nil
	}

	out, err := c.gh(ctx, "api", "user", "--jq", ".login")
	if err != nil {
		return "", err
	}
	login := strings.TrimSpace(string(out))
	if login == "" {
		return "", fmt.Errorf("gh returned empty login")
	}
	c.login = login
	return login, nil
}

func (c *Client) gh(ctx context.Context, args ...string) ([]byte, error) {
	c.logger.Debug("gh", "args", strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, "gh", args...)
	out, err := cmd.Output()
	if err != nil {
		stderr := ""
		if exitErr, ok := err.(*exec.ExitError); ok {
			stderr = string(exitErr.Stderr)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return nil, classify(err, stderr)
	}
	return out, nil
}

func toPullRequest(p prJSON, reason snapshot.Reason) snapshot.PullRequest {
	return snapshot.PullRequest{
		Number:         p.Number,
		Title:          p.Title,
		Author:         p.Author.Login,
		URL:            p.URL,
		State:          prState(p.IsDraft),
		ReviewDecision: reviewDecision(p.ReviewDecision),
		ChecksStatus:   checksStatus(p.StatusCheckRollup),
		CommentCount:   len(p.Comments),
		UpdatedAt:      p.UpdatedAt,
		Reason:         reason,
	}
}

func prState(isDraft bool) snapshot.State {
	if isDraft {
		return snapshot.StateDraft
	}
	return snapshot.StateReady
}

func reviewDecision(raw string) snapshot.ReviewDecision {
	switch raw {
	case "APPROVED":
		return snapshot.ReviewApproved
	case "CHANGES_REQUESTED":
		return snapshot.ReviewChangesRequested
	default:
		return snapshot.ReviewPending
	}
}

// checksStatus folds the rollup into one state: any failed check wins,
// otherwise any unfinished check means pending, otherwise passing. An
// empty rollup counts as passing.
func checksStatus(nodes []checkNode) snapshot.ChecksStatus {
	status := snapshot.ChecksPassing
	for _, n := range nodes {
		if n.State != "" && n.TypeName != "CheckRun" {
			// StatusContext shape
			switch n.State {
			case "SUCCESS":
			case "PENDING":
				status = snapshot.ChecksPending
			default:
				return snapshot.ChecksFailing
			}
			continue
		}
		if n.Status != "COMPLETED" {
			status = snapshot.ChecksPending
			continue
		}
		switch n.Conclusion {
		case "SUCCESS", "NEUTRAL", "SKIPPED":
		default:
			return snapshot.ChecksFailing
		}
	}
	return status
}
