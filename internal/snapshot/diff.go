package snapshot

import "sort"

// Change is one surviving pull request whose mutable fields differ between
// two consecutive snapshots, with the specific fields that changed.
type Change struct {
	PR     PullRequest
	Fields []Field
}

// DiffResult is the outcome of comparing two snapshots of the same
// repository. Added and Changed are ordered by UpdatedAt descending with
// ties broken by ascending number; Removed is ordered by ascending number.
type DiffResult struct {
	Repo string

	// Baseline marks the first successful poll for a repository: every
	// pull request is reported as added, but the presenter should seed
	// its state silently instead of alerting.
	Baseline bool

	Added   []PullRequest
	Removed []int
	Changed []Change
}

// Empty reports whether the diff carries no additions, removals or changes.
func (d DiffResult) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// Diff compares the previous snapshot of a repository against the current
// one. A nil previous means this is the repository's first successful poll
// and the result is flagged Baseline. Diff is pure: calling it twice with
// the same inputs yields identical results.
func Diff(previous *RepoSnapshot, current RepoSnapshot) DiffResult {
	result := DiffResult{Repo: current.Repo}

	if previous == nil {
		result.Baseline = true
		for _, pr := range current.PRs {
			result.Added = append(result.Added, pr)
		}
		sortByActivity(result.Added)
		return result
	}

	for number, pr := range current.PRs {
		prev, ok := previous.PRs[number]
		if !ok {
			result.Added = append(result.Added, pr)
			continue
		}
		if fields := changedFields(prev, pr); len(fields) > 0 {
			result.Changed = append(result.Changed, Change{PR: pr, Fields: fields})
		}
	}

	for number := range previous.PRs {
		if _, ok := current.PRs[number]; !ok {
			result.Removed = append(result.Removed, number)
		}
	}

	sortByActivity(result.Added)
	sort.Slice(result.Changed, func(i, j int) bool {
		return moreRecent(result.Changed[i].PR, result.Changed[j].PR)
	})
	sort.Ints(result.Removed)

	return result
}

// changedFields compares the mutable attributes of two observations of the
// same pull request, in a fixed field order so results are deterministic.
func changedFields(prev, cur PullRequest) []Field {
	var fields []Field
	if prev.State != cur.State {
		fields = append(fields, FieldState)
	}
	if prev.ReviewDecision != cur.ReviewDecision {
		fields = append(fields, FieldReview)
	}
	if prev.ChecksStatus != cur.ChecksStatus {
		fields = append(fields, FieldChecks)
	}
	if !prev.UpdatedAt.Equal(cur.UpdatedAt) {
		fields = append(fields, FieldUpdatedAt)
	}
	if prev.CommentCount != cur.CommentCount {
		fields = append(fields, FieldComments)
	}
	return fields
}

func sortByActivity(prs []PullRequest) {
	sort.Slice(prs, func(i, j int) bool {
		return moreRecent(prs[i], prs[j])
	})
}

// moreRecent orders by UpdatedAt descending, ties by number ascending.
func moreRecent(a, b PullRequest) bool {
	if !a.UpdatedAt.Equal(b.UpdatedAt) {
		return a.UpdatedAt.After(b.UpdatedAt)
	}
	return a.Number < b.Number
}
