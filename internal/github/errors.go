package github

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrorKind classifies a failed fetch. Fetch failures are data, not
// crashes: the scheduler records them and keeps the last good snapshot.
type ErrorKind string

const (
	KindAuth        ErrorKind = "auth"         // credentials invalid or expired
	KindNotFound    ErrorKind = "not_found"    // repo missing or inaccessible
	KindRateLimited ErrorKind = "rate_limited" // API quota exhausted
	KindTransient   ErrorKind = "transient"    // network or timeout, safe to retry
	KindUnknown     ErrorKind = "unknown"      // anything else, logged in full
)

// FetchError wraps a gh invocation failure with its classification.
// RetryAfter carries the remote's backoff hint for rate limits, zero when
// the hint is absent.
type FetchError struct {
	Kind       ErrorKind
	RetryAfter time.Duration
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// KindOf extracts the classification from any error, defaulting to unknown.
func KindOf(err error) ErrorKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

var (
	retryAfterPattern = regexp.MustCompile(`(?i)retry.after[:\s]+(\d+)`)
	waitPattern       = regexp.MustCompile(`(?i)wait (?:at least )?(\d+) seconds`)
)

// classify maps a gh failure to the error taxonomy using the exec error
// and whatever gh printed to stderr. gh reports API errors as text, so
// this is pattern matching by necessity.
func classify(err error, stderr string) *FetchError {
	wrapped := err
	if stderr != "" {
		wrapped = fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr))
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &FetchError{Kind: KindTransient, Err: wrapped}
	}

	lower := strings.ToLower(stderr)

	switch {
	case strings.Contains(lower, "rate limit") || strings.Contains(lower, "http 429"):
		return &FetchError{Kind: KindRateLimited, RetryAfter: retryAfterHint(stderr), Err: wrapped}
	case strings.Contains(lower, "http 401"),
		strings.Contains(lower, "bad credentials"),
		strings.Contains(lower, "authentication"),
		strings.Contains(lower, "gh auth login"):
		return &FetchError{Kind: KindAuth, Err: wrapped}
	case strings.Contains(lower, "could not resolve to a repository"),
		strings.Contains(lower, "http 404"),
		strings.Contains(lower, "not found"):
		return &FetchError{Kind: KindNotFound, Err: wrapped}
	case strings.Contains(lower, "dial tcp"),
		strings.Contains(lower, "no such host"),
		strings.Contains(lower, "connection refused"),
		strings.Contains(lower, "connection reset"),
		strings.Contains(lower, "i/o timeout"),
		strings.Contains(lower, "timeout"),
		strings.Contains(lower, "could not connect"):
		return &FetchError{Kind: KindTransient, Err: wrapped}
	}

	return &FetchError{Kind: KindUnknown, Err: wrapped}
}

// retryAfterHint digs a backoff hint out of gh's rate limit message.
func retryAfterHint(stderr string) time.Duration {
	for _, p := range []*regexp.Regexp{retryAfterPattern, waitPattern} {
		if m := p.FindStringSubmatch(stderr); m != nil {
			if secs, err := strconv.Atoi(m[1]); err == nil && secs > 0 {
				return time.Duration(secs) * time.Second
			}
		}
	}
	return 0
}
