package engine

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jpalka/gh-pr-watch/internal/config"
	"github.com/jpalka/gh-pr-watch/internal/event"
	"github.com/jpalka/gh-pr-watch/internal/github"
	"github.com/jpalka/gh-pr-watch/internal/snapshot"
)

// Fetcher is the data source boundary: one call per repository per cycle.
type Fetcher interface {
	Fetch(ctx context.Context, repo, mode string) (*snapshot.RepoSnapshot, error)
}

// repoState is one repository's slot of the aggregate state. Only the
// goroutine polling that repository writes to it, and cycles never
// overlap, so slot ownership needs no lock.
type repoState struct {
	snap        *snapshot.RepoSnapshot // last successful snapshot, kept across failures
	degraded    bool
	lastErr     error
	lastSuccess time.Time
	deferUntil  time.Time // one-shot rate limit deferral
}

// Engine drives the poll loop: re-reads the watch config each cycle,
// fetches every repository concurrently, diffs against the previous
// snapshot, and emits events. It never renders anything.
type Engine struct {
	cfgPath  string
	settings config.Settings
	fetcher  Fetcher
	logger   *slog.Logger

	lastCfg config.Config
	haveCfg bool

	mu    sync.Mutex // guards the repos map structure
	repos map[string]*repoState

	events    chan event.Event
	refreshCh chan struct{}
}

func New(cfgPath string, settings config.Settings, fetcher Fetcher, logger *slog.Logger) *Engine {
	return &Engine{
		cfgPath:   cfgPath,
		settings:  settings,
		fetcher:   fetcher,
		logger:    logger,
		repos:     make(map[string]*repoState),
		events:    make(chan event.Event, 256),
		refreshCh: make(chan struct{}, 1),
	}
}

// Events returns the one-way stream consumed by the presenter. It is
// closed when Run returns.
func (e *Engine) Events() <-chan event.Event { return e.events }

// Run polls until ctx is cancelled. The in-flight cycle finishes (its
// fetches are cancelled and their results suppressed) before Run returns
// and closes the event stream.
func (e *Engine) Run(ctx context.Context) error {
	cfg := e.loadConfig()
	e.logger.Info("engine started", "poll_interval", cfg.PollInterval, "repos", len(cfg.Repos))

	e.runCycle(ctx, cfg)

	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("engine stopped")
			close(e.events)
			return nil
		case <-ticker.C:
			cfg = e.loadConfig()
			ticker.Reset(cfg.PollInterval)
			e.runCycle(ctx, cfg)
		case <-e.refreshCh:
			cfg = e.loadConfig()
			e.runCycle(ctx, cfg)
		}
	}
}

// Refresh wakes the loop for an immediate poll cycle ahead of the ticker.
// Safe to call from any goroutine; repeated calls coalesce into one cycle.
func (e *Engine) Refresh() {
	select {
	case e.refreshCh <- struct{}{}:
	default:
	}
}

// loadConfig re-reads the watch config, keeping the previously loaded one
// when the file is malformed so a bad edit never stops the loop.
func (e *Engine) loadConfig() config.Config {
	cfg, err := config.Load(e.cfgPath)
	if err != nil {
		e.logger.Error("config reload failed, keeping previous", "err", err)
		if e.haveCfg {
			return e.lastCfg
		}
		cfg = config.Config{}
		cfg.PollInterval = config.DefaultPollInterval
		cfg.Mode = config.ModeAll
		return cfg
	}
	e.lastCfg = cfg
	e.haveCfg = true
	return cfg
}

// runCycle polls every configured repository concurrently and waits for
// all of them. Slot ownership: each goroutine touches only its own repo's
// state, so a failing or slow repository never corrupts another's.
func (e *Engine) runCycle(ctx context.Context, cfg config.Config) {
	e.prune(cfg.Repos)

	now := time.Now()
	var g errgroup.Group
	for _, repo := range cfg.Repos {
		st := e.slot(repo)
		if now.Before(st.deferUntil) {
			e.logger.Debug("deferred by rate limit", "repo", repo, "until", st.deferUntil)
			continue
		}

		repo := repo
		g.Go(func() error {
			e.pollRepo(ctx, repo, cfg, st)
			return nil
		})
	}
	_ = g.Wait()
}

func (e *Engine) pollRepo(ctx context.Context, repo string, cfg config.Config, st *repoState) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("internal error, cycle aborted for repo",
				"repo", repo, "panic", r, "stack", string(debug.Stack()))
		}
	}()

	fctx, cancel := context.WithTimeout(ctx, e.settings.Fetch.Timeout)
	defer cancel()

	snap, err := e.fetcher.Fetch(fctx, repo, cfg.Mode)
	if ctx.Err() != nil {
		// Shutting down: drop the result instead of racing teardown.
		return
	}

	if err != nil {
		e.recordFailure(ctx, repo, cfg, st, err)
		return
	}

	result := snapshot.Diff(st.snap, *snap)
	st.snap = snap
	st.lastErr = nil
	st.lastSuccess = time.Now()

	if st.degraded {
		st.degraded = false
		e.emit(ctx, event.SourceRecovered{Repo: repo})
	}

	e.emit(ctx, event.RepoPolled{Repo: repo, Open: len(snap.PRs)})
	e.emitDiff(ctx, result)
	e.logger.Info("polled repo", "repo", repo, "open_prs", len(snap.PRs),
		"added", len(result.Added), "removed", len(result.Removed), "changed", len(result.Changed))
}

// recordFailure keeps the stored snapshot untouched and emits
// SourceDegraded only on the transition into the degraded state, so N
// consecutive failures surface once.
func (e *Engine) recordFailure(ctx context.Context, repo string, cfg config.Config, st *repoState, err error) {
	st.lastErr = err
	kind := github.KindOf(err)

	if hint := retryAfter(err); hint > cfg.PollInterval {
		st.deferUntil = time.Now().Add(hint)
		e.logger.Warn("rate limited, deferring next attempt", "repo", repo, "retry_after", hint)
	}

	if st.degraded {
		e.logger.Debug("still degraded", "repo", repo, "kind", kind, "err", err,
			"last_success", st.lastSuccess)
		return
	}

	st.degraded = true
	e.logger.Warn("poll failed", "repo", repo, "kind", kind, "err", err)
	e.emit(ctx, event.SourceDegraded{Repo: repo, Kind: string(kind), Err: err})
}

func (e *Engine) emitDiff(ctx context.Context, result snapshot.DiffResult) {
	for _, pr := range result.Added {
		e.emit(ctx, event.PRAdded{Repo: result.Repo, PR: pr, Silent: result.Baseline})
	}
	for _, c := range result.Changed {
		e.emit(ctx, event.PRChanged{Repo: result.Repo, PR: c.PR, Fields: c.Fields})
	}
	for _, number := range result.Removed {
		e.emit(ctx, event.PRRemoved{Repo: result.Repo, Number: number})
	}
}

func (e *Engine) emit(ctx context.Context, ev event.Event) {
	select {
	case e.events <- ev:
	case <-ctx.Done():
	}
}

func (e *Engine) slot(repo string) *repoState {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.repos[repo]
	if !ok {
		st = &repoState{}
		e.repos[repo] = st
	}
	return st
}

// prune forgets repositories that were removed from the config.
func (e *Engine) prune(repos []string) {
	keep := make(map[string]bool, len(repos))
	for _, r := range repos {
		keep[r] = true
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for r := range e.repos {
		if !keep[r] {
			e.logger.Info("repo removed from config, dropping state", "repo", r)
			delete(e.repos, r)
		}
	}
}

func retryAfter(err error) time.Duration {
	var fe *github.FetchError
	if errors.As(err, &fe) && fe.Kind == github.KindRateLimited {
		return fe.RetryAfter
	}
	return 0
}
