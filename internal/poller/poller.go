// Package poller owns the periodic refresh of the news feed.
//
// A Poller runs one fetch-and-decode cycle immediately on Start, then one per
// interval until Stop or the parent context is cancelled. Each successful
// cycle replaces the current Snapshot; a failed cycle keeps the previous one
// and records the error in Status. Cycles started by Refresh are not
// serialized with ticker cycles, so the last cycle to finish wins.
package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/newsdesk/internal/feed"
	"github.com/JonMunkholm/newsdesk/internal/fetch"
)

// ErrNoSnapshot is returned when no cycle has succeeded yet.
var ErrNoSnapshot = errors.New("no feed snapshot available")

// DefaultInterval matches the widget's five-minute refresh.
const DefaultInterval = 5 * time.Minute

// Fetcher retrieves one feed payload.
type Fetcher interface {
	Fetch(ctx context.Context) (*fetch.Payload, error)
}

// Snapshot is the decoded result of one successful cycle.
type Snapshot struct {
	ID        string            `json:"id"`
	FetchedAt time.Time         `json:"fetched_at"`
	Format    fetch.Format      `json:"format"`
	Records   []feed.Record     `json:"-"`
	Skipped   []feed.SkippedRow `json:"skipped,omitempty"`
	Dropped   int               `json:"dropped"`
	Duration  time.Duration     `json:"duration_ns"`
}

// Status reports the poller's state.
type Status struct {
	Running     bool          `json:"running"`
	Interval    time.Duration `json:"interval_ns"`
	LastAttempt time.Time     `json:"last_attempt,omitempty"`
	LastSuccess time.Time     `json:"last_success,omitempty"`
	LastError   string        `json:"last_error,omitempty"`
	Cycles      int           `json:"cycles"`
}

// Options configures a Poller.
type Options struct {
	Interval time.Duration // Time between cycles (default: 5m)
	Decoder  *feed.Decoder // CSV dialect; nil uses the default
	Logger   *slog.Logger  // nil uses slog.Default()
}

// Poller periodically refreshes a feed snapshot.
type Poller struct {
	fetcher  Fetcher
	interval time.Duration
	decoder  *feed.Decoder
	logger   *slog.Logger

	mu          sync.RWMutex
	snapshot    *Snapshot
	lastAttempt time.Time
	lastSuccess time.Time
	lastErr     error
	cycles      int

	runMu   sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running atomic.Bool
}

// New creates a Poller over f.
func New(f Fetcher, opts Options) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Decoder == nil {
		opts.Decoder = feed.NewDecoder(feed.DefaultDialect)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Poller{
		fetcher:  f,
		interval: opts.Interval,
		decoder:  opts.Decoder,
		logger:   opts.Logger.With("component", "poller"),
	}
}

// Start launches the refresh loop. Calling Start while running stops the
// current loop first.
func (p *Poller) Start(ctx context.Context) {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	p.stopLocked()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done
	p.running.Store(true)

	go p.run(ctx, done)
}

// Stop cancels the refresh loop and waits for it to exit. It is safe to call
// more than once.
func (p *Poller) Stop() {
	p.runMu.Lock()
	defer p.runMu.Unlock()
	p.stopLocked()
}

func (p *Poller) stopLocked() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
	p.cancel = nil
	p.done = nil
}

func (p *Poller) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer p.running.Store(false)

	p.logger.Info("poller started", "interval", p.interval.String())

	// Run immediately on start
	p.cycle(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("poller stopped")
			return
		case <-ticker.C:
			p.cycle(ctx)
		}
	}
}

func (p *Poller) cycle(ctx context.Context) {
	if _, err := p.Refresh(ctx); err != nil && ctx.Err() == nil {
		p.logger.Error("feed refresh failed", "error", err)
	}
}

// Refresh runs one fetch-and-decode cycle and returns the new snapshot.
// On failure the previous snapshot is kept.
func (p *Poller) Refresh(ctx context.Context) (*Snapshot, error) {
	start := time.Now()

	p.mu.Lock()
	p.lastAttempt = start
	p.cycles++
	p.mu.Unlock()

	snap, err := p.load(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.lastErr = err
		return nil, err
	}
	snap.Duration = time.Since(start)
	p.snapshot = snap
	p.lastSuccess = snap.FetchedAt
	p.lastErr = nil
	return snap, nil
}

func (p *Poller) load(ctx context.Context) (*Snapshot, error) {
	payload, err := p.fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	res, err := fetch.Decode(payload, p.decoder)
	if err != nil {
		return nil, fmt.Errorf("decode %s feed: %w", payload.Format, err)
	}

	for _, s := range res.Skipped {
		p.logger.Warn("skipped feed row",
			"row", s.Row,
			"line", s.Line,
			"reason", s.Reason,
			"fields", s.Fields,
			"want", s.Want,
		)
	}

	_, dropped := feed.FilterHeadlines(res.Records)

	p.logger.Info("feed refreshed",
		"format", payload.Format,
		"records", len(res.Records),
		"skipped", len(res.Skipped),
		"without_headline", dropped,
	)

	return &Snapshot{
		ID:        uuid.NewString(),
		FetchedAt: payload.FetchedAt,
		Format:    payload.Format,
		Records:   res.Records,
		Skipped:   res.Skipped,
		Dropped:   dropped,
	}, nil
}

// Snapshot returns the latest successful snapshot, or nil before the first.
func (p *Poller) Snapshot() *Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshot
}

// Latest is like Snapshot but returns ErrNoSnapshot, wrapping the last cycle
// error when there is one, before the first success.
func (p *Poller) Latest() (*Snapshot, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.snapshot != nil {
		return p.snapshot, nil
	}
	if p.lastErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoSnapshot, p.lastErr)
	}
	return nil, ErrNoSnapshot
}

// Status returns the poller's current state.
func (p *Poller) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()

	st := Status{
		Running:     p.running.Load(),
		Interval:    p.interval,
		LastAttempt: p.lastAttempt,
		LastSuccess: p.lastSuccess,
		Cycles:      p.cycles,
	}
	if p.lastErr != nil {
		st.LastError = p.lastErr.Error()
	}
	return st
}
