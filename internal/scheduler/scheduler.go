// Package scheduler feeds live signals into the sponsorship evaluator:
// the creator's latest content and the time it has been on screen.
package scheduler

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"axees/internal/fetcher"
)

// Evaluator is the part of the sponsorship evaluator the scheduler drives.
type Evaluator interface {
	SetContent(text string)
	SetElapsed(d time.Duration)
	Reset()
}

// Scheduler pumps elapsed view time every tick and refreshes content from
// the feed every refresh interval.
type Scheduler struct {
	eval    Evaluator
	fetcher *fetcher.Fetcher
	url     string
	log     *slog.Logger
	tick    time.Duration
	refresh time.Duration
	now     func() time.Time

	mu        sync.Mutex
	current   fetcher.Content
	startedAt time.Time
}

// New creates a Scheduler with the default HTTP client.
func New(eval Evaluator, url string, log *slog.Logger) *Scheduler {
	return NewWithFetcher(eval, fetcher.New(http.DefaultClient), url, log)
}

// NewWithFetcher creates a Scheduler with a custom fetcher (useful for testing).
func NewWithFetcher(eval Evaluator, f *fetcher.Fetcher, url string, log *slog.Logger) *Scheduler {
	return &Scheduler{
		eval:    eval,
		fetcher: f,
		url:     url,
		log:     log,
		tick:    1 * time.Second,
		refresh: 5 * time.Minute,
		now:     time.Now,
	}
}

// SetTickInterval overrides the default 1-second elapsed time interval.
func (s *Scheduler) SetTickInterval(d time.Duration) {
	s.tick = d
}

// SetRefreshInterval overrides the default 5-minute content refresh interval.
func (s *Scheduler) SetRefreshInterval(d time.Duration) {
	s.refresh = d
}

// Current returns the content being viewed and when its session started.
func (s *Scheduler) Current() (fetcher.Content, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.startedAt
}

// Run starts the scheduler loop, blocking until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.refreshContent(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	refresher := time.NewTicker(s.refresh)
	defer refresher.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.pumpElapsed()
		case <-refresher.C:
			s.refreshContent(ctx)
		}
	}
}

func (s *Scheduler) refreshContent(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	content, ok, err := s.fetcher.FetchLatest(ctx, s.url)
	if err != nil {
		s.log.Error("fetch content", "url", s.url, "error", err)
		return
	}
	if !ok {
		s.log.Debug("content feed is empty", "url", s.url)
		return
	}

	s.mu.Lock()
	if content.GUID == s.current.GUID {
		s.mu.Unlock()
		return
	}
	previous := s.current.GUID
	s.current = content
	s.startedAt = s.now()
	s.mu.Unlock()

	// A new piece of content is a new session for the evaluator.
	if previous != "" {
		s.eval.Reset()
	}
	s.eval.SetContent(content.Text)
	s.log.Info("content session started", "guid", content.GUID, "title", content.Title)
}

func (s *Scheduler) pumpElapsed() {
	s.mu.Lock()
	started := s.startedAt
	s.mu.Unlock()
	if started.IsZero() {
		return
	}
	s.eval.SetElapsed(s.now().Sub(started))
}
