// Package feed maintains the single authoritative content snapshot. A
// Synchronizer polls the remote feed on a fixed interval, fingerprints
// each response, and notifies subscribers only when the content actually
// changed. Transient failures keep the last known-good snapshot.
package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/driftline/driftline/internal/content"
	apperrors "github.com/driftline/driftline/internal/errors"
	"github.com/driftline/driftline/internal/logging"
)

// DefaultPollInterval paces feed polling when none is configured.
const DefaultPollInterval = 7500 * time.Millisecond

// Doer is the injected HTTP capability.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Subscriber receives each new snapshot. Invoked synchronously, in
// subscription order.
type Subscriber func(*content.Snapshot)

// Options configures a Synchronizer.
type Options struct {
	// URL locates the feed. An http(s) URL is polled; a file: URL or
	// plain path is read from disk and watched (see FileWatcher).
	URL string

	// Client performs HTTP fetches. Defaults to http.DefaultClient.
	Client Doer

	// PollInterval paces the timer and floors the cache key window.
	PollInterval time.Duration

	// Now is the clock. Defaults to time.Now.
	Now func() time.Time

	Logger logging.Logger
}

type subscription struct {
	id int
	fn Subscriber
}

// Synchronizer owns the authoritative snapshot, the poll timer, and the
// subscriber list. All shared state is guarded by mu; subscriber
// callbacks run outside the lock.
type Synchronizer struct {
	client   Doer
	feedURL  string
	filePath string
	interval time.Duration
	now      func() time.Time
	logger   logging.Logger

	mu       sync.Mutex
	snapshot *content.Snapshot
	subs     []subscription
	nextID   int

	running bool
	stop    chan struct{}
	done    chan struct{}
}

// NewSynchronizer creates a synchronizer for the configured feed.
func NewSynchronizer(opts Options) (*Synchronizer, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("feed: URL is required")
	}
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logging.NopLogger{}
	}

	s := &Synchronizer{
		client:   opts.Client,
		feedURL:  opts.URL,
		interval: opts.PollInterval,
		now:      opts.Now,
		logger:   opts.Logger.WithComponent("feed"),
	}

	if path, ok := localPath(opts.URL); ok {
		s.filePath = path
	}

	return s, nil
}

// localPath reports whether rawURL names a local file rather than an HTTP
// endpoint, and resolves it to a filesystem path.
func localPath(rawURL string) (string, bool) {
	if strings.HasPrefix(rawURL, "file://") {
		return strings.TrimPrefix(rawURL, "file://"), true
	}
	if strings.HasPrefix(rawURL, "file:") {
		return strings.TrimPrefix(rawURL, "file:"), true
	}
	if !strings.Contains(rawURL, "://") {
		return rawURL, true
	}
	return "", false
}

// Current returns the last known-good snapshot, or nil before the first
// successful load.
func (s *Synchronizer) Current() *content.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Subscribe registers fn and returns its unsubscribe function. If a
// snapshot already exists, fn is invoked immediately with it so late
// subscribers are never left uninitialized. Unsubscribing twice is a
// no-op the second time.
func (s *Synchronizer) Subscribe(fn Subscriber) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	snap := s.snapshot
	s.mu.Unlock()

	if snap != nil {
		fn(snap)
	}

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// Load fetches the feed, fingerprints the payload, and publishes a new
// snapshot when the content changed. The cache-defeating query parameter
// is fresh per call when force is true, and shared across one poll window
// otherwise. On fetch or parse failure the stored snapshot is untouched
// and returned alongside the error: stale-but-available, with the failure
// explicit to the caller.
//
// The fingerprint comparison baseline is the synchronizer's own current
// fingerprint at the time the response resolves, so overlapping fetches
// settle last-response-wins.
func (s *Synchronizer) Load(ctx context.Context, force bool) (*content.Snapshot, error) {
	payload, err := s.fetch(ctx, force)
	if err != nil {
		return s.Current(), err
	}

	snap, err := content.Parse(payload)
	if err != nil {
		return s.Current(), err
	}

	s.mu.Lock()
	if s.snapshot != nil && s.snapshot.Fingerprint == snap.Fingerprint {
		prev := s.snapshot
		s.mu.Unlock()
		return prev, nil
	}
	s.snapshot = snap
	subs := make([]subscription, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	s.logger.Debug(ctx, "snapshot changed",
		"fingerprint", snap.Fingerprint[:12],
		"articles", len(snap.Articles),
		"subscribers", len(subs))

	for _, sub := range subs {
		sub.fn(snap)
	}

	return snap, nil
}

func (s *Synchronizer) fetch(ctx context.Context, force bool) ([]byte, error) {
	if s.filePath != "" {
		return s.readFile()
	}

	reqURL, err := s.requestURL(force)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("feed request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed fetch %s: %w", s.feedURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &apperrors.FetchError{URL: s.feedURL, StatusCode: resp.StatusCode}
	}

	return io.ReadAll(resp.Body)
}

// requestURL appends the cache-defeating query parameter: the raw
// timestamp when forced, the floored poll window otherwise. Repeated
// unforced calls inside one window share a cache key, which bounds
// upstream cache growth during rapid retries.
func (s *Synchronizer) requestURL(force bool) (string, error) {
	u, err := url.Parse(s.feedURL)
	if err != nil {
		return "", fmt.Errorf("feed url %q: %w", s.feedURL, err)
	}

	nowMs := s.now().UnixMilli()
	var v int64
	if force {
		v = nowMs
	} else {
		v = nowMs / s.interval.Milliseconds()
	}

	q := u.Query()
	q.Set("v", fmt.Sprintf("%d", v))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Start arms the poll timer. Idempotent: calling Start while running is a
// no-op. Per-tick failures are logged and never cancel the timer; each
// tick's fetch runs in its own goroutine so a slow response cannot delay
// the next tick.
func (s *Synchronizer) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stop, s.done
	s.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case <-ticker.C:
				go func() {
					if _, err := s.Load(ctx, false); err != nil {
						s.logger.Warn(ctx, err, "poll tick failed, keeping last snapshot")
					}
				}()
			}
		}
	}()
}

// Stop disarms the poll timer. Safe to call when already stopped.
func (s *Synchronizer) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	stop, done := s.stop, s.done
	s.mu.Unlock()

	close(stop)
	<-done
}
