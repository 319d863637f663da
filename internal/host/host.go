// Package host implements the shared-session blob store behind the sync
// HTTP API.
//
// Sessions are opaque JSON documents keyed by token. The host never
// inspects or merges them: PUT overwrites the whole document, GET returns
// it verbatim, and a TTL sweep reaps sessions nobody has written to in a
// while. Last-write-wins is the participants' contract; the host just
// holds the blob.
package host

import (
	"context"
	"fmt"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/ocmu/mashup/internal/domain/model"
	"github.com/ocmu/mashup/pkg/logger"
	"github.com/ocmu/mashup/pkg/metrics"
)

// Default host configuration constants.
const (
	defaultTTL           = 24 * time.Hour
	defaultSweepInterval = time.Minute
)

type record struct {
	snap      model.RemoteSnapshot
	touchedAt time.Time
}

// Host holds the live sessions.
type Host struct {
	mu       sync.RWMutex
	sessions map[string]record

	ttl           time.Duration
	sweepInterval time.Duration
	now           func() time.Time
	log           logger.Logger

	started bool
	stopCh  chan struct{}
}

// Option applies a configuration option to the Host.
type Option func(*Host)

// WithTTL sets how long an idle session survives.
func WithTTL(d time.Duration) Option {
	return func(h *Host) {
		if d > 0 {
			h.ttl = d
		}
	}
}

// WithSweepInterval sets how often expired sessions are reaped.
func WithSweepInterval(d time.Duration) Option {
	return func(h *Host) {
		if d > 0 {
			h.sweepInterval = d
		}
	}
}

// WithClock overrides the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(h *Host) {
		if now != nil {
			h.now = now
		}
	}
}

// WithLogger sets a custom logger for the host.
func WithLogger(l logger.Logger) Option {
	return func(h *Host) {
		if l != nil {
			h.log = l
		}
	}
}

// New creates a session host.
func New(opts ...Option) *Host {
	h := &Host{
		sessions:      make(map[string]record),
		ttl:           defaultTTL,
		sweepInterval: defaultSweepInterval,
		now:           time.Now,
		stopCh:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.log == nil {
		h.log = logger.Get()
	}
	return h
}

// Start launches the TTL sweep loop.
func (h *Host) Start(ctx context.Context) {
	h.mu.Lock()
	if h.started {
		h.mu.Unlock()
		return
	}
	h.started = true
	h.stopCh = make(chan struct{})
	stopCh := h.stopCh
	h.mu.Unlock()

	go h.sweepLoop(ctx, stopCh)
	h.log.Info(ctx, "session host started",
		logger.Any("ttl", h.ttl.String()),
		logger.Any("sweepInterval", h.sweepInterval.String()),
	)
}

// Stop halts the sweep loop. Held sessions stay in memory until the
// process exits.
func (h *Host) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.started {
		return
	}
	select {
	case <-h.stopCh:
	default:
		close(h.stopCh)
	}
	h.started = false
}

// CreateSession stores the document under a fresh token.
func (h *Host) CreateSession(ctx context.Context, snap model.RemoteSnapshot) (string, error) {
	token, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}

	h.mu.Lock()
	h.sessions[token] = record{snap: snap, touchedAt: h.now()}
	count := len(h.sessions)
	h.mu.Unlock()

	metrics.RecordSessionCreated()
	metrics.UpdateHostSessions(count)
	h.log.Info(ctx, "session created", logger.String("token", token))
	return token, nil
}

// UpdateSession overwrites the document for an existing token. No partial
// update, no merge.
func (h *Host) UpdateSession(ctx context.Context, token string, snap model.RemoteSnapshot) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sessions[token]; !ok {
		return fmt.Errorf("update session %q: %w", token, ErrSessionNotFound)
	}
	h.sessions[token] = record{snap: snap, touchedAt: h.now()}
	return nil
}

// Session returns the stored document.
func (h *Host) Session(ctx context.Context, token string) (model.RemoteSnapshot, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	rec, ok := h.sessions[token]
	if !ok {
		return model.RemoteSnapshot{}, fmt.Errorf("session %q: %w", token, ErrSessionNotFound)
	}
	return rec.snap, nil
}

// Count returns the number of live sessions.
func (h *Host) Count(ctx context.Context) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// GetStats returns host statistics for monitoring.
func (h *Host) GetStats() map[string]interface{} {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return map[string]interface{}{
		"sessions":      len(h.sessions),
		"ttl":           h.ttl.String(),
		"sweepInterval": h.sweepInterval.String(),
		"started":       h.started,
	}
}

func (h *Host) sweepLoop(ctx context.Context, stopCh <-chan struct{}) {
	ticker := time.NewTicker(h.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			h.sweep(ctx)
		}
	}
}

// sweep reaps sessions idle past the TTL.
func (h *Host) sweep(ctx context.Context) {
	cutoff := h.now().Add(-h.ttl)

	h.mu.Lock()
	expired := 0
	for token, rec := range h.sessions {
		if rec.touchedAt.Before(cutoff) {
			delete(h.sessions, token)
			expired++
		}
	}
	count := len(h.sessions)
	h.mu.Unlock()

	if expired > 0 {
		metrics.UpdateHostSessions(count)
		for i := 0; i < expired; i++ {
			metrics.RecordSessionExpired()
		}
		h.log.Info(ctx, "expired sessions reaped", logger.Int("expired", expired))
	}
}
