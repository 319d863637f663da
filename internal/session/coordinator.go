// Package session coordinates the shared-session lifecycle: creating or
// joining a remote session, pushing on mutation, and polling for peer
// updates.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ocmu/mashup/internal/adapters/outbox"
	"github.com/ocmu/mashup/internal/adapters/remote"
	"github.com/ocmu/mashup/internal/domain/model"
	"github.com/ocmu/mashup/pkg/logger"
	"github.com/ocmu/mashup/pkg/metrics"
)

// Default coordinator configuration constants.
const (
	defaultPollInterval = 12 * time.Second

	// tokenParam names the share-link query parameter carrying the token.
	tokenParam = "session"
)

// State of the coordinator. Two states only: either a token is active or
// it is not.
type State int

// Coordinator states.
const (
	Offline State = iota
	Live
)

func (s State) String() string {
	if s == Live {
		return "live"
	}
	return "offline"
}

// Remote abstracts the sync client.
type Remote interface {
	Create(ctx context.Context, snap model.Snapshot) (string, error)
	Push(ctx context.Context, token string, snap model.Snapshot) (int64, error)
	Pull(ctx context.Context, token string, force bool, since int64) (*model.RemoteSnapshot, error)
}

// Storage is the slice of the entity store the coordinator needs.
type Storage interface {
	Snapshot(ctx context.Context) model.Snapshot
	Replace(ctx context.Context, snap model.Snapshot)
}

// StateListener observes transitions. err is non-nil when the session was
// forced offline by a session-fatal failure; that is the user-visible
// signal.
type StateListener func(state State, token string, err error)

// Coordinator owns the session lifecycle. All sync failures short of a
// vanished session are absorbed here: local mutation is never blocked by
// the network.
type Coordinator struct {
	remote Remote
	store  Storage
	log    logger.Logger

	pollInterval   time.Duration
	outboxCapacity int
	listener       StateListener

	mu       sync.Mutex
	state    State
	token    string
	lastSync int64
	box      *outbox.Outbox
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	// pulling is the single-flight guard: a timer tick arriving while a
	// pull is in flight is skipped, not queued.
	pulling atomic.Bool
}

// Option applies a configuration option to the Coordinator.
type Option func(*Coordinator)

// WithPollInterval sets the cadence of non-forced pulls while live.
func WithPollInterval(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithOutboxCapacity bounds the push outbox.
func WithOutboxCapacity(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.outboxCapacity = n
		}
	}
}

// WithLogger sets a custom logger for the coordinator.
func WithLogger(l logger.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.log = l
		}
	}
}

// WithStateListener registers the transition observer.
func WithStateListener(l StateListener) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.listener = l
		}
	}
}

// New creates an offline coordinator.
func New(r Remote, store Storage, opts ...Option) *Coordinator {
	c := &Coordinator{
		remote:       r,
		store:        store,
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Get()
	}
	return c
}

// State returns the current state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Token returns the active session token, empty while offline.
func (c *Coordinator) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// LastSync returns the last-synced watermark in epoch milliseconds.
func (c *Coordinator) LastSync() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSync
}

// Create starts a new shared session seeded with the current local store.
// On success the coordinator is live; on failure it stays offline and the
// error is user-visible.
func (c *Coordinator) Create(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.state == Live {
		token := c.token
		c.mu.Unlock()
		return token, nil
	}
	c.mu.Unlock()

	snap := c.store.Snapshot(ctx)
	token, err := c.remote.Create(ctx, snap)
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	// The host holds the snapshot we just posted; anything stamped at or
	// before this instant is not news.
	c.goLive(token, time.Now().UnixMilli())
	c.log.Info(ctx, "session created", logger.String("token", token))
	return token, nil
}

// Join adopts an existing session token. The remote store replaces local
// state wholesale; local-only data not yet synced is lost. That is the
// documented cost of joining.
func (c *Coordinator) Join(ctx context.Context, token string) error {
	// Adopting a new session implicitly leaves the current one.
	c.Leave()

	snap, err := c.remote.Pull(ctx, token, true, 0)
	if err != nil {
		return fmt.Errorf("join session %q: %w", token, err)
	}

	c.store.Replace(ctx, snap.Local())
	metrics.RecordSyncConflictOverwrite()
	c.goLive(token, snap.LastUpdate)
	c.log.Info(ctx, "session joined", logger.String("token", token))
	return nil
}

// JoinFromLink joins using the token carried in a share link and returns
// the link with the token parameter stripped, so reloading the cleaned
// address does not repeat the join. The parameter is stripped even when
// the join fails. The bool reports whether a token was present.
func (c *Coordinator) JoinFromLink(ctx context.Context, link *url.URL) (*url.URL, bool, error) {
	q := link.Query()
	token := q.Get(tokenParam)
	if token == "" {
		return link, false, nil
	}

	cleaned := *link
	q.Del(tokenParam)
	cleaned.RawQuery = q.Encode()

	if err := c.Join(ctx, token); err != nil {
		return &cleaned, true, err
	}
	return &cleaned, true, nil
}

// ShareLink returns base with the session token attached as a query
// parameter. Empty while offline.
func (c *Coordinator) ShareLink(base *url.URL) string {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()
	if token == "" {
		return ""
	}
	u := *base
	q := u.Query()
	q.Set(tokenParam, token)
	u.RawQuery = q.Encode()
	return u.String()
}

// Leave discards the token and stops sync. Local data is retained as-is;
// there is no rollback to pre-join state.
func (c *Coordinator) Leave() {
	c.transitionOffline(nil)
}

// NotifyMutation queues a push of the mutated store. Fire-and-forget: a
// failed delivery is logged and superseded by the next mutation.
func (c *Coordinator) NotifyMutation(ctx context.Context, snap model.Snapshot) {
	c.mu.Lock()
	box := c.box
	live := c.state == Live
	c.mu.Unlock()

	if !live || box == nil {
		return
	}
	box.Enqueue(ctx, snap)
}

// goLive transitions to Live and starts the pusher and poll loops.
func (c *Coordinator) goLive(token string, since int64) {
	ctx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	c.state = Live
	c.token = token
	c.lastSync = since
	c.box = outbox.New(outbox.WithCapacity(c.outboxCapacity))
	c.cancel = cancel
	box := c.box
	c.mu.Unlock()

	c.wg.Add(2)
	go c.pushLoop(ctx, token, box)
	go c.pollLoop(ctx)

	c.notify(Live, token, nil)
}

// transitionOffline tears down the live session. err is nil for an
// explicit leave and non-nil when forced offline.
func (c *Coordinator) transitionOffline(err error) {
	c.mu.Lock()
	if c.state == Offline {
		c.mu.Unlock()
		return
	}
	c.state = Offline
	c.token = ""
	cancel := c.cancel
	box := c.box
	c.cancel = nil
	c.box = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if box != nil {
		_ = box.Close()
	}
	c.notify(Offline, "", err)
}

// pushLoop drains the outbox for the lifetime of one session.
func (c *Coordinator) pushLoop(ctx context.Context, token string, box *outbox.Outbox) {
	defer c.wg.Done()
	for snap := range box.Dequeue() {
		stamp, err := c.remote.Push(ctx, token, snap)
		switch {
		case err == nil:
			c.mu.Lock()
			if stamp > c.lastSync {
				c.lastSync = stamp
			}
			c.mu.Unlock()
		case errors.Is(err, remote.ErrSessionNotFound):
			c.log.Warn(ctx, "session vanished during push", logger.String("token", token))
			c.transitionOffline(err)
			return
		case errors.Is(err, context.Canceled):
			return
		default:
			// Transient. No retry; the next mutation pushes fresher state.
			c.log.Warn(ctx, "push failed", logger.Error(err))
		}
	}
}

// pollLoop schedules non-forced pulls. A tick landing while a pull is in
// flight is skipped by the single-flight guard.
func (c *Coordinator) pollLoop(ctx context.Context) {
	defer c.wg.Done()
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !c.pulling.CompareAndSwap(false, true) {
				c.log.Debug(ctx, "pull already in flight, skipping tick")
				continue
			}
			go func() {
				defer c.pulling.Store(false)
				c.pullOnce(ctx)
			}()
		}
	}
}

// pullOnce performs one non-forced pull and adopts the result if newer.
func (c *Coordinator) pullOnce(ctx context.Context) {
	c.mu.Lock()
	token := c.token
	since := c.lastSync
	live := c.state == Live
	c.mu.Unlock()
	if !live {
		return
	}

	snap, err := c.remote.Pull(ctx, token, false, since)
	switch {
	case errors.Is(err, remote.ErrSessionNotFound):
		c.log.Warn(ctx, "session vanished, going offline", logger.String("token", token))
		c.transitionOffline(err)
		return
	case errors.Is(err, context.Canceled):
		return
	case err != nil:
		c.log.Warn(ctx, "pull failed", logger.Error(err))
		return
	case snap == nil:
		// Remote state not newer; nothing to adopt.
		return
	}

	c.store.Replace(ctx, snap.Local())
	metrics.RecordSyncConflictOverwrite()
	c.mu.Lock()
	c.lastSync = snap.LastUpdate
	c.mu.Unlock()
	c.log.Debug(ctx, "adopted remote state", logger.Any("lastUpdate", snap.LastUpdate))
}

func (c *Coordinator) notify(state State, token string, err error) {
	if c.listener != nil {
		c.listener(state, token, err)
	}
}
