// Package service provides the core scorecard service that wires the
// entity store, local persistence, and session sync together behind one
// front door.
package service

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/ocmu/mashup/internal/adapters/persistence"
	"github.com/ocmu/mashup/internal/adapters/remote"
	repository "github.com/ocmu/mashup/internal/adapters/repository"
	"github.com/ocmu/mashup/internal/domain/model"
	"github.com/ocmu/mashup/internal/domain/ranking"
	"github.com/ocmu/mashup/internal/export"
	"github.com/ocmu/mashup/internal/session"
	"github.com/ocmu/mashup/pkg/logger"
)

// Service owns the scorecard state for one device: the in-memory store,
// its write-through persistence, and the session coordinator.
type Service struct {
	mu sync.RWMutex

	// Core components
	store       *repository.MemStore
	persist     *persistence.Adapter
	remote      *remote.Client
	coordinator *session.Coordinator

	// Configuration
	dataDir        string
	remoteEndpoint string
	pollInterval   time.Duration
	pushTimeout    time.Duration
	outboxCapacity int

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDataDir sets the local persistence directory.
func WithDataDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.dataDir = dir
		}
	}
}

// WithRemoteEndpoint sets the base URL of the session host.
func WithRemoteEndpoint(endpoint string) Option {
	return func(s *Service) {
		if endpoint != "" {
			s.remoteEndpoint = endpoint
		}
	}
}

// WithPollInterval sets the cadence of background pulls while live.
func WithPollInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// WithPushTimeout bounds each sync request.
func WithPushTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.pushTimeout = d
		}
	}
}

// WithOutboxCapacity bounds the push outbox.
func WithOutboxCapacity(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.outboxCapacity = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dataDir:        "data",
		remoteEndpoint: "http://localhost:9080",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens persistence, restores the last saved store, and resumes a
// persisted session if one survives on the host.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting scorecard service...")

	persist, err := persistence.Open(s.dataDir, persistence.WithLogger(s.logger))
	if err != nil {
		return err
	}
	s.persist = persist

	seed := s.persist.Load(ctx)
	s.store = repository.NewMemStore(
		repository.WithSeed(seed),
		repository.WithChangeListener(s.onMutation),
	)

	remoteOpts := []remote.Option{}
	if s.pushTimeout > 0 {
		remoteOpts = append(remoteOpts, remote.WithTimeout(s.pushTimeout))
	}
	s.remote = remote.NewClient(s.remoteEndpoint, remoteOpts...)

	coordOpts := []session.Option{
		session.WithLogger(s.logger),
		session.WithStateListener(s.onStateChange),
	}
	if s.pollInterval > 0 {
		coordOpts = append(coordOpts, session.WithPollInterval(s.pollInterval))
	}
	if s.outboxCapacity > 0 {
		coordOpts = append(coordOpts, session.WithOutboxCapacity(s.outboxCapacity))
	}
	s.coordinator = session.New(s.remote, &syncedStore{store: s.store, persist: s.persist}, coordOpts...)

	s.started = true
	entries, feedback := s.store.Counts(ctx)
	s.logger.Info(ctx, "scorecard service started",
		logger.Int("entries", entries),
		logger.Int("feedback", feedback),
	)

	// Resume a previously active session. A vanished or unreachable host
	// leaves us offline with local data intact.
	if token, ok := s.persist.Token(ctx); ok {
		if err := s.coordinator.Join(ctx, token); err != nil {
			s.logger.Warn(ctx, "could not resume session, staying offline",
				logger.String("token", token),
				logger.Error(err),
			)
			s.persist.ClearToken(ctx)
		}
	}
	return nil
}

// Stop leaves any live session and closes persistence.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping scorecard service...")

	if s.coordinator != nil {
		// Stop sync loops but keep the token persisted so the next start
		// resumes the session.
		token := s.coordinator.Token()
		s.coordinator.Leave()
		if token != "" {
			s.persist.SaveToken(ctx, token)
		}
	}
	if s.persist != nil {
		_ = s.persist.Close()
	}

	s.started = false
	s.logger.Info(ctx, "scorecard service stopped")
}

// syncedStore is the coordinator's view of the store. Adopting remote
// state bypasses the change listener (an adoption must not echo back as
// a push), so persistence happens here instead.
type syncedStore struct {
	store   *repository.MemStore
	persist *persistence.Adapter
}

func (s *syncedStore) Snapshot(ctx context.Context) model.Snapshot {
	return s.store.Snapshot(ctx)
}

func (s *syncedStore) Replace(ctx context.Context, snap model.Snapshot) {
	s.store.Replace(ctx, snap)
	s.persist.Save(ctx, snap)
}

// onMutation is the store change listener: write-through persistence plus
// a session push when live.
func (s *Service) onMutation(snap model.Snapshot) {
	ctx := context.Background()
	s.persist.Save(ctx, snap)
	s.coordinator.NotifyMutation(ctx, snap)
}

// onStateChange persists session transitions so a restart can resume.
func (s *Service) onStateChange(state session.State, token string, err error) {
	ctx := context.Background()
	switch state {
	case session.Live:
		s.persist.SaveToken(ctx, token)
	case session.Offline:
		s.persist.ClearToken(ctx)
		if err != nil {
			s.logger.Warn(ctx, "session ended", logger.Error(err))
		}
	}
}

// RegisterEntry adds a competition entry.
func (s *Service) RegisterEntry(ctx context.Context, e model.Entry) (model.Entry, error) {
	return s.store.RegisterEntry(ctx, e)
}

// UpdateEntry rewrites an entry's style and brewer.
func (s *Service) UpdateEntry(ctx context.Context, id, style, brewer string) (model.Entry, error) {
	return s.store.UpdateEntry(ctx, id, style, brewer)
}

// DeleteEntry removes an entry and its feedback, returning the number of
// feedback records that went with it.
func (s *Service) DeleteEntry(ctx context.Context, id string) (int, error) {
	return s.store.DeleteEntry(ctx, id)
}

// SubmitFeedback records a judge's scores for an entry.
func (s *Service) SubmitFeedback(ctx context.Context, f model.Feedback) (model.Feedback, error) {
	return s.store.AddFeedback(ctx, f)
}

// Entry returns one entry by id.
func (s *Service) Entry(ctx context.Context, id string) (model.Entry, error) {
	return s.store.Entry(ctx, id)
}

// Snapshot returns a deep copy of the current store.
func (s *Service) Snapshot(ctx context.Context) model.Snapshot {
	return s.store.Snapshot(ctx)
}

// EntryStandings returns entries ranked by average total score.
func (s *Service) EntryStandings(ctx context.Context) []ranking.EntryStanding {
	return ranking.Entries(s.store.Snapshot(ctx))
}

// BrewerStandings returns brewers ranked by average review score.
func (s *Service) BrewerStandings(ctx context.Context) []ranking.BrewerStanding {
	return ranking.Brewers(s.store.Snapshot(ctx))
}

// FlightOrder returns entries in judging order.
func (s *Service) FlightOrder(ctx context.Context) []model.Entry {
	return ranking.FlightOrder(s.store.Snapshot(ctx).Entries)
}

// ExportCSV renders all feedback as a CSV document.
func (s *Service) ExportCSV(ctx context.Context) ([]byte, error) {
	return export.CSV(s.store.Snapshot(ctx))
}

// ExportDeck builds the presentation outline for the session.
func (s *Service) ExportDeck(ctx context.Context, date time.Time) export.Deck {
	return export.BuildDeck(s.store.Snapshot(ctx), date)
}

// CreateSession shares the local store as a new session.
func (s *Service) CreateSession(ctx context.Context) (string, error) {
	return s.coordinator.Create(ctx)
}

// JoinSession adopts an existing session, replacing local state.
func (s *Service) JoinSession(ctx context.Context, token string) error {
	return s.coordinator.Join(ctx, token)
}

// JoinFromLink joins via a share link and returns the cleaned link.
func (s *Service) JoinFromLink(ctx context.Context, link *url.URL) (*url.URL, bool, error) {
	return s.coordinator.JoinFromLink(ctx, link)
}

// ShareLink returns the join link for the active session.
func (s *Service) ShareLink(base *url.URL) string {
	return s.coordinator.ShareLink(base)
}

// LeaveSession goes offline, keeping local data.
func (s *Service) LeaveSession(ctx context.Context) {
	s.coordinator.Leave()
}

// SessionState reports the coordinator state and active token.
func (s *Service) SessionState() (session.State, string) {
	return s.coordinator.State(), s.coordinator.Token()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started": s.started,
	}
	if s.started {
		entries, feedback := s.store.Counts(ctx)
		stats["entries"] = entries
		stats["feedback"] = feedback
		stats["sessionState"] = s.coordinator.State().String()
		stats["lastSync"] = s.coordinator.LastSync()
	}
	return stats
}
