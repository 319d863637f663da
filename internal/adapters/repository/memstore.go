package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ocmu/mashup/internal/domain/model"
	"github.com/ocmu/mashup/internal/domain/scoring"
	"github.com/ocmu/mashup/pkg/metrics"
)

// ChangeListener observes every successful mutation with a deep copy of
// the resulting store. Listeners run after the store lock is released;
// they drive write-through persistence and session pushes.
type ChangeListener func(model.Snapshot)

// MemStore implements Store with in-memory slices guarded by a mutex.
// Slices keep registration order, which the stable ranking sort and
// flight positions both rely on.
type MemStore struct {
	mu       sync.RWMutex
	entries  []model.Entry
	feedback []model.Feedback

	now      func() int64
	listener ChangeListener
}

// Option applies a configuration option to the MemStore.
type Option func(*MemStore)

// WithSeed initializes the store contents from a previously persisted
// snapshot.
func WithSeed(snap model.Snapshot) Option {
	return func(s *MemStore) {
		c := snap.Clone()
		s.entries = c.Entries
		s.feedback = c.Feedback
	}
}

// WithChangeListener registers the mutation observer.
func WithChangeListener(l ChangeListener) Option {
	return func(s *MemStore) {
		if l != nil {
			s.listener = l
		}
	}
}

// WithClock overrides the timestamp source. Tests use this for
// deterministic registration times.
func WithClock(now func() int64) Option {
	return func(s *MemStore) {
		if now != nil {
			s.now = now
		}
	}
}

var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory entity store.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{
		now: func() int64 { return time.Now().UnixMilli() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterEntry validates and records a new entry.
func (s *MemStore) RegisterEntry(ctx context.Context, e model.Entry) (model.Entry, error) {
	e.ID = ""
	if err := scoring.ValidateEntry(e); err != nil {
		return model.Entry{}, err
	}

	s.mu.Lock()
	e.ID = uuid.NewString()
	e.FlightPosition = len(s.entries)
	e.RegisteredAt = s.now()
	s.entries = append(s.entries, e)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	return e, nil
}

// UpdateEntry rewrites style and brewer of an existing entry.
func (s *MemStore) UpdateEntry(ctx context.Context, id, style, brewer string) (model.Entry, error) {
	candidate := model.Entry{ID: id, Style: style, Brewer: brewer}
	if err := scoring.ValidateEntry(candidate); err != nil {
		return model.Entry{}, err
	}

	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return model.Entry{}, fmt.Errorf("update entry %q: %w", id, ErrNotFound)
	}
	s.entries[idx].Style = style
	s.entries[idx].Brewer = brewer
	updated := s.entries[idx]
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	return updated, nil
}

// DeleteEntry removes an entry and cascades to its scorecards. Feedback
// for other entries is untouched; flight positions of survivors are not
// compacted, matching their display-default role.
func (s *MemStore) DeleteEntry(ctx context.Context, id string) (int, error) {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return 0, fmt.Errorf("delete entry %q: %w", id, ErrNotFound)
	}
	s.entries = append(s.entries[:idx], s.entries[idx+1:]...)

	kept := s.feedback[:0]
	removed := 0
	for _, f := range s.feedback {
		if f.BeerID == id {
			removed++
			continue
		}
		kept = append(kept, f)
	}
	s.feedback = kept
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	return removed, nil
}

// AddFeedback validates and records one scorecard.
func (s *MemStore) AddFeedback(ctx context.Context, f model.Feedback) (model.Feedback, error) {
	f.ID = ""
	f.Descriptors = scoring.NormalizeDescriptors(f.Descriptors)
	if err := scoring.ValidateFeedback(f); err != nil {
		return model.Feedback{}, err
	}

	s.mu.Lock()
	idx := s.indexLocked(f.BeerID)
	if idx < 0 {
		s.mu.Unlock()
		return model.Feedback{}, fmt.Errorf("add feedback for %q: %w", f.BeerID, ErrUnknownEntry)
	}
	f.ID = uuid.NewString()
	// The scorecard captures the brewer as named at submission time;
	// later edits to the entry must not rewrite history.
	f.BrewerName = s.entries[idx].Brewer
	f.Timestamp = s.now()
	s.feedback = append(s.feedback, f)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	return f, nil
}

// Entry returns a single entry by id.
func (s *MemStore) Entry(ctx context.Context, id string) (model.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return model.Entry{}, fmt.Errorf("entry %q: %w", id, ErrNotFound)
	}
	return s.entries[idx], nil
}

// Snapshot returns a deep copy of the full store.
func (s *MemStore) Snapshot(ctx context.Context) model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Replace adopts a snapshot wholesale. It does not fire the change
// listener: replacement comes from sync pulls, and echoing it back as a
// push would bounce the same state between participants.
func (s *MemStore) Replace(ctx context.Context, snap model.Snapshot) {
	c := snap.Clone()
	s.mu.Lock()
	s.entries = c.Entries
	s.feedback = c.Feedback
	entries, feedback := len(s.entries), len(s.feedback)
	s.mu.Unlock()
	metrics.UpdateStoreSize(entries, feedback)
}

// Counts reports the number of entries and scorecards held.
func (s *MemStore) Counts(ctx context.Context) (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), len(s.feedback)
}

func (s *MemStore) indexLocked(id string) int {
	for i := range s.entries {
		if s.entries[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *MemStore) snapshotLocked() model.Snapshot {
	return model.Snapshot{Entries: s.entries, Feedback: s.feedback}.Clone()
}

func (s *MemStore) notify(snap model.Snapshot) {
	metrics.UpdateStoreSize(len(snap.Entries), len(snap.Feedback))
	if s.listener != nil {
		s.listener(snap)
	}
}
