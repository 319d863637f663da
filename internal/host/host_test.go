package host

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ocmu/mashup/internal/domain/model"
	"github.com/ocmu/mashup/pkg/logger"
)

func testHost(t *testing.T, opts ...Option) *Host {
	t.Helper()
	if err := logger.Init(); err != nil {
		t.Fatal(err)
	}
	return New(opts...)
}

func TestHost_SessionLifecycle(t *testing.T) {
	ctx := context.Background()
	h := testHost(t)

	snap := model.RemoteSnapshot{
		Entries:    []model.Entry{{ID: "e1", Style: "21A", Brewer: "Acme Brewing"}},
		LastUpdate: 100,
	}
	token, err := h.CreateSession(ctx, snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" {
		t.Fatal("expected a token")
	}

	got, err := h.Session(ctx, token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.LastUpdate != 100 || len(got.Entries) != 1 {
		t.Errorf("unexpected document: %+v", got)
	}

	// Overwrite semantics: the whole document is replaced.
	newer := model.RemoteSnapshot{LastUpdate: 200}
	if err := h.UpdateSession(ctx, token, newer); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ = h.Session(ctx, token)
	if got.LastUpdate != 200 || len(got.Entries) != 0 {
		t.Errorf("expected wholesale overwrite, got %+v", got)
	}

	if h.Count(ctx) != 1 {
		t.Errorf("expected 1 session, got %d", h.Count(ctx))
	}
}

func TestHost_UnknownToken(t *testing.T) {
	ctx := context.Background()
	h := testHost(t)

	if _, err := h.Session(ctx, "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
	if err := h.UpdateSession(ctx, "missing", model.RemoteSnapshot{}); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestHost_DistinctTokens(t *testing.T) {
	ctx := context.Background()
	h := testHost(t)

	a, _ := h.CreateSession(ctx, model.RemoteSnapshot{LastUpdate: 1})
	b, _ := h.CreateSession(ctx, model.RemoteSnapshot{LastUpdate: 2})
	if a == b {
		t.Fatal("tokens must be unique")
	}
	if h.Count(ctx) != 2 {
		t.Errorf("expected 2 sessions, got %d", h.Count(ctx))
	}
}

func TestHost_SweepReapsIdleSessions(t *testing.T) {
	ctx := context.Background()
	current := time.Unix(1_700_000_000, 0)
	h := testHost(t,
		WithTTL(time.Hour),
		WithClock(func() time.Time { return current }),
	)

	stale, _ := h.CreateSession(ctx, model.RemoteSnapshot{})

	// Two hours later a fresh session arrives and the sweep runs.
	current = current.Add(2 * time.Hour)
	fresh, _ := h.CreateSession(ctx, model.RemoteSnapshot{})
	h.sweep(ctx)

	if _, err := h.Session(ctx, stale); !errors.Is(err, ErrSessionNotFound) {
		t.Error("stale session should be reaped")
	}
	if _, err := h.Session(ctx, fresh); err != nil {
		t.Errorf("fresh session should survive: %v", err)
	}
}

func TestHost_TouchExtendsLife(t *testing.T) {
	ctx := context.Background()
	current := time.Unix(1_700_000_000, 0)
	h := testHost(t,
		WithTTL(time.Hour),
		WithClock(func() time.Time { return current }),
	)

	token, _ := h.CreateSession(ctx, model.RemoteSnapshot{})

	// A write 50 minutes in resets the idle clock.
	current = current.Add(50 * time.Minute)
	if err := h.UpdateSession(ctx, token, model.RemoteSnapshot{LastUpdate: 5}); err != nil {
		t.Fatal(err)
	}

	current = current.Add(50 * time.Minute)
	h.sweep(ctx)

	if _, err := h.Session(ctx, token); err != nil {
		t.Errorf("recently written session should survive: %v", err)
	}
}

func TestHost_StartStop(t *testing.T) {
	ctx := context.Background()
	h := testHost(t, WithSweepInterval(10*time.Millisecond))

	h.Start(ctx)
	h.Start(ctx) // idempotent
	h.Stop()
	h.Stop() // idempotent
}
