package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/ocmu/mashup/internal/domain/model"
	"github.com/ocmu/mashup/internal/domain/scoring"
)

func validFeedback(beerID string) model.Feedback {
	return model.Feedback{
		BeerID:     beerID,
		BrewerName: "Acme Brewing",
		JudgeName:  "Sam",
		Aroma:      8,
		Appearance: 2,
		Flavor:     15,
		Mouthfeel:  4,
		Overall:    9,
	}
}

func TestMemStore_RegisterEntry(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()

	first, err := store.RegisterEntry(ctx, model.Entry{Style: "21A. American IPA", Brewer: "Acme Brewing"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.ID == "" {
		t.Error("expected assigned id")
	}
	if first.FlightPosition != 0 {
		t.Errorf("expected flight position 0, got %d", first.FlightPosition)
	}
	if first.RegisteredAt == 0 {
		t.Error("expected registration timestamp")
	}

	second, err := store.RegisterEntry(ctx, model.Entry{Style: "10A. Weissbier", Brewer: "Basement Brewery"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.FlightPosition != 1 {
		t.Errorf("expected flight position 1, got %d", second.FlightPosition)
	}
	if second.ID == first.ID {
		t.Error("expected distinct ids")
	}
}

func TestMemStore_RegisterEntry_Validation(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()

	_, err := store.RegisterEntry(ctx, model.Entry{Brewer: "Acme Brewing"})
	if !errors.Is(err, scoring.ErrInvalidEntry) {
		t.Fatalf("expected invalid entry error, got %v", err)
	}
	if entries, _ := store.Counts(ctx); entries != 0 {
		t.Errorf("rejected entry must not mutate the store, have %d entries", entries)
	}
}

func TestMemStore_UpdateEntry(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()

	e, err := store.RegisterEntry(ctx, model.Entry{Style: "21A. American IPA", Brewer: "Acme Brewing"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated, err := store.UpdateEntry(ctx, e.ID, "18B. American Pale Ale", "Renamed Brewing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Style != "18B. American Pale Ale" || updated.Brewer != "Renamed Brewing" {
		t.Errorf("unexpected update result: %+v", updated)
	}
	if updated.ID != e.ID || updated.RegisteredAt != e.RegisteredAt {
		t.Error("update must not touch identity or registration time")
	}

	if _, err := store.UpdateEntry(ctx, "missing", "1A", "b"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemStore_DeleteEntry_Cascades(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()

	doomed, _ := store.RegisterEntry(ctx, model.Entry{Style: "21A", Brewer: "Acme Brewing"})
	kept, _ := store.RegisterEntry(ctx, model.Entry{Style: "10A", Brewer: "Basement Brewery"})

	for i := 0; i < 3; i++ {
		if _, err := store.AddFeedback(ctx, validFeedback(doomed.ID)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if _, err := store.AddFeedback(ctx, validFeedback(kept.ID)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	removed, err := store.DeleteEntry(ctx, doomed.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed != 3 {
		t.Errorf("expected 3 cascaded scorecards, got %d", removed)
	}

	snap := store.Snapshot(ctx)
	if len(snap.Entries) != 1 || snap.Entries[0].ID != kept.ID {
		t.Errorf("unexpected surviving entries: %+v", snap.Entries)
	}
	if len(snap.Feedback) != 1 || snap.Feedback[0].BeerID != kept.ID {
		t.Errorf("cascade removed the wrong scorecards: %+v", snap.Feedback)
	}

	if _, err := store.DeleteEntry(ctx, doomed.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestMemStore_AddFeedback(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()

	e, _ := store.RegisterEntry(ctx, model.Entry{Style: "21A", Brewer: "Acme Brewing"})

	f := validFeedback(e.ID)
	f.Descriptors = []string{"Citrus", "Citrus", " Pine "}
	recorded, err := store.AddFeedback(ctx, f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recorded.ID == "" || recorded.Timestamp == 0 {
		t.Error("expected assigned id and timestamp")
	}
	if len(recorded.Descriptors) != 2 {
		t.Errorf("expected collapsed descriptor set, got %v", recorded.Descriptors)
	}

	// Duplicate submissions from the same judge are allowed and counted.
	if _, err := store.AddFeedback(ctx, validFeedback(e.ID)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, feedback := store.Counts(ctx); feedback != 2 {
		t.Errorf("expected 2 scorecards, got %d", feedback)
	}

	if _, err := store.AddFeedback(ctx, validFeedback("missing")); !errors.Is(err, ErrUnknownEntry) {
		t.Errorf("expected ErrUnknownEntry, got %v", err)
	}

	bad := validFeedback(e.ID)
	bad.Flavor = 21
	if _, err := store.AddFeedback(ctx, bad); !errors.Is(err, scoring.ErrInvalidFeedback) {
		t.Errorf("expected rubric rejection, got %v", err)
	}
}

func TestMemStore_AddFeedback_StampsBrewerName(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()

	e, _ := store.RegisterEntry(ctx, model.Entry{Style: "21A", Brewer: "Acme Brewing"})

	// The store owns the brewer copy on each scorecard; whatever the
	// caller sent is replaced with the entry's brewer.
	f := validFeedback(e.ID)
	f.BrewerName = ""
	recorded, err := store.AddFeedback(ctx, f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recorded.BrewerName != "Acme Brewing" {
		t.Errorf("expected stamped brewer %q, got %q", "Acme Brewing", recorded.BrewerName)
	}

	wrong := validFeedback(e.ID)
	wrong.BrewerName = "Someone Else"
	recorded, err = store.AddFeedback(ctx, wrong)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recorded.BrewerName != "Acme Brewing" {
		t.Errorf("caller-supplied brewer must not survive, got %q", recorded.BrewerName)
	}

	// Renaming the entry afterwards leaves existing scorecards as they
	// were submitted.
	if _, err := store.UpdateEntry(ctx, e.ID, "21A", "Renamed Brewing"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snap := store.Snapshot(ctx)
	for _, rec := range snap.Feedback {
		if rec.BrewerName != "Acme Brewing" {
			t.Errorf("rename rewrote history: %q", rec.BrewerName)
		}
	}
}

func TestMemStore_ChangeListener(t *testing.T) {
	ctx := context.Background()
	var notified []model.Snapshot
	store := NewMemStore(WithChangeListener(func(s model.Snapshot) {
		notified = append(notified, s)
	}))

	e, _ := store.RegisterEntry(ctx, model.Entry{Style: "21A", Brewer: "Acme Brewing"})
	_, _ = store.AddFeedback(ctx, validFeedback(e.ID))
	_, _ = store.UpdateEntry(ctx, e.ID, "21A", "Renamed")
	_, _ = store.DeleteEntry(ctx, e.ID)

	if len(notified) != 4 {
		t.Fatalf("expected 4 notifications, got %d", len(notified))
	}
	last := notified[len(notified)-1]
	if len(last.Entries) != 0 || len(last.Feedback) != 0 {
		t.Errorf("final snapshot should be empty, got %+v", last)
	}

	// Rejected mutations stay silent.
	before := len(notified)
	if _, err := store.RegisterEntry(ctx, model.Entry{}); err == nil {
		t.Fatal("expected validation error")
	}
	if len(notified) != before {
		t.Error("rejected mutation must not notify")
	}

	// Replace adopts remote state without echoing a change event.
	store.Replace(ctx, model.Snapshot{Entries: []model.Entry{{ID: "r1", Style: "1A", Brewer: "b"}}})
	if len(notified) != before {
		t.Error("replace must not notify")
	}
	if entries, _ := store.Counts(ctx); entries != 1 {
		t.Errorf("expected replaced store to hold 1 entry, got %d", entries)
	}
}

func TestMemStore_SnapshotIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()

	e, _ := store.RegisterEntry(ctx, model.Entry{Style: "21A", Brewer: "Acme Brewing"})
	snap := store.Snapshot(ctx)
	snap.Entries[0].Brewer = "tampered"

	fresh, err := store.Entry(ctx, e.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fresh.Brewer != "Acme Brewing" {
		t.Error("snapshot mutation leaked into the store")
	}
}

func TestMemStore_Seed(t *testing.T) {
	ctx := context.Background()
	seed := model.Snapshot{
		Entries:  []model.Entry{{ID: "e1", Style: "21A", Brewer: "Acme Brewing", FlightPosition: 0}},
		Feedback: []model.Feedback{validFeedback("e1")},
	}
	store := NewMemStore(WithSeed(seed))

	entries, feedback := store.Counts(ctx)
	if entries != 1 || feedback != 1 {
		t.Fatalf("expected seeded 1/1, got %d/%d", entries, feedback)
	}

	// New registrations continue the flight numbering.
	next, err := store.RegisterEntry(ctx, model.Entry{Style: "10A", Brewer: "Basement Brewery"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.FlightPosition != 1 {
		t.Errorf("expected flight position 1, got %d", next.FlightPosition)
	}
}
