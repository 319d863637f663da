// Package repository defines the entity store interface and errors.
package repository

import (
	"context"

	"github.com/ocmu/mashup/internal/domain/model"
)

// Store provides read/write access to the competition records. Local
// mutations always succeed or fail synchronously; remote concerns live
// elsewhere.
type Store interface {
	// RegisterEntry validates and records a new entry. The store assigns
	// the id, flight position, and registration time.
	RegisterEntry(ctx context.Context, e model.Entry) (model.Entry, error)

	// UpdateEntry rewrites the mutable fields (style, brewer) of an
	// existing entry. Returns ErrNotFound for an unknown id.
	UpdateEntry(ctx context.Context, id, style, brewer string) (model.Entry, error)

	// DeleteEntry removes an entry and cascades to every scorecard that
	// references it. Returns the number of scorecards removed.
	DeleteEntry(ctx context.Context, id string) (int, error)

	// AddFeedback validates and records one judge's scorecard. The target
	// entry must exist at creation time. Duplicate scorecards from the
	// same judge are allowed and all counted.
	AddFeedback(ctx context.Context, f model.Feedback) (model.Feedback, error)

	// Entry returns a single entry by id.
	Entry(ctx context.Context, id string) (model.Entry, error)

	// Snapshot returns a deep copy of the full store.
	Snapshot(ctx context.Context) model.Snapshot

	// Replace adopts a snapshot wholesale, discarding current contents.
	// Used when a shared session's state wins over local state.
	Replace(ctx context.Context, snap model.Snapshot)

	// Counts reports the number of entries and scorecards held.
	Counts(ctx context.Context) (entries, feedback int)
}
