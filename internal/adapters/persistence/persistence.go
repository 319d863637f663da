// Package persistence writes the scorecard document through to a local
// badger database on every mutation.
//
// The local copy is the immediate source of truth; the shared session is
// eventually consistent on top of it. Save failures therefore degrade
// silently: the next mutation is the retry.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/ocmu/mashup/internal/domain/model"
	"github.com/ocmu/mashup/pkg/logger"
)

// Fixed storage keys. One JSON document for the store, one slot for the
// active session token.
const (
	docKey   = "scorecard:doc"
	tokenKey = "scorecard:session"
)

// Adapter owns the badger database holding the persisted document.
type Adapter struct {
	db  *badger.DB
	log logger.Logger
}

// Option applies a configuration option to the Adapter.
type Option func(*Adapter)

// WithLogger sets a custom logger for the adapter.
func WithLogger(l logger.Logger) Option {
	return func(a *Adapter) {
		if l != nil {
			a.log = l
		}
	}
}

// Open opens (or creates) the badger database at path.
func Open(path string, opts ...Option) (*Adapter, error) {
	a := &Adapter{}
	for _, opt := range opts {
		opt(a)
	}
	if a.log == nil {
		a.log = logger.Get()
	}

	// Badger's own logger is noisy at info level; route nothing through it
	// and keep our structured logs authoritative.
	db, err := badger.Open(badger.DefaultOptions(path).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	a.db = db
	return a, nil
}

// Close releases the database.
func (a *Adapter) Close() error {
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("close badger: %w", err)
	}
	return nil
}

// Save writes the full document under the fixed key. Write-through on
// every mutation, no debouncing. Storage failures are logged and
// swallowed; recovery is the next mutation's save.
func (a *Adapter) Save(ctx context.Context, snap model.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		a.log.Error(ctx, "marshal scorecard document", logger.Error(err))
		return
	}
	err = a.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(docKey), data)
	})
	if err != nil {
		a.log.Error(ctx, "persist scorecard document", logger.Error(err))
	}
}

// Load returns the last persisted document, or an empty store when the
// key is absent or the document does not parse. Corruption is a warning,
// never an error: judging can always start from a clean slate.
func (a *Adapter) Load(ctx context.Context) model.Snapshot {
	var data []byte
	err := a.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(docKey))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		return model.Snapshot{}
	case err != nil:
		a.log.Warn(ctx, "read scorecard document", logger.Error(err))
		return model.Snapshot{}
	}

	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		a.log.Warn(ctx, "corrupt scorecard document, starting empty", logger.Error(err))
		return model.Snapshot{}
	}
	return snap
}

// SaveToken records the active session token.
func (a *Adapter) SaveToken(ctx context.Context, token string) {
	err := a.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(tokenKey), []byte(token))
	})
	if err != nil {
		a.log.Error(ctx, "persist session token", logger.Error(err))
	}
}

// ClearToken removes the persisted session token.
func (a *Adapter) ClearToken(ctx context.Context) {
	err := a.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(tokenKey))
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		a.log.Error(ctx, "clear session token", logger.Error(err))
	}
}

// Token returns the persisted session token, if any.
func (a *Adapter) Token(ctx context.Context) (string, bool) {
	var token string
	err := a.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(tokenKey))
		if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		token = string(val)
		return nil
	})
	if err != nil {
		return "", false
	}
	return token, token != ""
}
