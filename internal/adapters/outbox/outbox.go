// Package outbox buffers store snapshots awaiting delivery to the shared
// session.
//
// Under last-write-wins only the newest snapshot matters, so when the
// buffer fills the oldest waiting snapshot is displaced rather than the
// new one rejected. Delivery stays at-least-one-attempt: a failed push is
// logged by the consumer and superseded by the next mutation.
package outbox

import (
	"context"
	"sync"

	"github.com/ocmu/mashup/internal/domain/model"
	"github.com/ocmu/mashup/pkg/metrics"
)

// Default outbox configuration constants.
const (
	defaultCapacity = 64
)

// Outbox provides non-blocking enqueue and channel-based dequeue
// semantics for pending pushes.
type Outbox struct {
	jobs     chan model.Snapshot
	capacity int

	mu     sync.RWMutex
	closed bool
}

// Option applies a configuration option to the Outbox.
type Option func(*Outbox)

// WithCapacity bounds the number of snapshots waiting for delivery.
func WithCapacity(n int) Option {
	return func(o *Outbox) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// New creates an outbox with configuration options.
func New(opts ...Option) *Outbox {
	o := &Outbox{
		capacity: defaultCapacity,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.jobs = make(chan model.Snapshot, o.capacity)

	metrics.UpdateOutboxCapacity(o.capacity)
	metrics.UpdateOutboxSize(0)
	return o
}

// Enqueue adds a snapshot for delivery. When the buffer is full the
// oldest waiting snapshot is dropped first; the latest state always gets
// a seat. Returns false only when the outbox is closed.
func (o *Outbox) Enqueue(ctx context.Context, snap model.Snapshot) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.closed {
		return false
	}

	for {
		select {
		case o.jobs <- snap:
			metrics.UpdateOutboxSize(len(o.jobs))
			return true
		default:
		}
		// Displace one stale snapshot and try again.
		select {
		case <-o.jobs:
			metrics.RecordOutboxDropped()
		default:
		}
	}
}

// Dequeue returns the channel delivering snapshots in arrival order. The
// channel is closed when the outbox is closed.
func (o *Outbox) Dequeue() <-chan model.Snapshot {
	return o.jobs
}

// Len returns the number of snapshots waiting for delivery.
func (o *Outbox) Len(ctx context.Context) int {
	size := len(o.jobs)
	metrics.UpdateOutboxSize(size)
	return size
}

// Close shuts down the outbox. After closing, Enqueue reports false and
// the dequeue channel drains then closes.
func (o *Outbox) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil
	}
	close(o.jobs)
	o.closed = true
	return nil
}

// IsClosed returns true if the outbox has been closed.
func (o *Outbox) IsClosed() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.closed
}
