package outbox

import (
	"context"
	"testing"

	"github.com/ocmu/mashup/internal/domain/model"
)

func snapWithMarker(id string) model.Snapshot {
	return model.Snapshot{Entries: []model.Entry{{ID: id, Style: "1A", Brewer: "b"}}}
}

func TestOutbox_EnqueueDequeue(t *testing.T) {
	ctx := context.Background()
	o := New(WithCapacity(4))

	if !o.Enqueue(ctx, snapWithMarker("a")) {
		t.Fatal("expected enqueue to succeed")
	}
	if !o.Enqueue(ctx, snapWithMarker("b")) {
		t.Fatal("expected enqueue to succeed")
	}
	if got := o.Len(ctx); got != 2 {
		t.Errorf("expected 2 waiting, got %d", got)
	}

	got := <-o.Dequeue()
	if got.Entries[0].ID != "a" {
		t.Errorf("expected arrival order, got %s", got.Entries[0].ID)
	}
}

func TestOutbox_DisplacesOldestWhenFull(t *testing.T) {
	ctx := context.Background()
	o := New(WithCapacity(2))

	o.Enqueue(ctx, snapWithMarker("stale"))
	o.Enqueue(ctx, snapWithMarker("mid"))
	// Buffer full; the oldest snapshot gives way.
	if !o.Enqueue(ctx, snapWithMarker("fresh")) {
		t.Fatal("enqueue must not reject the newest snapshot")
	}

	first := <-o.Dequeue()
	second := <-o.Dequeue()
	if first.Entries[0].ID != "mid" || second.Entries[0].ID != "fresh" {
		t.Errorf("expected [mid fresh], got [%s %s]", first.Entries[0].ID, second.Entries[0].ID)
	}
}

func TestOutbox_Close(t *testing.T) {
	ctx := context.Background()
	o := New()

	o.Enqueue(ctx, snapWithMarker("a"))
	if err := o.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !o.IsClosed() {
		t.Error("expected closed outbox")
	}
	if o.Enqueue(ctx, snapWithMarker("b")) {
		t.Error("enqueue after close must report false")
	}
	if err := o.Close(); err != nil {
		t.Errorf("double close should be a no-op, got %v", err)
	}

	// Drain: buffered item then closed channel.
	if got, ok := <-o.Dequeue(); !ok || got.Entries[0].ID != "a" {
		t.Error("expected buffered snapshot before close")
	}
	if _, ok := <-o.Dequeue(); ok {
		t.Error("expected closed channel after drain")
	}
}
