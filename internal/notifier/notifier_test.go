package notifier

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evgenyq/kitesafari-booking/internal/model"
)

func snap(cabinID, version uint64) Snapshot {
	return Snapshot{
		CabinID: cabinID,
		Status:  model.StatusBooked,
		Version: version,
		At:      time.Now().UTC(),
	}
}

func TestSubscriberReceivesPublishedSnapshot(t *testing.T) {
	h := NewHub()
	stream, cancel := h.Subscribe(context.Background(), 7)
	defer cancel()

	h.Publish(snap(7, 1))

	select {
	case got := <-stream:
		assert.Equal(t, uint64(7), got.CabinID)
		assert.Equal(t, uint64(1), got.Version)
	case <-time.After(time.Second):
		t.Fatal("snapshot was not delivered")
	}
}

func TestSnapshotsAreScopedToTheirCabin(t *testing.T) {
	h := NewHub()
	watching, cancel := h.Subscribe(context.Background(), 7)
	defer cancel()
	other, cancelOther := h.Subscribe(context.Background(), 8)
	defer cancelOther()

	h.Publish(snap(7, 1))

	select {
	case <-watching:
	case <-time.After(time.Second):
		t.Fatal("snapshot was not delivered to the cabin's observer")
	}
	select {
	case got := <-other:
		t.Fatalf("observer of cabin 8 received snapshot for cabin %d", got.CabinID)
	default:
	}
}

// A subscriber that never drains its stream must not block Publish; once
// the buffer fills, further snapshots for it are dropped.
func TestPublishNeverBlocksOnSlowSubscriber(t *testing.T) {
	h := NewHub()
	stream, cancel := h.Subscribe(context.Background(), 7)
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < h.bufferSize*3; i++ {
			h.Publish(snap(7, uint64(i)))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full subscriber buffer")
	}
	assert.Len(t, stream, h.bufferSize)
}

func TestContextCancelUnsubscribes(t *testing.T) {
	h := NewHub()
	ctx, cancelCtx := context.WithCancel(context.Background())
	_, cancel := h.Subscribe(ctx, 7)
	defer cancel()

	cancelCtx()

	require.Eventually(t, func() bool {
		h.mu.RLock()
		defer h.mu.RUnlock()
		return len(h.observers[7]) == 0
	}, time.Second, 10*time.Millisecond, "subscription survived context cancellation")

	// publishing to the now-empty cabin is a harmless no-op
	h.Publish(snap(7, 1))
}

func TestCancelIsIdempotent(t *testing.T) {
	h := NewHub()
	_, cancel := h.Subscribe(context.Background(), 7)
	cancel()
	cancel()

	h.mu.RLock()
	defer h.mu.RUnlock()
	assert.Empty(t, h.observers)
}
