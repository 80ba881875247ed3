// Package notifier fans out cabin state transitions to observers watching
// a cabin during their booking flow.  Delivery is best-effort: a slow
// observer loses intermediate snapshots rather than slowing down or
// failing the commit that produced them.  Observers treat a snapshot
// purely as a cue to re-fetch authoritative cabin state.
package notifier

import (
	"context"
	"sync"
	"time"

	"github.com/evgenyq/kitesafari-booking/internal/model"
)

// Snapshot is the payload broadcast after every successful conditional
// commit, normal or admin.  It carries just enough for an observer to
// notice that its target cabin moved on; it is never authoritative state.
type Snapshot struct {
	CabinID uint64            `json:"cabin_id"`
	Status  model.CabinStatus `json:"status"`
	Version uint64            `json:"version"`
	At      time.Time         `json:"at"`
}

// Hub routes snapshots to subscribers keyed by cabin id.  It holds no
// history: a subscriber only sees transitions published after it joined.
type Hub struct {
	mu         sync.RWMutex
	observers  map[uint64]map[int64]chan Snapshot
	nextID     int64
	bufferSize int
}

// NewHub returns an empty Hub.  Each subscriber gets a small buffered
// channel; when the buffer is full further snapshots for that subscriber
// are dropped.
func NewHub() *Hub {
	return &Hub{
		observers:  make(map[uint64]map[int64]chan Snapshot),
		bufferSize: 16,
	}
}

// Subscribe registers an observer for one cabin and returns its snapshot
// stream together with a cancel function.  The subscription is also torn
// down when ctx is cancelled, so SSE handlers can simply tie it to the
// request context.
func (h *Hub) Subscribe(ctx context.Context, cabinID uint64) (<-chan Snapshot, func()) {
	stream := make(chan Snapshot, h.bufferSize)

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	if _, ok := h.observers[cabinID]; !ok {
		h.observers[cabinID] = make(map[int64]chan Snapshot)
	}
	h.observers[cabinID][id] = stream
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() { h.unsubscribe(cabinID, id) })
	}
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return stream, cancel
}

// Publish delivers a snapshot to every observer of its cabin.  It never
// blocks: observers whose buffers are full are skipped.  Publishing to a
// cabin nobody watches is a no-op.
func (h *Hub) Publish(snap Snapshot) {
	h.mu.RLock()
	watchers := h.observers[snap.CabinID]
	streams := make([]chan Snapshot, 0, len(watchers))
	for _, ch := range watchers {
		streams = append(streams, ch)
	}
	h.mu.RUnlock()

	for _, ch := range streams {
		select {
		case ch <- snap:
		default: // observer too slow, it will re-fetch on reconnect
		}
	}
}

func (h *Hub) unsubscribe(cabinID uint64, id int64) {
	h.mu.Lock()
	if watchers := h.observers[cabinID]; watchers != nil {
		delete(watchers, id)
		if len(watchers) == 0 {
			delete(h.observers, cabinID)
		}
	}
	h.mu.Unlock()
}
