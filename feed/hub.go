// Package feed maintains live, ordered client-side views of the message
// store. Subscribers receive the full newest-first snapshot once on
// subscribe and again after every store change, never a diff.
package feed

import (
	"log/slog"
	"sync"

	"songnote/domain"
)

// SnapshotSource produces the current full message set, newest-first.
type SnapshotSource interface {
	Snapshot() ([]domain.Message, error)
}

// Hub is the subscription registry. All snapshot reads and deliveries are
// serialized under one mutex, which gives each subscription causal,
// in-order delivery: a snapshot reflects every append acknowledged before
// it was read, and snapshots never arrive out of order.
//
// Callbacks run synchronously under the hub lock and must not re-enter
// the hub (no Subscribe or Close from inside a callback).
type Hub struct {
	mu     sync.Mutex
	source SnapshotSource
	log    *slog.Logger
	subs   map[uint64]*Subscription
	nextID uint64
}

func NewHub(source SnapshotSource, log *slog.Logger) *Hub {
	return &Hub{
		source: source,
		log:    log,
		subs:   make(map[uint64]*Subscription),
	}
}

// Subscription is the handle returned by Subscribe. Close is idempotent
// and guarantees no delivery happens after it returns.
type Subscription struct {
	hub    *Hub
	id     uint64
	fn     func([]domain.Message)
	closed bool // guarded by hub.mu
}

// Subscribe registers fn and synchronously delivers the current snapshot
// exactly once, an empty list when the store is empty.
func (h *Hub) Subscribe(fn func([]domain.Message)) (*Subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	snapshot, err := h.source.Snapshot()
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		snapshot = []domain.Message{}
	}

	sub := &Subscription{hub: h, id: h.nextID, fn: fn}
	h.nextID++
	h.subs[sub.id] = sub

	fn(snapshot)
	return sub, nil
}

// Broadcast re-reads the snapshot and delivers it to every open
// subscription. Called after each acknowledged append.
func (h *Hub) Broadcast() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.subs) == 0 {
		return
	}
	snapshot, err := h.source.Snapshot()
	if err != nil {
		h.log.Error("Feed snapshot read failed, delivery skipped", "error", err)
		return
	}
	for _, sub := range h.subs {
		sub.fn(snapshot)
	}
}

// Close unregisters the subscription. It takes the same lock that guards
// delivery, so once it returns no further callback can run, even for a
// broadcast that was already waiting on the lock.
func (s *Subscription) Close() {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	delete(s.hub.subs, s.id)
}
