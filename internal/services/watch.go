package services

import (
	"sync"

	"github.com/google/uuid"
	"weddingsite/internal/domain"
)

// watchHub fans directory snapshots out to subscribers. Slow subscribers are
// skipped for a round rather than blocking the writer; the next mutation
// re-delivers a full snapshot anyway.
type watchHub struct {
	mu   sync.RWMutex
	subs map[string]chan *domain.DirectorySnapshot
}

func newWatchHub() *watchHub {
	return &watchHub{subs: make(map[string]chan *domain.DirectorySnapshot)}
}

func (h *watchHub) subscribe() (*domain.DirectorySubscription, func()) {
	id := uuid.NewString()
	ch := make(chan *domain.DirectorySnapshot, 1)

	h.mu.Lock()
	h.subs[id] = ch
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if existing, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(existing)
		}
	}
	return &domain.DirectorySubscription{ID: id, Snapshots: ch}, cancel
}

func (h *watchHub) broadcast(snapshot *domain.DirectorySnapshot) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		// Replace a stale undelivered snapshot with the current one.
		select {
		case ch <- snapshot:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
			}
		}
	}
}

func (h *watchHub) empty() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs) == 0
}
