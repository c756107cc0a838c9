package store

import (
	"sync"

	"github.com/wasapjg/teg-engine/game"
)

// MemStore keeps snapshots and events in memory. Suitable for tests and
// single-node deployments without durability requirements.
type MemStore struct {
	mu        sync.RWMutex
	events    map[string][]game.Event
	snapshots map[string]game.Snapshot
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		events:    make(map[string][]game.Event),
		snapshots: make(map[string]game.Snapshot),
	}
}

func (m *MemStore) AppendEvents(gameID string, events []game.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[gameID] = append(m.events[gameID], events...)
	return nil
}

func (m *MemStore) Events(gameID string, fromSeq uint64) ([]game.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stored, ok := m.events[gameID]
	if !ok {
		return nil, ErrNotFound
	}
	var out []game.Event
	for _, ev := range stored {
		if ev.Seq > fromSeq {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *MemStore) SaveSnapshot(snap game.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[snap.ID] = snap
	return nil
}

func (m *MemStore) Snapshot(gameID string) (game.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.snapshots[gameID]
	if !ok {
		return game.Snapshot{}, ErrNotFound
	}
	return snap, nil
}

func (m *MemStore) Close() error { return nil }
