// Package store persists game snapshots and event tails. A snapshot plus
// the events past its sequence number is sufficient to resume a session.
package store

import (
	"errors"

	"github.com/wasapjg/teg-engine/game"
)

// ErrNotFound is returned when no record exists for a game id.
var ErrNotFound = errors.New("store: not found")

// Store is the persistence boundary of the engine. Implementations must be
// safe for concurrent use; each session appends its own events but many
// sessions share one store.
type Store interface {
	// AppendEvents durably appends events for a game. Events arrive in
	// sequence order per game.
	AppendEvents(gameID string, events []game.Event) error
	// Events returns the stored events with Seq > fromSeq, in order.
	Events(gameID string, fromSeq uint64) ([]game.Event, error)
	// SaveSnapshot stores the latest snapshot for a game, replacing any
	// previous one.
	SaveSnapshot(snap game.Snapshot) error
	// Snapshot returns the latest stored snapshot.
	Snapshot(gameID string) (game.Snapshot, error)
	// Close releases underlying resources.
	Close() error
}
