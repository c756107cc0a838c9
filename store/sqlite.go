package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/wasapjg/teg-engine/game"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	game_id TEXT NOT NULL,
	seq     INTEGER NOT NULL,
	data    BLOB NOT NULL,
	PRIMARY KEY (game_id, seq)
);
CREATE TABLE IF NOT EXISTS snapshots (
	game_id   TEXT PRIMARY KEY,
	taken_seq INTEGER NOT NULL,
	data      BLOB NOT NULL
);
`

// SQLiteStore persists snapshots and events in a SQLite database. Records
// are JSON blobs: the store is an append log plus a latest-snapshot table,
// not a queryable model.
//
// Events loaded back carry their typed payloads, so a stored tail folds
// over a snapshot with game.Apply just like in-process events.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if needed initializes) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) AppendEvents(gameID string, events []game.Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()
	stmt, err := tx.Prepare(`INSERT INTO events (game_id, seq, data) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()
	for _, ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("marshal event %d: %w", ev.Seq, err)
		}
		if _, err := stmt.Exec(gameID, ev.Seq, data); err != nil {
			return fmt.Errorf("insert event %d: %w", ev.Seq, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Events(gameID string, fromSeq uint64) ([]game.Event, error) {
	rows, err := s.db.Query(
		`SELECT data FROM events WHERE game_id = ? AND seq > ? ORDER BY seq`,
		gameID, fromSeq)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()
	var out []game.Event
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		var ev game.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("unmarshal event: %w", err)
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if out == nil {
		var n int
		if err := s.db.QueryRow(
			`SELECT COUNT(*) FROM events WHERE game_id = ?`, gameID).Scan(&n); err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, ErrNotFound
		}
	}
	return out, nil
}

func (s *SQLiteStore) SaveSnapshot(snap game.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO snapshots (game_id, taken_seq, data) VALUES (?, ?, ?)
		ON CONFLICT(game_id) DO UPDATE SET taken_seq = excluded.taken_seq, data = excluded.data`,
		snap.ID, snap.Seq, data)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Snapshot(gameID string) (game.Snapshot, error) {
	var data []byte
	err := s.db.QueryRow(
		`SELECT data FROM snapshots WHERE game_id = ?`, gameID).Scan(&data)
	if err == sql.ErrNoRows {
		return game.Snapshot{}, ErrNotFound
	}
	if err != nil {
		return game.Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	var snap game.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return game.Snapshot{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return snap, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
