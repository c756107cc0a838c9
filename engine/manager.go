package engine

import (
	"encoding/binary"
	"fmt"
	"sync"

	crand "crypto/rand"

	"github.com/rs/zerolog"

	"github.com/wasapjg/teg-engine/game"
	"github.com/wasapjg/teg-engine/store"
)

// ErrGameNotFound is returned when no session matches an id or join code.
var ErrGameNotFound = fmt.Errorf("engine: game not found")

// Manager owns every active session, keyed by game id and join code.
// Sessions run independently; the manager only guards the registry.
type Manager struct {
	mu     sync.RWMutex
	byID   map[string]*Session
	byCode map[string]*Session

	store       store.Store
	log         zerolog.Logger
	maxSessions int
}

// NewManager creates a session registry. st may be nil to disable
// persistence.
func NewManager(st store.Store, logger zerolog.Logger, maxSessions int) *Manager {
	return &Manager{
		byID:        make(map[string]*Session),
		byCode:      make(map[string]*Session),
		store:       st,
		log:         logger,
		maxSessions: maxSessions,
	}
}

// Create builds a new game with its creator seated and spins up its session
// worker.
func (m *Manager) Create(creatorUserID, creatorName string, opts game.Options) (*Session, *game.Player, error) {
	seed, err := newSeed()
	if err != nil {
		return nil, nil, fmt.Errorf("seed game: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.maxSessions > 0 && len(m.byID) >= m.maxSessions {
		return nil, nil, fmt.Errorf("engine: session limit reached (%d)", m.maxSessions)
	}

	g, creator, err := game.NewGame(creatorUserID, creatorName, opts, seed)
	if err != nil {
		return nil, nil, err
	}
	// Join codes are random; on the rare collision, reroll the game.
	for attempts := 0; m.byCode[g.Code] != nil && attempts < 10; attempts++ {
		seed, err = newSeed()
		if err != nil {
			return nil, nil, fmt.Errorf("seed game: %w", err)
		}
		g, creator, err = game.NewGame(creatorUserID, creatorName, opts, seed)
		if err != nil {
			return nil, nil, err
		}
	}
	if m.byCode[g.Code] != nil {
		return nil, nil, fmt.Errorf("engine: could not allocate a unique join code")
	}

	s := newSession(g, m.store, m.log)
	m.byID[s.ID()] = s
	m.byCode[s.Code()] = s
	m.log.Info().Str("game_id", s.ID()).Str("code", s.Code()).Msg("game created")
	return s, creator, nil
}

// Get resolves a session by game id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.byID[id]
	if !ok {
		return nil, ErrGameNotFound
	}
	return s, nil
}

// GetByCode resolves a session by join code.
func (m *Manager) GetByCode(code string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.byCode[code]
	if !ok {
		return nil, ErrGameNotFound
	}
	return s, nil
}

// Sessions returns all active sessions.
func (m *Manager) Sessions() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.byID))
	for _, s := range m.byID {
		out = append(out, s)
	}
	return out
}

// Remove closes a session and drops it from the registry.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	s, ok := m.byID[id]
	if ok {
		delete(m.byID, id)
		delete(m.byCode, s.Code())
	}
	m.mu.Unlock()
	if ok {
		s.Close()
		m.log.Info().Str("game_id", id).Msg("game removed")
	}
}

// Shutdown closes every session.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.byID))
	for _, s := range m.byID {
		sessions = append(sessions, s)
	}
	m.byID = make(map[string]*Session)
	m.byCode = make(map[string]*Session)
	m.mu.Unlock()
	for _, s := range sessions {
		s.Close()
	}
}

// newSeed draws a game seed from crypto/rand.
func newSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}
