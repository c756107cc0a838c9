// Package engine runs game sessions: one worker goroutine per active game,
// a serialized command queue in front of it, and ordered event fan-out to
// subscribers. The worker is the only goroutine that ever touches a game.
package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/wasapjg/teg-engine/bot"
	"github.com/wasapjg/teg-engine/game"
	"github.com/wasapjg/teg-engine/store"
)

// result carries a command's outcome back to the submitter.
type result struct {
	events []game.Event
	snap   game.Snapshot
	err    error
}

// command is one serialized unit of work. run executes inside the worker
// with exclusive access to the game.
type command struct {
	run   func(g *game.Game) ([]game.Event, error)
	reply chan result
}

// Session owns one game. Commands block while the worker is busy with an
// earlier command; that backpressure is the serialization point that keeps
// territory ownership and army counts race-free without locks.
type Session struct {
	id   string
	code string

	game      *game.Game
	cmds      chan command
	persistCh chan persistBatch
	done      chan struct{}
	stopOnce  sync.Once

	subMu  sync.Mutex
	subs   map[int]chan []game.Event
	nextID int

	store     store.Store
	log       zerolog.Logger
	autopilot bot.Strategy

	quarMu      sync.RWMutex
	quarantined bool
	quarReason  string
}

const (
	cmdQueueSize     = 16
	persistQueueSize = 64
)

// persistBatch is one action's worth of events plus the snapshot taken
// right after they were applied.
type persistBatch struct {
	events []game.Event
	snap   game.Snapshot
}

func newSession(g *game.Game, st store.Store, logger zerolog.Logger) *Session {
	s := &Session{
		id:        g.ID,
		code:      g.Code,
		game:      g,
		cmds:      make(chan command, cmdQueueSize),
		persistCh: make(chan persistBatch, persistQueueSize),
		done:      make(chan struct{}),
		subs:      make(map[int]chan []game.Event),
		store:     st,
		log:       logger.With().Str("game_id", g.ID).Str("code", g.Code).Logger(),
		autopilot: bot.Fallback{},
	}
	go s.loop()
	if st != nil {
		go s.persister()
	}
	return s
}

// ID returns the game id.
func (s *Session) ID() string { return s.id }

// Code returns the join code.
func (s *Session) Code() string { return s.code }

// loop is the session worker. It processes one command to completion,
// including event emission, before accepting the next. Broadcast to
// subscribers is non-blocking so a slow client can never stall the game.
func (s *Session) loop() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case cmd := <-s.cmds:
			s.execute(cmd)
		case <-ticker.C:
			s.checkDeadline()
		case <-s.done:
			return
		}
	}
}

func (s *Session) execute(cmd command) {
	if s.Quarantined() {
		cmd.reply <- result{err: fmt.Errorf("session %s is quarantined: %s", s.id, s.quarReason)}
		return
	}
	events, err := s.runProtected(cmd.run)
	cmd.reply <- result{events: events, snap: s.game.Snapshot(), err: err}
	if len(events) > 0 {
		s.publish(events)
		s.persist(events)
	}
}

// runProtected executes a command and converts internal integrity failures
// (panics, fatal domain errors) into a quarantine instead of letting them
// corrupt further state or cross the worker boundary.
func (s *Session) runProtected(run func(g *game.Game) ([]game.Event, error)) (events []game.Event, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.quarantine(fmt.Sprintf("panic: %v", r))
			err = fmt.Errorf("internal error, session quarantined")
		}
	}()
	events, err = run(s.game)
	if derr, ok := err.(*game.Error); ok && derr.Fatal() {
		s.quarantine(derr.Error())
	}
	return events, err
}

func (s *Session) quarantine(reason string) {
	s.quarMu.Lock()
	s.quarantined = true
	s.quarReason = reason
	s.quarMu.Unlock()
	s.log.Error().Str("reason", reason).Msg("session quarantined, manual inspection required")
}

// Quarantined reports whether the session has been frozen after an
// integrity violation.
func (s *Session) Quarantined() bool {
	s.quarMu.RLock()
	defer s.quarMu.RUnlock()
	return s.quarantined
}

// do submits work to the worker and waits for the outcome.
func (s *Session) do(run func(g *game.Game) ([]game.Event, error)) ([]game.Event, game.Snapshot, error) {
	reply := make(chan result, 1)
	select {
	case s.cmds <- command{run: run, reply: reply}:
	case <-s.done:
		return nil, game.Snapshot{}, fmt.Errorf("session %s is closed", s.id)
	}
	select {
	case res := <-reply:
		return res.events, res.snap, res.err
	case <-s.done:
		return nil, game.Snapshot{}, fmt.Errorf("session %s is closed", s.id)
	}
}

// Act validates and applies one player action.
func (s *Session) Act(a game.Action) ([]game.Event, game.Snapshot, error) {
	return s.do(func(g *game.Game) ([]game.Event, error) {
		return g.ExecuteAction(a)
	})
}

// Join seats a player.
func (s *Session) Join(userID, name string, isBot bool, botLevel string) (*game.Player, game.Snapshot, error) {
	var p *game.Player
	_, snap, err := s.do(func(g *game.Game) ([]game.Event, error) {
		mark := g.Version()
		var err error
		p, err = g.AddPlayer(userID, name, isBot, botLevel)
		if err != nil {
			return nil, err
		}
		return g.Events(mark), nil
	})
	return p, snap, err
}

// Leave unseats a player before start.
func (s *Session) Leave(playerID string) error {
	_, _, err := s.do(func(g *game.Game) ([]game.Event, error) {
		mark := g.Version()
		if err := g.RemovePlayer(playerID); err != nil {
			return nil, err
		}
		return g.Events(mark), nil
	})
	return err
}

// Start begins the game.
func (s *Session) Start(actorID string) ([]game.Event, game.Snapshot, error) {
	return s.do(func(g *game.Game) ([]game.Event, error) { return g.Start(actorID) })
}

// Pause suspends the game.
func (s *Session) Pause(actorID string) error {
	_, _, err := s.do(func(g *game.Game) ([]game.Event, error) { return g.Pause(actorID) })
	return err
}

// Resume reopens a paused game.
func (s *Session) Resume(actorID string) error {
	_, _, err := s.do(func(g *game.Game) ([]game.Event, error) { return g.Resume(actorID) })
	return err
}

// Forfeit eliminates a player voluntarily.
func (s *Session) Forfeit(playerID string) error {
	_, _, err := s.do(func(g *game.Game) ([]game.Event, error) { return g.Forfeit(playerID) })
	return err
}

// Snapshot returns a read-only copy of the current state.
func (s *Session) Snapshot() (game.Snapshot, error) {
	_, snap, err := s.do(func(g *game.Game) ([]game.Event, error) { return nil, nil })
	return snap, err
}

// EventsSince returns the event tail past fromSeq, for resync.
func (s *Session) EventsSince(fromSeq uint64) ([]game.Event, error) {
	var events []game.Event
	_, _, err := s.do(func(g *game.Game) ([]game.Event, error) {
		events = g.Events(fromSeq)
		return nil, nil
	})
	return events, err
}

// checkDeadline synthesizes turn actions for an idle player once the turn
// clock elapses. The synthesized actions go through the same execution path
// as player actions; there is no bypass.
func (s *Session) checkDeadline() {
	if s.Quarantined() {
		return
	}
	events, err := s.runProtected(func(g *game.Game) ([]game.Event, error) {
		if g.Status != game.StatusInProgress {
			return nil, nil
		}
		deadline := g.Turn.Deadline
		if deadline.IsZero() || time.Now().Before(deadline) {
			return nil, nil
		}
		mark := g.Version()
		idle := g.Turn.PlayerID
		g.NoteTurnTimeout()
		s.log.Info().Str("player_id", idle).Msg("turn time elapsed, autopilot taking over")
		// Drive the autopilot until the turn passes to someone else or the
		// game ends. Bounded: deploy, trades and end-turn all shrink the
		// remaining work.
		for attempts := 0; attempts < 32 && g.Status == game.StatusInProgress && g.Turn.PlayerID == idle; attempts++ {
			action, err := s.autopilot.ChooseAction(g.Snapshot())
			if err != nil {
				break
			}
			if _, err := g.ExecuteAction(action); err != nil {
				s.log.Warn().Err(err).Msg("autopilot action rejected")
				break
			}
		}
		return g.Events(mark), nil
	})
	if err != nil {
		s.log.Error().Err(err).Msg("turn timeout handling failed")
		return
	}
	if len(events) > 0 {
		s.publish(events)
		s.persist(events)
	}
}

// Subscribe registers an ordered event feed. The channel receives every
// batch appended after the call; slow subscribers are dropped rather than
// allowed to block the session.
func (s *Session) Subscribe(buffer int) (int, <-chan []game.Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.nextID++
	id := s.nextID
	ch := make(chan []game.Event, buffer)
	s.subs[id] = ch
	return id, ch
}

// Unsubscribe removes a feed and closes its channel.
func (s *Session) Unsubscribe(id int) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if ch, ok := s.subs[id]; ok {
		delete(s.subs, id)
		close(ch)
	}
}

func (s *Session) publish(events []game.Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for id, ch := range s.subs {
		select {
		case ch <- events:
		default:
			// Subscriber is not keeping up; drop it.
			delete(s.subs, id)
			close(ch)
			s.log.Warn().Int("subscriber", id).Msg("dropped slow event subscriber")
		}
	}
}

// persist hands one batch to the persister goroutine. The worker is the only
// sender, so batches leave in sequence order; if the store falls
// persistQueueSize batches behind, the send blocks the worker rather than
// reordering the log.
func (s *Session) persist(events []game.Event) {
	if s.store == nil {
		return
	}
	select {
	case s.persistCh <- persistBatch{events: events, snap: s.game.Snapshot()}:
	case <-s.done:
	}
}

// persister writes batches one at a time, preserving the order the worker
// produced them in. On Close it drains what is already queued.
func (s *Session) persister() {
	for {
		select {
		case b := <-s.persistCh:
			s.writeBatch(b)
		case <-s.done:
			for {
				select {
				case b := <-s.persistCh:
					s.writeBatch(b)
				default:
					return
				}
			}
		}
	}
}

func (s *Session) writeBatch(b persistBatch) {
	if err := s.store.AppendEvents(s.id, b.events); err != nil {
		s.log.Error().Err(err).Msg("failed to append events")
	}
	if err := s.store.SaveSnapshot(b.snap); err != nil {
		s.log.Error().Err(err).Msg("failed to save snapshot")
	}
}

// Close stops the worker and drops all subscribers.
func (s *Session) Close() {
	s.stopOnce.Do(func() {
		close(s.done)
		s.subMu.Lock()
		for id, ch := range s.subs {
			delete(s.subs, id)
			close(ch)
		}
		s.subMu.Unlock()
	})
}
