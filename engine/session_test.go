package engine

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/wasapjg/teg-engine/game"
	"github.com/wasapjg/teg-engine/store"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(store.NewMemStore(), zerolog.Nop(), 0)
	t.Cleanup(m.Shutdown)
	return m
}

func startedSession(t *testing.T, m *Manager, opts game.Options) *Session {
	t.Helper()
	s, creator, err := m.Create("u0", "Alice", opts)
	require.NoError(t, err)
	_, _, err = s.Join("u1", "Bob", false, "")
	require.NoError(t, err)
	_, _, err = s.Start(creator.ID)
	require.NoError(t, err)
	return s
}

func TestSessionLifecycle(t *testing.T) {
	m := newTestManager(t)
	s, creator, err := m.Create("u0", "Alice", game.DefaultOptions())
	require.NoError(t, err)

	snap, err := s.Snapshot()
	require.NoError(t, err)
	require.Equal(t, game.StatusWaiting, snap.Status)
	require.Len(t, snap.Players, 1)

	bob, _, err := s.Join("u1", "Bob", false, "")
	require.NoError(t, err)
	require.NoError(t, s.Leave(bob.ID))
	_, _, err = s.Join("u1", "Bob", false, "")
	require.NoError(t, err, "a player who left can join again")

	_, snap, err = s.Start(creator.ID)
	require.NoError(t, err)
	require.Equal(t, game.StatusInProgress, snap.Status)

	require.NoError(t, s.Pause(creator.ID))
	require.NoError(t, s.Resume(creator.ID))

	snap, err = s.Snapshot()
	require.NoError(t, err)
	require.NoError(t, s.Forfeit(snap.Turn.PlayerID))
	snap, err = s.Snapshot()
	require.NoError(t, err)
	require.Equal(t, game.StatusFinished, snap.Status)
}

func TestSessionSerializesActions(t *testing.T) {
	m := newTestManager(t)
	opts := game.DefaultOptions()
	opts.TurnTimeLimit = 0
	s := startedSession(t, m, opts)

	snap, err := s.Snapshot()
	require.NoError(t, err)
	actor := snap.Turn.PlayerID
	troops := snap.PlayerByID(actor).TroopsToPlace
	var target string
	for _, terr := range snap.Territories {
		if terr.OwnerID == actor {
			target = terr.ID
			break
		}
	}

	// Hammer the session with single-troop deploys from many goroutines.
	// Exactly troops of them may succeed; the rest must be rejected, and
	// the army count must come out exact.
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < troops*3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := s.Act(game.Action{
				Type: game.ActionDeploy, PlayerID: actor, To: target, Troops: 1,
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, troops, succeeded, "no deploy may be lost or double-applied")
	snap, err = s.Snapshot()
	require.NoError(t, err)
	require.Zero(t, snap.PlayerByID(actor).TroopsToPlace)
}

func TestSessionEventFeed(t *testing.T) {
	m := newTestManager(t)
	s, creator, err := m.Create("u0", "Alice", game.DefaultOptions())
	require.NoError(t, err)

	id, feed := s.Subscribe(16)
	defer s.Unsubscribe(id)

	_, _, err = s.Join("u1", "Bob", false, "")
	require.NoError(t, err)
	events, _, err := s.Start(creator.ID)
	require.NoError(t, err)
	require.NotEmpty(t, events)

	// Both batches arrive, in order, with strictly increasing sequence.
	var got []game.Event
	deadline := time.After(2 * time.Second)
	for len(got) < len(events)+1 {
		select {
		case batch := <-feed:
			got = append(got, batch...)
		case <-deadline:
			t.Fatalf("feed delivered %d events, want at least %d", len(got), len(events)+1)
		}
	}
	var last uint64
	for _, ev := range got {
		require.Greater(t, ev.Seq, last, "feed must be ordered and gap-free per batch")
		last = ev.Seq
	}

	t.Run("unsubscribed channels close", func(t *testing.T) {
		id, feed := s.Subscribe(1)
		s.Unsubscribe(id)
		_, open := <-feed
		require.False(t, open)
	})
}

func TestSessionEventsSince(t *testing.T) {
	m := newTestManager(t)
	s := startedSession(t, m, game.DefaultOptions())

	all, err := s.EventsSince(0)
	require.NoError(t, err)
	require.NotEmpty(t, all)

	mid := all[len(all)/2].Seq
	tail, err := s.EventsSince(mid)
	require.NoError(t, err)
	require.Len(t, tail, len(all)-len(all)/2-1)
	for _, ev := range tail {
		require.Greater(t, ev.Seq, mid)
	}
}

func TestSessionPersists(t *testing.T) {
	st := store.NewMemStore()
	m := NewManager(st, zerolog.Nop(), 0)
	t.Cleanup(m.Shutdown)

	s, creator, err := m.Create("u0", "Alice", game.DefaultOptions())
	require.NoError(t, err)
	_, _, err = s.Join("u1", "Bob", false, "")
	require.NoError(t, err)
	events, _, err := s.Start(creator.ID)
	require.NoError(t, err)

	// Persistence is asynchronous; poll until the snapshot lands.
	require.Eventually(t, func() bool {
		snap, err := st.Snapshot(s.ID())
		return err == nil && snap.Status == game.StatusInProgress
	}, 2*time.Second, 10*time.Millisecond, "snapshot must reach the store")

	require.Eventually(t, func() bool {
		stored, err := st.Events(s.ID(), 0)
		return err == nil && len(stored) >= len(events)
	}, 2*time.Second, 10*time.Millisecond, "events must reach the store")
}

func TestSessionPersistsInOrder(t *testing.T) {
	st := store.NewMemStore()
	m := NewManager(st, zerolog.Nop(), 0)
	t.Cleanup(m.Shutdown)

	opts := game.DefaultOptions()
	opts.TurnTimeLimit = 0
	s, creator, err := m.Create("u0", "Alice", opts)
	require.NoError(t, err)
	base, err := s.Snapshot()
	require.NoError(t, err)
	_, _, err = s.Join("u1", "Bob", false, "")
	require.NoError(t, err)
	_, _, err = s.Start(creator.ID)
	require.NoError(t, err)

	snap, err := s.Snapshot()
	require.NoError(t, err)
	actor := snap.Turn.PlayerID
	var target string
	for _, tv := range snap.Territories {
		if tv.OwnerID == actor {
			target = tv.ID
			break
		}
	}
	troops := 0
	for _, pv := range snap.Players {
		if pv.ID == actor {
			troops = pv.TroopsToPlace
		}
	}
	require.Positive(t, troops)

	// Each one-troop deploy is its own persistence batch.
	for i := 0; i < troops; i++ {
		_, _, err := s.Act(game.Action{
			Type: game.ActionDeploy, PlayerID: actor, To: target, Troops: 1,
		})
		require.NoError(t, err)
	}

	live, err := s.EventsSince(base.Seq)
	require.NoError(t, err)
	require.NotEmpty(t, live)

	require.Eventually(t, func() bool {
		stored, err := st.Events(s.ID(), 0)
		return err == nil && len(stored) == len(live)
	}, 2*time.Second, 10*time.Millisecond, "all batches must reach the store")

	stored, err := st.Events(s.ID(), 0)
	require.NoError(t, err)
	require.Equal(t, base.Seq+1, stored[0].Seq)
	for i := 1; i < len(stored); i++ {
		require.Equal(t, stored[i-1].Seq+1, stored[i].Seq,
			"the stored log preserves the order the worker produced batches in")
	}

	require.Eventually(t, func() bool {
		saved, err := st.Snapshot(s.ID())
		return err == nil && saved.Seq == live[len(live)-1].Seq
	}, 2*time.Second, 10*time.Millisecond, "the stored snapshot settles on the latest state")
}

func TestSessionTimeoutAutopilot(t *testing.T) {
	m := newTestManager(t)
	opts := game.DefaultOptions()
	opts.TurnTimeLimit = time.Second
	s := startedSession(t, m, opts)

	snap, err := s.Snapshot()
	require.NoError(t, err)
	idle := snap.Turn.PlayerID

	// Let the clock run out; the autopilot must finish the idle player's
	// turn through the normal action path.
	require.Eventually(t, func() bool {
		snap, err := s.Snapshot()
		return err == nil && snap.Turn.Number >= 2
	}, 5*time.Second, 50*time.Millisecond, "the turn must pass to the next player")

	var sawTimeout, sawDeploy bool
	events, err := s.EventsSince(0)
	require.NoError(t, err)
	for _, ev := range events {
		switch ev.Type {
		case game.EventTurnTimeout:
			sawTimeout = true
		case game.EventTroopsDeployed:
			sawDeploy = sawDeploy || ev.PlayerID == idle
		}
	}
	require.True(t, sawTimeout, "the timeout itself is recorded in the log")
	require.True(t, sawDeploy, "the autopilot places the idle player's reinforcements")
}

func TestSessionTimeoutResolvesForcedTrade(t *testing.T) {
	m := newTestManager(t)
	opts := game.DefaultOptions()
	opts.TurnTimeLimit = time.Second
	s := startedSession(t, m, opts)

	// Park the current player mid-turn in the attack phase holding a hand
	// that forces a trade before the turn can close.
	_, _, err := s.do(func(g *game.Game) ([]game.Event, error) {
		for _, q := range g.Players {
			q.Objective = &game.Objective{
				Type:           game.Common,
				TerritoryCount: len(g.World.Territories) + 1,
			}
		}
		p := g.CurrentPlayer()
		p.TroopsToPlace = 0
		p.Hand = []game.Card{
			{ID: "h1", Symbol: game.Infantry},
			{ID: "h2", Symbol: game.Infantry},
			{ID: "h3", Symbol: game.Infantry},
			{ID: "h4", Symbol: game.Cavalry},
			{ID: "h5", Symbol: game.Cannon},
		}
		g.Turn.Phase = game.Attack
		return nil, nil
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		snap, err := s.Snapshot()
		return err == nil && snap.Turn.Number >= 2
	}, 5*time.Second, 50*time.Millisecond,
		"the autopilot must walk to the trade phase and close the turn")

	events, err := s.EventsSince(0)
	require.NoError(t, err)
	var traded bool
	for _, ev := range events {
		if ev.Type == game.EventCardsTraded {
			traded = true
		}
	}
	require.True(t, traded, "closing the turn required trading the forced hand")
}

func TestSessionQuarantine(t *testing.T) {
	m := newTestManager(t)
	s := startedSession(t, m, game.DefaultOptions())

	t.Run("a panic freezes the session", func(t *testing.T) {
		_, _, err := s.do(func(g *game.Game) ([]game.Event, error) {
			panic("corrupted invariant")
		})
		require.Error(t, err)
		require.True(t, s.Quarantined())
	})

	t.Run("a frozen session rejects everything", func(t *testing.T) {
		_, err := s.Snapshot()
		require.Error(t, err)
		require.Error(t, s.Pause("anyone"))
	})

	t.Run("fatal domain errors freeze too", func(t *testing.T) {
		s2 := startedSession(t, m, game.DefaultOptions())
		_, _, err := s2.do(func(g *game.Game) ([]game.Event, error) {
			return nil, &game.Error{Code: game.ErrResourceExhausted, Reason: "deck integrity lost"}
		})
		require.Error(t, err)
		require.True(t, s2.Quarantined())
	})
}

func TestSessionClose(t *testing.T) {
	m := newTestManager(t)
	s := startedSession(t, m, game.DefaultOptions())

	_, feed := s.Subscribe(1)
	s.Close()
	_, open := <-feed
	require.False(t, open, "closing the session closes every feed")

	_, err := s.Snapshot()
	require.Error(t, err, "a closed session accepts no work")
	s.Close()
}

func TestManagerRegistry(t *testing.T) {
	t.Run("resolves by id and code", func(t *testing.T) {
		m := newTestManager(t)
		s, _, err := m.Create("u0", "Alice", game.DefaultOptions())
		require.NoError(t, err)

		byID, err := m.Get(s.ID())
		require.NoError(t, err)
		require.Same(t, s, byID)

		byCode, err := m.GetByCode(s.Code())
		require.NoError(t, err)
		require.Same(t, s, byCode)

		_, err = m.Get("nope")
		require.ErrorIs(t, err, ErrGameNotFound)
		_, err = m.GetByCode("NOPE42")
		require.ErrorIs(t, err, ErrGameNotFound)
	})

	t.Run("codes are unique across sessions", func(t *testing.T) {
		m := newTestManager(t)
		seen := map[string]bool{}
		for i := 0; i < 20; i++ {
			s, _, err := m.Create(fmt.Sprintf("u%d", i), "player", game.DefaultOptions())
			require.NoError(t, err)
			require.False(t, seen[s.Code()], "join code %s issued twice", s.Code())
			seen[s.Code()] = true
		}
		require.Len(t, m.Sessions(), 20)
	})

	t.Run("enforces the session limit", func(t *testing.T) {
		m := NewManager(nil, zerolog.Nop(), 2)
		t.Cleanup(m.Shutdown)
		_, _, err := m.Create("u0", "a", game.DefaultOptions())
		require.NoError(t, err)
		_, _, err = m.Create("u1", "b", game.DefaultOptions())
		require.NoError(t, err)
		_, _, err = m.Create("u2", "c", game.DefaultOptions())
		require.Error(t, err, "the third session exceeds the limit of two")
	})

	t.Run("remove frees the code", func(t *testing.T) {
		m := newTestManager(t)
		s, _, err := m.Create("u0", "Alice", game.DefaultOptions())
		require.NoError(t, err)
		code := s.Code()
		m.Remove(s.ID())
		_, err = m.GetByCode(code)
		require.ErrorIs(t, err, ErrGameNotFound)
		require.Empty(t, m.Sessions())
	})
}
