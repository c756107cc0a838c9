package store

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wasapjg/teg-engine/game"
)

func testEvents(from, n int) []game.Event {
	var out []game.Event
	for i := 0; i < n; i++ {
		out = append(out, game.Event{
			Seq:     uint64(from + i),
			ID:      fmt.Sprintf("ev-%d", from+i),
			Type:    game.EventTroopsDeployed,
			Message: "troops deployed",
		})
	}
	return out
}

func TestMemStore(t *testing.T) {
	t.Run("unknown games are not found", func(t *testing.T) {
		s := NewMemStore()
		_, err := s.Events("missing", 0)
		require.ErrorIs(t, err, ErrNotFound)
		_, err = s.Snapshot("missing")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("appends accumulate in order", func(t *testing.T) {
		s := NewMemStore()
		require.NoError(t, s.AppendEvents("g1", testEvents(1, 3)))
		require.NoError(t, s.AppendEvents("g1", testEvents(4, 2)))

		events, err := s.Events("g1", 0)
		require.NoError(t, err)
		require.Len(t, events, 5)
		for i, ev := range events {
			require.Equal(t, uint64(i+1), ev.Seq)
		}
	})

	t.Run("fromSeq filters the tail", func(t *testing.T) {
		s := NewMemStore()
		require.NoError(t, s.AppendEvents("g1", testEvents(1, 5)))
		tail, err := s.Events("g1", 3)
		require.NoError(t, err)
		require.Len(t, tail, 2)
		require.Equal(t, uint64(4), tail[0].Seq)
	})

	t.Run("snapshot replaces the previous one", func(t *testing.T) {
		s := NewMemStore()
		require.NoError(t, s.SaveSnapshot(game.Snapshot{ID: "g1", Seq: 3}))
		require.NoError(t, s.SaveSnapshot(game.Snapshot{ID: "g1", Seq: 9}))
		snap, err := s.Snapshot("g1")
		require.NoError(t, err)
		require.Equal(t, uint64(9), snap.Seq)
	})

	t.Run("games are isolated", func(t *testing.T) {
		s := NewMemStore()
		require.NoError(t, s.AppendEvents("g1", testEvents(1, 2)))
		require.NoError(t, s.AppendEvents("g2", testEvents(1, 4)))
		events, err := s.Events("g2", 0)
		require.NoError(t, err)
		require.Len(t, events, 4)
	})

	t.Run("safe for concurrent use", func(t *testing.T) {
		s := NewMemStore()
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				id := fmt.Sprintf("g%d", i)
				for j := 0; j < 50; j++ {
					require.NoError(t, s.AppendEvents(id, testEvents(j+1, 1)))
					_, _ = s.Events(id, 0)
					require.NoError(t, s.SaveSnapshot(game.Snapshot{ID: id, Seq: uint64(j)}))
				}
			}(i)
		}
		wg.Wait()
		for i := 0; i < 8; i++ {
			events, err := s.Events(fmt.Sprintf("g%d", i), 0)
			require.NoError(t, err)
			require.Len(t, events, 50)
		}
	})
}
