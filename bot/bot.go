// Package bot defines the hook a bot strategy plugs into. The engine ships
// only the fallback autopilot used for bot seats and idle-player timeouts;
// real decision strategies live outside this module.
package bot

import (
	"errors"

	"github.com/wasapjg/teg-engine/game"
)

// Strategy chooses one action for the player whose turn it is. The returned
// action goes through the same validation path as a human action.
type Strategy interface {
	ChooseAction(snap game.Snapshot) (game.Action, error)
}

// ErrNoAction signals the strategy has nothing to do; the caller should end
// the turn.
var ErrNoAction = errors.New("bot: no action available")

// Fallback is the minimal autopilot: trade when forced, dump reinforcements
// on the first owned territory, end the turn. It never attacks.
type Fallback struct{}

func (Fallback) ChooseAction(snap game.Snapshot) (game.Action, error) {
	p := snap.PlayerByID(snap.Turn.PlayerID)
	if p == nil {
		return game.Action{}, ErrNoAction
	}

	if len(p.Cards) >= snap.Options.TradeThreshold {
		if ids, ok := findSet(p.Cards); ok {
			switch snap.Turn.Phase {
			case game.Deployment, game.TradeCards:
				return game.Action{
					Type:     game.ActionTradeCards,
					PlayerID: p.ID,
					CardIDs:  ids,
				}, nil
			default:
				// Trading is not legal mid-turn; walk the phases forward
				// until it is.
				return game.Action{Type: game.ActionEndPhase, PlayerID: p.ID}, nil
			}
		}
	}

	if snap.Turn.Phase == game.Deployment && p.TroopsToPlace > 0 {
		for _, t := range snap.Territories {
			if t.OwnerID == p.ID {
				return game.Action{
					Type:     game.ActionDeploy,
					PlayerID: p.ID,
					To:       t.ID,
					Troops:   p.TroopsToPlace,
				}, nil
			}
		}
	}

	return game.Action{Type: game.ActionEndTurn, PlayerID: p.ID}, nil
}

// findSet scans all 3-card combinations for a valid set.
func findSet(hand []game.Card) ([]string, bool) {
	for i := 0; i < len(hand); i++ {
		for j := i + 1; j < len(hand); j++ {
			for k := j + 1; k < len(hand); k++ {
				if game.IsValidSet(hand[i], hand[j], hand[k]) {
					return []string{hand[i].ID, hand[j].ID, hand[k].ID}, true
				}
			}
		}
	}
	return nil, false
}
