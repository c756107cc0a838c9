package server

import (
	"time"

	"github.com/wasapjg/teg-engine/game"
)

// Request payloads are strictly validated at the boundary: required fields
// are enforced by binding tags and anything malformed is rejected with a
// typed error instead of being silently defaulted.

type createGameRequest struct {
	UserID        string `json:"userId" binding:"required"`
	Name          string `json:"name" binding:"required"`
	GameName      string `json:"gameName"`
	MaxPlayers    int    `json:"maxPlayers"`
	TurnTimeLimit int    `json:"turnTimeLimitSeconds"`
	ChatEnabled   *bool  `json:"chatEnabled"`
	SpecialRules  []string `json:"specialRules"`
}

func (r createGameRequest) options(defaults game.Options) game.Options {
	opts := defaults
	opts.Name = r.GameName
	if r.MaxPlayers != 0 {
		opts.MaxPlayers = r.MaxPlayers
	}
	if r.TurnTimeLimit != 0 {
		opts.TurnTimeLimit = time.Duration(r.TurnTimeLimit) * time.Second
	}
	if r.ChatEnabled != nil {
		opts.ChatEnabled = *r.ChatEnabled
	}
	for _, sr := range r.SpecialRules {
		opts.SpecialRules = append(opts.SpecialRules, game.SpecialRule(sr))
	}
	return opts
}

type joinGameRequest struct {
	UserID string `json:"userId" binding:"required"`
	Name   string `json:"name" binding:"required"`
}

// playerRequest identifies the acting player for lifecycle endpoints
// (start, pause, resume, forfeit).
type playerRequest struct {
	PlayerID string `json:"playerId" binding:"required"`
}

type actionRequest struct {
	Type         string   `json:"type" binding:"required,oneof=DEPLOY_TROOPS ATTACK FORTIFY TRADE_CARDS END_PHASE END_TURN"`
	PlayerID     string   `json:"actingPlayerId" binding:"required"`
	From         string   `json:"from"`
	To           string   `json:"to"`
	Troops       int      `json:"troops" binding:"gte=0"`
	AttackerDice int      `json:"attackerDice" binding:"gte=0,lte=3"`
	DefenderDice int      `json:"defenderDice" binding:"gte=0,lte=2"`
	CardIDs      []string `json:"cardIds"`
	Version      uint64   `json:"version"`
}

func (r actionRequest) action() game.Action {
	return game.Action{
		Type:         game.ActionType(r.Type),
		PlayerID:     r.PlayerID,
		From:         r.From,
		To:           r.To,
		Troops:       r.Troops,
		AttackerDice: r.AttackerDice,
		DefenderDice: r.DefenderDice,
		CardIDs:      r.CardIDs,
		Version:      r.Version,
	}
}

type actionResponse struct {
	Snapshot game.Snapshot `json:"snapshot"`
	Events   []game.Event  `json:"events"`
}

type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}
