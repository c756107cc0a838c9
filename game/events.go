package game

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType identifies emitted game events.
type EventType string

const (
	EventPlayerJoined EventType = "player.joined"
	EventPlayerLeft   EventType = "player.left"

	EventGameStarted  EventType = "game.started"
	EventGamePaused   EventType = "game.paused"
	EventGameResumed  EventType = "game.resumed"
	EventGameFinished EventType = "game.finished"

	EventTroopsDeployed     EventType = "turn.troops_deployed"
	EventAttackResolved     EventType = "turn.attack_resolved"
	EventTerritoryConquered EventType = "turn.territory_conquered"
	EventFortified          EventType = "turn.fortified"
	EventCardsTraded        EventType = "turn.cards_traded"
	EventCardDrawn          EventType = "turn.card_drawn"
	EventPhaseChanged       EventType = "turn.phase_changed"
	EventTurnChanged        EventType = "turn.changed"
	EventTurnTimeout        EventType = "turn.timeout"

	EventPlayerEliminated EventType = "player.eliminated"
	EventPlayerWon        EventType = "player.won"
)

// Event is an immutable, ordered record of a state change. Seq is monotonic
// within one game and is the authoritative ordering for audit, replay and
// live broadcast.
type Event struct {
	Seq       uint64    `json:"seq"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	PlayerID  string    `json:"playerId,omitempty"`
	Payload   any       `json:"payload,omitempty"`
	Message   string    `json:"message"`
}

// Payloads carry the full effect of each event so that folding events over a
// snapshot reconstructs the resulting state.

type JoinedPayload struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	Bot      bool   `json:"bot,omitempty"`
}

type LeftPayload struct {
	PlayerID string `json:"playerId"`
}

type StartedPayload struct {
	Seats         []string       `json:"seats"` // player ids in turn order
	Ownership     map[string]string `json:"ownership"` // territory id -> player id
	Armies        map[string]int `json:"armies"`       // territory id -> armies
	FirstPlayerID string         `json:"firstPlayerId"`
	TroopsToPlace int            `json:"troopsToPlace"`
}

type DeployPayload struct {
	TerritoryID string `json:"territoryId"`
	Troops      int    `json:"troops"`
	Remaining   int    `json:"remaining"`
}

type AttackPayload struct {
	From              string `json:"from"`
	To                string `json:"to"`
	AttackerRolls     []int  `json:"attackerRolls"`
	DefenderRolls     []int  `json:"defenderRolls"`
	AttackerLosses    int    `json:"attackerLosses"`
	DefenderLosses    int    `json:"defenderLosses"`
	AttackerRemaining int    `json:"attackerRemaining"`
	DefenderRemaining int    `json:"defenderRemaining"`
	Conquered         bool   `json:"conquered"`
}

type ConquestPayload struct {
	TerritoryID     string `json:"territoryId"`
	From            string `json:"from"`
	NewOwnerID      string `json:"newOwnerId"`
	PreviousOwnerID string `json:"previousOwnerId"`
	ArmiesMoved     int    `json:"armiesMoved"`
}

type FortifyPayload struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Troops int    `json:"troops"`
}

type TradePayload struct {
	Cards          []Card `json:"cards"`
	TradeNumber    int    `json:"tradeNumber"`
	Bonus          int    `json:"bonus"`
	BonusTerritory string `json:"bonusTerritory,omitempty"`
	BonusArmies    int    `json:"bonusArmies,omitempty"`
}

type CardDrawnPayload struct {
	Card Card `json:"card"`
}

type PhasePayload struct {
	Phase Phase `json:"phase"`
}

type TurnPayload struct {
	Number        int    `json:"number"`
	PlayerID      string `json:"playerId"`
	TroopsToPlace int    `json:"troopsToPlace"`
}

type EliminationPayload struct {
	PlayerID    string `json:"playerId"`
	ByPlayerID  string `json:"byPlayerId,omitempty"`
	CardsPassed int    `json:"cardsPassed,omitempty"`
	// Reassigned maps territory id to its new owner when elimination was a
	// forfeit rather than a conquest.
	Reassigned map[string]string `json:"reassigned,omitempty"`
}

type VictoryPayload struct {
	PlayerID    string `json:"playerId"`
	ObjectiveID string `json:"objectiveId"`
	Description string `json:"description"`
}

type LifecyclePayload struct {
	Status Status `json:"status"`
}

// payloadDecoders maps each event type to its concrete payload type, so
// event tails loaded from storage fold over a snapshot the same way
// in-process events do.
var payloadDecoders = map[EventType]func([]byte) (any, error){
	EventPlayerJoined:       decodePayload[JoinedPayload],
	EventPlayerLeft:         decodePayload[LeftPayload],
	EventGameStarted:        decodePayload[StartedPayload],
	EventGamePaused:         decodePayload[LifecyclePayload],
	EventGameResumed:        decodePayload[LifecyclePayload],
	EventGameFinished:       decodePayload[LifecyclePayload],
	EventTroopsDeployed:     decodePayload[DeployPayload],
	EventAttackResolved:     decodePayload[AttackPayload],
	EventTerritoryConquered: decodePayload[ConquestPayload],
	EventFortified:          decodePayload[FortifyPayload],
	EventCardsTraded:        decodePayload[TradePayload],
	EventCardDrawn:          decodePayload[CardDrawnPayload],
	EventPhaseChanged:       decodePayload[PhasePayload],
	EventTurnChanged:        decodePayload[TurnPayload],
	EventPlayerEliminated:   decodePayload[EliminationPayload],
	EventPlayerWon:          decodePayload[VictoryPayload],
}

func decodePayload[T any](data []byte) (any, error) {
	var p T
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return p, nil
}

// UnmarshalJSON restores the payload's concrete type from the event type.
// Unknown types keep a generic payload and are skipped by Apply.
func (e *Event) UnmarshalJSON(data []byte) error {
	type alias Event
	aux := struct {
		*alias
		Payload json.RawMessage `json:"payload,omitempty"`
	}{alias: (*alias)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.Payload) == 0 || string(aux.Payload) == "null" {
		e.Payload = nil
		return nil
	}
	decode, ok := payloadDecoders[e.Type]
	if !ok {
		var generic any
		if err := json.Unmarshal(aux.Payload, &generic); err != nil {
			return err
		}
		e.Payload = generic
		return nil
	}
	p, err := decode(aux.Payload)
	if err != nil {
		return err
	}
	e.Payload = p
	return nil
}

// appendEvent stamps and records a new event, returning it for broadcast.
func (g *Game) appendEvent(typ EventType, playerID string, payload any, message string) Event {
	g.seq++
	ev := Event{
		Seq:       g.seq,
		ID:        uuid.NewString(),
		Timestamp: g.now(),
		Type:      typ,
		PlayerID:  playerID,
		Payload:   payload,
		Message:   message,
	}
	g.events = append(g.events, ev)
	return ev
}

// Events returns the events with sequence numbers greater than fromSeq.
func (g *Game) Events(fromSeq uint64) []Event {
	var out []Event
	for _, ev := range g.events {
		if ev.Seq > fromSeq {
			out = append(out, ev)
		}
	}
	return out
}

// Version returns the sequence number of the latest event. Actions carrying
// a stale version are rejected with CONCURRENCY_VIOLATION.
func (g *Game) Version() uint64 { return g.seq }
