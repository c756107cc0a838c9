package game

import "time"

// PlayerStatus is the lifecycle state of a seat.
type PlayerStatus string

const (
	PlayerWaiting    PlayerStatus = "WAITING"
	PlayerActive     PlayerStatus = "ACTIVE"
	PlayerEliminated PlayerStatus = "ELIMINATED"
	PlayerWinner     PlayerStatus = "WINNER"
)

// Player is one seat in a game. Players are never removed from the seat list
// once the game starts; elimination only flips the status, preserving turn
// order and history.
type Player struct {
	ID            string
	UserID        string // "" for bots
	Name          string
	Bot           bool
	BotLevel      string
	Color         string
	Seat          int // turn order index, contiguous 0..N-1 after start
	Status        PlayerStatus
	TroopsToPlace int
	Hand          []Card
	Objective     *Objective
	JoinedAt      time.Time
}

// HoldsCard reports whether the card id is in the player's hand.
func (p *Player) HoldsCard(cardID string) bool {
	for _, c := range p.Hand {
		if c.ID == cardID {
			return true
		}
	}
	return false
}

func (p *Player) takeCard(cardID string) (Card, bool) {
	for i, c := range p.Hand {
		if c.ID == cardID {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return c, true
		}
	}
	return Card{}, false
}

var playerColors = []string{"red", "blue", "green", "yellow", "purple", "black"}
