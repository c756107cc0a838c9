package game

import "github.com/google/uuid"

// CardSymbol is the symbol printed on a territory card.
type CardSymbol int

const (
	Infantry CardSymbol = iota
	Cavalry
	Cannon
	Wildcard
)

func (s CardSymbol) String() string {
	switch s {
	case Infantry:
		return "INFANTRY"
	case Cavalry:
		return "CAVALRY"
	case Cannon:
		return "CANNON"
	case Wildcard:
		return "WILDCARD"
	default:
		return "UNKNOWN"
	}
}

// Card is a tradeable territory card. TerritoryID is "" for wildcards; for
// the rest it grants a bonus when the trading player owns that territory.
type Card struct {
	ID          string
	Symbol      CardSymbol
	TerritoryID string
}

// Deck holds the draw pile and the discard pile of one game. A card lives in
// exactly one of deck, a player's hand, or discard at any time.
type Deck struct {
	cards   []Card
	discard []Card
	roller  *Roller
}

// NewDeck builds a shuffled deck of one card per territory, symbols assigned
// round-robin, plus two wildcards.
func NewDeck(world *WorldMap, roller *Roller) *Deck {
	d := &Deck{roller: roller}
	symbols := []CardSymbol{Infantry, Cavalry, Cannon}
	for i, tid := range world.TerritoryIDs() {
		d.cards = append(d.cards, Card{
			ID:          uuid.NewString(),
			Symbol:      symbols[i%3],
			TerritoryID: tid,
		})
	}
	d.cards = append(d.cards,
		Card{ID: uuid.NewString(), Symbol: Wildcard},
		Card{ID: uuid.NewString(), Symbol: Wildcard},
	)
	d.shuffle()
	return d
}

func (d *Deck) shuffle() {
	d.roller.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Draw removes and returns the top card, reshuffling the discard pile into
// the deck when the deck is exhausted. Fails with RESOURCE_EXHAUSTED only if
// both piles are empty.
func (d *Deck) Draw() (Card, error) {
	if len(d.cards) == 0 {
		if len(d.discard) == 0 {
			return Card{}, &Error{Code: ErrResourceExhausted, Reason: "deck and discard pile are both empty"}
		}
		d.cards = append(d.cards, d.discard...)
		d.discard = nil
		d.shuffle()
	}
	card := d.cards[0]
	d.cards = d.cards[1:]
	return card, nil
}

// Discard moves cards to the discard pile.
func (d *Deck) Discard(cards ...Card) {
	d.discard = append(d.discard, cards...)
}

// Remaining returns the number of cards left in the draw pile.
func (d *Deck) Remaining() int { return len(d.cards) }

// Discarded returns the number of cards in the discard pile.
func (d *Deck) Discarded() int { return len(d.discard) }

// IsValidSet reports whether three cards form a tradeable set: any wildcard,
// all three symbols equal, or all three pairwise distinct. Exactly two
// matching non-wildcard symbols is never valid.
func IsValidSet(a, b, c Card) bool {
	if a.Symbol == Wildcard || b.Symbol == Wildcard || c.Symbol == Wildcard {
		return true
	}
	if a.Symbol == b.Symbol && b.Symbol == c.Symbol {
		return true
	}
	return a.Symbol != b.Symbol && b.Symbol != c.Symbol && a.Symbol != c.Symbol
}

// TradeBonus returns the troop bonus for the nth game-wide trade (1-based)
// under the given progression table; beyond the table each trade is worth
// step more than the previous one.
func TradeBonus(progression []int, step, n int) int {
	if len(progression) == 0 || n < 1 {
		return 0
	}
	if n <= len(progression) {
		return progression[n-1]
	}
	return progression[len(progression)-1] + step*(n-len(progression))
}
