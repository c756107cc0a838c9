package game

import "fmt"

// ActionType discriminates submitted player actions.
type ActionType string

const (
	ActionDeploy     ActionType = "DEPLOY_TROOPS"
	ActionAttack     ActionType = "ATTACK"
	ActionFortify    ActionType = "FORTIFY"
	ActionTradeCards ActionType = "TRADE_CARDS"
	ActionEndPhase   ActionType = "END_PHASE"
	ActionEndTurn    ActionType = "END_TURN"
)

// Action is a discriminated action payload submitted by a player.
type Action struct {
	Type     ActionType `json:"type"`
	PlayerID string     `json:"actingPlayerId"`
	From     string     `json:"from,omitempty"`
	To       string     `json:"to,omitempty"`
	Troops   int        `json:"troops,omitempty"`
	// Dice requested; capped by the combat rules.
	AttackerDice int `json:"attackerDice,omitempty"`
	DefenderDice int `json:"defenderDice,omitempty"`
	// CardIDs names the three cards of a trade.
	CardIDs []string `json:"cardIds,omitempty"`
	// Version, when non-zero, pins the action to a state version; a stale
	// version is rejected with CONCURRENCY_VIOLATION.
	Version uint64 `json:"version,omitempty"`
}

// phaseActions is the legal-action set per phase, before action-specific
// preconditions.
var phaseActions = map[Phase][]ActionType{
	Deployment:    {ActionDeploy, ActionTradeCards, ActionEndPhase, ActionEndTurn},
	Attack:        {ActionAttack, ActionEndPhase, ActionEndTurn},
	Fortification: {ActionFortify, ActionEndPhase, ActionEndTurn},
	TradeCards:    {ActionTradeCards, ActionEndPhase, ActionEndTurn},
}

// LegalActions returns the action types available in the current phase.
func (g *Game) LegalActions() []ActionType {
	if g.Status != StatusInProgress {
		return nil
	}
	return phaseActions[g.Turn.Phase]
}

// ExecuteAction validates and applies one player action. Illegal actions are
// rejected with a typed error and zero mutation; on success the resulting
// events are returned for broadcast.
func (g *Game) ExecuteAction(a Action) ([]Event, error) {
	if g.Status != StatusInProgress {
		return nil, illegalf("game is %s, not accepting actions", g.Status)
	}
	if a.Version != 0 && a.Version != g.seq {
		return nil, &Error{
			Code:   ErrConcurrencyViolation,
			Reason: fmt.Sprintf("action built against version %d, game is at %d", a.Version, g.seq),
		}
	}
	actor := g.player(a.PlayerID)
	if actor == nil {
		return nil, illegalf("unknown player %q", a.PlayerID)
	}
	if a.PlayerID != g.Turn.PlayerID {
		return nil, illegalf("not %s's turn", actor.Name)
	}
	if !actionLegalIn(g.Turn.Phase, a.Type) {
		return nil, illegalf("%s is not legal during %s", a.Type, g.Turn.Phase)
	}

	mark := g.seq
	var err error
	switch a.Type {
	case ActionDeploy:
		err = g.handleDeploy(actor, a)
	case ActionAttack:
		err = g.handleAttack(actor, a)
	case ActionFortify:
		err = g.handleFortify(actor, a)
	case ActionTradeCards:
		err = g.handleTrade(actor, a)
	case ActionEndPhase:
		err = g.handleEndPhase(actor)
	case ActionEndTurn:
		err = g.handleEndTurn(actor)
	default:
		err = illegalf("unknown action type %q", a.Type)
	}
	if err != nil {
		return nil, err
	}
	g.checkObjectives(actor)
	return g.Events(mark), nil
}

func actionLegalIn(phase Phase, t ActionType) bool {
	for _, legal := range phaseActions[phase] {
		if legal == t {
			return true
		}
	}
	return false
}

func (g *Game) handleDeploy(actor *Player, a Action) error {
	t, ok := g.World.Territories[a.To]
	if !ok {
		return illegalf("unknown territory %q", a.To)
	}
	if t.OwnerID != actor.ID {
		return illegalf("%s does not own %s", actor.Name, t.Name)
	}
	if a.Troops < 1 {
		return illegalf("must deploy at least 1 troop")
	}
	if a.Troops > actor.TroopsToPlace {
		return illegalf("only %d troops left to place", actor.TroopsToPlace)
	}
	t.Armies += a.Troops
	actor.TroopsToPlace -= a.Troops
	g.appendEvent(EventTroopsDeployed, actor.ID, DeployPayload{
		TerritoryID: t.ID, Troops: a.Troops, Remaining: actor.TroopsToPlace,
	}, fmt.Sprintf("%s deployed %d troops to %s", actor.Name, a.Troops, t.Name))
	return nil
}

func (g *Game) handleAttack(actor *Player, a Action) error {
	from, ok := g.World.Territories[a.From]
	if !ok {
		return illegalf("unknown territory %q", a.From)
	}
	to, ok := g.World.Territories[a.To]
	if !ok {
		return illegalf("unknown territory %q", a.To)
	}
	if from.OwnerID != actor.ID {
		return illegalf("%s does not own %s", actor.Name, from.Name)
	}
	if to.OwnerID == actor.ID {
		return illegalf("cannot attack own territory %s", to.Name)
	}
	if !g.World.AreAdjacent(from.ID, to.ID) {
		return illegalf("%s and %s are not adjacent", from.Name, to.Name)
	}
	if a.Troops < 1 {
		return illegalf("must attack with at least 1 army")
	}
	if a.Troops > from.Armies-1 {
		return illegalf("%s has %d armies; at least one must stay behind", from.Name, from.Armies)
	}
	attackerDice := a.AttackerDice
	if attackerDice < 1 {
		attackerDice = 3
	}
	defenderDice := a.DefenderDice
	if defenderDice < 1 {
		defenderDice = 2
	}

	defenderID := to.OwnerID
	res := resolveCombat(g.roller, from, to, a.Troops, attackerDice, defenderDice)

	g.appendEvent(EventAttackResolved, actor.ID, AttackPayload{
		From:              from.ID,
		To:                to.ID,
		AttackerRolls:     res.AttackerRolls,
		DefenderRolls:     res.DefenderRolls,
		AttackerLosses:    res.AttackerLosses,
		DefenderLosses:    res.DefenderLosses,
		AttackerRemaining: res.AttackerRemaining,
		DefenderRemaining: res.DefenderRemaining,
		Conquered:         res.Conquered,
	}, fmt.Sprintf("%s attacked %s from %s (%v vs %v)",
		actor.Name, to.Name, from.Name, res.AttackerRolls, res.DefenderRolls))

	if !res.Conquered {
		return nil
	}

	g.Turn.ConqueredThisTurn = true
	g.appendEvent(EventTerritoryConquered, actor.ID, ConquestPayload{
		TerritoryID:     to.ID,
		From:            from.ID,
		NewOwnerID:      actor.ID,
		PreviousOwnerID: defenderID,
		ArmiesMoved:     res.ArmiesMoved,
	}, fmt.Sprintf("%s conquered %s", actor.Name, to.Name))

	if defender := g.player(defenderID); defender != nil && g.World.OwnedCount(defenderID) == 0 {
		g.eliminate(defender, actor)
	}
	return nil
}

// eliminate marks a defeated player and passes their cards to the conqueror.
func (g *Game) eliminate(defeated, by *Player) {
	defeated.Status = PlayerEliminated
	defeated.TroopsToPlace = 0
	g.eliminatedBy[defeated.ID] = by.ID
	passed := len(defeated.Hand)
	by.Hand = append(by.Hand, defeated.Hand...)
	defeated.Hand = nil
	g.appendEvent(EventPlayerEliminated, defeated.ID, EliminationPayload{
		PlayerID:    defeated.ID,
		ByPlayerID:  by.ID,
		CardsPassed: passed,
	}, fmt.Sprintf("%s was eliminated by %s", defeated.Name, by.Name))

	// Destruction objectives referencing the defeated player resolve now.
	for _, p := range g.Players {
		if p.Objective != nil && p.Objective.Type == Destruction &&
			p.Objective.TargetPlayerID == defeated.ID {
			g.checkObjectives(p)
			if g.Status == StatusFinished {
				return
			}
		}
	}
	if alive := g.alivePlayers(); len(alive) == 1 && g.Status != StatusFinished {
		g.declareWinner(alive[0])
	}
}

func (g *Game) handleFortify(actor *Player, a Action) error {
	if g.Turn.FortifiedThisTurn {
		return illegalf("already fortified this turn")
	}
	from, ok := g.World.Territories[a.From]
	if !ok {
		return illegalf("unknown territory %q", a.From)
	}
	to, ok := g.World.Territories[a.To]
	if !ok {
		return illegalf("unknown territory %q", a.To)
	}
	if from.OwnerID != actor.ID || to.OwnerID != actor.ID {
		return illegalf("both territories must be owned by %s", actor.Name)
	}
	if from.ID == to.ID {
		return illegalf("cannot fortify a territory from itself")
	}
	if a.Troops < 1 {
		return illegalf("must move at least 1 troop")
	}
	if a.Troops > from.Armies-1 {
		return illegalf("%s has %d armies; at least one must stay behind", from.Name, from.Armies)
	}
	if !g.World.Connected(from.ID, to.ID, actor.ID) {
		return illegalf("%s and %s are not connected through owned territory", from.Name, to.Name)
	}
	from.Armies -= a.Troops
	to.Armies += a.Troops
	g.Turn.FortifiedThisTurn = true
	g.appendEvent(EventFortified, actor.ID, FortifyPayload{
		From: from.ID, To: to.ID, Troops: a.Troops,
	}, fmt.Sprintf("%s moved %d troops from %s to %s", actor.Name, a.Troops, from.Name, to.Name))
	return nil
}

func (g *Game) handleTrade(actor *Player, a Action) error {
	if len(a.CardIDs) != 3 {
		return illegalf("a trade names exactly 3 cards, got %d", len(a.CardIDs))
	}
	var cards [3]Card
	for i, id := range a.CardIDs {
		var found bool
		for _, c := range actor.Hand {
			if c.ID == id {
				cards[i], found = c, true
				break
			}
		}
		if !found {
			return illegalf("card %q is not in %s's hand", id, actor.Name)
		}
	}
	if a.CardIDs[0] == a.CardIDs[1] || a.CardIDs[1] == a.CardIDs[2] || a.CardIDs[0] == a.CardIDs[2] {
		return illegalf("a trade names 3 distinct cards")
	}
	if !IsValidSet(cards[0], cards[1], cards[2]) {
		return illegalf("cards do not form a valid set")
	}

	for _, id := range a.CardIDs {
		c, _ := actor.takeCard(id)
		g.Deck.Discard(c)
	}
	g.Trades++
	bonus := TradeBonus(g.Options.TradeProgression, g.Options.TradeStep, g.Trades)
	actor.TroopsToPlace += bonus

	payload := TradePayload{
		Cards:       cards[:],
		TradeNumber: g.Trades,
		Bonus:       bonus,
	}
	// Owning a traded card's territory grants 2 extra armies placed there
	// directly. At most one card qualifies.
	for _, c := range cards {
		if c.TerritoryID == "" {
			continue
		}
		if t := g.World.Territories[c.TerritoryID]; t != nil && t.OwnerID == actor.ID {
			t.Armies += 2
			payload.BonusTerritory = t.ID
			payload.BonusArmies = 2
			break
		}
	}
	g.appendEvent(EventCardsTraded, actor.ID, payload,
		fmt.Sprintf("%s traded a card set for %d troops", actor.Name, bonus))
	return nil
}

// mustTrade reports whether the player is over the mandatory-trade hand size.
func (g *Game) mustTrade(p *Player) bool {
	return len(p.Hand) >= g.Options.TradeThreshold
}

func (g *Game) handleEndPhase(actor *Player) error {
	switch g.Turn.Phase {
	case Deployment:
		if err := g.checkTurnCloseable(actor); err != nil {
			return err
		}
		g.setPhase(actor, Attack)
		if g.Options.HasRule(RuleAutoSkipAttack) && !g.hasLegalAttack(actor) {
			g.setPhase(actor, Fortification)
		}
	case Attack:
		g.setPhase(actor, Fortification)
	case Fortification:
		g.setPhase(actor, TradeCards)
	case TradeCards:
		return g.handleEndTurn(actor)
	}
	return nil
}

// hasLegalAttack reports whether the player owns a territory with a spare
// army bordering enemy territory.
func (g *Game) hasLegalAttack(p *Player) bool {
	for _, t := range g.World.OwnedBy(p.ID) {
		if t.Armies < 2 {
			continue
		}
		for _, adjID := range t.AdjacentIDs {
			if g.World.Territories[adjID].OwnerID != p.ID {
				return true
			}
		}
	}
	return false
}

func (g *Game) checkTurnCloseable(actor *Player) error {
	// Troops granted by a trade in the closing phase are banked for the
	// player's next deployment rather than blocking the turn.
	if g.Turn.Phase == Deployment && actor.TroopsToPlace > 0 {
		return illegalf("%d troops still to place", actor.TroopsToPlace)
	}
	if g.mustTrade(actor) {
		return illegalf("holding %d cards; trading a set is mandatory at %d",
			len(actor.Hand), g.Options.TradeThreshold)
	}
	return nil
}

func (g *Game) setPhase(actor *Player, phase Phase) {
	g.Turn.Phase = phase
	g.appendEvent(EventPhaseChanged, actor.ID, PhasePayload{Phase: phase},
		fmt.Sprintf("%s entered the %s phase", actor.Name, phase))
}

func (g *Game) handleEndTurn(actor *Player) error {
	if err := g.checkTurnCloseable(actor); err != nil {
		return err
	}
	if g.Turn.ConqueredThisTurn {
		card, err := g.Deck.Draw()
		if err != nil {
			return err
		}
		actor.Hand = append(actor.Hand, card)
		g.appendEvent(EventCardDrawn, actor.ID, CardDrawnPayload{Card: card},
			fmt.Sprintf("%s drew a card for conquering this turn", actor.Name))
	}
	g.advanceTurn()
	return nil
}

// advanceTurn hands the turn to the next non-eliminated player in seat
// order, wrapping, and opens their deployment phase with fresh
// reinforcements plus any troops banked from a late trade. It runs while
// paused too, so a forfeit never leaves the turn on an eliminated player.
func (g *Game) advanceTurn() {
	if g.Status == StatusFinished {
		return
	}
	current := g.CurrentPlayer()
	seat := 0
	if current != nil {
		seat = current.Seat
	}
	var next *Player
	for i := 1; i <= len(g.Players); i++ {
		cand := g.Players[(seat+i)%len(g.Players)]
		if cand.Status != PlayerEliminated {
			next = cand
			break
		}
	}
	if next == nil {
		return
	}
	g.Turn = Turn{
		Number:   g.Turn.Number + 1,
		PlayerID: next.ID,
		Phase:    Deployment,
	}
	next.TroopsToPlace += Reinforcements(g.World, next.ID)
	g.resetDeadline()
	g.appendEvent(EventTurnChanged, next.ID, TurnPayload{
		Number:        g.Turn.Number,
		PlayerID:      next.ID,
		TroopsToPlace: next.TroopsToPlace,
	}, fmt.Sprintf("%s opens turn %d with %d reinforcements",
		next.Name, g.Turn.Number, next.TroopsToPlace))
}

// checkObjectives re-evaluates a player's objective and ends the game on the
// first achieved one.
func (g *Game) checkObjectives(p *Player) {
	if g.Status == StatusFinished || p.Objective == nil || p.Status == PlayerEliminated {
		return
	}
	if p.Objective.evaluate(g, p.ID) {
		g.declareWinner(p)
	}
}
