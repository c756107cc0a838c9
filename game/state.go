package game

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a game.
type Status string

const (
	StatusWaiting    Status = "WAITING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusPaused     Status = "PAUSED"
	StatusFinished   Status = "FINISHED"
)

// Phase is the stage of the current turn.
type Phase string

const (
	Deployment    Phase = "DEPLOYMENT"
	Attack        Phase = "ATTACK"
	Fortification Phase = "FORTIFICATION"
	TradeCards    Phase = "TRADE_CARDS"
)

// Turn tracks whose turn it is and where in it we are.
type Turn struct {
	Number            int
	PlayerID          string
	Phase             Phase
	Deadline          time.Time // zero when the game has no time limit
	ConqueredThisTurn bool
	FortifiedThisTurn bool
}

// Game is the aggregate for one session: seats, map, deck, turn and the
// append-only event history. All mutation goes through the lifecycle methods
// and ExecuteAction; the session worker is the only goroutine touching it.
type Game struct {
	ID        string
	Code      string
	Name      string
	CreatorID string
	CreatedAt time.Time
	StartedAt time.Time
	FinishedAt time.Time

	Status   Status
	Options  Options
	Players  []*Player // seat order after start
	World    *WorldMap
	Turn     Turn
	Deck     *Deck
	Seed     uint64
	Trades   int
	WinnerID string

	roller *Roller
	events []Event
	seq    uint64
	// eliminatedBy records who delivered the final blow, for destruction
	// objectives.
	eliminatedBy map[string]string

	now func() time.Time
}

// NewGame creates a game in the waiting state with the creator seated.
func NewGame(creatorUserID, creatorName string, opts Options, seed uint64) (*Game, *Player, error) {
	if err := opts.Validate(); err != nil {
		return nil, nil, err
	}
	g := &Game{
		ID:           uuid.NewString(),
		Code:         joinCode(seed),
		Name:         opts.Name,
		Status:       StatusWaiting,
		Options:      opts,
		World:        ClassicWorld(),
		Seed:         seed,
		roller:       NewRoller(seed),
		eliminatedBy: make(map[string]string),
		now:          time.Now,
	}
	g.CreatedAt = g.now()
	creator, err := g.AddPlayer(creatorUserID, creatorName, false, "")
	if err != nil {
		return nil, nil, err
	}
	g.CreatorID = creator.ID
	return g, creator, nil
}

const codeLetters = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func joinCode(seed uint64) string {
	r := NewRoller(seed ^ 0x9e3779b97f4a7c15)
	var b strings.Builder
	for i := 0; i < 6; i++ {
		b.WriteByte(codeLetters[r.Intn(len(codeLetters))])
	}
	return b.String()
}

func (g *Game) player(id string) *Player {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// CurrentPlayer returns the player whose turn it is, or nil before start.
func (g *Game) CurrentPlayer() *Player {
	return g.player(g.Turn.PlayerID)
}

// AddPlayer seats a new player. Only legal while the game is waiting and has
// a free seat.
func (g *Game) AddPlayer(userID, name string, bot bool, botLevel string) (*Player, error) {
	if g.Status != StatusWaiting {
		return nil, illegalf("cannot join a game in state %s", g.Status)
	}
	if len(g.Players) >= g.Options.MaxPlayers {
		return nil, illegalf("game is full (%d players)", g.Options.MaxPlayers)
	}
	for _, p := range g.Players {
		if userID != "" && p.UserID == userID {
			return nil, illegalf("user already seated")
		}
	}
	p := &Player{
		ID:       uuid.NewString(),
		UserID:   userID,
		Name:     name,
		Bot:      bot,
		BotLevel: botLevel,
		Color:    playerColors[len(g.Players)%len(playerColors)],
		Seat:     len(g.Players),
		Status:   PlayerWaiting,
		JoinedAt: g.now(),
	}
	g.Players = append(g.Players, p)
	g.appendEvent(EventPlayerJoined, p.ID, JoinedPayload{
		PlayerID: p.ID, Name: p.Name, Color: p.Color, Bot: p.Bot,
	}, fmt.Sprintf("%s joined the game", p.Name))
	return p, nil
}

// RemovePlayer unseats a player before the game starts. After start, leaving
// is a forfeit.
func (g *Game) RemovePlayer(playerID string) error {
	if g.Status != StatusWaiting {
		return illegalf("cannot leave a game in state %s", g.Status)
	}
	if playerID == g.CreatorID {
		return illegalf("the creator cannot leave their own game")
	}
	for i, p := range g.Players {
		if p.ID == playerID {
			g.Players = append(g.Players[:i], g.Players[i+1:]...)
			for j := i; j < len(g.Players); j++ {
				g.Players[j].Seat = j
			}
			g.appendEvent(EventPlayerLeft, playerID, LeftPayload{PlayerID: playerID},
				fmt.Sprintf("%s left the game", p.Name))
			return nil
		}
	}
	return illegalf("player not in game")
}

// Start moves the game to in-progress: shuffles turn order, distributes
// territories and initial armies, deals objectives and opens the first
// player's deployment phase. Only the creator may start, with at least two
// players seated.
func (g *Game) Start(actorID string) ([]Event, error) {
	if g.Status != StatusWaiting {
		return nil, illegalf("cannot start a game in state %s", g.Status)
	}
	if actorID != g.CreatorID {
		return nil, illegalf("only the creator can start the game")
	}
	if len(g.Players) < 2 {
		return nil, illegalf("need at least 2 players, have %d", len(g.Players))
	}
	mark := g.seq

	// Random turn order.
	g.roller.Shuffle(len(g.Players), func(i, j int) {
		g.Players[i], g.Players[j] = g.Players[j], g.Players[i]
	})
	for i, p := range g.Players {
		p.Seat = i
		p.Status = PlayerActive
	}

	g.distributeTerritories()
	g.assignObjectives()
	g.Deck = NewDeck(g.World, g.roller)

	g.Status = StatusInProgress
	g.StartedAt = g.now()

	first := g.Players[0]
	g.Turn = Turn{Number: 1, PlayerID: first.ID, Phase: Deployment}
	first.TroopsToPlace = Reinforcements(g.World, first.ID)
	g.resetDeadline()

	seats := make([]string, len(g.Players))
	for i, p := range g.Players {
		seats[i] = p.ID
	}
	ownership := make(map[string]string, len(g.World.Territories))
	armies := make(map[string]int, len(g.World.Territories))
	for id, t := range g.World.Territories {
		ownership[id] = t.OwnerID
		armies[id] = t.Armies
	}
	g.appendEvent(EventGameStarted, actorID, StartedPayload{
		Seats:         seats,
		Ownership:     ownership,
		Armies:        armies,
		FirstPlayerID: first.ID,
		TroopsToPlace: first.TroopsToPlace,
	}, "game started")
	g.appendEvent(EventTurnChanged, first.ID, TurnPayload{
		Number: 1, PlayerID: first.ID, TroopsToPlace: first.TroopsToPlace,
	}, fmt.Sprintf("%s opens turn 1", first.Name))
	return g.Events(mark), nil
}

// distributeTerritories deals territories round-robin in shuffled order with
// one army each, then spreads every player's remaining initial allotment
// evenly across their own territories.
func (g *Game) distributeTerritories() {
	ids := g.World.TerritoryIDs()
	g.roller.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	for i, id := range ids {
		t := g.World.Territories[id]
		t.OwnerID = g.Players[i%len(g.Players)].ID
		t.Armies = 1
	}
	// Classic schedule: 40 initial armies for 2 players, 5 fewer per extra.
	initial := 40 - 5*(len(g.Players)-2)
	for _, p := range g.Players {
		owned := g.World.OwnedBy(p.ID)
		remaining := initial - len(owned)
		for i := 0; remaining > 0; i++ {
			owned[i%len(owned)].Armies++
			remaining--
		}
	}
}

// assignObjectives deals one objective to each player from the pool. A
// destruction objective naming its own holder degrades to the common
// objective.
func (g *Game) assignObjectives() {
	pool := objectivePool(g.World, g.Players, g.Options.CommonObjectiveCount)
	g.roller.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	for i, p := range g.Players {
		obj := commonObjective(g.Options.CommonObjectiveCount)
		if i < len(pool) && !(pool[i].Type == Destruction && pool[i].TargetPlayerID == p.ID) {
			obj = pool[i]
		}
		p.Objective = obj
	}
}

// Pause suspends an in-progress game.
func (g *Game) Pause(actorID string) ([]Event, error) {
	if g.Status != StatusInProgress {
		return nil, illegalf("cannot pause a game in state %s", g.Status)
	}
	mark := g.seq
	g.Status = StatusPaused
	g.appendEvent(EventGamePaused, actorID, LifecyclePayload{Status: g.Status}, "game paused")
	return g.Events(mark), nil
}

// Resume reopens a paused game and restarts the turn clock.
func (g *Game) Resume(actorID string) ([]Event, error) {
	if g.Status != StatusPaused {
		return nil, illegalf("cannot resume a game in state %s", g.Status)
	}
	mark := g.seq
	g.Status = StatusInProgress
	g.resetDeadline()
	g.appendEvent(EventGameResumed, actorID, LifecyclePayload{Status: g.Status}, "game resumed")
	return g.Events(mark), nil
}

// Forfeit eliminates a player voluntarily. Their territories are
// redistributed to the remaining players in seat order, keeping the
// invariant that eliminated players own nothing.
func (g *Game) Forfeit(playerID string) ([]Event, error) {
	if g.Status != StatusInProgress && g.Status != StatusPaused {
		return nil, illegalf("cannot forfeit a game in state %s", g.Status)
	}
	p := g.player(playerID)
	if p == nil {
		return nil, illegalf("player not in game")
	}
	if p.Status == PlayerEliminated {
		return nil, illegalf("player already eliminated")
	}
	mark := g.seq
	p.Status = PlayerEliminated
	p.TroopsToPlace = 0
	g.eliminatedBy[p.ID] = ""
	// Forfeited territories are redistributed to the remaining players in
	// seat order so no territory is ever owned by an eliminated player.
	alive := g.alivePlayers()
	reassigned := make(map[string]string)
	for i, t := range g.World.OwnedBy(p.ID) {
		t.OwnerID = alive[i%len(alive)].ID
		reassigned[t.ID] = t.OwnerID
	}
	g.Deck.Discard(p.Hand...)
	p.Hand = nil
	g.appendEvent(EventPlayerEliminated, p.ID, EliminationPayload{
		PlayerID:   p.ID,
		Reassigned: reassigned,
	}, fmt.Sprintf("%s forfeited", p.Name))

	// A forfeit can complete objectives: destruction objectives naming the
	// forfeiter fall back to their common condition, and the reassigned
	// territories count toward occupation.
	for _, q := range alive {
		g.checkObjectives(q)
		if g.Status == StatusFinished {
			return g.Events(mark), nil
		}
	}

	if len(alive) == 1 {
		g.declareWinner(alive[0])
	} else if g.Turn.PlayerID == p.ID {
		// Advance even while paused, or the turn would resume belonging to
		// an eliminated player who can never close it.
		g.advanceTurn()
	}
	return g.Events(mark), nil
}

func (g *Game) alivePlayers() []*Player {
	var alive []*Player
	for _, p := range g.Players {
		if p.Status != PlayerEliminated {
			alive = append(alive, p)
		}
	}
	return alive
}

func (g *Game) resetDeadline() {
	if g.Options.TurnTimeLimit > 0 {
		g.Turn.Deadline = g.now().Add(g.Options.TurnTimeLimit)
	} else {
		g.Turn.Deadline = time.Time{}
	}
}

func (g *Game) declareWinner(p *Player) {
	p.Status = PlayerWinner
	g.Status = StatusFinished
	g.WinnerID = p.ID
	g.FinishedAt = g.now()
	payload := VictoryPayload{PlayerID: p.ID}
	if p.Objective != nil {
		payload.ObjectiveID = p.Objective.ID
		payload.Description = p.Objective.Description
	}
	g.appendEvent(EventPlayerWon, p.ID, payload, fmt.Sprintf("%s wins the game", p.Name))
	g.appendEvent(EventGameFinished, p.ID, LifecyclePayload{Status: StatusFinished}, "game finished")
}

// NoteTurnTimeout records that the current turn's clock elapsed and the
// engine is acting for the idle player.
func (g *Game) NoteTurnTimeout() {
	p := g.CurrentPlayer()
	if p == nil {
		return
	}
	g.appendEvent(EventTurnTimeout, p.ID, nil,
		fmt.Sprintf("%s ran out of time", p.Name))
	// Push the deadline out so a stalled autopilot cannot fire the timeout
	// again on the very next tick.
	g.resetDeadline()
}

// Victory returns the id of the first player in seat order whose objective
// is achieved, or "".
func (g *Game) Victory() string {
	for _, p := range g.Players {
		if p.Objective != nil && p.Objective.Achieved {
			return p.ID
		}
	}
	return ""
}
