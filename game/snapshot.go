package game

import "time"

// Snapshot is a read-only copy of the full game state, taken for reconnect,
// resync and persistence. Combined with the event tail past Seq it is
// sufficient to resume a session.
type Snapshot struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	CreatorID string    `json:"creatorId"`
	Status    Status    `json:"status"`
	Options   Options   `json:"options"`
	Seq       uint64    `json:"seq"`
	Trades    int       `json:"trades"`
	WinnerID  string    `json:"winnerId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`

	Players     []PlayerView    `json:"players"`
	Territories []TerritoryView `json:"territories"`
	Continents  []ContinentView `json:"continents"`
	Turn        TurnView        `json:"turn"`
}

type PlayerView struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Color         string         `json:"color"`
	Bot           bool           `json:"bot,omitempty"`
	Seat          int            `json:"seat"`
	Status        PlayerStatus   `json:"status"`
	TroopsToPlace int            `json:"troopsToPlace"`
	Cards         []Card         `json:"cards"`
	Objective     *ObjectiveView `json:"objective,omitempty"`
}

type ObjectiveView struct {
	ID          string        `json:"id"`
	Description string        `json:"description"`
	Type        ObjectiveType `json:"type"`
	Achieved    bool          `json:"achieved"`
}

type TerritoryView struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	ContinentID string   `json:"continentId"`
	OwnerID     string   `json:"ownerId,omitempty"`
	Armies      int      `json:"armies"`
	AdjacentIDs []string `json:"adjacentIds"`
	X           int      `json:"x"`
	Y           int      `json:"y"`
}

type ContinentView struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Bonus        int      `json:"bonus"`
	TerritoryIDs []string `json:"territoryIds"`
}

type TurnView struct {
	Number   int       `json:"number"`
	PlayerID string    `json:"playerId,omitempty"`
	Phase    Phase     `json:"phase,omitempty"`
	Deadline time.Time `json:"deadline,omitempty"`
}

// Snapshot copies the current state. The deck order stays hidden; hands are
// included and it is the transport's business to filter them per viewer.
func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		ID:        g.ID,
		Code:      g.Code,
		Name:      g.Name,
		CreatorID: g.CreatorID,
		Status:    g.Status,
		Options:   g.Options,
		Seq:       g.seq,
		Trades:    g.Trades,
		WinnerID:  g.WinnerID,
		CreatedAt: g.CreatedAt,
		Turn: TurnView{
			Number:   g.Turn.Number,
			PlayerID: g.Turn.PlayerID,
			Phase:    g.Turn.Phase,
			Deadline: g.Turn.Deadline,
		},
	}
	for _, p := range g.Players {
		pv := PlayerView{
			ID:            p.ID,
			Name:          p.Name,
			Color:         p.Color,
			Bot:           p.Bot,
			Seat:          p.Seat,
			Status:        p.Status,
			TroopsToPlace: p.TroopsToPlace,
			Cards:         append([]Card(nil), p.Hand...),
		}
		if p.Objective != nil {
			pv.Objective = &ObjectiveView{
				ID:          p.Objective.ID,
				Description: p.Objective.Description,
				Type:        p.Objective.Type,
				Achieved:    p.Objective.Achieved,
			}
		}
		s.Players = append(s.Players, pv)
	}
	for _, id := range g.World.TerritoryIDs() {
		t := g.World.Territories[id]
		s.Territories = append(s.Territories, TerritoryView{
			ID:          t.ID,
			Name:        t.Name,
			ContinentID: t.ContinentID,
			OwnerID:     t.OwnerID,
			Armies:      t.Armies,
			AdjacentIDs: append([]string(nil), t.AdjacentIDs...),
			X:           t.X,
			Y:           t.Y,
		})
	}
	for _, c := range g.World.Continents {
		s.Continents = append(s.Continents, ContinentView{
			ID:           c.ID,
			Name:         c.Name,
			Bonus:        c.Bonus,
			TerritoryIDs: append([]string(nil), c.TerritoryIDs...),
		})
	}
	return s
}

// PlayerByID finds a player view in the snapshot.
func (s *Snapshot) PlayerByID(id string) *PlayerView {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i]
		}
	}
	return nil
}

// TerritoryByID finds a territory view in the snapshot.
func (s *Snapshot) TerritoryByID(id string) *TerritoryView {
	for i := range s.Territories {
		if s.Territories[i].ID == id {
			return &s.Territories[i]
		}
	}
	return nil
}
