package game

import (
	"fmt"

	"github.com/google/uuid"
)

// ObjectiveType classifies win conditions.
type ObjectiveType string

const (
	// Occupation requires controlling a set of continents plus a number of
	// extra territories anywhere.
	Occupation ObjectiveType = "OCCUPATION"
	// Destruction requires eliminating a specific player. If someone else
	// eliminates the target, the holder falls back to the common condition.
	Destruction ObjectiveType = "DESTRUCTION"
	// Common requires owning a fixed number of territories.
	Common ObjectiveType = "COMMON"
)

// Objective is a player-specific win condition. Achieved is monotonic: once
// true it never reverts, even if the board state later changes.
type Objective struct {
	ID          string
	Description string
	Type        ObjectiveType

	Continents       []string // occupation: continents to control
	ExtraTerritories int      // occupation: additional territories anywhere
	TerritoryCount   int      // common: territories to own
	TargetPlayerID   string   // destruction: player to eliminate

	Achieved bool
}

// evaluate checks the completion predicate against the current board for the
// holder. It never un-sets Achieved.
func (o *Objective) evaluate(g *Game, holderID string) bool {
	if o.Achieved {
		return true
	}
	switch o.Type {
	case Occupation:
		for _, cid := range o.Continents {
			if g.World.ContinentOwner(cid) != holderID {
				return false
			}
		}
		if o.ExtraTerritories > 0 {
			inContinents := 0
			for _, cid := range o.Continents {
				inContinents += len(g.World.Continents[cid].TerritoryIDs)
			}
			if g.World.OwnedCount(holderID)-inContinents < o.ExtraTerritories {
				return false
			}
		}
		o.Achieved = true
	case Destruction:
		target := g.player(o.TargetPlayerID)
		if target == nil || target.Status != PlayerEliminated {
			return false
		}
		// Only counts if the holder delivered the final blow; otherwise the
		// objective degrades to the common condition.
		if g.eliminatedBy[o.TargetPlayerID] == holderID {
			o.Achieved = true
			break
		}
		if g.World.OwnedCount(holderID) >= g.Options.CommonObjectiveCount {
			o.Achieved = true
		}
	case Common:
		if g.World.OwnedCount(holderID) >= o.TerritoryCount {
			o.Achieved = true
		}
	}
	return o.Achieved
}

// objectivePool builds the objectives that can be dealt at game start:
// occupation of continent pairs and destruction of each opponent. The common
// objective is the fallback when a dealt objective is unusable (e.g. a
// destruction objective targeting its own holder).
func objectivePool(world *WorldMap, players []*Player, commonCount int) []*Objective {
	var pool []*Objective
	pairs := [][2]string{
		{"north-america", "africa"},
		{"north-america", "oceania"},
		{"asia", "south-america"},
		{"asia", "africa"},
		{"europe", "south-america"},
		{"europe", "oceania"},
	}
	for _, pair := range pairs {
		a, b := world.Continents[pair[0]], world.Continents[pair[1]]
		if a == nil || b == nil {
			continue
		}
		pool = append(pool, &Objective{
			ID:               uuid.NewString(),
			Type:             Occupation,
			Continents:       []string{a.ID, b.ID},
			ExtraTerritories: 4,
			Description:      fmt.Sprintf("Conquer %s and %s plus 4 other territories", a.Name, b.Name),
		})
	}
	for _, p := range players {
		pool = append(pool, &Objective{
			ID:             uuid.NewString(),
			Type:           Destruction,
			TargetPlayerID: p.ID,
			Description:    fmt.Sprintf("Destroy the %s army", p.Color),
		})
	}
	return pool
}

func commonObjective(count int) *Objective {
	return &Objective{
		ID:             uuid.NewString(),
		Type:           Common,
		TerritoryCount: count,
		Description:    fmt.Sprintf("Occupy %d territories", count),
	}
}
