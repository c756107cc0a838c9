package game

// Territory is an atomic ownable region of the map. Owner "" means unowned,
// which only occurs before the game starts.
type Territory struct {
	ID          string
	Name        string
	ContinentID string
	OwnerID     string
	Armies      int
	AdjacentIDs []string
	X, Y        int
}

// Continent is a fixed group of territories granting a reinforcement bonus
// when fully controlled by one player. Control is derived, never stored.
type Continent struct {
	ID           string
	Name         string
	Bonus        int
	TerritoryIDs []string
}

// WorldMap holds the territories and continents of one game. Each game owns
// its map copy; adjacency is fixed and symmetric, ownership and armies are
// mutated by the state machine only.
type WorldMap struct {
	Territories map[string]*Territory
	Continents  map[string]*Continent
	// order preserves the declaration order for deterministic iteration
	order []string
}

// NewWorldMap creates an empty map.
func NewWorldMap() *WorldMap {
	return &WorldMap{
		Territories: make(map[string]*Territory),
		Continents:  make(map[string]*Continent),
	}
}

// AddTerritory adds a territory and registers it with its continent.
func (w *WorldMap) AddTerritory(t *Territory) {
	w.Territories[t.ID] = t
	w.order = append(w.order, t.ID)
	if c, ok := w.Continents[t.ContinentID]; ok {
		c.TerritoryIDs = append(c.TerritoryIDs, t.ID)
	}
}

// AddContinent adds a continent.
func (w *WorldMap) AddContinent(c *Continent) {
	w.Continents[c.ID] = c
}

// AddBorder adds a bidirectional border between two territories.
func (w *WorldMap) AddBorder(id1, id2 string) {
	t1, t2 := w.Territories[id1], w.Territories[id2]
	if t1 == nil || t2 == nil {
		return
	}
	if !contains(t1.AdjacentIDs, id2) {
		t1.AdjacentIDs = append(t1.AdjacentIDs, id2)
	}
	if !contains(t2.AdjacentIDs, id1) {
		t2.AdjacentIDs = append(t2.AdjacentIDs, id1)
	}
}

// TerritoryIDs returns all territory ids in declaration order.
func (w *WorldMap) TerritoryIDs() []string {
	ids := make([]string, len(w.order))
	copy(ids, w.order)
	return ids
}

// AreAdjacent checks whether two territories share a border.
func (w *WorldMap) AreAdjacent(id1, id2 string) bool {
	t, ok := w.Territories[id1]
	if !ok {
		return false
	}
	return contains(t.AdjacentIDs, id2)
}

// OwnedBy returns the territories owned by a player, in declaration order.
func (w *WorldMap) OwnedBy(playerID string) []*Territory {
	var owned []*Territory
	for _, id := range w.order {
		if t := w.Territories[id]; t.OwnerID == playerID {
			owned = append(owned, t)
		}
	}
	return owned
}

// OwnedCount returns how many territories a player owns.
func (w *WorldMap) OwnedCount(playerID string) int {
	n := 0
	for _, t := range w.Territories {
		if t.OwnerID == playerID {
			n++
		}
	}
	return n
}

// ContinentOwner returns the player owning every territory of the continent,
// or "" if control is split.
func (w *WorldMap) ContinentOwner(continentID string) string {
	c, ok := w.Continents[continentID]
	if !ok || len(c.TerritoryIDs) == 0 {
		return ""
	}
	owner := w.Territories[c.TerritoryIDs[0]].OwnerID
	for _, id := range c.TerritoryIDs[1:] {
		if w.Territories[id].OwnerID != owner {
			return ""
		}
	}
	return owner
}

// Connected reports whether fromID can reach toID through territories owned
// by playerID. Just BFS.
func (w *WorldMap) Connected(fromID, toID, playerID string) bool {
	if fromID == toID {
		return true
	}
	visited := make(map[string]bool)
	queue := []string{fromID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true
		for _, adjID := range w.Territories[current].AdjacentIDs {
			if w.Territories[adjID].OwnerID != playerID {
				continue
			}
			if adjID == toID {
				return true
			}
			if !visited[adjID] {
				queue = append(queue, adjID)
			}
		}
	}
	return false
}

// Copy returns a deep copy of the map. Used for snapshots so callers can
// never mutate live state.
func (w *WorldMap) Copy() *WorldMap {
	cp := NewWorldMap()
	for _, c := range w.Continents {
		cp.Continents[c.ID] = &Continent{
			ID:    c.ID,
			Name:  c.Name,
			Bonus: c.Bonus,
		}
	}
	for _, id := range w.order {
		t := w.Territories[id]
		adj := make([]string, len(t.AdjacentIDs))
		copy(adj, t.AdjacentIDs)
		cp.AddTerritory(&Territory{
			ID:          t.ID,
			Name:        t.Name,
			ContinentID: t.ContinentID,
			OwnerID:     t.OwnerID,
			Armies:      t.Armies,
			AdjacentIDs: adj,
			X:           t.X,
			Y:           t.Y,
		})
	}
	return cp
}

func contains(slice []string, item string) bool {
	for _, v := range slice {
		if v == item {
			return true
		}
	}
	return false
}
