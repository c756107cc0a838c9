package game

// Reinforcements computes the troops a player places at the start of a
// deployment phase: max(3, owned/3) plus the bonus of every continent the
// player fully controls. Pure function of ownership; callable any number of
// times without touching the game.
func Reinforcements(world *WorldMap, playerID string) int {
	troops := max(3, world.OwnedCount(playerID)/3)
	for _, c := range world.Continents {
		if world.ContinentOwner(c.ID) == playerID {
			troops += c.Bonus
		}
	}
	return troops
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
