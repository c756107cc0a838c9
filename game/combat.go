package game

// CombatResult is the outcome of one combat resolution. It is always
// returned, conquering or not; partial combat is not an error.
type CombatResult struct {
	AttackerRolls     []int
	DefenderRolls     []int
	AttackerLosses    int
	DefenderLosses    int
	AttackerRemaining int
	DefenderRemaining int
	Conquered         bool
	ArmiesMoved       int
}

// resolveCombat rolls one round of dice between attacker and defender and
// applies the losses. attackingArmies is the committed stack, already
// validated to leave at least one army behind.
//
// Tie convention: the defender wins ties. On equal top dice the attacker
// loses the army.
func resolveCombat(roller *Roller, attacker, defender *Territory, attackingArmies, attackerDice, defenderDice int) CombatResult {
	attackerDice = min(attackerDice, min(3, attackingArmies))
	defenderDice = min(defenderDice, min(2, defender.Armies))

	res := CombatResult{
		AttackerRolls: roller.Roll(attackerDice),
		DefenderRolls: roller.Roll(defenderDice),
	}

	res.AttackerLosses, res.DefenderLosses = DetermineLosses(res.AttackerRolls, res.DefenderRolls)

	attacker.Armies -= res.AttackerLosses
	defender.Armies -= res.DefenderLosses

	if defender.Armies == 0 {
		res.Conquered = true
		// Survivors of the committed stack occupy the territory.
		res.ArmiesMoved = max(1, attackingArmies-res.AttackerLosses)
		defender.OwnerID = attacker.OwnerID
		attacker.Armies -= res.ArmiesMoved
		defender.Armies = res.ArmiesMoved
	}

	res.AttackerRemaining = attacker.Armies
	res.DefenderRemaining = defender.Armies
	return res
}

// DetermineLosses compares rolls pairwise from the top. The rolls must
// already be sorted descending. Higher value wins the pair; the defender
// wins ties.
func DetermineLosses(attackerRolls, defenderRolls []int) (attackerLosses, defenderLosses int) {
	battles := min(len(attackerRolls), len(defenderRolls))
	for i := 0; i < battles; i++ {
		if attackerRolls[i] > defenderRolls[i] {
			defenderLosses++
		} else {
			attackerLosses++
		}
	}
	return attackerLosses, defenderLosses
}
