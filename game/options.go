package game

import "time"

// SpecialRule is an optional rule variant toggled at game creation.
type SpecialRule string

const (
	// RulePactsAllowed lets players declare non-aggression pacts.
	RulePactsAllowed SpecialRule = "PACTS_ALLOWED"
	// RuleAutoSkipAttack skips the attack phase automatically when the
	// current player has no legal attack. Off by default: ending the phase
	// normally requires an explicit action.
	RuleAutoSkipAttack SpecialRule = "AUTO_SKIP_ATTACK"
)

// Options configures a game at creation time.
type Options struct {
	Name          string
	MaxPlayers    int
	TurnTimeLimit time.Duration // 0 means no limit
	ChatEnabled   bool
	SpecialRules  []SpecialRule

	// TradeThreshold is the hand size at which trading becomes mandatory.
	TradeThreshold int
	// TradeProgression is the troop bonus per game-wide trade; after the
	// table each trade is worth TradeStep more than the previous.
	TradeProgression []int
	TradeStep        int
	// CommonObjectiveCount is the territory count of the shared fallback
	// objective.
	CommonObjectiveCount int
}

// DefaultOptions returns the standard rule set.
func DefaultOptions() Options {
	return Options{
		MaxPlayers:           6,
		TurnTimeLimit:        2 * time.Minute,
		ChatEnabled:          true,
		TradeThreshold:       5,
		TradeProgression:     []int{4, 6, 8, 10, 12, 15},
		TradeStep:            5,
		CommonObjectiveCount: 30,
	}
}

// HasRule reports whether a special rule is enabled.
func (o Options) HasRule(r SpecialRule) bool {
	for _, sr := range o.SpecialRules {
		if sr == r {
			return true
		}
	}
	return false
}

// Validate checks the options at game creation. Any violation is an
// INVALID_CONFIGURATION error; a bad configuration never produces a game.
func (o Options) Validate() error {
	if o.MaxPlayers < 2 || o.MaxPlayers > 6 {
		return invalidConfigf("max players must be between 2 and 6, got %d", o.MaxPlayers)
	}
	if o.TurnTimeLimit < 0 {
		return invalidConfigf("turn time limit must not be negative")
	}
	if o.TradeThreshold < 3 {
		return invalidConfigf("trade threshold must be at least 3, got %d", o.TradeThreshold)
	}
	if len(o.TradeProgression) == 0 {
		return invalidConfigf("trade progression must not be empty")
	}
	prev := 0
	for _, b := range o.TradeProgression {
		if b <= prev {
			return invalidConfigf("trade progression must be strictly increasing")
		}
		prev = b
	}
	if o.TradeStep <= 0 {
		return invalidConfigf("trade step must be positive, got %d", o.TradeStep)
	}
	if o.CommonObjectiveCount < 1 {
		return invalidConfigf("common objective territory count must be positive")
	}
	for _, r := range o.SpecialRules {
		switch r {
		case RulePactsAllowed, RuleAutoSkipAttack:
		default:
			return invalidConfigf("unknown special rule %q", r)
		}
	}
	return nil
}
