package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOptionsValidate(t *testing.T) {
	require.NoError(t, DefaultOptions().Validate())

	cases := []struct {
		name   string
		mutate func(*Options)
	}{
		{"too many players", func(o *Options) { o.MaxPlayers = 7 }},
		{"too few players", func(o *Options) { o.MaxPlayers = 1 }},
		{"negative time limit", func(o *Options) { o.TurnTimeLimit = -1 }},
		{"threshold below a set", func(o *Options) { o.TradeThreshold = 2 }},
		{"empty progression", func(o *Options) { o.TradeProgression = nil }},
		{"non-increasing progression", func(o *Options) { o.TradeProgression = []int{4, 4, 8} }},
		{"zero trade step", func(o *Options) { o.TradeStep = 0 }},
		{"zero common objective", func(o *Options) { o.CommonObjectiveCount = 0 }},
		{"unknown special rule", func(o *Options) { o.SpecialRules = []SpecialRule{"TELEPORT"} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := DefaultOptions()
			tc.mutate(&opts)
			err := opts.Validate()
			require.Error(t, err)
			require.Equal(t, ErrInvalidConfiguration, CodeOf(err))
		})
	}

	t.Run("no time limit is allowed", func(t *testing.T) {
		opts := DefaultOptions()
		opts.TurnTimeLimit = 0
		require.NoError(t, opts.Validate())
	})
}

func TestHasRule(t *testing.T) {
	opts := DefaultOptions()
	require.False(t, opts.HasRule(RulePactsAllowed))
	opts.SpecialRules = []SpecialRule{RulePactsAllowed}
	require.True(t, opts.HasRule(RulePactsAllowed))
	require.False(t, opts.HasRule(RuleAutoSkipAttack))
}
