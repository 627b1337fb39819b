package gamification

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComposeMultiplier(t *testing.T) {
	require.Equal(t, NeutralMultiplier, ComposeMultiplier(nil))
	require.InDelta(t, 1.25, ComposeMultiplier([]float64{0.1, 0.15}), 1e-9)
	require.Equal(t, NeutralMultiplier, ComposeMultiplier([]float64{-0.5}))
}

func TestNextLevelAdvancesOneStep(t *testing.T) {
	levels := []LevelThreshold{
		{Level: 3, MinPoints: 1500, MinSkills: 4, Title: "Master"},
		{Level: 2, MinPoints: 500, MinSkills: 2, Title: "Adept"},
	}
	SortLevels(levels)
	require.Equal(t, 2, levels[0].Level)

	next, ok := NextLevel(1, 5000, 10, levels)
	require.True(t, ok)
	require.Equal(t, 2, next.Level)
	require.Equal(t, "Adept", next.Title)

	_, ok = NextLevel(1, 5000, 1, levels)
	require.False(t, ok)

	_, ok = NextLevel(3, 9999, 99, levels)
	require.False(t, ok)
	require.Equal(t, 3, MaxLevel(levels))
}

func TestMedal(t *testing.T) {
	require.Equal(t, "🥇", Medal(1))
	require.Equal(t, "🥈", Medal(2))
	require.Equal(t, "🥉", Medal(3))
	require.Empty(t, Medal(4))
}
