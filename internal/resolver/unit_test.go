package resolver_test

import (
	"context"
	"testing"

	"github.com/hllmod/reportbot/internal/adminapi"
	"github.com/hllmod/reportbot/internal/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticDetailed map[string]adminapi.DetailedPlayer

func (s staticDetailed) DetailedRoster(context.Context) (map[string]adminapi.DetailedPlayer, error) {
	return s, nil
}

func TestIsUnitKeyword(t *testing.T) {
	t.Parallel()

	for _, word := range []string{"able", "Baker", "COMMANDER", "x-ray", "zebra"} {
		assert.True(t, resolver.IsUnitKeyword(word), word)
	}

	for _, word := range []string{"command", "alpha", "", "kevin"} {
		assert.False(t, resolver.IsUnitKeyword(word), word)
	}
}

func TestUnitName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "command", resolver.UnitName("Commander"))
	assert.Equal(t, "able", resolver.UnitName("ABLE"))
}

func TestFindUnitLeader(t *testing.T) {
	t.Parallel()

	roster := map[string]adminapi.DetailedPlayer{
		"1": {PlayerID: "1", Name: "Rifle", Team: "Allies", UnitName: "able", Role: "rifleman"},
		"2": {PlayerID: "2", Name: "Boss", Team: "Allies", UnitName: "able", Role: "officer"},
		"3": {PlayerID: "3", Name: "Enemy", Team: "Axis", UnitName: "able", Role: "officer"},
		"4": {PlayerID: "4", Name: "Chief", Team: "Allies", UnitName: "command", Role: "armycommander"},
	}

	leader, ok := resolver.FindUnitLeader(roster, "allies", "Able")
	require.True(t, ok)
	assert.Equal(t, "2", leader.PlayerID)

	leader, ok = resolver.FindUnitLeader(roster, "Allies", "commander")
	require.True(t, ok)
	assert.Equal(t, "4", leader.PlayerID)

	_, ok = resolver.FindUnitLeader(roster, "Axis", "baker")
	assert.False(t, ok)
}

func TestResolveUnit(t *testing.T) {
	t.Parallel()

	roster := staticDetailed{
		"5": {PlayerID: "5", Name: "Spot", Team: "Axis", UnitName: "dog", Role: "Spotter"},
	}

	leader, err := resolver.ResolveUnit(context.Background(), roster, "Axis", "dog")
	require.NoError(t, err)
	assert.Equal(t, "Spot", leader.Name)

	_, err = resolver.ResolveUnit(context.Background(), roster, "Allies", "dog")
	require.ErrorIs(t, err, resolver.ErrPlayerNotFound)
}
