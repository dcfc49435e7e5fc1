package cricket

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyRoleAliases(t *testing.T) {
	tests := []struct {
		raw  string
		want Role
	}{
		{"Batsman", RoleBatsman},
		{"batter", RoleBatsman},
		{"  BOWLER ", RoleBowler},
		{"Spinner", RoleBowler},
		{"All-Rounder", RoleAllRounder},
		{"allrounder", RoleAllRounder},
		{"WK-Batsman", RoleWicketKeeper},
		{"Wicket Keeper", RoleWicketKeeper},
		{"bat", RoleBatsman},
		{"AR", RoleAllRounder},
		{"wk", RoleWicketKeeper},
	}

	for _, tc := range tests {
		role, ok := ClassifyRole(tc.raw)
		assert.True(t, ok, "label %q should be recognized", tc.raw)
		assert.Equal(t, tc.want, role, "label %q", tc.raw)
	}
}

func TestClassifyRoleCanonicalCodes(t *testing.T) {
	for _, r := range Roles {
		role, ok := ClassifyRole(string(r))
		assert.True(t, ok)
		assert.Equal(t, r, role)
	}
}

func TestClassifyRoleUnknown(t *testing.T) {
	_, ok := ClassifyRole("mystery")
	assert.False(t, ok)

	_, ok = ClassifyRole("")
	assert.False(t, ok)
}

func TestInferRole(t *testing.T) {
	cfg := DefaultClassifierConfig()

	heavyBat := BattingAggregates{Matches: 40, Runs: 1200}
	heavyBowl := BowlingAggregates{Matches: 40, Wickets: 45}

	assert.Equal(t, RoleAllRounder, InferRole(heavyBat, heavyBowl, cfg))
	assert.Equal(t, RoleBowler, InferRole(BattingAggregates{Runs: 80}, heavyBowl, cfg))
	assert.Equal(t, RoleBatsman, InferRole(heavyBat, BowlingAggregates{Wickets: 2}, cfg))
	assert.Equal(t, RoleBatsman, InferRole(BattingAggregates{}, BowlingAggregates{}, cfg))
}

func TestResolveRolePrefersLabel(t *testing.T) {
	cfg := DefaultClassifierConfig()
	// A recognized label wins even when the stat profile says otherwise.
	role := ResolveRole("bowler", BattingAggregates{Runs: 2000}, BowlingAggregates{}, cfg)
	assert.Equal(t, RoleBowler, role)

	// Unrecognized labels fall through to the heuristic.
	role = ResolveRole("unknown", BattingAggregates{Runs: 300}, BowlingAggregates{Wickets: 20}, cfg)
	assert.Equal(t, RoleAllRounder, role)
}

func TestStrategyValid(t *testing.T) {
	for _, s := range Strategies {
		assert.True(t, s.Valid())
	}
	assert.False(t, Strategy("YOLO").Valid())
	assert.False(t, Strategy("").Valid())
}

func TestMatchContextOpponent(t *testing.T) {
	ctx := MatchContext{Team1: "Mumbai Indians", Team2: "Chennai Super Kings"}
	assert.Equal(t, "Chennai Super Kings", ctx.Opponent("Mumbai Indians"))
	assert.Equal(t, "Mumbai Indians", ctx.Opponent("Chennai Super Kings"))
}
