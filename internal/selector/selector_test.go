package selector

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crickwise/dream11-optimizer/internal/cricket"
)

const (
	teamMI  = "Mumbai Indians"
	teamCSK = "Chennai Super Kings"
)

func testCtx() cricket.MatchContext {
	return cricket.MatchContext{
		Team1:     teamMI,
		Team2:     teamCSK,
		Venue:     "Wankhede Stadium",
		PitchType: cricket.PitchBalanced,
	}
}

func scored(id, team string, role cricket.Role, cost, points, consistency float64) cricket.ScoredPlayer {
	return cricket.ScoredPlayer{
		PlayerRecord: cricket.PlayerRecord{
			ID:   id,
			Name: id,
			Team: team,
			Role: role,
			Cost: cost,
		},
		ExpectedPoints:   points,
		ConsistencyIndex: consistency,
	}
}

// testPool is a realistic 22-player match pool: two full squads covering
// every role, priced so lineups exist at the default budget.
func testPool() []cricket.ScoredPlayer {
	return []cricket.ScoredPlayer{
		scored("mi-wk1", teamMI, cricket.RoleWicketKeeper, 9.0, 55, 7.0),
		scored("mi-wk2", teamMI, cricket.RoleWicketKeeper, 6.5, 35, 5.0),
		scored("mi-bat1", teamMI, cricket.RoleBatsman, 10.5, 70, 8.0),
		scored("mi-bat2", teamMI, cricket.RoleBatsman, 9.0, 60, 6.0),
		scored("mi-bat3", teamMI, cricket.RoleBatsman, 7.5, 45, 7.5),
		scored("mi-bat4", teamMI, cricket.RoleBatsman, 6.0, 30, 4.0),
		scored("mi-ar1", teamMI, cricket.RoleAllRounder, 9.5, 65, 6.5),
		scored("mi-ar2", teamMI, cricket.RoleAllRounder, 7.0, 40, 5.5),
		scored("mi-bwl1", teamMI, cricket.RoleBowler, 9.0, 58, 7.0),
		scored("mi-bwl2", teamMI, cricket.RoleBowler, 7.5, 42, 8.0),
		scored("mi-bwl3", teamMI, cricket.RoleBowler, 6.0, 28, 4.5),

		scored("csk-wk1", teamCSK, cricket.RoleWicketKeeper, 8.5, 50, 6.0),
		scored("csk-wk2", teamCSK, cricket.RoleWicketKeeper, 6.0, 30, 5.0),
		scored("csk-bat1", teamCSK, cricket.RoleBatsman, 10.0, 68, 7.0),
		scored("csk-bat2", teamCSK, cricket.RoleBatsman, 8.5, 55, 8.5),
		scored("csk-bat3", teamCSK, cricket.RoleBatsman, 7.0, 40, 6.0),
		scored("csk-bat4", teamCSK, cricket.RoleBatsman, 5.5, 25, 3.5),
		scored("csk-ar1", teamCSK, cricket.RoleAllRounder, 9.0, 60, 7.0),
		scored("csk-ar2", teamCSK, cricket.RoleAllRounder, 6.5, 35, 6.0),
		scored("csk-bwl1", teamCSK, cricket.RoleBowler, 8.5, 52, 6.5),
		scored("csk-bwl2", teamCSK, cricket.RoleBowler, 7.0, 38, 7.5),
		scored("csk-bwl3", teamCSK, cricket.RoleBowler, 5.5, 24, 5.0),
	}
}

func mustSelect(t *testing.T, cfg Config, pool []cricket.ScoredPlayer) *cricket.Lineup {
	t.Helper()
	sel, err := New(cfg)
	require.NoError(t, err)
	lineup, err := sel.Select(pool, testCtx())
	require.NoError(t, err)
	return lineup
}

func TestSelectProducesValidLineupPerStrategy(t *testing.T) {
	for _, strategy := range cricket.Strategies {
		t.Run(string(strategy), func(t *testing.T) {
			cfg := Config{Strategy: strategy}
			lineup := mustSelect(t, cfg, testPool())

			assert.Equal(t, strategy, lineup.Strategy)
			assert.Len(t, lineup.Players, DefaultTeamSize)
			assert.LessOrEqual(t, lineup.TotalCost, DefaultBudget)
			assert.NoError(t, ValidateLineup(lineup, cfg, testCtx()))
		})
	}
}

func TestSelectDeterministic(t *testing.T) {
	cfg := Config{Strategy: cricket.StrategyBalanced}

	first := mustSelect(t, cfg, testPool())
	second := mustSelect(t, cfg, testPool())

	assert.True(t, reflect.DeepEqual(first, second), "identical inputs must produce identical lineups")
}

func TestSelectDeterministicAcrossPoolOrder(t *testing.T) {
	cfg := Config{Strategy: cricket.StrategyAggressive}

	pool := testPool()
	reversed := make([]cricket.ScoredPlayer, len(pool))
	for i, p := range pool {
		reversed[len(pool)-1-i] = p
	}

	first := mustSelect(t, cfg, pool)
	second := mustSelect(t, cfg, reversed)

	assert.True(t, reflect.DeepEqual(first, second), "pool order must not change the lineup")
}

func TestSelectCaptaincy(t *testing.T) {
	lineup := mustSelect(t, Config{Strategy: cricket.StrategyAggressive}, testPool())

	require.NotEmpty(t, lineup.CaptainID)
	require.NotEmpty(t, lineup.ViceCaptainID)
	assert.NotEqual(t, lineup.CaptainID, lineup.ViceCaptainID)

	// Members are ordered by expected points, so captaincy lands on the top
	// two slots with the 2x and 1.5x multipliers applied.
	captain := lineup.Players[0]
	vice := lineup.Players[1]
	assert.True(t, captain.IsCaptain)
	assert.True(t, vice.IsViceCaptain)
	assert.Equal(t, captain.Player.ID, lineup.CaptainID)
	assert.Equal(t, vice.Player.ID, lineup.ViceCaptainID)
	assert.InDelta(t, captain.Player.ExpectedPoints*2.0, captain.ExpectedPoints, 1e-9)
	assert.InDelta(t, vice.Player.ExpectedPoints*1.5, vice.ExpectedPoints, 1e-9)

	var total float64
	for _, slot := range lineup.Players {
		total += slot.ExpectedPoints
	}
	assert.InDelta(t, total, lineup.ExpectedPoints, 1e-9)
}

func TestSelectBudgetMonotonic(t *testing.T) {
	sumPoints := func(lineup *cricket.Lineup) float64 {
		var total float64
		for _, slot := range lineup.Players {
			total += slot.Player.ExpectedPoints
		}
		return total
	}

	tight := mustSelect(t, Config{Budget: 85, Strategy: cricket.StrategyAggressive}, testPool())
	loose := mustSelect(t, Config{Budget: 100, Strategy: cricket.StrategyAggressive}, testPool())

	assert.LessOrEqual(t, tight.TotalCost, 85.0)
	assert.LessOrEqual(t, loose.TotalCost, 100.0)
	assert.GreaterOrEqual(t, sumPoints(loose), sumPoints(tight),
		"raising the budget must never produce a weaker lineup")
}

func TestSelectRiskAverseFavorsConsistency(t *testing.T) {
	aggressive := mustSelect(t, Config{Strategy: cricket.StrategyAggressive}, testPool())
	riskAverse := mustSelect(t, Config{Strategy: cricket.StrategyRiskAverse}, testPool())

	meanCI := func(lineup *cricket.Lineup) float64 {
		var sum float64
		for _, slot := range lineup.Players {
			sum += slot.Player.ConsistencyIndex
		}
		return sum / float64(len(lineup.Players))
	}

	assert.GreaterOrEqual(t, meanCI(riskAverse), meanCI(aggressive))
}

func TestSelectHonorsMaxPerTeam(t *testing.T) {
	cfg := Config{Strategy: cricket.StrategyBalanced, MaxPerTeam: 6}
	lineup := mustSelect(t, cfg, testPool())

	for team, count := range lineup.TeamCounts {
		assert.LessOrEqual(t, count, 6, "team %s over the cap", team)
	}
	assert.NoError(t, ValidateLineup(lineup, cfg, testCtx()))
}

func TestSelectRoleCounts(t *testing.T) {
	lineup := mustSelect(t, Config{Strategy: cricket.StrategyBalanced}, testPool())

	total := 0
	for _, role := range cricket.Roles {
		bounds := DefaultRoleBounds()[role]
		count := lineup.RoleCounts[role]
		assert.GreaterOrEqual(t, count, bounds.Min, "role %s", role)
		assert.LessOrEqual(t, count, bounds.Max, "role %s", role)
		total += count
	}
	assert.Equal(t, DefaultTeamSize, total)
}

func TestSelectPoolTooSmall(t *testing.T) {
	sel, err := New(Config{})
	require.NoError(t, err)

	_, err = sel.Select(testPool()[:8], testCtx())
	var insufficient *InsufficientPlayersError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, DefaultTeamSize, insufficient.Required)
	assert.Equal(t, 8, insufficient.Available)
}

func TestSelectMissingRole(t *testing.T) {
	var pool []cricket.ScoredPlayer
	for _, p := range testPool() {
		if p.Role != cricket.RoleWicketKeeper {
			pool = append(pool, p)
		}
	}

	sel, err := New(Config{})
	require.NoError(t, err)

	_, err = sel.Select(pool, testCtx())
	var insufficient *InsufficientPlayersError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, cricket.RoleWicketKeeper, insufficient.Role)
	assert.Equal(t, 1, insufficient.Shortfall())
}

func TestSelectMissingTeam(t *testing.T) {
	var pool []cricket.ScoredPlayer
	for _, p := range testPool() {
		if p.Team == teamMI {
			pool = append(pool, p)
		}
	}

	sel, err := New(Config{})
	require.NoError(t, err)

	_, err = sel.Select(pool, testCtx())
	var insufficient *InsufficientPlayersError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, teamCSK, insufficient.Team)
}

func TestSelectBudgetInfeasible(t *testing.T) {
	sel, err := New(Config{Budget: 40})
	require.NoError(t, err)

	_, err = sel.Select(testPool(), testCtx())
	var infeasible *BudgetInfeasibleError
	require.ErrorAs(t, err, &infeasible)
	assert.InDelta(t, 40.0, infeasible.Budget, 1e-9)
	assert.Greater(t, infeasible.MinBudget, 40.0)
}

func TestSelectDuplicatePlayerRejected(t *testing.T) {
	pool := testPool()
	pool = append(pool, pool[0])

	sel, err := New(Config{})
	require.NoError(t, err)

	_, err = sel.Select(pool, testCtx())
	var invalid *InvalidConfigurationError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "pool", invalid.Field)
}

func TestSelectForeignTeamRejected(t *testing.T) {
	pool := testPool()
	pool[3].Team = "Rajasthan Royals"

	sel, err := New(Config{})
	require.NoError(t, err)

	_, err = sel.Select(pool, testCtx())
	var invalid *InvalidConfigurationError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "pool", invalid.Field)
}

func TestSelectSameTeamsRejected(t *testing.T) {
	sel, err := New(Config{})
	require.NoError(t, err)

	_, err = sel.Select(testPool(), cricket.MatchContext{Team1: teamMI, Team2: teamMI})
	var invalid *InvalidConfigurationError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "match", invalid.Field)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		field string
	}{
		{"negative budget", Config{Budget: -5}, "budget"},
		{"negative team size", Config{TeamSize: -1}, "team_size"},
		{"unknown strategy", Config{Strategy: "WILD"}, "strategy"},
		{"max per team too high", Config{MaxPerTeam: 11}, "max_per_team"},
		{
			"role minimums exceed team size",
			Config{RoleBounds: map[cricket.Role]RoleBounds{
				cricket.RoleWicketKeeper: {Min: 4, Max: 4},
				cricket.RoleBatsman:      {Min: 4, Max: 6},
				cricket.RoleAllRounder:   {Min: 4, Max: 4},
				cricket.RoleBowler:       {Min: 4, Max: 6},
			}},
			"role_bounds",
		},
		{
			"role maximums cannot fill team",
			Config{RoleBounds: map[cricket.Role]RoleBounds{
				cricket.RoleWicketKeeper: {Min: 1, Max: 2},
				cricket.RoleBatsman:      {Min: 2, Max: 3},
				cricket.RoleAllRounder:   {Min: 1, Max: 2},
				cricket.RoleBowler:       {Min: 2, Max: 3},
			}},
			"role_bounds",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.cfg)
			var invalid *InvalidConfigurationError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tc.field, invalid.Field)
		})
	}
}

func TestUtilityStrategies(t *testing.T) {
	w := DefaultUtilityWeights()

	explosive := scored("p1", teamMI, cricket.RoleBatsman, 9, 80, 3)
	steady := scored("p2", teamMI, cricket.RoleBatsman, 9, 50, 9)

	// Aggressive chases raw points; risk-averse prefers the steady profile.
	assert.Greater(t, utility(explosive, cricket.StrategyAggressive, w), utility(steady, cricket.StrategyAggressive, w))
	assert.Greater(t, utility(steady, cricket.StrategyRiskAverse, w), utility(explosive, cricket.StrategyRiskAverse, w))
}

func TestRankLessTieBreaks(t *testing.T) {
	a := scored("a", teamMI, cricket.RoleBatsman, 8, 50, 5)
	b := scored("b", teamMI, cricket.RoleBatsman, 8, 50, 5)
	cheaper := scored("c", teamMI, cricket.RoleBatsman, 7, 50, 5)

	assert.True(t, rankLess(10, 5, a, b))
	assert.False(t, rankLess(5, 10, a, b))
	// Equal keys: cheaper first, then lexical id.
	assert.True(t, rankLess(5, 5, cheaper, a))
	assert.True(t, rankLess(5, 5, a, b))
	assert.False(t, rankLess(5, 5, b, a))
}

func TestValueRatioFloorsCost(t *testing.T) {
	assert.InDelta(t, 100, valueRatio(50, 0), 1e-9)
	assert.InDelta(t, 100, valueRatio(50, 0.2), 1e-9)
	assert.InDelta(t, 10, valueRatio(50, 5), 1e-9)
}
