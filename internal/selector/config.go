package selector

import (
	"fmt"

	"github.com/crickwise/dream11-optimizer/internal/cricket"
)

const (
	DefaultBudget        = 100.0
	DefaultTeamSize      = 11
	DefaultMaxBacktracks = 20
)

// RoleBounds constrains how many players of one role a lineup may carry.
type RoleBounds struct {
	Min int `json:"min" mapstructure:"min"`
	Max int `json:"max" mapstructure:"max"`
}

// DefaultRoleBounds is the standard fantasy-cricket formation window.
func DefaultRoleBounds() map[cricket.Role]RoleBounds {
	return map[cricket.Role]RoleBounds{
		cricket.RoleWicketKeeper: {Min: 1, Max: 4},
		cricket.RoleBatsman:      {Min: 3, Max: 6},
		cricket.RoleAllRounder:   {Min: 1, Max: 4},
		cricket.RoleBowler:       {Min: 3, Max: 6},
	}
}

// UtilityWeights parameterizes the strategy-specific candidate ranking.
// ConsistencyScale lifts the [0,10] consistency index onto the expected-points
// scale before blending.
type UtilityWeights struct {
	BalancedPoints      float64 `mapstructure:"balanced_points"`
	BalancedConsistency float64 `mapstructure:"balanced_consistency"`
	RiskPoints          float64 `mapstructure:"risk_points"`
	RiskConsistency     float64 `mapstructure:"risk_consistency"`
	ConsistencyScale    float64 `mapstructure:"consistency_scale"`
}

func DefaultUtilityWeights() UtilityWeights {
	return UtilityWeights{
		BalancedPoints:      0.6,
		BalancedConsistency: 0.4,
		RiskPoints:          0.2,
		RiskConsistency:     0.8,
		ConsistencyScale:    10,
	}
}

// Config is the full selection configuration. Zero values are filled with
// defaults by ApplyDefaults; Validate rejects inconsistent combinations before
// any selection runs.
type Config struct {
	Budget        float64                        `json:"budget"`
	TeamSize      int                            `json:"team_size"`
	RoleBounds    map[cricket.Role]RoleBounds    `json:"role_bounds"`
	MaxPerTeam    int                            `json:"max_per_team"`
	Strategy      cricket.Strategy               `json:"strategy"`
	MaxBacktracks int                            `json:"max_backtracks"`
	Utility       UtilityWeights                 `json:"-"`
}

func (c *Config) ApplyDefaults() {
	if c.Budget == 0 {
		c.Budget = DefaultBudget
	}
	if c.TeamSize == 0 {
		c.TeamSize = DefaultTeamSize
	}
	if len(c.RoleBounds) == 0 {
		c.RoleBounds = DefaultRoleBounds()
	}
	if c.MaxPerTeam == 0 {
		c.MaxPerTeam = c.TeamSize - 1
	}
	if c.Strategy == "" {
		c.Strategy = cricket.StrategyBalanced
	}
	if c.MaxBacktracks == 0 {
		c.MaxBacktracks = DefaultMaxBacktracks
	}
	if c.Utility == (UtilityWeights{}) {
		c.Utility = DefaultUtilityWeights()
	}
}

func (c *Config) Validate() error {
	if c.Budget <= 0 {
		return &InvalidConfigurationError{Field: "budget", Reason: "must be positive"}
	}
	if c.TeamSize <= 0 {
		return &InvalidConfigurationError{Field: "team_size", Reason: "must be positive"}
	}
	if !c.Strategy.Valid() {
		return &InvalidConfigurationError{Field: "strategy", Reason: fmt.Sprintf("unknown strategy %q", c.Strategy)}
	}
	if c.MaxPerTeam < 1 || c.MaxPerTeam > c.TeamSize-1 {
		return &InvalidConfigurationError{
			Field:  "max_per_team",
			Reason: fmt.Sprintf("must be between 1 and %d so both teams stay represented", c.TeamSize-1),
		}
	}

	var minSum, maxSum int
	for _, role := range cricket.Roles {
		bounds, ok := c.RoleBounds[role]
		if !ok {
			return &InvalidConfigurationError{Field: "role_bounds", Reason: fmt.Sprintf("missing bounds for role %s", role)}
		}
		if bounds.Min < 0 || bounds.Max < bounds.Min {
			return &InvalidConfigurationError{
				Field:  "role_bounds",
				Reason: fmt.Sprintf("role %s bounds %d-%d are inconsistent", role, bounds.Min, bounds.Max),
			}
		}
		minSum += bounds.Min
		maxSum += bounds.Max
	}
	if minSum > c.TeamSize {
		return &InvalidConfigurationError{
			Field:  "role_bounds",
			Reason: fmt.Sprintf("sum of role minimums %d exceeds team size %d", minSum, c.TeamSize),
		}
	}
	if maxSum < c.TeamSize {
		return &InvalidConfigurationError{
			Field:  "role_bounds",
			Reason: fmt.Sprintf("sum of role maximums %d cannot fill team size %d", maxSum, c.TeamSize),
		}
	}
	return nil
}
