package selector

import (
	"fmt"

	"github.com/crickwise/dream11-optimizer/internal/cricket"
)

// InvalidConfigurationError rejects a selection config (or a malformed pool)
// before any selection work begins.
type InvalidConfigurationError struct {
	Field  string
	Reason string
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// InsufficientPlayersError reports a pool that cannot satisfy a role minimum,
// the overall team size, or two-team representation. When Team is set the
// shortfall is on that side of the match rather than a role.
type InsufficientPlayersError struct {
	Role      cricket.Role
	Team      string
	Required  int
	Available int
}

func (e *InsufficientPlayersError) Shortfall() int {
	return e.Required - e.Available
}

func (e *InsufficientPlayersError) Error() string {
	switch {
	case e.Team != "":
		return fmt.Sprintf("insufficient players: team %s has %d candidates, need %d", e.Team, e.Available, e.Required)
	case e.Role != "":
		return fmt.Sprintf("insufficient players: role %s has %d candidates, need %d (shortfall %d)",
			e.Role.DisplayName(), e.Available, e.Required, e.Shortfall())
	default:
		return fmt.Sprintf("insufficient players: pool has %d candidates, need %d", e.Available, e.Required)
	}
}

// BudgetInfeasibleError reports that no role-valid lineup fits the budget.
// MinBudget is the estimated minimum feasible budget, 0 when not computable.
type BudgetInfeasibleError struct {
	Budget    float64
	MinBudget float64
}

func (e *BudgetInfeasibleError) Error() string {
	if e.MinBudget > 0 {
		return fmt.Sprintf("budget %.1f infeasible: cheapest valid lineup costs %.1f", e.Budget, e.MinBudget)
	}
	return fmt.Sprintf("budget %.1f infeasible: no valid lineup found within backtracking limit", e.Budget)
}
