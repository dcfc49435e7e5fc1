package selector

import (
	"fmt"
	"sort"

	"github.com/crickwise/dream11-optimizer/internal/cricket"
)

// Selector builds one valid lineup from a scored candidate pool using a
// constrained greedy procedure with bounded backtracking. The pool is small
// (tens of players), so the utility/cost heuristic is preferred over
// exhaustive search; results are deterministic for identical inputs.
type Selector struct {
	cfg Config
}

func New(cfg Config) (*Selector, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Selector{cfg: cfg}, nil
}

func (s *Selector) Config() Config {
	return s.cfg
}

// Select produces one valid lineup or a structured failure. It never returns
// a partial or constraint-violating team.
func (s *Selector) Select(pool []cricket.ScoredPlayer, ctx cricket.MatchContext) (*cricket.Lineup, error) {
	if err := validateMatch(ctx); err != nil {
		return nil, err
	}
	if err := validatePool(pool, ctx); err != nil {
		return nil, err
	}
	if err := s.checkPreconditions(pool, ctx); err != nil {
		return nil, err
	}

	p := newPicker(s.cfg, ctx, pool)
	if err := p.run(); err != nil {
		return nil, err
	}

	lineup := p.buildLineup()
	AssignCaptaincy(lineup)
	return lineup, nil
}

func validateMatch(ctx cricket.MatchContext) error {
	if ctx.Team1 == "" || ctx.Team2 == "" {
		return &InvalidConfigurationError{Field: "match", Reason: "both teams are required"}
	}
	if ctx.Team1 == ctx.Team2 {
		return &InvalidConfigurationError{Field: "match", Reason: "team1 and team2 must differ"}
	}
	return nil
}

func validatePool(pool []cricket.ScoredPlayer, ctx cricket.MatchContext) error {
	seen := make(map[string]bool, len(pool))
	for _, p := range pool {
		switch {
		case p.ID == "":
			return &InvalidConfigurationError{Field: "pool", Reason: "player with empty id"}
		case seen[p.ID]:
			return &InvalidConfigurationError{Field: "pool", Reason: fmt.Sprintf("duplicate player id %s", p.ID)}
		case p.Name == "":
			return &InvalidConfigurationError{Field: "pool", Reason: fmt.Sprintf("player %s has no name", p.ID)}
		case !p.Role.Valid():
			return &InvalidConfigurationError{Field: "pool", Reason: fmt.Sprintf("player %s has invalid role %q", p.ID, p.Role)}
		case p.Cost < 0:
			return &InvalidConfigurationError{Field: "pool", Reason: fmt.Sprintf("player %s has negative cost", p.ID)}
		case p.Team != ctx.Team1 && p.Team != ctx.Team2:
			return &InvalidConfigurationError{Field: "pool", Reason: fmt.Sprintf("player %s belongs to %s, not a match team", p.ID, p.Team)}
		}
		seen[p.ID] = true
	}
	return nil
}

func (s *Selector) checkPreconditions(pool []cricket.ScoredPlayer, ctx cricket.MatchContext) error {
	if len(pool) < s.cfg.TeamSize {
		return &InsufficientPlayersError{Required: s.cfg.TeamSize, Available: len(pool)}
	}

	teamCount := map[string]int{}
	roleCount := map[cricket.Role]int{}
	for _, p := range pool {
		teamCount[p.Team]++
		roleCount[p.Role]++
	}
	for _, team := range []string{ctx.Team1, ctx.Team2} {
		if teamCount[team] == 0 {
			return &InsufficientPlayersError{Team: team, Required: 1, Available: 0}
		}
	}
	for _, role := range cricket.Roles {
		bounds := s.cfg.RoleBounds[role]
		if roleCount[role] < bounds.Min {
			return &InsufficientPlayersError{Role: role, Required: bounds.Min, Available: roleCount[role]}
		}
	}

	if minCost, ok := s.cheapestLineupCost(pool); ok && minCost > s.cfg.Budget {
		return &BudgetInfeasibleError{Budget: s.cfg.Budget, MinBudget: minCost}
	}
	return nil
}

// cheapestLineupCost lower-bounds the cost of any role-valid lineup: the
// cheapest players covering every role minimum plus the cheapest remaining
// fillers up to team size, honoring role maxima. Team caps are ignored, so
// this is a bound, not an exact feasibility proof.
func (s *Selector) cheapestLineupCost(pool []cricket.ScoredPlayer) (float64, bool) {
	byRole := map[cricket.Role][]float64{}
	for _, p := range pool {
		byRole[p.Role] = append(byRole[p.Role], p.Cost)
	}

	var total float64
	slots := 0
	var fillers []float64
	for _, role := range cricket.Roles {
		costs := byRole[role]
		sort.Float64s(costs)
		bounds := s.cfg.RoleBounds[role]
		for i := 0; i < bounds.Min; i++ {
			total += costs[i]
			slots++
		}
		extra := bounds.Max - bounds.Min
		for i := bounds.Min; i < len(costs) && i-bounds.Min < extra; i++ {
			fillers = append(fillers, costs[i])
		}
	}

	remaining := s.cfg.TeamSize - slots
	if remaining > len(fillers) {
		return 0, false
	}
	sort.Float64s(fillers)
	for i := 0; i < remaining; i++ {
		total += fillers[i]
	}
	return total, true
}

// picker holds the running selection state.
type picker struct {
	cfg       Config
	ctx       cricket.MatchContext
	byRole    map[cricket.Role][]cricket.ScoredPlayer
	selected  []cricket.ScoredPlayer
	inLineup  map[string]bool
	cost      float64
	roleCount map[cricket.Role]int
	teamCount map[string]int
}

func newPicker(cfg Config, ctx cricket.MatchContext, pool []cricket.ScoredPlayer) *picker {
	p := &picker{
		cfg:       cfg,
		ctx:       ctx,
		byRole:    make(map[cricket.Role][]cricket.ScoredPlayer),
		inLineup:  make(map[string]bool),
		roleCount: make(map[cricket.Role]int),
		teamCount: make(map[string]int),
	}
	for _, candidate := range pool {
		p.byRole[candidate.Role] = append(p.byRole[candidate.Role], candidate)
	}
	for _, role := range cricket.Roles {
		players := p.byRole[role]
		sort.Slice(players, func(i, j int) bool {
			ri := valueRatio(utility(players[i], cfg.Strategy, cfg.Utility), players[i].Cost)
			rj := valueRatio(utility(players[j], cfg.Strategy, cfg.Utility), players[j].Cost)
			return rankLess(ri, rj, players[i], players[j])
		})
	}
	return p
}

func (p *picker) run() error {
	backtracks := 0
	for {
		if p.fillMinimums() && p.fillRemaining() {
			return nil
		}
		if backtracks >= p.cfg.MaxBacktracks || !p.backtrackSwap() {
			return &BudgetInfeasibleError{Budget: p.cfg.Budget}
		}
		backtracks++
	}
}

// fillMinimums satisfies every role's minimum count by utility/cost ranking,
// keeping enough budget in reserve to cover the other roles' unmet minimums.
func (p *picker) fillMinimums() bool {
	for _, role := range cricket.Roles {
		bounds := p.cfg.RoleBounds[role]
		for _, candidate := range p.byRole[role] {
			if p.roleCount[role] >= bounds.Min {
				break
			}
			if p.canPick(candidate) && p.affordableWithReserve(candidate) {
				p.pick(candidate)
			}
		}
		if p.roleCount[role] < bounds.Min {
			return false
		}
	}
	return true
}

// fillRemaining tops the lineup up to team size from the global pool ranked
// by utility/cost, honoring role maxima and the reserve-a-slot rule.
func (p *picker) fillRemaining() bool {
	candidates := p.rankedUnselected()
	for _, candidate := range candidates {
		if len(p.selected) >= p.cfg.TeamSize {
			break
		}
		if p.roleCount[candidate.Role] >= p.cfg.RoleBounds[candidate.Role].Max {
			continue
		}
		if p.canPick(candidate) && p.cost+candidate.Cost <= p.cfg.Budget {
			p.pick(candidate)
		}
	}
	return len(p.selected) == p.cfg.TeamSize
}

func (p *picker) rankedUnselected() []cricket.ScoredPlayer {
	var candidates []cricket.ScoredPlayer
	for _, role := range cricket.Roles {
		for _, candidate := range p.byRole[role] {
			if !p.inLineup[candidate.ID] {
				candidates = append(candidates, candidate)
			}
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		ri := valueRatio(utility(candidates[i], p.cfg.Strategy, p.cfg.Utility), candidates[i].Cost)
		rj := valueRatio(utility(candidates[j], p.cfg.Strategy, p.cfg.Utility), candidates[j].Cost)
		return rankLess(ri, rj, candidates[i], candidates[j])
	})
	return candidates
}

// canPick enforces the shared constraints: no duplicates, per-team cap, and
// never letting one team consume the slot reserved for the other.
func (p *picker) canPick(candidate cricket.ScoredPlayer) bool {
	if p.inLineup[candidate.ID] {
		return false
	}
	if p.teamCount[candidate.Team] >= p.cfg.MaxPerTeam {
		return false
	}
	other := p.ctx.Opponent(candidate.Team)
	slotsAfter := p.cfg.TeamSize - len(p.selected) - 1
	if p.teamCount[other] == 0 && slotsAfter < 1 {
		return false
	}
	return true
}

// affordableWithReserve checks the candidate's cost against the budget minus
// the cheapest possible completion of all other unmet role minimums.
func (p *picker) affordableWithReserve(candidate cricket.ScoredPlayer) bool {
	reserve := 0.0
	for _, role := range cricket.Roles {
		need := p.cfg.RoleBounds[role].Min - p.roleCount[role]
		if role == candidate.Role {
			need--
		}
		if need <= 0 {
			continue
		}
		costs := p.unselectedCosts(role, candidate.ID)
		if len(costs) < need {
			return false
		}
		for i := 0; i < need; i++ {
			reserve += costs[i]
		}
	}
	return p.cost+candidate.Cost+reserve <= p.cfg.Budget
}

func (p *picker) unselectedCosts(role cricket.Role, excludeID string) []float64 {
	var costs []float64
	for _, candidate := range p.byRole[role] {
		if !p.inLineup[candidate.ID] && candidate.ID != excludeID {
			costs = append(costs, candidate.Cost)
		}
	}
	sort.Float64s(costs)
	return costs
}

func (p *picker) pick(candidate cricket.ScoredPlayer) {
	p.selected = append(p.selected, candidate)
	p.inLineup[candidate.ID] = true
	p.cost += candidate.Cost
	p.roleCount[candidate.Role]++
	p.teamCount[candidate.Team]++
}

func (p *picker) unpick(index int) {
	candidate := p.selected[index]
	p.selected = append(p.selected[:index], p.selected[index+1:]...)
	delete(p.inLineup, candidate.ID)
	p.cost -= candidate.Cost
	p.roleCount[candidate.Role]--
	p.teamCount[candidate.Team]--
}

// backtrackSwap trades the lowest-utility selected player for the cheapest
// strictly-cheaper same-role alternative, freeing budget for the next attempt.
// Returns false when no such swap exists.
func (p *picker) backtrackSwap() bool {
	swapAt := -1
	swapUtility := 0.0
	for i, member := range p.selected {
		if p.cheaperAlternative(member) == nil {
			continue
		}
		u := utility(member, p.cfg.Strategy, p.cfg.Utility)
		if swapAt == -1 || u < swapUtility {
			swapAt = i
			swapUtility = u
		}
	}
	if swapAt == -1 {
		return false
	}

	outgoing := p.selected[swapAt]
	replacement := p.cheaperAlternative(outgoing)
	p.unpick(swapAt)
	if replacement != nil && p.canPick(*replacement) {
		p.pick(*replacement)
	}
	return true
}

func (p *picker) cheaperAlternative(member cricket.ScoredPlayer) *cricket.ScoredPlayer {
	var best *cricket.ScoredPlayer
	for i := range p.byRole[member.Role] {
		candidate := &p.byRole[member.Role][i]
		if p.inLineup[candidate.ID] || candidate.Cost >= member.Cost {
			continue
		}
		if p.teamCount[candidate.Team] >= p.cfg.MaxPerTeam && candidate.Team != member.Team {
			continue
		}
		if best == nil || candidate.Cost < best.Cost || (candidate.Cost == best.Cost && candidate.ID < best.ID) {
			best = candidate
		}
	}
	return best
}

func (p *picker) buildLineup() *cricket.Lineup {
	members := make([]cricket.ScoredPlayer, len(p.selected))
	copy(members, p.selected)
	sort.Slice(members, func(i, j int) bool {
		return rankLess(members[i].ExpectedPoints, members[j].ExpectedPoints, members[i], members[j])
	})

	lineup := &cricket.Lineup{
		Strategy:   p.cfg.Strategy,
		Players:    make([]cricket.LineupSlot, len(members)),
		TotalCost:  p.cost,
		RoleCounts: make(map[cricket.Role]int, len(p.roleCount)),
		TeamCounts: make(map[string]int, len(p.teamCount)),
	}
	for role, count := range p.roleCount {
		if count > 0 {
			lineup.RoleCounts[role] = count
		}
	}
	for team, count := range p.teamCount {
		if count > 0 {
			lineup.TeamCounts[team] = count
		}
	}
	for i, member := range members {
		lineup.Players[i] = cricket.LineupSlot{
			Player:         member,
			ExpectedPoints: member.ExpectedPoints,
		}
	}
	return lineup
}
