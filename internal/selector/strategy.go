package selector

import "github.com/crickwise/dream11-optimizer/internal/cricket"

// utility ranks a candidate under the configured strategy. Aggressive chases
// ceiling, balanced blends ceiling and floor, risk-averse weights the
// consistency index first with expected points as the minor term.
func utility(p cricket.ScoredPlayer, strategy cricket.Strategy, w UtilityWeights) float64 {
	scaled := p.ConsistencyIndex * w.ConsistencyScale
	switch strategy {
	case cricket.StrategyAggressive:
		return p.ExpectedPoints
	case cricket.StrategyRiskAverse:
		return w.RiskConsistency*scaled + w.RiskPoints*p.ExpectedPoints
	default:
		return w.BalancedPoints*p.ExpectedPoints + w.BalancedConsistency*scaled
	}
}

// valueRatio is the knapsack heuristic: utility per budget unit. Free or
// near-free players are floored to keep the ratio finite.
func valueRatio(util, cost float64) float64 {
	if cost < 0.5 {
		cost = 0.5
	}
	return util / cost
}

// rankLess is the deterministic ordering applied everywhere a candidate list
// is sorted: higher key wins, then lower cost, then lexical player id. The id
// tail makes selection reproducible for identical inputs.
func rankLess(keyI, keyJ float64, pi, pj cricket.ScoredPlayer) bool {
	if keyI != keyJ {
		return keyI > keyJ
	}
	if pi.Cost != pj.Cost {
		return pi.Cost < pj.Cost
	}
	return pi.ID < pj.ID
}
