package scoring

import (
	"gonum.org/v1/gonum/stat"

	"github.com/crickwise/dream11-optimizer/internal/cricket"
)

// FormWeights controls the expected-points blend. Weights over components with
// no underlying data are dropped and the rest renormalized, so a player
// without venue/opposition ratings is still scored from form and career alone.
type FormWeights struct {
	Recent  float64 `mapstructure:"recent"`
	Career  float64 `mapstructure:"career"`
	Context float64 `mapstructure:"context"`
}

func DefaultFormWeights() FormWeights {
	return FormWeights{Recent: 0.5, Career: 0.3, Context: 0.2}
}

// Config carries the full scoring ruleset.
type Config struct {
	Table        PointsTable
	Weights      FormWeights
	PitchFactors map[cricket.PitchType]map[cricket.Role]float64

	// NeutralConsistency is used when fewer than MinConsistencyMatches recent
	// matches exist; dividing by near-zero variance would be meaningless.
	NeutralConsistency    float64
	MinConsistencyMatches int
}

func DefaultConfig() Config {
	return Config{
		Table:   DefaultPointsTable(),
		Weights: DefaultFormWeights(),
		PitchFactors: map[cricket.PitchType]map[cricket.Role]float64{
			cricket.PitchBatting: {
				cricket.RoleBatsman:      1.2,
				cricket.RoleBowler:       0.8,
				cricket.RoleAllRounder:   1.1,
				cricket.RoleWicketKeeper: 1.2,
			},
			cricket.PitchBowling: {
				cricket.RoleBatsman:      0.8,
				cricket.RoleBowler:       1.2,
				cricket.RoleAllRounder:   0.9,
				cricket.RoleWicketKeeper: 0.8,
			},
			cricket.PitchBalanced: {
				cricket.RoleBatsman:      1.0,
				cricket.RoleBowler:       1.0,
				cricket.RoleAllRounder:   1.1,
				cricket.RoleWicketKeeper: 1.0,
			},
			cricket.PitchSpin: {
				cricket.RoleBatsman:      0.9,
				cricket.RoleBowler:       1.1,
				cricket.RoleAllRounder:   1.0,
				cricket.RoleWicketKeeper: 0.9,
			},
		},
		NeutralConsistency:    5.0,
		MinConsistencyMatches: 2,
	}
}

// Scorer converts raw player records into scored candidates. Pure computation:
// no I/O, no shared state, safe for concurrent use.
type Scorer struct {
	cfg Config
}

func NewScorer(cfg Config) *Scorer {
	if cfg.NeutralConsistency == 0 {
		cfg.NeutralConsistency = 5.0
	}
	if cfg.MinConsistencyMatches == 0 {
		cfg.MinConsistencyMatches = 2
	}
	return &Scorer{cfg: cfg}
}

// Score computes expected points and the consistency index for one player.
// Missing history degrades to a neutral score with a warning instead of an
// error so the selector never stalls on data gaps.
func (s *Scorer) Score(rec cricket.PlayerRecord, ctx cricket.MatchContext) (cricket.ScoredPlayer, *cricket.DataWarning) {
	scored := cricket.ScoredPlayer{PlayerRecord: rec}

	recentAvg, hasRecent := s.recentFormPoints(rec)
	careerEst := EstimateCareerPoints(rec, s.cfg.Table)
	hasCareer := rec.Batting.Matches > 0 || rec.Bowling.Matches > 0

	var warning *cricket.DataWarning
	if !hasRecent && !hasCareer {
		warning = &cricket.DataWarning{
			PlayerID:   rec.ID,
			PlayerName: rec.Name,
			Reason:     "no historical match data; neutral score applied",
		}
	}

	contextEst, hasContext := s.contextPoints(rec, ctx, careerEst)

	weights := s.cfg.Weights
	var expected, totalWeight float64
	if hasRecent {
		expected += weights.Recent * recentAvg
		totalWeight += weights.Recent
	}
	if hasCareer {
		expected += weights.Career * careerEst
		totalWeight += weights.Career
	}
	if hasContext {
		expected += weights.Context * contextEst
		totalWeight += weights.Context
	}
	if totalWeight > 0 {
		expected /= totalWeight
	}

	if factors, ok := s.cfg.PitchFactors[ctx.PitchType]; ok {
		if factor, ok := factors[rec.Role]; ok {
			expected *= factor
		}
	}

	scored.ExpectedPoints = expected
	scored.ConsistencyIndex = s.consistencyIndex(rec)
	return scored, warning
}

// ScorePool scores every candidate and aggregates data-quality warnings.
func (s *Scorer) ScorePool(records []cricket.PlayerRecord, ctx cricket.MatchContext) ([]cricket.ScoredPlayer, []cricket.DataWarning) {
	scored := make([]cricket.ScoredPlayer, 0, len(records))
	var warnings []cricket.DataWarning
	for _, rec := range records {
		sp, warning := s.Score(rec, ctx)
		scored = append(scored, sp)
		if warning != nil {
			warnings = append(warnings, *warning)
		}
	}
	return scored, warnings
}

func (s *Scorer) recentFormPoints(rec cricket.PlayerRecord) (float64, bool) {
	if len(rec.Recent) == 0 {
		return 0, false
	}
	points := make([]float64, len(rec.Recent))
	for i, m := range rec.Recent {
		points[i] = s.cfg.Table.MatchPoints(m, rec.Role)
	}
	return stat.Mean(points, nil), true
}

// contextPoints scales the career baseline by the player's normalized rating
// against this opponent and at this venue, when either rating exists.
func (s *Scorer) contextPoints(rec cricket.PlayerRecord, ctx cricket.MatchContext, careerEst float64) (float64, bool) {
	if careerEst == 0 {
		return 0, false
	}

	var ratingSum float64
	var ratings int
	if rating, ok := rec.OppositionRating[ctx.Opponent(rec.Team)]; ok {
		ratingSum += rating
		ratings++
	}
	if ctx.Venue != "" {
		if rating, ok := rec.VenueRating[ctx.Venue]; ok {
			ratingSum += rating
			ratings++
		}
	}
	if ratings == 0 {
		return 0, false
	}

	// A 0.5 rating is average, so the context component centers on the career
	// estimate and swings up to +/-100% of it.
	avgRating := ratingSum / float64(ratings)
	return careerEst * 2 * avgRating, true
}

// consistencyIndex computes (mean / (stddev + 1)) * 10 over per-match fantasy
// points, clipped to [0, 10]. Batting and bowling series are measured
// separately and combined by role relevance.
func (s *Scorer) consistencyIndex(rec cricket.PlayerRecord) float64 {
	if len(rec.Recent) < s.cfg.MinConsistencyMatches {
		return s.cfg.NeutralConsistency
	}

	batting := make([]float64, len(rec.Recent))
	bowling := make([]float64, len(rec.Recent))
	for i, m := range rec.Recent {
		batting[i] = s.cfg.Table.BattingPoints(m, rec.Role)
		bowling[i] = s.cfg.Table.BowlingPoints(m)
	}

	battingIdx := seriesConsistency(batting)
	bowlingIdx := seriesConsistency(bowling)

	switch rec.Role {
	case cricket.RoleBowler:
		return bowlingIdx
	case cricket.RoleAllRounder:
		return clamp((battingIdx+bowlingIdx)/2, 0, 10)
	default:
		return battingIdx
	}
}

func seriesConsistency(points []float64) float64 {
	mean, std := stat.MeanStdDev(points, nil)
	return clamp(mean/(std+1)*10, 0, 10)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
