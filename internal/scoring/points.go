package scoring

import "github.com/crickwise/dream11-optimizer/internal/cricket"

// RateBand maps a half-open stat interval [Floor, Ceil) to a point adjustment.
// Bands are evaluated in order; the first match wins.
type RateBand struct {
	Floor  float64 `json:"floor" mapstructure:"floor"`
	Ceil   float64 `json:"ceil" mapstructure:"ceil"`
	Points float64 `json:"points" mapstructure:"points"`
}

// PointsTable is the fantasy-scoring ruleset. It is configuration, not logic:
// the default mirrors the T20 ruleset the predictor has always used, but the
// whole table can be overridden from config when the ruleset is revised.
type PointsTable struct {
	Version string `json:"version" mapstructure:"version"`

	// Announced-lineup bonus every playing member receives.
	LineupBonus float64 `json:"lineup_bonus" mapstructure:"lineup_bonus"`

	// Batting
	RunPoints        float64 `json:"run_points" mapstructure:"run_points"`
	FourBonus        float64 `json:"four_bonus" mapstructure:"four_bonus"`
	SixBonus         float64 `json:"six_bonus" mapstructure:"six_bonus"`
	TwentyFiveBonus  float64 `json:"twenty_five_bonus" mapstructure:"twenty_five_bonus"`
	HalfCenturyBonus float64 `json:"half_century_bonus" mapstructure:"half_century_bonus"`
	SeventyFiveBonus float64 `json:"seventy_five_bonus" mapstructure:"seventy_five_bonus"`
	CenturyBonus     float64 `json:"century_bonus" mapstructure:"century_bonus"`
	DuckPenalty      float64 `json:"duck_penalty" mapstructure:"duck_penalty"`

	// Strike-rate bands apply once a batsman has faced MinBallsForStrikeRate.
	MinBallsForStrikeRate int        `json:"min_balls_for_strike_rate" mapstructure:"min_balls_for_strike_rate"`
	StrikeRateBands       []RateBand `json:"strike_rate_bands" mapstructure:"strike_rate_bands"`

	// Bowling
	WicketPoints     float64 `json:"wicket_points" mapstructure:"wicket_points"`
	LBWBowledBonus   float64 `json:"lbw_bowled_bonus" mapstructure:"lbw_bowled_bonus"`
	ThreeWicketBonus float64 `json:"three_wicket_bonus" mapstructure:"three_wicket_bonus"`
	FourWicketBonus  float64 `json:"four_wicket_bonus" mapstructure:"four_wicket_bonus"`
	FiveWicketBonus  float64 `json:"five_wicket_bonus" mapstructure:"five_wicket_bonus"`
	MaidenOverPoints float64 `json:"maiden_over_points" mapstructure:"maiden_over_points"`

	// Economy bands apply once a bowler has bowled MinOversForEconomy.
	MinOversForEconomy float64    `json:"min_overs_for_economy" mapstructure:"min_overs_for_economy"`
	EconomyBands       []RateBand `json:"economy_bands" mapstructure:"economy_bands"`

	// Fielding
	CatchPoints          float64 `json:"catch_points" mapstructure:"catch_points"`
	ThreeCatchBonus      float64 `json:"three_catch_bonus" mapstructure:"three_catch_bonus"`
	StumpingPoints       float64 `json:"stumping_points" mapstructure:"stumping_points"`
	RunOutDirectPoints   float64 `json:"run_out_direct_points" mapstructure:"run_out_direct_points"`
	RunOutIndirectPoints float64 `json:"run_out_indirect_points" mapstructure:"run_out_indirect_points"`
}

func DefaultPointsTable() PointsTable {
	return PointsTable{
		Version: "t20-2025.1",

		LineupBonus: 4,

		RunPoints:        1,
		FourBonus:        1,
		SixBonus:         2,
		TwentyFiveBonus:  4,
		HalfCenturyBonus: 8,
		SeventyFiveBonus: 12,
		CenturyBonus:     16,
		DuckPenalty:      -2,

		MinBallsForStrikeRate: 10,
		StrikeRateBands: []RateBand{
			{Floor: 170, Ceil: 1000, Points: 6},
			{Floor: 150, Ceil: 170, Points: 4},
			{Floor: 130, Ceil: 150, Points: 2},
			{Floor: 60, Ceil: 70, Points: -2},
			{Floor: 50, Ceil: 60, Points: -4},
			{Floor: 0, Ceil: 50, Points: -6},
		},

		WicketPoints:     30,
		LBWBowledBonus:   8,
		ThreeWicketBonus: 4,
		FourWicketBonus:  8,
		FiveWicketBonus:  12,
		MaidenOverPoints: 12,

		MinOversForEconomy: 2,
		EconomyBands: []RateBand{
			{Floor: 0, Ceil: 5, Points: 6},
			{Floor: 5, Ceil: 6, Points: 4},
			{Floor: 6, Ceil: 7, Points: 2},
			{Floor: 10, Ceil: 11, Points: -2},
			{Floor: 11, Ceil: 12, Points: -4},
			{Floor: 12, Ceil: 1000, Points: -6},
		},

		CatchPoints:          8,
		ThreeCatchBonus:      4,
		StumpingPoints:       12,
		RunOutDirectPoints:   12,
		RunOutIndirectPoints: 6,
	}
}

func bandPoints(bands []RateBand, value float64) float64 {
	for _, b := range bands {
		if value >= b.Floor && value < b.Ceil {
			return b.Points
		}
	}
	return 0
}

// BattingPoints scores the batting events of one match.
func (t PointsTable) BattingPoints(m cricket.MatchStats, role cricket.Role) float64 {
	points := float64(m.Runs)*t.RunPoints +
		float64(m.Fours)*t.FourBonus +
		float64(m.Sixes)*t.SixBonus

	switch {
	case m.Runs >= 100:
		points += t.CenturyBonus
	case m.Runs >= 75:
		points += t.SeventyFiveBonus
	case m.Runs >= 50:
		points += t.HalfCenturyBonus
	case m.Runs >= 25:
		points += t.TwentyFiveBonus
	}

	if m.Runs == 0 && m.Dismissed && role != cricket.RoleBowler {
		points += t.DuckPenalty
	}

	if m.BallsFaced >= t.MinBallsForStrikeRate {
		strikeRate := float64(m.Runs) / float64(m.BallsFaced) * 100
		points += bandPoints(t.StrikeRateBands, strikeRate)
	}

	return points
}

// BowlingPoints scores the bowling events of one match.
func (t PointsTable) BowlingPoints(m cricket.MatchStats) float64 {
	points := float64(m.Wickets)*t.WicketPoints +
		float64(m.LBWBowled)*t.LBWBowledBonus +
		float64(m.MaidenOvers)*t.MaidenOverPoints

	switch {
	case m.Wickets >= 5:
		points += t.FiveWicketBonus
	case m.Wickets >= 4:
		points += t.FourWicketBonus
	case m.Wickets >= 3:
		points += t.ThreeWicketBonus
	}

	if m.OversBowled >= t.MinOversForEconomy {
		economy := float64(m.RunsConceded) / m.OversBowled
		points += bandPoints(t.EconomyBands, economy)
	}

	return points
}

// FieldingPoints scores the fielding events of one match.
func (t PointsTable) FieldingPoints(m cricket.MatchStats) float64 {
	points := float64(m.Catches)*t.CatchPoints +
		float64(m.Stumpings)*t.StumpingPoints +
		float64(m.RunOutsDirect)*t.RunOutDirectPoints +
		float64(m.RunOutsIndirect)*t.RunOutIndirectPoints

	if m.Catches >= 3 {
		points += t.ThreeCatchBonus
	}

	return points
}

// MatchPoints scores one complete match: lineup bonus plus all contributions.
func (t PointsTable) MatchPoints(m cricket.MatchStats, role cricket.Role) float64 {
	return t.LineupBonus +
		t.BattingPoints(m, role) +
		t.BowlingPoints(m) +
		t.FieldingPoints(m)
}
