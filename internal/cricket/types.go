package cricket

import "time"

// Role is a player's functional category. Every candidate resolves to exactly
// one role; role counts are the primary selection constraint.
type Role string

const (
	RoleBatsman      Role = "BAT"
	RoleBowler       Role = "BWL"
	RoleAllRounder   Role = "AR"
	RoleWicketKeeper Role = "WK"
)

// Roles lists the canonical roles in the order selection iterates them.
// Wicket-keepers first: they are the scarcest pool in a typical IPL squad.
var Roles = []Role{RoleWicketKeeper, RoleBatsman, RoleAllRounder, RoleBowler}

func (r Role) Valid() bool {
	switch r {
	case RoleBatsman, RoleBowler, RoleAllRounder, RoleWicketKeeper:
		return true
	}
	return false
}

func (r Role) DisplayName() string {
	switch r {
	case RoleBatsman:
		return "Batsman"
	case RoleBowler:
		return "Bowler"
	case RoleAllRounder:
		return "All-Rounder"
	case RoleWicketKeeper:
		return "Wicket-Keeper"
	}
	return string(r)
}

// PitchType biases scoring toward batting or bowling roles.
type PitchType string

const (
	PitchBatting  PitchType = "BAT"
	PitchBowling  PitchType = "BWL"
	PitchBalanced PitchType = "BAL"
	PitchSpin     PitchType = "SPIN"
)

// Strategy is the selection bias applied when ranking candidates.
type Strategy string

const (
	StrategyAggressive Strategy = "AGG"
	StrategyBalanced   Strategy = "BAL"
	StrategyRiskAverse Strategy = "RISK"
)

var Strategies = []Strategy{StrategyAggressive, StrategyBalanced, StrategyRiskAverse}

func (s Strategy) Valid() bool {
	switch s {
	case StrategyAggressive, StrategyBalanced, StrategyRiskAverse:
		return true
	}
	return false
}

// MatchContext identifies the fixture a prediction is built for.
type MatchContext struct {
	Team1     string    `json:"team1"`
	Team2     string    `json:"team2"`
	Venue     string    `json:"venue,omitempty"`
	PitchType PitchType `json:"pitch_type,omitempty"`
}

// Opponent returns the other side of the match for a player's team.
func (m MatchContext) Opponent(team string) string {
	if team == m.Team1 {
		return m.Team2
	}
	return m.Team1
}

// BattingAggregates is a player's career-to-date batting summary.
type BattingAggregates struct {
	Matches    int     `json:"matches"`
	Runs       int     `json:"runs"`
	Average    float64 `json:"average"`
	StrikeRate float64 `json:"strike_rate"`
}

// BowlingAggregates is a player's career-to-date bowling summary.
type BowlingAggregates struct {
	Matches int     `json:"matches"`
	Wickets int     `json:"wickets"`
	Average float64 `json:"average"`
	Economy float64 `json:"economy"`
}

// MatchStats holds the observable events of one completed match for one player.
// The scorer converts these into fantasy points via the points table.
type MatchStats struct {
	Runs            int       `json:"runs"`
	BallsFaced      int       `json:"balls_faced"`
	Fours           int       `json:"fours"`
	Sixes           int       `json:"sixes"`
	Dismissed       bool      `json:"dismissed"`
	OversBowled     float64   `json:"overs_bowled"`
	RunsConceded    int       `json:"runs_conceded"`
	Wickets         int       `json:"wickets"`
	LBWBowled       int       `json:"lbw_bowled"`
	MaidenOvers     int       `json:"maiden_overs"`
	Catches         int       `json:"catches"`
	Stumpings       int       `json:"stumpings"`
	RunOutsDirect   int       `json:"run_outs_direct"`
	RunOutsIndirect int       `json:"run_outs_indirect"`
	Opponent        string    `json:"opponent,omitempty"`
	Venue           string    `json:"venue,omitempty"`
	PlayedAt        time.Time `json:"played_at,omitempty"`
}

// PlayerRecord is the read-only candidate snapshot handed to the optimizer.
// It is assembled fresh per prediction request and never mutated downstream.
type PlayerRecord struct {
	ID      string            `json:"id"`
	Name    string            `json:"name"`
	Team    string            `json:"team"`
	RawRole string            `json:"raw_role"`
	Role    Role              `json:"role"`
	Cost    float64           `json:"cost"`
	Batting BattingAggregates `json:"batting"`
	Bowling BowlingAggregates `json:"bowling"`

	// Recent is the trailing match window, most recent first.
	Recent []MatchStats `json:"recent,omitempty"`

	// OppositionRating and VenueRating are normalized [0,1] performance ratings
	// keyed by opponent team name and venue name. Optional context signals.
	OppositionRating map[string]float64 `json:"opposition_rating,omitempty"`
	VenueRating      map[string]float64 `json:"venue_rating,omitempty"`
}

// ScoredPlayer is a PlayerRecord annotated by the scorer.
type ScoredPlayer struct {
	PlayerRecord
	ExpectedPoints   float64 `json:"expected_points"`
	ConsistencyIndex float64 `json:"consistency_index"`
}

// LineupSlot is one member of a selected lineup.
type LineupSlot struct {
	Player         ScoredPlayer `json:"player"`
	IsCaptain      bool         `json:"is_captain"`
	IsViceCaptain  bool         `json:"is_vice_captain"`
	ExpectedPoints float64      `json:"expected_points"` // with captaincy multiplier applied
}

// Lineup is one valid selected team for a match.
type Lineup struct {
	Strategy       Strategy       `json:"strategy"`
	Players        []LineupSlot   `json:"players"`
	CaptainID      string         `json:"captain_id"`
	ViceCaptainID  string         `json:"vice_captain_id"`
	TotalCost      float64        `json:"total_cost"`
	ExpectedPoints float64        `json:"expected_points"`
	RoleCounts     map[Role]int   `json:"role_counts"`
	TeamCounts     map[string]int `json:"team_counts"`
}

// DataWarning flags a per-player data-quality gap that was recovered with
// neutral scoring instead of aborting the prediction.
type DataWarning struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Reason     string `json:"reason"`
}
