package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/crickwise/dream11-optimizer/internal/cricket"
)

// Player is the persisted stats snapshot the ingestion pipeline maintains.
// The optimizer never reads these rows directly; ToRecord converts a row into
// the read-only request-scoped record the scorer consumes.
type Player struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	ExternalID string `gorm:"uniqueIndex;size:64;not null" json:"external_id"`
	Name       string `gorm:"size:100;not null;index" json:"name"`
	TeamID     uint   `gorm:"not null;index" json:"team_id"`
	Team       Team   `gorm:"foreignKey:TeamID" json:"team,omitempty"`

	// RawRole is the label as scraped; Role is the canonical classification.
	RawRole string  `gorm:"size:50" json:"raw_role"`
	Role    string  `gorm:"size:5;index" json:"role"`
	Cost    float64 `gorm:"not null" json:"cost"`

	BattingMatches    int     `json:"batting_matches"`
	BattingRuns       int     `json:"batting_runs"`
	BattingAverage    float64 `json:"batting_average"`
	BattingStrikeRate float64 `json:"batting_strike_rate"`

	BowlingMatches int     `json:"bowling_matches"`
	BowlingWickets int     `json:"bowling_wickets"`
	BowlingAverage float64 `json:"bowling_average"`
	BowlingEconomy float64 `json:"bowling_economy"`

	// Trailing match window and contextual ratings, stored as JSON payloads.
	RecentMatches    datatypes.JSON `json:"recent_matches,omitempty"`
	OppositionRating datatypes.JSON `json:"opposition_rating,omitempty"`
	VenueRating      datatypes.JSON `json:"venue_rating,omitempty"`

	LastStatsUpdate time.Time `json:"last_stats_update"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Player) TableName() string {
	return "players"
}

// ToRecord assembles the request-scoped candidate record, resolving the role
// from the raw label or the stat-profile heuristic.
func (p *Player) ToRecord(teamName string, classifier cricket.ClassifierConfig) (cricket.PlayerRecord, error) {
	rec := cricket.PlayerRecord{
		ID:      p.ExternalID,
		Name:    p.Name,
		Team:    teamName,
		RawRole: p.RawRole,
		Cost:    p.Cost,
		Batting: cricket.BattingAggregates{
			Matches:    p.BattingMatches,
			Runs:       p.BattingRuns,
			Average:    p.BattingAverage,
			StrikeRate: p.BattingStrikeRate,
		},
		Bowling: cricket.BowlingAggregates{
			Matches: p.BowlingMatches,
			Wickets: p.BowlingWickets,
			Average: p.BowlingAverage,
			Economy: p.BowlingEconomy,
		},
	}

	if role := cricket.Role(p.Role); role.Valid() {
		rec.Role = role
	} else {
		rec.Role = cricket.ResolveRole(p.RawRole, rec.Batting, rec.Bowling, classifier)
	}

	if len(p.RecentMatches) > 0 {
		if err := json.Unmarshal(p.RecentMatches, &rec.Recent); err != nil {
			return rec, fmt.Errorf("player %s: decode recent matches: %w", p.ExternalID, err)
		}
	}
	if len(p.OppositionRating) > 0 {
		if err := json.Unmarshal(p.OppositionRating, &rec.OppositionRating); err != nil {
			return rec, fmt.Errorf("player %s: decode opposition ratings: %w", p.ExternalID, err)
		}
	}
	if len(p.VenueRating) > 0 {
		if err := json.Unmarshal(p.VenueRating, &rec.VenueRating); err != nil {
			return rec, fmt.Errorf("player %s: decode venue ratings: %w", p.ExternalID, err)
		}
	}
	return rec, nil
}
