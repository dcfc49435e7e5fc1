package providers

import (
	"context"

	"github.com/crickwise/dream11-optimizer/internal/cricket"
)

// PlayerData is one player as supplied by a stats source, before role
// classification and persistence.
type PlayerData struct {
	Name    string                    `json:"name"`
	Team    string                    `json:"team"`
	Role    string                    `json:"role"`
	Price   float64                   `json:"price"`
	Batting cricket.BattingAggregates `json:"batting"`
	Bowling cricket.BowlingAggregates `json:"bowling"`
	Recent  []cricket.MatchStats      `json:"recent,omitempty"`

	OppositionRating map[string]float64 `json:"opposition_rating,omitempty"`
	VenueRating      map[string]float64 `json:"venue_rating,omitempty"`
}

// Provider supplies the full player dataset for the supported competition.
type Provider interface {
	Name() string
	FetchPlayers(ctx context.Context) ([]PlayerData, error)
}
