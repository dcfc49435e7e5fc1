package models

import (
	"time"

	"gorm.io/datatypes"
)

// Prediction is one stored prediction run: the match context it was built for
// and the full per-strategy result snapshot as returned to the caller.
type Prediction struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	ExternalID string `gorm:"uniqueIndex;size:36;not null" json:"external_id"`

	Team1     string  `gorm:"size:100;not null" json:"team1"`
	Team2     string  `gorm:"size:100;not null" json:"team2"`
	Venue     string  `gorm:"size:100" json:"venue,omitempty"`
	PitchType string  `gorm:"size:10" json:"pitch_type,omitempty"`
	Budget    float64 `json:"budget"`
	TeamSize  int     `json:"team_size"`

	Result    datatypes.JSON `json:"result"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`

	Players []PredictionPlayer `gorm:"foreignKey:PredictionID" json:"players,omitempty"`
}

func (Prediction) TableName() string {
	return "predictions"
}

// PredictionPlayer is one selected lineup member of a stored prediction,
// kept as rows so past picks stay queryable without unpacking the JSON blob.
type PredictionPlayer struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	PredictionID   uint    `gorm:"not null;index" json:"prediction_id"`
	Strategy       string  `gorm:"size:5;not null;index" json:"strategy"`
	PlayerID       string  `gorm:"size:64;not null" json:"player_id"`
	PlayerName     string  `gorm:"size:100;not null" json:"player_name"`
	Team           string  `gorm:"size:100" json:"team"`
	Role           string  `gorm:"size:5" json:"role"`
	Cost           float64 `json:"cost"`
	ExpectedPoints float64 `json:"expected_points"`
	IsCaptain      bool    `gorm:"default:false" json:"is_captain"`
	IsViceCaptain  bool    `gorm:"default:false" json:"is_vice_captain"`
}

func (PredictionPlayer) TableName() string {
	return "prediction_players"
}
