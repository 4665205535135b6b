package livegame

import (
	"time"

	"github.com/lanekit/lanekeeper/internal/bowling"
)

// Status represents a live game lifecycle state.
type Status string

const (
	StatusOpen      Status = "OPEN"
	StatusComplete  Status = "COMPLETE"
	StatusAbandoned Status = "ABANDONED"
)

// Game is the persisted state of one player's game in progress.
type Game struct {
	ID         string               `json:"id"`
	PlayerID   string               `json:"player_id"`
	PlayerName string               `json:"player_name"`
	Lane       string               `json:"lane,omitempty"`
	Venue      string               `json:"venue,omitempty"`
	Status     Status               `json:"status"`
	Session    *bowling.GameSession `json:"session"`
	CreatedAt  time.Time            `json:"created_at"`
	UpdatedAt  time.Time            `json:"updated_at"`
}
