package lanedto

import "time"

// FrameLine is one row of a scorecard.
type FrameLine struct {
	FrameNumber  int      `json:"frame_number"`
	RollPins     []int    `json:"roll_pins"` // knocked count per recorded roll
	Marks        []string `json:"marks"`     // "X", "/", "-", or the count
	IsStrike     bool     `json:"is_strike"`
	IsSpare      bool     `json:"is_spare"`
	Score        int      `json:"score"`
	RunningTotal int      `json:"running_total"`
}

// Scorecard is a full snapshot of one game, derived on read.
type Scorecard struct {
	GameID     string      `json:"game_id"`
	PlayerID   string      `json:"player_id"`
	PlayerName string      `json:"player_name,omitempty"`
	Lane       string      `json:"lane,omitempty"`
	Venue      string      `json:"venue,omitempty"`
	Mode       string      `json:"mode"`
	LeagueID   string      `json:"league_id,omitempty"`
	Status     string      `json:"status"`
	Frames     []FrameLine `json:"frames"`
	Total      int         `json:"total"`
	Complete   bool        `json:"complete"`
	StartedAt  time.Time   `json:"started_at"`
	EndedAt    *time.Time  `json:"ended_at,omitempty"`
}
