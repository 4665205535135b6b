package lanedto

// StartGameRequest opens a new game for a player, replacing any active one.
type StartGameRequest struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name,omitempty"`
	Lane       string `json:"lane,omitempty"`
	Venue      string `json:"venue,omitempty"`
	Mode       string `json:"mode,omitempty"` // "league" or "open", default open
	LeagueID   string `json:"league_id,omitempty"`
}

// RecordRollRequest records or corrects one delivery. KnockedPins lists the
// 1-based pin numbers that fell on this roll.
type RecordRollRequest struct {
	FrameIndex  int   `json:"frame_index"`
	RollIndex   int   `json:"roll_index"`
	KnockedPins []int `json:"knocked_pins"`
}

// ValidatePinsRequest pre-checks a pin selection before submission, so a UI
// can reject impossible combinations without touching the game.
type ValidatePinsRequest struct {
	KnockedPins []int `json:"knocked_pins"`
	// AlreadyDown lists pins down earlier in the same stance, if any.
	AlreadyDown []int `json:"already_down,omitempty"`
}

// ValidatePinsResponse mirrors the validator's verdict.
type ValidatePinsResponse struct {
	IsValid     bool     `json:"is_valid"`
	Errors      []string `json:"errors"`
	InvalidPins []int    `json:"invalid_pins"`
}
