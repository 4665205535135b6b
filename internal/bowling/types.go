package bowling

import (
	"time"

	"github.com/google/uuid"
)

// PinState is the status of one pin after a delivery.
type PinState string

const (
	PinStanding PinState = "standing"
	PinKnocked  PinState = "knocked"
)

const (
	// NumPins is the size of a standard rack.
	NumPins = 10
	// NumFrames per game.
	NumFrames = 10
)

// Mode distinguishes league play from open play.
type Mode string

const (
	ModeLeague Mode = "league"
	ModeOpen   Mode = "open"
)

// Roll records one delivery: the full ten-pin state plus the derived count.
// PinsKnocked is always recomputed from Pins, never set independently.
type Roll struct {
	Pins        []PinState `json:"pins"`
	PinsKnocked int        `json:"pins_knocked"`
}

// NewRoll copies the pin state and derives PinsKnocked.
func NewRoll(pins []PinState) Roll {
	cp := make([]PinState, len(pins))
	copy(cp, pins)
	return Roll{Pins: cp, PinsKnocked: KnockedCount(cp)}
}

// KnockedCount counts knocked entries in a pin state slice.
func KnockedCount(pins []PinState) int {
	n := 0
	for _, p := range pins {
		if p == PinKnocked {
			n++
		}
	}
	return n
}

// AllStanding returns a freshly racked deck.
func AllStanding() []PinState {
	pins := make([]PinState, NumPins)
	for i := range pins {
		pins[i] = PinStanding
	}
	return pins
}

// PinsFromNumbers builds a pin state slice with the given 1-based pin numbers
// knocked. Numbers outside 1..10 are ignored.
func PinsFromNumbers(knocked []int) []PinState {
	pins := AllStanding()
	for _, n := range knocked {
		if n >= 1 && n <= NumPins {
			pins[n-1] = PinKnocked
		}
	}
	return pins
}

// Frame is one of the ten scoring units. IsStrike and IsSpare are derived
// from Rolls on every mutation; stored values are never trusted on load.
type Frame struct {
	FrameNumber int    `json:"frame_number"`
	Rolls       []Roll `json:"rolls"`
	IsStrike    bool   `json:"is_strike"`
	IsSpare     bool   `json:"is_spare"`
}

func (f *Frame) recomputeFlags() {
	f.IsStrike = false
	f.IsSpare = false
	if len(f.Rolls) == 0 {
		return
	}
	if f.Rolls[0].PinsKnocked == NumPins {
		f.IsStrike = true
		return
	}
	if len(f.Rolls) >= 2 && f.Rolls[0].PinsKnocked+f.Rolls[1].PinsKnocked == NumPins {
		f.IsSpare = true
	}
}

// GameSession is one player's game: exactly ten frames, created empty and
// never resized. Sessions are plain values; callers own them and serialize
// them however they like. The engine itself performs no I/O.
type GameSession struct {
	ID         string     `json:"id"`
	Mode       Mode       `json:"mode"`
	LeagueID   string     `json:"league_id,omitempty"`
	Frames     []*Frame   `json:"frames"`
	StartedAt  time.Time  `json:"started_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
	FinalScore *int       `json:"final_score,omitempty"`
}

// NewSession creates a fresh ten-frame session with a new identifier.
func NewSession(mode Mode, leagueID string) *GameSession {
	frames := make([]*Frame, NumFrames)
	for i := range frames {
		frames[i] = &Frame{FrameNumber: i + 1, Rolls: []Roll{}}
	}
	return &GameSession{
		ID:        uuid.NewString(),
		Mode:      mode,
		LeagueID:  leagueID,
		Frames:    frames,
		StartedAt: time.Now(),
	}
}

// Normalize repairs a session that came back from storage: the frame array is
// padded back to ten entries, PinsKnocked is re-derived from the pin states,
// and the strike/spare flags are recomputed. Loaders must call this before
// using the session.
func (s *GameSession) Normalize() {
	if s == nil {
		return
	}
	if len(s.Frames) != NumFrames {
		frames := make([]*Frame, NumFrames)
		for i := 0; i < NumFrames && i < len(s.Frames); i++ {
			frames[i] = s.Frames[i]
		}
		s.Frames = frames
	}
	for i, f := range s.Frames {
		if f == nil {
			f = &Frame{}
			s.Frames[i] = f
		}
		f.FrameNumber = i + 1
		if f.Rolls == nil {
			f.Rolls = []Roll{}
		}
		for j := range f.Rolls {
			f.Rolls[j].PinsKnocked = KnockedCount(f.Rolls[j].Pins)
		}
		f.recomputeFlags()
	}
}
