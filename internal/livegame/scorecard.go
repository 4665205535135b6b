package livegame

import (
	"github.com/lanekit/lanekeeper/internal/bowling"
	"github.com/lanekit/lanekeeper/internal/scoreboard"
	"github.com/lanekit/lanekeeper/pkg/lanedto"
)

// Snapshot derives the full scorecard DTO for a game. Everything is computed
// from the roll data on every call; nothing here is cached or stored.
func Snapshot(g *Game) lanedto.Scorecard {
	card := lanedto.Scorecard{
		GameID:     g.ID,
		PlayerID:   g.PlayerID,
		PlayerName: g.PlayerName,
		Lane:       g.Lane,
		Venue:      g.Venue,
		Status:     string(g.Status),
		StartedAt:  g.CreatedAt,
	}
	s := g.Session
	if s == nil {
		return card
	}
	card.Mode = string(s.Mode)
	card.LeagueID = s.LeagueID
	card.StartedAt = s.StartedAt
	card.EndedAt = s.EndedAt
	card.Complete = s.IsComplete()

	running := 0
	for i, frame := range s.Frames {
		score, err := s.FrameScore(i)
		if err != nil {
			score = 0
		}
		running += score
		pins := make([]int, 0, len(frame.Rolls))
		for _, r := range frame.Rolls {
			pins = append(pins, r.PinsKnocked)
		}
		card.Frames = append(card.Frames, lanedto.FrameLine{
			FrameNumber:  frame.FrameNumber,
			RollPins:     pins,
			Marks:        scoreboard.FrameMarks(frame, i == bowling.NumFrames-1),
			IsStrike:     frame.IsStrike,
			IsSpare:      frame.IsSpare,
			Score:        score,
			RunningTotal: running,
		})
	}
	card.Total = running
	return card
}
