package bowling

import (
	"fmt"
	"time"
)

const (
	maxRollsStandard = 2
	maxRollsTenth    = 3
)

func maxRolls(frameIndex int) int {
	if frameIndex == NumFrames-1 {
		return maxRollsTenth
	}
	return maxRollsStandard
}

// RecordRoll writes one delivery into the session. A rollIndex equal to the
// frame's current roll count appends; a smaller index overwrites the existing
// roll (a correction); a larger one is a sequencing violation. Pin physics
// are validated against the effective previous roll before anything is
// written, so a rejected roll leaves the session untouched.
func (s *GameSession) RecordRoll(frameIndex, rollIndex int, pins []PinState) error {
	if s == nil {
		return ErrNoActiveGame
	}
	if frameIndex < 0 || frameIndex >= NumFrames {
		return &BoundsError{Field: "frame index", Value: frameIndex, Min: 0, Max: NumFrames - 1}
	}
	if rollIndex < 0 || rollIndex >= maxRolls(frameIndex) {
		return &BoundsError{Field: "roll index", Value: rollIndex, Min: 0, Max: maxRolls(frameIndex) - 1}
	}
	if len(pins) != NumPins {
		return &BoundsError{Field: "pin count", Value: len(pins), Min: NumPins, Max: NumPins}
	}

	frame := s.Frames[frameIndex]
	if rollIndex > len(frame.Rolls) {
		return &SequencingError{FrameIndex: frameIndex, RollIndex: rollIndex,
			Reason: fmt.Sprintf("rolls must be recorded in order, next is %d", len(frame.Rolls))}
	}

	appending := rollIndex == len(frame.Rolls)
	if frameIndex < NumFrames-1 {
		if appending && rollIndex == 1 && frame.Rolls[0].PinsKnocked == NumPins {
			return &SequencingError{FrameIndex: frameIndex, RollIndex: rollIndex,
				Reason: "frame is closed by a strike"}
		}
	} else if appending && rollIndex == 2 && !thirdRollEarned(frame) {
		return &SequencingError{FrameIndex: frameIndex, RollIndex: rollIndex,
			Reason: "third roll requires a strike or spare"}
	}

	prev := s.effectivePreviousRoll(frameIndex, rollIndex)
	if vr := ValidatePinCombination(pins, prev); !vr.IsValid {
		return &PhysicsError{FrameIndex: frameIndex, RollIndex: rollIndex,
			Pins: vr.InvalidPins, Reasons: vr.Errors}
	}

	roll := NewRoll(pins)
	if appending {
		frame.Rolls = append(frame.Rolls, roll)
	} else {
		frame.Rolls[rollIndex] = roll
	}
	frame.recomputeFlags()
	return nil
}

// thirdRollEarned reports whether the tenth frame's first two rolls opened
// the bonus roll: a first-roll strike or a two-roll spare.
func thirdRollEarned(frame *Frame) bool {
	if len(frame.Rolls) < 2 {
		return false
	}
	if frame.Rolls[0].PinsKnocked == NumPins {
		return true
	}
	return frame.Rolls[0].PinsKnocked+frame.Rolls[1].PinsKnocked == NumPins
}

// effectivePreviousRoll resolves the stance a new roll is thrown into. Pins
// are re-racked at the start of every frame, after any strike within the
// tenth frame, and before the tenth frame's third roll when the first two
// rolls made a spare.
func (s *GameSession) effectivePreviousRoll(frameIndex, rollIndex int) *Roll {
	if rollIndex == 0 {
		return nil
	}
	frame := s.Frames[frameIndex]
	if rollIndex-1 >= len(frame.Rolls) {
		return nil
	}
	prev := frame.Rolls[rollIndex-1]
	if frameIndex == NumFrames-1 {
		if prev.PinsKnocked == NumPins {
			return nil
		}
		if rollIndex == 2 && frame.Rolls[0].PinsKnocked+frame.Rolls[1].PinsKnocked == NumPins {
			return nil
		}
	}
	return &prev
}

// FrameScore computes the official score of one frame. Strike and spare
// bonuses are resolved by reading ahead into later frames; rolls not yet
// recorded contribute nothing, so mid-game scores are provisional and firm
// up as play continues. Nothing is cached.
func (s *GameSession) FrameScore(frameIndex int) (int, error) {
	if s == nil {
		return 0, ErrNoActiveGame
	}
	if frameIndex < 0 || frameIndex >= NumFrames {
		return 0, &BoundsError{Field: "frame index", Value: frameIndex, Min: 0, Max: NumFrames - 1}
	}

	frame := s.Frames[frameIndex]
	if frameIndex == NumFrames-1 {
		// terminal frame: no lookahead, just the pins that fell
		total := 0
		for _, r := range frame.Rolls {
			total += r.PinsKnocked
		}
		return total, nil
	}

	switch {
	case len(frame.Rolls) == 0:
		return 0, nil
	case frame.Rolls[0].PinsKnocked == NumPins:
		return NumPins + s.nextTwoRollsBonus(frameIndex), nil
	case len(frame.Rolls) < 2:
		return frame.Rolls[0].PinsKnocked, nil
	case frame.Rolls[0].PinsKnocked+frame.Rolls[1].PinsKnocked == NumPins:
		return NumPins + s.nextOneRollBonus(frameIndex), nil
	default:
		return frame.Rolls[0].PinsKnocked + frame.Rolls[1].PinsKnocked, nil
	}
}

// nextTwoRollsBonus resolves the two bonus rolls owed to a strike. When the
// following frame is itself a strike the second bonus roll comes from the
// frame after that, except for frame 9 where the tenth frame supplies both.
func (s *GameSession) nextTwoRollsBonus(frameIndex int) int {
	next := s.Frames[frameIndex+1]
	if len(next.Rolls) == 0 {
		return 0
	}
	first := next.Rolls[0]
	if first.PinsKnocked == NumPins && frameIndex < NumFrames-2 {
		bonus := first.PinsKnocked
		after := s.Frames[frameIndex+2]
		if len(after.Rolls) > 0 {
			bonus += after.Rolls[0].PinsKnocked
		}
		return bonus
	}
	bonus := first.PinsKnocked
	if len(next.Rolls) > 1 {
		bonus += next.Rolls[1].PinsKnocked
	}
	return bonus
}

func (s *GameSession) nextOneRollBonus(frameIndex int) int {
	next := s.Frames[frameIndex+1]
	if len(next.Rolls) == 0 {
		return 0
	}
	return next.Rolls[0].PinsKnocked
}

// TotalScore sums all ten frame scores. Purely derived, never stored.
func (s *GameSession) TotalScore() (int, error) {
	if s == nil {
		return 0, ErrNoActiveGame
	}
	total := 0
	for i := 0; i < NumFrames; i++ {
		score, err := s.FrameScore(i)
		if err != nil {
			return 0, err
		}
		total += score
	}
	return total, nil
}

// IsComplete is a pure predicate over the tenth frame's rolls, so it stays
// consistent with the session even after a correction.
func (s *GameSession) IsComplete() bool {
	if s == nil {
		return false
	}
	tenth := s.Frames[NumFrames-1]
	if len(tenth.Rolls) == 0 {
		return false
	}
	if tenth.Rolls[0].PinsKnocked == NumPins {
		return len(tenth.Rolls) >= 3
	}
	if len(tenth.Rolls) >= 2 && tenth.Rolls[0].PinsKnocked+tenth.Rolls[1].PinsKnocked == NumPins {
		return len(tenth.Rolls) >= 3
	}
	return len(tenth.Rolls) >= 2
}

// Finalize stamps the end time and final score once the game is complete.
// Returns false (and writes nothing) while rolls remain.
func (s *GameSession) Finalize(now time.Time) bool {
	if s == nil || !s.IsComplete() {
		return false
	}
	total, err := s.TotalScore()
	if err != nil {
		return false
	}
	s.EndedAt = &now
	s.FinalScore = &total
	return true
}

// Reopen clears the finalization stamp. Used after a correction drops the
// tenth frame back below completion.
func (s *GameSession) Reopen() {
	if s == nil {
		return
	}
	s.EndedAt = nil
	s.FinalScore = nil
}

// StateReport is the result of a diagnostic sweep over the session.
type StateReport struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}

// ValidateState reports structural damage across all ten frames without
// throwing. Most of these states are unreachable through RecordRoll alone
// but can be left behind by corrections of earlier rolls, or arrive in a
// session deserialized from elsewhere.
func (s *GameSession) ValidateState() StateReport {
	rep := StateReport{IsValid: true, Errors: []string{}}
	if s == nil {
		rep.IsValid = false
		rep.Errors = append(rep.Errors, ErrNoActiveGame.Error())
		return rep
	}

	for i, frame := range s.Frames {
		n := frame.FrameNumber
		for j, roll := range frame.Rolls {
			if len(roll.Pins) != NumPins || roll.PinsKnocked < 0 || roll.PinsKnocked > NumPins {
				rep.Errors = append(rep.Errors, fmt.Sprintf("frame %d roll %d: pin count out of range", n, j+1))
			}
		}

		if i < NumFrames-1 {
			if len(frame.Rolls) > maxRollsStandard {
				rep.Errors = append(rep.Errors, fmt.Sprintf("frame %d: %d rolls recorded, at most %d allowed", n, len(frame.Rolls), maxRollsStandard))
			}
			continue
		}

		if len(frame.Rolls) > maxRollsTenth {
			rep.Errors = append(rep.Errors, fmt.Sprintf("frame %d: %d rolls recorded, at most %d allowed", n, len(frame.Rolls), maxRollsTenth))
		}
		if len(frame.Rolls) < 2 {
			continue
		}
		first := frame.Rolls[0].PinsKnocked
		second := frame.Rolls[1].PinsKnocked
		if first != NumPins && first+second > NumPins {
			rep.Errors = append(rep.Errors, fmt.Sprintf("frame %d: first two rolls knock %d pins", n, first+second))
		}
		if len(frame.Rolls) >= 3 {
			if first != NumPins && first+second != NumPins {
				rep.Errors = append(rep.Errors, fmt.Sprintf("frame %d: third roll present without a strike or spare", n))
			}
			if first == NumPins && second != NumPins && second+frame.Rolls[2].PinsKnocked > NumPins {
				rep.Errors = append(rep.Errors, fmt.Sprintf("frame %d: second and third rolls knock %d pins", n, second+frame.Rolls[2].PinsKnocked))
			}
		}
	}

	rep.IsValid = len(rep.Errors) == 0
	return rep
}
