package bowling

import (
	"errors"
	"testing"
	"time"
)

func strike() []PinState { return pinsRange(1, 10) }

func mustRoll(t *testing.T, s *GameSession, frame, roll int, pins []PinState) {
	t.Helper()
	if err := s.RecordRoll(frame, roll, pins); err != nil {
		t.Fatalf("RecordRoll(%d,%d): %v", frame, roll, err)
	}
}

func TestPerfectGame(t *testing.T) {
	s := NewSession(ModeOpen, "")
	for i := 0; i < 9; i++ {
		mustRoll(t, s, i, 0, strike())
	}
	mustRoll(t, s, 9, 0, strike())
	mustRoll(t, s, 9, 1, strike())
	mustRoll(t, s, 9, 2, strike())

	for i := 0; i < NumFrames; i++ {
		score, err := s.FrameScore(i)
		if err != nil {
			t.Fatalf("FrameScore(%d): %v", i, err)
		}
		if score != 30 {
			t.Fatalf("frame %d score = %d, want 30", i+1, score)
		}
	}
	total, err := s.TotalScore()
	if err != nil || total != 300 {
		t.Fatalf("TotalScore = %d, %v; want 300", total, err)
	}
	if !s.IsComplete() {
		t.Fatalf("twelve strikes should complete the game")
	}
}

func TestSpareLadder(t *testing.T) {
	for k := 1; k <= 9; k++ {
		s := NewSession(ModeOpen, "")
		for i := 0; i < 9; i++ {
			mustRoll(t, s, i, 0, pinsRange(1, k))
			mustRoll(t, s, i, 1, pinsRange(k+1, 10))
		}
		mustRoll(t, s, 9, 0, pinsRange(1, k))
		mustRoll(t, s, 9, 1, pinsRange(k+1, 10))
		mustRoll(t, s, 9, 2, pinsRange(1, k)) // fresh rack after the spare

		total, err := s.TotalScore()
		if err != nil {
			t.Fatalf("k=%d TotalScore: %v", k, err)
		}
		want := 9*(10+k) + (10 + k)
		if total != want {
			t.Fatalf("k=%d total = %d, want %d", k, total, want)
		}
		if !s.IsComplete() {
			t.Fatalf("k=%d game should be complete", k)
		}
	}
}

func TestOpenFrameScore(t *testing.T) {
	s := NewSession(ModeOpen, "")
	mustRoll(t, s, 0, 0, pinsRange(1, 3))
	mustRoll(t, s, 0, 1, pinsRange(4, 7))
	score, err := s.FrameScore(0)
	if err != nil || score != 7 {
		t.Fatalf("FrameScore = %d, %v; want 7", score, err)
	}
}

func TestStrikeBonusResolvesAcrossFrames(t *testing.T) {
	s := NewSession(ModeOpen, "")
	mustRoll(t, s, 0, 0, strike())

	score, _ := s.FrameScore(0)
	if score != 10 {
		t.Fatalf("unresolved strike score = %d, want 10", score)
	}

	mustRoll(t, s, 1, 0, pinsRange(1, 3))
	mustRoll(t, s, 1, 1, pinsRange(4, 7))
	score, _ = s.FrameScore(0)
	if score != 17 {
		t.Fatalf("strike + (3,4) = %d, want 17", score)
	}
}

func TestConsecutiveStrikesBorrowFromTwoFrames(t *testing.T) {
	s := NewSession(ModeOpen, "")
	mustRoll(t, s, 0, 0, strike())
	mustRoll(t, s, 1, 0, strike())

	score, _ := s.FrameScore(0)
	if score != 20 {
		t.Fatalf("double with pending second bonus = %d, want 20", score)
	}

	mustRoll(t, s, 2, 0, pinsRange(1, 5))
	score, _ = s.FrameScore(0)
	if score != 25 {
		t.Fatalf("double then 5 = %d, want 25", score)
	}
}

func TestSpareScoreIsRecomputedNotMemoized(t *testing.T) {
	s := NewSession(ModeOpen, "")
	mustRoll(t, s, 0, 0, pinsRange(1, 5))
	mustRoll(t, s, 0, 1, pinsRange(6, 10))

	for i := 0; i < 3; i++ {
		if score, _ := s.FrameScore(0); score != 10 {
			t.Fatalf("pending spare score = %d, want 10", score)
		}
	}

	mustRoll(t, s, 1, 0, pinsRange(1, 7))
	if score, _ := s.FrameScore(0); score != 17 {
		t.Fatalf("resolved spare score = %d, want 17", score)
	}
}

func TestRecordedRollRoundTrip(t *testing.T) {
	s := NewSession(ModeLeague, "league-7")
	input := knock(1, 2, 4)
	mustRoll(t, s, 0, 0, input)

	got := s.Frames[0].Rolls[0]
	if got.PinsKnocked != 3 {
		t.Fatalf("PinsKnocked = %d, want 3", got.PinsKnocked)
	}
	for i := range input {
		if got.Pins[i] != input[i] {
			t.Fatalf("stored pins differ from input at %d", i)
		}
	}
}

func TestReKnockInSameFrameRejected(t *testing.T) {
	s := NewSession(ModeOpen, "")
	mustRoll(t, s, 0, 0, knock(1))

	err := s.RecordRoll(0, 1, knock(1))
	var perr *PhysicsError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PhysicsError, got %v", err)
	}
	if len(perr.Pins) != 1 || perr.Pins[0] != 1 {
		t.Fatalf("expected pin 1 flagged, got %v", perr.Pins)
	}
	if len(s.Frames[0].Rolls) != 1 {
		t.Fatalf("rejected roll must not be recorded")
	}
}

func TestTenthFrameStrikeStrikeSeven(t *testing.T) {
	s := NewSession(ModeOpen, "")
	mustRoll(t, s, 9, 0, strike())
	mustRoll(t, s, 9, 1, strike())
	mustRoll(t, s, 9, 2, pinsRange(1, 7))

	score, err := s.FrameScore(9)
	if err != nil || score != 27 {
		t.Fatalf("tenth frame score = %d, %v; want 27", score, err)
	}
	if !s.IsComplete() {
		t.Fatalf("game should be complete")
	}
}

func TestTenthFrameOpenCompletesAfterTwoRolls(t *testing.T) {
	s := NewSession(ModeOpen, "")
	mustRoll(t, s, 9, 0, pinsRange(1, 5))
	if s.IsComplete() {
		t.Fatalf("one roll cannot complete the game")
	}
	mustRoll(t, s, 9, 1, pinsRange(6, 8))
	if !s.IsComplete() {
		t.Fatalf("open tenth frame completes after two rolls")
	}
	if score, _ := s.FrameScore(9); score != 8 {
		t.Fatalf("tenth frame score = %d, want 8", score)
	}

	err := s.RecordRoll(9, 2, knock(9))
	var serr *SequencingError
	if !errors.As(err, &serr) {
		t.Fatalf("third roll without a mark must be a SequencingError, got %v", err)
	}
}

func TestCorrectionRecomputesStrikeFlagAndScore(t *testing.T) {
	s := NewSession(ModeOpen, "")
	mustRoll(t, s, 0, 0, strike())
	if !s.Frames[0].IsStrike {
		t.Fatalf("first roll of ten should be a strike")
	}

	// scorer re-enters the first roll as a 7
	mustRoll(t, s, 0, 0, pinsRange(1, 7))
	if s.Frames[0].IsStrike {
		t.Fatalf("correction must clear the strike flag")
	}
	if score, _ := s.FrameScore(0); score != 7 {
		t.Fatalf("corrected partial frame score = %d, want 7", score)
	}

	mustRoll(t, s, 0, 1, pinsRange(8, 9))
	if score, _ := s.FrameScore(0); score != 9 {
		t.Fatalf("corrected frame score = %d, want 9", score)
	}
}

func TestSequencingGapRejected(t *testing.T) {
	s := NewSession(ModeOpen, "")
	err := s.RecordRoll(0, 1, knock(1))
	var serr *SequencingError
	if !errors.As(err, &serr) {
		t.Fatalf("expected SequencingError, got %v", err)
	}
}

func TestSecondRollAfterStrikeRejected(t *testing.T) {
	s := NewSession(ModeOpen, "")
	mustRoll(t, s, 3, 0, strike())
	err := s.RecordRoll(3, 1, AllStanding())
	var serr *SequencingError
	if !errors.As(err, &serr) {
		t.Fatalf("expected SequencingError, got %v", err)
	}
}

func TestRecordRollBounds(t *testing.T) {
	s := NewSession(ModeOpen, "")
	var berr *BoundsError

	if err := s.RecordRoll(10, 0, AllStanding()); !errors.As(err, &berr) {
		t.Fatalf("frame index 10: expected BoundsError, got %v", err)
	}
	if err := s.RecordRoll(-1, 0, AllStanding()); !errors.As(err, &berr) {
		t.Fatalf("frame index -1: expected BoundsError, got %v", err)
	}
	if err := s.RecordRoll(0, -1, AllStanding()); !errors.As(err, &berr) {
		t.Fatalf("roll index -1: expected BoundsError, got %v", err)
	}
	if err := s.RecordRoll(0, 2, AllStanding()); !errors.As(err, &berr) {
		t.Fatalf("roll index 2 in frame 1: expected BoundsError, got %v", err)
	}
	if err := s.RecordRoll(0, 0, make([]PinState, 9)); !errors.As(err, &berr) {
		t.Fatalf("short pin slice: expected BoundsError, got %v", err)
	}
}

func TestNilSession(t *testing.T) {
	var s *GameSession
	if err := s.RecordRoll(0, 0, AllStanding()); !errors.Is(err, ErrNoActiveGame) {
		t.Fatalf("RecordRoll on nil session: %v", err)
	}
	if _, err := s.FrameScore(0); !errors.Is(err, ErrNoActiveGame) {
		t.Fatalf("FrameScore on nil session: %v", err)
	}
	if _, err := s.TotalScore(); !errors.Is(err, ErrNoActiveGame) {
		t.Fatalf("TotalScore on nil session: %v", err)
	}
	if s.IsComplete() {
		t.Fatalf("nil session cannot be complete")
	}
	if rep := s.ValidateState(); rep.IsValid {
		t.Fatalf("nil session must report invalid")
	}
}

func TestValidateStateAfterDamagingCorrection(t *testing.T) {
	s := NewSession(ModeOpen, "")
	mustRoll(t, s, 9, 0, strike())
	mustRoll(t, s, 9, 1, strike())
	mustRoll(t, s, 9, 2, pinsRange(1, 7))

	// correcting the first roll down to a 5 strands the third roll
	mustRoll(t, s, 9, 0, pinsRange(1, 5))

	rep := s.ValidateState()
	if rep.IsValid {
		t.Fatalf("stranded third roll should be reported")
	}
	if len(rep.Errors) == 0 {
		t.Fatalf("expected diagnostic errors")
	}
}

func TestValidateStateCleanGame(t *testing.T) {
	s := NewSession(ModeOpen, "")
	mustRoll(t, s, 0, 0, pinsRange(1, 4))
	mustRoll(t, s, 0, 1, pinsRange(5, 7))
	if rep := s.ValidateState(); !rep.IsValid {
		t.Fatalf("clean game reported invalid: %v", rep.Errors)
	}
}

func TestFinalizeAndReopen(t *testing.T) {
	s := NewSession(ModeOpen, "")
	if s.Finalize(time.Now()) {
		t.Fatalf("incomplete game must not finalize")
	}
	mustRoll(t, s, 9, 0, pinsRange(1, 5))
	mustRoll(t, s, 9, 1, pinsRange(6, 8))

	now := time.Now()
	if !s.Finalize(now) {
		t.Fatalf("complete game should finalize")
	}
	if s.EndedAt == nil || s.FinalScore == nil || *s.FinalScore != 8 {
		t.Fatalf("finalize stamp missing or wrong: %+v", s)
	}

	s.Reopen()
	if s.EndedAt != nil || s.FinalScore != nil {
		t.Fatalf("reopen must clear the stamp")
	}
}

func TestNormalizeRederivesState(t *testing.T) {
	s := NewSession(ModeOpen, "")
	mustRoll(t, s, 0, 0, pinsRange(1, 5))
	mustRoll(t, s, 0, 1, pinsRange(6, 10))

	// simulate stale persisted values
	s.Frames[0].IsSpare = false
	s.Frames[0].Rolls[0].PinsKnocked = 99
	s.Frames = s.Frames[:4]

	s.Normalize()
	if len(s.Frames) != NumFrames {
		t.Fatalf("frame array not padded back to %d", NumFrames)
	}
	if !s.Frames[0].IsSpare {
		t.Fatalf("spare flag not recomputed on load")
	}
	if s.Frames[0].Rolls[0].PinsKnocked != 5 {
		t.Fatalf("PinsKnocked not rederived, got %d", s.Frames[0].Rolls[0].PinsKnocked)
	}
	if s.Frames[7].FrameNumber != 8 {
		t.Fatalf("padded frames must be numbered")
	}
}
