package scoreboard

import (
	"strings"
	"testing"

	"github.com/lanekit/lanekeeper/internal/bowling"
)

func roll(t *testing.T, s *bowling.GameSession, frame, idx int, nums ...int) {
	t.Helper()
	if err := s.RecordRoll(frame, idx, bowling.PinsFromNumbers(nums)); err != nil {
		t.Fatalf("RecordRoll(%d,%d): %v", frame, idx, err)
	}
}

func allPins() []int {
	return []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
}

func TestFrameMarks(t *testing.T) {
	s := bowling.NewSession(bowling.ModeOpen, "")

	roll(t, s, 0, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9) // 9
	roll(t, s, 0, 1, 10)                        // spare ball
	got := FrameMarks(s.Frames[0], false)
	if len(got) != 2 || got[0] != "9" || got[1] != "/" {
		t.Fatalf("spare frame marks = %v, want [9 /]", got)
	}

	roll(t, s, 1, 0, allPins()...)
	got = FrameMarks(s.Frames[1], false)
	if len(got) != 1 || got[0] != "X" {
		t.Fatalf("strike frame marks = %v, want [X]", got)
	}

	roll(t, s, 2, 0)
	roll(t, s, 2, 1)
	got = FrameMarks(s.Frames[2], false)
	if len(got) != 2 || got[0] != "-" || got[1] != "-" {
		t.Fatalf("gutter frame marks = %v, want [- -]", got)
	}
}

func TestFrameMarksTenth(t *testing.T) {
	s := bowling.NewSession(bowling.ModeOpen, "")
	roll(t, s, 9, 0, allPins()...)
	roll(t, s, 9, 1, allPins()...)
	roll(t, s, 9, 2, 1, 2, 3, 4, 5, 6, 7)
	got := FrameMarks(s.Frames[9], true)
	if len(got) != 3 || got[0] != "X" || got[1] != "X" || got[2] != "7" {
		t.Fatalf("tenth frame marks = %v, want [X X 7]", got)
	}

	s = bowling.NewSession(bowling.ModeOpen, "")
	roll(t, s, 9, 0, allPins()...)
	roll(t, s, 9, 1, 1, 2, 3, 4)
	roll(t, s, 9, 2, 5, 6, 7, 8, 9, 10)
	got = FrameMarks(s.Frames[9], true)
	if len(got) != 3 || got[0] != "X" || got[1] != "4" || got[2] != "/" {
		t.Fatalf("tenth frame marks = %v, want [X 4 /]", got)
	}
}

func TestFormatTextShowsRunningTotals(t *testing.T) {
	f := NewFormatter(nil)
	s := bowling.NewSession(bowling.ModeOpen, "")
	roll(t, s, 0, 0, 1, 2, 3, 4, 5)
	roll(t, s, 0, 1, 6, 7, 8)

	out := f.FormatText(s)
	if !strings.Contains(out, "marks:") || !strings.Contains(out, "8") {
		t.Fatalf("unexpected card:\n%s", out)
	}
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected three card lines, got %d", len(lines))
	}
}

func TestAnnouncementsFallBackWithoutCatalog(t *testing.T) {
	f := NewFormatter(nil)
	s := bowling.NewSession(bowling.ModeOpen, "")
	roll(t, s, 0, 0, allPins()...)

	if msg := f.AnnounceRoll("Ada", s, 0); !strings.Contains(msg, "Ada") {
		t.Fatalf("announcement should name the player: %q", msg)
	}
	if msg := f.AnnounceGameOver("Ada", 300); !strings.Contains(msg, "300") {
		t.Fatalf("perfect game announcement should carry the score: %q", msg)
	}
}

func TestCurrentStance(t *testing.T) {
	s := bowling.NewSession(bowling.ModeOpen, "")
	stance := CurrentStance(s)
	if bowling.KnockedCount(stance) != 0 {
		t.Fatalf("fresh game should show a full rack")
	}

	roll(t, s, 0, 0, 1, 2, 4, 7)
	stance = CurrentStance(s)
	if bowling.KnockedCount(stance) != 4 {
		t.Fatalf("stance after first roll should show 4 pins down, got %d", bowling.KnockedCount(stance))
	}

	roll(t, s, 0, 1, 3, 5)
	stance = CurrentStance(s)
	if bowling.KnockedCount(stance) != 0 {
		t.Fatalf("next frame should start from a full rack")
	}
}
