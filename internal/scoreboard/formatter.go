package scoreboard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lanekit/lanekeeper/internal/bowling"
	"github.com/lanekit/lanekeeper/internal/msgcat"
)

// Formatter renders scorecards and announcements as plain text.
type Formatter struct {
	cat *msgcat.Catalog
}

func NewFormatter(cat *msgcat.Catalog) *Formatter {
	return &Formatter{cat: cat}
}

// FrameMarks returns the scoreboard symbols for a frame's recorded rolls:
// "X" for a strike, "/" for the spare ball, "-" for a miss, else the count.
func FrameMarks(f *bowling.Frame, tenth bool) []string {
	marks := make([]string, 0, len(f.Rolls))
	for i, roll := range f.Rolls {
		marks = append(marks, markFor(f, i, roll, tenth))
	}
	return marks
}

func markFor(f *bowling.Frame, i int, roll bowling.Roll, tenth bool) string {
	fresh := i == 0
	if tenth && i > 0 {
		prev := f.Rolls[i-1].PinsKnocked
		if prev == bowling.NumPins {
			fresh = true
		} else if i == 2 && f.Rolls[0].PinsKnocked+f.Rolls[1].PinsKnocked == bowling.NumPins {
			fresh = true
		}
	}

	switch {
	case roll.PinsKnocked == bowling.NumPins && fresh:
		return "X"
	case !fresh && f.Rolls[i-1].PinsKnocked+roll.PinsKnocked == bowling.NumPins:
		return "/"
	case roll.PinsKnocked == 0:
		return "-"
	default:
		return strconv.Itoa(roll.PinsKnocked)
	}
}

// FormatText lays the whole game out as a three-line card, one column per
// frame. Used for the stored scoresheet and for text clients.
func (f *Formatter) FormatText(s *bowling.GameSession) string {
	if s == nil {
		return ""
	}
	var head, marks, totals []string
	running := 0
	for i, frame := range s.Frames {
		head = append(head, strconv.Itoa(i+1))
		marks = append(marks, strings.Join(FrameMarks(frame, i == bowling.NumFrames-1), " "))
		score, err := s.FrameScore(i)
		if err == nil {
			running += score
		}
		if len(frame.Rolls) == 0 {
			totals = append(totals, "")
		} else {
			totals = append(totals, strconv.Itoa(running))
		}
	}

	var b strings.Builder
	b.WriteString("frame: " + pad(head) + "\n")
	b.WriteString("marks: " + pad(marks) + "\n")
	b.WriteString("total: " + pad(totals))
	return b.String()
}

func pad(cols []string) string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = fmt.Sprintf("%-6s", c)
	}
	return strings.TrimRight(strings.Join(out, ""), " ")
}

// AnnounceRoll describes the latest state of one frame for broadcast.
func (f *Formatter) AnnounceRoll(player string, s *bowling.GameSession, frameIndex int) string {
	if s == nil || frameIndex < 0 || frameIndex >= bowling.NumFrames {
		return ""
	}
	frame := s.Frames[frameIndex]
	data := map[string]any{"Player": player, "Frame": frameIndex + 1}

	switch {
	case frame.IsStrike:
		return f.render("announce.strike", data, fmt.Sprintf("Strike! %s, frame %d", player, frameIndex+1))
	case frame.IsSpare:
		return f.render("announce.spare", data, fmt.Sprintf("Spare! %s, frame %d", player, frameIndex+1))
	default:
		knocked := 0
		for _, r := range frame.Rolls {
			knocked += r.PinsKnocked
		}
		data["Standing"] = bowling.NumPins - knocked
		return f.render("announce.open", data, fmt.Sprintf("%s, frame %d", player, frameIndex+1))
	}
}

// AnnounceGameOver returns the end-of-game line, with the perfect-game
// variant when earned.
func (f *Formatter) AnnounceGameOver(player string, total int) string {
	data := map[string]any{"Player": player, "Total": total}
	if total == 300 {
		return f.render("announce.perfect", data, fmt.Sprintf("%s rolled a 300!", player))
	}
	return f.render("announce.game_over", data, fmt.Sprintf("%s finished with %d", player, total))
}

func (f *Formatter) AnnounceGameStart(player, lane string) string {
	data := map[string]any{"Player": player, "Lane": lane}
	return f.render("game.started", data, fmt.Sprintf("%s is up", player))
}

func (f *Formatter) render(key string, data any, fallback string) string {
	if f == nil || f.cat == nil {
		return fallback
	}
	out, err := f.cat.Render(key, data)
	if err != nil {
		return fallback
	}
	return out
}
