package bowling

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoActiveGame is returned when an operation runs against a nil session.
var ErrNoActiveGame = errors.New("no active game session")

// BoundsError reports an argument outside its allowed range.
type BoundsError struct {
	Field string
	Value int
	Min   int
	Max   int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("%s out of range: %d (allowed %d..%d)", e.Field, e.Value, e.Min, e.Max)
}

// SequencingError reports a roll recorded out of order or into a closed
// frame. Rolls are appended contiguously or corrected in place, never jumped.
type SequencingError struct {
	FrameIndex int
	RollIndex  int
	Reason     string
}

func (e *SequencingError) Error() string {
	return fmt.Sprintf("frame %d roll %d: %s", e.FrameIndex+1, e.RollIndex+1, e.Reason)
}

// PhysicsError reports a pin combination the validator rejected. Pins holds
// the offending 1-based pin numbers, Reasons the human-readable explanations.
type PhysicsError struct {
	FrameIndex int
	RollIndex  int
	Pins       []int
	Reasons    []string
}

func (e *PhysicsError) Error() string {
	return fmt.Sprintf("frame %d roll %d: impossible pin combination: %s",
		e.FrameIndex+1, e.RollIndex+1, strings.Join(e.Reasons, "; "))
}
