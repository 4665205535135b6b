package bowling

import (
	"fmt"
	"sort"
)

// ValidationResult is the validator's verdict on a proposed pin combination.
type ValidationResult struct {
	IsValid     bool     `json:"is_valid"`
	Errors      []string `json:"errors"`
	InvalidPins []int    `json:"invalid_pins"`
}

// pinDependencies maps each 1-based pin number to its dependency groups. A
// pin is reachable when every pin in at least one group is already down
// (OR over AND-groups). Pin 1 has no groups and is always reachable.
//
// The rack, head pin at the bottom:
//
//	7 8 9 10
//	 4 5 6
//	  2 3
//	   1
var pinDependencies = map[int][][]int{
	1:  {},
	2:  {{1}},
	3:  {{1}},
	4:  {{1}, {2}},
	5:  {{1}},
	6:  {{1}, {3}},
	7:  {{4}},
	8:  {{5}},
	9:  {{6}},
	10: {{6}},
}

// ValidatePinCombination decides whether pins describes a physically
// achievable delivery. previous, when non-nil, supplies the pins already down
// in the same stance; those may not be knocked again. The function is pure
// and deterministic.
func ValidatePinCombination(pins []PinState, previous *Roll) ValidationResult {
	res := ValidationResult{IsValid: true, Errors: []string{}, InvalidPins: []int{}}
	if len(pins) != NumPins {
		res.IsValid = false
		res.Errors = append(res.Errors, fmt.Sprintf("pin state must have exactly %d entries, got %d", NumPins, len(pins)))
		return res
	}

	start := AllStanding()
	if previous != nil && len(previous.Pins) == NumPins {
		copy(start, previous.Pins)
	}

	invalid := make(map[int]bool)

	// a pin cannot be knocked down twice in the same stance
	for i := 0; i < NumPins; i++ {
		if pins[i] == PinKnocked && start[i] == PinKnocked {
			res.Errors = append(res.Errors, fmt.Sprintf("pin %d is already knocked down", i+1))
			invalid[i+1] = true
		}
	}

	// cumulative stance: everything down before plus everything down now
	cumulative := make([]PinState, NumPins)
	copy(cumulative, start)
	for i := 0; i < NumPins; i++ {
		if pins[i] == PinKnocked {
			cumulative[i] = PinKnocked
		}
	}

	for i := 0; i < NumPins; i++ {
		if cumulative[i] != PinKnocked {
			continue
		}
		pin := i + 1
		groups := pinDependencies[pin]
		if len(groups) == 0 || anyGroupSatisfied(groups, cumulative) {
			continue
		}
		res.Errors = append(res.Errors, fmt.Sprintf("pin %d cannot be knocked without pin %d", pin, groups[0][0]))
		invalid[pin] = true
	}

	for pin := range invalid {
		res.InvalidPins = append(res.InvalidPins, pin)
	}
	sort.Ints(res.InvalidPins)
	res.IsValid = len(res.Errors) == 0
	return res
}

func anyGroupSatisfied(groups [][]int, state []PinState) bool {
	for _, group := range groups {
		ok := true
		for _, dep := range group {
			if state[dep-1] != PinKnocked {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

// IsPhysicallyPossible reports whether the combination is reachable on a
// fresh rack. With no history there is no re-knock check, only the
// dependency graph.
func IsPhysicallyPossible(pins []PinState) bool {
	return ValidatePinCombination(pins, nil).IsValid
}

// GetInvalidPins returns just the offending pin numbers.
func GetInvalidPins(pins []PinState, previous *Roll) []int {
	return ValidatePinCombination(pins, previous).InvalidPins
}
