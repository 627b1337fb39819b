// Package gamification holds the pure progression rules: belt ranks, streak
// arithmetic, bonus composition and specialization level thresholds. Nothing in
// this package touches storage, so every function here is safe to call inside a
// transaction or from tests without setup.
package gamification

import (
	"fmt"
	"strings"
)

// Belt is the ordinal rank derived from a student's total points.
type Belt string

const (
	BeltWhite  Belt = "white"
	BeltYellow Belt = "yellow"
	BeltOrange Belt = "orange"
	BeltGreen  Belt = "green"
	BeltBlue   Belt = "blue"
	BeltPurple Belt = "purple"
	BeltBrown  Belt = "brown"
	BeltBlack  Belt = "black"
)

// BeltThreshold is the inclusive lower bound of points required for a belt.
type BeltThreshold struct {
	Belt      Belt  `json:"belt"`
	MinPoints int64 `json:"min_points"`
}

// ordered ascending; index+1 is the belt level.
var beltThresholds = []BeltThreshold{
	{Belt: BeltWhite, MinPoints: 0},
	{Belt: BeltYellow, MinPoints: 200},
	{Belt: BeltOrange, MinPoints: 400},
	{Belt: BeltGreen, MinPoints: 600},
	{Belt: BeltBlue, MinPoints: 900},
	{Belt: BeltPurple, MinPoints: 1200},
	{Belt: BeltBrown, MinPoints: 1600},
	{Belt: BeltBlack, MinPoints: 2000},
}

// BeltThresholds returns a copy of the belt table in ascending order.
func BeltThresholds() []BeltThreshold {
	out := make([]BeltThreshold, len(beltThresholds))
	copy(out, beltThresholds)
	return out
}

// BeltOf maps a point total to its belt. Totals below zero are treated as zero.
func BeltOf(totalPoints int64) Belt {
	belt := BeltWhite
	for _, threshold := range beltThresholds {
		if totalPoints < threshold.MinPoints {
			break
		}
		belt = threshold.Belt
	}
	return belt
}

// Level returns the 1-based ordinal of the belt, or 0 for an unknown belt.
func (b Belt) Level() int {
	for idx, threshold := range beltThresholds {
		if threshold.Belt == b {
			return idx + 1
		}
	}
	return 0
}

// Valid reports whether b is one of the eight known belts.
func (b Belt) Valid() bool {
	return b.Level() > 0
}

// AtLeast reports whether b ranks at or above other.
func (b Belt) AtLeast(other Belt) bool {
	return b.Level() >= other.Level()
}

func (b Belt) String() string {
	return string(b)
}

// ParseBelt normalises a belt name. Empty input resolves to white.
func ParseBelt(value string) (Belt, error) {
	normalized := Belt(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return BeltWhite, nil
	}
	if !normalized.Valid() {
		return "", fmt.Errorf("unknown belt %q", value)
	}
	return normalized, nil
}

// NextBelt returns the belt after the one earned by totalPoints and the points
// still missing to reach it. ok is false once the student holds the black belt.
func NextBelt(totalPoints int64) (next Belt, missing int64, ok bool) {
	level := BeltOf(totalPoints).Level()
	if level >= len(beltThresholds) {
		return "", 0, false
	}
	threshold := beltThresholds[level]
	if totalPoints < 0 {
		totalPoints = 0
	}
	return threshold.Belt, threshold.MinPoints - totalPoints, true
}
