package models

import (
	"errors"
	"fmt"
)

type EventFormat string

const (
	FormatTimeAttack EventFormat = "time_attack"
	FormatBattle     EventFormat = "battle"
	FormatRace       EventFormat = "race"
	FormatCircuit    EventFormat = "circuit"
)

var ErrUnknownFormat = errors.New("unknown event format")

// FormatRules parametrizes the generic scoring and validation algorithms.
// One configuration per event format instead of per-format code paths.
type FormatRules struct {
	Format EventFormat

	// TargetRounds is the number of sub-round wins that decides a match
	// ("first to N"). Zero means the match ends on final tally instead.
	TargetRounds int

	// TiesAllowed controls whether equal final tallies are a legitimate
	// outcome (circuit) or a data error (battle must produce a winner).
	TiesAllowed bool

	PointsPerWin int
	PointsPerTie int
}

// TimeAttackCourses is the fixed course list every time-attack tournament
// runs. Each course is scored independently and the per-course scores sum
// into the qualification total.
var TimeAttackCourses = []string{
	"c01", "c02", "c03", "c04", "c05",
	"c06", "c07", "c08", "c09", "c10",
	"c11", "c12", "c13", "c14", "c15",
	"c16", "c17", "c18", "c19", "c20",
}

func RulesFor(format EventFormat) (FormatRules, error) {
	switch format {
	case FormatBattle:
		return FormatRules{Format: format, TargetRounds: 2, TiesAllowed: false, PointsPerWin: 2, PointsPerTie: 1}, nil
	case FormatRace:
		return FormatRules{Format: format, TargetRounds: 3, TiesAllowed: false, PointsPerWin: 2, PointsPerTie: 1}, nil
	case FormatCircuit:
		return FormatRules{Format: format, TiesAllowed: true, PointsPerWin: 2, PointsPerTie: 1}, nil
	case FormatTimeAttack:
		return FormatRules{Format: format, TiesAllowed: true}, nil
	default:
		return FormatRules{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// ValidCourse reports whether code belongs to the fixed course list.
func ValidCourse(code string) bool {
	for _, c := range TimeAttackCourses {
		if c == code {
			return true
		}
	}
	return false
}
