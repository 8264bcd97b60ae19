package models

import "time"

type Stage string

const (
	StageQualification Stage = "qualification"
	StageFinals        Stage = "finals"
)

type BracketSection string

const (
	SectionWinners    BracketSection = "winners"
	SectionLosers     BracketSection = "losers"
	SectionGrandFinal BracketSection = "grand_final"
)

// RoundResult records the outcome of one sub-round of a match
// (one battle arena, one race course, one circuit lap set).
// Winner is the side that took the round: 1 or 2.
type RoundResult struct {
	Course string `json:"course,omitempty"`
	Arena  string `json:"arena,omitempty"`
	Winner int    `json:"winner"`
}

type Match struct {
	ID           int           `json:"id" db:"id"`
	TournamentID int           `json:"tournament_id" db:"tournament_id"`
	Stage        Stage         `json:"stage" db:"stage"`
	MatchNumber  int           `json:"match_number" db:"match_number"`
	Player1ID    *int          `json:"player1_id,omitempty" db:"player1_id"`
	Player2ID    *int          `json:"player2_id,omitempty" db:"player2_id"`
	Score1       int           `json:"score1" db:"score1"`
	Score2       int           `json:"score2" db:"score2"`
	Rounds       []RoundResult `json:"rounds,omitempty" db:"-"`
	Completed    bool          `json:"completed" db:"completed"`

	// Version increases by exactly 1 per successful mutation. Stale
	// writers are detected by comparing against it, never by locking.
	Version int `json:"version" db:"version"`

	// Finals-only bracket placement. WinnerGoesTo and LoserGoesTo hold
	// match numbers within the same tournament, not database ids.
	Section      *BracketSection `json:"section,omitempty" db:"section"`
	BracketSlot  *string         `json:"bracket_slot,omitempty" db:"bracket_slot"`
	WinnerGoesTo *int            `json:"winner_goes_to,omitempty" db:"winner_goes_to"`
	LoserGoesTo  *int            `json:"loser_goes_to,omitempty" db:"loser_goes_to"`
	Seed1        *int            `json:"seed1,omitempty" db:"seed1"`
	Seed2        *int            `json:"seed2,omitempty" db:"seed2"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (m *Match) CurrentVersion() int { return m.Version }

// HasPlayer reports whether playerID occupies either side of the match.
func (m *Match) HasPlayer(playerID int) bool {
	return (m.Player1ID != nil && *m.Player1ID == playerID) ||
		(m.Player2ID != nil && *m.Player2ID == playerID)
}

// WinnerSide returns 1 or 2 for a completed match with a decided winner,
// or 0 for a tie or an incomplete match.
func (m *Match) WinnerSide() int {
	if !m.Completed {
		return 0
	}
	switch {
	case m.Score1 > m.Score2:
		return 1
	case m.Score2 > m.Score1:
		return 2
	default:
		return 0
	}
}
