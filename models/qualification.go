package models

import "time"

// QualificationRecord is the per player-per-tournament standings aggregate.
// Every counter on it is derived from the completed-match set by the scoring
// aggregator; records are never hand-edited.
type QualificationRecord struct {
	ID           int     `json:"id" db:"id"`
	TournamentID int     `json:"tournament_id" db:"tournament_id"`
	PlayerID     int     `json:"player_id" db:"player_id"`
	Group        *string `json:"group,omitempty" db:"group_label"`
	Played       int     `json:"played" db:"played"`
	Wins         int     `json:"wins" db:"wins"`
	Ties         int     `json:"ties" db:"ties"`
	Losses       int     `json:"losses" db:"losses"`
	WinRounds    int     `json:"win_rounds" db:"win_rounds"`
	LossRounds   int     `json:"loss_rounds" db:"loss_rounds"`

	// Points is the round differential (or driver points for circuit),
	// used as the standings tiebreaker. Score is the primary ranking key.
	Points int `json:"points" db:"points"`
	Score  int `json:"score" db:"score"`

	Version   int       `json:"version" db:"version"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (r *QualificationRecord) CurrentVersion() int { return r.Version }
