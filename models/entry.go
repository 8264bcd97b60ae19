package models

// Entry is the time-attack qualification record: one row per player per
// tournament holding the submitted time for each course. Times are stored
// formatted as "M:SS.mmm"; a course with no submitted time contributes zero
// score and is never treated as missing data downstream.
type Entry struct {
	ID           int               `json:"id" db:"id"`
	TournamentID int               `json:"tournament_id" db:"tournament_id"`
	PlayerID     int               `json:"player_id" db:"player_id"`
	Times        map[string]string `json:"times" db:"-"`

	// TotalTimeMS sums the parsed course times in milliseconds and breaks
	// ties between equal point totals (lower is better).
	TotalTimeMS         int64 `json:"total_time_ms" db:"total_time_ms"`
	QualificationPoints int   `json:"qualification_points" db:"qualification_points"`
	Rank                *int  `json:"rank,omitempty" db:"rank"`

	Version int `json:"version" db:"version"`
}

func (e *Entry) CurrentVersion() int { return e.Version }
