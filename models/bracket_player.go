package models

// BracketPlayer is a transient projection used only while generating the
// finals bracket. Rank is the 1-based qualifying rank (rank 1 = best seed).
type BracketPlayer struct {
	PlayerID int `json:"player_id"`
	Rank     int `json:"rank"`
	Losses   int `json:"losses"`
	Points   int `json:"points"`
}
