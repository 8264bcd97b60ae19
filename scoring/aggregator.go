// Package scoring converts raw match outcomes into standings. Aggregation
// always recomputes from the complete completed-match set rather than
// patching prior aggregates, so out-of-order completions cannot drift it.
package scoring

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Rouva01/competition-system/models"
)

// ErrNoWinner reports a completed match whose tallies are equal under a
// format that must produce a winner. Exact integer equality; every battle
// has a winner, so an equal tally is bad data, not a tie.
var ErrNoWinner = errors.New("match has equal scores but format does not allow ties")

// Stats is the per-player aggregate over completed matches.
type Stats struct {
	PlayerID   int
	Played     int
	Wins       int
	Ties       int
	Losses     int
	WinRounds  int
	LossRounds int

	// Points is the round differential, Score the format's linear
	// combination over wins and ties (the primary standings key).
	Points int
	Score  int
}

// Aggregate walks every completed match involving playerID and accumulates
// win/loss/tie counts, round tallies and the derived score. Incomplete
// matches are never read. Recomputing from the same match set always yields
// the same stats.
func Aggregate(playerID int, matches []*models.Match, rules models.FormatRules) (*Stats, error) {
	stats := &Stats{PlayerID: playerID}

	for _, match := range matches {
		if !match.Completed || !match.HasPlayer(playerID) {
			continue
		}

		own, opp := match.Score1, match.Score2
		if match.Player2ID != nil && *match.Player2ID == playerID {
			own, opp = opp, own
		}

		stats.Played++
		stats.WinRounds += own
		stats.LossRounds += opp

		switch {
		case own > opp:
			stats.Wins++
		case own < opp:
			stats.Losses++
		default:
			if !rules.TiesAllowed {
				return nil, fmt.Errorf("match %d (number %d): %w", match.ID, match.MatchNumber, ErrNoWinner)
			}
			stats.Ties++
		}
	}

	stats.Points = stats.WinRounds - stats.LossRounds
	stats.Score = rules.PointsPerWin*stats.Wins + rules.PointsPerTie*stats.Ties
	return stats, nil
}

// Apply copies the aggregate onto the player's qualification record. The
// record's derived fields stay a pure function of the completed-match set.
func (s *Stats) Apply(record *models.QualificationRecord) {
	record.Played = s.Played
	record.Wins = s.Wins
	record.Ties = s.Ties
	record.Losses = s.Losses
	record.WinRounds = s.WinRounds
	record.LossRounds = s.LossRounds
	record.Points = s.Points
	record.Score = s.Score
}

// SortRecords orders standings in place: score descending, then round
// differential descending, then player id for a stable total order.
func SortRecords(records []*models.QualificationRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Score != records[j].Score {
			return records[i].Score > records[j].Score
		}
		if records[i].Points != records[j].Points {
			return records[i].Points > records[j].Points
		}
		return records[i].PlayerID < records[j].PlayerID
	})
}

// ValidateResult rejects a malformed submission before any write happens.
func ValidateResult(score1, score2 int, rules models.FormatRules) error {
	if score1 < 0 || score2 < 0 {
		return fmt.Errorf("scores must be non-negative, got %d and %d", score1, score2)
	}
	if !rules.TiesAllowed && score1 == score2 {
		return fmt.Errorf("scores %d:%d: %w", score1, score2, ErrNoWinner)
	}
	if rules.TargetRounds > 0 {
		winning := score1
		if score2 > winning {
			winning = score2
		}
		if winning != rules.TargetRounds && score1 != score2 {
			return fmt.Errorf("winning score must reach %d round wins for %s, got %d:%d",
				rules.TargetRounds, rules.Format, score1, score2)
		}
	}
	return nil
}
