package scoring

import (
	"errors"
	"testing"

	"github.com/Rouva01/competition-system/models"
)

func completedMatch(number, p1, p2, s1, s2 int) *models.Match {
	return &models.Match{
		MatchNumber: number,
		Player1ID:   &p1,
		Player2ID:   &p2,
		Score1:      s1,
		Score2:      s2,
		Completed:   true,
	}
}

func TestAggregateBattle(t *testing.T) {
	rules, err := models.RulesFor(models.FormatBattle)
	if err != nil {
		t.Fatalf("rules lookup failed: %v", err)
	}

	matches := []*models.Match{
		completedMatch(1, 1, 2, 2, 0),
		completedMatch(2, 1, 3, 2, 1),
		completedMatch(3, 2, 1, 2, 1), // player 1 loses from side 2
		completedMatch(4, 2, 3, 2, 0), // does not involve player 1
	}

	stats, err := Aggregate(1, matches, rules)
	if err != nil {
		t.Fatalf("aggregate failed: %v", err)
	}

	if stats.Played != 3 || stats.Wins != 2 || stats.Losses != 1 || stats.Ties != 0 {
		t.Fatalf("unexpected record: %+v", stats)
	}
	if stats.WinRounds != 5 || stats.LossRounds != 3 {
		t.Fatalf("expected 5 rounds won and 3 lost, got %d and %d", stats.WinRounds, stats.LossRounds)
	}
	if stats.Points != 2 {
		t.Fatalf("expected round differential 2, got %d", stats.Points)
	}
	if stats.Score != 4 {
		t.Fatalf("expected score 4 for two wins, got %d", stats.Score)
	}
}

func TestAggregateSkipsIncompleteMatches(t *testing.T) {
	rules, _ := models.RulesFor(models.FormatBattle)

	p1, p2 := 1, 2
	matches := []*models.Match{
		completedMatch(1, 1, 2, 2, 1),
		{MatchNumber: 2, Player1ID: &p1, Player2ID: &p2},
	}

	stats, err := Aggregate(1, matches, rules)
	if err != nil {
		t.Fatalf("aggregate failed: %v", err)
	}
	if stats.Played != 1 {
		t.Fatalf("incomplete match counted, played = %d", stats.Played)
	}
}

func TestAggregateEqualScoresNotATie(t *testing.T) {
	rules, _ := models.RulesFor(models.FormatBattle)

	matches := []*models.Match{completedMatch(5, 1, 2, 1, 1)}
	_, err := Aggregate(1, matches, rules)
	if !errors.Is(err, ErrNoWinner) {
		t.Fatalf("expected ErrNoWinner for equal battle scores, got %v", err)
	}
}

func TestAggregateCircuitTies(t *testing.T) {
	rules, _ := models.RulesFor(models.FormatCircuit)

	matches := []*models.Match{
		completedMatch(1, 1, 2, 3, 3),
		completedMatch(2, 1, 3, 4, 2),
	}

	stats, err := Aggregate(1, matches, rules)
	if err != nil {
		t.Fatalf("aggregate failed: %v", err)
	}
	if stats.Wins != 1 || stats.Ties != 1 || stats.Losses != 0 {
		t.Fatalf("unexpected record: %+v", stats)
	}
	if stats.Score != rules.PointsPerWin+rules.PointsPerTie {
		t.Fatalf("expected score %d, got %d", rules.PointsPerWin+rules.PointsPerTie, stats.Score)
	}
}

func TestSortRecords(t *testing.T) {
	records := []*models.QualificationRecord{
		{PlayerID: 3, Score: 4, Points: 1},
		{PlayerID: 1, Score: 6, Points: 0},
		{PlayerID: 2, Score: 4, Points: 3},
		{PlayerID: 4, Score: 4, Points: 1},
	}

	SortRecords(records)

	wantOrder := []int{1, 2, 3, 4}
	for i, want := range wantOrder {
		if records[i].PlayerID != want {
			t.Fatalf("position %d holds player %d, expected %d", i, records[i].PlayerID, want)
		}
	}
}

func TestValidateResult(t *testing.T) {
	battle, _ := models.RulesFor(models.FormatBattle)
	race, _ := models.RulesFor(models.FormatRace)
	circuit, _ := models.RulesFor(models.FormatCircuit)

	cases := []struct {
		name   string
		s1, s2 int
		rules  models.FormatRules
		ok     bool
	}{
		{"battle decided", 2, 1, battle, true},
		{"battle sweep", 2, 0, battle, true},
		{"battle equal scores", 1, 1, battle, false},
		{"battle short of target", 1, 0, battle, false},
		{"battle negative", -1, 2, battle, false},
		{"race decided", 3, 2, race, true},
		{"race short of target", 2, 1, race, false},
		{"circuit tie", 3, 3, circuit, true},
		{"circuit decided", 5, 2, circuit, true},
	}
	for _, tc := range cases {
		err := ValidateResult(tc.s1, tc.s2, tc.rules)
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%s: expected validation to fail", tc.name)
		}
	}
}
