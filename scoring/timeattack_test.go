package scoring

import (
	"testing"
	"time"

	"github.com/Rouva01/competition-system/models"
)

func TestParseTime(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"1:23.456", time.Minute + 23*time.Second + 456*time.Millisecond, true},
		{"0:00.000", 0, true},
		{"12:59.999", 12*time.Minute + 59*time.Second + 999*time.Millisecond, true},
		{"", 0, false},
		{"1:60.000", 0, false},
		{"1:23.45", 0, false},
		{"1.23.456", 0, false},
		{"-1:23.456", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseTime(tc.in)
		if ok != tc.ok {
			t.Fatalf("ParseTime(%q) ok = %v, expected %v", tc.in, ok, tc.ok)
		}
		if ok && got != tc.want {
			t.Fatalf("ParseTime(%q) = %v, expected %v", tc.in, got, tc.want)
		}
	}
}

func TestScoreTable(t *testing.T) {
	single := ScoreTable(1)
	if len(single) != 1 || single[0] != 50 {
		t.Fatalf("expected a lone entry to score 50, got %v", single)
	}

	five := ScoreTable(5)
	want := []float64{50, 37.5, 25, 12.5, 0}
	if len(five) != len(want) {
		t.Fatalf("expected %d values, got %d", len(want), len(five))
	}
	for i := range want {
		if five[i] != want[i] {
			t.Fatalf("ScoreTable(5)[%d] = %v, expected %v", i, five[i], want[i])
		}
	}
}

func entryWithTimes(playerID int, times map[string]string) *models.Entry {
	return &models.Entry{PlayerID: playerID, Times: times}
}

func TestCourseScoresTieAveraging(t *testing.T) {
	entries := []*models.Entry{
		entryWithTimes(1, map[string]string{"c01": "1:00.000"}),
		entryWithTimes(2, map[string]string{"c01": "1:05.000"}),
		entryWithTimes(3, map[string]string{"c01": "1:05.000"}),
	}

	scores := CourseScores(entries, "c01")
	if scores[1] != 50 {
		t.Fatalf("fastest entry scored %v, expected 50", scores[1])
	}
	// Ranks 2 and 3 tie, sharing (25+0)/2.
	if scores[2] != 12.5 || scores[3] != 12.5 {
		t.Fatalf("tied entries scored %v and %v, expected 12.5 each", scores[2], scores[3])
	}
}

func TestCourseScoresMissingTime(t *testing.T) {
	entries := []*models.Entry{
		entryWithTimes(1, map[string]string{"c01": "1:00.000"}),
		entryWithTimes(2, map[string]string{"c01": "1:10.000"}),
		entryWithTimes(3, map[string]string{}),
	}

	scores := CourseScores(entries, "c01")
	if scores[3] != 0 {
		t.Fatalf("entry without a time scored %v, expected 0", scores[3])
	}
	// The absent entry does not shrink the table for the rest.
	if scores[1] != 50 || scores[2] != 0 {
		t.Fatalf("expected the two timed entries to span the full table, got %v and %v", scores[1], scores[2])
	}
}

func TestAllCourseScoresFloorsOnce(t *testing.T) {
	// Fractional per-course scores must accumulate before flooring, so a
	// 12.5 + 25 total becomes 37, not 12 + 25.
	entries := []*models.Entry{
		entryWithTimes(1, map[string]string{"c01": "1:00.000", "c02": "1:00.000"}),
		entryWithTimes(2, map[string]string{"c01": "1:05.000", "c02": "1:05.000"}),
		entryWithTimes(3, map[string]string{"c01": "1:05.000", "c02": "1:10.000"}),
	}

	totals := AllCourseScores(entries, []string{"c01", "c02"})
	if totals[1] != 100 {
		t.Fatalf("winner of both courses totals %d, expected 100", totals[1])
	}
	// c01: players 2 and 3 tie for (25+0)/2 = 12.5 each; c02: player 2
	// scores 25 outright. Total 37.5 floors to 37.
	if totals[2] != 37 {
		t.Fatalf("player 2 totals %d, expected 37", totals[2])
	}
	if totals[3] != 12 {
		t.Fatalf("player 3 totals %d, expected 12", totals[3])
	}
}

func TestAllCourseScoresPerfectSweep(t *testing.T) {
	entries := []*models.Entry{
		entryWithTimes(1, map[string]string{}),
		entryWithTimes(2, map[string]string{}),
	}
	for _, course := range models.TimeAttackCourses {
		entries[0].Times[course] = "1:00.000"
		entries[1].Times[course] = "1:30.000"
	}

	totals := AllCourseScores(entries, models.TimeAttackCourses)
	want := 50 * len(models.TimeAttackCourses)
	if totals[1] != want {
		t.Fatalf("sweeping every course totals %d, expected %d", totals[1], want)
	}
	if totals[2] != 0 {
		t.Fatalf("losing every course totals %d, expected 0", totals[2])
	}
}

func TestRankEntries(t *testing.T) {
	entries := []*models.Entry{
		entryWithTimes(1, map[string]string{"c01": "1:10.000"}),
		entryWithTimes(2, map[string]string{"c01": "1:00.000"}),
		entryWithTimes(3, map[string]string{"c01": "1:05.000"}),
	}

	RankEntries(entries, []string{"c01"})

	wantOrder := []int{2, 3, 1}
	for i, want := range wantOrder {
		if entries[i].PlayerID != want {
			t.Fatalf("rank %d is player %d, expected %d", i+1, entries[i].PlayerID, want)
		}
		if entries[i].Rank == nil || *entries[i].Rank != i+1 {
			t.Fatalf("player %d has rank %+v, expected %d", entries[i].PlayerID, entries[i].Rank, i+1)
		}
	}
	if entries[0].QualificationPoints != 50 {
		t.Fatalf("leader has %d points, expected 50", entries[0].QualificationPoints)
	}
	if entries[0].TotalTimeMS != 60000 {
		t.Fatalf("leader total time %d ms, expected 60000", entries[0].TotalTimeMS)
	}
}

func TestRankEntriesTotalTimeTiebreak(t *testing.T) {
	// One course win each leaves both players on 50 points, so the summed
	// time across all courses decides.
	entries := []*models.Entry{
		entryWithTimes(1, map[string]string{"c01": "1:00.000", "c02": "2:00.000"}),
		entryWithTimes(2, map[string]string{"c01": "1:10.000", "c02": "1:40.000"}),
	}

	RankEntries(entries, []string{"c01", "c02"})

	if entries[0].PlayerID != 2 {
		t.Fatalf("expected player 2 to lead on total time, got player %d", entries[0].PlayerID)
	}
}
