package brackets

import (
	"context"
	"testing"

	"github.com/Rouva01/competition-system/models"
)

func rankedPlayers(n int) []models.BracketPlayer {
	players := make([]models.BracketPlayer, n)
	for i := range players {
		players[i] = models.BracketPlayer{PlayerID: 100 + i, Rank: i + 1}
	}
	return players
}

func generateBracket(t *testing.T, n, startNumber int) []*models.Match {
	t.Helper()
	gen := NewDoubleEliminationGenerator()
	matches, err := gen.Generate(context.Background(), GenerateParams{
		TournamentID: 3,
		Ranked:       rankedPlayers(n),
		StartNumber:  startNumber,
	})
	if err != nil {
		t.Fatalf("generate failed for %d players: %v", n, err)
	}
	return matches
}

func TestDoubleEliminationEightPlayers(t *testing.T) {
	matches := generateBracket(t, 8, 1)

	if len(matches) != 14 {
		t.Fatalf("expected 14 matches for 8 players, got %d", len(matches))
	}

	counts := make(map[models.BracketSection]int)
	for _, m := range matches {
		if m.Section == nil {
			t.Fatalf("match %d has no section", m.MatchNumber)
		}
		counts[*m.Section]++
	}
	if counts[models.SectionWinners] != 7 {
		t.Fatalf("expected 7 winners matches, got %d", counts[models.SectionWinners])
	}
	if counts[models.SectionLosers] != 6 {
		t.Fatalf("expected 6 losers matches, got %d", counts[models.SectionLosers])
	}
	if counts[models.SectionGrandFinal] != 1 {
		t.Fatalf("expected 1 grand final, got %d", counts[models.SectionGrandFinal])
	}

	// First four matches are the opening winners round. Seed 1 meets the
	// lowest seed, and the two halves keep seeds 1 and 2 apart.
	wantPairs := [][2]int{{1, 8}, {4, 5}, {2, 7}, {3, 6}}
	for i, want := range wantPairs {
		m := matches[i]
		if m.Seed1 == nil || m.Seed2 == nil {
			t.Fatalf("opening match %d missing seeds", m.MatchNumber)
		}
		if *m.Seed1 != want[0] || *m.Seed2 != want[1] {
			t.Fatalf("opening match %d seeded %dv%d, expected %dv%d",
				m.MatchNumber, *m.Seed1, *m.Seed2, want[0], want[1])
		}
	}
}

func TestDoubleEliminationAdvancementPointers(t *testing.T) {
	matches := generateBracket(t, 8, 1)

	byNumber := make(map[int]*models.Match)
	for _, m := range matches {
		byNumber[m.MatchNumber] = m
	}

	for _, m := range matches {
		isGrandFinal := m.Section != nil && *m.Section == models.SectionGrandFinal

		if isGrandFinal {
			if m.WinnerGoesTo != nil || m.LoserGoesTo != nil {
				t.Fatalf("grand final %d must not advance anywhere", m.MatchNumber)
			}
			continue
		}
		if m.WinnerGoesTo == nil {
			t.Fatalf("match %d has no destination for its winner", m.MatchNumber)
		}
		if *m.WinnerGoesTo <= m.MatchNumber {
			t.Fatalf("match %d winner advances backwards to %d", m.MatchNumber, *m.WinnerGoesTo)
		}
		if _, ok := byNumber[*m.WinnerGoesTo]; !ok {
			t.Fatalf("match %d winner advances to unknown match %d", m.MatchNumber, *m.WinnerGoesTo)
		}

		if *m.Section == models.SectionWinners {
			if m.LoserGoesTo == nil {
				t.Fatalf("winners match %d has no drop destination", m.MatchNumber)
			}
			if *m.LoserGoesTo <= m.MatchNumber {
				t.Fatalf("winners match %d loser drops backwards to %d", m.MatchNumber, *m.LoserGoesTo)
			}
			dest := byNumber[*m.LoserGoesTo]
			if dest == nil || dest.Section == nil || *dest.Section == models.SectionWinners {
				t.Fatalf("winners match %d loser must drop out of the winners bracket", m.MatchNumber)
			}
		} else if m.LoserGoesTo != nil {
			t.Fatalf("losers match %d loser should be eliminated, not advance to %d",
				m.MatchNumber, *m.LoserGoesTo)
		}
	}
}

func TestDoubleEliminationByesFavourTopSeeds(t *testing.T) {
	matches := generateBracket(t, 5, 1)

	// 2n-2 matches, byes collapse instead of producing placeholder matches.
	if len(matches) != 8 {
		t.Fatalf("expected 8 matches for 5 players, got %d", len(matches))
	}

	// Only seeds 4 and 5 play in the opening round; 1, 2 and 3 sit out.
	opening := matches[0]
	if opening.Seed1 == nil || opening.Seed2 == nil || *opening.Seed1 != 4 || *opening.Seed2 != 5 {
		t.Fatalf("expected opening match to be 4v5, got %+v vs %+v", opening.Seed1, opening.Seed2)
	}
	for _, m := range matches {
		if m.Seed1 != nil && m.Seed2 != nil && m.MatchNumber != opening.MatchNumber {
			if *m.Seed1 == 1 || *m.Seed2 == 1 {
				if m.Section != nil && *m.Section == models.SectionWinners {
					// Seed 1 enters in the second winners round against the
					// 4v5 winner, never earlier.
					if m.WinnerGoesTo == nil {
						t.Fatalf("seed 1 entry match %d lacks advancement", m.MatchNumber)
					}
				}
			}
		}
	}
}

func TestDoubleEliminationTwoPlayers(t *testing.T) {
	matches := generateBracket(t, 2, 10)

	if len(matches) != 2 {
		t.Fatalf("expected 2 matches for 2 players, got %d", len(matches))
	}
	final, gf := matches[0], matches[1]
	if final.MatchNumber != 10 || gf.MatchNumber != 11 {
		t.Fatalf("expected match numbers 10 and 11, got %d and %d", final.MatchNumber, gf.MatchNumber)
	}
	if gf.Section == nil || *gf.Section != models.SectionGrandFinal {
		t.Fatalf("expected second match to be the grand final, got %+v", gf.Section)
	}
	if final.WinnerGoesTo == nil || *final.WinnerGoesTo != 11 {
		t.Fatalf("expected winner of match 10 to advance to the grand final")
	}
	if final.LoserGoesTo == nil || *final.LoserGoesTo != 11 {
		t.Fatalf("expected loser of match 10 to reach the grand final from the other side")
	}
}

func TestDoubleEliminationDegenerateFields(t *testing.T) {
	for _, n := range []int{0, 1} {
		matches := generateBracket(t, n, 1)
		if len(matches) != 0 {
			t.Fatalf("expected no matches for %d players, got %d", n, len(matches))
		}
	}
}

func TestNeedsBracketReset(t *testing.T) {
	gfSection := models.SectionGrandFinal
	winnersSection := models.SectionWinners

	cases := []struct {
		name  string
		match *models.Match
		want  bool
	}{
		{"nil match", nil, false},
		{"not grand final", &models.Match{Section: &winnersSection, Completed: true, Score1: 1, Score2: 2}, false},
		{"winners champion holds", &models.Match{Section: &gfSection, Completed: true, Score1: 2, Score2: 1}, false},
		{"losers champion wins", &models.Match{Section: &gfSection, Completed: true, Score1: 1, Score2: 2}, true},
		{"not completed", &models.Match{Section: &gfSection, Score1: 1, Score2: 2}, false},
	}
	for _, tc := range cases {
		if got := NeedsBracketReset(tc.match); got != tc.want {
			t.Fatalf("%s: NeedsBracketReset = %v, expected %v", tc.name, got, tc.want)
		}
	}
}
