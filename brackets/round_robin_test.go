package brackets

import (
	"context"
	"testing"
)

func TestAssignGroupsIsPermutation(t *testing.T) {
	players := []int{10, 20, 30, 40, 50, 60, 70}
	grouped := AssignGroups(players, GroupLabels)

	if len(grouped) != len(players) {
		t.Fatalf("expected %d grouped players, got %d", len(players), len(grouped))
	}
	seen := make(map[int]int)
	for _, g := range grouped {
		seen[g.PlayerID]++
	}
	for _, id := range players {
		if seen[id] != 1 {
			t.Fatalf("player %d assigned %d times, expected exactly once", id, seen[id])
		}
	}
}

func TestAssignGroupsBalancesGroupSizes(t *testing.T) {
	players := []int{1, 2, 3, 4, 5, 6, 7, 8}
	grouped := AssignGroups(players, GroupLabels)

	counts := make(map[string]int)
	for _, g := range grouped {
		counts[g.Group]++
	}
	if len(counts) != len(GroupLabels) {
		t.Fatalf("expected all %d groups used, got %d", len(GroupLabels), len(counts))
	}
	min, max := len(players), 0
	for _, c := range counts {
		if c < min {
			min = c
		}
		if c > max {
			max = c
		}
	}
	if max-min > 1 {
		t.Fatalf("group sizes differ by more than 1: %v", counts)
	}
}

func TestAssignGroupsDoesNotMutateInput(t *testing.T) {
	players := []int{1, 2, 3, 4, 5}
	original := []int{1, 2, 3, 4, 5}
	AssignGroups(players, GroupLabels)
	for i := range players {
		if players[i] != original[i] {
			t.Fatalf("input slice mutated at index %d: %v", i, players)
		}
	}
}

func TestRoundRobinPairCounts(t *testing.T) {
	grouped := []GroupedPlayer{
		{PlayerID: 1, Group: "A"},
		{PlayerID: 2, Group: "A"},
		{PlayerID: 3, Group: "A"},
		{PlayerID: 4, Group: "B"},
		{PlayerID: 5, Group: "B"},
		{PlayerID: 6, Group: "B"},
		{PlayerID: 7, Group: "B"},
		{PlayerID: 8, Group: "C"},
		{PlayerID: 9, Group: "C"},
	}

	gen := NewRoundRobinGenerator()
	matches, err := gen.Generate(context.Background(), GenerateParams{
		TournamentID: 7,
		Grouped:      grouped,
		StartNumber:  1,
	})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	// 3 + 6 + 1 pairs across the three groups.
	if len(matches) != 10 {
		t.Fatalf("expected 10 matches, got %d", len(matches))
	}

	groupOf := make(map[int]string)
	for _, g := range grouped {
		groupOf[g.PlayerID] = g.Group
	}

	pairs := make(map[[2]int]bool)
	for i, m := range matches {
		if m.MatchNumber != i+1 {
			t.Fatalf("expected contiguous match numbers, match %d has number %d", i, m.MatchNumber)
		}
		if m.Player1ID == nil || m.Player2ID == nil {
			t.Fatalf("match %d missing players", m.MatchNumber)
		}
		p1, p2 := *m.Player1ID, *m.Player2ID
		if p1 == p2 {
			t.Fatalf("match %d pairs player %d against themselves", m.MatchNumber, p1)
		}
		if groupOf[p1] != groupOf[p2] {
			t.Fatalf("match %d crosses groups: %d (%s) vs %d (%s)",
				m.MatchNumber, p1, groupOf[p1], p2, groupOf[p2])
		}
		key := [2]int{p1, p2}
		if p2 < p1 {
			key = [2]int{p2, p1}
		}
		if pairs[key] {
			t.Fatalf("pair %v scheduled twice", key)
		}
		pairs[key] = true
		if m.Version != 1 {
			t.Fatalf("match %d created with version %d, expected 1", m.MatchNumber, m.Version)
		}
	}
}

func TestRoundRobinRespectsStartNumber(t *testing.T) {
	grouped := []GroupedPlayer{
		{PlayerID: 1, Group: "A"},
		{PlayerID: 2, Group: "A"},
	}

	gen := NewRoundRobinGenerator()
	matches, err := gen.Generate(context.Background(), GenerateParams{
		TournamentID: 1,
		Grouped:      grouped,
		StartNumber:  42,
	})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].MatchNumber != 42 {
		t.Fatalf("expected match number 42, got %d", matches[0].MatchNumber)
	}
}

func TestRoundRobinTooFewPlayers(t *testing.T) {
	gen := NewRoundRobinGenerator()
	for _, grouped := range [][]GroupedPlayer{nil, {{PlayerID: 1, Group: "A"}}} {
		matches, err := gen.Generate(context.Background(), GenerateParams{
			TournamentID: 1,
			Grouped:      grouped,
			StartNumber:  1,
		})
		if err != nil {
			t.Fatalf("generate failed for %d players: %v", len(grouped), err)
		}
		if len(matches) != 0 {
			t.Fatalf("expected no matches for %d players, got %d", len(grouped), len(matches))
		}
	}
}
