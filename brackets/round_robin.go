package brackets

import (
	"context"
	"math/rand"

	"github.com/Rouva01/competition-system/models"
)

// GroupLabels is the fixed ordered set of qualification groups.
var GroupLabels = []string{"A", "B", "C"}

// GroupedPlayer is a player with their qualification group assigned.
type GroupedPlayer struct {
	PlayerID int
	Group    string
}

// AssignGroups shuffles the players with an unbiased Fisher-Yates shuffle and
// assigns groups round-robin over labels by shuffled position. The result is
// a permutation of the input with group sizes differing by at most 1; the
// input slice is not mutated.
func AssignGroups(playerIDs []int, labels []string) []GroupedPlayer {
	if len(labels) == 0 {
		labels = GroupLabels
	}

	shuffled := make([]int, len(playerIDs))
	copy(shuffled, playerIDs)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	grouped := make([]GroupedPlayer, len(shuffled))
	for i, id := range shuffled {
		grouped[i] = GroupedPlayer{
			PlayerID: id,
			Group:    labels[i%len(labels)],
		}
	}
	return grouped
}

// RoundRobinGenerator emits the qualification match list: within each group,
// every unordered pair of distinct players meets exactly once. The match
// number counter is global across groups, not reset per group.
type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() Generator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) Name() string {
	return "RoundRobin"
}

func (g *RoundRobinGenerator) Generate(ctx context.Context, params GenerateParams) ([]*models.Match, error) {
	players := params.Grouped
	if len(players) < 2 {
		// Degenerate tournament: nothing to schedule.
		return nil, nil
	}

	byGroup := make(map[string][]GroupedPlayer)
	order := make([]string, 0, len(GroupLabels))
	for _, p := range players {
		if _, seen := byGroup[p.Group]; !seen {
			order = append(order, p.Group)
		}
		byGroup[p.Group] = append(byGroup[p.Group], p)
	}

	matchNumber := params.StartNumber
	if matchNumber <= 0 {
		matchNumber = 1
	}

	matches := make([]*models.Match, 0)
	for _, group := range order {
		members := byGroup[group]
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				p1 := members[i].PlayerID
				p2 := members[j].PlayerID
				matches = append(matches, &models.Match{
					TournamentID: params.TournamentID,
					Stage:        models.StageQualification,
					MatchNumber:  matchNumber,
					Player1ID:    &p1,
					Player2ID:    &p2,
					Version:      1,
				})
				matchNumber++
			}
		}
	}
	return matches, nil
}
