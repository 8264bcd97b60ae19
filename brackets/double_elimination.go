package brackets

import (
	"context"
	"fmt"
	"math/bits"
	"sort"

	"github.com/Rouva01/competition-system/models"
)

// DoubleEliminationGenerator seeds a double-elimination match graph from
// players ordered by qualifying rank. The winners bracket uses the standard
// recursive seeding (seed 1 faces the lowest remaining seed per half), byes
// collapse in favour of the top seeds, and the losers bracket alternates
// minor rounds (losers-only pairings) with major rounds that take the drops
// from the corresponding winners round. Drop order is reversed on even
// winners rounds so two players cannot be scheduled to meet again before it
// is mathematically forced.
type DoubleEliminationGenerator struct{}

func NewDoubleEliminationGenerator() Generator {
	return &DoubleEliminationGenerator{}
}

func (g *DoubleEliminationGenerator) Name() string {
	return "DoubleElimination"
}

// slot is one feeding position in the bracket under construction: a known
// entrant, the winner or loser of an earlier match, or a bye.
type slot struct {
	player *models.BracketPlayer
	seed   int
	match  *models.Match
	loser  bool
	bye    bool
}

type bracketBuilder struct {
	tournamentID int
	nextNumber   int
	matches      []*models.Match
}

func (b *bracketBuilder) newMatch(section models.BracketSection, label string) *models.Match {
	sec := section
	m := &models.Match{
		TournamentID: b.tournamentID,
		Stage:        models.StageFinals,
		MatchNumber:  b.nextNumber,
		Section:      &sec,
		BracketSlot:  &label,
		Version:      1,
	}
	b.nextNumber++
	b.matches = append(b.matches, m)
	return m
}

// fillSide places s on the given side of m: a known entrant sets the player
// and seed, a feeder match gets its advancement pointer set instead.
func fillSide(m *models.Match, side int, s slot) {
	if s.player != nil {
		id := s.player.PlayerID
		seed := s.seed
		if side == 1 {
			m.Player1ID = &id
			m.Seed1 = &seed
		} else {
			m.Player2ID = &id
			m.Seed2 = &seed
		}
		return
	}
	if s.match != nil {
		num := m.MatchNumber
		if s.loser {
			s.match.LoserGoesTo = &num
		} else {
			s.match.WinnerGoesTo = &num
		}
	}
}

// seedOrder lists seeds in bracket position order for a power-of-two size,
// expanding [1] by mirroring each round: 1,2 -> 1,4,2,3 -> 1,8,4,5,2,7,3,6.
// Adjacent pairs form the first-round matches, so seed 1 meets the lowest
// seed and the top seeds can only meet in later rounds.
func seedOrder(size int) []int {
	order := []int{1}
	for len(order) < size {
		mirror := len(order)*2 + 1
		next := make([]int, 0, len(order)*2)
		for _, s := range order {
			next = append(next, s, mirror-s)
		}
		order = next
	}
	return order
}

func (g *DoubleEliminationGenerator) Generate(ctx context.Context, params GenerateParams) ([]*models.Match, error) {
	players := make([]models.BracketPlayer, len(params.Ranked))
	copy(players, params.Ranked)
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].Rank < players[j].Rank
	})

	n := len(players)
	if n <= 1 {
		// Degenerate tournament: the caller handles the empty bracket.
		return nil, nil
	}

	numRounds := bits.Len(uint(n - 1))
	size := 1 << numRounds

	b := &bracketBuilder{
		tournamentID: params.TournamentID,
		nextNumber:   params.StartNumber,
	}
	if b.nextNumber <= 0 {
		b.nextNumber = 1
	}

	// Winners bracket. Byes only appear in round 1, paired against the top
	// seeds by construction of the seed order.
	cur := make([]slot, size)
	for i, seed := range seedOrder(size) {
		if seed <= n {
			p := players[seed-1]
			cur[i] = slot{player: &p, seed: seed}
		} else {
			cur[i] = slot{bye: true}
		}
	}

	wrLosers := make([][]slot, numRounds+1)
	for r := 1; r <= numRounds; r++ {
		next := make([]slot, 0, len(cur)/2)
		losers := make([]slot, 0, len(cur)/2)
		for i := 0; i < len(cur); i += 2 {
			a, b2 := cur[i], cur[i+1]
			switch {
			case a.bye && b2.bye:
				next = append(next, slot{bye: true})
				losers = append(losers, slot{bye: true})
			case b2.bye:
				next = append(next, a)
				losers = append(losers, slot{bye: true})
			case a.bye:
				next = append(next, b2)
				losers = append(losers, slot{bye: true})
			default:
				m := b.newMatch(models.SectionWinners, fmt.Sprintf("W%d-%d", r, len(next)+1))
				fillSide(m, 1, a)
				fillSide(m, 2, b2)
				next = append(next, slot{match: m})
				losers = append(losers, slot{match: m, loser: true})
			}
		}
		wrLosers[r] = losers
		cur = next
	}
	winnersChamp := cur[0]

	// Losers bracket. Each winners round k >= 2 contributes one minor round
	// (survivors of the previous losers round pair off) followed by one major
	// round (they meet the drops from winners round k).
	lcur := wrLosers[1]
	lround := 0
	for k := 2; k <= numRounds; k++ {
		lround++
		lcur = b.pairAdjacent(lcur, lround)

		drops := wrLosers[k]
		if k%2 == 0 {
			reverseSlots(drops)
		}
		merged := make([]slot, 0, len(lcur)*2)
		for i := range lcur {
			merged = append(merged, lcur[i], drops[i])
		}
		lround++
		lcur = b.pairAdjacent(merged, lround)
	}
	losersChamp := lcur[0]

	gf := b.newMatch(models.SectionGrandFinal, "GF")
	fillSide(gf, 1, winnersChamp)
	fillSide(gf, 2, losersChamp)

	return b.matches, nil
}

// pairAdjacent pairs slots (0,1), (2,3), ... into losers-bracket matches.
// A slot paired with a bye passes through unchanged; two byes stay a bye.
// Exactly one slot survives per pair, which keeps the minor and major rounds
// aligned with the winners-round drop counts.
func (b *bracketBuilder) pairAdjacent(slots []slot, round int) []slot {
	next := make([]slot, 0, len(slots)/2)
	for i := 0; i < len(slots); i += 2 {
		a, b2 := slots[i], slots[i+1]
		switch {
		case a.bye && b2.bye:
			next = append(next, slot{bye: true})
		case b2.bye:
			next = append(next, a)
		case a.bye:
			next = append(next, b2)
		default:
			m := b.newMatch(models.SectionLosers, fmt.Sprintf("L%d-%d", round, len(next)+1))
			fillSide(m, 1, a)
			fillSide(m, 2, b2)
			next = append(next, slot{match: m})
		}
	}
	return next
}

func reverseSlots(slots []slot) {
	for i, j := 0, len(slots)-1; i < j; i, j = i+1, j-1 {
		slots[i], slots[j] = slots[j], slots[i]
	}
}

// NeedsBracketReset reports whether the completed grand final was taken by
// the losers-bracket champion (side 2 by construction), which entitles the
// winners-bracket champion to a deciding follow-up match. The follow-up is
// created on demand, never as part of the generated graph.
func NeedsBracketReset(grandFinal *models.Match) bool {
	if grandFinal == nil || grandFinal.Section == nil || *grandFinal.Section != models.SectionGrandFinal {
		return false
	}
	return grandFinal.WinnerSide() == 2
}
