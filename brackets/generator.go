package brackets

import (
	"context"

	"github.com/Rouva01/competition-system/models"
)

// GenerateParams carries everything a generator needs to build a fresh match
// graph. Ranked feeds the finals bracket (rank 1 = best seed), Grouped feeds
// the qualification round-robin. StartNumber seeds the global match counter;
// zero means start at 1.
type GenerateParams struct {
	TournamentID int
	Ranked       []models.BracketPlayer
	Grouped      []GroupedPlayer
	StartNumber  int
}

// Generator builds an in-memory match graph per invocation and hands it to
// the persistence boundary to write atomically. Zero or one player yields an
// empty result, not an error.
type Generator interface {
	Generate(ctx context.Context, params GenerateParams) ([]*models.Match, error)

	Name() string
}
