package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/Rouva01/competition-system/brackets"
	"github.com/Rouva01/competition-system/models"
	"github.com/Rouva01/competition-system/optimistic"
	"github.com/Rouva01/competition-system/repositories"
	"github.com/Rouva01/competition-system/scoring"
)

// advanceAttempts bounds internal advancement writes racing other scorers.
const advanceAttempts = 3

type SubmitResultRequest struct {
	MatchID         int                  `json:"match_id"`
	ExpectedVersion int                  `json:"expected_version"`
	Format          models.EventFormat   `json:"format"`
	Score1          int                  `json:"score1"`
	Score2          int                  `json:"score2"`
	Rounds          []models.RoundResult `json:"rounds,omitempty"`
}

// SubmitResultOutcome is the structured outcome a collaborator may log.
type SubmitResultOutcome struct {
	Match      *models.Match `json:"match"`
	OldVersion int           `json:"old_version"`
	NewVersion int           `json:"new_version"`
}

type MatchService interface {
	// SubmitResult records a final score for a match. A stale expected
	// version surfaces as *optimistic.VersionConflictError carrying the
	// authoritative version; the caller must re-fetch and resubmit.
	SubmitResult(ctx context.Context, req SubmitResultRequest) (*SubmitResultOutcome, error)

	ListByTournament(ctx context.Context, tournamentID int, stage *models.Stage) ([]*models.Match, error)
}

type matchService struct {
	matchRepo  repositories.MatchRepository
	controller *optimistic.Controller[*models.Match]
	standings  StandingsService
	hub        *brackets.Hub
}

func NewMatchService(
	matchRepo repositories.MatchRepository,
	controller *optimistic.Controller[*models.Match],
	standings StandingsService,
	hub *brackets.Hub,
) MatchService {
	return &matchService{
		matchRepo:  matchRepo,
		controller: controller,
		standings:  standings,
		hub:        hub,
	}
}

func (s *matchService) ListByTournament(ctx context.Context, tournamentID int, stage *models.Stage) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListByTournament(ctx, nil, tournamentID, stage, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
	}
	return matches, nil
}

func (s *matchService) SubmitResult(ctx context.Context, req SubmitResultRequest) (*SubmitResultOutcome, error) {
	rules, err := models.RulesFor(req.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	if err := scoring.ValidateResult(req.Score1, req.Score2, rules); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	result, err := s.controller.Update(ctx, req.MatchID, req.ExpectedVersion, func(m *models.Match) error {
		if m.Player1ID == nil || m.Player2ID == nil {
			return ErrMatchNotReady
		}
		m.Score1 = req.Score1
		m.Score2 = req.Score2
		m.Rounds = req.Rounds
		m.Completed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	match, err := s.matchRepo.GetByID(ctx, nil, req.MatchID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload match %d after update: %w", req.MatchID, err)
	}

	if match.Stage == models.StageFinals {
		if err := s.advance(ctx, match); err != nil {
			return nil, err
		}
	}

	if req.Format != models.FormatTimeAttack {
		if _, err := s.standings.Recompute(ctx, match.TournamentID, req.Format); err != nil {
			return nil, err
		}
	}

	outcome := &SubmitResultOutcome{
		Match:      match,
		OldVersion: result.OldVersion,
		NewVersion: result.NewVersion,
	}
	s.hub.BroadcastEvent(brackets.TournamentEvent{
		Type:         brackets.EventMatchCompleted,
		TournamentID: match.TournamentID,
		Payload:      outcome,
	})
	s.hub.BroadcastEvent(brackets.TournamentEvent{
		Type:         brackets.EventStandingsUpdated,
		TournamentID: match.TournamentID,
	})
	return outcome, nil
}

// advance propagates a completed finals match into its forward pointers:
// the winner into WinnerGoesTo, the loser into LoserGoesTo.
func (s *matchService) advance(ctx context.Context, match *models.Match) error {
	side := match.WinnerSide()
	if side == 0 {
		// Finals formats always produce a winner; ties never reach here
		// because validation rejects them.
		return nil
	}

	winnerID, loserID := *match.Player1ID, *match.Player2ID
	if side == 2 {
		winnerID, loserID = loserID, winnerID
	}

	if match.WinnerGoesTo != nil {
		if err := s.placePlayer(ctx, match, *match.WinnerGoesTo, winnerID, false); err != nil {
			return err
		}
	}
	if match.LoserGoesTo != nil {
		if err := s.placePlayer(ctx, match, *match.LoserGoesTo, loserID, true); err != nil {
			return err
		}
	}
	return nil
}

func (s *matchService) placePlayer(ctx context.Context, from *models.Match, targetNumber, playerID int, asLoser bool) error {
	for attempt := 0; attempt < advanceAttempts; attempt++ {
		target, err := s.matchRepo.GetByNumber(ctx, nil, from.TournamentID, targetNumber)
		if err != nil {
			return fmt.Errorf("failed to load advancement target %d: %w", targetNumber, err)
		}

		_, err = s.controller.Update(ctx, target.ID, target.Version, func(m *models.Match) error {
			assignSlot(m, from, playerID, asLoser)
			return nil
		})
		if err == nil {
			return nil
		}

		var conflict *optimistic.VersionConflictError
		if errors.As(err, &conflict) {
			log.Printf("advancement into match %d lost a version race, retrying (attempt %d/%d)",
				targetNumber, attempt+1, advanceAttempts)
			continue
		}
		return fmt.Errorf("failed to place player %d into match %d: %w", playerID, targetNumber, err)
	}
	return fmt.Errorf("failed to place player %d into match %d after %d attempts", playerID, targetNumber, advanceAttempts)
}

// assignSlot puts the player on the correct side of the target match. In the
// grand final the winners-bracket champion always takes side 1 and the
// losers-bracket survivor side 2, so bracket-reset detection stays sound; in
// every other match the first free side is used.
func assignSlot(target *models.Match, from *models.Match, playerID int, asLoser bool) {
	if target.HasPlayer(playerID) {
		return
	}
	if target.Section != nil && *target.Section == models.SectionGrandFinal {
		if from.Section != nil && *from.Section == models.SectionWinners && !asLoser {
			target.Player1ID = &playerID
		} else {
			target.Player2ID = &playerID
		}
		return
	}
	if target.Player1ID == nil {
		target.Player1ID = &playerID
	} else {
		target.Player2ID = &playerID
	}
}
