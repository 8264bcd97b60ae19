package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/Rouva01/competition-system/brackets"
	"github.com/Rouva01/competition-system/models"
	"github.com/Rouva01/competition-system/repositories"
)

// bracketResetSlot marks the on-demand deciding match after the grand final.
const bracketResetSlot = "GF-RESET"

type BracketService interface {
	// GenerateFinals seeds a double-elimination bracket from the latest
	// qualification standings and writes it atomically. Fewer than two
	// qualified players yields an empty bracket, not an error.
	GenerateFinals(ctx context.Context, tournamentID int, format models.EventFormat) ([]*models.Match, error)

	// CreateBracketReset creates the deciding follow-up match after the
	// losers-bracket champion takes the grand final. It is an explicit
	// on-demand operation, never part of the generated graph.
	CreateBracketReset(ctx context.Context, tournamentID int) (*models.Match, error)
}

type bracketService struct {
	db                *sql.DB
	matchRepo         repositories.MatchRepository
	qualificationRepo repositories.QualificationRepository
	entryRepo         repositories.EntryRepository
	generator         brackets.Generator
	hub               *brackets.Hub
}

func NewBracketService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	qualificationRepo repositories.QualificationRepository,
	entryRepo repositories.EntryRepository,
	hub *brackets.Hub,
) BracketService {
	return &bracketService{
		db:                db,
		matchRepo:         matchRepo,
		qualificationRepo: qualificationRepo,
		entryRepo:         entryRepo,
		generator:         brackets.NewDoubleEliminationGenerator(),
		hub:               hub,
	}
}

func (s *bracketService) GenerateFinals(ctx context.Context, tournamentID int, format models.EventFormat) ([]*models.Match, error) {
	ranked, err := s.rankedPlayers(ctx, tournamentID, format)
	if err != nil {
		return nil, err
	}

	startNumber, err := s.matchRepo.MaxMatchNumber(ctx, nil, tournamentID)
	if err != nil {
		return nil, err
	}

	matches, err := s.generator.Generate(ctx, brackets.GenerateParams{
		TournamentID: tournamentID,
		Ranked:       ranked,
		StartNumber:  startNumber + 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate finals bracket for tournament %d: %w", tournamentID, err)
	}
	if len(matches) == 0 {
		log.Printf("tournament %d: %d qualified players, no bracket to generate", tournamentID, len(ranked))
		return nil, nil
	}

	// Regenerating replaces any previous finals graph in the same
	// transaction, so pollers never observe a half-written bracket.
	err = repositories.WithTransaction(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.matchRepo.DeleteByStage(ctx, tx, tournamentID, models.StageFinals); err != nil {
			return err
		}
		return s.matchRepo.CreateBatch(ctx, tx, matches)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save finals bracket for tournament %d: %w", tournamentID, err)
	}

	log.Printf("tournament %d: generated %d finals matches for %d players", tournamentID, len(matches), len(ranked))
	s.hub.BroadcastEvent(brackets.TournamentEvent{
		Type:         brackets.EventBracketGenerated,
		TournamentID: tournamentID,
		Payload:      map[string]int{"matches": len(matches), "players": len(ranked)},
	})
	return matches, nil
}

// rankedPlayers projects the latest standings into seeding order: entry
// ranking for time-attack, score then round differential otherwise.
func (s *bracketService) rankedPlayers(ctx context.Context, tournamentID int, format models.EventFormat) ([]models.BracketPlayer, error) {
	if format == models.FormatTimeAttack {
		entries, err := s.entryRepo.ListByTournament(ctx, nil, tournamentID)
		if err != nil {
			return nil, fmt.Errorf("failed to load entries for tournament %d: %w", tournamentID, err)
		}
		ranked := make([]models.BracketPlayer, 0, len(entries))
		for i, entry := range entries {
			ranked = append(ranked, models.BracketPlayer{
				PlayerID: entry.PlayerID,
				Rank:     i + 1,
				Points:   entry.QualificationPoints,
			})
		}
		return ranked, nil
	}

	records, err := s.qualificationRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load standings for tournament %d: %w", tournamentID, err)
	}
	ranked := make([]models.BracketPlayer, 0, len(records))
	for i, record := range records {
		ranked = append(ranked, models.BracketPlayer{
			PlayerID: record.PlayerID,
			Rank:     i + 1,
			Points:   record.Points,
		})
	}
	return ranked, nil
}

func (s *bracketService) CreateBracketReset(ctx context.Context, tournamentID int) (*models.Match, error) {
	stage := models.StageFinals
	matches, err := s.matchRepo.ListByTournament(ctx, nil, tournamentID, &stage, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load finals matches for tournament %d: %w", tournamentID, err)
	}
	if len(matches) == 0 {
		return nil, ErrNoFinalsBracket
	}

	var grandFinal *models.Match
	for _, match := range matches {
		if match.Section == nil || *match.Section != models.SectionGrandFinal {
			continue
		}
		if match.BracketSlot != nil && *match.BracketSlot == bracketResetSlot {
			// The deciding match already exists; one reset at most.
			return nil, ErrBracketResetNotRequired
		}
		grandFinal = match
	}
	if grandFinal == nil {
		return nil, ErrNoFinalsBracket
	}
	if !grandFinal.Completed {
		return nil, ErrGrandFinalNotCompleted
	}
	if !brackets.NeedsBracketReset(grandFinal) {
		return nil, ErrBracketResetNotRequired
	}

	section := models.SectionGrandFinal
	slot := bracketResetSlot
	reset := &models.Match{
		TournamentID: tournamentID,
		Stage:        models.StageFinals,
		MatchNumber:  grandFinal.MatchNumber + 1,
		Player1ID:    grandFinal.Player1ID,
		Player2ID:    grandFinal.Player2ID,
		Section:      &section,
		BracketSlot:  &slot,
		Version:      1,
	}
	if err := s.matchRepo.Create(ctx, nil, reset); err != nil {
		return nil, fmt.Errorf("failed to create bracket reset for tournament %d: %w", tournamentID, err)
	}

	log.Printf("tournament %d: bracket reset created as match %d", tournamentID, reset.MatchNumber)
	return reset, nil
}
