package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/Rouva01/competition-system/models"
	"github.com/Rouva01/competition-system/optimistic"
	"github.com/Rouva01/competition-system/repositories"
	"github.com/Rouva01/competition-system/scoring"
	"golang.org/x/sync/errgroup"
)

// recomputeAttempts bounds how often a standings write is retried after a
// version conflict with another recompute. Each retry re-reads the record,
// so the write is never based on stale data.
const recomputeAttempts = 3

type StandingsService interface {
	// Recompute rebuilds every qualification record of the tournament from
	// a fresh read of the complete completed-match set.
	Recompute(ctx context.Context, tournamentID int, format models.EventFormat) ([]*models.QualificationRecord, error)

	Standings(ctx context.Context, tournamentID int) ([]*models.QualificationRecord, error)
}

type standingsService struct {
	matchRepo         repositories.MatchRepository
	qualificationRepo repositories.QualificationRepository
	controller        *optimistic.Controller[*models.QualificationRecord]
}

func NewStandingsService(
	matchRepo repositories.MatchRepository,
	qualificationRepo repositories.QualificationRepository,
	controller *optimistic.Controller[*models.QualificationRecord],
) StandingsService {
	return &standingsService{
		matchRepo:         matchRepo,
		qualificationRepo: qualificationRepo,
		controller:        controller,
	}
}

func (s *standingsService) Standings(ctx context.Context, tournamentID int) ([]*models.QualificationRecord, error) {
	records, err := s.qualificationRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load standings for tournament %d: %w", tournamentID, err)
	}
	return records, nil
}

func (s *standingsService) Recompute(ctx context.Context, tournamentID int, format models.EventFormat) ([]*models.QualificationRecord, error) {
	rules, err := models.RulesFor(format)
	if err != nil {
		return nil, err
	}

	var matches []*models.Match
	var records []*models.QualificationRecord

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		matches, err = s.matchRepo.ListByTournament(gCtx, nil, tournamentID, nil, true)
		if err != nil {
			return fmt.Errorf("failed to load completed matches for tournament %d: %w", tournamentID, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		records, err = s.qualificationRepo.ListByTournament(gCtx, nil, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to load qualification records for tournament %d: %w", tournamentID, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, record := range records {
		stats, err := scoring.Aggregate(record.PlayerID, matches, rules)
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate player %d in tournament %d: %w", record.PlayerID, tournamentID, err)
		}
		if !statsDiffer(record, stats) {
			continue
		}
		if err := s.writeRecord(ctx, record, stats); err != nil {
			return nil, err
		}
	}

	updated, err := s.qualificationRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload standings for tournament %d: %w", tournamentID, err)
	}
	return updated, nil
}

// writeRecord applies the aggregate through the versioned-update primitive.
// A conflicting concurrent recompute is resolved by re-reading the record and
// applying the same pure aggregate again.
func (s *standingsService) writeRecord(ctx context.Context, record *models.QualificationRecord, stats *scoring.Stats) error {
	expected := record.Version
	for attempt := 0; attempt < recomputeAttempts; attempt++ {
		_, err := s.controller.Update(ctx, record.ID, expected, func(r *models.QualificationRecord) error {
			stats.Apply(r)
			return nil
		})
		if err == nil {
			return nil
		}

		var conflict *optimistic.VersionConflictError
		if errors.As(err, &conflict) {
			log.Printf("standings write for player %d lost a version race (expected %d, current %d), retrying",
				record.PlayerID, conflict.Expected, conflict.Current)
			expected = conflict.Current
			continue
		}
		return fmt.Errorf("failed to write standings for player %d: %w", record.PlayerID, err)
	}
	return fmt.Errorf("failed to write standings for player %d after %d attempts", record.PlayerID, recomputeAttempts)
}

func statsDiffer(record *models.QualificationRecord, stats *scoring.Stats) bool {
	return record.Played != stats.Played ||
		record.Wins != stats.Wins ||
		record.Ties != stats.Ties ||
		record.Losses != stats.Losses ||
		record.WinRounds != stats.WinRounds ||
		record.LossRounds != stats.LossRounds ||
		record.Points != stats.Points ||
		record.Score != stats.Score
}
