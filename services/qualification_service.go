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

// QualificationPlan is the object graph one StartQualification call builds
// and writes atomically: the shuffled group assignment plus either the
// round-robin match list (match formats) or the blank entries (time-attack).
type QualificationPlan struct {
	TournamentID int                      `json:"tournament_id"`
	Grouped      []brackets.GroupedPlayer `json:"grouped,omitempty"`
	Matches      []*models.Match          `json:"matches,omitempty"`
	Entries      []*models.Entry          `json:"entries,omitempty"`
}

type QualificationService interface {
	// StartQualification partitions the entrants and creates the
	// qualification stage in a single transaction. Zero or one player is a
	// legitimate degenerate tournament and yields an empty plan.
	StartQualification(ctx context.Context, tournamentID int, playerIDs []int, format models.EventFormat) (*QualificationPlan, error)
}

type qualificationService struct {
	db                *sql.DB
	matchRepo         repositories.MatchRepository
	qualificationRepo repositories.QualificationRepository
	entryRepo         repositories.EntryRepository
	generator         brackets.Generator
	hub               *brackets.Hub
}

func NewQualificationService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	qualificationRepo repositories.QualificationRepository,
	entryRepo repositories.EntryRepository,
	hub *brackets.Hub,
) QualificationService {
	return &qualificationService{
		db:                db,
		matchRepo:         matchRepo,
		qualificationRepo: qualificationRepo,
		entryRepo:         entryRepo,
		generator:         brackets.NewRoundRobinGenerator(),
		hub:               hub,
	}
}

func (s *qualificationService) StartQualification(ctx context.Context, tournamentID int, playerIDs []int, format models.EventFormat) (*QualificationPlan, error) {
	if _, err := models.RulesFor(format); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	plan := &QualificationPlan{TournamentID: tournamentID}
	if len(playerIDs) <= 1 {
		log.Printf("tournament %d started with %d players, nothing to schedule", tournamentID, len(playerIDs))
		return plan, nil
	}

	if format == models.FormatTimeAttack {
		return s.startTimeAttack(ctx, plan, playerIDs)
	}
	return s.startMatchPlay(ctx, plan, playerIDs)
}

// startTimeAttack creates one blank entry per player; times arrive later
// through the entry service and are ranked from the course score tables.
func (s *qualificationService) startTimeAttack(ctx context.Context, plan *QualificationPlan, playerIDs []int) (*QualificationPlan, error) {
	for _, playerID := range playerIDs {
		plan.Entries = append(plan.Entries, &models.Entry{
			TournamentID: plan.TournamentID,
			PlayerID:     playerID,
			Times:        map[string]string{},
			Version:      1,
		})
	}

	err := repositories.WithTransaction(ctx, s.db, func(tx *sql.Tx) error {
		for _, entry := range plan.Entries {
			if err := s.entryRepo.Create(ctx, tx, entry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create time-attack entries for tournament %d: %w", plan.TournamentID, err)
	}

	log.Printf("tournament %d: created %d time-attack entries", plan.TournamentID, len(plan.Entries))
	return plan, nil
}

func (s *qualificationService) startMatchPlay(ctx context.Context, plan *QualificationPlan, playerIDs []int) (*QualificationPlan, error) {
	plan.Grouped = brackets.AssignGroups(playerIDs, brackets.GroupLabels)

	matches, err := s.generator.Generate(ctx, brackets.GenerateParams{
		TournamentID: plan.TournamentID,
		Grouped:      plan.Grouped,
		StartNumber:  1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate round-robin for tournament %d: %w", plan.TournamentID, err)
	}
	plan.Matches = matches

	records := make([]*models.QualificationRecord, 0, len(plan.Grouped))
	for _, player := range plan.Grouped {
		group := player.Group
		records = append(records, &models.QualificationRecord{
			TournamentID: plan.TournamentID,
			PlayerID:     player.PlayerID,
			Group:        &group,
			Version:      1,
		})
	}

	err = repositories.WithTransaction(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.matchRepo.CreateBatch(ctx, tx, plan.Matches); err != nil {
			return err
		}
		return s.qualificationRepo.CreateBatch(ctx, tx, records)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save qualification stage for tournament %d: %w", plan.TournamentID, err)
	}

	log.Printf("tournament %d: %d players in %d groups, %d qualification matches",
		plan.TournamentID, len(plan.Grouped), len(brackets.GroupLabels), len(plan.Matches))
	s.hub.BroadcastEvent(brackets.TournamentEvent{
		Type:         brackets.EventStandingsUpdated,
		TournamentID: plan.TournamentID,
	})
	return plan, nil
}
