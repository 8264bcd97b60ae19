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

type SubmitTimeRequest struct {
	EntryID         int    `json:"entry_id"`
	ExpectedVersion int    `json:"expected_version"`
	Course          string `json:"course"`
	Time            string `json:"time"`
}

type SubmitTimeOutcome struct {
	Entry      *models.Entry `json:"entry"`
	OldVersion int           `json:"old_version"`
	NewVersion int           `json:"new_version"`
}

type EntryService interface {
	// SubmitTime records one course time on a time-attack entry, then
	// recomputes points and ranks for the whole tournament from scratch.
	SubmitTime(ctx context.Context, req SubmitTimeRequest) (*SubmitTimeOutcome, error)

	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Entry, error)
}

type entryService struct {
	entryRepo  repositories.EntryRepository
	controller *optimistic.Controller[*models.Entry]
	hub        *brackets.Hub
}

func NewEntryService(
	entryRepo repositories.EntryRepository,
	controller *optimistic.Controller[*models.Entry],
	hub *brackets.Hub,
) EntryService {
	return &entryService{
		entryRepo:  entryRepo,
		controller: controller,
		hub:        hub,
	}
}

func (s *entryService) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Entry, error) {
	entries, err := s.entryRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries for tournament %d: %w", tournamentID, err)
	}
	return entries, nil
}

func (s *entryService) SubmitTime(ctx context.Context, req SubmitTimeRequest) (*SubmitTimeOutcome, error) {
	if !models.ValidCourse(req.Course) {
		return nil, fmt.Errorf("%w: %q: %v", ErrValidationFailed, req.Course, ErrUnknownCourse)
	}
	if _, ok := scoring.ParseTime(req.Time); !ok {
		return nil, fmt.Errorf("%w: %q: %v", ErrValidationFailed, req.Time, ErrInvalidTime)
	}

	result, err := s.controller.Update(ctx, req.EntryID, req.ExpectedVersion, func(e *models.Entry) error {
		if e.Times == nil {
			e.Times = make(map[string]string)
		}
		e.Times[req.Course] = req.Time
		return nil
	})
	if err != nil {
		return nil, err
	}

	entry, err := s.entryRepo.GetByID(ctx, nil, req.EntryID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload entry %d after update: %w", req.EntryID, err)
	}

	if err := s.recomputeRanks(ctx, entry.TournamentID); err != nil {
		return nil, err
	}

	s.hub.BroadcastEvent(brackets.TournamentEvent{
		Type:         brackets.EventStandingsUpdated,
		TournamentID: entry.TournamentID,
	})
	return &SubmitTimeOutcome{
		Entry:      entry,
		OldVersion: result.OldVersion,
		NewVersion: result.NewVersion,
	}, nil
}

// recomputeRanks rebuilds points, totals and ranks for every entry of the
// tournament from a fresh read, writing only the entries whose derived
// fields actually changed.
func (s *entryService) recomputeRanks(ctx context.Context, tournamentID int) error {
	entries, err := s.entryRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to load entries for tournament %d: %w", tournamentID, err)
	}

	before := make(map[int]models.Entry, len(entries))
	for _, entry := range entries {
		before[entry.ID] = *entry
	}

	scoring.RankEntries(entries, models.TimeAttackCourses)

	for _, entry := range entries {
		prev := before[entry.ID]
		if prev.QualificationPoints == entry.QualificationPoints &&
			prev.TotalTimeMS == entry.TotalTimeMS &&
			equalRank(prev.Rank, entry.Rank) {
			continue
		}
		if err := s.writeEntry(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}

func (s *entryService) writeEntry(ctx context.Context, entry *models.Entry) error {
	expected := entry.Version
	for attempt := 0; attempt < recomputeAttempts; attempt++ {
		_, err := s.controller.Update(ctx, entry.ID, expected, func(e *models.Entry) error {
			e.QualificationPoints = entry.QualificationPoints
			e.TotalTimeMS = entry.TotalTimeMS
			e.Rank = entry.Rank
			return nil
		})
		if err == nil {
			return nil
		}

		var conflict *optimistic.VersionConflictError
		if errors.As(err, &conflict) {
			log.Printf("entry rank write for player %d lost a version race, retrying", entry.PlayerID)
			expected = conflict.Current
			continue
		}
		return fmt.Errorf("failed to write ranks for entry %d: %w", entry.ID, err)
	}
	return fmt.Errorf("failed to write ranks for entry %d after %d attempts", entry.ID, recomputeAttempts)
}

func equalRank(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
