package optimistic

import (
	"context"

	"github.com/Rouva01/competition-system/models"
	"github.com/Rouva01/competition-system/repositories"
)

// Repository adapters. Each one binds a concrete entity repository to the
// generic controller; the conflict and retry policy is identical for all of
// them.

type MatchAccessor struct {
	Repo repositories.MatchRepository
}

func (a MatchAccessor) FindByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error) {
	return a.Repo.GetByID(ctx, exec, id)
}

func (a MatchAccessor) UpdateIfVersion(ctx context.Context, exec repositories.SQLExecutor, id, expectedVersion int, record *models.Match) error {
	return a.Repo.UpdateIfVersion(ctx, exec, id, expectedVersion, record)
}

type QualificationAccessor struct {
	Repo repositories.QualificationRepository
}

func (a QualificationAccessor) FindByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.QualificationRecord, error) {
	return a.Repo.GetByID(ctx, exec, id)
}

func (a QualificationAccessor) UpdateIfVersion(ctx context.Context, exec repositories.SQLExecutor, id, expectedVersion int, record *models.QualificationRecord) error {
	return a.Repo.UpdateIfVersion(ctx, exec, id, expectedVersion, record)
}

type EntryAccessor struct {
	Repo repositories.EntryRepository
}

func (a EntryAccessor) FindByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Entry, error) {
	return a.Repo.GetByID(ctx, exec, id)
}

func (a EntryAccessor) UpdateIfVersion(ctx context.Context, exec repositories.SQLExecutor, id, expectedVersion int, record *models.Entry) error {
	return a.Repo.UpdateIfVersion(ctx, exec, id, expectedVersion, record)
}
