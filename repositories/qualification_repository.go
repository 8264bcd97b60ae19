package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Rouva01/competition-system/models"
)

type QualificationRepository interface {
	Create(ctx context.Context, exec SQLExecutor, record *models.QualificationRecord) error
	CreateBatch(ctx context.Context, exec SQLExecutor, records []*models.QualificationRecord) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.QualificationRecord, error)
	GetByPlayer(ctx context.Context, exec SQLExecutor, tournamentID, playerID int) (*models.QualificationRecord, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.QualificationRecord, error)
	UpdateIfVersion(ctx context.Context, exec SQLExecutor, id, expectedVersion int, record *models.QualificationRecord) error
}

type postgresQualificationRepository struct {
	db *sql.DB
}

func NewPostgresQualificationRepository(db *sql.DB) QualificationRepository {
	return &postgresQualificationRepository{db: db}
}

func (r *postgresQualificationRepository) executor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const qualificationColumns = `
	id, tournament_id, player_id, group_label, played, wins, ties, losses,
	win_rounds, loss_rounds, points, score, version, updated_at`

func scanQualification(scanner interface{ Scan(dest ...interface{}) error }) (*models.QualificationRecord, error) {
	record := &models.QualificationRecord{}
	err := scanner.Scan(
		&record.ID,
		&record.TournamentID,
		&record.PlayerID,
		&record.Group,
		&record.Played,
		&record.Wins,
		&record.Ties,
		&record.Losses,
		&record.WinRounds,
		&record.LossRounds,
		&record.Points,
		&record.Score,
		&record.Version,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *postgresQualificationRepository) Create(ctx context.Context, exec SQLExecutor, record *models.QualificationRecord) error {
	query := `
		INSERT INTO qualification_records
			(tournament_id, player_id, group_label, played, wins, ties, losses,
			 win_rounds, loss_rounds, points, score, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, updated_at`

	err := r.executor(exec).QueryRowContext(ctx, query,
		record.TournamentID,
		record.PlayerID,
		record.Group,
		record.Played,
		record.Wins,
		record.Ties,
		record.Losses,
		record.WinRounds,
		record.LossRounds,
		record.Points,
		record.Score,
		record.Version,
	).Scan(&record.ID, &record.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert qualification record for player %d in tournament %d: %w", record.PlayerID, record.TournamentID, err)
	}
	return nil
}

func (r *postgresQualificationRepository) CreateBatch(ctx context.Context, exec SQLExecutor, records []*models.QualificationRecord) error {
	for _, record := range records {
		if err := r.Create(ctx, exec, record); err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresQualificationRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.QualificationRecord, error) {
	query := `SELECT` + qualificationColumns + ` FROM qualification_records WHERE id = $1`
	record, err := scanQualification(r.executor(exec).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("qualification record %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan qualification record %d: %w", id, err)
	}
	return record, nil
}

func (r *postgresQualificationRepository) GetByPlayer(ctx context.Context, exec SQLExecutor, tournamentID, playerID int) (*models.QualificationRecord, error) {
	query := `SELECT` + qualificationColumns + ` FROM qualification_records WHERE tournament_id = $1 AND player_id = $2`
	record, err := scanQualification(r.executor(exec).QueryRowContext(ctx, query, tournamentID, playerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("qualification record for player %d in tournament %d: %w", playerID, tournamentID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan qualification record for player %d: %w", playerID, err)
	}
	return record, nil
}

func (r *postgresQualificationRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.QualificationRecord, error) {
	query := `SELECT` + qualificationColumns + `
		FROM qualification_records
		WHERE tournament_id = $1
		ORDER BY score DESC, points DESC, player_id ASC`

	rows, err := r.executor(exec).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list qualification records for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	records := make([]*models.QualificationRecord, 0)
	for rows.Next() {
		record, err := scanQualification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan qualification row for tournament %d: %w", tournamentID, err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error for tournament %d qualification records: %w", tournamentID, err)
	}
	return records, nil
}

func (r *postgresQualificationRepository) UpdateIfVersion(ctx context.Context, exec SQLExecutor, id, expectedVersion int, record *models.QualificationRecord) error {
	query := `
		UPDATE qualification_records
		SET group_label = $1, played = $2, wins = $3, ties = $4, losses = $5,
		    win_rounds = $6, loss_rounds = $7, points = $8, score = $9,
		    version = version + 1, updated_at = NOW()
		WHERE id = $10 AND version = $11`

	result, err := r.executor(exec).ExecContext(ctx, query,
		record.Group,
		record.Played,
		record.Wins,
		record.Ties,
		record.Losses,
		record.WinRounds,
		record.LossRounds,
		record.Points,
		record.Score,
		id,
		expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to update qualification record %d: %w", id, err)
	}
	return checkAffectedRows(result, fmt.Errorf("qualification record %d at version %d: %w", id, expectedVersion, ErrVersionMismatch))
}
