package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Rouva01/competition-system/models"
)

type EntryRepository interface {
	Create(ctx context.Context, exec SQLExecutor, entry *models.Entry) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Entry, error)
	GetByPlayer(ctx context.Context, exec SQLExecutor, tournamentID, playerID int) (*models.Entry, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Entry, error)
	UpdateIfVersion(ctx context.Context, exec SQLExecutor, id, expectedVersion int, entry *models.Entry) error
}

type postgresEntryRepository struct {
	db *sql.DB
}

func NewPostgresEntryRepository(db *sql.DB) EntryRepository {
	return &postgresEntryRepository{db: db}
}

func (r *postgresEntryRepository) executor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const entryColumns = `
	id, tournament_id, player_id, times, total_time_ms, qualification_points, rank, version`

func marshalTimes(times map[string]string) ([]byte, error) {
	if len(times) == 0 {
		return []byte("{}"), nil
	}
	data, err := json.Marshal(times)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entry times: %w", err)
	}
	return data, nil
}

func scanEntry(scanner interface{ Scan(dest ...interface{}) error }) (*models.Entry, error) {
	entry := &models.Entry{}
	var timesJSON []byte
	err := scanner.Scan(
		&entry.ID,
		&entry.TournamentID,
		&entry.PlayerID,
		&timesJSON,
		&entry.TotalTimeMS,
		&entry.QualificationPoints,
		&entry.Rank,
		&entry.Version,
	)
	if err != nil {
		return nil, err
	}
	entry.Times = make(map[string]string)
	if len(timesJSON) > 0 {
		if err := json.Unmarshal(timesJSON, &entry.Times); err != nil {
			return nil, fmt.Errorf("failed to unmarshal times for entry %d: %w", entry.ID, err)
		}
	}
	return entry, nil
}

func (r *postgresEntryRepository) Create(ctx context.Context, exec SQLExecutor, entry *models.Entry) error {
	timesJSON, err := marshalTimes(entry.Times)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO entries
			(tournament_id, player_id, times, total_time_ms, qualification_points, rank, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err = r.executor(exec).QueryRowContext(ctx, query,
		entry.TournamentID,
		entry.PlayerID,
		timesJSON,
		entry.TotalTimeMS,
		entry.QualificationPoints,
		entry.Rank,
		entry.Version,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("failed to insert entry for player %d in tournament %d: %w", entry.PlayerID, entry.TournamentID, err)
	}
	return nil
}

func (r *postgresEntryRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Entry, error) {
	query := `SELECT` + entryColumns + ` FROM entries WHERE id = $1`
	entry, err := scanEntry(r.executor(exec).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("entry %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan entry %d: %w", id, err)
	}
	return entry, nil
}

func (r *postgresEntryRepository) GetByPlayer(ctx context.Context, exec SQLExecutor, tournamentID, playerID int) (*models.Entry, error) {
	query := `SELECT` + entryColumns + ` FROM entries WHERE tournament_id = $1 AND player_id = $2`
	entry, err := scanEntry(r.executor(exec).QueryRowContext(ctx, query, tournamentID, playerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("entry for player %d in tournament %d: %w", playerID, tournamentID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan entry for player %d: %w", playerID, err)
	}
	return entry, nil
}

func (r *postgresEntryRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Entry, error) {
	query := `SELECT` + entryColumns + `
		FROM entries
		WHERE tournament_id = $1
		ORDER BY qualification_points DESC, total_time_ms ASC, player_id ASC`

	rows, err := r.executor(exec).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	entries := make([]*models.Entry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry row for tournament %d: %w", tournamentID, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error for tournament %d entries: %w", tournamentID, err)
	}
	return entries, nil
}

func (r *postgresEntryRepository) UpdateIfVersion(ctx context.Context, exec SQLExecutor, id, expectedVersion int, entry *models.Entry) error {
	timesJSON, err := marshalTimes(entry.Times)
	if err != nil {
		return err
	}

	query := `
		UPDATE entries
		SET times = $1, total_time_ms = $2, qualification_points = $3, rank = $4,
		    version = version + 1
		WHERE id = $5 AND version = $6`

	result, err := r.executor(exec).ExecContext(ctx, query,
		timesJSON,
		entry.TotalTimeMS,
		entry.QualificationPoints,
		entry.Rank,
		id,
		expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to update entry %d: %w", id, err)
	}
	return checkAffectedRows(result, fmt.Errorf("entry %d at version %d: %w", id, expectedVersion, ErrVersionMismatch))
}
