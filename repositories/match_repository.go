package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Rouva01/competition-system/models"
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	GetByNumber(ctx context.Context, exec SQLExecutor, tournamentID, matchNumber int) (*models.Match, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, stage *models.Stage, completedOnly bool) ([]*models.Match, error)
	MaxMatchNumber(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
	UpdateIfVersion(ctx context.Context, exec SQLExecutor, id, expectedVersion int, match *models.Match) error
	DeleteByStage(ctx context.Context, exec SQLExecutor, tournamentID int, stage models.Stage) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) executor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `
	id, tournament_id, stage, match_number, player1_id, player2_id,
	score1, score2, rounds, completed, version,
	section, bracket_slot, winner_goes_to, loser_goes_to, seed1, seed2, created_at`

func marshalRounds(rounds []models.RoundResult) ([]byte, error) {
	if len(rounds) == 0 {
		return []byte("[]"), nil
	}
	data, err := json.Marshal(rounds)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal match rounds: %w", err)
	}
	return data, nil
}

func scanMatch(scanner interface{ Scan(dest ...interface{}) error }) (*models.Match, error) {
	match := &models.Match{}
	var roundsJSON []byte
	err := scanner.Scan(
		&match.ID,
		&match.TournamentID,
		&match.Stage,
		&match.MatchNumber,
		&match.Player1ID,
		&match.Player2ID,
		&match.Score1,
		&match.Score2,
		&roundsJSON,
		&match.Completed,
		&match.Version,
		&match.Section,
		&match.BracketSlot,
		&match.WinnerGoesTo,
		&match.LoserGoesTo,
		&match.Seed1,
		&match.Seed2,
		&match.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(roundsJSON) > 0 {
		if err := json.Unmarshal(roundsJSON, &match.Rounds); err != nil {
			return nil, fmt.Errorf("failed to unmarshal rounds for match %d: %w", match.ID, err)
		}
	}
	return match, nil
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	roundsJSON, err := marshalRounds(match.Rounds)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO matches
			(tournament_id, stage, match_number, player1_id, player2_id,
			 score1, score2, rounds, completed, version,
			 section, bracket_slot, winner_goes_to, loser_goes_to, seed1, seed2)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at`

	err = r.executor(exec).QueryRowContext(ctx, query,
		match.TournamentID,
		match.Stage,
		match.MatchNumber,
		match.Player1ID,
		match.Player2ID,
		match.Score1,
		match.Score2,
		roundsJSON,
		match.Completed,
		match.Version,
		match.Section,
		match.BracketSlot,
		match.WinnerGoesTo,
		match.LoserGoesTo,
		match.Seed1,
		match.Seed2,
	).Scan(&match.ID, &match.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert match %d for tournament %d: %w", match.MatchNumber, match.TournamentID, err)
	}
	return nil
}

func (r *postgresMatchRepository) CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.Match) error {
	for _, match := range matches {
		if err := r.Create(ctx, exec, match); err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	query := `SELECT` + matchColumns + ` FROM matches WHERE id = $1`
	match, err := scanMatch(r.executor(exec).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("match %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan match %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) GetByNumber(ctx context.Context, exec SQLExecutor, tournamentID, matchNumber int) (*models.Match, error) {
	query := `SELECT` + matchColumns + ` FROM matches WHERE tournament_id = $1 AND match_number = $2`
	match, err := scanMatch(r.executor(exec).QueryRowContext(ctx, query, tournamentID, matchNumber))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("match number %d in tournament %d: %w", matchNumber, tournamentID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan match number %d in tournament %d: %w", matchNumber, tournamentID, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, stage *models.Stage, completedOnly bool) ([]*models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT` + matchColumns + ` FROM matches WHERE tournament_id = $1`)

	args := []interface{}{tournamentID}
	placeholderIndex := 2

	if stage != nil {
		queryBuilder.WriteString(" AND stage = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *stage)
		placeholderIndex++
	}
	if completedOnly {
		queryBuilder.WriteString(" AND completed = TRUE")
	}
	queryBuilder.WriteString(" ORDER BY match_number ASC")

	rows, err := r.executor(exec).QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match row for tournament %d: %w", tournamentID, err)
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error for tournament %d matches: %w", tournamentID, err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) MaxMatchNumber(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	query := `SELECT COALESCE(MAX(match_number), 0) FROM matches WHERE tournament_id = $1`
	var max int
	if err := r.executor(exec).QueryRowContext(ctx, query, tournamentID).Scan(&max); err != nil {
		return 0, fmt.Errorf("failed to query max match number for tournament %d: %w", tournamentID, err)
	}
	return max, nil
}

// UpdateIfVersion writes the mutable fields of match guarded by the version
// check, incrementing the stored version by exactly 1 in the same statement.
func (r *postgresMatchRepository) UpdateIfVersion(ctx context.Context, exec SQLExecutor, id, expectedVersion int, match *models.Match) error {
	roundsJSON, err := marshalRounds(match.Rounds)
	if err != nil {
		return err
	}

	query := `
		UPDATE matches
		SET player1_id = $1, player2_id = $2, score1 = $3, score2 = $4,
		    rounds = $5, completed = $6, version = version + 1
		WHERE id = $7 AND version = $8`

	result, err := r.executor(exec).ExecContext(ctx, query,
		match.Player1ID,
		match.Player2ID,
		match.Score1,
		match.Score2,
		roundsJSON,
		match.Completed,
		id,
		expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to update match %d: %w", id, err)
	}
	return checkAffectedRows(result, fmt.Errorf("match %d at version %d: %w", id, expectedVersion, ErrVersionMismatch))
}

func (r *postgresMatchRepository) DeleteByStage(ctx context.Context, exec SQLExecutor, tournamentID int, stage models.Stage) error {
	query := `DELETE FROM matches WHERE tournament_id = $1 AND stage = $2`
	if _, err := r.executor(exec).ExecContext(ctx, query, tournamentID, stage); err != nil {
		return fmt.Errorf("failed to delete %s matches for tournament %d: %w", stage, tournamentID, err)
	}
	return nil
}
