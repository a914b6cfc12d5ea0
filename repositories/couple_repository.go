package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/padel-system/models"
	"github.com/lib/pq"
)

var (
	ErrCoupleNotFound          = errors.New("couple not found")
	ErrCouplePlayerInvalid     = errors.New("couple player conflict or invalid")
	ErrCoupleTournamentInvalid = errors.New("couple tournament conflict or invalid")
)

type CoupleRepository interface {
	Create(ctx context.Context, exec SQLExecutor, couple *models.Couple) error
	GetByID(ctx context.Context, id int) (*models.Couple, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Couple, error)
	ListByIDs(ctx context.Context, ids []int) ([]*models.Couple, error)
	FindByPlayerPair(ctx context.Context, tournamentID, playerA, playerB int) (*models.Couple, error)
	Tombstone(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresCoupleRepository struct {
	db *sql.DB
}

func NewPostgresCoupleRepository(db *sql.DB) CoupleRepository {
	return &postgresCoupleRepository{db: db}
}

func (r *postgresCoupleRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const coupleColumns = `id, tournament_id, first_player_id, second_player_id, name, record_status, deleted_at, created_at`

func (r *postgresCoupleRepository) Create(ctx context.Context, exec SQLExecutor, couple *models.Couple) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO couples (tournament_id, first_player_id, second_player_id, name, record_status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	couple.RecordStatus = models.RecordActive
	err := executor.QueryRowContext(ctx, query,
		couple.TournamentID,
		couple.FirstPlayerID,
		couple.SecondPlayerID,
		couple.Name,
		couple.RecordStatus,
	).Scan(&couple.ID, &couple.CreatedAt)

	return r.handleCoupleError(err)
}

func (r *postgresCoupleRepository) GetByID(ctx context.Context, id int) (*models.Couple, error) {
	query := `SELECT ` + coupleColumns + ` FROM couples WHERE id = $1 AND record_status = 'active'`

	couple := &models.Couple{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&couple.ID,
		&couple.TournamentID,
		&couple.FirstPlayerID,
		&couple.SecondPlayerID,
		&couple.Name,
		&couple.RecordStatus,
		&couple.DeletedAt,
		&couple.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCoupleNotFound
		}
		return nil, fmt.Errorf("failed to scan couple by id %d: %w", id, err)
	}
	return couple, nil
}

func (r *postgresCoupleRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Couple, error) {
	query := `SELECT ` + coupleColumns + ` FROM couples
		WHERE tournament_id = $1 AND record_status = 'active'
		ORDER BY id ASC`
	return r.queryCouples(ctx, query, tournamentID)
}

func (r *postgresCoupleRepository) ListByIDs(ctx context.Context, ids []int) ([]*models.Couple, error) {
	if len(ids) == 0 {
		return []*models.Couple{}, nil
	}
	query := `SELECT ` + coupleColumns + ` FROM couples
		WHERE id = ANY($1) AND record_status = 'active'
		ORDER BY id ASC`
	return r.queryCouples(ctx, query, pq.Array(ids))
}

// FindByPlayerPair matches the unordered pair, so (a, b) and (b, a) collide.
func (r *postgresCoupleRepository) FindByPlayerPair(ctx context.Context, tournamentID, playerA, playerB int) (*models.Couple, error) {
	query := `SELECT ` + coupleColumns + ` FROM couples
		WHERE tournament_id = $1 AND record_status = 'active'
		  AND ((first_player_id = $2 AND second_player_id = $3)
		    OR (first_player_id = $3 AND second_player_id = $2))`

	couple := &models.Couple{}
	err := r.db.QueryRowContext(ctx, query, tournamentID, playerA, playerB).Scan(
		&couple.ID,
		&couple.TournamentID,
		&couple.FirstPlayerID,
		&couple.SecondPlayerID,
		&couple.Name,
		&couple.RecordStatus,
		&couple.DeletedAt,
		&couple.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCoupleNotFound
		}
		return nil, fmt.Errorf("failed to scan couple by player pair: %w", err)
	}
	return couple, nil
}

func (r *postgresCoupleRepository) Tombstone(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE couples
		SET record_status = 'tombstoned', deleted_at = NOW()
		WHERE id = $1 AND record_status = 'active'`

	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrCoupleNotFound)
}

func (r *postgresCoupleRepository) queryCouples(ctx context.Context, query string, args ...interface{}) ([]*models.Couple, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query couples: %w", err)
	}
	defer rows.Close()

	couples := make([]*models.Couple, 0)
	for rows.Next() {
		var couple models.Couple
		if scanErr := rows.Scan(
			&couple.ID,
			&couple.TournamentID,
			&couple.FirstPlayerID,
			&couple.SecondPlayerID,
			&couple.Name,
			&couple.RecordStatus,
			&couple.DeletedAt,
			&couple.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan couple row: %w", scanErr)
		}
		couples = append(couples, &couple)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during couple rows iteration: %w", err)
	}
	return couples, nil
}

func (r *postgresCoupleRepository) handleCoupleError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "couples_tournament_id_fkey":
			return ErrCoupleTournamentInvalid
		case "couples_first_player_id_fkey", "couples_second_player_id_fkey":
			return ErrCouplePlayerInvalid
		}
	}
	return err
}
