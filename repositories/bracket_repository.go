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
	ErrBracketNotFound     = errors.New("bracket not found")
	ErrBracketStageInvalid = errors.New("bracket stage conflict or invalid")
	ErrBracketTypeTaken    = errors.New("bracket type already exists in stage")
)

type BracketRepository interface {
	Create(ctx context.Context, exec SQLExecutor, bracket *models.Bracket) error
	GetByID(ctx context.Context, id int) (*models.Bracket, error)
	ListByStage(ctx context.Context, stageID int) ([]*models.Bracket, error)
	FindByStageAndType(ctx context.Context, stageID int, bracketType models.BracketType) (*models.Bracket, error)
	UpdateType(ctx context.Context, exec SQLExecutor, id int, bracketType models.BracketType) error
	Tombstone(ctx context.Context, exec SQLExecutor, id int) error
	TombstoneByStage(ctx context.Context, exec SQLExecutor, stageID int) error
}

type postgresBracketRepository struct {
	db *sql.DB
}

func NewPostgresBracketRepository(db *sql.DB) BracketRepository {
	return &postgresBracketRepository{db: db}
}

func (r *postgresBracketRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresBracketRepository) Create(ctx context.Context, exec SQLExecutor, bracket *models.Bracket) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO brackets (stage_id, bracket_type, record_status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	bracket.RecordStatus = models.RecordActive
	err := executor.QueryRowContext(ctx, query,
		bracket.StageID,
		bracket.BracketType,
		bracket.RecordStatus,
	).Scan(&bracket.ID, &bracket.CreatedAt)

	return r.handleBracketError(err)
}

func (r *postgresBracketRepository) GetByID(ctx context.Context, id int) (*models.Bracket, error) {
	query := `
		SELECT id, stage_id, bracket_type, record_status, deleted_at, created_at
		FROM brackets
		WHERE id = $1 AND record_status = 'active'`

	bracket := &models.Bracket{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&bracket.ID,
		&bracket.StageID,
		&bracket.BracketType,
		&bracket.RecordStatus,
		&bracket.DeletedAt,
		&bracket.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBracketNotFound
		}
		return nil, fmt.Errorf("failed to scan bracket by id %d: %w", id, err)
	}
	return bracket, nil
}

func (r *postgresBracketRepository) ListByStage(ctx context.Context, stageID int) ([]*models.Bracket, error) {
	query := `
		SELECT id, stage_id, bracket_type, record_status, deleted_at, created_at
		FROM brackets
		WHERE stage_id = $1 AND record_status = 'active'
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to query brackets for stage %d: %w", stageID, err)
	}
	defer rows.Close()

	brackets := make([]*models.Bracket, 0)
	for rows.Next() {
		var bracket models.Bracket
		if scanErr := rows.Scan(
			&bracket.ID,
			&bracket.StageID,
			&bracket.BracketType,
			&bracket.RecordStatus,
			&bracket.DeletedAt,
			&bracket.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan bracket row: %w", scanErr)
		}
		brackets = append(brackets, &bracket)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during bracket rows iteration: %w", err)
	}
	return brackets, nil
}

func (r *postgresBracketRepository) FindByStageAndType(ctx context.Context, stageID int, bracketType models.BracketType) (*models.Bracket, error) {
	query := `
		SELECT id, stage_id, bracket_type, record_status, deleted_at, created_at
		FROM brackets
		WHERE stage_id = $1 AND bracket_type = $2 AND record_status = 'active'`

	bracket := &models.Bracket{}
	err := r.db.QueryRowContext(ctx, query, stageID, bracketType).Scan(
		&bracket.ID,
		&bracket.StageID,
		&bracket.BracketType,
		&bracket.RecordStatus,
		&bracket.DeletedAt,
		&bracket.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBracketNotFound
		}
		return nil, fmt.Errorf("failed to scan bracket by stage and type: %w", err)
	}
	return bracket, nil
}

func (r *postgresBracketRepository) UpdateType(ctx context.Context, exec SQLExecutor, id int, bracketType models.BracketType) error {
	executor := r.getExecutor(exec)
	query := `UPDATE brackets SET bracket_type = $1 WHERE id = $2 AND record_status = 'active'`

	result, err := executor.ExecContext(ctx, query, bracketType, id)
	if err != nil {
		return r.handleBracketError(err)
	}
	return checkAffectedRows(result, ErrBracketNotFound)
}

func (r *postgresBracketRepository) Tombstone(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE brackets
		SET record_status = 'tombstoned', deleted_at = NOW()
		WHERE id = $1 AND record_status = 'active'`

	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrBracketNotFound)
}

func (r *postgresBracketRepository) TombstoneByStage(ctx context.Context, exec SQLExecutor, stageID int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE brackets
		SET record_status = 'tombstoned', deleted_at = NOW()
		WHERE stage_id = $1 AND record_status = 'active'`

	_, err := executor.ExecContext(ctx, query, stageID)
	if err != nil {
		return fmt.Errorf("failed to tombstone brackets for stage %d: %w", stageID, err)
	}
	return nil
}

func (r *postgresBracketRepository) handleBracketError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "brackets_stage_id_fkey":
			return ErrBracketStageInvalid
		case "uq_brackets_stage_type":
			return ErrBracketTypeTaken
		}
	}
	return err
}
