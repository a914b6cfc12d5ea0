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
	ErrStageNotFound          = errors.New("stage not found")
	ErrStageOrderConflict     = errors.New("stage order already taken in tournament")
	ErrStageTournamentInvalid = errors.New("stage tournament conflict or invalid")
)

type StageRepository interface {
	Create(ctx context.Context, exec SQLExecutor, stage *models.Stage) error
	GetByID(ctx context.Context, id int) (*models.Stage, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Stage, error)
	FindActiveByOrder(ctx context.Context, tournamentID, order int) (*models.Stage, error)
	// PreviousGroupStage returns the GROUP stage with the highest order strictly
	// below the given order, which seeds elimination stages.
	PreviousGroupStage(ctx context.Context, tournamentID, beforeOrder int) (*models.Stage, error)
	Update(ctx context.Context, exec SQLExecutor, stage *models.Stage) error
	Tombstone(ctx context.Context, exec SQLExecutor, id int) error
	// PurgeTombstonedByOrder physically removes a tombstoned stage occupying the
	// given order, so the slot can be reused by a new stage.
	PurgeTombstonedByOrder(ctx context.Context, exec SQLExecutor, tournamentID, order int) error
}

type postgresStageRepository struct {
	db *sql.DB
}

func NewPostgresStageRepository(db *sql.DB) StageRepository {
	return &postgresStageRepository{db: db}
}

func (r *postgresStageRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const stageColumns = `id, tournament_id, name, stage_type, stage_order, config, record_status, deleted_at, created_at`

func (r *postgresStageRepository) Create(ctx context.Context, exec SQLExecutor, stage *models.Stage) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO stages (tournament_id, name, stage_type, stage_order, config, record_status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	stage.RecordStatus = models.RecordActive
	err := executor.QueryRowContext(ctx, query,
		stage.TournamentID,
		stage.Name,
		stage.StageType,
		stage.Order,
		stage.Config,
		stage.RecordStatus,
	).Scan(&stage.ID, &stage.CreatedAt)

	return r.handleStageError(err)
}

func (r *postgresStageRepository) GetByID(ctx context.Context, id int) (*models.Stage, error) {
	query := `SELECT ` + stageColumns + ` FROM stages WHERE id = $1 AND record_status = 'active'`

	stage := &models.Stage{}
	err := r.scanStageRow(r.db.QueryRowContext(ctx, query, id), stage)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStageNotFound
		}
		return nil, fmt.Errorf("failed to scan stage by id %d: %w", id, err)
	}
	return stage, nil
}

func (r *postgresStageRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Stage, error) {
	query := `SELECT ` + stageColumns + ` FROM stages
		WHERE tournament_id = $1 AND record_status = 'active'
		ORDER BY stage_order ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stages for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	stages := make([]*models.Stage, 0)
	for rows.Next() {
		var stage models.Stage
		if scanErr := rows.Scan(
			&stage.ID,
			&stage.TournamentID,
			&stage.Name,
			&stage.StageType,
			&stage.Order,
			&stage.Config,
			&stage.RecordStatus,
			&stage.DeletedAt,
			&stage.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan stage row: %w", scanErr)
		}
		stages = append(stages, &stage)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during stage rows iteration: %w", err)
	}
	return stages, nil
}

func (r *postgresStageRepository) FindActiveByOrder(ctx context.Context, tournamentID, order int) (*models.Stage, error) {
	query := `SELECT ` + stageColumns + ` FROM stages
		WHERE tournament_id = $1 AND stage_order = $2 AND record_status = 'active'`

	stage := &models.Stage{}
	err := r.scanStageRow(r.db.QueryRowContext(ctx, query, tournamentID, order), stage)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStageNotFound
		}
		return nil, fmt.Errorf("failed to scan stage by order: %w", err)
	}
	return stage, nil
}

func (r *postgresStageRepository) PreviousGroupStage(ctx context.Context, tournamentID, beforeOrder int) (*models.Stage, error) {
	query := `SELECT ` + stageColumns + ` FROM stages
		WHERE tournament_id = $1 AND stage_order < $2
		  AND stage_type = $3 AND record_status = 'active'
		ORDER BY stage_order DESC
		LIMIT 1`

	stage := &models.Stage{}
	err := r.scanStageRow(r.db.QueryRowContext(ctx, query, tournamentID, beforeOrder, models.StageTypeGroup), stage)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStageNotFound
		}
		return nil, fmt.Errorf("failed to scan previous group stage: %w", err)
	}
	return stage, nil
}

func (r *postgresStageRepository) Update(ctx context.Context, exec SQLExecutor, stage *models.Stage) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE stages
		SET name = $1, config = $2
		WHERE id = $3 AND record_status = 'active'`

	result, err := executor.ExecContext(ctx, query, stage.Name, stage.Config, stage.ID)
	if err != nil {
		return r.handleStageError(err)
	}
	return checkAffectedRows(result, ErrStageNotFound)
}

func (r *postgresStageRepository) Tombstone(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE stages
		SET record_status = 'tombstoned', deleted_at = NOW()
		WHERE id = $1 AND record_status = 'active'`

	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrStageNotFound)
}

func (r *postgresStageRepository) PurgeTombstonedByOrder(ctx context.Context, exec SQLExecutor, tournamentID, order int) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM stages
		WHERE tournament_id = $1 AND stage_order = $2 AND record_status = 'tombstoned'`

	_, err := executor.ExecContext(ctx, query, tournamentID, order)
	if err != nil {
		return fmt.Errorf("failed to purge tombstoned stage at order %d: %w", order, err)
	}
	return nil
}

func (r *postgresStageRepository) scanStageRow(row *sql.Row, stage *models.Stage) error {
	return row.Scan(
		&stage.ID,
		&stage.TournamentID,
		&stage.Name,
		&stage.StageType,
		&stage.Order,
		&stage.Config,
		&stage.RecordStatus,
		&stage.DeletedAt,
		&stage.CreatedAt,
	)
}

func (r *postgresStageRepository) handleStageError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "stages_tournament_id_fkey":
			return ErrStageTournamentInvalid
		case "uq_stages_tournament_order":
			return ErrStageOrderConflict
		}
	}
	return err
}
