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
	ErrGroupNotFound       = errors.New("group not found")
	ErrGroupStageInvalid   = errors.New("group stage conflict or invalid")
	ErrGroupCoupleNotFound = errors.New("group couple assignment not found")
	ErrGroupCoupleConflict = errors.New("couple already assigned to this group")
	ErrGroupCoupleInvalid  = errors.New("group couple reference conflict or invalid")
)

type GroupRepository interface {
	Create(ctx context.Context, exec SQLExecutor, group *models.Group) error
	GetByID(ctx context.Context, id int) (*models.Group, error)
	ListByStage(ctx context.Context, stageID int) ([]*models.Group, error)
	Tombstone(ctx context.Context, exec SQLExecutor, id int) error
	TombstoneByStage(ctx context.Context, exec SQLExecutor, stageID int) error

	AddCouple(ctx context.Context, exec SQLExecutor, link *models.GroupCouple) error
	GetCoupleLink(ctx context.Context, groupID, coupleID int) (*models.GroupCouple, error)
	ReactivateCoupleLink(ctx context.Context, exec SQLExecutor, id int) error
	RemoveCouple(ctx context.Context, exec SQLExecutor, groupID, coupleID int) error
	ListCouples(ctx context.Context, groupID int) ([]*models.Couple, error)
	// ListStageAssignments returns active links of all active groups in a stage,
	// used to enforce the one-group-per-stage invariant.
	ListStageAssignments(ctx context.Context, stageID int) ([]*models.GroupCouple, error)
	TombstoneCoupleLinksByGroup(ctx context.Context, exec SQLExecutor, groupID int) error
	TombstoneCoupleLinksByStage(ctx context.Context, exec SQLExecutor, stageID int) error
}

type postgresGroupRepository struct {
	db *sql.DB
}

func NewPostgresGroupRepository(db *sql.DB) GroupRepository {
	return &postgresGroupRepository{db: db}
}

func (r *postgresGroupRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresGroupRepository) Create(ctx context.Context, exec SQLExecutor, group *models.Group) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO groups (stage_id, name, record_status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	group.RecordStatus = models.RecordActive
	err := executor.QueryRowContext(ctx, query,
		group.StageID,
		group.Name,
		group.RecordStatus,
	).Scan(&group.ID, &group.CreatedAt)

	return r.handleGroupError(err)
}

func (r *postgresGroupRepository) GetByID(ctx context.Context, id int) (*models.Group, error) {
	query := `
		SELECT id, stage_id, name, record_status, deleted_at, created_at
		FROM groups
		WHERE id = $1 AND record_status = 'active'`

	group := &models.Group{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&group.ID,
		&group.StageID,
		&group.Name,
		&group.RecordStatus,
		&group.DeletedAt,
		&group.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to scan group by id %d: %w", id, err)
	}
	return group, nil
}

func (r *postgresGroupRepository) ListByStage(ctx context.Context, stageID int) ([]*models.Group, error) {
	query := `
		SELECT id, stage_id, name, record_status, deleted_at, created_at
		FROM groups
		WHERE stage_id = $1 AND record_status = 'active'
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups for stage %d: %w", stageID, err)
	}
	defer rows.Close()

	groups := make([]*models.Group, 0)
	for rows.Next() {
		var group models.Group
		if scanErr := rows.Scan(
			&group.ID,
			&group.StageID,
			&group.Name,
			&group.RecordStatus,
			&group.DeletedAt,
			&group.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan group row: %w", scanErr)
		}
		groups = append(groups, &group)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during group rows iteration: %w", err)
	}
	return groups, nil
}

func (r *postgresGroupRepository) Tombstone(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE groups
		SET record_status = 'tombstoned', deleted_at = NOW()
		WHERE id = $1 AND record_status = 'active'`

	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrGroupNotFound)
}

func (r *postgresGroupRepository) TombstoneByStage(ctx context.Context, exec SQLExecutor, stageID int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE groups
		SET record_status = 'tombstoned', deleted_at = NOW()
		WHERE stage_id = $1 AND record_status = 'active'`

	_, err := executor.ExecContext(ctx, query, stageID)
	if err != nil {
		return fmt.Errorf("failed to tombstone groups for stage %d: %w", stageID, err)
	}
	return nil
}

func (r *postgresGroupRepository) AddCouple(ctx context.Context, exec SQLExecutor, link *models.GroupCouple) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO group_couples (group_id, couple_id, record_status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	link.RecordStatus = models.RecordActive
	err := executor.QueryRowContext(ctx, query,
		link.GroupID,
		link.CoupleID,
		link.RecordStatus,
	).Scan(&link.ID, &link.CreatedAt)

	return r.handleGroupError(err)
}

// GetCoupleLink returns the link row regardless of record status, so callers
// can reactivate a tombstoned assignment instead of inserting a duplicate.
func (r *postgresGroupRepository) GetCoupleLink(ctx context.Context, groupID, coupleID int) (*models.GroupCouple, error) {
	query := `
		SELECT id, group_id, couple_id, record_status, deleted_at, created_at
		FROM group_couples
		WHERE group_id = $1 AND couple_id = $2`

	link := &models.GroupCouple{}
	err := r.db.QueryRowContext(ctx, query, groupID, coupleID).Scan(
		&link.ID,
		&link.GroupID,
		&link.CoupleID,
		&link.RecordStatus,
		&link.DeletedAt,
		&link.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGroupCoupleNotFound
		}
		return nil, fmt.Errorf("failed to scan group couple link: %w", err)
	}
	return link, nil
}

func (r *postgresGroupRepository) ReactivateCoupleLink(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE group_couples
		SET record_status = 'active', deleted_at = NULL
		WHERE id = $1`

	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrGroupCoupleNotFound)
}

func (r *postgresGroupRepository) RemoveCouple(ctx context.Context, exec SQLExecutor, groupID, coupleID int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE group_couples
		SET record_status = 'tombstoned', deleted_at = NOW()
		WHERE group_id = $1 AND couple_id = $2 AND record_status = 'active'`

	result, err := executor.ExecContext(ctx, query, groupID, coupleID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrGroupCoupleNotFound)
}

func (r *postgresGroupRepository) ListCouples(ctx context.Context, groupID int) ([]*models.Couple, error) {
	query := `
		SELECT c.id, c.tournament_id, c.first_player_id, c.second_player_id, c.name,
		       c.record_status, c.deleted_at, c.created_at
		FROM couples c
		JOIN group_couples gc ON gc.couple_id = c.id
		WHERE gc.group_id = $1
		  AND gc.record_status = 'active'
		  AND c.record_status = 'active'
		ORDER BY gc.id ASC`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query couples for group %d: %w", groupID, err)
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
			return nil, fmt.Errorf("failed to scan group couple row: %w", scanErr)
		}
		couples = append(couples, &couple)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during group couple rows iteration: %w", err)
	}
	return couples, nil
}

func (r *postgresGroupRepository) ListStageAssignments(ctx context.Context, stageID int) ([]*models.GroupCouple, error) {
	query := `
		SELECT gc.id, gc.group_id, gc.couple_id, gc.record_status, gc.deleted_at, gc.created_at
		FROM group_couples gc
		JOIN groups g ON g.id = gc.group_id
		WHERE g.stage_id = $1
		  AND g.record_status = 'active'
		  AND gc.record_status = 'active'`

	rows, err := r.db.QueryContext(ctx, query, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stage assignments for stage %d: %w", stageID, err)
	}
	defer rows.Close()

	links := make([]*models.GroupCouple, 0)
	for rows.Next() {
		var link models.GroupCouple
		if scanErr := rows.Scan(
			&link.ID,
			&link.GroupID,
			&link.CoupleID,
			&link.RecordStatus,
			&link.DeletedAt,
			&link.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan stage assignment row: %w", scanErr)
		}
		links = append(links, &link)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during stage assignment rows iteration: %w", err)
	}
	return links, nil
}

func (r *postgresGroupRepository) TombstoneCoupleLinksByGroup(ctx context.Context, exec SQLExecutor, groupID int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE group_couples
		SET record_status = 'tombstoned', deleted_at = NOW()
		WHERE group_id = $1 AND record_status = 'active'`

	_, err := executor.ExecContext(ctx, query, groupID)
	if err != nil {
		return fmt.Errorf("failed to tombstone couple links for group %d: %w", groupID, err)
	}
	return nil
}

func (r *postgresGroupRepository) TombstoneCoupleLinksByStage(ctx context.Context, exec SQLExecutor, stageID int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE group_couples
		SET record_status = 'tombstoned', deleted_at = NOW()
		WHERE record_status = 'active'
		  AND group_id IN (SELECT id FROM groups WHERE stage_id = $1)`

	_, err := executor.ExecContext(ctx, query, stageID)
	if err != nil {
		return fmt.Errorf("failed to tombstone couple links for stage %d: %w", stageID, err)
	}
	return nil
}

func (r *postgresGroupRepository) handleGroupError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "groups_stage_id_fkey":
			return ErrGroupStageInvalid
		case "uq_group_couples_group_couple":
			return ErrGroupCoupleConflict
		case "group_couples_group_id_fkey", "group_couples_couple_id_fkey":
			return ErrGroupCoupleInvalid
		}
	}
	return err
}
