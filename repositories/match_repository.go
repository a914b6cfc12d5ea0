package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Dosada05/padel-system/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchTournamentInvalid = errors.New("match tournament conflict or invalid")
	ErrMatchCoupleInvalid     = errors.New("match couple conflict or invalid")
	ErrMatchCourtInvalid      = errors.New("match court conflict or invalid")
	ErrMatchStagingInvalid    = errors.New("match stage, group or bracket conflict or invalid")
)

// MatchFilter narrows List. Nil pointers mean "no filter".
type MatchFilter struct {
	StageID         *int
	GroupID         *int
	BracketID       *int
	CourtID         *int
	ResultStatus    *models.MatchResultStatus
	OnlyUnscheduled bool
	OnlyScheduled   bool
}

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int, filter MatchFilter) ([]*models.Match, error)
	ListScheduledOnCourt(ctx context.Context, courtID int, excludeMatchID *int) ([]*models.Match, error)
	CountByGroup(ctx context.Context, groupID int) (int, error)
	CountByBracket(ctx context.Context, bracketID int) (int, error)
	UpdateResult(ctx context.Context, exec SQLExecutor, id int, games models.GameScores, winnerCoupleID *int, status models.MatchResultStatus) error
	UpdateOrdering(ctx context.Context, exec SQLExecutor, match *models.Match) error
	UpdateSchedule(ctx context.Context, exec SQLExecutor, id int, courtID int, start, end time.Time, isTimeLimited bool, timeLimitMinutes *int) error
	ClearSchedule(ctx context.Context, exec SQLExecutor, id int) error
	ClearScheduleByCourt(ctx context.Context, exec SQLExecutor, tournamentID, courtID int) error
	DetachByStage(ctx context.Context, exec SQLExecutor, stageID int) error
	DetachByGroup(ctx context.Context, exec SQLExecutor, groupID int) error
	DetachByBracket(ctx context.Context, exec SQLExecutor, bracketID int) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `id, tournament_id, couple1_id, couple2_id, winner_couple_id, games, match_result_status,
	stage_id, group_id, bracket_id,
	court_id, scheduled_start, scheduled_end, is_time_limited, time_limit_minutes,
	display_order, order_in_stage, order_in_group, bracket_position, round_number, priority_score,
	created_at`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO matches
			(tournament_id, couple1_id, couple2_id, winner_couple_id, games, match_result_status,
			 stage_id, group_id, bracket_id,
			 court_id, scheduled_start, scheduled_end, is_time_limited, time_limit_minutes,
			 display_order, order_in_stage, order_in_group, bracket_position, round_number, priority_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		match.TournamentID,
		match.Couple1ID,
		match.Couple2ID,
		match.WinnerCoupleID,
		match.Games,
		match.ResultStatus,
		match.StageID,
		match.GroupID,
		match.BracketID,
		match.CourtID,
		match.ScheduledStart,
		match.ScheduledEnd,
		match.IsTimeLimited,
		match.TimeLimitMinutes,
		match.DisplayOrder,
		match.OrderInStage,
		match.OrderInGroup,
		match.BracketPosition,
		match.RoundNumber,
		match.PriorityScore,
	).Scan(&match.ID, &match.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	match := &models.Match{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(r.scanTargets(match)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}
	return match, nil
}

// ListByTournament orders by display_order with NULLs last, then id, which is
// the canonical presentation order.
func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int, filter MatchFilter) ([]*models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1`)

	args := []interface{}{tournamentID}
	placeholderIndex := 2

	appendIntFilter := func(column string, value *int) {
		if value == nil {
			return
		}
		queryBuilder.WriteString(" AND " + column + " = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *value)
		placeholderIndex++
	}

	appendIntFilter("stage_id", filter.StageID)
	appendIntFilter("group_id", filter.GroupID)
	appendIntFilter("bracket_id", filter.BracketID)
	appendIntFilter("court_id", filter.CourtID)

	if filter.ResultStatus != nil {
		queryBuilder.WriteString(" AND match_result_status = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *filter.ResultStatus)
		placeholderIndex++
	}
	if filter.OnlyUnscheduled {
		queryBuilder.WriteString(" AND scheduled_start IS NULL")
	}
	if filter.OnlyScheduled {
		queryBuilder.WriteString(" AND scheduled_start IS NOT NULL AND scheduled_end IS NOT NULL")
	}

	queryBuilder.WriteString(" ORDER BY COALESCE(display_order, 999999) ASC, id ASC")

	return r.queryMatches(ctx, queryBuilder.String(), args...)
}

func (r *postgresMatchRepository) ListScheduledOnCourt(ctx context.Context, courtID int, excludeMatchID *int) ([]*models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchColumns + ` FROM matches
		WHERE court_id = $1
		  AND scheduled_start IS NOT NULL
		  AND scheduled_end IS NOT NULL`)

	args := []interface{}{courtID}
	if excludeMatchID != nil {
		queryBuilder.WriteString(" AND id != $2")
		args = append(args, *excludeMatchID)
	}
	queryBuilder.WriteString(" ORDER BY scheduled_start ASC")

	return r.queryMatches(ctx, queryBuilder.String(), args...)
}

func (r *postgresMatchRepository) CountByGroup(ctx context.Context, groupID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM matches WHERE group_id = $1`, groupID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count matches for group %d: %w", groupID, err)
	}
	return count, nil
}

func (r *postgresMatchRepository) CountByBracket(ctx context.Context, bracketID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM matches WHERE bracket_id = $1`, bracketID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count matches for bracket %d: %w", bracketID, err)
	}
	return count, nil
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, id int, games models.GameScores, winnerCoupleID *int, status models.MatchResultStatus) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE matches
		SET games = $1, winner_couple_id = $2, match_result_status = $3
		WHERE id = $4`

	result, err := executor.ExecContext(ctx, query, games, winnerCoupleID, status, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateOrdering(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE matches
		SET display_order = $1, order_in_stage = $2, order_in_group = $3,
		    round_number = $4, priority_score = $5, court_id = $6
		WHERE id = $7`

	result, err := executor.ExecContext(ctx, query,
		match.DisplayOrder,
		match.OrderInStage,
		match.OrderInGroup,
		match.RoundNumber,
		match.PriorityScore,
		match.CourtID,
		match.ID,
	)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateSchedule(ctx context.Context, exec SQLExecutor, id int, courtID int, start, end time.Time, isTimeLimited bool, timeLimitMinutes *int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE matches
		SET court_id = $1, scheduled_start = $2, scheduled_end = $3,
		    is_time_limited = $4, time_limit_minutes = $5
		WHERE id = $6`

	result, err := executor.ExecContext(ctx, query, courtID, start, end, isTimeLimited, timeLimitMinutes, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) ClearSchedule(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE matches
		SET court_id = NULL, scheduled_start = NULL, scheduled_end = NULL,
		    is_time_limited = FALSE, time_limit_minutes = NULL
		WHERE id = $1`

	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) ClearScheduleByCourt(ctx context.Context, exec SQLExecutor, tournamentID, courtID int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE matches
		SET court_id = NULL, scheduled_start = NULL, scheduled_end = NULL
		WHERE tournament_id = $1 AND court_id = $2`

	_, err := executor.ExecContext(ctx, query, tournamentID, courtID)
	if err != nil {
		return fmt.Errorf("failed to clear schedule for court %d: %w", courtID, err)
	}
	return nil
}

func (r *postgresMatchRepository) DetachByStage(ctx context.Context, exec SQLExecutor, stageID int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE matches
		SET stage_id = NULL, group_id = NULL, bracket_id = NULL
		WHERE stage_id = $1`

	_, err := executor.ExecContext(ctx, query, stageID)
	if err != nil {
		return fmt.Errorf("failed to detach matches from stage %d: %w", stageID, err)
	}
	return nil
}

func (r *postgresMatchRepository) DetachByGroup(ctx context.Context, exec SQLExecutor, groupID int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE matches SET group_id = NULL WHERE group_id = $1`

	_, err := executor.ExecContext(ctx, query, groupID)
	if err != nil {
		return fmt.Errorf("failed to detach matches from group %d: %w", groupID, err)
	}
	return nil
}

func (r *postgresMatchRepository) DetachByBracket(ctx context.Context, exec SQLExecutor, bracketID int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE matches SET bracket_id = NULL WHERE bracket_id = $1`

	_, err := executor.ExecContext(ctx, query, bracketID)
	if err != nil {
		return fmt.Errorf("failed to detach matches from bracket %d: %w", bracketID, err)
	}
	return nil
}

func (r *postgresMatchRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) queryMatches(ctx context.Context, query string, args ...interface{}) ([]*models.Match, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		var match models.Match
		if scanErr := rows.Scan(r.scanTargets(&match)...); scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, &match)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) scanTargets(match *models.Match) []interface{} {
	return []interface{}{
		&match.ID,
		&match.TournamentID,
		&match.Couple1ID,
		&match.Couple2ID,
		&match.WinnerCoupleID,
		&match.Games,
		&match.ResultStatus,
		&match.StageID,
		&match.GroupID,
		&match.BracketID,
		&match.CourtID,
		&match.ScheduledStart,
		&match.ScheduledEnd,
		&match.IsTimeLimited,
		&match.TimeLimitMinutes,
		&match.DisplayOrder,
		&match.OrderInStage,
		&match.OrderInGroup,
		&match.BracketPosition,
		&match.RoundNumber,
		&match.PriorityScore,
		&match.CreatedAt,
	}
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "matches_tournament_id_fkey":
			return ErrMatchTournamentInvalid
		case "matches_couple1_id_fkey", "matches_couple2_id_fkey", "matches_winner_couple_id_fkey":
			return ErrMatchCoupleInvalid
		case "matches_court_id_fkey":
			return ErrMatchCourtInvalid
		case "matches_stage_id_fkey", "matches_group_id_fkey", "matches_bracket_id_fkey":
			return ErrMatchStagingInvalid
		}
	}
	return err
}
