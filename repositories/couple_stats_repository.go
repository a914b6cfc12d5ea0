package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/padel-system/models"
	"github.com/lib/pq"
)

var (
	ErrCoupleStatsNotFound      = errors.New("couple stats not found")
	ErrCoupleStatsCoupleInvalid = errors.New("couple stats couple conflict or invalid")
)

type CoupleStatsRepository interface {
	Get(ctx context.Context, tournamentID, coupleID int, groupID *int) (*models.CoupleStats, error)
	Create(ctx context.Context, exec SQLExecutor, stats *models.CoupleStats) error
	Update(ctx context.Context, exec SQLExecutor, stats *models.CoupleStats) error
	AddDelta(ctx context.Context, exec SQLExecutor, id int, delta models.StatsDelta) error
	SubtractDelta(ctx context.Context, exec SQLExecutor, id int, delta models.StatsDelta) error
	ListByScope(ctx context.Context, tournamentID int, groupID *int) ([]*models.CoupleStats, error)
	ResetByScope(ctx context.Context, exec SQLExecutor, tournamentID int, groupID *int) error
}

type postgresCoupleStatsRepository struct {
	db *sql.DB
}

func NewPostgresCoupleStatsRepository(db *sql.DB) CoupleStatsRepository {
	return &postgresCoupleStatsRepository{db: db}
}

func (r *postgresCoupleStatsRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const coupleStatsColumns = `id, tournament_id, couple_id, group_id,
	matches_played, matches_won, matches_lost, matches_drawn,
	games_won, games_lost, total_points, updated_at`

func (r *postgresCoupleStatsRepository) Get(ctx context.Context, tournamentID, coupleID int, groupID *int) (*models.CoupleStats, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + coupleStatsColumns + ` FROM couple_stats
		WHERE tournament_id = $1 AND couple_id = $2`)

	args := []interface{}{tournamentID, coupleID}
	if groupID != nil {
		queryBuilder.WriteString(" AND group_id = $3")
		args = append(args, *groupID)
	} else {
		queryBuilder.WriteString(" AND group_id IS NULL")
	}

	stats := &models.CoupleStats{}
	err := r.db.QueryRowContext(ctx, queryBuilder.String(), args...).Scan(r.scanTargets(stats)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCoupleStatsNotFound
		}
		return nil, fmt.Errorf("failed to scan couple stats for couple %d: %w", coupleID, err)
	}
	return stats, nil
}

func (r *postgresCoupleStatsRepository) Create(ctx context.Context, exec SQLExecutor, stats *models.CoupleStats) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO couple_stats
			(tournament_id, couple_id, group_id,
			 matches_played, matches_won, matches_lost, matches_drawn,
			 games_won, games_lost, total_points)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, updated_at`

	err := executor.QueryRowContext(ctx, query,
		stats.TournamentID,
		stats.CoupleID,
		stats.GroupID,
		stats.MatchesPlayed,
		stats.MatchesWon,
		stats.MatchesLost,
		stats.MatchesDrawn,
		stats.GamesWon,
		stats.GamesLost,
		stats.TotalPoints,
	).Scan(&stats.ID, &stats.UpdatedAt)

	return r.handleCoupleStatsError(err)
}

func (r *postgresCoupleStatsRepository) Update(ctx context.Context, exec SQLExecutor, stats *models.CoupleStats) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE couple_stats
		SET matches_played = $1, matches_won = $2, matches_lost = $3, matches_drawn = $4,
		    games_won = $5, games_lost = $6, total_points = $7, updated_at = NOW()
		WHERE id = $8`

	result, err := executor.ExecContext(ctx, query,
		stats.MatchesPlayed,
		stats.MatchesWon,
		stats.MatchesLost,
		stats.MatchesDrawn,
		stats.GamesWon,
		stats.GamesLost,
		stats.TotalPoints,
		stats.ID,
	)
	if err != nil {
		return r.handleCoupleStatsError(err)
	}
	return checkAffectedRows(result, ErrCoupleStatsNotFound)
}

func (r *postgresCoupleStatsRepository) AddDelta(ctx context.Context, exec SQLExecutor, id int, delta models.StatsDelta) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE couple_stats
		SET matches_played = matches_played + $1,
		    matches_won = matches_won + $2,
		    matches_lost = matches_lost + $3,
		    matches_drawn = matches_drawn + $4,
		    games_won = games_won + $5,
		    games_lost = games_lost + $6,
		    total_points = total_points + $7,
		    updated_at = NOW()
		WHERE id = $8`

	result, err := executor.ExecContext(ctx, query,
		delta.MatchesPlayed,
		delta.MatchesWon,
		delta.MatchesLost,
		delta.MatchesDrawn,
		delta.GamesWon,
		delta.GamesLost,
		delta.TotalPoints,
		id,
	)
	if err != nil {
		return r.handleCoupleStatsError(err)
	}
	return checkAffectedRows(result, ErrCoupleStatsNotFound)
}

// SubtractDelta reverses a previously added contribution. Counters are
// clamped at zero so a reversal after a manual reset cannot go negative.
func (r *postgresCoupleStatsRepository) SubtractDelta(ctx context.Context, exec SQLExecutor, id int, delta models.StatsDelta) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE couple_stats
		SET matches_played = GREATEST(0, matches_played - $1),
		    matches_won = GREATEST(0, matches_won - $2),
		    matches_lost = GREATEST(0, matches_lost - $3),
		    matches_drawn = GREATEST(0, matches_drawn - $4),
		    games_won = GREATEST(0, games_won - $5),
		    games_lost = GREATEST(0, games_lost - $6),
		    total_points = GREATEST(0, total_points - $7),
		    updated_at = NOW()
		WHERE id = $8`

	result, err := executor.ExecContext(ctx, query,
		delta.MatchesPlayed,
		delta.MatchesWon,
		delta.MatchesLost,
		delta.MatchesDrawn,
		delta.GamesWon,
		delta.GamesLost,
		delta.TotalPoints,
		id,
	)
	if err != nil {
		return r.handleCoupleStatsError(err)
	}
	return checkAffectedRows(result, ErrCoupleStatsNotFound)
}

// ListByScope returns rows ranked by the primary standings criteria. Ties
// remain adjacent so the caller can apply configured tiebreakers.
func (r *postgresCoupleStatsRepository) ListByScope(ctx context.Context, tournamentID int, groupID *int) ([]*models.CoupleStats, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + coupleStatsColumns + ` FROM couple_stats
		WHERE tournament_id = $1`)

	args := []interface{}{tournamentID}
	if groupID != nil {
		queryBuilder.WriteString(" AND group_id = $2")
		args = append(args, *groupID)
	} else {
		queryBuilder.WriteString(" AND group_id IS NULL")
	}
	queryBuilder.WriteString(`
		ORDER BY total_points DESC, (games_won - games_lost) DESC,
		         games_won DESC, matches_won DESC, couple_id ASC`)

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query couple stats: %w", err)
	}
	defer rows.Close()

	statsList := make([]*models.CoupleStats, 0)
	for rows.Next() {
		var stats models.CoupleStats
		if scanErr := rows.Scan(r.scanTargets(&stats)...); scanErr != nil {
			return nil, fmt.Errorf("failed to scan couple stats row: %w", scanErr)
		}
		statsList = append(statsList, &stats)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during couple stats rows iteration: %w", err)
	}
	return statsList, nil
}

func (r *postgresCoupleStatsRepository) ResetByScope(ctx context.Context, exec SQLExecutor, tournamentID int, groupID *int) error {
	executor := r.getExecutor(exec)

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		UPDATE couple_stats
		SET matches_played = 0, matches_won = 0, matches_lost = 0, matches_drawn = 0,
		    games_won = 0, games_lost = 0, total_points = 0, updated_at = NOW()
		WHERE tournament_id = $1`)

	args := []interface{}{tournamentID}
	if groupID != nil {
		queryBuilder.WriteString(" AND group_id = $2")
		args = append(args, *groupID)
	} else {
		queryBuilder.WriteString(" AND group_id IS NULL")
	}

	_, err := executor.ExecContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return fmt.Errorf("failed to reset couple stats for tournament %d: %w", tournamentID, err)
	}
	return nil
}

func (r *postgresCoupleStatsRepository) scanTargets(stats *models.CoupleStats) []interface{} {
	return []interface{}{
		&stats.ID,
		&stats.TournamentID,
		&stats.CoupleID,
		&stats.GroupID,
		&stats.MatchesPlayed,
		&stats.MatchesWon,
		&stats.MatchesLost,
		&stats.MatchesDrawn,
		&stats.GamesWon,
		&stats.GamesLost,
		&stats.TotalPoints,
		&stats.UpdatedAt,
	}
}

func (r *postgresCoupleStatsRepository) handleCoupleStatsError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "couple_stats_couple_id_fkey", "couple_stats_tournament_id_fkey", "couple_stats_group_id_fkey":
			return ErrCoupleStatsCoupleInvalid
		}
	}
	return err
}
