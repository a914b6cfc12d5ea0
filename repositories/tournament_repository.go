package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Dosada05/padel-system/models"
	"github.com/lib/pq"
)

var (
	ErrTournamentNotFound       = errors.New("tournament not found")
	ErrTournamentCompanyInvalid = errors.New("tournament company conflict or invalid")
)

type TournamentRepository interface {
	Create(ctx context.Context, t *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	ListByCompany(ctx context.Context, companyID int, status *models.TournamentStatus) ([]*models.Tournament, error)
	ListByStatuses(ctx context.Context, statuses ...models.TournamentStatus) ([]*models.Tournament, error)
	Update(ctx context.Context, exec SQLExecutor, t *models.Tournament) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error
	UpdatePosterKey(ctx context.Context, id int, posterKey *string) error
	Delete(ctx context.Context, id int) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentColumns = `id, company_id, name, description, start_date, end_date, status, poster_key, created_at`

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (company_id, name, description, start_date, end_date, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		t.CompanyID,
		t.Name,
		t.Description,
		t.StartDate,
		t.EndDate,
		t.Status,
	).Scan(&t.ID, &t.CreatedAt)

	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`

	t := &models.Tournament{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID,
		&t.CompanyID,
		&t.Name,
		&t.Description,
		&t.StartDate,
		&t.EndDate,
		&t.Status,
		&t.PosterKey,
		&t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament by id %d: %w", id, err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) ListByCompany(ctx context.Context, companyID int, status *models.TournamentStatus) ([]*models.Tournament, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + tournamentColumns + ` FROM tournaments WHERE company_id = $1`)

	args := []interface{}{companyID}
	placeholderIndex := 2

	if status != nil {
		queryBuilder.WriteString(" AND status = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *status)
	}

	queryBuilder.WriteString(" ORDER BY start_date DESC, id DESC")

	return r.queryTournaments(ctx, queryBuilder.String(), args...)
}

func (r *postgresTournamentRepository) ListByStatuses(ctx context.Context, statuses ...models.TournamentStatus) ([]*models.Tournament, error) {
	if len(statuses) == 0 {
		return []*models.Tournament{}, nil
	}
	values := make([]string, 0, len(statuses))
	for _, s := range statuses {
		values = append(values, string(s))
	}
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE status = ANY($1) ORDER BY id ASC`
	return r.queryTournaments(ctx, query, pq.Array(values))
}

func (r *postgresTournamentRepository) Update(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE tournaments
		SET name = $1, description = $2, start_date = $3, end_date = $4, status = $5
		WHERE id = $6`

	result, err := executor.ExecContext(ctx, query,
		t.Name,
		t.Description,
		t.StartDate,
		t.EndDate,
		t.Status,
		t.ID,
	)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE tournaments SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdatePosterKey(ctx context.Context, id int, posterKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE tournaments SET poster_key = $1 WHERE id = $2`, posterKey, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) queryTournaments(ctx context.Context, query string, args ...interface{}) ([]*models.Tournament, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if scanErr := rows.Scan(
			&t.ID,
			&t.CompanyID,
			&t.Name,
			&t.Description,
			&t.StartDate,
			&t.EndDate,
			&t.Status,
			&t.PosterKey,
			&t.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", scanErr)
		}
		tournaments = append(tournaments, &t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament rows iteration: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "tournaments_company_id_fkey":
			return ErrTournamentCompanyInvalid
		}
	}
	return err
}
