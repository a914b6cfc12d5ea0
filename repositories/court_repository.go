package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/padel-system/models"
	"github.com/lib/pq"
)

var (
	ErrCourtNotFound          = errors.New("court not found")
	ErrCourtCompanyInvalid    = errors.New("court company conflict or invalid")
	ErrCourtLinkNotFound      = errors.New("tournament court link not found")
	ErrCourtLinkConflict      = errors.New("court already linked to tournament")
	ErrCourtLinkTargetInvalid = errors.New("tournament court link conflict or invalid")
)

type CourtRepository interface {
	CreateCourt(ctx context.Context, court *models.Court) error
	GetCourtByID(ctx context.Context, id int) (*models.Court, error)
	ListCourtsByCompany(ctx context.Context, companyID int) ([]*models.Court, error)
	LinkToTournament(ctx context.Context, exec SQLExecutor, link *models.TournamentCourt) error
	GetLink(ctx context.Context, tournamentID, courtID int) (*models.TournamentCourt, error)
	GetLinkAny(ctx context.Context, tournamentID, courtID int) (*models.TournamentCourt, error)
	ReactivateLink(ctx context.Context, exec SQLExecutor, id int, availabilityStart, availabilityEnd *time.Time) error
	UpdateLinkAvailability(ctx context.Context, exec SQLExecutor, id int, availabilityStart, availabilityEnd *time.Time) error
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.TournamentCourt, error)
	UnlinkFromTournament(ctx context.Context, exec SQLExecutor, tournamentID, courtID int) error
}

type postgresCourtRepository struct {
	db *sql.DB
}

func NewPostgresCourtRepository(db *sql.DB) CourtRepository {
	return &postgresCourtRepository{db: db}
}

func (r *postgresCourtRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresCourtRepository) CreateCourt(ctx context.Context, court *models.Court) error {
	query := `
		INSERT INTO courts (company_id, name)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, court.CompanyID, court.Name).
		Scan(&court.ID, &court.CreatedAt)

	return r.handleCourtError(err)
}

func (r *postgresCourtRepository) GetCourtByID(ctx context.Context, id int) (*models.Court, error) {
	query := `SELECT id, company_id, name, created_at FROM courts WHERE id = $1`

	court := &models.Court{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&court.ID, &court.CompanyID, &court.Name, &court.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourtNotFound
		}
		return nil, fmt.Errorf("failed to scan court by id %d: %w", id, err)
	}
	return court, nil
}

func (r *postgresCourtRepository) ListCourtsByCompany(ctx context.Context, companyID int) ([]*models.Court, error) {
	query := `SELECT id, company_id, name, created_at FROM courts WHERE company_id = $1 ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query courts for company %d: %w", companyID, err)
	}
	defer rows.Close()

	courts := make([]*models.Court, 0)
	for rows.Next() {
		var court models.Court
		if scanErr := rows.Scan(&court.ID, &court.CompanyID, &court.Name, &court.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan court row: %w", scanErr)
		}
		courts = append(courts, &court)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during court rows iteration: %w", err)
	}
	return courts, nil
}

func (r *postgresCourtRepository) LinkToTournament(ctx context.Context, exec SQLExecutor, link *models.TournamentCourt) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO tournament_courts (tournament_id, court_id, availability_start, availability_end, record_status)
		VALUES ($1, $2, $3, $4, 'active')
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		link.TournamentID,
		link.CourtID,
		link.AvailabilityStart,
		link.AvailabilityEnd,
	).Scan(&link.ID, &link.CreatedAt)
	if err != nil {
		return r.handleCourtError(err)
	}
	link.RecordStatus = models.RecordActive
	return nil
}

const tournamentCourtColumns = `id, tournament_id, court_id, availability_start, availability_end,
	record_status, deleted_at, created_at`

func (r *postgresCourtRepository) GetLink(ctx context.Context, tournamentID, courtID int) (*models.TournamentCourt, error) {
	query := `SELECT ` + tournamentCourtColumns + ` FROM tournament_courts
		WHERE tournament_id = $1 AND court_id = $2 AND record_status = 'active'`

	return r.scanLinkRow(r.db.QueryRowContext(ctx, query, tournamentID, courtID))
}

// GetLinkAny ignores record_status so a tombstoned link can be found and
// reactivated instead of violating the unique pair constraint.
func (r *postgresCourtRepository) GetLinkAny(ctx context.Context, tournamentID, courtID int) (*models.TournamentCourt, error) {
	query := `SELECT ` + tournamentCourtColumns + ` FROM tournament_courts
		WHERE tournament_id = $1 AND court_id = $2`

	return r.scanLinkRow(r.db.QueryRowContext(ctx, query, tournamentID, courtID))
}

func (r *postgresCourtRepository) ReactivateLink(ctx context.Context, exec SQLExecutor, id int, availabilityStart, availabilityEnd *time.Time) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE tournament_courts
		SET record_status = 'active', deleted_at = NULL,
		    availability_start = $1, availability_end = $2
		WHERE id = $3`

	result, err := executor.ExecContext(ctx, query, availabilityStart, availabilityEnd, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrCourtLinkNotFound)
}

func (r *postgresCourtRepository) UpdateLinkAvailability(ctx context.Context, exec SQLExecutor, id int, availabilityStart, availabilityEnd *time.Time) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE tournament_courts
		SET availability_start = $1, availability_end = $2
		WHERE id = $3 AND record_status = 'active'`

	result, err := executor.ExecContext(ctx, query, availabilityStart, availabilityEnd, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrCourtLinkNotFound)
}

func (r *postgresCourtRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.TournamentCourt, error) {
	query := `
		SELECT tc.id, tc.tournament_id, tc.court_id, tc.availability_start, tc.availability_end,
		       tc.record_status, tc.deleted_at, tc.created_at,
		       c.id, c.company_id, c.name, c.created_at
		FROM tournament_courts tc
		JOIN courts c ON c.id = tc.court_id
		WHERE tc.tournament_id = $1 AND tc.record_status = 'active'
		ORDER BY tc.id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournament courts for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	links := make([]*models.TournamentCourt, 0)
	for rows.Next() {
		var link models.TournamentCourt
		var court models.Court
		scanErr := rows.Scan(
			&link.ID,
			&link.TournamentID,
			&link.CourtID,
			&link.AvailabilityStart,
			&link.AvailabilityEnd,
			&link.RecordStatus,
			&link.DeletedAt,
			&link.CreatedAt,
			&court.ID,
			&court.CompanyID,
			&court.Name,
			&court.CreatedAt,
		)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament court row: %w", scanErr)
		}
		link.Court = &court
		links = append(links, &link)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament court rows iteration: %w", err)
	}
	return links, nil
}

func (r *postgresCourtRepository) UnlinkFromTournament(ctx context.Context, exec SQLExecutor, tournamentID, courtID int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE tournament_courts
		SET record_status = 'tombstoned', deleted_at = NOW()
		WHERE tournament_id = $1 AND court_id = $2 AND record_status = 'active'`

	result, err := executor.ExecContext(ctx, query, tournamentID, courtID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrCourtLinkNotFound)
}

func (r *postgresCourtRepository) scanLinkRow(row *sql.Row) (*models.TournamentCourt, error) {
	link := &models.TournamentCourt{}
	err := row.Scan(
		&link.ID,
		&link.TournamentID,
		&link.CourtID,
		&link.AvailabilityStart,
		&link.AvailabilityEnd,
		&link.RecordStatus,
		&link.DeletedAt,
		&link.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourtLinkNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament court link: %w", err)
	}
	return link, nil
}

func (r *postgresCourtRepository) handleCourtError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "courts_company_id_fkey":
			return ErrCourtCompanyInvalid
		case "uq_tournament_courts_tournament_court":
			return ErrCourtLinkConflict
		case "tournament_courts_tournament_id_fkey", "tournament_courts_court_id_fkey":
			return ErrCourtLinkTargetInvalid
		}
	}
	return err
}
