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
	ErrPlayerNotFound       = errors.New("player not found")
	ErrPlayerCompanyInvalid = errors.New("player company conflict or invalid")
)

type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, id int) (*models.Player, error)
	ListByCompany(ctx context.Context, companyID int) ([]*models.Player, error)
	ListByIDs(ctx context.Context, ids []int) ([]*models.Player, error)
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) Create(ctx context.Context, player *models.Player) error {
	query := `
		INSERT INTO players (company_id, first_name, last_name, email, phone)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		player.CompanyID,
		player.FirstName,
		player.LastName,
		player.Email,
		player.Phone,
	).Scan(&player.ID, &player.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Constraint == "players_company_id_fkey" {
			return ErrPlayerCompanyInvalid
		}
		return err
	}
	return nil
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := `
		SELECT id, company_id, first_name, last_name, email, phone, created_at
		FROM players
		WHERE id = $1`

	player := &models.Player{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&player.ID,
		&player.CompanyID,
		&player.FirstName,
		&player.LastName,
		&player.Email,
		&player.Phone,
		&player.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to scan player by id %d: %w", id, err)
	}
	return player, nil
}

func (r *postgresPlayerRepository) ListByCompany(ctx context.Context, companyID int) ([]*models.Player, error) {
	query := `
		SELECT id, company_id, first_name, last_name, email, phone, created_at
		FROM players
		WHERE company_id = $1
		ORDER BY last_name ASC, first_name ASC`

	return r.queryPlayers(ctx, query, companyID)
}

func (r *postgresPlayerRepository) ListByIDs(ctx context.Context, ids []int) ([]*models.Player, error) {
	if len(ids) == 0 {
		return []*models.Player{}, nil
	}
	query := `
		SELECT id, company_id, first_name, last_name, email, phone, created_at
		FROM players
		WHERE id = ANY($1)
		ORDER BY id ASC`

	return r.queryPlayers(ctx, query, pq.Array(ids))
}

func (r *postgresPlayerRepository) queryPlayers(ctx context.Context, query string, args ...interface{}) ([]*models.Player, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		var player models.Player
		if scanErr := rows.Scan(
			&player.ID,
			&player.CompanyID,
			&player.FirstName,
			&player.LastName,
			&player.Email,
			&player.Phone,
			&player.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", scanErr)
		}
		players = append(players, &player)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during player rows iteration: %w", err)
	}
	return players, nil
}
