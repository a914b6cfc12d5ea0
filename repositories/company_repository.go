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
	ErrCompanyNotFound      = errors.New("company not found")
	ErrCompanyEmailConflict = errors.New("company email already registered")
)

type CompanyRepository interface {
	Create(ctx context.Context, company *models.Company) error
	GetByID(ctx context.Context, id int) (*models.Company, error)
	GetByEmail(ctx context.Context, email string) (*models.Company, error)
}

type postgresCompanyRepository struct {
	db *sql.DB
}

func NewPostgresCompanyRepository(db *sql.DB) CompanyRepository {
	return &postgresCompanyRepository{db: db}
}

func (r *postgresCompanyRepository) Create(ctx context.Context, company *models.Company) error {
	query := `
		INSERT INTO companies (name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		company.Name,
		company.Email,
		company.PasswordHash,
	).Scan(&company.ID, &company.CreatedAt)

	return r.handleCompanyError(err)
}

func (r *postgresCompanyRepository) GetByID(ctx context.Context, id int) (*models.Company, error) {
	query := `
		SELECT id, name, email, password_hash, created_at
		FROM companies
		WHERE id = $1`

	company := &models.Company{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&company.ID,
		&company.Name,
		&company.Email,
		&company.PasswordHash,
		&company.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCompanyNotFound
		}
		return nil, fmt.Errorf("failed to scan company by id %d: %w", id, err)
	}
	return company, nil
}

func (r *postgresCompanyRepository) GetByEmail(ctx context.Context, email string) (*models.Company, error) {
	query := `
		SELECT id, name, email, password_hash, created_at
		FROM companies
		WHERE email = $1`

	company := &models.Company{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&company.ID,
		&company.Name,
		&company.Email,
		&company.PasswordHash,
		&company.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCompanyNotFound
		}
		return nil, fmt.Errorf("failed to scan company by email: %w", err)
	}
	return company, nil
}

func (r *postgresCompanyRepository) handleCompanyError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "companies_email_key":
			return ErrCompanyEmailConflict
		}
	}
	return err
}
