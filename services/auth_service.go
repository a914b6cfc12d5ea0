package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/padel-system/models"
	"github.com/Dosada05/padel-system/repositories"
	"github.com/Dosada05/padel-system/utils"
)

const minPasswordLength = 8

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*models.Company, error)
	Login(ctx context.Context, input LoginInput) (*models.Company, error)
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authService struct {
	companyRepo repositories.CompanyRepository
}

func NewAuthService(companyRepo repositories.CompanyRepository) AuthService {
	return &authService{
		companyRepo: companyRepo,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*models.Company, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))

	if input.Name == "" {
		return nil, ErrCompanyNameRequired
	}
	if !utils.IsValidEmail(input.Email) {
		return nil, fmt.Errorf("%w: invalid email format", ErrValidationFailed)
	}
	if len(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	company := &models.Company{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
	}
	if err := s.companyRepo.Create(ctx, company); err != nil {
		if errors.Is(err, repositories.ErrCompanyEmailConflict) {
			return nil, ErrCompanyEmailTaken
		}
		return nil, fmt.Errorf("failed to create company: %w", err)
	}

	company.PasswordHash = ""
	return company, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.Company, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))

	company, err := s.companyRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrCompanyNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up company by email: %w", err)
	}

	if !utils.CheckPasswordHash(input.Password, company.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	company.PasswordHash = ""
	return company, nil
}
