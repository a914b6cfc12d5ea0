package services

import (
	"context"
	"testing"

	"github.com/Dosada05/padel-system/models"
	"github.com/Dosada05/padel-system/repositories"
	"github.com/Dosada05/padel-system/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterValidatesInput(t *testing.T) {
	svc := NewAuthService(&fakeCompanyRepo{})
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "  ", Email: "club@example.com", Password: "longenough"})
	assert.ErrorIs(t, err, ErrCompanyNameRequired)

	_, err = svc.Register(ctx, RegisterInput{Name: "Padel Club", Email: "not-an-email", Password: "longenough"})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = svc.Register(ctx, RegisterInput{Name: "Padel Club", Email: "club@example.com", Password: "short"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestRegisterStoresHashAndNormalizesEmail(t *testing.T) {
	var stored *models.Company
	repo := &fakeCompanyRepo{
		create: func(c *models.Company) error {
			stored = &models.Company{Name: c.Name, Email: c.Email, PasswordHash: c.PasswordHash}
			c.ID = 7
			return nil
		},
	}
	svc := NewAuthService(repo)

	company, err := svc.Register(context.Background(), RegisterInput{
		Name:     " Padel Club ",
		Email:    " Club@Example.COM ",
		Password: "correct horse",
	})
	require.NoError(t, err)

	assert.Equal(t, 7, company.ID)
	assert.Equal(t, "Padel Club", company.Name)
	assert.Equal(t, "club@example.com", company.Email)
	// The hash never leaves the service, but the repo received a real one.
	assert.Empty(t, company.PasswordHash)
	require.NotEmpty(t, stored.PasswordHash)
	assert.NotEqual(t, "correct horse", stored.PasswordHash)
	assert.True(t, utils.CheckPasswordHash("correct horse", stored.PasswordHash))
}

func TestRegisterMapsEmailConflict(t *testing.T) {
	repo := &fakeCompanyRepo{
		create: func(*models.Company) error { return repositories.ErrCompanyEmailConflict },
	}
	svc := NewAuthService(repo)

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Padel Club",
		Email:    "club@example.com",
		Password: "longenough",
	})
	assert.ErrorIs(t, err, ErrCompanyEmailTaken)
}

func TestLogin(t *testing.T) {
	hash, err := utils.HashPassword("open sesame")
	require.NoError(t, err)

	repo := &fakeCompanyRepo{
		getByEmail: func(email string) (*models.Company, error) {
			if email != "club@example.com" {
				return nil, repositories.ErrCompanyNotFound
			}
			return &models.Company{ID: 3, Email: email, PasswordHash: hash}, nil
		},
	}
	svc := NewAuthService(repo)
	ctx := context.Background()

	_, err = svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "open sesame"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginInput{Email: "club@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	company, err := svc.Login(ctx, LoginInput{Email: " CLUB@example.com ", Password: "open sesame"})
	require.NoError(t, err)
	assert.Equal(t, 3, company.ID)
	assert.Empty(t, company.PasswordHash)
}
