package services

import (
	"context"
	"testing"

	"github.com/Dosada05/padel-system/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePlayerValidation(t *testing.T) {
	svc := NewPlayerService(&fakePlayerRepo{})
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, CreatePlayerInput{FirstName: "Ana", LastName: "  "})
	assert.ErrorIs(t, err, ErrPlayerNameRequired)

	bad := "not-an-email"
	_, err = svc.Create(ctx, 1, CreatePlayerInput{FirstName: "Ana", LastName: "Ruiz", Email: &bad})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestCreatePlayer(t *testing.T) {
	repo := &fakePlayerRepo{
		create: func(p *models.Player) error {
			p.ID = 11
			return nil
		},
	}
	svc := NewPlayerService(repo)

	player, err := svc.Create(context.Background(), 1, CreatePlayerInput{FirstName: " Ana ", LastName: " Ruiz "})
	require.NoError(t, err)
	assert.Equal(t, 11, player.ID)
	assert.Equal(t, 1, player.CompanyID)
	assert.Equal(t, "Ana", player.FirstName)
	assert.Equal(t, "Ruiz", player.LastName)
}

func TestGetPlayerScopedToCompany(t *testing.T) {
	repo := playerLookupRepo(&models.Player{ID: 11, CompanyID: 1, FirstName: "Ana"})
	svc := NewPlayerService(repo)
	ctx := context.Background()

	player, err := svc.GetByID(ctx, 1, 11)
	require.NoError(t, err)
	assert.Equal(t, "Ana", player.FirstName)

	_, err = svc.GetByID(ctx, 2, 11)
	assert.ErrorIs(t, err, ErrForbiddenOperation)

	_, err = svc.GetByID(ctx, 1, 404)
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}
