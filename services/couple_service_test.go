package services

import (
	"context"
	"testing"

	"github.com/Dosada05/padel-system/models"
	"github.com/Dosada05/padel-system/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCoupleValidation(t *testing.T) {
	playerRepo := playerLookupRepo(
		&models.Player{ID: 1, CompanyID: 1},
		&models.Player{ID: 2, CompanyID: 1},
		&models.Player{ID: 3, CompanyID: 9},
	)
	coupleRepo := &fakeCoupleRepo{
		findByPlayerPair: func(int, int, int) (*models.Couple, error) {
			return nil, repositories.ErrCoupleNotFound
		},
	}
	svc := NewCoupleService(coupleRepo, playerRepo, ownedTournamentRepo(testTournament()))
	ctx := context.Background()

	_, err := svc.Create(ctx, 2, 42, CreateCoupleInput{FirstPlayerID: 1, SecondPlayerID: 2, Name: "Pair"})
	assert.ErrorIs(t, err, ErrForbiddenOperation)

	_, err = svc.Create(ctx, 1, 42, CreateCoupleInput{FirstPlayerID: 1, SecondPlayerID: 1, Name: "Pair"})
	assert.ErrorIs(t, err, ErrCoupleSamePlayer)

	_, err = svc.Create(ctx, 1, 42, CreateCoupleInput{FirstPlayerID: 1, SecondPlayerID: 2, Name: "   "})
	assert.ErrorIs(t, err, ErrCoupleNameRequired)

	_, err = svc.Create(ctx, 1, 42, CreateCoupleInput{FirstPlayerID: 1, SecondPlayerID: 99, Name: "Pair"})
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	// Player 3 is registered under another company.
	_, err = svc.Create(ctx, 1, 42, CreateCoupleInput{FirstPlayerID: 1, SecondPlayerID: 3, Name: "Pair"})
	assert.ErrorIs(t, err, ErrForbiddenOperation)
}

func TestCreateCoupleRejectsDuplicatePair(t *testing.T) {
	playerRepo := playerLookupRepo(
		&models.Player{ID: 1, CompanyID: 1},
		&models.Player{ID: 2, CompanyID: 1},
	)
	coupleRepo := &fakeCoupleRepo{
		findByPlayerPair: func(tournamentID, playerA, playerB int) (*models.Couple, error) {
			return &models.Couple{ID: 5, TournamentID: tournamentID, FirstPlayerID: playerA, SecondPlayerID: playerB}, nil
		},
	}
	svc := NewCoupleService(coupleRepo, playerRepo, ownedTournamentRepo(testTournament()))

	_, err := svc.Create(context.Background(), 1, 42, CreateCoupleInput{FirstPlayerID: 1, SecondPlayerID: 2, Name: "Pair"})
	assert.ErrorIs(t, err, ErrCoupleDuplicatePair)
}

func TestCreateCouple(t *testing.T) {
	playerRepo := playerLookupRepo(
		&models.Player{ID: 1, CompanyID: 1},
		&models.Player{ID: 2, CompanyID: 1},
	)
	coupleRepo := &fakeCoupleRepo{
		findByPlayerPair: func(int, int, int) (*models.Couple, error) {
			return nil, repositories.ErrCoupleNotFound
		},
		create: func(c *models.Couple) error {
			c.ID = 50
			return nil
		},
	}
	svc := NewCoupleService(coupleRepo, playerRepo, ownedTournamentRepo(testTournament()))

	couple, err := svc.Create(context.Background(), 1, 42, CreateCoupleInput{
		FirstPlayerID:  1,
		SecondPlayerID: 2,
		Name:           " Smith/Jones ",
	})
	require.NoError(t, err)
	assert.Equal(t, 50, couple.ID)
	assert.Equal(t, 42, couple.TournamentID)
	assert.Equal(t, "Smith/Jones", couple.Name)
}

func TestGetCoupleHydratesPlayers(t *testing.T) {
	coupleRepo := coupleLookupRepo(&models.Couple{ID: 50, TournamentID: 42, FirstPlayerID: 1, SecondPlayerID: 2})
	playerRepo := playerLookupRepo(
		&models.Player{ID: 1, FirstName: "Ana"},
		&models.Player{ID: 2, FirstName: "Bea"},
	)
	svc := NewCoupleService(coupleRepo, playerRepo, nil)

	couple, err := svc.GetByID(context.Background(), 50)
	require.NoError(t, err)
	require.NotNil(t, couple.FirstPlayer)
	assert.Equal(t, "Ana", couple.FirstPlayer.FirstName)
	require.NotNil(t, couple.SecondPlayer)
	assert.Equal(t, "Bea", couple.SecondPlayer.FirstName)

	_, err = svc.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, ErrCoupleNotFound)
}

func TestRemoveCouple(t *testing.T) {
	coupleRepo := coupleLookupRepo(&models.Couple{ID: 50, TournamentID: 42, FirstPlayerID: 1, SecondPlayerID: 2})
	removed := false
	coupleRepo.tombstone = func(id int) error {
		removed = id == 50
		return nil
	}
	svc := NewCoupleService(coupleRepo, nil, ownedTournamentRepo(testTournament()))
	ctx := context.Background()

	err := svc.Remove(ctx, 2, 50)
	assert.ErrorIs(t, err, ErrForbiddenOperation)
	assert.False(t, removed)

	require.NoError(t, svc.Remove(ctx, 1, 50))
	assert.True(t, removed)
}
