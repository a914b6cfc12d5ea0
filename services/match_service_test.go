package services

import (
	"context"
	"testing"

	"github.com/Dosada05/padel-system/models"
	"github.com/Dosada05/padel-system/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func matchLookupRepo(matches ...*models.Match) *fakeMatchRepo {
	byID := make(map[int]*models.Match, len(matches))
	for _, m := range matches {
		byID[m.ID] = m
	}
	return &fakeMatchRepo{
		getByID: func(id int) (*models.Match, error) {
			m, ok := byID[id]
			if !ok {
				return nil, repositories.ErrMatchNotFound
			}
			copy := *m
			return &copy, nil
		},
	}
}

func TestGetMatchHydratesCouples(t *testing.T) {
	matchRepo := matchLookupRepo(&models.Match{ID: 60, TournamentID: 42, Couple1ID: 50, Couple2ID: 51})
	coupleRepo := coupleLookupRepo(
		&models.Couple{ID: 50, Name: "Smith/Jones"},
		&models.Couple{ID: 51, Name: "Lopez/Cruz"},
	)
	svc := NewMatchService(nil, matchRepo, coupleRepo, nil, nil, nil)

	match, err := svc.GetByID(context.Background(), 60)
	require.NoError(t, err)
	require.NotNil(t, match.Couple1)
	assert.Equal(t, "Smith/Jones", match.Couple1.Name)
	require.NotNil(t, match.Couple2)
	assert.Equal(t, "Lopez/Cruz", match.Couple2.Name)

	_, err = svc.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestUpdateMatchResultValidation(t *testing.T) {
	matchRepo := matchLookupRepo(&models.Match{ID: 60, TournamentID: 42, Couple1ID: 50, Couple2ID: 51})
	svc := NewMatchService(nil, matchRepo, nil, ownedTournamentRepo(testTournament()), nil, nil)
	ctx := context.Background()

	_, err := svc.UpdateResult(ctx, 1, 404, UpdateMatchResultInput{})
	assert.ErrorIs(t, err, ErrMatchNotFound)

	_, err = svc.UpdateResult(ctx, 2, 60, UpdateMatchResultInput{})
	assert.ErrorIs(t, err, ErrForbiddenOperation)

	outsider := 99
	_, err = svc.UpdateResult(ctx, 1, 60, UpdateMatchResultInput{WinnerCoupleID: &outsider})
	assert.ErrorIs(t, err, ErrMatchInvalidWinner)

	_, err = svc.UpdateResult(ctx, 1, 60, UpdateMatchResultInput{
		Games: models.GameScores{{Couple1Score: 6, Couple2Score: -1}},
	})
	assert.ErrorIs(t, err, ErrValidationFailed)

	bogus := models.MatchResultStatus("abandoned")
	_, err = svc.UpdateResult(ctx, 1, 60, UpdateMatchResultInput{ResultStatus: &bogus})
	assert.ErrorIs(t, err, ErrMatchInvalidStatus)
}
