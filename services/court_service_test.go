package services

import (
	"context"
	"testing"
	"time"

	"github.com/Dosada05/padel-system/models"
	"github.com/Dosada05/padel-system/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCourtRepoFixture() *fakeCourtRepo {
	return &fakeCourtRepo{
		getCourtByID: func(id int) (*models.Court, error) {
			switch id {
			case 5:
				return &models.Court{ID: 5, CompanyID: 1, Name: "Center"}, nil
			case 7:
				return &models.Court{ID: 7, CompanyID: 9, Name: "Annex"}, nil
			default:
				return nil, repositories.ErrCourtNotFound
			}
		},
	}
}

func TestCreateCourtValidation(t *testing.T) {
	svc := NewCourtService(nil, &fakeCourtRepo{
		createCourt: func(*models.Court) error { return repositories.ErrCourtCompanyInvalid },
	}, nil, nil)
	ctx := context.Background()

	_, err := svc.CreateCourt(ctx, 1, CreateCourtInput{Name: "   "})
	assert.ErrorIs(t, err, ErrCourtNameRequired)

	_, err = svc.CreateCourt(ctx, 99, CreateCourtInput{Name: "Center"})
	assert.ErrorIs(t, err, ErrCompanyNotFound)
}

func TestCreateCourt(t *testing.T) {
	repo := &fakeCourtRepo{
		createCourt: func(court *models.Court) error {
			court.ID = 5
			return nil
		},
	}
	svc := NewCourtService(nil, repo, nil, nil)

	court, err := svc.CreateCourt(context.Background(), 1, CreateCourtInput{Name: "  Center  "})
	require.NoError(t, err)
	assert.Equal(t, 5, court.ID)
	assert.Equal(t, 1, court.CompanyID)
	assert.Equal(t, "Center", court.Name)
}

func TestLinkToTournamentValidation(t *testing.T) {
	svc := NewCourtService(nil, newCourtRepoFixture(), nil, ownedTournamentRepo(testTournament()))
	ctx := context.Background()

	_, err := svc.LinkToTournament(ctx, 2, 42, 5, CourtAvailabilityInput{})
	assert.ErrorIs(t, err, ErrForbiddenOperation)

	_, err = svc.LinkToTournament(ctx, 1, 42, 404, CourtAvailabilityInput{})
	assert.ErrorIs(t, err, ErrCourtNotFound)

	// Court 7 belongs to another company.
	_, err = svc.LinkToTournament(ctx, 1, 42, 7, CourtAvailabilityInput{})
	assert.ErrorIs(t, err, ErrForbiddenOperation)

	opens := schedulingDay(18, 0)
	closes := schedulingDay(9, 0)
	_, err = svc.LinkToTournament(ctx, 1, 42, 5, CourtAvailabilityInput{AvailabilityStart: &opens, AvailabilityEnd: &closes})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestLinkToTournamentCreatesLink(t *testing.T) {
	repo := newCourtRepoFixture()
	repo.getLinkAny = func(tournamentID, courtID int) (*models.TournamentCourt, error) {
		return nil, repositories.ErrCourtLinkNotFound
	}
	repo.linkToTournament = func(link *models.TournamentCourt) error {
		link.ID = 70
		return nil
	}
	svc := NewCourtService(nil, repo, nil, ownedTournamentRepo(testTournament()))

	opens := schedulingDay(9, 0)
	closes := schedulingDay(18, 0)
	link, err := svc.LinkToTournament(context.Background(), 1, 42, 5, CourtAvailabilityInput{AvailabilityStart: &opens, AvailabilityEnd: &closes})
	require.NoError(t, err)
	assert.Equal(t, 70, link.ID)
	assert.Equal(t, 42, link.TournamentID)
	assert.Equal(t, 5, link.CourtID)
	assert.Equal(t, &opens, link.AvailabilityStart)
	require.NotNil(t, link.Court)
	assert.Equal(t, "Center", link.Court.Name)

	repo.linkToTournament = func(*models.TournamentCourt) error {
		return repositories.ErrCourtLinkConflict
	}
	_, err = svc.LinkToTournament(context.Background(), 1, 42, 5, CourtAvailabilityInput{})
	assert.ErrorIs(t, err, ErrCourtAlreadyLinked)
}

func TestLinkToTournamentReactivatesTombstonedLink(t *testing.T) {
	deletedAt := schedulingDay(8, 0)
	repo := newCourtRepoFixture()
	repo.getLinkAny = func(tournamentID, courtID int) (*models.TournamentCourt, error) {
		return &models.TournamentCourt{
			ID: 70, TournamentID: tournamentID, CourtID: courtID,
			RecordStatus: models.RecordTombstoned, DeletedAt: &deletedAt,
		}, nil
	}
	reactivated := 0
	repo.reactivateLink = func(id int, _, _ *time.Time) error {
		reactivated = id
		return nil
	}
	svc := NewCourtService(nil, repo, nil, ownedTournamentRepo(testTournament()))

	opens := schedulingDay(9, 0)
	link, err := svc.LinkToTournament(context.Background(), 1, 42, 5, CourtAvailabilityInput{AvailabilityStart: &opens})
	require.NoError(t, err)
	assert.Equal(t, 70, reactivated)
	assert.Equal(t, models.RecordActive, link.RecordStatus)
	assert.Nil(t, link.DeletedAt)
	assert.Equal(t, &opens, link.AvailabilityStart)
	require.NotNil(t, link.Court)

	// An active link cannot be linked twice.
	repo.getLinkAny = func(tournamentID, courtID int) (*models.TournamentCourt, error) {
		return &models.TournamentCourt{ID: 70, TournamentID: tournamentID, CourtID: courtID, RecordStatus: models.RecordActive}, nil
	}
	_, err = svc.LinkToTournament(context.Background(), 1, 42, 5, CourtAvailabilityInput{})
	assert.ErrorIs(t, err, ErrCourtAlreadyLinked)
}

func TestUpdateAvailability(t *testing.T) {
	repo := newCourtRepoFixture()
	repo.getLink = func(tournamentID, courtID int) (*models.TournamentCourt, error) {
		if courtID != 5 {
			return nil, repositories.ErrCourtLinkNotFound
		}
		return &models.TournamentCourt{ID: 70, TournamentID: tournamentID, CourtID: 5}, nil
	}
	type availabilityWrite struct {
		id         int
		start, end *time.Time
	}
	var written *availabilityWrite
	repo.updateLinkAvailability = func(id int, start, end *time.Time) error {
		written = &availabilityWrite{id, start, end}
		return nil
	}
	svc := NewCourtService(nil, repo, nil, ownedTournamentRepo(testTournament()))
	ctx := context.Background()

	_, err := svc.UpdateAvailability(ctx, 1, 42, 404, CourtAvailabilityInput{})
	assert.ErrorIs(t, err, ErrCourtLinkNotFound)

	opens := schedulingDay(18, 0)
	closes := schedulingDay(9, 0)
	_, err = svc.UpdateAvailability(ctx, 1, 42, 5, CourtAvailabilityInput{AvailabilityStart: &opens, AvailabilityEnd: &closes})
	assert.ErrorIs(t, err, ErrValidationFailed)

	opens = schedulingDay(9, 0)
	closes = schedulingDay(18, 0)
	link, err := svc.UpdateAvailability(ctx, 1, 42, 5, CourtAvailabilityInput{AvailabilityStart: &opens, AvailabilityEnd: &closes})
	require.NoError(t, err)
	require.NotNil(t, written)
	assert.Equal(t, 70, written.id)
	assert.Equal(t, &opens, written.start)
	assert.Equal(t, &closes, link.AvailabilityEnd)
}

func TestUnlinkFromTournamentValidation(t *testing.T) {
	repo := newCourtRepoFixture()
	repo.getLink = func(tournamentID, courtID int) (*models.TournamentCourt, error) {
		return nil, repositories.ErrCourtLinkNotFound
	}
	svc := NewCourtService(nil, repo, nil, ownedTournamentRepo(testTournament()))
	ctx := context.Background()

	err := svc.UnlinkFromTournament(ctx, 2, 42, 5)
	assert.ErrorIs(t, err, ErrForbiddenOperation)

	err = svc.UnlinkFromTournament(ctx, 1, 42, 5)
	assert.ErrorIs(t, err, ErrCourtLinkNotFound)
}
