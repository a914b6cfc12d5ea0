package services

import (
	"context"
	"testing"

	"github.com/Dosada05/padel-system/models"
	"github.com/Dosada05/padel-system/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type generationFixture struct {
	stageRepo   *fakeStageRepo
	groupRepo   *fakeGroupRepo
	bracketRepo *fakeBracketRepo
	coupleRepo  *fakeCoupleRepo
	matchRepo   *fakeMatchRepo
	statsRepo   *fakeStatsRepo
}

func newGenerationFixture() *generationFixture {
	stages := map[int]*models.Stage{
		10: {ID: 10, TournamentID: 42, Name: "Groups", StageType: models.StageTypeGroup, Order: 1, Config: models.DefaultStageConfig()},
		11: {ID: 11, TournamentID: 42, Name: "Playoffs", StageType: models.StageTypeElimination, Order: 2, Config: models.DefaultStageConfig()},
	}
	return &generationFixture{
		stageRepo: &fakeStageRepo{
			getByID: func(id int) (*models.Stage, error) {
				stage, ok := stages[id]
				if !ok {
					return nil, repositories.ErrStageNotFound
				}
				copy := *stage
				return &copy, nil
			},
		},
		groupRepo:   &fakeGroupRepo{},
		bracketRepo: &fakeBracketRepo{},
		coupleRepo:  &fakeCoupleRepo{},
		matchRepo:   &fakeMatchRepo{},
		statsRepo:   &fakeStatsRepo{},
	}
}

func (f *generationFixture) service() GenerationService {
	return NewGenerationService(nil, f.stageRepo, f.groupRepo, f.bracketRepo, f.coupleRepo,
		f.matchRepo, nil, f.statsRepo, ownedTournamentRepo(testTournament()), nil, nil)
}

func TestGenerateStageMatchesChecksOwnership(t *testing.T) {
	svc := newGenerationFixture().service()

	_, err := svc.GenerateStageMatches(context.Background(), 2, 10, GenerateMatchesInput{})
	assert.ErrorIs(t, err, ErrForbiddenOperation)

	_, err = svc.GenerateStageMatches(context.Background(), 1, 404, GenerateMatchesInput{})
	assert.ErrorIs(t, err, ErrStageNotFound)
}

func TestGenerateGroupMatchesRequiresGroups(t *testing.T) {
	fixture := newGenerationFixture()
	fixture.groupRepo.listByStage = func(int) ([]*models.Group, error) { return nil, nil }
	svc := fixture.service()

	_, err := svc.GenerateStageMatches(context.Background(), 1, 10, GenerateMatchesInput{})
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestGenerateGroupMatchesRefusesRegeneration(t *testing.T) {
	fixture := newGenerationFixture()
	fixture.groupRepo.listByStage = func(stageID int) ([]*models.Group, error) {
		return []*models.Group{
			{ID: 20, StageID: stageID, Name: "Group A"},
			{ID: 21, StageID: stageID, Name: "Group B"},
		}, nil
	}
	// Group B already holds matches; the check runs before anything is written.
	fixture.matchRepo.countByGroup = func(groupID int) (int, error) {
		if groupID == 21 {
			return 3, nil
		}
		return 0, nil
	}
	svc := fixture.service()

	_, err := svc.GenerateStageMatches(context.Background(), 1, 10, GenerateMatchesInput{})
	assert.ErrorIs(t, err, ErrMatchesAlreadyExist)
}

func TestGenerateEliminationRequiresMainBracket(t *testing.T) {
	fixture := newGenerationFixture()
	fixture.bracketRepo.findByStageAndType = func(int, models.BracketType) (*models.Bracket, error) {
		return nil, repositories.ErrBracketNotFound
	}
	svc := fixture.service()

	_, err := svc.GenerateStageMatches(context.Background(), 1, 11, GenerateMatchesInput{})
	assert.ErrorIs(t, err, ErrBracketNotFound)
}

func TestGenerateEliminationRefusesRegeneration(t *testing.T) {
	fixture := newGenerationFixture()
	fixture.bracketRepo.findByStageAndType = func(stageID int, bracketType models.BracketType) (*models.Bracket, error) {
		assert.Equal(t, models.BracketTypeMain, bracketType)
		return &models.Bracket{ID: 30, StageID: stageID, BracketType: bracketType}, nil
	}
	fixture.matchRepo.countByBracket = func(int) (int, error) { return 4, nil }
	svc := fixture.service()

	_, err := svc.GenerateStageMatches(context.Background(), 1, 11, GenerateMatchesInput{})
	assert.ErrorIs(t, err, ErrMatchesAlreadyExist)
}

func TestGenerateEliminationValidatesExplicitSeeds(t *testing.T) {
	fixture := newGenerationFixture()
	fixture.bracketRepo.findByStageAndType = func(stageID int, bracketType models.BracketType) (*models.Bracket, error) {
		return &models.Bracket{ID: 30, StageID: stageID, BracketType: bracketType}, nil
	}
	fixture.matchRepo.countByBracket = func(int) (int, error) { return 0, nil }
	fixture.coupleRepo = coupleLookupRepo(
		&models.Couple{ID: 50, TournamentID: 42},
		&models.Couple{ID: 51, TournamentID: 42},
		&models.Couple{ID: 60, TournamentID: 99},
	)
	svc := fixture.service()
	ctx := context.Background()

	_, err := svc.GenerateStageMatches(ctx, 1, 11, GenerateMatchesInput{CoupleIDs: []int{50, 404}})
	assert.ErrorIs(t, err, ErrCoupleNotFound)

	_, err = svc.GenerateStageMatches(ctx, 1, 11, GenerateMatchesInput{CoupleIDs: []int{50, 60}})
	assert.ErrorIs(t, err, ErrValidationFailed)

	// Duplicates collapse, leaving a single seed.
	_, err = svc.GenerateStageMatches(ctx, 1, 11, GenerateMatchesInput{CoupleIDs: []int{50, 50}})
	assert.ErrorIs(t, err, ErrInsufficientCouples)
}

func TestGenerateEliminationWithoutSeedSource(t *testing.T) {
	fixture := newGenerationFixture()
	fixture.bracketRepo.findByStageAndType = func(stageID int, bracketType models.BracketType) (*models.Bracket, error) {
		return &models.Bracket{ID: 30, StageID: stageID, BracketType: bracketType}, nil
	}
	fixture.matchRepo.countByBracket = func(int) (int, error) { return 0, nil }
	fixture.stageRepo.previousGroupStage = func(int, int) (*models.Stage, error) {
		return nil, repositories.ErrStageNotFound
	}
	svc := fixture.service()

	_, err := svc.GenerateStageMatches(context.Background(), 1, 11, GenerateMatchesInput{})
	assert.ErrorIs(t, err, ErrNoSeedSource)
}

func TestGenerateEliminationQualifiesFromPreviousStage(t *testing.T) {
	fixture := newGenerationFixture()
	fixture.bracketRepo.findByStageAndType = func(stageID int, bracketType models.BracketType) (*models.Bracket, error) {
		return &models.Bracket{ID: 30, StageID: stageID, BracketType: bracketType}, nil
	}
	fixture.matchRepo.countByBracket = func(int) (int, error) { return 0, nil }
	fixture.stageRepo.previousGroupStage = func(tournamentID, beforeOrder int) (*models.Stage, error) {
		assert.Equal(t, 42, tournamentID)
		assert.Equal(t, 2, beforeOrder)
		return &models.Stage{ID: 10, TournamentID: 42, StageType: models.StageTypeGroup, Order: 1, Config: models.DefaultStageConfig()}, nil
	}
	fixture.groupRepo.listByStage = func(int) ([]*models.Group, error) {
		return []*models.Group{{ID: 20, StageID: 10, Name: "Group A"}}, nil
	}
	var scopedGroup *int
	fixture.statsRepo.listByScope = func(tournamentID int, groupID *int) ([]*models.CoupleStats, error) {
		scopedGroup = groupID
		return []*models.CoupleStats{{CoupleID: 50, TournamentID: tournamentID, GroupID: groupID, TotalPoints: 6}}, nil
	}
	fixture.matchRepo.listByTournament = func(int, repositories.MatchFilter) ([]*models.Match, error) {
		return nil, nil
	}
	svc := fixture.service()

	// One group with one ranked couple qualifies a single seed, which is not
	// enough for a bracket.
	_, err := svc.GenerateStageMatches(context.Background(), 1, 11, GenerateMatchesInput{})
	assert.ErrorIs(t, err, ErrInsufficientCouples)
	require.NotNil(t, scopedGroup)
	assert.Equal(t, 20, *scopedGroup)
}
