package services

import (
	"context"
	"testing"

	"github.com/Dosada05/padel-system/models"
	"github.com/Dosada05/padel-system/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stagingFixture owns tournament 42 (company 1) with a group stage 10 and an
// elimination stage 11.
type stagingFixture struct {
	stageRepo      *fakeStageRepo
	groupRepo      *fakeGroupRepo
	bracketRepo    *fakeBracketRepo
	coupleRepo     *fakeCoupleRepo
	tournamentRepo *fakeTournamentRepo
}

func newStagingFixture() *stagingFixture {
	stages := map[int]*models.Stage{
		10: {ID: 10, TournamentID: 42, Name: "Groups", StageType: models.StageTypeGroup, Order: 1, Config: models.DefaultStageConfig()},
		11: {ID: 11, TournamentID: 42, Name: "Playoffs", StageType: models.StageTypeElimination, Order: 2, Config: models.DefaultStageConfig()},
	}
	return &stagingFixture{
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
		groupRepo:      &fakeGroupRepo{},
		bracketRepo:    &fakeBracketRepo{},
		coupleRepo:     &fakeCoupleRepo{},
		tournamentRepo: ownedTournamentRepo(testTournament()),
	}
}

func (f *stagingFixture) service() StagingService {
	return NewStagingService(nil, f.stageRepo, f.groupRepo, f.bracketRepo, f.coupleRepo, nil, nil, nil, f.tournamentRepo, nil)
}

func TestCreateStageValidation(t *testing.T) {
	svc := newStagingFixture().service()
	ctx := context.Background()

	_, err := svc.CreateStage(ctx, 2, 42, CreateStageInput{Name: "Groups", StageType: models.StageTypeGroup, Order: 1})
	assert.ErrorIs(t, err, ErrForbiddenOperation)

	_, err = svc.CreateStage(ctx, 1, 42, CreateStageInput{Name: "  ", StageType: models.StageTypeGroup, Order: 1})
	assert.ErrorIs(t, err, ErrStageNameRequired)

	_, err = svc.CreateStage(ctx, 1, 42, CreateStageInput{Name: "Groups", StageType: "league", Order: 1})
	assert.ErrorIs(t, err, ErrStageInvalidType)

	_, err = svc.CreateStage(ctx, 1, 42, CreateStageInput{Name: "Groups", StageType: models.StageTypeGroup, Order: 0})
	assert.ErrorIs(t, err, ErrStageInvalidOrder)

	badConfig := models.DefaultStageConfig()
	badConfig.MatchRules.Format = "ladder"
	_, err = svc.CreateStage(ctx, 1, 42, CreateStageInput{Name: "Groups", StageType: models.StageTypeGroup, Order: 1, Config: &badConfig})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestUpdateStage(t *testing.T) {
	fixture := newStagingFixture()
	var saved *models.Stage
	fixture.stageRepo.update = func(stage *models.Stage) error {
		saved = stage
		return nil
	}
	svc := fixture.service()
	ctx := context.Background()

	badConfig := models.DefaultStageConfig()
	badConfig.ScoringSystem.Type = "golden_point"
	_, err := svc.UpdateStage(ctx, 1, 10, UpdateStageInput{Config: &badConfig})
	assert.ErrorIs(t, err, ErrValidationFailed)

	name := "Group Phase"
	config := models.DefaultStageConfig()
	config.AdvancementRule.TopN = 4
	stage, err := svc.UpdateStage(ctx, 1, 10, UpdateStageInput{Name: &name, Config: &config})
	require.NoError(t, err)
	assert.Equal(t, "Group Phase", stage.Name)
	assert.Equal(t, 4, stage.Config.AdvancementRule.TopN)
	require.NotNil(t, saved)
	assert.Equal(t, "Group Phase", saved.Name)
}

func TestCreateGroupOnlyOnGroupStages(t *testing.T) {
	fixture := newStagingFixture()
	fixture.groupRepo.create = func(group *models.Group) error {
		group.ID = 20
		return nil
	}
	svc := fixture.service()
	ctx := context.Background()

	_, err := svc.CreateGroup(ctx, 1, 11, CreateGroupInput{Name: "Group A"})
	assert.ErrorIs(t, err, ErrStageTypeMismatch)

	_, err = svc.CreateGroup(ctx, 1, 10, CreateGroupInput{Name: "  "})
	assert.ErrorIs(t, err, ErrGroupNameRequired)

	group, err := svc.CreateGroup(ctx, 1, 10, CreateGroupInput{Name: " Group A "})
	require.NoError(t, err)
	assert.Equal(t, 20, group.ID)
	assert.Equal(t, 10, group.StageID)
	assert.Equal(t, "Group A", group.Name)
}

func TestCreateBracketOnlyOnEliminationStages(t *testing.T) {
	fixture := newStagingFixture()
	fixture.bracketRepo.create = func(bracket *models.Bracket) error {
		bracket.ID = 30
		return nil
	}
	svc := fixture.service()
	ctx := context.Background()

	_, err := svc.CreateBracket(ctx, 1, 10, models.BracketTypeSilver)
	assert.ErrorIs(t, err, ErrStageTypeMismatch)

	_, err = svc.CreateBracket(ctx, 1, 11, "consolation")
	assert.ErrorIs(t, err, ErrBracketInvalidType)

	bracket, err := svc.CreateBracket(ctx, 1, 11, models.BracketTypeSilver)
	require.NoError(t, err)
	assert.Equal(t, 30, bracket.ID)
	assert.Equal(t, models.BracketTypeSilver, bracket.BracketType)
}

func TestCreateBracketMapsTypeConflict(t *testing.T) {
	fixture := newStagingFixture()
	fixture.bracketRepo.create = func(*models.Bracket) error {
		return repositories.ErrBracketTypeTaken
	}
	svc := fixture.service()

	_, err := svc.CreateBracket(context.Background(), 1, 11, models.BracketTypeSilver)
	assert.ErrorIs(t, err, ErrBracketTypeTaken)
}

func TestUpdateBracketType(t *testing.T) {
	fixture := newStagingFixture()
	brackets := map[int]*models.Bracket{
		30: {ID: 30, StageID: 11, BracketType: models.BracketTypeMain},
		31: {ID: 31, StageID: 11, BracketType: models.BracketTypeSilver},
	}
	fixture.bracketRepo.getByID = func(id int) (*models.Bracket, error) {
		bracket, ok := brackets[id]
		if !ok {
			return nil, repositories.ErrBracketNotFound
		}
		copy := *bracket
		return &copy, nil
	}
	var written models.BracketType
	fixture.bracketRepo.updateType = func(_ int, bracketType models.BracketType) error {
		written = bracketType
		return nil
	}
	svc := fixture.service()
	ctx := context.Background()

	// The main bracket is fixed.
	_, err := svc.UpdateBracketType(ctx, 1, 30, models.BracketTypeSilver)
	assert.ErrorIs(t, err, ErrMainBracketUndeletable)

	// No second main bracket either.
	_, err = svc.UpdateBracketType(ctx, 1, 31, models.BracketTypeMain)
	assert.ErrorIs(t, err, ErrBracketTypeTaken)

	_, err = svc.UpdateBracketType(ctx, 1, 31, "consolation")
	assert.ErrorIs(t, err, ErrBracketInvalidType)

	bracket, err := svc.UpdateBracketType(ctx, 1, 31, models.BracketTypeBronze)
	require.NoError(t, err)
	assert.Equal(t, models.BracketTypeBronze, bracket.BracketType)
	assert.Equal(t, models.BracketTypeBronze, written)
}

func TestAddCoupleToGroupValidation(t *testing.T) {
	fixture := newStagingFixture()
	fixture.groupRepo.getByID = func(id int) (*models.Group, error) {
		if id != 20 {
			return nil, repositories.ErrGroupNotFound
		}
		return &models.Group{ID: 20, StageID: 10, Name: "Group A"}, nil
	}
	fixture.groupRepo.listStageAssignments = func(int) ([]*models.GroupCouple, error) {
		return []*models.GroupCouple{{ID: 1, GroupID: 21, CoupleID: 51}}, nil
	}
	fixture.coupleRepo.getByID = func(id int) (*models.Couple, error) {
		switch id {
		case 50:
			return &models.Couple{ID: 50, TournamentID: 99}, nil
		case 51:
			return &models.Couple{ID: 51, TournamentID: 42}, nil
		default:
			return nil, repositories.ErrCoupleNotFound
		}
	}
	svc := fixture.service()
	ctx := context.Background()

	err := svc.AddCoupleToGroup(ctx, 1, 20, 404)
	assert.ErrorIs(t, err, ErrCoupleNotFound)

	err = svc.AddCoupleToGroup(ctx, 1, 20, 50)
	assert.ErrorIs(t, err, ErrValidationFailed)

	// Couple 51 already sits in another group of the same stage.
	err = svc.AddCoupleToGroup(ctx, 1, 20, 51)
	assert.ErrorIs(t, err, ErrCoupleAlreadyInGroup)
}

func TestRemoveCoupleFromGroup(t *testing.T) {
	fixture := newStagingFixture()
	fixture.groupRepo.getByID = func(int) (*models.Group, error) {
		return &models.Group{ID: 20, StageID: 10}, nil
	}
	removed := false
	fixture.groupRepo.removeCouple = func(groupID, coupleID int) error {
		if coupleID == 404 {
			return repositories.ErrGroupCoupleNotFound
		}
		removed = groupID == 20 && coupleID == 51
		return nil
	}
	svc := fixture.service()
	ctx := context.Background()

	err := svc.RemoveCoupleFromGroup(ctx, 1, 20, 404)
	assert.ErrorIs(t, err, ErrCoupleNotFound)

	require.NoError(t, svc.RemoveCoupleFromGroup(ctx, 1, 20, 51))
	assert.True(t, removed)
}

func TestAssignCouplesToGroupsValidation(t *testing.T) {
	fixture := newStagingFixture()
	fixture.groupRepo.listByStage = func(int) ([]*models.Group, error) {
		return nil, nil
	}
	svc := fixture.service()
	ctx := context.Background()

	_, err := svc.AssignCouplesToGroups(ctx, 1, 11, AssignmentRandom)
	assert.ErrorIs(t, err, ErrStageTypeMismatch)

	_, err = svc.AssignCouplesToGroups(ctx, 1, 10, AssignmentBalanced)
	assert.ErrorIs(t, err, ErrNotImplemented)

	_, err = svc.AssignCouplesToGroups(ctx, 1, 10, "alphabetical")
	assert.ErrorIs(t, err, ErrAssignInvalidMethod)

	_, err = svc.AssignCouplesToGroups(ctx, 1, 10, AssignmentRandom)
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestAssignCouplesToGroupsNothingPending(t *testing.T) {
	fixture := newStagingFixture()
	fixture.groupRepo.listByStage = func(int) ([]*models.Group, error) {
		return []*models.Group{{ID: 20, StageID: 10, Name: "Group A"}}, nil
	}
	fixture.groupRepo.listStageAssignments = func(int) ([]*models.GroupCouple, error) {
		return []*models.GroupCouple{{GroupID: 20, CoupleID: 50}}, nil
	}
	fixture.coupleRepo.listByTournament = func(int) ([]*models.Couple, error) {
		return []*models.Couple{{ID: 50, TournamentID: 42}}, nil
	}
	svc := fixture.service()

	assignments, err := svc.AssignCouplesToGroups(context.Background(), 1, 10, AssignmentRandom)
	require.NoError(t, err)
	assert.NotNil(t, assignments)
	assert.Empty(t, assignments)
}

func TestTargetGroupIndexDealsRoundRobin(t *testing.T) {
	got := make([]int, 0, 7)
	for position := 0; position < 7; position++ {
		got = append(got, targetGroupIndex(AssignmentRandom, position, 3))
	}
	assert.Equal(t, []int{0, 1, 2, 0, 1, 2, 0}, got)
}

func TestTargetGroupIndexSnakesForSeeded(t *testing.T) {
	got := make([]int, 0, 9)
	for position := 0; position < 9; position++ {
		got = append(got, targetGroupIndex(AssignmentSeeded, position, 3))
	}
	// Odd rounds reverse, so top seeds spread instead of stacking.
	assert.Equal(t, []int{0, 1, 2, 2, 1, 0, 0, 1, 2}, got)
}

func TestOrderBySeedingRanksKnownCouplesFirst(t *testing.T) {
	s := &stagingService{
		statsRepo: &fakeStatsRepo{
			listByScope: func(tournamentID int, groupID *int) ([]*models.CoupleStats, error) {
				assert.Nil(t, groupID)
				return []*models.CoupleStats{
					{CoupleID: 3, TournamentID: tournamentID, TotalPoints: 6},
					{CoupleID: 2, TournamentID: tournamentID, TotalPoints: 9},
				}, nil
			},
		},
		matchRepo: &fakeMatchRepo{
			listByTournament: func(int, repositories.MatchFilter) ([]*models.Match, error) {
				return nil, nil
			},
		},
	}

	couples := []*models.Couple{{ID: 1}, {ID: 2}, {ID: 3}}
	require.NoError(t, s.orderBySeeding(context.Background(), 42, couples))

	ids := []int{couples[0].ID, couples[1].ID, couples[2].ID}
	// Couple 1 has no stats row and falls to the tail.
	assert.Equal(t, []int{2, 3, 1}, ids)
}
