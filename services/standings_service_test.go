package services

import (
	"context"
	"testing"

	"github.com/Dosada05/padel-system/models"
	"github.com/Dosada05/padel-system/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type standingsFixture struct {
	statsRepo  *fakeStatsRepo
	matchRepo  *fakeMatchRepo
	stageRepo  *fakeStageRepo
	groupRepo  *fakeGroupRepo
	coupleRepo *fakeCoupleRepo
	playerRepo *fakePlayerRepo
}

func newStandingsFixture(t *testing.T) *standingsFixture {
	return &standingsFixture{
		statsRepo: &fakeStatsRepo{
			listByScope: func(tournamentID int, groupID *int) ([]*models.CoupleStats, error) {
				assert.Equal(t, 42, tournamentID)
				require.NotNil(t, groupID)
				assert.Equal(t, 20, *groupID)
				// Deliberately unordered input.
				return []*models.CoupleStats{
					{ID: 102, TournamentID: 42, CoupleID: 52, GroupID: groupID, TotalPoints: 0, GamesWon: 5, GamesLost: 24},
					{ID: 100, TournamentID: 42, CoupleID: 50, GroupID: groupID, TotalPoints: 15, GamesWon: 24, GamesLost: 10},
					{ID: 101, TournamentID: 42, CoupleID: 51, GroupID: groupID, TotalPoints: 8, GamesWon: 14, GamesLost: 9},
				}, nil
			},
		},
		matchRepo: &fakeMatchRepo{
			listByTournament: func(_ int, filter repositories.MatchFilter) ([]*models.Match, error) {
				require.NotNil(t, filter.GroupID)
				assert.Equal(t, 20, *filter.GroupID)
				return nil, nil
			},
		},
		stageRepo: &fakeStageRepo{
			getByID: func(id int) (*models.Stage, error) {
				return &models.Stage{ID: id, TournamentID: 42, Name: "Groups", StageType: models.StageTypeGroup, Order: 1, Config: models.DefaultStageConfig()}, nil
			},
		},
		groupRepo: &fakeGroupRepo{
			getByID: func(id int) (*models.Group, error) {
				if id != 20 {
					return nil, repositories.ErrGroupNotFound
				}
				return &models.Group{ID: 20, StageID: 10, Name: "Group A"}, nil
			},
		},
		coupleRepo: coupleLookupRepo(
			&models.Couple{ID: 50, Name: "Smith/Jones", FirstPlayerID: 1, SecondPlayerID: 2},
			&models.Couple{ID: 51, Name: "Lopez/Cruz", FirstPlayerID: 3, SecondPlayerID: 4},
			&models.Couple{ID: 52, Name: "Kim/Park", FirstPlayerID: 5, SecondPlayerID: 6},
		),
		playerRepo: playerLookupRepo(
			&models.Player{ID: 1, LastName: "Smith"},
			&models.Player{ID: 2, LastName: "Jones"},
			&models.Player{ID: 3, LastName: "Lopez"},
			&models.Player{ID: 4, LastName: "Cruz"},
			&models.Player{ID: 5, LastName: "Kim"},
			&models.Player{ID: 6, LastName: "Park"},
		),
	}
}

func (f *standingsFixture) service() StandingsService {
	return NewStandingsService(nil, f.statsRepo, f.matchRepo, f.stageRepo, f.groupRepo, f.coupleRepo, f.playerRepo, ownedTournamentRepo(testTournament()), nil)
}

func TestGetGroupStandingsRanksByPoints(t *testing.T) {
	svc := newStandingsFixture(t).service()

	entries, err := svc.GetGroupStandings(context.Background(), 1, 20)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, 1, entries[0].Position)
	assert.Equal(t, 50, entries[0].CoupleID)
	assert.Equal(t, 14, entries[0].GamesDiff)
	require.NotNil(t, entries[0].Couple)
	assert.Equal(t, "Smith/Jones", entries[0].Couple.Name)
	require.NotNil(t, entries[0].Couple.FirstPlayer)
	assert.Equal(t, "Smith", entries[0].Couple.FirstPlayer.LastName)

	assert.Equal(t, 2, entries[1].Position)
	assert.Equal(t, 51, entries[1].CoupleID)
	assert.Equal(t, 3, entries[2].Position)
	assert.Equal(t, 52, entries[2].CoupleID)

	// A group id routes the tournament-level call to the same table.
	viaTournament, err := svc.GetTournamentStandings(context.Background(), 1, 42, intPtr(20))
	require.NoError(t, err)
	assert.Equal(t, entries, viaTournament)
}

func TestGetGroupStandingsErrors(t *testing.T) {
	svc := newStandingsFixture(t).service()
	ctx := context.Background()

	_, err := svc.GetGroupStandings(ctx, 1, 404)
	assert.ErrorIs(t, err, ErrGroupNotFound)

	_, err = svc.GetGroupStandings(ctx, 2, 20)
	assert.ErrorIs(t, err, ErrForbiddenOperation)
}

func TestGetTournamentStandingsBracketScope(t *testing.T) {
	statsRepo := &fakeStatsRepo{
		listByScope: func(tournamentID int, groupID *int) ([]*models.CoupleStats, error) {
			assert.Equal(t, 42, tournamentID)
			assert.Nil(t, groupID)
			return []*models.CoupleStats{
				{ID: 100, TournamentID: 42, CoupleID: 50, TotalPoints: 3, GamesWon: 7, GamesLost: 12},
				{ID: 101, TournamentID: 42, CoupleID: 51, TotalPoints: 15, GamesWon: 12, GamesLost: 7},
			}, nil
		},
	}
	matchRepo := &fakeMatchRepo{
		listByTournament: func(_ int, filter repositories.MatchFilter) ([]*models.Match, error) {
			assert.Nil(t, filter.GroupID)
			return []*models.Match{
				{ID: 60, TournamentID: 42, Couple1ID: 50, Couple2ID: 51, GroupID: intPtr(20)},
				{ID: 61, TournamentID: 42, Couple1ID: 50, Couple2ID: 51},
			}, nil
		},
	}
	coupleRepo := coupleLookupRepo(
		&models.Couple{ID: 50, Name: "Smith/Jones"},
		&models.Couple{ID: 51, Name: "Lopez/Cruz"},
	)
	svc := NewStandingsService(nil, statsRepo, matchRepo, nil, nil, coupleRepo, playerLookupRepo(), ownedTournamentRepo(testTournament()), nil)

	entries, err := svc.GetTournamentStandings(context.Background(), 1, 42, nil)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 51, entries[0].CoupleID)
	assert.Equal(t, 1, entries[0].Position)
	assert.Equal(t, 50, entries[1].CoupleID)
	require.NotNil(t, entries[0].Couple)
	assert.Equal(t, "Lopez/Cruz", entries[0].Couple.Name)
}

func TestApplyMatchResultWritesDeltas(t *testing.T) {
	var created []*models.CoupleStats
	added := make(map[int]models.StatsDelta)
	statsRepo := &fakeStatsRepo{
		get: func(int, int, *int) (*models.CoupleStats, error) {
			return nil, repositories.ErrCoupleStatsNotFound
		},
		create: func(stats *models.CoupleStats) error {
			stats.ID = 100 + len(created)
			created = append(created, stats)
			return nil
		},
		addDelta: func(id int, delta models.StatsDelta) error {
			added[id] = delta
			return nil
		},
	}
	svc := NewStandingsService(nil, statsRepo, nil, nil, nil, nil, nil, nil, nil)

	match := &models.Match{
		ID: 60, TournamentID: 42, Couple1ID: 50, Couple2ID: 51,
		WinnerCoupleID: intPtr(50),
		Games: models.GameScores{
			{Couple1Score: 6, Couple2Score: 3},
			{Couple1Score: 6, Couple2Score: 4},
		},
	}
	require.NoError(t, svc.ApplyMatchResult(context.Background(), nil, match))

	require.Len(t, created, 2)
	assert.Equal(t, 50, created[0].CoupleID)
	assert.Equal(t, 42, created[0].TournamentID)
	assert.Nil(t, created[0].GroupID)
	assert.Equal(t, 51, created[1].CoupleID)

	// Default scoring: 3 for the win plus 1 per game won.
	assert.Equal(t, models.StatsDelta{
		MatchesPlayed: 1, MatchesWon: 1, GamesWon: 12, GamesLost: 7, TotalPoints: 15,
	}, added[100])
	assert.Equal(t, models.StatsDelta{
		MatchesPlayed: 1, MatchesLost: 1, GamesWon: 7, GamesLost: 12, TotalPoints: 7,
	}, added[101])
}

func TestApplyMatchResultSkipsNonCountingMatches(t *testing.T) {
	// An all-nil fake panics on any call, so reaching the repo fails the test.
	svc := NewStandingsService(nil, &fakeStatsRepo{}, nil, nil, nil, nil, nil, nil, nil)
	ctx := context.Background()

	noScore := &models.Match{ID: 61, TournamentID: 42, Couple1ID: 50, Couple2ID: 51}
	require.NoError(t, svc.ApplyMatchResult(ctx, nil, noScore))

	zeroScore := &models.Match{
		ID: 62, TournamentID: 42, Couple1ID: 50, Couple2ID: 51,
		Games: models.GameScores{{Couple1Score: 0, Couple2Score: 0}},
	}
	require.NoError(t, svc.ApplyMatchResult(ctx, nil, zeroScore))

	undecided := &models.Match{
		ID: 63, TournamentID: 42, Couple1ID: 50, Couple2ID: 51,
		Games: models.GameScores{
			{Couple1Score: 6, Couple2Score: 3},
			{Couple1Score: 3, Couple2Score: 6},
			{Couple1Score: 6, Couple2Score: 4},
		},
	}
	require.NoError(t, svc.ApplyMatchResult(ctx, nil, undecided))
}

func TestRemoveMatchResultSubtractsDeltas(t *testing.T) {
	subtracted := make(map[int]models.StatsDelta)
	statsRepo := &fakeStatsRepo{
		get: func(_, coupleID int, groupID *int) (*models.CoupleStats, error) {
			require.NotNil(t, groupID)
			assert.Equal(t, 20, *groupID)
			if coupleID == 50 {
				return &models.CoupleStats{ID: 100, TournamentID: 42, CoupleID: 50}, nil
			}
			return &models.CoupleStats{ID: 101, TournamentID: 42, CoupleID: 51}, nil
		},
		subtractDelta: func(id int, delta models.StatsDelta) error {
			subtracted[id] = delta
			return nil
		},
	}
	config := models.DefaultStageConfig()
	config.ScoringSystem.Draw = 2
	config.ScoringSystem.GameWin = 0
	stageRepo := &fakeStageRepo{
		getByID: func(id int) (*models.Stage, error) {
			return &models.Stage{ID: id, TournamentID: 42, StageType: models.StageTypeGroup, Config: config}, nil
		},
	}
	svc := NewStandingsService(nil, statsRepo, nil, stageRepo, nil, nil, nil, nil, nil)

	// A single equal set is a draw; the stage scoring awards 2 for it.
	match := &models.Match{
		ID: 64, TournamentID: 42, Couple1ID: 50, Couple2ID: 51,
		StageID: intPtr(10), GroupID: intPtr(20),
		Games: models.GameScores{{Couple1Score: 4, Couple2Score: 4}},
	}
	require.NoError(t, svc.RemoveMatchResult(context.Background(), nil, match))

	expected := models.StatsDelta{MatchesPlayed: 1, MatchesDrawn: 1, GamesWon: 4, GamesLost: 4, TotalPoints: 2}
	assert.Equal(t, expected, subtracted[100])
	assert.Equal(t, expected, subtracted[101])
}
