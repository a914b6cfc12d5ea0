package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/Dosada05/padel-system/live"
	"github.com/Dosada05/padel-system/models"
	"github.com/Dosada05/padel-system/repositories"
	"github.com/Dosada05/padel-system/standings"
)

type StandingsService interface {
	GetGroupStandings(ctx context.Context, companyID, groupID int) ([]models.StandingEntry, error)
	// GetTournamentStandings returns group standings when groupID is set, and
	// the bracket-scope table (matches outside any group) otherwise.
	GetTournamentStandings(ctx context.Context, companyID, tournamentID int, groupID *int) ([]models.StandingEntry, error)
	// RecalculateStats zeroes every stats row in the scope and replays the
	// scope's reported matches. The result must match what incremental
	// maintenance produced.
	RecalculateStats(ctx context.Context, companyID, tournamentID int, groupID *int) error

	// ApplyMatchResult and RemoveMatchResult are the incremental maintenance
	// hooks used by match result updates, running on the caller's executor.
	ApplyMatchResult(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error
	RemoveMatchResult(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error
}

type standingsService struct {
	db             *sql.DB
	statsRepo      repositories.CoupleStatsRepository
	matchRepo      repositories.MatchRepository
	stageRepo      repositories.StageRepository
	groupRepo      repositories.GroupRepository
	coupleRepo     repositories.CoupleRepository
	playerRepo     repositories.PlayerRepository
	tournamentRepo repositories.TournamentRepository
	hub            *live.Hub
}

func NewStandingsService(
	db *sql.DB,
	statsRepo repositories.CoupleStatsRepository,
	matchRepo repositories.MatchRepository,
	stageRepo repositories.StageRepository,
	groupRepo repositories.GroupRepository,
	coupleRepo repositories.CoupleRepository,
	playerRepo repositories.PlayerRepository,
	tournamentRepo repositories.TournamentRepository,
	hub *live.Hub,
) StandingsService {
	return &standingsService{
		db:             db,
		statsRepo:      statsRepo,
		matchRepo:      matchRepo,
		stageRepo:      stageRepo,
		groupRepo:      groupRepo,
		coupleRepo:     coupleRepo,
		playerRepo:     playerRepo,
		tournamentRepo: tournamentRepo,
		hub:            hub,
	}
}

func (s *standingsService) GetGroupStandings(ctx context.Context, companyID, groupID int) ([]models.StandingEntry, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to get group %d: %w", groupID, err)
	}
	stage, err := s.stageRepo.GetByID(ctx, group.StageID)
	if err != nil {
		if errors.Is(err, repositories.ErrStageNotFound) {
			return nil, ErrStageNotFound
		}
		return nil, fmt.Errorf("failed to get stage %d: %w", group.StageID, err)
	}
	if _, err := getOwnedTournament(ctx, s.tournamentRepo, stage.TournamentID, companyID); err != nil {
		return nil, err
	}

	statsList, err := s.statsRepo.ListByScope(ctx, stage.TournamentID, &groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list group %d stats: %w", groupID, err)
	}
	matches, err := s.matchRepo.ListByTournament(ctx, stage.TournamentID, repositories.MatchFilter{GroupID: &groupID})
	if err != nil {
		return nil, fmt.Errorf("failed to list group %d matches: %w", groupID, err)
	}

	entries := standings.Rank(statsList, matches, stageConfigOrDefault(stage).AdvancementRule.Tiebreakers)
	if err := s.hydrateEntryCouples(ctx, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *standingsService) GetTournamentStandings(ctx context.Context, companyID, tournamentID int, groupID *int) ([]models.StandingEntry, error) {
	if groupID != nil {
		return s.GetGroupStandings(ctx, companyID, *groupID)
	}

	if _, err := getOwnedTournament(ctx, s.tournamentRepo, tournamentID, companyID); err != nil {
		return nil, err
	}

	statsList, err := s.statsRepo.ListByScope(ctx, tournamentID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournament %d stats: %w", tournamentID, err)
	}
	all, err := s.matchRepo.ListByTournament(ctx, tournamentID, repositories.MatchFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list tournament %d matches: %w", tournamentID, err)
	}
	scopeMatches := make([]*models.Match, 0, len(all))
	for _, m := range all {
		if m.GroupID == nil {
			scopeMatches = append(scopeMatches, m)
		}
	}

	entries := standings.Rank(statsList, scopeMatches, nil)
	if err := s.hydrateEntryCouples(ctx, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *standingsService) RecalculateStats(ctx context.Context, companyID, tournamentID int, groupID *int) error {
	if _, err := getOwnedTournament(ctx, s.tournamentRepo, tournamentID, companyID); err != nil {
		return err
	}

	all, err := s.matchRepo.ListByTournament(ctx, tournamentID, repositories.MatchFilter{})
	if err != nil {
		return fmt.Errorf("failed to list tournament %d matches: %w", tournamentID, err)
	}
	scopeMatches := make([]*models.Match, 0, len(all))
	for _, m := range all {
		if sameScope(m.GroupID, groupID) {
			scopeMatches = append(scopeMatches, m)
		}
	}

	scoringByStage, err := s.scoringByStage(ctx, tournamentID)
	if err != nil {
		return err
	}

	deltas := make(map[int]models.StatsDelta)
	for _, match := range scopeMatches {
		scoring := scoringForMatch(match, scoringByStage)
		d1, d2, counts := standings.Contribution(match, scoring)
		if !counts {
			continue
		}
		deltas[match.Couple1ID] = addDeltas(deltas[match.Couple1ID], d1)
		deltas[match.Couple2ID] = addDeltas(deltas[match.Couple2ID], d2)
	}

	coupleIDs := make([]int, 0, len(deltas))
	for id := range deltas {
		coupleIDs = append(coupleIDs, id)
	}
	sort.Ints(coupleIDs)

	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.statsRepo.ResetByScope(ctx, tx, tournamentID, groupID); err != nil {
			return fmt.Errorf("failed to reset stats scope: %w", err)
		}
		for _, coupleID := range coupleIDs {
			delta := deltas[coupleID]
			if delta.IsZero() {
				continue
			}
			row, err := getOrCreateStatsRow(ctx, tx, s.statsRepo, tournamentID, coupleID, groupID)
			if err != nil {
				return err
			}
			if err := s.statsRepo.AddDelta(ctx, tx, row.ID, delta); err != nil {
				return fmt.Errorf("failed to apply replayed delta for couple %d: %w", coupleID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.hub.Publish(live.Event{
		Type:    live.EventStandingsUpdated,
		Room:    live.TournamentRoom(tournamentID),
		Payload: map[string]interface{}{"tournament_id": tournamentID, "group_id": groupID},
	})
	return nil
}

func (s *standingsService) ApplyMatchResult(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	scoring, err := s.scoringForSingleMatch(ctx, match)
	if err != nil {
		return err
	}
	d1, d2, counts := standings.Contribution(match, scoring)
	if !counts {
		return nil
	}

	row1, err := getOrCreateStatsRow(ctx, exec, s.statsRepo, match.TournamentID, match.Couple1ID, match.GroupID)
	if err != nil {
		return err
	}
	if err := s.statsRepo.AddDelta(ctx, exec, row1.ID, d1); err != nil {
		return fmt.Errorf("failed to apply stats delta for couple %d: %w", match.Couple1ID, err)
	}
	row2, err := getOrCreateStatsRow(ctx, exec, s.statsRepo, match.TournamentID, match.Couple2ID, match.GroupID)
	if err != nil {
		return err
	}
	if err := s.statsRepo.AddDelta(ctx, exec, row2.ID, d2); err != nil {
		return fmt.Errorf("failed to apply stats delta for couple %d: %w", match.Couple2ID, err)
	}
	return nil
}

func (s *standingsService) RemoveMatchResult(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	scoring, err := s.scoringForSingleMatch(ctx, match)
	if err != nil {
		return err
	}
	d1, d2, counts := standings.Contribution(match, scoring)
	if !counts {
		return nil
	}

	row1, err := getOrCreateStatsRow(ctx, exec, s.statsRepo, match.TournamentID, match.Couple1ID, match.GroupID)
	if err != nil {
		return err
	}
	if err := s.statsRepo.SubtractDelta(ctx, exec, row1.ID, d1); err != nil {
		return fmt.Errorf("failed to remove stats delta for couple %d: %w", match.Couple1ID, err)
	}
	row2, err := getOrCreateStatsRow(ctx, exec, s.statsRepo, match.TournamentID, match.Couple2ID, match.GroupID)
	if err != nil {
		return err
	}
	if err := s.statsRepo.SubtractDelta(ctx, exec, row2.ID, d2); err != nil {
		return fmt.Errorf("failed to remove stats delta for couple %d: %w", match.Couple2ID, err)
	}
	return nil
}

// scoringByStage loads every stage of the tournament once for replay runs.
func (s *standingsService) scoringByStage(ctx context.Context, tournamentID int) (map[int]models.ScoringSystem, error) {
	stages, err := s.stageRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stages for tournament %d: %w", tournamentID, err)
	}
	byStage := make(map[int]models.ScoringSystem, len(stages))
	for _, stage := range stages {
		byStage[stage.ID] = stage.Config.ScoringSystem
	}
	return byStage, nil
}

func (s *standingsService) scoringForSingleMatch(ctx context.Context, match *models.Match) (models.ScoringSystem, error) {
	if match.StageID == nil {
		return models.DefaultStageConfig().ScoringSystem, nil
	}
	stage, err := s.stageRepo.GetByID(ctx, *match.StageID)
	if err != nil {
		if errors.Is(err, repositories.ErrStageNotFound) {
			return models.DefaultStageConfig().ScoringSystem, nil
		}
		return models.ScoringSystem{}, fmt.Errorf("failed to get stage %d: %w", *match.StageID, err)
	}
	return stage.Config.ScoringSystem, nil
}

func (s *standingsService) hydrateEntryCouples(ctx context.Context, entries []models.StandingEntry) error {
	if len(entries) == 0 {
		return nil
	}
	ids := make([]int, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.CoupleID)
	}
	couples, err := s.coupleRepo.ListByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to load standing couples: %w", err)
	}
	if err := hydrateCouplePlayers(ctx, s.playerRepo, couples); err != nil {
		return err
	}
	byID := make(map[int]*models.Couple, len(couples))
	for _, c := range couples {
		byID[c.ID] = c
	}
	for i := range entries {
		entries[i].Couple = byID[entries[i].CoupleID]
	}
	return nil
}

func scoringForMatch(match *models.Match, byStage map[int]models.ScoringSystem) models.ScoringSystem {
	if match.StageID != nil {
		if scoring, ok := byStage[*match.StageID]; ok {
			return scoring
		}
	}
	return models.DefaultStageConfig().ScoringSystem
}

func sameScope(matchGroupID, scopeGroupID *int) bool {
	if scopeGroupID == nil {
		return matchGroupID == nil
	}
	return matchGroupID != nil && *matchGroupID == *scopeGroupID
}

func addDeltas(a, b models.StatsDelta) models.StatsDelta {
	return models.StatsDelta{
		MatchesPlayed: a.MatchesPlayed + b.MatchesPlayed,
		MatchesWon:    a.MatchesWon + b.MatchesWon,
		MatchesLost:   a.MatchesLost + b.MatchesLost,
		MatchesDrawn:  a.MatchesDrawn + b.MatchesDrawn,
		GamesWon:      a.GamesWon + b.GamesWon,
		GamesLost:     a.GamesLost + b.GamesLost,
		TotalPoints:   a.TotalPoints + b.TotalPoints,
	}
}

// getOrCreateStatsRow returns the scope row, inserting a zeroed one if absent.
func getOrCreateStatsRow(ctx context.Context, exec repositories.SQLExecutor, repo repositories.CoupleStatsRepository, tournamentID, coupleID int, groupID *int) (*models.CoupleStats, error) {
	stats, err := repo.Get(ctx, tournamentID, coupleID, groupID)
	if err == nil {
		return stats, nil
	}
	if !errors.Is(err, repositories.ErrCoupleStatsNotFound) {
		return nil, fmt.Errorf("failed to get stats row for couple %d: %w", coupleID, err)
	}

	stats = &models.CoupleStats{
		TournamentID: tournamentID,
		CoupleID:     coupleID,
		GroupID:      groupID,
	}
	if err := repo.Create(ctx, exec, stats); err != nil {
		return nil, fmt.Errorf("failed to create stats row for couple %d: %w", coupleID, err)
	}
	return stats, nil
}

func ensureStatsRow(ctx context.Context, exec repositories.SQLExecutor, repo repositories.CoupleStatsRepository, tournamentID, coupleID int, groupID *int) error {
	_, err := getOrCreateStatsRow(ctx, exec, repo, tournamentID, coupleID, groupID)
	return err
}
