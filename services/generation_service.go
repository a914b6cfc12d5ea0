package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/Dosada05/padel-system/brackets"
	"github.com/Dosada05/padel-system/models"
	"github.com/Dosada05/padel-system/repositories"
	"github.com/Dosada05/padel-system/standings"
)

// GenerateMatchesInput carries optional overrides for stage match generation.
type GenerateMatchesInput struct {
	// CoupleIDs seeds an elimination stage explicitly instead of pulling
	// qualifiers from the previous group stage. Ignored for group stages.
	CoupleIDs []int `json:"couple_ids,omitempty"`
}

type GenerationService interface {
	GenerateStageMatches(ctx context.Context, companyID, stageID int, input GenerateMatchesInput) ([]*models.Match, error)
}

type generationService struct {
	db             *sql.DB
	stageRepo      repositories.StageRepository
	groupRepo      repositories.GroupRepository
	bracketRepo    repositories.BracketRepository
	coupleRepo     repositories.CoupleRepository
	matchRepo      repositories.MatchRepository
	courtRepo      repositories.CourtRepository
	statsRepo      repositories.CoupleStatsRepository
	tournamentRepo repositories.TournamentRepository
	scheduling     SchedulingService
	rng            *rand.Rand
}

func NewGenerationService(
	db *sql.DB,
	stageRepo repositories.StageRepository,
	groupRepo repositories.GroupRepository,
	bracketRepo repositories.BracketRepository,
	coupleRepo repositories.CoupleRepository,
	matchRepo repositories.MatchRepository,
	courtRepo repositories.CourtRepository,
	statsRepo repositories.CoupleStatsRepository,
	tournamentRepo repositories.TournamentRepository,
	scheduling SchedulingService,
	rng *rand.Rand,
) GenerationService {
	return &generationService{
		db:             db,
		stageRepo:      stageRepo,
		groupRepo:      groupRepo,
		bracketRepo:    bracketRepo,
		coupleRepo:     coupleRepo,
		matchRepo:      matchRepo,
		courtRepo:      courtRepo,
		statsRepo:      statsRepo,
		tournamentRepo: tournamentRepo,
		scheduling:     scheduling,
		rng:            rng,
	}
}

// GenerateStageMatches creates the full match set for a stage in one
// transaction, then orders it. An ordering failure never rolls the matches
// back: the service falls back to dealing courts in rotation so the stage
// stays playable.
func (s *generationService) GenerateStageMatches(ctx context.Context, companyID, stageID int, input GenerateMatchesInput) ([]*models.Match, error) {
	stage, err := loadOwnedStage(ctx, s.stageRepo, s.tournamentRepo, stageID, companyID)
	if err != nil {
		return nil, err
	}
	config := stageConfigOrDefault(stage)

	var created []*models.Match
	switch stage.StageType {
	case models.StageTypeGroup:
		created, err = s.generateGroupMatches(ctx, stage, config)
	case models.StageTypeElimination:
		created, err = s.generateEliminationMatches(ctx, stage, config, input.CoupleIDs)
	default:
		return nil, fmt.Errorf("%w: %s", ErrStageInvalidType, stage.StageType)
	}
	if err != nil {
		return nil, err
	}
	if len(created) == 0 {
		return []*models.Match{}, nil
	}

	if _, orderErr := s.scheduling.CalculateOptimalMatchOrder(ctx, companyID, stage.TournamentID, &stage.ID, ""); orderErr != nil {
		slog.Error("match ordering after generation failed, assigning courts in rotation",
			slog.Int("stage_id", stage.ID),
			slog.Any("error", orderErr),
		)
		if fbErr := s.assignCourtsRoundRobin(ctx, stage.TournamentID, created); fbErr != nil {
			slog.Error("fallback court assignment failed, matches stay unassigned",
				slog.Int("stage_id", stage.ID),
				slog.Any("error", fbErr),
			)
		}
	}

	matches, err := s.matchRepo.ListByTournament(ctx, stage.TournamentID, repositories.MatchFilter{StageID: &stage.ID})
	if err != nil {
		slog.Warn("failed to reload generated matches", slog.Int("stage_id", stage.ID), slog.Any("error", err))
		return created, nil
	}
	return matches, nil
}

// generateGroupMatches builds a round robin per group. Regeneration is
// refused as soon as any group in the stage already holds matches, before
// anything is written.
func (s *generationService) generateGroupMatches(ctx context.Context, stage *models.Stage, config models.StageConfig) ([]*models.Match, error) {
	groups, err := s.groupRepo.ListByStage(ctx, stage.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups for stage %d: %w", stage.ID, err)
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("%w: stage %d has no groups", ErrGroupNotFound, stage.ID)
	}

	for _, group := range groups {
		count, err := s.matchRepo.CountByGroup(ctx, group.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count matches for group %d: %w", group.ID, err)
		}
		if count > 0 {
			return nil, fmt.Errorf("%w: group %d already has %d matches", ErrMatchesAlreadyExist, group.ID, count)
		}
	}

	rules := config.MatchRules
	if rules.Format == models.FormatSwissSystem {
		slog.Warn("swiss system generation is not supported, using round robin",
			slog.Int("stage_id", stage.ID))
	}
	generator := brackets.NewRoundRobinGenerator()

	created := make([]*models.Match, 0)
	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, group := range groups {
			couples, err := s.groupRepo.ListCouples(ctx, group.ID)
			if err != nil {
				return fmt.Errorf("failed to list couples for group %d: %w", group.ID, err)
			}
			if len(couples) < 2 {
				slog.Warn("skipping group with fewer than two couples",
					slog.Int("group_id", group.ID),
					slog.Int("couples", len(couples)),
				)
				continue
			}

			coupleIDs := make([]int, len(couples))
			for i, couple := range couples {
				coupleIDs[i] = couple.ID
			}

			pairings, err := generator.GeneratePairings(ctx, brackets.GenerateParams{
				CoupleIDs:          coupleIDs,
				MatchesPerOpponent: rules.MatchesPerOpponent,
			})
			if err != nil {
				return fmt.Errorf("failed to generate pairings for group %d: %w", group.ID, err)
			}

			for _, pairing := range pairings {
				match := &models.Match{
					TournamentID: stage.TournamentID,
					Couple1ID:    *pairing.Couple1ID,
					Couple2ID:    *pairing.Couple2ID,
					ResultStatus: models.MatchResultPending,
					StageID:      intPtr(stage.ID),
					GroupID:      intPtr(group.ID),
				}
				if rules.TimeLimited {
					match.IsTimeLimited = true
					match.TimeLimitMinutes = intPtr(rules.TimeLimitMinutes)
				}
				if err := s.matchRepo.Create(ctx, tx, match); err != nil {
					return fmt.Errorf("failed to create match %d vs %d in group %d: %w",
						match.Couple1ID, match.Couple2ID, group.ID, err)
				}
				created = append(created, match)
			}

			for _, coupleID := range coupleIDs {
				if err := ensureStatsRow(ctx, tx, s.statsRepo, stage.TournamentID, coupleID, intPtr(group.ID)); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// generateEliminationMatches seeds the stage's main bracket and persists its
// first round. Bye pairings auto-advance their couple, so they produce no
// match row; later rounds are created as results come in.
func (s *generationService) generateEliminationMatches(ctx context.Context, stage *models.Stage, config models.StageConfig, explicitSeeds []int) ([]*models.Match, error) {
	bracket, err := s.bracketRepo.FindByStageAndType(ctx, stage.ID, models.BracketTypeMain)
	if err != nil {
		if errors.Is(err, repositories.ErrBracketNotFound) {
			return nil, fmt.Errorf("%w: stage %d has no main bracket", ErrBracketNotFound, stage.ID)
		}
		return nil, fmt.Errorf("failed to find main bracket for stage %d: %w", stage.ID, err)
	}

	count, err := s.matchRepo.CountByBracket(ctx, bracket.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count matches for bracket %d: %w", bracket.ID, err)
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: bracket %d already has %d matches", ErrMatchesAlreadyExist, bracket.ID, count)
	}

	var seedIDs []int
	if len(explicitSeeds) > 0 {
		seedIDs, err = s.validateExplicitSeeds(ctx, stage.TournamentID, explicitSeeds)
	} else {
		seedIDs, err = s.seedsFromPreviousStage(ctx, stage)
	}
	if err != nil {
		return nil, err
	}
	if len(seedIDs) < 2 {
		return nil, fmt.Errorf("%w: have %d seeded couples, need at least 2", ErrInsufficientCouples, len(seedIDs))
	}

	seeds := make([]*int, len(seedIDs))
	for i := range seedIDs {
		seeds[i] = &seedIDs[i]
	}

	generator := brackets.NewSingleEliminationGenerator()
	pairings, err := generator.GeneratePairings(ctx, brackets.GenerateParams{
		Seeds: seeds,
		Rand:  s.rng,
	})
	if err != nil {
		if errors.Is(err, brackets.ErrInsufficientCouples) {
			return nil, fmt.Errorf("%w: %d seeded couples", ErrInsufficientCouples, len(seedIDs))
		}
		return nil, fmt.Errorf("failed to generate bracket pairings: %w", err)
	}

	created := make([]*models.Match, 0, len(pairings))
	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, pairing := range pairings {
			if pairing.Couple1ID == nil || pairing.Couple2ID == nil {
				// Bye slot: advancement is already decided, no playable match.
				continue
			}

			match := &models.Match{
				TournamentID:    stage.TournamentID,
				Couple1ID:       *pairing.Couple1ID,
				Couple2ID:       *pairing.Couple2ID,
				ResultStatus:    models.MatchResultPending,
				StageID:         intPtr(stage.ID),
				BracketID:       intPtr(bracket.ID),
				RoundNumber:     intPtr(pairing.Round),
				BracketPosition: intPtr(pairing.Slot),
			}
			if config.MatchRules.TimeLimited {
				match.IsTimeLimited = true
				match.TimeLimitMinutes = intPtr(config.MatchRules.TimeLimitMinutes)
			}
			if err := s.matchRepo.Create(ctx, tx, match); err != nil {
				return fmt.Errorf("failed to create bracket match %d vs %d: %w",
					match.Couple1ID, match.Couple2ID, err)
			}
			created = append(created, match)
		}

		for _, coupleID := range seedIDs {
			if err := ensureStatsRow(ctx, tx, s.statsRepo, stage.TournamentID, coupleID, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// validateExplicitSeeds deduplicates the requested couple IDs and checks each
// one exists inside the tournament being seeded.
func (s *generationService) validateExplicitSeeds(ctx context.Context, tournamentID int, coupleIDs []int) ([]int, error) {
	unique := make([]int, 0, len(coupleIDs))
	seen := make(map[int]struct{}, len(coupleIDs))
	for _, id := range coupleIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	couples, err := s.coupleRepo.ListByIDs(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("failed to load seeded couples: %w", err)
	}
	byID := make(map[int]*models.Couple, len(couples))
	for _, couple := range couples {
		byID[couple.ID] = couple
	}

	for _, id := range unique {
		couple, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: couple %d", ErrCoupleNotFound, id)
		}
		if couple.TournamentID != tournamentID {
			return nil, fmt.Errorf("%w: couple %d is not registered in tournament %d",
				ErrValidationFailed, id, tournamentID)
		}
	}
	return unique, nil
}

// seedsFromPreviousStage ranks every group of the closest group stage below
// this one and takes its configured top N qualifiers, group by group.
func (s *generationService) seedsFromPreviousStage(ctx context.Context, stage *models.Stage) ([]int, error) {
	previous, err := s.stageRepo.PreviousGroupStage(ctx, stage.TournamentID, stage.Order)
	if err != nil {
		if errors.Is(err, repositories.ErrStageNotFound) {
			return nil, fmt.Errorf("%w: no group stage precedes stage %d", ErrNoSeedSource, stage.ID)
		}
		return nil, fmt.Errorf("failed to find seeding stage for stage %d: %w", stage.ID, err)
	}

	prevConfig := stageConfigOrDefault(previous)
	topN := prevConfig.AdvancementRule.TopN
	tiebreakers := prevConfig.AdvancementRule.Tiebreakers

	groups, err := s.groupRepo.ListByStage(ctx, previous.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups for stage %d: %w", previous.ID, err)
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("%w: stage %d has no groups to qualify from", ErrNoSeedSource, previous.ID)
	}

	seedIDs := make([]int, 0, topN*len(groups))
	for _, group := range groups {
		statsList, err := s.statsRepo.ListByScope(ctx, stage.TournamentID, &group.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load stats for group %d: %w", group.ID, err)
		}
		matches, err := s.matchRepo.ListByTournament(ctx, stage.TournamentID, repositories.MatchFilter{GroupID: &group.ID})
		if err != nil {
			return nil, fmt.Errorf("failed to list matches for group %d: %w", group.ID, err)
		}

		entries := standings.Rank(statsList, matches, tiebreakers)
		limit := topN
		if limit > len(entries) {
			limit = len(entries)
		}
		for _, entry := range entries[:limit] {
			seedIDs = append(seedIDs, entry.CoupleID)
		}
	}

	if len(seedIDs) == 0 {
		return nil, fmt.Errorf("%w: stage %d produced no qualifiers", ErrNoSeedSource, previous.ID)
	}
	return seedIDs, nil
}

// assignCourtsRoundRobin is the degraded path after an ordering failure.
// Linked courts are dealt across the new matches in rotation; with no courts
// linked the matches are left as they are.
func (s *generationService) assignCourtsRoundRobin(ctx context.Context, tournamentID int, matches []*models.Match) error {
	courts, err := s.courtRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to list courts for tournament %d: %w", tournamentID, err)
	}
	if len(courts) == 0 {
		slog.Warn("no courts linked, generated matches stay without court",
			slog.Int("tournament_id", tournamentID))
		return nil
	}

	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		for i, match := range matches {
			match.CourtID = intPtr(courts[i%len(courts)].CourtID)
			if err := s.matchRepo.UpdateOrdering(ctx, tx, match); err != nil {
				return fmt.Errorf("failed to assign court to match %d: %w", match.ID, err)
			}
		}
		return nil
	})
}
