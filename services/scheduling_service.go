package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Dosada05/padel-system/live"
	"github.com/Dosada05/padel-system/models"
	"github.com/Dosada05/padel-system/ordering"
	"github.com/Dosada05/padel-system/repositories"
	"github.com/Dosada05/padel-system/scheduling"
)

// OrderingStrategy names the requested ordering flavour. All known names run
// the same couple-aware pass today; the value is kept so callers keep a
// stable contract.
type OrderingStrategy string

const (
	StrategyBalancedLoad   OrderingStrategy = "balanced_load"
	StrategyCourtEfficient OrderingStrategy = "court_efficient"
	StrategyTimeSequential OrderingStrategy = "time_sequential"
	StrategyGroupClustered OrderingStrategy = "group_clustered"
)

// ScheduleMatchInput places one match on a court. End is derived from the
// match's time limit when absent. Nil IsTimeLimited and TimeLimitMinutes
// keep the match's current values.
type ScheduleMatchInput struct {
	CourtID          int        `json:"court_id"`
	Start            time.Time  `json:"scheduled_start"`
	End              *time.Time `json:"scheduled_end,omitempty"`
	IsTimeLimited    *bool      `json:"is_time_limited,omitempty"`
	TimeLimitMinutes *int       `json:"time_limit_minutes,omitempty"`
}

// AutoScheduleInput selects the scheduling mode. OrderOnly skips timestamps
// entirely; otherwise StartDate is required and EndDate defaults to one day
// after it.
type AutoScheduleInput struct {
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	OrderOnly bool       `json:"order_only"`
}

// AvailabilityWindow is a single [start, end) span on a court.
type AvailabilityWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ScheduledMatchSlot is a booked span in the day availability view.
type ScheduledMatchSlot struct {
	MatchID   int       `json:"match_id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Couple1ID int       `json:"couple1_id"`
	Couple2ID int       `json:"couple2_id"`
}

// CourtAvailability is one court's bookings and free windows for a day.
type CourtAvailability struct {
	CourtID          int                  `json:"court_id"`
	CourtName        string               `json:"court_name"`
	DayAvailability  AvailabilityWindow   `json:"day_availability"`
	ScheduledMatches []ScheduledMatchSlot `json:"scheduled_matches"`
	FreeSlots        []AvailabilityWindow `json:"free_slots"`
}

type SchedulingService interface {
	ScheduleMatch(ctx context.Context, companyID, matchID int, input ScheduleMatchInput) (*models.Match, error)
	UnscheduleMatch(ctx context.Context, companyID, matchID int) (*models.Match, error)
	AutoScheduleMatches(ctx context.Context, companyID, tournamentID int, input AutoScheduleInput) ([]*models.Match, error)
	CalculateOptimalMatchOrder(ctx context.Context, companyID, tournamentID int, stageID *int, strategy OrderingStrategy) ([]*models.Match, error)
	GetCourtAvailability(ctx context.Context, companyID, tournamentID int, day time.Time) ([]CourtAvailability, error)
}

type schedulingService struct {
	db             *sql.DB
	matchRepo      repositories.MatchRepository
	stageRepo      repositories.StageRepository
	courtRepo      repositories.CourtRepository
	coupleRepo     repositories.CoupleRepository
	tournamentRepo repositories.TournamentRepository
	engine         *ordering.Engine
	hub            *live.Hub
}

func NewSchedulingService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	stageRepo repositories.StageRepository,
	courtRepo repositories.CourtRepository,
	coupleRepo repositories.CoupleRepository,
	tournamentRepo repositories.TournamentRepository,
	engine *ordering.Engine,
	hub *live.Hub,
) SchedulingService {
	return &schedulingService{
		db:             db,
		matchRepo:      matchRepo,
		stageRepo:      stageRepo,
		courtRepo:      courtRepo,
		coupleRepo:     coupleRepo,
		tournamentRepo: tournamentRepo,
		engine:         engine,
		hub:            hub,
	}
}

// ScheduleMatch books a match on a court after checking the court is linked,
// open at the requested time and free of overlapping bookings.
func (s *schedulingService) ScheduleMatch(ctx context.Context, companyID, matchID int, input ScheduleMatchInput) (*models.Match, error) {
	match, err := s.getOwnedMatch(ctx, matchID, companyID)
	if err != nil {
		return nil, err
	}

	link, err := s.courtRepo.GetLink(ctx, match.TournamentID, input.CourtID)
	if err != nil {
		if errors.Is(err, repositories.ErrCourtLinkNotFound) {
			return nil, fmt.Errorf("%w: court %d is not linked to tournament %d",
				ErrCourtLinkNotFound, input.CourtID, match.TournamentID)
		}
		return nil, fmt.Errorf("failed to get court link: %w", err)
	}

	if input.Start.IsZero() {
		return nil, ErrSchedulingDatesRequired
	}

	isLimited := match.IsTimeLimited
	limit := match.TimeLimitMinutes
	if input.IsTimeLimited != nil {
		isLimited = *input.IsTimeLimited
	}
	if input.TimeLimitMinutes != nil {
		limit = input.TimeLimitMinutes
	}

	start := input.Start
	var end time.Time
	if input.End != nil {
		end = *input.End
	} else {
		end = start.Add(s.matchDuration(ctx, match, limit))
	}
	if !start.Before(end) {
		return nil, fmt.Errorf("%w: start %s is not before end %s",
			ErrSchedulingInvalidRange, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	if link.AvailabilityStart != nil && start.Before(*link.AvailabilityStart) {
		return nil, fmt.Errorf("%w: court %d opens at %s",
			ErrCourtUnavailableAtTime, input.CourtID, link.AvailabilityStart.Format(time.RFC3339))
	}
	if link.AvailabilityEnd != nil && end.After(*link.AvailabilityEnd) {
		return nil, fmt.Errorf("%w: court %d closes at %s",
			ErrCourtUnavailableAtTime, input.CourtID, link.AvailabilityEnd.Format(time.RFC3339))
	}

	booked, err := s.matchRepo.ListScheduledOnCourt(ctx, input.CourtID, &match.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings for court %d: %w", input.CourtID, err)
	}
	if conflict := scheduling.FirstConflict(booked, start, end); conflict != nil {
		return nil, fmt.Errorf("%w: court %d is booked by match %d",
			ErrSchedulingConflict, input.CourtID, conflict.ID)
	}

	if err := s.matchRepo.UpdateSchedule(ctx, nil, match.ID, input.CourtID, start, end, isLimited, limit); err != nil {
		return nil, err
	}

	match.CourtID = intPtr(input.CourtID)
	match.ScheduledStart = &start
	match.ScheduledEnd = &end
	match.IsTimeLimited = isLimited
	match.TimeLimitMinutes = limit

	s.publishScheduleUpdate(match.TournamentID, match)

	if err := hydrateMatchCouples(ctx, s.coupleRepo, []*models.Match{match}); err != nil {
		slog.Warn("failed to hydrate scheduled match couples", slog.Int("match_id", match.ID), slog.Any("error", err))
	}
	return match, nil
}

// UnscheduleMatch clears the court, timestamps and time limit of a match.
func (s *schedulingService) UnscheduleMatch(ctx context.Context, companyID, matchID int) (*models.Match, error) {
	match, err := s.getOwnedMatch(ctx, matchID, companyID)
	if err != nil {
		return nil, err
	}

	if err := s.matchRepo.ClearSchedule(ctx, nil, match.ID); err != nil {
		return nil, err
	}

	match.CourtID = nil
	match.ScheduledStart = nil
	match.ScheduledEnd = nil
	match.IsTimeLimited = false
	match.TimeLimitMinutes = nil

	s.publishScheduleUpdate(match.TournamentID, match)

	if err := hydrateMatchCouples(ctx, s.coupleRepo, []*models.Match{match}); err != nil {
		slog.Warn("failed to hydrate unscheduled match couples", slog.Int("match_id", match.ID), slog.Any("error", err))
	}
	return match, nil
}

// CalculateOptimalMatchOrder runs the ordering engine over the pending
// matches of a tournament, or of one stage, and persists the annotations in
// a single transaction. Unknown strategies fall back to balanced load.
func (s *schedulingService) CalculateOptimalMatchOrder(ctx context.Context, companyID, tournamentID int, stageID *int, strategy OrderingStrategy) ([]*models.Match, error) {
	if _, err := getOwnedTournament(ctx, s.tournamentRepo, tournamentID, companyID); err != nil {
		return nil, err
	}

	switch strategy {
	case "", StrategyBalancedLoad, StrategyCourtEfficient, StrategyTimeSequential, StrategyGroupClustered:
	default:
		slog.Warn("unknown ordering strategy, using balanced load", slog.String("strategy", string(strategy)))
	}

	var stages []*models.Stage
	if stageID != nil {
		stage, err := s.stageRepo.GetByID(ctx, *stageID)
		if err != nil {
			if errors.Is(err, repositories.ErrStageNotFound) {
				return nil, ErrStageNotFound
			}
			return nil, fmt.Errorf("failed to get stage %d: %w", *stageID, err)
		}
		if stage.TournamentID != tournamentID {
			return nil, ErrStageNotFound
		}
		stages = []*models.Stage{stage}
	} else {
		var err error
		stages, err = s.stageRepo.ListByTournament(ctx, tournamentID)
		if err != nil {
			return nil, fmt.Errorf("failed to list stages for tournament %d: %w", tournamentID, err)
		}
	}

	pending := models.MatchResultPending
	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID, repositories.MatchFilter{
		StageID:      stageID,
		ResultStatus: &pending,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
	}
	if len(matches) == 0 {
		return []*models.Match{}, nil
	}

	courts, err := s.courtRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list courts for tournament %d: %w", tournamentID, err)
	}
	if len(courts) == 0 {
		slog.Warn("no courts linked, ordering left unchanged", slog.Int("tournament_id", tournamentID))
		return matches, nil
	}

	ordered := s.engine.Order(stages, matches, courts)

	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, match := range ordered {
			if err := s.matchRepo.UpdateOrdering(ctx, tx, match); err != nil {
				return fmt.Errorf("failed to persist ordering for match %d: %w", match.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.hub.Publish(live.Event{
		Type: live.EventOrderUpdated,
		Room: live.TournamentRoom(tournamentID),
		Payload: map[string]interface{}{
			"tournament_id": tournamentID,
			"stage_id":      stageID,
			"match_count":   len(ordered),
		},
	})

	return ordered, nil
}

// AutoScheduleMatches places every pending unscheduled match of a tournament.
// Order-only mode, requested or forced by a stage without usable time limits,
// assigns courts and display order without timestamps. Time-based mode packs
// matches into free court slots inside the requested window; matches that do
// not fit stay pending and unscheduled.
func (s *schedulingService) AutoScheduleMatches(ctx context.Context, companyID, tournamentID int, input AutoScheduleInput) ([]*models.Match, error) {
	tournament, err := getOwnedTournament(ctx, s.tournamentRepo, tournamentID, companyID)
	if err != nil {
		return nil, err
	}

	links, err := s.courtRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list courts for tournament %d: %w", tournamentID, err)
	}
	if len(links) == 0 {
		return nil, fmt.Errorf("%w: tournament %d", ErrNoCourtsLinked, tournamentID)
	}

	pending := models.MatchResultPending
	unscheduled, err := s.matchRepo.ListByTournament(ctx, tournamentID, repositories.MatchFilter{
		ResultStatus:    &pending,
		OnlyUnscheduled: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list unscheduled matches: %w", err)
	}
	if len(unscheduled) == 0 {
		return []*models.Match{}, nil
	}

	stages, err := s.stageRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stages for tournament %d: %w", tournamentID, err)
	}
	configByStage := make(map[int]models.StageConfig, len(stages))
	for _, stage := range stages {
		configByStage[stage.ID] = stageConfigOrDefault(stage)
	}

	if input.OrderOnly || !hasUsableTimeLimits(unscheduled, configByStage) {
		return s.autoScheduleOrderOnly(ctx, tournamentID, unscheduled, links)
	}

	if input.StartDate == nil {
		return nil, fmt.Errorf("%w: time based scheduling needs a start date", ErrSchedulingDatesRequired)
	}
	start := *input.StartDate
	end := start.AddDate(0, 0, 1).Add(-time.Second)
	if input.EndDate != nil {
		end = *input.EndDate
	}
	if !start.Before(end) {
		return nil, fmt.Errorf("%w: start %s is not before end %s",
			ErrSchedulingInvalidRange, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	return s.autoScheduleTimeBased(ctx, tournament, unscheduled, links, configByStage, start, end)
}

func (s *schedulingService) autoScheduleOrderOnly(ctx context.Context, tournamentID int, matches []*models.Match, links []*models.TournamentCourt) ([]*models.Match, error) {
	courtIDs := make([]int, len(links))
	for i, link := range links {
		courtIDs[i] = link.CourtID
	}

	plans := scheduling.PlanOrderOnly(matches, courtIDs)

	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, plan := range plans {
			plan.Match.CourtID = intPtr(plan.CourtID)
			plan.Match.DisplayOrder = intPtr(plan.Order)
			if err := s.matchRepo.UpdateOrdering(ctx, tx, plan.Match); err != nil {
				return fmt.Errorf("failed to persist order for match %d: %w", plan.Match.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	scheduled := make([]*models.Match, 0, len(plans))
	for _, plan := range plans {
		scheduled = append(scheduled, plan.Match)
	}

	s.publishScheduleUpdate(tournamentID, map[string]interface{}{
		"tournament_id":   tournamentID,
		"order_only":      true,
		"scheduled_count": len(scheduled),
	})
	return scheduled, nil
}

func (s *schedulingService) autoScheduleTimeBased(
	ctx context.Context,
	tournament *models.Tournament,
	matches []*models.Match,
	links []*models.TournamentCourt,
	configByStage map[int]models.StageConfig,
	start, end time.Time,
) ([]*models.Match, error) {
	booked, err := s.matchRepo.ListByTournament(ctx, tournament.ID, repositories.MatchFilter{OnlyScheduled: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled matches: %w", err)
	}
	bookedByCourt := make(map[int][]*models.Match)
	for _, match := range booked {
		if match.CourtID == nil {
			continue
		}
		bookedByCourt[*match.CourtID] = append(bookedByCourt[*match.CourtID], match)
	}

	slots := make([]scheduling.TimeSlot, 0, len(links))
	for _, link := range links {
		windowStart := start
		if link.AvailabilityStart != nil && link.AvailabilityStart.After(windowStart) {
			windowStart = *link.AvailabilityStart
		}
		windowEnd := end
		if link.AvailabilityEnd != nil && link.AvailabilityEnd.Before(windowEnd) {
			windowEnd = *link.AvailabilityEnd
		}
		slots = append(slots, scheduling.FreeSlots(link.CourtID, windowStart, windowEnd, bookedByCourt[link.CourtID])...)
	}

	duration := func(match *models.Match) time.Duration {
		return s.durationFromConfig(match, configByStage)
	}
	plans := scheduling.PlanTimeBased(matches, slots, duration)

	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, plan := range plans {
			match := plan.Match
			if err := s.matchRepo.UpdateSchedule(ctx, tx, match.ID, plan.CourtID, plan.Start, plan.End, match.IsTimeLimited, match.TimeLimitMinutes); err != nil {
				return fmt.Errorf("failed to persist schedule for match %d: %w", match.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	scheduled := make([]*models.Match, 0, len(plans))
	for _, plan := range plans {
		startAt := plan.Start
		endAt := plan.End
		plan.Match.CourtID = intPtr(plan.CourtID)
		plan.Match.ScheduledStart = &startAt
		plan.Match.ScheduledEnd = &endAt
		scheduled = append(scheduled, plan.Match)
	}

	s.publishScheduleUpdate(tournament.ID, map[string]interface{}{
		"tournament_id":   tournament.ID,
		"order_only":      false,
		"scheduled_count": len(scheduled),
		"unplaced_count":  len(matches) - len(scheduled),
	})
	return scheduled, nil
}

// GetCourtAvailability reports, for one calendar day, each linked court's
// bookings and the free windows between them. Courts without their own
// availability fall back to the tournament dates, clipped to the day.
func (s *schedulingService) GetCourtAvailability(ctx context.Context, companyID, tournamentID int, day time.Time) ([]CourtAvailability, error) {
	tournament, err := getOwnedTournament(ctx, s.tournamentRepo, tournamentID, companyID)
	if err != nil {
		return nil, err
	}

	links, err := s.courtRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list courts for tournament %d: %w", tournamentID, err)
	}
	if len(links) == 0 {
		return []CourtAvailability{}, nil
	}

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.Add(24*time.Hour - time.Second)

	booked, err := s.matchRepo.ListByTournament(ctx, tournamentID, repositories.MatchFilter{OnlyScheduled: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled matches: %w", err)
	}
	dayMatches := make([]*models.Match, 0, len(booked))
	for _, match := range booked {
		if match.ScheduledStart == nil || match.ScheduledStart.Before(dayStart) || match.ScheduledStart.After(dayEnd) {
			continue
		}
		dayMatches = append(dayMatches, match)
	}
	sort.SliceStable(dayMatches, func(i, j int) bool {
		return dayMatches[i].ScheduledStart.Before(*dayMatches[j].ScheduledStart)
	})

	result := make([]CourtAvailability, 0, len(links))
	for _, link := range links {
		windowStart := tournament.StartDate
		if link.AvailabilityStart != nil {
			windowStart = *link.AvailabilityStart
		}
		windowEnd := tournament.EndDate
		if link.AvailabilityEnd != nil {
			windowEnd = *link.AvailabilityEnd
		}
		if windowStart.Before(dayStart) {
			windowStart = dayStart
		}
		if windowEnd.After(dayEnd) {
			windowEnd = dayEnd
		}

		courtMatches := make([]*models.Match, 0)
		slots := make([]ScheduledMatchSlot, 0)
		for _, match := range dayMatches {
			if match.CourtID == nil || *match.CourtID != link.CourtID {
				continue
			}
			courtMatches = append(courtMatches, match)
			if match.ScheduledEnd == nil {
				continue
			}
			slots = append(slots, ScheduledMatchSlot{
				MatchID:   match.ID,
				Start:     *match.ScheduledStart,
				End:       *match.ScheduledEnd,
				Couple1ID: match.Couple1ID,
				Couple2ID: match.Couple2ID,
			})
		}

		free := make([]AvailabilityWindow, 0)
		for _, slot := range scheduling.FreeSlots(link.CourtID, windowStart, windowEnd, courtMatches) {
			free = append(free, AvailabilityWindow{Start: slot.Start, End: slot.End})
		}

		name := ""
		if link.Court != nil {
			name = link.Court.Name
		}
		result = append(result, CourtAvailability{
			CourtID:          link.CourtID,
			CourtName:        name,
			DayAvailability:  AvailabilityWindow{Start: windowStart, End: windowEnd},
			ScheduledMatches: slots,
			FreeSlots:        free,
		})
	}

	return result, nil
}

func (s *schedulingService) getOwnedMatch(ctx context.Context, matchID, companyID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %d: %w", matchID, err)
	}
	if _, err := getOwnedTournament(ctx, s.tournamentRepo, match.TournamentID, companyID); err != nil {
		return nil, err
	}
	return match, nil
}

// matchDuration resolves a single match's playing time from the explicit
// limit, the match's own limit, its stage's rules, then the default.
func (s *schedulingService) matchDuration(ctx context.Context, match *models.Match, limitMinutes *int) time.Duration {
	if limitMinutes != nil && *limitMinutes > 0 {
		return time.Duration(*limitMinutes) * time.Minute
	}
	if match.StageID != nil {
		stage, err := s.stageRepo.GetByID(ctx, *match.StageID)
		if err == nil {
			rules := stageConfigOrDefault(stage).MatchRules
			if rules.TimeLimitMinutes > 0 {
				return time.Duration(rules.TimeLimitMinutes) * time.Minute
			}
		}
	}
	return scheduling.DefaultMatchDuration
}

func (s *schedulingService) durationFromConfig(match *models.Match, configByStage map[int]models.StageConfig) time.Duration {
	if match.TimeLimitMinutes != nil && *match.TimeLimitMinutes > 0 {
		return time.Duration(*match.TimeLimitMinutes) * time.Minute
	}
	if match.StageID != nil {
		if config, ok := configByStage[*match.StageID]; ok && config.MatchRules.TimeLimitMinutes > 0 {
			return time.Duration(config.MatchRules.TimeLimitMinutes) * time.Minute
		}
	}
	return scheduling.DefaultMatchDuration
}

// hasUsableTimeLimits reports whether every match carries a resolvable time
// limit, from itself or its stage's rules. One miss forces order-only mode.
func hasUsableTimeLimits(matches []*models.Match, configByStage map[int]models.StageConfig) bool {
	for _, match := range matches {
		if match.IsTimeLimited && match.TimeLimitMinutes != nil && *match.TimeLimitMinutes > 0 {
			continue
		}
		if match.StageID == nil {
			return false
		}
		config, ok := configByStage[*match.StageID]
		if !ok {
			return false
		}
		rules := config.MatchRules
		if !rules.TimeLimited || rules.TimeLimitMinutes <= 0 {
			return false
		}
	}
	return true
}

func (s *schedulingService) publishScheduleUpdate(tournamentID int, payload interface{}) {
	s.hub.Publish(live.Event{
		Type:    live.EventScheduleUpdated,
		Room:    live.TournamentRoom(tournamentID),
		Payload: payload,
	})
}
