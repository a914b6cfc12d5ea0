package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/padel-system/live"
	"github.com/Dosada05/padel-system/models"
	"github.com/Dosada05/padel-system/repositories"
)

type MatchService interface {
	GetByID(ctx context.Context, matchID int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int, filter repositories.MatchFilter) ([]*models.Match, error)
	// UpdateResult replaces the reported score of a match. The previous
	// result's stats contribution is removed and the new one applied in the
	// same transaction.
	UpdateResult(ctx context.Context, companyID, matchID int, input UpdateMatchResultInput) (*models.Match, error)
	Delete(ctx context.Context, companyID, matchID int) error
}

type UpdateMatchResultInput struct {
	Games          models.GameScores         `json:"games"`
	WinnerCoupleID *int                      `json:"winner_couple_id"`
	ResultStatus   *models.MatchResultStatus `json:"match_result_status"`
}

type matchService struct {
	db               *sql.DB
	matchRepo        repositories.MatchRepository
	coupleRepo       repositories.CoupleRepository
	tournamentRepo   repositories.TournamentRepository
	standingsService StandingsService
	hub              *live.Hub
}

func NewMatchService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	coupleRepo repositories.CoupleRepository,
	tournamentRepo repositories.TournamentRepository,
	standingsService StandingsService,
	hub *live.Hub,
) MatchService {
	return &matchService{
		db:               db,
		matchRepo:        matchRepo,
		coupleRepo:       coupleRepo,
		tournamentRepo:   tournamentRepo,
		standingsService: standingsService,
		hub:              hub,
	}
}

func (s *matchService) GetByID(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %d: %w", matchID, err)
	}
	if err := hydrateMatchCouples(ctx, s.coupleRepo, []*models.Match{match}); err != nil {
		return nil, err
	}
	return match, nil
}

func (s *matchService) ListByTournament(ctx context.Context, tournamentID int, filter repositories.MatchFilter) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
	}
	if err := hydrateMatchCouples(ctx, s.coupleRepo, matches); err != nil {
		return nil, err
	}
	return matches, nil
}

func (s *matchService) UpdateResult(ctx context.Context, companyID, matchID int, input UpdateMatchResultInput) (*models.Match, error) {
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

	if input.WinnerCoupleID != nil &&
		*input.WinnerCoupleID != match.Couple1ID && *input.WinnerCoupleID != match.Couple2ID {
		return nil, ErrMatchInvalidWinner
	}
	for _, game := range input.Games {
		if game.Couple1Score < 0 || game.Couple2Score < 0 {
			return nil, fmt.Errorf("%w: game scores cannot be negative", ErrValidationFailed)
		}
	}

	status := models.MatchResultCompleted
	if input.ResultStatus != nil {
		switch *input.ResultStatus {
		case models.MatchResultPending, models.MatchResultCompleted,
			models.MatchResultTimeExpired, models.MatchResultForfeited:
			status = *input.ResultStatus
		default:
			return nil, ErrMatchInvalidStatus
		}
	}

	updated := *match
	updated.Games = input.Games
	updated.WinnerCoupleID = input.WinnerCoupleID
	updated.ResultStatus = status

	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.standingsService.RemoveMatchResult(ctx, tx, match); err != nil {
			return err
		}
		if err := s.matchRepo.UpdateResult(ctx, tx, matchID, input.Games, input.WinnerCoupleID, status); err != nil {
			if errors.Is(err, repositories.ErrMatchCoupleInvalid) {
				return ErrMatchInvalidWinner
			}
			return fmt.Errorf("failed to update match %d result: %w", matchID, err)
		}
		return s.standingsService.ApplyMatchResult(ctx, tx, &updated)
	})
	if err != nil {
		return nil, err
	}

	room := live.TournamentRoom(match.TournamentID)
	s.hub.Publish(live.Event{Type: live.EventMatchUpdated, Room: room, Payload: &updated})
	s.hub.Publish(live.Event{
		Type:    live.EventStandingsUpdated,
		Room:    room,
		Payload: map[string]interface{}{"tournament_id": match.TournamentID, "group_id": match.GroupID},
	})

	if err := hydrateMatchCouples(ctx, s.coupleRepo, []*models.Match{&updated}); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *matchService) Delete(ctx context.Context, companyID, matchID int) error {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("failed to get match %d: %w", matchID, err)
	}
	if _, err := getOwnedTournament(ctx, s.tournamentRepo, match.TournamentID, companyID); err != nil {
		return err
	}

	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		// The match's contribution leaves the table with it.
		if err := s.standingsService.RemoveMatchResult(ctx, tx, match); err != nil {
			return err
		}
		if err := s.matchRepo.Delete(ctx, tx, matchID); err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return ErrMatchNotFound
			}
			return fmt.Errorf("failed to delete match %d: %w", matchID, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.hub.Publish(live.Event{
		Type:    live.EventMatchUpdated,
		Room:    live.TournamentRoom(match.TournamentID),
		Payload: map[string]interface{}{"match_id": matchID, "deleted": true},
	})
	return nil
}

// hydrateMatchCouples attaches couple records to matches with one batched
// lookup.
func hydrateMatchCouples(ctx context.Context, coupleRepo repositories.CoupleRepository, matches []*models.Match) error {
	if len(matches) == 0 {
		return nil
	}
	idSet := make(map[int]struct{}, len(matches)*2)
	for _, m := range matches {
		idSet[m.Couple1ID] = struct{}{}
		idSet[m.Couple2ID] = struct{}{}
	}
	ids := make([]int, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	couples, err := coupleRepo.ListByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to load match couples: %w", err)
	}
	byID := make(map[int]*models.Couple, len(couples))
	for _, c := range couples {
		byID[c.ID] = c
	}
	for _, m := range matches {
		m.Couple1 = byID[m.Couple1ID]
		m.Couple2 = byID[m.Couple2ID]
	}
	return nil
}
