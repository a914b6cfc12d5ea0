package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/padel-system/models"
	"github.com/Dosada05/padel-system/repositories"
)

type CoupleService interface {
	Create(ctx context.Context, companyID, tournamentID int, input CreateCoupleInput) (*models.Couple, error)
	GetByID(ctx context.Context, coupleID int) (*models.Couple, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Couple, error)
	Remove(ctx context.Context, companyID, coupleID int) error
}

type CreateCoupleInput struct {
	FirstPlayerID  int    `json:"first_player_id"`
	SecondPlayerID int    `json:"second_player_id"`
	Name           string `json:"name"`
}

type coupleService struct {
	coupleRepo     repositories.CoupleRepository
	playerRepo     repositories.PlayerRepository
	tournamentRepo repositories.TournamentRepository
}

func NewCoupleService(
	coupleRepo repositories.CoupleRepository,
	playerRepo repositories.PlayerRepository,
	tournamentRepo repositories.TournamentRepository,
) CoupleService {
	return &coupleService{
		coupleRepo:     coupleRepo,
		playerRepo:     playerRepo,
		tournamentRepo: tournamentRepo,
	}
}

func (s *coupleService) Create(ctx context.Context, companyID, tournamentID int, input CreateCoupleInput) (*models.Couple, error) {
	if _, err := getOwnedTournament(ctx, s.tournamentRepo, tournamentID, companyID); err != nil {
		return nil, err
	}

	if input.FirstPlayerID == input.SecondPlayerID {
		return nil, ErrCoupleSamePlayer
	}
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, ErrCoupleNameRequired
	}

	for _, playerID := range []int{input.FirstPlayerID, input.SecondPlayerID} {
		player, err := s.playerRepo.GetByID(ctx, playerID)
		if err != nil {
			if errors.Is(err, repositories.ErrPlayerNotFound) {
				return nil, fmt.Errorf("%w: player %d", ErrPlayerNotFound, playerID)
			}
			return nil, fmt.Errorf("failed to get player %d: %w", playerID, err)
		}
		if player.CompanyID != companyID {
			return nil, ErrForbiddenOperation
		}
	}

	existing, err := s.coupleRepo.FindByPlayerPair(ctx, tournamentID, input.FirstPlayerID, input.SecondPlayerID)
	if err != nil && !errors.Is(err, repositories.ErrCoupleNotFound) {
		return nil, fmt.Errorf("failed to check for existing couple: %w", err)
	}
	if existing != nil {
		return nil, ErrCoupleDuplicatePair
	}

	couple := &models.Couple{
		TournamentID:   tournamentID,
		FirstPlayerID:  input.FirstPlayerID,
		SecondPlayerID: input.SecondPlayerID,
		Name:           input.Name,
	}
	if err := s.coupleRepo.Create(ctx, nil, couple); err != nil {
		switch {
		case errors.Is(err, repositories.ErrCouplePlayerInvalid):
			return nil, ErrPlayerNotFound
		case errors.Is(err, repositories.ErrCoupleTournamentInvalid):
			return nil, ErrTournamentNotFound
		default:
			return nil, fmt.Errorf("failed to create couple: %w", err)
		}
	}
	return couple, nil
}

func (s *coupleService) GetByID(ctx context.Context, coupleID int) (*models.Couple, error) {
	couple, err := s.coupleRepo.GetByID(ctx, coupleID)
	if err != nil {
		if errors.Is(err, repositories.ErrCoupleNotFound) {
			return nil, ErrCoupleNotFound
		}
		return nil, fmt.Errorf("failed to get couple %d: %w", coupleID, err)
	}
	if err := hydrateCouplePlayers(ctx, s.playerRepo, []*models.Couple{couple}); err != nil {
		return nil, err
	}
	return couple, nil
}

func (s *coupleService) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Couple, error) {
	couples, err := s.coupleRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list couples for tournament %d: %w", tournamentID, err)
	}
	if err := hydrateCouplePlayers(ctx, s.playerRepo, couples); err != nil {
		return nil, err
	}
	return couples, nil
}

func (s *coupleService) Remove(ctx context.Context, companyID, coupleID int) error {
	couple, err := s.coupleRepo.GetByID(ctx, coupleID)
	if err != nil {
		if errors.Is(err, repositories.ErrCoupleNotFound) {
			return ErrCoupleNotFound
		}
		return fmt.Errorf("failed to get couple %d: %w", coupleID, err)
	}
	if _, err := getOwnedTournament(ctx, s.tournamentRepo, couple.TournamentID, companyID); err != nil {
		return err
	}

	if err := s.coupleRepo.Tombstone(ctx, nil, coupleID); err != nil {
		if errors.Is(err, repositories.ErrCoupleNotFound) {
			return ErrCoupleNotFound
		}
		return fmt.Errorf("failed to remove couple %d: %w", coupleID, err)
	}
	return nil
}
