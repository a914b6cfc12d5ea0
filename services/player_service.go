package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/padel-system/models"
	"github.com/Dosada05/padel-system/repositories"
	"github.com/Dosada05/padel-system/utils"
)

type PlayerService interface {
	Create(ctx context.Context, companyID int, input CreatePlayerInput) (*models.Player, error)
	GetByID(ctx context.Context, companyID, playerID int) (*models.Player, error)
	ListByCompany(ctx context.Context, companyID int) ([]*models.Player, error)
}

type CreatePlayerInput struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
}

type playerService struct {
	playerRepo repositories.PlayerRepository
}

func NewPlayerService(playerRepo repositories.PlayerRepository) PlayerService {
	return &playerService{playerRepo: playerRepo}
}

func (s *playerService) Create(ctx context.Context, companyID int, input CreatePlayerInput) (*models.Player, error) {
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	if input.FirstName == "" || input.LastName == "" {
		return nil, ErrPlayerNameRequired
	}
	if input.Email != nil && !utils.IsValidEmail(*input.Email) {
		return nil, fmt.Errorf("%w: invalid email format", ErrValidationFailed)
	}

	player := &models.Player{
		CompanyID: companyID,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Phone:     input.Phone,
	}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerCompanyInvalid) {
			return nil, ErrCompanyNotFound
		}
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	return player, nil
}

func (s *playerService) GetByID(ctx context.Context, companyID, playerID int) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player %d: %w", playerID, err)
	}
	if player.CompanyID != companyID {
		return nil, ErrForbiddenOperation
	}
	return player, nil
}

func (s *playerService) ListByCompany(ctx context.Context, companyID int) ([]*models.Player, error) {
	players, err := s.playerRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players for company %d: %w", companyID, err)
	}
	return players, nil
}
