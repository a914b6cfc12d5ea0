package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/padel-system/models"
	"github.com/Dosada05/padel-system/repositories"
)

type CourtService interface {
	CreateCourt(ctx context.Context, companyID int, input CreateCourtInput) (*models.Court, error)
	ListCourts(ctx context.Context, companyID int) ([]*models.Court, error)
	// LinkToTournament attaches a company court to a tournament. Relinking a
	// previously unlinked court reactivates the old association.
	LinkToTournament(ctx context.Context, companyID, tournamentID, courtID int, input CourtAvailabilityInput) (*models.TournamentCourt, error)
	UpdateAvailability(ctx context.Context, companyID, tournamentID, courtID int, input CourtAvailabilityInput) (*models.TournamentCourt, error)
	ListTournamentCourts(ctx context.Context, tournamentID int) ([]*models.TournamentCourt, error)
	// UnlinkFromTournament detaches the court and clears the schedule of every
	// tournament match that sat on it.
	UnlinkFromTournament(ctx context.Context, companyID, tournamentID, courtID int) error
}

type CreateCourtInput struct {
	Name string `json:"name"`
}

type CourtAvailabilityInput struct {
	AvailabilityStart *time.Time `json:"availability_start"`
	AvailabilityEnd   *time.Time `json:"availability_end"`
}

func (in CourtAvailabilityInput) validate() error {
	if in.AvailabilityStart != nil && in.AvailabilityEnd != nil &&
		!in.AvailabilityStart.Before(*in.AvailabilityEnd) {
		return fmt.Errorf("%w: availability start must be before availability end", ErrValidationFailed)
	}
	return nil
}

type courtService struct {
	db             *sql.DB
	courtRepo      repositories.CourtRepository
	matchRepo      repositories.MatchRepository
	tournamentRepo repositories.TournamentRepository
}

func NewCourtService(
	db *sql.DB,
	courtRepo repositories.CourtRepository,
	matchRepo repositories.MatchRepository,
	tournamentRepo repositories.TournamentRepository,
) CourtService {
	return &courtService{
		db:             db,
		courtRepo:      courtRepo,
		matchRepo:      matchRepo,
		tournamentRepo: tournamentRepo,
	}
}

func (s *courtService) CreateCourt(ctx context.Context, companyID int, input CreateCourtInput) (*models.Court, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, ErrCourtNameRequired
	}

	court := &models.Court{
		CompanyID: companyID,
		Name:      input.Name,
	}
	if err := s.courtRepo.CreateCourt(ctx, court); err != nil {
		if errors.Is(err, repositories.ErrCourtCompanyInvalid) {
			return nil, ErrCompanyNotFound
		}
		return nil, fmt.Errorf("failed to create court: %w", err)
	}
	return court, nil
}

func (s *courtService) ListCourts(ctx context.Context, companyID int) ([]*models.Court, error) {
	courts, err := s.courtRepo.ListCourtsByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list courts for company %d: %w", companyID, err)
	}
	return courts, nil
}

func (s *courtService) LinkToTournament(ctx context.Context, companyID, tournamentID, courtID int, input CourtAvailabilityInput) (*models.TournamentCourt, error) {
	if _, err := getOwnedTournament(ctx, s.tournamentRepo, tournamentID, companyID); err != nil {
		return nil, err
	}
	court, err := s.courtRepo.GetCourtByID(ctx, courtID)
	if err != nil {
		if errors.Is(err, repositories.ErrCourtNotFound) {
			return nil, ErrCourtNotFound
		}
		return nil, fmt.Errorf("failed to get court %d: %w", courtID, err)
	}
	if court.CompanyID != companyID {
		return nil, ErrForbiddenOperation
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	existing, err := s.courtRepo.GetLinkAny(ctx, tournamentID, courtID)
	if err != nil && !errors.Is(err, repositories.ErrCourtLinkNotFound) {
		return nil, fmt.Errorf("failed to check court link: %w", err)
	}
	if existing != nil {
		if existing.RecordStatus == models.RecordActive {
			return nil, ErrCourtAlreadyLinked
		}
		if err := s.courtRepo.ReactivateLink(ctx, nil, existing.ID, input.AvailabilityStart, input.AvailabilityEnd); err != nil {
			return nil, fmt.Errorf("failed to reactivate court link: %w", err)
		}
		existing.RecordStatus = models.RecordActive
		existing.DeletedAt = nil
		existing.AvailabilityStart = input.AvailabilityStart
		existing.AvailabilityEnd = input.AvailabilityEnd
		existing.Court = court
		return existing, nil
	}

	link := &models.TournamentCourt{
		TournamentID:      tournamentID,
		CourtID:           courtID,
		AvailabilityStart: input.AvailabilityStart,
		AvailabilityEnd:   input.AvailabilityEnd,
	}
	if err := s.courtRepo.LinkToTournament(ctx, nil, link); err != nil {
		switch {
		case errors.Is(err, repositories.ErrCourtLinkConflict):
			return nil, ErrCourtAlreadyLinked
		case errors.Is(err, repositories.ErrCourtLinkTargetInvalid):
			return nil, ErrCourtNotFound
		default:
			return nil, fmt.Errorf("failed to link court %d to tournament %d: %w", courtID, tournamentID, err)
		}
	}
	link.Court = court
	return link, nil
}

func (s *courtService) UpdateAvailability(ctx context.Context, companyID, tournamentID, courtID int, input CourtAvailabilityInput) (*models.TournamentCourt, error) {
	if _, err := getOwnedTournament(ctx, s.tournamentRepo, tournamentID, companyID); err != nil {
		return nil, err
	}
	link, err := s.courtRepo.GetLink(ctx, tournamentID, courtID)
	if err != nil {
		if errors.Is(err, repositories.ErrCourtLinkNotFound) {
			return nil, ErrCourtLinkNotFound
		}
		return nil, fmt.Errorf("failed to get court link: %w", err)
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	if err := s.courtRepo.UpdateLinkAvailability(ctx, nil, link.ID, input.AvailabilityStart, input.AvailabilityEnd); err != nil {
		return nil, fmt.Errorf("failed to update court availability: %w", err)
	}
	link.AvailabilityStart = input.AvailabilityStart
	link.AvailabilityEnd = input.AvailabilityEnd
	return link, nil
}

func (s *courtService) ListTournamentCourts(ctx context.Context, tournamentID int) ([]*models.TournamentCourt, error) {
	links, err := s.courtRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list courts for tournament %d: %w", tournamentID, err)
	}
	return links, nil
}

func (s *courtService) UnlinkFromTournament(ctx context.Context, companyID, tournamentID, courtID int) error {
	if _, err := getOwnedTournament(ctx, s.tournamentRepo, tournamentID, companyID); err != nil {
		return err
	}
	if _, err := s.courtRepo.GetLink(ctx, tournamentID, courtID); err != nil {
		if errors.Is(err, repositories.ErrCourtLinkNotFound) {
			return ErrCourtLinkNotFound
		}
		return fmt.Errorf("failed to get court link: %w", err)
	}

	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.matchRepo.ClearScheduleByCourt(ctx, tx, tournamentID, courtID); err != nil {
			return fmt.Errorf("failed to clear schedules on court %d: %w", courtID, err)
		}
		if err := s.courtRepo.UnlinkFromTournament(ctx, tx, tournamentID, courtID); err != nil {
			return fmt.Errorf("failed to unlink court %d: %w", courtID, err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrCourtLinkNotFound) {
			return ErrCourtLinkNotFound
		}
		return err
	}
	return nil
}
