package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/padel-system/models"
	"github.com/Dosada05/padel-system/repositories"
	"github.com/Dosada05/padel-system/storage"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var allowedPosterTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

type TournamentService interface {
	Create(ctx context.Context, companyID int, input CreateTournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, tournamentID int) (*models.Tournament, error)
	// GetFull returns the tournament with stages, couples, courts and matches
	// populated for a single dashboard read.
	GetFull(ctx context.Context, tournamentID int) (*models.Tournament, error)
	ListByCompany(ctx context.Context, companyID int, status *models.TournamentStatus) ([]*models.Tournament, error)
	Update(ctx context.Context, companyID, tournamentID int, input UpdateTournamentInput) (*models.Tournament, error)
	UpdateStatus(ctx context.Context, companyID, tournamentID int, next models.TournamentStatus) (*models.Tournament, error)
	UploadPoster(ctx context.Context, companyID, tournamentID int, contentType string, file io.Reader) (*models.Tournament, error)
	Delete(ctx context.Context, companyID, tournamentID int) error
	// AutoUpdateStatusesByDates advances registration tournaments whose start
	// date has passed to active, and active tournaments whose end date has
	// passed to completed. Returns the number of tournaments advanced.
	AutoUpdateStatusesByDates(ctx context.Context) (int, error)
}

type CreateTournamentInput struct {
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
}

type UpdateTournamentInput struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	stageRepo      repositories.StageRepository
	groupRepo      repositories.GroupRepository
	bracketRepo    repositories.BracketRepository
	coupleRepo     repositories.CoupleRepository
	playerRepo     repositories.PlayerRepository
	courtRepo      repositories.CourtRepository
	matchRepo      repositories.MatchRepository
	uploader       storage.FileUploader
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	stageRepo repositories.StageRepository,
	groupRepo repositories.GroupRepository,
	bracketRepo repositories.BracketRepository,
	coupleRepo repositories.CoupleRepository,
	playerRepo repositories.PlayerRepository,
	courtRepo repositories.CourtRepository,
	matchRepo repositories.MatchRepository,
	uploader storage.FileUploader,
) TournamentService {
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		stageRepo:      stageRepo,
		groupRepo:      groupRepo,
		bracketRepo:    bracketRepo,
		coupleRepo:     coupleRepo,
		playerRepo:     playerRepo,
		courtRepo:      courtRepo,
		matchRepo:      matchRepo,
		uploader:       uploader,
	}
}

func (s *tournamentService) Create(ctx context.Context, companyID int, input CreateTournamentInput) (*models.Tournament, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, ErrTournamentNameRequired
	}
	if err := validateTournamentDates(input.StartDate, input.EndDate); err != nil {
		return nil, err
	}

	tournament := &models.Tournament{
		CompanyID:   companyID,
		Name:        input.Name,
		Description: input.Description,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Status:      models.StatusDraft,
	}
	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentCompanyInvalid) {
			return nil, ErrCompanyNotFound
		}
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	return tournament, nil
}

func (s *tournamentService) GetByID(ctx context.Context, tournamentID int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", tournamentID, err)
	}
	populateTournamentPosterURL(tournament, s.uploader)
	return tournament, nil
}

func (s *tournamentService) GetFull(ctx context.Context, tournamentID int) (*models.Tournament, error) {
	tournament, err := s.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		stages, err := s.stageRepo.ListByTournament(gCtx, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to list stages: %w", err)
		}
		for _, stage := range stages {
			groups, err := s.groupRepo.ListByStage(gCtx, stage.ID)
			if err != nil {
				return fmt.Errorf("failed to list groups of stage %d: %w", stage.ID, err)
			}
			stage.Groups = make([]models.Group, len(groups))
			for i, group := range groups {
				stage.Groups[i] = *group
			}

			brackets, err := s.bracketRepo.ListByStage(gCtx, stage.ID)
			if err != nil {
				return fmt.Errorf("failed to list brackets of stage %d: %w", stage.ID, err)
			}
			stage.Brackets = make([]models.Bracket, len(brackets))
			for i, bracket := range brackets {
				stage.Brackets[i] = *bracket
			}
		}
		tournament.Stages = make([]models.Stage, len(stages))
		for i, stage := range stages {
			tournament.Stages[i] = *stage
		}
		return nil
	})

	g.Go(func() error {
		couples, err := s.coupleRepo.ListByTournament(gCtx, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to list couples: %w", err)
		}
		if err := hydrateCouplePlayers(gCtx, s.playerRepo, couples); err != nil {
			return err
		}
		tournament.Couples = dereferenceCouples(couples)
		return nil
	})

	g.Go(func() error {
		courts, err := s.courtRepo.ListByTournament(gCtx, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to list courts: %w", err)
		}
		tournament.Courts = make([]models.TournamentCourt, len(courts))
		for i, court := range courts {
			tournament.Courts[i] = *court
		}
		return nil
	})

	g.Go(func() error {
		matches, err := s.matchRepo.ListByTournament(gCtx, tournamentID, repositories.MatchFilter{})
		if err != nil {
			return fmt.Errorf("failed to list matches: %w", err)
		}
		tournament.Matches = dereferenceMatches(matches)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tournament, nil
}

func (s *tournamentService) ListByCompany(ctx context.Context, companyID int, status *models.TournamentStatus) ([]*models.Tournament, error) {
	tournaments, err := s.tournamentRepo.ListByCompany(ctx, companyID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments for company %d: %w", companyID, err)
	}
	for _, t := range tournaments {
		populateTournamentPosterURL(t, s.uploader)
	}
	return tournaments, nil
}

func (s *tournamentService) Update(ctx context.Context, companyID, tournamentID int, input UpdateTournamentInput) (*models.Tournament, error) {
	tournament, err := getOwnedTournament(ctx, s.tournamentRepo, tournamentID, companyID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrTournamentNameRequired
		}
		tournament.Name = name
	}
	if input.Description != nil {
		tournament.Description = input.Description
	}
	if input.StartDate != nil {
		tournament.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		tournament.EndDate = *input.EndDate
	}
	if err := validateTournamentDates(tournament.StartDate, tournament.EndDate); err != nil {
		return nil, err
	}

	if err := s.tournamentRepo.Update(ctx, nil, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to update tournament %d: %w", tournamentID, err)
	}
	populateTournamentPosterURL(tournament, s.uploader)
	return tournament, nil
}

func (s *tournamentService) UpdateStatus(ctx context.Context, companyID, tournamentID int, next models.TournamentStatus) (*models.Tournament, error) {
	switch next {
	case models.StatusDraft, models.StatusRegistration, models.StatusActive, models.StatusCompleted, models.StatusCanceled:
	default:
		return nil, ErrTournamentInvalidStatus
	}

	tournament, err := getOwnedTournament(ctx, s.tournamentRepo, tournamentID, companyID)
	if err != nil {
		return nil, err
	}
	if !isValidStatusTransition(tournament.Status, next) {
		return nil, fmt.Errorf("%w: %s to %s", ErrTournamentInvalidStatusTransition, tournament.Status, next)
	}
	if tournament.Status == next {
		return tournament, nil
	}

	if err := s.tournamentRepo.UpdateStatus(ctx, nil, tournamentID, next); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to update tournament %d status: %w", tournamentID, err)
	}
	tournament.Status = next
	populateTournamentPosterURL(tournament, s.uploader)
	return tournament, nil
}

func (s *tournamentService) UploadPoster(ctx context.Context, companyID, tournamentID int, contentType string, file io.Reader) (*models.Tournament, error) {
	tournament, err := getOwnedTournament(ctx, s.tournamentRepo, tournamentID, companyID)
	if err != nil {
		return nil, err
	}

	ext, ok := allowedPosterTypes[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPosterInvalidType, contentType)
	}

	key := fmt.Sprintf("tournaments/%d/poster_%s.%s", tournamentID, uuid.NewString(), ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload poster for tournament %d: %w", tournamentID, err)
	}

	oldKey := tournament.PosterKey
	if err := s.tournamentRepo.UpdatePosterKey(ctx, tournamentID, &key); err != nil {
		return nil, fmt.Errorf("failed to store poster key for tournament %d: %w", tournamentID, err)
	}
	if oldKey != nil && *oldKey != "" && *oldKey != key {
		if err := s.uploader.Delete(ctx, *oldKey); err != nil {
			slog.Warn("failed to delete previous poster",
				slog.Int("tournament_id", tournamentID),
				slog.String("key", *oldKey),
				slog.Any("error", err))
		}
	}

	tournament.PosterKey = &key
	populateTournamentPosterURL(tournament, s.uploader)
	return tournament, nil
}

func (s *tournamentService) Delete(ctx context.Context, companyID, tournamentID int) error {
	tournament, err := getOwnedTournament(ctx, s.tournamentRepo, tournamentID, companyID)
	if err != nil {
		return err
	}

	if err := s.tournamentRepo.Delete(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to delete tournament %d: %w", tournamentID, err)
	}

	if tournament.PosterKey != nil && *tournament.PosterKey != "" {
		if err := s.uploader.Delete(ctx, *tournament.PosterKey); err != nil {
			slog.Warn("failed to delete poster of removed tournament",
				slog.Int("tournament_id", tournamentID),
				slog.String("key", *tournament.PosterKey),
				slog.Any("error", err))
		}
	}
	return nil
}

func (s *tournamentService) AutoUpdateStatusesByDates(ctx context.Context) (int, error) {
	tournaments, err := s.tournamentRepo.ListByStatuses(ctx, models.StatusRegistration, models.StatusActive)
	if err != nil {
		return 0, fmt.Errorf("failed to list tournaments for status update: %w", err)
	}

	now := time.Now()
	updated := 0
	for _, t := range tournaments {
		var next models.TournamentStatus
		switch {
		case t.Status == models.StatusRegistration && !now.Before(t.StartDate):
			next = models.StatusActive
		case t.Status == models.StatusActive && now.After(t.EndDate):
			next = models.StatusCompleted
		default:
			continue
		}

		if err := s.tournamentRepo.UpdateStatus(ctx, nil, t.ID, next); err != nil {
			slog.Error("failed to auto-update tournament status",
				slog.Int("tournament_id", t.ID),
				slog.String("from", string(t.Status)),
				slog.String("to", string(next)),
				slog.Any("error", err))
			continue
		}
		slog.Info("tournament status advanced by dates",
			slog.Int("tournament_id", t.ID),
			slog.String("from", string(t.Status)),
			slog.String("to", string(next)))
		updated++
	}
	return updated, nil
}

// hydrateCouplePlayers fills FirstPlayer and SecondPlayer on each couple with
// a single batched lookup.
func hydrateCouplePlayers(ctx context.Context, playerRepo repositories.PlayerRepository, couples []*models.Couple) error {
	if len(couples) == 0 {
		return nil
	}
	idSet := make(map[int]struct{}, len(couples)*2)
	for _, c := range couples {
		idSet[c.FirstPlayerID] = struct{}{}
		idSet[c.SecondPlayerID] = struct{}{}
	}
	ids := make([]int, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	players, err := playerRepo.ListByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to load players for couples: %w", err)
	}
	byID := make(map[int]*models.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}
	for _, c := range couples {
		c.FirstPlayer = byID[c.FirstPlayerID]
		c.SecondPlayer = byID[c.SecondPlayerID]
	}
	return nil
}
