package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/padel-system/models"
	"github.com/Dosada05/padel-system/repositories"
	"github.com/Dosada05/padel-system/storage"
)

// withTx runs fn inside a transaction. A panic rolls back and re-panics, an
// error from fn rolls back, otherwise the transaction commits.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				slog.Error("transaction rollback failed", slog.Any("error", rbErr), slog.Any("cause", err))
			}
		} else {
			if cErr := tx.Commit(); cErr != nil {
				err = fmt.Errorf("failed to commit transaction: %w", cErr)
			}
		}
	}()
	return fn(tx)
}

// getOwnedTournament loads a tournament and checks it belongs to the company
// acting on it.
func getOwnedTournament(ctx context.Context, repo repositories.TournamentRepository, tournamentID, companyID int) (*models.Tournament, error) {
	tournament, err := repo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", tournamentID, err)
	}
	if tournament.CompanyID != companyID {
		return nil, ErrForbiddenOperation
	}
	return tournament, nil
}

// loadOwnedStage resolves a stage through its tournament's ownership check.
func loadOwnedStage(ctx context.Context, stageRepo repositories.StageRepository, tournamentRepo repositories.TournamentRepository, stageID, companyID int) (*models.Stage, error) {
	stage, err := stageRepo.GetByID(ctx, stageID)
	if err != nil {
		if errors.Is(err, repositories.ErrStageNotFound) {
			return nil, ErrStageNotFound
		}
		return nil, fmt.Errorf("failed to get stage %d: %w", stageID, err)
	}
	if _, err := getOwnedTournament(ctx, tournamentRepo, stage.TournamentID, companyID); err != nil {
		return nil, err
	}
	return stage, nil
}

func validateTournamentDates(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return ErrTournamentDatesRequired
	}
	if !start.Before(end) {
		return fmt.Errorf("%w: start date (%s) must be before end date (%s)",
			ErrTournamentInvalidDateRange, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return nil
}

func isValidStatusTransition(current, next models.TournamentStatus) bool {
	if current == next {
		return true
	}
	allowedTransitions := map[models.TournamentStatus][]models.TournamentStatus{
		models.StatusDraft:        {models.StatusRegistration, models.StatusCanceled},
		models.StatusRegistration: {models.StatusActive, models.StatusCanceled},
		models.StatusActive:       {models.StatusCompleted, models.StatusCanceled},
		models.StatusCompleted:    {},
		models.StatusCanceled:     {},
	}
	for _, allowed := range allowedTransitions[current] {
		if next == allowed {
			return true
		}
	}
	return false
}

// stageConfigOrDefault guards against a stage loaded through a path that
// skipped config scanning.
func stageConfigOrDefault(stage *models.Stage) models.StageConfig {
	if stage == nil {
		return models.DefaultStageConfig()
	}
	return stage.Config
}

func populateTournamentPosterURL(tournament *models.Tournament, uploader storage.FileUploader) {
	if tournament != nil && tournament.PosterKey != nil && *tournament.PosterKey != "" && uploader != nil {
		url := uploader.GetPublicURL(*tournament.PosterKey)
		if url != "" {
			tournament.PosterURL = &url
		}
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intPtr(v int) *int {
	return &v
}

func dereferenceMatches(slice []*models.Match) []models.Match {
	if slice == nil {
		return []models.Match{}
	}
	result := make([]models.Match, len(slice))
	for i, ptr := range slice {
		if ptr != nil {
			result[i] = *ptr
		}
	}
	return result
}

func dereferenceCouples(slice []*models.Couple) []models.Couple {
	if slice == nil {
		return []models.Couple{}
	}
	result := make([]models.Couple, len(slice))
	for i, ptr := range slice {
		if ptr != nil {
			result[i] = *ptr
		}
	}
	return result
}
