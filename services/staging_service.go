package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/Dosada05/padel-system/models"
	"github.com/Dosada05/padel-system/repositories"
	"github.com/Dosada05/padel-system/standings"
)

// AssignmentMethod selects how AssignCouplesToGroups distributes couples.
type AssignmentMethod string

const (
	AssignmentRandom   AssignmentMethod = "random"
	AssignmentSeeded   AssignmentMethod = "seeded"
	AssignmentBalanced AssignmentMethod = "balanced"
)

type StagingService interface {
	CreateStage(ctx context.Context, companyID, tournamentID int, input CreateStageInput) (*models.Stage, error)
	GetStage(ctx context.Context, stageID int) (*models.Stage, error)
	ListStages(ctx context.Context, tournamentID int) ([]*models.Stage, error)
	UpdateStage(ctx context.Context, companyID, stageID int, input UpdateStageInput) (*models.Stage, error)
	// DeleteStage tombstones the stage with its groups, group rosters and
	// brackets, and detaches the stage's matches.
	DeleteStage(ctx context.Context, companyID, stageID int) error

	CreateGroup(ctx context.Context, companyID, stageID int, input CreateGroupInput) (*models.Group, error)
	DeleteGroup(ctx context.Context, companyID, groupID int) error
	AddCoupleToGroup(ctx context.Context, companyID, groupID, coupleID int) error
	RemoveCoupleFromGroup(ctx context.Context, companyID, groupID, coupleID int) error
	ListGroupCouples(ctx context.Context, groupID int) ([]*models.Couple, error)

	CreateBracket(ctx context.Context, companyID, stageID int, bracketType models.BracketType) (*models.Bracket, error)
	UpdateBracketType(ctx context.Context, companyID, bracketID int, bracketType models.BracketType) (*models.Bracket, error)
	DeleteBracket(ctx context.Context, companyID, bracketID int) error

	// AssignCouplesToGroups distributes every unassigned couple of the
	// tournament across the stage's groups and initializes their stats rows.
	AssignCouplesToGroups(ctx context.Context, companyID, stageID int, method AssignmentMethod) ([]models.GroupAssignment, error)
}

type CreateStageInput struct {
	Name      string              `json:"name"`
	StageType models.StageType    `json:"stage_type"`
	Order     int                 `json:"order"`
	Config    *models.StageConfig `json:"config"`
}

type UpdateStageInput struct {
	Name   *string             `json:"name"`
	Config *models.StageConfig `json:"config"`
}

type CreateGroupInput struct {
	Name string `json:"name"`
}

type stagingService struct {
	db             *sql.DB
	stageRepo      repositories.StageRepository
	groupRepo      repositories.GroupRepository
	bracketRepo    repositories.BracketRepository
	coupleRepo     repositories.CoupleRepository
	playerRepo     repositories.PlayerRepository
	statsRepo      repositories.CoupleStatsRepository
	matchRepo      repositories.MatchRepository
	tournamentRepo repositories.TournamentRepository
	rng            *rand.Rand
}

func NewStagingService(
	db *sql.DB,
	stageRepo repositories.StageRepository,
	groupRepo repositories.GroupRepository,
	bracketRepo repositories.BracketRepository,
	coupleRepo repositories.CoupleRepository,
	playerRepo repositories.PlayerRepository,
	statsRepo repositories.CoupleStatsRepository,
	matchRepo repositories.MatchRepository,
	tournamentRepo repositories.TournamentRepository,
	rng *rand.Rand,
) StagingService {
	return &stagingService{
		db:             db,
		stageRepo:      stageRepo,
		groupRepo:      groupRepo,
		bracketRepo:    bracketRepo,
		coupleRepo:     coupleRepo,
		playerRepo:     playerRepo,
		statsRepo:      statsRepo,
		matchRepo:      matchRepo,
		tournamentRepo: tournamentRepo,
		rng:            rng,
	}
}

// getOwnedStage loads a stage and checks the owning tournament belongs to the
// company.
func (s *stagingService) getOwnedStage(ctx context.Context, stageID, companyID int) (*models.Stage, error) {
	return loadOwnedStage(ctx, s.stageRepo, s.tournamentRepo, stageID, companyID)
}

func (s *stagingService) getOwnedGroup(ctx context.Context, groupID, companyID int) (*models.Group, *models.Stage, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return nil, nil, ErrGroupNotFound
		}
		return nil, nil, fmt.Errorf("failed to get group %d: %w", groupID, err)
	}
	stage, err := s.getOwnedStage(ctx, group.StageID, companyID)
	if err != nil {
		return nil, nil, err
	}
	return group, stage, nil
}

func (s *stagingService) CreateStage(ctx context.Context, companyID, tournamentID int, input CreateStageInput) (*models.Stage, error) {
	if _, err := getOwnedTournament(ctx, s.tournamentRepo, tournamentID, companyID); err != nil {
		return nil, err
	}

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, ErrStageNameRequired
	}
	switch input.StageType {
	case models.StageTypeGroup, models.StageTypeElimination:
	default:
		return nil, ErrStageInvalidType
	}
	if input.Order < 1 {
		return nil, ErrStageInvalidOrder
	}

	config := models.DefaultStageConfig()
	if input.Config != nil {
		config = *input.Config
		if err := config.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
		}
	}

	stage := &models.Stage{
		TournamentID: tournamentID,
		Name:         input.Name,
		StageType:    input.StageType,
		Order:        input.Order,
		Config:       config,
	}

	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		// A tombstoned stage may still hold the unique order slot.
		if err := s.stageRepo.PurgeTombstonedByOrder(ctx, tx, tournamentID, input.Order); err != nil {
			return fmt.Errorf("failed to purge tombstoned stage at order %d: %w", input.Order, err)
		}
		if err := s.stageRepo.Create(ctx, tx, stage); err != nil {
			return err
		}
		if stage.StageType == models.StageTypeElimination {
			main := &models.Bracket{StageID: stage.ID, BracketType: models.BracketTypeMain}
			if err := s.bracketRepo.Create(ctx, tx, main); err != nil {
				return fmt.Errorf("failed to create main bracket for stage %d: %w", stage.ID, err)
			}
			stage.Brackets = []models.Bracket{*main}
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrStageOrderConflict):
			return nil, ErrStageOrderTaken
		case errors.Is(err, repositories.ErrStageTournamentInvalid):
			return nil, ErrTournamentNotFound
		default:
			return nil, fmt.Errorf("failed to create stage: %w", err)
		}
	}
	return stage, nil
}

func (s *stagingService) GetStage(ctx context.Context, stageID int) (*models.Stage, error) {
	stage, err := s.stageRepo.GetByID(ctx, stageID)
	if err != nil {
		if errors.Is(err, repositories.ErrStageNotFound) {
			return nil, ErrStageNotFound
		}
		return nil, fmt.Errorf("failed to get stage %d: %w", stageID, err)
	}
	if err := s.hydrateStage(ctx, stage); err != nil {
		return nil, err
	}
	return stage, nil
}

func (s *stagingService) ListStages(ctx context.Context, tournamentID int) ([]*models.Stage, error) {
	stages, err := s.stageRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stages for tournament %d: %w", tournamentID, err)
	}
	for _, stage := range stages {
		if err := s.hydrateStage(ctx, stage); err != nil {
			return nil, err
		}
	}
	return stages, nil
}

func (s *stagingService) hydrateStage(ctx context.Context, stage *models.Stage) error {
	groups, err := s.groupRepo.ListByStage(ctx, stage.ID)
	if err != nil {
		return fmt.Errorf("failed to list groups of stage %d: %w", stage.ID, err)
	}
	stage.Groups = make([]models.Group, len(groups))
	for i, group := range groups {
		couples, err := s.groupRepo.ListCouples(ctx, group.ID)
		if err != nil {
			return fmt.Errorf("failed to list couples of group %d: %w", group.ID, err)
		}
		group.Couples = dereferenceCouples(couples)
		stage.Groups[i] = *group
	}

	brackets, err := s.bracketRepo.ListByStage(ctx, stage.ID)
	if err != nil {
		return fmt.Errorf("failed to list brackets of stage %d: %w", stage.ID, err)
	}
	stage.Brackets = make([]models.Bracket, len(brackets))
	for i, bracket := range brackets {
		stage.Brackets[i] = *bracket
	}
	return nil
}

func (s *stagingService) UpdateStage(ctx context.Context, companyID, stageID int, input UpdateStageInput) (*models.Stage, error) {
	stage, err := s.getOwnedStage(ctx, stageID, companyID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrStageNameRequired
		}
		stage.Name = name
	}
	if input.Config != nil {
		if err := input.Config.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
		}
		stage.Config = *input.Config
	}

	if err := s.stageRepo.Update(ctx, nil, stage); err != nil {
		if errors.Is(err, repositories.ErrStageNotFound) {
			return nil, ErrStageNotFound
		}
		return nil, fmt.Errorf("failed to update stage %d: %w", stageID, err)
	}
	return stage, nil
}

func (s *stagingService) DeleteStage(ctx context.Context, companyID, stageID int) error {
	if _, err := s.getOwnedStage(ctx, stageID, companyID); err != nil {
		return err
	}

	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.matchRepo.DetachByStage(ctx, tx, stageID); err != nil {
			return fmt.Errorf("failed to detach matches of stage %d: %w", stageID, err)
		}
		if err := s.groupRepo.TombstoneCoupleLinksByStage(ctx, tx, stageID); err != nil {
			return fmt.Errorf("failed to tombstone group rosters of stage %d: %w", stageID, err)
		}
		if err := s.groupRepo.TombstoneByStage(ctx, tx, stageID); err != nil {
			return fmt.Errorf("failed to tombstone groups of stage %d: %w", stageID, err)
		}
		if err := s.bracketRepo.TombstoneByStage(ctx, tx, stageID); err != nil {
			return fmt.Errorf("failed to tombstone brackets of stage %d: %w", stageID, err)
		}
		if err := s.stageRepo.Tombstone(ctx, tx, stageID); err != nil {
			if errors.Is(err, repositories.ErrStageNotFound) {
				return ErrStageNotFound
			}
			return fmt.Errorf("failed to tombstone stage %d: %w", stageID, err)
		}
		return nil
	})
}

func (s *stagingService) CreateGroup(ctx context.Context, companyID, stageID int, input CreateGroupInput) (*models.Group, error) {
	stage, err := s.getOwnedStage(ctx, stageID, companyID)
	if err != nil {
		return nil, err
	}
	if stage.StageType != models.StageTypeGroup {
		return nil, fmt.Errorf("%w: groups belong to group stages", ErrStageTypeMismatch)
	}

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, ErrGroupNameRequired
	}

	group := &models.Group{
		StageID: stageID,
		Name:    input.Name,
	}
	if err := s.groupRepo.Create(ctx, nil, group); err != nil {
		if errors.Is(err, repositories.ErrGroupStageInvalid) {
			return nil, ErrStageNotFound
		}
		return nil, fmt.Errorf("failed to create group: %w", err)
	}
	return group, nil
}

func (s *stagingService) DeleteGroup(ctx context.Context, companyID, groupID int) error {
	if _, _, err := s.getOwnedGroup(ctx, groupID, companyID); err != nil {
		return err
	}

	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.matchRepo.DetachByGroup(ctx, tx, groupID); err != nil {
			return fmt.Errorf("failed to detach matches of group %d: %w", groupID, err)
		}
		if err := s.groupRepo.TombstoneCoupleLinksByGroup(ctx, tx, groupID); err != nil {
			return fmt.Errorf("failed to tombstone roster of group %d: %w", groupID, err)
		}
		if err := s.groupRepo.Tombstone(ctx, tx, groupID); err != nil {
			if errors.Is(err, repositories.ErrGroupNotFound) {
				return ErrGroupNotFound
			}
			return fmt.Errorf("failed to tombstone group %d: %w", groupID, err)
		}
		return nil
	})
}

func (s *stagingService) AddCoupleToGroup(ctx context.Context, companyID, groupID, coupleID int) error {
	group, stage, err := s.getOwnedGroup(ctx, groupID, companyID)
	if err != nil {
		return err
	}

	couple, err := s.coupleRepo.GetByID(ctx, coupleID)
	if err != nil {
		if errors.Is(err, repositories.ErrCoupleNotFound) {
			return ErrCoupleNotFound
		}
		return fmt.Errorf("failed to get couple %d: %w", coupleID, err)
	}
	if couple.TournamentID != stage.TournamentID {
		return fmt.Errorf("%w: couple belongs to another tournament", ErrValidationFailed)
	}

	// One active group per stage.
	assignments, err := s.groupRepo.ListStageAssignments(ctx, stage.ID)
	if err != nil {
		return fmt.Errorf("failed to list stage %d assignments: %w", stage.ID, err)
	}
	for _, a := range assignments {
		if a.CoupleID == coupleID {
			return ErrCoupleAlreadyInGroup
		}
	}

	link, err := s.groupRepo.GetCoupleLink(ctx, groupID, coupleID)
	if err != nil && !errors.Is(err, repositories.ErrGroupCoupleNotFound) {
		return fmt.Errorf("failed to check group link: %w", err)
	}

	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		if link != nil {
			if err := s.groupRepo.ReactivateCoupleLink(ctx, tx, link.ID); err != nil {
				return fmt.Errorf("failed to reactivate group link: %w", err)
			}
		} else {
			newLink := &models.GroupCouple{GroupID: groupID, CoupleID: coupleID}
			if err := s.groupRepo.AddCouple(ctx, tx, newLink); err != nil {
				if errors.Is(err, repositories.ErrGroupCoupleConflict) {
					return ErrCoupleAlreadyInGroup
				}
				return fmt.Errorf("failed to add couple %d to group %d: %w", coupleID, groupID, err)
			}
		}
		return ensureStatsRow(ctx, tx, s.statsRepo, stage.TournamentID, coupleID, &group.ID)
	})
}

func (s *stagingService) RemoveCoupleFromGroup(ctx context.Context, companyID, groupID, coupleID int) error {
	if _, _, err := s.getOwnedGroup(ctx, groupID, companyID); err != nil {
		return err
	}

	if err := s.groupRepo.RemoveCouple(ctx, nil, groupID, coupleID); err != nil {
		if errors.Is(err, repositories.ErrGroupCoupleNotFound) {
			return ErrCoupleNotFound
		}
		return fmt.Errorf("failed to remove couple %d from group %d: %w", coupleID, groupID, err)
	}
	return nil
}

func (s *stagingService) ListGroupCouples(ctx context.Context, groupID int) ([]*models.Couple, error) {
	couples, err := s.groupRepo.ListCouples(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list couples of group %d: %w", groupID, err)
	}
	if err := hydrateCouplePlayers(ctx, s.playerRepo, couples); err != nil {
		return nil, err
	}
	return couples, nil
}

func (s *stagingService) CreateBracket(ctx context.Context, companyID, stageID int, bracketType models.BracketType) (*models.Bracket, error) {
	stage, err := s.getOwnedStage(ctx, stageID, companyID)
	if err != nil {
		return nil, err
	}
	if stage.StageType != models.StageTypeElimination {
		return nil, fmt.Errorf("%w: brackets belong to elimination stages", ErrStageTypeMismatch)
	}
	switch bracketType {
	case models.BracketTypeMain, models.BracketTypeSilver, models.BracketTypeBronze:
	default:
		return nil, ErrBracketInvalidType
	}

	bracket := &models.Bracket{
		StageID:     stageID,
		BracketType: bracketType,
	}
	if err := s.bracketRepo.Create(ctx, nil, bracket); err != nil {
		switch {
		case errors.Is(err, repositories.ErrBracketTypeTaken):
			return nil, ErrBracketTypeTaken
		case errors.Is(err, repositories.ErrBracketStageInvalid):
			return nil, ErrStageNotFound
		default:
			return nil, fmt.Errorf("failed to create bracket: %w", err)
		}
	}
	return bracket, nil
}

func (s *stagingService) UpdateBracketType(ctx context.Context, companyID, bracketID int, bracketType models.BracketType) (*models.Bracket, error) {
	bracket, err := s.bracketRepo.GetByID(ctx, bracketID)
	if err != nil {
		if errors.Is(err, repositories.ErrBracketNotFound) {
			return nil, ErrBracketNotFound
		}
		return nil, fmt.Errorf("failed to get bracket %d: %w", bracketID, err)
	}
	if _, err := s.getOwnedStage(ctx, bracket.StageID, companyID); err != nil {
		return nil, err
	}
	if bracket.BracketType == models.BracketTypeMain {
		return nil, ErrMainBracketUndeletable
	}
	switch bracketType {
	case models.BracketTypeSilver, models.BracketTypeBronze:
	case models.BracketTypeMain:
		return nil, ErrBracketTypeTaken
	default:
		return nil, ErrBracketInvalidType
	}

	if err := s.bracketRepo.UpdateType(ctx, nil, bracketID, bracketType); err != nil {
		if errors.Is(err, repositories.ErrBracketTypeTaken) {
			return nil, ErrBracketTypeTaken
		}
		return nil, fmt.Errorf("failed to update bracket %d type: %w", bracketID, err)
	}
	bracket.BracketType = bracketType
	return bracket, nil
}

func (s *stagingService) DeleteBracket(ctx context.Context, companyID, bracketID int) error {
	bracket, err := s.bracketRepo.GetByID(ctx, bracketID)
	if err != nil {
		if errors.Is(err, repositories.ErrBracketNotFound) {
			return ErrBracketNotFound
		}
		return fmt.Errorf("failed to get bracket %d: %w", bracketID, err)
	}
	if _, err := s.getOwnedStage(ctx, bracket.StageID, companyID); err != nil {
		return err
	}
	if bracket.BracketType == models.BracketTypeMain {
		return ErrMainBracketUndeletable
	}

	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.matchRepo.DetachByBracket(ctx, tx, bracketID); err != nil {
			return fmt.Errorf("failed to detach matches of bracket %d: %w", bracketID, err)
		}
		if err := s.bracketRepo.Tombstone(ctx, tx, bracketID); err != nil {
			if errors.Is(err, repositories.ErrBracketNotFound) {
				return ErrBracketNotFound
			}
			return fmt.Errorf("failed to tombstone bracket %d: %w", bracketID, err)
		}
		return nil
	})
}

func (s *stagingService) AssignCouplesToGroups(ctx context.Context, companyID, stageID int, method AssignmentMethod) ([]models.GroupAssignment, error) {
	stage, err := s.getOwnedStage(ctx, stageID, companyID)
	if err != nil {
		return nil, err
	}
	if stage.StageType != models.StageTypeGroup {
		return nil, fmt.Errorf("%w: couples are assigned to group stages", ErrStageTypeMismatch)
	}

	switch method {
	case AssignmentRandom, AssignmentSeeded:
	case AssignmentBalanced:
		return nil, fmt.Errorf("%w: balanced assignment", ErrNotImplemented)
	default:
		return nil, ErrAssignInvalidMethod
	}

	groups, err := s.groupRepo.ListByStage(ctx, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups of stage %d: %w", stageID, err)
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("%w: stage %d has no groups to assign into", ErrGroupNotFound, stageID)
	}

	couples, err := s.coupleRepo.ListByTournament(ctx, stage.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list couples: %w", err)
	}

	assigned, err := s.groupRepo.ListStageAssignments(ctx, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stage %d assignments: %w", stageID, err)
	}
	assignedSet := make(map[int]struct{}, len(assigned))
	for _, a := range assigned {
		assignedSet[a.CoupleID] = struct{}{}
	}

	pending := make([]*models.Couple, 0, len(couples))
	for _, c := range couples {
		if _, ok := assignedSet[c.ID]; !ok {
			pending = append(pending, c)
		}
	}
	if len(pending) == 0 {
		return []models.GroupAssignment{}, nil
	}

	switch method {
	case AssignmentRandom:
		s.rng.Shuffle(len(pending), func(i, j int) {
			pending[i], pending[j] = pending[j], pending[i]
		})
	case AssignmentSeeded:
		if err := s.orderBySeeding(ctx, stage.TournamentID, pending); err != nil {
			return nil, err
		}
	}

	assignments := make([]models.GroupAssignment, 0, len(pending))
	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		for i, couple := range pending {
			group := groups[targetGroupIndex(method, i, len(groups))]

			link, err := s.groupRepo.GetCoupleLink(ctx, group.ID, couple.ID)
			if err != nil && !errors.Is(err, repositories.ErrGroupCoupleNotFound) {
				return fmt.Errorf("failed to check group link: %w", err)
			}
			if link != nil {
				if err := s.groupRepo.ReactivateCoupleLink(ctx, tx, link.ID); err != nil {
					return fmt.Errorf("failed to reactivate group link: %w", err)
				}
			} else {
				newLink := &models.GroupCouple{GroupID: group.ID, CoupleID: couple.ID}
				if err := s.groupRepo.AddCouple(ctx, tx, newLink); err != nil {
					return fmt.Errorf("failed to assign couple %d to group %d: %w", couple.ID, group.ID, err)
				}
			}
			if err := ensureStatsRow(ctx, tx, s.statsRepo, stage.TournamentID, couple.ID, &group.ID); err != nil {
				return err
			}
			assignments = append(assignments, models.GroupAssignment{
				GroupID:   group.ID,
				GroupName: group.Name,
				CoupleID:  couple.ID,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

// targetGroupIndex deals couples round-robin for random assignment and in a
// snake for seeded assignment, so top seeds spread across groups.
func targetGroupIndex(method AssignmentMethod, position, numGroups int) int {
	idx := position % numGroups
	if method == AssignmentSeeded {
		round := position / numGroups
		if round%2 == 1 {
			idx = numGroups - 1 - idx
		}
	}
	return idx
}

// orderBySeeding sorts couples by their tournament-wide standing, best first.
// Couples without a ranked entry keep relative ID order at the tail.
func (s *stagingService) orderBySeeding(ctx context.Context, tournamentID int, couples []*models.Couple) error {
	statsList, err := s.statsRepo.ListByScope(ctx, tournamentID, nil)
	if err != nil {
		return fmt.Errorf("failed to list tournament stats: %w", err)
	}
	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID, repositories.MatchFilter{})
	if err != nil {
		return fmt.Errorf("failed to list tournament matches: %w", err)
	}

	entries := standings.Rank(statsList, matches, nil)
	position := make(map[int]int, len(entries))
	for _, entry := range entries {
		position[entry.CoupleID] = entry.Position
	}

	const unranked = 1 << 30
	sort.SliceStable(couples, func(i, j int) bool {
		pi, ok := position[couples[i].ID]
		if !ok {
			pi = unranked
		}
		pj, ok := position[couples[j].ID]
		if !ok {
			pj = unranked
		}
		if pi != pj {
			return pi < pj
		}
		return couples[i].ID < couples[j].ID
	})
	return nil
}
