package services

import (
	"context"
	"io"
	"time"

	"github.com/Dosada05/padel-system/models"
	"github.com/Dosada05/padel-system/repositories"
	"github.com/Dosada05/padel-system/storage"
)

// Function-field fakes. Each struct embeds its repository interface so only
// the methods a test exercises need a stub; calling anything else panics and
// fails the test loudly.

type fakeTournamentRepo struct {
	repositories.TournamentRepository
	create          func(t *models.Tournament) error
	getByID         func(id int) (*models.Tournament, error)
	listByCompany   func(companyID int, status *models.TournamentStatus) ([]*models.Tournament, error)
	listByStatuses  func(statuses []models.TournamentStatus) ([]*models.Tournament, error)
	update          func(t *models.Tournament) error
	updateStatus    func(id int, status models.TournamentStatus) error
	updatePosterKey func(id int, posterKey *string) error
	delete          func(id int) error
}

func (f *fakeTournamentRepo) Create(_ context.Context, t *models.Tournament) error {
	return f.create(t)
}

func (f *fakeTournamentRepo) GetByID(_ context.Context, id int) (*models.Tournament, error) {
	return f.getByID(id)
}

func (f *fakeTournamentRepo) ListByCompany(_ context.Context, companyID int, status *models.TournamentStatus) ([]*models.Tournament, error) {
	return f.listByCompany(companyID, status)
}

func (f *fakeTournamentRepo) ListByStatuses(_ context.Context, statuses ...models.TournamentStatus) ([]*models.Tournament, error) {
	return f.listByStatuses(statuses)
}

func (f *fakeTournamentRepo) Update(_ context.Context, _ repositories.SQLExecutor, t *models.Tournament) error {
	return f.update(t)
}

func (f *fakeTournamentRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	return f.updateStatus(id, status)
}

func (f *fakeTournamentRepo) UpdatePosterKey(_ context.Context, id int, posterKey *string) error {
	return f.updatePosterKey(id, posterKey)
}

func (f *fakeTournamentRepo) Delete(_ context.Context, id int) error {
	return f.delete(id)
}

// ownedTournamentRepo is the common case: one tournament, looked up by ID.
func ownedTournamentRepo(t *models.Tournament) *fakeTournamentRepo {
	return &fakeTournamentRepo{
		getByID: func(id int) (*models.Tournament, error) {
			if id != t.ID {
				return nil, repositories.ErrTournamentNotFound
			}
			copy := *t
			return &copy, nil
		},
	}
}

type fakeStageRepo struct {
	repositories.StageRepository
	getByID            func(id int) (*models.Stage, error)
	listByTournament   func(tournamentID int) ([]*models.Stage, error)
	previousGroupStage func(tournamentID, beforeOrder int) (*models.Stage, error)
	update             func(stage *models.Stage) error
}

func (f *fakeStageRepo) GetByID(_ context.Context, id int) (*models.Stage, error) {
	return f.getByID(id)
}

func (f *fakeStageRepo) ListByTournament(_ context.Context, tournamentID int) ([]*models.Stage, error) {
	return f.listByTournament(tournamentID)
}

func (f *fakeStageRepo) PreviousGroupStage(_ context.Context, tournamentID, beforeOrder int) (*models.Stage, error) {
	return f.previousGroupStage(tournamentID, beforeOrder)
}

func (f *fakeStageRepo) Update(_ context.Context, _ repositories.SQLExecutor, stage *models.Stage) error {
	return f.update(stage)
}

type fakeGroupRepo struct {
	repositories.GroupRepository
	create               func(group *models.Group) error
	getByID              func(id int) (*models.Group, error)
	listByStage          func(stageID int) ([]*models.Group, error)
	listCouples          func(groupID int) ([]*models.Couple, error)
	listStageAssignments func(stageID int) ([]*models.GroupCouple, error)
	getCoupleLink        func(groupID, coupleID int) (*models.GroupCouple, error)
	removeCouple         func(groupID, coupleID int) error
}

func (f *fakeGroupRepo) Create(_ context.Context, _ repositories.SQLExecutor, group *models.Group) error {
	return f.create(group)
}

func (f *fakeGroupRepo) GetByID(_ context.Context, id int) (*models.Group, error) {
	return f.getByID(id)
}

func (f *fakeGroupRepo) ListByStage(_ context.Context, stageID int) ([]*models.Group, error) {
	return f.listByStage(stageID)
}

func (f *fakeGroupRepo) ListCouples(_ context.Context, groupID int) ([]*models.Couple, error) {
	return f.listCouples(groupID)
}

func (f *fakeGroupRepo) ListStageAssignments(_ context.Context, stageID int) ([]*models.GroupCouple, error) {
	return f.listStageAssignments(stageID)
}

func (f *fakeGroupRepo) GetCoupleLink(_ context.Context, groupID, coupleID int) (*models.GroupCouple, error) {
	return f.getCoupleLink(groupID, coupleID)
}

func (f *fakeGroupRepo) RemoveCouple(_ context.Context, _ repositories.SQLExecutor, groupID, coupleID int) error {
	return f.removeCouple(groupID, coupleID)
}

type fakeBracketRepo struct {
	repositories.BracketRepository
	create             func(bracket *models.Bracket) error
	getByID            func(id int) (*models.Bracket, error)
	listByStage        func(stageID int) ([]*models.Bracket, error)
	findByStageAndType func(stageID int, bracketType models.BracketType) (*models.Bracket, error)
	updateType         func(id int, bracketType models.BracketType) error
}

func (f *fakeBracketRepo) Create(_ context.Context, _ repositories.SQLExecutor, bracket *models.Bracket) error {
	return f.create(bracket)
}

func (f *fakeBracketRepo) GetByID(_ context.Context, id int) (*models.Bracket, error) {
	return f.getByID(id)
}

func (f *fakeBracketRepo) ListByStage(_ context.Context, stageID int) ([]*models.Bracket, error) {
	return f.listByStage(stageID)
}

func (f *fakeBracketRepo) FindByStageAndType(_ context.Context, stageID int, bracketType models.BracketType) (*models.Bracket, error) {
	return f.findByStageAndType(stageID, bracketType)
}

func (f *fakeBracketRepo) UpdateType(_ context.Context, _ repositories.SQLExecutor, id int, bracketType models.BracketType) error {
	return f.updateType(id, bracketType)
}

type fakeCoupleRepo struct {
	repositories.CoupleRepository
	create           func(couple *models.Couple) error
	getByID          func(id int) (*models.Couple, error)
	listByTournament func(tournamentID int) ([]*models.Couple, error)
	listByIDs        func(ids []int) ([]*models.Couple, error)
	findByPlayerPair func(tournamentID, playerA, playerB int) (*models.Couple, error)
	tombstone        func(id int) error
}

func (f *fakeCoupleRepo) Create(_ context.Context, _ repositories.SQLExecutor, couple *models.Couple) error {
	return f.create(couple)
}

func (f *fakeCoupleRepo) GetByID(_ context.Context, id int) (*models.Couple, error) {
	return f.getByID(id)
}

func (f *fakeCoupleRepo) ListByTournament(_ context.Context, tournamentID int) ([]*models.Couple, error) {
	return f.listByTournament(tournamentID)
}

func (f *fakeCoupleRepo) ListByIDs(_ context.Context, ids []int) ([]*models.Couple, error) {
	return f.listByIDs(ids)
}

func (f *fakeCoupleRepo) FindByPlayerPair(_ context.Context, tournamentID, playerA, playerB int) (*models.Couple, error) {
	return f.findByPlayerPair(tournamentID, playerA, playerB)
}

func (f *fakeCoupleRepo) Tombstone(_ context.Context, _ repositories.SQLExecutor, id int) error {
	return f.tombstone(id)
}

// coupleLookupRepo serves GetByID and ListByIDs from a fixed set.
func coupleLookupRepo(couples ...*models.Couple) *fakeCoupleRepo {
	byID := make(map[int]*models.Couple, len(couples))
	for _, c := range couples {
		byID[c.ID] = c
	}
	return &fakeCoupleRepo{
		getByID: func(id int) (*models.Couple, error) {
			c, ok := byID[id]
			if !ok {
				return nil, repositories.ErrCoupleNotFound
			}
			copy := *c
			return &copy, nil
		},
		listByIDs: func(ids []int) ([]*models.Couple, error) {
			found := make([]*models.Couple, 0, len(ids))
			for _, id := range ids {
				if c, ok := byID[id]; ok {
					copy := *c
					found = append(found, &copy)
				}
			}
			return found, nil
		},
	}
}

type fakePlayerRepo struct {
	create        func(player *models.Player) error
	getByID       func(id int) (*models.Player, error)
	listByCompany func(companyID int) ([]*models.Player, error)
	listByIDs     func(ids []int) ([]*models.Player, error)
}

func (f *fakePlayerRepo) Create(_ context.Context, player *models.Player) error {
	return f.create(player)
}

func (f *fakePlayerRepo) GetByID(_ context.Context, id int) (*models.Player, error) {
	return f.getByID(id)
}

func (f *fakePlayerRepo) ListByCompany(_ context.Context, companyID int) ([]*models.Player, error) {
	return f.listByCompany(companyID)
}

func (f *fakePlayerRepo) ListByIDs(_ context.Context, ids []int) ([]*models.Player, error) {
	return f.listByIDs(ids)
}

// playerLookupRepo serves GetByID and ListByIDs from a fixed set.
func playerLookupRepo(players ...*models.Player) *fakePlayerRepo {
	byID := make(map[int]*models.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}
	return &fakePlayerRepo{
		getByID: func(id int) (*models.Player, error) {
			p, ok := byID[id]
			if !ok {
				return nil, repositories.ErrPlayerNotFound
			}
			copy := *p
			return &copy, nil
		},
		listByIDs: func(ids []int) ([]*models.Player, error) {
			found := make([]*models.Player, 0, len(ids))
			for _, id := range ids {
				if p, ok := byID[id]; ok {
					copy := *p
					found = append(found, &copy)
				}
			}
			return found, nil
		},
	}
}

type fakeCourtRepo struct {
	repositories.CourtRepository
	createCourt            func(court *models.Court) error
	getCourtByID           func(id int) (*models.Court, error)
	listCourtsByCompany    func(companyID int) ([]*models.Court, error)
	linkToTournament       func(link *models.TournamentCourt) error
	getLink                func(tournamentID, courtID int) (*models.TournamentCourt, error)
	getLinkAny             func(tournamentID, courtID int) (*models.TournamentCourt, error)
	reactivateLink         func(id int, availabilityStart, availabilityEnd *time.Time) error
	updateLinkAvailability func(id int, availabilityStart, availabilityEnd *time.Time) error
	listByTournament       func(tournamentID int) ([]*models.TournamentCourt, error)
}

func (f *fakeCourtRepo) CreateCourt(_ context.Context, court *models.Court) error {
	return f.createCourt(court)
}

func (f *fakeCourtRepo) GetCourtByID(_ context.Context, id int) (*models.Court, error) {
	return f.getCourtByID(id)
}

func (f *fakeCourtRepo) ListCourtsByCompany(_ context.Context, companyID int) ([]*models.Court, error) {
	return f.listCourtsByCompany(companyID)
}

func (f *fakeCourtRepo) LinkToTournament(_ context.Context, _ repositories.SQLExecutor, link *models.TournamentCourt) error {
	return f.linkToTournament(link)
}

func (f *fakeCourtRepo) GetLink(_ context.Context, tournamentID, courtID int) (*models.TournamentCourt, error) {
	return f.getLink(tournamentID, courtID)
}

func (f *fakeCourtRepo) GetLinkAny(_ context.Context, tournamentID, courtID int) (*models.TournamentCourt, error) {
	return f.getLinkAny(tournamentID, courtID)
}

func (f *fakeCourtRepo) ReactivateLink(_ context.Context, _ repositories.SQLExecutor, id int, availabilityStart, availabilityEnd *time.Time) error {
	return f.reactivateLink(id, availabilityStart, availabilityEnd)
}

func (f *fakeCourtRepo) UpdateLinkAvailability(_ context.Context, _ repositories.SQLExecutor, id int, availabilityStart, availabilityEnd *time.Time) error {
	return f.updateLinkAvailability(id, availabilityStart, availabilityEnd)
}

func (f *fakeCourtRepo) ListByTournament(_ context.Context, tournamentID int) ([]*models.TournamentCourt, error) {
	return f.listByTournament(tournamentID)
}

type fakeMatchRepo struct {
	repositories.MatchRepository
	getByID              func(id int) (*models.Match, error)
	listByTournament     func(tournamentID int, filter repositories.MatchFilter) ([]*models.Match, error)
	listScheduledOnCourt func(courtID int, excludeMatchID *int) ([]*models.Match, error)
	countByGroup         func(groupID int) (int, error)
	countByBracket       func(bracketID int) (int, error)
	updateSchedule       func(id, courtID int, start, end time.Time, isTimeLimited bool, timeLimitMinutes *int) error
	clearSchedule        func(id int) error
}

func (f *fakeMatchRepo) GetByID(_ context.Context, id int) (*models.Match, error) {
	return f.getByID(id)
}

func (f *fakeMatchRepo) ListByTournament(_ context.Context, tournamentID int, filter repositories.MatchFilter) ([]*models.Match, error) {
	return f.listByTournament(tournamentID, filter)
}

func (f *fakeMatchRepo) ListScheduledOnCourt(_ context.Context, courtID int, excludeMatchID *int) ([]*models.Match, error) {
	return f.listScheduledOnCourt(courtID, excludeMatchID)
}

func (f *fakeMatchRepo) CountByGroup(_ context.Context, groupID int) (int, error) {
	return f.countByGroup(groupID)
}

func (f *fakeMatchRepo) CountByBracket(_ context.Context, bracketID int) (int, error) {
	return f.countByBracket(bracketID)
}

func (f *fakeMatchRepo) UpdateSchedule(_ context.Context, _ repositories.SQLExecutor, id int, courtID int, start, end time.Time, isTimeLimited bool, timeLimitMinutes *int) error {
	return f.updateSchedule(id, courtID, start, end, isTimeLimited, timeLimitMinutes)
}

func (f *fakeMatchRepo) ClearSchedule(_ context.Context, _ repositories.SQLExecutor, id int) error {
	return f.clearSchedule(id)
}

type fakeStatsRepo struct {
	repositories.CoupleStatsRepository
	get           func(tournamentID, coupleID int, groupID *int) (*models.CoupleStats, error)
	create        func(stats *models.CoupleStats) error
	addDelta      func(id int, delta models.StatsDelta) error
	subtractDelta func(id int, delta models.StatsDelta) error
	listByScope   func(tournamentID int, groupID *int) ([]*models.CoupleStats, error)
}

func (f *fakeStatsRepo) Get(_ context.Context, tournamentID, coupleID int, groupID *int) (*models.CoupleStats, error) {
	return f.get(tournamentID, coupleID, groupID)
}

func (f *fakeStatsRepo) Create(_ context.Context, _ repositories.SQLExecutor, stats *models.CoupleStats) error {
	return f.create(stats)
}

func (f *fakeStatsRepo) AddDelta(_ context.Context, _ repositories.SQLExecutor, id int, delta models.StatsDelta) error {
	return f.addDelta(id, delta)
}

func (f *fakeStatsRepo) SubtractDelta(_ context.Context, _ repositories.SQLExecutor, id int, delta models.StatsDelta) error {
	return f.subtractDelta(id, delta)
}

func (f *fakeStatsRepo) ListByScope(_ context.Context, tournamentID int, groupID *int) ([]*models.CoupleStats, error) {
	return f.listByScope(tournamentID, groupID)
}

type fakeCompanyRepo struct {
	create     func(company *models.Company) error
	getByID    func(id int) (*models.Company, error)
	getByEmail func(email string) (*models.Company, error)
}

func (f *fakeCompanyRepo) Create(_ context.Context, company *models.Company) error {
	return f.create(company)
}

func (f *fakeCompanyRepo) GetByID(_ context.Context, id int) (*models.Company, error) {
	return f.getByID(id)
}

func (f *fakeCompanyRepo) GetByEmail(_ context.Context, email string) (*models.Company, error) {
	return f.getByEmail(email)
}

type fakeUploader struct {
	uploaded []string
	deleted  []string
	baseURL  string
}

func (f *fakeUploader) Upload(_ context.Context, key, _ string, _ io.Reader) (*storage.UploadResult, error) {
	f.uploaded = append(f.uploaded, key)
	return &storage.UploadResult{Key: key, Location: f.baseURL + "/" + key}, nil
}

func (f *fakeUploader) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeUploader) GetPublicURL(key string) string {
	if f.baseURL == "" {
		return ""
	}
	return f.baseURL + "/" + key
}
