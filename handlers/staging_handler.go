package handlers

import (
	"net/http"

	"github.com/Dosada05/padel-system/middleware"
	"github.com/Dosada05/padel-system/models"
	"github.com/Dosada05/padel-system/services"
)

// StagingHandler exposes the tournament structure endpoints: stages, groups,
// group rosters, brackets, bulk couple assignment and match generation.
type StagingHandler struct {
	stagingService    services.StagingService
	generationService services.GenerationService
	standingsService  services.StandingsService
}

func NewStagingHandler(
	sts services.StagingService,
	gs services.GenerationService,
	ss services.StandingsService,
) *StagingHandler {
	return &StagingHandler{
		stagingService:    sts,
		generationService: gs,
		standingsService:  ss,
	}
}

// CreateStageHandler handles POST /tournaments/{tournamentID}/stages
func (h *StagingHandler) CreateStageHandler(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.GetCompanyIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to create stage")
		return
	}

	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CreateStageInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	stage, err := h.stagingService.CreateStage(r.Context(), companyID, tournamentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"stage": stage}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetStageHandler handles GET /stages/{stageID}
func (h *StagingHandler) GetStageHandler(w http.ResponseWriter, r *http.Request) {
	stageID, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	stage, err := h.stagingService.GetStage(r.Context(), stageID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"stage": stage}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListStagesHandler handles GET /tournaments/{tournamentID}/stages
func (h *StagingHandler) ListStagesHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	stages, err := h.stagingService.ListStages(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"stages": stages}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateStageHandler handles PATCH /stages/{stageID}
func (h *StagingHandler) UpdateStageHandler(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.GetCompanyIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to update stage")
		return
	}

	stageID, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateStageInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	stage, err := h.stagingService.UpdateStage(r.Context(), companyID, stageID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"stage": stage}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteStageHandler handles DELETE /stages/{stageID}
func (h *StagingHandler) DeleteStageHandler(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.GetCompanyIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to delete stage")
		return
	}

	stageID, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.stagingService.DeleteStage(r.Context(), companyID, stageID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateGroupHandler handles POST /stages/{stageID}/groups
func (h *StagingHandler) CreateGroupHandler(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.GetCompanyIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to create group")
		return
	}

	stageID, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CreateGroupInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	group, err := h.stagingService.CreateGroup(r.Context(), companyID, stageID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"group": group}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteGroupHandler handles DELETE /groups/{groupID}
func (h *StagingHandler) DeleteGroupHandler(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.GetCompanyIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to delete group")
		return
	}

	groupID, err := getIDFromURL(r, "groupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.stagingService.DeleteGroup(r.Context(), companyID, groupID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddCoupleToGroupHandler handles POST /groups/{groupID}/couples/{coupleID}
func (h *StagingHandler) AddCoupleToGroupHandler(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.GetCompanyIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to modify group roster")
		return
	}

	groupID, err := getIDFromURL(r, "groupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	coupleID, err := getIDFromURL(r, "coupleID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.stagingService.AddCoupleToGroup(r.Context(), companyID, groupID, coupleID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "couple added to group"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RemoveCoupleFromGroupHandler handles DELETE /groups/{groupID}/couples/{coupleID}
func (h *StagingHandler) RemoveCoupleFromGroupHandler(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.GetCompanyIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to modify group roster")
		return
	}

	groupID, err := getIDFromURL(r, "groupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	coupleID, err := getIDFromURL(r, "coupleID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.stagingService.RemoveCoupleFromGroup(r.Context(), companyID, groupID, coupleID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListGroupCouplesHandler handles GET /groups/{groupID}/couples
func (h *StagingHandler) ListGroupCouplesHandler(w http.ResponseWriter, r *http.Request) {
	groupID, err := getIDFromURL(r, "groupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	couples, err := h.stagingService.ListGroupCouples(r.Context(), groupID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"couples": couples}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GroupStandingsHandler handles GET /groups/{groupID}/standings
func (h *StagingHandler) GroupStandingsHandler(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.GetCompanyIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to view group standings")
		return
	}

	groupID, err := getIDFromURL(r, "groupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	standings, err := h.standingsService.GetGroupStandings(r.Context(), companyID, groupID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CreateBracketHandler handles POST /stages/{stageID}/brackets
func (h *StagingHandler) CreateBracketHandler(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.GetCompanyIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to create bracket")
		return
	}

	stageID, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		BracketType models.BracketType `json:"bracket_type"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	bracket, err := h.stagingService.CreateBracket(r.Context(), companyID, stageID, input.BracketType)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"bracket": bracket}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateBracketHandler handles PATCH /brackets/{bracketID}
func (h *StagingHandler) UpdateBracketHandler(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.GetCompanyIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to update bracket")
		return
	}

	bracketID, err := getIDFromURL(r, "bracketID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		BracketType models.BracketType `json:"bracket_type"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	bracket, err := h.stagingService.UpdateBracketType(r.Context(), companyID, bracketID, input.BracketType)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": bracket}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteBracketHandler handles DELETE /brackets/{bracketID}
func (h *StagingHandler) DeleteBracketHandler(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.GetCompanyIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to delete bracket")
		return
	}

	bracketID, err := getIDFromURL(r, "bracketID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.stagingService.DeleteBracket(r.Context(), companyID, bracketID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AssignCouplesHandler handles POST /stages/{stageID}/assign-couples
func (h *StagingHandler) AssignCouplesHandler(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.GetCompanyIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to assign couples")
		return
	}

	stageID, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Method services.AssignmentMethod `json:"method"`
	}
	if r.ContentLength != 0 {
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}
	if input.Method == "" {
		input.Method = services.AssignmentRandom
	}

	assignments, err := h.stagingService.AssignCouplesToGroups(r.Context(), companyID, stageID, input.Method)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"assignments": assignments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GenerateMatchesHandler handles POST /stages/{stageID}/matches/generate
func (h *StagingHandler) GenerateMatchesHandler(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.GetCompanyIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to generate matches")
		return
	}

	stageID, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.GenerateMatchesInput
	if r.ContentLength != 0 {
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	matches, err := h.generationService.GenerateStageMatches(r.Context(), companyID, stageID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
