package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Dosada05/padel-system/middleware"
	"github.com/Dosada05/padel-system/models"
	"github.com/Dosada05/padel-system/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
	standingsService  services.StandingsService
}

func NewTournamentHandler(ts services.TournamentService, ss services.StandingsService) *TournamentHandler {
	return &TournamentHandler{
		tournamentService: ts,
		standingsService:  ss,
	}
}

// CreateHandler handles POST /tournaments
func (h *TournamentHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.GetCompanyIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to create tournament")
		return
	}

	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.Create(r.Context(), companyID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler handles GET /tournaments for the authenticated company.
func (h *TournamentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.GetCompanyIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to list tournaments")
		return
	}

	var status *models.TournamentStatus
	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		s := models.TournamentStatus(statusStr)
		status = &s
	}

	tournaments, err := h.tournamentService.ListByCompany(r.Context(), companyID, status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler handles GET /tournaments/{tournamentID}
func (h *TournamentHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetFullHandler handles GET /tournaments/{tournamentID}/full and returns the
// tournament together with its stages, couples, courts and matches.
func (h *TournamentHandler) GetFullHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.GetFull(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateHandler handles PATCH /tournaments/{tournamentID}
func (h *TournamentHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.GetCompanyIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to update tournament")
		return
	}

	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.Update(r.Context(), companyID, id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateStatusHandler handles PATCH /tournaments/{tournamentID}/status
func (h *TournamentHandler) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.GetCompanyIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to update tournament status")
		return
	}

	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Status models.TournamentStatus `json:"status"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Status == "" {
		badRequestResponse(w, r, errors.New("status is required"))
		return
	}

	tournament, err := h.tournamentService.UpdateStatus(r.Context(), companyID, id, input.Status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UploadPosterHandler handles POST /tournaments/{tournamentID}/poster
func (h *TournamentHandler) UploadPosterHandler(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.GetCompanyIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to upload poster")
		return
	}

	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		badRequestResponse(w, r, fmt.Errorf("failed to parse multipart form: %w", err))
		return
	}

	file, header, err := r.FormFile("poster")
	if err != nil {
		badRequestResponse(w, r, fmt.Errorf("failed to get poster file from form: %w", err))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		badRequestResponse(w, r, errors.New("content-type header is required for poster"))
		return
	}

	tournament, err := h.tournamentService.UploadPoster(r.Context(), companyID, id, contentType, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteHandler handles DELETE /tournaments/{tournamentID}
func (h *TournamentHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.GetCompanyIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to delete tournament")
		return
	}

	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.Delete(r.Context(), companyID, id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// StandingsHandler handles GET /tournaments/{tournamentID}/standings with an
// optional group_id query parameter to narrow the table to one group.
func (h *TournamentHandler) StandingsHandler(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.GetCompanyIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to view standings")
		return
	}

	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var groupID *int
	if groupIDStr := r.URL.Query().Get("group_id"); groupIDStr != "" {
		gid, err := strconv.Atoi(groupIDStr)
		if err != nil || gid <= 0 {
			badRequestResponse(w, r, errors.New("invalid group_id query parameter"))
			return
		}
		groupID = &gid
	}

	standings, err := h.standingsService.GetTournamentStandings(r.Context(), companyID, id, groupID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RecalculateStatsHandler handles POST /tournaments/{tournamentID}/stats/recalculate
// and rebuilds couple statistics from completed match results.
func (h *TournamentHandler) RecalculateStatsHandler(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.GetCompanyIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to recalculate stats")
		return
	}

	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var groupID *int
	if groupIDStr := r.URL.Query().Get("group_id"); groupIDStr != "" {
		gid, err := strconv.Atoi(groupIDStr)
		if err != nil || gid <= 0 {
			badRequestResponse(w, r, errors.New("invalid group_id query parameter"))
			return
		}
		groupID = &gid
	}

	if err := h.standingsService.RecalculateStats(r.Context(), companyID, id, groupID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "statistics recalculated"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
