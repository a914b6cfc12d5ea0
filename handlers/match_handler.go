package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Dosada05/padel-system/middleware"
	"github.com/Dosada05/padel-system/models"
	"github.com/Dosada05/padel-system/repositories"
	"github.com/Dosada05/padel-system/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(ms services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: ms}
}

// GetByIDHandler handles GET /matches/{matchID}
func (h *MatchHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListByTournamentHandler handles GET /tournaments/{tournamentID}/matches with
// optional stage_id, group_id, bracket_id, court_id, status, scheduled and
// unscheduled query filters.
func (h *MatchHandler) ListByTournamentHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	filter, err := parseMatchFilter(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.matchService.ListByTournament(r.Context(), tournamentID, filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateResultHandler handles PATCH /matches/{matchID}/result
func (h *MatchHandler) UpdateResultHandler(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.GetCompanyIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to update match result")
		return
	}

	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateMatchResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.UpdateResult(r.Context(), companyID, id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteHandler handles DELETE /matches/{matchID}
func (h *MatchHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.GetCompanyIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to delete match")
		return
	}

	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.matchService.Delete(r.Context(), companyID, id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseMatchFilter(r *http.Request) (repositories.MatchFilter, error) {
	var filter repositories.MatchFilter
	query := r.URL.Query()

	parseID := func(param string) (*int, error) {
		raw := query.Get(param)
		if raw == "" {
			return nil, nil
		}
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			return nil, errors.New("invalid " + param + " query parameter")
		}
		return &id, nil
	}

	var err error
	if filter.StageID, err = parseID("stage_id"); err != nil {
		return filter, err
	}
	if filter.GroupID, err = parseID("group_id"); err != nil {
		return filter, err
	}
	if filter.BracketID, err = parseID("bracket_id"); err != nil {
		return filter, err
	}
	if filter.CourtID, err = parseID("court_id"); err != nil {
		return filter, err
	}

	if statusStr := query.Get("status"); statusStr != "" {
		status := models.MatchResultStatus(statusStr)
		filter.ResultStatus = &status
	}
	if query.Get("unscheduled") == "true" {
		filter.OnlyUnscheduled = true
	}
	if query.Get("scheduled") == "true" {
		filter.OnlyScheduled = true
	}

	return filter, nil
}
