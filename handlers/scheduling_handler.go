package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Dosada05/padel-system/middleware"
	"github.com/Dosada05/padel-system/services"
)

const availabilityDateLayout = "2006-01-02"

type SchedulingHandler struct {
	schedulingService services.SchedulingService
}

func NewSchedulingHandler(ss services.SchedulingService) *SchedulingHandler {
	return &SchedulingHandler{schedulingService: ss}
}

// ScheduleMatchHandler handles PUT /matches/{matchID}/schedule
func (h *SchedulingHandler) ScheduleMatchHandler(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.GetCompanyIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to schedule match")
		return
	}

	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.ScheduleMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.CourtID <= 0 {
		badRequestResponse(w, r, errors.New("court_id is required"))
		return
	}

	match, err := h.schedulingService.ScheduleMatch(r.Context(), companyID, matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UnscheduleMatchHandler handles DELETE /matches/{matchID}/schedule
func (h *SchedulingHandler) UnscheduleMatchHandler(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.GetCompanyIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to unschedule match")
		return
	}

	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.schedulingService.UnscheduleMatch(r.Context(), companyID, matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AutoScheduleHandler handles POST /tournaments/{tournamentID}/schedule/auto
func (h *SchedulingHandler) AutoScheduleHandler(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.GetCompanyIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to auto-schedule matches")
		return
	}

	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.AutoScheduleInput
	if r.ContentLength != 0 {
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	matches, err := h.schedulingService.AutoScheduleMatches(r.Context(), companyID, tournamentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CalculateOrderHandler handles POST /tournaments/{tournamentID}/schedule/order
// with optional stage_id and strategy query parameters.
func (h *SchedulingHandler) CalculateOrderHandler(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.GetCompanyIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to reorder matches")
		return
	}

	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	query := r.URL.Query()

	var stageID *int
	if stageIDStr := query.Get("stage_id"); stageIDStr != "" {
		id, err := strconv.Atoi(stageIDStr)
		if err != nil || id <= 0 {
			badRequestResponse(w, r, errors.New("invalid stage_id query parameter"))
			return
		}
		stageID = &id
	}

	strategy := services.OrderingStrategy(query.Get("strategy"))

	matches, err := h.schedulingService.CalculateOptimalMatchOrder(r.Context(), companyID, tournamentID, stageID, strategy)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CourtAvailabilityHandler handles GET /tournaments/{tournamentID}/courts/availability
// for a single day given by the date query parameter (YYYY-MM-DD, default today).
func (h *SchedulingHandler) CourtAvailabilityHandler(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.GetCompanyIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to view court availability")
		return
	}

	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	day := time.Now().UTC().Truncate(24 * time.Hour)
	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		parsed, err := time.Parse(availabilityDateLayout, dateStr)
		if err != nil {
			badRequestResponse(w, r, fmt.Errorf("invalid date query parameter, expected %s", availabilityDateLayout))
			return
		}
		day = parsed
	}

	availability, err := h.schedulingService.GetCourtAvailability(r.Context(), companyID, tournamentID, day)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"date": day.Format(availabilityDateLayout), "courts": availability}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
