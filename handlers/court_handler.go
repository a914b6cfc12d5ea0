package handlers

import (
	"net/http"

	"github.com/Dosada05/padel-system/middleware"
	"github.com/Dosada05/padel-system/services"
)

type CourtHandler struct {
	courtService services.CourtService
}

func NewCourtHandler(cs services.CourtService) *CourtHandler {
	return &CourtHandler{courtService: cs}
}

// CreateHandler handles POST /courts
func (h *CourtHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.GetCompanyIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to create court")
		return
	}

	var input services.CreateCourtInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	court, err := h.courtService.CreateCourt(r.Context(), companyID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"court": court}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler handles GET /courts for the authenticated company.
func (h *CourtHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.GetCompanyIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to list courts")
		return
	}

	courts, err := h.courtService.ListCourts(r.Context(), companyID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"courts": courts}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// LinkHandler handles POST /tournaments/{tournamentID}/courts/{courtID}
func (h *CourtHandler) LinkHandler(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.GetCompanyIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to link court")
		return
	}

	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	courtID, err := getIDFromURL(r, "courtID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CourtAvailabilityInput
	if r.ContentLength != 0 {
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	link, err := h.courtService.LinkToTournament(r.Context(), companyID, tournamentID, courtID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament_court": link}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateAvailabilityHandler handles PATCH /tournaments/{tournamentID}/courts/{courtID}
func (h *CourtHandler) UpdateAvailabilityHandler(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.GetCompanyIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to update court availability")
		return
	}

	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	courtID, err := getIDFromURL(r, "courtID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CourtAvailabilityInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	link, err := h.courtService.UpdateAvailability(r.Context(), companyID, tournamentID, courtID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament_court": link}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListTournamentCourtsHandler handles GET /tournaments/{tournamentID}/courts
func (h *CourtHandler) ListTournamentCourtsHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	links, err := h.courtService.ListTournamentCourts(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament_courts": links}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UnlinkHandler handles DELETE /tournaments/{tournamentID}/courts/{courtID}
func (h *CourtHandler) UnlinkHandler(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.GetCompanyIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to unlink court")
		return
	}

	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	courtID, err := getIDFromURL(r, "courtID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.courtService.UnlinkFromTournament(r.Context(), companyID, tournamentID, courtID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
