package handlers

import (
	"net/http"

	"github.com/Dosada05/padel-system/middleware"
	"github.com/Dosada05/padel-system/services"
)

type CoupleHandler struct {
	coupleService services.CoupleService
}

func NewCoupleHandler(cs services.CoupleService) *CoupleHandler {
	return &CoupleHandler{coupleService: cs}
}

// CreateHandler handles POST /tournaments/{tournamentID}/couples
func (h *CoupleHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.GetCompanyIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to register couple")
		return
	}

	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CreateCoupleInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	couple, err := h.coupleService.Create(r.Context(), companyID, tournamentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"couple": couple}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler handles GET /couples/{coupleID}
func (h *CoupleHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "coupleID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	couple, err := h.coupleService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"couple": couple}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListByTournamentHandler handles GET /tournaments/{tournamentID}/couples
func (h *CoupleHandler) ListByTournamentHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	couples, err := h.coupleService.ListByTournament(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"couples": couples}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RemoveHandler handles DELETE /couples/{coupleID}
func (h *CoupleHandler) RemoveHandler(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.GetCompanyIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to remove couple")
		return
	}

	id, err := getIDFromURL(r, "coupleID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.coupleService.Remove(r.Context(), companyID, id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
