package handlers

import (
	"net/http"

	"github.com/Dosada05/padel-system/middleware"
	"github.com/Dosada05/padel-system/services"
)

type PlayerHandler struct {
	playerService services.PlayerService
}

func NewPlayerHandler(ps services.PlayerService) *PlayerHandler {
	return &PlayerHandler{playerService: ps}
}

// CreateHandler handles POST /players
func (h *PlayerHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.GetCompanyIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to create player")
		return
	}

	var input services.CreatePlayerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.Create(r.Context(), companyID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler handles GET /players/{playerID}
func (h *PlayerHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.GetCompanyIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to view player")
		return
	}

	id, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.GetByID(r.Context(), companyID, id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler handles GET /players for the authenticated company.
func (h *PlayerHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	companyID, err := middleware.GetCompanyIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to list players")
		return
	}

	players, err := h.playerService.ListByCompany(r.Context(), companyID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"players": players}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
