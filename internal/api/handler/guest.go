package handler

import (
	"encoding/json"
	"net/http"

	"github.com/chai-nz/cafe-service/internal/service"
)

// GuestHandler handles the public invitation preview and redemption flow
type GuestHandler struct {
	guestService *service.GuestService
}

// NewGuestHandler creates a new guest handler
func NewGuestHandler(guestService *service.GuestService) *GuestHandler {
	return &GuestHandler{guestService: guestService}
}

// Preview returns invitation metadata without consuming the token. Frontends
// call this before showing the "join table" screen.
func (h *GuestHandler) Preview(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if token == "" {
		respondJSON(w, http.StatusBadRequest, errorBody{Message: "invitation token is required"})
		return
	}

	preview, err := h.guestService.Preview(r.Context(), token)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, preview)
}

// Redeem exchanges an invitation token for a guest session
func (h *GuestHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if token == "" {
		respondJSON(w, http.StatusBadRequest, errorBody{Message: "invitation token is required"})
		return
	}

	// The body is optional; a table override is only honored when the
	// invitation itself carries no table number.
	var req struct {
		TableNumber *string `json:"table_number"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	session, err := h.guestService.Redeem(r.Context(), token, req.TableNumber)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}
