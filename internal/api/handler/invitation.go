package handler

import (
	"encoding/json"
	"net/http"

	"github.com/chai-nz/cafe-service/internal/middleware"
	"github.com/chai-nz/cafe-service/internal/models"
	"github.com/chai-nz/cafe-service/internal/service"
)

// InvitationHandler handles the management surface for invitations
type InvitationHandler struct {
	invitationService *service.InvitationService
}

// NewInvitationHandler creates a new invitation handler
func NewInvitationHandler(invitationService *service.InvitationService) *InvitationHandler {
	return &InvitationHandler{invitationService: invitationService}
}

// CreateForTable issues a QR invitation for one table
func (h *InvitationHandler) CreateForTable(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorBody{Message: "Unauthorized"})
		return
	}

	tableNumber := r.PathValue("tableNumber")

	invitation, err := h.invitationService.CreateTableInvitation(r.Context(), actor, tableNumber)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, invitation)
}

// ListForTable lists the live invitations of one table
func (h *InvitationHandler) ListForTable(w http.ResponseWriter, r *http.Request) {
	invitations, err := h.invitationService.ListByTable(r.Context(), r.PathValue("tableNumber"))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, invitations)
}

// List lists all invitations
func (h *InvitationHandler) List(w http.ResponseWriter, r *http.Request) {
	invitations, err := h.invitationService.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, invitations)
}

// Revoke deletes one invitation by token
func (h *InvitationHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorBody{Message: "Unauthorized"})
		return
	}

	invitation, err := h.invitationService.Revoke(r.Context(), actor, r.PathValue("token"))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Invitation revoked",
		"invitation": invitation,
	})
}

// BulkRevoke deletes a batch of invitations by token
func (h *InvitationHandler) BulkRevoke(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorBody{Message: "Unauthorized"})
		return
	}

	var req struct {
		Tokens []string `json:"tokens"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Tokens) == 0 {
		respondJSON(w, http.StatusBadRequest, errorBody{Message: "tokens are required"})
		return
	}

	deleted, err := h.invitationService.BulkRevoke(r.Context(), actor, req.Tokens)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]int64{"revoked": deleted})
}

// Create issues an invitation. A body carrying only a table number produces a
// table invitation; a body with account details runs the legacy staff
// provisioning flow.
func (h *InvitationHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorBody{Message: "Unauthorized"})
		return
	}

	var req models.StaffInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Message: "Invalid request body"})
		return
	}

	if req.Email == "" && req.TableNumber != nil && *req.TableNumber != "" {
		invitation, err := h.invitationService.CreateTableInvitation(r.Context(), actor, *req.TableNumber)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, invitation)
		return
	}

	invitation, err := h.invitationService.CreateStaffInvitation(r.Context(), actor, req)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, invitation)
}
