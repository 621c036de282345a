package handler

import (
	"net/http"

	"github.com/chai-nz/cafe-service/internal/service"
	"github.com/chai-nz/cafe-service/internal/websockets"
)

// WebSocketHandler upgrades staff dashboard connections onto the order feed
type WebSocketHandler struct {
	authService *service.AuthService
	hub         *websockets.Hub
}

// NewWebSocketHandler creates a new websocket handler
func NewWebSocketHandler(authService *service.AuthService, hub *websockets.Hub) *WebSocketHandler {
	return &WebSocketHandler{authService: authService, hub: hub}
}

// Serve authenticates and upgrades the connection. Browsers cannot set an
// Authorization header on websocket upgrades, so the credential arrives as a
// query parameter.
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondJSON(w, http.StatusUnauthorized, errorBody{Message: "token is required"})
		return
	}

	actor, err := h.authService.ResolveActor(r.Context(), token)
	if err != nil {
		respondJSON(w, http.StatusUnauthorized, errorBody{Message: "Invalid or expired token"})
		return
	}
	if !actor.CanManageOrders() {
		respondJSON(w, http.StatusForbidden, errorBody{Message: "Forbidden"})
		return
	}

	clientType := websockets.ClientTypeStaff
	if actor.IsAdmin() {
		clientType = websockets.ClientTypeAdmin
	}

	conn, err := websockets.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written the error response
		return
	}

	websockets.ServeWs(h.hub, conn, actor.UserID.String(), clientType)
}
