package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/chai-nz/cafe-service/internal/middleware"
	"github.com/chai-nz/cafe-service/internal/service"
)

// NotificationHandler serves the polling endpoints for notifications
type NotificationHandler struct {
	notificationService *service.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// List returns the latest notifications for the actor
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorBody{Message: "Unauthorized"})
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, _ = strconv.Atoi(limitStr)
	}

	notifications, err := h.notificationService.ListForUser(r.Context(), actor, limit)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, notifications)
}

// UnreadCount returns the unread total for the actor
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorBody{Message: "Unauthorized"})
		return
	}

	count, err := h.notificationService.UnreadCount(r.Context(), actor)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]int64{"unread_count": count})
}

// MarkRead marks one notification as read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorBody{Message: "Unauthorized"})
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Message: "Invalid notification ID"})
		return
	}

	if err := h.notificationService.MarkRead(r.Context(), actor, id); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Notification marked as read"})
}

// MarkAllRead marks every notification of the actor as read
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorBody{Message: "Unauthorized"})
		return
	}

	updated, err := h.notificationService.MarkAllRead(r.Context(), actor)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]int64{"marked_read": updated})
}
