package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/chai-nz/cafe-service/internal/middleware"
	"github.com/chai-nz/cafe-service/internal/models"
	"github.com/chai-nz/cafe-service/internal/service"
)

// OrderHandler handles order-related requests
type OrderHandler struct {
	orderService *service.OrderService
	feed         service.OrderFeed
}

// NewOrderHandler creates a new order handler. feed may be nil when the
// websocket hub is not running.
func NewOrderHandler(orderService *service.OrderService, feed service.OrderFeed) *OrderHandler {
	return &OrderHandler{orderService: orderService, feed: feed}
}

// Create places a new order
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorBody{Message: "Unauthorized"})
		return
	}

	var req models.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Message: "Invalid request body: " + err.Error()})
		return
	}

	order, err := h.orderService.PlaceOrder(r.Context(), actor, req)
	if err != nil {
		respondError(w, err)
		return
	}

	if h.feed != nil {
		h.feed.BroadcastOrderEvent("order.new", map[string]interface{}{
			"order_id":     order.ID,
			"order_number": order.OrderNumber,
			"status":       order.Status,
		})
	}

	respondJSON(w, http.StatusCreated, order)
}

// List lists orders, optionally filtered by status
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorBody{Message: "Unauthorized"})
		return
	}

	var status *models.OrderStatus
	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		s := models.OrderStatus(statusStr)
		if !s.Valid() {
			respondJSON(w, http.StatusUnprocessableEntity, errorBody{Message: "invalid order status"})
			return
		}
		status = &s
	}

	orders, err := h.orderService.ListOrders(r.Context(), actor, status)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, orders)
}

// Get retrieves one order by id
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorBody{Message: "Unauthorized"})
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Message: "Invalid order ID"})
		return
	}

	order, err := h.orderService.GetOrder(r.Context(), actor, id)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, order)
}

// UpdateStatus moves an order through its lifecycle
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorBody{Message: "Unauthorized"})
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Message: "Invalid order ID"})
		return
	}

	var req struct {
		Status string `json:"order_status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Message: "Invalid request body"})
		return
	}

	order, err := h.orderService.UpdateStatus(r.Context(), actor, id, models.OrderStatus(req.Status))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, order)
}

// SessionOrders lists the orders of one guest session
func (h *OrderHandler) SessionOrders(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorBody{Message: "Unauthorized"})
		return
	}

	sessionID := r.PathValue("sessionID")
	if sessionID == "" {
		respondJSON(w, http.StatusBadRequest, errorBody{Message: "session id is required"})
		return
	}

	orders, err := h.orderService.SessionOrders(r.Context(), actor, sessionID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, orders)
}
