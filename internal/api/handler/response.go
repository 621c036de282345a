package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/chai-nz/cafe-service/internal/service"
)

// respondJSON writes a JSON body with the given status
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// errorBody is the common error envelope. Extra carries typed payloads such
// as the blocking order on a duplicate placement.
type errorBody struct {
	Message string      `json:"message"`
	Code    string      `json:"code,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// respondError maps service errors onto HTTP statuses. Validation and
// catalog failures are 422, conflicts carry the blocking resource, and
// anything unrecognized is a 500 with a generic body.
func respondError(w http.ResponseWriter, err error) {
	var (
		productUnavailable *service.ProductUnavailableError
		toppingUnavailable *service.ToppingUnavailableError
		toppingNotOffered  *service.ToppingNotOfferedError
		activeOrder        *service.ActiveOrderExistsError
		invalidTransition  *service.InvalidTransitionError
		tableInvited       *service.TableAlreadyInvitedError
	)

	switch {
	case errors.As(err, &activeOrder):
		respondJSON(w, http.StatusConflict, errorBody{
			Message: err.Error(),
			Code:    "active_order_exists",
			Data:    map[string]interface{}{"existing_order": activeOrder.Existing},
		})
	case errors.As(err, &tableInvited):
		respondJSON(w, http.StatusConflict, errorBody{
			Message: err.Error(),
			Code:    "table_already_invited",
			Data:    map[string]interface{}{"existing_invitation": tableInvited.Existing},
		})
	case errors.As(err, &invalidTransition):
		respondJSON(w, http.StatusConflict, errorBody{
			Message: err.Error(),
			Code:    "invalid_transition",
		})
	case errors.As(err, &productUnavailable),
		errors.As(err, &toppingUnavailable),
		errors.As(err, &toppingNotOffered),
		errors.Is(err, service.ErrEmptyOrder),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidSugarLevel),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrMissingGuestContext),
		errors.Is(err, service.ErrTableNumberRequired),
		errors.Is(err, service.ErrTableNumberTooLong),
		errors.Is(err, service.ErrEmailTaken):
		respondJSON(w, http.StatusUnprocessableEntity, errorBody{Message: err.Error()})
	case errors.Is(err, service.ErrUnauthorized):
		respondJSON(w, http.StatusForbidden, errorBody{Message: "Forbidden"})
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrInvitationNotFound):
		respondJSON(w, http.StatusNotFound, errorBody{Message: err.Error()})
	case errors.Is(err, service.ErrInvitationInvalid):
		respondJSON(w, http.StatusBadRequest, errorBody{Message: err.Error()})
	case errors.Is(err, service.ErrSessionExpired):
		respondJSON(w, http.StatusUnauthorized, errorBody{
			Message: err.Error(),
			Code:    "session_expired",
		})
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrOTPInvalid):
		respondJSON(w, http.StatusUnauthorized, errorBody{Message: err.Error()})
	default:
		respondJSON(w, http.StatusInternalServerError, errorBody{Message: "Internal server error"})
	}
}
