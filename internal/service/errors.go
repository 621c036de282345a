package service

import (
	"errors"
	"fmt"

	"github.com/chai-nz/cafe-service/internal/models"
)

var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrNotFound            = errors.New("not found")
	ErrInvalidCredentials  = errors.New("the provided credentials are incorrect")
	ErrEmptyOrder          = errors.New("order must contain at least one item")
	ErrInvalidQuantity     = errors.New("item quantity must be at least 1")
	ErrInvalidSugarLevel   = errors.New("invalid sugar level")
	ErrInvalidStatus       = errors.New("invalid order status")
	ErrMissingGuestContext = errors.New("guest orders require a session id and table number")
	ErrInvitationNotFound  = errors.New("invalid invitation link")
	ErrInvitationInvalid   = errors.New("this invitation has expired or already been used")
	ErrTableNumberRequired = errors.New("table number is required")
	ErrTableNumberTooLong  = errors.New("table number must be at most 10 characters")
	ErrSessionExpired      = errors.New("guest session has expired, please scan the QR code again")
	ErrOTPInvalid          = errors.New("the provided OTP is invalid or expired")
	ErrEmailTaken          = errors.New("email already in use")
)

// ProductUnavailableError names the product that cannot be ordered
type ProductUnavailableError struct {
	Name string
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("product %q is not available", e.Name)
}

// ToppingUnavailableError names the topping that cannot be ordered
type ToppingUnavailableError struct {
	Name string
}

func (e *ToppingUnavailableError) Error() string {
	return fmt.Sprintf("topping %q is not available", e.Name)
}

// ToppingNotOfferedError names a topping requested for a product that does
// not offer it.
type ToppingNotOfferedError struct {
	Topping string
	Product string
}

func (e *ToppingNotOfferedError) Error() string {
	return fmt.Sprintf("topping %q is not available for product %q", e.Topping, e.Product)
}

// ActiveOrderExistsError carries the order that blocks a duplicate placement
type ActiveOrderExistsError struct {
	Existing *models.Order
}

func (e *ActiveOrderExistsError) Error() string {
	return fmt.Sprintf("an active order %s already exists for this session", e.Existing.OrderNumber)
}

// InvalidTransitionError reports a backward move in the order lifecycle
type InvalidTransitionError struct {
	From models.OrderStatus
	To   models.OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("order status cannot move from %s to %s", e.From, e.To)
}

// TableAlreadyInvitedError carries the invitation that blocks a new one
type TableAlreadyInvitedError struct {
	TableNumber string
	Existing    *models.UserInvitation
}

func (e *TableAlreadyInvitedError) Error() string {
	return fmt.Sprintf("table %s already has an active invitation", e.TableNumber)
}
