package router

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/chai-nz/cafe-service/internal/api/handler"
	"github.com/chai-nz/cafe-service/internal/middleware"
	"github.com/chai-nz/cafe-service/internal/models"
	"github.com/chai-nz/cafe-service/internal/service"
)

// Handlers bundles the HTTP handlers the router wires up
type Handlers struct {
	Auth         *handler.AuthHandler
	Order        *handler.OrderHandler
	Guest        *handler.GuestHandler
	Invitation   *handler.InvitationHandler
	Notification *handler.NotificationHandler
	WebSocket    *handler.WebSocketHandler
}

// Router handles HTTP routing
type Router struct {
	mux      *http.ServeMux
	handlers Handlers
	auth     *service.AuthService
	tokens   *service.TokenService
	log      *zap.Logger
}

// New creates a new router
func New(handlers Handlers, auth *service.AuthService, tokens *service.TokenService, log *zap.Logger) *Router {
	r := &Router{
		mux:      http.NewServeMux(),
		handlers: handlers,
		auth:     auth,
		tokens:   tokens,
		log:      log,
	}

	r.setupRoutes()

	return r
}

// ServeHTTP implements the http.Handler interface
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	middleware.Logger(r.log)(r.mux).ServeHTTP(w, req)
}

// setupRoutes sets up the routes for the router
func (r *Router) setupRoutes() {
	// Public routes
	r.mux.HandleFunc("POST /api/auth/register", r.handlers.Auth.Register)
	r.mux.HandleFunc("POST /api/auth/login", r.handlers.Auth.Login)
	r.mux.HandleFunc("POST /api/auth/otp/send", r.handlers.Auth.SendOTP)
	r.mux.HandleFunc("POST /api/auth/otp/verify", r.handlers.Auth.VerifyOTP)
	r.mux.HandleFunc("GET /api/auth/invitation/{token}", r.handlers.Guest.Preview)
	r.mux.HandleFunc("POST /api/auth/invitation/{token}", r.handlers.Guest.Redeem)

	if r.handlers.WebSocket != nil {
		r.mux.HandleFunc("GET /ws", r.handlers.WebSocket.Serve)
	}

	// Authenticated routes. Guest expiry runs after Auth so expired guest
	// credentials are revoked before any handler sees them.
	r.mux.Handle("GET /api/auth/me", r.protected(http.HandlerFunc(r.handlers.Auth.Me)))
	r.mux.Handle("POST /api/auth/logout", r.protected(http.HandlerFunc(r.handlers.Auth.Logout)))

	r.mux.Handle("POST /api/orders", r.protected(http.HandlerFunc(r.handlers.Order.Create)))
	r.mux.Handle("GET /api/orders", r.protected(http.HandlerFunc(r.handlers.Order.List)))
	r.mux.Handle("GET /api/orders/{id}", r.protected(http.HandlerFunc(r.handlers.Order.Get)))
	r.mux.Handle("PATCH /api/orders/{id}/status", r.staff(http.HandlerFunc(r.handlers.Order.UpdateStatus)))
	r.mux.Handle("GET /api/orders/session/{sessionID}", r.protected(http.HandlerFunc(r.handlers.Order.SessionOrders)))

	r.mux.Handle("GET /api/notifications", r.protected(http.HandlerFunc(r.handlers.Notification.List)))
	r.mux.Handle("GET /api/notifications/unread-count", r.protected(http.HandlerFunc(r.handlers.Notification.UnreadCount)))
	r.mux.Handle("PUT /api/notifications/{id}/read", r.protected(http.HandlerFunc(r.handlers.Notification.MarkRead)))
	r.mux.Handle("PUT /api/notifications/read-all", r.protected(http.HandlerFunc(r.handlers.Notification.MarkAllRead)))

	// Management surface
	r.mux.Handle("POST /api/shop/tables/{tableNumber}/invitation", r.manager(http.HandlerFunc(r.handlers.Invitation.CreateForTable)))
	r.mux.Handle("GET /api/shop/tables/{tableNumber}/invitations", r.manager(http.HandlerFunc(r.handlers.Invitation.ListForTable)))
	r.mux.Handle("GET /api/shop/invitations", r.manager(http.HandlerFunc(r.handlers.Invitation.List)))
	r.mux.Handle("DELETE /api/shop/invitations/{token}", r.manager(http.HandlerFunc(r.handlers.Invitation.Revoke)))
	r.mux.Handle("POST /api/shop/invitations/bulk-revoke", r.manager(http.HandlerFunc(r.handlers.Invitation.BulkRevoke)))

	r.mux.Handle("POST /api/admin/invitations", r.admin(http.HandlerFunc(r.handlers.Invitation.Create)))
}

// protected chains Auth and guest session expiry
func (r *Router) protected(next http.Handler) http.Handler {
	return middleware.Auth(r.auth)(
		middleware.GuestSessionExpiry(r.tokens, r.log)(next),
	)
}

// staff restricts a route to order-managing roles
func (r *Router) staff(next http.Handler) http.Handler {
	return middleware.Auth(r.auth)(
		middleware.RequireRole(models.RoleAdmin, models.RoleShopOwner, models.RoleStaff)(next),
	)
}

// manager restricts a route to invitation-managing roles
func (r *Router) manager(next http.Handler) http.Handler {
	return middleware.Auth(r.auth)(
		middleware.RequireRole(models.RoleAdmin, models.RoleShopOwner)(next),
	)
}

// admin restricts a route to administrators
func (r *Router) admin(next http.Handler) http.Handler {
	return middleware.Auth(r.auth)(
		middleware.RequireRole(models.RoleAdmin)(next),
	)
}
