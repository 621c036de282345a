package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/chai-nz/cafe-service/internal/service"
)

// GuestSessionExpiry enforces the two guest expiry windows after Auth has
// resolved the actor. An expired credential or table account is deleted
// server-side so it can never authenticate again, and the diner is told to
// scan the QR code anew. Non-guest actors pass through untouched.
func GuestSessionExpiry(tokens *service.TokenService, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := GetActor(r.Context())
			if !ok || !actor.IsGuest() {
				next.ServeHTTP(w, r)
				return
			}

			now := time.Now()
			expired := (actor.TokenExpiresAt != nil && now.After(*actor.TokenExpiresAt)) ||
				(actor.AccountExpiresAt != nil && now.After(*actor.AccountExpiresAt))

			if expired {
				if actor.TokenID != nil {
					if err := tokens.Revoke(r.Context(), *actor.TokenID); err != nil {
						log.Warn("failed to revoke expired guest token",
							zap.String("token_id", actor.TokenID.String()),
							zap.Error(err))
					}
				}
				writeError(w, http.StatusUnauthorized,
					"Your session has expired. Please scan the QR code again.",
					"session_expired")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
