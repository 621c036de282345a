package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/chai-nz/cafe-service/internal/models"
	"github.com/chai-nz/cafe-service/internal/service"
)

// contextKey is a type for context keys
type contextKey string

// ActorKey holds the resolved request actor
const ActorKey contextKey = "actor"

// Auth middleware resolves the bearer credential into an actor. JWTs and
// opaque guest tokens are both accepted.
func Auth(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "Authorization header required", "")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				writeError(w, http.StatusUnauthorized, "Invalid Authorization header format", "")
				return
			}

			actor, err := authService.ResolveActor(r.Context(), parts[1])
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Invalid or expired token", "")
				return
			}

			ctx := context.WithValue(r.Context(), ActorKey, *actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole middleware for checking user roles
func RequireRole(roles ...models.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := GetActor(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "Unauthorized", "")
				return
			}

			allowed := false
			for _, role := range roles {
				if actor.Role == role {
					allowed = true
					break
				}
			}
			if !allowed {
				writeError(w, http.StatusForbidden, "Forbidden", "")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetActor extracts the resolved actor from the request context
func GetActor(ctx context.Context) (models.Actor, bool) {
	actor, ok := ctx.Value(ActorKey).(models.Actor)
	return actor, ok
}

// writeError emits a JSON error body. code is optional and lets clients
// branch without parsing the message.
func writeError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	body := map[string]string{"message": message}
	if code != "" {
		body["code"] = code
	}
	json.NewEncoder(w).Encode(body)
}
