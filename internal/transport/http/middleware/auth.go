package middleware

import (
	"context"
	"net/http"
	"strings"

	"ptohub/internal/domain/auth"
	"ptohub/internal/domain/pto"
)

// Auth resolves a bearer token into the acting user. Requests without a
// valid token pass through unauthenticated; route handlers decide whether an
// actor is required.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseToken(secret, parts[1])
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyActor, pto.Actor{
				ID:    claims.UserID,
				Email: claims.Email,
				Role:  claims.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetActor(ctx context.Context) (pto.Actor, bool) {
	actor, ok := ctx.Value(ctxKeyActor).(pto.Actor)
	return actor, ok
}
