package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"bookline/pkg/logger"
	"bookline/pkg/model"
)

const ActorKey contextKey = "actor"

// OptionalAuth resolves a bearer token into an Actor when one is present.
// Requests without a token, or with a bad or expired one, proceed as
// anonymous; role enforcement happens at the handlers. When secret is empty
// every caller is anonymous.
func OptionalAuth(secret string, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				next.ServeHTTP(w, r)
				return
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				log.Debug("Treating request as anonymous, token rejected",
					"request_id", RequestIDFromContext(r.Context()),
					"error", err,
				)
				next.ServeHTTP(w, r)
				return
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			actor := model.Actor{}
			if sub, ok := claims["sub"].(string); ok {
				actor.ID = sub
			}
			if email, ok := claims["email"].(string); ok {
				actor.Email = email
			}
			if role, ok := claims["role"].(string); ok {
				actor.Role = role
			}

			ctx := context.WithValue(r.Context(), ActorKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFromContext returns the resolved actor, or the anonymous zero value.
func ActorFromContext(ctx context.Context) model.Actor {
	if actor, ok := ctx.Value(ActorKey).(model.Actor); ok {
		return actor
	}
	return model.Actor{}
}
