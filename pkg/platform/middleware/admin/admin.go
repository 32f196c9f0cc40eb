// Package admin guards court-clerk routes with a shared token and carries the
// acting clerk into the request context for audit attribution.
package admin

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"

	dErrors "courthouse/pkg/domain-errors"
	"courthouse/pkg/platform/httputil"
	request "courthouse/pkg/platform/middleware/request"
)

const (
	TokenHeader = "X-Court-Token"
	ActorHeader = "X-Court-Actor"
)

type contextKeyActor struct{}

// WithActor stores the acting clerk or official in ctx.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, contextKeyActor{}, actor)
}

// GetActor returns the actor set by RequireToken, or "".
func GetActor(ctx context.Context) string {
	if actor, ok := ctx.Value(contextKeyActor{}).(string); ok {
		return actor
	}
	return ""
}

// RequireToken rejects requests whose X-Court-Token does not match expected.
// An empty expected token rejects everything.
func RequireToken(expected string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token := r.Header.Get(TokenHeader)
			if expected == "" || subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
				logger.WarnContext(ctx, "court token mismatch",
					"request_id", request.GetRequestID(ctx),
					"path", r.URL.Path,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "court token required"))
				return
			}
			if actor := r.Header.Get(ActorHeader); actor != "" {
				ctx = WithActor(ctx, actor)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
