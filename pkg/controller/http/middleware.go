package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gasyway/gasyway/pkg/domain/model"
	"github.com/gasyway/gasyway/pkg/usecase"
	"github.com/gasyway/gasyway/pkg/utils/logging"
)

// adminAuthMiddleware requires a bearer token of an admin account
func adminAuthMiddleware(auth usecase.AdminAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := auth.Authenticate(r.Context(), bearerToken(r))
			if err != nil {
				status := http.StatusUnauthorized
				if errors.Is(err, usecase.ErrForbidden) {
					status = http.StatusForbidden
				}
				logging.From(r.Context()).Warn("admin request rejected",
					"path", r.URL.Path,
					"status", status,
					"error", err.Error(),
				)
				writeJSON(w, r, status, model.NewFixResult(err))
				return
			}

			ctx := model.ContextWithPrincipal(r.Context(), principal)
			ctx = logging.With(ctx, logging.From(ctx).With("admin", principal.Sub))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) < len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}
