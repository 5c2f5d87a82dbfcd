package http

import (
	"errors"
	"net/http"

	"github.com/quietloops/tally/internal/tally/service"
	"github.com/quietloops/tally/internal/tally/store"
	"github.com/quietloops/tally/pkg/httpx"
	"github.com/quietloops/tally/pkg/i18nx"
	"github.com/quietloops/tally/pkg/jwtx"
	"github.com/quietloops/tally/pkg/slogx"
)

// AuthnMiddleware authenticates the request from the access token and places
// the resolved user id in the context. Every rejection, whatever its cause,
// is the same localized 401; the distinct reason is only logged.
func AuthnMiddleware(issuer *jwtx.Issuer, users *service.UserService, t i18nx.Translator) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			unauthorized := func(reason any) {
				slogx.FromContext(ctx).Info("request not authenticated", "reason", reason)
				w.Header().Set("WWW-Authenticate", "Bearer")
				writeError(w, r, t, http.StatusUnauthorized, "unauthenticated")
			}

			token := extractAccess(r)
			if token == "" {
				unauthorized("no credentials presented")
				return
			}

			claims, err := issuer.Decode(token)
			if err != nil {
				unauthorized(err)
				return
			}

			u, err := users.GetUserByID(ctx, claims.Subject)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					unauthorized("subject no longer exists")
					return
				}
				slogx.FromContext(ctx).Error("user lookup failed", "err", err)
				writeError(w, r, t, http.StatusInternalServerError, "internal_error")
				return
			}

			next.ServeHTTP(w, r.WithContext(httpx.ContextWithUserID(ctx, u.ID)))
		})
	}
}
