package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/Cowspump/some-diploma-stuff/client"
	"github.com/Cowspump/some-diploma-stuff/devserver/internal/auth"
	"github.com/Cowspump/some-diploma-stuff/devserver/internal/respond"
	"github.com/Cowspump/some-diploma-stuff/devserver/internal/store"
)

type ctxKey int

const userKey ctxKey = iota

func withUser(ctx context.Context, u *store.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFrom returns the authenticated user stored by the auth middleware.
func UserFrom(ctx context.Context) (*store.User, bool) {
	u, ok := ctx.Value(userKey).(*store.User)
	return u, ok
}

const credentialsDetail = "Could not validate credentials"

// requireUser resolves the bearer token to a stored user.
func (h *Handler) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.BearerToken(r.Header)
		if err != nil {
			respond.WriteUnauthorized(w, "Not authenticated")
			return
		}
		claims, err := h.auth.ParseToken(token)
		if err != nil {
			log.Debug().Err(err).Msg("token rejected")
			respond.WriteUnauthorized(w, credentialsDetail)
			return
		}
		u, err := h.store.UserByEmail(r.Context(), claims.Subject)
		if errors.Is(err, store.ErrNotFound) {
			respond.WriteUnauthorized(w, credentialsDetail)
			return
		}
		if err != nil {
			log.Error().Err(err).Msg("resolve token user")
			respond.WriteInternalError(w, "")
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), u)))
	})
}

// requireRole writes 403 and returns false unless u has role.
func requireRole(w http.ResponseWriter, u *store.User, role client.Role, detail string) bool {
	if u.Role != role {
		respond.WriteForbidden(w, detail)
		return false
	}
	return true
}
