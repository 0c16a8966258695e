package auth

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/meridian-erp/meridian-erp/internal/shared"
)

// ActorLoader resolves the session's user id into a shared.Actor so
// downstream permission checks see business, role and owner flag. An
// unauthenticated request passes through with no actor in context.
type ActorLoader struct {
	logger  *slog.Logger
	service *Service
}

// NewActorLoader builds an ActorLoader.
func NewActorLoader(logger *slog.Logger, service *Service) *ActorLoader {
	return &ActorLoader{logger: logger, service: service}
}

// Middleware is the chi middleware entrypoint.
func (l *ActorLoader) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess == nil || sess.User() == "" {
			next.ServeHTTP(w, r)
			return
		}
		userID, err := strconv.ParseInt(sess.User(), 10, 64)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		user, err := l.service.UserByID(r.Context(), userID)
		if err != nil || !user.IsActive {
			// Stale session for a removed or deactivated account.
			next.ServeHTTP(w, r)
			return
		}
		actor := &shared.Actor{
			UserID:     user.ID,
			BusinessID: user.BusinessID,
			RoleID:     user.RoleID,
			IsOwner:    user.IsOwner,
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithActor(r.Context(), actor)))
	})
}

// RequireActor rejects requests with no resolved actor.
func RequireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if shared.ActorFromContext(r.Context()) == nil {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
