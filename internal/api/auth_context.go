package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookkeeperapp/bookkeeper-server/internal/domain"
	"github.com/bookkeeperapp/bookkeeper-server/internal/service"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

// userKey is the context key for the authenticated user.
const userKey ctxKey = "user"

// GetUser returns the authenticated user from context.
// Returns 401 error if user is not authenticated.
func GetUser(ctx context.Context) (*domain.User, error) {
	user, ok := ctx.Value(userKey).(*domain.User)
	if !ok || user == nil {
		return nil, huma.Error401Unauthorized("Authentication required")
	}
	return user, nil
}

func setUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// authMiddleware validates Bearer tokens and stores the user in context.
// Requests without a valid token continue anonymously; handlers that need a
// user reject them through GetUser.
func authMiddleware(auth *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := auth.VerifyAccessToken(r.Context(), token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(setUser(r.Context(), user)))
		})
	}
}

// sessionHandler is a handler body that runs against a loaded session.
type sessionHandler[I, O any] func(ctx context.Context, sess *service.Session, input *I) (*O, error)

// withSession authenticates the request, loads the caller's session and
// then runs handle. Errors from any step leave through errorFor.
func withSession[I, O any](s *Server, handle sessionHandler[I, O]) func(context.Context, *I) (*O, error) {
	return func(ctx context.Context, input *I) (*O, error) {
		user, err := GetUser(ctx)
		if err != nil {
			return nil, err
		}

		sess, err := s.services.Sessions.Load(ctx, user.ID)
		if err != nil {
			return nil, errorFor(err)
		}

		out, err := handle(ctx, sess, input)
		if err != nil {
			return nil, errorFor(err)
		}
		return out, nil
	}
}
