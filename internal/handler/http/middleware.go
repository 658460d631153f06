package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/class-marketplace/internal/user"
)

type TokenValidator interface {
	ValidateToken(token string) (uuid.UUID, error)
}

type userFinder interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

type contextKey string

const userContextKey contextKey = "user"

// UserFromContext returns the user attached by Authenticator.Protect.
func UserFromContext(ctx context.Context) (*user.User, bool) {
	u, ok := ctx.Value(userContextKey).(*user.User)
	return u, ok && u != nil
}

func withUser(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, userContextKey, u)
}

type Authenticator struct {
	tokens TokenValidator
	users  userFinder
}

func NewAuthenticator(tokens TokenValidator, users userFinder) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

// Protect requires a valid bearer token naming an existing user and attaches
// that user to the request context. Any failure ends the request with 401.
func (a *Authenticator) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			respondWithError(w, http.StatusUnauthorized, "Not authorized, token not found")
			return
		}

		userID, err := a.tokens.ValidateToken(token)
		if err != nil {
			log.Warn().Err(err).Str("path", r.URL.Path).Msg("Rejected bearer token")
			respondWithError(w, http.StatusUnauthorized, "Not authorized, token failed")
			return
		}

		u, err := a.users.GetUserByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				log.Warn().Stringer("user_id", userID).Msg("Token subject no longer exists")
				respondWithError(w, http.StatusUnauthorized, "Not authorized, user not found")
				return
			}
			log.Error().Err(err).Stringer("user_id", userID).Msg("Failed to load token subject")
			respondWithError(w, http.StatusInternalServerError, "Failed to authorize request")
			return
		}

		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), u)))
	})
}

// AdminOnly must run after Protect.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFromContext(r.Context())
		if !ok || !u.IsAdmin {
			respondWithError(w, http.StatusUnauthorized, "Not authorized as admin")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
