package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"campus_lms/internal/common"
	"campus_lms/internal/common/security"
	"campus_lms/internal/domain/model"
	"campus_lms/internal/domain/repository"

	"github.com/go-chi/jwtauth/v5"
	"go.uber.org/zap"
)

type contextKey string

const UserCtxKey contextKey = "currentUser"

// Authenticator resolves the bearer token to a fresh user record on every
// request, so a deleted user loses access immediately even with a live token.
type Authenticator struct {
	userRepo repository.UserRepository
	logger   *zap.Logger
}

func NewAuthenticator(userRepo repository.UserRepository, logger *zap.Logger) *Authenticator {
	return &Authenticator{userRepo: userRepo, logger: logger}
}

func (a *Authenticator) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context()) // Extracts token from Authorization header

		if err != nil {
			if strings.Contains(err.Error(), "token not found") || token == nil {
				common.RespondWithError(w, http.StatusUnauthorized, "Authorization token required")
			} else {
				common.RespondWithError(w, http.StatusUnauthorized, "Invalid token: "+err.Error())
			}
			return
		}

		if token == nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		userID, err := security.GetUserIDFromClaims(claims)
		if err != nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims: "+err.Error())
			return
		}

		user, err := a.userRepo.FindByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				common.RespondWithError(w, http.StatusUnauthorized, "User not found")
			} else {
				a.logger.Error("failed to resolve user", zap.String("userID", userID), zap.Error(err))
				common.RespondWithError(w, http.StatusInternalServerError, "Failed to resolve user")
			}
			return
		}

		ctx := context.WithValue(r.Context(), UserCtxKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRoles gates a route on the caller's role, mirroring the per-route
// allow-lists of the API.
func RequireRoles(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUserFromContext(r.Context())
			if !ok {
				common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
				return
			}
			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			common.RespondWithError(w, http.StatusForbidden, "User role "+string(user.Role)+" is not authorized")
		})
	}
}

// GetUserFromContext returns the authenticated user attached by Authenticator.
func GetUserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(UserCtxKey).(*model.User)
	return user, ok
}
