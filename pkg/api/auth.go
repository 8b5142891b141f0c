package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/mfreeman451/routeradar/pkg/db"
)

type contextKey string

const userIDKey contextKey = "user_id"

// TokenAuthenticator checks bearer tokens against a static table.
type TokenAuthenticator struct {
	tokens map[string]int64
}

func NewTokenAuthenticator(tokens map[string]int64) *TokenAuthenticator {
	return &TokenAuthenticator{tokens: tokens}
}

func (a *TokenAuthenticator) Authenticate(_ context.Context, token string) (int64, error) {
	if token == "" {
		return 0, ErrUnauthorized
	}

	for known, userID := range a.tokens {
		if subtle.ConstantTimeCompare([]byte(known), []byte(token)) == 1 {
			return userID, nil
		}
	}

	return 0, ErrUnauthorized
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}

	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func userFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)

	return id, ok
}

func (s *Server) authenticationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := s.auth.Authenticate(r.Context(), bearerToken(r))
		if err != nil {
			s.log.Debug().Err(err).Str("path", r.URL.Path).Msg("Rejected API request")
			writeError(w, "Unauthorized", http.StatusUnauthorized)

			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	})
}

// authorize checks that userID owns or is assigned to the device.
func (s *Server) authorize(ctx context.Context, userID, deviceID int64) error {
	recipients, err := s.db.ListDeviceRecipients(ctx, deviceID)
	if err != nil {
		return err
	}

	if !slices.Contains(recipients, userID) {
		return ErrForbidden
	}

	return nil
}

func accessStatus(err error) (string, int) {
	switch {
	case errors.Is(err, ErrForbidden):
		return "Access denied", http.StatusForbidden
	case errors.Is(err, db.ErrNotFound):
		return "Device not found", http.StatusNotFound
	default:
		return "Internal server error", http.StatusInternalServerError
	}
}
