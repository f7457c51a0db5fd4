package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taskboard/taskboard-go/internal/crypto"
	"github.com/taskboard/taskboard-go/internal/model"
	"github.com/taskboard/taskboard-go/internal/observability"
)

type identityKey struct{}

// TokenVerifier resolves a bearer token to the identity it carries.
type TokenVerifier interface {
	Verify(token string) (model.Identity, error)
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id model.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext extracts the authenticated identity from the request context.
func IdentityFromContext(ctx context.Context) (model.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(model.Identity)
	return id, ok
}

// Authenticate returns middleware that resolves a Bearer token from the
// Authorization header into an identity bound to the request context.
//
// Requests without the header, or with a scheme other than Bearer, pass
// through unauthenticated. A Bearer token that fails verification is rejected
// with 401 and the next handler is not called. Requests that already carry an
// identity are passed on untouched.
func Authenticate(verifier TokenVerifier, logger *slog.Logger, metrics *observability.Metrics) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("Vary", "Authorization")

			if _, ok := IdentityFromContext(r.Context()); ok {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := verifier.Verify(token)
			if err != nil {
				if errors.Is(err, crypto.ErrExpiredToken) {
					metrics.RecordAuth(observability.AuthResultExpired)
					writeJSONError(w, http.StatusUnauthorized, "token expired")
					return
				}
				metrics.RecordAuth(observability.AuthResultInvalid)
				writeJSONError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			metrics.RecordAuth(observability.AuthResultVerified)
			logger.InfoContext(r.Context(), "request authenticated",
				"user_id", identity.UserID.String(),
				"method", r.Method,
				"path", r.URL.Path,
			)

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// RequireIdentity rejects requests that carry no authenticated identity.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFromContext(r.Context()); !ok {
			writeJSONError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// bearerToken extracts the token of a Bearer authorization header.
// The scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	return strings.TrimSpace(token), true
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
