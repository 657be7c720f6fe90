package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/vaughan-dsouza/storerate/internal/apperr"
	"github.com/vaughan-dsouza/storerate/internal/auth"
	"github.com/vaughan-dsouza/storerate/internal/metrics"
	"github.com/vaughan-dsouza/storerate/internal/utils"
)

// TokenVerifier verifies bearer tokens.
type TokenVerifier interface {
	Verify(token string) (auth.Session, error)
}

var errMissingToken = apperr.New(apperr.KindUnauthenticated, "authentication required")

// Authenticate requires a valid "Authorization: Bearer <token>" header and
// puts the verified session on the request context.
func Authenticate(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				metrics.AuthFailuresTotal.WithLabelValues("missing_token").Inc()
				utils.Error(w, r, errMissingToken)
				return
			}

			session, err := v.Verify(token)
			if err != nil {
				metrics.AuthFailuresTotal.WithLabelValues(failureReason(err)).Inc()
				utils.Error(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(utils.WithSession(r.Context(), session)))
		})
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return "token_expired"
	case errors.Is(err, auth.ErrTokenSignatureInvalid):
		return "token_signature_invalid"
	default:
		return "token_malformed"
	}
}
