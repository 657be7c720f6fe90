package middleware

import (
	"errors"
	"net/http"

	"github.com/vaughan-dsouza/storerate/internal/apperr"
	"github.com/vaughan-dsouza/storerate/internal/metrics"
	"github.com/vaughan-dsouza/storerate/internal/policy"
	"github.com/vaughan-dsouza/storerate/internal/utils"
)

// Require rejects requests whose session may not perform action. It must run
// after Authenticate.
func Require(action policy.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := policy.Authorize(utils.SessionFrom(r.Context()), action); err != nil {
				if errors.Is(err, apperr.ErrForbidden) {
					metrics.AuthFailuresTotal.WithLabelValues("forbidden").Inc()
				}
				utils.Error(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
