package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/vaughan-dsouza/storerate/internal/apperr"
	"github.com/vaughan-dsouza/storerate/internal/logger"
)

const maxBodyBytes = 1 << 20

// ErrorBody is the envelope of every error response.
type ErrorBody struct {
	Error   string   `json:"error"`
	Kind    string   `json:"kind"`
	Details []string `json:"details,omitempty"`
}

// JSON writes a JSON response with status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Error maps err to its HTTP status and writes the error envelope. Causes of
// internal and unavailable errors are logged, never sent. Requests without a
// request logger fall back to the process logger.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := kind.HTTPStatus()

	if status >= http.StatusInternalServerError {
		log := zerolog.Ctx(r.Context())
		if log.GetLevel() == zerolog.Disabled {
			l := logger.Get()
			log = &l
		}
		log.Error().
			Err(err).
			Str("kind", kind.String()).
			Str("path", r.URL.Path).
			Msg("request failed")
	}

	body := ErrorBody{Error: apperr.PublicMessage(err), Kind: kind.String()}
	var ae *apperr.Error
	if errors.As(err, &ae) && kind == apperr.KindInvalidInput {
		body.Details = ae.Details
	}
	JSON(w, status, body)
}

// DecodeJSON parses the JSON body into v and writes a 400 on failure.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody {
		err := apperr.Invalid("empty request body")
		Error(w, r, err)
		return err
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		msg := "invalid JSON: " + err.Error()
		if errors.Is(err, io.EOF) {
			msg = "empty request body"
		}
		wrapped := apperr.Invalid(msg)
		Error(w, r, wrapped)
		return wrapped
	}

	return nil
}
